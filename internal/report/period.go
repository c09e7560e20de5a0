// Package report turns flat transaction and account collections into
// period summaries, bucketed time series and category breakdowns. All
// functions are pure and recomputed on demand; nothing here maintains
// incremental state.
package report

import (
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

const (
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

type (
	// Unit is the calendar unit a period was derived from. It drives
	// how the equivalent previous period is computed.
	Unit string

	// Period is a closed calendar interval [Start, End].
	Period struct {
		Start time.Time
		End   time.Time
	}

	// Summary reconstructs balances over a period from the transaction
	// history. Opening is the balance just before Start, Closing the
	// balance at End; Closing - Opening always equals Net.
	Summary struct {
		Opening core.Money
		Income  core.Money
		Expense core.Money
		Net     core.Money
		Closing core.Money
	}

	// Bucket is one sub-interval of a bucketed series.
	Bucket struct {
		Start   time.Time
		Income  core.Money
		Expense core.Money
		Net     core.Money
	}
)

// Contains reports whether d falls inside the closed interval.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days the period spans.
func (p Period) Days() int {
	return core.DaysBetween(p.Start, p.End) + 1
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// WeekOf returns the Monday-to-Sunday week containing t.
func WeekOf(t time.Time) Period {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}
}

// Previous returns the equivalent prior period: one week earlier for
// weeks, one calendar month earlier for months. Month arithmetic is
// calendar-based, not a fixed day count, so the previous period of
// March is all of February regardless of length.
func Previous(p Period, unit Unit) Period {
	if unit == UnitWeek {
		return Period{Start: p.Start.AddDate(0, 0, -7), End: p.End.AddDate(0, 0, -7)}
	}
	return MonthOf(p.Start.AddDate(0, -1, 0))
}

// VisibleAccounts returns the set of account IDs that participate in
// the all-accounts aggregate: not excluded from the total and matching
// the base currency.
func VisibleAccounts(accounts []core.Account, baseCurrency string) map[string]bool {
	visible := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if !a.ExcludeFromTotal && a.Currency == baseCurrency {
			visible[a.ID] = true
		}
	}
	return visible
}

// Scope resolves the account set a computation runs against: the single
// viewpoint account when one is selected, otherwise the visible set.
func Scope(accounts []core.Account, viewpointAccountID, baseCurrency string) map[string]bool {
	if viewpointAccountID != "" {
		return map[string]bool{viewpointAccountID: true}
	}
	return VisibleAccounts(accounts, baseCurrency)
}

// Summarize reconstructs the opening balance, period totals and closing
// balance for the period. Transactions flagged ExcludeFromReports are
// skipped everywhere here, including the opening balance, so reported
// opening + net always reconciles with reported closing. An empty
// period yields all-zero totals.
func Summarize(txs []core.Transaction, accounts []core.Account, p Period, viewpointAccountID, baseCurrency string) Summary {
	scope := Scope(accounts, viewpointAccountID, baseCurrency)

	var s Summary
	for _, t := range txs {
		if t.ExcludeFromReports {
			continue
		}
		d := ledger.ScopedDelta(t, scope)
		if t.Date.Before(p.Start) {
			s.Opening = s.Opening.Add(d)
			continue
		}
		if !p.Contains(t.Date) {
			continue
		}
		if d.IsZero() && t.IsTransfer() {
			continue
		}
		switch t.Kind {
		case core.Income:
			if scope[t.AccountID] {
				s.Income = s.Income.Add(t.Amount)
			}
		case core.Expense:
			if scope[t.AccountID] {
				s.Expense = s.Expense.Add(t.Amount)
			}
		}
		s.Net = s.Net.Add(d)
	}
	s.Closing = s.Opening.Add(s.Net)
	return s
}

// DailyBuckets partitions the period into calendar days. Bucket i is
// aligned to the day Start + i, independent of how many days the period
// has; compare different-length months with ExtendSeries rather than
// truncating.
func DailyBuckets(txs []core.Transaction, accounts []core.Account, p Period, viewpointAccountID, baseCurrency string) []Bucket {
	return bucketize(txs, accounts, p, viewpointAccountID, baseCurrency, 1)
}

// WeeklyBuckets partitions the period into fixed 7-day windows, used by
// the weekly net-income breakdown.
func WeeklyBuckets(txs []core.Transaction, accounts []core.Account, p Period, viewpointAccountID, baseCurrency string) []Bucket {
	return bucketize(txs, accounts, p, viewpointAccountID, baseCurrency, 7)
}

func bucketize(txs []core.Transaction, accounts []core.Account, p Period, viewpointAccountID, baseCurrency string, widthDays int) []Bucket {
	scope := Scope(accounts, viewpointAccountID, baseCurrency)

	days := p.Days()
	n := (days + widthDays - 1) / widthDays
	if n < 1 {
		n = 1
	}
	buckets := make([]Bucket, n)
	base := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, p.Start.Location())
	for i := range buckets {
		buckets[i].Start = base.AddDate(0, 0, i*widthDays)
	}

	for _, t := range txs {
		if t.ExcludeFromReports || !p.Contains(t.Date) {
			continue
		}
		idx := core.DaysBetween(p.Start, t.Date) / widthDays
		if idx < 0 || idx >= n {
			continue
		}
		b := &buckets[idx]
		switch t.Kind {
		case core.Income:
			if scope[t.AccountID] {
				b.Income = b.Income.Add(t.Amount)
			}
		case core.Expense:
			if scope[t.AccountID] {
				b.Expense = b.Expense.Add(t.Amount)
			}
		}
		b.Net = b.Net.Add(ledger.ScopedDelta(t, scope))
	}
	return buckets
}

// ExtendSeries pads a series to n buckets by repeating the last value.
// This is the documented policy for comparing a 28-day month against a
// 31-day one: the shorter series is extended, never the longer one cut.
func ExtendSeries(series []Bucket, n int) []Bucket {
	if len(series) >= n || len(series) == 0 {
		return series
	}
	out := make([]Bucket, n)
	copy(out, series)
	last := series[len(series)-1]
	for i := len(series); i < n; i++ {
		out[i] = last
		out[i].Start = last.Start.AddDate(0, 0, i-len(series)+1)
	}
	return out
}

// RollingMonthlyExpenseAverage averages the expense totals of the
// `months` calendar months ending with the month of now. Months with no
// data contribute zero, they are not dropped from the divisor. Steps
// are anchored on the first of the current month: AddDate on an
// end-of-month date normalizes (Mar 31 minus one month is Feb 31, which
// is Mar 3) and would skip short months.
func RollingMonthlyExpenseAverage(txs []core.Transaction, accounts []core.Account, now time.Time, months int, viewpointAccountID, baseCurrency string) core.Money {
	if months < 1 {
		return core.Money{}
	}
	first := MonthOf(now).Start
	var total int64
	for i := 0; i < months; i++ {
		p := MonthOf(first.AddDate(0, -i, 0))
		total += Summarize(txs, accounts, p, viewpointAccountID, baseCurrency).Expense.Cents
	}
	return core.Money{Cents: total / int64(months)}
}

// VariancePercent returns the percentage change of current against
// previous, rounded to the nearest integer. A zero previous value
// yields 0 rather than a division blow-up; callers render that as a
// dash or "0%".
func VariancePercent(current, previous core.Money) int {
	if previous.Cents == 0 {
		return 0
	}
	diff := float64(current.Cents-previous.Cents) / float64(abs64(previous.Cents)) * 100
	return roundToInt(diff)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func roundToInt(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
