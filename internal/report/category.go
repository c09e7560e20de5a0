package report

import (
	"math"
	"sort"

	"saldo/internal/core"
)

// OthersLabel names the collapsed remainder entry of a bounded
// category breakdown.
const OthersLabel = "Others"

// CategoryEntry is one row of a category breakdown. Percent values are
// rounded independently per entry and are not re-normalized, so a
// breakdown may sum to 99 or 101 percent. That slack is accepted; the
// amounts themselves always reconcile to the grand total.
type CategoryEntry struct {
	Name    string
	Amount  core.Money
	Percent int
}

// ByCategory groups the transactions of one kind by category and
// returns entries sorted by amount, largest first. Transactions without
// a category fall back to a literal "Income"/"Expense" label.
// Transactions flagged ExcludeFromReports are skipped.
func ByCategory(txs []core.Transaction, kind core.TransactionKind) []CategoryEntry {
	sums := make(map[string]int64)
	for _, t := range txs {
		if t.Kind != kind || t.ExcludeFromReports {
			continue
		}
		name := t.Category
		if name == "" {
			if kind == core.Income {
				name = "Income"
			} else {
				name = "Expense"
			}
		}
		sums[name] += t.Amount.Cents
	}

	var grand int64
	for _, c := range sums {
		grand += c
	}

	entries := make([]CategoryEntry, 0, len(sums))
	for name, cents := range sums {
		entries = append(entries, CategoryEntry{
			Name:    name,
			Amount:  core.Money{Cents: cents},
			Percent: percentOf(cents, grand),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount.Cents != entries[j].Amount.Cents {
			return entries[i].Amount.Cents > entries[j].Amount.Cents
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// TopN keeps the n largest entries and collapses the rest into a single
// "Others" entry. The remainder is included whenever it is non-zero,
// negative refund totals included, so that the returned entries always
// sum to the grand total of the input.
func TopN(entries []CategoryEntry, n int) []CategoryEntry {
	if n < 1 || len(entries) <= n {
		return entries
	}

	var grand int64
	for _, e := range entries {
		grand += e.Amount.Cents
	}

	out := make([]CategoryEntry, n, n+1)
	copy(out, entries[:n])

	var rest int64
	for _, e := range entries[n:] {
		rest += e.Amount.Cents
	}
	if rest != 0 {
		out = append(out, CategoryEntry{
			Name:    OthersLabel,
			Amount:  core.Money{Cents: rest},
			Percent: percentOf(rest, grand),
		})
	}
	return out
}

// percentOf guards the zero-grand-total case with a 0 sentinel instead
// of NaN.
func percentOf(part, grand int64) int {
	if grand == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(grand) * 100))
}
