// Package budget evaluates spending-limit and savings goals against
// their current week or month.
package budget

import (
	"strings"
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/report"
)

// CategoryMatcher decides whether a transaction's category counts
// toward a goal's category. The grouping/alias relationship is a
// capability the caller provides; plain equality is only the default.
type CategoryMatcher interface {
	Matches(transactionCategory, goalCategory string) bool
}

// EqualFold matches categories by case-insensitive equality.
type EqualFold struct{}

func (EqualFold) Matches(transactionCategory, goalCategory string) bool {
	return strings.EqualFold(transactionCategory, goalCategory)
}

// Progress is the state of a goal inside its current period. Ratio is
// clamped to [0, 1]; overspending a limit reads as 100%, a negative net
// on a savings goal as 0%.
type Progress struct {
	Current core.Money // spent (limit goals) or net saved (savings goals)
	Target  core.Money
	Ratio   float64
	Percent int
}

// Evaluator computes goal progress. Now is injectable for tests and
// defaults to time.Now; Matcher defaults to case-insensitive equality.
type Evaluator struct {
	Matcher CategoryMatcher
	Now     func() time.Time
}

// Evaluate measures the goal against its current period, computed from
// "now" rather than a caller-supplied date. For category goals only
// expense transactions count; for savings goals every transaction's
// delta does, clamped at zero before dividing.
func (e Evaluator) Evaluate(goal core.BudgetGoal, txs []core.Transaction, viewpointAccountID string) Progress {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	matcher := e.Matcher
	if matcher == nil {
		matcher = EqualFold{}
	}

	var p report.Period
	if goal.Period == core.Weekly {
		p = report.WeekOf(now)
	} else {
		p = report.MonthOf(now)
	}

	var current int64
	for _, t := range txs {
		if t.ExcludeFromReports || !p.Contains(t.Date) {
			continue
		}
		if goal.IsSavings() {
			current += ledger.Delta(t, viewpointAccountID).Cents
			continue
		}
		if t.Kind == core.Expense && matcher.Matches(t.Category, goal.Category) {
			current += t.Amount.Cents
		}
	}
	if goal.IsSavings() && current < 0 {
		current = 0
	}

	ratio := 0.0
	if goal.Target.Cents > 0 {
		ratio = float64(current) / float64(goal.Target.Cents)
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
	}

	return Progress{
		Current: core.Money{Cents: current},
		Target:  goal.Target,
		Ratio:   ratio,
		Percent: int(ratio*100 + 0.5),
	}
}
