// Package dedup scores freshly extracted transactions against the
// existing ledger to flag likely duplicate imports before they are
// committed.
package dedup

import (
	"strings"
	"time"

	"saldo/internal/core"
)

// DefaultLookbackDays bounds how far back existing transactions are
// considered as duplicate candidates.
const DefaultLookbackDays = 30

const (
	scoreExactAmount   = 0.40
	scoreCloseAmount   = 0.20
	scoreSameDay       = 0.35
	scoreOneDay        = 0.20
	scoreThreeDays     = 0.10
	scoreStrongNote    = 0.25
	scoreWeakNote      = 0.10
	scoreSameCategory  = 0.10
	matchThreshold     = 0.50
	closeAmountRelDiff = 0.05
	strongNoteOverlap  = 0.7
	weakNoteOverlap    = 0.4
)

// Options tune a duplicate check. The zero value uses the default
// lookback window and the wall clock.
type Options struct {
	LookbackDays int
	Now          func() time.Time
}

// Result is the outcome of one duplicate check. Matches holds at most
// one entry per extracted transaction: its single best candidate.
type Result struct {
	HasDuplicates bool
	Matches       []core.DuplicateMatch
}

// Check scores every extracted transaction against recent existing
// ones. A candidate qualifies only when its total score reaches the
// threshold AND at least two distinct signals fired; one strong signal
// alone is never enough. The check is deterministic: identical inputs
// produce identical matches.
func Check(extracted []core.ExtractedTransaction, existing []core.Transaction, opts Options) Result {
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}
	cutoff := now.AddDate(0, 0, -lookback)

	candidates := make([]core.Transaction, 0, len(existing))
	for _, t := range existing {
		if !t.Date.Before(cutoff) {
			candidates = append(candidates, t)
		}
	}

	var result Result
	for _, e := range extracted {
		var best *core.DuplicateMatch
		for _, t := range candidates {
			confidence, reasons := score(e, t)
			if confidence < matchThreshold || len(reasons) < 2 {
				continue
			}
			if best == nil || confidence > best.Confidence {
				best = &core.DuplicateMatch{
					ExtractedID: e.ID,
					Existing:    t,
					Confidence:  confidence,
					Reasons:     reasons,
				}
			}
		}
		if best != nil {
			result.Matches = append(result.Matches, *best)
		}
	}
	result.HasDuplicates = len(result.Matches) > 0
	return result
}

// score rates one extracted/existing pair. Different transaction kinds
// are a hard veto regardless of the other signals.
func score(e core.ExtractedTransaction, t core.Transaction) (float64, []string) {
	if e.Kind != t.Kind {
		return 0, nil
	}

	var total float64
	var reasons []string

	switch {
	case e.Amount.Cents == t.Amount.Cents:
		total += scoreExactAmount
		reasons = append(reasons, "identical amount")
	case closeAmount(e.Amount.Cents, t.Amount.Cents):
		total += scoreCloseAmount
		reasons = append(reasons, "similar amount")
	}

	// Date bands are non-cumulative: only the best one counts.
	days := core.DaysBetween(t.Date, e.Date)
	if days < 0 {
		days = -days
	}
	switch {
	case core.SameDay(e.Date, t.Date):
		total += scoreSameDay
		reasons = append(reasons, "same day")
	case days <= 1:
		total += scoreOneDay
		reasons = append(reasons, "within one day")
	case days <= 3:
		total += scoreThreeDays
		reasons = append(reasons, "within three days")
	}

	overlap := noteOverlap(e.Note, t.Note)
	switch {
	case overlap > strongNoteOverlap:
		total += scoreStrongNote
		reasons = append(reasons, "matching note")
	case overlap > weakNoteOverlap:
		total += scoreWeakNote
		reasons = append(reasons, "similar note")
	}

	if e.SuggestedCategory != "" && strings.EqualFold(e.SuggestedCategory, t.Category) {
		total += scoreSameCategory
		reasons = append(reasons, "same category")
	}

	return total, reasons
}

// closeAmount reports whether two amounts differ by less than 5%
// relative to the larger one. Zero-amount pairs never qualify.
func closeAmount(a, b int64) bool {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return false
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(max) < closeAmountRelDiff
}

// noteOverlap is a Jaccard-style word overlap over lowercase tokens
// longer than two characters.
func noteOverlap(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var common int
	for w := range ta {
		if tb[w] {
			common++
		}
	}
	union := len(ta) + len(tb) - common
	return float64(common) / float64(union)
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if len(w) > 2 {
			tokens[w] = true
		}
	}
	return tokens
}
