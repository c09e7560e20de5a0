// Package ledger implements the per-transaction primitives the
// reporting layer is built on: signed deltas relative to a viewpoint
// account, display hints, and account-scoped filtering.
package ledger

import (
	"saldo/internal/core"
)

const (
	VariantIncome  Variant = "income"
	VariantExpense Variant = "expense"
	VariantNeutral Variant = "neutral"
)

// Variant names the visual treatment a transaction row should get.
type Variant string

// Delta returns the signed contribution of t to the balance seen from
// viewpointAccountID. The empty string means the aggregate, all-accounts
// view, in which transfers net to zero. Non-transfers always apply
// their natural sign: delta is direction of money, not membership.
func Delta(t core.Transaction, viewpointAccountID string) core.Money {
	switch t.Kind {
	case core.Income:
		return t.Amount
	case core.Expense:
		return t.Amount.Neg()
	case core.Transfer:
		switch viewpointAccountID {
		case "":
			return core.Money{}
		case t.AccountID:
			return t.Amount.Neg()
		case t.ToAccountID:
			return t.Amount
		}
		return core.Money{}
	}
	return core.Money{}
}

// ScopedDelta returns the contribution of t to the combined balance of
// a set of accounts. A transfer between two in-set accounts nets to
// zero; one leaving the set subtracts, one entering adds. Non-transfers
// count only when their account is in the set.
func ScopedDelta(t core.Transaction, accounts map[string]bool) core.Money {
	if t.Kind == core.Transfer {
		var d core.Money
		if accounts[t.AccountID] {
			d = d.Add(t.Amount.Neg())
		}
		if accounts[t.ToAccountID] {
			d = d.Add(t.Amount)
		}
		return d
	}
	if !accounts[t.AccountID] {
		return core.Money{}
	}
	return Delta(t, t.AccountID)
}

// VisualState returns the sign prefix and styling variant for a
// transaction row. Transfers derive theirs from the delta's sign; a
// neutral transfer (aggregate view) gets no prefix.
func VisualState(t core.Transaction, viewpointAccountID string) (prefix string, variant Variant) {
	switch t.Kind {
	case core.Income:
		return "+", VariantIncome
	case core.Expense:
		return "−", VariantExpense
	}
	d := Delta(t, viewpointAccountID)
	switch {
	case d.Cents > 0:
		return "+", VariantIncome
	case d.Cents < 0:
		return "−", VariantExpense
	}
	return "", VariantNeutral
}

// FilterByAccount returns the transactions touching the given account:
// the source of a non-transfer, or either side of a transfer. The empty
// string is the identity filter and returns the input slice unchanged.
func FilterByAccount(txs []core.Transaction, accountID string) []core.Transaction {
	if accountID == "" {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.AccountID == accountID || (t.IsTransfer() && t.ToAccountID == accountID) {
			out = append(out, t)
		}
	}
	return out
}
