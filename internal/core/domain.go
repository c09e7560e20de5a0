package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionKind = "income"
	Expense  TransactionKind = "expense"
	Transfer TransactionKind = "transfer"
)

const (
	AccountCash       AccountType = "cash"
	AccountBank       AccountType = "bank"
	AccountCard       AccountType = "card"
	AccountInvestment AccountType = "investment"
)

const (
	Weekly  GoalPeriod = "week"
	Monthly GoalPeriod = "month"
)

type (
	TransactionKind string

	AccountType string

	GoalPeriod string

	// Transaction is one ledger entry. Amount is always a non-negative
	// magnitude; direction comes from Kind and, for transfers, from the
	// viewpoint account. Use the constructors so the transfer invariant
	// (both account sides set) cannot be violated.
	Transaction struct {
		ID                 string
		Date               time.Time
		Amount             Money
		Kind               TransactionKind
		Category           string // required for income/expense, ignored for transfers
		AccountID          string
		ToAccountID        string // set only for transfers
		Note               string
		ExcludeFromReports bool // still moves the balance, hidden from report aggregates
		CreatedAt          time.Time
	}

	Account struct {
		ID               string
		Name             string
		Type             AccountType
		Currency         string // ISO 4217 code
		Balance          Money  // running total, maintained by the persistence layer
		ExcludeFromTotal bool
		Archived         bool
	}

	Category struct {
		ID   string
		Name string
		Kind TransactionKind // income or expense
	}

	// BudgetGoal is a spending limit (Category set) or an overall
	// savings goal (Category empty) over a rolling week or month.
	BudgetGoal struct {
		ID       string
		Name     string
		Category string
		Target   Money
		Period   GoalPeriod
	}

	// ExtractedTransaction is a candidate produced by the vision
	// collaborator from a receipt image. It lives only for the duration
	// of one import review.
	ExtractedTransaction struct {
		ID                string
		Amount            Money
		Note              string
		Kind              TransactionKind
		SuggestedCategory string
		Date              time.Time
		Confidence        float64 // 0..1
		Location          string
	}

	// DuplicateMatch flags an extracted transaction as a likely
	// duplicate of an existing one, with the signals that fired.
	DuplicateMatch struct {
		ExtractedID string
		Existing    Transaction
		Confidence  float64
		Reasons     []string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrMissingAccount  = errors.New("missing account")
	ErrMissingCategory = errors.New("missing category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidTarget   = errors.New("invalid goal target")
	ErrInvalidPeriod   = errors.New("invalid goal period")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// NewIncome builds an income transaction for the given account.
func NewIncome(accountID, category string, amount Money, date time.Time) Transaction {
	return Transaction{Kind: Income, AccountID: accountID, Category: category, Amount: amount, Date: date}
}

// NewExpense builds an expense transaction for the given account.
func NewExpense(accountID, category string, amount Money, date time.Time) Transaction {
	return Transaction{Kind: Expense, AccountID: accountID, Category: category, Amount: amount, Date: date}
}

// NewTransfer builds a transfer between two accounts. Transfers carry no
// category; their sign depends on which side is in view.
func NewTransfer(fromAccountID, toAccountID string, amount Money, date time.Time) Transaction {
	return Transaction{Kind: Transfer, AccountID: fromAccountID, ToAccountID: toAccountID, Amount: amount, Date: date}
}

func (t Transaction) IsTransfer() bool { return t.Kind == Transfer }

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	switch t.Kind {
	case Income, Expense:
		if t.AccountID == "" {
			return ErrMissingAccount
		}
		if t.ToAccountID != "" {
			return errors.New("non-transfer cannot have a destination account")
		}
		if strings.TrimSpace(t.Category) == "" {
			return ErrMissingCategory
		}
	case Transfer:
		if t.AccountID == "" || t.ToAccountID == "" {
			return ErrMissingAccount
		}
		if t.AccountID == t.ToAccountID {
			return errors.New("transfer source and destination must differ")
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Type {
	case AccountCash, AccountBank, AccountCard, AccountInvestment:
	default:
		return errors.New("invalid account type")
	}
	if len(a.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

func (g BudgetGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	switch g.Period {
	case Weekly, Monthly:
	default:
		return ErrInvalidPeriod
	}
	return nil
}

// IsSavings reports whether the goal tracks overall net savings instead
// of spending within a single category.
func (g BudgetGoal) IsSavings() bool { return g.Category == "" }

// DaysBetween returns the whole calendar days from a to b, ignoring the
// time of day. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
