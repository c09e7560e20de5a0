// Package storage is the persistence collaborator: it owns the
// transaction, account, category and goal collections and maintains
// the running account balances. The engine packages only ever read
// what it returns.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"saldo/internal/core"
	"saldo/internal/gamify"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveTransaction validates and persists one transaction, then applies
// its delta to the running balance of the affected account(s). Insert
// and balance update happen in the same database transaction.
func (r *Repository) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, date, amount_cents, kind, category, account_id, to_account_id, note, exclude_from_reports, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.Unix(), t.Amount.Cents, string(t.Kind), t.Category,
		t.AccountID, t.ToAccountID, t.Note, boolToInt(t.ExcludeFromReports), t.CreatedAt.Unix(),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	switch t.Kind {
	case core.Income:
		err = adjustBalance(ctx, tx, t.AccountID, t.Amount.Cents)
	case core.Expense:
		err = adjustBalance(ctx, tx, t.AccountID, -t.Amount.Cents)
	case core.Transfer:
		if err = adjustBalance(ctx, tx, t.AccountID, -t.Amount.Cents); err == nil {
			err = adjustBalance(ctx, tx, t.ToAccountID, t.Amount.Cents)
		}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
		"account", t.AccountID)
	return t, nil
}

func adjustBalance(ctx context.Context, tx *sql.Tx, accountID string, deltaCents int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`,
		deltaCents, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", accountID, core.ErrMissingAccount)
	}
	return nil
}

// ListTransactions returns the whole ledger ordered by date, with
// CreatedAt as tie-breaker for same-date entries.
func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, amount_cents, kind, category, account_id, to_account_id, note, exclude_from_reports, created_at
		FROM transactions
		ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, createdAt int64
		var kind string
		var excluded int
		if err := rows.Scan(&t.ID, &date, &t.Amount.Cents, &kind, &t.Category,
			&t.AccountID, &t.ToAccountID, &t.Note, &excluded, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = time.Unix(date, 0).UTC()
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		t.Kind = core.TransactionKind(kind)
		t.ExcludeFromReports = excluded != 0
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CreateAccount validates and persists a new account. Violations are
// sentinel errors the caller can surface per rule.
func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("validate account: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, currency, balance_cents, exclude_from_total, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Type), a.Currency, a.Balance.Cents,
		boolToInt(a.ExcludeFromTotal), boolToInt(a.Archived))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, currency, balance_cents, exclude_from_total, archived
		FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var typ string
		var excluded, archived int
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.Currency, &a.Balance.Cents, &excluded, &archived); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		a.ExcludeFromTotal = excluded != 0
		a.Archived = archived != 0
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, kind FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.TransactionKind(kind)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) SaveGoal(ctx context.Context, g core.BudgetGoal) (core.BudgetGoal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return core.BudgetGoal{}, fmt.Errorf("validate goal: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_goals (id, name, category, target_cents, period)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, category = excluded.category,
			target_cents = excluded.target_cents, period = excluded.period`,
		g.ID, g.Name, g.Category, g.Target.Cents, string(g.Period))
	if err != nil {
		return core.BudgetGoal{}, fmt.Errorf("upsert goal: %w", err)
	}
	return g, nil
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.BudgetGoal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, category, target_cents, period FROM budget_goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.BudgetGoal
	for rows.Next() {
		var g core.BudgetGoal
		var period string
		if err := rows.Scan(&g.ID, &g.Name, &g.Category, &g.Target.Cents, &period); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Period = core.GoalPeriod(period)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GetProfile loads the single gamification profile row.
func (r *Repository) GetProfile(ctx context.Context) (gamify.Profile, error) {
	var p gamify.Profile
	var updated int64
	err := r.db.QueryRowContext(ctx,
		`SELECT points, streak, streak_updated FROM profile WHERE id = 1`).
		Scan(&p.Points, &p.Streak, &updated)
	if err != nil {
		return gamify.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	if updated > 0 {
		p.StreakUpdated = time.Unix(updated, 0).UTC()
	}
	return p, nil
}

func (r *Repository) SaveProfile(ctx context.Context, p gamify.Profile) error {
	var updated int64
	if !p.StreakUpdated.IsZero() {
		updated = p.StreakUpdated.Unix()
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE profile SET points = ?, streak = ?, streak_updated = ? WHERE id = 1`,
		p.Points, p.Streak, updated)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// VerifyBalance recomputes an account's balance from its transaction
// history and returns it next to the stored running total. The stored
// value is authoritative; this exists for consistency checks only.
func (r *Repository) VerifyBalance(ctx context.Context, accountID string) (stored, computed core.Money, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id = ?`, accountID).Scan(&stored.Cents)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("query balance: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT amount_cents, kind, account_id, to_account_id
		FROM transactions
		WHERE account_id = ? OR to_account_id = ?`, accountID, accountID)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cents int64
		var kind, from, to string
		if err := rows.Scan(&cents, &kind, &from, &to); err != nil {
			return core.Money{}, core.Money{}, fmt.Errorf("scan history: %w", err)
		}
		switch core.TransactionKind(kind) {
		case core.Income:
			computed.Cents += cents
		case core.Expense:
			computed.Cents -= cents
		case core.Transfer:
			if from == accountID {
				computed.Cents -= cents
			}
			if to == accountID {
				computed.Cents += cents
			}
		}
	}
	return stored, computed, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
