package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"saldo/internal/core"
	"saldo/internal/gamify"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "saldo.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateAccount(t *testing.T, repo *Repository, name string, balanceCents int64) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		Name:     name,
		Type:     core.AccountBank,
		Currency: "EUR",
		Balance:  core.Money{Cents: balanceCents},
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", name, err)
	}
	return a
}

func TestSaveTransactionRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "Main", 0)

	in := core.NewExpense(acc.ID, "Groceries", core.Money{Cents: 2350}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	in.Note = "weekly shop"

	saved, err := repo.SaveTransaction(ctx, in)
	if err != nil {
		t.Fatalf("SaveTransaction() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("saved transaction has no generated ID")
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len = %d, want 1", len(txs))
	}
	got := txs[0]
	if got.ID != saved.ID || got.Amount.Cents != 2350 || got.Category != "Groceries" ||
		got.Kind != core.Expense || got.Note != "weekly shop" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Date.Equal(in.Date) {
		t.Errorf("Date = %v, want %v", got.Date, in.Date)
	}
}

func TestSaveTransaction_RejectsInvalid(t *testing.T) {
	repo := newTestRepository(t)
	acc := mustCreateAccount(t, repo, "Main", 0)

	bad := core.NewExpense(acc.ID, "", core.Money{Cents: 100}, time.Now())
	if _, err := repo.SaveTransaction(context.Background(), bad); !errors.Is(err, core.ErrMissingCategory) {
		t.Errorf("error = %v, want ErrMissingCategory", err)
	}

	// The rejected row must not leak into the ledger.
	txs, err := repo.ListTransactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Errorf("ledger has %d rows, want 0", len(txs))
	}
}

func TestSaveTransaction_UnknownAccountRollsBack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tx := core.NewExpense("no-such-account", "Groceries", core.Money{Cents: 100}, time.Now())
	if _, err := repo.SaveTransaction(ctx, tx); !errors.Is(err, core.ErrMissingAccount) {
		t.Fatalf("error = %v, want ErrMissingAccount", err)
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Errorf("insert survived the failed balance update, %d rows", len(txs))
	}
}

func TestBalanceMaintenance(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	main := mustCreateAccount(t, repo, "Main", 10000)
	cash := mustCreateAccount(t, repo, "Cash", 0)
	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	steps := []core.Transaction{
		core.NewIncome(main.ID, "Salary", core.Money{Cents: 200000}, date),
		core.NewExpense(main.ID, "Groceries", core.Money{Cents: 4500}, date),
		core.NewTransfer(main.ID, cash.ID, core.Money{Cents: 5000}, date),
	}
	for _, s := range steps {
		if _, err := repo.SaveTransaction(ctx, s); err != nil {
			t.Fatalf("SaveTransaction() error = %v", err)
		}
	}

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	balances := map[string]int64{}
	for _, a := range accounts {
		balances[a.Name] = a.Balance.Cents
	}
	if balances["Main"] != 10000+200000-4500-5000 {
		t.Errorf("Main balance = %d, want %d", balances["Main"], 10000+200000-4500-5000)
	}
	if balances["Cash"] != 5000 {
		t.Errorf("Cash balance = %d, want 5000", balances["Cash"])
	}
}

func TestVerifyBalance(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "Main", 0)
	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{
		core.NewIncome(acc.ID, "Salary", core.Money{Cents: 1000}, date),
		core.NewExpense(acc.ID, "Dining", core.Money{Cents: 300}, date),
	} {
		if _, err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	stored, computed, err := repo.VerifyBalance(ctx, acc.ID)
	if err != nil {
		t.Fatalf("VerifyBalance() error = %v", err)
	}
	if stored.Cents != 700 || computed.Cents != 700 {
		t.Errorf("stored = %d computed = %d, want both 700", stored.Cents, computed.Cents)
	}

	// An opening balance set at account creation is part of the stored
	// total but not of the history.
	seeded := mustCreateAccount(t, repo, "Seeded", 1234)
	stored, computed, err = repo.VerifyBalance(ctx, seeded.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Cents != 1234 || computed.Cents != 0 {
		t.Errorf("stored = %d computed = %d, want 1234 and 0", stored.Cents, computed.Cents)
	}
}

func TestCreateAccount_RejectsInvalid(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.CreateAccount(context.Background(), core.Account{Name: " ", Type: core.AccountBank, Currency: "EUR"})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("error = %v, want ErrEmptyName", err)
	}
}

func TestSeededCategories(t *testing.T) {
	repo := newTestRepository(t)
	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("migrations seeded no categories")
	}

	var hasOtherExpense, hasSalary bool
	for _, c := range categories {
		if c.Name == "Other" && c.Kind == core.Expense {
			hasOtherExpense = true
		}
		if c.Name == "Salary" && c.Kind == core.Income {
			hasSalary = true
		}
	}
	if !hasOtherExpense {
		t.Error("missing seeded Other expense category")
	}
	if !hasSalary {
		t.Error("missing seeded Salary income category")
	}
}

func TestGoals(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	g, err := repo.SaveGoal(ctx, core.BudgetGoal{
		Name:     "Dining out",
		Category: "Dining",
		Target:   core.Money{Cents: 20000},
		Period:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}

	// Upsert by ID updates in place.
	g.Target = core.Money{Cents: 25000}
	if _, err := repo.SaveGoal(ctx, g); err != nil {
		t.Fatalf("SaveGoal() update error = %v", err)
	}

	goals, err := repo.ListGoals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 1 {
		t.Fatalf("len = %d, want 1", len(goals))
	}
	if goals[0].Target.Cents != 25000 || goals[0].Period != core.Monthly {
		t.Errorf("goal = %+v", goals[0])
	}
}

func TestProfilePersistence(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if p.Points != 0 || p.Streak != 0 || !p.StreakUpdated.IsZero() {
		t.Errorf("fresh profile = %+v, want zero state", p)
	}

	updated := gamify.Profile{
		Points:        135,
		Streak:        4,
		StreakUpdated: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveProfile(ctx, updated); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Points != 135 || got.Streak != 4 || !got.StreakUpdated.Equal(updated.StreakUpdated) {
		t.Errorf("profile = %+v, want %+v", got, updated)
	}
}
