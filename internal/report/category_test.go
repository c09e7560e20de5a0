package report

import (
	"testing"
	"time"

	"saldo/internal/core"
)

func expense(category string, cents int64) core.Transaction {
	return core.NewExpense("a", category, core.Money{Cents: cents}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
}

func TestByCategory(t *testing.T) {
	txs := []core.Transaction{
		expense("Dining", 3000),
		expense("Dining", 2000),
		expense("Groceries", 4000),
		expense("Transport", 1000),
		core.NewIncome("a", "Salary", core.Money{Cents: 99999}, time.Now()),
	}

	entries := ByCategory(txs, core.Expense)
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].Name != "Dining" || entries[0].Amount.Cents != 5000 {
		t.Errorf("first entry = %+v, want Dining 5000", entries[0])
	}
	if entries[0].Percent != 50 {
		t.Errorf("Dining percent = %d, want 50", entries[0].Percent)
	}
	if entries[1].Name != "Groceries" || entries[2].Name != "Transport" {
		t.Errorf("order = %s, %s", entries[1].Name, entries[2].Name)
	}
}

func TestByCategory_EmptyCategoryFallsBackToLabel(t *testing.T) {
	txs := []core.Transaction{
		{Kind: core.Expense, AccountID: "a", Amount: core.Money{Cents: 100}, Date: time.Now()},
	}
	entries := ByCategory(txs, core.Expense)
	if len(entries) != 1 || entries[0].Name != "Expense" {
		t.Fatalf("entries = %+v, want single literal Expense label", entries)
	}

	income := []core.Transaction{
		{Kind: core.Income, AccountID: "a", Amount: core.Money{Cents: 100}, Date: time.Now()},
	}
	entries = ByCategory(income, core.Income)
	if len(entries) != 1 || entries[0].Name != "Income" {
		t.Fatalf("entries = %+v, want single literal Income label", entries)
	}
}

func TestByCategory_SkipsExcludedFromReports(t *testing.T) {
	hidden := expense("Dining", 100)
	hidden.ExcludeFromReports = true
	entries := ByCategory([]core.Transaction{hidden}, core.Expense)
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want none", entries)
	}
}

func TestByCategory_ZeroGrandTotal(t *testing.T) {
	entries := ByCategory([]core.Transaction{expense("Dining", 0)}, core.Expense)
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Percent != 0 {
		t.Errorf("Percent = %d, want 0 sentinel", entries[0].Percent)
	}
}

func TestTopN(t *testing.T) {
	txs := []core.Transaction{
		expense("A", 5000),
		expense("B", 3000),
		expense("C", 1000),
		expense("D", 500),
		expense("E", 500),
	}

	entries := TopN(ByCategory(txs, core.Expense), 3)
	if len(entries) != 4 {
		t.Fatalf("len = %d, want 4 (top 3 plus Others)", len(entries))
	}
	for i, want := range []string{"A", "B", "C", OthersLabel} {
		if entries[i].Name != want {
			t.Errorf("entry %d = %s, want %s", i, entries[i].Name, want)
		}
	}
	if entries[3].Amount.Cents != 1000 {
		t.Errorf("Others amount = %d, want 1000", entries[3].Amount.Cents)
	}

	// Amounts reconcile to the grand total even though percentages are
	// rounded independently.
	var sum int64
	for _, e := range entries {
		sum += e.Amount.Cents
	}
	if sum != 10000 {
		t.Errorf("sum of entries = %d, want 10000", sum)
	}
}

func TestTopN_NoOthersWhenFewGroups(t *testing.T) {
	txs := []core.Transaction{
		expense("A", 5000),
		expense("B", 3000),
	}
	entries := TopN(ByCategory(txs, core.Expense), 3)
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2 (no Others for an empty remainder)", len(entries))
	}
	for _, e := range entries {
		if e.Name == OthersLabel {
			t.Error("unexpected Others entry")
		}
	}
}

func TestTopN_ZeroRemainderOmitsOthers(t *testing.T) {
	entries := []CategoryEntry{
		{Name: "A", Amount: core.Money{Cents: 5000}},
		{Name: "B", Amount: core.Money{Cents: 3000}},
		{Name: "C", Amount: core.Money{Cents: 1000}},
		{Name: "D", Amount: core.Money{Cents: 0}},
	}
	got := TopN(entries, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestTopN_NegativeRemainderIsKept(t *testing.T) {
	// Refund-heavy tail: the remainder is negative and still shown so
	// the breakdown reconciles to the grand total.
	entries := []CategoryEntry{
		{Name: "A", Amount: core.Money{Cents: 5000}},
		{Name: "B", Amount: core.Money{Cents: 3000}},
		{Name: "C", Amount: core.Money{Cents: 1000}},
		{Name: "D", Amount: core.Money{Cents: -400}},
	}
	got := TopN(entries, 3)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[3].Name != OthersLabel || got[3].Amount.Cents != -400 {
		t.Errorf("Others = %+v, want -400", got[3])
	}
}
