package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"troskovi/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func seedExpense(t *testing.T, repo *SQLiteRepository, shop, category, createdBy string, date time.Time) core.Expense {
	t.Helper()
	e, err := repo.CreateExpense(context.Background(), core.Expense{
		Amount:             1000,
		OriginalCurrency:   core.RSD,
		EurAmount:          8.55,
		RsdAmount:          1000,
		ExchangeRate:       117.0,
		ShopName:           shop,
		ProductDescription: "Purchase at " + shop,
		Category:           category,
		PaymentMethod:      "Card",
		Tags:               []string{"test"},
		PurchaseDate:       date,
		CreatedBy:          createdBy,
		CreationMethod:     core.CreatedManually,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	return e
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedExpense(t, repo, "Maxi", "Groceries", "ana",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if created.ID == "" {
		t.Fatal("CreateExpense did not assign an id")
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.ShopName != "Maxi" || got.Category != "Groceries" {
		t.Errorf("got %q/%q", got.ShopName, got.Category)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "test" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.RecurringOccurrenceID != "" || got.VoiceTranscript != "" {
		t.Errorf("nullable fields not empty: %q %q", got.RecurringOccurrenceID, got.VoiceTranscript)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetExpense(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetExpense error = %v, want ErrNotFound", err)
	}
}

func TestListExpensesFiltersAndPages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedExpense(t, repo, "Maxi", "Groceries", "ana", base)
	seedExpense(t, repo, "Lidl", "Groceries", "ana", base.AddDate(0, 0, 5))
	seedExpense(t, repo, "SBB", "Home", "marko", base.AddDate(0, 0, 10))

	q := core.ExpenseQuery{Category: "Groceries"}
	q.Defaults()
	items, total, err := repo.ListExpenses(ctx, q)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("category filter: total=%d len=%d, want 2/2", total, len(items))
	}
	// Default sort is purchase date descending.
	if items[0].ShopName != "Lidl" {
		t.Errorf("first item = %q, want newest Lidl", items[0].ShopName)
	}

	start := base.AddDate(0, 0, 3)
	q = core.ExpenseQuery{StartDate: &start}
	q.Defaults()
	if _, total, err = repo.ListExpenses(ctx, q); err != nil || total != 2 {
		t.Errorf("date filter: total=%d err=%v, want 2", total, err)
	}

	q = core.ExpenseQuery{CreatedBy: "marko"}
	q.Defaults()
	if _, total, err = repo.ListExpenses(ctx, q); err != nil || total != 1 {
		t.Errorf("createdBy filter: total=%d err=%v, want 1", total, err)
	}

	q = core.ExpenseQuery{Page: 2, Limit: 2}
	q.Defaults()
	items, total, err = repo.ListExpenses(ctx, q)
	if err != nil {
		t.Fatalf("ListExpenses page 2: %v", err)
	}
	if total != 3 || len(items) != 1 {
		t.Errorf("page 2: total=%d len=%d, want 3/1", total, len(items))
	}
}

func TestListExpensesIgnoresUnknownSortColumn(t *testing.T) {
	repo := newTestRepo(t)
	seedExpense(t, repo, "Maxi", "Groceries", "ana", time.Now().UTC())

	q := core.ExpenseQuery{SortBy: "tags; DROP TABLE expenses"}
	q.Defaults()
	if _, _, err := repo.ListExpenses(context.Background(), q); err != nil {
		t.Fatalf("ListExpenses with hostile sort: %v", err)
	}
	if _, _, err := repo.ListExpenses(context.Background(), core.ExpenseQuery{Page: 1, Limit: 1}); err != nil {
		t.Fatalf("table gone after hostile sort: %v", err)
	}
}

func TestUpdateExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedExpense(t, repo, "Maxi", "Groceries", "ana", time.Now().UTC())
	created.ShopName = "Lidl"
	created.Amount = 2000

	updated, err := repo.UpdateExpense(ctx, created)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if updated.ShopName != "Lidl" || updated.Amount != 2000 {
		t.Errorf("updated = %+v", updated)
	}

	missing := created
	missing.ID = "missing"
	if _, err := repo.UpdateExpense(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateExpense missing = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedExpense(t, repo, "Maxi", "Groceries", "ana", time.Now().UTC())
	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetExpense after delete = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateIncome(ctx, core.Income{
		Amount:           1500,
		OriginalCurrency: core.EUR,
		EurAmount:        1500,
		RsdAmount:        175500,
		ExchangeRate:     117.0,
		Source:           "Acme",
		Description:      "Income from Acme",
		IncomeType:       "Salary",
		DateReceived:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:        "ana",
		CreationMethod:   core.CreatedManually,
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	got, err := repo.GetIncome(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetIncome: %v", err)
	}
	if got.Source != "Acme" || got.IncomeType != "Salary" {
		t.Errorf("got %q/%q", got.Source, got.IncomeType)
	}

	q := core.IncomeQuery{IncomeType: "Salary"}
	q.Defaults()
	_, total, err := repo.ListIncomes(ctx, q)
	if err != nil || total != 1 {
		t.Errorf("ListIncomes: total=%d err=%v", total, err)
	}
}

func TestOccurrenceLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cursor := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	created, err := repo.CreateOccurrence(ctx, core.RecurringOccurrence{
		Type:               core.OccurrenceExpense,
		Amount:             3500,
		OriginalCurrency:   core.RSD,
		Description:        "Internet subscription",
		CreatedBy:          "ana",
		Expense:            &core.ExpenseTemplate{Category: "Home", Store: "SBB"},
		Frequency:          core.Monthly,
		NextOccurrenceDate: cursor,
		IsActive:           true,
	})
	if err != nil {
		t.Fatalf("CreateOccurrence: %v", err)
	}

	got, err := repo.GetOccurrence(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetOccurrence: %v", err)
	}
	if got.Expense == nil || got.Expense.Store != "SBB" {
		t.Fatalf("expense branch = %+v", got.Expense)
	}
	if got.Income != nil {
		t.Error("income branch set on expense occurrence")
	}

	// Not due before the cursor, due at and after it.
	due, err := repo.FindDueOccurrences(ctx, cursor.AddDate(0, 0, -1))
	if err != nil || len(due) != 0 {
		t.Errorf("before cursor: due=%d err=%v, want 0", len(due), err)
	}
	due, err = repo.FindDueOccurrences(ctx, cursor)
	if err != nil || len(due) != 1 {
		t.Errorf("at cursor: due=%d err=%v, want 1", len(due), err)
	}

	// Cursor-only update leaves everything else alone.
	next := cursor.AddDate(0, 1, 0)
	if err := repo.UpdateOccurrence(ctx, created.ID, core.OccurrenceUpdate{NextOccurrenceDate: &next}); err != nil {
		t.Fatalf("UpdateOccurrence: %v", err)
	}
	got, _ = repo.GetOccurrence(ctx, created.ID)
	if !got.NextOccurrenceDate.Equal(next) {
		t.Errorf("cursor = %v, want %v", got.NextOccurrenceDate, next)
	}
	if got.Expense == nil || got.Expense.Store != "SBB" || !got.IsActive {
		t.Errorf("cursor update touched other fields: %+v", got)
	}

	// Deactivated templates stop being due.
	inactive := false
	if err := repo.UpdateOccurrence(ctx, created.ID, core.OccurrenceUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	due, err = repo.FindDueOccurrences(ctx, next)
	if err != nil || len(due) != 0 {
		t.Errorf("after deactivate: due=%d err=%v, want 0", len(due), err)
	}

	if err := repo.DeleteOccurrence(ctx, created.ID); err != nil {
		t.Fatalf("DeleteOccurrence: %v", err)
	}
	if _, err := repo.GetOccurrence(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetOccurrence after delete = %v, want ErrNotFound", err)
	}
}

func TestAutocompleteCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedExpense(t, repo, "Maxi", "Groceries", "ana", now)
	seedExpense(t, repo, "Maxi", "Groceries", "ana", now)
	seedExpense(t, repo, "Lidl", "Groceries", "ana", now)

	shops, err := repo.CountShopNames(ctx)
	if err != nil {
		t.Fatalf("CountShopNames: %v", err)
	}
	counts := make(map[string]int, len(shops))
	for _, s := range shops {
		counts[s.Value] = s.Count
	}
	if counts["Maxi"] != 2 || counts["Lidl"] != 1 {
		t.Errorf("shop counts = %v", counts)
	}

	sets, err := repo.ExpenseTagSets(ctx)
	if err != nil {
		t.Fatalf("ExpenseTagSets: %v", err)
	}
	if len(sets) != 3 {
		t.Errorf("tag sets = %d, want 3", len(sets))
	}
}
