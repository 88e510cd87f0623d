package services

import (
	"context"
	"time"

	"troskovi/internal/core"
)

// Store ports consumed by the services. The SQLite repository implements all
// of them; tests substitute hand-rolled fakes.
type (
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		ListExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, int, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	IncomeStore interface {
		CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
		GetIncome(ctx context.Context, id string) (core.Income, error)
		ListIncomes(ctx context.Context, q core.IncomeQuery) ([]core.Income, int, error)
		UpdateIncome(ctx context.Context, in core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
	}

	OccurrenceStore interface {
		CreateOccurrence(ctx context.Context, o core.RecurringOccurrence) (core.RecurringOccurrence, error)
		GetOccurrence(ctx context.Context, id string) (core.RecurringOccurrence, error)
		ListOccurrences(ctx context.Context, createdBy string) ([]core.RecurringOccurrence, error)
		FindDueOccurrences(ctx context.Context, cutoff time.Time) ([]core.RecurringOccurrence, error)
		UpdateOccurrence(ctx context.Context, id string, upd core.OccurrenceUpdate) error
		DeleteOccurrence(ctx context.Context, id string) error
	}

	SuggestionStore interface {
		CountShopNames(ctx context.Context) ([]core.Suggestion, error)
		CountProductDescriptions(ctx context.Context) ([]core.Suggestion, error)
		CountCategories(ctx context.Context) ([]core.Suggestion, error)
		ExpenseTagSets(ctx context.Context) ([][]string, error)
	}

	// EventPublisher emits record-created events for the sheets sync worker.
	// A nil publisher disables syncing.
	EventPublisher interface {
		PublishRecordSync(ctx context.Context, recordType, id string) error
	}
)
