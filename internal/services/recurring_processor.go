package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"troskovi/internal/core"
)

// maxConcurrentOccurrences bounds how many due templates are materialized at
// the same time.
const maxConcurrentOccurrences = 4

// RecurringProcessor materializes due recurring templates into real expense
// and income records and advances each template's schedule cursor.
type RecurringProcessor struct {
	store    OccurrenceStore
	expenses *ExpenseService
	incomes  *IncomeService
}

func NewRecurringProcessor(store OccurrenceStore, expenses *ExpenseService, incomes *IncomeService) *RecurringProcessor {
	return &RecurringProcessor{
		store:    store,
		expenses: expenses,
		incomes:  incomes,
	}
}

// ProcessResult summarizes one scheduler run.
type ProcessResult struct {
	Found       int
	Processed   int
	Deactivated int
	Failed      int
}

// ProcessDue runs one scheduler pass: it loads every active template whose
// cursor is at or before now and handles each independently, so one broken
// template never blocks the rest of the batch. Each successfully handled
// template advances its cursor exactly one period per run, no matter how far
// behind it is.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (ProcessResult, error) {
	due, err := p.store.FindDueOccurrences(ctx, now)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("find due occurrences: %w", err)
	}

	slog.InfoContext(ctx, "Processing due recurring occurrences", "count", len(due))

	var processed, deactivated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOccurrences)
	for _, o := range due {
		o := o
		g.Go(func() error {
			switch err := p.processOne(gctx, o, now); {
			case errors.Is(err, errExpired):
				deactivated.Add(1)
			case err != nil:
				failed.Add(1)
				slog.ErrorContext(gctx, "Failed to process recurring occurrence",
					"id", o.ID, "type", o.Type, "error", err)
			default:
				processed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := ProcessResult{
		Found:       len(due),
		Processed:   int(processed.Load()),
		Deactivated: int(deactivated.Load()),
		Failed:      int(failed.Load()),
	}
	slog.InfoContext(ctx, "Recurring run finished",
		"found", result.Found, "processed", result.Processed,
		"deactivated", result.Deactivated, "failed", result.Failed)
	return result, nil
}

// errExpired marks a template that was due but past its recurringUntil bound.
var errExpired = errors.New("occurrence expired")

func (p *RecurringProcessor) processOne(ctx context.Context, o core.RecurringOccurrence, now time.Time) error {
	if o.RecurringUntil != nil && o.RecurringUntil.Before(now) {
		inactive := false
		if err := p.store.UpdateOccurrence(ctx, o.ID, core.OccurrenceUpdate{IsActive: &inactive}); err != nil {
			return fmt.Errorf("deactivate expired occurrence: %w", err)
		}
		slog.InfoContext(ctx, "Deactivated expired recurring occurrence", "id", o.ID)
		return errExpired
	}

	// Compute the new cursor before writing anything: an unrecognized
	// frequency must fail the item without touching storage.
	next, err := NextDate(o.NextOccurrenceDate, o.Frequency)
	if err != nil {
		return err
	}

	recordID, err := p.materialize(ctx, o, now)
	if err != nil {
		return fmt.Errorf("materialize record: %w", err)
	}

	if err := p.store.UpdateOccurrence(ctx, o.ID, core.OccurrenceUpdate{NextOccurrenceDate: &next}); err != nil {
		// Roll the record back so the next run can retry the whole item
		// instead of double-charging it.
		p.compensate(ctx, o.Type, recordID)
		return fmt.Errorf("advance cursor: %w", err)
	}

	slog.InfoContext(ctx, "Materialized recurring occurrence",
		"id", o.ID, "type", o.Type, "recordId", recordID, "nextOccurrence", next)
	return nil
}

func (p *RecurringProcessor) materialize(ctx context.Context, o core.RecurringOccurrence, now time.Time) (string, error) {
	switch o.Type {
	case core.OccurrenceIncome:
		incomeType := o.Income.IncomeType
		if incomeType == "" {
			incomeType = "Other"
		}
		in, err := p.incomes.Create(ctx, CreateIncomeInput{
			Amount:                o.Amount,
			Currency:              o.OriginalCurrency,
			Source:                o.Income.Source,
			Description:           o.Description,
			IncomeType:            incomeType,
			DateReceived:          now,
			CreatedBy:             o.CreatedBy,
			RecurringOccurrenceID: o.ID,
			CreationMethod:        core.CreatedByRecurer,
		})
		if err != nil {
			return "", err
		}
		return in.ID, nil
	case core.OccurrenceExpense:
		shop := o.Expense.Store
		if shop == "" {
			shop = "Other"
		}
		e, err := p.expenses.Create(ctx, CreateExpenseInput{
			Amount:                o.Amount,
			Currency:              o.OriginalCurrency,
			ShopName:              shop,
			ProductDescription:    o.Description,
			Category:              o.Expense.Category,
			PurchaseDate:          now,
			CreatedBy:             o.CreatedBy,
			RecurringOccurrenceID: o.ID,
			CreationMethod:        core.CreatedByRecurer,
		})
		if err != nil {
			return "", err
		}
		return e.ID, nil
	default:
		return "", core.ErrInvalidOccurrence
	}
}

func (p *RecurringProcessor) compensate(ctx context.Context, t core.OccurrenceType, recordID string) {
	var err error
	switch t {
	case core.OccurrenceIncome:
		err = p.incomes.Delete(ctx, recordID)
	case core.OccurrenceExpense:
		err = p.expenses.Delete(ctx, recordID)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to roll back materialized record",
			"recordId", recordID, "type", t, "error", err)
	}
}
