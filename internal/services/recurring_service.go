package services

import (
	"context"
	"time"

	"troskovi/internal/core"
)

// RecurringService manages recurring templates. Materializing the records a
// template describes is the processor's job, not this service's.
type RecurringService struct {
	store OccurrenceStore
}

func NewRecurringService(store OccurrenceStore) *RecurringService {
	return &RecurringService{store: store}
}

type CreateOccurrenceInput struct {
	Type            core.OccurrenceType
	Amount          float64
	Currency        core.Currency
	Description     string
	CreatedBy       string
	Frequency       core.Frequency
	StartDate       time.Time
	RecurringAt     string
	RecurringUntil  *time.Time
	Source          string
	IncomeType      string
	ExpenseCategory string
	Store           string
}

// Create builds a template with its cursor initialized to the start date and
// the template active.
func (s *RecurringService) Create(ctx context.Context, in CreateOccurrenceInput) (core.RecurringOccurrence, error) {
	o := core.RecurringOccurrence{
		Type:               in.Type,
		Amount:             in.Amount,
		OriginalCurrency:   in.Currency,
		Description:        in.Description,
		CreatedBy:          in.CreatedBy,
		Frequency:          in.Frequency,
		RecurringAt:        in.RecurringAt,
		NextOccurrenceDate: in.StartDate,
		RecurringUntil:     in.RecurringUntil,
		IsActive:           true,
	}

	switch in.Type {
	case core.OccurrenceIncome:
		o.Income = &core.IncomeTemplate{Source: in.Source, IncomeType: in.IncomeType}
	case core.OccurrenceExpense:
		o.Expense = &core.ExpenseTemplate{Category: in.ExpenseCategory, Store: in.Store}
	}

	if err := o.Validate(); err != nil {
		return core.RecurringOccurrence{}, err
	}

	return s.store.CreateOccurrence(ctx, o)
}

// Get returns a single template.
func (s *RecurringService) Get(ctx context.Context, id string) (core.RecurringOccurrence, error) {
	return s.store.GetOccurrence(ctx, id)
}

// List returns the templates owned by a user, newest first.
func (s *RecurringService) List(ctx context.Context, createdBy string) ([]core.RecurringOccurrence, error) {
	return s.store.ListOccurrences(ctx, createdBy)
}

// Update applies a partial patch to a template and returns the new state.
func (s *RecurringService) Update(ctx context.Context, id string, upd core.OccurrenceUpdate) (core.RecurringOccurrence, error) {
	if upd.Frequency != nil && !upd.Frequency.Valid() {
		return core.RecurringOccurrence{}, core.ErrInvalidFrequency
	}
	if upd.Amount != nil && *upd.Amount <= 0 {
		return core.RecurringOccurrence{}, core.ErrInvalidAmount
	}
	if upd.Currency != nil && !upd.Currency.Valid() {
		return core.RecurringOccurrence{}, core.ErrInvalidCurrency
	}

	// A branch patch must target the branch the template actually has, or
	// the stored union would end up with both sides populated.
	if upd.Income != nil || upd.Expense != nil {
		existing, err := s.store.GetOccurrence(ctx, id)
		if err != nil {
			return core.RecurringOccurrence{}, err
		}
		if (upd.Income != nil && existing.Type != core.OccurrenceIncome) ||
			(upd.Expense != nil && existing.Type != core.OccurrenceExpense) {
			return core.RecurringOccurrence{}, core.ErrMissingTemplateBranch
		}
	}

	if err := s.store.UpdateOccurrence(ctx, id, upd); err != nil {
		return core.RecurringOccurrence{}, err
	}
	return s.store.GetOccurrence(ctx, id)
}

// Deactivate stops a template from firing without deleting its history.
func (s *RecurringService) Deactivate(ctx context.Context, id string) (core.RecurringOccurrence, error) {
	inactive := false
	return s.Update(ctx, id, core.OccurrenceUpdate{IsActive: &inactive})
}

// Delete removes a template. Records already materialized from it survive.
func (s *RecurringService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteOccurrence(ctx, id)
}
