package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"troskovi/internal/core"
)

// fakeStore is an in-memory implementation of the store ports.
type fakeStore struct {
	mu          sync.Mutex
	expenses    map[string]core.Expense
	incomes     map[string]core.Income
	occurrences map[string]core.RecurringOccurrence

	failCreateExpenseFor string
	failCursorAdvanceFor string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		expenses:    make(map[string]core.Expense),
		incomes:     make(map[string]core.Income),
		occurrences: make(map[string]core.RecurringOccurrence),
	}
}

var errFakeStore = context.DeadlineExceeded

func (f *fakeStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateExpenseFor != "" && e.RecurringOccurrenceID == f.failCreateExpenseFor {
		return core.Expense{}, errFakeStore
	}
	e.ID = uuid.NewString()
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeStore) GetExpense(_ context.Context, id string) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, q core.ExpenseQuery) ([]core.Expense, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Expense
	for _, e := range f.expenses {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.expenses[e.ID]; !ok {
		return core.Expense{}, core.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeStore) DeleteExpense(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.expenses[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *fakeStore) CreateIncome(_ context.Context, in core.Income) (core.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = uuid.NewString()
	now := time.Now().UTC()
	in.CreatedAt, in.UpdatedAt = now, now
	f.incomes[in.ID] = in
	return in, nil
}

func (f *fakeStore) GetIncome(_ context.Context, id string) (core.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.incomes[id]
	if !ok {
		return core.Income{}, core.ErrNotFound
	}
	return in, nil
}

func (f *fakeStore) ListIncomes(_ context.Context, q core.IncomeQuery) ([]core.Income, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Income
	for _, in := range f.incomes {
		out = append(out, in)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateIncome(_ context.Context, in core.Income) (core.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.incomes[in.ID]; !ok {
		return core.Income{}, core.ErrNotFound
	}
	in.UpdatedAt = time.Now().UTC()
	f.incomes[in.ID] = in
	return in, nil
}

func (f *fakeStore) DeleteIncome(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.incomes[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.incomes, id)
	return nil
}

func (f *fakeStore) CreateOccurrence(_ context.Context, o core.RecurringOccurrence) (core.RecurringOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = uuid.NewString()
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	f.occurrences[o.ID] = o
	return o, nil
}

func (f *fakeStore) GetOccurrence(_ context.Context, id string) (core.RecurringOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.occurrences[id]
	if !ok {
		return core.RecurringOccurrence{}, core.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) ListOccurrences(_ context.Context, createdBy string) ([]core.RecurringOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.RecurringOccurrence
	for _, o := range f.occurrences {
		if o.CreatedBy == createdBy {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) FindDueOccurrences(_ context.Context, cutoff time.Time) ([]core.RecurringOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.RecurringOccurrence
	for _, o := range f.occurrences {
		if o.IsActive && !o.NextOccurrenceDate.After(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOccurrence(_ context.Context, id string, upd core.OccurrenceUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCursorAdvanceFor == id && upd.NextOccurrenceDate != nil {
		return errFakeStore
	}
	o, ok := f.occurrences[id]
	if !ok {
		return core.ErrNotFound
	}
	if upd.Amount != nil {
		o.Amount = *upd.Amount
	}
	if upd.Currency != nil {
		o.OriginalCurrency = *upd.Currency
	}
	if upd.Description != nil {
		o.Description = *upd.Description
	}
	if upd.Income != nil {
		o.Income = upd.Income
	}
	if upd.Expense != nil {
		o.Expense = upd.Expense
	}
	if upd.Frequency != nil {
		o.Frequency = *upd.Frequency
	}
	if upd.RecurringAt != nil {
		o.RecurringAt = *upd.RecurringAt
	}
	if upd.RecurringUntil != nil {
		o.RecurringUntil = upd.RecurringUntil
	}
	if upd.NextOccurrenceDate != nil {
		o.NextOccurrenceDate = *upd.NextOccurrenceDate
	}
	if upd.IsActive != nil {
		o.IsActive = *upd.IsActive
	}
	o.UpdatedAt = time.Now().UTC()
	f.occurrences[id] = o
	return nil
}

func (f *fakeStore) DeleteOccurrence(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.occurrences[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.occurrences, id)
	return nil
}

// fakePublisher records published sync messages.
type fakePublisher struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (p *fakePublisher) PublishRecordSync(_ context.Context, recordType, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errFakeStore
	}
	p.messages = append(p.messages, recordType+":"+id)
	return nil
}
