// Package memory holds an in-memory RowAppender for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"troskovi/internal/core"
	ports "troskovi/internal/sheets"
)

type Appender struct {
	mu       sync.Mutex
	Expenses []core.Expense
	Incomes  []core.Income
}

var _ ports.RowAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

func (a *Appender) AppendExpense(_ context.Context, e core.Expense) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Expenses = append(a.Expenses, e)
	return nil
}

func (a *Appender) AppendIncome(_ context.Context, in core.Income) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Incomes = append(a.Incomes, in)
	return nil
}
