package sheets

import (
	"context"

	"troskovi/internal/core"
)

// RowAppender writes finance records to a backup spreadsheet. SQLite stays
// the source of truth; the sheet is an append-only mirror.
type RowAppender interface {
	AppendExpense(ctx context.Context, e core.Expense) error
	AppendIncome(ctx context.Context, in core.Income) error
}
