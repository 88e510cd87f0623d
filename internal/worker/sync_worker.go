package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"troskovi/internal/amqp"
	"troskovi/internal/core"
	"troskovi/internal/sheets"
)

// RecordReader loads records for the sync worker. Implemented by the SQLite
// repository.
type RecordReader interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	GetIncome(ctx context.Context, id string) (core.Income, error)
}

// SyncWorker mirrors newly created records into the backup spreadsheet.
type SyncWorker struct {
	store    RecordReader
	appender sheets.RowAppender
}

func NewSyncWorker(store RecordReader, appender sheets.RowAppender) *SyncWorker {
	return &SyncWorker{store: store, appender: appender}
}

// HandleRecordSync processes one sync message. A missing record is treated as
// already deleted and acknowledged rather than retried forever.
func (w *SyncWorker) HandleRecordSync(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing record sync message",
		"recordType", msg.RecordType, "id", msg.ID)

	var err error
	switch msg.RecordType {
	case amqp.RecordExpense:
		var e core.Expense
		if e, err = w.store.GetExpense(ctx, msg.ID); err == nil {
			err = w.appender.AppendExpense(ctx, e)
		}
	case amqp.RecordIncome:
		var in core.Income
		if in, err = w.store.GetIncome(ctx, msg.ID); err == nil {
			err = w.appender.AppendIncome(ctx, in)
		}
	default:
		slog.WarnContext(ctx, "Dropping sync message with unknown record type",
			"recordType", msg.RecordType, "id", msg.ID)
		return nil
	}

	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Record gone before sync, dropping message",
			"recordType", msg.RecordType, "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync %s %s: %w", msg.RecordType, msg.ID, err)
	}

	slog.InfoContext(ctx, "Record synced to spreadsheet",
		"recordType", msg.RecordType, "id", msg.ID)
	return nil
}
