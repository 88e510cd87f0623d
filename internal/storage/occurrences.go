package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"troskovi/internal/core"
)

const occurrenceColumns = `id, occurrence_type, amount, original_currency, description,
	created_by, source, income_type, expense_category, store, frequency, recurring_at,
	recurring_until, next_occurrence_date, is_active, created_at, updated_at`

// CreateOccurrence stores a recurring template, assigning id and timestamps.
func (r *SQLiteRepository) CreateOccurrence(ctx context.Context, o core.RecurringOccurrence) (core.RecurringOccurrence, error) {
	o.ID = uuid.NewString()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	var source, incomeType, expenseCategory, store sql.NullString
	if o.Income != nil {
		source = nullable(o.Income.Source)
		incomeType = nullable(o.Income.IncomeType)
	}
	if o.Expense != nil {
		expenseCategory = nullable(o.Expense.Category)
		store = nullable(o.Expense.Store)
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO recurring_occurrences (`+occurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Type, o.Amount, o.OriginalCurrency, o.Description,
		o.CreatedBy, source, incomeType, expenseCategory, store, o.Frequency,
		nullable(o.RecurringAt), nullTime(o.RecurringUntil), o.NextOccurrenceDate,
		o.IsActive, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return core.RecurringOccurrence{}, fmt.Errorf("insert occurrence: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template saved",
		"id", o.ID,
		"type", o.Type,
		"frequency", o.Frequency,
		"next_occurrence", o.NextOccurrenceDate.Format("2006-01-02"))

	return o, nil
}

// GetOccurrence returns a template or core.ErrNotFound.
func (r *SQLiteRepository) GetOccurrence(ctx context.Context, id string) (core.RecurringOccurrence, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+occurrenceColumns+` FROM recurring_occurrences WHERE id = ?`, id)
	o, err := scanOccurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringOccurrence{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringOccurrence{}, fmt.Errorf("get occurrence: %w", err)
	}
	return o, nil
}

// ListOccurrences returns a user's templates, newest first.
func (r *SQLiteRepository) ListOccurrences(ctx context.Context, createdBy string) ([]core.RecurringOccurrence, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+occurrenceColumns+` FROM recurring_occurrences
		WHERE created_by = ? ORDER BY created_at DESC`, createdBy)
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// FindDueOccurrences returns active templates whose cursor has reached the
// cutoff. Ordering between due items is not significant.
func (r *SQLiteRepository) FindDueOccurrences(ctx context.Context, cutoff time.Time) ([]core.RecurringOccurrence, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+occurrenceColumns+` FROM recurring_occurrences
		WHERE is_active = 1 AND next_occurrence_date <= ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find due occurrences: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateOccurrence applies a partial patch. Nil fields are untouched, so the
// recurring processor can persist only the advanced cursor.
func (r *SQLiteRepository) UpdateOccurrence(ctx context.Context, id string, upd core.OccurrenceUpdate) error {
	var set []string
	var args []any

	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if upd.Amount != nil {
		add("amount", *upd.Amount)
	}
	if upd.Currency != nil {
		add("original_currency", *upd.Currency)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Income != nil {
		add("source", nullable(upd.Income.Source))
		add("income_type", nullable(upd.Income.IncomeType))
	}
	if upd.Expense != nil {
		add("expense_category", nullable(upd.Expense.Category))
		add("store", nullable(upd.Expense.Store))
	}
	if upd.Frequency != nil {
		add("frequency", *upd.Frequency)
	}
	if upd.RecurringAt != nil {
		add("recurring_at", nullable(*upd.RecurringAt))
	}
	if upd.RecurringUntil != nil {
		add("recurring_until", *upd.RecurringUntil)
	}
	if upd.NextOccurrenceDate != nil {
		add("next_occurrence_date", *upd.NextOccurrenceDate)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}

	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_occurrences SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update occurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteOccurrence removes a template. Generated records keep their
// back-reference; deletion never cascades.
func (r *SQLiteRepository) DeleteOccurrence(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_occurrences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete occurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func scanOccurrence(s scanner) (core.RecurringOccurrence, error) {
	var o core.RecurringOccurrence
	var source, incomeType, expenseCategory, store, recurringAt sql.NullString
	var recurringUntil sql.NullTime
	err := s.Scan(&o.ID, &o.Type, &o.Amount, &o.OriginalCurrency, &o.Description,
		&o.CreatedBy, &source, &incomeType, &expenseCategory, &store, &o.Frequency,
		&recurringAt, &recurringUntil, &o.NextOccurrenceDate, &o.IsActive,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return core.RecurringOccurrence{}, err
	}

	o.RecurringAt = recurringAt.String
	if recurringUntil.Valid {
		t := recurringUntil.Time
		o.RecurringUntil = &t
	}
	switch o.Type {
	case core.OccurrenceIncome:
		o.Income = &core.IncomeTemplate{Source: source.String, IncomeType: incomeType.String}
	case core.OccurrenceExpense:
		o.Expense = &core.ExpenseTemplate{Category: expenseCategory.String, Store: store.String}
	}
	return o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
