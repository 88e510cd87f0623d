package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"troskovi/internal/core"
)

// SQLiteRepository persists expenses, incomes and recurring templates.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = `id, amount, original_currency, eur_amount, rsd_amount, exchange_rate,
	shop_name, product_description, category, payment_method, tags, purchase_date,
	created_by, recurring_occurrence_id, creation_method, voice_transcript, created_at, updated_at`

// CreateExpense stores an expense, assigning id and audit timestamps.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	tags, err := marshalTags(e.Tags)
	if err != nil {
		return core.Expense{}, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, e.OriginalCurrency, e.EurAmount, e.RsdAmount, e.ExchangeRate,
		e.ShopName, e.ProductDescription, e.Category, e.PaymentMethod, tags, e.PurchaseDate,
		e.CreatedBy, nullable(e.RecurringOccurrenceID), e.CreationMethod,
		nullable(e.VoiceTranscript), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"shop_name", e.ShopName,
		"amount", e.Amount,
		"currency", e.OriginalCurrency)

	return e, nil
}

// GetExpense returns a single expense or core.ErrNotFound.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// expenseSortColumns whitelists sortable fields against SQL injection.
var expenseSortColumns = map[string]string{
	"purchaseDate": "purchase_date",
	"amount":       "amount",
	"eurAmount":    "eur_amount",
	"rsdAmount":    "rsd_amount",
	"shopName":     "shop_name",
	"category":     "category",
	"createdAt":    "created_at",
}

// ListExpenses applies exact-match filters, an inclusive date range, sorting
// and offset pagination. Returns the page and the unpaged total.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, int, error) {
	var where []string
	var args []any

	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.ShopName != "" {
		where = append(where, "shop_name = ?")
		args = append(args, q.ShopName)
	}
	if q.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, q.CreatedBy)
	}
	if q.StartDate != nil {
		where = append(where, "purchase_date >= ?")
		args = append(args, *q.StartDate)
	}
	if q.EndDate != nil {
		where = append(where, "purchase_date <= ?")
		args = append(args, *q.EndDate)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	sortCol, ok := expenseSortColumns[q.SortBy]
	if !ok {
		sortCol = "purchase_date"
	}
	dir := "DESC"
	if q.SortOrder == "asc" {
		dir = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM expenses%s ORDER BY %s %s LIMIT ? OFFSET ?",
		expenseColumns, clause, sortCol, dir)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// UpdateExpense rewrites the mutable columns of an existing expense. The
// caller merges the patch into the loaded record first.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.UpdatedAt = time.Now().UTC()

	tags, err := marshalTags(e.Tags)
	if err != nil {
		return core.Expense{}, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET
		amount = ?, original_currency = ?, eur_amount = ?, rsd_amount = ?, exchange_rate = ?,
		shop_name = ?, product_description = ?, category = ?, payment_method = ?, tags = ?,
		purchase_date = ?, created_by = ?, updated_at = ?
		WHERE id = ?`,
		e.Amount, e.OriginalCurrency, e.EurAmount, e.RsdAmount, e.ExchangeRate,
		e.ShopName, e.ProductDescription, e.Category, e.PaymentMethod, tags,
		e.PurchaseDate, e.CreatedBy, e.UpdatedAt, e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

// DeleteExpense removes an expense or returns core.ErrNotFound.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const incomeColumns = `id, amount, original_currency, eur_amount, rsd_amount, exchange_rate,
	source, description, income_type, date_received, created_by,
	recurring_occurrence_id, creation_method, voice_transcript, created_at, updated_at`

// CreateIncome stores an income, assigning id and audit timestamps.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.ID = uuid.NewString()
	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO incomes (`+incomeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Amount, in.OriginalCurrency, in.EurAmount, in.RsdAmount, in.ExchangeRate,
		in.Source, in.Description, in.IncomeType, in.DateReceived, in.CreatedBy,
		nullable(in.RecurringOccurrenceID), in.CreationMethod, nullable(in.VoiceTranscript),
		in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"id", in.ID,
		"source", in.Source,
		"amount", in.Amount,
		"currency", in.OriginalCurrency)

	return in, nil
}

// GetIncome returns a single income or core.ErrNotFound.
func (r *SQLiteRepository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

var incomeSortColumns = map[string]string{
	"dateReceived": "date_received",
	"amount":       "amount",
	"eurAmount":    "eur_amount",
	"rsdAmount":    "rsd_amount",
	"source":       "source",
	"incomeType":   "income_type",
	"createdAt":    "created_at",
}

// ListIncomes is the income counterpart of ListExpenses.
func (r *SQLiteRepository) ListIncomes(ctx context.Context, q core.IncomeQuery) ([]core.Income, int, error) {
	var where []string
	var args []any

	if q.IncomeType != "" {
		where = append(where, "income_type = ?")
		args = append(args, q.IncomeType)
	}
	if q.Source != "" {
		where = append(where, "source = ?")
		args = append(args, q.Source)
	}
	if q.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, q.CreatedBy)
	}
	if q.StartDate != nil {
		where = append(where, "date_received >= ?")
		args = append(args, *q.StartDate)
	}
	if q.EndDate != nil {
		where = append(where, "date_received <= ?")
		args = append(args, *q.EndDate)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incomes"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incomes: %w", err)
	}

	sortCol, ok := incomeSortColumns[q.SortBy]
	if !ok {
		sortCol = "date_received"
	}
	dir := "DESC"
	if q.SortOrder == "asc" {
		dir = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM incomes%s ORDER BY %s %s LIMIT ? OFFSET ?",
		incomeColumns, clause, sortCol, dir)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

// UpdateIncome rewrites the mutable columns of an existing income.
func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `UPDATE incomes SET
		amount = ?, original_currency = ?, eur_amount = ?, rsd_amount = ?, exchange_rate = ?,
		source = ?, description = ?, income_type = ?, date_received = ?, created_by = ?,
		updated_at = ?
		WHERE id = ?`,
		in.Amount, in.OriginalCurrency, in.EurAmount, in.RsdAmount, in.ExchangeRate,
		in.Source, in.Description, in.IncomeType, in.DateReceived, in.CreatedBy,
		in.UpdatedAt, in.ID)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Income{}, core.ErrNotFound
	}
	return in, nil
}

// DeleteIncome removes an income or returns core.ErrNotFound.
func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var e core.Expense
	var tags string
	var recurringID, transcript sql.NullString
	err := s.Scan(&e.ID, &e.Amount, &e.OriginalCurrency, &e.EurAmount, &e.RsdAmount,
		&e.ExchangeRate, &e.ShopName, &e.ProductDescription, &e.Category, &e.PaymentMethod,
		&tags, &e.PurchaseDate, &e.CreatedBy, &recurringID, &e.CreationMethod,
		&transcript, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.RecurringOccurrenceID = recurringID.String
	e.VoiceTranscript = transcript.String
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return core.Expense{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	return e, nil
}

func scanIncome(s scanner) (core.Income, error) {
	var in core.Income
	var recurringID, transcript sql.NullString
	err := s.Scan(&in.ID, &in.Amount, &in.OriginalCurrency, &in.EurAmount, &in.RsdAmount,
		&in.ExchangeRate, &in.Source, &in.Description, &in.IncomeType, &in.DateReceived,
		&in.CreatedBy, &recurringID, &in.CreationMethod, &transcript,
		&in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return core.Income{}, err
	}
	in.RecurringOccurrenceID = recurringID.String
	in.VoiceTranscript = transcript.String
	return in, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
