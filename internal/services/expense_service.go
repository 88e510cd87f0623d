package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"troskovi/internal/amqp"
	"troskovi/internal/category"
	"troskovi/internal/core"
	"troskovi/internal/currency"
)

// ExpenseService validates, enriches and persists expense records.
type ExpenseService struct {
	store     ExpenseStore
	converter *currency.Converter
	publisher EventPublisher
}

func NewExpenseService(store ExpenseStore, converter *currency.Converter, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		converter: converter,
		publisher: publisher,
	}
}

// CreateExpenseInput carries the caller-supplied fields. Optional fields left
// empty are defaulted before persistence.
type CreateExpenseInput struct {
	Amount                float64
	Currency              core.Currency
	ShopName              string
	ProductDescription    string
	Category              string
	PaymentMethod         string
	Tags                  []string
	PurchaseDate          time.Time
	CreatedBy             string
	RecurringOccurrenceID string
	CreationMethod        core.CreationMethod
	VoiceTranscript       string
}

// Create fills defaults for optional fields, snapshots both currency amounts
// and stores the record. Nothing is persisted when validation fails.
func (s *ExpenseService) Create(ctx context.Context, in CreateExpenseInput) (core.Expense, error) {
	description := in.ProductDescription
	if description == "" {
		description = fmt.Sprintf("Purchase at %s", in.ShopName)
	}

	cat := in.Category
	if cat == "" {
		cat = category.Infer(in.ShopName)
	}
	if cat == "" {
		cat = category.DefaultCategory
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "Card"
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	method := in.CreationMethod
	if method == "" {
		method = core.CreatedManually
	}

	conv, err := s.converter.Convert(in.Amount, in.Currency)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		Amount:                in.Amount,
		OriginalCurrency:      in.Currency,
		EurAmount:             conv.EurAmount,
		RsdAmount:             conv.RsdAmount,
		ExchangeRate:          conv.ExchangeRate,
		ShopName:              in.ShopName,
		ProductDescription:    description,
		Category:              cat,
		PaymentMethod:         paymentMethod,
		Tags:                  tags,
		PurchaseDate:          in.PurchaseDate,
		CreatedBy:             in.CreatedBy,
		RecurringOccurrenceID: in.RecurringOccurrenceID,
		CreationMethod:        method,
		VoiceTranscript:       in.VoiceTranscript,
	}

	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	stored, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, stored.ID)
	return stored, nil
}

// Update applies a partial patch. Both currency amounts are recomputed at the
// current rate only when amount or currency is part of the patch; every other
// provided field is shallow-merged and absent fields stay untouched.
func (s *ExpenseService) Update(ctx context.Context, id string, upd core.ExpenseUpdate) (core.Expense, error) {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}

	if upd.Amount != nil || upd.Currency != nil {
		amount := existing.Amount
		if upd.Amount != nil {
			amount = *upd.Amount
		}
		cur := existing.OriginalCurrency
		if upd.Currency != nil {
			cur = *upd.Currency
		}

		conv, err := s.converter.Convert(amount, cur)
		if err != nil {
			return core.Expense{}, err
		}
		existing.Amount = amount
		existing.OriginalCurrency = cur
		existing.EurAmount = conv.EurAmount
		existing.RsdAmount = conv.RsdAmount
		existing.ExchangeRate = conv.ExchangeRate
	}

	if upd.ShopName != nil {
		existing.ShopName = *upd.ShopName
	}
	if upd.ProductDescription != nil {
		existing.ProductDescription = *upd.ProductDescription
	}
	if upd.Category != nil {
		existing.Category = *upd.Category
	}
	if upd.PaymentMethod != nil {
		existing.PaymentMethod = *upd.PaymentMethod
	}
	if upd.Tags != nil {
		existing.Tags = *upd.Tags
	}
	if upd.PurchaseDate != nil {
		existing.PurchaseDate = *upd.PurchaseDate
	}
	if upd.CreatedBy != nil {
		existing.CreatedBy = *upd.CreatedBy
	}

	if err := existing.Validate(); err != nil {
		return core.Expense{}, err
	}

	return s.store.UpdateExpense(ctx, existing)
}

// Get returns a single expense.
func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// List returns a filtered, sorted page of expenses with pagination metadata.
func (s *ExpenseService) List(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, core.Pagination, error) {
	q.Defaults()
	items, total, err := s.store.ListExpenses(ctx, q)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return items, core.PageOf(q.Page, q.Limit, total), nil
}

// Delete removes an expense by id.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteExpense(ctx, id)
}

func (s *ExpenseService) publish(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, amqp.RecordExpense, id); err != nil {
		// Sync is best effort; the record is already saved locally.
		slog.ErrorContext(ctx, "Failed to publish expense sync message", "id", id, "error", err)
	}
}
