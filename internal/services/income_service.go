package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"troskovi/internal/amqp"
	"troskovi/internal/core"
	"troskovi/internal/currency"
)

// IncomeService validates, enriches and persists income records.
type IncomeService struct {
	store     IncomeStore
	converter *currency.Converter
	publisher EventPublisher
}

func NewIncomeService(store IncomeStore, converter *currency.Converter, publisher EventPublisher) *IncomeService {
	return &IncomeService{
		store:     store,
		converter: converter,
		publisher: publisher,
	}
}

type CreateIncomeInput struct {
	Amount                float64
	Currency              core.Currency
	Source                string
	Description           string
	IncomeType            string
	DateReceived          time.Time
	CreatedBy             string
	RecurringOccurrenceID string
	CreationMethod        core.CreationMethod
	VoiceTranscript       string
}

// Create fills the default description, snapshots both currency amounts and
// stores the record.
func (s *IncomeService) Create(ctx context.Context, in CreateIncomeInput) (core.Income, error) {
	description := in.Description
	if description == "" {
		description = fmt.Sprintf("Income from %s", in.Source)
	}

	method := in.CreationMethod
	if method == "" {
		method = core.CreatedManually
	}

	conv, err := s.converter.Convert(in.Amount, in.Currency)
	if err != nil {
		return core.Income{}, err
	}

	income := core.Income{
		Amount:                in.Amount,
		OriginalCurrency:      in.Currency,
		EurAmount:             conv.EurAmount,
		RsdAmount:             conv.RsdAmount,
		ExchangeRate:          conv.ExchangeRate,
		Source:                in.Source,
		Description:           description,
		IncomeType:            in.IncomeType,
		DateReceived:          in.DateReceived,
		CreatedBy:             in.CreatedBy,
		RecurringOccurrenceID: in.RecurringOccurrenceID,
		CreationMethod:        method,
		VoiceTranscript:       in.VoiceTranscript,
	}

	if err := income.Validate(); err != nil {
		return core.Income{}, err
	}

	stored, err := s.store.CreateIncome(ctx, income)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}

	s.publish(ctx, stored.ID)
	return stored, nil
}

// Update applies a partial patch with the same currency-recompute rule as
// expenses: both amounts are re-derived at the current rate iff amount or
// currency changed in this call.
func (s *IncomeService) Update(ctx context.Context, id string, upd core.IncomeUpdate) (core.Income, error) {
	existing, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
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
			return core.Income{}, err
		}
		existing.Amount = amount
		existing.OriginalCurrency = cur
		existing.EurAmount = conv.EurAmount
		existing.RsdAmount = conv.RsdAmount
		existing.ExchangeRate = conv.ExchangeRate
	}

	if upd.Source != nil {
		existing.Source = *upd.Source
	}
	if upd.Description != nil {
		existing.Description = *upd.Description
	}
	if upd.IncomeType != nil {
		existing.IncomeType = *upd.IncomeType
	}
	if upd.DateReceived != nil {
		existing.DateReceived = *upd.DateReceived
	}
	if upd.CreatedBy != nil {
		existing.CreatedBy = *upd.CreatedBy
	}

	if err := existing.Validate(); err != nil {
		return core.Income{}, err
	}

	return s.store.UpdateIncome(ctx, existing)
}

// Get returns a single income.
func (s *IncomeService) Get(ctx context.Context, id string) (core.Income, error) {
	return s.store.GetIncome(ctx, id)
}

// List returns a filtered, sorted page of incomes with pagination metadata.
func (s *IncomeService) List(ctx context.Context, q core.IncomeQuery) ([]core.Income, core.Pagination, error) {
	q.Defaults()
	items, total, err := s.store.ListIncomes(ctx, q)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return items, core.PageOf(q.Page, q.Limit, total), nil
}

// Delete removes an income by id.
func (s *IncomeService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteIncome(ctx, id)
}

func (s *IncomeService) publish(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, amqp.RecordIncome, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish income sync message", "id", id, "error", err)
	}
}
