package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"troskovi/internal/category"
	"troskovi/internal/core"
	"troskovi/internal/services"
)

var (
	ErrEmptyTranscript = errors.New("transcript cannot be empty")
	ErrUnparsable      = errors.New("could not extract a transaction from the transcript")
)

// parsedTransaction mirrors the JSON object the model is instructed to emit.
type parsedTransaction struct {
	Type               string        `json:"type"`
	Amount             float64       `json:"amount"`
	Currency           core.Currency `json:"currency"`
	Date               string        `json:"date"`
	ShopName           string        `json:"shopName"`
	ProductDescription string        `json:"productDescription"`
	Category           string        `json:"category"`
	Source             string        `json:"source"`
	Description        string        `json:"description"`
	IncomeType         string        `json:"incomeType"`
}

// Record is the persisted outcome of one parsed transcript. Exactly one of
// Expense and Income is set, matching Type.
type Record struct {
	Type    string        `json:"type"`
	Expense *core.Expense `json:"expense,omitempty"`
	Income  *core.Income  `json:"income,omitempty"`
}

// Parser turns voice transcripts into stored expense or income records.
type Parser struct {
	model    TextModel
	expenses *services.ExpenseService
	incomes  *services.IncomeService
	now      func() time.Time
}

func NewParser(model TextModel, expenses *services.ExpenseService, incomes *services.IncomeService) *Parser {
	return &Parser{
		model:    model,
		expenses: expenses,
		incomes:  incomes,
		now:      time.Now,
	}
}

// Parse sends the transcript through the model and persists the extracted
// transaction with the transcript attached for auditing.
func (p *Parser) Parse(ctx context.Context, transcript, createdBy string) (Record, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Record{}, ErrEmptyTranscript
	}

	raw, err := p.model.GenerateText(ctx, buildPrompt(transcript, p.now()))
	if err != nil {
		return Record{}, fmt.Errorf("model call: %w", err)
	}

	parsed, err := decodeTransaction(raw)
	if err != nil {
		return Record{}, err
	}

	return p.persist(ctx, parsed, transcript, createdBy)
}

// decodeTransaction strictly decodes the model output, tolerating only the
// code fences models sometimes add despite instructions.
func decodeTransaction(raw string) (parsedTransaction, error) {
	clean := stripFences(raw)

	var parsed parsedTransaction
	dec := json.NewDecoder(strings.NewReader(clean))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return parsedTransaction{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	if parsed.Type != "expense" && parsed.Type != "income" {
		return parsedTransaction{}, fmt.Errorf("%w: unknown type %q", ErrUnparsable, parsed.Type)
	}
	if parsed.Amount <= 0 {
		return parsedTransaction{}, fmt.Errorf("%w: non-positive amount", ErrUnparsable)
	}
	if !parsed.Currency.Valid() {
		return parsedTransaction{}, fmt.Errorf("%w: unknown currency %q", ErrUnparsable, parsed.Currency)
	}
	return parsed, nil
}

func (p *Parser) persist(ctx context.Context, parsed parsedTransaction, transcript, createdBy string) (Record, error) {
	date := p.now()
	if parsed.Date != "" {
		if d, err := time.Parse("2006-01-02", parsed.Date); err == nil {
			date = d
		}
	}

	switch parsed.Type {
	case "expense":
		cat := parsed.Category
		if cat != "" && !knownCategory(cat) {
			cat = "Other"
		}
		e, err := p.expenses.Create(ctx, services.CreateExpenseInput{
			Amount:             parsed.Amount,
			Currency:           parsed.Currency,
			ShopName:           category.NormalizeShopName(parsed.ShopName),
			ProductDescription: parsed.ProductDescription,
			Category:           cat,
			PurchaseDate:       date,
			CreatedBy:          createdBy,
			CreationMethod:     core.CreatedByVoice,
			VoiceTranscript:    transcript,
		})
		if err != nil {
			return Record{}, err
		}
		return Record{Type: "expense", Expense: &e}, nil
	default:
		incomeType := parsed.IncomeType
		if !core.ValidIncomeType(incomeType) {
			incomeType = "Other"
		}
		in, err := p.incomes.Create(ctx, services.CreateIncomeInput{
			Amount:          parsed.Amount,
			Currency:        parsed.Currency,
			Source:          parsed.Source,
			Description:     parsed.Description,
			IncomeType:      incomeType,
			DateReceived:    date,
			CreatedBy:       createdBy,
			CreationMethod:  core.CreatedByVoice,
			VoiceTranscript: transcript,
		})
		if err != nil {
			return Record{}, err
		}
		return Record{Type: "income", Income: &in}, nil
	}
}

func knownCategory(cat string) bool {
	for _, c := range category.ExpenseCategories {
		if c == cat {
			return true
		}
	}
	return false
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
