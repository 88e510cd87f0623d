package voice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"troskovi/internal/core"
	"troskovi/internal/currency"
	"troskovi/internal/services"
)

type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

type memExpenseStore struct {
	created []core.Expense
}

func (m *memExpenseStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	e.ID = "exp-1"
	m.created = append(m.created, e)
	return e, nil
}

func (m *memExpenseStore) GetExpense(context.Context, string) (core.Expense, error) {
	return core.Expense{}, core.ErrNotFound
}

func (m *memExpenseStore) ListExpenses(context.Context, core.ExpenseQuery) ([]core.Expense, int, error) {
	return nil, 0, nil
}

func (m *memExpenseStore) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	return e, nil
}

func (m *memExpenseStore) DeleteExpense(context.Context, string) error { return nil }

type memIncomeStore struct {
	created []core.Income
}

func (m *memIncomeStore) CreateIncome(_ context.Context, in core.Income) (core.Income, error) {
	in.ID = "inc-1"
	m.created = append(m.created, in)
	return in, nil
}

func (m *memIncomeStore) GetIncome(context.Context, string) (core.Income, error) {
	return core.Income{}, core.ErrNotFound
}

func (m *memIncomeStore) ListIncomes(context.Context, core.IncomeQuery) ([]core.Income, int, error) {
	return nil, 0, nil
}

func (m *memIncomeStore) UpdateIncome(_ context.Context, in core.Income) (core.Income, error) {
	return in, nil
}

func (m *memIncomeStore) DeleteIncome(context.Context, string) error { return nil }

func newTestParser(t *testing.T, model TextModel) (*Parser, *memExpenseStore, *memIncomeStore) {
	t.Helper()
	conv, err := currency.NewConverter(117.0)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	expStore := &memExpenseStore{}
	incStore := &memIncomeStore{}
	p := NewParser(model,
		services.NewExpenseService(expStore, conv, nil),
		services.NewIncomeService(incStore, conv, nil),
	)
	p.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return p, expStore, incStore
}

func TestParseExpenseFromTranscript(t *testing.T) {
	model := &fakeModel{response: `{
		"type": "expense",
		"amount": 2340,
		"currency": "RSD",
		"shopName": "maxi",
		"productDescription": "groceries",
		"category": "Groceries",
		"date": "2026-03-09"
	}`}
	p, expStore, _ := newTestParser(t, model)

	rec, err := p.Parse(context.Background(), "potrosio sam 2340 dinara u maksiju juce", "ana")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Type != "expense" || rec.Expense == nil {
		t.Fatalf("record = %+v, want expense branch", rec)
	}

	e := expStore.created[0]
	if e.ShopName != "Maxi" {
		t.Errorf("shopName = %q, want normalized Maxi", e.ShopName)
	}
	if e.CreationMethod != core.CreatedByVoice {
		t.Errorf("creationMethod = %q, want voice", e.CreationMethod)
	}
	if e.VoiceTranscript == "" {
		t.Error("transcript not stored on the record")
	}
	if !e.PurchaseDate.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("purchaseDate = %v, want parsed date", e.PurchaseDate)
	}
}

func TestParseIncomeCoercesUnknownIncomeType(t *testing.T) {
	model := &fakeModel{response: "```json\n" + `{
		"type": "income",
		"amount": 1500,
		"currency": "EUR",
		"source": "Acme",
		"incomeType": "Lottery"
	}` + "\n```"}
	p, _, incStore := newTestParser(t, model)

	rec, err := p.Parse(context.Background(), "primio sam platu", "ana")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Type != "income" || rec.Income == nil {
		t.Fatalf("record = %+v, want income branch", rec)
	}
	if got := incStore.created[0].IncomeType; got != "Other" {
		t.Errorf("incomeType = %q, want coerced Other", got)
	}
	// No explicit date in the response falls back to today.
	if !incStore.created[0].DateReceived.Equal(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("dateReceived = %v, want today", incStore.created[0].DateReceived)
	}
}

func TestParseRejectsBadModelOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I could not understand the sentence."},
		{"unknown type", `{"type":"transfer","amount":10,"currency":"EUR"}`},
		{"non-positive amount", `{"type":"expense","amount":0,"currency":"EUR","shopName":"Maxi"}`},
		{"unknown currency", `{"type":"expense","amount":10,"currency":"USD","shopName":"Maxi"}`},
		{"unexpected field", `{"type":"expense","amount":10,"currency":"EUR","shopName":"Maxi","surprise":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, expStore, incStore := newTestParser(t, &fakeModel{response: tt.response})
			_, err := p.Parse(context.Background(), "nesto", "ana")
			if !errors.Is(err, ErrUnparsable) {
				t.Errorf("Parse error = %v, want ErrUnparsable", err)
			}
			if len(expStore.created)+len(incStore.created) != 0 {
				t.Error("record persisted from rejected model output")
			}
		})
	}
}

func TestParseRejectsEmptyTranscript(t *testing.T) {
	p, _, _ := newTestParser(t, &fakeModel{})
	if _, err := p.Parse(context.Background(), "   ", "ana"); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("Parse error = %v, want ErrEmptyTranscript", err)
	}
}

func TestPromptEmbedsVocabulary(t *testing.T) {
	model := &fakeModel{response: `{"type":"income","amount":1,"currency":"EUR","source":"x"}`}
	p, _, _ := newTestParser(t, model)
	if _, err := p.Parse(context.Background(), "test", "ana"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, needle := range []string{"Maxi", "Groceries", "Salary", "2026-03-10"} {
		if !strings.Contains(model.prompt, needle) {
			t.Errorf("prompt missing %q", needle)
		}
	}
}
