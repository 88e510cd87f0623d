package core

import (
	"errors"
	"strings"
	"time"
)

const (
	EUR Currency = "EUR"
	RSD Currency = "RSD"
)

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

const (
	OccurrenceIncome  OccurrenceType = "income"
	OccurrenceExpense OccurrenceType = "expense"
)

const (
	CreatedManually  CreationMethod = "manual"
	CreatedByVoice   CreationMethod = "voice"
	CreatedByRecurer CreationMethod = "auto"
)

type (
	Currency       string
	Frequency      string
	OccurrenceType string
	CreationMethod string

	// Expense is a single purchase record. Both currency amounts are
	// snapshotted at creation together with the rate used.
	Expense struct {
		ID                    string         `json:"id"`
		Amount                float64        `json:"amount"`
		OriginalCurrency      Currency       `json:"originalCurrency"`
		EurAmount             float64        `json:"eurAmount"`
		RsdAmount             float64        `json:"rsdAmount"`
		ExchangeRate          float64        `json:"exchangeRate"`
		ShopName              string         `json:"shopName"`
		ProductDescription    string         `json:"productDescription"`
		Category              string         `json:"category"`
		PaymentMethod         string         `json:"paymentMethod"`
		Tags                  []string       `json:"tags"`
		PurchaseDate          time.Time      `json:"purchaseDate"`
		CreatedBy             string         `json:"createdBy"`
		RecurringOccurrenceID string         `json:"recurringOccurrenceId,omitempty"`
		CreationMethod        CreationMethod `json:"creationMethod"`
		VoiceTranscript       string         `json:"voiceTranscript,omitempty"`
		CreatedAt             time.Time      `json:"createdAt"`
		UpdatedAt             time.Time      `json:"updatedAt"`
	}

	// Income mirrors Expense for money coming in.
	Income struct {
		ID                    string         `json:"id"`
		Amount                float64        `json:"amount"`
		OriginalCurrency      Currency       `json:"originalCurrency"`
		EurAmount             float64        `json:"eurAmount"`
		RsdAmount             float64        `json:"rsdAmount"`
		ExchangeRate          float64        `json:"exchangeRate"`
		Source                string         `json:"source"`
		Description           string         `json:"description"`
		IncomeType            string         `json:"incomeType"`
		DateReceived          time.Time      `json:"dateReceived"`
		CreatedBy             string         `json:"createdBy"`
		RecurringOccurrenceID string         `json:"recurringOccurrenceId,omitempty"`
		CreationMethod        CreationMethod `json:"creationMethod"`
		VoiceTranscript       string         `json:"voiceTranscript,omitempty"`
		CreatedAt             time.Time      `json:"createdAt"`
		UpdatedAt             time.Time      `json:"updatedAt"`
	}

	// IncomeTemplate holds the income-only fields of a recurring template.
	IncomeTemplate struct {
		Source     string `json:"source"`
		IncomeType string `json:"incomeType"`
	}

	// ExpenseTemplate holds the expense-only fields of a recurring template.
	ExpenseTemplate struct {
		Category string `json:"expenseCategory"`
		Store    string `json:"store"`
	}

	// RecurringOccurrence is a standing rule that periodically produces a
	// concrete expense or income record. Exactly one of Income/Expense is
	// set, matching Type. NextOccurrenceDate is the only scheduling state
	// and is owned by the recurring processor once the template exists.
	RecurringOccurrence struct {
		ID                 string           `json:"id"`
		Type               OccurrenceType   `json:"occurrenceType"`
		Amount             float64          `json:"amount"`
		OriginalCurrency   Currency         `json:"originalCurrency"`
		Description        string           `json:"description"`
		CreatedBy          string           `json:"createdBy"`
		Income             *IncomeTemplate  `json:"income,omitempty"`
		Expense            *ExpenseTemplate `json:"expense,omitempty"`
		Frequency          Frequency        `json:"frequency"`
		RecurringAt        string           `json:"recurringAt,omitempty"`
		RecurringUntil     *time.Time       `json:"recurringUntil,omitempty"`
		NextOccurrenceDate time.Time        `json:"nextOccurrenceDate"`
		IsActive           bool             `json:"isActive"`
		CreatedAt          time.Time        `json:"createdAt"`
		UpdatedAt          time.Time        `json:"updatedAt"`
	}
)

var (
	ErrNotFound              = errors.New("record not found")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidCurrency       = errors.New("currency must be EUR or RSD")
	ErrEmptyShopName         = errors.New("shop name cannot be empty")
	ErrEmptySource           = errors.New("source cannot be empty")
	ErrEmptyCreatedBy        = errors.New("created by cannot be empty")
	ErrInvalidIncomeType     = errors.New("invalid income type")
	ErrInvalidFrequency      = errors.New("invalid frequency")
	ErrInvalidOccurrence     = errors.New("occurrence type must be income or expense")
	ErrMissingTemplateBranch = errors.New("template fields must match the occurrence type")
	ErrZeroDate              = errors.New("date cannot be zero")
)

// IncomeTypes is the closed set of accepted income classifications.
var IncomeTypes = []string{"Salary", "Freelance", "Investment", "Gift", "Other"}

func (c Currency) Valid() bool {
	return c == EUR || c == RSD
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

func (t OccurrenceType) Valid() bool {
	return t == OccurrenceIncome || t == OccurrenceExpense
}

func ValidIncomeType(s string) bool {
	for _, t := range IncomeTypes {
		if t == s {
			return true
		}
	}
	return false
}

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.OriginalCurrency.Valid() {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(e.ShopName) == "" {
		return ErrEmptyShopName
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		return ErrEmptyCreatedBy
	}
	if e.PurchaseDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (i Income) Validate() error {
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !i.OriginalCurrency.Valid() {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if !ValidIncomeType(i.IncomeType) {
		return ErrInvalidIncomeType
	}
	if strings.TrimSpace(i.CreatedBy) == "" {
		return ErrEmptyCreatedBy
	}
	if i.DateReceived.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (o RecurringOccurrence) Validate() error {
	if !o.Type.Valid() {
		return ErrInvalidOccurrence
	}
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !o.OriginalCurrency.Valid() {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(o.CreatedBy) == "" {
		return ErrEmptyCreatedBy
	}
	if !o.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if o.NextOccurrenceDate.IsZero() {
		return ErrZeroDate
	}

	// Exactly one branch, and it must match the declared type.
	switch o.Type {
	case OccurrenceIncome:
		if o.Income == nil || o.Expense != nil {
			return ErrMissingTemplateBranch
		}
		if o.Income.IncomeType != "" && !ValidIncomeType(o.Income.IncomeType) {
			return ErrInvalidIncomeType
		}
	case OccurrenceExpense:
		if o.Expense == nil || o.Income != nil {
			return ErrMissingTemplateBranch
		}
	}
	return nil
}
