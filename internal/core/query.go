package core

import "time"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

type (
	// ExpenseQuery filters and pages the expense listing. String filters are
	// exact matches; the date range is inclusive on both ends.
	ExpenseQuery struct {
		Category  string
		ShopName  string
		CreatedBy string
		StartDate *time.Time
		EndDate   *time.Time
		SortBy    string
		SortOrder string
		Page      int
		Limit     int
	}

	// IncomeQuery mirrors ExpenseQuery for incomes.
	IncomeQuery struct {
		IncomeType string
		Source     string
		CreatedBy  string
		StartDate  *time.Time
		EndDate    *time.Time
		SortBy     string
		SortOrder  string
		Page       int
		Limit      int
	}

	// Pagination describes the returned page.
	Pagination struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	}

	// ExpenseUpdate is a partial patch; nil fields are left untouched.
	ExpenseUpdate struct {
		Amount             *float64
		Currency           *Currency
		ShopName           *string
		ProductDescription *string
		Category           *string
		PaymentMethod      *string
		Tags               *[]string
		PurchaseDate       *time.Time
		CreatedBy          *string
	}

	// IncomeUpdate is a partial patch; nil fields are left untouched.
	IncomeUpdate struct {
		Amount       *float64
		Currency     *Currency
		Source       *string
		Description  *string
		IncomeType   *string
		DateReceived *time.Time
		CreatedBy    *string
	}

	// OccurrenceUpdate is a partial patch for a recurring template. The
	// recurring processor only ever sets NextOccurrenceDate or IsActive.
	OccurrenceUpdate struct {
		Amount             *float64
		Currency           *Currency
		Description        *string
		Income             *IncomeTemplate
		Expense            *ExpenseTemplate
		Frequency          *Frequency
		RecurringAt        *string
		RecurringUntil     *time.Time
		NextOccurrenceDate *time.Time
		IsActive           *bool
	}

	// Suggestion is a previously used value with its usage count.
	Suggestion struct {
		Value string `json:"value"`
		Count int    `json:"count"`
	}
)

// Defaults fills zero page/limit with the standard values.
func (q *ExpenseQuery) Defaults() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "purchaseDate"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
}

// Defaults fills zero page/limit with the standard values.
func (q *IncomeQuery) Defaults() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "dateReceived"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
}

// PageOf computes pagination metadata for a total row count.
func PageOf(page, limit, total int) Pagination {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
