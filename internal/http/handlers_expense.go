package http

import (
	"net/http"

	"troskovi/internal/core"
	"troskovi/internal/services"
)

type createExpenseRequest struct {
	Amount             float64       `json:"amount"`
	Currency           core.Currency `json:"currency"`
	ShopName           string        `json:"shopName"`
	ProductDescription string        `json:"productDescription"`
	Category           string        `json:"category"`
	PaymentMethod      string        `json:"paymentMethod"`
	Tags               []string      `json:"tags"`
	PurchaseDate       apiDate       `json:"purchaseDate"`
	CreatedBy          string        `json:"createdBy"`
}

type updateExpenseRequest struct {
	Amount             *float64       `json:"amount"`
	Currency           *core.Currency `json:"currency"`
	ShopName           *string        `json:"shopName"`
	ProductDescription *string        `json:"productDescription"`
	Category           *string        `json:"category"`
	PaymentMethod      *string        `json:"paymentMethod"`
	Tags               *[]string      `json:"tags"`
	PurchaseDate       *apiDate       `json:"purchaseDate"`
	CreatedBy          *string        `json:"createdBy"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	e, err := s.expenses.Create(r.Context(), services.CreateExpenseInput{
		Amount:             req.Amount,
		Currency:           req.Currency,
		ShopName:           req.ShopName,
		ProductDescription: req.ProductDescription,
		Category:           req.Category,
		PaymentMethod:      req.PaymentMethod,
		Tags:               req.Tags,
		PurchaseDate:       req.PurchaseDate.Time,
		CreatedBy:          req.CreatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.autocomplete.Invalidate()
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := core.ExpenseQuery{
		Category:  r.URL.Query().Get("category"),
		ShopName:  r.URL.Query().Get("shopName"),
		CreatedBy: r.URL.Query().Get("createdBy"),
		SortBy:    r.URL.Query().Get("sortBy"),
		SortOrder: r.URL.Query().Get("sortOrder"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}

	var err error
	if q.StartDate, err = queryDate(r, "startDate"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if q.EndDate, err = queryDate(r, "endDate"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	items, pagination, err := s.expenses.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, Pagination: pagination})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	upd := core.ExpenseUpdate{
		Amount:             req.Amount,
		Currency:           req.Currency,
		ShopName:           req.ShopName,
		ProductDescription: req.ProductDescription,
		Category:           req.Category,
		PaymentMethod:      req.PaymentMethod,
		Tags:               req.Tags,
		CreatedBy:          req.CreatedBy,
	}
	if req.PurchaseDate != nil {
		upd.PurchaseDate = &req.PurchaseDate.Time
	}

	e, err := s.expenses.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.autocomplete.Invalidate()
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.autocomplete.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
