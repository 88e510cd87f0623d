package http

import (
	"net/http"

	"troskovi/internal/core"
	"troskovi/internal/services"
)

type createIncomeRequest struct {
	Amount       float64       `json:"amount"`
	Currency     core.Currency `json:"currency"`
	Source       string        `json:"source"`
	Description  string        `json:"description"`
	IncomeType   string        `json:"incomeType"`
	DateReceived apiDate       `json:"dateReceived"`
	CreatedBy    string        `json:"createdBy"`
}

type updateIncomeRequest struct {
	Amount       *float64       `json:"amount"`
	Currency     *core.Currency `json:"currency"`
	Source       *string        `json:"source"`
	Description  *string        `json:"description"`
	IncomeType   *string        `json:"incomeType"`
	DateReceived *apiDate       `json:"dateReceived"`
	CreatedBy    *string        `json:"createdBy"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req createIncomeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in, err := s.incomes.Create(r.Context(), services.CreateIncomeInput{
		Amount:       req.Amount,
		Currency:     req.Currency,
		Source:       req.Source,
		Description:  req.Description,
		IncomeType:   req.IncomeType,
		DateReceived: req.DateReceived.Time,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	q := core.IncomeQuery{
		IncomeType: r.URL.Query().Get("incomeType"),
		Source:     r.URL.Query().Get("source"),
		CreatedBy:  r.URL.Query().Get("createdBy"),
		SortBy:     r.URL.Query().Get("sortBy"),
		SortOrder:  r.URL.Query().Get("sortOrder"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
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

	items, pagination, err := s.incomes.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Income{}
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, Pagination: pagination})
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	in, err := s.incomes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req updateIncomeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	upd := core.IncomeUpdate{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Source:      req.Source,
		Description: req.Description,
		IncomeType:  req.IncomeType,
		CreatedBy:   req.CreatedBy,
	}
	if req.DateReceived != nil {
		upd.DateReceived = &req.DateReceived.Time
	}

	in, err := s.incomes.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.incomes.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
