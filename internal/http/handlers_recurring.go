package http

import (
	"net/http"
	"time"

	"troskovi/internal/core"
	"troskovi/internal/services"
)

type createOccurrenceRequest struct {
	Type            core.OccurrenceType `json:"occurrenceType"`
	Amount          float64             `json:"amount"`
	Currency        core.Currency       `json:"currency"`
	Description     string              `json:"description"`
	CreatedBy       string              `json:"createdBy"`
	Frequency       core.Frequency      `json:"frequency"`
	StartDate       apiDate             `json:"startDate"`
	RecurringAt     string              `json:"recurringAt"`
	RecurringUntil  *apiDate            `json:"recurringUntil"`
	Source          string              `json:"source"`
	IncomeType      string              `json:"incomeType"`
	ExpenseCategory string              `json:"expenseCategory"`
	Store           string              `json:"store"`
}

type updateOccurrenceRequest struct {
	Amount             *float64        `json:"amount"`
	Currency           *core.Currency  `json:"currency"`
	Description        *string         `json:"description"`
	Frequency          *core.Frequency `json:"frequency"`
	RecurringAt        *string         `json:"recurringAt"`
	RecurringUntil     *apiDate        `json:"recurringUntil"`
	NextOccurrenceDate *apiDate        `json:"nextOccurrenceDate"`
	IsActive           *bool           `json:"isActive"`
	Source             *string         `json:"source"`
	IncomeType         *string         `json:"incomeType"`
	ExpenseCategory    *string         `json:"expenseCategory"`
	Store              *string         `json:"store"`
}

// occurrenceResponse flattens the template branch into top-level fields, the
// shape clients already consume.
type occurrenceResponse struct {
	ID                 string              `json:"id"`
	OccurrenceType     core.OccurrenceType `json:"occurrenceType"`
	Amount             float64             `json:"amount"`
	OriginalCurrency   core.Currency       `json:"originalCurrency"`
	Description        string              `json:"description"`
	CreatedBy          string              `json:"createdBy"`
	Frequency          core.Frequency      `json:"frequency"`
	RecurringAt        string              `json:"recurringAt,omitempty"`
	RecurringUntil     *time.Time          `json:"recurringUntil,omitempty"`
	NextOccurrenceDate time.Time           `json:"nextOccurrenceDate"`
	IsActive           bool                `json:"isActive"`
	Source             string              `json:"source,omitempty"`
	IncomeType         string              `json:"incomeType,omitempty"`
	ExpenseCategory    string              `json:"expenseCategory,omitempty"`
	Store              string              `json:"store,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func toOccurrenceResponse(o core.RecurringOccurrence) occurrenceResponse {
	resp := occurrenceResponse{
		ID:                 o.ID,
		OccurrenceType:     o.Type,
		Amount:             o.Amount,
		OriginalCurrency:   o.OriginalCurrency,
		Description:        o.Description,
		CreatedBy:          o.CreatedBy,
		Frequency:          o.Frequency,
		RecurringAt:        o.RecurringAt,
		RecurringUntil:     o.RecurringUntil,
		NextOccurrenceDate: o.NextOccurrenceDate,
		IsActive:           o.IsActive,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if o.Income != nil {
		resp.Source = o.Income.Source
		resp.IncomeType = o.Income.IncomeType
	}
	if o.Expense != nil {
		resp.ExpenseCategory = o.Expense.Category
		resp.Store = o.Expense.Store
	}
	return resp
}

func (s *Server) handleCreateOccurrence(w http.ResponseWriter, r *http.Request) {
	var req createOccurrenceRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in := services.CreateOccurrenceInput{
		Type:            req.Type,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Description:     req.Description,
		CreatedBy:       req.CreatedBy,
		Frequency:       req.Frequency,
		StartDate:       req.StartDate.Time,
		RecurringAt:     req.RecurringAt,
		Source:          req.Source,
		IncomeType:      req.IncomeType,
		ExpenseCategory: req.ExpenseCategory,
		Store:           req.Store,
	}
	if req.RecurringUntil != nil {
		in.RecurringUntil = &req.RecurringUntil.Time
	}

	o, err := s.recurring.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOccurrenceResponse(o))
}

func (s *Server) handleListOccurrences(w http.ResponseWriter, r *http.Request) {
	items, err := s.recurring.List(r.Context(), r.URL.Query().Get("createdBy"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]occurrenceResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOccurrenceResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOccurrence(w http.ResponseWriter, r *http.Request) {
	o, err := s.recurring.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceResponse(o))
}

func (s *Server) handleUpdateOccurrence(w http.ResponseWriter, r *http.Request) {
	var req updateOccurrenceRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	upd := core.OccurrenceUpdate{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Frequency:   req.Frequency,
		RecurringAt: req.RecurringAt,
		IsActive:    req.IsActive,
	}
	if req.RecurringUntil != nil {
		upd.RecurringUntil = &req.RecurringUntil.Time
	}
	if req.NextOccurrenceDate != nil {
		upd.NextOccurrenceDate = &req.NextOccurrenceDate.Time
	}
	// Branch fields merge against the stored template so patching one of
	// them does not blank its sibling.
	if req.Source != nil || req.IncomeType != nil || req.ExpenseCategory != nil || req.Store != nil {
		existing, err := s.recurring.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if req.Source != nil || req.IncomeType != nil {
			tmpl := &core.IncomeTemplate{}
			if existing.Income != nil {
				*tmpl = *existing.Income
			}
			if req.Source != nil {
				tmpl.Source = *req.Source
			}
			if req.IncomeType != nil {
				tmpl.IncomeType = *req.IncomeType
			}
			upd.Income = tmpl
		}
		if req.ExpenseCategory != nil || req.Store != nil {
			tmpl := &core.ExpenseTemplate{}
			if existing.Expense != nil {
				*tmpl = *existing.Expense
			}
			if req.ExpenseCategory != nil {
				tmpl.Category = *req.ExpenseCategory
			}
			if req.Store != nil {
				tmpl.Store = *req.Store
			}
			upd.Expense = tmpl
		}
	}

	o, err := s.recurring.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceResponse(o))
}

func (s *Server) handleDeactivateOccurrence(w http.ResponseWriter, r *http.Request) {
	o, err := s.recurring.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceResponse(o))
}

func (s *Server) handleDeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	if err := s.recurring.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
