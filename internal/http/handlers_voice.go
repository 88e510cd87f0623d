package http

import (
	"net/http"
)

type voiceParseRequest struct {
	Transcript string `json:"transcript"`
	CreatedBy  string `json:"createdBy"`
}

func (s *Server) handleVoiceParse(w http.ResponseWriter, r *http.Request) {
	if s.voiceParser == nil {
		writeJSON(w, http.StatusServiceUnavailable,
			errorResponse{Error: "voice parsing is not configured"})
		return
	}

	var req voiceParseRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rec, err := s.voiceParser.Parse(r.Context(), req.Transcript, req.CreatedBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rec.Expense != nil {
		s.autocomplete.Invalidate()
	}
	writeJSON(w, http.StatusCreated, rec)
}
