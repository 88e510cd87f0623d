package http

import (
	"context"
	"net/http"

	"troskovi/internal/core"
)

func (s *Server) handleAutocompleteShops(w http.ResponseWriter, r *http.Request) {
	s.suggest(w, r, s.autocomplete.Shops)
}

func (s *Server) handleAutocompleteProducts(w http.ResponseWriter, r *http.Request) {
	s.suggest(w, r, s.autocomplete.Products)
}

func (s *Server) handleAutocompleteCategories(w http.ResponseWriter, r *http.Request) {
	s.suggest(w, r, s.autocomplete.Categories)
}

func (s *Server) handleAutocompleteTags(w http.ResponseWriter, r *http.Request) {
	s.suggest(w, r, s.autocomplete.Tags)
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) ([]core.Suggestion, error)) {
	suggestions, err := fn(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []core.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}
