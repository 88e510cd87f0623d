package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"troskovi/internal/services"
	"troskovi/internal/voice"
)

// Server exposes the finance API over HTTP.
type Server struct {
	http.Server

	expenses     *services.ExpenseService
	incomes      *services.IncomeService
	recurring    *services.RecurringService
	autocomplete *services.AutocompleteService
	voiceParser  *voice.Parser

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Deps carries the services the server routes to. VoiceParser may be nil when
// no model API key is configured; the voice endpoint then answers 503.
type Deps struct {
	Expenses     *services.ExpenseService
	Incomes      *services.IncomeService
	Recurring    *services.RecurringService
	Autocomplete *services.AutocompleteService
	VoiceParser  *voice.Parser
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		expenses:     deps.Expenses,
		incomes:      deps.Incomes,
		recurring:    deps.Recurring,
		autocomplete: deps.Autocomplete,
		voiceParser:  deps.VoiceParser,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /expenses", s.with(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.with(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/{id}", s.with(s.handleGetExpense))
	mux.HandleFunc("PATCH /expenses/{id}", s.with(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.with(s.handleDeleteExpense))

	mux.HandleFunc("POST /incomes", s.with(s.handleCreateIncome))
	mux.HandleFunc("GET /incomes", s.with(s.handleListIncomes))
	mux.HandleFunc("GET /incomes/{id}", s.with(s.handleGetIncome))
	mux.HandleFunc("PATCH /incomes/{id}", s.with(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /incomes/{id}", s.with(s.handleDeleteIncome))

	mux.HandleFunc("POST /recurring-occurrences", s.with(s.handleCreateOccurrence))
	mux.HandleFunc("GET /recurring-occurrences", s.with(s.handleListOccurrences))
	mux.HandleFunc("GET /recurring-occurrences/{id}", s.with(s.handleGetOccurrence))
	mux.HandleFunc("PATCH /recurring-occurrences/{id}", s.with(s.handleUpdateOccurrence))
	mux.HandleFunc("DELETE /recurring-occurrences/{id}", s.with(s.handleDeleteOccurrence))
	mux.HandleFunc("POST /recurring-occurrences/{id}/deactivate", s.with(s.handleDeactivateOccurrence))

	mux.HandleFunc("GET /autocomplete/shops", s.with(s.handleAutocompleteShops))
	mux.HandleFunc("GET /autocomplete/products", s.with(s.handleAutocompleteProducts))
	mux.HandleFunc("GET /autocomplete/categories", s.with(s.handleAutocompleteCategories))
	mux.HandleFunc("GET /autocomplete/tags", s.with(s.handleAutocompleteTags))

	mux.HandleFunc("POST /voice/parse", s.with(s.handleVoiceParse))

	return s
}

// with wraps a handler with request logging, security headers and rate
// limiting on mutating requests.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := r.Context()
		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
