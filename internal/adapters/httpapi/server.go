// Package httpapi exposes the triage pipeline over HTTP: one triage
// endpoint plus per-analyzer diagnostic endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/heuristics"
)

const maxRequestBody = 1 << 20 // 1MB

// Server represents the HTTP API server
type Server struct {
	addr     string
	service  *core.TriageService
	spam     core.SpamAnalyzer
	calendar core.EventExtractor
	language core.LanguageDetector
	logger   *zap.Logger
	server   *http.Server
}

// ServerOptions holds configuration options for the HTTP API server
type ServerOptions struct {
	Addr string
}

// New creates a new HTTP API server
func New(
	service *core.TriageService,
	spam core.SpamAnalyzer,
	calendar core.EventExtractor,
	language core.LanguageDetector,
	logger *zap.Logger,
	options ServerOptions,
) *Server {
	return &Server{
		addr:     options.Addr,
		service:  service,
		spam:     spam,
		calendar: calendar,
		language: language,
		logger:   logger,
	}
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error shutting down HTTP API server", zap.Error(err))
		}
	}()

	s.logger.Info("Starting HTTP API server", zap.String("address", s.addr))
	return s.server.ListenAndServe()
}

// Routes configures all HTTP routes.
func (s *Server) Routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/triage", s.handleTriage).Methods(http.MethodPost)
	v1.HandleFunc("/analyze/spam", s.handleAnalyzeSpam).Methods(http.MethodPost)
	v1.HandleFunc("/analyze/calendar", s.handleAnalyzeCalendar).Methods(http.MethodPost)
	v1.HandleFunc("/analyze/language", s.handleAnalyzeLanguage).Methods(http.MethodPost)
	v1.HandleFunc("/analyze/tone", s.handleAnalyzeTone).Methods(http.MethodPost)

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeEmail reads and validates the request body. A nil return means
// the error response has already been written.
func (s *Server) decodeEmail(w http.ResponseWriter, r *http.Request) *core.Email {
	var email core.Email
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&email); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return nil
	}
	if err := email.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	return &email
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	email := s.decodeEmail(w, r)
	if email == nil {
		return
	}

	result, err := s.service.ProcessEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, core.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Triage failed", zap.Error(err), zap.String("sender", email.From))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeSpam(w http.ResponseWriter, r *http.Request) {
	email := s.decodeEmail(w, r)
	if email == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.spam.Detect(email))
}

func (s *Server) handleAnalyzeCalendar(w http.ResponseWriter, r *http.Request) {
	email := s.decodeEmail(w, r)
	if email == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]*core.CalendarEvent{
		"calendar_event": s.calendar.Extract(email),
	})
}

func (s *Server) handleAnalyzeLanguage(w http.ResponseWriter, r *http.Request) {
	email := s.decodeEmail(w, r)
	if email == nil {
		return
	}
	result, err := s.language.DetectLanguage(r.Context(), email)
	if err != nil {
		s.logger.Error("Language detection failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeTone(w http.ResponseWriter, r *http.Request) {
	email := s.decodeEmail(w, r)
	if email == nil {
		return
	}
	tone := heuristics.DetectTone(email.Subject, email.Body)
	writeJSON(w, http.StatusOK, map[string]string{"tone": string(tone)})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
