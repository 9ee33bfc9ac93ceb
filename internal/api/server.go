// Package api is the HTTP sync server the remote client talks to. Each user's
// data lives in its own key namespace of a shared storage backend.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/streak"
	"github.com/julianstephens/topthree/internal/utils"
	"github.com/julianstephens/topthree/internal/validation"
)

// Server holds the handlers' shared state.
type Server struct {
	kv  storage.KV
	log *log.Logger

	// mu serializes read-modify-write of histories and submissions.
	mu sync.Mutex
}

// NewServer returns the sync API router. tokens maps bearer token to user ID.
func NewServer(kv storage.KV, tokens map[string]string, l *log.Logger) *chi.Mux {
	return NewServerWithResolver(kv, StaticTokens(tokens), l)
}

// NewServerWithResolver is NewServer with a custom token resolver.
func NewServerWithResolver(kv storage.KV, resolver UserResolver, l *log.Logger) *chi.Mux {
	if l == nil {
		l = logger.With("component", "api")
	}
	srv := &Server{kv: kv, log: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(srv.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)

	r.Route(constants.APIPrefix, func(r chi.Router) {
		r.Use(AuthMiddleware(resolver))
		r.Get("/today", srv.handleGetToday)
		r.Put("/today", srv.handlePutToday)
		r.Get("/stats", srv.handleStats)
		r.Post("/submit", srv.handleSubmit)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) records(r *http.Request) (*storage.DailyRecordStore, error) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == "" {
		return nil, ErrUnauthorized
	}
	prefix := constants.UserNamespacePrefix + user + ":"
	return storage.NewDailyRecordStore(storage.Namespaced(s.kv, prefix), s.log.With("user", user)), nil
}

// dateParam returns the validated date query parameter.
func dateParam(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if !utils.ValidateDateKey(date) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	store, err := s.records(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	rec, ok := store.LoadHistory()[date]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "no record for "+date, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutToday(w http.ResponseWriter, r *http.Request) {
	store, err := s.records(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var rec models.DailyRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&rec); err != nil {
		http.Error(w, "invalid record body", http.StatusBadRequest)
		return
	}

	key := r.URL.Query().Get("date")
	if key == "" {
		key = rec.Date
	}
	if result := validation.ValidateRecord(key, rec); result.Blocking() {
		http.Error(w, result.FormatReport(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	history := store.LoadHistory()
	history[key] = rec
	err = store.SaveHistory(history)
	s.mu.Unlock()

	if err != nil {
		s.log.Error("Failed to save record", "date", key, "error", err)
		http.Error(w, "failed to save record", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	store, err := s.records(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// The client's date key is authoritative; compute on that calendar day.
	day, _ := utils.ParseDateInLocation(date, time.UTC)

	s.mu.Lock()
	history := store.LoadHistory()
	s.mu.Unlock()

	// No history yet, so the client keeps deriving from its own.
	if len(history) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, streak.ComputeStats(history, day))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	store, err := s.records(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sub, err := s.submit(store, date)
	if errors.Is(err, cerrors.ErrSubmissionConflict) {
		writeJSON(w, http.StatusConflict, sub)
		return
	}
	if err != nil {
		s.log.Error("Failed to save submission", "date", date, "error", err)
		http.Error(w, "failed to save submission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// submit records a submission for date, or returns the existing one with
// ErrSubmissionConflict.
func (s *Server) submit(store *storage.DailyRecordStore, date string) (models.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := store.LoadSubmission(date); existing != nil {
		return *existing, cerrors.ErrSubmissionConflict
	}

	sub := models.SubmissionRecord{
		ID:          uuid.NewString(),
		Date:        date,
		Submitted:   true,
		SubmittedAt: time.Now().UTC(),
	}
	if err := store.SaveSubmission(sub); err != nil {
		return sub, err
	}
	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
