// Package server exposes the health service as a JSON HTTP API. It is also
// the remote end that other devices replay their offline actions against.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"healthtrack/internal/health"
	"healthtrack/internal/reminders"
)

const maxBodyBytes = 10 << 20

// ReminderSource lists today's reminders. *reminders.Scheduler satisfies it.
type ReminderSource interface {
	Today() ([]reminders.Reminder, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	svc       *health.Service
	reminders ReminderSource
	logger    health.Logger
}

func New(svc *health.Service, rem ReminderSource, logger health.Logger) *Server {
	return &Server{svc: svc, reminders: rem, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/medications", func(r chi.Router) {
			r.Get("/", s.listMedications)
			r.Post("/", s.addMedication)
			r.Get("/{id}", s.getMedication)
			r.Patch("/{id}", s.updateMedication)
			r.Delete("/{id}", s.deleteMedication)
			r.Post("/{id}/taken", s.markTaken)
			r.Get("/{id}/warnings", s.medicationWarnings)
		})
		r.Get("/vitals", s.listVitals)
		r.Post("/vitals", s.addVital)
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", s.listAppointments)
			r.Post("/", s.bookAppointment)
			r.Patch("/{id}", s.updateAppointment)
			r.Delete("/{id}", s.deleteAppointment)
		})
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.listContacts)
			r.Post("/", s.addContact)
			r.Patch("/{id}", s.updateContact)
			r.Delete("/{id}", s.deleteContact)
		})
		r.Get("/history", s.listHistory)
		r.Get("/warnings", s.listWarnings)
		r.Get("/analytics", s.analytics)
		r.Get("/report.pdf", s.reportPDF)
		r.Get("/reminders", s.listReminders)
		r.Get("/profile", s.getProfile)
		r.Patch("/profile", s.updateProfile)
		r.Get("/settings", s.getSettings)
		r.Patch("/settings", s.updateSettings)
		r.Get("/medical-id", s.getMedicalID)
		r.Patch("/medical-id", s.updateMedicalID)
		r.Get("/export", s.export)
		r.Post("/import", s.importData)
		r.Post("/actions", s.applyAction)
	})
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Truncate(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, health.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, health.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, health.ErrExists):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding request body: %w", health.ErrInvalid, err)
	}
	return nil
}
