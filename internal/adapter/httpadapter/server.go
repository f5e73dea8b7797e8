// Package httpadapter exposes health, readiness, metrics, and
// window-document polling endpoints. The orchestration layer polls
// /windows while a run is in progress and reads documents in order.
package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/report"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// DocumentIndex lists and serves emitted window documents.
type DocumentIndex interface {
	Emitted() []report.Emitted
	Payload(windowID int) ([]byte, bool)
}

// Server wraps the run's HTTP surface.
type Server struct {
	httpServer *http.Server
	docs       DocumentIndex
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /windows, and /windows/{id} routes.
func NewServer(addr string, ready ReadinessChecker, docs DocumentIndex, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		docs:   docs,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /windows", s.handleWindows)
	mux.HandleFunc("GET /windows/{id}", s.handleWindow)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleWindows lists emitted documents in window order, so a poller can
// tell how far the run has progressed.
func (s *Server) handleWindows(w http.ResponseWriter, _ *http.Request) {
	emitted := s.docs.Emitted()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(emitted),
		"windows": emitted,
	})
}

// handleWindow serves one emitted window document verbatim.
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "window id must be an integer"})
		return
	}
	payload, ok := s.docs.Payload(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "window not emitted yet"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload) //nolint:errcheck // best-effort response
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
