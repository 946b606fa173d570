// Package server exposes extraction over HTTP: POST a video URL, get the
// transcript text back as a download.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/streamscribe/horosafe"
	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
	"github.com/hazyhaar/streamscribe/transcript/internal/document"
	"github.com/hazyhaar/streamscribe/transcript/internal/trigger"
)

// maxRequestBody caps POST /extract bodies.
const maxRequestBody = 16 << 10

// Runner performs one extraction at a time.
type Runner interface {
	Extract(ctx context.Context, pageURL string) (*document.Document, []byte, error)
	Running() bool
}

// Config configures the HTTP surface.
type Config struct {
	// RunTimeout bounds a single extraction. Zero = no limit beyond the
	// request context.
	RunTimeout time.Duration
	Logger     *slog.Logger
}

// Server routes HTTP requests to a Runner.
type Server struct {
	runner Runner
	cfg    Config
	router chi.Router
}

// New builds the router.
func New(runner Runner, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{runner: runner, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(headToGet)
	r.Use(securityHeaders)
	r.Use(requestLogger(cfg.Logger))

	r.Get("/health", s.handleHealth)
	r.Post("/extract", s.handleExtract)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.cfg.Logger.Info("server: listening", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "running": s.runner.Running()})
}

type extractRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, err := horosafe.LimitedReadAll(r.Body, maxRequestBody)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	var req extractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := validateURL(r.Context(), req.URL); err != nil {
		logFrom(r).Warn("server: rejected target", "url", req.URL, "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	doc, body, err := s.runner.Extract(ctx, req.URL)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			logFrom(r).Error("server: extract failed", "url", req.URL, "error", err)
		}
		writeError(w, code, errors.New(trigger.FailureMessage(err)))
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename()}))
	h.Set("X-Transcript-Run-Id", doc.RunID)
	h.Set("X-Transcript-Entries", strconv.Itoa(len(doc.Entries)))
	h.Set("X-Transcript-Partial", strconv.FormatBool(doc.Partial))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// validateURL refuses anything Chrome should not be sent to: the browser
// may hold the user's SharePoint session.
func validateURL(ctx context.Context, raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	if err := horosafe.ValidateURL(ctx, raw); err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, trigger.ErrBusy):
		return http.StatusConflict
	case collect.IsMissing(err):
		return http.StatusNotFound
	case collect.IsEmpty(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
