// Package http exposes a running store over HTTP: snapshots, text commands and
// a server-sent event stream of committed states.
package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/middleware"
	"github.com/go-chi/chi/v5"
)

// Parser turns one line of text into an action.
type Parser func(line string) (domain.Action, error)

// Server serves a store through a non-owning handle.
type Server[S any] struct {
	Store   middleware.Handle[S, domain.Action]
	Parse   Parser
	Stream  *Stream[S]
	logger  *slog.Logger
	version string
	buffer  int
}

// Option configures the handler.
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	version string
	metrics http.Handler
	buffer  int
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(version string) Option {
	return func(s *settings) {
		s.version = strings.TrimSpace(version)
	}
}

// WithMetrics mounts h under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *settings) {
		s.metrics = h
	}
}

// WithEventBuffer sets how many states a slow SSE client may lag behind.
func WithEventBuffer(n int) Option {
	return func(s *settings) {
		s.buffer = n
	}
}

// NewHandler creates the HTTP handler for store. A nil stream disables /events.
func NewHandler[S any](store middleware.Handle[S, domain.Action], parse Parser, stream *Stream[S], opts ...Option) http.Handler {
	cfg := settings{logger: slog.Default(), version: "dev", buffer: 16}
	for _, opt := range opts {
		opt(&cfg)
	}
	server := &Server[S]{
		Store:   store,
		Parse:   parse,
		Stream:  stream,
		logger:  cfg.logger,
		version: cfg.version,
		buffer:  cfg.buffer,
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/state", server.GetState)
	r.Post("/actions", server.PostActions)
	if stream != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health. It reports 503 once the store is gone.
func (s *Server[S]) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if _, ok := s.Store.State(); !ok {
		status, code = "closed", http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]string{"status": status})
}

// GetInfo handles GET /info.
func (s *Server[S]) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "weave-http",
		"version": s.version,
	})
}

// GetState handles GET /state.
func (s *Server[S]) GetState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.Store.State()
	if !ok {
		http.Error(w, "store closed", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// PostActions handles POST /actions. The body holds one command per line;
// every line is parsed before any is dispatched.
func (s *Server[S]) PostActions(w http.ResponseWriter, r *http.Request) {
	var actions []domain.Action
	sc := bufio.NewScanner(r.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		a, err := s.Parse(line)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid command %q: %v", line, err), http.StatusBadRequest)
			s.logger.Warn("PostActions: command rejected", "line", line, "err", err)
			return
		}
		actions = append(actions, a)
	}
	if err := sc.Err(); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostActions: invalid request body", "err", err)
		return
	}
	if _, ok := s.Store.State(); !ok {
		http.Error(w, "store closed", http.StatusServiceUnavailable)
		return
	}

	kinds := make([]string, len(actions))
	for i, a := range actions {
		s.Store.Dispatch(a)
		kinds[i] = domain.Kind(a)
	}
	s.writeJSON(w, http.StatusAccepted, map[string]any{"accepted": kinds})
}

// SubscribeEvents handles GET /events (SSE). The current state is sent first,
// then every committed state until the client disconnects.
func (s *Server[S]) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	states, cancel := s.Stream.Subscribe(s.buffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if err := s.writeEvent(w, s.Stream.Current()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case st := <-states:
			if err := s.writeEvent(w, st); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server[S]) writeEvent(w http.ResponseWriter, st S) error {
	data, err := json.Marshal(st)
	if err != nil {
		s.logger.Error("SSE: state encode failed", "err", err)
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}

func (s *Server[S]) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
