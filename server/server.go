// Package server exposes the environment façade over REST for agent and
// dashboard collaborators.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	emucore "github.com/user-none/eblitui/api"

	"github.com/spottenn/pokemon-gym/emu"
	"github.com/spottenn/pokemon-gym/env"
	"github.com/spottenn/pokemon-gym/session"
)

// Config wires the server's collaborators.
type Config struct {
	ROM      []byte
	Factory  emucore.CoreFactory
	Sessions *session.Manager

	// Supervisor defaults to the process-wide one.
	Supervisor *emu.Supervisor

	// Headless, Sound and Streaming are the defaults for sessions
	// whose initialize request leaves them unset.
	Headless  bool
	Sound     bool
	Streaming bool

	// Timeout is the per-session wall-clock ceiling.
	Timeout time.Duration

	Logger *slog.Logger
}

// Server owns at most one live environment and translates HTTP requests
// into façade calls.
type Server struct {
	cfg Config
	log *slog.Logger

	mu  sync.Mutex
	env *env.Environment
}

// New builds a server. It does not bind a listener; use Handler with an
// http.Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Supervisor == nil {
		cfg.Supervisor = emu.Default()
	}
	return &Server{cfg: cfg, log: cfg.Logger}
}

// Handler returns the routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /initialize", s.handleInitialize)
	mux.HandleFunc("POST /action", s.handleAction)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /stop", s.handleStop)
	mux.HandleFunc("POST /save_state", s.handleSaveState)
	mux.HandleFunc("POST /load_state", s.handleLoadState)
	mux.HandleFunc("GET /evaluate", s.handleEvaluate)
	return cors(mux)
}

// Shutdown finalizes any live session. Called on graceful server exit.
func (s *Server) Shutdown(ctx context.Context) {
	s.mu.Lock()
	e := s.env
	s.env = nil
	s.mu.Unlock()
	if e != nil {
		s.log.Info("finalizing session on shutdown")
		e.Stop()
	}
}

// cors allows any origin, matching the open dashboard access the
// harness is deployed with.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps façade failures onto the wire taxonomy. Every failure
// is a well-formed JSON body citing its kind.
func writeError(w http.ResponseWriter, err error) {
	kind := "emulation"
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, env.ErrInvalidAction), errors.Is(err, errBadRequest):
		kind, status = "validation", http.StatusBadRequest
	case errors.Is(err, emu.ErrAlreadyActive), errors.Is(err, emu.ErrStreamActive), errors.Is(err, errActive):
		kind, status = "already_active", http.StatusConflict
	case errors.Is(err, session.ErrNotFound):
		kind, status = "persistence", http.StatusNotFound
	case errors.Is(err, session.ErrCorruptState), errors.Is(err, emu.ErrCorruptSave):
		kind, status = "persistence", http.StatusConflict
	case errors.Is(err, errNotInitialized), errors.Is(err, env.ErrStopped):
		kind, status = "not_initialized", http.StatusConflict
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var (
	errBadRequest     = errors.New("bad request")
	errActive         = errors.New("environment already initialized")
	errNotInitialized = errors.New("environment not initialized")
)

// decodeBody parses a JSON request body. An empty body decodes to the
// zero value.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// current returns the live environment or errNotInitialized.
func (s *Server) current() (*env.Environment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.env == nil {
		return nil, errNotInitialized
	}
	return s.env, nil
}
