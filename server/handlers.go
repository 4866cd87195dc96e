package server

import (
	"context"
	"net/http"
	"time"

	"github.com/spottenn/pokemon-gym/env"
)

// initializeRequest's tri-state fields fall back to the server-level
// defaults when the client leaves them out.
type initializeRequest struct {
	Headless      *bool  `json:"headless,omitempty"`
	Sound         *bool  `json:"sound,omitempty"`
	Streaming     *bool  `json:"streaming,omitempty"`
	LoadStateFile string `json:"load_state_file,omitempty"`
	LoadAutosave  bool   `json:"load_autosave,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	e, err := s.startEnvironment(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Latest())
}

// startEnvironment boots a session unless one is already running.
func (s *Server) startEnvironment(req initializeRequest) (*env.Environment, error) {
	s.mu.Lock()
	if s.env != nil && s.env.Status().Status == "running" {
		s.mu.Unlock()
		return nil, errActive
	}
	s.mu.Unlock()

	headless := s.cfg.Headless
	if req.Headless != nil {
		headless = *req.Headless
	}
	sound := s.cfg.Sound
	if req.Sound != nil {
		sound = *req.Sound
	}
	streaming := s.cfg.Streaming
	if req.Streaming != nil {
		streaming = *req.Streaming
	}

	e, err := env.New(env.Config{
		ROM:           s.cfg.ROM,
		Factory:       s.cfg.Factory,
		Supervisor:    s.cfg.Supervisor,
		Sessions:      s.cfg.Sessions,
		SessionID:     req.SessionID,
		Resume:        req.LoadAutosave,
		LoadStateFile: req.LoadStateFile,
		Headless:      headless,
		Sound:         sound,
		Streaming:     streaming,
		Timeout:       s.cfg.Timeout,
		Logger:        s.log,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.env = e
	s.mu.Unlock()
	return e, nil
}

// Resume boots a session before the listener comes up, backing the
// serve command's --resume flag. An empty sessionID resumes the most
// recently updated session.
func (s *Server) Resume(sessionID string) error {
	if sessionID == "" {
		latest, err := s.cfg.Sessions.Latest()
		if err != nil {
			return err
		}
		sessionID = latest
	}
	e, err := s.startEnvironment(initializeRequest{
		SessionID:    sessionID,
		LoadAutosave: true,
	})
	if err != nil {
		return err
	}
	s.log.Info("resumed session", "session_id", sessionID, "step", e.Latest().Step)
	return nil
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	e, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	var action env.Action
	if err := decodeBody(r, &action); err != nil {
		writeError(w, err)
		return
	}
	snap, err := e.Step(action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	e := s.env
	s.mu.Unlock()
	if e == nil {
		writeJSON(w, http.StatusOK, env.Status{Status: "not_initialized"})
		return
	}
	writeJSON(w, http.StatusOK, e.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	e := s.env
	s.mu.Unlock()
	if e == nil {
		// Stopping an already-stopped server is a no-op, not an error.
		writeJSON(w, http.StatusOK, env.StopResult{Status: "not_initialized"})
		return
	}
	res := e.Stop()
	writeJSON(w, http.StatusOK, res)
}

type saveStateRequest struct {
	Filename string `json:"filename,omitempty"`
}

type saveStateResponse struct {
	Status    string `json:"status"`
	StatePath string `json:"state_path"`
}

func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	e, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	var req saveStateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	path, err := e.SaveState(req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveStateResponse{Status: "saved", StatePath: path})
}

type loadStateRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleLoadState(w http.ResponseWriter, r *http.Request) {
	e, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	var req loadStateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Filename == "" {
		writeError(w, errBadRequest)
		return
	}
	snap, err := e.LoadState(req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	e, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Summary())
}

// Run serves the API on addr until ctx is cancelled, then drains
// connections and finalizes any live session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Shutdown(ctx)
		return err
	case <-ctx.Done():
	}

	drain, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(drain); err != nil {
		s.log.Warn("http drain failed", "error", err)
	}
	s.Shutdown(drain)
	return nil
}
