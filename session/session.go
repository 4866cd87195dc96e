// Package session owns the on-disk layout of gameplay sessions: the
// append-only step log, per-step screenshots, rolling autosave, the
// reason-tagged shutdown saves, and session resumption lookup.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	// ErrNotFound means no session directory exists for the id.
	ErrNotFound = errors.New("session not found")

	// ErrCorruptState means the session exists but no loadable save
	// file could be found. Callers must explicitly opt into a fresh
	// boot; resumption never silently discards progress.
	ErrCorruptState = errors.New("session state corrupt or unreadable")
)

// DefaultAutosaveInterval is the step cadence for rolling autosaves.
const DefaultAutosaveInterval = 50

const (
	metadataFile = "session_metadata.json"
	logFile      = "gameplay_data.csv"
	summaryFile  = "evaluation_summary.txt"
	imagesDir    = "images"
	statesDir    = "states"

	autosaveFile = "autosave.state"
	finalFile    = "final_state.state"
	timeoutFile  = "timeout_state.state"
)

// Metadata is the persisted per-session bookkeeping record.
type Metadata struct {
	SessionID   string `json:"session_id"`
	CreatedAt   string `json:"created_at"`
	LastUpdated string `json:"last_updated"`
	TotalSteps  uint64 `json:"total_steps"`
	Status      string `json:"status"` // "active", "completed", "timeout"
}

// Manager creates, resumes, and enumerates sessions under one root.
type Manager struct {
	root     string
	interval int
	log      *slog.Logger
	now      func() time.Time
}

// NewManager prepares a session root. A non-positive interval falls
// back to the default autosave cadence.
func NewManager(root string, autosaveInterval int, logger *slog.Logger) (*Manager, error) {
	if autosaveInterval <= 0 {
		autosaveInterval = DefaultAutosaveInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions root: %w", err)
	}
	return &Manager{root: root, interval: autosaveInterval, log: logger, now: time.Now}, nil
}

// Create allocates a fresh session directory. An empty id generates a
// timestamp-derived one.
func (m *Manager) Create(id string) (*Record, error) {
	if id == "" {
		id = "session_" + m.now().Format("20060102_150405")
	}
	dir := filepath.Join(m.root, id)
	for _, sub := range []string{imagesDir, statesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
	r := m.newRecord(id, dir)
	now := m.now().Format(time.RFC3339Nano)
	if err := r.writeMetadata(Metadata{
		SessionID:   id,
		CreatedAt:   now,
		LastUpdated: now,
		Status:      "active",
	}); err != nil {
		return nil, err
	}
	m.log.Info("session created", "session_id", id, "dir", dir)
	return r, nil
}

// Resume opens an existing session and returns it with the save blob
// chosen by precedence (final over timeout over autosave). Precedence
// is positional, never mtime-based: a more complete shutdown record
// always wins over a more recent but less complete one.
func (m *Manager) Resume(id string) (*Record, []byte, error) {
	dir := filepath.Join(m.root, id)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return nil, nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	r := m.newRecord(id, dir)
	blob, source, err := r.resumeBlob()
	if err != nil {
		return nil, nil, err
	}
	meta, err := r.Metadata()
	if err != nil {
		return nil, nil, fmt.Errorf("session %q: %w", id, ErrCorruptState)
	}
	meta.LastUpdated = m.now().Format(time.RFC3339Nano)
	meta.Status = "active"
	if err := r.writeMetadata(meta); err != nil {
		return nil, nil, err
	}
	m.log.Info("session resumed", "session_id", id, "save", source)
	return r, blob, nil
}

// Latest returns the id of the most recently updated session, or
// ErrNotFound when the root holds none.
func (m *Manager) Latest() (string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return "", fmt.Errorf("read sessions root: %w", err)
	}
	var latest string
	var latestTime time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(m.root, e.Name(), metadataFile))
		if err != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, meta.LastUpdated)
		if err != nil {
			continue
		}
		if latest == "" || t.After(latestTime) {
			latest, latestTime = meta.SessionID, t
		}
	}
	if latest == "" {
		return "", ErrNotFound
	}
	return latest, nil
}

// List returns metadata for every session under the root.
func (m *Manager) List() ([]Metadata, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("read sessions root: %w", err)
	}
	var out []Metadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(m.root, e.Name(), metadataFile))
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// Delete removes a session directory and everything in it.
func (m *Manager) Delete(id string) error {
	dir := filepath.Join(m.root, id)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return os.RemoveAll(dir)
}

func (m *Manager) newRecord(id, dir string) *Record {
	return &Record{
		id:       id,
		dir:      dir,
		interval: m.interval,
		log:      m.log,
		now:      m.now,
	}
}

// Record is one live session: its directory, autosave bookkeeping, and
// finalization state.
type Record struct {
	id       string
	dir      string
	interval int
	log      *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	lastAutosave uint64
	autosaved    bool
	finalized    bool
	startedAt    time.Time
}

// ID returns the session id.
func (r *Record) ID() string { return r.id }

// Dir returns the session directory path.
func (r *Record) Dir() string { return r.dir }

// Metadata reads the persisted session metadata.
func (r *Record) Metadata() (Metadata, error) {
	return readMetadata(filepath.Join(r.dir, metadataFile))
}

func (r *Record) writeMetadata(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(r.dir, metadataFile), data)
}

// TouchMetadata refreshes last-updated and the step count.
func (r *Record) TouchMetadata(totalSteps uint64) error {
	meta, err := r.Metadata()
	if err != nil {
		return err
	}
	meta.LastUpdated = r.now().Format(time.RFC3339Nano)
	meta.TotalSteps = totalSteps
	return r.writeMetadata(meta)
}

// ImagePath returns where the screenshot for a step is stored.
func (r *Record) ImagePath(step uint64) string {
	return filepath.Join(r.dir, imagesDir, fmt.Sprintf("step_%06d.png", step))
}

// ShouldAutosave reports whether the step crosses the autosave cadence.
// A step never triggers twice.
func (r *Record) ShouldAutosave(step uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if step == 0 || step%uint64(r.interval) != 0 {
		return false
	}
	if r.autosaved && step == r.lastAutosave {
		return false
	}
	return true
}

// WriteAutosave overwrites the single rolling autosave file. The write
// goes through a temp file and rename so a crash mid-write never
// corrupts the previous autosave.
func (r *Record) WriteAutosave(blob []byte, step uint64) error {
	if err := atomicWrite(filepath.Join(r.dir, autosaveFile), blob); err != nil {
		return fmt.Errorf("write autosave: %w", err)
	}
	r.mu.Lock()
	r.lastAutosave = step
	r.autosaved = true
	r.mu.Unlock()
	r.log.Debug("autosave written", "session_id", r.id, "step", step)
	return nil
}

// SaveNamed writes a manual save under states/ and returns its path.
func (r *Record) SaveNamed(name string, blob []byte) (string, error) {
	if name == "" {
		name = "state_" + r.now().Format("20060102_150405") + ".state"
	}
	name = filepath.Base(name) // no path escapes
	path := filepath.Join(r.dir, statesDir, name)
	if err := atomicWrite(path, blob); err != nil {
		return "", fmt.Errorf("write state %q: %w", name, err)
	}
	return path, nil
}

// LoadNamed reads a manual save from states/, falling back to the
// session-level save files for the well-known names.
func (r *Record) LoadNamed(name string) ([]byte, error) {
	name = filepath.Base(name)
	candidates := []string{
		filepath.Join(r.dir, statesDir, name),
		filepath.Join(r.dir, name),
	}
	for _, p := range candidates {
		if data, err := os.ReadFile(p); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("state %q: %w", name, ErrNotFound)
}

// resumeBlob picks the save to resume from. The precedence table is
// explicit and ordered; a candidate that exists but fails to read
// surfaces ErrCorruptState instead of falling through to a staler file.
func (r *Record) resumeBlob() ([]byte, string, error) {
	for _, name := range []string{finalFile, timeoutFile, autosaveFile} {
		path := filepath.Join(r.dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("session %q save %q: %w", r.id, name, ErrCorruptState)
		}
		return data, name, nil
	}
	return nil, "", fmt.Errorf("session %q has no save file: %w", r.id, ErrCorruptState)
}

// Reason tags why a session was finalized.
type Reason int

const (
	Graceful Reason = iota
	Timeout
)

func (re Reason) String() string {
	if re == Timeout {
		return "timeout"
	}
	return "graceful"
}

// Finalize writes the reason-tagged save plus a refreshed autosave,
// marks the session metadata, and records the evaluation summary.
// Calling it again is a no-op returning the original state path.
func (r *Record) Finalize(reason Reason, blob []byte, summary string, totalSteps uint64) (string, error) {
	r.mu.Lock()
	if r.finalized {
		r.mu.Unlock()
		return r.finalPath(reason), nil
	}
	r.finalized = true
	r.mu.Unlock()

	path := r.finalPath(reason)
	if len(blob) > 0 {
		if err := atomicWrite(path, blob); err != nil {
			return "", fmt.Errorf("write %s save: %w", reason, err)
		}
		// Refresh the autosave too, so precedence or cleanup of the
		// tagged file still leaves a current recovery point.
		if err := atomicWrite(filepath.Join(r.dir, autosaveFile), blob); err != nil {
			r.log.Warn("autosave refresh failed during finalize", "session_id", r.id, "error", err)
		}
	}
	if summary != "" {
		if err := atomicWrite(filepath.Join(r.dir, summaryFile), []byte(summary)); err != nil {
			r.log.Warn("summary write failed", "session_id", r.id, "error", err)
		}
	}

	meta, err := r.Metadata()
	if err == nil {
		meta.LastUpdated = r.now().Format(time.RFC3339Nano)
		meta.TotalSteps = totalSteps
		if reason == Timeout {
			meta.Status = "timeout"
		} else {
			meta.Status = "completed"
		}
		if err := r.writeMetadata(meta); err != nil {
			r.log.Warn("metadata update failed during finalize", "session_id", r.id, "error", err)
		}
	}
	r.log.Info("session finalized", "session_id", r.id, "reason", reason.String(), "steps", totalSteps)
	return path, nil
}

func (r *Record) finalPath(reason Reason) string {
	if reason == Timeout {
		return filepath.Join(r.dir, timeoutFile)
	}
	return filepath.Join(r.dir, finalFile)
}

func readMetadata(path string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// atomicWrite writes through a temp file in the same directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
