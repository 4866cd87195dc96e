package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spottenn/pokemon-gym/emu"
	"github.com/spottenn/pokemon-gym/gbdev"
	"github.com/spottenn/pokemon-gym/session"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	sessions, err := session.NewManager(t.TempDir(), 50, nil)
	require.NoError(t, err)

	s := New(Config{
		ROM:        gbdev.DevROM(),
		Factory:    &gbdev.Factory{},
		Sessions:   sessions,
		Supervisor: emu.NewSupervisor(),
		Timeout:    time.Minute,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		post(t, ts, "/stop", nil)
		ts.Close()
	})
	return s, ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(ts.URL+path, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func initialize(t *testing.T, ts *httptest.Server, body map[string]any) map[string]any {
	t.Helper()
	if body == nil {
		body = map[string]any{"headless": true}
	}
	resp := post(t, ts, "/initialize", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap map[string]any
	decode(t, resp, &snap)
	return snap
}

func TestInitializeReturnsSnapshot(t *testing.T) {
	_, ts := testServer(t)
	snap := initialize(t, ts, nil)

	assert.Equal(t, float64(0), snap["step"])
	assert.Equal(t, "PALLET_TOWN", snap["location"])
	assert.NotEmpty(t, snap["screenshot_base64"])
	assert.NotEmpty(t, snap["collision_map"])
}

func TestDuplicateInitializeRejected(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, nil)

	resp := post(t, ts, "/initialize", map[string]any{"headless": true})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body map[string]map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "already_active", body["error"]["kind"])
}

func TestActionFlow(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, nil)

	resp := post(t, ts, "/action", map[string]any{"type": "press_key", "keys": []string{"a"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap map[string]any
	decode(t, resp, &snap)
	assert.Equal(t, float64(1), snap["step"])

	resp = post(t, ts, "/action", map[string]any{"type": "wait", "frames": 30})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &snap)
	assert.Equal(t, float64(2), snap["step"])
}

func TestActionValidationError(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, nil)

	resp := post(t, ts, "/action", map[string]any{"type": "press_key", "keys": []string{"pow"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "validation", body["error"]["kind"])

	// The rejected action mutated nothing.
	var st map[string]any
	decode(t, get(t, ts, "/status"), &st)
	assert.Equal(t, float64(0), st["steps_taken"])
}

func TestActionBeforeInitialize(t *testing.T) {
	_, ts := testServer(t)
	resp := post(t, ts, "/action", map[string]any{"type": "wait", "frames": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body map[string]map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "not_initialized", body["error"]["kind"])
}

func TestStatusLifecycle(t *testing.T) {
	_, ts := testServer(t)

	var st map[string]any
	decode(t, get(t, ts, "/status"), &st)
	assert.Equal(t, "not_initialized", st["status"])

	initialize(t, ts, nil)
	decode(t, get(t, ts, "/status"), &st)
	assert.Equal(t, "running", st["status"])
	assert.NotEmpty(t, st["session_id"])

	var stop map[string]any
	decode(t, post(t, ts, "/stop", nil), &stop)
	assert.Equal(t, "stopped", stop["status"])
	assert.NotEmpty(t, stop["final_state_path"])

	// Stop is idempotent.
	decode(t, post(t, ts, "/stop", nil), &stop)
	assert.Equal(t, "stopped", stop["status"])
}

func TestSaveAndLoadState(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, nil)

	post(t, ts, "/action", map[string]any{"type": "press_key", "keys": []string{"a"}})

	var saved map[string]string
	resp := post(t, ts, "/save_state", map[string]any{"filename": "cp.state"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &saved)
	assert.Equal(t, "saved", saved["status"])
	assert.NotEmpty(t, saved["state_path"])

	post(t, ts, "/action", map[string]any{"type": "press_key", "keys": []string{"right"}})

	resp = post(t, ts, "/load_state", map[string]any{"filename": "cp.state"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap map[string]any
	decode(t, resp, &snap)
	assert.Equal(t, float64(1), snap["step"])

	resp = post(t, ts, "/load_state", map[string]any{"filename": "missing.state"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoadStateRequiresFilename(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, nil)
	resp := post(t, ts, "/load_state", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvaluate(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, nil)
	post(t, ts, "/action", map[string]any{"type": "press_key", "keys": []string{"a"}})

	var sum map[string]any
	resp := get(t, ts, "/evaluate")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &sum)
	assert.Greater(t, sum["total_score"], 0.0)
	assert.Contains(t, sum["pokemon_caught"], "SQUIRTLE")
}

func TestResumeViaInitialize(t *testing.T) {
	_, ts := testServer(t)
	initialize(t, ts, map[string]any{"headless": true, "session_id": "session_rest"})
	post(t, ts, "/action", map[string]any{"type": "wait", "frames": 1})
	post(t, ts, "/action", map[string]any{"type": "wait", "frames": 1})
	post(t, ts, "/stop", nil)

	snap := initialize(t, ts, map[string]any{
		"headless":      true,
		"session_id":    "session_rest",
		"load_autosave": true,
	})
	assert.Equal(t, float64(2), snap["step"])
}

func TestServerResumeLatest(t *testing.T) {
	s, ts := testServer(t)
	initialize(t, ts, nil)
	post(t, ts, "/action", map[string]any{"type": "wait", "frames": 1})
	post(t, ts, "/stop", nil)

	require.NoError(t, s.Resume(""))
	var st map[string]any
	decode(t, get(t, ts, "/status"), &st)
	assert.Equal(t, "running", st["status"])
	assert.Equal(t, float64(1), st["steps_taken"])
}

func TestServerResumeNoSessions(t *testing.T) {
	s, _ := testServer(t)
	err := s.Resume("")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestCORSHeaders(t *testing.T) {
	_, ts := testServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/status", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
