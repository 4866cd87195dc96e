package env

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	emucore "github.com/user-none/eblitui/api"

	"github.com/spottenn/pokemon-gym/emu"
	"github.com/spottenn/pokemon-gym/eval"
	"github.com/spottenn/pokemon-gym/memory"
	"github.com/spottenn/pokemon-gym/session"
)

// ErrStopped rejects operations on an environment after Stop.
var ErrStopped = errors.New("environment stopped")

// Config wires an environment together.
type Config struct {
	ROM     []byte
	Factory emucore.CoreFactory

	// Supervisor defaults to the process-wide one.
	Supervisor *emu.Supervisor
	Sessions   *session.Manager

	// SessionID names the session to create, or with Resume set, the
	// session to continue.
	SessionID string
	Resume    bool

	// LoadStateFile restores a named save from the session's states
	// directory right after boot.
	LoadStateFile string

	Headless  bool
	Sound     bool
	Streaming bool

	// Timeout is the session wall-clock ceiling; zero disables it.
	Timeout time.Duration

	Logger *slog.Logger
}

// Snapshot is the immutable observable state composed after each action.
type Snapshot struct {
	Step          uint64           `json:"step"`
	Screenshot    []byte           `json:"screenshot_base64,omitempty"`
	Location      string           `json:"location"`
	X             int              `json:"x"`
	Y             int              `json:"y"`
	PlayerName    string           `json:"player_name"`
	RivalName     string           `json:"rival_name"`
	Money         int              `json:"money"`
	Badges        []string         `json:"badges"`
	Party         []memory.PartyMon `json:"party"`
	Items         []memory.Item    `json:"items"`
	Dialog        string           `json:"dialog"`
	CollisionMap  string           `json:"collision_map"`
	ValidMoves    []string         `json:"valid_moves"`
	Score         float64          `json:"score"`
	ExecutionTime float64          `json:"execution_time"`
}

// Status is the poll surface for dashboards and agents.
type Status struct {
	Status         string  `json:"status"`
	StepsTaken     uint64  `json:"steps_taken"`
	SessionID      string  `json:"session_id"`
	SessionRuntime float64 `json:"session_runtime"`
	Streaming      bool    `json:"streaming"`
	PendingActions int     `json:"pending_actions,omitempty"`
}

// StopResult reports the outcome of a graceful stop.
type StopResult struct {
	Status          string  `json:"status"`
	SessionID       string  `json:"session_id"`
	FinalStatePath  string  `json:"final_state_path"`
	SessionDuration float64 `json:"session_duration"`
}

// Environment wraps the emulator handle, session record, and scoring
// state behind the single request/response contract external callers
// consume. It is the translation boundary for every failure below it.
type Environment struct {
	log       *slog.Logger
	handle    *emu.Handle
	stream    *emu.Stream
	reader    *memory.Reader
	record    *session.Record
	score     *eval.State
	watchdog  *session.Watchdog
	startedAt time.Time

	mu       sync.Mutex
	stopped  bool
	stopInfo StopResult
	lastSnap Snapshot

	// scoreMu guards score, which is updated from the stream goroutine
	// in streaming mode and read by Summary callers.
	scoreMu sync.Mutex
}

// New boots an environment: fresh session, resumed session, or fresh
// boot plus explicit state-file load. The returned environment has
// already produced its initial snapshot.
func New(cfg Config) (*Environment, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Supervisor == nil {
		cfg.Supervisor = emu.Default()
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session manager required")
	}

	var (
		record *session.Record
		blob   []byte
		err    error
	)
	if cfg.Resume {
		record, blob, err = cfg.Sessions.Resume(cfg.SessionID)
	} else {
		record, err = cfg.Sessions.Create(cfg.SessionID)
	}
	if err != nil {
		return nil, err
	}

	handle, err := emu.New(cfg.Supervisor, cfg.Factory, cfg.ROM, emu.Options{
		Headless: cfg.Headless,
		Sound:    cfg.Sound,
		// A restore lands right on top of the fresh core, so the boot
		// warmup would be wasted frames.
		SkipBootWarmup: cfg.Resume || cfg.LoadStateFile != "",
	})
	if err != nil {
		return nil, err
	}

	// A resumed session's runtime continues from its recorded start,
	// not from this process's boot.
	startedAt := time.Now()
	if cfg.Resume {
		if meta, merr := record.Metadata(); merr == nil {
			if created, perr := time.Parse(time.RFC3339Nano, meta.CreatedAt); perr == nil {
				startedAt = created
			}
		}
	}

	e := &Environment{
		log:       cfg.Logger,
		handle:    handle,
		reader:    memory.NewReader(handle.Memory()),
		record:    record,
		score:     eval.NewState(),
		startedAt: startedAt,
	}

	if cfg.Resume {
		if err := e.restoreFromSession(blob); err != nil {
			handle.Close()
			return nil, err
		}
	}
	if cfg.LoadStateFile != "" {
		data, err := record.LoadNamed(cfg.LoadStateFile)
		if err != nil {
			handle.Close()
			return nil, err
		}
		if err := handle.RestoreSave(data); err != nil {
			handle.Close()
			return nil, err
		}
	}

	snap := e.buildSnapshot(0)
	e.mu.Lock()
	e.lastSnap = snap
	e.mu.Unlock()

	if cfg.Streaming {
		s, err := emu.StartStream(handle, emu.DefaultQueueSize, e.onApplied)
		if err != nil {
			handle.Close()
			return nil, err
		}
		e.stream = s
	}

	e.watchdog = session.NewWatchdog(cfg.Timeout, func() {
		e.log.Warn("session wall-clock ceiling reached", "session_id", record.ID())
		e.finalize(session.Timeout)
	})

	e.log.Info("environment initialized",
		"session_id", record.ID(),
		"resume", cfg.Resume,
		"streaming", cfg.Streaming,
		"step", handle.Step())
	return e, nil
}

// restoreFromSession loads the resume blob and advances the step counter
// to the log tail, which may be ahead of the last autosaved step.
func (e *Environment) restoreFromSession(blob []byte) error {
	if err := e.handle.RestoreSave(blob); err != nil {
		if errors.Is(err, emu.ErrCorruptSave) {
			return fmt.Errorf("%w: %v", session.ErrCorruptState, err)
		}
		return err
	}
	last, ok, err := e.record.LastStep()
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrCorruptState, err)
	}
	if ok && last > e.handle.Step() {
		e.handle.SetStep(last)
	}

	history, err := e.record.History()
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrCorruptState, err)
	}
	e.score.Replay(observations(history))
	return nil
}

func observations(rows []session.StepRow) []eval.Observation {
	obs := make([]eval.Observation, len(rows))
	for i, row := range rows {
		obs[i] = eval.Observation{
			Step:     row.Step,
			Species:  row.Pokemons,
			Badges:   row.Badges,
			Location: row.Location,
		}
	}
	return obs
}

// Step validates and applies one action. In synchronous mode it blocks
// until the snapshot for this exact action is ready; in streaming mode
// it enqueues and returns the latest published snapshot, which reflects
// the action only once a later tick has applied it.
func (e *Environment) Step(a Action) (Snapshot, error) {
	if err := a.Validate(); err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return Snapshot{}, ErrStopped
	}
	e.mu.Unlock()

	if e.stream != nil {
		return e.stepStreaming(a)
	}
	return e.stepSync(a)
}

func (e *Environment) stepSync(a Action) (Snapshot, error) {
	start := time.Now()
	var err error
	switch a.Type {
	case ActionPressKeys:
		var buttons []emu.Button
		buttons, err = a.Buttons()
		if err == nil {
			err = e.handle.PressButtons(buttons, a.HoldFrames)
		}
	case ActionWait:
		err = e.handle.Wait(a.Frames)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("emulation fault: %w", err)
	}

	e.handle.AdvanceStep()
	snap := e.buildSnapshot(time.Since(start).Seconds())
	e.recordStep(a.String(), snap)

	e.mu.Lock()
	e.lastSnap = snap
	e.mu.Unlock()
	return snap, nil
}

func (e *Environment) stepStreaming(a Action) (Snapshot, error) {
	var err error
	switch a.Type {
	case ActionPressKeys:
		var buttons []emu.Button
		buttons, err = a.Buttons()
		if err == nil {
			err = e.stream.EnqueuePress(buttons, a.HoldFrames)
		}
	case ActionWait:
		err = e.stream.EnqueueWait(a.Frames)
	}
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	snap := e.lastSnap
	e.mu.Unlock()
	return snap, nil
}

// onApplied runs on the stream goroutine after each applied action, when
// the engine is quiescent between ticks: the safe point to read memory,
// log the step, and take the autosave.
func (e *Environment) onApplied(a emu.Applied) {
	action := "wait:" + fmt.Sprint(a.Frames)
	if len(a.Keys) > 0 {
		names := make([]string, len(a.Keys))
		for i, k := range a.Keys {
			names[i] = k.String()
		}
		action = "press_key:" + names[0]
		for _, n := range names[1:] {
			action += "+" + n
		}
	}

	snap := e.buildSnapshot(a.Duration.Seconds())
	e.recordStep(action, snap)

	e.mu.Lock()
	e.lastSnap = snap
	e.mu.Unlock()
}

// buildSnapshot assembles the observable state from the current engine
// memory and framebuffer.
func (e *Environment) buildSnapshot(execSeconds float64) Snapshot {
	x, y := e.reader.Coordinates()
	party := e.reader.Party()

	snap := Snapshot{
		Step:          e.handle.Step(),
		Location:      e.reader.Location(),
		X:             x,
		Y:             y,
		PlayerName:    e.reader.PlayerName(),
		RivalName:     e.reader.RivalName(),
		Money:         e.reader.Money(),
		Badges:        e.reader.Badges(),
		Party:         party,
		Items:         e.reader.Items(),
		Dialog:        e.reader.Dialog(),
		CollisionMap:  e.reader.CollisionMap(),
		ValidMoves:    e.reader.ValidMoves(),
		ExecutionTime: execSeconds,
	}

	shot, err := e.handle.Screenshot()
	if err != nil {
		e.log.Warn("screenshot failed", "error", err)
	} else {
		snap.Screenshot = shot
	}

	e.scoreMu.Lock()
	e.score.Update(eval.Observation{
		Step:     snap.Step,
		Species:  speciesOf(party),
		Badges:   snap.Badges,
		Location: snap.Location,
	})
	snap.Score = e.score.Total()
	e.scoreMu.Unlock()
	return snap
}

func speciesOf(party []memory.PartyMon) []string {
	names := make([]string, len(party))
	for i, p := range party {
		names[i] = p.Species
	}
	return names
}

// recordStep persists a completed step: log row, screenshot file, and
// the conditional autosave. Persistence failures are logged and retried
// on later steps; they never fail the request.
func (e *Environment) recordStep(action string, snap Snapshot) {
	row := session.StepRow{
		Step:      snap.Step,
		Timestamp: time.Now(),
		Action:    action,
		Location:  snap.Location,
		X:         snap.X,
		Y:         snap.Y,
		Money:     snap.Money,
		Badges:    snap.Badges,
		Pokemons:  speciesOf(snap.Party),
		Score:     snap.Score,
	}
	if err := e.record.AppendStep(row); err != nil {
		e.log.Error("step log append failed", "step", snap.Step, "error", err)
	}
	if len(snap.Screenshot) > 0 {
		if err := os.WriteFile(e.record.ImagePath(snap.Step), snap.Screenshot, 0o644); err != nil {
			e.log.Warn("screenshot write failed", "step", snap.Step, "error", err)
		}
	}
	if e.record.ShouldAutosave(snap.Step) {
		e.autosaveTick(snap.Step)
	}
}

func (e *Environment) autosaveTick(step uint64) {
	blob, err := e.handle.CaptureSave()
	if err != nil {
		e.log.Error("autosave capture failed", "step", step, "error", err)
		return
	}
	if err := e.record.WriteAutosave(blob, step); err != nil {
		e.log.Error("autosave write failed", "step", step, "error", err)
		return
	}
	if err := e.record.TouchMetadata(step); err != nil {
		e.log.Warn("metadata refresh failed", "step", step, "error", err)
	}
}

// Latest returns the most recently assembled snapshot: the initial one
// right after New, then the newest completed step's.
func (e *Environment) Latest() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSnap
}

// Status reports the live state of the environment.
func (e *Environment) Status() Status {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()

	st := Status{
		Status:         "running",
		StepsTaken:     e.handle.Step(),
		SessionID:      e.record.ID(),
		SessionRuntime: time.Since(e.startedAt).Seconds(),
		Streaming:      e.stream != nil,
	}
	if e.stream != nil {
		st.PendingActions = e.stream.Pending()
	}
	if stopped {
		st.Status = "stopped"
	}
	return st
}

// SaveState captures the current state into a named file under the
// session's states directory.
func (e *Environment) SaveState(filename string) (string, error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return "", ErrStopped
	}
	e.mu.Unlock()

	blob, err := e.captureSave()
	if err != nil {
		return "", fmt.Errorf("emulation fault: %w", err)
	}
	return e.record.SaveNamed(filename, blob)
}

// LoadState restores a named save and returns the resulting snapshot.
func (e *Environment) LoadState(filename string) (Snapshot, error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return Snapshot{}, ErrStopped
	}
	e.mu.Unlock()

	data, err := e.record.LoadNamed(filename)
	if err != nil {
		return Snapshot{}, err
	}
	if err := e.restore(data); err != nil {
		return Snapshot{}, err
	}

	if e.stream != nil {
		// The stream goroutine owns the engine; the restored state
		// shows up in the snapshot published by the next applied
		// action. Meanwhile return the latest one.
		return e.Latest(), nil
	}

	snap := e.buildSnapshot(0)
	e.mu.Lock()
	e.lastSnap = snap
	e.mu.Unlock()
	return snap, nil
}

// captureSave routes through the stream when one is active so the
// capture is quiescent with respect to the free-running goroutine.
func (e *Environment) captureSave() ([]byte, error) {
	if e.stream != nil {
		return e.stream.CaptureSave()
	}
	return e.handle.CaptureSave()
}

func (e *Environment) restore(blob []byte) error {
	if e.stream != nil {
		return e.stream.RestoreSave(blob)
	}
	return e.handle.RestoreSave(blob)
}

// Summary returns the evaluation summary.
func (e *Environment) Summary() eval.Summary {
	e.scoreMu.Lock()
	defer e.scoreMu.Unlock()
	return e.score.Summary()
}

// Stop gracefully finalizes the session and releases the emulator.
// Idempotent: repeated calls return the original result.
func (e *Environment) Stop() StopResult {
	return e.finalize(session.Graceful)
}

func (e *Environment) finalize(reason session.Reason) StopResult {
	e.mu.Lock()
	if e.stopped {
		res := e.stopInfo
		e.mu.Unlock()
		return res
	}
	e.stopped = true
	e.mu.Unlock()

	e.watchdog.Stop()

	// Best-effort final capture before the stream and handle go away.
	var blob []byte
	var err error
	if e.stream != nil {
		blob, err = e.stream.CaptureSave()
		e.stream.Stop()
	} else {
		blob, err = e.handle.CaptureSave()
	}
	if err != nil {
		e.log.Error("final state capture failed", "error", err)
		blob = nil
	}

	steps := e.handle.Step()
	e.scoreMu.Lock()
	summary := e.score.Summary().Render()
	e.scoreMu.Unlock()
	path, ferr := e.record.Finalize(reason, blob, summary, steps)
	if ferr != nil {
		e.log.Error("session finalize failed", "error", ferr)
	}
	e.handle.Close()

	res := StopResult{
		Status:          "stopped",
		SessionID:       e.record.ID(),
		FinalStatePath:  path,
		SessionDuration: time.Since(e.startedAt).Seconds(),
	}
	e.mu.Lock()
	e.stopInfo = res
	e.mu.Unlock()
	return res
}
