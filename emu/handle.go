// Package emu owns the emulator handle lifecycle: exclusive creation
// through the supervisor, synchronous stepping, save-state capture, and
// the optional free-running streaming context. The emulation engine
// itself sits behind the emucore interface set and is supplied by a
// CoreFactory.
package emu

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	emucore "github.com/user-none/eblitui/api"
)

// Default input timing, in frames. A press is latched long enough for the
// game's joypad polling to register, then the game is given time to react
// before the next key in a sequence.
const (
	DefaultHoldFrames   = 10
	DefaultSettleFrames = 120
	bootWarmupFrames    = 60
)

// ErrCoreCapability is returned when a factory produces a core that does
// not implement the save-state or memory interfaces the harness requires.
var ErrCoreCapability = errors.New("core missing required capability")

// Options configures handle creation.
type Options struct {
	Headless bool
	Sound    bool

	// HoldFrames and SettleFrames override the default press timing
	// when positive.
	HoldFrames   int
	SettleFrames int

	// SkipBootWarmup disables the boot warmup run. Used by resume paths
	// that immediately restore a save on top of the fresh core.
	SkipBootWarmup bool
}

// Handle is the exclusive owner of one running emulation engine. At most
// one live Handle exists per supervisor; New enforces this.
type Handle struct {
	mu    sync.Mutex
	sup   *Supervisor
	core  emucore.Emulator
	saver emucore.SaveStater
	mem   emucore.MemoryInspector
	info  emucore.SystemInfo

	holdFrames   int
	settleFrames int

	step   uint64
	frames uint64
	closed bool

	// stream is non-nil while a streaming context owns this handle.
	stream *Stream
}

// New validates the ROM, claims the supervisor slot, and boots a core
// from the factory. The factory's core must implement SaveStater and
// MemoryInspector or creation fails before the engine is kept.
func New(sup *Supervisor, factory emucore.CoreFactory, rom []byte, opts Options) (*Handle, error) {
	if err := ValidateROM(rom); err != nil {
		return nil, fmt.Errorf("load ROM: %w", err)
	}

	h := &Handle{
		sup:          sup,
		info:         factory.SystemInfo(),
		holdFrames:   opts.HoldFrames,
		settleFrames: opts.SettleFrames,
	}
	if h.holdFrames <= 0 {
		h.holdFrames = DefaultHoldFrames
	}
	if h.settleFrames <= 0 {
		h.settleFrames = DefaultSettleFrames
	}

	if err := sup.acquire(h); err != nil {
		return nil, err
	}

	region, _ := factory.DetectRegion(rom)
	core, err := factory.CreateEmulator(rom, region)
	if err != nil {
		sup.release(h)
		return nil, fmt.Errorf("create emulator: %w", err)
	}

	saver, ok := core.(emucore.SaveStater)
	if !ok {
		core.Close()
		sup.release(h)
		return nil, fmt.Errorf("%w: save states", ErrCoreCapability)
	}
	mem, ok := core.(emucore.MemoryInspector)
	if !ok {
		core.Close()
		sup.release(h)
		return nil, fmt.Errorf("%w: memory inspection", ErrCoreCapability)
	}

	h.core = core
	h.saver = saver
	h.mem = mem

	// Forward harness options through the core option interface; cores
	// without a matching key ignore them.
	core.SetOption("audio", boolOption(opts.Sound))
	if opts.Headless {
		core.SetOption("video", "disabled")
	}

	// Run the boot sequence so the first observation is past the logo
	// screen and the joypad is being polled.
	if !opts.SkipBootWarmup {
		for i := 0; i < bootWarmupFrames; i++ {
			core.RunFrame()
		}
		h.frames = bootWarmupFrames
	}

	return h, nil
}

func boolOption(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// PressButtons latches each button in sequence: hold for holdFrames,
// release, then settle before the next key so the game registers presses
// as distinct inputs.
func (h *Handle) PressButtons(keys []Button, holdFrames int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("handle closed")
	}
	if holdFrames <= 0 {
		holdFrames = h.holdFrames
	}
	for _, key := range keys {
		h.core.SetInput(0, key.Mask())
		h.runFrames(holdFrames)
		h.core.SetInput(0, 0)
		h.runFrames(h.settleFrames)
	}
	return nil
}

// Wait advances the engine with no input held.
func (h *Handle) Wait(frames int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("handle closed")
	}
	h.core.SetInput(0, 0)
	h.runFrames(frames)
	return nil
}

// runFrames advances n frames. Callers hold h.mu.
func (h *Handle) runFrames(n int) {
	for i := 0; i < n; i++ {
		h.core.RunFrame()
	}
	h.frames += uint64(n)
}

// Screenshot encodes the current framebuffer as PNG. Only meaningful
// immediately after a step on this handle.
func (h *Handle) Screenshot() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.New("handle closed")
	}
	return encodeFramePNG(h.core.GetFramebuffer(), h.core.GetFramebufferStride(),
		h.info.ScreenWidth, h.core.GetActiveHeight())
}

// encodeFramePNG converts raw RGBA pixels into a PNG image.
func encodeFramePNG(pixels []byte, stride, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || stride <= 0 {
		return nil, errors.New("empty framebuffer")
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := y * stride
		dst := y * img.Stride
		n := width * 4
		if src+n > len(pixels) {
			break
		}
		copy(img.Pix[dst:dst+n], pixels[src:src+n])
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// CaptureSave serializes the engine and wraps it in the save container
// together with the current step counter.
func (h *Handle) CaptureSave() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.New("handle closed")
	}
	engine, err := h.saver.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize engine state: %w", err)
	}
	return EncodeSaveState(h.step, time.Now(), engine), nil
}

// RestoreSave validates a save container and loads it into the engine.
// The engine is untouched if the container fails validation; an engine
// rejection is reported as a corrupt save.
func (h *Handle) RestoreSave(blob []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("handle closed")
	}
	state, err := DecodeSaveState(blob)
	if err != nil {
		return err
	}
	if err := h.saver.Deserialize(state.Engine); err != nil {
		return fmt.Errorf("%w: engine rejected state: %v", ErrCorruptSave, err)
	}
	// The step counter is monotonic for the life of the handle: a
	// resume onto a fresh handle adopts the container's counter, but
	// loading an older checkpoint mid-session must not rewind it or
	// later actions would re-issue already-logged step numbers.
	if state.Step > h.step {
		h.step = state.Step
	}
	return nil
}

// Memory exposes the engine's flat-address memory reads.
func (h *Handle) Memory() emucore.MemoryInspector {
	return h.mem
}

// FPS returns the engine's frame rate for the active region.
func (h *Handle) FPS() int {
	fps := h.core.GetTiming().FPS
	if fps <= 0 {
		fps = 60
	}
	return fps
}

// Step returns the monotonic step counter.
func (h *Handle) Step() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.step
}

// AdvanceStep increments the step counter after a completed action and
// returns the new value.
func (h *Handle) AdvanceStep() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.step++
	return h.step
}

// SetStep overwrites the step counter. Used when resuming a session whose
// log is ahead of the restored save blob.
func (h *Handle) SetStep(step uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.step = step
}

// FramesAdvanced reports the total frames run on this handle.
func (h *Handle) FramesAdvanced() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Close releases the engine and frees the supervisor slot. Any active
// streaming context is stopped first. Idempotent.
func (h *Handle) Close() {
	h.mu.Lock()
	s := h.stream
	h.mu.Unlock()
	if s != nil {
		s.Stop()
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	core := h.core
	h.mu.Unlock()

	if core != nil {
		core.Close()
	}
	h.sup.release(h)
}
