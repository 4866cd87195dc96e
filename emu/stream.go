package emu

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStreamActive is returned when a streaming context is started on a
// handle that already has one. Same guard discipline as handle creation:
// a second free-running goroutine is an error, never a silent duplicate.
var ErrStreamActive = errors.New("streaming context already active")

// ErrStreamStopped is returned for operations submitted after Stop.
var ErrStreamStopped = errors.New("streaming context stopped")

// DefaultQueueSize bounds the streaming action queue.
const DefaultQueueSize = 32

type cmdKind int

const (
	cmdPress cmdKind = iota
	cmdWait
	cmdCapture
	cmdRestore
)

type cmdResult struct {
	blob []byte
	err  error
}

type command struct {
	kind       cmdKind
	keys       []Button
	holdFrames int
	frames     int
	blob       []byte
	reply      chan cmdResult
}

// Applied describes one action the stream goroutine finished executing.
// The callback runs on the stream goroutine, so snapshot reads made from
// it observe the engine between frames.
type Applied struct {
	Step     uint64
	Keys     []Button
	Frames   int
	Duration time.Duration
}

// Frame is the latest completed frame published by the stream goroutine.
type Frame struct {
	Pixels []byte
	Stride int
	Height int
	Frames uint64
	Step   uint64
}

// frameCell publishes the most recent completed frame. Separate write and
// read buffers so the stream goroutine can publish while a reader holds
// the previous copy.
type frameCell struct {
	mu          sync.Mutex
	writePixels []byte
	readPixels  []byte
	frame       Frame
}

func (c *frameCell) publish(pixels []byte, stride, height int, frames, step uint64) {
	c.mu.Lock()
	if cap(c.writePixels) < len(pixels) {
		c.writePixels = make([]byte, len(pixels))
	}
	c.writePixels = c.writePixels[:len(pixels)]
	copy(c.writePixels, pixels)
	c.frame = Frame{Stride: stride, Height: height, Frames: frames, Step: step}
	c.mu.Unlock()
}

func (c *frameCell) read() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cap(c.readPixels) < len(c.writePixels) {
		c.readPixels = make([]byte, len(c.writePixels))
	}
	c.readPixels = c.readPixels[:len(c.writePixels)]
	copy(c.readPixels, c.writePixels)
	f := c.frame
	f.Pixels = c.readPixels
	return f
}

// Stream free-runs the handle's engine at real-time frame rate on a
// dedicated goroutine. Callers enqueue actions into a bounded FIFO; each
// is applied in submission order while idle ticks advance the game with
// no input, keeping it visibly running between agent decisions.
type Stream struct {
	h         *Handle
	cmds      chan command
	stopCh    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	pending   atomic.Int64
	onApplied func(Applied)
	cell      frameCell
}

// StartStream launches the streaming context for h. onApplied, if
// non-nil, is invoked on the stream goroutine after each press/wait
// action completes.
func StartStream(h *Handle, queueSize int, onApplied func(Applied)) (*Stream, error) {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, errors.New("handle closed")
	}
	if h.stream != nil {
		h.mu.Unlock()
		return nil, ErrStreamActive
	}
	s := &Stream{
		h:         h,
		cmds:      make(chan command, queueSize),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		onApplied: onApplied,
	}
	h.stream = s
	h.mu.Unlock()

	go s.run()
	return s, nil
}

// EnqueuePress queues a button sequence. FIFO order with respect to other
// enqueued actions; applied on a subsequent tick, not synchronously.
func (s *Stream) EnqueuePress(keys []Button, holdFrames int) error {
	return s.enqueue(command{kind: cmdPress, keys: keys, holdFrames: holdFrames})
}

// EnqueueWait queues a no-input frame advance.
func (s *Stream) EnqueueWait(frames int) error {
	return s.enqueue(command{kind: cmdWait, frames: frames})
}

func (s *Stream) enqueue(cmd command) error {
	select {
	case <-s.stopCh:
		return ErrStreamStopped
	default:
	}
	s.pending.Add(1)
	select {
	case s.cmds <- cmd:
		return nil
	case <-s.stopCh:
		s.pending.Add(-1)
		return ErrStreamStopped
	}
}

// CaptureSave captures a save blob on the stream goroutine so emulation
// is quiescent for the duration of the capture.
func (s *Stream) CaptureSave() ([]byte, error) {
	reply := make(chan cmdResult, 1)
	if err := s.submitSync(command{kind: cmdCapture, reply: reply}); err != nil {
		return nil, err
	}
	res, err := s.await(reply)
	if err != nil {
		return nil, err
	}
	return res.blob, res.err
}

// RestoreSave loads a save blob on the stream goroutine.
func (s *Stream) RestoreSave(blob []byte) error {
	reply := make(chan cmdResult, 1)
	if err := s.submitSync(command{kind: cmdRestore, blob: blob, reply: reply}); err != nil {
		return err
	}
	res, err := s.await(reply)
	if err != nil {
		return err
	}
	return res.err
}

// await waits for a sync command's reply, bailing out if the goroutine
// exits with the command still queued.
func (s *Stream) await(reply chan cmdResult) (cmdResult, error) {
	select {
	case res := <-reply:
		return res, nil
	case <-s.done:
		// The reply may have landed just before exit.
		select {
		case res := <-reply:
			return res, nil
		default:
			return cmdResult{}, ErrStreamStopped
		}
	}
}

func (s *Stream) submitSync(cmd command) error {
	select {
	case <-s.stopCh:
		return ErrStreamStopped
	default:
	}
	select {
	case s.cmds <- cmd:
		return nil
	case <-s.stopCh:
		return ErrStreamStopped
	}
}

// LatestFrame returns the most recently published completed frame.
// Readers never observe a partially written frame.
func (s *Stream) LatestFrame() Frame {
	return s.cell.read()
}

// Pending reports queued-but-unapplied actions.
func (s *Stream) Pending() int {
	return int(s.pending.Load())
}

// WaitIdle blocks until the action queue has drained or the timeout
// elapses. Returns true if the queue drained.
func (s *Stream) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.pending.Load() == 0 {
			return true
		}
		select {
		case <-s.done:
			return s.pending.Load() == 0
		case <-time.After(5 * time.Millisecond):
		}
	}
	return s.pending.Load() == 0
}

// Stop signals the goroutine to exit and blocks until it has. Pending
// actions are dropped, not flushed. Safe to call from any goroutine and
// more than once.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.done

	s.h.mu.Lock()
	if s.h.stream == s {
		s.h.stream = nil
	}
	s.h.mu.Unlock()
}

// run is the streaming goroutine: one real-time tick per frame period.
// A tick applies at most one queued action (running its full frame
// budget) or advances a single idle frame, then publishes the frame.
func (s *Stream) run() {
	defer close(s.done)

	frameTime := time.Second / time.Duration(s.h.FPS())
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		select {
		case cmd := <-s.cmds:
			s.apply(cmd)
		default:
			s.h.Wait(1)
		}

		s.publish()
	}
}

func (s *Stream) apply(cmd command) {
	switch cmd.kind {
	case cmdPress, cmdWait:
		start := time.Now()
		var frames int
		if cmd.kind == cmdPress {
			s.h.PressButtons(cmd.keys, cmd.holdFrames)
		} else {
			frames = cmd.frames
			s.h.Wait(cmd.frames)
		}
		step := s.h.AdvanceStep()
		if s.onApplied != nil {
			s.onApplied(Applied{
				Step:     step,
				Keys:     cmd.keys,
				Frames:   frames,
				Duration: time.Since(start),
			})
		}
		s.pending.Add(-1)
	case cmdCapture:
		blob, err := s.h.CaptureSave()
		cmd.reply <- cmdResult{blob: blob, err: err}
	case cmdRestore:
		cmd.reply <- cmdResult{err: s.h.RestoreSave(cmd.blob)}
	}
}

func (s *Stream) publish() {
	s.h.mu.Lock()
	pixels := s.h.core.GetFramebuffer()
	stride := s.h.core.GetFramebufferStride()
	height := s.h.core.GetActiveHeight()
	frames := s.h.frames
	step := s.h.step
	s.h.mu.Unlock()

	s.cell.publish(pixels, stride, height, frames, step)
}
