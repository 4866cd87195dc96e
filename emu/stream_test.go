package emu

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spottenn/pokemon-gym/gbdev"
)

func TestStreamSingleContext(t *testing.T) {
	h := newTestHandle(t)

	s, err := StartStream(h, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := StartStream(h, 0, nil); !errors.Is(err, ErrStreamActive) {
		t.Errorf("second stream error = %v, want ErrStreamActive", err)
	}
	s.Stop()

	// After a clean stop the handle can host a new context.
	s2, err := StartStream(h, 0, nil)
	if err != nil {
		t.Fatalf("stream after stop: %v", err)
	}
	s2.Stop()
}

func TestStreamAppliesActionsInOrder(t *testing.T) {
	h := newTestHandle(t)

	var applied atomic.Int64
	var lastStep atomic.Uint64
	s, err := StartStream(h, 0, func(a Applied) {
		applied.Add(1)
		lastStep.Store(a.Step)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	for i := 0; i < 3; i++ {
		if err := s.EnqueuePress([]Button{ButtonA}, 0); err != nil {
			t.Fatal(err)
		}
	}
	if !s.WaitIdle(5 * time.Second) {
		t.Fatal("queue did not drain")
	}
	if got := applied.Load(); got != 3 {
		t.Errorf("applied = %d, want 3", got)
	}
	if got := lastStep.Load(); got != 3 {
		t.Errorf("last applied step = %d, want 3", got)
	}
	if h.Step() != 3 {
		t.Errorf("handle step = %d, want 3", h.Step())
	}
}

func TestStreamPublishesFrames(t *testing.T) {
	h := newTestHandle(t)
	s, err := StartStream(h, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	var frame Frame
	for time.Now().Before(deadline) {
		frame = s.LatestFrame()
		if len(frame.Pixels) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(frame.Pixels) == 0 {
		t.Fatal("no frame published")
	}
	if frame.Stride != gbdev.ScreenWidth*4 || frame.Height != gbdev.ScreenHeight {
		t.Errorf("frame geometry = %d/%d", frame.Stride, frame.Height)
	}
}

func TestStreamSaveOps(t *testing.T) {
	h := newTestHandle(t)
	s, err := StartStream(h, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.EnqueuePress([]Button{ButtonA}, 0); err != nil {
		t.Fatal(err)
	}
	if !s.WaitIdle(5 * time.Second) {
		t.Fatal("queue did not drain")
	}

	blob, err := s.CaptureSave()
	if err != nil {
		t.Fatal(err)
	}
	state, err := DecodeSaveState(blob)
	if err != nil {
		t.Fatalf("capture produced invalid container: %v", err)
	}
	if state.Step != 1 {
		t.Errorf("captured step = %d, want 1", state.Step)
	}

	if err := s.RestoreSave(blob); err != nil {
		t.Errorf("restore: %v", err)
	}
}

func TestStreamStopRejectsLateWork(t *testing.T) {
	h := newTestHandle(t)
	s, err := StartStream(h, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Stop()
	s.Stop() // safe to repeat

	if err := s.EnqueueWait(1); !errors.Is(err, ErrStreamStopped) {
		t.Errorf("enqueue after stop = %v, want ErrStreamStopped", err)
	}
	if _, err := s.CaptureSave(); !errors.Is(err, ErrStreamStopped) {
		t.Errorf("capture after stop = %v, want ErrStreamStopped", err)
	}
}

func TestCloseStopsStream(t *testing.T) {
	sup := NewSupervisor()
	h, err := New(sup, &gbdev.Factory{}, gbdev.DevROM(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := StartStream(h, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	h.Close()
	if err := s.EnqueueWait(1); !errors.Is(err, ErrStreamStopped) {
		t.Errorf("stream alive after handle close: %v", err)
	}
	if sup.Active() {
		t.Error("supervisor active after close")
	}
}
