package emu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spottenn/pokemon-gym/gbdev"
)

func newTestHandle(t *testing.T) *Handle {
	t.Helper()
	h, err := New(NewSupervisor(), &gbdev.Factory{}, gbdev.DevROM(), Options{})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func TestNewRejectsBadROM(t *testing.T) {
	sup := NewSupervisor()

	if _, err := New(sup, &gbdev.Factory{}, nil, Options{}); err == nil {
		t.Error("nil ROM accepted")
	}
	if _, err := New(sup, &gbdev.Factory{}, make([]byte, 0x200), Options{}); err == nil {
		t.Error("ROM with bad header checksum accepted")
	}
	if sup.Active() {
		t.Error("supervisor slot leaked on failed create")
	}
}

func TestParseButton(t *testing.T) {
	for _, name := range []string{"a", "b", "start", "select", "up", "down", "left", "right"} {
		b, err := ParseButton(name)
		if err != nil {
			t.Errorf("ParseButton(%q): %v", name, err)
		}
		if b.String() != name {
			t.Errorf("round trip %q -> %q", name, b.String())
		}
	}
	if b, err := ParseButton("START"); err != nil || b != ButtonStart {
		t.Errorf("case-insensitive parse failed: %v %v", b, err)
	}
	if _, err := ParseButton("c"); err == nil {
		t.Error("invalid button accepted")
	}
}

func TestPressAndWaitFrameAccounting(t *testing.T) {
	h := newTestHandle(t)

	boot := h.FramesAdvanced()
	if err := h.PressButtons([]Button{ButtonA}, 0); err != nil {
		t.Fatal(err)
	}
	want := boot + DefaultHoldFrames + DefaultSettleFrames
	if got := h.FramesAdvanced(); got != want {
		t.Errorf("frames after press = %d, want %d", got, want)
	}

	if err := h.Wait(30); err != nil {
		t.Fatal(err)
	}
	want += 30
	if got := h.FramesAdvanced(); got != want {
		t.Errorf("frames after wait = %d, want %d", got, want)
	}

	// Two-key sequence runs hold+settle per key.
	if err := h.PressButtons([]Button{ButtonUp, ButtonA}, 5); err != nil {
		t.Fatal(err)
	}
	want += 2 * (5 + DefaultSettleFrames)
	if got := h.FramesAdvanced(); got != want {
		t.Errorf("frames after sequence = %d, want %d", got, want)
	}
}

func TestSkipBootWarmup(t *testing.T) {
	h, err := New(NewSupervisor(), &gbdev.Factory{}, gbdev.DevROM(), Options{
		Headless:       true,
		SkipBootWarmup: true,
	})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	defer h.Close()

	if got := h.FramesAdvanced(); got != 0 {
		t.Errorf("frames after skipped warmup = %d, want 0", got)
	}
}

func TestScreenshotIsPNG(t *testing.T) {
	h := newTestHandle(t)
	if err := h.Wait(1); err != nil {
		t.Fatal(err)
	}
	shot, err := h.Screenshot()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(shot, []byte("\x89PNG")) {
		t.Errorf("screenshot is not a PNG (starts %x)", shot[:4])
	}
}

func TestCaptureRestoreStepCounter(t *testing.T) {
	h := newTestHandle(t)

	h.PressButtons([]Button{ButtonA}, 0)
	h.AdvanceStep()
	h.PressButtons([]Button{ButtonRight}, 0)
	h.AdvanceStep()

	blob, err := h.CaptureSave()
	if err != nil {
		t.Fatal(err)
	}

	h.Wait(10)
	h.AdvanceStep()
	if h.Step() != 3 {
		t.Fatalf("step = %d, want 3", h.Step())
	}

	// Restoring an older checkpoint keeps the counter monotonic.
	if err := h.RestoreSave(blob); err != nil {
		t.Fatal(err)
	}
	if h.Step() != 3 {
		t.Errorf("step after restore = %d, want 3", h.Step())
	}
	if h.AdvanceStep() != 4 {
		t.Errorf("step after next action = %d, want 4", h.Step())
	}
}

func TestRestoreOnFreshHandleAdoptsStep(t *testing.T) {
	h := newTestHandle(t)
	h.Wait(5)
	h.AdvanceStep()
	h.Wait(5)
	h.AdvanceStep()
	blob, err := h.CaptureSave()
	if err != nil {
		t.Fatal(err)
	}
	h.Close()

	h2 := newTestHandle(t)
	if err := h2.RestoreSave(blob); err != nil {
		t.Fatal(err)
	}
	if h2.Step() != 2 {
		t.Errorf("resumed step = %d, want 2", h2.Step())
	}
}

func TestRestoreCorruptLeavesStateIntact(t *testing.T) {
	h := newTestHandle(t)
	h.Wait(5)
	h.AdvanceStep()

	if err := h.RestoreSave([]byte("junk")); !errors.Is(err, ErrCorruptSave) {
		t.Fatalf("error = %v, want ErrCorruptSave", err)
	}
	if h.Step() != 1 {
		t.Errorf("step mutated by failed restore: %d", h.Step())
	}
}

func TestCloseIdempotent(t *testing.T) {
	sup := NewSupervisor()
	h, err := New(sup, &gbdev.Factory{}, gbdev.DevROM(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	h.Close()
	h.Close()
	if sup.Active() {
		t.Error("supervisor active after close")
	}
	if err := h.Wait(1); err == nil {
		t.Error("wait on closed handle succeeded")
	}
}
