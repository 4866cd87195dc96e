package emu

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestSaveStateRoundTrip(t *testing.T) {
	engine := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02}
	captured := time.Unix(1756200000, 0)

	blob := EncodeSaveState(42, captured, engine)
	state, err := DecodeSaveState(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Step != 42 {
		t.Errorf("step = %d, want 42", state.Step)
	}
	if !state.CapturedAt.Equal(captured) {
		t.Errorf("captured at = %v, want %v", state.CapturedAt, captured)
	}
	if !bytes.Equal(state.Engine, engine) {
		t.Errorf("engine payload mismatch")
	}
}

func TestSaveStateEmptyEngine(t *testing.T) {
	blob := EncodeSaveState(0, time.Now(), nil)
	state, err := DecodeSaveState(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(state.Engine) != 0 {
		t.Errorf("engine = %v, want empty", state.Engine)
	}
}

func TestDecodeSaveStateCorrupt(t *testing.T) {
	good := EncodeSaveState(7, time.Now(), []byte{1, 2, 3, 4})

	corrupt := func(mutate func([]byte) []byte) []byte {
		c := append([]byte(nil), good...)
		return mutate(c)
	}

	cases := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"truncated header", good[:10]},
		{"truncated payload", good[:len(good)-2]},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] ^= 0xFF; return b })},
		{"future version", corrupt(func(b []byte) []byte { b[12] = 0xFF; return b })},
		{"payload bit flip", corrupt(func(b []byte) []byte { b[len(b)-1] ^= 0x01; return b })},
		{"foreign blob", []byte("this is not a save state at all, not even close")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeSaveState(tc.blob); !errors.Is(err, ErrCorruptSave) {
				t.Errorf("error = %v, want ErrCorruptSave", err)
			}
		})
	}
}
