// Package env is the environment façade: it translates high-level
// agent actions into emulator operations and assembles the observable
// game-state snapshot returned after each one.
package env

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spottenn/pokemon-gym/emu"
)

// ErrInvalidAction rejects malformed actions before any state mutation.
var ErrInvalidAction = errors.New("invalid action")

// ActionType discriminates the action union.
type ActionType string

const (
	ActionPressKeys ActionType = "press_key"
	ActionWait      ActionType = "wait"
)

// Action is the tagged union of agent requests: press an ordered key
// sequence, or advance frames with no input.
type Action struct {
	Type       ActionType `json:"type"`
	Keys       []string   `json:"keys,omitempty"`
	Frames     int        `json:"frames,omitempty"`
	HoldFrames int        `json:"hold_frames,omitempty"`
}

// Validate checks the action without touching any emulator state.
func (a Action) Validate() error {
	switch a.Type {
	case ActionPressKeys:
		if len(a.Keys) == 0 {
			return fmt.Errorf("%w: press_key requires at least one key", ErrInvalidAction)
		}
		for _, k := range a.Keys {
			if _, err := emu.ParseButton(k); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidAction, err)
			}
		}
		if a.HoldFrames < 0 {
			return fmt.Errorf("%w: hold_frames must not be negative", ErrInvalidAction)
		}
	case ActionWait:
		if a.Frames <= 0 {
			return fmt.Errorf("%w: wait requires a positive frame count", ErrInvalidAction)
		}
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

// Buttons resolves the key names. Call Validate first.
func (a Action) Buttons() ([]emu.Button, error) {
	buttons := make([]emu.Button, 0, len(a.Keys))
	for _, k := range a.Keys {
		b, err := emu.ParseButton(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		buttons = append(buttons, b)
	}
	return buttons, nil
}

// String renders the action for the step log.
func (a Action) String() string {
	if a.Type == ActionWait {
		return fmt.Sprintf("wait:%d", a.Frames)
	}
	return "press_key:" + strings.Join(a.Keys, "+")
}
