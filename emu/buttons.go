package emu

import (
	"fmt"
	"strings"

	emucore "github.com/user-none/eblitui/api"
)

// Button identifies one Game Boy input. The d-pad occupies the standard
// emucore bit positions (0-3); face buttons start at bit 4.
type Button int

const (
	ButtonUp     Button = emucore.ButtonUp
	ButtonDown   Button = emucore.ButtonDown
	ButtonLeft   Button = emucore.ButtonLeft
	ButtonRight  Button = emucore.ButtonRight
	ButtonA      Button = 4
	ButtonB      Button = 5
	ButtonSelect Button = 6
	ButtonStart  Button = 7
)

var buttonNames = map[Button]string{
	ButtonUp:     "up",
	ButtonDown:   "down",
	ButtonLeft:   "left",
	ButtonRight:  "right",
	ButtonA:      "a",
	ButtonB:      "b",
	ButtonSelect: "select",
	ButtonStart:  "start",
}

var buttonsByName = map[string]Button{
	"up":     ButtonUp,
	"down":   ButtonDown,
	"left":   ButtonLeft,
	"right":  ButtonRight,
	"a":      ButtonA,
	"b":      ButtonB,
	"select": ButtonSelect,
	"start":  ButtonStart,
}

// String returns the lower-case button name used on the wire and in logs.
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// Mask returns the button's bit in the emucore input bitmask.
func (b Button) Mask() uint32 {
	return 1 << uint(b)
}

// ParseButton resolves a button name (case-insensitive) to a Button.
func ParseButton(name string) (Button, error) {
	b, ok := buttonsByName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("invalid button: %q", name)
	}
	return b, nil
}
