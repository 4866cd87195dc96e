package gbdev

import (
	"bytes"
	"testing"

	"github.com/spottenn/pokemon-gym/memory"
)

func pressFrames(c *Core, buttons uint32, frames int) {
	c.SetInput(0, buttons)
	for i := 0; i < frames; i++ {
		c.RunFrame()
	}
	c.SetInput(0, 0)
	c.RunFrame()
}

func TestCoreBootState(t *testing.T) {
	r := memory.NewReader(NewCore())

	if got := r.PlayerName(); got != "RED" {
		t.Errorf("player name = %q", got)
	}
	if got := r.Location(); got != "PALLET_TOWN" {
		t.Errorf("location = %q", got)
	}
	if got := r.Money(); got != 3000 {
		t.Errorf("money = %d", got)
	}
	if got := len(r.Party()); got != 0 {
		t.Errorf("party size = %d, want 0", got)
	}
	if got := r.Dialog(); got == "" {
		t.Error("boot dialog missing")
	}
}

func TestCoreMovement(t *testing.T) {
	c := NewCore()
	r := memory.NewReader(c)
	_, y0 := r.Coordinates()

	// A 10-frame tap crosses the 8-frame threshold once.
	pressFrames(c, 1<<0, 10) // up
	_, y1 := r.Coordinates()
	if y1 != y0-1 {
		t.Errorf("y after one tap = %d, want %d", y1, y0-1)
	}
	if c.ram[memory.AddrSpriteFacing] != memory.FacingUp {
		t.Errorf("facing = %#x, want up", c.ram[memory.AddrSpriteFacing])
	}

	// Holding moves repeatedly but the wall ring clamps position.
	pressFrames(c, 1<<2, 600) // left, far past the boundary
	x, _ := r.Coordinates()
	if x != 1 {
		t.Errorf("x at wall = %d, want 1", x)
	}
}

func TestCoreScriptProgression(t *testing.T) {
	c := NewCore()
	r := memory.NewReader(c)

	pressFrames(c, 1<<4, 10) // A: starter
	party := r.Party()
	if len(party) != 1 || party[0].Species != "SQUIRTLE" {
		t.Fatalf("party after starter = %v", party)
	}
	if items := r.Items(); len(items) != 2 {
		t.Errorf("items = %v", items)
	}

	pressFrames(c, 1<<4, 10) // A: badge
	if badges := r.Badges(); len(badges) != 1 || badges[0] != "BOULDER" {
		t.Errorf("badges = %v", badges)
	}

	pressFrames(c, 1<<4, 10) // A: catch
	if party := r.Party(); len(party) != 2 {
		t.Errorf("party after catch = %v", party)
	}

	pressFrames(c, 1<<4, 10) // A: travel
	if got := r.Location(); got != "VIRIDIAN_CITY" {
		t.Errorf("location = %q, want VIRIDIAN_CITY", got)
	}
}

func TestCoreAEdgeTriggered(t *testing.T) {
	c := NewCore()
	// Holding A for many frames advances the script exactly once.
	pressFrames(c, 1<<4, 120)
	if c.stage != stageStarter {
		t.Errorf("stage = %d, want %d", c.stage, stageStarter)
	}
}

func TestCoreSaveStateRoundTrip(t *testing.T) {
	c := NewCore()
	pressFrames(c, 1<<4, 10)
	pressFrames(c, 1<<3, 10) // right
	snap, err := c.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != SerializeSize() {
		t.Fatalf("state size = %d, want %d", len(snap), SerializeSize())
	}

	fresh := NewCore()
	if err := fresh.Deserialize(snap); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fresh.ram[:], c.ram[:]) {
		t.Error("RAM not restored")
	}
	if fresh.stage != c.stage || fresh.frames != c.frames {
		t.Error("registers not restored")
	}

	if err := fresh.Deserialize(snap[:100]); err == nil {
		t.Error("short state accepted")
	}
	bad := append([]byte(nil), snap...)
	bad[0] ^= 0xFF
	if err := fresh.Deserialize(bad); err == nil {
		t.Error("bad magic accepted")
	}
}

func TestCoreFramebuffer(t *testing.T) {
	c := NewCore()
	c.RunFrame()
	fb := c.GetFramebuffer()
	if len(fb) != ScreenWidth*ScreenHeight*4 {
		t.Fatalf("framebuffer size = %d", len(fb))
	}
	before := append([]byte(nil), fb...)
	pressFrames(c, 1<<4, 10)
	if bytes.Equal(before, c.GetFramebuffer()) {
		t.Error("framebuffer did not change with game state")
	}
}

func TestDevROMHeaderValid(t *testing.T) {
	rom := DevROM()
	var csum byte
	for _, b := range rom[0x134:0x14D] {
		csum = csum - b - 1
	}
	if rom[0x14D] != csum {
		t.Errorf("header checksum = %#x, want %#x", rom[0x14D], csum)
	}
}
