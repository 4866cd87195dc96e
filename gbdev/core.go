package gbdev

import (
	"encoding/binary"
	"errors"
	"fmt"

	emucore "github.com/user-none/eblitui/api"

	"github.com/spottenn/pokemon-gym/memory"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	ramSize = 0x10000

	// A held direction moves one square after this many frames, then
	// repeats while held. A 10-frame tap moves exactly once.
	moveThreshold = 8
	moveRepeat    = 16
)

// Map bounds for player movement (wall ring at the edges).
const (
	minCoord = 1
	maxXRed  = 18
	maxYRed  = 16
)

// Script stages advanced by A presses.
const (
	stageIntro = iota
	stageStarter
	stageBadge
	stageCatch
	stageTravel
)

// Core is the deterministic development emulator. It keeps the whole
// machine state in a flat 64KB RAM addressed by Game Boy bus addresses
// so the memory reader works unmodified against it.
type Core struct {
	ram    [ramSize]byte
	fb     []byte
	frames uint64

	input     uint32
	prevInput uint32
	heldDir   int

	stage int
}

// NewCore boots the development core into the start of the storyline.
func NewCore() *Core {
	c := &Core{fb: make([]byte, ScreenWidth*ScreenHeight*4)}
	c.reset()
	return c
}

func (c *Core) reset() {
	c.writeString(memory.AddrPlayerName, "RED")
	c.writeString(memory.AddrRivalName, "BLUE")
	copy(c.ram[memory.AddrMoney:], []byte{0x00, 0x30, 0x00}) // 3000
	c.ram[memory.AddrCurMap] = 0x00                          // PALLET_TOWN
	c.ram[memory.AddrXCoord] = 5
	c.ram[memory.AddrYCoord] = 6
	c.ram[memory.AddrCurTileset] = 0x00
	c.ram[memory.AddrSpriteFacing] = memory.FacingDown
	c.drawRoom()
	c.setDialog("OAK: RED! PRESS A WHEN YOU ARE READY!")
}

func (c *Core) writeString(addr uint32, s string) {
	tiles := memory.Encode(s)
	copy(c.ram[addr:], tiles)
	c.ram[addr+uint32(len(tiles))] = 0x50
}

// drawRoom fills the screen tile buffer with a walkable interior and a
// blocked wall ring.
func (c *Core) drawRoom() {
	for y := 0; y < memory.TileMapHeight; y++ {
		for x := 0; x < memory.TileMapWidth; x++ {
			t := byte(0x00)
			if y < 2 || y >= memory.TileMapHeight-2 || x < 2 || x >= memory.TileMapWidth-2 {
				t = 0x7C
			}
			c.ram[memory.AddrTileMap+uint32(y*memory.TileMapWidth+x)] = t
		}
	}
}

// setDialog writes text into the bottom rows of the tile buffer, where
// the game draws its text box.
func (c *Core) setDialog(text string) {
	c.clearDialog()
	row := 14
	for len(text) > 0 && row < memory.TileMapHeight {
		line := text
		if len(line) > memory.TileMapWidth {
			line = line[:memory.TileMapWidth]
		}
		text = text[len(line):]
		copy(c.ram[memory.AddrTileMap+uint32(row*memory.TileMapWidth):], memory.Encode(line))
		row++
	}
}

func (c *Core) clearDialog() {
	for y := 14; y < memory.TileMapHeight; y++ {
		for x := 0; x < memory.TileMapWidth; x++ {
			c.ram[memory.AddrTileMap+uint32(y*memory.TileMapWidth+x)] = 0x7C
		}
	}
}

// RunFrame advances one frame: movement from held d-pad bits, script
// progression on A press edges, then the framebuffer redraw.
func (c *Core) RunFrame() {
	c.frames++

	if dir, ok := heldDirection(c.input); ok {
		c.heldDir++
		if c.heldDir == moveThreshold || (c.heldDir > moveThreshold && (c.heldDir-moveThreshold)%moveRepeat == 0) {
			c.move(dir)
		}
	} else {
		c.heldDir = 0
	}

	pressed := c.input &^ c.prevInput
	if pressed&(1<<4) != 0 { // A
		c.advanceScript()
	}
	if pressed&(1<<5) != 0 { // B
		c.clearDialog()
	}
	c.prevInput = c.input

	c.render()
}

func heldDirection(input uint32) (byte, bool) {
	switch {
	case input&(1<<emucore.ButtonUp) != 0:
		return memory.FacingUp, true
	case input&(1<<emucore.ButtonDown) != 0:
		return memory.FacingDown, true
	case input&(1<<emucore.ButtonLeft) != 0:
		return memory.FacingLeft, true
	case input&(1<<emucore.ButtonRight) != 0:
		return memory.FacingRight, true
	}
	return 0, false
}

func (c *Core) move(dir byte) {
	c.ram[memory.AddrSpriteFacing] = dir
	x := int(c.ram[memory.AddrXCoord])
	y := int(c.ram[memory.AddrYCoord])
	switch dir {
	case memory.FacingUp:
		y--
	case memory.FacingDown:
		y++
	case memory.FacingLeft:
		x--
	case memory.FacingRight:
		x++
	}
	if x < minCoord {
		x = minCoord
	}
	if x > maxXRed {
		x = maxXRed
	}
	if y < minCoord {
		y = minCoord
	}
	if y > maxYRed {
		y = maxYRed
	}
	c.ram[memory.AddrXCoord] = byte(x)
	c.ram[memory.AddrYCoord] = byte(y)
}

func (c *Core) advanceScript() {
	switch c.stage {
	case stageIntro:
		c.givePokemon(0, 7, "SQUIRTLE", 5, 19, 20, 0x15)
		c.giveItem(0x04, 5)  // POKE_BALL
		c.giveItem(0x14, 3)  // POTION
		c.setDialog("RED RECEIVED SQUIRTLE!")
	case stageStarter:
		c.ram[memory.AddrBadges] |= 1 << 0
		c.setDialog("RED RECEIVED THE BOULDER BADGE!")
	case stageBadge:
		c.givePokemon(1, 16, "PIDGEY", 3, 12, 12, 0x00)
		c.setDialog("RED CAUGHT PIDGEY!")
	case stageCatch:
		c.ram[memory.AddrCurMap] = 0x01 // VIRIDIAN_CITY
		c.ram[memory.AddrXCoord] = 10
		c.ram[memory.AddrYCoord] = 8
		c.setDialog("WELCOME TO VIRIDIAN CITY!")
	default:
		c.clearDialog()
		return
	}
	c.stage++
}

func (c *Core) givePokemon(slot int, species byte, nick string, level, hp, maxHP int, typ byte) {
	c.ram[memory.AddrPartyCount] = byte(slot + 1)
	c.ram[memory.AddrPartySpecies+uint32(slot)] = species
	c.ram[memory.AddrPartySpecies+uint32(slot)+1] = 0xFF

	base := memory.AddrPartyMons + uint32(slot)*44
	c.ram[base] = species
	binary.BigEndian.PutUint16(c.ram[base+1:base+3], uint16(hp))
	c.ram[base+5] = typ
	c.ram[base+6] = typ
	c.ram[base+8] = 0x21 // TACKLE
	c.ram[base+29] = 35
	c.ram[base+33] = byte(level)
	binary.BigEndian.PutUint16(c.ram[base+34:base+36], uint16(maxHP))

	c.writeString(memory.AddrPartyNicks+uint32(slot)*11, nick)
}

func (c *Core) giveItem(id, qty byte) {
	n := c.ram[memory.AddrNumBagItems]
	base := memory.AddrBagItems + uint32(n)*2
	c.ram[base] = id
	c.ram[base+1] = qty
	c.ram[base+2] = 0xFF
	c.ram[memory.AddrNumBagItems] = n + 1
}

// render produces a deterministic frame derived from position, map, and
// frame counter, so screenshots visibly track game progress.
func (c *Core) render() {
	mapID := c.ram[memory.AddrCurMap]
	px := c.ram[memory.AddrXCoord]
	py := c.ram[memory.AddrYCoord]
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			i := (y*ScreenWidth + x) * 4
			c.fb[i] = byte(x) ^ px*8 ^ mapID
			c.fb[i+1] = byte(y) ^ py*8
			c.fb[i+2] = byte(c.frames)
			c.fb[i+3] = 0xFF
		}
	}
}

// GetFramebuffer returns the current frame as RGBA pixel data.
func (c *Core) GetFramebuffer() []byte { return c.fb }

// GetFramebufferStride returns bytes per row in the framebuffer.
func (c *Core) GetFramebufferStride() int { return ScreenWidth * 4 }

// GetActiveHeight returns the active display height in pixels.
func (c *Core) GetActiveHeight() int { return ScreenHeight }

// GetAudioSamples returns silence; the development core has no APU.
func (c *Core) GetAudioSamples() []int16 { return nil }

// SetInput sets the button bitmask. Only player 0 is wired.
func (c *Core) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	c.input = buttons
}

// GetRegion returns NTSC; the Game Boy has a single video standard.
func (c *Core) GetRegion() emucore.Region { return emucore.RegionNTSC }

// SetRegion is a no-op.
func (c *Core) SetRegion(emucore.Region) {}

// GetTiming returns the Game Boy's frame timing.
func (c *Core) GetTiming() emucore.Timing {
	return emucore.Timing{FPS: 60, Scanlines: 154}
}

// SetOption is a no-op; the development core has no options.
func (c *Core) SetOption(key, value string) {}

// Close releases nothing; present to satisfy the interface.
func (c *Core) Close() {}

const (
	devStateMagic = 0x47424456 // "GBDV"
	devStateSize  = 4 + 8 + 4 + 4 + 4 + ramSize
)

// SerializeSize returns the fixed serialized state size.
func SerializeSize() int { return devStateSize }

// Serialize captures the complete core state.
func (c *Core) Serialize() ([]byte, error) {
	out := make([]byte, devStateSize)
	binary.LittleEndian.PutUint32(out[0:], devStateMagic)
	binary.LittleEndian.PutUint64(out[4:], c.frames)
	binary.LittleEndian.PutUint32(out[12:], c.prevInput)
	binary.LittleEndian.PutUint32(out[16:], uint32(c.heldDir))
	binary.LittleEndian.PutUint32(out[20:], uint32(c.stage))
	copy(out[24:], c.ram[:])
	return out, nil
}

// Deserialize restores core state from a Serialize snapshot.
func (c *Core) Deserialize(data []byte) error {
	if len(data) != devStateSize {
		return fmt.Errorf("state size %d, want %d", len(data), devStateSize)
	}
	if binary.LittleEndian.Uint32(data[0:]) != devStateMagic {
		return errors.New("bad state magic")
	}
	c.frames = binary.LittleEndian.Uint64(data[4:])
	c.prevInput = binary.LittleEndian.Uint32(data[12:])
	c.heldDir = int(binary.LittleEndian.Uint32(data[16:]))
	c.stage = int(binary.LittleEndian.Uint32(data[20:]))
	copy(c.ram[:], data[24:])
	c.input = 0
	c.render()
	return nil
}

// ReadMemory reads from the flat Game Boy bus address space.
func (c *Core) ReadMemory(addr uint32, buf []byte) uint32 {
	if addr >= ramSize {
		return 0
	}
	return uint32(copy(buf, c.ram[addr:]))
}
