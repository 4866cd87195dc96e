package memory

import (
	"strings"

	emucore "github.com/user-none/eblitui/api"
)

// PartyMon is one decoded party member.
type PartyMon struct {
	Species  string   `json:"species"`
	Nickname string   `json:"nickname"`
	Level    int      `json:"level"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"max_hp"`
	Status   string   `json:"status,omitempty"`
	Types    []string `json:"types"`
	Moves    []Move   `json:"moves"`
}

// Move is a known move with remaining PP.
type Move struct {
	Name string `json:"name"`
	PP   int    `json:"pp"`
}

// Item is a bag slot.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Reader decodes structured game state from a core's memory interface.
type Reader struct {
	mem emucore.MemoryInspector
}

// NewReader wraps a core memory interface.
func NewReader(mem emucore.MemoryInspector) *Reader {
	return &Reader{mem: mem}
}

func (r *Reader) bytes(addr uint32, n int) []byte {
	buf := make([]byte, n)
	read := r.mem.ReadMemory(addr, buf)
	return buf[:read]
}

func (r *Reader) byteAt(addr uint32) byte {
	buf := r.bytes(addr, 1)
	if len(buf) == 0 {
		return 0
	}
	return buf[0]
}

// PlayerName returns the player's name.
func (r *Reader) PlayerName() string {
	return decodeString(r.bytes(AddrPlayerName, nameLength))
}

// RivalName returns the rival's name.
func (r *Reader) RivalName() string {
	return decodeString(r.bytes(AddrRivalName, nameLength))
}

// Money decodes the 3-byte BCD money counter.
func (r *Reader) Money() int {
	raw := r.bytes(AddrMoney, 3)
	total := 0
	for _, b := range raw {
		total = total*100 + int(b>>4)*10 + int(b&0x0F)
	}
	return total
}

// Badges returns the earned badge names in bitfield order.
func (r *Reader) Badges() []string {
	bits := r.byteAt(AddrBadges)
	badges := make([]string, 0, 8)
	for i, name := range badgeNames {
		if bits&(1<<uint(i)) != 0 {
			badges = append(badges, name)
		}
	}
	return badges
}

// Location returns the current map's name.
func (r *Reader) Location() string {
	return LocationName(r.byteAt(AddrCurMap))
}

// Coordinates returns the player's map coordinates as (x, y).
func (r *Reader) Coordinates() (int, int) {
	return int(r.byteAt(AddrXCoord)), int(r.byteAt(AddrYCoord))
}

// Party decodes the full party.
func (r *Reader) Party() []PartyMon {
	count := int(r.byteAt(AddrPartyCount))
	if count > maxPartySize {
		count = maxPartySize
	}
	party := make([]PartyMon, 0, count)
	for i := 0; i < count; i++ {
		data := r.bytes(AddrPartyMons+uint32(i*partyMonSize), partyMonSize)
		if len(data) < partyMonSize {
			break
		}
		nick := decodeString(r.bytes(AddrPartyNicks+uint32(i*nameLength), nameLength))
		party = append(party, decodeMon(data, nick))
	}
	return party
}

func decodeMon(data []byte, nick string) PartyMon {
	mon := PartyMon{
		Species:  SpeciesName(data[monOffSpecies]),
		Nickname: nick,
		Level:    int(data[monOffLevel]),
		HP:       int(data[monOffHP])<<8 | int(data[monOffHP+1]),
		MaxHP:    int(data[monOffMaxHP])<<8 | int(data[monOffMaxHP+1]),
		Status:   StatusName(data[monOffStatus]),
	}
	mon.Types = append(mon.Types, TypeName(data[monOffType1]))
	if data[monOffType2] != data[monOffType1] {
		mon.Types = append(mon.Types, TypeName(data[monOffType2]))
	}
	for m := 0; m < 4; m++ {
		id := data[monOffMoves+m]
		if id == 0 {
			continue
		}
		mon.Moves = append(mon.Moves, Move{
			Name: MoveName(id),
			PP:   int(data[monOffPP+m] & 0x3F),
		})
	}
	return mon
}

// Items decodes the bag contents.
func (r *Reader) Items() []Item {
	count := int(r.byteAt(AddrNumBagItems))
	if count > 20 {
		count = 20
	}
	raw := r.bytes(AddrBagItems, count*2)
	items := make([]Item, 0, count)
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0xFF {
			break
		}
		items = append(items, Item{Name: ItemName(raw[i]), Quantity: int(raw[i+1])})
	}
	return items
}

// tileMap reads the full 20x18 screen tile buffer.
func (r *Reader) tileMap() []byte {
	return r.bytes(AddrTileMap, TileMapWidth*TileMapHeight)
}

// Dialog extracts visible text from the screen tile buffer. Rows that
// contain text characters are decoded and joined; rows of pure graphics
// are skipped.
func (r *Reader) Dialog() string {
	tiles := r.tileMap()
	if len(tiles) < TileMapWidth*TileMapHeight {
		return ""
	}
	var lines []string
	for y := 0; y < TileMapHeight; y++ {
		row := tiles[y*TileMapWidth : (y+1)*TileMapWidth]
		textCount := 0
		var sb strings.Builder
		for _, t := range row {
			if r, ok := charmap[t]; ok {
				sb.WriteRune(r)
				if t != textSpace {
					textCount++
				}
			} else {
				sb.WriteByte(' ')
			}
		}
		if textCount >= 2 {
			lines = append(lines, strings.TrimSpace(sb.String()))
		}
	}
	return strings.Join(lines, "\n")
}

// CollisionMap renders the walkability view around the player.
func (r *Reader) CollisionMap() string {
	grid := CollisionGrid(r.tileMap(), r.byteAt(AddrCurTileset))
	return RenderCollisionMap(grid, r.byteAt(AddrSpriteFacing))
}

// ValidMoves lists the directions the player can step from here.
func (r *Reader) ValidMoves() []string {
	grid := CollisionGrid(r.tileMap(), r.byteAt(AddrCurTileset))
	return ValidMoves(grid)
}
