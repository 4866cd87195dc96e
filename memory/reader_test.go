package memory

import (
	"reflect"
	"strings"
	"sync"
	"testing"
)

// fakeMem is a 64KB flat address space for exercising the reader.
type fakeMem struct {
	ram [0x10000]byte
}

func (f *fakeMem) ReadMemory(addr uint32, buf []byte) uint32 {
	n := copy(buf, f.ram[addr:])
	return uint32(n)
}

func (f *fakeMem) write(addr uint32, data []byte) {
	copy(f.ram[addr:], data)
}

func newTestMem(t *testing.T) *fakeMem {
	t.Helper()
	f := &fakeMem{}
	f.write(AddrPlayerName, append(Encode("RED"), textTerminator))
	f.write(AddrRivalName, append(Encode("BLUE"), textTerminator))
	f.write(AddrMoney, []byte{0x00, 0x30, 0x25}) // 3025 in BCD
	f.ram[AddrBadges] = 0x03                     // BOULDER + CASCADE
	f.ram[AddrCurMap] = 0x28                     // OAKS_LAB
	f.ram[AddrXCoord] = 5
	f.ram[AddrYCoord] = 3
	return f
}

func TestReaderPlayerInfo(t *testing.T) {
	r := NewReader(newTestMem(t))

	if got := r.PlayerName(); got != "RED" {
		t.Errorf("player name = %q, want RED", got)
	}
	if got := r.RivalName(); got != "BLUE" {
		t.Errorf("rival name = %q, want BLUE", got)
	}
	if got := r.Money(); got != 3025 {
		t.Errorf("money = %d, want 3025", got)
	}
	if got := r.Location(); got != "OAKS_LAB" {
		t.Errorf("location = %q, want OAKS_LAB", got)
	}
	x, y := r.Coordinates()
	if x != 5 || y != 3 {
		t.Errorf("coordinates = (%d, %d), want (5, 3)", x, y)
	}
	want := []string{"BOULDER", "CASCADE"}
	if got := r.Badges(); !reflect.DeepEqual(got, want) {
		t.Errorf("badges = %v, want %v", got, want)
	}
}

func TestReaderParty(t *testing.T) {
	f := newTestMem(t)
	f.ram[AddrPartyCount] = 1
	f.ram[AddrPartySpecies] = 7 // SQUIRTLE
	f.ram[AddrPartySpecies+1] = 0xFF

	mon := make([]byte, partyMonSize)
	mon[monOffSpecies] = 7
	mon[monOffHP] = 0x00
	mon[monOffHP+1] = 19
	mon[monOffStatus] = 0
	mon[monOffType1] = 0x15 // WATER
	mon[monOffType2] = 0x15
	mon[monOffMoves] = 0x21   // TACKLE
	mon[monOffMoves+1] = 0x27 // TAIL_WHIP
	mon[monOffPP] = 35
	mon[monOffPP+1] = 30
	mon[monOffLevel] = 5
	mon[monOffMaxHP] = 0x00
	mon[monOffMaxHP+1] = 20
	f.write(AddrPartyMons, mon)
	f.write(AddrPartyNicks, append(Encode("SQUIRTLE"), textTerminator))

	party := NewReader(f).Party()
	if len(party) != 1 {
		t.Fatalf("party size = %d, want 1", len(party))
	}
	got := party[0]
	if got.Species != "SQUIRTLE" || got.Nickname != "SQUIRTLE" {
		t.Errorf("species/nickname = %q/%q", got.Species, got.Nickname)
	}
	if got.Level != 5 || got.HP != 19 || got.MaxHP != 20 {
		t.Errorf("level/hp/maxhp = %d/%d/%d, want 5/19/20", got.Level, got.HP, got.MaxHP)
	}
	if !reflect.DeepEqual(got.Types, []string{"WATER"}) {
		t.Errorf("types = %v, want [WATER]", got.Types)
	}
	if len(got.Moves) != 2 || got.Moves[0].Name != "TACKLE" || got.Moves[0].PP != 35 {
		t.Errorf("moves = %v", got.Moves)
	}
	if got.Status != "" {
		t.Errorf("status = %q, want healthy", got.Status)
	}
}

func TestReaderPartyStatus(t *testing.T) {
	cases := []struct {
		status byte
		want   string
	}{
		{0x00, ""},
		{0x02, "SLEEP"},
		{1 << 3, "POISON"},
		{1 << 4, "BURN"},
		{1 << 5, "FREEZE"},
		{1 << 6, "PARALYSIS"},
	}
	for _, tc := range cases {
		if got := StatusName(tc.status); got != tc.want {
			t.Errorf("StatusName(%#x) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestReaderItems(t *testing.T) {
	f := newTestMem(t)
	f.ram[AddrNumBagItems] = 2
	f.write(AddrBagItems, []byte{0x04, 5, 0x14, 3, 0xFF})

	items := NewReader(f).Items()
	want := []Item{
		{Name: "POKE_BALL", Quantity: 5},
		{Name: "POTION", Quantity: 3},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("items = %v, want %v", items, want)
	}
}

func TestReaderDialog(t *testing.T) {
	f := newTestMem(t)
	// Fill screen with a non-text graphics tile, then place a text row.
	for i := range f.ram[AddrTileMap : AddrTileMap+TileMapWidth*TileMapHeight] {
		f.ram[AddrTileMap+uint32(i)] = 0x7C
	}
	f.write(AddrTileMap+14*TileMapWidth, Encode("HELLO WORLD!"))

	got := NewReader(f).Dialog()
	if got != "HELLO WORLD!" {
		t.Errorf("dialog = %q, want %q", got, "HELLO WORLD!")
	}
}

func TestReaderDialogEmptyScreen(t *testing.T) {
	f := newTestMem(t)
	for i := range f.ram[AddrTileMap : AddrTileMap+TileMapWidth*TileMapHeight] {
		f.ram[AddrTileMap+uint32(i)] = 0x7C
	}
	if got := NewReader(f).Dialog(); got != "" {
		t.Errorf("dialog = %q, want empty", got)
	}
}

func TestCollisionGridAndMoves(t *testing.T) {
	tiles := make([]byte, TileMapWidth*TileMapHeight)
	for i := range tiles {
		tiles[i] = 0x7C // blocked everywhere
	}
	// Open the block above the player (block 4,3 -> tiles y=6..7, x=8..9).
	tiles[6*TileMapWidth+8] = 0x00
	// Open the block right of the player (block 5,4 -> tiles y=8..9, x=10..11).
	tiles[8*TileMapWidth+10] = 0x00

	grid := CollisionGrid(tiles, 0x00)
	if !grid[3][4] {
		t.Error("block above player should be walkable")
	}
	if grid[5][4] {
		t.Error("block below player should be blocked")
	}

	moves := ValidMoves(grid)
	want := []string{"up", "right"}
	if !reflect.DeepEqual(moves, want) {
		t.Errorf("valid moves = %v, want %v", moves, want)
	}
}

func TestRenderCollisionMap(t *testing.T) {
	var grid [CollisionHeight][CollisionWidth]bool
	grid[3][4] = true

	out := RenderCollisionMap(grid, FacingUp)
	lines := strings.Split(out, "\n")
	if len(lines) < CollisionHeight+3 {
		t.Fatalf("unexpected map shape:\n%s", out)
	}
	// Player row is grid row 4, which is line index 5 (after top border).
	playerRow := lines[1+playerBlockY]
	if playerRow[1+playerBlockX] != '^' {
		t.Errorf("player marker missing in row %q", playerRow)
	}
	if !strings.Contains(out, "Legend:") {
		t.Errorf("legend missing:\n%s", out)
	}
	walkRow := lines[1+3]
	if walkRow[1+4] != '.' {
		t.Errorf("walkable block not rendered in row %q", walkRow)
	}
}

func TestNameTables(t *testing.T) {
	if got := SpeciesName(25); got != "PIKACHU" {
		t.Errorf("SpeciesName(25) = %q", got)
	}
	if got := SpeciesName(200); got != "UNKNOWN" {
		t.Errorf("SpeciesName(200) = %q", got)
	}
	if got := LocationName(0x00); got != "PALLET_TOWN" {
		t.Errorf("LocationName(0) = %q", got)
	}
	if got := ItemName(0x34); got != "OAKS_PARCEL" {
		t.Errorf("ItemName(0x34) = %q", got)
	}
	if got := MoveName(0x21); got != "TACKLE" {
		t.Errorf("MoveName(0x21) = %q", got)
	}
}

func TestEncodeDeterministicAndSafe(t *testing.T) {
	// '#' has several tiles; the lowest must win every time.
	if got := Encode("#"); len(got) != 1 || got[0] != 0x54 {
		t.Errorf("Encode(#) = %#v, want [0x54]", got)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := decodeString(Encode("HELLO WORLD!")); got != "HELLO WORLD!" {
					t.Errorf("round trip = %q", got)
				}
			}
		}()
	}
	wg.Wait()
}
