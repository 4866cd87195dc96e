// Package memory reads structured game state out of Pokémon Red WRAM
// through the core's flat-address memory interface. Addresses are Game
// Boy bus addresses; the core adapter is responsible for mapping them.
package memory

// Pokémon Red WRAM addresses.
const (
	AddrTileMap       = 0xC3A0 // 20x18 screen tile buffer
	AddrSpriteFacing  = 0xC109 // player sprite facing direction
	AddrPlayerName    = 0xD158 // 11 bytes, 0x50-terminated
	AddrPartyCount    = 0xD163
	AddrPartySpecies  = 0xD164 // up to 6 + 0xFF terminator
	AddrPartyMons     = 0xD16B // 44 bytes per party member
	AddrPartyNicks    = 0xD2B5 // 11 bytes per party member
	AddrNumBagItems   = 0xD31D
	AddrBagItems      = 0xD31E // (id, quantity) pairs, 0xFF-terminated
	AddrMoney         = 0xD347 // 3 bytes BCD
	AddrRivalName     = 0xD34A // 11 bytes, 0x50-terminated
	AddrBadges        = 0xD356 // badge bitfield
	AddrCurMap        = 0xD35E
	AddrYCoord        = 0xD361
	AddrXCoord        = 0xD362
	AddrCurTileset    = 0xD367
	partyMonSize      = 44
	nameLength        = 11
	maxPartySize      = 6
	TileMapWidth      = 20
	TileMapHeight     = 18
)

// Party member struct offsets within a 44-byte entry.
const (
	monOffSpecies = 0
	monOffHP      = 1 // big-endian uint16
	monOffStatus  = 4
	monOffType1   = 5
	monOffType2   = 6
	monOffMoves   = 8  // 4 move ids
	monOffPP      = 29 // 4 PP counters
	monOffLevel   = 33
	monOffMaxHP   = 34 // big-endian uint16
)

// Sprite facing direction values stored at AddrSpriteFacing.
const (
	FacingDown  = 0x00
	FacingUp    = 0x04
	FacingLeft  = 0x08
	FacingRight = 0x0C
)
