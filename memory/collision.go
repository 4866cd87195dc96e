package memory

import "strings"

// Collision grid dimensions after downsampling the 20x18 tile map to
// the 10x9 block grid the overworld actually moves on.
const (
	CollisionWidth  = TileMapWidth / 2
	CollisionHeight = TileMapHeight / 2

	playerBlockX = 4
	playerBlockY = 4
)

// walkableTiles lists the tile ids the player can step onto, keyed by
// tileset id. Tilesets without an entry fall back to the overworld set.
var walkableTiles = map[byte]map[byte]bool{
	// Overworld
	0x00: tileSet(0x00, 0x10, 0x1B, 0x20, 0x21, 0x23, 0x2C, 0x2D, 0x36, 0x37, 0x3A, 0x3B, 0x3C, 0x52, 0x54, 0x58, 0x5B),
	// Player's house / indoor
	0x01: tileSet(0x01, 0x02, 0x03, 0x11, 0x12, 0x13, 0x14, 0x1C, 0x1A),
	// Pokémon Center / Mart
	0x02: tileSet(0x11, 0x1A, 0x1C, 0x3C, 0x5E),
	// Forest
	0x03: tileSet(0x1E, 0x20, 0x2E, 0x30, 0x34, 0x37, 0x39, 0x3A, 0x40, 0x51, 0x52, 0x5A, 0x5C, 0x5E, 0x5F),
	// Gym
	0x07: tileSet(0x11, 0x1A, 0x1C, 0x3B, 0x3C),
	// Cavern
	0x11: tileSet(0x05, 0x15, 0x18, 0x1A, 0x20, 0x21, 0x22, 0x27, 0x2A, 0x2B, 0x2E),
}

func tileSet(tiles ...byte) map[byte]bool {
	set := make(map[byte]bool, len(tiles))
	for _, t := range tiles {
		set[t] = true
	}
	return set
}

// CollisionGrid downsamples the raw 20x18 tile map into the 10x9 block
// grid, marking a block walkable if any of its four tiles is walkable
// for the given tileset.
func CollisionGrid(tiles []byte, tileset byte) [CollisionHeight][CollisionWidth]bool {
	var grid [CollisionHeight][CollisionWidth]bool
	if len(tiles) < TileMapWidth*TileMapHeight {
		return grid
	}
	walkable, ok := walkableTiles[tileset]
	if !ok {
		walkable = walkableTiles[0x00]
	}
	for by := 0; by < CollisionHeight; by++ {
		for bx := 0; bx < CollisionWidth; bx++ {
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					t := tiles[(by*2+dy)*TileMapWidth+bx*2+dx]
					if walkable[t] {
						grid[by][bx] = true
					}
				}
			}
		}
	}
	return grid
}

// ValidMoves reports which of up/down/left/right step onto a walkable
// block from the player's fixed screen position.
func ValidMoves(grid [CollisionHeight][CollisionWidth]bool) []string {
	moves := make([]string, 0, 4)
	if playerBlockY > 0 && grid[playerBlockY-1][playerBlockX] {
		moves = append(moves, "up")
	}
	if playerBlockY < CollisionHeight-1 && grid[playerBlockY+1][playerBlockX] {
		moves = append(moves, "down")
	}
	if playerBlockX > 0 && grid[playerBlockY][playerBlockX-1] {
		moves = append(moves, "left")
	}
	if playerBlockX < CollisionWidth-1 && grid[playerBlockY][playerBlockX+1] {
		moves = append(moves, "right")
	}
	return moves
}

func facingArrow(facing byte) rune {
	switch facing {
	case FacingUp:
		return '^'
	case FacingLeft:
		return '<'
	case FacingRight:
		return '>'
	default:
		return 'v'
	}
}

// RenderCollisionMap renders the block grid as a bordered ASCII map.
// The player marker shows facing; '.' is walkable, '#' is blocked.
func RenderCollisionMap(grid [CollisionHeight][CollisionWidth]bool, facing byte) string {
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", CollisionWidth) + "+\n")
	for y := 0; y < CollisionHeight; y++ {
		b.WriteByte('|')
		for x := 0; x < CollisionWidth; x++ {
			switch {
			case y == playerBlockY && x == playerBlockX:
				b.WriteRune(facingArrow(facing))
			case grid[y][x]:
				b.WriteByte('.')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString("+" + strings.Repeat("-", CollisionWidth) + "+\n")
	b.WriteString("Legend: " + string(facingArrow(facing)) + "=player  .=walkable  #=blocked\n")
	return b.String()
}
