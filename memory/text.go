package memory

import "sort"

// Pokémon Red text tiles. 0x50 terminates strings; 0x7F is a space.
const (
	textTerminator = 0x50
	textSpace      = 0x7F
)

// charmap maps text tile values to characters. Tiles outside the map are
// not text (window borders, game graphics).
var charmap = map[byte]rune{
	0x4E: '\n', // line continuation
	0x54: '#',  // POKé abbreviation block, rendered as #
	0x7F: ' ',
	0x80: 'A', 0x81: 'B', 0x82: 'C', 0x83: 'D', 0x84: 'E', 0x85: 'F',
	0x86: 'G', 0x87: 'H', 0x88: 'I', 0x89: 'J', 0x8A: 'K', 0x8B: 'L',
	0x8C: 'M', 0x8D: 'N', 0x8E: 'O', 0x8F: 'P', 0x90: 'Q', 0x91: 'R',
	0x92: 'S', 0x93: 'T', 0x94: 'U', 0x95: 'V', 0x96: 'W', 0x97: 'X',
	0x98: 'Y', 0x99: 'Z', 0x9A: '(', 0x9B: ')', 0x9C: ':', 0x9D: ';',
	0x9E: '[', 0x9F: ']',
	0xA0: 'a', 0xA1: 'b', 0xA2: 'c', 0xA3: 'd', 0xA4: 'e', 0xA5: 'f',
	0xA6: 'g', 0xA7: 'h', 0xA8: 'i', 0xA9: 'j', 0xAA: 'k', 0xAB: 'l',
	0xAC: 'm', 0xAD: 'n', 0xAE: 'o', 0xAF: 'p', 0xB0: 'q', 0xB1: 'r',
	0xB2: 's', 0xB3: 't', 0xB4: 'u', 0xB5: 'v', 0xB6: 'w', 0xB7: 'x',
	0xB8: 'y', 0xB9: 'z',
	0xE0: '\'', 0xE1: '#', 0xE2: '#',
	0xE3: '-', 0xE6: '?', 0xE7: '!', 0xE8: '.',
	0xF1: '*', 0xF3: '/', 0xF4: ',',
	0xF6: '0', 0xF7: '1', 0xF8: '2', 0xF9: '3', 0xFA: '4',
	0xFB: '5', 0xFC: '6', 0xFD: '7', 0xFE: '8', 0xFF: '9',
}

// Encode converts ASCII text to text tiles, for cores that synthesize
// WRAM contents. Unmappable characters become spaces.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if t, ok := reverseCharmap[r]; ok {
			out = append(out, t)
		} else {
			out = append(out, textSpace)
		}
	}
	return out
}

// reverseCharmap is built once before use; characters with several
// tiles ('#') encode to the lowest one.
var reverseCharmap = buildEncodeTable()

func buildEncodeTable() map[rune]byte {
	tiles := make([]int, 0, len(charmap))
	for t := range charmap {
		tiles = append(tiles, int(t))
	}
	sort.Ints(tiles)

	reverse := make(map[rune]byte, len(charmap))
	for _, t := range tiles {
		r := charmap[byte(t)]
		if _, exists := reverse[r]; !exists {
			reverse[r] = byte(t)
		}
	}
	return reverse
}

// decodeString converts a 0x50-terminated tile sequence to a string.
func decodeString(tiles []byte) string {
	out := make([]rune, 0, len(tiles))
	for _, t := range tiles {
		if t == textTerminator {
			break
		}
		if r, ok := charmap[t]; ok {
			out = append(out, r)
		}
	}
	return string(out)
}

// isText reports whether a tile renders as a text character.
func isText(t byte) bool {
	_, ok := charmap[t]
	return ok
}
