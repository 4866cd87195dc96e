package emu

import "fmt"

// Game Boy cartridge header offsets.
const (
	romTitleStart     = 0x134
	romTitleEnd       = 0x144
	romHeaderChecksum = 0x14D
	romMinSize        = 0x150
)

// ValidateROM checks that the data looks like a Game Boy cartridge by
// verifying the header checksum at $14D. The checksum covers the header
// bytes $134-$14C using the formula from the boot ROM.
func ValidateROM(rom []byte) error {
	if len(rom) < romMinSize {
		return fmt.Errorf("ROM too short to contain a cartridge header (%d bytes)", len(rom))
	}

	var computed uint8
	for _, b := range rom[romTitleStart:romHeaderChecksum] {
		computed = computed - b - 1
	}

	if computed != rom[romHeaderChecksum] {
		return fmt.Errorf("header checksum mismatch: header=%02X computed=%02X",
			rom[romHeaderChecksum], computed)
	}
	return nil
}

// ROMTitle extracts the cartridge title from the header, trimming padding.
func ROMTitle(rom []byte) string {
	if len(rom) < romMinSize {
		return ""
	}
	title := rom[romTitleStart:romTitleEnd]
	end := len(title)
	for end > 0 && (title[end-1] == 0 || title[end-1] == ' ') {
		end--
	}
	return string(title[:end])
}
