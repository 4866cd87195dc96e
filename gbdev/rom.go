// Package gbdev provides a deterministic development core behind the
// emucore interfaces. It synthesizes the WRAM layout the memory reader
// expects and advances a small scripted storyline, so the full harness
// can run and be tested without a licensed ROM or a real Game Boy
// engine.
package gbdev

const (
	romSize      = 0x8000
	romTitleAddr = 0x134
	romCsumAddr  = 0x14D
)

// DevROM builds a minimal cartridge image with a valid header checksum.
func DevROM() []byte {
	rom := make([]byte, romSize)
	copy(rom[romTitleAddr:], "POKEMON RED")
	var csum byte
	for _, b := range rom[0x134:0x14D] {
		csum = csum - b - 1
	}
	rom[romCsumAddr] = csum
	return rom
}
