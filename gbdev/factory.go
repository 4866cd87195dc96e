package gbdev

import (
	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var (
	_ emucore.CoreFactory     = (*Factory)(nil)
	_ emucore.Emulator        = (*Core)(nil)
	_ emucore.SaveStater      = (*Core)(nil)
	_ emucore.MemoryInspector = (*Core)(nil)
)

// Factory implements emucore.CoreFactory for the development core.
type Factory struct{}

// SystemInfo returns system metadata.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "gbdev",
		ConsoleName:     "Game Boy",
		Extensions:      []string{".gb"},
		ScreenWidth:     ScreenWidth,
		MaxScreenHeight: ScreenHeight,
		AspectRatio:     float64(ScreenWidth) / float64(ScreenHeight),
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "A", ID: 4, DefaultKey: "J", DefaultPad: "A"},
			{Name: "B", ID: 5, DefaultKey: "K", DefaultPad: "B"},
			{Name: "Select", ID: 6, DefaultKey: "Backspace", DefaultPad: "Select"},
			{Name: "Start", ID: 7, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players:       1,
		CoreName:      "gbdev",
		CoreVersion:   "1.0.0",
		SerializeSize: SerializeSize(),
	}
}

// CreateEmulator creates a development core. The ROM contents beyond
// the header are ignored; the scripted state machine stands in for it.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	return NewCore(), nil
}

// DetectRegion returns NTSC; the Game Boy is region-free.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emucore.RegionNTSC, false
}
