package adapter

import (
	"github.com/retroenv/retrogolib/log"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/echip8/config"
	"github.com/user-none/echip8/emu"
	"github.com/user-none/echip8/romloader"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the CHIP-8 interpreter.
type Factory struct {
	// Logger receives load, halt and trace messages of the emulators the
	// factory creates. A default console logger is used when nil.
	Logger *log.Logger
}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            emu.Name,
		ConsoleName:     "CHIP-8",
		Extensions:      romloader.Extensions,
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     64.0 / 32.0,
		SampleRate:      48000,
		// Hex keys 0-F. The default keys are the four left-hand keyboard
		// rows of an AZERTY layout, read left to right. The D-pad is
		// handled by the emulator and presses 2, 4, 6 and 8.
		Buttons: []emucore.Button{
			{Name: "0", ID: emu.KeyButtonBase + 0x0, DefaultKey: "1"},
			{Name: "1", ID: emu.KeyButtonBase + 0x1, DefaultKey: "2"},
			{Name: "2", ID: emu.KeyButtonBase + 0x2, DefaultKey: "3"},
			{Name: "3", ID: emu.KeyButtonBase + 0x3, DefaultKey: "4"},
			{Name: "4", ID: emu.KeyButtonBase + 0x4, DefaultKey: "A"},
			{Name: "5", ID: emu.KeyButtonBase + 0x5, DefaultKey: "Z", DefaultPad: "A"},
			{Name: "6", ID: emu.KeyButtonBase + 0x6, DefaultKey: "E"},
			{Name: "7", ID: emu.KeyButtonBase + 0x7, DefaultKey: "R"},
			{Name: "8", ID: emu.KeyButtonBase + 0x8, DefaultKey: "Q"},
			{Name: "9", ID: emu.KeyButtonBase + 0x9, DefaultKey: "S"},
			{Name: "A", ID: emu.KeyButtonBase + 0xA, DefaultKey: "D", DefaultPad: "B"},
			{Name: "B", ID: emu.KeyButtonBase + 0xB, DefaultKey: "F"},
			{Name: "C", ID: emu.KeyButtonBase + 0xC, DefaultKey: "W"},
			{Name: "D", ID: emu.KeyButtonBase + 0xD, DefaultKey: "X"},
			{Name: "E", ID: emu.KeyButtonBase + 0xE, DefaultKey: "C"},
			{Name: "F", ID: emu.KeyButtonBase + 0xF, DefaultKey: "V", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         emu.OptionDeferredCall,
				Label:       "Deferred Subroutine Entry",
				Description: "Call only jumps; the subroutine starts on the next step",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
			},
			{
				Key:         emu.OptionExtendedOpcodes,
				Label:       "Extended Instructions",
				Description: "Enable 5xy0, 8xy7, 8xyE, 9xy0, Bnnn and Fx55",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
			},
			{
				Key:         emu.OptionTrace,
				Label:       "Trace Instructions",
				Description: "Log every executed instruction",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
			},
		},
		DataDirName: emu.Name,
		CoreName:    emu.Name,
		CoreVersion: emu.Version,
	}
}

// CreateEmulator creates a new emulator instance with the given ROM and region.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	if f.Logger == nil {
		f.Logger = config.CreateLogger(false, false)
	}
	e.SetLogger(f.Logger)
	return &e, nil
}

// DetectRegion auto-detects the region from ROM data.
// CHIP-8 programs carry no region, so the bool is always false.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DetectRegionFromROM(rom)
}
