package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/echip8/adapter"
	"github.com/user-none/echip8/emu"
)

// The D-pad arrives on the frontend's direction bits, which the emulator
// maps to keys 2/4/6/8.
func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: emu.KeyButtonBase + emu.PadKeyA},
		{RetroID: libretro.JoypadB, BitID: emu.KeyButtonBase + emu.PadKeyB},
		{RetroID: libretro.JoypadStart, BitID: emu.KeyButtonBase + emu.PadKeyStart},
	})
}

func main() {}
