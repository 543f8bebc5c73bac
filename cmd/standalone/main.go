//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/echip8/adapter"
	"github.com/user-none/echip8/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc (60 FPS), or pal (50 FPS)")
	extended := flag.Bool("extended", false, "enable 5xy0, 8xy7, 8xyE, 9xy0, Bnnn and Fx55")
	deferredCall := flag.Bool("deferred-call", false, "call only jumps; the subroutine starts on the next step")
	trace := flag.Bool("trace", false, "log every executed instruction")
	flag.Parse()

	factory := &adapter.Factory{}

	if *romPath != "" {
		options := map[string]string{}
		if *extended {
			options[emu.OptionExtendedOpcodes] = "true"
		}
		if *deferredCall {
			options[emu.OptionDeferredCall] = "true"
		}
		if *trace {
			options[emu.OptionTrace] = "true"
		}
		if err := standalone.RunDirect(factory, *romPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
