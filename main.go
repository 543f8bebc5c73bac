//go:build !libretro

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/log"
	bridge "github.com/user-none/echip8/bridge/ebiten"
	"github.com/user-none/echip8/cli"
	"github.com/user-none/echip8/config"
	"github.com/user-none/echip8/emu"
	"github.com/user-none/echip8/romloader"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file")
	regionFlag := flag.String("region", "ntsc", "region: ntsc (60 FPS) or pal (50 FPS)")
	speed := flag.Int("speed", emu.DefaultInstructionsPerFrame, "instructions executed per frame")
	extended := flag.Bool("extended", false, "enable 5xy0, 8xy7, 8xyE, 9xy0, Bnnn and Fx55")
	deferredCall := flag.Bool("deferred-call", false, "call only jumps; the subroutine starts on the next step")
	debug := flag.Bool("debug", false, "enable debug logging")
	quiet := flag.Bool("quiet", false, "only log errors")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: go run main.go -rom <romfile> [-region ntsc|pal] [-speed n] [-extended] [-deferred-call]")
		os.Exit(1)
	}

	logger := config.CreateLogger(*debug, *quiet)

	romData, name, err := romloader.LoadROM(*romPath)
	if err != nil {
		logger.Fatal("Failed to load ROM", log.Err(err))
	}

	var region emu.Region
	switch strings.ToLower(*regionFlag) {
	case "ntsc":
		region = emu.RegionNTSC
	case "pal":
		region = emu.RegionPAL
	default:
		logger.Fatal("Invalid region (use ntsc or pal)", log.String("region", *regionFlag))
	}

	cfg := emu.DefaultConfig()
	if *speed > 0 {
		cfg.InstructionsPerFrame = *speed
	}
	cfg.Quirks.Extended = *extended
	cfg.Quirks.DeferredCall = *deferredCall

	e, err := bridge.NewEmulator(romData, region, cfg)
	if err != nil {
		logger.Fatal("Failed to create emulator", log.Err(err))
	}
	e.SetLogger(logger)

	runner := cli.NewRunner(e)
	defer runner.Close()

	ebiten.SetWindowSize(emu.ScreenWidth*10, emu.ScreenHeight*10)
	ebiten.SetWindowTitle("echip8 - " + name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth*2, emu.ScreenHeight*2, -1, -1)
	ebiten.SetTPS(emu.GetTimingForRegion(region).FPS)

	if err := ebiten.RunGame(runner); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("Program halted", log.Err(err))
		os.Exit(1)
	}
}
