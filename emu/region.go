package emu

import (
	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region so frontends can pass it through.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// TimerHz is the rate at which the delay and sound timers count down.
const TimerHz = 60

// RegionTiming holds the frame rate the frontend drives RunFrame at.
type RegionTiming struct {
	FPS int
}

// NTSC timing: 60 frames per second, one timer tick per frame
var NTSCTiming = RegionTiming{
	FPS: 60,
}

// PAL timing: 50 frames per second, timers still count at 60 Hz
var PALTiming = RegionTiming{
	FPS: 50,
}

// GetTimingForRegion returns the appropriate timing constants
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}

// DetectRegionFromROM always reports NTSC. CHIP-8 programs carry no region
// information, so the bool is always false.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	return RegionNTSC, false
}
