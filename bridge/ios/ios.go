// Package emuios provides a gomobile-compatible interface to the emulator.
package emuios

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/user-none/echip8/config"
	"github.com/user-none/echip8/emu"
	"github.com/user-none/echip8/romloader"
)

// ExtractResult contains the result of ROM extraction
type ExtractResult struct {
	Crc32    string // Hex string, e.g., "AABBCCDD"
	Filename string // Original filename from archive, e.g., "Maze (1979).ch8"
}

// currentEmu holds the emulator state (unexported)
var currentEmu *emulatorState

type emulatorState struct {
	base      *emu.Emulator
	keys      uint32
	frameData []byte
	audioData []byte
	ramData   []byte
}

// InitFromPath creates an emulator from a ROM file path.
// Automatically extracts from ZIP/7z/gzip/RAR if needed.
// regionCode: 0=NTSC (60 FPS), 1=PAL (50 FPS)
// Returns true on success, false on error.
func InitFromPath(path string, regionCode int) bool {
	rom, _, err := romloader.LoadROM(path)
	if err != nil {
		return false
	}

	region := emu.RegionNTSC
	if regionCode == 1 {
		region = emu.RegionPAL
	}
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return false
	}
	e.SetLogger(config.CreateLogger(false, false))
	currentEmu = &emulatorState{base: &e}
	return true
}

// Close releases the emulator.
func Close() {
	currentEmu = nil
}

// SetOption applies a core option, e.g. "extended_opcodes" = "true".
func SetOption(key, value string) {
	if currentEmu != nil {
		currentEmu.base.SetOption(key, value)
	}
}

// RunFrame executes one frame of emulation.
func RunFrame() {
	if currentEmu == nil {
		return
	}
	currentEmu.base.SetInput(0, currentEmu.keys)
	currentEmu.base.RunFrame()

	fb := currentEmu.base.GetFramebuffer()
	currentEmu.frameData = fb[:currentEmu.base.GetFramebufferStride()*emu.ScreenHeight]

	// Convert audio samples to little-endian bytes
	samples := currentEmu.base.GetAudioSamples()
	if len(samples) > 0 {
		currentEmu.audioData = make([]byte, len(samples)*2)
		for i, s := range samples {
			currentEmu.audioData[i*2] = byte(s)
			currentEmu.audioData[i*2+1] = byte(s >> 8)
		}
	} else {
		currentEmu.audioData = nil
	}
}

// FrameWidth returns the display width (always 64).
func FrameWidth() int {
	return emu.ScreenWidth
}

// FrameHeight returns the display height (always 32).
func FrameHeight() int {
	return emu.ScreenHeight
}

// GetFrameData returns the RGBA frame buffer of the last frame.
func GetFrameData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.frameData
}

// GetAudioData returns the entire audio buffer.
func GetAudioData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.audioData
}

// SetKey sets the state of hex key 0-F. Applied on the next RunFrame.
func SetKey(index int, pressed bool) {
	if currentEmu == nil {
		return
	}
	bit := uint32(1) << (emu.KeyButtonBase + index&0x0F)
	if pressed {
		currentEmu.keys |= bit
	} else {
		currentEmu.keys &^= bit
	}
}

// SoundActive reports whether the tone should be playing.
func SoundActive() bool {
	if currentEmu == nil {
		return false
	}
	return currentEmu.base.SoundActive()
}

// Halted reports whether the program stopped on a fatal error.
func Halted() bool {
	return currentEmu != nil && currentEmu.base.Err() != nil
}

// HaltReason returns the fatal error message, or an empty string.
func HaltReason() string {
	if !Halted() {
		return ""
	}
	return currentEmu.base.Err().Error()
}

// Region returns the current region (0=NTSC, 1=PAL).
func Region() int {
	if currentEmu == nil {
		return 0
	}
	if currentEmu.base.GetRegion() == emu.RegionPAL {
		return 1
	}
	return 0
}

// PrepareRAM copies interpreter memory to an internal buffer for inspection.
func PrepareRAM() {
	if currentEmu == nil {
		return
	}
	currentEmu.ramData = make([]byte, emu.MemorySize)
	currentEmu.base.ReadMemory(0, currentEmu.ramData)
}

// RAMLen returns the length of the prepared memory copy.
func RAMLen() int {
	if currentEmu == nil {
		return 0
	}
	return len(currentEmu.ramData)
}

// RAMByte returns a single byte of the prepared memory copy at index i.
func RAMByte(i int) int {
	if currentEmu == nil || i < 0 || i >= len(currentEmu.ramData) {
		return 0
	}
	return int(currentEmu.ramData[i])
}

// GetFPS returns the target FPS for a region code.
func GetFPS(regionCode int) int {
	if regionCode == 1 {
		return emu.GetTimingForRegion(emu.RegionPAL).FPS
	}
	return emu.GetTimingForRegion(emu.RegionNTSC).FPS
}

// GetCRC32FromPath calculates the CRC32 checksum of a ROM file.
// Automatically extracts from ZIP/7z/gzip/RAR if needed.
// Returns -1 on error.
func GetCRC32FromPath(path string) int64 {
	rom, _, err := romloader.LoadROM(path)
	if err != nil {
		return -1
	}

	return int64(crc32.ChecksumIEEE(rom))
}

// ExtractAndStoreROM extracts a ROM from an archive (or copies a raw ROM),
// calculates its CRC32, and stores it as {destDir}/{CRC32}.ch8.
// If a file with the same CRC32 already exists, it skips writing.
func ExtractAndStoreROM(srcPath, destDir string) (*ExtractResult, error) {
	rom, filename, err := romloader.LoadROM(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}

	crcHex := fmt.Sprintf("%08X", crc32.ChecksumIEEE(rom))
	destPath := filepath.Join(destDir, crcHex+".ch8")

	// Same CRC means same content
	if _, err := os.Stat(destPath); err == nil {
		return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
	}

	if err := os.WriteFile(destPath, rom, 0644); err != nil {
		return nil, fmt.Errorf("failed to write ROM: %w", err)
	}

	return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
}
