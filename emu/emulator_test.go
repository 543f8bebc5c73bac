package emu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	emucore "github.com/user-none/eblitui/api"
)

func newTestEmulator(t *testing.T, region Region, words ...uint16) *Emulator {
	t.Helper()
	e, err := NewEmulator(romFromWords(words...), region)
	assert.NoError(t, err)
	e.SetLogger(log.NewTestLogger(t))
	return &e
}

// TestEmulator_EmptyROM tests that an empty image is rejected
func TestEmulator_EmptyROM(t *testing.T) {
	_, err := NewEmulator(nil, RegionNTSC)
	assert.True(t, errors.Is(err, ErrEmptyROM))
}

// TestEmulator_InstructionsPerFrame tests that a frame runs a fixed number of steps
func TestEmulator_InstructionsPerFrame(t *testing.T) {
	words := make([]uint16, 64)
	for i := range words {
		words[i] = 0x7001 // ADD V0, 1
	}
	e := newTestEmulator(t, RegionNTSC, words...)

	e.RunFrame()
	assert.Equal(t, uint8(DefaultInstructionsPerFrame), e.Interpreter().V(0))

	e.RunFrame()
	assert.Equal(t, uint8(2*DefaultInstructionsPerFrame), e.Interpreter().V(0))
	assert.NoError(t, e.Err())
}

// TestEmulator_Config tests a custom instruction rate
func TestEmulator_Config(t *testing.T) {
	cfg := Config{InstructionsPerFrame: 3, Quirks: Quirks{Extended: true}}
	e, err := NewEmulatorWithConfig(romFromWords(0x7001, 0x7001, 0x7001, 0x5000, 0x0000, 0x7001, 0x120C), RegionNTSC, cfg)
	assert.NoError(t, err)

	e.RunFrame()
	assert.Equal(t, uint8(3), e.Interpreter().V(0))

	e.RunFrame()
	assert.NoError(t, e.Err())
	assert.Equal(t, uint8(4), e.Interpreter().V(0), "5000 skips the zero word")
}

// TestEmulator_TimersNTSC tests one timer tick per 60 Hz frame
func TestEmulator_TimersNTSC(t *testing.T) {
	// LD V0, 60; LD DT, V0; LD ST, V0; JP self
	e := newTestEmulator(t, RegionNTSC, 0x603C, 0xF015, 0xF018, 0x1206)

	e.RunFrame()
	assert.Equal(t, uint8(59), e.Interpreter().DelayTimer())
	assert.True(t, e.SoundActive())

	for i := 0; i < 58; i++ {
		e.RunFrame()
	}
	assert.Equal(t, uint8(1), e.Interpreter().DelayTimer())

	e.RunFrame()
	e.RunFrame()
	assert.Equal(t, uint8(0), e.Interpreter().DelayTimer())
	assert.Equal(t, uint8(0), e.Interpreter().SoundTimer())
	assert.False(t, e.SoundActive())
}

// TestEmulator_TimersPAL tests that timers still run at 60 Hz with 50 frames per second
func TestEmulator_TimersPAL(t *testing.T) {
	e := newTestEmulator(t, RegionPAL, 0x60C8, 0xF015, 0x1204)

	for i := 0; i < 50; i++ {
		e.RunFrame()
	}
	assert.Equal(t, uint8(200-60), e.Interpreter().DelayTimer())
	assert.Equal(t, 50, e.GetTiming().FPS)
}

// TestEmulator_HaltOnDecodeError tests that a fatal error stops execution
func TestEmulator_HaltOnDecodeError(t *testing.T) {
	e := newTestEmulator(t, RegionNTSC, 0x7001, 0x5120, 0x7001)
	var buf bytes.Buffer
	e.SetLogger(newBufferLogger(&buf))

	e.RunFrame()
	var decErr *DecodeError
	assert.True(t, errors.As(e.Err(), &decErr))
	assert.Equal(t, uint16(0x5120), decErr.Word)
	assert.Equal(t, uint8(1), e.Interpreter().V(0))

	e.RunFrame()
	assert.Equal(t, uint16(0x202), e.Interpreter().PC())
	assert.Equal(t, uint8(1), e.Interpreter().V(0))
	assert.Equal(t, 1, strings.Count(buf.String(), "Interpreter halted"))
}

// TestEmulator_HaltOnEmptyReturn tests the stack underflow halt
func TestEmulator_HaltOnEmptyReturn(t *testing.T) {
	e := newTestEmulator(t, RegionNTSC, 0x00EE)
	var buf bytes.Buffer
	e.SetLogger(newBufferLogger(&buf))

	e.RunFrame()
	assert.True(t, errors.Is(e.Err(), ErrStackUnderflow))
	assert.True(t, strings.Contains(buf.String(), "return with empty call stack"))
}

// TestEmulator_SetInput tests the button bitmask to keypad mapping
func TestEmulator_SetInput(t *testing.T) {
	// LD V3, K; JP self
	e := newTestEmulator(t, RegionNTSC, 0xF30A, 0x1202)

	e.RunFrame()
	assert.Equal(t, uint16(0x200), e.Interpreter().PC())

	e.SetInput(1, 1<<(KeyButtonBase+4))
	e.RunFrame()
	assert.Equal(t, uint16(0x200), e.Interpreter().PC(), "player 2 is not connected")

	e.SetInput(0, 1<<(KeyButtonBase+0xB)|1<<(KeyButtonBase+0xE))
	assert.True(t, e.Interpreter().Key(0xB))
	assert.True(t, e.Interpreter().Key(0xE))
	assert.False(t, e.Interpreter().Key(0x4))

	e.RunFrame()
	assert.Equal(t, uint8(0xB), e.Interpreter().V(3))
	assert.Equal(t, uint16(0x202), e.Interpreter().PC())
}

// TestEmulator_Framebuffer tests RGBA conversion of the display
func TestEmulator_Framebuffer(t *testing.T) {
	// LD I, glyph 0; DRW V0, V0, 5; JP self
	e := newTestEmulator(t, RegionNTSC, 0xA000, 0xD005, 0x1204)
	e.RunFrame()

	fb := e.GetFramebuffer()
	stride := e.GetFramebufferStride()
	assert.Equal(t, ScreenWidth*4, stride)
	assert.Len(t, fb, stride*ScreenHeight)
	assert.Equal(t, ScreenHeight, e.GetActiveHeight())

	// Glyph 0 top row is 0xF0
	for x := 0; x < 8; x++ {
		want := pixelOff
		if x < 4 {
			want = pixelOn
		}
		off := x * 4
		assert.Equal(t, want[:], fb[off:off+4])
	}
	// Second row is 0x90
	off := stride + 1*4
	assert.Equal(t, pixelOff[:], fb[off:off+4])
}

// peakAmplitude returns the largest absolute sample value.
func peakAmplitude(samples []int16) int {
	peak := 0
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// TestEmulator_AudioTone tests that the tone follows the sound timer
func TestEmulator_AudioTone(t *testing.T) {
	// LD V0, 2; LD ST, V0; JP self
	e := newTestEmulator(t, RegionNTSC, 0x6002, 0xF018, 0x1204)

	e.RunFrame()
	assert.True(t, e.SoundActive())
	samples := e.GetAudioSamples()
	assert.True(t, len(samples) >= 2*(sampleRate/60-2), "one frame of stereo samples")
	assert.Equal(t, 0, len(samples)%2)
	assert.True(t, peakAmplitude(samples) > 500, "tone plays while ST > 0")

	// ST reaches 0 at the end of this frame
	e.RunFrame()
	assert.False(t, e.SoundActive())
	e.RunFrame()
	assert.True(t, peakAmplitude(e.GetAudioSamples()) < 64, "silent once ST is 0")
}

// TestEmulator_AudioSilent tests that a program without sound stays silent
func TestEmulator_AudioSilent(t *testing.T) {
	e := newTestEmulator(t, RegionNTSC, 0x1200)
	e.RunFrame()
	assert.True(t, peakAmplitude(e.GetAudioSamples()) < 64)

	e.SetRegion(RegionPAL)
	e.RunFrame()
	assert.True(t, len(e.GetAudioSamples()) >= 2*(sampleRate/50-2))
	assert.True(t, len(e.GetAudioSamples()) <= 2*(sampleRate/50+2))
	assert.Equal(t, RegionPAL, e.GetRegion())
}

// TestEmulator_AudioMutedOnHalt tests that a halt stops a running tone
func TestEmulator_AudioMutedOnHalt(t *testing.T) {
	// LD V0, 0xFF; LD ST, V0; RET with an empty stack
	e := newTestEmulator(t, RegionNTSC, 0x60FF, 0xF018, 0x00EE)
	e.SetLogger(nil)

	e.RunFrame()
	assert.True(t, e.Err() != nil)
	assert.True(t, e.SoundActive())
	e.RunFrame()
	assert.True(t, peakAmplitude(e.GetAudioSamples()) < 64)
}

// TestEmulator_Options tests core option handling
func TestEmulator_Options(t *testing.T) {
	e := newTestEmulator(t, RegionNTSC, 0x1200)

	e.SetOption(OptionExtendedOpcodes, "true")
	assert.True(t, e.Interpreter().Quirks().Extended)

	e.SetOption(OptionDeferredCall, "true")
	assert.True(t, e.Interpreter().Quirks().DeferredCall)
	assert.True(t, e.Interpreter().Quirks().Extended)

	e.SetOption(OptionExtendedOpcodes, "false")
	assert.False(t, e.Interpreter().Quirks().Extended)

	e.SetOption("unknown", "true")
	e.SetOption(OptionTrace, "true")
	assert.True(t, e.trace)

	// Trace logging must not change execution
	var buf bytes.Buffer
	e.SetLogger(newBufferLogger(&buf))
	e.SetOption(OptionDeferredCall, "false")
	e.RunFrame()
	assert.NoError(t, e.Err())
	assert.Equal(t, DefaultInstructionsPerFrame, strings.Count(buf.String(), "JP 0x200"))

	buf.Reset()
	e.SetOption(OptionTrace, "false")
	e.RunFrame()
	assert.False(t, strings.Contains(buf.String(), "JP 0x200"))
}

// TestEmulator_ReadMemory tests flat memory inspection
func TestEmulator_ReadMemory(t *testing.T) {
	e := newTestEmulator(t, RegionNTSC, 0x1234)

	buf := make([]byte, 5)
	assert.Equal(t, uint32(5), e.ReadMemory(0, buf))
	assert.Equal(t, fontSet[:5], buf)

	buf = make([]byte, 2)
	assert.Equal(t, uint32(2), e.ReadMemory(ProgramStart, buf))
	assert.Equal(t, []byte{0x12, 0x34}, buf)

	buf = make([]byte, 8)
	assert.Equal(t, uint32(4), e.ReadMemory(MemorySize-4, buf))
}

// TestEmulator_MemoryRegions tests the memory mapper interface
func TestEmulator_MemoryRegions(t *testing.T) {
	e := newTestEmulator(t, RegionNTSC, 0x1234)

	regions := e.MemoryMap()
	assert.Len(t, regions, 1)
	assert.True(t, int(regions[0].Size) == MemorySize)

	data := e.ReadRegion(emucore.MemorySystemRAM)
	assert.Len(t, data, MemorySize)
	assert.Equal(t, byte(0x12), data[ProgramStart])

	data[0x300] = 0x99
	e.WriteRegion(emucore.MemorySystemRAM, data)
	assert.Equal(t, uint8(0x99), e.Interpreter().Memory().Get(0x300))
}

// TestEmulator_OversizedROM tests that a ROM larger than memory loads truncated
func TestEmulator_OversizedROM(t *testing.T) {
	rom := make([]byte, MaxROMSize*2)
	rom[0], rom[1] = 0x12, 0x00
	e, err := NewEmulator(rom, RegionNTSC)
	assert.NoError(t, err)
	e.SetLogger(log.NewTestLogger(t))

	assert.Equal(t, MaxROMSize, e.romLoaded)
	e.RunFrame()
	assert.NoError(t, e.Err())
}
