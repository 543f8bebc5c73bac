package emu

import (
	"errors"
	"fmt"
	"image"

	"github.com/retroenv/retrogolib/log"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-sn76489"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const (
	sampleRate = 48000

	// psgClockHz is the tone generator input clock.
	psgClockHz = 3579545

	// toneDivider sets channel 0 to psgClockHz / (32 * 254), about 440 Hz.
	toneDivider = 254

	// toneAttenuation is the channel 0 volume while the tone plays; 0 is
	// loudest and 0x0F is off.
	toneAttenuation = 0x02

	// DefaultInstructionsPerFrame gives roughly 660 instructions per second
	// at 60 frames per second.
	DefaultInstructionsPerFrame = 11
)

// Core option keys understood by SetOption.
const (
	OptionDeferredCall    = "deferred_call"
	OptionExtendedOpcodes = "extended_opcodes"
	OptionTrace           = "trace"
)

// ErrEmptyROM is returned when the ROM image has no data.
var ErrEmptyROM = errors.New("rom image is empty")

var (
	pixelOn  = [4]uint8{0xFF, 0xFF, 0xFF, 0xFF}
	pixelOff = [4]uint8{0x00, 0x00, 0x00, 0xFF}
)

// Config holds the frame runner settings.
type Config struct {
	InstructionsPerFrame int
	Quirks               Quirks
}

// DefaultConfig returns the settings used by NewEmulator.
func DefaultConfig() Config {
	return Config{
		InstructionsPerFrame: DefaultInstructionsPerFrame,
	}
}

// Emulator drives an Interpreter one video frame at a time. It is the host
// loop the frontends talk to: it steps the interpreter, ticks the timers at
// 60 Hz and converts the display to RGBA.
type Emulator struct {
	cpu    *Interpreter
	config Config

	// Region timing
	region Region
	timing RegionTiming

	// Timer ticks are accumulated in units of 1/FPS so frame rates other
	// than 60 still count down at exactly TimerHz.
	timerAcc int

	framebuffer *image.RGBA

	psg            *sn76489.SN76489
	toneOn         bool
	clocksPerFrame int
	audioBuffer    []int16 // 16-bit stereo output for the last frame

	romSize   int
	romLoaded int

	logger *log.Logger
	trace  bool
	halted error
}

// NewEmulator creates an emulator with the default configuration and loads
// the ROM image.
func NewEmulator(rom []byte, region Region) (Emulator, error) {
	return NewEmulatorWithConfig(rom, region, DefaultConfig())
}

// NewEmulatorWithConfig creates an emulator with cfg and loads the ROM image.
func NewEmulatorWithConfig(rom []byte, region Region, cfg Config) (Emulator, error) {
	if len(rom) == 0 {
		return Emulator{}, ErrEmptyROM
	}
	if cfg.InstructionsPerFrame <= 0 {
		cfg.InstructionsPerFrame = DefaultInstructionsPerFrame
	}

	cpu := NewInterpreter(WithQuirks(cfg.Quirks))
	loaded := cpu.Load(rom)

	e := Emulator{
		cpu:         cpu,
		config:      cfg,
		romSize:     len(rom),
		romLoaded:   loaded,
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
	}
	e.SetRegion(region)
	e.render()
	return e, nil
}

// SetLogger sets the logger used for load, halt and trace messages.
func (e *Emulator) SetLogger(logger *log.Logger) {
	e.logger = logger
	if logger == nil {
		return
	}
	logger.Debug("ROM loaded",
		log.Int("size", e.romSize),
		log.Int("loaded", e.romLoaded),
		log.String("crc32", fmt.Sprintf("%08X", e.cpu.Memory().GetROMCRC32())))
	if e.romLoaded < e.romSize {
		logger.Debug("ROM truncated to available memory", log.Int("dropped", e.romSize-e.romLoaded))
	}
}

// Interpreter returns the underlying virtual machine.
func (e *Emulator) Interpreter() *Interpreter {
	return e.cpu
}

// Err returns the fatal error that halted the interpreter, if any.
func (e *Emulator) Err() error {
	return e.halted
}

// SoundActive reports whether the sound timer is running.
func (e *Emulator) SoundActive() bool {
	return e.cpu.SoundActive()
}

// =============================================================================
// Shared Emulation Methods
// =============================================================================

// RunFrame executes one frame of emulation. Once the interpreter has hit a
// fatal error it only refreshes the display and audio buffers.
func (e *Emulator) RunFrame() {
	if e.halted == nil {
		for i := 0; i < e.config.InstructionsPerFrame; i++ {
			if err := e.step(); err != nil {
				e.halt(err)
				break
			}
		}
		e.tickTimers()
	}

	e.render()
	e.mixAudio()
}

func (e *Emulator) step() error {
	if e.trace && e.logger != nil {
		pc := e.cpu.PC()
		ins, err := e.cpu.Next()
		if err != nil {
			return err
		}
		e.logger.Info("Step",
			log.String("pc", fmt.Sprintf("0x%04X", pc)),
			log.String("word", fmt.Sprintf("0x%04X", ins.Word)),
			log.String("instruction", ins.String()))
	}
	return e.cpu.Step()
}

func (e *Emulator) halt(err error) {
	e.halted = err
	if e.logger != nil {
		e.logger.Error("Interpreter halted",
			log.Err(err),
			log.String("pc", fmt.Sprintf("0x%04X", e.cpu.PC())))
	}
}

func (e *Emulator) tickTimers() {
	e.timerAcc += TimerHz
	for e.timerAcc >= e.timing.FPS {
		e.cpu.TickDelay()
		e.cpu.TickSound()
		e.timerAcc -= e.timing.FPS
	}
}

func (e *Emulator) render() {
	e.cpu.Framebuffer().Render(e.framebuffer, pixelOn, pixelOff)
}

// mixAudio gates the tone on the sound timer and renders one frame of
// samples. A halted interpreter is muted.
func (e *Emulator) mixAudio() {
	on := e.halted == nil && e.cpu.SoundActive()
	if on != e.toneOn {
		if on {
			e.psg.Write(0x90 | toneAttenuation)
		} else {
			e.psg.Write(0x9F)
		}
		e.toneOn = on
	}

	e.audioBuffer = e.audioBuffer[:0]
	e.psg.GenerateSamples(e.clocksPerFrame)
	buffer, count := e.psg.GetBuffer()

	// Mono to stereo, halved so the duplicated channels are not louder
	for _, sample := range buffer[:count] {
		intSample := int16(sample * 32767 * 0.5)
		e.audioBuffer = append(e.audioBuffer, intSample, intSample)
	}
}

// SetInput sets the keypad from a button bitmask. Bit KeyButtonBase+n is
// hex key n. The D-pad bits press the 2/4/6/8 steering keys. Only player 0
// is connected.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	e.cpu.Keypad().SetMask(keysFromButtons(buttons))
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.framebuffer.Pix
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.framebuffer.Stride
}

// GetActiveHeight returns the display height, always 32.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion returns the emulator's region setting
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and line count for the current region.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: ScreenHeight,
	}
}

// SetRegion updates the emulator's region configuration
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
	e.timerAcc = 0

	samplesPerFrame := sampleRate / e.timing.FPS
	e.psg = sn76489.New(psgClockHz, sampleRate, samplesPerFrame*2, sn76489.Sega)
	e.psg.Write(0x80 | toneDivider&0x0F) // latch channel 0 tone, low bits
	e.psg.Write(toneDivider >> 4 & 0x3F)
	e.toneOn = false
	e.clocksPerFrame = psgClockHz / e.timing.FPS
	e.audioBuffer = make([]int16, 0, samplesPerFrame*4)
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	enabled := value == "true"
	q := e.cpu.Quirks()
	switch key {
	case OptionDeferredCall:
		q.DeferredCall = enabled
	case OptionExtendedOpcodes:
		q.Extended = enabled
	case OptionTrace:
		e.trace = enabled
		return
	default:
		return
	}
	e.cpu.SetQuirks(q)
	e.config.Quirks = q
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// GetAudioSamples returns the last frame's audio as 16-bit stereo PCM: a
// square tone while the sound timer runs, silence otherwise.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. The flat address space is interpreter memory,
// 0x000-0xFFB.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	mem := e.cpu.Memory()
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= MemorySize {
			return count
		}
		buf[i] = mem.Get(uint16(cur))
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: MemorySize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	if regionType != emucore.MemorySystemRAM {
		return nil
	}
	out := make([]byte, MemorySize)
	e.ReadMemory(0, out)
	return out
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	if regionType != emucore.MemorySystemRAM {
		return
	}
	mem := e.cpu.Memory()
	for i := 0; i < len(data) && i < MemorySize; i++ {
		mem.Set(uint16(i), data[i])
	}
}
