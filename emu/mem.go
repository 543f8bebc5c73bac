package emu

import "hash/crc32"

const (
	// MemorySize is the interpreter's address space. It stops 4 bytes short of
	// the usual 4KB and programs are expected to live within it.
	MemorySize = 4092

	// ProgramStart is where ROM images are copied and execution begins.
	ProgramStart = 0x200

	// MaxROMSize is the largest ROM image that fits above ProgramStart.
	MaxROMSize = MemorySize - ProgramStart

	glyphSize = 5 // bytes per hex digit glyph
)

// fontSet holds the 4x5 glyphs for the hex digits 0-F, stored at address 0.
var fontSet = [16 * glyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat interpreter address space with the glyphs preloaded.
type Memory struct {
	data   [MemorySize]uint8
	romCRC uint32
}

// NewMemory returns memory holding only the hex glyphs.
func NewMemory() *Memory {
	m := &Memory{}
	copy(m.data[:], fontSet[:])
	return m
}

// GlyphAddress returns the address of the glyph for the low nibble of digit.
func GlyphAddress(digit uint8) uint16 {
	return uint16(digit&0x0F) * glyphSize
}

// Load copies rom to ProgramStart and returns the number of bytes copied.
// Anything past MaxROMSize is dropped.
func (m *Memory) Load(rom []byte) int {
	n := copy(m.data[ProgramStart:], rom)
	m.romCRC = crc32.ChecksumIEEE(rom[:n])
	return n
}

// GetROMCRC32 returns the CRC32 of the loaded part of the ROM image.
func (m *Memory) GetROMCRC32() uint32 {
	return m.romCRC
}

// Get reads a byte. addr must be below MemorySize.
func (m *Memory) Get(addr uint16) uint8 {
	return m.data[addr]
}

// Set writes a byte. addr must be below MemorySize.
func (m *Memory) Set(addr uint16, val uint8) {
	m.data[addr] = val
}

// contains reports whether the n bytes starting at addr are addressable.
func (m *Memory) contains(addr uint16, n int) bool {
	return int(addr)+n <= MemorySize
}

// slice returns the n bytes starting at addr. The caller checks the range.
func (m *Memory) slice(addr uint16, n int) []uint8 {
	return m.data[int(addr) : int(addr)+n]
}
