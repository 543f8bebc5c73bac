package emuios

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/user-none/echip8/emu"
)

func writeROM(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.ch8")
	assert.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// TestIOS_RunFrame tests a full init, input and frame cycle
func TestIOS_RunFrame(t *testing.T) {
	t.Cleanup(Close)

	// wait for a key, then set the sound timer from it and spin
	path := writeROM(t, []byte{
		0xF0, 0x0A, // LD V0, K
		0xF0, 0x18, // LD ST, V0
		0x12, 0x04, // JP 0x204
	})
	assert.True(t, InitFromPath(path, 0))

	RunFrame()
	assert.Len(t, GetFrameData(), emu.ScreenWidth*emu.ScreenHeight*4)
	assert.False(t, SoundActive())

	SetKey(9, true)
	RunFrame()
	assert.True(t, SoundActive())
	assert.False(t, Halted())
	assert.Equal(t, "", HaltReason())

	PrepareRAM()
	assert.Equal(t, emu.MemorySize, RAMLen())
	assert.Equal(t, 0xF0, RAMByte(emu.ProgramStart))
	assert.Equal(t, 0, RAMByte(-1))
}

// TestIOS_Halt tests that a fatal error is reported
func TestIOS_Halt(t *testing.T) {
	t.Cleanup(Close)

	assert.True(t, InitFromPath(writeROM(t, []byte{0x00, 0xEE}), 1))
	assert.Equal(t, 1, Region())

	RunFrame()
	assert.True(t, Halted())
	assert.True(t, HaltReason() != "")
}

func TestIOS_NoEmulator(t *testing.T) {
	Close()
	RunFrame()
	assert.True(t, GetFrameData() == nil)
	assert.False(t, SoundActive())
	assert.False(t, Halted())
	assert.False(t, InitFromPath("/nonexistent/game.ch8", 0))
}

func TestIOS_ExtractAndStoreROM(t *testing.T) {
	data := []byte{0x00, 0xE0, 0x12, 0x02}
	src := writeROM(t, data)
	dest := t.TempDir()

	res, err := ExtractAndStoreROM(src, dest)
	assert.NoError(t, err)
	crcHex := fmt.Sprintf("%08X", crc32.ChecksumIEEE(data))
	assert.Equal(t, crcHex, res.Crc32)
	assert.Equal(t, "game.ch8", res.Filename)

	stored, err := os.ReadFile(filepath.Join(dest, crcHex+".ch8"))
	assert.NoError(t, err)
	assert.Equal(t, data, stored)

	assert.Equal(t, int64(crc32.ChecksumIEEE(data)), GetCRC32FromPath(src))
	assert.Equal(t, int64(-1), GetCRC32FromPath("/nonexistent/game.ch8"))
}
