package emu

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/retroenv/retrogolib/log"
)

// romFromWords assembles instruction words into a big-endian ROM image.
func romFromWords(words ...uint16) []byte {
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	return rom
}

// newTestInterpreter returns an interpreter with a fixed random seed and the
// given program loaded at ProgramStart.
func newTestInterpreter(t *testing.T, words ...uint16) *Interpreter {
	t.Helper()
	c := NewInterpreter(WithRand(rand.New(rand.NewPCG(1, 2))))
	c.Load(romFromWords(words...))
	return c
}

// poke writes instruction words at addr.
func poke(c *Interpreter, addr uint16, words ...uint16) {
	for i, w := range words {
		c.mem.Set(addr+uint16(i*2), uint8(w>>8))
		c.mem.Set(addr+uint16(i*2)+1, uint8(w))
	}
}

// exec runs a single instruction word at the current program counter state
// without fetching it from memory.
func exec(t *testing.T, c *Interpreter, word uint16) {
	t.Helper()
	if err := c.execute(decode(word, c.quirks.Extended), false); err != nil {
		t.Fatalf("execute 0x%04X: %v", word, err)
	}
}

// mustStep steps the interpreter and fails the test on error.
func mustStep(t *testing.T, c *Interpreter) {
	t.Helper()
	if err := c.Step(); err != nil {
		t.Fatalf("Step at 0x%04X: %v", c.pc, err)
	}
}

// newBufferLogger returns a debug level logger writing to buf. Used where a
// test expects error level output, which fails a test logger.
func newBufferLogger(buf *bytes.Buffer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.DebugLevel
	cfg.Output = buf
	return log.NewWithConfig(cfg)
}
