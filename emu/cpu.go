package emu

import (
	"fmt"
	"math/rand/v2"
)

// Quirks selects behavior that differs between CHIP-8 interpreters.
type Quirks struct {
	// DeferredCall makes 2nnn a plain push and jump. Without it the first
	// instruction of the subroutine also runs within the same Step.
	DeferredCall bool

	// Extended enables 5xy0, 8xy7, 8xyE, 9xy0, Bnnn and Fx55. Without it
	// those words are decode failures like any other unknown word.
	Extended bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRand sets the random source used by Cxkk.
func WithRand(r *rand.Rand) Option {
	return func(c *Interpreter) {
		c.rng = r
	}
}

// WithQuirks sets the interpreter quirks.
func WithQuirks(q Quirks) Option {
	return func(c *Interpreter) {
		c.quirks = q
	}
}

// Interpreter is the CHIP-8 virtual machine. All state is owned by the
// instance; it is not safe for concurrent use.
type Interpreter struct {
	mem   *Memory
	v     [16]uint8
	i     uint16
	pc    uint16
	stack []uint16 // return addresses, no depth limit
	delay uint8
	sound uint8
	fb    Framebuffer
	keys  Keypad

	rng    *rand.Rand
	quirks Quirks
}

// NewInterpreter returns an interpreter with cleared state, the hex glyphs
// loaded at address 0 and the program counter at ProgramStart.
func NewInterpreter(opts ...Option) *Interpreter {
	c := &Interpreter{
		mem: NewMemory(),
		pc:  ProgramStart,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

// Load copies a ROM image to ProgramStart, truncated to MaxROMSize, and
// returns the number of bytes copied.
func (c *Interpreter) Load(rom []byte) int {
	return c.mem.Load(rom)
}

// Fetch returns the big-endian instruction word at the program counter.
func (c *Interpreter) Fetch() (uint16, error) {
	if !c.mem.contains(c.pc, 2) {
		return 0, &AddressError{PC: c.pc, Addr: int(c.pc), Size: 2}
	}
	return uint16(c.mem.Get(c.pc))<<8 | uint16(c.mem.Get(c.pc+1)), nil
}

// Next fetches and decodes the instruction at the program counter without
// executing it.
func (c *Interpreter) Next() (Instruction, error) {
	word, err := c.Fetch()
	if err != nil {
		return Instruction{}, err
	}
	return decode(word, c.quirks.Extended), nil
}

// Step executes one instruction. A call executes the first instruction of
// the subroutine as part of the same step unless Quirks.DeferredCall is set.
// Any returned error is fatal; the machine should not be stepped again.
func (c *Interpreter) Step() error {
	return c.step(false)
}

func (c *Interpreter) step(nested bool) error {
	ins, err := c.Next()
	if err != nil {
		return err
	}
	return c.execute(ins, nested)
}

// execute runs a decoded instruction. nested is set while running the
// subroutine entry of a call, which stops a second call from recursing.
func (c *Interpreter) execute(ins Instruction, nested bool) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCLS:
		c.fb.Clear()

	case OpRET:
		if len(c.stack) == 0 {
			return fmt.Errorf("instruction 0x%04X at 0x%04X: %w", ins.Word, c.pc, ErrStackUnderflow)
		}
		c.pc = c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]

	case OpJP:
		c.pc = ins.NNN
		return nil

	case OpCALL:
		c.stack = append(c.stack, c.pc)
		c.pc = ins.NNN
		if c.quirks.DeferredCall || nested {
			return nil
		}
		return c.step(true)

	case OpSE:
		c.skipIf(c.v[x] == ins.KK)

	case OpSNE:
		c.skipIf(c.v[x] != ins.KK)

	case OpSER:
		c.skipIf(c.v[x] == c.v[y])

	case OpSNER:
		c.skipIf(c.v[x] != c.v[y])

	case OpLD:
		c.v[x] = ins.KK

	case OpADD:
		c.v[x] += ins.KK

	case OpLDR:
		c.v[x] = c.v[y]

	case OpOR:
		c.v[x] |= c.v[y]

	case OpAND:
		c.v[x] &= c.v[y]

	case OpXOR:
		c.v[x] ^= c.v[y]

	case OpADDC:
		sum := uint16(c.v[x]) + uint16(c.v[y])
		c.v[x] = uint8(sum)
		c.v[0xF] = flag(sum > 0xFF)

	case OpSUB:
		vx, vy := c.v[x], c.v[y]
		c.v[x] = vx - vy
		c.v[0xF] = flag(vy <= vx)

	case OpSUBN:
		vx, vy := c.v[x], c.v[y]
		c.v[x] = vy - vx
		c.v[0xF] = flag(vx <= vy)

	case OpSHR:
		c.v[0xF] = c.v[x] & 0x01
		c.v[x] >>= 1

	case OpSHL:
		vx := c.v[x]
		c.v[x] = vx << 1
		c.v[0xF] = vx >> 7

	case OpLDI:
		c.i = ins.NNN

	case OpJPV0:
		c.pc = ins.NNN + uint16(c.v[0])
		return nil

	case OpRND:
		// UintN(256) covers the full byte range, 0 through 255 inclusive.
		c.v[x] = uint8(c.rng.UintN(256)) & ins.KK

	case OpDRW:
		n := int(ins.N)
		if !c.mem.contains(c.i, n) {
			return c.addressError(ins, c.i, n)
		}
		collision := c.fb.Draw(int(c.v[x]%ScreenWidth), int(c.v[y]%ScreenHeight), c.mem.slice(c.i, n))
		c.v[0xF] = flag(collision)

	case OpSKP:
		c.skipIf(c.keys.Pressed(int(c.v[x])))

	case OpSKNP:
		c.skipIf(!c.keys.Pressed(int(c.v[x])))

	case OpLDVDT:
		c.v[x] = c.delay

	case OpLDK:
		key, ok := c.keys.first()
		if !ok {
			// Stay on this instruction until the frontend reports a key.
			return nil
		}
		c.v[x] = key

	case OpLDDT:
		c.delay = c.v[x]

	case OpLDST:
		c.sound = c.v[x]

	case OpADDI:
		c.i += uint16(c.v[x])

	case OpLDF:
		c.i = GlyphAddress(c.v[x])

	case OpBCD:
		if !c.mem.contains(c.i, 3) {
			return c.addressError(ins, c.i, 3)
		}
		val := c.v[x]
		c.mem.Set(c.i, val/100)
		c.mem.Set(c.i+1, val/10%10)
		c.mem.Set(c.i+2, val%10)

	case OpSTRM:
		n := int(x) + 1
		if !c.mem.contains(c.i, n) {
			return c.addressError(ins, c.i, n)
		}
		copy(c.mem.slice(c.i, n), c.v[:n])

	case OpLDRM:
		n := int(x) + 1
		if !c.mem.contains(c.i, n) {
			return c.addressError(ins, c.i, n)
		}
		copy(c.v[:n], c.mem.slice(c.i, n))

	default:
		return &DecodeError{Word: ins.Word, PC: c.pc}
	}

	c.pc += 2
	return nil
}

// skipIf advances past the next instruction when cond holds. The caller
// still adds the normal 2.
func (c *Interpreter) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
}

func (c *Interpreter) addressError(ins Instruction, addr uint16, size int) error {
	return &AddressError{Word: ins.Word, PC: c.pc, Addr: int(addr), Size: size}
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// TickDelay decrements the delay timer if it is not already zero.
func (c *Interpreter) TickDelay() {
	if c.delay > 0 {
		c.delay--
	}
}

// TickSound decrements the sound timer if it is not already zero.
func (c *Interpreter) TickSound() {
	if c.sound > 0 {
		c.sound--
	}
}

// SetKey sets the pressed state of a hex key.
func (c *Interpreter) SetKey(index int, pressed bool) {
	c.keys.Set(index, pressed)
}

// Key reports whether a hex key is pressed.
func (c *Interpreter) Key(index int) bool {
	return c.keys.Pressed(index)
}

// Keypad gives the frontend access to the whole keypad.
func (c *Interpreter) Keypad() *Keypad {
	return &c.keys
}

// Framebuffer returns the display. Callers must treat it as read-only.
func (c *Interpreter) Framebuffer() *Framebuffer {
	return &c.fb
}

// Memory returns the interpreter memory.
func (c *Interpreter) Memory() *Memory {
	return c.mem
}

// PC returns the program counter.
func (c *Interpreter) PC() uint16 {
	return c.pc
}

// I returns the index register.
func (c *Interpreter) I() uint16 {
	return c.i
}

// V returns register Vx. The index is reduced to its low nibble.
func (c *Interpreter) V(index int) uint8 {
	return c.v[index&0x0F]
}

// StackDepth returns the number of return addresses on the call stack.
func (c *Interpreter) StackDepth() int {
	return len(c.stack)
}

// DelayTimer returns the delay timer value.
func (c *Interpreter) DelayTimer() uint8 {
	return c.delay
}

// SoundTimer returns the sound timer value.
func (c *Interpreter) SoundTimer() uint8 {
	return c.sound
}

// SoundActive reports whether the sound timer is nonzero.
func (c *Interpreter) SoundActive() bool {
	return c.sound > 0
}

// Quirks returns the active behavior switches.
func (c *Interpreter) Quirks() Quirks {
	return c.quirks
}

// SetQuirks changes the behavior switches. Takes effect on the next Step.
func (c *Interpreter) SetQuirks(q Quirks) {
	c.quirks = q
}
