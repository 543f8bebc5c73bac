package emu

import (
	emucore "github.com/user-none/eblitui/api"
)

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// KeyButtonBase is the first SetInput bit used for the hex keys. The bits
// below it belong to the frontend's D-pad.
const KeyButtonBase = 16

// Hex keys bound to the gamepad face buttons.
const (
	PadKeyA     = 0x5
	PadKeyB     = 0xA
	PadKeyStart = 0xF
)

// dpadKeys maps the D-pad to the 2/4/6/8 cross most programs steer with.
var dpadKeys = [...]struct {
	bit uint
	key uint
}{
	{uint(emucore.ButtonUp), 0x2},
	{uint(emucore.ButtonDown), 0x8},
	{uint(emucore.ButtonLeft), 0x4},
	{uint(emucore.ButtonRight), 0x6},
}

// keysFromButtons converts a frontend button mask to a hex key mask.
func keysFromButtons(buttons uint32) uint32 {
	mask := buttons >> KeyButtonBase
	for _, d := range dpadKeys {
		if buttons&(1<<d.bit) != 0 {
			mask |= 1 << d.key
		}
	}
	return mask
}

// Keypad holds the pressed state of the 16 hex keys. It is written by the
// frontend and only read by the interpreter.
type Keypad struct {
	keys [KeyCount]bool
}

// Set updates one key. The index is reduced to its low nibble.
func (k *Keypad) Set(index int, pressed bool) {
	k.keys[index&0x0F] = pressed
}

// Pressed reports whether the key is held.
func (k *Keypad) Pressed(index int) bool {
	return k.keys[index&0x0F]
}

// SetMask replaces the whole keypad state from a bitmask, bit n = key n.
func (k *Keypad) SetMask(mask uint32) {
	for i := range k.keys {
		k.keys[i] = mask&(1<<i) != 0
	}
}

// Mask returns the keypad state as a bitmask.
func (k *Keypad) Mask() uint32 {
	var mask uint32
	for i, pressed := range k.keys {
		if pressed {
			mask |= 1 << i
		}
	}
	return mask
}

// first returns the lowest pressed key.
func (k *Keypad) first() (uint8, bool) {
	for i, pressed := range k.keys {
		if pressed {
			return uint8(i), true
		}
	}
	return 0, false
}
