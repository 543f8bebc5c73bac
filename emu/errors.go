package emu

import (
	"errors"
	"fmt"
)

// ErrStackUnderflow is returned when 00EE executes with an empty call stack.
var ErrStackUnderflow = errors.New("return with empty call stack")

// DecodeError is returned when an instruction word is not part of the
// supported instruction set.
type DecodeError struct {
	Word uint16
	PC   uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown instruction 0x%04X at 0x%04X", e.Word, e.PC)
}

// AddressError is returned when an instruction would read or write memory
// past MemorySize. Word is zero when the fetch itself is out of range.
type AddressError struct {
	Word uint16
	PC   uint16
	Addr int
	Size int
}

func (e *AddressError) Error() string {
	if e.Word == 0 && e.Addr == int(e.PC) {
		return fmt.Sprintf("instruction fetch at 0x%04X is beyond memory", e.PC)
	}
	return fmt.Sprintf("instruction 0x%04X at 0x%04X accesses 0x%04X-0x%04X beyond memory",
		e.Word, e.PC, e.Addr, e.Addr+e.Size-1)
}
