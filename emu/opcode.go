package emu

import "fmt"

// Op identifies a decoded instruction.
type Op int

const (
	OpInvalid Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSE         // 3xkk
	OpSNE        // 4xkk
	OpSER        // 5xy0 (extended)
	OpLD         // 6xkk
	OpADD        // 7xkk
	OpLDR        // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADDC       // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7 (extended)
	OpSHL        // 8xyE (extended)
	OpSNER       // 9xy0 (extended)
	OpLDI        // Annn
	OpJPV0       // Bnnn (extended)
	OpRND        // Cxkk
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVDT      // Fx07
	OpLDK        // Fx0A
	OpLDDT       // Fx15
	OpLDST       // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpBCD        // Fx33
	OpSTRM       // Fx55 (extended)
	OpLDRM       // Fx65
)

var opNames = [...]string{
	OpInvalid: "???",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSE:      "SE",
	OpSNE:     "SNE",
	OpSER:     "SE",
	OpLD:      "LD",
	OpADD:     "ADD",
	OpLDR:     "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDC:    "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNER:    "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVDT:   "LD",
	OpLDK:     "LD",
	OpLDDT:    "LD",
	OpLDST:    "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpBCD:     "LD",
	OpSTRM:    "LD",
	OpLDRM:    "LD",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return opNames[OpInvalid]
	}
	return opNames[o]
}

// pattern matches an instruction word when word&mask == value.
type pattern struct {
	mask     uint16
	value    uint16
	op       Op
	extended bool
}

// patterns is searched in order and the first match wins.
var patterns = []pattern{
	{0xFFFF, 0x00E0, OpCLS, false},
	{0xFFFF, 0x00EE, OpRET, false},
	{0xF000, 0x1000, OpJP, false},
	{0xF000, 0x2000, OpCALL, false},
	{0xF000, 0x3000, OpSE, false},
	{0xF000, 0x4000, OpSNE, false},
	{0xF00F, 0x5000, OpSER, true},
	{0xF000, 0x6000, OpLD, false},
	{0xF000, 0x7000, OpADD, false},
	{0xF00F, 0x8000, OpLDR, false},
	{0xF00F, 0x8001, OpOR, false},
	{0xF00F, 0x8002, OpAND, false},
	{0xF00F, 0x8003, OpXOR, false},
	{0xF00F, 0x8004, OpADDC, false},
	{0xF00F, 0x8005, OpSUB, false},
	{0xF00F, 0x8006, OpSHR, false},
	{0xF00F, 0x8007, OpSUBN, true},
	{0xF00F, 0x800E, OpSHL, true},
	{0xF00F, 0x9000, OpSNER, true},
	{0xF000, 0xA000, OpLDI, false},
	{0xF000, 0xB000, OpJPV0, true},
	{0xF000, 0xC000, OpRND, false},
	{0xF000, 0xD000, OpDRW, false},
	{0xF0FF, 0xE09E, OpSKP, false},
	{0xF0FF, 0xE0A1, OpSKNP, false},
	{0xF0FF, 0xF007, OpLDVDT, false},
	{0xF0FF, 0xF00A, OpLDK, false},
	{0xF0FF, 0xF015, OpLDDT, false},
	{0xF0FF, 0xF018, OpLDST, false},
	{0xF0FF, 0xF01E, OpADDI, false},
	{0xF0FF, 0xF029, OpLDF, false},
	{0xF0FF, 0xF033, OpBCD, false},
	{0xF0FF, 0xF055, OpSTRM, true},
	{0xF0FF, 0xF065, OpLDRM, false},
}

// Instruction is a decoded instruction word with its operand fields.
type Instruction struct {
	Op   Op
	Word uint16
	X    uint8  // second nibble, register index
	Y    uint8  // third nibble, register index
	N    uint8  // fourth nibble
	KK   uint8  // low byte immediate
	NNN  uint16 // 12-bit address
}

// Decode decodes word against the base instruction set. Words outside of it
// decode to OpInvalid.
func Decode(word uint16) Instruction {
	return decode(word, false)
}

// DecodeExtended decodes word against the base set plus 5xy0, 8xy7, 8xyE,
// 9xy0, Bnnn and Fx55.
func DecodeExtended(word uint16) Instruction {
	return decode(word, true)
}

func decode(word uint16, extended bool) Instruction {
	ins := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		KK:   uint8(word),
		NNN:  word & 0x0FFF,
	}
	for _, p := range patterns {
		if word&p.mask != p.value {
			continue
		}
		if p.extended && !extended {
			break
		}
		ins.Op = p.op
		break
	}
	return ins
}

// Valid reports whether the word decoded to a known instruction.
func (i Instruction) Valid() bool {
	return i.Op != OpInvalid
}

// String returns the instruction in the customary CHIP-8 assembly syntax.
func (i Instruction) String() string {
	name := i.Op.String()
	switch i.Op {
	case OpCLS, OpRET:
		return name
	case OpJP, OpCALL:
		return fmt.Sprintf("%s 0x%03X", name, i.NNN)
	case OpJPV0:
		return fmt.Sprintf("%s V0, 0x%03X", name, i.NNN)
	case OpSE, OpSNE, OpLD, OpADD, OpRND:
		return fmt.Sprintf("%s V%X, 0x%02X", name, i.X, i.KK)
	case OpSER, OpSNER, OpLDR, OpOR, OpAND, OpXOR, OpADDC, OpSUB, OpSUBN:
		return fmt.Sprintf("%s V%X, V%X", name, i.X, i.Y)
	case OpSHR, OpSHL, OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", name, i.X)
	case OpLDI:
		return fmt.Sprintf("%s I, 0x%03X", name, i.NNN)
	case OpDRW:
		return fmt.Sprintf("%s V%X, V%X, %d", name, i.X, i.Y, i.N)
	case OpLDVDT:
		return fmt.Sprintf("%s V%X, DT", name, i.X)
	case OpLDK:
		return fmt.Sprintf("%s V%X, K", name, i.X)
	case OpLDDT:
		return fmt.Sprintf("%s DT, V%X", name, i.X)
	case OpLDST:
		return fmt.Sprintf("%s ST, V%X", name, i.X)
	case OpADDI:
		return fmt.Sprintf("%s I, V%X", name, i.X)
	case OpLDF:
		return fmt.Sprintf("%s F, V%X", name, i.X)
	case OpBCD:
		return fmt.Sprintf("%s B, V%X", name, i.X)
	case OpSTRM:
		return fmt.Sprintf("%s [I], V%X", name, i.X)
	case OpLDRM:
		return fmt.Sprintf("%s V%X, [I]", name, i.X)
	default:
		return fmt.Sprintf("DW 0x%04X", i.Word)
	}
}
