package cpu

import (
	"fmt"
)

const (
	REGISTERS   = 8   // Number of general purpose registers.
	MEMORY_SIZE = 256 // Number of memory words.
)

// Word is an assembled 32-bit instruction.
//
//	31..24  opcode
//	23..16  a        first register
//	15..8   b        second register
//	 7..0   c        third operand (register when < 8, else literal)
//	15..0   imm16    immediate or address of mov, str, ld and jmp
//
// Instructions with a 16-bit immediate leave b unused, so no two fields of
// a single instruction overlap.
type Word uint32

// MakeWord creates a register form instruction.
func MakeWord(op Opcode, a, b, c uint8) Word {
	return (Word(op) << 24) | (Word(a) << 16) | (Word(b) << 8) | Word(c)
}

// MakeWordImm creates an immediate form instruction.
func MakeWordImm(op Opcode, a uint8, imm uint16) Word {
	return (Word(op) << 24) | (Word(a) << 16) | Word(imm)
}

// Opcode returns the operation code.
func (w Word) Opcode() Opcode {
	return Opcode((w >> 24) & 0xff)
}

// A returns the first register field.
func (w Word) A() uint8 {
	return uint8((w >> 16) & 0xff)
}

// B returns the second register field.
func (w Word) B() uint8 {
	return uint8((w >> 8) & 0xff)
}

// C returns the third operand field.
func (w Word) C() uint8 {
	return uint8(w & 0xff)
}

// Immediate returns the 16-bit immediate field.
func (w Word) Immediate() uint16 {
	return uint16(w & 0xffff)
}

// String returns the assembly language representation of the word.
func (w Word) String() string {
	insn, ok := w.Opcode().Instruction()
	if !ok {
		return fmt.Sprintf("0x%08x", uint32(w))
	}

	switch insn.Format {
	case FORMAT_NONE:
		return insn.Mnemonic
	case FORMAT_ADDR:
		return fmt.Sprintf("%v %v", insn.Mnemonic, w.Immediate())
	case FORMAT_REG:
		return fmt.Sprintf("%v r%v", insn.Mnemonic, w.A())
	case FORMAT_REG_IMM:
		return fmt.Sprintf("%v r%v %v", insn.Mnemonic, w.A(), w.Immediate())
	case FORMAT_ALU:
		if w.C() < REGISTERS {
			return fmt.Sprintf("%v r%v r%v r%v", insn.Mnemonic, w.A(), w.B(), w.C())
		}
		return fmt.Sprintf("%v r%v r%v %v", insn.Mnemonic, w.A(), w.B(), w.C())
	case FORMAT_BRANCH:
		return fmt.Sprintf("%v r%v r%v %v", insn.Mnemonic, w.A(), w.B(), w.C())
	}

	return fmt.Sprintf("0x%08x", uint32(w))
}
