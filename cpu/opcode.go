package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the 8-bit operation code of an instruction word.
type Opcode uint8

const (
	OP_MOV  = Opcode(0x01) // r[a] = imm16
	OP_ADD  = Opcode(0x02) // r[a] = r[b] + value(c)
	OP_SUB  = Opcode(0x03) // r[a] = r[b] - value(c)
	OP_MUL  = Opcode(0x04) // r[a] = r[b] * value(c)
	OP_DIV  = Opcode(0x05) // r[a] = r[b] / value(c), skipped when value(c) == 0
	OP_AND  = Opcode(0x06) // r[a] = r[b] & value(c)
	OP_OR   = Opcode(0x07) // r[a] = r[b] | value(c)
	OP_STR  = Opcode(0x08) // mem[imm16] = r[a]
	OP_LD   = Opcode(0x09) // r[a] = mem[imm16]
	OP_JMP  = Opcode(0x0a) // pc = imm16
	OP_JMPE = Opcode(0x0b) // if r[a] == r[b] { pc = c }
	OP_JMPN = Opcode(0x0c) // if r[a] != r[b] { pc = c }
	OP_JMPG = Opcode(0x0d) // if r[a] > r[b] { pc = c }
	OP_JMPL = Opcode(0x0e) // if r[a] < r[b] { pc = c }
	OP_JMPR = Opcode(0x0f) // pc = pc + r[a] + 1
	OP_NOP  = Opcode(0xff) // nothing
)

// Format is the operand shape of an instruction.
type Format int

const (
	FORMAT_NONE    = Format(0) // nop
	FORMAT_ADDR    = Format(1) // jmp addr
	FORMAT_REG     = Format(2) // jmpr a
	FORMAT_REG_IMM = Format(3) // mov a imm16
	FORMAT_ALU     = Format(4) // add a b value
	FORMAT_BRANCH  = Format(5) // jmpe a b addr
)

// Instruction is an entry of the instruction catalog.
type Instruction struct {
	Mnemonic string // Lower case mnemonic.
	Opcode   Opcode // Operation code.
	Operands int    // Required operand count.
	Format   Format // Operand layout.
}

var catalog = []Instruction{
	{"mov", OP_MOV, 2, FORMAT_REG_IMM},
	{"add", OP_ADD, 3, FORMAT_ALU},
	{"sub", OP_SUB, 3, FORMAT_ALU},
	{"mul", OP_MUL, 3, FORMAT_ALU},
	{"div", OP_DIV, 3, FORMAT_ALU},
	{"and", OP_AND, 3, FORMAT_ALU},
	{"or", OP_OR, 3, FORMAT_ALU},
	{"str", OP_STR, 2, FORMAT_REG_IMM},
	{"ld", OP_LD, 2, FORMAT_REG_IMM},
	{"jmp", OP_JMP, 1, FORMAT_ADDR},
	{"jmpe", OP_JMPE, 3, FORMAT_BRANCH},
	{"jmpn", OP_JMPN, 3, FORMAT_BRANCH},
	{"jmpg", OP_JMPG, 3, FORMAT_BRANCH},
	{"jmpl", OP_JMPL, 3, FORMAT_BRANCH},
	{"jmpr", OP_JMPR, 1, FORMAT_REG},
	{"nop", OP_NOP, 0, FORMAT_NONE},
}

var (
	mnemonicMap = map[string]Instruction{}
	opcodeMap   = map[Opcode]Instruction{}
)

func init() {
	for _, insn := range catalog {
		mnemonicMap[insn.Mnemonic] = insn
		opcodeMap[insn.Opcode] = insn
	}
}

// Lookup returns the catalog entry for a mnemonic, ignoring case.
func Lookup(mnemonic string) (insn Instruction, err error) {
	insn, ok := mnemonicMap[strings.ToLower(mnemonic)]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrMnemonicUnknown, mnemonic)
		return
	}

	return
}

// Instruction returns the catalog entry for the opcode.
func (op Opcode) Instruction() (insn Instruction, ok bool) {
	insn, ok = opcodeMap[op]
	return
}

// Valid returns true if the opcode is in the catalog.
func (op Opcode) Valid() bool {
	_, ok := opcodeMap[op]
	return ok
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	insn, ok := opcodeMap[op]
	if !ok {
		return fmt.Sprintf("op(0x%02x)", uint8(op))
	}
	return insn.Mnemonic
}

// Catalog returns a copy of the instruction catalog, in opcode order.
func Catalog() []Instruction {
	return append([]Instruction(nil), catalog...)
}
