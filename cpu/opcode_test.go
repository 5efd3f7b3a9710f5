package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mnemonic string
		opcode   Opcode
		operands int
	}){
		{"MOV", 0x01, 2},
		{"ADD", 0x02, 3},
		{"SUB", 0x03, 3},
		{"MUL", 0x04, 3},
		{"DIV", 0x05, 3},
		{"AND", 0x06, 3},
		{"OR", 0x07, 3},
		{"STR", 0x08, 2},
		{"LD", 0x09, 2},
		{"JMP", 0x0a, 1},
		{"JMPE", 0x0b, 3},
		{"JMPN", 0x0c, 3},
		{"JMPG", 0x0d, 3},
		{"JMPL", 0x0e, 3},
		{"JMPR", 0x0f, 1},
		{"NOP", 0xff, 0},
	}

	assert.Equal(len(table), len(Catalog()))

	for _, entry := range table {
		mixed := entry.mnemonic[:1] + strings.ToLower(entry.mnemonic[1:])
		for _, name := range []string{entry.mnemonic, strings.ToLower(entry.mnemonic), mixed} {
			insn, err := Lookup(name)
			assert.NoError(err, name)
			assert.Equal(entry.opcode, insn.Opcode, name)
			assert.Equal(entry.operands, insn.Operands, name)
		}

		insn, err := Lookup(entry.mnemonic)
		assert.NoError(err)
		assert.Equal(strings.ToLower(entry.mnemonic), insn.Mnemonic)

		back, ok := entry.opcode.Instruction()
		assert.True(ok)
		assert.Equal(insn, back)
		assert.True(entry.opcode.Valid())
		assert.Equal(insn.Mnemonic, entry.opcode.String())
	}
}

func TestLookupUnknown(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"", "foo", "xor", "jmpz", "movx"} {
		_, err := Lookup(name)
		assert.True(errors.Is(err, ErrMnemonicUnknown), name)
	}

	for _, op := range []Opcode{0x00, 0x10, 0x80, 0xfe} {
		_, ok := op.Instruction()
		assert.False(ok)
		assert.False(op.Valid())
	}

	assert.Equal("op(0x10)", Opcode(0x10).String())
}

func TestWordFields(t *testing.T) {
	assert := assert.New(t)

	word := MakeWord(OP_ADD, 1, 2, 0x83)
	assert.Equal(Word(0x0201_0283), word)
	assert.Equal(OP_ADD, word.Opcode())
	assert.Equal(uint8(1), word.A())
	assert.Equal(uint8(2), word.B())
	assert.Equal(uint8(0x83), word.C())

	word = MakeWordImm(OP_MOV, 7, 0xbeef)
	assert.Equal(Word(0x0107_beef), word)
	assert.Equal(uint8(7), word.A())
	assert.Equal(uint16(0xbeef), word.Immediate())
}

func TestFlagsString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("----", Flags{}.String())
	assert.Equal("Z---", Flags{Zero: true}.String())
	assert.Equal("-N-V", Flags{Negative: true, Overflow: true}.String())
	assert.Equal("ZNCV", Flags{Zero: true, Negative: true, Carry: true, Overflow: true}.String())
}
