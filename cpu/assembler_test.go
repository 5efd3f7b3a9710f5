package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssemblerEncode(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := [](struct {
		line string
		word Word
	}){
		{"mov r0 #10", 0x0100_000a},
		{"mov r0 0xA", 0x0100_000a},
		{"mov r0 10", 0x0100_000a},
		{"MOV R0 #10", 0x0100_000a},
		{"  mov   r0\t10  ", 0x0100_000a},
		{"mov r7 0xffff", 0x0107_ffff},
		{"mov r0 -1", 0x0100_ffff},
		{"mov r0 #-2", 0x0100_fffe},
		{"add r1 r2 r3", 0x0201_0203},
		{"add r1 r2 0x10", 0x0201_0210},
		{"sub r0 r0 #8", 0x0300_0008},
		{"mul r4 r5 255", 0x0404_05ff},
		{"div r0 r1 r2", 0x0500_0102},
		{"and r6 r7 r0", 0x0606_0700},
		{"or r1 r1 0x80", 0x0701_0180},
		{"str r3 200", 0x0803_00c8},
		{"ld r2 0x10", 0x0902_0010},
		{"jmp 3", 0x0a00_0003},
		{"jmpe r0 r1 5", 0x0b00_0105},
		{"jmpn r2 r3 0", 0x0c02_0300},
		{"jmpg r4 r5 #255", 0x0d04_05ff},
		{"jmpl r6 r7 r1", 0x0e06_0701},
		{"jmpr r4", 0x0f04_0000},
		{"nop", 0xff00_0000},
		{"add r1 r2 r3 ; r1 = r2 + r3", 0x0201_0203},
	}

	for _, entry := range table {
		word, err := asm.Encode(entry.line)
		assert.NoError(err, entry.line)
		assert.Equal(entry.word, word, "%v: got 0x%08x", entry.line, uint32(word))
	}
}

func TestAssemblerEncodeErrors(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := [](struct {
		line string
		err  error
	}){
		{"foo r0 r1 r2", ErrMnemonicUnknown},
		{"movr0 5", ErrMnemonicUnknown},
		{"", ErrInstructionMalformed},
		{"   ", ErrInstructionMalformed},
		{"; only a comment", ErrInstructionMalformed},
		{"add r1 r2", ErrInstructionMalformed},
		{"add r1 r2 r3 r4", ErrInstructionMalformed},
		{"nop r0", ErrInstructionMalformed},
		{"jmp", ErrInstructionMalformed},
		{"mov r0", ErrInstructionMalformed},
		{"add r8 r1 r2", ErrRegisterInvalid},
		{"add r1 x r2", ErrRegisterInvalid},
		{"mov 5 5", ErrRegisterInvalid},
		{"jmpr 3", ErrRegisterInvalid},
		{"jmpe r0 rx 3", ErrRegisterInvalid},
		{"mov r0 abc", ErrImmediateInvalid},
		{"mov r0 0x", ErrImmediateInvalid},
		{"mov r0 #", ErrImmediateInvalid},
		{"mov r0 0x-5", ErrImmediateInvalid},
		{"mov r0 0xfg", ErrImmediateInvalid},
		{"mov r0 $abc", ErrImmediateInvalid},
		{"mov r0 65536", ErrImmediateInvalid},
		{"mov r0 -32769", ErrImmediateInvalid},
		{"jmp -40000", ErrImmediateInvalid},
		{"add r1 r2 #5", ErrImmediateInvalid},
		{"add r1 r2 256", ErrImmediateInvalid},
		{"add r1 r2 -1", ErrImmediateInvalid},
		{"jmpe r0 r1 256", ErrImmediateInvalid},
		{"mov r0 $(1 // 0)", ErrImmediateInvalid},
		{"mov r0 $(undefined)", ErrImmediateInvalid},
		{"mov r0 $('text')", ErrImmediateInvalid},
	}

	for _, entry := range table {
		word, err := asm.Encode(entry.line)
		assert.Error(err, entry.line)
		assert.True(errors.Is(err, entry.err), "%v: %v", entry.line, err)
		assert.Equal(Word(0), word, entry.line)
	}
}

func TestAssemblerOperandCount(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Encode("add r1 r2")
	var count ErrOperandCount
	assert.True(errors.As(err, &count))
	assert.Equal(ErrOperandCount{Mnemonic: "add", Want: 3, Got: 2}, count)
}

func TestAssemblerRegisterFields(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	for _, insn := range Catalog() {
		if insn.Operands != 3 {
			continue
		}
		for a := range REGISTERS {
			for b := range REGISTERS {
				for c := range REGISTERS {
					line := fmt.Sprintf("%v r%d r%d r%d", insn.Mnemonic, a, b, c)
					word, err := asm.Encode(line)
					assert.NoError(err, line)
					assert.Equal(insn.Opcode, word.Opcode(), line)
					assert.Equal(uint8(a), word.A(), line)
					assert.Equal(uint8(b), word.B(), line)
					assert.Equal(uint8(c), word.C(), line)
				}
			}
		}
	}
}

func TestAssemblerDisassemble(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"mov r0 10",
		"add r1 r2 r3",
		"add r1 r2 200",
		"sub r7 r6 8",
		"str r3 200",
		"ld r2 16",
		"jmp 3",
		"jmpe r0 r1 5",
		"jmpl r6 r7 1",
		"jmpr r4",
		"nop",
	}

	for _, line := range program {
		word, err := asm.Encode(line)
		assert.NoError(err, line)
		assert.Equal(line, word.String())

		again, err := asm.Encode(word.String())
		assert.NoError(err, line)
		assert.Equal(word, again, line)
	}

	assert.Equal("0x00123456", Word(0x0012_3456).String())
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("MEMORY_SIZE", "256")
	asm.Predefine("BASE", "0x10")
	asm.Predefine("NAME", "not a number")

	table := [](struct {
		line string
		word Word
	}){
		{"mov r0 $(2 * 8)", 0x0100_0010},
		{"mov r0 $(MEMORY_SIZE - 1)", 0x0100_00ff},
		{"str r1 $(BASE + 2)", 0x0801_0012},
		{"add r1 r1 $(BASE)", 0x0201_0110},
		{"mov r0 $(-1)", 0x0100_ffff},
	}

	for _, entry := range table {
		word, err := asm.Encode(entry.line)
		assert.NoError(err, entry.line)
		assert.Equal(entry.word, word, entry.line)
	}

	asm.Predefine("BASE", "0x20")
	word, err := asm.Encode("str r1 $(BASE)")
	assert.NoError(err)
	assert.Equal(Word(0x0801_0020), word)
}

func TestAssemblerParse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"; counts down from 3",
		"mov r0 3",
		"",
		"mov r1 1",
		"sub r0 r0 r1 ; r0--",
		"jmpn r0 r2 2",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(4, prog.Len())

	expected := []Source{
		{2, 0, []string{"mov", "r0", "3"}, 0x0100_0003},
		{4, 1, []string{"mov", "r1", "1"}, 0x0101_0001},
		{5, 2, []string{"sub", "r0", "r0", "r1"}, 0x0300_0001},
		{6, 3, []string{"jmpn", "r0", "r2", "2"}, 0x0c00_0202},
	}
	assert.Equal(expected, prog.Sources)

	for pc, word := range prog.Words() {
		assert.Equal(expected[pc].Word, word)
	}
}

func TestAssemblerParseError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"mov r0 3",
		"; comment",
		"add r0 r9 r1",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.Nil(prog)
	assert.True(errors.Is(err, ErrRegisterInvalid))

	var syntax *ErrSyntax
	assert.True(errors.As(err, &syntax))
	if syntax != nil {
		assert.Equal(3, syntax.LineNo)
		assert.Equal("add r0 r9 r1", syntax.Line)
	}
}

func TestAssemblerParseEmpty(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, prog.Len())
	assert.Equal(0, len(prog.Sources))
}

func TestAssemblerSmallLiteral(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	for value := range REGISTERS {
		line := fmt.Sprintf("add r1 r1 %d", value)
		_, err := asm.Encode(line)
		assert.True(errors.Is(err, ErrImmediateInvalid), line)

		var literal ErrLiteralRegister
		if assert.True(errors.As(err, &literal), line) {
			assert.Equal(ErrLiteralRegister(value), literal)
			assert.Contains(literal.Error(), "register", line)
		}
	}

	// Registers and literals from REGISTERS up are fine.
	_, err := asm.Encode("add r1 r1 r1")
	assert.NoError(err)
	_, err = asm.Encode("add r1 r1 8")
	assert.NoError(err)
}
