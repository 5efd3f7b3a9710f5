// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler translates lines of assembly text into instruction words.
// It keeps no state between lines other than its predefined constants.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Constants visible to $(...) expressions.
}

// Predefine defines a new constant or redefines an existing constant
// for use in $(...) expressions.
func (asm *Assembler) Predefine(name string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// registerMap is a map of register names to register codes.
var registerMap = map[string]uint8{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// parseImmediate parses an immediate literal.
//
//	0x1f   hexadecimal
//	#31    decimal
//	31     decimal
//
// Both decimal forms accept a leading sign.
func parseImmediate(word string) (value int64, err error) {
	digits := word
	base := 10

	switch {
	case strings.HasPrefix(word, "0x"):
		digits = word[2:]
		base = 16
		// Hexadecimal literals are unsigned.
		if len(digits) > 0 && (digits[0] == '-' || digits[0] == '+') {
			err = errors.Join(ErrImmediateInvalid, ErrParseNumber(word))
			return
		}
	case strings.HasPrefix(word, "#"):
		digits = word[1:]
	}

	value, err = strconv.ParseInt(digits, base, 64)
	if err != nil {
		err = errors.Join(ErrImmediateInvalid, ErrParseNumber(word))
		return
	}

	return
}

// immediateIn parses an immediate literal that must lie in [lo, hi].
func immediateIn(word string, lo, hi int64) (value int64, err error) {
	value, err = parseImmediate(word)
	if err != nil {
		return
	}

	if value < lo || value > hi {
		err = errors.Join(ErrImmediateInvalid, ErrImmediateRange{Value: value, Min: lo, Max: hi})
		return
	}

	return
}

// register returns the code of a register name.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	reg, ok := registerMap[word]
	if !ok {
		err = errors.Join(ErrRegisterInvalid, ErrParseRegister(word))
		return
	}

	return
}

// imm16 parses a 16-bit immediate or address. Negative values are stored
// in two's complement.
func (asm *Assembler) imm16(word string) (imm uint16, err error) {
	value, err := immediateIn(word, -0x8000, 0xffff)
	if err != nil {
		return
	}

	imm = uint16(value)
	return
}

// value parses the third operand of an ALU instruction. Codes below
// REGISTERS select a register, so literals must be at least REGISTERS.
func (asm *Assembler) value(word string) (c uint8, err error) {
	if reg, ok := registerMap[word]; ok {
		c = reg
		return
	}

	value, err := parseImmediate(word)
	if err != nil {
		return
	}

	if value >= 0 && value < REGISTERS {
		err = errors.Join(ErrImmediateInvalid, ErrLiteralRegister(value))
		return
	}

	value, err = immediateIn(word, REGISTERS, 0xff)
	if err != nil {
		return
	}

	c = uint8(value)
	return
}

// address parses the target of a conditional jump.
func (asm *Assembler) address(word string) (c uint8, err error) {
	if reg, ok := registerMap[word]; ok {
		c = reg
		return
	}

	value, err := immediateIn(word, 0, 0xff)
	if err != nil {
		return
	}

	c = uint8(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.predefine {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer constants.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine splits a single line into lower case words, after removing
// comments and evaluating $(...) expressions.
func (asm *Assembler) parseLine(line string) (words []string, err error) {
	line, _, _ = strings.Cut(line, ";")

	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		err = errors.Join(ErrImmediateInvalid, err)
		return
	}

	words = strings.Fields(strings.ToLower(line))

	return
}

// encodeWords assembles the words of a single instruction.
func (asm *Assembler) encodeWords(words []string) (word Word, err error) {
	if len(words) == 0 {
		err = ErrInstructionMalformed
		return
	}

	insn, err := Lookup(words[0])
	if err != nil {
		return
	}

	args := words[1:]
	if len(args) != insn.Operands {
		err = errors.Join(ErrInstructionMalformed,
			ErrOperandCount{Mnemonic: insn.Mnemonic, Want: insn.Operands, Got: len(args)})
		return
	}

	var a, b, c uint8
	var imm uint16

	switch insn.Format {
	case FORMAT_NONE:
		word = MakeWord(insn.Opcode, 0, 0, 0)
	case FORMAT_ADDR:
		imm, err = asm.imm16(args[0])
		if err != nil {
			return
		}
		word = MakeWordImm(insn.Opcode, 0, imm)
	case FORMAT_REG:
		a, err = asm.register(args[0])
		if err != nil {
			return
		}
		word = MakeWord(insn.Opcode, a, 0, 0)
	case FORMAT_REG_IMM:
		a, err = asm.register(args[0])
		if err != nil {
			return
		}
		imm, err = asm.imm16(args[1])
		if err != nil {
			return
		}
		word = MakeWordImm(insn.Opcode, a, imm)
	case FORMAT_ALU, FORMAT_BRANCH:
		a, err = asm.register(args[0])
		if err != nil {
			return
		}
		b, err = asm.register(args[1])
		if err != nil {
			return
		}
		if insn.Format == FORMAT_ALU {
			c, err = asm.value(args[2])
		} else {
			c, err = asm.address(args[2])
		}
		if err != nil {
			return
		}
		word = MakeWord(insn.Opcode, a, b, c)
	default:
		panic("unknown instruction format")
	}

	return
}

// Encode assembles one line of text into an instruction word.
// On error the returned word is zero and must not be used.
func (asm *Assembler) Encode(line string) (word Word, err error) {
	words, err := asm.parseLine(line)
	if err != nil {
		return
	}

	word, err = asm.encodeWords(words)
	if err != nil {
		word = 0
		return
	}

	if asm.Verbose {
		log.Printf("asm: %-20v => 0x%08x", strings.Join(words, " "), uint32(word))
	}

	return
}

// Parse parses an input stream into a Program sized to its instructions.
// Blank and comment-only lines are skipped.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	var sources []Source

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line)
		if err != nil {
			return
		}

		if len(words) == 0 {
			continue
		}

		var word Word
		word, err = asm.encodeWords(words)
		if err != nil {
			return
		}

		sources = append(sources, Source{LineNo: lineno, Pc: len(sources), Words: words, Word: word})
	}

	if err = scanner.Err(); err != nil {
		return
	}

	prog = NewProgram(len(sources))
	prog.assign(sources)

	return
}
