package cpu

import (
	"errors"

	"github.com/ezrec/vm8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrStepLimit     = errors.New(f("step limit exceeded"))
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))
	ErrRegisterRange = errors.New(f("register out of range"))
	ErrMemoryRange   = errors.New(f("memory address out of range"))

	// Assembler errors
	ErrMnemonicUnknown      = errors.New(f("mnemonic unknown"))
	ErrInstructionMalformed = errors.New(f("instruction malformed"))
	ErrRegisterInvalid      = errors.New(f("register invalid"))
	ErrImmediateInvalid     = errors.New(f("immediate invalid"))
)

// ErrOpcode reports an instruction word whose opcode is not in the catalog.
type ErrOpcode Word

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x in word 0x%08x", uint8(Word(eo).Opcode()), uint32(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrOpcodeInvalid {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax locates an assembler error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrImmediateRange reports a literal that does not fit its operand field.
type ErrImmediateRange struct {
	Value    int64
	Min, Max int64
}

func (err ErrImmediateRange) Error() string {
	return f("immediate %v outside %v..%v", err.Value, err.Min, err.Max)
}

// ErrLiteralRegister reports an ALU literal that would decode as a register.
type ErrLiteralRegister int64

func (err ErrLiteralRegister) Error() string {
	return f("literal %d would select r%d; load constants below %d into a register", int64(err), int64(err), REGISTERS)
}

// ErrOperandCount reports a line with the wrong number of operands.
type ErrOperandCount struct {
	Mnemonic string
	Want     int
	Got      int
}

func (err ErrOperandCount) Error() string {
	return f("%v takes %v operands, got %v", err.Mnemonic, err.Want, err.Got)
}

// ErrFault reports an operand index outside the register file or memory.
type ErrFault struct {
	Err   error // ErrRegisterRange or ErrMemoryRange.
	Index int   // Offending register or memory index.
}

func (err ErrFault) Error() string {
	return f("%v: %v", err.Err, err.Index)
}

func (err ErrFault) Unwrap() error {
	return err.Err
}
