// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"math"

	"github.com/ezrec/vm8/internal"
)

const (
	STEP_LIMIT = 1000 // Default maximum number of executed steps.
)

// State is the execution state of the processor.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_READY  = State(0) // ready
	STATE_HALTED = State(1) // halted
)

var _cpu_defines = map[string]string{
	"REGISTERS":   fmt.Sprintf("%d", REGISTERS),
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"STEP_LIMIT":  fmt.Sprintf("%d", STEP_LIMIT),
}

// Cpu is the simulation context for the processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Program *Program // Program being executed.

	Register [REGISTERS]int32   // Register bank.
	Memory   [MEMORY_SIZE]int32 // Data memory.
	Pc       int                // Program counter.
	Flags    Flags              // Condition flags.

	StepLimit int // Maximum steps before halting; STEP_LIMIT if zero.
	Steps     int // Steps executed since reset.
}

// Snapshot is a copy of the visible processor state.
type Snapshot struct {
	Register [REGISTERS]int32
	Memory   [MEMORY_SIZE]int32
	Pc       int
	Steps    int
	Flags    Flags
	State    State
}

// NewCpu creates a new CPU bound to a program.
func NewCpu(prog *Program) (cpu *Cpu) {
	cpu = &Cpu{
		Program:   prog,
		StepLimit: STEP_LIMIT,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.IterSorted(_cpu_defines)
}

// limit returns the effective step limit.
func (cpu *Cpu) limit() int {
	if cpu.StepLimit <= 0 {
		return STEP_LIMIT
	}
	return cpu.StepLimit
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %v/%v\n", "pc", cpu.Pc, cpu.Program.Len())
	text += fmt.Sprintf("% 5s: %v/%v\n", "steps", cpu.Steps, cpu.limit())
	text += fmt.Sprintf("% 5s: %v\n", "flags", cpu.Flags)
	for n, val := range cpu.Register {
		uval := uint32(val)
		text += fmt.Sprintf("% 5s: %04X_%04X (%d)\n", fmt.Sprintf("r%d", n), uval>>16, uval&0xffff, val)
	}

	return
}

// Reset the CPU state.
// - Clears the registers, memory and flags.
// - Sets the program counter to 0.
// - Zeros the step counter.
// The program is not reassembled.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Pc = 0
	cpu.Flags = Flags{}
	cpu.Steps = 0
}

// SetPc sets the program counter.
func (cpu *Cpu) SetPc(pc int) {
	cpu.Pc = pc
}

// State returns the execution state.
func (cpu *Cpu) State() State {
	if cpu.Pc < 0 || cpu.Pc >= cpu.Program.Len() {
		return STATE_HALTED
	}
	if cpu.Steps >= cpu.limit() {
		return STATE_HALTED
	}
	return STATE_READY
}

// Snapshot returns a copy of the processor state.
func (cpu *Cpu) Snapshot() Snapshot {
	return Snapshot{
		Register: cpu.Register,
		Memory:   cpu.Memory,
		Pc:       cpu.Pc,
		Steps:    cpu.Steps,
		Flags:    cpu.Flags,
		State:    cpu.State(),
	}
}

// Step performs a single fetch-decode-execute cycle.
//
// Stepping a halted CPU clears the flags and does nothing else. Reaching the
// step limit with the program counter still inside the program halts with
// ErrStepLimit, joined to any error of the final instruction. An unknown
// opcode is reported as an ErrOpcode, and the program counter still advances.
func (cpu *Cpu) Step() (state State, err error) {
	if cpu.Pc < 0 || cpu.Pc >= cpu.Program.Len() {
		cpu.Flags = Flags{}
		state = STATE_HALTED
		return
	}

	if cpu.Steps >= cpu.limit() {
		cpu.Flags = Flags{}
		state = STATE_HALTED
		err = ErrStepLimit
		return
	}

	word, _ := cpu.Program.Fetch(cpu.Pc)

	cpu.Steps += 1
	err = cpu.Execute(word)

	state = cpu.State()
	if state == STATE_HALTED && cpu.Pc >= 0 && cpu.Pc < cpu.Program.Len() {
		if cpu.Verbose {
			log.Printf("cpu: step limit %v reached", cpu.limit())
		}
		if err == nil {
			err = ErrStepLimit
		} else {
			err = errors.Join(err, ErrStepLimit)
		}
	}

	return
}

// checkRegister verifies register indices decoded from a word.
func checkRegister(regs ...uint8) (err error) {
	for _, reg := range regs {
		if reg >= REGISTERS {
			return ErrFault{Err: ErrRegisterRange, Index: int(reg)}
		}
	}
	return
}

// checkMemory verifies a memory address decoded from a word.
func checkMemory(addr uint16) (err error) {
	if int(addr) >= MEMORY_SIZE {
		return ErrFault{Err: ErrMemoryRange, Index: int(addr)}
	}
	return
}

// Execute executes a single instruction word at the current program counter.
// On a register or memory fault no state is modified.
func (cpu *Cpu) Execute(word Word) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: %03d: %v", cpu.Pc, word)
	}

	next_pc := cpu.Pc + 1
	length := cpu.Program.Len()

	// target clamps an absolute jump target to the halt position.
	target := func(addr int) int {
		return min(addr, length)
	}

	op := word.Opcode()
	a := word.A()
	b := word.B()

	switch op {
	case OP_MOV:
		if err = checkRegister(a); err != nil {
			return
		}
		cpu.Register[a] = int32(word.Immediate())
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR:
		c := word.C()
		if err = checkRegister(a, b); err != nil {
			return
		}
		cpu.doAlu(op, a, cpu.Register[b], cpu.getValue(c))
	case OP_STR:
		addr := word.Immediate()
		if err = checkRegister(a); err != nil {
			return
		}
		if err = checkMemory(addr); err != nil {
			return
		}
		cpu.Memory[addr] = cpu.Register[a]
		cpu.Flags = Flags{}
	case OP_LD:
		addr := word.Immediate()
		if err = checkRegister(a); err != nil {
			return
		}
		if err = checkMemory(addr); err != nil {
			return
		}
		cpu.Register[a] = cpu.Memory[addr]
	case OP_JMP:
		next_pc = target(int(word.Immediate()))
	case OP_JMPE, OP_JMPN, OP_JMPG, OP_JMPL:
		if err = checkRegister(a, b); err != nil {
			return
		}
		x := cpu.Register[a]
		y := cpu.Register[b]
		var taken bool
		switch op {
		case OP_JMPE:
			taken = x == y
		case OP_JMPN:
			taken = x != y
		case OP_JMPG:
			taken = x > y
		case OP_JMPL:
			taken = x < y
		}
		if taken {
			next_pc = target(int(word.C()))
		}
	case OP_JMPR:
		if err = checkRegister(a); err != nil {
			return
		}
		pc := cpu.Pc + int(cpu.Register[a])
		if pc < 0 || pc >= length {
			// Leaving the program halts it.
			next_pc = length
		} else {
			next_pc = pc + 1
		}
	case OP_NOP:
		// pass
	default:
		err = ErrOpcode(word)
		if cpu.Verbose {
			log.Printf("cpu: %v", err)
		}
	}

	if err != nil && !errors.Is(err, ErrOpcodeInvalid) {
		return
	}

	cpu.Pc = next_pc

	return
}

// getValue resolves the third operand: a register when below REGISTERS,
// else the literal value.
func (cpu *Cpu) getValue(c uint8) int32 {
	if c < REGISTERS {
		return cpu.Register[c]
	}
	return int32(c)
}

// doAlu performs the requested ALU action on r[b] (x) and value(c) (y),
// storing the result in r[a] and updating the flags.
func (cpu *Cpu) doAlu(op Opcode, a uint8, x, y int32) {
	var flags Flags
	var result int32

	switch op {
	case OP_ADD:
		wide := int64(x) + int64(y)
		result = int32(wide)
		flags.Carry = wide > math.MaxInt32
		flags.Overflow = (x < 0) == (y < 0) && (result < 0) != (x < 0)
	case OP_SUB:
		wide := int64(x) - int64(y)
		result = int32(wide)
		flags.Carry = x < y
		flags.Overflow = (x < 0) != (y < 0) && (result < 0) != (x < 0)
	case OP_MUL:
		wide := int64(x) * int64(y)
		result = int32(wide)
		flags.Carry = wide > math.MaxInt32 || wide < math.MinInt32
		flags.Overflow = int64(result) != wide
	case OP_DIV:
		if y == 0 {
			// Division by zero is a no-op.
			return
		}
		flags.Overflow = x == math.MinInt32 && y == -1
		result = x / y
	case OP_AND:
		// AND and OR never set any flag.
		cpu.Register[a] = x & y
		cpu.Flags = Flags{}
		return
	case OP_OR:
		cpu.Register[a] = x | y
		cpu.Flags = Flags{}
		return
	}

	cpu.Register[a] = result
	flags.Zero = result == 0
	flags.Negative = result < 0
	cpu.Flags = flags
}
