// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"time"

	"github.com/ezrec/vm8/cpu"
	"github.com/ezrec/vm8/internal"
	"github.com/ezrec/vm8/translate"
)

// Emulator state. CPU + program + step pacing.
type Emulator struct {
	Verbose  bool           // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Asm      *cpu.Assembler // Assembler used by Load and Parse.
	Interval time.Duration  // Delay between steps in Run.
}

// NewEmulator creates a new emulator with an empty program of the
// configured capacity, or DEFAULT_CAPACITY if zero. A configured locale
// replaces the message language of the whole process.
func NewEmulator(cfg Config) (emu *Emulator) {
	if len(cfg.Locale) != 0 {
		translate.SetLocale(cfg.Locale)
	}

	emu = &Emulator{
		Verbose:  cfg.Verbose,
		Cpu:      cpu.NewCpu(nil),
		Asm:      &cpu.Assembler{Verbose: cfg.Verbose},
		Interval: cfg.Interval,
	}

	if cfg.StepLimit > 0 {
		emu.Cpu.StepLimit = cfg.StepLimit
	}
	emu.Cpu.Verbose = cfg.Verbose

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DEFAULT_CAPACITY
	}
	emu.setProgram(cpu.NewProgram(capacity))

	for name, value := range emu.Cpu.Defines() {
		emu.Asm.Predefine(name, value)
	}
	for name, value := range cfg.Predefine {
		emu.Asm.Predefine(name, value)
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"PROGRAM_SIZE": fmt.Sprintf("%d", emu.Cpu.Program.Len()),
	}
	return internal.IterSeq2Concat(internal.IterSorted(defines),
		emu.Cpu.Defines(),
	)
}

// setProgram binds a program to the cpu, and refreshes the PROGRAM_SIZE
// assembler define.
func (emu *Emulator) setProgram(prog *cpu.Program) {
	emu.Cpu.Program = prog
	emu.Asm.Predefine("PROGRAM_SIZE", fmt.Sprintf("%d", prog.Len()))
}

// Load assembles raw instruction lines into the current program,
// truncating to its capacity.
func (emu *Emulator) Load(lines []string) (err error) {
	err = emu.Cpu.Program.Load(emu.Asm, lines)
	return
}

// Parse replaces the program with one assembled from source text.
func (emu *Emulator) Parse(input io.Reader) (err error) {
	prog, err := emu.Asm.Parse(input)
	if err != nil {
		return
	}

	emu.setProgram(prog)

	return
}

// LoadWords copies raw instruction words into the current program,
// truncating to its capacity. The words are not checked until executed.
func (emu *Emulator) LoadWords(words []cpu.Word) {
	emu.Cpu.Program.LoadWords(words)
}

// Reset the machine state. The program is kept.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// SetInterval sets the delay between steps of Run.
// It has no effect on execution results.
func (emu *Emulator) SetInterval(interval time.Duration) {
	emu.Interval = interval
}

// LineNo returns the source line number for the instruction at the
// program counter, or 0 if unknown.
func (emu *Emulator) LineNo() int {
	dbg := emu.Cpu.Program.Debug(emu.Cpu.Pc)
	if dbg.Source == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single step of the emulator, returning the state after
// the step.
func (emu *Emulator) Tick() (snap cpu.Snapshot, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	_, err = emu.Cpu.Step()
	snap = emu.Cpu.Snapshot()

	return
}

// Run steps the emulator until it halts, waiting Interval between steps.
// The interval is read once, when Run starts.
//
// observe, if not nil, is called with the state after every step.
// Invalid opcodes are logged and execution continues; any other error
// stops the run. A normal halt returns a nil error; exhausting the step
// limit returns an error matching cpu.ErrStepLimit.
func (emu *Emulator) Run(ctx context.Context, observe func(snap cpu.Snapshot)) (snap cpu.Snapshot, err error) {
	var tick <-chan time.Time
	if emu.Interval > 0 {
		ticker := time.NewTicker(emu.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err = ctx.Err(); err != nil {
			return
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-tick:
			}
		}

		snap, err = emu.Tick()
		if observe != nil {
			observe(snap)
		}

		if errors.Is(err, cpu.ErrOpcodeInvalid) && !errors.Is(err, cpu.ErrStepLimit) {
			log.Printf("emulator: %v", err)
			err = nil
		}
		if err != nil {
			return
		}

		if snap.State == cpu.STATE_HALTED {
			if emu.Verbose {
				log.Printf("emulator: halted at pc %v after %v steps", snap.Pc, snap.Steps)
			}
			return
		}
	}
}
