package cpu

import (
	"iter"
	"slices"
)

// Source records the assembly line an instruction word came from.
type Source struct {
	LineNo int      // Line number in the source text, starting at 1.
	Pc     int      // Program counter of the word.
	Words  []string // Normalized words of the line.
	Word   Word     // Assembled instruction.
}

// Program is a fixed capacity sequence of instruction words.
type Program struct {
	Sources []Source

	words []Word
}

type Debug struct {
	*Source
}

// NewProgram creates a program of the given capacity, filled with NOP.
func NewProgram(capacity int) (prog *Program) {
	prog = &Program{
		words: make([]Word, max(capacity, 0)),
	}
	prog.fill(0)

	return
}

// NewProgramWords creates a program holding raw instruction words.
// The words are copied, and are not checked against the catalog.
func NewProgramWords(words []Word) (prog *Program) {
	prog = &Program{
		words: append([]Word{}, words...),
	}

	return
}

// fill sets all words from 'from' to the end to NOP.
func (prog *Program) fill(from int) {
	nop := MakeWord(OP_NOP, 0, 0, 0)
	for n := from; n < len(prog.words); n++ {
		prog.words[n] = nop
	}
}

// assign replaces the program content with assembled sources.
func (prog *Program) assign(sources []Source) {
	for _, src := range sources {
		prog.words[src.Pc] = src.Word
	}
	prog.fill(len(sources))
	prog.Sources = sources
}

// Len returns the program capacity. A program counter equal to Len() is
// the normal halt position.
func (prog *Program) Len() int {
	if prog == nil {
		return 0
	}
	return len(prog.words)
}

// Fetch returns the word at the program counter.
func (prog *Program) Fetch(pc int) (word Word, ok bool) {
	if pc < 0 || pc >= prog.Len() {
		return
	}

	return prog.words[pc], true
}

// Load assembles min(Len(), len(lines)) lines into the program.
// If any line fails, the program is unchanged and the error is an
// *ErrSyntax locating the line.
func (prog *Program) Load(asm *Assembler, lines []string) (err error) {
	count := min(prog.Len(), len(lines))

	sources := make([]Source, 0, count)
	for n, line := range lines[:count] {
		var words []string
		words, err = asm.parseLine(line)
		if err == nil {
			var word Word
			word, err = asm.encodeWords(words)
			sources = append(sources, Source{LineNo: n + 1, Pc: n, Words: words, Word: word})
		}
		if err != nil {
			err = &ErrSyntax{LineNo: n + 1, Line: line, Err: err}
			return
		}
	}

	prog.assign(sources)

	return
}

// LoadWords copies min(Len(), len(words)) raw words into the program and
// fills the remainder with NOP. Source information is discarded.
func (prog *Program) LoadWords(words []Word) {
	count := copy(prog.words, words)
	prog.fill(count)
	prog.Sources = nil
}

// Store sets the raw word at the program counter, dropping any source
// information for it. It returns false if pc is outside the program.
func (prog *Program) Store(pc int, word Word) (ok bool) {
	if pc < 0 || pc >= prog.Len() {
		return
	}

	prog.words[pc] = word
	prog.Sources = slices.DeleteFunc(prog.Sources, func(src Source) bool {
		return src.Pc == pc
	})

	return true
}

// Debug returns the source of the word at the program counter.
// The embedded Source is nil for unloaded slots.
func (prog *Program) Debug(pc int) (dbg Debug) {
	for n, src := range prog.Sources {
		if src.Pc == pc {
			dbg = Debug{Source: &prog.Sources[n]}
			break
		}
	}

	return
}

// Words iterates over the program counter and word of every slot.
func (prog *Program) Words() iter.Seq2[int, Word] {
	return func(yield func(pc int, word Word) bool) {
		for pc, word := range prog.words {
			if !yield(pc, word) {
				return
			}
		}
	}
}
