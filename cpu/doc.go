// Package cpu implements the processor and assembler for the vm8 system.
//
// The processor has eight signed 32-bit registers (r0-r7), 256 words of
// memory, a program counter and four condition flags (zero, negative, carry,
// overflow). Instructions are fixed 32-bit words holding an 8-bit opcode and
// up to three operand fields; the sixteen opcodes are listed in the
// instruction catalog (see Lookup).
//
// The assembler translates one line of text into one instruction word,
// supporting hexadecimal, '#' prefixed and plain decimal immediates, ';'
// comments, and compile-time $(...) expression evaluation.
package cpu
