// Package codegen generates textual assembly for the register and stack
// virtual machine from a lowered bound program.
//
// Registers
//
//	R1   accumulator: expression results and return values
//	R2   secondary scratch register
//	R3   struct-return address passed to struct-returning functions
//	R4   scratch register for indirect calls
//	BP   frame base
//	SP   stack pointer: the stack grows downwards
//
// Registers are 64 bits wide.  Writing a register with a sized instruction
// zero-extends the value.
//
// Widths
//
// Mnemonics take an optional width suffix: `b` (1 byte), `w` (2 bytes), no
// suffix (4 bytes: int32, pointers, strings and function values) and `f` (8
// bytes: float64 arithmetic and raw 8-byte moves).  Integer arithmetic is
// performed on the low 32 bits as int32, byte arithmetic on the low 8 bits as
// uint8 and float arithmetic on all 64 bits as float64.  All values are stored
// little-endian.
//
// Operands
//
//	R1, BP, ...        registers
//	42, -1             integer immediates
//	.name, label       addresses of data entries and code labels
//	[R1], [BP+8]       memory at a register plus or minus an offset
//	[BP-4], [SP]
//	[.name], [.name+4] memory at a data entry plus an offset
//
// Memory-to-memory moves are legal: block copies and zeroing are done with
// one `MOV` per chunk.
//
// Instructions
//
//	MOV dst, src                 dst = src
//	ADD SUB MUL DIV MOD dst, src dst = dst op src
//	AND OR XOR dst, src          bitwise operations
//	NEG NOT dst                  negation and bitwise complement
//	CMP a, b                     compares a with b and sets the flags
//	SETEQ SETNE SETLT            dst = 1 if the flags satisfy the condition
//	SETLE SETGT SETGE dst        else 0
//	JMP JEQ JNE JLT JLE JGT JGE  jumps to a label if the flags satisfy the
//	target                       condition
//	CVTIF dst                    converts the int32 in dst to float64
//	CVTFI dst                    converts the float64 in dst to int32
//	PUSH src                     SP -= width; [SP] = src
//	POP dst                      dst = [SP]; SP += width
//	CALL target                  pushes a 4-byte return address and jumps to
//	                             a label or the address held in a register
//	RET                          pops a return address and jumps to it
//	INT                          calls the host function whose interrupt index
//	                             is at [SP] with the argument count at [SP+4]
//	                             and the arguments from [SP+8]; the result is
//	                             left in R1
//	HALT                         stops the machine
//
// Syntax
//
// One instruction per line.  Labels are written `name:`.  Comments follow a
// `;`.  Data declarations are written `.<name> <keyword> <value>` where the
// keyword is one of `byte`, `word`, `int`, `float`, `string` (a quoted,
// NUL-terminated string) or `zero` (the value is a byte count).
//
// Layout
//
// The output has four sections in a fixed order: data, the program entry
// `__start` which calls `__init` and then `main`, the initializer `__init`
// which computes global initializers, and finally the code of every function.
//
// Calling convention
//
// The caller pushes arguments in reverse declaration order and releases them
// after the call.  The callee saves BP and sets it to SP: its parameters are
// at BP+8 onwards and its locals at negative offsets.  Functions returning
// aggregates receive the address of the return slot, which the caller
// reserves and zeroes in its own frame, in R3.
package codegen
