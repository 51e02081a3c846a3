// Package bytecode defines the instruction set executed by the trellis VM.
//
// # Instruction Format
//
// Every instruction is a fixed-size Op: an opcode plus three int32
// operands. Operands are interpreted per opcode (see OpcodeInfo) as small
// immediates, register ids, scope symbols, constant-pool handles, encoded
// primitives or absolute heap addresses.
//
// # Program Layout
//
// A Program couples a Heap with a ConstantPool. The heap is append-only:
// each compiled unit (a template body or block) is a contiguous run of
// instructions ending in OpReturn, named by a Handle that maps to the
// unit's start address. Units are compiled on demand, so a program grows
// while it runs.
//
// # Constant Pool
//
// Strings and string arrays are interned by content; string arrays are
// keyed by an xxhash of their contents. Resolved objects (component
// definitions, symbol tables, helpers) are interned by identity. Small
// integers, booleans, null and undefined never enter the pool: they are
// encoded directly in the operand by EncodePrimitive.
//
// # Jumps
//
// The Encoder supports two ways of producing jump targets:
//
//   - EmitJump / PatchJump: emit a placeholder and patch it once the
//     target is reached.
//   - StartLabels / Label / PushJump / StopLabels: name targets and
//     resolve every reference in a second pass.
//
// Targets are unit-relative during encoding and relocated to absolute heap
// addresses by Commit.
//
// # Registers
//
// $pc, $ra, $fp and $sp are machine registers holding addresses and stack
// indices. $s0 and $s1 are saved registers ($s0 holds the component
// instance being invoked), $t0 and $t1 are temporaries and $v0 carries
// return values of helpers and curried definitions.
package bytecode
