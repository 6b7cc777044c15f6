// Package cil models CIL method bodies: the opcode table, instructions
// with typed operands, and the stack effect of each instruction.
//
// # Instructions
//
// An Instruction pairs an opcode with an Operand. The operand is a closed
// union of XxxImm types, and each opcode accepts exactly the types of its
// operand category. Create and the NewXxx helpers enforce this and fail
// with an operand_mismatch error otherwise:
//
//	ins, err := cil.NewI8(cil.LdcI4S, 5)
//	_, err = cil.NewI32(cil.Nop, 1) // operand_mismatch
//
// Size is the opcode width plus the operand width. Operand widths depend
// on the category only, except switch, which takes 4*(N+1) bytes.
//
// # Stack effects
//
// StackPopCount and StackPushCount apply the opcode's stack behaviour
// class. Variable classes consult the call signature of the operand
// (anything implementing Callable) and, for ret, the Signature of the
// enclosing MethodBody.
//
// # Encoding
//
// Decode links branch targets to the instructions at their offsets and
// resolves tokens through a Resolver. Encode writes instructions back at
// their current offsets. Offsets are not re-laid out after edits;
// ComputeOffsets assigns sequential offsets for freshly built code.
// ParseBody and MethodBody.Encode handle tiny and fat headers and
// exception handler sections.
package cil
