package cil

import (
	"github.com/wippyai/clrmeta/token"
)

// Operand is the closed set of instruction operands. Each concrete type
// belongs to one or more operand categories.
type Operand interface {
	operand()
}

// Member is a metadata entity an instruction can reference.
type Member interface {
	Token() token.Token
}

// Signature is the part of a method signature the stack model needs.
type Signature interface {
	ParameterCount() int
	HasThis() bool
	ReturnsVoid() bool
}

// Callable is implemented by members that carry a call signature. A nil
// result means the signature could not be resolved.
type Callable interface {
	CallSignature() Signature
}

// I8Imm is a ShortInlineI operand.
type I8Imm struct {
	Value int8
}

// I32Imm is an InlineI operand.
type I32Imm struct {
	Value int32
}

// I64Imm is an InlineI8 operand.
type I64Imm struct {
	Value int64
}

// R4Imm is a ShortInlineR operand.
type R4Imm struct {
	Value float32
}

// R8Imm is an InlineR operand.
type R8Imm struct {
	Value float64
}

// StringImm is a resolved InlineString operand.
type StringImm struct {
	Value string
}

// TokenImm is an unresolved token operand, kept when a member or string
// could not be resolved. Valid for every token-carrying category.
type TokenImm struct {
	Token token.Token
}

// MemberImm is an InlineField, InlineMethod, InlineType or InlineTok
// operand.
type MemberImm struct {
	Member Member
}

// SigImm is an InlineSig operand, usually a stand-alone signature.
type SigImm struct {
	Member Member
}

// VarImm references a local variable by index.
type VarImm struct {
	Index uint16
}

// ArgImm references an argument by index. Index 0 is the receiver of an
// instance method.
type ArgImm struct {
	Index uint16
}

// BranchImm is the target of a branch instruction.
type BranchImm struct {
	Target *Instruction
}

// SwitchImm is the jump table of a switch instruction.
type SwitchImm struct {
	Targets []*Instruction
}

func (I8Imm) operand()     {}
func (I32Imm) operand()    {}
func (I64Imm) operand()    {}
func (R4Imm) operand()     {}
func (R8Imm) operand()     {}
func (StringImm) operand() {}
func (TokenImm) operand()  {}
func (MemberImm) operand() {}
func (SigImm) operand()    {}
func (VarImm) operand()    {}
func (ArgImm) operand()    {}
func (BranchImm) operand() {}
func (SwitchImm) operand() {}

// accepts reports whether op is a valid operand for category t.
func accepts(t OperandType, op Operand) bool {
	switch v := op.(type) {
	case nil:
		return t == InlineNone
	case I8Imm:
		return t == ShortInlineI
	case I32Imm:
		return t == InlineI
	case I64Imm:
		return t == InlineI8
	case R4Imm:
		return t == ShortInlineR
	case R8Imm:
		return t == InlineR
	case StringImm:
		return t == InlineString
	case TokenImm:
		return t.IsMember() || t == InlineSig || t == InlineString
	case MemberImm:
		return t.IsMember() && v.Member != nil
	case SigImm:
		return t == InlineSig && v.Member != nil
	case VarImm:
		return t == ShortInlineVar || t == InlineVar
	case ArgImm:
		return t == ShortInlineArgument || t == InlineArgument
	case BranchImm:
		return (t == ShortInlineBrTarget || t == InlineBrTarget) && v.Target != nil
	case SwitchImm:
		if t != InlineSwitch {
			return false
		}
		for _, target := range v.Targets {
			if target == nil {
				return false
			}
		}
		return true
	}
	return false
}

func operandKind(op Operand) string {
	switch op.(type) {
	case nil:
		return "no operand"
	case I8Imm:
		return "int8"
	case I32Imm:
		return "int32"
	case I64Imm:
		return "int64"
	case R4Imm:
		return "float32"
	case R8Imm:
		return "float64"
	case StringImm:
		return "string"
	case TokenImm:
		return "token"
	case MemberImm:
		return "member"
	case SigImm:
		return "signature"
	case VarImm:
		return "local variable"
	case ArgImm:
		return "argument"
	case BranchImm:
		return "branch target"
	case SwitchImm:
		return "switch table"
	}
	return "unknown operand"
}
