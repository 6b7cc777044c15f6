package cil

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/wippyai/clrmeta/errors"
)

// Instruction is one decoded CIL instruction.
type Instruction struct {
	Operand Operand
	Offset  int
	OpCode  Code
}

// Create builds an instruction after checking that op belongs to the
// operand category of code. A nil op is only valid for InlineNone.
func Create(code Code, op Operand) (*Instruction, error) {
	info, ok := Lookup(code)
	if !ok {
		return nil, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Value(uint16(code)).
			Detail("undefined opcode 0x%X", uint16(code)).
			Build()
	}
	if !accepts(info.OperandType, op) {
		return nil, errors.OperandMismatch(info.Name, info.OperandType.String(), operandKind(op))
	}
	return &Instruction{OpCode: code, Operand: op}, nil
}

// NewNone builds an instruction without operand.
func NewNone(code Code) (*Instruction, error) {
	return Create(code, nil)
}

// NewBranch builds a branch to target.
func NewBranch(code Code, target *Instruction) (*Instruction, error) {
	return Create(code, BranchImm{Target: target})
}

// NewSwitch builds a switch over targets. The slice is copied.
func NewSwitch(code Code, targets []*Instruction) (*Instruction, error) {
	t := make([]*Instruction, len(targets))
	copy(t, targets)
	return Create(code, SwitchImm{Targets: t})
}

// NewMember builds an instruction referencing a field, method, type or
// token.
func NewMember(code Code, m Member) (*Instruction, error) {
	return Create(code, MemberImm{Member: m})
}

// NewSig builds an instruction referencing a stand-alone signature.
func NewSig(code Code, m Member) (*Instruction, error) {
	return Create(code, SigImm{Member: m})
}

// NewI8 builds an instruction with an int8 immediate.
func NewI8(code Code, v int8) (*Instruction, error) {
	return Create(code, I8Imm{Value: v})
}

// NewI32 builds an instruction with an int32 immediate.
func NewI32(code Code, v int32) (*Instruction, error) {
	return Create(code, I32Imm{Value: v})
}

// NewI64 builds an instruction with an int64 immediate.
func NewI64(code Code, v int64) (*Instruction, error) {
	return Create(code, I64Imm{Value: v})
}

// NewR4 builds an instruction with a float32 immediate.
func NewR4(code Code, v float32) (*Instruction, error) {
	return Create(code, R4Imm{Value: v})
}

// NewR8 builds an instruction with a float64 immediate.
func NewR8(code Code, v float64) (*Instruction, error) {
	return Create(code, R8Imm{Value: v})
}

// NewString builds an ldstr-style instruction.
func NewString(code Code, s string) (*Instruction, error) {
	return Create(code, StringImm{Value: s})
}

// NewVar builds an instruction referencing local variable index.
func NewVar(code Code, index uint16) (*Instruction, error) {
	return Create(code, VarImm{Index: index})
}

// NewArg builds an instruction referencing argument index.
func NewArg(code Code, index uint16) (*Instruction, error) {
	return Create(code, ArgImm{Index: index})
}

// OperandSize returns the encoded size of the operand.
func (i *Instruction) OperandSize() (int, error) {
	t := i.OpCode.OperandType()
	switch t {
	case InlineNone:
		return 0, nil
	case ShortInlineArgument, ShortInlineVar, ShortInlineI, ShortInlineBrTarget:
		return 1, nil
	case InlineVar, InlineArgument:
		return 2, nil
	case ShortInlineR, InlineI, InlineField, InlineMethod, InlineSig,
		InlineTok, InlineType, InlineString, InlineBrTarget:
		return 4, nil
	case InlineR, InlineI8:
		return 8, nil
	case InlineSwitch:
		if sw, ok := i.Operand.(SwitchImm); ok {
			return 4 * (len(sw.Targets) + 1), nil
		}
		return 4, nil
	}
	return 0, errors.Unsupported(errors.PhaseConstruct, "operand category "+t.String())
}

// Size returns the encoded size of the instruction.
func (i *Instruction) Size() (int, error) {
	n, err := i.OperandSize()
	if err != nil {
		return 0, err
	}
	return i.OpCode.Size() + n, nil
}

// Label returns the IL_XXXX label of the instruction.
func (i *Instruction) Label() string {
	if i == nil {
		return "IL_????"
	}
	return fmt.Sprintf("IL_%04X", i.Offset)
}

// OperandString renders the operand for display.
func (i *Instruction) OperandString() string {
	switch v := i.Operand.(type) {
	case nil:
		return ""
	case I8Imm:
		return strconv.FormatInt(int64(v.Value), 10)
	case I32Imm:
		return strconv.FormatInt(int64(v.Value), 10)
	case I64Imm:
		return strconv.FormatInt(v.Value, 10)
	case R4Imm:
		return strconv.FormatFloat(float64(v.Value), 'g', -1, 32)
	case R8Imm:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case StringImm:
		return strconv.Quote(v.Value)
	case TokenImm:
		return "TOKEN<" + v.Token.String() + ">"
	case MemberImm:
		return memberString(v.Member)
	case SigImm:
		return memberString(v.Member)
	case VarImm:
		return "V_" + strconv.Itoa(int(v.Index))
	case ArgImm:
		return "A_" + strconv.Itoa(int(v.Index))
	case BranchImm:
		return v.Target.Label()
	case SwitchImm:
		labels := make([]string, len(v.Targets))
		for j, t := range v.Targets {
			labels[j] = t.Label()
		}
		return strings.Join(labels, ", ")
	}
	return ""
}

func memberString(m Member) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	if m == nil {
		return ""
	}
	return "TOKEN<" + m.Token().String() + ">"
}

func (i *Instruction) String() string {
	s := i.Label() + ": " + i.OpCode.String()
	if op := i.OperandString(); op != "" {
		s += " " + op
	}
	return s
}

// callSignature returns the signature of a call operand, or nil.
func (i *Instruction) callSignature() Signature {
	var m Member
	switch v := i.Operand.(type) {
	case MemberImm:
		m = v.Member
	case SigImm:
		m = v.Member
	}
	if c, ok := m.(Callable); ok {
		return c.CallSignature()
	}
	return nil
}

// StackPopCount returns how many values the instruction pops. body
// supplies the enclosing method signature for ret and may be nil.
func (i *Instruction) StackPopCount(body *MethodBody) (int, error) {
	info, ok := Lookup(i.OpCode)
	if !ok {
		return 0, errors.Unsupported(errors.PhaseConstruct, "stack behaviour of "+i.OpCode.String())
	}
	if info.Pop != Varpop {
		n, ok := fixedPop[info.Pop]
		if !ok {
			return 0, errors.Unsupported(errors.PhaseConstruct, "stack behaviour of "+info.Name)
		}
		return n, nil
	}

	sig := i.callSignature()
	if sig == nil {
		if i.OpCode == Ret && body != nil && body.Signature != nil && !body.Signature.ReturnsVoid() {
			return 1, nil
		}
		return 0, nil
	}
	n := sig.ParameterCount()
	if sig.HasThis() && i.OpCode != Newobj {
		n++
	}
	return n, nil
}

// StackPushCount returns how many values the instruction pushes.
func (i *Instruction) StackPushCount(body *MethodBody) (int, error) {
	info, ok := Lookup(i.OpCode)
	if !ok {
		return 0, errors.Unsupported(errors.PhaseConstruct, "stack behaviour of "+i.OpCode.String())
	}
	if info.Push != Varpush {
		n, ok := fixedPush[info.Push]
		if !ok {
			return 0, errors.Unsupported(errors.PhaseConstruct, "stack behaviour of "+info.Name)
		}
		return n, nil
	}
	if i.OpCode == Newobj {
		return 1, nil
	}
	if sig := i.callSignature(); sig != nil && !sig.ReturnsVoid() {
		return 1, nil
	}
	return 0, nil
}

// StackDelta returns push count minus pop count.
func (i *Instruction) StackDelta(body *MethodBody) (int, error) {
	push, err := i.StackPushCount(body)
	if err != nil {
		return 0, err
	}
	pop, err := i.StackPopCount(body)
	if err != nil {
		return 0, err
	}
	return push - pop, nil
}

// Equal reports structural equality over offset, opcode and operand.
// Branch targets compare by offset.
func (i *Instruction) Equal(o *Instruction) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.Offset == o.Offset && i.OpCode == o.OpCode && operandEqual(i.Operand, o.Operand)
}

func operandEqual(a, b Operand) bool {
	switch x := a.(type) {
	case BranchImm:
		y, ok := b.(BranchImm)
		return ok && targetOffset(x.Target) == targetOffset(y.Target)
	case SwitchImm:
		y, ok := b.(SwitchImm)
		if !ok || len(x.Targets) != len(y.Targets) {
			return false
		}
		for j := range x.Targets {
			if targetOffset(x.Targets[j]) != targetOffset(y.Targets[j]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func targetOffset(i *Instruction) int {
	if i == nil {
		return -1
	}
	return i.Offset
}

// Hash returns a hash consistent with Equal.
func (i *Instruction) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	put(uint64(i.Offset))
	put(uint64(i.OpCode))
	switch v := i.Operand.(type) {
	case I8Imm:
		put(uint64(v.Value))
	case I32Imm:
		put(uint64(v.Value))
	case I64Imm:
		put(uint64(v.Value))
	case R4Imm:
		put(uint64(math.Float32bits(v.Value)))
	case R8Imm:
		put(math.Float64bits(v.Value))
	case StringImm:
		_, _ = d.WriteString(v.Value)
	case TokenImm:
		put(uint64(v.Token.Uint32()))
	case MemberImm:
		if v.Member != nil {
			put(uint64(v.Member.Token().Uint32()))
		}
	case SigImm:
		if v.Member != nil {
			put(uint64(v.Member.Token().Uint32()))
		}
	case VarImm:
		put(uint64(v.Index))
	case ArgImm:
		put(uint64(v.Index))
	case BranchImm:
		put(uint64(targetOffset(v.Target)))
	case SwitchImm:
		for _, t := range v.Targets {
			put(uint64(targetOffset(t)))
		}
	}
	return d.Sum64()
}
