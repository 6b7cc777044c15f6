package cil

import (
	"go.uber.org/zap"

	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/token"
)

// Resolver turns operand tokens into entities while decoding.
type Resolver interface {
	ResolveMember(tok token.Token) (Member, error)
	ResolveString(tok token.Token) (string, error)
}

type pendingBranch struct {
	instr   *Instruction
	targets []int
}

// Decode decodes a CIL instruction stream. Branch targets are linked to
// the instructions at their offsets. Tokens that res cannot resolve, or
// all tokens when res is nil, are kept as TokenImm.
func Decode(code []byte, res Resolver) ([]*Instruction, error) {
	r := binary.NewReader(code)
	var (
		instrs   []*Instruction
		branches []pendingBranch
	)
	byOffset := make(map[int]*Instruction)

	for r.Remaining() > 0 {
		offset := r.Position()
		b, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("code", err)
		}
		c := Code(b)
		if b == 0xFE {
			b2, err := r.ReadByte()
			if err != nil {
				return nil, r.WrapError("code", err)
			}
			c = 0xFE00 | Code(b2)
		}
		info, ok := Lookup(c)
		if !ok {
			return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
				Value(uint16(c)).
				Detail("undefined opcode 0x%X at IL_%04X", uint16(c), offset).
				Build()
		}

		instr := &Instruction{Offset: offset, OpCode: c}
		op, targets, err := readOperand(r, info, res)
		if err != nil {
			return nil, r.WrapError("code", err)
		}
		instr.Operand = op
		if targets != nil {
			branches = append(branches, pendingBranch{instr: instr, targets: targets})
		}
		instrs = append(instrs, instr)
		byOffset[offset] = instr
	}

	for _, p := range branches {
		linked := make([]*Instruction, len(p.targets))
		for i, off := range p.targets {
			t, ok := byOffset[off]
			if !ok {
				return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
					Value(off).
					Detail("%s branches to IL_%04X, which is not an instruction boundary", p.instr.Label(), off).
					Build()
			}
			linked[i] = t
		}
		if p.instr.OpCode.OperandType() == InlineSwitch {
			p.instr.Operand = SwitchImm{Targets: linked}
		} else {
			p.instr.Operand = BranchImm{Target: linked[0]}
		}
	}
	return instrs, nil
}

// readOperand reads the operand of info. Branch operands are returned as
// absolute target offsets for later linking.
func readOperand(r *binary.Reader, info OpCode, res Resolver) (Operand, []int, error) {
	switch info.OperandType {
	case InlineNone:
		return nil, nil, nil
	case ShortInlineI:
		b, err := r.ReadByte()
		return I8Imm{Value: int8(b)}, nil, err
	case InlineI:
		v, err := r.ReadU32()
		return I32Imm{Value: int32(v)}, nil, err
	case InlineI8:
		v, err := r.ReadU64()
		return I64Imm{Value: int64(v)}, nil, err
	case ShortInlineR:
		v, err := r.ReadF32()
		return R4Imm{Value: v}, nil, err
	case InlineR:
		v, err := r.ReadF64()
		return R8Imm{Value: v}, nil, err
	case ShortInlineVar:
		b, err := r.ReadByte()
		return VarImm{Index: uint16(b)}, nil, err
	case InlineVar:
		v, err := r.ReadU16()
		return VarImm{Index: v}, nil, err
	case ShortInlineArgument:
		b, err := r.ReadByte()
		return ArgImm{Index: uint16(b)}, nil, err
	case InlineArgument:
		v, err := r.ReadU16()
		return ArgImm{Index: v}, nil, err
	case ShortInlineBrTarget:
		b, err := r.ReadByte()
		if err != nil {
			return nil, nil, err
		}
		return nil, []int{r.Position() + int(int8(b))}, nil
	case InlineBrTarget:
		v, err := r.ReadU32()
		if err != nil {
			return nil, nil, err
		}
		return nil, []int{r.Position() + int(int32(v))}, nil
	case InlineSwitch:
		n, err := r.ReadU32()
		if err != nil {
			return nil, nil, err
		}
		if int64(n)*4 > int64(r.Remaining()) {
			return nil, nil, errors.InvalidData(errors.PhaseRead, "switch table exceeds method body")
		}
		rel := make([]int32, n)
		for i := range rel {
			v, err := r.ReadU32()
			if err != nil {
				return nil, nil, err
			}
			rel[i] = int32(v)
		}
		end := r.Position()
		targets := make([]int, n)
		for i, d := range rel {
			targets[i] = end + int(d)
		}
		if targets == nil {
			targets = []int{}
		}
		return SwitchImm{}, targets, nil
	case InlineString:
		v, err := r.ReadU32()
		if err != nil {
			return nil, nil, err
		}
		tok := token.FromUint32(v)
		if res != nil {
			s, err := res.ResolveString(tok)
			if err == nil {
				return StringImm{Value: s}, nil, nil
			}
			Logger().Debug("unresolved string operand", zap.Stringer("token", tok), zap.Error(err))
		}
		return TokenImm{Token: tok}, nil, nil
	case InlineField, InlineMethod, InlineType, InlineTok, InlineSig:
		v, err := r.ReadU32()
		if err != nil {
			return nil, nil, err
		}
		tok := token.FromUint32(v)
		if res != nil {
			m, err := res.ResolveMember(tok)
			if err == nil && m != nil {
				if info.OperandType == InlineSig {
					return SigImm{Member: m}, nil, nil
				}
				return MemberImm{Member: m}, nil, nil
			}
			Logger().Debug("unresolved member operand", zap.Stringer("token", tok), zap.Error(err))
		}
		return TokenImm{Token: tok}, nil, nil
	}
	return nil, nil, errors.Unsupported(errors.PhaseRead, "operand category "+info.OperandType.String())
}
