package cil

import (
	"math"

	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/token"
)

// TokenProvider maps operands to the tokens written into the stream. The
// builder supplies one that appends members on demand.
type TokenProvider interface {
	MemberToken(m Member) (token.Token, error)
	StringToken(s string) (token.Token, error)
}

// ComputeOffsets assigns sequential offsets starting at 0 and returns the
// total code size.
func ComputeOffsets(instrs []*Instruction) (int, error) {
	offset := 0
	for _, i := range instrs {
		i.Offset = offset
		n, err := i.Size()
		if err != nil {
			return 0, err
		}
		offset += n
	}
	return offset, nil
}

// Encode encodes instrs. Offsets must already be consistent with the
// instruction sizes; branch displacements are computed from them. With a
// nil provider members encode as their current tokens and string operands
// fail.
func Encode(instrs []*Instruction, tokens TokenProvider) ([]byte, error) {
	w := binary.NewWriter()
	for _, i := range instrs {
		if err := encodeInstruction(w, i, tokens); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func encodeInstruction(w *binary.Writer, i *Instruction, tokens TokenProvider) error {
	info, ok := Lookup(i.OpCode)
	if !ok {
		return errors.New(errors.PhaseWrite, errors.KindInvalidData).
			Detail("undefined opcode 0x%X at %s", uint16(i.OpCode), i.Label()).
			Build()
	}
	if !accepts(info.OperandType, i.Operand) {
		return errors.OperandMismatch(info.Name, info.OperandType.String(), operandKind(i.Operand))
	}
	size, err := i.Size()
	if err != nil {
		return err
	}
	end := i.Offset + size

	if i.OpCode.IsTwoByte() {
		w.Byte(0xFE)
	}
	w.Byte(byte(i.OpCode))

	switch v := i.Operand.(type) {
	case nil:
	case I8Imm:
		w.Byte(byte(v.Value))
	case I32Imm:
		w.WriteU32(uint32(v.Value))
	case I64Imm:
		w.WriteU64(uint64(v.Value))
	case R4Imm:
		w.WriteF32(v.Value)
	case R8Imm:
		w.WriteF64(v.Value)
	case VarImm:
		return writeIndex(w, info.OperandType == ShortInlineVar, v.Index, i)
	case ArgImm:
		return writeIndex(w, info.OperandType == ShortInlineArgument, v.Index, i)
	case BranchImm:
		delta := v.Target.Offset - end
		if info.OperandType == ShortInlineBrTarget {
			if delta < math.MinInt8 || delta > math.MaxInt8 {
				return errors.New(errors.PhaseWrite, errors.KindOverflow).
					Value(delta).
					Detail("%s: short branch displacement %d out of range", i.Label(), delta).
					Build()
			}
			w.Byte(byte(int8(delta)))
		} else {
			w.WriteU32(uint32(int32(delta)))
		}
	case SwitchImm:
		w.WriteU32(uint32(len(v.Targets)))
		for _, t := range v.Targets {
			w.WriteU32(uint32(int32(t.Offset - end)))
		}
	case StringImm:
		if tokens == nil {
			return errors.InvalidInput(errors.PhaseWrite, i.Label()+": string operand needs a token provider")
		}
		tok, err := tokens.StringToken(v.Value)
		if err != nil {
			return err
		}
		w.WriteU32(tok.Uint32())
	case TokenImm:
		w.WriteU32(v.Token.Uint32())
	case MemberImm:
		return writeMember(w, v.Member, tokens)
	case SigImm:
		return writeMember(w, v.Member, tokens)
	}
	return nil
}

func writeIndex(w *binary.Writer, short bool, index uint16, i *Instruction) error {
	if short {
		if index > math.MaxUint8 {
			return errors.New(errors.PhaseWrite, errors.KindOverflow).
				Value(index).
				Detail("%s: index %d does not fit a short operand", i.Label(), index).
				Build()
		}
		w.Byte(byte(index))
		return nil
	}
	w.WriteU16(index)
	return nil
}

func writeMember(w *binary.Writer, m Member, tokens TokenProvider) error {
	tok := m.Token()
	if tokens != nil {
		var err error
		if tok, err = tokens.MemberToken(m); err != nil {
			return err
		}
	}
	w.WriteU32(tok.Uint32())
	return nil
}
