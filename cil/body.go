package cil

import (
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/token"
)

// Method header formats.
const (
	headerTiny byte = 0x2
	headerFat  byte = 0x3

	flagMoreSects  uint16 = 0x08
	flagInitLocals uint16 = 0x10

	sectEHTable   byte = 0x01
	sectFatFormat byte = 0x40
	sectMoreSects byte = 0x80

	tinyMaxCode  = 63
	tinyMaxStack = 8
)

// HandlerKind is the kind of an exception handler clause.
type HandlerKind uint32

const (
	HandlerException HandlerKind = 0x0
	HandlerFilter    HandlerKind = 0x1
	HandlerFinally   HandlerKind = 0x2
	HandlerFault     HandlerKind = 0x4
)

func (k HandlerKind) String() string {
	switch k {
	case HandlerException:
		return "catch"
	case HandlerFilter:
		return "filter"
	case HandlerFinally:
		return "finally"
	case HandlerFault:
		return "fault"
	}
	return "handler(?)"
}

// ExceptionHandler is one protected region. A nil end instruction marks
// the end of the method body.
type ExceptionHandler struct {
	TryStart     *Instruction
	TryEnd       *Instruction
	HandlerStart *Instruction
	HandlerEnd   *Instruction
	FilterStart  *Instruction // HandlerFilter only
	CatchType    Member       // HandlerException only, nil if unresolved
	CatchToken   token.Token
	Kind         HandlerKind
}

// MethodBody is a decoded method body.
type MethodBody struct {
	// Signature of the owning method; used for ret stack effects.
	Signature         Signature
	Locals            Member // stand-alone signature, nil if none or unresolved
	Instructions      []*Instruction
	ExceptionHandlers []ExceptionHandler
	LocalVarSigToken  token.Token
	MaxStack          uint16
	InitLocals        bool
}

// BodySize returns the full size of the body at the start of data,
// including any extra data sections, without decoding instructions.
func BodySize(data []byte) (int, error) {
	h, err := readHeader(binary.NewReader(data))
	if err != nil {
		return 0, err
	}
	size := h.headerSize + int(h.codeSize)
	if h.flags&flagMoreSects == 0 {
		return size, nil
	}
	r := binary.NewReader(data)
	if err := r.Seek(size); err != nil {
		return 0, r.WrapError("method body", err)
	}
	for {
		r.Align(4)
		start := r.Position()
		kind, length, err := readSectionHeader(r)
		if err != nil {
			return 0, err
		}
		if err := r.Seek(start + length); err != nil {
			return 0, r.WrapError("method body", err)
		}
		if kind&sectMoreSects == 0 {
			return r.Position(), nil
		}
	}
}

type bodyHeader struct {
	headerSize  int
	codeSize    uint32
	localVarSig uint32
	flags       uint16
	maxStack    uint16
}

func readHeader(r *binary.Reader) (bodyHeader, error) {
	b, err := r.ReadByte()
	if err != nil {
		return bodyHeader{}, r.WrapError("method body", err)
	}
	switch b & 0x3 {
	case headerTiny:
		return bodyHeader{headerSize: 1, codeSize: uint32(b >> 2), maxStack: tinyMaxStack}, nil
	case headerFat:
		b2, err := r.ReadByte()
		if err != nil {
			return bodyHeader{}, r.WrapError("method body", err)
		}
		word := uint16(b) | uint16(b2)<<8
		h := bodyHeader{flags: word & 0x0FFF, headerSize: int(word>>12) * 4}
		if h.headerSize < 12 {
			return bodyHeader{}, errors.InvalidData(errors.PhaseRead, "fat method header shorter than 12 bytes")
		}
		if h.maxStack, err = r.ReadU16(); err != nil {
			return bodyHeader{}, r.WrapError("method body", err)
		}
		if h.codeSize, err = r.ReadU32(); err != nil {
			return bodyHeader{}, r.WrapError("method body", err)
		}
		if h.localVarSig, err = r.ReadU32(); err != nil {
			return bodyHeader{}, r.WrapError("method body", err)
		}
		return h, nil
	}
	return bodyHeader{}, errors.New(errors.PhaseRead, errors.KindInvalidData).
		Value(b).
		Detail("unknown method header format 0x%X", b&0x3).
		Build()
}

// readSectionHeader reads an extra data section header. The length
// includes the 4 byte header itself, so anything shorter is rejected.
func readSectionHeader(r *binary.Reader) (kind byte, length int, err error) {
	kind, err = r.ReadByte()
	if err != nil {
		return 0, 0, r.WrapError("method body", err)
	}
	if kind&sectFatFormat != 0 {
		b, err := r.ReadBytes(3)
		if err != nil {
			return 0, 0, r.WrapError("method body", err)
		}
		length = int(b[0]) | int(b[1])<<8 | int(b[2])<<16
	} else {
		n, err := r.ReadByte()
		if err != nil {
			return 0, 0, r.WrapError("method body", err)
		}
		if _, err := r.ReadU16(); err != nil {
			return 0, 0, r.WrapError("method body", err)
		}
		length = int(n)
	}
	if length < 4 {
		return 0, 0, errors.New(errors.PhaseRead, errors.KindInvalidData).
			Value(length).
			Detail("method data section length %d is shorter than its header", length).
			Build()
	}
	return kind, length, nil
}

type rawClause struct {
	flags, tryOffset, tryLength, handlerOffset, handlerLength, extra uint32
}

// ParseBody decodes a method body. res may be nil.
func ParseBody(data []byte, res Resolver) (*MethodBody, error) {
	r := binary.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := r.Seek(h.headerSize); err != nil {
		return nil, r.WrapError("method body", err)
	}
	code, err := r.ReadBytes(int(h.codeSize))
	if err != nil {
		return nil, r.WrapError("method body", err)
	}
	instrs, err := Decode(code, res)
	if err != nil {
		return nil, err
	}

	body := &MethodBody{
		Instructions:     instrs,
		MaxStack:         h.maxStack,
		InitLocals:       h.flags&flagInitLocals != 0,
		LocalVarSigToken: token.FromUint32(h.localVarSig),
	}
	if res != nil && !body.LocalVarSigToken.IsNull() {
		if m, err := res.ResolveMember(body.LocalVarSigToken); err == nil {
			body.Locals = m
		}
	}

	more := h.flags&flagMoreSects != 0
	for more {
		r.Align(4)
		start := r.Position()
		kind, length, err := readSectionHeader(r)
		if err != nil {
			return nil, err
		}
		more = kind&sectMoreSects != 0
		if kind&sectEHTable != 0 {
			clauses, err := readClauses(r, kind&sectFatFormat != 0, length-4)
			if err != nil {
				return nil, err
			}
			for _, c := range clauses {
				eh, err := body.linkClause(c, len(code), res)
				if err != nil {
					return nil, err
				}
				body.ExceptionHandlers = append(body.ExceptionHandlers, eh)
			}
		}
		if err := r.Seek(start + length); err != nil {
			return nil, r.WrapError("method body", err)
		}
	}
	return body, nil
}

func readClauses(r *binary.Reader, fat bool, size int) ([]rawClause, error) {
	width := 12
	if fat {
		width = 24
	}
	if size < 0 {
		return nil, errors.InvalidData(errors.PhaseRead, "exception section shorter than its header")
	}
	clauses := make([]rawClause, size/width)
	for i := range clauses {
		var c rawClause
		var err error
		if fat {
			fields := []*uint32{&c.flags, &c.tryOffset, &c.tryLength, &c.handlerOffset, &c.handlerLength, &c.extra}
			for _, f := range fields {
				if *f, err = r.ReadU32(); err != nil {
					return nil, r.WrapError("exception section", err)
				}
			}
		} else {
			var v16 uint16
			var v8 byte
			if v16, err = r.ReadU16(); err != nil {
				return nil, r.WrapError("exception section", err)
			}
			c.flags = uint32(v16)
			if v16, err = r.ReadU16(); err != nil {
				return nil, r.WrapError("exception section", err)
			}
			c.tryOffset = uint32(v16)
			if v8, err = r.ReadByte(); err != nil {
				return nil, r.WrapError("exception section", err)
			}
			c.tryLength = uint32(v8)
			if v16, err = r.ReadU16(); err != nil {
				return nil, r.WrapError("exception section", err)
			}
			c.handlerOffset = uint32(v16)
			if v8, err = r.ReadByte(); err != nil {
				return nil, r.WrapError("exception section", err)
			}
			c.handlerLength = uint32(v8)
			if c.extra, err = r.ReadU32(); err != nil {
				return nil, r.WrapError("exception section", err)
			}
		}
		clauses[i] = c
	}
	return clauses, nil
}

func (b *MethodBody) linkClause(c rawClause, codeSize int, res Resolver) (ExceptionHandler, error) {
	at := func(off uint32) (*Instruction, error) {
		if int(off) == codeSize {
			return nil, nil
		}
		if i := b.InstructionAt(int(off)); i != nil {
			return i, nil
		}
		return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
			Value(off).
			Detail("exception clause boundary IL_%04X is not an instruction", off).
			Build()
	}
	eh := ExceptionHandler{Kind: HandlerKind(c.flags)}
	var err error
	if eh.TryStart, err = at(c.tryOffset); err != nil {
		return eh, err
	}
	if eh.TryEnd, err = at(c.tryOffset + c.tryLength); err != nil {
		return eh, err
	}
	if eh.HandlerStart, err = at(c.handlerOffset); err != nil {
		return eh, err
	}
	if eh.HandlerEnd, err = at(c.handlerOffset + c.handlerLength); err != nil {
		return eh, err
	}
	switch eh.Kind {
	case HandlerFilter:
		if eh.FilterStart, err = at(c.extra); err != nil {
			return eh, err
		}
	case HandlerException:
		eh.CatchToken = token.FromUint32(c.extra)
		if res != nil && !eh.CatchToken.IsNull() {
			if m, err := res.ResolveMember(eh.CatchToken); err == nil {
				eh.CatchType = m
			}
		}
	}
	return eh, nil
}

// InstructionAt returns the instruction starting at offset, or nil.
func (b *MethodBody) InstructionAt(offset int) *Instruction {
	lo, hi := 0, len(b.Instructions)
	for lo < hi {
		mid := (lo + hi) / 2
		switch o := b.Instructions[mid].Offset; {
		case o == offset:
			return b.Instructions[mid]
		case o < offset:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil
}

// CodeSize returns the size of the instruction stream.
func (b *MethodBody) CodeSize() (int, error) {
	total := 0
	for _, i := range b.Instructions {
		n, err := i.Size()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func endOffset(i *Instruction, codeSize int) uint32 {
	if i == nil {
		return uint32(codeSize)
	}
	return uint32(i.Offset)
}

// Encode serializes the body. A tiny header is used when the body has no
// locals, no handlers, fits 63 bytes and needs at most 8 stack slots.
func (b *MethodBody) Encode(tokens TokenProvider) ([]byte, error) {
	code, err := Encode(b.Instructions, tokens)
	if err != nil {
		return nil, err
	}

	localTok := b.LocalVarSigToken
	if b.Locals != nil {
		localTok = b.Locals.Token()
		if tokens != nil {
			if localTok, err = tokens.MemberToken(b.Locals); err != nil {
				return nil, err
			}
		}
	}

	w := binary.NewWriter()
	tiny := len(code) <= tinyMaxCode && b.MaxStack <= tinyMaxStack &&
		localTok.IsNull() && len(b.ExceptionHandlers) == 0 && !b.InitLocals
	if tiny {
		w.Byte(byte(len(code))<<2 | headerTiny)
		w.WriteBytes(code)
		return w.Bytes(), nil
	}

	flags := uint16(headerFat) | 3<<12
	if b.InitLocals {
		flags |= flagInitLocals
	}
	if len(b.ExceptionHandlers) > 0 {
		flags |= flagMoreSects
	}
	w.WriteU16(flags)
	w.WriteU16(b.MaxStack)
	w.WriteU32(uint32(len(code)))
	w.WriteU32(localTok.Uint32())
	w.WriteBytes(code)

	if len(b.ExceptionHandlers) > 0 {
		w.Align(4)
		if err := b.encodeHandlers(w, len(code), tokens); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (b *MethodBody) encodeHandlers(w *binary.Writer, codeSize int, tokens TokenProvider) error {
	clauses := make([]rawClause, len(b.ExceptionHandlers))
	small := len(clauses)*12+4 <= 0xFF
	for i, eh := range b.ExceptionHandlers {
		c := rawClause{flags: uint32(eh.Kind)}
		c.tryOffset = endOffset(eh.TryStart, codeSize)
		c.tryLength = endOffset(eh.TryEnd, codeSize) - c.tryOffset
		c.handlerOffset = endOffset(eh.HandlerStart, codeSize)
		c.handlerLength = endOffset(eh.HandlerEnd, codeSize) - c.handlerOffset
		switch eh.Kind {
		case HandlerFilter:
			c.extra = endOffset(eh.FilterStart, codeSize)
		case HandlerException:
			tok := eh.CatchToken
			if eh.CatchType != nil {
				tok = eh.CatchType.Token()
				if tokens != nil {
					var err error
					if tok, err = tokens.MemberToken(eh.CatchType); err != nil {
						return err
					}
				}
			}
			c.extra = tok.Uint32()
		}
		if c.tryOffset > 0xFFFF || c.tryLength > 0xFF || c.handlerOffset > 0xFFFF || c.handlerLength > 0xFF {
			small = false
		}
		clauses[i] = c
	}

	if small {
		w.Byte(sectEHTable)
		w.Byte(byte(len(clauses)*12 + 4))
		w.WriteU16(0)
		for _, c := range clauses {
			w.WriteU16(uint16(c.flags))
			w.WriteU16(uint16(c.tryOffset))
			w.Byte(byte(c.tryLength))
			w.WriteU16(uint16(c.handlerOffset))
			w.Byte(byte(c.handlerLength))
			w.WriteU32(c.extra)
		}
		return nil
	}
	size := len(clauses)*24 + 4
	w.Byte(sectEHTable | sectFatFormat)
	w.Byte(byte(size))
	w.Byte(byte(size >> 8))
	w.Byte(byte(size >> 16))
	for _, c := range clauses {
		w.WriteU32(c.flags)
		w.WriteU32(c.tryOffset)
		w.WriteU32(c.tryLength)
		w.WriteU32(c.handlerOffset)
		w.WriteU32(c.handlerLength)
		w.WriteU32(c.extra)
	}
	return nil
}
