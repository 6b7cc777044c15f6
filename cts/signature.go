package cts

import (
	"fmt"

	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/token"
)

// ElementType is a signature element type, ECMA-335 II.23.1.16.
type ElementType byte

const (
	ElementEnd         ElementType = 0x00
	ElementVoid        ElementType = 0x01
	ElementBoolean     ElementType = 0x02
	ElementChar        ElementType = 0x03
	ElementI1          ElementType = 0x04
	ElementU1          ElementType = 0x05
	ElementI2          ElementType = 0x06
	ElementU2          ElementType = 0x07
	ElementI4          ElementType = 0x08
	ElementU4          ElementType = 0x09
	ElementI8          ElementType = 0x0A
	ElementU8          ElementType = 0x0B
	ElementR4          ElementType = 0x0C
	ElementR8          ElementType = 0x0D
	ElementString      ElementType = 0x0E
	ElementPtr         ElementType = 0x0F
	ElementByRef       ElementType = 0x10
	ElementValueType   ElementType = 0x11
	ElementClass       ElementType = 0x12
	ElementVar         ElementType = 0x13
	ElementArray       ElementType = 0x14
	ElementGenericInst ElementType = 0x15
	ElementTypedByRef  ElementType = 0x16
	ElementI           ElementType = 0x18
	ElementU           ElementType = 0x19
	ElementFnPtr       ElementType = 0x1B
	ElementObject      ElementType = 0x1C
	ElementSzArray     ElementType = 0x1D
	ElementMVar        ElementType = 0x1E
	ElementCModReqd    ElementType = 0x1F
	ElementCModOpt     ElementType = 0x20
	ElementSentinel    ElementType = 0x41
	ElementPinned      ElementType = 0x45
)

var elementNames = map[ElementType]string{
	ElementVoid: "void", ElementBoolean: "bool", ElementChar: "char",
	ElementI1: "int8", ElementU1: "uint8", ElementI2: "int16", ElementU2: "uint16",
	ElementI4: "int32", ElementU4: "uint32", ElementI8: "int64", ElementU8: "uint64",
	ElementR4: "float32", ElementR8: "float64", ElementString: "string",
	ElementTypedByRef: "typedref", ElementI: "native int", ElementU: "native uint",
	ElementObject: "object",
}

func (e ElementType) String() string {
	if n, ok := elementNames[e]; ok {
		return n
	}
	return fmt.Sprintf("element(0x%02X)", byte(e))
}

// Calling convention bits of a method signature.
const (
	CallDefault  byte = 0x00
	CallVarArg   byte = 0x05
	CallField    byte = 0x06
	CallLocals   byte = 0x07
	CallProperty byte = 0x08
	CallGeneric  byte = 0x10
	CallHasThis  byte = 0x20
	CallExplicit byte = 0x40
)

// TokenFunc maps a referenced member to the token written for it.
type TokenFunc func(m Member) (token.Token, error)

// TypeSignature is a decoded type in a signature blob.
type TypeSignature interface {
	ElementType() ElementType
	String() string
	encode(w *binary.Writer, tokens TokenFunc) error
}

// CorLibType is a primitive, string, object or typedref element.
type CorLibType struct {
	Type ElementType
}

func (t *CorLibType) ElementType() ElementType { return t.Type }
func (t *CorLibType) String() string           { return t.Type.String() }

func (t *CorLibType) encode(w *binary.Writer, _ TokenFunc) error {
	w.Byte(byte(t.Type))
	return nil
}

// TypeDefOrRefSig is a class or value type referenced by token.
type TypeDefOrRefSig struct {
	Type      *lazy.Value[Member]
	Token     token.Token // as decoded; used when Type does not resolve
	ValueType bool
}

// NewTypeDefOrRefSig creates a signature element for t.
func NewTypeDefOrRefSig(t Member, valueType bool) *TypeDefOrRefSig {
	return &TypeDefOrRefSig{Type: lazy.Of(t), ValueType: valueType}
}

func (t *TypeDefOrRefSig) ElementType() ElementType {
	if t.ValueType {
		return ElementValueType
	}
	return ElementClass
}

func (t *TypeDefOrRefSig) String() string {
	if m := t.Type.Get(); m != nil {
		if s, ok := m.(fmt.Stringer); ok {
			return s.String()
		}
	}
	return "TOKEN<" + t.Token.String() + ">"
}

func (t *TypeDefOrRefSig) encode(w *binary.Writer, tokens TokenFunc) error {
	tok := t.Token
	if m := t.Type.Get(); m != nil {
		var err error
		if tokens != nil {
			tok, err = tokens(m)
		} else {
			tok = m.Token()
		}
		if err != nil {
			return err
		}
	}
	raw, err := token.EncoderFor(token.TypeDefOrRef).Encode(tok)
	if err != nil {
		return err
	}
	w.Byte(byte(t.ElementType()))
	w.WriteCompressedU32(raw)
	return nil
}

// SzArray is a single-dimension zero-based array.
type SzArray struct {
	Elem TypeSignature
}

func (t *SzArray) ElementType() ElementType { return ElementSzArray }
func (t *SzArray) String() string           { return t.Elem.String() + "[]" }

func (t *SzArray) encode(w *binary.Writer, tokens TokenFunc) error {
	w.Byte(byte(ElementSzArray))
	return t.Elem.encode(w, tokens)
}

// Pointer is an unmanaged pointer.
type Pointer struct {
	Elem TypeSignature
}

func (t *Pointer) ElementType() ElementType { return ElementPtr }
func (t *Pointer) String() string           { return t.Elem.String() + "*" }

func (t *Pointer) encode(w *binary.Writer, tokens TokenFunc) error {
	w.Byte(byte(ElementPtr))
	return t.Elem.encode(w, tokens)
}

// ByRef is a managed reference.
type ByRef struct {
	Elem TypeSignature
}

func (t *ByRef) ElementType() ElementType { return ElementByRef }
func (t *ByRef) String() string           { return t.Elem.String() + "&" }

func (t *ByRef) encode(w *binary.Writer, tokens TokenFunc) error {
	w.Byte(byte(ElementByRef))
	return t.Elem.encode(w, tokens)
}

// GenericParamSig refers to a type (!n) or method (!!n) generic parameter.
type GenericParamSig struct {
	Index  uint32
	Method bool
}

func (t *GenericParamSig) ElementType() ElementType {
	if t.Method {
		return ElementMVar
	}
	return ElementVar
}

func (t *GenericParamSig) String() string {
	if t.Method {
		return fmt.Sprintf("!!%d", t.Index)
	}
	return fmt.Sprintf("!%d", t.Index)
}

func (t *GenericParamSig) encode(w *binary.Writer, _ TokenFunc) error {
	w.Byte(byte(t.ElementType()))
	w.WriteCompressedU32(t.Index)
	return nil
}

// RawTypeSignature holds the undecoded remainder of a blob starting at an
// element the model does not understand. Tokens inside are written as
// they were read.
type RawTypeSignature struct {
	Data []byte
}

func (t *RawTypeSignature) ElementType() ElementType {
	if len(t.Data) == 0 {
		return ElementEnd
	}
	return ElementType(t.Data[0])
}

func (t *RawTypeSignature) String() string {
	return fmt.Sprintf("raw(% X)", t.Data)
}

func (t *RawTypeSignature) encode(w *binary.Writer, _ TokenFunc) error {
	w.WriteBytes(t.Data)
	return nil
}

func unsupportedElement(e ElementType) error {
	return errors.New(errors.PhaseRead, errors.KindUnsupported).
		Value(e).
		Detail("element type %s not modeled", e).
		Build()
}

// sigReader decodes signature elements, resolving type tokens in img.
type sigReader struct {
	r   *binary.Reader
	img *Image
}

func (s *sigReader) typeSig() (TypeSignature, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return nil, s.r.WrapError("signature", err)
	}
	e := ElementType(b)
	switch e {
	case ElementVoid, ElementBoolean, ElementChar, ElementI1, ElementU1, ElementI2, ElementU2,
		ElementI4, ElementU4, ElementI8, ElementU8, ElementR4, ElementR8, ElementString,
		ElementTypedByRef, ElementI, ElementU, ElementObject:
		return &CorLibType{Type: e}, nil
	case ElementClass, ElementValueType:
		raw, err := s.r.ReadCompressedU32()
		if err != nil {
			return nil, s.r.WrapError("signature", err)
		}
		tok, err := token.EncoderFor(token.TypeDefOrRef).Decode(raw)
		if err != nil {
			return nil, err
		}
		img := s.img
		return &TypeDefOrRefSig{
			Token:     tok,
			ValueType: e == ElementValueType,
			Type: lazy.New(func() Member {
				if img == nil {
					return nil
				}
				return img.member(tok)
			}),
		}, nil
	case ElementSzArray, ElementPtr, ElementByRef:
		elem, err := s.typeSig()
		if err != nil {
			return nil, err
		}
		switch e {
		case ElementSzArray:
			return &SzArray{Elem: elem}, nil
		case ElementPtr:
			return &Pointer{Elem: elem}, nil
		}
		return &ByRef{Elem: elem}, nil
	case ElementVar, ElementMVar:
		n, err := s.r.ReadCompressedU32()
		if err != nil {
			return nil, s.r.WrapError("signature", err)
		}
		return &GenericParamSig{Index: n, Method: e == ElementMVar}, nil
	}
	return nil, unsupportedElement(e)
}

// typeOrRaw decodes one type, falling back to the raw remainder starting
// at the element. ok is false when the fallback was taken.
func (s *sigReader) typeOrRaw() (TypeSignature, bool) {
	start := s.r.Position()
	t, err := s.typeSig()
	if err == nil {
		return t, true
	}
	_ = s.r.Seek(start)
	return &RawTypeSignature{Data: s.r.ReadRemaining()}, false
}

// Signature is a decoded #Blob signature.
type Signature interface {
	Encode(tokens TokenFunc) ([]byte, error)
}

// ParseSignature decodes a field, method, property or local variables
// signature. Blobs of any other shape are kept raw.
func ParseSignature(img *Image, data []byte) Signature {
	if len(data) == 0 {
		return nil
	}
	switch data[0] & 0x0F {
	case CallField:
		return parseFieldSignature(img, data)
	case CallLocals:
		return parseLocalsSignature(img, data)
	case CallDefault, 0x01, 0x02, 0x03, 0x04, CallVarArg, CallProperty:
		return parseMethodSignature(img, data)
	}
	return &RawSignature{Data: data}
}

// RawSignature is a signature blob kept as read.
type RawSignature struct {
	Data []byte
}

// Encode returns the raw bytes.
func (s *RawSignature) Encode(TokenFunc) ([]byte, error) {
	return append([]byte(nil), s.Data...), nil
}

// FieldSignature is the signature of a field.
type FieldSignature struct {
	Type TypeSignature
}

// NewFieldSignature creates a field signature of type t.
func NewFieldSignature(t TypeSignature) *FieldSignature {
	return &FieldSignature{Type: t}
}

func parseFieldSignature(img *Image, data []byte) *FieldSignature {
	s := &sigReader{r: binary.NewReader(data), img: img}
	_, _ = s.r.ReadByte()
	t, _ := s.typeOrRaw()
	return &FieldSignature{Type: t}
}

// Encode serializes the signature.
func (s *FieldSignature) Encode(tokens TokenFunc) ([]byte, error) {
	w := binary.NewWriter()
	w.Byte(CallField)
	if err := s.Type.encode(w, tokens); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (s *FieldSignature) String() string {
	return s.Type.String()
}

// MethodSignature is the signature of a method, method reference or
// property. When a parameter cannot be decoded the counts and flags are
// still known and the original bytes are written back unchanged.
type MethodSignature struct {
	ReturnType        TypeSignature
	Parameters        []TypeSignature
	raw               []byte
	GenericParameters uint32
	paramCount        int
	CallingConvention byte
	incomplete        bool
}

// NewMethodSignature creates a method signature.
func NewMethodSignature(hasThis bool, ret TypeSignature, params ...TypeSignature) *MethodSignature {
	conv := CallDefault
	if hasThis {
		conv |= CallHasThis
	}
	return &MethodSignature{
		CallingConvention: conv,
		ReturnType:        ret,
		Parameters:        params,
		paramCount:        len(params),
	}
}

func parseMethodSignature(img *Image, data []byte) *MethodSignature {
	s := &sigReader{r: binary.NewReader(data), img: img}
	sig := &MethodSignature{raw: data}
	sig.CallingConvention, _ = s.r.ReadByte()
	if sig.CallingConvention&CallGeneric != 0 {
		n, err := s.r.ReadCompressedU32()
		if err != nil {
			sig.incomplete = true
			return sig
		}
		sig.GenericParameters = n
	}
	n, err := s.r.ReadCompressedU32()
	if err != nil {
		sig.incomplete = true
		return sig
	}
	sig.paramCount = int(n)

	var ok bool
	if sig.ReturnType, ok = s.typeOrRaw(); !ok {
		sig.incomplete = true
		return sig
	}
	for i := 0; i < sig.paramCount; i++ {
		p, ok := s.typeOrRaw()
		if !ok {
			sig.incomplete = true
			return sig
		}
		sig.Parameters = append(sig.Parameters, p)
	}
	return sig
}

// ParameterCount returns the number of declared parameters.
func (s *MethodSignature) ParameterCount() int {
	if s.incomplete {
		return s.paramCount
	}
	return len(s.Parameters)
}

// HasThis reports whether the method takes an implicit receiver.
func (s *MethodSignature) HasThis() bool {
	return s.CallingConvention&CallHasThis != 0
}

// ReturnsVoid reports whether the return type is void.
func (s *MethodSignature) ReturnsVoid() bool {
	t, ok := s.ReturnType.(*CorLibType)
	return ok && t.Type == ElementVoid
}

// Complete reports whether every element was decoded.
func (s *MethodSignature) Complete() bool {
	return !s.incomplete
}

// Encode serializes the signature. An incomplete signature is written as
// it was read.
func (s *MethodSignature) Encode(tokens TokenFunc) ([]byte, error) {
	if s.incomplete {
		return append([]byte(nil), s.raw...), nil
	}
	if s.ReturnType == nil {
		return nil, errors.InvalidInput(errors.PhaseWrite, "method signature has no return type")
	}
	w := binary.NewWriter()
	w.Byte(s.CallingConvention)
	if s.CallingConvention&CallGeneric != 0 {
		w.WriteCompressedU32(s.GenericParameters)
	}
	w.WriteCompressedU32(uint32(len(s.Parameters)))
	if err := s.ReturnType.encode(w, tokens); err != nil {
		return nil, err
	}
	for _, p := range s.Parameters {
		if err := p.encode(w, tokens); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (s *MethodSignature) String() string {
	ret := "?"
	if s.ReturnType != nil {
		ret = s.ReturnType.String()
	}
	out := ret + " ("
	for i, p := range s.Parameters {
		if i > 0 {
			out += ", "
		}
		out += p.String()
	}
	if s.incomplete && len(s.Parameters) < s.paramCount {
		out += "..."
	}
	return out + ")"
}

var _ cil.Signature = (*MethodSignature)(nil)

// LocalVariablesSignature lists the local variable types of a method body.
type LocalVariablesSignature struct {
	Locals     []TypeSignature
	raw        []byte
	incomplete bool
}

func parseLocalsSignature(img *Image, data []byte) *LocalVariablesSignature {
	s := &sigReader{r: binary.NewReader(data), img: img}
	sig := &LocalVariablesSignature{raw: data}
	_, _ = s.r.ReadByte()
	n, err := s.r.ReadCompressedU32()
	if err != nil {
		sig.incomplete = true
		return sig
	}
	for i := uint32(0); i < n; i++ {
		t, ok := s.typeOrRaw()
		if !ok {
			sig.incomplete = true
			return sig
		}
		sig.Locals = append(sig.Locals, t)
	}
	return sig
}

// Encode serializes the signature. An incomplete signature is written as
// it was read.
func (s *LocalVariablesSignature) Encode(tokens TokenFunc) ([]byte, error) {
	if s.incomplete {
		return append([]byte(nil), s.raw...), nil
	}
	w := binary.NewWriter()
	w.Byte(CallLocals)
	w.WriteCompressedU32(uint32(len(s.Locals)))
	for _, t := range s.Locals {
		if err := t.encode(w, tokens); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// parseTypeSignature decodes a bare type, as stored for a TypeSpec.
func parseTypeSignature(img *Image, data []byte) TypeSignature {
	if len(data) == 0 {
		return nil
	}
	s := &sigReader{r: binary.NewReader(data), img: img}
	t, _ := s.typeOrRaw()
	return t
}

func encodeType(t TypeSignature, tokens TokenFunc) ([]byte, error) {
	if t == nil {
		return nil, nil
	}
	w := binary.NewWriter()
	if err := t.encode(w, tokens); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodeSignature(s Signature, tokens TokenFunc) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return s.Encode(tokens)
}
