package token

import (
	"math/bits"

	"github.com/wippyai/clrmeta/errors"
)

// CodedIndex identifies a coded-index category.
type CodedIndex uint8

// Coded-index categories, ECMA-335 II.24.2.6.
const (
	TypeDefOrRef CodedIndex = iota
	HasConstant
	HasCustomAttribute
	HasFieldMarshal
	HasDeclSecurity
	MemberRefParent
	HasSemantics
	MethodDefOrRef
	MemberForwarded
	Implementation
	CustomAttributeType
	ResolutionScope
	TypeOrMethodDef

	numCodedIndices
)

var codedNames = [numCodedIndices]string{
	"TypeDefOrRef", "HasConstant", "HasCustomAttribute", "HasFieldMarshal",
	"HasDeclSecurity", "MemberRefParent", "HasSemantics", "MethodDefOrRef",
	"MemberForwarded", "Implementation", "CustomAttributeType",
	"ResolutionScope", "TypeOrMethodDef",
}

func (c CodedIndex) String() string {
	if c < numCodedIndices {
		return codedNames[c]
	}
	return "CodedIndex(?)"
}

// Candidates in tag order. The order is format-mandated.
var codedCandidates = [numCodedIndices][]TableKind{
	TypeDefOrRef: {TypeDef, TypeRef, TypeSpec},
	HasConstant:  {Field, Param, Property},
	HasCustomAttribute: {
		Method, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
		Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
		TypeSpec, Assembly, AssemblyRef, File, ExportedType,
		ManifestResource, GenericParam, GenericParamConstraint, MethodSpec,
	},
	HasFieldMarshal:     {Field, Param},
	HasDeclSecurity:     {TypeDef, Method, Assembly},
	MemberRefParent:     {TypeDef, TypeRef, ModuleRef, Method, TypeSpec},
	HasSemantics:        {Event, Property},
	MethodDefOrRef:      {Method, MemberRef},
	MemberForwarded:     {Field, Method},
	Implementation:      {File, AssemblyRef, ExportedType},
	CustomAttributeType: {Unused, Unused, Method, MemberRef, Unused},
	ResolutionScope:     {Module, ModuleRef, AssemblyRef, TypeRef},
	TypeOrMethodDef:     {TypeDef, Method},
}

// Encoder encodes and decodes one coded-index category.
type Encoder struct {
	kinds    []TableKind
	category CodedIndex
	tagBits  uint
	tagMask  uint32
}

var encoders [numCodedIndices]*Encoder

func init() {
	for c := CodedIndex(0); c < numCodedIndices; c++ {
		encoders[c] = NewEncoder(c, codedCandidates[c])
	}
}

// NewEncoder builds an encoder for an arbitrary candidate list.
// Tag width is ceil(log2(len(kinds))); a single candidate uses no tag bits.
func NewEncoder(category CodedIndex, kinds []TableKind) *Encoder {
	var tagBits uint
	if len(kinds) > 1 {
		tagBits = uint(bits.Len(uint(len(kinds) - 1)))
	}
	return &Encoder{
		kinds:    kinds,
		category: category,
		tagBits:  tagBits,
		tagMask:  1<<tagBits - 1,
	}
}

// EncoderFor returns the shared encoder of a registered category.
func EncoderFor(c CodedIndex) *Encoder {
	return encoders[c]
}

// Category returns the encoder's category.
func (e *Encoder) Category() CodedIndex {
	return e.category
}

// Kinds returns the candidate table kinds in tag order.
func (e *Encoder) Kinds() []TableKind {
	return e.kinds
}

// TagBits returns the number of low bits used for the table tag.
func (e *Encoder) TagBits() uint {
	return e.tagBits
}

// Has reports whether k is a candidate of the category.
func (e *Encoder) Has(k TableKind) bool {
	for _, c := range e.kinds {
		if c == k && k != Unused {
			return true
		}
	}
	return false
}

// SmallLimit is the exclusive row count bound below which a 2-byte column suffices.
func (e *Encoder) SmallLimit() uint32 {
	return 1 << (16 - e.tagBits)
}

// Decode splits a raw column value into a token.
func (e *Encoder) Decode(raw uint32) (Token, error) {
	tag := raw & e.tagMask
	if int(tag) >= len(e.kinds) || e.kinds[tag] == Unused {
		return Token{}, errors.New(errors.PhaseResolve, errors.KindInvalidToken).
			Value(raw).
			Detail("%s tag %d has no table", e.category, tag).
			Build()
	}
	return Token{Kind: e.kinds[tag], Rid: raw >> e.tagBits}, nil
}

// Encode packs a token into a raw column value. The null token encodes to 0.
func (e *Encoder) Encode(t Token) (uint32, error) {
	if t.Rid == 0 {
		return 0, nil
	}
	for i, k := range e.kinds {
		if k == t.Kind && k != Unused {
			return t.Rid<<e.tagBits | uint32(i), nil
		}
	}
	return 0, errors.InvalidToken(errors.PhaseWrite, t, "table "+t.Kind.String()+" is not a candidate of "+e.category.String())
}
