package cts

import (
	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// AssemblyReference names an external assembly.
type AssemblyReference struct {
	member
	Name             string
	Culture          string
	PublicKeyOrToken []byte
	HashValue        []byte
	OperatingSystems Collection[*AssemblyRefOs]
	Processors       Collection[*AssemblyRefProcessor]
	CustomAttributes Collection[*CustomAttribute]
	Version          Version
	Flags            uint32
}

// NewAssemblyReference creates an unbound assembly reference.
func NewAssemblyReference(name string, version Version) *AssemblyReference {
	a := &AssemblyReference{member: unbound(token.AssemblyRef), Name: name, Version: version}
	a.init()
	return a
}

func newBoundAssemblyReference(img *Image, row metadata.Row) *AssemblyReference {
	a := &AssemblyReference{
		member:           member{image: img, token: row.Token},
		Version:          versionAt(row, 0),
		Flags:            row.Column(4),
		PublicKeyOrToken: img.blob(row.Column(5)),
		Name:             img.str(row.Column(6)),
		Culture:          img.str(row.Column(7)),
		HashValue:        img.blob(row.Column(8)),
	}
	a.init()
	return a
}

func (a *AssemblyReference) init() {
	a.CustomAttributes = customAttributes(a)
	a.OperatingSystems = newCollection(
		func() []*AssemblyRefOs { return referencing[*AssemblyRefOs](a.image, token.AssemblyRefOS, 3, a.token) },
		func(os *AssemblyRefOs) { os.Reference.Set(a) },
	)
	a.Processors = newCollection(
		func() []*AssemblyRefProcessor {
			return referencing[*AssemblyRefProcessor](a.image, token.AssemblyRefProcessor, 1, a.token)
		},
		func(p *AssemblyRefProcessor) { p.Reference.Set(a) },
	)
}

// referencing scans an unsorted table for rows whose index column col
// holds the rid of owner.
func referencing[T Member](img *Image, kind token.TableKind, col int, owner token.Token) []T {
	if img == nil || owner.IsNull() {
		return nil
	}
	var out []T
	for _, row := range img.tables.Table(kind).Rows() {
		if row.Column(col) != owner.Rid {
			continue
		}
		if m, ok := img.member(row.Token).(T); ok {
			out = append(out, m)
		}
	}
	return out
}

func (a *AssemblyReference) String() string {
	return a.Name + ", Version=" + a.Version.String()
}

// AddToBuffer writes the reference row, then its platform rows and
// attributes.
func (a *AssemblyReference) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(a, token.AssemblyRef, func() ([]uint32, error) {
		return append(a.Version.columns(),
			a.Flags,
			b.Blobs.Offset(a.PublicKeyOrToken),
			b.Strings.Offset(a.Name),
			b.Strings.Offset(a.Culture),
			b.Blobs.Offset(a.HashValue),
		), nil
	})
	if err != nil {
		return err
	}
	if err := addAll(b, a.OperatingSystems.All()); err != nil {
		return err
	}
	if err := addAll(b, a.Processors.All()); err != nil {
		return err
	}
	return addAll(b, a.CustomAttributes.All())
}

// AssemblyRefOs records an operating system an assembly reference targets.
type AssemblyRefOs struct {
	member
	Reference    *lazy.Value[*AssemblyReference]
	PlatformID   uint32
	MajorVersion uint32
	MinorVersion uint32
}

// NewAssemblyRefOs creates an unbound platform row for reference.
func NewAssemblyRefOs(reference *AssemblyReference, platformID, major, minor uint32) *AssemblyRefOs {
	return &AssemblyRefOs{
		member:       unbound(token.AssemblyRefOS),
		Reference:    lazy.Of(reference),
		PlatformID:   platformID,
		MajorVersion: major,
		MinorVersion: minor,
	}
}

func newBoundAssemblyRefOs(img *Image, row metadata.Row) *AssemblyRefOs {
	return &AssemblyRefOs{
		member:       member{image: img, token: row.Token},
		PlatformID:   row.Column(0),
		MajorVersion: row.Column(1),
		MinorVersion: row.Column(2),
		Reference: lazy.New(func() *AssemblyReference {
			return resolveAs[*AssemblyReference](img, token.New(token.AssemblyRef, row.Column(3)))
		}),
	}
}

// AddToBuffer writes the row. The owning reference is written as a plain
// row index.
func (o *AssemblyRefOs) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(o, token.AssemblyRefOS, func() ([]uint32, error) {
		rid, err := b.Index(token.AssemblyRef, ref(o.Reference.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{o.PlatformID, o.MajorVersion, o.MinorVersion, rid}, nil
	})
	return err
}

// AssemblyRefProcessor records a processor an assembly reference targets.
type AssemblyRefProcessor struct {
	member
	Reference *lazy.Value[*AssemblyReference]
	Processor uint32
}

// NewAssemblyRefProcessor creates an unbound processor row for reference.
func NewAssemblyRefProcessor(reference *AssemblyReference, processor uint32) *AssemblyRefProcessor {
	return &AssemblyRefProcessor{
		member:    unbound(token.AssemblyRefProcessor),
		Reference: lazy.Of(reference),
		Processor: processor,
	}
}

func newBoundAssemblyRefProcessor(img *Image, row metadata.Row) *AssemblyRefProcessor {
	return &AssemblyRefProcessor{
		member:    member{image: img, token: row.Token},
		Processor: row.Column(0),
		Reference: lazy.New(func() *AssemblyReference {
			return resolveAs[*AssemblyReference](img, token.New(token.AssemblyRef, row.Column(1)))
		}),
	}
}

// AddToBuffer writes the row.
func (p *AssemblyRefProcessor) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(p, token.AssemblyRefProcessor, func() ([]uint32, error) {
		rid, err := b.Index(token.AssemblyRef, ref(p.Reference.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{p.Processor, rid}, nil
	})
	return err
}

// TypeReference names a type defined in another scope.
type TypeReference struct {
	member
	Scope            *lazy.Value[Member] // Module, ModuleReference, AssemblyReference or TypeReference
	Name             string
	Namespace        string
	CustomAttributes Collection[*CustomAttribute]
}

// NewTypeReference creates an unbound type reference.
func NewTypeReference(scope Member, namespace, name string) *TypeReference {
	t := &TypeReference{
		member:    unbound(token.TypeRef),
		Scope:     lazy.Of(scope),
		Namespace: namespace,
		Name:      name,
	}
	t.CustomAttributes = customAttributes(t)
	return t
}

func newBoundTypeReference(img *Image, row metadata.Row) *TypeReference {
	t := &TypeReference{
		member:    member{image: img, token: row.Token},
		Scope:     lazy.New(func() Member { return img.coded(token.ResolutionScope, row.Column(0)) }),
		Name:      img.str(row.Column(1)),
		Namespace: img.str(row.Column(2)),
	}
	t.CustomAttributes = customAttributes(t)
	return t
}

// FullName returns Namespace.Name.
func (t *TypeReference) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

func (t *TypeReference) String() string {
	return t.FullName()
}

// AddToBuffer writes the reference row.
func (t *TypeReference) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(t, token.TypeRef, func() ([]uint32, error) {
		scope, err := b.Coded(token.ResolutionScope, optional(t.Scope.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{scope, b.Strings.Offset(t.Name), b.Strings.Offset(t.Namespace)}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, t.CustomAttributes.All())
}

// TypeSpecification is a constructed type (array, pointer, generic
// instance) referenced by token.
type TypeSpecification struct {
	member
	Signature        *lazy.Value[TypeSignature]
	CustomAttributes Collection[*CustomAttribute]
}

// NewTypeSpecification creates an unbound type specification.
func NewTypeSpecification(sig TypeSignature) *TypeSpecification {
	t := &TypeSpecification{member: unbound(token.TypeSpec), Signature: lazy.Of(sig)}
	t.CustomAttributes = customAttributes(t)
	return t
}

func newBoundTypeSpecification(img *Image, row metadata.Row) *TypeSpecification {
	t := &TypeSpecification{
		member:    member{image: img, token: row.Token},
		Signature: lazy.New(func() TypeSignature { return parseTypeSignature(img, img.blob(row.Column(0))) }),
	}
	t.CustomAttributes = customAttributes(t)
	return t
}

func (t *TypeSpecification) String() string {
	if sig := t.Signature.Get(); sig != nil {
		return sig.String()
	}
	return "typespec"
}

// AddToBuffer writes the specification row.
func (t *TypeSpecification) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(t, token.TypeSpec, func() ([]uint32, error) {
		blob, err := encodeType(t.Signature.Get(), tokensOf(b))
		if err != nil {
			return nil, err
		}
		return []uint32{b.Blobs.Offset(blob)}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, t.CustomAttributes.All())
}

// MemberReference references a field or method of another type.
type MemberReference struct {
	member
	Parent           *lazy.Value[Member] // MemberRefParent
	Signature        *lazy.Value[Signature]
	Name             string
	CustomAttributes Collection[*CustomAttribute]
}

// NewMemberReference creates an unbound member reference.
func NewMemberReference(parent Member, name string, sig Signature) *MemberReference {
	m := &MemberReference{
		member:    unbound(token.MemberRef),
		Parent:    lazy.Of(parent),
		Name:      name,
		Signature: lazy.Of(sig),
	}
	m.CustomAttributes = customAttributes(m)
	return m
}

func newBoundMemberReference(img *Image, row metadata.Row) *MemberReference {
	m := &MemberReference{
		member:    member{image: img, token: row.Token},
		Parent:    lazy.New(func() Member { return img.coded(token.MemberRefParent, row.Column(0)) }),
		Name:      img.str(row.Column(1)),
		Signature: lazy.New(func() Signature { return ParseSignature(img, img.blob(row.Column(2))) }),
	}
	m.CustomAttributes = customAttributes(m)
	return m
}

func (m *MemberReference) String() string {
	if p, ok := m.Parent.Get().(interface{ String() string }); ok {
		return p.String() + "::" + m.Name
	}
	return m.Name
}

// CallSignature implements cil.Callable. Field references have none.
func (m *MemberReference) CallSignature() cil.Signature {
	if sig, ok := m.Signature.Get().(*MethodSignature); ok && sig != nil {
		return sig
	}
	return nil
}

// AddToBuffer writes the reference row.
func (m *MemberReference) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(m, token.MemberRef, func() ([]uint32, error) {
		parent, err := b.Coded(token.MemberRefParent, optional(m.Parent.Get()))
		if err != nil {
			return nil, err
		}
		blob, err := encodeSignature(m.Signature.Get(), tokensOf(b))
		if err != nil {
			return nil, err
		}
		return []uint32{parent, b.Strings.Offset(m.Name), b.Blobs.Offset(blob)}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, m.CustomAttributes.All())
}

// StandAloneSignature is a signature referenced directly by token: local
// variables of a method body or the target of calli.
type StandAloneSignature struct {
	member
	Signature        *lazy.Value[Signature]
	CustomAttributes Collection[*CustomAttribute]
}

// NewStandAloneSignature creates an unbound stand-alone signature.
func NewStandAloneSignature(sig Signature) *StandAloneSignature {
	s := &StandAloneSignature{member: unbound(token.StandAloneSig), Signature: lazy.Of(sig)}
	s.CustomAttributes = customAttributes(s)
	return s
}

func newBoundStandAloneSignature(img *Image, row metadata.Row) *StandAloneSignature {
	s := &StandAloneSignature{
		member:    member{image: img, token: row.Token},
		Signature: lazy.New(func() Signature { return ParseSignature(img, img.blob(row.Column(0))) }),
	}
	s.CustomAttributes = customAttributes(s)
	return s
}

// CallSignature implements cil.Callable for calli targets.
func (s *StandAloneSignature) CallSignature() cil.Signature {
	if sig, ok := s.Signature.Get().(*MethodSignature); ok && sig != nil {
		return sig
	}
	return nil
}

// AddToBuffer writes the signature row.
func (s *StandAloneSignature) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(s, token.StandAloneSig, func() ([]uint32, error) {
		blob, err := encodeSignature(s.Signature.Get(), tokensOf(b))
		if err != nil {
			return nil, err
		}
		return []uint32{b.Blobs.Offset(blob)}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, s.CustomAttributes.All())
}

// tokensOf adapts a buffer to a signature TokenFunc.
func tokensOf(b *builder.Buffer) TokenFunc {
	return func(m Member) (token.Token, error) {
		return b.TokenOf(optional(m))
	}
}
