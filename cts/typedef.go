package cts

import (
	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// Columns of the TypeDef table that hold list starts.
const (
	typeFieldList  = 4
	typeMethodList = 5
)

// TypeDefinition is a type defined in the image. It owns its fields and
// methods as contiguous runs of their tables.
type TypeDefinition struct {
	member
	BaseType              *lazy.Value[Member] // TypeDefOrRef
	EnclosingType         *lazy.Value[*TypeDefinition]
	ClassLayout           *lazy.Value[*ClassLayout]
	Name                  string
	Namespace             string
	Fields                Collection[*FieldDefinition]
	Methods               Collection[*MethodDefinition]
	Interfaces            Collection[*InterfaceImplementation]
	MethodImplementations Collection[*MethodImplementation]
	CustomAttributes      Collection[*CustomAttribute]
	SecurityDeclarations  Collection[*SecurityDeclaration]
	Flags                 uint32
}

// NewTypeDefinition creates an unbound type.
func NewTypeDefinition(namespace, name string, flags uint32, base Member) *TypeDefinition {
	t := &TypeDefinition{
		member:        unbound(token.TypeDef),
		Namespace:     namespace,
		Name:          name,
		Flags:         flags,
		BaseType:      lazy.Of(base),
		EnclosingType: lazy.Of[*TypeDefinition](nil),
		ClassLayout:   lazy.Of[*ClassLayout](nil),
	}
	t.init(nil, nil)
	return t
}

func newBoundTypeDefinition(img *Image, row metadata.Row) *TypeDefinition {
	t := &TypeDefinition{
		member:    member{image: img, token: row.Token},
		Flags:     row.Column(0),
		Name:      img.str(row.Column(1)),
		Namespace: img.str(row.Column(2)),
		BaseType:  lazy.New(func() Member { return img.coded(token.TypeDefOrRef, row.Column(3)) }),
	}
	t.EnclosingType = lazy.New(func() *TypeDefinition {
		nested, ok := img.tables.Table(token.NestedClass).FindByOwner(t.token)
		if !ok {
			return nil
		}
		return resolveAs[*TypeDefinition](img, token.New(token.TypeDef, nested.Column(1)))
	})
	t.ClassLayout = lazy.New(func() *ClassLayout {
		return ownedOne[*ClassLayout](img, token.ClassLayout, t.token)
	})
	t.init(
		func() []*FieldDefinition { return listMembers[*FieldDefinition](img, t.token, typeFieldList, token.Field) },
		func() []*MethodDefinition { return listMembers[*MethodDefinition](img, t.token, typeMethodList, token.Method) },
	)
	return t
}

func (t *TypeDefinition) init(fields func() []*FieldDefinition, methods func() []*MethodDefinition) {
	t.Fields = newCollection(fields, func(f *FieldDefinition) { f.DeclaringType.Set(t) })
	t.Methods = newCollection(methods, func(m *MethodDefinition) { m.DeclaringType.Set(t) })
	t.Interfaces = newCollection(
		func() []*InterfaceImplementation {
			return owned[*InterfaceImplementation](t.image, token.InterfaceImpl, t.token)
		},
		func(i *InterfaceImplementation) { i.Class.Set(t) },
	)
	t.MethodImplementations = newCollection(
		func() []*MethodImplementation {
			return owned[*MethodImplementation](t.image, token.MethodImpl, t.token)
		},
		func(m *MethodImplementation) { m.Class.Set(t) },
	)
	t.CustomAttributes = customAttributes(t)
	t.SecurityDeclarations = securityDeclarations(t)
}

// listMembers returns the run of kind that the list column col of the
// owner row points at.
func listMembers[T Member](img *Image, owner token.Token, col int, kind token.TableKind) []T {
	if img == nil || owner.IsNull() {
		return nil
	}
	start, end := img.tables.Table(owner.Kind).ListRange(owner.Index(), col, img.tables.Table(kind).Len())
	out := make([]T, 0, end-start)
	for rid := start; rid < end; rid++ {
		if m, ok := img.member(token.New(kind, rid)).(T); ok {
			out = append(out, m)
		}
	}
	return out
}

// SetClassLayout attaches layout to the type.
func (t *TypeDefinition) SetClassLayout(layout *ClassLayout) {
	if layout != nil {
		layout.Parent.Set(t)
	}
	t.ClassLayout.Set(layout)
}

// FullName returns the namespace-qualified name. Nested types are joined
// to their enclosing type with '/'.
func (t *TypeDefinition) FullName() string {
	if enc := t.EnclosingType.Get(); enc != nil && enc != t {
		return enc.FullName() + "/" + t.Name
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

func (t *TypeDefinition) String() string {
	return t.FullName()
}

// IsValueType reports whether the type derives from System.ValueType or
// System.Enum.
func (t *TypeDefinition) IsValueType() bool {
	var ns, name string
	switch base := t.BaseType.Get().(type) {
	case *TypeReference:
		ns, name = base.Namespace, base.Name
	case *TypeDefinition:
		ns, name = base.Namespace, base.Name
	default:
		return false
	}
	return ns == "System" && (name == "ValueType" || name == "Enum")
}

// AddToBuffer writes the type row followed by everything the type owns.
// The type and its fields, methods and parameters must be reserved.
func (t *TypeDefinition) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(t, token.TypeDef, func() ([]uint32, error) {
		base, err := b.Coded(token.TypeDefOrRef, optional(t.BaseType.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{
			t.Flags,
			b.Strings.Offset(t.Name),
			b.Strings.Offset(t.Namespace),
			base,
			b.ListStart(t, token.Field),
			b.ListStart(t, token.Method),
		}, nil
	})
	if err != nil {
		return err
	}
	if err := addAll(b, t.Fields.All()); err != nil {
		return err
	}
	if err := addAll(b, t.Methods.All()); err != nil {
		return err
	}
	if layout := t.ClassLayout.Get(); layout != nil {
		if err := layout.AddToBuffer(b); err != nil {
			return err
		}
	}
	if enc := t.EnclosingType.Get(); enc != nil {
		if err := (&nestedClass{nested: t, enclosing: enc}).AddToBuffer(b); err != nil {
			return err
		}
	}
	if err := addAll(b, t.Interfaces.All()); err != nil {
		return err
	}
	if err := addAll(b, t.MethodImplementations.All()); err != nil {
		return err
	}
	if err := addAll(b, t.CustomAttributes.All()); err != nil {
		return err
	}
	return addAll(b, t.SecurityDeclarations.All())
}

// nestedClass is the NestedClass row written for a type with an
// enclosing type.
type nestedClass struct {
	nested, enclosing *TypeDefinition
}

func (n *nestedClass) Token() token.Token { return token.New(token.NestedClass, 0) }

func (n *nestedClass) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(n, token.NestedClass, func() ([]uint32, error) {
		nested, err := b.Index(token.TypeDef, n.nested)
		if err != nil {
			return nil, err
		}
		enclosing, err := b.Index(token.TypeDef, n.enclosing)
		if err != nil {
			return nil, err
		}
		return []uint32{nested, enclosing}, nil
	})
	return err
}

// ClassLayout fixes the packing and size of a type.
type ClassLayout struct {
	member
	Parent      *lazy.Value[*TypeDefinition]
	ClassSize   uint32
	PackingSize uint16
}

// NewClassLayout creates an unbound layout.
func NewClassLayout(packingSize uint16, classSize uint32) *ClassLayout {
	return &ClassLayout{
		member:      unbound(token.ClassLayout),
		Parent:      lazy.Of[*TypeDefinition](nil),
		PackingSize: packingSize,
		ClassSize:   classSize,
	}
}

func newBoundClassLayout(img *Image, row metadata.Row) *ClassLayout {
	return &ClassLayout{
		member:      member{image: img, token: row.Token},
		PackingSize: uint16(row.Column(0)),
		ClassSize:   row.Column(1),
		Parent: lazy.New(func() *TypeDefinition {
			return resolveAs[*TypeDefinition](img, token.New(token.TypeDef, row.Column(2)))
		}),
	}
}

// AddToBuffer writes the layout row.
func (l *ClassLayout) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(l, token.ClassLayout, func() ([]uint32, error) {
		parent, err := b.Index(token.TypeDef, ref(l.Parent.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{uint32(l.PackingSize), l.ClassSize, parent}, nil
	})
	return err
}

// InterfaceImplementation records that a type implements an interface.
type InterfaceImplementation struct {
	member
	Class            *lazy.Value[*TypeDefinition]
	Interface        *lazy.Value[Member] // TypeDefOrRef
	CustomAttributes Collection[*CustomAttribute]
}

// NewInterfaceImplementation creates an unbound interface implementation.
func NewInterfaceImplementation(iface Member) *InterfaceImplementation {
	i := &InterfaceImplementation{
		member:    unbound(token.InterfaceImpl),
		Class:     lazy.Of[*TypeDefinition](nil),
		Interface: lazy.Of(iface),
	}
	i.CustomAttributes = customAttributes(i)
	return i
}

func newBoundInterfaceImplementation(img *Image, row metadata.Row) *InterfaceImplementation {
	i := &InterfaceImplementation{
		member: member{image: img, token: row.Token},
		Class: lazy.New(func() *TypeDefinition {
			return resolveAs[*TypeDefinition](img, token.New(token.TypeDef, row.Column(0)))
		}),
		Interface: lazy.New(func() Member { return img.coded(token.TypeDefOrRef, row.Column(1)) }),
	}
	i.CustomAttributes = customAttributes(i)
	return i
}

// AddToBuffer writes the row and its attributes.
func (i *InterfaceImplementation) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(i, token.InterfaceImpl, func() ([]uint32, error) {
		class, err := b.Index(token.TypeDef, ref(i.Class.Get()))
		if err != nil {
			return nil, err
		}
		iface, err := b.Coded(token.TypeDefOrRef, optional(i.Interface.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{class, iface}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, i.CustomAttributes.All())
}

// MethodImplementation maps an interface or virtual method declaration to
// the method body that implements it in Class.
type MethodImplementation struct {
	member
	Class       *lazy.Value[*TypeDefinition]
	Body        *lazy.Value[Member] // MethodDefOrRef
	Declaration *lazy.Value[Member] // MethodDefOrRef
}

// NewMethodImplementation creates an unbound method implementation.
func NewMethodImplementation(body, declaration Member) *MethodImplementation {
	return &MethodImplementation{
		member:      unbound(token.MethodImpl),
		Class:       lazy.Of[*TypeDefinition](nil),
		Body:        lazy.Of(body),
		Declaration: lazy.Of(declaration),
	}
}

func newBoundMethodImplementation(img *Image, row metadata.Row) *MethodImplementation {
	return &MethodImplementation{
		member: member{image: img, token: row.Token},
		Class: lazy.New(func() *TypeDefinition {
			return resolveAs[*TypeDefinition](img, token.New(token.TypeDef, row.Column(0)))
		}),
		Body:        lazy.New(func() Member { return img.coded(token.MethodDefOrRef, row.Column(1)) }),
		Declaration: lazy.New(func() Member { return img.coded(token.MethodDefOrRef, row.Column(2)) }),
	}
}

// AddToBuffer writes the row.
func (m *MethodImplementation) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(m, token.MethodImpl, func() ([]uint32, error) {
		class, err := b.Index(token.TypeDef, ref(m.Class.Get()))
		if err != nil {
			return nil, err
		}
		body, err := b.Coded(token.MethodDefOrRef, optional(m.Body.Get()))
		if err != nil {
			return nil, err
		}
		decl, err := b.Coded(token.MethodDefOrRef, optional(m.Declaration.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{class, body, decl}, nil
	})
	return err
}
