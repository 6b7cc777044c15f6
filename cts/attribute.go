package cts

import (
	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// CustomAttribute attaches a constructor call blob to its parent.
type CustomAttribute struct {
	member
	Parent      *lazy.Value[Member]
	Constructor *lazy.Value[Member] // MethodDefinition or MemberReference
	Value       []byte
}

// NewCustomAttribute creates an unbound attribute. Adding it to an owner's
// CustomAttributes sets its parent.
func NewCustomAttribute(ctor Member, value []byte) *CustomAttribute {
	return &CustomAttribute{
		member:      unbound(token.CustomAttribute),
		Parent:      lazy.Of[Member](nil),
		Constructor: lazy.Of(ctor),
		Value:       value,
	}
}

func newBoundCustomAttribute(img *Image, row metadata.Row) *CustomAttribute {
	return &CustomAttribute{
		member:      member{image: img, token: row.Token},
		Parent:      lazy.New(func() Member { return img.coded(token.HasCustomAttribute, row.Column(0)) }),
		Constructor: lazy.New(func() Member { return img.coded(token.CustomAttributeType, row.Column(1)) }),
		Value:       img.blob(row.Column(2)),
	}
}

// AddToBuffer writes the attribute row.
func (a *CustomAttribute) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(a, token.CustomAttribute, func() ([]uint32, error) {
		parent, err := b.Coded(token.HasCustomAttribute, optional(a.Parent.Get()))
		if err != nil {
			return nil, err
		}
		ctor, err := b.Coded(token.CustomAttributeType, optional(a.Constructor.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{parent, ctor, b.Blobs.Offset(a.Value)}, nil
	})
	return err
}

// customAttributes returns the attribute collection of owner, loaded from
// the CustomAttribute table when owner is bound.
func customAttributes(owner Member) Collection[*CustomAttribute] {
	return newCollection(
		func() []*CustomAttribute {
			return owned[*CustomAttribute](owner.Image(), token.CustomAttribute, owner.Token())
		},
		func(a *CustomAttribute) { a.Parent.Set(owner) },
	)
}

// SecurityAction is the action code of a security declaration.
type SecurityAction uint16

// Security actions, ECMA-335 II.22.11.
const (
	SecurityRequest           SecurityAction = 0x0001
	SecurityDemand            SecurityAction = 0x0002
	SecurityAssert            SecurityAction = 0x0003
	SecurityDeny              SecurityAction = 0x0004
	SecurityPermitOnly        SecurityAction = 0x0005
	SecurityLinkDemand        SecurityAction = 0x0006
	SecurityInheritanceDemand SecurityAction = 0x0007
	SecurityRequestMinimum    SecurityAction = 0x0008
	SecurityRequestOptional   SecurityAction = 0x0009
	SecurityRequestRefuse     SecurityAction = 0x000A
)

// SecurityDeclaration attaches a permission set to a type, method or
// assembly.
type SecurityDeclaration struct {
	member
	Parent           *lazy.Value[Member]
	PermissionSet    *lazy.Value[*PermissionSet]
	CustomAttributes Collection[*CustomAttribute]
	Action           SecurityAction
}

// NewSecurityDeclaration creates an unbound security declaration.
func NewSecurityDeclaration(action SecurityAction, set *PermissionSet) *SecurityDeclaration {
	d := &SecurityDeclaration{
		member:        unbound(token.DeclSecurity),
		Action:        action,
		Parent:        lazy.Of[Member](nil),
		PermissionSet: lazy.Of(set),
	}
	d.CustomAttributes = customAttributes(d)
	return d
}

func newBoundSecurityDeclaration(img *Image, row metadata.Row) *SecurityDeclaration {
	d := &SecurityDeclaration{
		member: member{image: img, token: row.Token},
		Action: SecurityAction(row.Column(0)),
		Parent: lazy.New(func() Member { return img.coded(token.HasDeclSecurity, row.Column(1)) }),
		PermissionSet: lazy.New(func() *PermissionSet {
			return ParsePermissionSet(img.blob(row.Column(2)))
		}),
	}
	d.CustomAttributes = customAttributes(d)
	return d
}

// AddToBuffer writes the declaration row and its attributes.
func (d *SecurityDeclaration) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(d, token.DeclSecurity, func() ([]uint32, error) {
		parent, err := b.Coded(token.HasDeclSecurity, optional(d.Parent.Get()))
		if err != nil {
			return nil, err
		}
		var blob []byte
		if set := d.PermissionSet.Get(); set != nil {
			blob = set.Encode()
		}
		return []uint32{uint32(d.Action), parent, b.Blobs.Offset(blob)}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, d.CustomAttributes.All())
}

func securityDeclarations(owner Member) Collection[*SecurityDeclaration] {
	return newCollection(
		func() []*SecurityDeclaration {
			return owned[*SecurityDeclaration](owner.Image(), token.DeclSecurity, owner.Token())
		},
		func(d *SecurityDeclaration) { d.Parent.Set(owner) },
	)
}

// SecurityAttribute is one attribute of a binary permission set.
type SecurityAttribute struct {
	TypeName string
	// Properties is the named-argument blob: a compressed count followed
	// by the arguments, kept undecoded.
	Properties []byte
}

// PermissionSet is the blob of a security declaration. Binary sets
// (starting with '.') are decoded into Attributes; any other format, such
// as the legacy XML form, is kept in Raw.
type PermissionSet struct {
	Attributes []SecurityAttribute
	Raw        []byte
}

const permissionSetBinary = '.'

// ParsePermissionSet decodes a permission set blob. A blob that is not a
// well-formed binary set is kept raw.
func ParsePermissionSet(data []byte) *PermissionSet {
	set, err := parseBinaryPermissionSet(data)
	if err != nil {
		Logger().Debug("permission set kept raw")
		return &PermissionSet{Raw: append([]byte(nil), data...)}
	}
	return set
}

func parseBinaryPermissionSet(data []byte) (*PermissionSet, error) {
	if len(data) == 0 || data[0] != permissionSetBinary {
		return nil, errors.Unsupported(errors.PhaseRead, "permission set format")
	}
	r := binary.NewReader(data)
	_, _ = r.ReadByte()
	n, err := r.ReadCompressedU32()
	if err != nil {
		return nil, r.WrapError("permission set", err)
	}
	set := &PermissionSet{Attributes: make([]SecurityAttribute, 0, n)}
	for i := uint32(0); i < n; i++ {
		nameLen, err := r.ReadCompressedU32()
		if err != nil {
			return nil, r.WrapError("permission set", err)
		}
		name, err := r.ReadBytes(int(nameLen))
		if err != nil {
			return nil, r.WrapError("permission set", err)
		}
		size, err := r.ReadCompressedU32()
		if err != nil {
			return nil, r.WrapError("permission set", err)
		}
		props, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("permission set", err)
		}
		set.Attributes = append(set.Attributes, SecurityAttribute{
			TypeName:   string(name),
			Properties: append([]byte(nil), props...),
		})
	}
	return set, nil
}

// Encode serializes the set. A set with Raw bytes and no attributes is
// written as Raw.
func (p *PermissionSet) Encode() []byte {
	if len(p.Attributes) == 0 && p.Raw != nil {
		return append([]byte(nil), p.Raw...)
	}
	w := binary.NewWriter()
	w.Byte(permissionSetBinary)
	w.WriteCompressedU32(uint32(len(p.Attributes)))
	for _, a := range p.Attributes {
		w.WriteCompressedU32(uint32(len(a.TypeName)))
		w.WriteString(a.TypeName)
		props := a.Properties
		if len(props) == 0 {
			props = []byte{0}
		}
		w.WriteCompressedU32(uint32(len(props)))
		w.WriteBytes(props)
	}
	return w.Bytes()
}
