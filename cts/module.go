package cts

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// Module is the single row of the Module table.
type Module struct {
	member
	Name             string
	CustomAttributes Collection[*CustomAttribute]
	Mvid             uuid.UUID
	EncID            uuid.UUID
	EncBaseID        uuid.UUID
	Generation       uint16
}

// NewModule creates an unbound module.
func NewModule(name string, mvid uuid.UUID) *Module {
	m := &Module{member: unbound(token.Module), Name: name, Mvid: mvid}
	m.CustomAttributes = customAttributes(m)
	return m
}

func newBoundModule(img *Image, row metadata.Row) *Module {
	m := &Module{
		member:     member{image: img, token: row.Token},
		Generation: uint16(row.Column(0)),
		Name:       img.str(row.Column(1)),
		Mvid:       img.guid(row.Column(2)),
		EncID:      img.guid(row.Column(3)),
		EncBaseID:  img.guid(row.Column(4)),
	}
	m.CustomAttributes = customAttributes(m)
	return m
}

func (m *Module) String() string {
	return m.Name
}

// AddToBuffer writes the module row and its custom attributes.
func (m *Module) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(m, token.Module, func() ([]uint32, error) {
		return []uint32{
			uint32(m.Generation),
			b.Strings.Offset(m.Name),
			b.Guids.Index(m.Mvid),
			b.Guids.Index(m.EncID),
			b.Guids.Index(m.EncBaseID),
		}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, m.CustomAttributes.All())
}

// Version is a four-part assembly version.
type Version struct {
	Major, Minor, Build, Revision uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

func versionAt(row metadata.Row, col int) Version {
	return Version{
		Major:    uint16(row.Column(col)),
		Minor:    uint16(row.Column(col + 1)),
		Build:    uint16(row.Column(col + 2)),
		Revision: uint16(row.Column(col + 3)),
	}
}

func (v Version) columns() []uint32 {
	return []uint32{uint32(v.Major), uint32(v.Minor), uint32(v.Build), uint32(v.Revision)}
}

// Assembly is the manifest of the image.
type Assembly struct {
	member
	Name                 string
	Culture              string
	PublicKey            []byte
	CustomAttributes     Collection[*CustomAttribute]
	SecurityDeclarations Collection[*SecurityDeclaration]
	Version              Version
	HashAlgorithm        uint32
	Flags                uint32
}

// NewAssembly creates an unbound assembly manifest.
func NewAssembly(name string, version Version) *Assembly {
	a := &Assembly{member: unbound(token.Assembly), Name: name, Version: version, HashAlgorithm: 0x8004}
	a.CustomAttributes = customAttributes(a)
	a.SecurityDeclarations = securityDeclarations(a)
	return a
}

func newBoundAssembly(img *Image, row metadata.Row) *Assembly {
	a := &Assembly{
		member:        member{image: img, token: row.Token},
		HashAlgorithm: row.Column(0),
		Version:       versionAt(row, 1),
		Flags:         row.Column(5),
		PublicKey:     img.blob(row.Column(6)),
		Name:          img.str(row.Column(7)),
		Culture:       img.str(row.Column(8)),
	}
	a.CustomAttributes = customAttributes(a)
	a.SecurityDeclarations = securityDeclarations(a)
	return a
}

func (a *Assembly) String() string {
	return a.Name + ", Version=" + a.Version.String()
}

// AddToBuffer writes the manifest row, then its attributes and security
// declarations.
func (a *Assembly) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(a, token.Assembly, func() ([]uint32, error) {
		cols := []uint32{a.HashAlgorithm}
		cols = append(cols, a.Version.columns()...)
		return append(cols,
			a.Flags,
			b.Blobs.Offset(a.PublicKey),
			b.Strings.Offset(a.Name),
			b.Strings.Offset(a.Culture),
		), nil
	})
	if err != nil {
		return err
	}
	if err := addAll(b, a.CustomAttributes.All()); err != nil {
		return err
	}
	return addAll(b, a.SecurityDeclarations.All())
}

// ModuleReference names another module of the assembly.
type ModuleReference struct {
	member
	Name             string
	CustomAttributes Collection[*CustomAttribute]
}

// NewModuleReference creates an unbound module reference.
func NewModuleReference(name string) *ModuleReference {
	m := &ModuleReference{member: unbound(token.ModuleRef), Name: name}
	m.CustomAttributes = customAttributes(m)
	return m
}

func newBoundModuleReference(img *Image, row metadata.Row) *ModuleReference {
	m := &ModuleReference{member: member{image: img, token: row.Token}, Name: img.str(row.Column(0))}
	m.CustomAttributes = customAttributes(m)
	return m
}

func (m *ModuleReference) String() string {
	return m.Name
}

// AddToBuffer writes the module reference row.
func (m *ModuleReference) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(m, token.ModuleRef, func() ([]uint32, error) {
		return []uint32{b.Strings.Offset(m.Name)}, nil
	})
	if err != nil {
		return err
	}
	return addAll(b, m.CustomAttributes.All())
}
