package token

import "fmt"

// TableKind identifies a metadata table (the high byte of a token).
type TableKind uint8

// Metadata tables, ECMA-335 II.22.
const (
	Module                 TableKind = 0x00
	TypeRef                TableKind = 0x01
	TypeDef                TableKind = 0x02
	FieldPtr               TableKind = 0x03
	Field                  TableKind = 0x04
	MethodPtr              TableKind = 0x05
	Method                 TableKind = 0x06
	ParamPtr               TableKind = 0x07
	Param                  TableKind = 0x08
	InterfaceImpl          TableKind = 0x09
	MemberRef              TableKind = 0x0A
	Constant               TableKind = 0x0B
	CustomAttribute        TableKind = 0x0C
	FieldMarshal           TableKind = 0x0D
	DeclSecurity           TableKind = 0x0E
	ClassLayout            TableKind = 0x0F
	FieldLayout            TableKind = 0x10
	StandAloneSig          TableKind = 0x11
	EventMap               TableKind = 0x12
	EventPtr               TableKind = 0x13
	Event                  TableKind = 0x14
	PropertyMap            TableKind = 0x15
	PropertyPtr            TableKind = 0x16
	Property               TableKind = 0x17
	MethodSemantics        TableKind = 0x18
	MethodImpl             TableKind = 0x19
	ModuleRef              TableKind = 0x1A
	TypeSpec               TableKind = 0x1B
	ImplMap                TableKind = 0x1C
	FieldRva               TableKind = 0x1D
	EncLog                 TableKind = 0x1E
	EncMap                 TableKind = 0x1F
	Assembly               TableKind = 0x20
	AssemblyProcessor      TableKind = 0x21
	AssemblyOS             TableKind = 0x22
	AssemblyRef            TableKind = 0x23
	AssemblyRefProcessor   TableKind = 0x24
	AssemblyRefOS          TableKind = 0x25
	File                   TableKind = 0x26
	ExportedType           TableKind = 0x27
	ManifestResource       TableKind = 0x28
	NestedClass            TableKind = 0x29
	GenericParam           TableKind = 0x2A
	MethodSpec             TableKind = 0x2B
	GenericParamConstraint TableKind = 0x2C

	// UserString is the pseudo-kind of ldstr tokens; the rid is a #US offset.
	UserString TableKind = 0x70

	// Unused marks a reserved slot in a coded-index candidate list.
	Unused TableKind = 0xFF
)

// NumTables is the number of table kinds a table stream can carry.
const NumTables = 0x2D

var tableNames = [NumTables]string{
	"Module", "TypeRef", "TypeDef", "FieldPtr", "Field", "MethodPtr", "Method",
	"ParamPtr", "Param", "InterfaceImpl", "MemberRef", "Constant",
	"CustomAttribute", "FieldMarshal", "DeclSecurity", "ClassLayout",
	"FieldLayout", "StandAloneSig", "EventMap", "EventPtr", "Event",
	"PropertyMap", "PropertyPtr", "Property", "MethodSemantics", "MethodImpl",
	"ModuleRef", "TypeSpec", "ImplMap", "FieldRva", "EncLog", "EncMap",
	"Assembly", "AssemblyProcessor", "AssemblyOS", "AssemblyRef",
	"AssemblyRefProcessor", "AssemblyRefOS", "File", "ExportedType",
	"ManifestResource", "NestedClass", "GenericParam", "MethodSpec",
	"GenericParamConstraint",
}

// IsTable reports whether k names a real metadata table.
func (k TableKind) IsTable() bool {
	return k < NumTables
}

func (k TableKind) String() string {
	switch {
	case k < NumTables:
		return tableNames[k]
	case k == UserString:
		return "UserString"
	case k == Unused:
		return "Unused"
	}
	return fmt.Sprintf("Table(0x%02x)", uint8(k))
}

// KindByName returns the table kind with the given name.
func KindByName(name string) (TableKind, bool) {
	for i, n := range tableNames {
		if n == name {
			return TableKind(i), true
		}
	}
	return 0, false
}

// MaxRid is the largest row id a token can hold.
const MaxRid = 0x00FFFFFF

// Token addresses one row in one table. Rid is 1-based; zero is null.
type Token struct {
	Kind TableKind
	Rid  uint32
}

// New creates a token for the given table and row id.
func New(kind TableKind, rid uint32) Token {
	return Token{Kind: kind, Rid: rid}
}

// FromUint32 splits a raw 32-bit token.
func FromUint32(v uint32) Token {
	return Token{Kind: TableKind(v >> 24), Rid: v & MaxRid}
}

// Uint32 returns the raw 32-bit token.
func (t Token) Uint32() uint32 {
	return uint32(t.Kind)<<24 | t.Rid&MaxRid
}

// IsNull reports whether the token references no row.
func (t Token) IsNull() bool {
	return t.Rid == 0
}

// Index returns the 0-based row index, or -1 for the null token.
func (t Token) Index() int {
	return int(t.Rid) - 1
}

func (t Token) String() string {
	return fmt.Sprintf("0x%08X", t.Uint32())
}
