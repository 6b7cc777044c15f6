package metadata

import "github.com/wippyai/clrmeta/token"

// ColumnClass is the storage class of a table column.
type ColumnClass uint8

const (
	ColU16    ColumnClass = iota // fixed 2 bytes
	ColU32                       // fixed 4 bytes
	ColString                    // #Strings offset
	ColBlob                      // #Blob offset
	ColGuid                      // #GUID index
	ColTable                     // simple index into one table
	ColCoded                     // coded index
)

// Column describes one column of a table schema.
type Column struct {
	Name  string
	Class ColumnClass
	Table token.TableKind  // for ColTable
	Coded token.CodedIndex // for ColCoded
}

// Schema describes the row shape of one table kind.
type Schema struct {
	Columns    []Column
	Kind       token.TableKind
	SortColumn int // owner column the table is sorted by, -1 if none
}

func u16(name string) Column { return Column{Name: name, Class: ColU16} }
func u32(name string) Column { return Column{Name: name, Class: ColU32} }
func str(name string) Column { return Column{Name: name, Class: ColString} }
func blob(name string) Column { return Column{Name: name, Class: ColBlob} }
func guid(name string) Column { return Column{Name: name, Class: ColGuid} }
func index(name string, k token.TableKind) Column {
	return Column{Name: name, Class: ColTable, Table: k}
}
func coded(name string, c token.CodedIndex) Column {
	return Column{Name: name, Class: ColCoded, Coded: c}
}

var schemas = [token.NumTables]Schema{
	token.Module: {Columns: []Column{
		u16("Generation"), str("Name"), guid("Mvid"), guid("EncId"), guid("EncBaseId"),
	}},
	token.TypeRef: {Columns: []Column{
		coded("ResolutionScope", token.ResolutionScope), str("TypeName"), str("TypeNamespace"),
	}},
	token.TypeDef: {Columns: []Column{
		u32("Flags"), str("TypeName"), str("TypeNamespace"), coded("Extends", token.TypeDefOrRef),
		index("FieldList", token.Field), index("MethodList", token.Method),
	}},
	token.FieldPtr: {Columns: []Column{index("Field", token.Field)}},
	token.Field: {Columns: []Column{
		u16("Flags"), str("Name"), blob("Signature"),
	}},
	token.MethodPtr: {Columns: []Column{index("Method", token.Method)}},
	token.Method: {Columns: []Column{
		u32("RVA"), u16("ImplFlags"), u16("Flags"), str("Name"), blob("Signature"),
		index("ParamList", token.Param),
	}},
	token.ParamPtr: {Columns: []Column{index("Param", token.Param)}},
	token.Param: {Columns: []Column{
		u16("Flags"), u16("Sequence"), str("Name"),
	}},
	token.InterfaceImpl: {SortColumn: 0, Columns: []Column{
		index("Class", token.TypeDef), coded("Interface", token.TypeDefOrRef),
	}},
	token.MemberRef: {Columns: []Column{
		coded("Class", token.MemberRefParent), str("Name"), blob("Signature"),
	}},
	token.Constant: {SortColumn: 1, Columns: []Column{
		u16("Type"), coded("Parent", token.HasConstant), blob("Value"),
	}},
	token.CustomAttribute: {SortColumn: 0, Columns: []Column{
		coded("Parent", token.HasCustomAttribute), coded("Type", token.CustomAttributeType), blob("Value"),
	}},
	token.FieldMarshal: {SortColumn: 0, Columns: []Column{
		coded("Parent", token.HasFieldMarshal), blob("NativeType"),
	}},
	token.DeclSecurity: {SortColumn: 1, Columns: []Column{
		u16("Action"), coded("Parent", token.HasDeclSecurity), blob("PermissionSet"),
	}},
	token.ClassLayout: {SortColumn: 2, Columns: []Column{
		u16("PackingSize"), u32("ClassSize"), index("Parent", token.TypeDef),
	}},
	token.FieldLayout: {SortColumn: 1, Columns: []Column{
		u32("Offset"), index("Field", token.Field),
	}},
	token.StandAloneSig: {Columns: []Column{blob("Signature")}},
	token.EventMap: {Columns: []Column{
		index("Parent", token.TypeDef), index("EventList", token.Event),
	}},
	token.EventPtr: {Columns: []Column{index("Event", token.Event)}},
	token.Event: {Columns: []Column{
		u16("EventFlags"), str("Name"), coded("EventType", token.TypeDefOrRef),
	}},
	token.PropertyMap: {Columns: []Column{
		index("Parent", token.TypeDef), index("PropertyList", token.Property),
	}},
	token.PropertyPtr: {Columns: []Column{index("Property", token.Property)}},
	token.Property: {Columns: []Column{
		u16("Flags"), str("Name"), blob("Type"),
	}},
	token.MethodSemantics: {SortColumn: 2, Columns: []Column{
		u16("Semantics"), index("Method", token.Method), coded("Association", token.HasSemantics),
	}},
	token.MethodImpl: {SortColumn: 0, Columns: []Column{
		index("Class", token.TypeDef), coded("MethodBody", token.MethodDefOrRef),
		coded("MethodDeclaration", token.MethodDefOrRef),
	}},
	token.ModuleRef: {Columns: []Column{str("Name")}},
	token.TypeSpec:  {Columns: []Column{blob("Signature")}},
	token.ImplMap: {SortColumn: 1, Columns: []Column{
		u16("MappingFlags"), coded("MemberForwarded", token.MemberForwarded), str("ImportName"),
		index("ImportScope", token.ModuleRef),
	}},
	token.FieldRva: {SortColumn: 1, Columns: []Column{
		u32("RVA"), index("Field", token.Field),
	}},
	token.EncLog: {Columns: []Column{u32("Token"), u32("FuncCode")}},
	token.EncMap: {Columns: []Column{u32("Token")}},
	token.Assembly: {Columns: []Column{
		u32("HashAlgId"), u16("MajorVersion"), u16("MinorVersion"), u16("BuildNumber"),
		u16("RevisionNumber"), u32("Flags"), blob("PublicKey"), str("Name"), str("Culture"),
	}},
	token.AssemblyProcessor: {Columns: []Column{u32("Processor")}},
	token.AssemblyOS: {Columns: []Column{
		u32("OSPlatformId"), u32("OSMajorVersion"), u32("OSMinorVersion"),
	}},
	token.AssemblyRef: {Columns: []Column{
		u16("MajorVersion"), u16("MinorVersion"), u16("BuildNumber"), u16("RevisionNumber"),
		u32("Flags"), blob("PublicKeyOrToken"), str("Name"), str("Culture"), blob("HashValue"),
	}},
	token.AssemblyRefProcessor: {Columns: []Column{
		u32("Processor"), index("AssemblyRef", token.AssemblyRef),
	}},
	token.AssemblyRefOS: {Columns: []Column{
		u32("OSPlatformId"), u32("OSMajorVersion"), u32("OSMinorVersion"),
		index("AssemblyRef", token.AssemblyRef),
	}},
	token.File: {Columns: []Column{
		u32("Flags"), str("Name"), blob("HashValue"),
	}},
	token.ExportedType: {Columns: []Column{
		u32("Flags"), u32("TypeDefId"), str("TypeName"), str("TypeNamespace"),
		coded("Implementation", token.Implementation),
	}},
	token.ManifestResource: {Columns: []Column{
		u32("Offset"), u32("Flags"), str("Name"), coded("Implementation", token.Implementation),
	}},
	token.NestedClass: {SortColumn: 0, Columns: []Column{
		index("NestedClass", token.TypeDef), index("EnclosingClass", token.TypeDef),
	}},
	token.GenericParam: {SortColumn: 2, Columns: []Column{
		u16("Number"), u16("Flags"), coded("Owner", token.TypeOrMethodDef), str("Name"),
	}},
	token.MethodSpec: {Columns: []Column{
		coded("Method", token.MethodDefOrRef), blob("Instantiation"),
	}},
	token.GenericParamConstraint: {SortColumn: 0, Columns: []Column{
		index("Owner", token.GenericParam), coded("Constraint", token.TypeDefOrRef),
	}},
}

// sortedKinds lists tables that carry an owner sort column.
var sortedKinds = map[token.TableKind]bool{
	token.InterfaceImpl: true, token.Constant: true, token.CustomAttribute: true,
	token.FieldMarshal: true, token.DeclSecurity: true, token.ClassLayout: true,
	token.FieldLayout: true, token.MethodSemantics: true, token.MethodImpl: true,
	token.ImplMap: true, token.FieldRva: true, token.NestedClass: true,
	token.GenericParam: true, token.GenericParamConstraint: true,
}

func init() {
	for i := range schemas {
		schemas[i].Kind = token.TableKind(i)
		if !sortedKinds[token.TableKind(i)] {
			schemas[i].SortColumn = -1
		}
	}
}

// SchemaFor returns the schema of a table kind.
func SchemaFor(k token.TableKind) *Schema {
	if !k.IsTable() {
		return nil
	}
	return &schemas[k]
}

// ColumnIndex returns the position of the named column, or -1.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// References reports whether column c can point into table k.
func (c Column) References(k token.TableKind) bool {
	switch c.Class {
	case ColTable:
		return c.Table == k
	case ColCoded:
		return token.EncoderFor(c.Coded).Has(k)
	}
	return false
}
