package cts_test

import (
	"bytes"
	"iter"
	"testing"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/cts"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/token"
)

type sample struct {
	img                        *cts.Image
	corlib                     *cts.AssemblyReference
	object                     *cts.TypeReference
	moduleType, arrayInit      *cts.TypeDefinition
	noLayout, program          *cts.TypeDefinition
	answer, table, odd, limit  *cts.FieldDefinition
	main, helper, equals       *cts.MethodDefinition
	equalsDecl                 *cts.MemberReference
	param                      *cts.ParameterDefinition
	security                   *cts.SecurityDeclaration
	serializableAttrCtor       *cts.MemberReference
	serializableAttributeValue []byte
}

func corlibType(e cts.ElementType) cts.TypeSignature {
	return &cts.CorLibType{Type: e}
}

// newSample builds a small unbound image touching every modeled table.
func newSample(t *testing.T) *sample {
	t.Helper()
	s := &sample{img: cts.NewImage("Sample.dll")}
	img := s.img
	img.Assembly.Set(cts.NewAssembly("Sample", cts.Version{Major: 1}))

	s.corlib = cts.NewAssemblyReference("mscorlib", cts.Version{Major: 4})
	s.corlib.OperatingSystems.Add(cts.NewAssemblyRefOs(nil, 2, 6, 1))
	s.corlib.Processors.Add(cts.NewAssemblyRefProcessor(nil, 0x14C))
	img.AssemblyReferences.Add(s.corlib)

	s.object = cts.NewTypeReference(s.corlib, "System", "Object")
	valueType := cts.NewTypeReference(s.corlib, "System", "ValueType")

	s.moduleType = cts.NewTypeDefinition("", "<Module>", 0, nil)
	s.arrayInit = cts.NewTypeDefinition("", "__StaticArrayInit", 0x113, valueType)
	s.arrayInit.SetClassLayout(cts.NewClassLayout(1, 12))
	s.noLayout = cts.NewTypeDefinition("Sample", "NoLayout", 0x109, valueType)
	s.program = cts.NewTypeDefinition("Sample", "Program", 0x100001, s.object)
	for _, td := range []*cts.TypeDefinition{s.moduleType, s.arrayInit, s.noLayout, s.program} {
		img.AddType(td)
	}

	s.answer = cts.NewFieldDefinition("Answer", 0x0111, cts.NewFieldSignature(corlibType(cts.ElementU4)))
	s.answer.SetFieldRva(cts.NewFieldRva([]byte{42, 0, 0, 0}))
	s.table = cts.NewFieldDefinition("Table", 0x0111, cts.NewFieldSignature(cts.NewTypeDefOrRefSig(s.arrayInit, true)))
	s.table.SetFieldRva(cts.NewFieldRva([]byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}))
	s.odd = cts.NewFieldDefinition("Odd", 0x0111, cts.NewFieldSignature(cts.NewTypeDefOrRefSig(s.noLayout, true)))
	s.odd.SetFieldRva(cts.NewFieldRva([]byte{9, 9}))
	s.limit = cts.NewFieldDefinition("Limit", 0x8053, cts.NewFieldSignature(corlibType(cts.ElementI4)))
	s.limit.SetConstant(cts.NewConstant(cts.ElementI4, []byte{7, 0, 0, 0}))
	for _, f := range []*cts.FieldDefinition{s.answer, s.table, s.odd, s.limit} {
		s.program.Fields.Add(f)
	}

	voidType := corlibType(cts.ElementVoid)
	s.helper = cts.NewMethodDefinition("Helper", 0x0091, cts.NewMethodSignature(false, voidType))
	s.main = cts.NewMethodDefinition("Main", 0x0096, cts.NewMethodSignature(false, voidType, corlibType(cts.ElementI4)))
	boolSig := cts.NewMethodSignature(true, corlibType(cts.ElementBoolean), corlibType(cts.ElementObject))
	s.equals = cts.NewMethodDefinition("Equals", 0x01C6, boolSig)
	for _, m := range []*cts.MethodDefinition{s.main, s.helper, s.equals} {
		s.program.Methods.Add(m)
	}

	s.param = cts.NewParameterDefinition(1, "x", 0x1010)
	s.param.SetConstant(cts.NewConstant(cts.ElementI4, []byte{5, 0, 0, 0}))
	s.main.Parameters.Add(s.param)

	must := func(i *cil.Instruction, err error) *cil.Instruction {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return i
	}
	instrs := []*cil.Instruction{
		must(cil.NewNone(cil.Ldarg0)),
		must(cil.NewI8(cil.LdcI4S, 5)),
		must(cil.NewNone(cil.Add)),
		must(cil.NewNone(cil.Pop)),
		must(cil.NewString(cil.Ldstr, "hi")),
		must(cil.NewNone(cil.Pop)),
		must(cil.NewMember(cil.Call, s.helper)),
		must(cil.NewNone(cil.Ret)),
	}
	if _, err := cil.ComputeOffsets(instrs); err != nil {
		t.Fatal(err)
	}
	s.main.SetBody(&cil.MethodBody{Instructions: instrs, MaxStack: 2})
	ret := must(cil.NewNone(cil.Ret))
	s.helper.SetBody(&cil.MethodBody{Instructions: []*cil.Instruction{ret}, MaxStack: 8})

	s.equalsDecl = cts.NewMemberReference(s.object, "Equals", boolSig)
	s.program.MethodImplementations.Add(cts.NewMethodImplementation(s.equals, s.equalsDecl))

	s.security = cts.NewSecurityDeclaration(cts.SecurityDemand, &cts.PermissionSet{
		Attributes: []cts.SecurityAttribute{{
			TypeName:   "System.Security.Permissions.SecurityPermissionAttribute, mscorlib",
			Properties: []byte{0x01, 0x54, 0x02, 0x0D, 'U', 'n', 'm', 'a', 'n', 'a', 'g', 'e', 'd', 'C', 'o', 'd', 'e', 0x01},
		}},
	})
	s.program.SecurityDeclarations.Add(s.security)

	s.serializableAttrCtor = cts.NewMemberReference(
		cts.NewTypeReference(s.corlib, "System", "SerializableAttribute"),
		".ctor", cts.NewMethodSignature(true, voidType))
	s.serializableAttributeValue = []byte{0x01, 0x00, 0x00, 0x00}
	s.program.CustomAttributes.Add(cts.NewCustomAttribute(s.serializableAttrCtor, s.serializableAttributeValue))
	return s
}

// roundTrip rebuilds the sample and loads the result back.
func roundTrip(t *testing.T, s *sample) (*cts.Image, *builder.Result) {
	t.Helper()
	res, err := s.img.Rebuild(builder.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := cts.LoadBytes(res.Metadata, cts.Options{AddressSpace: res.Address()})
	if err != nil {
		t.Fatal(err)
	}
	return loaded, res
}

func typeNamed(t *testing.T, img *cts.Image, full string) *cts.TypeDefinition {
	t.Helper()
	for _, td := range img.Types.All() {
		if td.FullName() == full {
			return td
		}
	}
	t.Fatalf("type %s not found", full)
	return nil
}

func fieldNamed(t *testing.T, td *cts.TypeDefinition, name string) *cts.FieldDefinition {
	t.Helper()
	for _, f := range td.Fields.All() {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not found", name)
	return nil
}

func methodNamed(t *testing.T, td *cts.TypeDefinition, name string) *cts.MethodDefinition {
	t.Helper()
	for _, m := range td.Methods.All() {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return nil
}

func TestRebuildRoundTrip(t *testing.T) {
	loaded, _ := roundTrip(t, newSample(t))

	if m := loaded.Module.Get(); m == nil || m.Name != "Sample.dll" {
		t.Fatalf("module = %v", m)
	}
	if a := loaded.Assembly.Get(); a == nil || a.Name != "Sample" || a.Version.Major != 1 {
		t.Fatalf("assembly = %v", a)
	}
	if n := loaded.Types.Len(); n != 4 {
		t.Fatalf("%d types, want 4", n)
	}

	program := typeNamed(t, loaded, "Sample.Program")
	base, ok := program.BaseType.Get().(*cts.TypeReference)
	if !ok || base.FullName() != "System.Object" {
		t.Errorf("base type = %v", program.BaseType.Get())
	}
	if n := program.Fields.Len(); n != 4 {
		t.Errorf("%d fields, want 4", n)
	}
	if n := program.Methods.Len(); n != 3 {
		t.Errorf("%d methods, want 3", n)
	}
	for _, f := range program.Fields.All() {
		if f.DeclaringType.Get() != program {
			t.Errorf("%s declared by %v", f.Name, f.DeclaringType.Get())
		}
	}
	if typeNamed(t, loaded, "<Module>").Fields.Len() != 0 {
		t.Error("<Module> owns fields")
	}

	limit := fieldNamed(t, program, "Limit")
	c := limit.Constant.Get()
	if c == nil {
		t.Fatal("Limit has no constant")
	}
	if v, err := c.Interpret(); err != nil || v != int32(7) {
		t.Errorf("Limit constant = %v, %v", v, err)
	}
	if c.Parent.Get() != limit {
		t.Errorf("constant parent = %v", c.Parent.Get())
	}

	attrs := program.CustomAttributes.All()
	if len(attrs) != 1 {
		t.Fatalf("%d custom attributes", len(attrs))
	}
	ctor, ok := attrs[0].Constructor.Get().(*cts.MemberReference)
	if !ok || ctor.Name != ".ctor" {
		t.Errorf("attribute constructor = %v", attrs[0].Constructor.Get())
	}
	if attrs[0].Parent.Get() != program {
		t.Errorf("attribute parent = %v", attrs[0].Parent.Get())
	}
}

func TestMethodBodyRoundTrip(t *testing.T) {
	loaded, res := roundTrip(t, newSample(t))
	if res.Code.RVA != builder.DefaultOptions().CodeBase || len(res.Code.Data) == 0 {
		t.Fatalf("code segment %#x+%d", res.Code.RVA, len(res.Code.Data))
	}

	program := typeNamed(t, loaded, "Sample.Program")
	main := methodNamed(t, program, "Main")
	helper := methodNamed(t, program, "Helper")
	body := main.Body.Get()
	if body == nil {
		t.Fatal("Main has no body")
	}
	if len(body.Instructions) != 8 {
		t.Fatalf("%d instructions, want 8", len(body.Instructions))
	}
	if s, ok := body.Instructions[4].Operand.(cil.StringImm); !ok || s.Value != "hi" {
		t.Errorf("ldstr operand = %#v", body.Instructions[4].Operand)
	}
	call, ok := body.Instructions[6].Operand.(cil.MemberImm)
	if !ok || call.Member != helper {
		t.Errorf("call operand = %#v", body.Instructions[6].Operand)
	}
	if got := body.Instructions[6].String(); got != "IL_000B: call Sample.Program::Helper" {
		t.Errorf("call renders as %q", got)
	}

	ret := body.Instructions[7]
	if n, err := ret.StackPopCount(body); err != nil || n != 0 {
		t.Errorf("ret in void method pops %d, %v", n, err)
	}
	pop, err := body.Instructions[6].StackPopCount(body)
	if err != nil || pop != 0 {
		t.Errorf("call Helper pops %d, %v", pop, err)
	}
}

func TestRebuildZeroOptions(t *testing.T) {
	s := newSample(t)
	res, err := s.img.Rebuild(builder.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Code.RVA == 0 {
		t.Fatal("code segment placed at RVA 0")
	}
	loaded, err := cts.LoadBytes(res.Metadata, cts.Options{AddressSpace: res.Address()})
	if err != nil {
		t.Fatal(err)
	}
	main := methodNamed(t, typeNamed(t, loaded, "Sample.Program"), "Main")
	if main.RVA == 0 || main.Body.Get() == nil {
		t.Errorf("Main RVA %#x lost its body", main.RVA)
	}
	answer := fieldNamed(t, typeNamed(t, loaded, "Sample.Program"), "Answer").FieldRva.Get()
	if answer == nil || answer.RVA == 0 {
		t.Fatalf("Answer field data = %+v", answer)
	}
	if v, err := answer.InterpretData(cts.ElementU4); err != nil || v != uint32(42) {
		t.Errorf("Answer = %v, %v", v, err)
	}
}

func TestParameterOwnerLookup(t *testing.T) {
	loaded, _ := roundTrip(t, newSample(t))
	program := typeNamed(t, loaded, "Sample.Program")
	main := methodNamed(t, program, "Main")

	params := main.Parameters.All()
	if len(params) != 1 {
		t.Fatalf("%d parameters", len(params))
	}
	p := params[0]
	if p.Name != "x" || p.Sequence != 1 {
		t.Errorf("parameter = %s #%d", p.Name, p.Sequence)
	}
	if p.Method.Get() != main {
		t.Errorf("parameter method = %v", p.Method.Get())
	}
	if c := p.Constant.Get(); c == nil {
		t.Error("parameter constant missing")
	} else if v, _ := c.Interpret(); v != int32(5) {
		t.Errorf("parameter default = %v", v)
	}
	if p.FieldMarshal.Get() != nil {
		t.Error("unexpected field marshal")
	}
	for _, m := range program.Methods.All() {
		if m != main && m.Parameters.Len() != 0 {
			t.Errorf("%s owns %d parameters", m.Name, m.Parameters.Len())
		}
	}
}

func TestFieldRvaData(t *testing.T) {
	loaded, _ := roundTrip(t, newSample(t))
	program := typeNamed(t, loaded, "Sample.Program")

	answer := fieldNamed(t, program, "Answer").FieldRva.Get()
	if answer == nil {
		t.Fatal("Answer has no FieldRva")
	}
	if answer.DataSize() != 4 {
		t.Errorf("Answer data size = %d", answer.DataSize())
	}
	if v, err := answer.InterpretData(cts.ElementU4); err != nil || v != uint32(42) {
		t.Errorf("Answer = %v, %v", v, err)
	}

	table := fieldNamed(t, program, "Table").FieldRva.Get()
	if table.DataSize() != 12 {
		t.Errorf("Table data size = %d, want class size 12", table.DataSize())
	}
	seq, err := table.InterpretArray(cts.ElementI4)
	if err != nil {
		t.Fatal(err)
	}
	for pass := 0; pass < 2; pass++ {
		var got []int32
		for v := range seq {
			got = append(got, v.(int32))
		}
		if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
			t.Errorf("pass %d: %v", pass, got)
		}
	}
	if arr, err := table.Interpret(&cts.SzArray{Elem: corlibType(cts.ElementI4)}); err != nil {
		t.Error(err)
	} else if _, ok := arr.(iter.Seq[any]); !ok {
		t.Errorf("array interpretation is %T, want a sequence", arr)
	}

	odd := fieldNamed(t, program, "Odd")
	rva := odd.FieldRva.Get()
	if rva.DataSize() != 0 {
		t.Errorf("value type without layout has size %d", rva.DataSize())
	}
	if _, err := rva.Interpret(odd.Signature.Get().Type); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("interpret value type error = %v, want unsupported", err)
	}
	if _, err := rva.InterpretArray(cts.ElementString); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("string array error = %v, want unsupported", err)
	}
	if _, err := cts.NewFieldRva([]byte{1, 0, 0, 0, 2}).InterpretArray(cts.ElementI4); !errors.IsKind(err, errors.KindInvalidData) {
		t.Errorf("partial trailing element error = %v, want invalid data", err)
	}
	if rva.Field.Get() != odd {
		t.Errorf("FieldRva field = %v", rva.Field.Get())
	}
}

func TestIdentityCache(t *testing.T) {
	loaded, _ := roundTrip(t, newSample(t))
	tok := token.New(token.TypeDef, 2)
	a, err := loaded.MemberByToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := loaded.MemberByToken(tok)
	if a != b {
		t.Error("same token materialized twice")
	}
	if loaded.Types.All()[1] != a {
		t.Error("Types and MemberByToken disagree")
	}

	tests := []struct {
		name string
		tok  token.Token
		kind errors.Kind
	}{
		{"null", token.New(token.TypeDef, 0), errors.KindNotFound},
		{"past end", token.New(token.TypeDef, 99), errors.KindOutOfBounds},
		{"not a table", token.New(token.UserString, 1), errors.KindInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := loaded.MemberByToken(tt.tok)
			if m != nil || !errors.IsKind(err, tt.kind) {
				t.Errorf("MemberByToken = %v, %v; want %s", m, err, tt.kind)
			}
		})
	}
}

func TestAssemblyRefOs(t *testing.T) {
	loaded, _ := roundTrip(t, newSample(t))
	refs := loaded.AssemblyReferences.All()
	if len(refs) != 1 {
		t.Fatalf("%d assembly references", len(refs))
	}
	corlib := refs[0]
	if corlib.Name != "mscorlib" || corlib.Version.Major != 4 {
		t.Errorf("reference = %v", corlib)
	}
	oses := corlib.OperatingSystems.All()
	if len(oses) != 1 {
		t.Fatalf("%d AssemblyRefOS rows", len(oses))
	}
	platform := oses[0]
	if platform.PlatformID != 2 || platform.MajorVersion != 6 || platform.MinorVersion != 1 {
		t.Errorf("platform = %+v", platform)
	}
	if platform.Reference.Get() != corlib {
		t.Errorf("platform reference = %v", platform.Reference.Get())
	}
	row, err := loaded.Tables().Table(token.AssemblyRefOS).Row(0)
	if err != nil {
		t.Fatal(err)
	}
	if row.Column(3) != corlib.Token().Rid {
		t.Errorf("AssemblyRef column = %d, want rid %d", row.Column(3), corlib.Token().Rid)
	}
	if procs := corlib.Processors.All(); len(procs) != 1 || procs[0].Processor != 0x14C {
		t.Errorf("processors = %v", procs)
	}
}

func TestMethodImplementation(t *testing.T) {
	loaded, _ := roundTrip(t, newSample(t))
	program := typeNamed(t, loaded, "Sample.Program")
	impls := program.MethodImplementations.All()
	if len(impls) != 1 {
		t.Fatalf("%d method impls", len(impls))
	}
	mi := impls[0]
	if mi.Class.Get() != program {
		t.Errorf("class = %v", mi.Class.Get())
	}
	if mi.Body.Get() != methodNamed(t, program, "Equals") {
		t.Errorf("body = %v", mi.Body.Get())
	}
	decl, ok := mi.Declaration.Get().(*cts.MemberReference)
	if !ok || decl.Name != "Equals" {
		t.Fatalf("declaration = %v", mi.Declaration.Get())
	}
	sig, ok := decl.CallSignature().(*cts.MethodSignature)
	if !ok || !sig.HasThis() || sig.ParameterCount() != 1 || sig.ReturnsVoid() {
		t.Errorf("declaration signature = %v", decl.Signature.Get())
	}
}

func TestSecurityDeclaration(t *testing.T) {
	s := newSample(t)
	loaded, _ := roundTrip(t, s)
	program := typeNamed(t, loaded, "Sample.Program")
	decls := program.SecurityDeclarations.All()
	if len(decls) != 1 {
		t.Fatalf("%d security declarations", len(decls))
	}
	d := decls[0]
	if d.Action != cts.SecurityDemand {
		t.Errorf("action = %d", d.Action)
	}
	if d.Parent.Get() != program {
		t.Errorf("parent = %v", d.Parent.Get())
	}
	set := d.PermissionSet.Get()
	if set == nil || len(set.Attributes) != 1 {
		t.Fatalf("permission set = %+v", set)
	}
	want := s.security.PermissionSet.Get().Attributes[0]
	got := set.Attributes[0]
	if got.TypeName != want.TypeName || !bytes.Equal(got.Properties, want.Properties) {
		t.Errorf("attribute = %+v", got)
	}
}

func TestAttributeOnSecurityDeclaration(t *testing.T) {
	s := newSample(t)
	// Written with the type's attributes, which reach the declaration
	// before the type writes its own declarations.
	attr := cts.NewCustomAttribute(s.serializableAttrCtor, s.serializableAttributeValue)
	s.program.CustomAttributes.Add(attr)
	attr.Parent.Set(s.security)

	loaded, _ := roundTrip(t, s)
	program := typeNamed(t, loaded, "Sample.Program")
	decls := program.SecurityDeclarations.All()
	if len(decls) != 1 {
		t.Fatalf("%d security declarations, want 1", len(decls))
	}
	attrs := decls[0].CustomAttributes.All()
	if len(attrs) != 1 || attrs[0].Parent.Get() != decls[0] {
		t.Errorf("declaration attributes = %v", attrs)
	}
	if n := program.CustomAttributes.Len(); n != 1 {
		t.Errorf("%d type attributes, want 1", n)
	}
}

func TestPermissionSetFormats(t *testing.T) {
	xml := []byte("<\x00P\x00/\x00>\x00")
	set := cts.ParsePermissionSet(xml)
	if set.Attributes != nil || !bytes.Equal(set.Raw, xml) {
		t.Errorf("xml set = %+v", set)
	}
	if !bytes.Equal(set.Encode(), xml) {
		t.Error("raw set not written back unchanged")
	}

	truncated := []byte{'.', 0x02, 0x03, 'A'}
	if set := cts.ParsePermissionSet(truncated); !bytes.Equal(set.Raw, truncated) {
		t.Errorf("truncated set = %+v", set)
	}

	bin := &cts.PermissionSet{Attributes: []cts.SecurityAttribute{{TypeName: "T"}}}
	enc := bin.Encode()
	if !bytes.Equal(enc, []byte{'.', 0x01, 0x01, 'T', 0x01, 0x00}) {
		t.Errorf("encoded = % X", enc)
	}
	back := cts.ParsePermissionSet(enc)
	if len(back.Attributes) != 1 || back.Attributes[0].TypeName != "T" {
		t.Errorf("reparsed = %+v", back)
	}
}

func TestCollectionRemove(t *testing.T) {
	s := newSample(t)
	attrs := s.program.CustomAttributes.All()
	if !s.program.CustomAttributes.Remove(attrs[0]) {
		t.Fatal("Remove reported no match")
	}
	if s.program.CustomAttributes.Remove(attrs[0]) {
		t.Error("second Remove matched")
	}
	loaded, _ := roundTrip(t, s)
	if n := typeNamed(t, loaded, "Sample.Program").CustomAttributes.Len(); n != 0 {
		t.Errorf("%d attributes after removal", n)
	}
}
