package builder_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// entity is a minimal Member whose columns are computed on append.
type entity struct {
	kind token.TableKind
	cols func(b *builder.Buffer) ([]uint32, error)
}

func (e *entity) Token() token.Token { return token.New(e.kind, 0) }

func (e *entity) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(e, e.kind, func() ([]uint32, error) { return e.cols(b) })
	return err
}

func fixed(kind token.TableKind, cols ...uint32) *entity {
	return &entity{kind: kind, cols: func(*builder.Buffer) ([]uint32, error) { return cols, nil }}
}

func typeDef(name string) *entity {
	e := &entity{kind: token.TypeDef}
	e.cols = func(b *builder.Buffer) ([]uint32, error) {
		return []uint32{0, b.Strings.Offset(name), 0, 0,
			b.ListStart(e, token.Field), b.ListStart(e, token.Method)}, nil
	}
	return e
}

func parse(t *testing.T, res *builder.Result) *metadata.TableStream {
	t.Helper()
	root, err := metadata.ParseRoot(res.Metadata)
	if err != nil {
		t.Fatal(err)
	}
	st, err := root.Tables()
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestHeapInterning(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())

	if off := b.Strings.Offset(""); off != 0 {
		t.Errorf("empty string offset = %d", off)
	}
	a := b.Strings.Offset("Foo")
	if again := b.Strings.Offset("Foo"); again != a {
		t.Errorf("Foo interned at %d and %d", a, again)
	}
	if other := b.Strings.Offset("Bar"); other == a {
		t.Error("distinct strings share an offset")
	}

	blob := []byte{1, 2, 3}
	o := b.Blobs.Offset(blob)
	if again := b.Blobs.Offset([]byte{1, 2, 3}); again != o {
		t.Errorf("blob interned at %d and %d", o, again)
	}
	if b.Blobs.Offset(nil) != 0 {
		t.Error("empty blob is not offset 0")
	}

	g := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if idx := b.Guids.Index(g); idx != 1 {
		t.Errorf("first guid index = %d, want 1", idx)
	}
	if idx := b.Guids.Index(g); idx != 1 {
		t.Errorf("guid re-interned at %d", idx)
	}
	if b.Guids.Index(uuid.Nil) != 0 {
		t.Error("nil guid is not index 0")
	}

	us, err := b.UserStrings.Offset("hi")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := b.UserStrings.Offset("hi")
	if us != 1 || again != us {
		t.Errorf("user string offsets = %d, %d", us, again)
	}

	heap := metadata.NewUserStringHeap(b.UserStrings.Bytes())
	s, err := heap.Get(us)
	if err != nil || s != "hi" {
		t.Errorf("Get = %q, %v", s, err)
	}
}

func TestDuplicateAppend(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	ref := fixed(token.ModuleRef, 0)
	if b.Appended(ref) {
		t.Error("appended before AddToBuffer")
	}
	if err := ref.AddToBuffer(b); err != nil {
		t.Fatal(err)
	}
	if !b.Appended(ref) {
		t.Error("not appended after AddToBuffer")
	}
	err := ref.AddToBuffer(b)
	if !errors.IsKind(err, errors.KindDuplicate) {
		t.Fatalf("second append error = %v, want duplicate", err)
	}
	if n := b.Tables.Table(token.ModuleRef).Len(); n != 1 {
		t.Errorf("ModuleRef has %d rows", n)
	}
}

func TestTokenOfAppendsOnDemand(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	scope := fixed(token.ModuleRef, 0)
	ref := &entity{kind: token.TypeRef}
	ref.cols = func(b *builder.Buffer) ([]uint32, error) {
		rs, err := b.Coded(token.ResolutionScope, scope)
		if err != nil {
			return nil, err
		}
		return []uint32{rs, b.Strings.Offset("Object"), b.Strings.Offset("System")}, nil
	}

	tok, err := b.TokenOf(ref)
	if err != nil {
		t.Fatal(err)
	}
	if tok != token.New(token.TypeRef, 1) {
		t.Errorf("token = %v", tok)
	}
	again, err := b.TokenOf(ref)
	if err != nil || again != tok {
		t.Errorf("TokenOf again = %v, %v", again, err)
	}
	row, _ := b.Tables.Table(token.TypeRef).Row(0)
	scopeTok, _ := token.EncoderFor(token.ResolutionScope).Decode(row.Columns[0])
	if scopeTok != token.New(token.ModuleRef, 1) {
		t.Errorf("resolution scope = %v", scopeTok)
	}
	if nilTok, err := b.TokenOf(nil); err != nil || !nilTok.IsNull() {
		t.Errorf("TokenOf(nil) = %v, %v", nilTok, err)
	}
}

func TestCyclicReferences(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	// A TypeSpec and a MethodSpec that refer to each other.
	var left, right *entity
	left = &entity{kind: token.TypeSpec}
	right = &entity{kind: token.MethodSpec}
	left.cols = func(b *builder.Buffer) ([]uint32, error) {
		if _, err := b.TokenOf(right); err != nil {
			return nil, err
		}
		return []uint32{b.Blobs.Offset([]byte{0x1C})}, nil
	}
	right.cols = func(b *builder.Buffer) ([]uint32, error) {
		if _, err := b.TokenOf(left); err != nil {
			return nil, err
		}
		return []uint32{0, b.Blobs.Offset([]byte{0x0A, 0x01, 0x1C})}, nil
	}
	if _, err := b.TokenOf(left); err != nil {
		t.Fatal(err)
	}
	if b.Tables.Table(token.TypeSpec).Len() != 1 || b.Tables.Table(token.MethodSpec).Len() != 1 {
		t.Error("cycle appended the wrong number of rows")
	}
}

func TestUnreservedListMember(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	field := fixed(token.Field, 0, 0, 0)
	_, err := b.TokenOf(field)
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("error = %v, want invalid_input", err)
	}

	if _, err := b.Reserve(token.Field, field); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Reserve(token.Field, field); !errors.IsKind(err, errors.KindDuplicate) {
		t.Errorf("double reserve error = %v", err)
	}
	tok, err := b.TokenOf(field)
	if err != nil || tok != token.New(token.Field, 1) {
		t.Errorf("reserved TokenOf = %v, %v", tok, err)
	}
}

func TestReserveList(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	first, second := typeDef("A"), typeDef("B")
	if _, err := b.Reserve(token.TypeDef, first); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Reserve(token.TypeDef, second); err != nil {
		t.Fatal(err)
	}
	f1, f2, f3 := fixed(token.Field, 0, 0, 0), fixed(token.Field, 0, 0, 0), fixed(token.Field, 0, 0, 0)
	if err := b.ReserveList(first, token.Field, []builder.Member{f1, f2}); err != nil {
		t.Fatal(err)
	}
	if err := b.ReserveList(second, token.Field, []builder.Member{f3}); err != nil {
		t.Fatal(err)
	}
	if got := b.ListStart(first, token.Field); got != 1 {
		t.Errorf("first list start = %d", got)
	}
	if got := b.ListStart(second, token.Field); got != 3 {
		t.Errorf("second list start = %d", got)
	}
	if got := b.ListStart(second, token.Method); got != 1 {
		t.Errorf("empty method list start = %d", got)
	}
}

func TestFinalizeSortsAndRemaps(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	t1, t2 := typeDef("T1"), typeDef("T2")
	for _, td := range []*entity{t1, t2} {
		if _, err := b.Reserve(token.TypeDef, td); err != nil {
			t.Fatal(err)
		}
	}

	genericParam := func(owner builder.Member, name string) *entity {
		return &entity{kind: token.GenericParam, cols: func(b *builder.Buffer) ([]uint32, error) {
			o, err := b.Coded(token.TypeOrMethodDef, owner)
			return []uint32{0, 0, o, b.Strings.Offset(name)}, err
		}}
	}
	// Appended out of owner order: gpOfT2 takes rid 1 and moves to rid 2.
	gpOfT2 := genericParam(t2, "U")
	gpOfT1 := genericParam(t1, "T")
	attr := &entity{kind: token.CustomAttribute, cols: func(b *builder.Buffer) ([]uint32, error) {
		p, err := b.Coded(token.HasCustomAttribute, gpOfT2)
		return []uint32{p, 0, 0}, err
	}}
	for _, m := range []builder.Member{t1, t2, gpOfT2, gpOfT1, attr} {
		if err := m.AddToBuffer(b); err != nil {
			t.Fatal(err)
		}
	}

	res, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	st := parse(t, res)

	gps := st.Table(token.GenericParam)
	if !gps.IsSorted() {
		t.Error("GenericParam not marked sorted")
	}
	owner, _ := token.EncoderFor(token.TypeOrMethodDef).Decode(gps.Rows()[0].Columns[2])
	if owner != token.New(token.TypeDef, 1) {
		t.Errorf("first generic param owner = %v", owner)
	}
	if tok, _ := res.Token(gpOfT2); tok != token.New(token.GenericParam, 2) {
		t.Errorf("moved generic param token = %v", tok)
	}
	parent, _ := token.EncoderFor(token.HasCustomAttribute).Decode(st.Table(token.CustomAttribute).Rows()[0].Columns[0])
	if parent != token.New(token.GenericParam, 2) {
		t.Errorf("custom attribute parent = %v, want remapped generic param", parent)
	}

	if _, err := b.Finalize(); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("second Finalize error = %v", err)
	}
}

func TestFinalizePlacesCodeAndData(t *testing.T) {
	b := builder.NewBuffer(builder.DefaultOptions())
	m1, m2 := fixed(token.Method, 0, 0, 0, 0, 0, 1), fixed(token.Method, 0, 0, 0, 0, 0, 1)
	f := fixed(token.Field, 0, 0, 0)
	for _, m := range []builder.Member{m1, m2} {
		if _, err := b.Reserve(token.Method, m); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.Reserve(token.Field, f); err != nil {
		t.Fatal(err)
	}
	for _, m := range []builder.Member{m1, m2, f} {
		if err := m.AddToBuffer(b); err != nil {
			t.Fatal(err)
		}
	}
	rva := fixed(token.FieldRva, 0, 1)
	rvaTok, err := b.TokenOf(rva)
	if err != nil {
		t.Fatal(err)
	}
	body := []byte{0x0A, 0x14, 0x2A}
	b.PlaceCode(token.New(token.Method, 1), 0, body)
	b.PlaceCode(token.New(token.Method, 2), 0, body)
	b.PlaceData(rvaTok, 0, []byte{1, 0, 0, 0})

	res, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	st := parse(t, res)
	methods := st.Table(token.Method).Rows()
	if methods[0].Columns[0] != 0x2050 || methods[1].Columns[0] != 0x2054 {
		t.Errorf("method RVAs = %#x, %#x", methods[0].Columns[0], methods[1].Columns[0])
	}
	if res.Code.RVA != 0x2050 || len(res.Code.Data) != 7 {
		t.Errorf("code segment = %#x+%d", res.Code.RVA, len(res.Code.Data))
	}
	if got := st.Table(token.FieldRva).Rows()[0].Columns[0]; got != 0x2058 {
		t.Errorf("field RVA = %#x, want 0x2058", got)
	}
	data, err := res.Address().Slice(0x2058)
	if err != nil || !bytes.Equal(data, []byte{1, 0, 0, 0}) {
		t.Errorf("data = %v, %v", data, err)
	}
	code, err := res.Address().Slice(0x2054)
	if err != nil || !bytes.Equal(code, body) {
		t.Errorf("second body = %v, %v", code, err)
	}
}

func TestFinalizeZeroOptions(t *testing.T) {
	b := builder.NewBuffer(builder.Options{})
	if b.Options().CodeBase != builder.DefaultCodeBase || b.Options().Version != metadata.DefaultVersion {
		t.Errorf("options = %+v", b.Options())
	}
	m := fixed(token.Method, 0, 0, 0, 0, 0, 1)
	if _, err := b.Reserve(token.Method, m); err != nil {
		t.Fatal(err)
	}
	if err := m.AddToBuffer(b); err != nil {
		t.Fatal(err)
	}
	rvaTok, err := b.TokenOf(fixed(token.FieldRva, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	b.PlaceCode(token.New(token.Method, 1), 0, []byte{0x06, 0x2A})
	b.PlaceData(rvaTok, 0, []byte{7})

	res, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	st := parse(t, res)
	if got := st.Table(token.Method).Rows()[0].Columns[0]; got != builder.DefaultCodeBase {
		t.Errorf("method RVA = %#x, want %#x", got, builder.DefaultCodeBase)
	}
	if got := st.Table(token.FieldRva).Rows()[0].Columns[0]; got == 0 || got < res.Code.End() {
		t.Errorf("field RVA = %#x, code ends at %#x", got, res.Code.End())
	}
}

func TestForceLargeIndices(t *testing.T) {
	tests := []struct {
		name  string
		force bool
		want  byte
	}{
		{"small", false, 0},
		{"forced", true, 0x07},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := builder.DefaultOptions()
			opts.ForceLargeIndices = tt.force
			b := builder.NewBuffer(opts)
			mod := &entity{kind: token.Module, cols: func(b *builder.Buffer) ([]uint32, error) {
				return []uint32{0, b.Strings.Offset("m.dll"), b.Guids.Index(uuid.New()), 0, 0}, nil
			}}
			if err := mod.AddToBuffer(b); err != nil {
				t.Fatal(err)
			}
			res, err := b.Finalize()
			if err != nil {
				t.Fatal(err)
			}
			st := parse(t, res)
			if st.HeapSizes != tt.want {
				t.Errorf("heap sizes = %#x, want %#x", st.HeapSizes, tt.want)
			}
			if st.Layout().StringIndexSize() != map[bool]int{false: 2, true: 4}[tt.force] {
				t.Errorf("string index size = %d", st.Layout().StringIndexSize())
			}
			if res.Root.Version != metadata.DefaultVersion {
				t.Errorf("root version = %q", res.Root.Version)
			}
		})
	}
}
