package cts

import (
	"iter"
	"math"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// FieldDefinition is a field of a type defined in the image.
type FieldDefinition struct {
	member
	Signature        *lazy.Value[*FieldSignature]
	DeclaringType    *lazy.Value[*TypeDefinition]
	Constant         *lazy.Value[*Constant]
	FieldMarshal     *lazy.Value[*FieldMarshal]
	FieldRva         *lazy.Value[*FieldRva]
	Name             string
	CustomAttributes Collection[*CustomAttribute]
	Flags            uint16
}

// NewFieldDefinition creates an unbound field. Adding it to a type's
// Fields sets its declaring type.
func NewFieldDefinition(name string, flags uint16, sig *FieldSignature) *FieldDefinition {
	f := &FieldDefinition{
		member:        unbound(token.Field),
		Name:          name,
		Flags:         flags,
		Signature:     lazy.Of(sig),
		DeclaringType: lazy.Of[*TypeDefinition](nil),
		Constant:      lazy.Of[*Constant](nil),
		FieldMarshal:  lazy.Of[*FieldMarshal](nil),
		FieldRva:      lazy.Of[*FieldRva](nil),
	}
	f.CustomAttributes = customAttributes(f)
	return f
}

func newBoundFieldDefinition(img *Image, row metadata.Row) *FieldDefinition {
	f := &FieldDefinition{
		member: member{image: img, token: row.Token},
		Flags:  uint16(row.Column(0)),
		Name:   img.str(row.Column(1)),
	}
	f.Signature = lazy.New(func() *FieldSignature {
		blob := img.blob(row.Column(2))
		if len(blob) == 0 || blob[0]&0x0F != CallField {
			Logger().Debug("field has no field signature", zap.Stringer("token", f.token))
			return nil
		}
		return parseFieldSignature(img, blob)
	})
	f.DeclaringType = lazy.New(func() *TypeDefinition {
		return listOwner[*TypeDefinition](img, token.TypeDef, typeFieldList, f.token)
	})
	f.Constant = lazy.New(func() *Constant { return ownedOne[*Constant](img, token.Constant, f.token) })
	f.FieldMarshal = lazy.New(func() *FieldMarshal { return ownedOne[*FieldMarshal](img, token.FieldMarshal, f.token) })
	f.FieldRva = lazy.New(func() *FieldRva { return findFieldRva(img, f.token) })
	f.CustomAttributes = customAttributes(f)
	return f
}

// listOwner returns the row of ownerKind whose list column col contains
// the member tok.
func listOwner[T Member](img *Image, ownerKind token.TableKind, col int, tok token.Token) T {
	row, err := img.tables.Table(ownerKind).ClosestRowByKey(col, tok.Rid)
	if err != nil {
		Logger().Debug("list owner not found", zap.Stringer("token", tok), zap.Error(err))
		var zero T
		return zero
	}
	return resolveAs[T](img, row.Token)
}

// findFieldRva locates the FieldRva row of field. The FieldRva table is
// sparse and ordered by field, so the search starts at the proportional
// position and walks towards the field.
func findFieldRva(img *Image, field token.Token) *FieldRva {
	t := img.tables.Table(token.FieldRva)
	rows := t.Rows()
	n := len(rows)
	if n == 0 {
		return nil
	}
	fields := img.tables.Table(token.Field).Len()
	if fields == 0 {
		fields = 1
	}
	i := int(uint64(field.Index()) * uint64(n) / uint64(fields))
	if i >= n {
		i = n - 1
	}
	const col = 1
	for i > 0 && rows[i].Column(col) > field.Rid {
		i--
	}
	for i < n-1 && rows[i].Column(col) < field.Rid {
		i++
	}
	if rows[i].Column(col) == field.Rid {
		return resolveAs[*FieldRva](img, rows[i].Token)
	}
	// Not ordered after all.
	if row, ok := t.FindByOwner(field); ok && !t.IsSorted() {
		return resolveAs[*FieldRva](img, row.Token)
	}
	return nil
}

// SetConstant attaches c as the field's default value.
func (f *FieldDefinition) SetConstant(c *Constant) {
	if c != nil {
		c.Parent.Set(f)
	}
	f.Constant.Set(c)
}

// SetFieldMarshal attaches a marshalling descriptor.
func (f *FieldDefinition) SetFieldMarshal(m *FieldMarshal) {
	if m != nil {
		m.Parent.Set(f)
	}
	f.FieldMarshal.Set(m)
}

// SetFieldRva attaches initial data.
func (f *FieldDefinition) SetFieldRva(r *FieldRva) {
	if r != nil {
		r.Field.Set(f)
	}
	f.FieldRva.Set(r)
}

func (f *FieldDefinition) String() string {
	if t := f.DeclaringType.Get(); t != nil {
		return t.FullName() + "::" + f.Name
	}
	return f.Name
}

// AddToBuffer writes the field row, then its constant, marshalling
// descriptor, initial data and attributes. The field must be reserved.
func (f *FieldDefinition) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(f, token.Field, func() ([]uint32, error) {
		var blob []byte
		if sig := f.Signature.Get(); sig != nil {
			var err error
			if blob, err = sig.Encode(tokensOf(b)); err != nil {
				return nil, err
			}
		}
		return []uint32{uint32(f.Flags), b.Strings.Offset(f.Name), b.Blobs.Offset(blob)}, nil
	})
	if err != nil {
		return err
	}
	if c := f.Constant.Get(); c != nil {
		if err := c.AddToBuffer(b); err != nil {
			return err
		}
	}
	if m := f.FieldMarshal.Get(); m != nil {
		if err := m.AddToBuffer(b); err != nil {
			return err
		}
	}
	if r := f.FieldRva.Get(); r != nil {
		if err := r.AddToBuffer(b); err != nil {
			return err
		}
	}
	return addAll(b, f.CustomAttributes.All())
}

// FieldRva holds the initial data of a field, stored at an RVA.
type FieldRva struct {
	member
	Field *lazy.Value[*FieldDefinition]
	Data  *lazy.Value[[]byte]
	// RVA is the address the data was read from.
	RVA uint32
}

// NewFieldRva creates unbound initial data for a field.
func NewFieldRva(data []byte) *FieldRva {
	return &FieldRva{
		member: unbound(token.FieldRva),
		Field:  lazy.Of[*FieldDefinition](nil),
		Data:   lazy.Of(data),
	}
}

func newBoundFieldRva(img *Image, row metadata.Row) *FieldRva {
	r := &FieldRva{
		member: member{image: img, token: row.Token},
		RVA:    row.Column(0),
		Field: lazy.New(func() *FieldDefinition {
			return resolveAs[*FieldDefinition](img, token.New(token.Field, row.Column(1)))
		}),
	}
	r.Data = lazy.New(func() []byte {
		data, err := img.slice(r.RVA)
		if err != nil {
			Logger().Debug("field data not mapped", zap.Uint32("rva", r.RVA), zap.Error(err))
			return nil
		}
		if size := r.DataSize(); size < len(data) {
			data = data[:size]
		}
		return data
	})
	return r
}

// DataSize returns the size of the field's data: the width of a primitive
// field type, or the class size of a value type with an explicit layout.
// Unknown sizes are 0.
func (r *FieldRva) DataSize() int {
	f := r.Field.Get()
	if f == nil {
		return 0
	}
	sig := f.Signature.Get()
	if sig == nil || sig.Type == nil {
		return 0
	}
	switch t := sig.Type.(type) {
	case *CorLibType:
		return elementSize(t.Type)
	case *TypeDefOrRefSig:
		def, ok := t.Type.Get().(*TypeDefinition)
		if !ok || def == nil {
			return 0
		}
		if layout := def.ClassLayout.Get(); layout != nil {
			return int(layout.ClassSize)
		}
	}
	return 0
}

func elementSize(e ElementType) int {
	switch e {
	case ElementBoolean, ElementI1, ElementU1:
		return 1
	case ElementChar, ElementI2, ElementU2:
		return 2
	case ElementI4, ElementU4, ElementR4:
		return 4
	case ElementI8, ElementU8, ElementR8:
		return 8
	}
	return 0
}

func unsupportedElementType(e any) error {
	return errors.New(errors.PhaseInterpret, errors.KindUnsupported).
		Value(e).
		Detail("invalid or unsupported element type %v", e).
		Build()
}

// InterpretData decodes the start of the data as one value of type e.
func (r *FieldRva) InterpretData(e ElementType) (any, error) {
	return readElement(binary.NewReader(r.Data.Get()), e)
}

// Interpret decodes the data as a value of type t. A single-dimension
// array yields the sequence of InterpretArray.
func (r *FieldRva) Interpret(t TypeSignature) (any, error) {
	switch t := t.(type) {
	case *SzArray:
		return r.InterpretArrayOf(t.Elem)
	case *CorLibType:
		return r.InterpretData(t.Type)
	}
	return nil, unsupportedElementType(t)
}

// InterpretArrayOf is InterpretArray for a primitive element signature.
func (r *FieldRva) InterpretArrayOf(elem TypeSignature) (iter.Seq[any], error) {
	corlib, ok := elem.(*CorLibType)
	if !ok {
		return nil, unsupportedElementType(elem)
	}
	return r.InterpretArray(corlib.Type)
}

// InterpretArray decodes the data as consecutive values of type e. The
// sequence is lazy and can be ranged over more than once. Data that is not
// a whole number of elements is rejected up front.
func (r *FieldRva) InterpretArray(e ElementType) (iter.Seq[any], error) {
	size := elementSize(e)
	if size == 0 {
		return nil, unsupportedElementType(e)
	}
	data := r.Data.Get()
	if len(data)%size != 0 {
		return nil, errors.New(errors.PhaseInterpret, errors.KindInvalidData).
			Value(len(data)).
			Detail("%d bytes of data do not divide into %d byte %v elements", len(data), size, e).
			Build()
	}
	return func(yield func(any) bool) {
		rd := binary.NewReader(data)
		for rd.Remaining() > 0 {
			v, err := readElement(rd, e)
			if err != nil || !yield(v) {
				return
			}
		}
	}, nil
}

func readElement(r *binary.Reader, e ElementType) (any, error) {
	var (
		v   any
		err error
	)
	switch e {
	case ElementBoolean:
		var b byte
		b, err = r.ReadByte()
		v = b != 0
	case ElementI1:
		var b byte
		b, err = r.ReadByte()
		v = int8(b)
	case ElementU1:
		v, err = r.ReadByte()
	case ElementChar:
		var u uint16
		u, err = r.ReadU16()
		v = rune(u)
	case ElementI2:
		var u uint16
		u, err = r.ReadU16()
		v = int16(u)
	case ElementU2:
		v, err = r.ReadU16()
	case ElementI4:
		var u uint32
		u, err = r.ReadU32()
		v = int32(u)
	case ElementU4:
		v, err = r.ReadU32()
	case ElementI8:
		var u uint64
		u, err = r.ReadU64()
		v = int64(u)
	case ElementU8:
		v, err = r.ReadU64()
	case ElementR4:
		var u uint32
		u, err = r.ReadU32()
		v = math.Float32frombits(u)
	case ElementR8:
		var u uint64
		u, err = r.ReadU64()
		v = math.Float64frombits(u)
	default:
		return nil, unsupportedElementType(e)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInterpret, errors.KindOutOfBounds, err, "field data too short for "+e.String())
	}
	return v, nil
}

// AddToBuffer writes the row and queues the data for placement.
func (r *FieldRva) AddToBuffer(b *builder.Buffer) error {
	tok, err := b.AddRow(r, token.FieldRva, func() ([]uint32, error) {
		field, err := b.Index(token.Field, ref(r.Field.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{0, field}, nil
	})
	if err != nil {
		return err
	}
	b.PlaceData(tok, 0, r.Data.Get())
	return nil
}

// FieldMarshal describes how a field or parameter is marshalled to
// native code.
type FieldMarshal struct {
	member
	Parent     *lazy.Value[Member] // HasFieldMarshal
	NativeType []byte
}

// NewFieldMarshal creates an unbound marshalling descriptor.
func NewFieldMarshal(nativeType []byte) *FieldMarshal {
	return &FieldMarshal{member: unbound(token.FieldMarshal), Parent: lazy.Of[Member](nil), NativeType: nativeType}
}

func newBoundFieldMarshal(img *Image, row metadata.Row) *FieldMarshal {
	return &FieldMarshal{
		member:     member{image: img, token: row.Token},
		Parent:     lazy.New(func() Member { return img.coded(token.HasFieldMarshal, row.Column(0)) }),
		NativeType: img.blob(row.Column(1)),
	}
}

// AddToBuffer writes the row.
func (m *FieldMarshal) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(m, token.FieldMarshal, func() ([]uint32, error) {
		parent, err := b.Coded(token.HasFieldMarshal, optional(m.Parent.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{parent, b.Blobs.Offset(m.NativeType)}, nil
	})
	return err
}

// Constant is the default value of a field, parameter or property.
type Constant struct {
	member
	Parent *lazy.Value[Member] // HasConstant
	Value  []byte
	Type   ElementType
}

// NewConstant creates an unbound constant.
func NewConstant(t ElementType, value []byte) *Constant {
	return &Constant{member: unbound(token.Constant), Parent: lazy.Of[Member](nil), Type: t, Value: value}
}

func newBoundConstant(img *Image, row metadata.Row) *Constant {
	return &Constant{
		member: member{image: img, token: row.Token},
		Type:   ElementType(row.Column(0)),
		Parent: lazy.New(func() Member { return img.coded(token.HasConstant, row.Column(1)) }),
		Value:  img.blob(row.Column(2)),
	}
}

var constantText = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Interpret decodes the value. Strings are UTF-16; a class constant is
// the null reference.
func (c *Constant) Interpret() (any, error) {
	switch c.Type {
	case ElementString:
		s, err := constantText.NewDecoder().Bytes(c.Value)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseInterpret, errors.KindInvalidData, err, "string constant")
		}
		return string(s), nil
	case ElementClass:
		return nil, nil
	}
	return readElement(binary.NewReader(c.Value), c.Type)
}

// AddToBuffer writes the row.
func (c *Constant) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(c, token.Constant, func() ([]uint32, error) {
		parent, err := b.Coded(token.HasConstant, optional(c.Parent.Get()))
		if err != nil {
			return nil, err
		}
		return []uint32{uint32(c.Type), parent, b.Blobs.Offset(c.Value)}, nil
	})
	return err
}
