package cts

import (
	"go.uber.org/zap"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// Columns of the Method table.
const (
	methodRVA       = 0
	methodParamList = 5
)

// MethodDefinition is a method of a type defined in the image.
type MethodDefinition struct {
	member
	Signature            *lazy.Value[*MethodSignature]
	DeclaringType        *lazy.Value[*TypeDefinition]
	Body                 *lazy.Value[*cil.MethodBody]
	Name                 string
	Parameters           Collection[*ParameterDefinition]
	CustomAttributes     Collection[*CustomAttribute]
	SecurityDeclarations Collection[*SecurityDeclaration]
	// RVA is the address the body was read from.
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
}

// NewMethodDefinition creates an unbound method. Adding it to a type's
// Methods sets its declaring type.
func NewMethodDefinition(name string, flags uint16, sig *MethodSignature) *MethodDefinition {
	m := &MethodDefinition{
		member:        unbound(token.Method),
		Name:          name,
		Flags:         flags,
		Signature:     lazy.Of(sig),
		DeclaringType: lazy.Of[*TypeDefinition](nil),
		Body:          lazy.Of[*cil.MethodBody](nil),
	}
	m.init(nil)
	return m
}

func newBoundMethodDefinition(img *Image, row metadata.Row) *MethodDefinition {
	m := &MethodDefinition{
		member:    member{image: img, token: row.Token},
		RVA:       row.Column(methodRVA),
		ImplFlags: uint16(row.Column(1)),
		Flags:     uint16(row.Column(2)),
		Name:      img.str(row.Column(3)),
	}
	m.Signature = lazy.New(func() *MethodSignature {
		sig, ok := ParseSignature(img, img.blob(row.Column(4))).(*MethodSignature)
		if !ok {
			Logger().Debug("method has no method signature", zap.Stringer("token", m.token))
			return nil
		}
		return sig
	})
	m.DeclaringType = lazy.New(func() *TypeDefinition {
		return listOwner[*TypeDefinition](img, token.TypeDef, typeMethodList, m.token)
	})
	m.Body = lazy.New(m.readBody)
	m.init(func() []*ParameterDefinition {
		return listMembers[*ParameterDefinition](img, m.token, methodParamList, token.Param)
	})
	return m
}

func (m *MethodDefinition) init(params func() []*ParameterDefinition) {
	m.Parameters = newCollection(params, func(p *ParameterDefinition) { p.Method.Set(m) })
	m.CustomAttributes = customAttributes(m)
	m.SecurityDeclarations = securityDeclarations(m)
}

func (m *MethodDefinition) readBody() *cil.MethodBody {
	if m.RVA == 0 {
		return nil
	}
	data, err := m.image.slice(m.RVA)
	if err != nil {
		Logger().Debug("method body not mapped", zap.Stringer("token", m.token), zap.Uint32("rva", m.RVA), zap.Error(err))
		return nil
	}
	size, err := cil.BodySize(data)
	if err != nil {
		Logger().Debug("bad method body header", zap.Stringer("token", m.token), zap.Error(err))
		return nil
	}
	body, err := cil.ParseBody(data[:size], m.image)
	if err != nil {
		Logger().Debug("bad method body", zap.Stringer("token", m.token), zap.Error(err))
		return nil
	}
	body.Signature = m.CallSignature()
	return body
}

// CallSignature implements cil.Callable.
func (m *MethodDefinition) CallSignature() cil.Signature {
	if sig := m.Signature.Get(); sig != nil {
		return sig
	}
	return nil
}

// SetBody replaces the body and binds it to the method's signature.
func (m *MethodDefinition) SetBody(body *cil.MethodBody) {
	if body != nil {
		body.Signature = m.CallSignature()
	}
	m.Body.Set(body)
}

func (m *MethodDefinition) String() string {
	if t := m.DeclaringType.Get(); t != nil {
		return t.FullName() + "::" + m.Name
	}
	return m.Name
}

// AddToBuffer writes the method row, places its body in the code segment,
// then writes parameters, attributes and security declarations. The
// method and its parameters must be reserved.
func (m *MethodDefinition) AddToBuffer(b *builder.Buffer) error {
	tok, err := b.AddRow(m, token.Method, func() ([]uint32, error) {
		var blob []byte
		if sig := m.Signature.Get(); sig != nil {
			var err error
			if blob, err = sig.Encode(tokensOf(b)); err != nil {
				return nil, err
			}
		}
		return []uint32{
			0,
			uint32(m.ImplFlags),
			uint32(m.Flags),
			b.Strings.Offset(m.Name),
			b.Blobs.Offset(blob),
			b.ListStart(m, token.Param),
		}, nil
	})
	if err != nil {
		return err
	}
	if body := m.Body.Get(); body != nil {
		code, err := body.Encode(b.TokenProvider())
		if err != nil {
			return err
		}
		b.PlaceCode(tok, methodRVA, code)
	}
	if err := addAll(b, m.Parameters.All()); err != nil {
		return err
	}
	if err := addAll(b, m.CustomAttributes.All()); err != nil {
		return err
	}
	return addAll(b, m.SecurityDeclarations.All())
}

// ParameterDefinition describes one parameter of a method. Sequence 0 is
// the return value.
type ParameterDefinition struct {
	member
	Method           *lazy.Value[*MethodDefinition]
	Constant         *lazy.Value[*Constant]
	FieldMarshal     *lazy.Value[*FieldMarshal]
	Name             string
	CustomAttributes Collection[*CustomAttribute]
	Flags            uint16
	Sequence         uint16
}

// NewParameterDefinition creates an unbound parameter.
func NewParameterDefinition(sequence uint16, name string, flags uint16) *ParameterDefinition {
	p := &ParameterDefinition{
		member:       unbound(token.Param),
		Sequence:     sequence,
		Name:         name,
		Flags:        flags,
		Method:       lazy.Of[*MethodDefinition](nil),
		Constant:     lazy.Of[*Constant](nil),
		FieldMarshal: lazy.Of[*FieldMarshal](nil),
	}
	p.CustomAttributes = customAttributes(p)
	return p
}

func newBoundParameterDefinition(img *Image, row metadata.Row) *ParameterDefinition {
	p := &ParameterDefinition{
		member:   member{image: img, token: row.Token},
		Flags:    uint16(row.Column(0)),
		Sequence: uint16(row.Column(1)),
		Name:     img.str(row.Column(2)),
	}
	p.Method = lazy.New(func() *MethodDefinition {
		return listOwner[*MethodDefinition](img, token.Method, methodParamList, p.token)
	})
	p.Constant = lazy.New(func() *Constant { return ownedOne[*Constant](img, token.Constant, p.token) })
	p.FieldMarshal = lazy.New(func() *FieldMarshal { return ownedOne[*FieldMarshal](img, token.FieldMarshal, p.token) })
	p.CustomAttributes = customAttributes(p)
	return p
}

// SetConstant attaches c as the parameter's default value.
func (p *ParameterDefinition) SetConstant(c *Constant) {
	if c != nil {
		c.Parent.Set(p)
	}
	p.Constant.Set(c)
}

// SetFieldMarshal attaches a marshalling descriptor.
func (p *ParameterDefinition) SetFieldMarshal(m *FieldMarshal) {
	if m != nil {
		m.Parent.Set(p)
	}
	p.FieldMarshal.Set(m)
}

func (p *ParameterDefinition) String() string {
	return p.Name
}

// AddToBuffer writes the parameter row, then its constant, marshalling
// descriptor and attributes.
func (p *ParameterDefinition) AddToBuffer(b *builder.Buffer) error {
	_, err := b.AddRow(p, token.Param, func() ([]uint32, error) {
		return []uint32{uint32(p.Flags), uint32(p.Sequence), b.Strings.Offset(p.Name)}, nil
	})
	if err != nil {
		return err
	}
	if c := p.Constant.Get(); c != nil {
		if err := c.AddToBuffer(b); err != nil {
			return err
		}
	}
	if m := p.FieldMarshal.Get(); m != nil {
		if err := m.AddToBuffer(b); err != nil {
			return err
		}
	}
	return addAll(b, p.CustomAttributes.All())
}
