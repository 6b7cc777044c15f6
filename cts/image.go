package cts

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/clrmeta"
	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// Image is the entity view of one metadata root. Entities are created on
// first access and cached, so a token always yields the same entity.
type Image struct {
	root        *metadata.Root
	tables      *metadata.TableStream
	strings     *metadata.StringHeap
	blobs       *metadata.BlobHeap
	guids       *metadata.GuidHeap
	userStrings *metadata.UserStringHeap
	address     clrmeta.AddressSpace
	cache       map[token.Token]Member

	Module   *lazy.Value[*Module]
	Assembly *lazy.Value[*Assembly]

	Types                Collection[*TypeDefinition]
	TypeReferences       Collection[*TypeReference]
	MemberReferences     Collection[*MemberReference]
	ModuleReferences     Collection[*ModuleReference]
	AssemblyReferences   Collection[*AssemblyReference]
	TypeSpecifications   Collection[*TypeSpecification]
	StandAloneSignatures Collection[*StandAloneSignature]
}

// NewImage creates an empty image with a fresh module named name.
func NewImage(name string) *Image {
	img := &Image{
		tables:  metadata.NewTableStream(),
		address: clrmeta.EmptyAddressSpace,
		cache:   make(map[token.Token]Member),
	}
	img.Module = lazy.Of(NewModule(name, uuid.New()))
	img.Assembly = lazy.Of[*Assembly](nil)
	return img
}

// Load builds the entity view of root.
func Load(root *metadata.Root, opts Options) (*Image, error) {
	tables, err := root.Tables()
	if err != nil {
		return nil, err
	}
	img := &Image{
		root:        root,
		tables:      tables,
		strings:     root.Strings(),
		blobs:       root.Blobs(),
		guids:       root.Guids(),
		userStrings: root.UserStrings(),
		address:     opts.AddressSpace,
		cache:       make(map[token.Token]Member),
	}
	if img.address == nil {
		img.address = clrmeta.EmptyAddressSpace
	}

	img.Module = lazy.New(func() *Module {
		return resolveAs[*Module](img, token.New(token.Module, 1))
	})
	img.Assembly = lazy.New(func() *Assembly {
		if img.tables.Table(token.Assembly).Len() == 0 {
			return nil
		}
		return resolveAs[*Assembly](img, token.New(token.Assembly, 1))
	})
	img.Types = tableCollection[*TypeDefinition](img, token.TypeDef)
	img.TypeReferences = tableCollection[*TypeReference](img, token.TypeRef)
	img.MemberReferences = tableCollection[*MemberReference](img, token.MemberRef)
	img.ModuleReferences = tableCollection[*ModuleReference](img, token.ModuleRef)
	img.AssemblyReferences = tableCollection[*AssemblyReference](img, token.AssemblyRef)
	img.TypeSpecifications = tableCollection[*TypeSpecification](img, token.TypeSpec)
	img.StandAloneSignatures = tableCollection[*StandAloneSignature](img, token.StandAloneSig)

	Logger().Debug("loaded image",
		zap.String("version", root.Version),
		zap.Int("types", tables.Table(token.TypeDef).Len()),
		zap.Int("methods", tables.Table(token.Method).Len()),
	)
	return img, nil
}

// LoadBytes parses a metadata root and loads it.
func LoadBytes(data []byte, opts Options) (*Image, error) {
	root, err := metadata.ParseRoot(data)
	if err != nil {
		return nil, err
	}
	return Load(root, opts)
}

// Root returns the metadata root the image was loaded from, or nil.
func (img *Image) Root() *metadata.Root {
	return img.root
}

// Tables returns the underlying table stream.
func (img *Image) Tables() *metadata.TableStream {
	return img.tables
}

func tableCollection[T comparable](img *Image, kind token.TableKind) Collection[T] {
	return newCollection(func() []T {
		n := img.tables.Table(kind).Len()
		out := make([]T, 0, n)
		for rid := 1; rid <= n; rid++ {
			if m, ok := img.member(token.New(kind, uint32(rid))).(T); ok {
				out = append(out, m)
			}
		}
		return out
	}, nil)
}

// MemberByToken returns the entity of a bound token.
func (img *Image) MemberByToken(tok token.Token) (Member, error) {
	if tok.IsNull() {
		return nil, errors.NotFound(errors.PhaseResolve, "member", tok)
	}
	if m, ok := img.cache[tok]; ok {
		return m, nil
	}
	row, err := img.tables.ResolveRow(tok)
	if err != nil {
		return nil, err
	}
	m, err := img.construct(row)
	if err != nil {
		return nil, err
	}
	img.cache[tok] = m
	return m, nil
}

func (img *Image) construct(row metadata.Row) (Member, error) {
	switch row.Token.Kind {
	case token.Module:
		return newBoundModule(img, row), nil
	case token.TypeRef:
		return newBoundTypeReference(img, row), nil
	case token.TypeDef:
		return newBoundTypeDefinition(img, row), nil
	case token.Field:
		return newBoundFieldDefinition(img, row), nil
	case token.Method:
		return newBoundMethodDefinition(img, row), nil
	case token.Param:
		return newBoundParameterDefinition(img, row), nil
	case token.InterfaceImpl:
		return newBoundInterfaceImplementation(img, row), nil
	case token.MemberRef:
		return newBoundMemberReference(img, row), nil
	case token.Constant:
		return newBoundConstant(img, row), nil
	case token.CustomAttribute:
		return newBoundCustomAttribute(img, row), nil
	case token.FieldMarshal:
		return newBoundFieldMarshal(img, row), nil
	case token.DeclSecurity:
		return newBoundSecurityDeclaration(img, row), nil
	case token.ClassLayout:
		return newBoundClassLayout(img, row), nil
	case token.StandAloneSig:
		return newBoundStandAloneSignature(img, row), nil
	case token.MethodImpl:
		return newBoundMethodImplementation(img, row), nil
	case token.ModuleRef:
		return newBoundModuleReference(img, row), nil
	case token.TypeSpec:
		return newBoundTypeSpecification(img, row), nil
	case token.FieldRva:
		return newBoundFieldRva(img, row), nil
	case token.Assembly:
		return newBoundAssembly(img, row), nil
	case token.AssemblyRef:
		return newBoundAssemblyReference(img, row), nil
	case token.AssemblyRefProcessor:
		return newBoundAssemblyRefProcessor(img, row), nil
	case token.AssemblyRefOS:
		return newBoundAssemblyRefOs(img, row), nil
	}
	return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
		Table(row.Token.Kind.String()).
		Token(row.Token).
		Detail("no entity model for table").
		Build()
}

// member resolves tok, logging and returning nil on failure.
func (img *Image) member(tok token.Token) Member {
	if tok.IsNull() {
		return nil
	}
	m, err := img.MemberByToken(tok)
	if err != nil {
		Logger().Debug("unresolved reference", zap.Stringer("token", tok), zap.Error(err))
		return nil
	}
	return m
}

// resolveAs resolves tok to a member of type T, or the zero T.
func resolveAs[T Member](img *Image, tok token.Token) T {
	var zero T
	m := img.member(tok)
	if m == nil {
		return zero
	}
	t, ok := m.(T)
	if !ok {
		Logger().Debug("reference of unexpected kind", zap.Stringer("token", tok))
		return zero
	}
	return t
}

// coded resolves a raw coded-index column value.
func (img *Image) coded(c token.CodedIndex, raw uint32) Member {
	tok, err := token.EncoderFor(c).Decode(raw)
	if err != nil {
		Logger().Debug("bad coded index", zap.Stringer("category", c), zap.Uint32("raw", raw), zap.Error(err))
		return nil
	}
	return img.member(tok)
}

// owned returns the members of kind whose owner column refers to owner.
func owned[T Member](img *Image, kind token.TableKind, owner token.Token) []T {
	if img == nil || owner.IsNull() {
		return nil
	}
	var out []T
	for _, row := range img.tables.Table(kind).FindRunByOwner(owner) {
		if m, ok := img.member(row.Token).(T); ok {
			out = append(out, m)
		}
	}
	return out
}

// ownedOne returns the single member of kind owned by owner, or nil.
func ownedOne[T Member](img *Image, kind token.TableKind, owner token.Token) T {
	var zero T
	if img == nil || owner.IsNull() {
		return zero
	}
	row, ok := img.tables.Table(kind).FindByOwner(owner)
	if !ok {
		return zero
	}
	return resolveAs[T](img, row.Token)
}

func (img *Image) str(offset uint32) string {
	s, err := img.strings.Get(offset)
	if err != nil {
		Logger().Debug("bad string offset", zap.Uint32("offset", offset), zap.Error(err))
	}
	return s
}

func (img *Image) blob(offset uint32) []byte {
	b, err := img.blobs.Get(offset)
	if err != nil {
		Logger().Debug("bad blob offset", zap.Uint32("offset", offset), zap.Error(err))
	}
	return b
}

func (img *Image) guid(index uint32) uuid.UUID {
	g, err := img.guids.Get(index)
	if err != nil {
		Logger().Debug("bad guid index", zap.Uint32("index", index), zap.Error(err))
	}
	return g
}

// slice reads the bytes at rva from the image's address space.
func (img *Image) slice(rva uint32) ([]byte, error) {
	return img.address.Slice(rva)
}

// ResolveMember implements cil.Resolver.
func (img *Image) ResolveMember(tok token.Token) (cil.Member, error) {
	m, err := img.MemberByToken(tok)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ResolveString implements cil.Resolver.
func (img *Image) ResolveString(tok token.Token) (string, error) {
	if tok.Kind != token.UserString {
		return "", errors.InvalidToken(errors.PhaseResolve, tok, "not a user string token")
	}
	return img.userStrings.Get(tok.Rid)
}
