package builder

import (
	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// Member is an entity that can write itself into a Buffer. Implementations
// must be comparable (pointer types).
type Member interface {
	Token() token.Token
	AddToBuffer(b *Buffer) error
}

// listKinds are the tables whose rows are owned as contiguous runs through
// a list column. Their members must be reserved before anything refers to
// them.
var listKinds = map[token.TableKind]bool{
	token.TypeDef: true,
	token.Field:   true,
	token.Method:  true,
	token.Param:   true,
}

type listKey struct {
	owner Member
	kind  token.TableKind
}

type fixup struct {
	data []byte
	tok  token.Token
	col  int
}

// Buffer accumulates heaps and table rows for a new metadata image.
//
// Members are appended exactly once. A reference to a member that has not
// been appended yet appends it on demand, so the graph may be walked in any
// order. Members of list-owned tables (types, fields, methods, parameters)
// have to be reserved up front so their rows stay contiguous per owner.
type Buffer struct {
	Strings     *StringHeap
	Blobs       *BlobHeap
	Guids       *GuidHeap
	UserStrings *UserStringHeap
	Tables      *metadata.TableStream

	opts      Options
	tokens    map[Member]token.Token
	appended  map[Member]bool
	lists     map[listKey]uint32
	code      []fixup
	data      []fixup
	finalized bool
}

// NewBuffer creates an empty buffer.
func NewBuffer(opts Options) *Buffer {
	if opts.Version == "" {
		opts.Version = metadata.DefaultVersion
	}
	if opts.CodeBase == 0 {
		opts.CodeBase = DefaultCodeBase
	}
	return &Buffer{
		Strings:     newStringHeap(),
		Blobs:       newBlobHeap(),
		Guids:       newGuidHeap(),
		UserStrings: newUserStringHeap(),
		Tables:      metadata.NewTableStream(),
		opts:        opts,
		tokens:      make(map[Member]token.Token),
		appended:    make(map[Member]bool),
		lists:       make(map[listKey]uint32),
	}
}

// Options returns the buffer's layout configuration.
func (b *Buffer) Options() Options {
	return b.opts
}

// Reserve allocates a row of kind for m without filling it. The row is
// written when m is appended.
func (b *Buffer) Reserve(kind token.TableKind, m Member) (token.Token, error) {
	if m == nil {
		return token.Token{}, errors.InvalidInput(errors.PhaseWrite, "cannot reserve a nil member")
	}
	if tok, ok := b.tokens[m]; ok {
		return token.Token{}, errors.Duplicate(kind.String(), tok)
	}
	tok, err := b.placeholder(kind)
	if err != nil {
		return token.Token{}, err
	}
	b.tokens[m] = tok
	return tok, nil
}

// ReserveList reserves children as the contiguous run of kind owned by
// owner and records where the run starts.
func (b *Buffer) ReserveList(owner Member, kind token.TableKind, children []Member) error {
	t := b.Tables.Table(kind)
	if t == nil {
		return errors.InvalidInput(errors.PhaseWrite, "unknown table "+kind.String())
	}
	b.lists[listKey{owner, kind}] = uint32(t.Len() + 1)
	for _, c := range children {
		if _, err := b.Reserve(kind, c); err != nil {
			return err
		}
	}
	return nil
}

// ListStart returns the first rid of the run of kind owned by owner. An
// owner without a reserved run points past the end of the table.
func (b *Buffer) ListStart(owner Member, kind token.TableKind) uint32 {
	if start, ok := b.lists[listKey{owner, kind}]; ok {
		return start
	}
	return uint32(b.Tables.Table(kind).Len() + 1)
}

// AddRow appends m as a row of kind. The row is allocated before columns
// runs, so columns may refer back to m.
func (b *Buffer) AddRow(m Member, kind token.TableKind, columns func() ([]uint32, error)) (token.Token, error) {
	if b.appended[m] {
		return token.Token{}, errors.Duplicate(kind.String(), b.tokens[m])
	}
	tok, ok := b.tokens[m]
	if ok && tok.Kind != kind {
		return token.Token{}, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			Table(kind.String()).
			Token(tok).
			Detail("member reserved in %s", tok.Kind).
			Build()
	}
	if !ok {
		var err error
		if tok, err = b.placeholder(kind); err != nil {
			return token.Token{}, err
		}
		b.tokens[m] = tok
	}
	b.appended[m] = true

	cols, err := columns()
	if err != nil {
		return token.Token{}, err
	}
	if err := b.Tables.Table(kind).Set(tok.Index(), cols); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (b *Buffer) placeholder(kind token.TableKind) (token.Token, error) {
	t := b.Tables.Table(kind)
	if t == nil {
		return token.Token{}, errors.InvalidInput(errors.PhaseWrite, "unknown table "+kind.String())
	}
	return t.Append(make([]uint32, len(t.Schema().Columns))...)
}

// Appended reports whether m already has its row written.
func (b *Buffer) Appended(m Member) bool {
	return b.appended[m]
}

// TokenOf returns the new token of m, appending it on demand. A nil member
// is the null token.
func (b *Buffer) TokenOf(m Member) (token.Token, error) {
	if m == nil {
		return token.Token{}, nil
	}
	if tok, ok := b.tokens[m]; ok {
		return tok, nil
	}
	if kind := m.Token().Kind; listKinds[kind] {
		return token.Token{}, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			Table(kind.String()).
			Token(m.Token()).
			Detail("member was not reserved").
			Build()
	}
	if err := m.AddToBuffer(b); err != nil {
		return token.Token{}, err
	}
	tok, ok := b.tokens[m]
	if !ok {
		return token.Token{}, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			Token(m.Token()).
			Detail("member did not add a row").
			Build()
	}
	return tok, nil
}

// Index returns the new rid of m for a simple index column into kind.
func (b *Buffer) Index(kind token.TableKind, m Member) (uint32, error) {
	tok, err := b.TokenOf(m)
	if err != nil {
		return 0, err
	}
	if !tok.IsNull() && tok.Kind != kind {
		return 0, errors.InvalidToken(errors.PhaseWrite, tok, "expected a "+kind.String()+" row")
	}
	return tok.Rid, nil
}

// Coded returns the coded index of m in category c.
func (b *Buffer) Coded(c token.CodedIndex, m Member) (uint32, error) {
	tok, err := b.TokenOf(m)
	if err != nil {
		return 0, err
	}
	return token.EncoderFor(c).Encode(tok)
}

// PlaceCode queues a method body. Column col of the row tok receives its
// RVA when the buffer is finalized.
func (b *Buffer) PlaceCode(tok token.Token, col int, body []byte) {
	b.code = append(b.code, fixup{tok: tok, col: col, data: body})
}

// PlaceData queues a field initial value. Column col of the row tok
// receives its RVA when the buffer is finalized.
func (b *Buffer) PlaceData(tok token.Token, col int, data []byte) {
	b.data = append(b.data, fixup{tok: tok, col: col, data: data})
}

// TokenProvider returns a cil.TokenProvider that resolves instruction
// operands against this buffer.
func (b *Buffer) TokenProvider() cil.TokenProvider {
	return operandTokens{b}
}

type operandTokens struct {
	b *Buffer
}

func (p operandTokens) MemberToken(m cil.Member) (token.Token, error) {
	if bm, ok := m.(Member); ok {
		return p.b.TokenOf(bm)
	}
	return m.Token(), nil
}

func (p operandTokens) StringToken(s string) (token.Token, error) {
	off, err := p.b.UserStrings.Offset(s)
	if err != nil {
		return token.Token{}, err
	}
	if off > token.MaxRid {
		return token.Token{}, errors.Overflow(errors.PhaseWrite, off, "user string token")
	}
	return token.New(token.UserString, off), nil
}
