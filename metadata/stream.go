package metadata

import (
	"go.uber.org/zap"

	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/token"
)

// TableStream is the decoded #~ stream: header fields plus one table per
// kind.
type TableStream struct {
	tables       [token.NumTables]*Table
	layout       *Layout
	Sorted       uint64
	ExtraData    uint32
	MajorVersion byte
	MinorVersion byte
	HeapSizes    byte
}

// NewTableStream returns an empty version 2.0 table stream.
func NewTableStream() *TableStream {
	s := &TableStream{MajorVersion: 2, MinorVersion: 0}
	for k := range s.tables {
		s.tables[k] = NewTable(token.TableKind(k))
	}
	return s
}

// ParseTableStream decodes a #~ stream.
func ParseTableStream(data []byte) (*TableStream, error) {
	r := binary.NewReader(data)
	s := &TableStream{}

	if _, err := r.ReadU32(); err != nil {
		return nil, r.WrapError(StreamTables, err)
	}
	var err error
	if s.MajorVersion, err = r.ReadByte(); err != nil {
		return nil, r.WrapError(StreamTables, err)
	}
	if s.MinorVersion, err = r.ReadByte(); err != nil {
		return nil, r.WrapError(StreamTables, err)
	}
	if s.HeapSizes, err = r.ReadByte(); err != nil {
		return nil, r.WrapError(StreamTables, err)
	}
	if _, err = r.ReadByte(); err != nil {
		return nil, r.WrapError(StreamTables, err)
	}
	valid, err := r.ReadU64()
	if err != nil {
		return nil, r.WrapError(StreamTables, err)
	}
	if s.Sorted, err = r.ReadU64(); err != nil {
		return nil, r.WrapError(StreamTables, err)
	}

	var rows [token.NumTables]uint32
	for k := 0; k < 64; k++ {
		if valid&(1<<uint(k)) == 0 {
			continue
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError(StreamTables, err)
		}
		if k >= int(token.NumTables) {
			return nil, errors.New(errors.PhaseRead, errors.KindUnsupported).
				Table(StreamTables).
				Detail("unknown table 0x%02X present", k).
				Build()
		}
		if n > token.MaxRid {
			return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
				Table(token.TableKind(k).String()).
				Value(n).
				Detail("row count %d exceeds the largest row id", n).
				Build()
		}
		rows[k] = n
	}
	if s.HeapSizes&HeapExtraData != 0 {
		if s.ExtraData, err = r.ReadU32(); err != nil {
			return nil, r.WrapError(StreamTables, err)
		}
	}

	s.layout = NewLayout(s.HeapSizes, rows)
	var need uint64
	for k := range rows {
		need += uint64(rows[k]) * uint64(s.layout.RowSize(token.TableKind(k)))
	}
	if need > uint64(r.Remaining()) {
		return nil, errors.New(errors.PhaseRead, errors.KindOutOfBounds).
			Table(StreamTables).
			Value(need).
			Detail("table rows need %d bytes, %d remain", need, r.Remaining()).
			Build()
	}
	for k := range s.tables {
		kind := token.TableKind(k)
		t, err := readTable(r, kind, rows[k], s.layout)
		if err != nil {
			return nil, err
		}
		t.SetSorted(s.Sorted&(1<<uint(k)) != 0)
		s.tables[k] = t
	}

	Logger().Debug("parsed table stream",
		zap.Uint8("major", s.MajorVersion),
		zap.Uint8("minor", s.MinorVersion),
		zap.Uint8("heap_sizes", s.HeapSizes),
		zap.Uint64("valid", valid),
	)
	return s, nil
}

// Table returns the table of kind k. It is never nil for a valid kind.
func (s *TableStream) Table(k token.TableKind) *Table {
	if !k.IsTable() {
		return nil
	}
	if s.tables[k] == nil {
		s.tables[k] = NewTable(k)
	}
	return s.tables[k]
}

// Layout returns the layout the stream was decoded with, or the layout of
// the current row counts for a stream built in memory.
func (s *TableStream) Layout() *Layout {
	if s.layout == nil {
		return s.currentLayout()
	}
	return s.layout
}

func (s *TableStream) currentLayout() *Layout {
	var rows [token.NumTables]uint32
	for k, t := range s.tables {
		if t != nil {
			rows[k] = uint32(t.Len())
		}
	}
	return NewLayout(s.HeapSizes, rows)
}

// ResolveRow returns the row a token refers to.
func (s *TableStream) ResolveRow(tok token.Token) (Row, error) {
	t := s.Table(tok.Kind)
	if t == nil {
		return Row{}, errors.InvalidToken(errors.PhaseResolve, tok, "not a table token")
	}
	if tok.IsNull() {
		return Row{}, errors.NotFound(errors.PhaseResolve, "row", tok)
	}
	return t.RowByRid(tok.Rid)
}

// Valid returns the bitmask of tables holding at least one row.
func (s *TableStream) Valid() uint64 {
	var valid uint64
	for k, t := range s.tables {
		if t != nil && t.Len() > 0 {
			valid |= 1 << uint(k)
		}
	}
	return valid
}

// Encode serializes the stream. Column widths are recomputed from the
// current row counts and heap-size flags.
func (s *TableStream) Encode() []byte {
	l := s.currentLayout()
	s.layout = l
	valid := s.Valid()

	w := binary.NewWriter()
	w.WriteU32(0)
	w.Byte(s.MajorVersion)
	w.Byte(s.MinorVersion)
	w.Byte(s.HeapSizes)
	w.Byte(1)
	w.WriteU64(valid)
	w.WriteU64(s.Sorted)
	for k, t := range s.tables {
		if valid&(1<<uint(k)) != 0 {
			w.WriteU32(uint32(t.Len()))
		}
	}
	if s.HeapSizes&HeapExtraData != 0 {
		w.WriteU32(s.ExtraData)
	}
	for _, t := range s.tables {
		if t != nil {
			t.encode(w, l)
		}
	}
	w.Align(4)
	return w.Bytes()
}
