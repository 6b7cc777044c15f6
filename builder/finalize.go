package builder

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/clrmeta"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

// Result is the output of a finalized Buffer.
type Result struct {
	Root     *metadata.Root
	Metadata []byte
	Code     clrmeta.Segment
	Data     clrmeta.Segment
	tokens   map[Member]token.Token
}

// Token returns the token m was written with.
func (r *Result) Token(m Member) (token.Token, bool) {
	tok, ok := r.tokens[m]
	return tok, ok
}

// Address returns an AddressSpace over the placed code and data.
func (r *Result) Address() clrmeta.AddressSpace {
	return clrmeta.Segments{r.Code, r.Data}
}

// sortOrder lists the sorted tables in the order they are finalized. A
// table is sorted after every table its owner column can refer to.
var sortOrder = []token.TableKind{
	token.InterfaceImpl,
	token.Constant,
	token.FieldMarshal,
	token.DeclSecurity,
	token.ClassLayout,
	token.FieldLayout,
	token.MethodSemantics,
	token.MethodImpl,
	token.ImplMap,
	token.FieldRva,
	token.NestedClass,
	token.GenericParam,
	token.GenericParamConstraint,
	token.CustomAttribute,
}

// Finalize places method bodies and field data, sorts the sorted tables
// and serializes the metadata root. The buffer cannot be used afterwards.
func (b *Buffer) Finalize() (*Result, error) {
	if b.finalized {
		return nil, errors.InvalidInput(errors.PhaseWrite, "buffer already finalized")
	}
	b.finalized = true

	code, err := b.place(b.code, b.opts.CodeBase, 4)
	if err != nil {
		return nil, err
	}
	dataBase := b.opts.DataBase
	if dataBase == 0 {
		dataBase = align(code.End(), 8)
	}
	data, err := b.place(b.data, dataBase, 8)
	if err != nil {
		return nil, err
	}

	for _, kind := range sortOrder {
		if err := b.sortTable(kind); err != nil {
			return nil, err
		}
	}

	st := b.Tables
	st.HeapSizes = b.heapSizes()
	st.Sorted = 0
	for _, kind := range sortOrder {
		st.Sorted |= 1 << uint(kind)
		st.Table(kind).SetSorted(true)
	}

	root := metadata.NewRoot()
	root.Version = b.opts.Version
	root.SetStream(metadata.StreamTables, st.Encode())
	root.SetStream(metadata.StreamStrings, b.Strings.Bytes())
	root.SetStream(metadata.StreamUserStrings, b.UserStrings.Bytes())
	root.SetStream(metadata.StreamGuid, b.Guids.Bytes())
	root.SetStream(metadata.StreamBlob, b.Blobs.Bytes())
	raw := root.Encode()

	Logger().Debug("finalized metadata",
		zap.Int("metadata", len(raw)),
		zap.Int("strings", b.Strings.Len()),
		zap.Int("blobs", b.Blobs.Len()),
		zap.Int("guids", b.Guids.Len()),
		zap.Int("user_strings", b.UserStrings.Len()),
		zap.Int("code", len(code.Data)),
		zap.Int("data", len(data.Data)),
		zap.Uint8("heap_sizes", st.HeapSizes),
	)
	for k := token.TableKind(0); k < token.NumTables; k++ {
		if n := st.Table(k).Len(); n > 0 {
			Logger().Debug("table", zap.Stringer("kind", k), zap.Int("rows", n))
		}
	}

	return &Result{
		Root:     root,
		Metadata: raw,
		Code:     code,
		Data:     data,
		tokens:   b.tokens,
	}, nil
}

// place lays the queued blobs out from base and patches each owner row.
func (b *Buffer) place(items []fixup, base uint32, alignment uint32) (clrmeta.Segment, error) {
	var seg []byte
	for _, f := range items {
		for uint32(len(seg))%alignment != 0 {
			seg = append(seg, 0)
		}
		rva := base + uint32(len(seg))
		seg = append(seg, f.data...)

		t := b.Tables.Table(f.tok.Kind)
		row, err := t.RowByRid(f.tok.Rid)
		if err != nil {
			return clrmeta.Segment{}, err
		}
		cols := append([]uint32(nil), row.Columns...)
		if f.col < 0 || f.col >= len(cols) {
			return clrmeta.Segment{}, errors.OutOfBounds(errors.PhaseWrite, t.Kind().String(), f.col, len(cols))
		}
		cols[f.col] = rva
		if err := t.Set(f.tok.Index(), cols); err != nil {
			return clrmeta.Segment{}, err
		}
	}
	return clrmeta.Segment{RVA: base, Data: seg}, nil
}

// sortTable stable-sorts kind by its owner column and rewrites every
// reference to the moved rows.
func (b *Buffer) sortTable(kind token.TableKind) error {
	t := b.Tables.Table(kind)
	col := t.Schema().SortColumn
	rows := t.Rows()
	if col < 0 || len(rows) < 2 {
		return nil
	}

	perm := make([]int, len(rows))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return rows[perm[i]].Columns[col] < rows[perm[j]].Columns[col]
	})

	moved := false
	cols := make([][]uint32, len(rows))
	remap := make(map[uint32]uint32, len(rows))
	for newIdx, oldIdx := range perm {
		cols[newIdx] = rows[oldIdx].Columns
		remap[uint32(oldIdx+1)] = uint32(newIdx + 1)
		if newIdx != oldIdx {
			moved = true
		}
	}
	if !moved {
		return nil
	}
	for i, c := range cols {
		if err := t.Set(i, c); err != nil {
			return err
		}
	}

	for m, tok := range b.tokens {
		if tok.Kind == kind {
			b.tokens[m] = token.New(kind, remap[tok.Rid])
		}
	}
	return b.remapReferences(kind, remap)
}

func (b *Buffer) remapReferences(kind token.TableKind, remap map[uint32]uint32) error {
	for k := token.TableKind(0); k < token.NumTables; k++ {
		t := b.Tables.Table(k)
		schema := t.Schema()
		for _, row := range t.Rows() {
			var cols []uint32
			for ci, c := range schema.Columns {
				if !c.References(kind) || row.Columns[ci] == 0 {
					continue
				}
				v, err := remapColumn(c, row.Columns[ci], kind, remap)
				if err != nil {
					return err
				}
				if v == row.Columns[ci] {
					continue
				}
				if cols == nil {
					cols = append([]uint32(nil), row.Columns...)
				}
				cols[ci] = v
			}
			if cols != nil {
				if err := t.Set(row.Token.Index(), cols); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func remapColumn(c metadata.Column, v uint32, kind token.TableKind, remap map[uint32]uint32) (uint32, error) {
	if c.Class == metadata.ColTable {
		if n, ok := remap[v]; ok {
			return n, nil
		}
		return v, nil
	}
	enc := token.EncoderFor(c.Coded)
	tok, err := enc.Decode(v)
	if err != nil {
		return 0, err
	}
	if tok.Kind != kind {
		return v, nil
	}
	n, ok := remap[tok.Rid]
	if !ok {
		return v, nil
	}
	return enc.Encode(token.New(kind, n))
}

func (b *Buffer) heapSizes() byte {
	if b.opts.ForceLargeIndices {
		return metadata.HeapStringsLarge | metadata.HeapGuidLarge | metadata.HeapBlobLarge
	}
	var flags byte
	if b.Strings.Len() >= 1<<16 {
		flags |= metadata.HeapStringsLarge
	}
	if b.Guids.Len() >= 1<<16 {
		flags |= metadata.HeapGuidLarge
	}
	if b.Blobs.Len() >= 1<<16 {
		flags |= metadata.HeapBlobLarge
	}
	return flags
}

func align(v, n uint32) uint32 {
	return (v + n - 1) &^ (n - 1)
}
