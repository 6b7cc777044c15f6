package metadata

import (
	"sort"

	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/token"
)

// Row is an immutable snapshot of one table row.
type Row struct {
	Columns []uint32
	Token   token.Token
}

// Column returns column i, or 0 if the row is shorter.
func (r Row) Column(i int) uint32 {
	if i < 0 || i >= len(r.Columns) {
		return 0
	}
	return r.Columns[i]
}

// Table is an ordered sequence of rows of one kind.
type Table struct {
	schema *Schema
	rows   []Row
	sorted bool
}

// NewTable creates an empty table of kind k.
func NewTable(k token.TableKind) *Table {
	return &Table{schema: SchemaFor(k)}
}

// Kind returns the table kind.
func (t *Table) Kind() token.TableKind {
	return t.schema.Kind
}

// Schema returns the row shape.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the rows in order. The slice must not be modified.
func (t *Table) Rows() []Row {
	return t.rows
}

// Row returns the row at 0-based index.
func (t *Table) Row(i int) (Row, error) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, errors.OutOfBounds(errors.PhaseRead, t.schema.Kind.String(), i, len(t.rows))
	}
	return t.rows[i], nil
}

// RowByRid returns the row with 1-based row id rid.
func (t *Table) RowByRid(rid uint32) (Row, error) {
	return t.Row(int(rid) - 1)
}

// Append adds a row and returns its token.
func (t *Table) Append(columns ...uint32) (token.Token, error) {
	if len(columns) != len(t.schema.Columns) {
		return token.Token{}, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			Table(t.schema.Kind.String()).
			Detail("row has %d columns, want %d", len(columns), len(t.schema.Columns)).
			Build()
	}
	if len(t.rows) >= token.MaxRid {
		return token.Token{}, errors.Overflow(errors.PhaseWrite, len(t.rows)+1, t.schema.Kind.String()+" row id")
	}
	tok := token.New(t.schema.Kind, uint32(len(t.rows)+1))
	cols := make([]uint32, len(columns))
	copy(cols, columns)
	t.rows = append(t.rows, Row{Token: tok, Columns: cols})
	return tok, nil
}

// Set replaces the columns of the row at 0-based index i.
func (t *Table) Set(i int, columns []uint32) error {
	if i < 0 || i >= len(t.rows) {
		return errors.OutOfBounds(errors.PhaseWrite, t.schema.Kind.String(), i, len(t.rows))
	}
	cols := make([]uint32, len(columns))
	copy(cols, columns)
	t.rows[i].Columns = cols
	return nil
}

// IsSorted reports whether owner lookups may use binary search.
func (t *Table) IsSorted() bool {
	return t.sorted && t.schema.SortColumn >= 0
}

// SetSorted marks the table as sorted (or not) by its owner column.
func (t *Table) SetSorted(sorted bool) {
	t.sorted = sorted
}

// OwnerKey encodes owner as a value of the table's sort column.
func (t *Table) OwnerKey(owner token.Token) (uint32, bool) {
	if t.schema.SortColumn < 0 {
		return 0, false
	}
	col := t.schema.Columns[t.schema.SortColumn]
	switch col.Class {
	case ColTable:
		if owner.Kind != col.Table {
			return 0, false
		}
		return owner.Rid, true
	case ColCoded:
		raw, err := token.EncoderFor(col.Coded).Encode(owner)
		if err != nil {
			return 0, false
		}
		return raw, true
	}
	return 0, false
}

// FindByOwner returns the first row whose owner column equals owner.
func (t *Table) FindByOwner(owner token.Token) (Row, bool) {
	key, ok := t.OwnerKey(owner)
	if !ok || owner.IsNull() {
		return Row{}, false
	}
	i := t.findOwner(key)
	if i < 0 {
		return Row{}, false
	}
	return t.rows[i], true
}

// FindRunByOwner returns every row whose owner column equals owner, in
// table order. On a sorted table the rows are one contiguous run.
func (t *Table) FindRunByOwner(owner token.Token) []Row {
	key, ok := t.OwnerKey(owner)
	if !ok || owner.IsNull() {
		return nil
	}
	col := t.schema.SortColumn
	if !t.IsSorted() {
		var run []Row
		for _, r := range t.rows {
			if r.Columns[col] == key {
				run = append(run, r)
			}
		}
		return run
	}
	start := t.findOwner(key)
	if start < 0 {
		return nil
	}
	end := start + 1
	for end < len(t.rows) && t.rows[end].Columns[col] == key {
		end++
	}
	return t.rows[start:end:end]
}

func (t *Table) findOwner(key uint32) int {
	col := t.schema.SortColumn
	if t.IsSorted() {
		i := sort.Search(len(t.rows), func(i int) bool {
			return t.rows[i].Columns[col] >= key
		})
		if i < len(t.rows) && t.rows[i].Columns[col] == key {
			return i
		}
		return -1
	}
	for i, r := range t.rows {
		if r.Columns[col] == key {
			return i
		}
	}
	return -1
}

// ClosestRowByKey returns the last row whose column col is <= key. It
// locates the owner of a list member (a field's type, a parameter's
// method) in tables whose list column is non-decreasing.
func (t *Table) ClosestRowByKey(col int, key uint32) (Row, error) {
	i := sort.Search(len(t.rows), func(i int) bool {
		return t.rows[i].Columns[col] > key
	})
	if i == 0 {
		return Row{}, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Table(t.schema.Kind.String()).
			Value(key).
			Detail("no row with %s <= %d", t.schema.Columns[col].Name, key).
			Build()
	}
	return t.rows[i-1], nil
}

// ListRange returns the half-open rid range [start, end) that the list
// column col of row index i spans in a target table of targetLen rows.
func (t *Table) ListRange(i, col, targetLen int) (start, end uint32) {
	if i < 0 || i >= len(t.rows) {
		return 0, 0
	}
	limit := uint32(targetLen + 1)
	start = t.rows[i].Columns[col]
	if start == 0 || start > limit {
		start = limit
	}
	end = limit
	if i+1 < len(t.rows) {
		if next := t.rows[i+1].Columns[col]; next >= start && next < limit {
			end = next
		}
	}
	return start, end
}

func readTable(r *binary.Reader, k token.TableKind, count uint32, l *Layout) (*Table, error) {
	t := NewTable(k)
	widths := l.ColumnWidths(k)
	t.rows = make([]Row, count)
	for i := uint32(0); i < count; i++ {
		cols := make([]uint32, len(widths))
		for c, w := range widths {
			v, err := r.ReadIndex(w)
			if err != nil {
				return nil, r.WrapError(StreamTables, err)
			}
			cols[c] = v
		}
		t.rows[i] = Row{Token: token.New(k, i+1), Columns: cols}
	}
	return t, nil
}

func (t *Table) encode(w *binary.Writer, l *Layout) {
	widths := l.ColumnWidths(t.schema.Kind)
	for _, r := range t.rows {
		for c, width := range widths {
			w.WriteIndex(width, r.Columns[c])
		}
	}
}
