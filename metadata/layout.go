package metadata

import "github.com/wippyai/clrmeta/token"

// Heap-size flags of the table stream header.
const (
	HeapStringsLarge byte = 0x01
	HeapGuidLarge    byte = 0x02
	HeapBlobLarge    byte = 0x04
	HeapExtraData    byte = 0x40
)

// Layout fixes every column width of a table stream. It is computed once
// from the heap-size flags and row counts and never changes afterwards.
type Layout struct {
	widths    [token.NumTables][]int
	rowSizes  [token.NumTables]int
	rows      [token.NumTables]uint32
	heapSizes byte
}

// NewLayout computes the layout for the given heap flags and row counts.
func NewLayout(heapSizes byte, rows [token.NumTables]uint32) *Layout {
	l := &Layout{heapSizes: heapSizes, rows: rows}
	for k := range schemas {
		s := &schemas[k]
		w := make([]int, len(s.Columns))
		total := 0
		for i, c := range s.Columns {
			w[i] = l.columnWidth(c)
			total += w[i]
		}
		l.widths[k] = w
		l.rowSizes[k] = total
	}
	return l
}

// HeapSizes returns the heap-size flags.
func (l *Layout) HeapSizes() byte {
	return l.heapSizes
}

// RowCount returns the row count the layout was computed with.
func (l *Layout) RowCount(k token.TableKind) uint32 {
	return l.rows[k]
}

// StringIndexSize returns the width of #Strings columns.
func (l *Layout) StringIndexSize() int {
	return heapWidth(l.heapSizes, HeapStringsLarge)
}

// GuidIndexSize returns the width of #GUID columns.
func (l *Layout) GuidIndexSize() int {
	return heapWidth(l.heapSizes, HeapGuidLarge)
}

// BlobIndexSize returns the width of #Blob columns.
func (l *Layout) BlobIndexSize() int {
	return heapWidth(l.heapSizes, HeapBlobLarge)
}

// TableIndexSize returns the width of a simple index into table k.
func (l *Layout) TableIndexSize(k token.TableKind) int {
	if l.rows[k] < 1<<16 {
		return 2
	}
	return 4
}

// CodedIndexSize returns the width of a coded index column.
func (l *Layout) CodedIndexSize(c token.CodedIndex) int {
	enc := token.EncoderFor(c)
	var most uint32
	for _, k := range enc.Kinds() {
		if k.IsTable() && l.rows[k] > most {
			most = l.rows[k]
		}
	}
	if most < enc.SmallLimit() {
		return 2
	}
	return 4
}

// ColumnWidths returns the byte width of each column of table k.
func (l *Layout) ColumnWidths(k token.TableKind) []int {
	return l.widths[k]
}

// RowSize returns the byte width of one row of table k.
func (l *Layout) RowSize(k token.TableKind) int {
	return l.rowSizes[k]
}

func (l *Layout) columnWidth(c Column) int {
	switch c.Class {
	case ColU16:
		return 2
	case ColU32:
		return 4
	case ColString:
		return l.StringIndexSize()
	case ColBlob:
		return l.BlobIndexSize()
	case ColGuid:
		return l.GuidIndexSize()
	case ColTable:
		return l.TableIndexSize(c.Table)
	case ColCoded:
		return l.CodedIndexSize(c.Coded)
	}
	return 4
}

func heapWidth(flags, bit byte) int {
	if flags&bit != 0 {
		return 4
	}
	return 2
}
