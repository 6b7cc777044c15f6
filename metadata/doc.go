// Package metadata provides CLI metadata stream parsing and encoding.
//
// This package implements the storage layer of ECMA-335 partition II:
// the metadata root and its stream headers, the four heaps and the
// table stream with its 45 row tables.
//
// # Parsing
//
// Parse a metadata root (the "BSJB" blob located by the PE collaborator):
//
//	root, err := metadata.ParseRoot(data)
//	tables, err := root.Tables()
//	strings := root.Strings()
//
// # Tables
//
// A Table is an ordered sequence of fixed-arity rows. Column widths are
// a pure function of the stream Layout, which is computed once from the
// heap-size flags and row counts in the table stream header:
//
//	methods := tables.Table(token.Method)
//	row, err := methods.Row(0)          // 0-based
//	row, err = methods.RowByRid(1)      // 1-based, same row
//	name, _ := strings.Get(row.Columns[3])
//
// Tables sorted by an owner column support owner lookup:
//
//	constants := tables.Table(token.Constant)
//	row, ok := constants.FindByOwner(token.New(token.Param, 2))
//	run := customAttributes.FindRunByOwner(owner)
//
// Sorted tables use binary search, unsorted tables a linear scan; both
// return the same rows.
//
// # Encoding
//
//	tables.Encode() // #~ stream bytes; layout recomputed from row counts
//	root.Encode()   // full metadata root
package metadata
