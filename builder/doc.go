// Package builder writes CLI metadata back to bytes.
//
// A Buffer collects the four heaps and a table stream. Entities append
// themselves through AddRow, and refer to other entities through TokenOf,
// Index and Coded, which append the target on demand:
//
//	b := builder.NewBuffer(builder.DefaultOptions())
//	tok, err := b.TokenOf(typeRef)
//	res, err := b.Finalize()
//
// Types, fields, methods and parameters are owned as contiguous runs of
// their tables, so they must be reserved with Reserve or ReserveList
// before any row refers to them.
//
// Method bodies and field initial values are queued with PlaceCode and
// PlaceData. Finalize lays them out from Options.CodeBase and
// Options.DataBase, patches the RVA columns, stable-sorts every table that
// the format requires sorted, rewrites references to rows that moved and
// serializes the metadata root.
package builder
