// Package clrmeta reads, models, edits and rewrites the metadata of CLI
// (ECMA-335) executables.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	clrmeta/             Root package with the AddressSpace collaborator interface
//	├── token/           Metadata tokens and the coded-index codec
//	├── lazy/            Deferred, cached cross-reference cells
//	├── metadata/        Table stream, heaps, schema, layout and BSJB root
//	├── cts/             Entity model (types, members, attributes) over the tables
//	├── cil/             CIL opcodes, instructions, method bodies
//	├── builder/         Write-back buffer that re-emits heaps, tables and bodies
//	├── errors/          Structured error types
//	└── cmd/mdinspect/   Inspector CLI
//
// # Quick Start
//
// Load metadata and walk its types:
//
//	img, err := cts.LoadBytes(metadataBlob, cts.Options{AddressSpace: space})
//	if err != nil {
//		return err
//	}
//	for _, t := range img.Types.All() {
//		fmt.Println(t.FullName())
//		for _, m := range t.Methods.All() {
//			body := m.Body.Get()
//			...
//		}
//	}
//
// Rebuild it after edits:
//
//	res, err := img.Rebuild(builder.DefaultOptions())
//	// res.Metadata, res.Code and res.Data are ready to be placed in a container.
//
// # Addressing
//
// The core never translates addresses. Method bodies and field initial
// data are reached through an AddressSpace that maps RVAs to bytes;
// Segments is a simple in-memory implementation.
//
// # Errors
//
// All packages return *errors.Error values carrying a phase and a kind.
// Structural problems (rows or heap offsets out of range) surface as
// absent references at the entity layer; contract violations such as an
// operand that does not match its opcode fail the operation.
package clrmeta
