// Package cts provides the entity model of CLI metadata: modules,
// assemblies, types, fields, methods and the rows that hang off them.
//
// # Loading
//
// An Image wraps a parsed metadata root. Entities are created on first
// access and cached by token, so the same token always yields the same
// pointer:
//
//	img, err := cts.LoadBytes(data, cts.Options{AddressSpace: segments})
//	for _, t := range img.Types.All() {
//		for _, m := range t.Methods.All() {
//			body := m.Body.Get() // read through the AddressSpace
//		}
//	}
//
// Every reference between entities is a lazy.Value. A bound entity
// resolves it from its row on first Get; Set replaces it. References that
// cannot be resolved (bad index, missing row) become nil and are logged at
// debug level.
//
// # Building
//
// Unbound entities are created with the NewXxx constructors and attached
// through the owner's collections or setters, which also set the back
// reference:
//
//	img := cts.NewImage("Sample.dll")
//	t := cts.NewTypeDefinition("Sample", "Program", 0, objectRef)
//	img.AddType(t)
//	t.Methods.Add(cts.NewMethodDefinition("Main", 0x0096, sig))
//
// # Writing
//
// Rebuild walks the graph into a builder.Buffer. Each entity's
// AddToBuffer writes its row with every reference re-resolved to the
// target's new token, then writes the entities it owns. Method bodies and
// field data are placed into the code and data segments of the result.
package cts
