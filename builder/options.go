package builder

import "github.com/wippyai/clrmeta/metadata"

// DefaultCodeBase is the RVA of the first method body when Options leaves
// CodeBase unset. RVA 0 marks a method without a body, so it is never used.
const DefaultCodeBase uint32 = 0x2050

// Options configures how a Buffer lays out its output.
type Options struct {
	// Version is the runtime version string of the metadata root.
	Version string
	// CodeBase is the RVA of the first method body. Zero means
	// DefaultCodeBase.
	CodeBase uint32
	// DataBase is the RVA of the field data segment. Zero places it after
	// the code segment, which never starts at RVA 0.
	DataBase uint32
	// ForceLargeIndices writes every heap index as 4 bytes.
	ForceLargeIndices bool
}

// DefaultOptions returns the default layout configuration.
func DefaultOptions() Options {
	return Options{
		Version:  metadata.DefaultVersion,
		CodeBase: DefaultCodeBase,
	}
}
