package cts

import "github.com/wippyai/clrmeta"

// Options configures image loading.
type Options struct {
	// AddressSpace resolves method body and field data RVAs. A nil
	// AddressSpace maps nothing.
	AddressSpace clrmeta.AddressSpace
}

// DefaultOptions returns options with an empty address space.
func DefaultOptions() Options {
	return Options{AddressSpace: clrmeta.EmptyAddressSpace}
}
