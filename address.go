package clrmeta

import (
	"github.com/wippyai/clrmeta/errors"
)

// AddressSpace maps relative virtual addresses to image bytes. It is
// supplied by whatever owns the container (a PE reader, a test fixture, a
// rebuilt image) and is the only way the metadata layer reaches method
// bodies and field data.
type AddressSpace interface {
	// Slice returns the bytes from rva to the end of the region holding it.
	Slice(rva uint32) ([]byte, error)
}

// Segment is a contiguous run of bytes placed at an RVA.
type Segment struct {
	Data []byte
	RVA  uint32
}

// End returns the first RVA past the segment.
func (s Segment) End() uint32 {
	return s.RVA + uint32(len(s.Data))
}

// Contains reports whether rva falls inside the segment.
func (s Segment) Contains(rva uint32) bool {
	return rva >= s.RVA && rva < s.End()
}

// Segments is an AddressSpace over a set of non-overlapping segments.
type Segments []Segment

// Slice implements AddressSpace.
func (s Segments) Slice(rva uint32) ([]byte, error) {
	for _, seg := range s {
		if seg.Contains(rva) {
			return seg.Data[rva-seg.RVA:], nil
		}
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
		Value(rva).
		Detail("rva 0x%08X is not mapped", rva).
		Build()
}

// EmptyAddressSpace maps nothing. Images loaded with it have no method
// bodies or field data.
var EmptyAddressSpace AddressSpace = Segments(nil)
