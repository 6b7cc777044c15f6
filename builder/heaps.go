package builder

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/wippyai/clrmeta/internal/binary"
	"github.com/wippyai/clrmeta/metadata"
)

// StringHeap accumulates #Strings entries.
type StringHeap struct {
	offsets map[string]uint32
	w       *binary.Writer
}

func newStringHeap() *StringHeap {
	w := binary.NewWriter()
	w.Byte(0)
	return &StringHeap{offsets: make(map[string]uint32), w: w}
}

// Offset returns the offset of s, adding it on first use. The empty
// string is offset 0.
func (h *StringHeap) Offset(s string) uint32 {
	if s == "" {
		return 0
	}
	if off, ok := h.offsets[s]; ok {
		return off
	}
	off := uint32(h.w.Len())
	h.w.WriteString(s)
	h.w.Byte(0)
	h.offsets[s] = off
	return off
}

// Len returns the heap size in bytes.
func (h *StringHeap) Len() int { return h.w.Len() }

// Bytes returns the heap contents.
func (h *StringHeap) Bytes() []byte { return h.w.Bytes() }

// BlobHeap accumulates #Blob entries. Identical payloads share one entry.
type BlobHeap struct {
	index map[uint64][]uint32
	w     *binary.Writer
}

func newBlobHeap() *BlobHeap {
	w := binary.NewWriter()
	w.Byte(0)
	return &BlobHeap{index: make(map[uint64][]uint32), w: w}
}

// Offset returns the offset of b, adding it on first use. An empty blob
// is offset 0.
func (h *BlobHeap) Offset(b []byte) uint32 {
	if len(b) == 0 {
		return 0
	}
	sum := xxhash.Sum64(b)
	data := h.w.Bytes()
	for _, off := range h.index[sum] {
		r := binary.NewReader(data)
		_ = r.Seek(int(off))
		n, err := r.ReadCompressedU32()
		if err != nil || int(n) != len(b) {
			continue
		}
		if existing, err := r.ReadBytes(int(n)); err == nil && bytes.Equal(existing, b) {
			return off
		}
	}
	off := uint32(h.w.Len())
	h.w.WriteCompressedU32(uint32(len(b)))
	h.w.WriteBytes(b)
	h.index[sum] = append(h.index[sum], off)
	return off
}

// Len returns the heap size in bytes.
func (h *BlobHeap) Len() int { return h.w.Len() }

// Bytes returns the heap contents.
func (h *BlobHeap) Bytes() []byte { return h.w.Bytes() }

// GuidHeap accumulates #GUID entries.
type GuidHeap struct {
	indices map[uuid.UUID]uint32
	w       *binary.Writer
}

func newGuidHeap() *GuidHeap {
	return &GuidHeap{indices: make(map[uuid.UUID]uint32), w: binary.NewWriter()}
}

// Index returns the 1-based index of g, adding it on first use. The nil
// GUID is index 0.
func (h *GuidHeap) Index(g uuid.UUID) uint32 {
	if g == uuid.Nil {
		return 0
	}
	if idx, ok := h.indices[g]; ok {
		return idx
	}
	h.w.WriteBytes(g[:])
	idx := uint32(h.w.Len() / 16)
	h.indices[g] = idx
	return idx
}

// Len returns the number of GUIDs.
func (h *GuidHeap) Len() int { return h.w.Len() / 16 }

// Bytes returns the heap contents.
func (h *GuidHeap) Bytes() []byte { return h.w.Bytes() }

// UserStringHeap accumulates #US entries.
type UserStringHeap struct {
	offsets map[string]uint32
	w       *binary.Writer
}

func newUserStringHeap() *UserStringHeap {
	w := binary.NewWriter()
	w.Byte(0)
	return &UserStringHeap{offsets: make(map[string]uint32), w: w}
}

// Offset returns the offset of s, adding it on first use.
func (h *UserStringHeap) Offset(s string) (uint32, error) {
	if off, ok := h.offsets[s]; ok {
		return off, nil
	}
	entry, err := metadata.EncodeUserString(s)
	if err != nil {
		return 0, err
	}
	off := uint32(h.w.Len())
	h.w.WriteBytes(entry)
	h.offsets[s] = off
	return off, nil
}

// Len returns the heap size in bytes.
func (h *UserStringHeap) Len() int { return h.w.Len() }

// Bytes returns the heap contents.
func (h *UserStringHeap) Bytes() []byte { return h.w.Bytes() }
