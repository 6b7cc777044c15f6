package metadata

import (
	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
)

// Heap stream names.
const (
	StreamTables      = "#~"
	StreamTablesEnc   = "#-"
	StreamStrings     = "#Strings"
	StreamUserStrings = "#US"
	StreamGuid        = "#GUID"
	StreamBlob        = "#Blob"
)

// StringHeap reads null-terminated UTF-8 strings from #Strings.
type StringHeap struct {
	data []byte
}

// NewStringHeap wraps raw #Strings bytes.
func NewStringHeap(data []byte) *StringHeap {
	return &StringHeap{data: data}
}

// Get returns the string at offset. Offset 0 is the empty string.
func (h *StringHeap) Get(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if h == nil || int(offset) >= len(h.data) {
		return "", errors.OutOfBounds(errors.PhaseRead, StreamStrings, int(offset), h.size())
	}
	r := binary.NewReader(h.data)
	_ = r.Seek(int(offset))
	b, err := r.ReadNullTerminated()
	if err != nil {
		return "", errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "unterminated string")
	}
	return string(b), nil
}

func (h *StringHeap) size() int {
	if h == nil {
		return 0
	}
	return len(h.data)
}

// BlobHeap reads length-prefixed blobs from #Blob.
type BlobHeap struct {
	data []byte
}

// NewBlobHeap wraps raw #Blob bytes.
func NewBlobHeap(data []byte) *BlobHeap {
	return &BlobHeap{data: data}
}

// Get returns the blob at offset. Offset 0 is the empty blob.
// The returned slice aliases the heap.
func (h *BlobHeap) Get(offset uint32) ([]byte, error) {
	if offset == 0 {
		return nil, nil
	}
	if h == nil || int(offset) >= len(h.data) {
		size := 0
		if h != nil {
			size = len(h.data)
		}
		return nil, errors.OutOfBounds(errors.PhaseRead, StreamBlob, int(offset), size)
	}
	r := binary.NewReader(h.data)
	_ = r.Seek(int(offset))
	n, err := r.ReadCompressedU32()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "blob length")
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "blob data")
	}
	return b, nil
}

// GuidHeap reads 16-byte GUIDs from #GUID by 1-based index.
type GuidHeap struct {
	data []byte
}

// NewGuidHeap wraps raw #GUID bytes.
func NewGuidHeap(data []byte) *GuidHeap {
	return &GuidHeap{data: data}
}

// Get returns the GUID at index. Index 0 is the nil GUID.
func (h *GuidHeap) Get(index uint32) (uuid.UUID, error) {
	if index == 0 {
		return uuid.Nil, nil
	}
	start := int(index-1) * 16
	if h == nil || start+16 > len(h.data) {
		count := 0
		if h != nil {
			count = len(h.data) / 16
		}
		return uuid.Nil, errors.OutOfBounds(errors.PhaseRead, StreamGuid, int(index), count)
	}
	var g uuid.UUID
	copy(g[:], h.data[start:start+16])
	return g, nil
}

// UserStringHeap reads UTF-16 string literals from #US.
type UserStringHeap struct {
	data []byte
}

// NewUserStringHeap wraps raw #US bytes.
func NewUserStringHeap(data []byte) *UserStringHeap {
	return &UserStringHeap{data: data}
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Get returns the string literal at offset.
func (h *UserStringHeap) Get(offset uint32) (string, error) {
	if h == nil || offset == 0 || int(offset) >= len(h.data) {
		size := 0
		if h != nil {
			size = len(h.data)
		}
		return "", errors.OutOfBounds(errors.PhaseRead, StreamUserStrings, int(offset), size)
	}
	r := binary.NewReader(h.data)
	_ = r.Seek(int(offset))
	n, err := r.ReadCompressedU32()
	if err != nil {
		return "", errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "user string length")
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "user string data")
	}
	// Trailing byte flags non-ASCII content; it is not part of the text.
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "user string encoding")
	}
	return string(s), nil
}

// EncodeUserString returns the #US entry bytes for s: compressed length,
// UTF-16LE text and the trailing flag byte.
func EncodeUserString(s string) ([]byte, error) {
	text, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseWrite, errors.KindInvalidData, err, "user string encoding")
	}
	w := binary.NewWriter()
	w.WriteCompressedU32(uint32(len(text) + 1))
	w.WriteBytes(text)
	w.Byte(userStringFlag(text))
	return w.Bytes(), nil
}

// userStringFlag is 1 when any UTF-16 unit needs more than 8 bits or is
// one of the special characters listed in II.24.2.4.
func userStringFlag(text []byte) byte {
	for i := 0; i+1 < len(text); i += 2 {
		lo, hi := text[i], text[i+1]
		if hi != 0 {
			return 1
		}
		switch {
		case lo >= 0x01 && lo <= 0x08, lo >= 0x0E && lo <= 0x1F, lo == 0x27, lo == 0x2D, lo == 0x7F:
			return 1
		}
	}
	return 0
}

// Bytes returns the raw #Strings bytes.
func (h *StringHeap) Bytes() []byte {
	if h == nil {
		return nil
	}
	return h.data
}

// Bytes returns the raw #Blob bytes.
func (h *BlobHeap) Bytes() []byte {
	if h == nil {
		return nil
	}
	return h.data
}

// Bytes returns the raw #GUID bytes.
func (h *GuidHeap) Bytes() []byte {
	if h == nil {
		return nil
	}
	return h.data
}

// Len returns the number of GUIDs in the heap.
func (h *GuidHeap) Len() int {
	if h == nil {
		return 0
	}
	return len(h.data) / 16
}

// Bytes returns the raw #US bytes.
func (h *UserStringHeap) Bytes() []byte {
	if h == nil {
		return nil
	}
	return h.data
}
