package metadata

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/internal/binary"
)

// Signature is the magic number that opens a metadata root ("BSJB").
const Signature uint32 = 0x424A5342

// DefaultVersion is the runtime version string written for new roots.
const DefaultVersion = "v4.0.30319"

// Stream is one named stream of a metadata root.
type Stream struct {
	Name string
	Data []byte
}

// Root is a parsed metadata root: version header plus its streams.
type Root struct {
	Version      string
	Streams      []Stream
	MajorVersion uint16
	MinorVersion uint16
	Flags        uint16
}

// NewRoot returns an empty version 1.1 root.
func NewRoot() *Root {
	return &Root{MajorVersion: 1, MinorVersion: 1, Version: DefaultVersion}
}

// ParseRoot decodes a metadata root. Stream data aliases the input.
func ParseRoot(data []byte) (*Root, error) {
	r := binary.NewReader(data)
	sig, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("root", err)
	}
	if sig != Signature {
		return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
			Value(sig).
			Detail("bad metadata signature 0x%08X", sig).
			Build()
	}
	root := &Root{}
	if root.MajorVersion, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("root", err)
	}
	if root.MinorVersion, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("root", err)
	}
	if _, err = r.ReadU32(); err != nil {
		return nil, r.WrapError("root", err)
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("root", err)
	}
	version, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, r.WrapError("root", err)
	}
	root.Version = strings.TrimRight(string(version), "\x00")
	if root.Flags, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("root", err)
	}
	count, err := r.ReadU16()
	if err != nil {
		return nil, r.WrapError("root", err)
	}

	root.Streams = make([]Stream, 0, count)
	for i := 0; i < int(count); i++ {
		offset, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("root", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("root", err)
		}
		name, err := r.ReadNullTerminated()
		if err != nil {
			return nil, r.WrapError("root", err)
		}
		r.Align(4)
		end := uint64(offset) + uint64(size)
		if end > uint64(len(data)) {
			return nil, errors.New(errors.PhaseRead, errors.KindOutOfBounds).
				Table(string(name)).
				Detail("stream [%d, %d) exceeds metadata size %d", offset, end, len(data)).
				Build()
		}
		root.Streams = append(root.Streams, Stream{
			Name: string(name),
			Data: data[offset:end:end],
		})
	}

	Logger().Debug("parsed metadata root",
		zap.String("version", root.Version),
		zap.Int("streams", len(root.Streams)),
	)
	return root, nil
}

// Stream returns the data of the named stream. When several streams share
// a name the last one wins, as the runtime does.
func (r *Root) Stream(name string) ([]byte, bool) {
	for i := len(r.Streams) - 1; i >= 0; i-- {
		if r.Streams[i].Name == name {
			return r.Streams[i].Data, true
		}
	}
	return nil, false
}

// SetStream replaces the named stream or appends it.
func (r *Root) SetStream(name string, data []byte) {
	for i := range r.Streams {
		if r.Streams[i].Name == name {
			r.Streams[i].Data = data
			return
		}
	}
	r.Streams = append(r.Streams, Stream{Name: name, Data: data})
}

// Tables decodes the table stream (#~, or #- for unoptimized metadata).
func (r *Root) Tables() (*TableStream, error) {
	data, ok := r.Stream(StreamTables)
	if !ok {
		data, ok = r.Stream(StreamTablesEnc)
	}
	if !ok {
		return nil, errors.NotFound(errors.PhaseRead, "stream", StreamTables)
	}
	return ParseTableStream(data)
}

// Strings returns the #Strings heap. A missing heap reads as empty.
func (r *Root) Strings() *StringHeap {
	data, _ := r.Stream(StreamStrings)
	return NewStringHeap(data)
}

// Blobs returns the #Blob heap.
func (r *Root) Blobs() *BlobHeap {
	data, _ := r.Stream(StreamBlob)
	return NewBlobHeap(data)
}

// Guids returns the #GUID heap.
func (r *Root) Guids() *GuidHeap {
	data, _ := r.Stream(StreamGuid)
	return NewGuidHeap(data)
}

// UserStrings returns the #US heap.
func (r *Root) UserStrings() *UserStringHeap {
	data, _ := r.Stream(StreamUserStrings)
	return NewUserStringHeap(data)
}

// Encode serializes the root. Streams are laid out in order, each padded
// to a 4-byte boundary.
func (r *Root) Encode() []byte {
	version := []byte(r.Version)
	versionLen := (len(version) + 1 + 3) &^ 3

	headerSize := 16 + versionLen + 4
	for _, s := range r.Streams {
		headerSize += 8 + (len(s.Name)+1+3)&^3
	}

	w := binary.NewWriter()
	w.WriteU32(Signature)
	w.WriteU16(r.MajorVersion)
	w.WriteU16(r.MinorVersion)
	w.WriteU32(0)
	w.WriteU32(uint32(versionLen))
	w.WriteBytes(version)
	for i := len(version); i < versionLen; i++ {
		w.Byte(0)
	}
	w.WriteU16(r.Flags)
	w.WriteU16(uint16(len(r.Streams)))

	offset := headerSize
	for _, s := range r.Streams {
		size := (len(s.Data) + 3) &^ 3
		w.WriteU32(uint32(offset))
		w.WriteU32(uint32(size))
		w.WriteString(s.Name)
		w.Byte(0)
		w.Align(4)
		offset += size
	}
	for _, s := range r.Streams {
		w.WriteBytes(s.Data)
		w.Align(4)
	}
	return w.Bytes()
}
