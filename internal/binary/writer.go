package binary

import (
	"bytes"
	"encoding/binary"
	"math"
)

// MaxCompressed is the largest value an ECMA-335 compressed integer can hold.
const MaxCompressed = 0x1FFFFFFF

// Writer provides buffered little-endian writing for metadata encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteString writes s without a terminator.
func (w *Writer) WriteString(s string) {
	w.buf.WriteString(s)
}

// WriteU16 writes a little-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32 writes a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64 writes a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteF32 writes a little-endian IEEE 754 float32.
func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteF64 writes a little-endian IEEE 754 float64.
func (w *Writer) WriteF64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

// WriteIndex writes a 2 or 4 byte heap or table index.
func (w *Writer) WriteIndex(size int, v uint32) {
	if size == 2 {
		w.WriteU16(uint16(v))
		return
	}
	w.WriteU32(v)
}

// WriteCompressedU32 writes an ECMA-335 compressed unsigned integer.
// Values above MaxCompressed are truncated; callers check with CompressedSize.
func (w *Writer) WriteCompressedU32(v uint32) {
	switch {
	case v < 0x80:
		w.buf.WriteByte(byte(v))
	case v < 0x4000:
		w.buf.WriteByte(byte(v>>8) | 0x80)
		w.buf.WriteByte(byte(v))
	default:
		w.buf.WriteByte(byte(v>>24)&0x1F | 0xC0)
		w.buf.WriteByte(byte(v >> 16))
		w.buf.WriteByte(byte(v >> 8))
		w.buf.WriteByte(byte(v))
	}
}

// Align pads with zero bytes up to the next multiple of n.
func (w *Writer) Align(n int) {
	for w.buf.Len()%n != 0 {
		w.buf.WriteByte(0)
	}
}

// CompressedSize returns the encoded size of v, or 0 if v is not encodable.
func CompressedSize(v uint32) int {
	switch {
	case v < 0x80:
		return 1
	case v < 0x4000:
		return 2
	case v <= MaxCompressed:
		return 4
	}
	return 0
}
