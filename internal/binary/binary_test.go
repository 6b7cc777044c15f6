package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Remaining() != 2 {
		t.Errorf("remaining: got %d, want 2", r.Remaining())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF, got %v", err)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU16(0xBEEF)
	w.WriteU32(0xDEADBEEF)
	w.WriteU64(0x0102030405060708)
	w.WriteF32(1.5)
	w.WriteF64(-2.25)
	w.WriteIndex(2, 0x1234)
	w.WriteIndex(4, 0x12345678)

	r := NewReader(w.Bytes())
	if v, _ := r.ReadU16(); v != 0xBEEF {
		t.Errorf("ReadU16: got 0x%x", v)
	}
	if v, _ := r.ReadU32(); v != 0xDEADBEEF {
		t.Errorf("ReadU32: got 0x%x", v)
	}
	if v, _ := r.ReadU64(); v != 0x0102030405060708 {
		t.Errorf("ReadU64: got 0x%x", v)
	}
	if v, _ := r.ReadF32(); v != 1.5 {
		t.Errorf("ReadF32: got %v", v)
	}
	if v, _ := r.ReadF64(); v != -2.25 {
		t.Errorf("ReadF64: got %v", v)
	}
	if v, _ := r.ReadIndex(2); v != 0x1234 {
		t.Errorf("ReadIndex(2): got 0x%x", v)
	}
	if v, _ := r.ReadIndex(4); v != 0x12345678 {
		t.Errorf("ReadIndex(4): got 0x%x", v)
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining: got %d", r.Remaining())
	}
}

func TestCompressedU32(t *testing.T) {
	tests := []struct {
		value   uint32
		encoded []byte
	}{
		{0x03, []byte{0x03}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x80}},
		{0x2E57, []byte{0xAE, 0x57}},
		{0x3FFF, []byte{0xBF, 0xFF}},
		{0x4000, []byte{0xC0, 0x00, 0x40, 0x00}},
		{0x1FFFFFFF, []byte{0xDF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WriteCompressedU32(tt.value)
		if !bytes.Equal(w.Bytes(), tt.encoded) {
			t.Errorf("encode 0x%x: got %x, want %x", tt.value, w.Bytes(), tt.encoded)
		}
		if CompressedSize(tt.value) != len(tt.encoded) {
			t.Errorf("CompressedSize(0x%x) = %d, want %d", tt.value, CompressedSize(tt.value), len(tt.encoded))
		}

		got, err := NewReader(tt.encoded).ReadCompressedU32()
		if err != nil {
			t.Fatalf("decode %x: %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("decode %x: got 0x%x, want 0x%x", tt.encoded, got, tt.value)
		}
	}

	if CompressedSize(0x20000000) != 0 {
		t.Error("values above MaxCompressed should not be encodable")
	}
	if _, err := NewReader([]byte{0xE0}).ReadCompressedU32(); !errors.Is(err, ErrBadCompressed) {
		t.Errorf("expected ErrBadCompressed, got %v", err)
	}
}

func TestReadNullTerminated(t *testing.T) {
	r := NewReader([]byte("abc\x00de\x00f"))
	s, err := r.ReadNullTerminated()
	if err != nil || string(s) != "abc" {
		t.Fatalf("first: %q, %v", s, err)
	}
	s, err = r.ReadNullTerminated()
	if err != nil || string(s) != "de" {
		t.Fatalf("second: %q, %v", s, err)
	}
	if _, err := r.ReadNullTerminated(); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestAlign(t *testing.T) {
	w := NewWriter()
	w.Byte(1)
	w.Align(4)
	if w.Len() != 4 {
		t.Errorf("writer align: got %d, want 4", w.Len())
	}

	r := NewReader(make([]byte, 8))
	_, _ = r.ReadByte()
	r.Align(4)
	if r.Position() != 4 {
		t.Errorf("reader align: got %d, want 4", r.Position())
	}
}

func TestParseError(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, _ = r.ReadByte()
	err := r.WrapError("#~", io.ErrUnexpectedEOF)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("expected ParseError")
	}
	if pe.Position != 1 || pe.Stream != "#~" {
		t.Errorf("got position %d stream %q", pe.Position, pe.Stream)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("ParseError should unwrap to cause")
	}
}
