package format

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestPrimRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Byte(0x7F); err != nil {
		t.Fatal(err)
	}
	if err := w.Bool(true); err != nil {
		t.Fatal(err)
	}
	if err := w.U16(0xBEEF); err != nil {
		t.Fatal(err)
	}
	if err := w.I16(-123); err != nil {
		t.Fatal(err)
	}
	if err := w.Int(-456789); err != nil {
		t.Fatal(err)
	}
	if err := w.U32(0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := w.Size(1 << 40); err != nil {
		t.Fatal(err)
	}
	if err := w.Offset(-42); err != nil {
		t.Fatal(err)
	}
	if err := w.Number(370.5); err != nil {
		t.Fatal(err)
	}
	if err := w.Bytes([]byte("abc")); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	if v, _ := r.Byte(); v != 0x7F {
		t.Fatalf("Byte: %x", v)
	}
	if v, _ := r.Bool(); !v {
		t.Fatal("Bool: false")
	}
	if v, _ := r.U16(); v != 0xBEEF {
		t.Fatalf("U16: %x", v)
	}
	if v, _ := r.I16(); v != -123 {
		t.Fatalf("I16: %d", v)
	}
	if v, _ := r.Int(); v != -456789 {
		t.Fatalf("Int: %d", v)
	}
	if v, _ := r.U32(); v != 0xDEADBEEF {
		t.Fatalf("U32: %x", v)
	}
	if v, _ := r.Size(); v != 1<<40 {
		t.Fatalf("Size: %d", v)
	}
	if v, _ := r.Offset(); v != -42 {
		t.Fatalf("Offset: %d", v)
	}
	if v, _ := r.Number(); v != 370.5 {
		t.Fatalf("Number: %v", v)
	}
	b, err := r.Bytes(3)
	if err != nil || string(b) != "abc" {
		t.Fatalf("Bytes: %q %v", b, err)
	}
}

func TestReaderShortSource(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	if _, err := r.U32(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriterSinkRefusal(t *testing.T) {
	w := NewWriter(failWriter{})
	if err := w.Int(1); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestWriterCount(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteHeader()
	_ = w.Int(0)
	if w.Count() != HeaderSize+4 {
		t.Fatalf("count %d", w.Count())
	}
}
