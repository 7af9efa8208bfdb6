package buf

import "testing"

func TestSlice(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	if s, ok := Slice(b, 1, 2); !ok || len(s) != 2 || s[0] != 2 {
		t.Fatalf("Slice(1,2): %v %v", s, ok)
	}
	if _, ok := Slice(b, 3, 2); ok {
		t.Fatal("expected out-of-bounds")
	}
	if _, ok := Slice(b, -1, 1); ok {
		t.Fatal("expected negative offset rejection")
	}
	if _, ok := Slice(b, 0, -1); ok {
		t.Fatal("expected negative length rejection")
	}
	if s, ok := Slice(b, 4, 0); !ok || len(s) != 0 {
		t.Fatalf("Slice(len,0): %v %v", s, ok)
	}
}

func TestHasOverflow(t *testing.T) {
	b := []byte{1}
	if Has(b, 1<<62, 1<<62) {
		t.Fatal("expected overflow rejection")
	}
}

func TestEndianShortBuffers(t *testing.T) {
	if U16(nil) != 0 || U32([]byte{1}) != 0 || U64([]byte{1, 2, 3}) != 0 || I32(nil) != 0 {
		t.Fatal("short buffers must read as zero")
	}
}
