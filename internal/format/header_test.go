package format

import (
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	enc := EncodeHeader(nil, NewHeader())
	if len(enc) != HeaderSize {
		t.Fatalf("encoded header is %d bytes, want %d", len(enc), HeaderSize)
	}
	h, err := DecodeHeader(enc)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Version != Version || h.IntWidth != IntWidth || h.SizeWidth != SizeWidth {
		t.Fatalf("unexpected header: %+v", h)
	}
	if h.Canary != Canary {
		t.Fatalf("canary mismatch: %v", h.Canary)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	enc := EncodeHeader(nil, NewHeader())
	enc[0] = 'X'
	if _, err := DecodeHeader(enc); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

func TestDecodeHeaderBadWidths(t *testing.T) {
	h := NewHeader()
	h.SizeWidth = 4
	enc := EncodeHeader(nil, h)
	if _, err := DecodeHeader(enc); !errors.Is(err, ErrWidthMismatch) {
		t.Fatalf("expected width mismatch, got %v", err)
	}
}

func TestDecodeHeaderBadCanary(t *testing.T) {
	h := NewHeader()
	h.Canary = 371.5
	enc := EncodeHeader(nil, h)
	if _, err := DecodeHeader(enc); !errors.Is(err, ErrCanary) {
		t.Fatalf("expected canary error, got %v", err)
	}
}

func TestTagOrdering(t *testing.T) {
	// The permanent tag must sit between the kind tags and the
	// reference offset so tag vs. reference resolves by magnitude.
	if TagPermanent <= TagThread {
		t.Fatalf("permanent tag %d overlaps kind tags", TagPermanent)
	}
	if RefOffset <= TagPermanent {
		t.Fatalf("reference offset %d overlaps tags", RefOffset)
	}
}
