package format

import (
	"fmt"
	"math"
)

// Header is the fixed-size container preceding the one top-level value
// of every raw dump. It carries no object data; its sole purpose is a
// cross-platform sanity check.
type Header struct {
	Version     byte
	IntWidth    byte
	SizeWidth   byte
	NumberWidth byte
	Canary      float64
}

// NewHeader returns the header this build writes.
func NewHeader() Header {
	return Header{
		Version:     Version,
		IntWidth:    IntWidth,
		SizeWidth:   SizeWidth,
		NumberWidth: NumberWidth,
		Canary:      Canary,
	}
}

// EncodeHeader appends the wire form of h to dst and returns the result.
func EncodeHeader(dst []byte, h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, Magic)
	buf[4] = h.Version
	buf[5] = h.IntWidth
	buf[6] = h.SizeWidth
	buf[7] = h.NumberWidth
	PutU64(buf, 8, math.Float64bits(h.Canary))
	return append(dst, buf...)
}

// DecodeHeader parses and validates a dump header from the front of b.
// On success it returns the header; the caller resumes decoding at
// offset HeaderSize.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrTruncated
	}
	if string(b[:4]) != string(Magic) {
		return Header{}, ErrSignatureMismatch
	}
	h := Header{
		Version:     b[4],
		IntWidth:    b[5],
		SizeWidth:   b[6],
		NumberWidth: b[7],
		Canary:      math.Float64frombits(ReadU64(b, 8)),
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if h.IntWidth != IntWidth || h.SizeWidth != SizeWidth || h.NumberWidth != NumberWidth {
		return h, fmt.Errorf("%w: int=%d size=%d number=%d",
			ErrWidthMismatch, h.IntWidth, h.SizeWidth, h.NumberWidth)
	}
	if h.Canary != Canary {
		return h, ErrCanary
	}
	return h, nil
}
