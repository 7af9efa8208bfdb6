// Package compr provides a unified interface wrapping the third-party
// compression codecs used by the dump file container.
package compr

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Compressor compresses whole dump payloads.
type Compressor interface {
	// Name is the name of the compression algorithm.
	Name() string
	// Compress appends the compressed contents of src to dst and
	// returns the result.
	Compress(src, dst []byte) []byte
}

// Decompressor is the inverse of Compressor.
type Decompressor interface {
	// Name is the name of the compression algorithm.
	Name() string
	// Decompress appends the decompressed contents of src to dst and
	// returns the result.
	Decompress(src, dst []byte) ([]byte, error)
}

type zstdCompressor struct {
	enc *zstd.Encoder
}

func (z zstdCompressor) Name() string { return "zstd" }

func (z zstdCompressor) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

type zstdDecompressor struct {
	dec *zstd.Decoder
}

func (z zstdDecompressor) Name() string { return "zstd" }

func (z zstdDecompressor) Decompress(src, dst []byte) ([]byte, error) {
	return z.dec.DecodeAll(src, dst)
}

type s2Compressor struct{}

func (s2Compressor) Name() string { return "s2" }

func (s2Compressor) Compress(src, dst []byte) []byte {
	tail := dst[len(dst):cap(dst)]
	enc := s2.Encode(tail, src)
	if len(enc) > 0 && len(tail) > 0 && &enc[0] == &tail[0] {
		return dst[:len(dst)+len(enc)]
	}
	return append(dst, enc...)
}

type s2Decompressor struct{}

func (s2Decompressor) Name() string { return "s2" }

func (s2Decompressor) Decompress(src, dst []byte) ([]byte, error) {
	out, err := s2.Decode(nil, src)
	if err != nil {
		return nil, err
	}
	return append(dst, out...), nil
}

var (
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
)

func init() {
	e, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}
	zstdEnc = e
	d, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	zstdDec = d
}

// Compression returns the named Compressor, or nil when name is
// unknown. Valid names are "zstd" and "s2".
func Compression(name string) Compressor {
	switch name {
	case "zstd":
		return zstdCompressor{enc: zstdEnc}
	case "s2":
		return s2Compressor{}
	}
	return nil
}

// Decompression returns the named Decompressor.
func Decompression(name string) (Decompressor, error) {
	switch name {
	case "zstd":
		return zstdDecompressor{dec: zstdDec}, nil
	case "s2":
		return s2Decompressor{}, nil
	}
	return nil, fmt.Errorf("compr: unknown compression %q", name)
}
