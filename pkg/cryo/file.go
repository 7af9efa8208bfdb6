package cryo

import (
	"bytes"
	"fmt"

	"github.com/halvik/cryo/compr"
	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/internal/mmfile"
	"github.com/halvik/cryo/internal/writer"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// WriteOptions configure WriteFile.
type WriteOptions struct {
	DumpOptions

	// Compression wraps the dump in the compressed file container.
	// Empty means CompressionNone.
	Compression types.Compression

	// Durable forces the bytes to disk before the file is moved into
	// place.
	Durable bool
}

// WriteFile serializes v and commits it to path atomically.
func WriteFile(s *vm.State, v vm.Value, path string, opts WriteOptions) error {
	raw, err := Persist(s, v, opts.DumpOptions)
	if err != nil {
		return err
	}
	enc, err := Encode(raw, opts.Compression)
	if err != nil {
		return err
	}
	fw := &writer.FileWriter{Path: path, Durable: opts.Durable}
	if err := fw.WriteDump(enc); err != nil {
		return &types.Error{Kind: types.ErrKindIO, Msg: "write dump file", Err: err}
	}
	return nil
}

// ReadFile maps the file at path, unwraps the container and
// reconstructs the persisted value.
func ReadFile(s *vm.State, path string, opts OpenOptions) (vm.Value, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIO, Msg: "open dump file", Err: err}
	}
	defer cleanup()
	raw, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Unpersist(s, raw, opts)
}

// Encode wraps a raw dump in the file container for the requested
// compression. CompressionNone returns the dump unchanged.
func Encode(raw []byte, c types.Compression) ([]byte, error) {
	switch c {
	case "", types.CompressionNone:
		return raw, nil
	}
	comp := compr.Compression(string(c))
	if comp == nil {
		return nil, &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("unknown compression %q", c)}
	}
	hdr := append([]byte(nil), format.CompressedMagic...)
	hdr = append(hdr, algoByte(c))
	return comp.Compress(raw, hdr), nil
}

// Decode unwraps a file container, returning the raw dump bytes and
// the compression it was stored with. Raw dumps pass through.
func Decode(data []byte) ([]byte, types.Compression, error) {
	switch {
	case bytes.HasPrefix(data, format.Magic):
		return data, types.CompressionNone, nil
	case bytes.HasPrefix(data, format.CompressedMagic):
		if len(data) < len(format.CompressedMagic)+1 {
			return nil, "", types.ErrNotDump
		}
		c, err := algoName(data[len(format.CompressedMagic)])
		if err != nil {
			return nil, "", err
		}
		dec, err := compr.Decompression(string(c))
		if err != nil {
			return nil, "", &types.Error{Kind: types.ErrKindFormat, Msg: "unwrap dump container", Err: err}
		}
		raw, err := dec.Decompress(data[len(format.CompressedMagic)+1:], nil)
		if err != nil {
			return nil, "", &types.Error{Kind: types.ErrKindCorrupt, Msg: "decompress dump", Err: err}
		}
		if !bytes.HasPrefix(raw, format.Magic) {
			return nil, "", types.ErrNotDump
		}
		return raw, c, nil
	default:
		return nil, "", types.ErrNotDump
	}
}

func algoByte(c types.Compression) byte {
	switch c {
	case types.CompressionZstd:
		return format.CompressZstd
	case types.CompressionS2:
		return format.CompressS2
	}
	return format.CompressNone
}

func algoName(b byte) (types.Compression, error) {
	switch b {
	case format.CompressZstd:
		return types.CompressionZstd, nil
	case format.CompressS2:
		return types.CompressionS2, nil
	}
	return "", &types.Error{Kind: types.ErrKindFormat, Msg: fmt.Sprintf("unknown compression byte %d", b)}
}
