package cryo

import (
	"github.com/halvik/cryo/internal/mmfile"
	"github.com/halvik/cryo/internal/scan"
	"github.com/halvik/cryo/pkg/types"
)

// Info validates the header of the dump file at path and reports its
// metadata without decoding any values.
func Info(path string) (types.DumpInfo, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return types.DumpInfo{}, &types.Error{Kind: types.ErrKindIO, Msg: "open dump file", Err: err}
	}
	defer cleanup()

	raw, compression, err := Decode(data)
	if err != nil {
		return types.DumpInfo{}, err
	}
	res, err := scan.Scan(raw)
	if err != nil {
		return types.DumpInfo{}, &types.Error{Kind: types.ErrKindCorrupt, Msg: "scan dump", Err: err}
	}
	return types.DumpInfo{
		Version:     int(res.Header.Version),
		IntWidth:    int(res.Header.IntWidth),
		SizeWidth:   int(res.Header.SizeWidth),
		NumberWidth: int(res.Header.NumberWidth),
		Compression: compression,
		PayloadSize: int64(len(raw)),
		FileSize:    int64(len(data)),
	}, nil
}

// Stats scans the dump file at path and tallies per-kind counts and
// byte shares.
func Stats(path string) ([]types.KindStat, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIO, Msg: "open dump file", Err: err}
	}
	defer cleanup()

	raw, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	res, err := scan.Scan(raw)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindCorrupt, Msg: "scan dump", Err: err}
	}
	return scan.Stats(res.Root), nil
}
