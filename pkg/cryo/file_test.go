package cryo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

func sample() *vm.Table {
	inner := vm.NewTable()
	inner.RawSet("greeting", "hello")
	tb := vm.NewTable()
	tb.RawSet("n", 42.0)
	tb.RawSet("inner", inner)
	tb.RawSet("self", tb)
	return tb
}

func checkSample(t *testing.T, v vm.Value) {
	t.Helper()
	tb, ok := v.(*vm.Table)
	require.True(t, ok)
	require.Equal(t, 42.0, tb.RawGet("n"))
	require.Same(t, tb, tb.RawGet("self"))
	require.Equal(t, "hello", tb.RawGet("inner").(*vm.Table).RawGet("greeting"))
}

func TestPersistUnpersist(t *testing.T) {
	s := vm.New()
	data, err := Persist(s, sample(), DumpOptions{})
	require.NoError(t, err)
	out, err := Unpersist(vm.New(), data, OpenOptions{})
	require.NoError(t, err)
	checkSample(t, out)
}

func TestFileRoundTrip(t *testing.T) {
	for _, c := range []types.Compression{types.CompressionNone, types.CompressionZstd, types.CompressionS2} {
		t.Run(string(c), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "world.cryo")
			s := vm.New()
			err := WriteFile(s, sample(), path, WriteOptions{Compression: c, Durable: true})
			require.NoError(t, err)

			out, err := ReadFile(vm.New(), path, OpenOptions{})
			require.NoError(t, err)
			checkSample(t, out)

			info, err := Info(path)
			require.NoError(t, err)
			require.Equal(t, c, info.Compression)
			require.Equal(t, 1, info.Version)
			require.Positive(t, info.PayloadSize)
		})
	}
}

func TestStatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.cryo")
	s := vm.New()
	require.NoError(t, WriteFile(s, sample(), path, WriteOptions{}))

	stats, err := Stats(path)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	var total int64
	for _, st := range stats {
		total += st.Bytes
	}
	info, err := Info(path)
	require.NoError(t, err)
	require.Equal(t, info.PayloadSize-format.HeaderSize, total) // header excluded
}

func TestEncodeDecode(t *testing.T) {
	s := vm.New()
	raw, err := Persist(s, "payload", DumpOptions{})
	require.NoError(t, err)

	enc, err := Encode(raw, types.CompressionZstd)
	require.NoError(t, err)
	require.NotEqual(t, raw[:4], enc[:4])

	dec, compression, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, types.CompressionZstd, compression)
	require.Equal(t, raw, dec)

	_, _, err = Decode([]byte("garbage data here"))
	require.ErrorIs(t, err, types.ErrNotDump)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(vm.New(), filepath.Join(t.TempDir(), "nope.cryo"), OpenOptions{})
	require.ErrorIs(t, err, types.ErrIO)
}
