package compr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("cryo dump payload "), 512)
	for _, name := range []string{"zstd", "s2"} {
		t.Run(name, func(t *testing.T) {
			c := Compression(name)
			require.NotNil(t, c)
			require.Equal(t, name, c.Name())

			enc := c.Compress(payload, nil)
			require.NotEmpty(t, enc)
			require.Less(t, len(enc), len(payload))

			d, err := Decompression(name)
			require.NoError(t, err)
			dec, err := d.Decompress(enc, nil)
			require.NoError(t, err)
			require.Equal(t, payload, dec)
		})
	}
}

func TestCompressAppends(t *testing.T) {
	prefix := []byte("HDR")
	c := Compression("zstd")
	enc := c.Compress([]byte("data"), append([]byte(nil), prefix...))
	require.Equal(t, prefix, enc[:3])
}

func TestUnknownAlgorithm(t *testing.T) {
	require.Nil(t, Compression("lz999"))
	_, err := Decompression("lz999")
	require.Error(t, err)
}

func TestDecompressGarbage(t *testing.T) {
	for _, name := range []string{"zstd", "s2"} {
		d, err := Decompression(name)
		require.NoError(t, err)
		_, err = d.Decompress([]byte("not compressed data"), nil)
		require.Error(t, err)
	}
}
