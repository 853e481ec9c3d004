package dataset

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := Compress(c, &buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name  string
		want  Compression
		inner string
	}{
		{"zomato.csv", CompressionNone, "zomato.csv"},
		{"zomato.csv.gz", CompressionGzip, "zomato.csv"},
		{"zomato.csv.zst", CompressionZstd, "zomato.csv"},
		{"features.tsv.LZ4", CompressionLZ4, "features.tsv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, inner := DetectCompression(tt.name)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.inner, inner)
		})
	}
}

func TestDecompress(t *testing.T) {
	data := bytes.Repeat([]byte("Toit,Bangalore,Pubs,4.7,12000,1500\n"), 200)

	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			r, err := Decompress(c, bytes.NewReader(compress(t, c, data)))
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	_, err := Decompress(CompressionGzip, bytes.NewReader([]byte("not gzip")))
	assert.Error(t, err)
}
