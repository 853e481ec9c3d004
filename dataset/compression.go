package dataset

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec of a dataset file.
type Compression uint8

const (
	// CompressionNone is an uncompressed file.
	CompressionNone Compression = iota
	// CompressionGzip is a ".gz" file.
	CompressionGzip
	// CompressionZstd is a ".zst" file.
	CompressionZstd
	// CompressionLZ4 is a ".lz4" frame file.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// DetectCompression returns the codec for name and the name without its
// compression suffix.
func DetectCompression(name string) (Compression, string) {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".gz", ".gzip":
		return CompressionGzip, strings.TrimSuffix(name, path.Ext(name))
	case ".zst", ".zstd":
		return CompressionZstd, strings.TrimSuffix(name, path.Ext(name))
	case ".lz4":
		return CompressionLZ4, strings.TrimSuffix(name, path.Ext(name))
	default:
		return CompressionNone, name
	}
}

// Decompress wraps r in a decoder for c. The caller must close the result;
// closing does not close r.
func Decompress(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("dataset: gzip: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("dataset: unsupported compression %s", c)
	}
}

// Compress is the inverse of Decompress.
func Compress(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd: %w", err)
		}
		return enc, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("dataset: unsupported compression %s", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
