package dataset

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/dinecluster/blobstore"
	"github.com/hupe1980/dinecluster/resource"
	"github.com/hupe1980/dinecluster/table"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// remoteReadSize is the buffer, and so the ranged-read size, for non-mapped blobs.
const remoteReadSize = 1 << 20

// ErrTooLarge is returned when a file exceeds the controller's memory limit.
var ErrTooLarge = errors.New("dataset: file exceeds memory limit")

// Tables is the result of a Load.
type Tables struct {
	Canonical table.CanonicalTable
	Features  table.FeatureTable
}

// Loader reads dataset files from a BlobStore.
type Loader struct {
	store  blobstore.BlobStore
	rc     *resource.Controller
	logger zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithController bounds loads with rc.
func WithController(rc *resource.Controller) Option {
	return func(l *Loader) { l.rc = rc }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader over store.
func NewLoader(store blobstore.BlobStore, opts ...Option) *Loader {
	l := &Loader{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads both tables concurrently.
func (l *Loader) Load(ctx context.Context, canonical, features string) (*Tables, error) {
	var out Tables

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := l.LoadCanonical(gctx, canonical)
		out.Canonical = t
		return err
	})
	g.Go(func() error {
		t, err := l.LoadFeatures(gctx, features)
		out.Features = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &out, nil
}

// LoadCanonical reads the canonical restaurant table.
func (l *Loader) LoadCanonical(ctx context.Context, name string) (table.CanonicalTable, error) {
	var out table.CanonicalTable
	err := l.read(ctx, name, func(r io.Reader, delim rune) error {
		t, err := ParseCanonical(r, delim)
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFeatures reads the clustering feature table.
func (l *Loader) LoadFeatures(ctx context.Context, name string) (table.FeatureTable, error) {
	var out table.FeatureTable
	err := l.read(ctx, name, func(r io.Reader, delim rune) error {
		t, err := ParseFeatures(r, delim)
		out = t
		return err
	})
	if err != nil {
		return table.FeatureTable{}, err
	}
	return out, nil
}

func (l *Loader) read(ctx context.Context, name string, parse func(io.Reader, rune) error) error {
	start := time.Now()

	if err := l.rc.AcquireLoad(ctx); err != nil {
		return err
	}
	defer l.rc.ReleaseLoad()

	blob, err := l.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	size := blob.Size()
	if limit := l.rc.Config().MemoryLimitBytes; limit > 0 && size > limit {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, name, size, limit)
	}
	if err := l.rc.AcquireMemory(ctx, size); err != nil {
		return err
	}
	defer l.rc.ReleaseMemory(size)

	var src io.Reader
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return err
		}
		src = bytes.NewReader(data)
	} else {
		src = bufio.NewReaderSize(resource.NewRateLimitedReader(ctx, blobstore.NewReader(blob), l.rc), remoteReadSize)
	}

	comp, inner := DetectCompression(name)
	rc, err := Decompress(comp, src)
	if err != nil {
		return fmt.Errorf("dataset: %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	var body io.Reader = rc
	if limit := l.rc.Config().MemoryLimitBytes; limit > 0 && comp != CompressionNone {
		body = &capReader{r: rc, remaining: limit, name: name, limit: limit}
	}

	if err := parse(body, Delimiter(inner)); err != nil {
		return fmt.Errorf("dataset: parse %s: %w", name, err)
	}

	l.logger.Debug().
		Str("blob", name).
		Int64("bytes", size).
		Stringer("compression", comp).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")

	return nil
}

// capReader fails with ErrTooLarge once more than limit decompressed bytes
// have been read.
type capReader struct {
	r         io.Reader
	remaining int64
	limit     int64
	name      string
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, fmt.Errorf("%w: %s decompresses past %d bytes", ErrTooLarge, c.name, c.limit)
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, fmt.Errorf("%w: %s decompresses past %d bytes", ErrTooLarge, c.name, c.limit)
	}
	return n, err
}
