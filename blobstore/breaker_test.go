package blobstore

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	*MemoryStore
	err   error
	calls int
}

func (s *flakyStore) Open(ctx context.Context, name string) (Blob, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.Open(ctx, name)
}

func TestBreakerStore_Trips(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(), err: errors.New("connection reset")}

	var transitions []gobreaker.State
	settings := DefaultBreakerSettings("test")
	settings.ConsecutiveFailures = 3
	settings.OnStateChange = func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}
	store := NewBreakerStore(inner, settings)

	for range 3 {
		_, err := store.Open(context.Background(), "x")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	_, err := store.Open(context.Background(), "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerStore_NotFoundIsNotAFailure(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore()}
	settings := DefaultBreakerSettings("test")
	settings.ConsecutiveFailures = 1
	store := NewBreakerStore(inner, settings)

	for range 3 {
		_, err := store.Open(context.Background(), "missing")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestBreakerStore_Passthrough(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "a.csv", []byte("hello")))

	store := NewBreakerStore(mem, DefaultBreakerSettings("test"))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, names)

	data, err := ReadAll(ctx, store, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
