package blobstore

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerSettings configures a BreakerStore.
type BreakerSettings struct {
	// Name identifies the breaker in state-change callbacks.
	Name string
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period after which closed-state counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures opens the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerSettings returns the settings used by NewBreakerStore when none are given.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:                name,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerStore guards a remote BlobStore with a circuit breaker.
//
// Missing blobs and caller cancellations do not count as failures.
// While the breaker is open, calls fail fast with gobreaker.ErrOpenState.
type BreakerStore struct {
	inner BlobStore
	cb    *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps inner.
func NewBreakerStore(inner BlobStore, s BreakerSettings) *BreakerStore {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: s.OnStateChange,
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{inner: inner, cb: cb}
}

// State returns the current breaker state.
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

// Open opens a blob through the breaker.
func (s *BreakerStore) Open(ctx context.Context, name string) (Blob, error) {
	v, err := s.cb.Execute(func() (any, error) {
		return s.inner.Open(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(Blob), nil
}

// List lists blobs through the breaker.
func (s *BreakerStore) List(ctx context.Context, prefix string) ([]string, error) {
	v, err := s.cb.Execute(func() (any, error) {
		return s.inner.List(ctx, prefix)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Fetch downloads a whole blob through the breaker.
func (s *BreakerStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	v, err := s.cb.Execute(func() (any, error) {
		return ReadAll(ctx, s.inner, name)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
