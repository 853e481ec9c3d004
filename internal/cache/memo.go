package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// DefaultEntries is the default Memo capacity.
const DefaultEntries = 16

// Memo memoizes computations by Key. The zero value is not usable; a nil
// *Memo computes every value without caching.
type Memo struct {
	lru   *LRU[Key, any]
	group singleflight.Group
}

// NewMemo creates a memo holding at most entries results.
func NewMemo(entries int) *Memo {
	return &Memo{lru: NewLRU[Key, any](entries)}
}

// Stats returns the underlying cache counters.
func (m *Memo) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return m.lru.Stats()
}

// Len returns the number of cached results.
func (m *Memo) Len() int {
	if m == nil {
		return 0
	}
	return m.lru.Len()
}

// Forget drops every entry of kind.
func (m *Memo) Forget(kind Kind) {
	if m == nil {
		return
	}
	m.lru.Invalidate(func(k Key) bool { return k.Kind == kind })
}

// Load returns the value cached under key or computes it with fn.
// Concurrent callers with the same key share one call of fn, which runs
// detached from ctx cancellation; a canceled caller returns ctx.Err() while
// the others keep waiting for the result. Errors are not cached. The boolean
// reports whether the value came from the cache.
func Load[V any](ctx context.Context, m *Memo, key Key, fn func(context.Context) (V, error)) (V, bool, error) {
	if m == nil {
		v, err := fn(ctx)
		return v, false, err
	}

	if v, ok := m.lru.Get(key); ok {
		if typed, ok := v.(V); ok {
			return typed, true, nil
		}
	}

	if err := ctx.Err(); err != nil {
		var zero V
		return zero, false, err
	}

	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key.String(), func() (any, error) {
		res, err := fn(detached)
		if err != nil {
			return nil, err
		}
		m.lru.Set(key, res)
		return res, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	}
	if res.Err != nil {
		var zero V
		return zero, false, res.Err
	}
	v := res.Val

	typed, ok := v.(V)
	if !ok {
		var zero V
		return zero, false, fmt.Errorf("cache: %s holds %T", key, v)
	}
	return typed, res.Shared, nil
}
