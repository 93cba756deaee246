package cache

import "sync/atomic"

// Lazy holds a value that is computed on first access and never changes
// afterwards. The zero value is ready to use.
//
// Lazy does not lock. Concurrent first callers may each run compute, but
// only one result is published and every caller returns that one.
type Lazy[T any] struct {
	value atomic.Pointer[T]
}

// Get returns the stored value, computing and storing it if needed.
// Whatever compute returns is kept, fallback values included.
func (l *Lazy[T]) Get(compute func() T) T {
	if v := l.value.Load(); v != nil {
		return *v
	}

	v := compute()
	if l.value.CompareAndSwap(nil, &v) {
		return v
	}
	return *l.value.Load()
}

// Loaded reports whether a value has been stored
func (l *Lazy[T]) Loaded() bool {
	return l.value.Load() != nil
}
