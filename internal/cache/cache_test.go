package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLazy_ComputesOnce(t *testing.T) {
	var l Lazy[string]

	callCount := 0
	fn := func() string {
		callCount++
		return "computed"
	}

	assert.False(t, l.Loaded())

	// First call should invoke the function
	assert.Equal(t, "computed", l.Get(fn))
	assert.Equal(t, 1, callCount)
	assert.True(t, l.Loaded())

	// Second call should use stored value
	assert.Equal(t, "computed", l.Get(fn))
	assert.Equal(t, 1, callCount)
}

func TestLazy_CachesFallback(t *testing.T) {
	var l Lazy[int]

	query := func() (int, error) { return 0, errors.New("sensor missing") }

	callCount := 0
	fn := func() int {
		callCount++
		v, err := query()
		if err != nil {
			return -1
		}
		return v
	}

	assert.Equal(t, -1, l.Get(fn))
	assert.Equal(t, -1, l.Get(fn))
	assert.Equal(t, 1, callCount) // failures are not retried
}

func TestLazy_ZeroValueIsStored(t *testing.T) {
	var l Lazy[int]

	callCount := 0
	fn := func() int {
		callCount++
		return 0
	}

	assert.Equal(t, 0, l.Get(fn))
	assert.Equal(t, 0, l.Get(fn))
	assert.Equal(t, 1, callCount)
}

func TestLazy_ConcurrentAccess(t *testing.T) {
	var l Lazy[int64]
	var counter atomic.Int64

	fn := func() int64 {
		return counter.Add(1)
	}

	var wg sync.WaitGroup
	results := make([]int64, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Get(fn)
		}(i)
	}
	wg.Wait()

	// Everyone sees the single published value
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
	assert.Equal(t, results[0], l.Get(fn))
}
