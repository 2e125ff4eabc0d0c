package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Monotonic(t *testing.T) {
	var s Sequence
	assert.Equal(t, int64(0), s.Current())
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
	assert.Equal(t, int64(2), s.Current())
}

func TestSequence_ConcurrentUnique(t *testing.T) {
	var s Sequence
	const n = 100

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := s.Next()
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	assert.Equal(t, int64(n), s.Current())
}

func TestSystem_AfterFuncStop(t *testing.T) {
	var c Clock = System{}

	fired := make(chan struct{})
	timer := c.AfterFunc(time.Hour, func() { close(fired) })
	assert.True(t, timer.Stop(), "pending timer stops")
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.Fail(t, "timer did not fire")
	}
}
