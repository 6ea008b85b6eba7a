package investments

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	counter := map[uint]int{}
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(key uint) {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()

			mu.Lock()
			v := counter[key]
			mu.Unlock()
			mu.Lock()
			counter[key] = v + 1
			mu.Unlock()
		}(uint(i % 3))
	}
	wg.Wait()

	assert.Equal(t, 34, counter[0])
	assert.Equal(t, 33, counter[1])
	assert.Equal(t, 33, counter[2])
	assert.Zero(t, k.size())
}
