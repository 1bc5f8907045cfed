package sync

import (
	"sync"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

// Verify that intended interfaces are implemented
var _ RMutexer[int] = NewMutexed(123)
var _ Mutexer[int] = NewMutexed(123)

func TestSimple(t *testing.T) {
	assert := assert_.New(t)
	m := NewMutexed(123)
	assert.Equal(123, m.Get())
	assert.Equal(123, m.Swap(456))
	assert.Equal(456, m.Get())
	m.Set(789)
	assert.Equal(789, m.Get())
}

func TestRace(t *testing.T) {
	assert := assert_.New(t)
	m := NewMutexed(map[string]int{})
	start := NewEvent()
	wg := sync.WaitGroup{}

	// Increment by 2500 with 50 goroutines in parallel
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start.Wait()
			for j := 0; j < 50; j++ {
				_ = m.Locked(func(v map[string]int) error {
					v["count"]++
					return nil
				})
			}
		}()
	}

	start.Set()
	wg.Wait()

	_ = m.Locked(func(v map[string]int) error {
		assert.Equal(2500, v["count"])
		return nil
	})
}
