package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
)

func TestFutureSetOnce(t *testing.T) {
	assert := assert_.New(t)
	f := NewFuture[string]()
	assert.False(f.IsSet())
	select {
	case <-f.Done():
		assert.Fail("<-f.Done() should be blocking")
	default:
	}
	assert.True(f.Set("first"))
	assert.False(f.Set("second"))
	assert.True(f.IsSet())
	assert.Equal("first", f.Get())
}

func TestFutureWaiters(t *testing.T) {
	assert := assert_.New(t)
	f := NewFuture[int]()
	results := make(chan int, 100)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.Get()
		}()
	}
	f.Set(42)
	wg.Wait()
	close(results)
	count := 0
	for v := range results {
		assert.Equal(42, v)
		count++
	}
	assert.Equal(100, count)
}

func TestFutureConcurrentSet(t *testing.T) {
	assert := assert_.New(t)
	f := NewFuture[int]()
	start := NewEvent()
	var wins sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wins.Add(1)
		go func(i int) {
			defer wins.Done()
			<-start.Wait()
			if f.Set(i) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	start.Set()
	wins.Wait()
	assert.Equal(1, winners)
}

func TestFutureWaitContext(t *testing.T) {
	assert := assert_.New(t)
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)

	// Giving up does not prevent the value being set later
	f.Set(7)
	v, err := f.Wait(context.Background())
	assert.NoError(err)
	assert.Equal(7, v)

	assert.Equal("done", ResolvedFuture("done").Get())
}
