package cache

import (
	"fmt"
	"sync"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"
)

type object struct {
	id string
}

func TestIdentitySameInstance(t *testing.T) {
	assert := assert_.New(t)
	c, err := NewIdentity[*object]("videos", 10)
	require_.NoError(t, err)

	var created int
	create := func() *object {
		created++
		return &object{id: "a"}
	}
	a1 := c.Get("a", create)
	a2 := c.Get("a", create)
	assert.Same(a1, a2)
	assert.Equal(1, created)
}

func TestIdentityConcurrent(t *testing.T) {
	assert := assert_.New(t)
	c, err := NewIdentity[*object]("videos", 10)
	require_.NoError(t, err)

	results := make([]*object, 50)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get("x", func() *object { return &object{id: "x"} })
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(results[0], r)
	}
}

func TestIdentityEviction(t *testing.T) {
	assert := assert_.New(t)
	c, err := NewIdentity[*object]("playlists", 2)
	require_.NoError(t, err)

	a := c.Get("a", func() *object { return &object{id: "a"} })
	c.Get("b", func() *object { return &object{id: "b"} })
	// touch a so that b is least recently used
	c.Get("a", func() *object { return nil })
	c.Get("c", func() *object { return &object{id: "c"} })

	assert.Equal(2, c.Len())
	_, ok := c.Peek("b")
	assert.False(ok)
	got, ok := c.Peek("a")
	assert.True(ok)
	assert.Same(a, got)

	b := c.Get("b", func() *object { return &object{id: fmt.Sprint("b", 2)} })
	assert.Equal("b2", b.id)
}

func TestIdentityInvalidSize(t *testing.T) {
	_, err := NewIdentity[*object]("videos", 0)
	assert_.Error(t, err)
}
