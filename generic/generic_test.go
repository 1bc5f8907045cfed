package generic

import (
	"errors"
	"sort"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	assert := assert_.New(t)

	s := NewSet[int]()
	assert.Equal(0, s.Count())
	assert.False(s.Contains(1))
	assert.True(s.Add(1))
	assert.Equal(1, s.Count())
	assert.True(s.Contains(1))
	assert.False(s.Add(1))
	assert.Equal(1, s.Count())
	assert.True(s.Remove(1))
	assert.Equal(0, s.Count())
	assert.False(s.Remove(1))

	s3 := NewSet(1, 2, 3)
	assert.True(s3.Contains(1, 3))
	assert.False(s3.Contains(1, 4))
	items := s3.ToSlice()
	sort.Ints(items)
	assert.Equal([]int{1, 2, 3}, items)
	s3.Clear()
	assert.Equal(0, s3.Count())
}

func TestOption(t *testing.T) {
	assert := assert_.New(t)

	var zero Option[string]
	assert.True(zero.IsNone())
	assert.Equal("fallback", zero.UnwrapOr("fallback"))
	assert.Panics(func() { zero.Unwrap() })

	some := Some("value")
	v, ok := some.Get()
	assert.True(ok)
	assert.Equal("value", v)
	assert.Equal(some, zero.Or(some))

	length := Map(some, func(s string) int { return len(s) })
	assert.Equal(5, length.Unwrap())
	assert.True(Map(None[string](), func(s string) int { return len(s) }).IsNone())

	n := 3
	assert.Equal(3, FromPointer(&n).Unwrap())
	assert.True(FromPointer[int](nil).IsNone())
}

func TestResult(t *testing.T) {
	assert := assert_.New(t)

	ok := NewResult(123, nil)
	assert.True(ok.IsOk())
	assert.Equal(123, ok.Ok().Unwrap())

	bad := Err[int](errors.New("boom"))
	assert.True(bad.IsErr())
	assert.True(bad.Ok().IsNone())
	_, err := bad.Parts()
	assert.EqualError(err, "boom")
	assert.Panics(func() { bad.Unwrap() })
	assert.Panics(func() { Unwrap_(errors.New("boom")) })
	assert.NotPanics(func() { Unwrap_(nil) })
}
