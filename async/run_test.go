package async

import (
	"fmt"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	assert := assert_.New(t)
	a := <-Run(func() string {
		return "dQw4w9WgXcQ"
	})
	assert.Equal("dQw4w9WgXcQ", a)
}

func TestRunResult(t *testing.T) {
	assert := assert_.New(t)
	a := <-RunResult(func() (int, error) {
		return 50, nil
	})
	assert.Equal(50, a.Value)
	assert.True(a.IsOk())
	b := <-RunResult(func() (int, error) {
		return 0, fmt.Errorf("quota exceeded")
	})
	assert.True(b.IsErr())
}
