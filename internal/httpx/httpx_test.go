package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestUserAgent(t *testing.T) {
	assert := assert_.New(t)
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	c := NewClient(Options{})
	resp, err := c.Get(srv.URL)
	if assert.NoError(err) {
		resp.Body.Close()
	}
	assert.True(strings.HasPrefix(seen.Load().(string), "Mozilla/5.0"))

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom")
	resp, err = c.Do(req)
	if assert.NoError(err) {
		resp.Body.Close()
	}
	assert.Equal("custom", seen.Load())
}

func TestRetry(t *testing.T) {
	assert := assert_.New(t)
	var calls int32
	failing := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset")
	})

	c := NewClient(Options{RetryMax: 2, Base: failing})
	_, err := c.Get("http://example.invalid/")
	assert.Error(err)
	assert.Equal(int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	_, err = c.Post("http://example.invalid/", "text/plain", strings.NewReader("x"))
	assert.Error(err)
	assert.Equal(int32(1), atomic.LoadInt32(&calls), "requests with a body are not replayed")
}

func TestRateLimit(t *testing.T) {
	assert := assert_.New(t)
	tr := NewTransport(Options{RequestsPerSecond: 5})
	if assert.NotNil(tr.Limiter) {
		assert.Equal(1, tr.Limiter.Burst())
	}
	assert.Nil(NewTransport(Options{}).Limiter)
}
