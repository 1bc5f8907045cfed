// Package httpx builds the HTTP client shared by every backend: rate limited, with a rotating User-Agent and bounded
// retries for requests that can be replayed.
package httpx

import (
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout  = 20 * time.Second
	DefaultRetryMax = 2
)

type Options struct {
	Timeout time.Duration
	// RequestsPerSecond of 0 disables rate limiting.
	RequestsPerSecond float64
	// Burst defaults to 1 when rate limiting is enabled.
	Burst int
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	// Base transport, http.DefaultTransport if nil.
	Base http.RoundTripper
}

type Transport struct {
	Base     http.RoundTripper
	Limiter  *rate.Limiter
	RetryMax int

	ua  *uaPool
	log *zap.SugaredLogger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	limit := t.RetryMax
	if limit < 0 || !canRetry(req) {
		limit = 0
	}

	var lastErr error
	for attempt := 0; attempt <= limit; attempt++ {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", t.ua.random())
		}
		resp, err := base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
		t.log.Debugw("retrying request", "url", req.URL.String(), "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func canRetry(req *http.Request) bool {
	return (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
}

// NewTransport wraps opts.Base with rate limiting, User-Agent rotation and retries.
func NewTransport(opts Options) *Transport {
	t := &Transport{
		Base:     opts.Base,
		RetryMax: opts.RetryMax,
		ua:       globalUA,
		log:      zap.S().Named("httpx"),
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		t.Limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return t
}

func NewClient(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: NewTransport(opts),
		Timeout:   timeout,
	}
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = &uaPool{
	rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	uas: []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	},
}
