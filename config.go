package video_resolver

import (
	"net/http"
	"time"

	"github.com/alanbriolat/video-resolver/internal/httpx"
)

// Config holds everything needed to open a backend and run a resolution session.
type Config struct {
	// Backend is the preferred DataSource name; others are tried in priority order if it can't be used.
	Backend string
	// APIKey for the official Data API backend.
	APIKey string
	// HTTPClient used by all backends; if nil, one is built from HTTPTimeout and RequestsPerSecond.
	HTTPClient  *http.Client
	HTTPTimeout time.Duration
	// RequestsPerSecond limits outbound requests (0 for unlimited).
	RequestsPerSecond float64

	// SearchResults is the maximum number of entries returned by a search.
	SearchResults int
	// PlaylistMaxVideos caps both the enumerated videos of a playlist and its reported video count.
	PlaylistMaxVideos int
	// MaxWorkers is the most concurrent backend jobs.
	MaxWorkers int
	// CacheSize is the capacity of each identity cache (videos, playlists).
	CacheSize int

	// MaxDegreesOfSeparation bounds how far autoplay wanders from its seed video (0 for unbounded).
	MaxDegreesOfSeparation int
	// MaxAutoplayLength excludes longer autoplay candidates, in seconds (0 for no limit).
	MaxAutoplayLength int

	// StorePath enables a persistent item store at that path.
	StorePath string
	// StoreTTL is how long stored items are considered fresh.
	StoreTTL time.Duration
}

var DefaultConfig = Config{
	Backend:                "api",
	HTTPTimeout:            20 * time.Second,
	RequestsPerSecond:      10,
	SearchResults:          15,
	PlaylistMaxVideos:      20,
	MaxWorkers:             15,
	CacheSize:              400,
	MaxDegreesOfSeparation: 3,
	MaxAutoplayLength:      600,
	StoreTTL:               24 * time.Hour,
}

// Client returns HTTPClient, or a rate limited client built from the other HTTP settings.
func (c Config) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return httpx.NewClient(httpx.Options{
		Timeout:           c.HTTPTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		RetryMax:          httpx.DefaultRetryMax,
	})
}
