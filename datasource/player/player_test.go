package player

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"

	"github.com/alanbriolat/video-resolver/internal/fakesource"
)

type fakeClient struct {
	videos    map[string]*youtube.Video
	playlists map[string]*youtube.Playlist
}

func (c *fakeClient) GetVideoContext(ctx context.Context, id string) (*youtube.Video, error) {
	if v, ok := c.videos[id]; ok {
		return v, nil
	}
	return nil, youtube.ErrVideoPrivate
}

func (c *fakeClient) GetPlaylistContext(ctx context.Context, id string) (*youtube.Playlist, error) {
	if p, ok := c.playlists[id]; ok {
		return p, nil
	}
	return nil, errors.New("playlist not found")
}

func newFakeClient() *fakeClient {
	c := &fakeClient{
		videos: map[string]*youtube.Video{
			"a": {
				ID:       "a",
				Title:    "Video a",
				Author:   "Author",
				Duration: 3*time.Minute + 5*time.Second,
				Thumbnails: youtube.Thumbnails{
					{URL: "https://i.ytimg.com/vi/a/default.jpg", Width: 120, Height: 90},
					{URL: "https://i.ytimg.com/vi/a/mqdefault.jpg", Width: 320, Height: 180},
				},
			},
			"live": {ID: "live", Title: "Live", Author: "Author"},
		},
		playlists: map[string]*youtube.Playlist{},
	}
	p := &youtube.Playlist{ID: "PL", Title: "Playlist", Author: "Curator"}
	for i := 0; i < 7; i++ {
		p.Videos = append(p.Videos, &youtube.PlaylistEntry{
			ID:       fmt.Sprintf("e%d", i),
			Title:    fmt.Sprintf("Entry %d", i),
			Author:   "Uploader",
			Duration: time.Duration(i) * time.Minute,
		})
	}
	c.playlists["PL"] = p
	return c
}

func TestListVideos(t *testing.T) {
	assert := assert_.New(t)
	s := New(newFakeClient(), fakesource.New())

	items, err := s.ListVideos(context.Background(), []string{"a", "private", "live"})
	require_.NoError(t, err)
	byID := items.ByVideoID()
	require_.Len(t, byID, 2)
	assert.Equal("Video a", byID["a"].Snippet.Title)
	assert.Equal("PT3M5S", byID["a"].ContentDetails.Duration)
	assert.Equal("https://i.ytimg.com/vi/a/mqdefault.jpg", byID["a"].Snippet.Thumbnails["medium"].URL)
	assert.Equal("PT0S", byID["live"].ContentDetails.Duration)
}

func TestListPlaylists(t *testing.T) {
	assert := assert_.New(t)
	s := New(newFakeClient(), fakesource.New())

	items, err := s.ListPlaylists(context.Background(), []string{"PL", "nope"})
	require_.NoError(t, err)
	require_.Len(t, items, 1)
	assert.Equal("Playlist", items[0].Snippet.Title)
	assert.Equal(7, *items[0].ContentDetails.ItemCount)
}

func TestListPlaylistItems(t *testing.T) {
	assert := assert_.New(t)
	s := New(newFakeClient(), fakesource.New())
	ctx := context.Background()

	next, items, err := s.ListPlaylistItems(ctx, "PL", "", 5)
	require_.NoError(t, err)
	assert.Equal("5", next)
	require_.Len(t, items, 5)
	assert.Equal("e0", items[0].VideoID())
	assert.Equal("", items[0].ContentDetails.Duration, "no duration is unknown, not live")
	assert.Equal("PT4M", items[4].ContentDetails.Duration)

	next, items, err = s.ListPlaylistItems(ctx, "PL", next, 5)
	require_.NoError(t, err)
	assert.Equal("", next)
	assert.Len(items, 2)

	_, _, err = s.ListPlaylistItems(ctx, "PL", "x", 5)
	assert.ErrorIs(err, ErrInvalidToken)
	_, _, err = s.ListPlaylistItems(ctx, "nope", "", 5)
	assert.Error(err)
}

func TestDelegated(t *testing.T) {
	assert := assert_.New(t)
	fallback := fakesource.New()
	fallback.AddVideo("r", "PT1M")
	fallback.Related["a"] = []string{"r"}
	s := New(newFakeClient(), fallback)

	items, err := s.ListRelatedVideos(context.Background(), "a")
	require_.NoError(t, err)
	assert.Len(items, 1)
	_, err = s.Search(context.Background(), "q")
	assert.NoError(err)
	_, err = s.ListChannelPlaylists(context.Background(), "UC")
	assert.NoError(err)
	assert.Len(fallback.Calls(), 3)
}
