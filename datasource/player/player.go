// Package player is a DataSource that reads video and playlist details through the same player API the YouTube
// web client uses, via github.com/kkdai/youtube.
package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/datasource/scrape"
)

const Name = "player"

var ErrInvalidToken = errors.New("invalid page token")

// Client is the part of *youtube.Client used here.
type Client interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
}

type Source struct {
	client Client
	// fallback answers the listings the player API can't: search, related videos and channel playlists
	fallback vr.DataSource
	log      *zap.SugaredLogger
}

func New(client Client, fallback vr.DataSource) *Source {
	return &Source{
		client:   client,
		fallback: fallback,
		log:      zap.S().Named(Name),
	}
}

// NewClient creates a kkdai client sharing httpClient.
func NewClient(httpClient *http.Client) *youtube.Client {
	return &youtube.Client{HTTPClient: httpClient}
}

func (s *Source) Search(ctx context.Context, query string) (vr.ItemList, error) {
	return s.fallback.Search(ctx, query)
}

// ListVideos fetches each video in turn. Videos that can't be fetched (private, removed, invalid) are logged and
// left out.
func (s *Source) ListVideos(ctx context.Context, ids []string) (vr.ItemList, error) {
	var items vr.ItemList
	for _, id := range ids {
		video, err := s.client.GetVideoContext(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			s.log.Warnw("fetching video failed", "id", id, "error", err)
			continue
		}
		duration := vr.FormatDuration(int(video.Duration.Seconds()))
		items = append(items, videoItem(video.ID, video.Title, video.Author, duration, video.Thumbnails))
	}
	return items, nil
}

func (s *Source) ListPlaylists(ctx context.Context, ids []string) (vr.ItemList, error) {
	var items vr.ItemList
	for _, id := range ids {
		playlist, err := s.client.GetPlaylistContext(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			s.log.Warnw("fetching playlist failed", "id", id, "error", err)
			continue
		}
		item := vr.NewPlaylistItem(id, playlist.Title, playlist.Author, len(playlist.Videos))
		if len(playlist.Videos) > 0 {
			item.Snippet.Thumbnails = thumbnails(playlist.Videos[0].Thumbnails)
		}
		items = append(items, item)
	}
	return items, nil
}

// ListPlaylistItems fetches the whole playlist and returns a slice of it; page tokens are offsets.
func (s *Source) ListPlaylistItems(ctx context.Context, id string, pageToken string, maxResults int) (string, vr.ItemList, error) {
	offset := 0
	if pageToken != "" {
		var err error
		if offset, err = strconv.Atoi(pageToken); err != nil || offset < 0 {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidToken, pageToken)
		}
	}
	playlist, err := s.client.GetPlaylistContext(ctx, id)
	if err != nil {
		return "", nil, err
	}
	entries := playlist.Videos
	if offset >= len(entries) {
		return "", nil, nil
	}
	end := len(entries)
	if maxResults > 0 && offset+maxResults < end {
		end = offset + maxResults
	}
	items := make(vr.ItemList, 0, end-offset)
	for _, e := range entries[offset:end] {
		// playlist entries without a duration haven't got one yet, rather than being live
		duration := ""
		if e.Duration > 0 {
			duration = vr.FormatDuration(int(e.Duration.Seconds()))
		}
		item := videoItem(e.ID, e.Title, e.Author, duration, e.Thumbnails)
		resource := item.ID
		item.ID = vr.ItemID{Kind: "youtube#playlistItem"}
		item.Snippet.ResourceID = &resource
		items = append(items, item)
	}
	next := ""
	if end < len(entries) {
		next = strconv.Itoa(end)
	}
	return next, items, nil
}

func (s *Source) ListRelatedVideos(ctx context.Context, id string) (vr.ItemList, error) {
	return s.fallback.ListRelatedVideos(ctx, id)
}

func (s *Source) ListChannelPlaylists(ctx context.Context, channelID string) (vr.ItemList, error) {
	return s.fallback.ListChannelPlaylists(ctx, channelID)
}

func videoItem(id, title, author, duration string, thumbs youtube.Thumbnails) vr.Item {
	item := vr.NewVideoItem(id, title, author, duration)
	item.Snippet.Thumbnails = thumbnails(thumbs)
	return item
}

// thumbnails names the sizes in the order kkdai returns them, which is smallest first.
func thumbnails(thumbs youtube.Thumbnails) map[string]vr.Thumbnail {
	if len(thumbs) == 0 {
		return nil
	}
	out := make(map[string]vr.Thumbnail, len(thumbs))
	for i, t := range thumbs {
		name := "size" + strconv.Itoa(i)
		if i < len(vr.ThumbnailSizes) {
			name = vr.ThumbnailSizes[i]
		}
		out[name] = vr.Thumbnail{URL: t.URL, Width: int(t.Width), Height: int(t.Height)}
	}
	return out
}

func init() {
	vr.DefaultRegistry.MustCreate(Name, func(config vr.Config) (vr.DataSource, error) {
		client := config.Client()
		return New(NewClient(client), scrape.New(client, "")), nil
	}, vr.PriorityLowest)
}

var _ vr.DataSource = (*Source)(nil)
