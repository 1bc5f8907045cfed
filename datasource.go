package video_resolver

import (
	"context"
	"errors"
)

var (
	// ErrExhausted means a backend cannot currently serve requests at all, e.g. an invalid API key or exceeded quota.
	ErrExhausted = errors.New("backend exhausted")
	// ErrUnsupported is returned by a backend for an operation it has no way of performing.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// Item kinds, as they appear in ItemID.Kind.
const (
	KindVideo    = "youtube#video"
	KindPlaylist = "youtube#playlist"
	KindChannel  = "youtube#channel"
)

// MaxBatchSize is the most ids any backend accepts in one ListVideos/ListPlaylists call, and the largest page size
// for ListPlaylistItems.
const MaxBatchSize = 50

// A DataSource is a backend that can answer metadata queries, normalizing whatever it gets from upstream into an
// ItemList. Implementations must be safe for concurrent use.
type DataSource interface {
	// Search returns videos and playlists matching the query.
	Search(ctx context.Context, query string) (ItemList, error)
	// ListVideos returns an item for each of the ids that could be found (in any order, possibly fewer than asked).
	ListVideos(ctx context.Context, ids []string) (ItemList, error)
	// ListPlaylists is like ListVideos, but for playlists.
	ListPlaylists(ctx context.Context, ids []string) (ItemList, error)
	// ListPlaylistItems returns one page of at most maxResults playlist items, and the token for the next page
	// ("" if there are no more pages).
	ListPlaylistItems(ctx context.Context, id string, pageToken string, maxResults int) (string, ItemList, error)
	// ListRelatedVideos returns videos related to the given video.
	ListRelatedVideos(ctx context.Context, id string) (ItemList, error)
	// ListChannelPlaylists returns the playlists published by a channel.
	ListChannelPlaylists(ctx context.Context, channelID string) (ItemList, error)
}

// A Verifier is a DataSource that can check up front whether it is usable. A failure wrapping ErrExhausted means
// another backend should be used instead.
type Verifier interface {
	Verify(ctx context.Context) error
}

type ItemID struct {
	Kind       string `json:"kind"`
	VideoID    string `json:"videoId,omitempty"`
	PlaylistID string `json:"playlistId,omitempty"`
	ChannelID  string `json:"channelId,omitempty"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Thumbnail quality names, smallest first.
var ThumbnailSizes = []string{"default", "medium", "high", "standard", "maxres"}

type Snippet struct {
	Title        string               `json:"title"`
	ChannelTitle string               `json:"channelTitle"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails,omitempty"`
	// ResourceID is set on playlist items, and identifies the video the item refers to.
	ResourceID *ItemID `json:"resourceId,omitempty"`
}

type ContentDetails struct {
	// Duration of a video, in the "PT#H#M#S" form understood by ParseDuration.
	Duration string `json:"duration,omitempty"`
	// ItemCount of a playlist; nil if unknown.
	ItemCount *int `json:"itemCount,omitempty"`
}

// Item is the normalized shape every backend produces, modelled on the Data API's resources.
type Item struct {
	ID             ItemID         `json:"id"`
	Snippet        Snippet        `json:"snippet"`
	ContentDetails ContentDetails `json:"contentDetails"`
}

// VideoID returns the id of the video this item describes or refers to, or "" if it isn't a video.
func (i *Item) VideoID() string {
	if i.Snippet.ResourceID != nil && i.Snippet.ResourceID.VideoID != "" {
		return i.Snippet.ResourceID.VideoID
	}
	if i.ID.Kind == KindVideo || i.ID.Kind == "" {
		return i.ID.VideoID
	}
	return ""
}

// PlaylistID returns the id of the playlist this item describes, or "" if it isn't a playlist.
func (i *Item) PlaylistID() string {
	if i.ID.Kind == KindPlaylist || i.ID.Kind == "" {
		return i.ID.PlaylistID
	}
	return ""
}

// ThumbnailURLs returns the thumbnail URLs in ThumbnailSizes order, followed by any other sizes.
func (i *Item) ThumbnailURLs() []string {
	var urls []string
	seen := make(map[string]bool, len(i.Snippet.Thumbnails))
	for _, size := range ThumbnailSizes {
		if t, ok := i.Snippet.Thumbnails[size]; ok && t.URL != "" {
			urls = append(urls, t.URL)
			seen[size] = true
		}
	}
	for size, t := range i.Snippet.Thumbnails {
		if !seen[size] && t.URL != "" {
			urls = append(urls, t.URL)
		}
	}
	return urls
}

type ItemList []Item

// ByVideoID indexes the list by VideoID, skipping items that have none.
func (l ItemList) ByVideoID() map[string]*Item {
	m := make(map[string]*Item, len(l))
	for i := range l {
		if id := l[i].VideoID(); id != "" {
			m[id] = &l[i]
		}
	}
	return m
}

// ByPlaylistID indexes the list by PlaylistID, skipping items that have none.
func (l ItemList) ByPlaylistID() map[string]*Item {
	m := make(map[string]*Item, len(l))
	for i := range l {
		if id := l[i].PlaylistID(); id != "" {
			m[id] = &l[i]
		}
	}
	return m
}

// NewVideoItem is a shortcut for the common fields of a video item.
func NewVideoItem(id, title, channel, duration string) Item {
	return Item{
		ID:             ItemID{Kind: KindVideo, VideoID: id},
		Snippet:        Snippet{Title: title, ChannelTitle: channel},
		ContentDetails: ContentDetails{Duration: duration},
	}
}

// NewPlaylistItem is a shortcut for the common fields of a playlist item; a negative count means unknown.
func NewPlaylistItem(id, title, channel string, count int) Item {
	item := Item{
		ID:      ItemID{Kind: KindPlaylist, PlaylistID: id},
		Snippet: Snippet{Title: title, ChannelTitle: channel},
	}
	if count >= 0 {
		item.ContentDetails.ItemCount = &count
	}
	return item
}
