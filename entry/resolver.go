// Package entry resolves video and playlist ids into objects whose fields are filled in lazily, in batches, by a
// DataSource.
package entry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/async"
	"github.com/alanbriolat/video-resolver/internal/cache"
)

var ErrNotEntry = errors.New("URI does not refer to a video or playlist")

// An AudioExtractor turns a video id into a direct stream URL.
type AudioExtractor interface {
	AudioURL(ctx context.Context, videoID string) (string, error)
}

// Resolver owns the identity maps and the worker pool that fills in entry fields. Every job it runs uses the
// context it was created with, so in-flight jobs stop only when that context is cancelled.
type Resolver struct {
	ctx    context.Context
	source vr.DataSource
	audio  AudioExtractor
	pool   *async.Pool

	videos    *cache.Identity[*Video]
	playlists *cache.Identity[*Playlist]

	searchResults     int
	playlistMaxVideos int

	log *zap.SugaredLogger
}

// New creates a Resolver backed by source. audio may be nil, in which case AudioURL always resolves to None.
func New(ctx context.Context, source vr.DataSource, audio AudioExtractor, config vr.Config) (*Resolver, error) {
	r := &Resolver{
		ctx:               ctx,
		source:            source,
		audio:             audio,
		pool:              async.NewPool(config.MaxWorkers),
		searchResults:     config.SearchResults,
		playlistMaxVideos: config.PlaylistMaxVideos,
		log:               vr.Logger(ctx).Sugar().Named("resolver"),
	}
	var err error
	if r.videos, err = cache.NewIdentity[*Video]("videos", config.CacheSize); err != nil {
		return nil, fmt.Errorf("video cache: %w", err)
	}
	if r.playlists, err = cache.NewIdentity[*Playlist]("playlists", config.CacheSize); err != nil {
		return nil, fmt.Errorf("playlist cache: %w", err)
	}
	return r, nil
}

func (r *Resolver) Source() vr.DataSource {
	return r.source
}

func (r *Resolver) Pool() *async.Pool {
	return r.pool
}

// Video returns the one Video object for id, creating it if necessary.
func (r *Resolver) Video(id string) *Video {
	return r.videos.Get(id, func() *Video {
		return &Video{entry: newEntry(r, id)}
	})
}

// Playlist returns the one Playlist object for id, creating it if necessary.
func (r *Resolver) Playlist(id string) *Playlist {
	return r.playlists.Get(id, func() *Playlist {
		return &Playlist{entry: newEntry(r, id)}
	})
}

// Lookup returns the Video or Playlist a URI refers to.
func (r *Resolver) Lookup(uri string) (Entry, error) {
	ref, err := vr.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	switch ref.Kind {
	case vr.RefVideo:
		return r.Video(ref.ID), nil
	case vr.RefPlaylist:
		return r.Playlist(ref.ID), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrNotEntry, ref)
	}
}

// Search returns up to SearchResults videos and playlists matching query, and starts loading their info in the
// background. A failed search is logged and returns no results.
func (r *Resolver) Search(ctx context.Context, query string) []Entry {
	items, err := r.source.Search(ctx, query)
	if err != nil {
		r.log.Warnw("search failed", "query", query, "error", err)
		return nil
	}
	var entries []Entry
	var videos []*Video
	var playlists []*Playlist
	for i := range items {
		if r.searchResults > 0 && len(entries) >= r.searchResults {
			break
		}
		item := &items[i]
		if id := item.PlaylistID(); id != "" {
			p := r.Playlist(id)
			p.absorb(item)
			playlists = append(playlists, p)
			entries = append(entries, p)
		} else if id := item.VideoID(); id != "" {
			v := r.Video(id)
			v.absorb(item)
			videos = append(videos, v)
			entries = append(entries, v)
		} else {
			r.log.Debugw("skipping search result", "kind", item.ID.Kind)
		}
	}
	r.LoadVideoInfo(videos)
	r.LoadPlaylistInfo(playlists)
	return entries
}

// ChannelPlaylists returns the playlists published by a channel, and starts loading their info in the background.
// A failure is logged and returns no playlists.
func (r *Resolver) ChannelPlaylists(ctx context.Context, channelID string) []*Playlist {
	items, err := r.source.ListChannelPlaylists(ctx, channelID)
	if err != nil {
		r.log.Warnw("listing channel playlists failed", "channel", channelID, "error", err)
		return nil
	}
	var playlists []*Playlist
	for i := range items {
		if id := items[i].PlaylistID(); id != "" {
			p := r.Playlist(id)
			p.absorb(&items[i])
			playlists = append(playlists, p)
		}
	}
	r.LoadPlaylistInfo(playlists)
	return playlists
}

// videosFromItems maps items onto Video objects, skipping items without a video id.
func (r *Resolver) videosFromItems(items vr.ItemList) []*Video {
	videos := make([]*Video, 0, len(items))
	for i := range items {
		id := items[i].VideoID()
		if id == "" {
			r.log.Debugw("skipping item without video id", "kind", items[i].ID.Kind)
			continue
		}
		v := r.Video(id)
		v.absorb(&items[i])
		videos = append(videos, v)
	}
	return videos
}

// run submits a job to the pool. Whatever happens to the job, cells it owns are resolved to None once it finishes.
func (r *Resolver) run(owned cells, job func()) {
	r.pool.Run(func() {
		defer func() {
			if n := owned.release(); n > 0 {
				r.log.Debugw("resolved unfilled fields to none", "count", n)
			}
		}()
		job()
	})
}
