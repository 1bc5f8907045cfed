package entry

import (
	vr "github.com/alanbriolat/video-resolver"
)

type Playlist struct {
	entry
}

func (p *Playlist) URI() string {
	return vr.PlaylistURI(p.id)
}

func (p *Playlist) Kind() vr.RefKind {
	return vr.RefPlaylist
}

func (p *Playlist) String() string {
	return p.URI()
}

func playlistInfo[T any](p *Playlist, f Field) Value[T] {
	p.r.LoadPlaylistInfo([]*Playlist{p})
	c, _ := peek[T](&p.entry, f)
	return c
}

func (p *Playlist) Title() Value[string] {
	return playlistInfo[string](p, FieldTitle)
}

func (p *Playlist) Channel() Value[string] {
	return playlistInfo[string](p, FieldChannel)
}

func (p *Playlist) Thumbnails() Value[[]string] {
	return playlistInfo[[]string](p, FieldThumbnails)
}

// VideoCount is the number of videos in the playlist, capped at PlaylistMaxVideos.
func (p *Playlist) VideoCount() Value[int] {
	return playlistInfo[int](p, FieldVideoCount)
}

// Videos resolves to the first PlaylistMaxVideos videos of the playlist. If paging fails part way through, whatever
// was fetched before the failure is kept. Once enumerated, info for the videos starts loading in the background.
func (p *Playlist) Videos() Value[[]*Video] {
	c, created := value[[]*Video](&p.entry, FieldVideos)
	if !created {
		return c
	}
	p.r.run(cells{c}, func() {
		videos := p.r.enumerate(p.id)
		c.set(videos)
		p.r.LoadVideoInfo(videos)
	})
	return c
}

func (p *Playlist) absorb(item *vr.Item) {
	p.entry.absorb(item)
	if n := item.ContentDetails.ItemCount; n != nil {
		count := *n
		if limit := p.r.playlistMaxVideos; limit > 0 && count > limit {
			count = limit
		}
		provide(&p.entry, FieldVideoCount, count)
	}
}

// enumerate pages through a playlist until it runs out of items, hits an error, or has PlaylistMaxVideos videos.
func (r *Resolver) enumerate(id string) []*Video {
	limit := r.playlistMaxVideos
	var videos []*Video
	token := ""
	for limit <= 0 || len(videos) < limit {
		n := vr.MaxBatchSize
		if limit > 0 && limit-len(videos) < n {
			n = limit - len(videos)
		}
		next, items, err := r.source.ListPlaylistItems(r.ctx, id, token, n)
		if err != nil {
			r.log.Warnw("listing playlist items failed", "id", id, "fetched", len(videos), "error", err)
			break
		}
		if len(items) == 0 {
			break
		}
		videos = append(videos, r.videosFromItems(items)...)
		if next == "" {
			break
		}
		token = next
	}
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos
}
