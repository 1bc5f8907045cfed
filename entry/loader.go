package entry

import (
	vr "github.com/alanbriolat/video-resolver"
)

var (
	// VideoInfoFields are loaded together by LoadVideoInfo.
	VideoInfoFields = []Field{FieldTitle, FieldChannel, FieldLength, FieldThumbnails}
	// PlaylistInfoFields are loaded together by LoadPlaylistInfo.
	PlaylistInfoFields = []Field{FieldTitle, FieldChannel, FieldThumbnails, FieldVideoCount}
)

type claimed[E any] struct {
	entries []E
	owned   []cells
}

func (c *claimed[E]) add(e E, owned cells) {
	c.entries = append(c.entries, e)
	c.owned = append(c.owned, owned)
}

// chunks splits the claim into consecutive groups of at most size entries, in order.
func (c *claimed[E]) chunks(size int) []claimed[E] {
	var out []claimed[E]
	for start := 0; start < len(c.entries); start += size {
		end := start + size
		if end > len(c.entries) {
			end = len(c.entries)
		}
		out = append(out, claimed[E]{entries: c.entries[start:end], owned: c.owned[start:end]})
	}
	return out
}

func (c *claimed[E]) allOwned() cells {
	var all cells
	for _, o := range c.owned {
		all = append(all, o...)
	}
	return all
}

// LoadVideoInfo starts loading fields (VideoInfoFields if none are given) for every video that doesn't already have
// them resolved or pending. Videos are fetched in chunks of vr.MaxBatchSize, one ListVideos call per chunk, submitted
// in order. It does not wait for anything to load.
func (r *Resolver) LoadVideoInfo(videos []*Video, fields ...Field) {
	if len(fields) == 0 {
		fields = VideoInfoFields
	}
	var todo claimed[*Video]
	for _, v := range videos {
		if owned := v.claim(fields); len(owned) > 0 {
			todo.add(v, owned)
		}
	}
	for _, chunk := range todo.chunks(vr.MaxBatchSize) {
		chunk := chunk
		r.run(chunk.allOwned(), func() {
			r.loadVideoChunk(chunk.entries)
		})
	}
}

func (r *Resolver) loadVideoChunk(videos []*Video) {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.id
	}
	items, err := r.source.ListVideos(r.ctx, ids)
	if err != nil {
		r.log.Warnw("loading video info failed", "count", len(ids), "error", err)
		return
	}
	byID := items.ByVideoID()
	for _, v := range videos {
		item, ok := byID[v.id]
		if !ok {
			r.log.Debugw("video not found", "id", v.id)
			continue
		}
		v.absorb(item)
		if len(item.ThumbnailURLs()) == 0 {
			provide(&v.entry, FieldThumbnails, DefaultThumbnails(v.id))
		}
	}
}

// LoadPlaylistInfo is like LoadVideoInfo, for playlists, defaulting to PlaylistInfoFields.
func (r *Resolver) LoadPlaylistInfo(playlists []*Playlist, fields ...Field) {
	if len(fields) == 0 {
		fields = PlaylistInfoFields
	}
	var todo claimed[*Playlist]
	for _, p := range playlists {
		if owned := p.claim(fields); len(owned) > 0 {
			todo.add(p, owned)
		}
	}
	for _, chunk := range todo.chunks(vr.MaxBatchSize) {
		chunk := chunk
		r.run(chunk.allOwned(), func() {
			r.loadPlaylistChunk(chunk.entries)
		})
	}
}

func (r *Resolver) loadPlaylistChunk(playlists []*Playlist) {
	ids := make([]string, len(playlists))
	for i, p := range playlists {
		ids[i] = p.id
	}
	items, err := r.source.ListPlaylists(r.ctx, ids)
	if err != nil {
		r.log.Warnw("loading playlist info failed", "count", len(ids), "error", err)
		return
	}
	byID := items.ByPlaylistID()
	for _, p := range playlists {
		item, ok := byID[p.id]
		if !ok {
			r.log.Debugw("playlist not found", "id", p.id)
			continue
		}
		p.absorb(item)
	}
}
