package entry

import (
	"fmt"

	vr "github.com/alanbriolat/video-resolver"
)

type Video struct {
	entry
}

func (v *Video) URI() string {
	return vr.VideoURI(v.id)
}

func (v *Video) Kind() vr.RefKind {
	return vr.RefVideo
}

func (v *Video) String() string {
	return v.URI()
}

// info returns the cell for one of VideoInfoFields, starting a load if the video has no info yet.
func videoInfo[T any](v *Video, f Field) Value[T] {
	v.r.LoadVideoInfo([]*Video{v})
	c, _ := peek[T](&v.entry, f)
	return c
}

func (v *Video) Title() Value[string] {
	return videoInfo[string](v, FieldTitle)
}

func (v *Video) Channel() Value[string] {
	return videoInfo[string](v, FieldChannel)
}

// Length in seconds. Live streams have a length of 0.
func (v *Video) Length() Value[int] {
	return videoInfo[int](v, FieldLength)
}

func (v *Video) Thumbnails() Value[[]string] {
	return videoInfo[[]string](v, FieldThumbnails)
}

// AudioURL resolves to a direct audio stream URL, or None if it can't be extracted.
func (v *Video) AudioURL() Value[string] {
	c, created := value[string](&v.entry, FieldAudioURL)
	if !created {
		return c
	}
	v.r.run(cells{c}, func() {
		if v.r.audio == nil {
			return
		}
		url, err := v.r.audio.AudioURL(v.r.ctx, v.id)
		if err != nil {
			v.r.log.Warnw("extracting audio URL failed", "id", v.id, "error", err)
			return
		}
		c.set(url)
	})
	return c
}

// RelatedVideos fetches the videos related to this one. Unlike other fields the result is not kept: every call
// fetches a new list, which resolves to None if the fetch fails.
func (v *Video) RelatedVideos() Value[[]*Video] {
	c := newValue[[]*Video]()
	v.r.run(cells{c}, func() {
		items, err := v.r.source.ListRelatedVideos(v.r.ctx, v.id)
		if err != nil {
			v.r.log.Warnw("listing related videos failed", "id", v.id, "error", err)
			return
		}
		videos := v.r.videosFromItems(items)
		c.set(videos)
		v.r.LoadVideoInfo(videos)
	})
	return c
}

func (v *Video) absorb(item *vr.Item) {
	v.entry.absorb(item)
	if item.ContentDetails.Duration != "" {
		provide(&v.entry, FieldLength, vr.ParseDuration(item.ContentDetails.Duration))
	}
}

// DefaultThumbnails returns the thumbnail URLs that exist for every video, smallest first.
func DefaultThumbnails(id string) []string {
	names := []string{"default", "mqdefault", "hqdefault", "sddefault", "maxresdefault"}
	urls := make([]string, len(names))
	for i, name := range names {
		urls[i] = fmt.Sprintf("https://i.ytimg.com/vi/%s/%s.jpg", id, name)
	}
	return urls
}
