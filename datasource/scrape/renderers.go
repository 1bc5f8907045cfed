package scrape

import (
	"strconv"

	vr "github.com/alanbriolat/video-resolver"
)

// thumbnails converts {"thumbnails": [{url, width, height}, ...]}, smallest first, into named sizes.
func thumbnails(node any) map[string]vr.Thumbnail {
	list, _ := get(node, "thumbnails").([]any)
	if len(list) == 0 {
		return nil
	}
	out := make(map[string]vr.Thumbnail, len(list))
	for i, t := range list {
		url := str(t, "url")
		if url == "" {
			continue
		}
		name := "size" + strconv.Itoa(i)
		if i < len(vr.ThumbnailSizes) {
			name = vr.ThumbnailSizes[i]
		}
		w, _ := get(t, "width").(float64)
		h, _ := get(t, "height").(float64)
		out[name] = vr.Thumbnail{URL: url, Width: int(w), Height: int(h)}
	}
	return out
}

// clockDuration converts "1:02:10" into "PT1H2M10S", or "" if there is no length (e.g. live streams).
func clockDuration(s string) string {
	if s == "" {
		return ""
	}
	return vr.FormatDuration(vr.ParseClock(s))
}

// videoRenderer handles videoRenderer, compactVideoRenderer, playlistVideoRenderer and gridVideoRenderer, which all
// share the same essential fields.
func videoRenderer(r map[string]any) (vr.Item, bool) {
	id := str(r, "videoId")
	if id == "" {
		return vr.Item{}, false
	}
	channel := text(r["shortBylineText"])
	if channel == "" {
		channel = text(r["longBylineText"])
	}
	if channel == "" {
		channel = text(r["ownerText"])
	}
	length := text(r["lengthText"])
	if length == "" {
		if secs := str(r, "lengthSeconds"); secs != "" {
			if n, err := strconv.Atoi(secs); err == nil {
				length = vr.FormatDuration(n)
			}
		}
	} else {
		length = clockDuration(length)
	}
	item := vr.NewVideoItem(id, text(r["title"]), channel, length)
	item.Snippet.Thumbnails = thumbnails(r["thumbnail"])
	return item, true
}

// playlistRenderer handles playlistRenderer, gridPlaylistRenderer and compactPlaylistRenderer.
func playlistRenderer(r map[string]any) (vr.Item, bool) {
	id := str(r, "playlistId")
	if id == "" {
		return vr.Item{}, false
	}
	n := -1
	if c, ok := count(str(r, "videoCount")); ok {
		n = c
	} else if c, ok := count(text(r["videoCountText"])); ok {
		n = c
	} else if c, ok := count(text(r["videoCountShortText"])); ok {
		n = c
	}
	channel := text(r["shortBylineText"])
	if channel == "" {
		channel = text(r["longBylineText"])
	}
	item := vr.NewPlaylistItem(id, text(r["title"]), channel, n)
	thumbs := r["thumbnail"]
	if thumbs == nil {
		thumbs = get(r, "thumbnails", 0)
	}
	item.Snippet.Thumbnails = thumbnails(thumbs)
	return item, true
}

// playlistItem wraps a video found on a playlist page the way the Data API presents playlist items.
func playlistItem(video vr.Item) vr.Item {
	resource := video.ID
	video.ID = vr.ItemID{Kind: "youtube#playlistItem"}
	video.Snippet.ResourceID = &resource
	return video
}

func collectVideos(root any, key string) vr.ItemList {
	var items vr.ItemList
	walk(root, key, func(r map[string]any) {
		if item, ok := videoRenderer(r); ok {
			items = append(items, item)
		}
	})
	return items
}

func collectPlaylists(root any, key string) vr.ItemList {
	var items vr.ItemList
	walk(root, key, func(r map[string]any) {
		if item, ok := playlistRenderer(r); ok {
			items = append(items, item)
		}
	})
	return items
}

// continuation finds the token for the next page of a continuable list.
func continuation(root any) string {
	if r := find(root, "continuationItemRenderer"); r != nil {
		if token := str(r, "continuationEndpoint", "continuationCommand", "token"); token != "" {
			return token
		}
	}
	if c := find(root, "nextContinuationData"); c != nil {
		return str(c, "continuation")
	}
	return ""
}

// videoDetails converts the player response of a watch page.
func videoDetails(player map[string]any) (vr.Item, bool) {
	d, _ := player["videoDetails"].(map[string]any)
	id := str(d, "videoId")
	if id == "" {
		return vr.Item{}, false
	}
	duration := ""
	if secs, err := strconv.Atoi(str(d, "lengthSeconds")); err == nil {
		duration = vr.FormatDuration(secs)
	}
	item := vr.NewVideoItem(id, str(d, "title"), str(d, "author"), duration)
	item.Snippet.Thumbnails = thumbnails(d["thumbnail"])
	return item, true
}

// playlistHeader converts the header of a playlist page.
func playlistHeader(id string, data map[string]any) (vr.Item, bool) {
	title := str(data, "metadata", "playlistMetadataRenderer", "title")
	channel := ""
	n := -1
	var thumbs any
	if h := find(data, "playlistHeaderRenderer"); h != nil {
		if title == "" {
			title = text(h["title"])
		}
		channel = text(h["ownerText"])
		if c, ok := count(text(h["numVideosText"])); ok {
			n = c
		}
		thumbs = get(h, "playlistHeaderBanner", "heroPlaylistThumbnailRenderer", "thumbnail")
	}
	if s := find(data, "playlistSidebarPrimaryInfoRenderer"); s != nil {
		if n < 0 {
			if c, ok := count(text(get(s, "stats", 0))); ok {
				n = c
			}
		}
		if thumbs == nil {
			thumbs = get(s, "thumbnailRenderer", "playlistVideoThumbnailRenderer", "thumbnail")
		}
	}
	if channel == "" {
		if o := find(data, "videoOwnerRenderer"); o != nil {
			channel = text(o["title"])
		}
	}
	if title == "" {
		return vr.Item{}, false
	}
	item := vr.NewPlaylistItem(id, title, channel, n)
	item.Snippet.Thumbnails = thumbnails(thumbs)
	return item, true
}
