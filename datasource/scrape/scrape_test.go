package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"

	vr "github.com/alanbriolat/video-resolver"
)

type obj = map[string]any
type arr = []any

func runs(s string) obj {
	return obj{"runs": arr{obj{"text": s}}}
}

func thumbs(urls ...string) obj {
	var list arr
	for i, u := range urls {
		list = append(list, obj{"url": u, "width": 120 * (i + 1), "height": 90 * (i + 1)})
	}
	return obj{"thumbnails": list}
}

func page(t *testing.T, name string, data any) string {
	b, err := json.Marshal(data)
	require_.NoError(t, err)
	return fmt.Sprintf(`<!DOCTYPE html><html><head><script>window.ytcfg = {};</script></head><body>
<script nonce="x">var %s = %s;var meta = {"a": "}"};</script></body></html>`, name, b)
}

func playlistVideo(id string) obj {
	return obj{"playlistVideoRenderer": obj{
		"videoId":         id,
		"title":           runs("Video " + id),
		"shortBylineText": runs("Uploader"),
		"lengthSeconds":   "61",
	}}
}

func newTestSource(t *testing.T) (*Source, *[]string) {
	var requests []string
	mux := http.NewServeMux()
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page(t, initialDataVar, obj{"contents": obj{"sectionListRenderer": obj{"contents": arr{
			obj{"itemSectionRenderer": obj{"contents": arr{
				obj{"videoRenderer": obj{
					"videoId":    "vid1",
					"title":      runs("First " + r.URL.Query().Get("search_query")),
					"ownerText":  runs("Someone"),
					"lengthText": obj{"simpleText": "3:45"},
					"thumbnail":  thumbs("https://i.ytimg.com/vi/vid1/default.jpg", "https://i.ytimg.com/vi/vid1/mq.jpg"),
				}},
				obj{"shelfRenderer": obj{}},
				obj{"playlistRenderer": obj{
					"playlistId":      "PL1",
					"title":           obj{"simpleText": "A playlist"},
					"shortBylineText": runs("Curator"),
					"videoCount":      "12",
				}},
				obj{"videoRenderer": obj{"title": runs("broken, no id")}},
			}}},
		}}}}))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("v")
		if id == "missing" {
			http.NotFound(w, r)
			return
		}
		// watch pages carry both the player response and the related videos
		player := page(t, initialPlayerResponseVar, obj{"videoDetails": obj{
			"videoId":       id,
			"title":         "Watch " + id,
			"author":        "Author",
			"lengthSeconds": "225",
			"thumbnail":     thumbs("https://i.ytimg.com/vi/" + id + "/default.jpg"),
		}})
		data := page(t, initialDataVar, obj{"contents": obj{"twoColumnWatchNextResults": obj{
			"secondaryResults": obj{"secondaryResults": obj{"results": arr{
				obj{"compactVideoRenderer": obj{
					"videoId":        "rel1",
					"title":          obj{"simpleText": "Related one"},
					"longBylineText": runs("Other"),
					"lengthText":     obj{"simpleText": "1:02:10"},
				}},
				obj{"compactVideoRenderer": obj{
					"videoId": "live1",
					"title":   obj{"simpleText": "Live now"},
				}},
			}}},
		}}})
		io.WriteString(w, player+data)
	})
	mux.HandleFunc("/playlist", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page(t, initialDataVar, obj{
			"metadata": obj{"playlistMetadataRenderer": obj{"title": "Mix " + r.URL.Query().Get("list")}},
			"header": obj{"playlistHeaderRenderer": obj{
				"ownerText":     runs("Owner"),
				"numVideosText": runs("1,234 videos"),
			}},
			"contents": arr{
				playlistVideo("p1"), playlistVideo("p2"), playlistVideo("p3"),
				obj{"continuationItemRenderer": obj{"continuationEndpoint": obj{"continuationCommand": obj{"token": "CONT"}}}},
			},
		}))
	})
	mux.HandleFunc("/youtubei/v1/browse", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Continuation string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Continuation != "CONT" {
			http.Error(w, "bad continuation", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(obj{"onResponseReceivedActions": arr{obj{"appendContinuationItemsAction": obj{
			"continuationItems": arr{playlistVideo("p4"), playlistVideo("p5")},
		}}}})
	})
	mux.HandleFunc("/channel/UC1/playlists", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page(t, initialDataVar, obj{"contents": arr{
			obj{"gridPlaylistRenderer": obj{
				"playlistId":          "PLa",
				"title":               runs("Uploads"),
				"videoCountShortText": obj{"simpleText": "42"},
				"thumbnail":           thumbs("https://i.ytimg.com/vi/x/default.jpg"),
			}},
		}}))
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.Client(), srv.URL), &requests
}

func TestExtractJSON(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal(`{"a": "}\"{", "b": {"c": 1}}`, string(extractJSON([]byte(`{"a": "}\"{", "b": {"c": 1}};var x = {}`))))
	assert.Nil(extractJSON([]byte(`{"unterminated": true`)))
	assert.Nil(extractJSON([]byte(`[1, 2]`)))
}

func TestCount(t *testing.T) {
	assert := assert_.New(t)
	cases := []struct {
		input    string
		expected int
	}{
		{"1,234 videos", 1234},
		{"42", 42},
		{"Updated 3 days ago, 7 videos", 3},
	}
	for _, c := range cases {
		n, ok := count(c.input)
		assert.True(ok, c.input)
		assert.Equal(c.expected, n, c.input)
	}
	_, ok := count("No videos")
	assert.False(ok)
}

func TestSearch(t *testing.T) {
	assert := assert_.New(t)
	s, _ := newTestSource(t)

	items, err := s.Search(context.Background(), "cats")
	require_.NoError(t, err)
	require_.Len(t, items, 2)

	v := items[0]
	assert.Equal("vid1", v.VideoID())
	assert.Equal("First cats", v.Snippet.Title)
	assert.Equal("Someone", v.Snippet.ChannelTitle)
	assert.Equal("PT3M45S", v.ContentDetails.Duration)
	assert.Equal([]string{"https://i.ytimg.com/vi/vid1/default.jpg", "https://i.ytimg.com/vi/vid1/mq.jpg"}, v.ThumbnailURLs())
	assert.Equal(240, v.Snippet.Thumbnails["medium"].Width)

	p := items[1]
	assert.Equal("PL1", p.PlaylistID())
	assert.Equal("A playlist", p.Snippet.Title)
	if assert.NotNil(p.ContentDetails.ItemCount) {
		assert.Equal(12, *p.ContentDetails.ItemCount)
	}
}

func TestListVideos(t *testing.T) {
	assert := assert_.New(t)
	s, _ := newTestSource(t)

	items, err := s.ListVideos(context.Background(), []string{"a", "missing", "b"})
	require_.NoError(t, err)
	byID := items.ByVideoID()
	assert.Len(byID, 2)
	if a, ok := byID["a"]; assert.True(ok) {
		assert.Equal("Watch a", a.Snippet.Title)
		assert.Equal("Author", a.Snippet.ChannelTitle)
		assert.Equal(225, vr.ParseDuration(a.ContentDetails.Duration))
	}
}

func TestListPlaylists(t *testing.T) {
	assert := assert_.New(t)
	s, _ := newTestSource(t)

	items, err := s.ListPlaylists(context.Background(), []string{"PLx"})
	require_.NoError(t, err)
	require_.Len(t, items, 1)
	assert.Equal("Mix PLx", items[0].Snippet.Title)
	assert.Equal("Owner", items[0].Snippet.ChannelTitle)
	assert.Equal(1234, *items[0].ContentDetails.ItemCount)
}

func TestListPlaylistItems(t *testing.T) {
	assert := assert_.New(t)
	s, requests := newTestSource(t)
	ctx := context.Background()

	var ids []string
	var tokens []string
	token := ""
	for i := 0; i < 10; i++ {
		next, items, err := s.ListPlaylistItems(ctx, "PLx", token, 2)
		require_.NoError(t, err)
		for _, item := range items {
			assert.Equal("youtube#playlistItem", item.ID.Kind)
			ids = append(ids, item.VideoID())
		}
		tokens = append(tokens, next)
		if next == "" {
			break
		}
		token = next
	}
	assert.Equal([]string{"p1", "p2", "p3", "p4", "p5"}, ids)
	assert.Equal([]string{"2@", "0@CONT", ""}, tokens)
	assert.Equal([]string{"/playlist", "/playlist", "/youtubei/v1/browse"}, *requests)

	_, _, err := s.ListPlaylistItems(ctx, "PLx", "garbage", 2)
	assert.ErrorIs(err, ErrInvalidToken)
}

func TestListRelatedVideos(t *testing.T) {
	assert := assert_.New(t)
	s, _ := newTestSource(t)

	items, err := s.ListRelatedVideos(context.Background(), "a")
	require_.NoError(t, err)
	require_.Len(t, items, 2)
	assert.Equal("rel1", items[0].VideoID())
	assert.Equal("Other", items[0].Snippet.ChannelTitle)
	assert.Equal(3730, vr.ParseDuration(items[0].ContentDetails.Duration))
	assert.Equal("", items[1].ContentDetails.Duration)

	_, err = s.ListRelatedVideos(context.Background(), "missing")
	assert.ErrorIs(err, ErrStatus)
}

func TestListChannelPlaylists(t *testing.T) {
	assert := assert_.New(t)
	s, _ := newTestSource(t)

	items, err := s.ListChannelPlaylists(context.Background(), "UC1")
	require_.NoError(t, err)
	require_.Len(t, items, 1)
	assert.Equal("PLa", items[0].PlaylistID())
	assert.Equal("Uploads", items[0].Snippet.Title)
	assert.Equal(42, *items[0].ContentDetails.ItemCount)
	assert.Len(items[0].ThumbnailURLs(), 1)
}
