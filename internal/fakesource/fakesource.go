// Package fakesource is an in-memory DataSource for tests, which records every call it receives.
package fakesource

import (
	"context"
	"errors"
	"strconv"
	"sync"

	vr "github.com/alanbriolat/video-resolver"
)

var ErrInvalidPageToken = errors.New("invalid page token")

type Call struct {
	Method     string
	IDs        []string
	PageToken  string
	MaxResults int
}

type Source struct {
	Videos    map[string]vr.Item
	Playlists map[string]vr.Item
	// PlaylistItems maps a playlist id to the ids of its videos, in order.
	PlaylistItems    map[string][]string
	Related          map[string][]string
	ChannelPlaylists map[string][]string
	SearchResults    map[string]vr.ItemList

	// Err, if set, is returned by every method.
	Err error
	// Panic, if set, is raised by every method.
	Panic any
	// Fail, if set, is consulted for every call and can make it fail.
	Fail func(Call) error
	// Block, if set, is waited on before answering.
	Block chan struct{}

	mu    sync.Mutex
	calls []Call
}

func New() *Source {
	return &Source{
		Videos:           make(map[string]vr.Item),
		Playlists:        make(map[string]vr.Item),
		PlaylistItems:    make(map[string][]string),
		Related:          make(map[string][]string),
		ChannelPlaylists: make(map[string][]string),
		SearchResults:    make(map[string]vr.ItemList),
	}
}

// AddVideo adds a video with a title and channel derived from its id.
func (s *Source) AddVideo(id string, duration string) {
	s.Videos[id] = vr.NewVideoItem(id, "Title "+id, "Channel "+id, duration)
}

// AddPlaylist adds a playlist containing the given videos, each of which also gets added with a 3 minute duration.
func (s *Source) AddPlaylist(id string, videoIDs ...string) {
	s.Playlists[id] = vr.NewPlaylistItem(id, "Playlist "+id, "Channel "+id, len(videoIDs))
	s.PlaylistItems[id] = videoIDs
	for _, v := range videoIDs {
		if _, ok := s.Videos[v]; !ok {
			s.AddVideo(v, "PT3M")
		}
	}
}

// Calls returns a copy of the calls received so far.
func (s *Source) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the calls received for one method.
func (s *Source) CallsTo(method string) []Call {
	var calls []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

func (s *Source) record(c Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
	if s.Block != nil {
		<-s.Block
	}
	if s.Panic != nil {
		panic(s.Panic)
	}
	if s.Fail != nil {
		if err := s.Fail(c); err != nil {
			return err
		}
	}
	return s.Err
}

func (s *Source) Search(ctx context.Context, query string) (vr.ItemList, error) {
	if err := s.record(Call{Method: "Search", IDs: []string{query}}); err != nil {
		return nil, err
	}
	return append(vr.ItemList(nil), s.SearchResults[query]...), nil
}

func (s *Source) ListVideos(ctx context.Context, ids []string) (vr.ItemList, error) {
	if err := s.record(Call{Method: "ListVideos", IDs: append([]string(nil), ids...)}); err != nil {
		return nil, err
	}
	return lookup(s.Videos, ids), nil
}

func (s *Source) ListPlaylists(ctx context.Context, ids []string) (vr.ItemList, error) {
	if err := s.record(Call{Method: "ListPlaylists", IDs: append([]string(nil), ids...)}); err != nil {
		return nil, err
	}
	return lookup(s.Playlists, ids), nil
}

// ListPlaylistItems pages through the playlist using the decimal offset as the page token.
func (s *Source) ListPlaylistItems(ctx context.Context, id string, pageToken string, maxResults int) (string, vr.ItemList, error) {
	err := s.record(Call{Method: "ListPlaylistItems", IDs: []string{id}, PageToken: pageToken, MaxResults: maxResults})
	if err != nil {
		return "", nil, err
	}
	offset := 0
	if pageToken != "" {
		if offset, err = strconv.Atoi(pageToken); err != nil || offset < 0 {
			return "", nil, ErrInvalidPageToken
		}
	}
	all := s.PlaylistItems[id]
	if offset >= len(all) {
		return "", nil, nil
	}
	end := offset + maxResults
	if end > len(all) {
		end = len(all)
	}
	var items vr.ItemList
	for _, videoID := range all[offset:end] {
		item := vr.Item{
			ID: vr.ItemID{Kind: "youtube#playlistItem"},
			Snippet: vr.Snippet{
				Title:      s.Videos[videoID].Snippet.Title,
				ResourceID: &vr.ItemID{Kind: vr.KindVideo, VideoID: videoID},
			},
		}
		items = append(items, item)
	}
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return next, items, nil
}

func (s *Source) ListRelatedVideos(ctx context.Context, id string) (vr.ItemList, error) {
	if err := s.record(Call{Method: "ListRelatedVideos", IDs: []string{id}}); err != nil {
		return nil, err
	}
	return lookup(s.Videos, s.Related[id]), nil
}

func (s *Source) ListChannelPlaylists(ctx context.Context, channelID string) (vr.ItemList, error) {
	if err := s.record(Call{Method: "ListChannelPlaylists", IDs: []string{channelID}}); err != nil {
		return nil, err
	}
	return lookup(s.Playlists, s.ChannelPlaylists[channelID]), nil
}

func lookup(m map[string]vr.Item, ids []string) vr.ItemList {
	var items vr.ItemList
	for _, id := range ids {
		if item, ok := m[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

var _ vr.DataSource = (*Source)(nil)
