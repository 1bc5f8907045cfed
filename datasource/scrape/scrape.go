// Package scrape is a DataSource that reads the data YouTube embeds in its own web pages, for when the Data API
// can't be used.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
)

const (
	Name           = "scrape"
	DefaultBaseURL = "https://www.youtube.com"

	clientName    = "WEB"
	clientVersion = "2.20240501.00.00"
)

var (
	ErrStatus       = errors.New("unexpected HTTP status")
	ErrInvalidToken = errors.New("invalid page token")
)

type Source struct {
	client  *http.Client
	baseURL string
	log     *zap.SugaredLogger
}

// New creates a Source using client, against baseURL (DefaultBaseURL if "").
func New(client *http.Client, baseURL string) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zap.S().Named(Name),
	}
}

func (s *Source) get(ctx context.Context, path string, query url.Values, name string) (map[string]any, error) {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s for %s", ErrStatus, resp.Status, path)
	}
	return parseDocument(resp.Body, name)
}

// browse fetches a continuation page.
func (s *Source) browse(ctx context.Context, token string) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"client": map[string]any{"clientName": clientName, "clientVersion": clientVersion, "hl": "en"},
		},
		"continuation": token,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/youtubei/v1/browse", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s for continuation", ErrStatus, resp.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding continuation: %w", err)
	}
	return data, nil
}

func (s *Source) Search(ctx context.Context, query string) (vr.ItemList, error) {
	data, err := s.get(ctx, "/results", url.Values{"search_query": {query}}, initialDataVar)
	if err != nil {
		return nil, err
	}
	var items vr.ItemList
	// videos and playlists are interleaved in the same list, so visit them in one pass
	walk(get(data, "contents"), "itemSectionRenderer", func(section map[string]any) {
		contents, _ := section["contents"].([]any)
		for _, c := range contents {
			if r, ok := get(c, "videoRenderer").(map[string]any); ok {
				if item, ok := videoRenderer(r); ok {
					items = append(items, item)
				}
			} else if r, ok := get(c, "playlistRenderer").(map[string]any); ok {
				if item, ok := playlistRenderer(r); ok {
					items = append(items, item)
				}
			}
		}
	})
	return items, nil
}

// ListVideos fetches each video's watch page in turn. Videos that can't be fetched are logged and left out.
func (s *Source) ListVideos(ctx context.Context, ids []string) (vr.ItemList, error) {
	var items vr.ItemList
	for _, id := range ids {
		player, err := s.get(ctx, "/watch", url.Values{"v": {id}}, initialPlayerResponseVar)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			s.log.Warnw("fetching video failed", "id", id, "error", err)
			continue
		}
		if item, ok := videoDetails(player); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Source) ListPlaylists(ctx context.Context, ids []string) (vr.ItemList, error) {
	var items vr.ItemList
	for _, id := range ids {
		data, err := s.get(ctx, "/playlist", url.Values{"list": {id}}, initialDataVar)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			s.log.Warnw("fetching playlist failed", "id", id, "error", err)
			continue
		}
		if item, ok := playlistHeader(id, data); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// ListPlaylistItems pages through a playlist. Pages from YouTube are bigger than maxResults, so the page token
// records how much of the current page was already returned as "<offset>@<continuation>", where the continuation
// is empty for the first page.
func (s *Source) ListPlaylistItems(ctx context.Context, id string, pageToken string, maxResults int) (string, vr.ItemList, error) {
	offset, cont, err := parseToken(pageToken)
	if err != nil {
		return "", nil, err
	}
	var data map[string]any
	if cont == "" {
		data, err = s.get(ctx, "/playlist", url.Values{"list": {id}}, initialDataVar)
	} else {
		data, err = s.browse(ctx, cont)
	}
	if err != nil {
		return "", nil, err
	}
	page := collectVideos(data, "playlistVideoRenderer")
	next := continuation(data)
	if offset > len(page) {
		offset = len(page)
	}
	end := len(page)
	if maxResults > 0 && offset+maxResults < end {
		end = offset + maxResults
	}
	items := make(vr.ItemList, 0, end-offset)
	for _, video := range page[offset:end] {
		items = append(items, playlistItem(video))
	}
	switch {
	case end < len(page):
		return formatToken(end, cont), items, nil
	case next != "":
		return formatToken(0, next), items, nil
	default:
		return "", items, nil
	}
}

func (s *Source) ListRelatedVideos(ctx context.Context, id string) (vr.ItemList, error) {
	data, err := s.get(ctx, "/watch", url.Values{"v": {id}}, initialDataVar)
	if err != nil {
		return nil, err
	}
	results := get(data, "contents", "twoColumnWatchNextResults", "secondaryResults")
	if results == nil {
		results = data
	}
	return collectVideos(results, "compactVideoRenderer"), nil
}

func (s *Source) ListChannelPlaylists(ctx context.Context, channelID string) (vr.ItemList, error) {
	data, err := s.get(ctx, "/channel/"+url.PathEscape(channelID)+"/playlists", nil, initialDataVar)
	if err != nil {
		return nil, err
	}
	items := collectPlaylists(data, "gridPlaylistRenderer")
	items = append(items, collectPlaylists(data, "playlistRenderer")...)
	return items, nil
}

func formatToken(offset int, cont string) string {
	return strconv.Itoa(offset) + "@" + cont
}

func parseToken(token string) (int, string, error) {
	if token == "" {
		return 0, "", nil
	}
	o, cont, ok := strings.Cut(token, "@")
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	offset, err := strconv.Atoi(o)
	if err != nil || offset < 0 {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return offset, cont, nil
}

func init() {
	vr.DefaultRegistry.MustCreate(Name, func(config vr.Config) (vr.DataSource, error) {
		return New(config.Client(), ""), nil
	}, vr.PriorityDefault)
}

var _ vr.DataSource = (*Source)(nil)
