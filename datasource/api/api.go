// Package api is a DataSource backed by the official YouTube Data API v3.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/datasource/scrape"
)

const Name = "api"

var ErrNoAPIKey = errors.New("no API key configured")

// verifyVideoID is looked up by Verify, because a videos.list call is the cheapest request that needs a valid key.
const verifyVideoID = "dQw4w9WgXcQ"

type Options struct {
	APIKey     string
	HTTPClient *http.Client
	// Endpoint overrides the API base URL.
	Endpoint string
	// SearchResults is the maxResults of a search.
	SearchResults int
	// Related answers ListRelatedVideos, which the API has no endpoint for.
	Related vr.DataSource
}

type Source struct {
	service       *youtube.Service
	key           googleapi.CallOption
	searchResults int64
	related       vr.DataSource
	log           *zap.SugaredLogger
}

func New(ctx context.Context, opts Options) (*Source, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = vr.DefaultConfig.SearchResults
	}
	if opts.Related == nil {
		opts.Related = scrape.New(client, "")
	}
	return &Source{
		service: service,
		// WithHTTPClient bypasses WithAPIKey, so the key goes on each call instead
		key:           googleapi.QueryParameter("key", opts.APIKey),
		searchResults: int64(opts.SearchResults),
		related:       opts.Related,
		log:           zap.S().Named(Name),
	}, nil
}

// Verify makes one cheap request to check the key works. An invalid key or exhausted quota is ErrExhausted.
func (s *Source) Verify(ctx context.Context) error {
	_, err := s.service.Videos.List([]string{"id"}).Id(verifyVideoID).Context(ctx).Do(s.key)
	return classify(err)
}

// classify marks the errors that mean this backend should not be used at all.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %v", vr.ErrExhausted, err)
	}
	return err
}

func (s *Source) Search(ctx context.Context, query string) (vr.ItemList, error) {
	resp, err := s.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video", "playlist").
		MaxResults(s.searchResults).
		Context(ctx).
		Do(s.key)
	if err != nil {
		return nil, classify(err)
	}
	items := make(vr.ItemList, 0, len(resp.Items))
	for _, r := range resp.Items {
		if r.Id == nil || r.Snippet == nil {
			continue
		}
		item := vr.Item{
			ID: resourceID(r.Id),
			Snippet: vr.Snippet{
				Title:        r.Snippet.Title,
				ChannelTitle: r.Snippet.ChannelTitle,
				Thumbnails:   thumbnails(r.Snippet.Thumbnails),
			},
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Source) ListVideos(ctx context.Context, ids []string) (vr.ItemList, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := s.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do(s.key)
	if err != nil {
		return nil, classify(err)
	}
	items := make(vr.ItemList, 0, len(resp.Items))
	for _, v := range resp.Items {
		if v.Snippet == nil {
			s.log.Debugw("skipping video without snippet", "id", v.Id)
			continue
		}
		item := vr.Item{
			ID: vr.ItemID{Kind: vr.KindVideo, VideoID: v.Id},
			Snippet: vr.Snippet{
				Title:        v.Snippet.Title,
				ChannelTitle: v.Snippet.ChannelTitle,
				Thumbnails:   thumbnails(v.Snippet.Thumbnails),
			},
		}
		if v.ContentDetails != nil {
			item.ContentDetails.Duration = v.ContentDetails.Duration
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Source) ListPlaylists(ctx context.Context, ids []string) (vr.ItemList, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := s.service.Playlists.List([]string{"snippet", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do(s.key)
	if err != nil {
		return nil, classify(err)
	}
	return s.playlists(resp.Items), nil
}

func (s *Source) ListPlaylistItems(ctx context.Context, id string, pageToken string, maxResults int) (string, vr.ItemList, error) {
	if maxResults <= 0 || maxResults > vr.MaxBatchSize {
		maxResults = vr.MaxBatchSize
	}
	call := s.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(id).
		MaxResults(int64(maxResults)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do(s.key)
	if err != nil {
		return "", nil, classify(err)
	}
	items := make(vr.ItemList, 0, len(resp.Items))
	for _, p := range resp.Items {
		if p.Snippet == nil || p.Snippet.ResourceId == nil || p.Snippet.ResourceId.VideoId == "" {
			continue
		}
		resource := resourceID(p.Snippet.ResourceId)
		items = append(items, vr.Item{
			ID: vr.ItemID{Kind: "youtube#playlistItem"},
			Snippet: vr.Snippet{
				Title:        p.Snippet.Title,
				ChannelTitle: p.Snippet.VideoOwnerChannelTitle,
				Thumbnails:   thumbnails(p.Snippet.Thumbnails),
				ResourceID:   &resource,
			},
		})
	}
	return resp.NextPageToken, items, nil
}

// ListRelatedVideos is handed to the related-videos backend; the Data API dropped its related search.
func (s *Source) ListRelatedVideos(ctx context.Context, id string) (vr.ItemList, error) {
	return s.related.ListRelatedVideos(ctx, id)
}

func (s *Source) ListChannelPlaylists(ctx context.Context, channelID string) (vr.ItemList, error) {
	resp, err := s.service.Playlists.List([]string{"snippet", "contentDetails"}).
		ChannelId(channelID).
		MaxResults(vr.MaxBatchSize).
		Context(ctx).
		Do(s.key)
	if err != nil {
		return nil, classify(err)
	}
	return s.playlists(resp.Items), nil
}

func (s *Source) playlists(playlists []*youtube.Playlist) vr.ItemList {
	items := make(vr.ItemList, 0, len(playlists))
	for _, p := range playlists {
		if p.Snippet == nil {
			s.log.Debugw("skipping playlist without snippet", "id", p.Id)
			continue
		}
		count := -1
		if p.ContentDetails != nil {
			count = int(p.ContentDetails.ItemCount)
		}
		item := vr.NewPlaylistItem(p.Id, p.Snippet.Title, p.Snippet.ChannelTitle, count)
		item.Snippet.Thumbnails = thumbnails(p.Snippet.Thumbnails)
		items = append(items, item)
	}
	return items
}

func resourceID(r *youtube.ResourceId) vr.ItemID {
	return vr.ItemID{Kind: r.Kind, VideoID: r.VideoId, PlaylistID: r.PlaylistId, ChannelID: r.ChannelId}
}

func thumbnails(d *youtube.ThumbnailDetails) map[string]vr.Thumbnail {
	if d == nil {
		return nil
	}
	out := make(map[string]vr.Thumbnail)
	for name, t := range map[string]*youtube.Thumbnail{
		"default":  d.Default,
		"medium":   d.Medium,
		"high":     d.High,
		"standard": d.Standard,
		"maxres":   d.Maxres,
	} {
		if t != nil && t.Url != "" {
			out[name] = vr.Thumbnail{URL: t.Url, Width: int(t.Width), Height: int(t.Height)}
		}
	}
	return out
}

func init() {
	vr.DefaultRegistry.MustCreate(Name, func(config vr.Config) (vr.DataSource, error) {
		client := config.Client()
		return New(context.Background(), Options{
			APIKey:        config.APIKey,
			HTTPClient:    client,
			SearchResults: config.SearchResults,
			Related:       scrape.New(client, ""),
		})
	}, vr.PriorityHighest)
}

var (
	_ vr.DataSource = (*Source)(nil)
	_ vr.Verifier   = (*Source)(nil)
)
