// Package stream finds direct audio stream URLs for videos.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

var ErrNoAudio = errors.New("video has no audio formats")

// Client is the part of *youtube.Client used here.
type Client interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

type Extractor struct {
	client Client
	log    *zap.SugaredLogger
}

func New(client Client) *Extractor {
	return &Extractor{client: client, log: zap.S().Named("stream")}
}

// AudioURL returns a direct URL for the best audio stream of a video.
func (e *Extractor) AudioURL(ctx context.Context, videoID string) (string, error) {
	video, err := e.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("failed to get video info: %w", err)
	}
	format, err := BestAudio(video.Formats)
	if err != nil {
		return "", fmt.Errorf("%s: %w", videoID, err)
	}
	e.log.Debugw("selected format", "id", videoID, "itag", format.ItagNo, "mimeType", format.MimeType, "bitrate", format.Bitrate)
	url, err := e.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("failed to get stream URL: %w", err)
	}
	return url, nil
}

// BestAudio picks the audio-only format with the highest bitrate, or failing that the highest bitrate format that
// has audio at all.
func BestAudio(formats youtube.FormatList) (*youtube.Format, error) {
	candidates := formats.Type("audio/")
	if len(candidates) == 0 {
		candidates = formats.WithAudioChannels()
	}
	if len(candidates) == 0 {
		return nil, ErrNoAudio
	}
	sorted := make(youtube.FormatList, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bitrate > sorted[j].Bitrate
	})
	return &sorted[0], nil
}
