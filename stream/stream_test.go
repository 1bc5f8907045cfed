package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/kkdai/youtube/v2"
	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"
)

var formats = youtube.FormatList{
	{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
	{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
	{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
	{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
}

func TestBestAudio(t *testing.T) {
	assert := assert_.New(t)

	f, err := BestAudio(formats)
	require_.NoError(t, err)
	assert.Equal(251, f.ItagNo)

	f, err = BestAudio(youtube.FormatList{formats[0], formats[3]})
	require_.NoError(t, err)
	assert.Equal(18, f.ItagNo, "falls back to a muxed format")

	_, err = BestAudio(youtube.FormatList{formats[3]})
	assert.ErrorIs(err, ErrNoAudio)
}

type fakeClient struct {
	requested *youtube.Format
}

func (c *fakeClient) GetVideoContext(ctx context.Context, id string) (*youtube.Video, error) {
	if id != "a" {
		return nil, youtube.ErrVideoPrivate
	}
	return &youtube.Video{ID: "a", Formats: formats}, nil
}

func (c *fakeClient) GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error) {
	c.requested = format
	return "https://rr1.googlevideo.com/videoplayback?itag=251", nil
}

func TestAudioURL(t *testing.T) {
	assert := assert_.New(t)
	client := &fakeClient{}
	e := New(client)

	url, err := e.AudioURL(context.Background(), "a")
	require_.NoError(t, err)
	assert.Equal("https://rr1.googlevideo.com/videoplayback?itag=251", url)
	assert.Equal(251, client.requested.ItagNo)

	_, err = e.AudioURL(context.Background(), "private")
	assert.True(errors.Is(err, youtube.ErrVideoPrivate))
}
