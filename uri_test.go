package video_resolver

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestParseURI(t *testing.T) {
	assert := assert_.New(t)
	cases := []struct {
		input    string
		expected Ref
	}{
		{"youtube:video:abc123", Ref{RefVideo, "abc123"}},
		{"yt:video:abc123", Ref{RefVideo, "abc123"}},
		{"youtube:playlist:PL1", Ref{RefPlaylist, "PL1"}},
		{"yt:channel:UC42", Ref{RefChannel, "UC42"}},
		{"youtube:video/My Title.abc123", Ref{RefVideo, "abc123"}},
		{"youtube:video/Title. With. Dots.abc123", Ref{RefVideo, "abc123"}},
		{"yt:playlist/Some List.PL1", Ref{RefPlaylist, "PL1"}},
		{"youtube:video/abc123", Ref{RefVideo, "abc123"}},
		{"https://youtu.be/abc123?list=PL3", Ref{RefPlaylist, "PL3"}},
		{"https://youtu.be/abc123", Ref{RefVideo, "abc123"}},
		{"https://www.youtube.com/watch?v=xyz", Ref{RefVideo, "xyz"}},
		{"https://www.youtube.com/watch?v=xyz&list=PL1", Ref{RefPlaylist, "PL1"}},
		{"https://m.youtube.com/watch?v=xyz", Ref{RefVideo, "xyz"}},
		{"https://music.youtube.com/playlist?list=PL2", Ref{RefPlaylist, "PL2"}},
		{"http://youtube.com/v/abc", Ref{RefVideo, "abc"}},
		{"https://www.youtube.com/shorts/short1", Ref{RefVideo, "short1"}},
		{"https://www.youtube.com/channel/UC42/videos", Ref{RefChannel, "UC42"}},
		{"youtube:https://youtu.be/abc123", Ref{RefVideo, "abc123"}},
	}
	for _, c := range cases {
		ref, err := ParseURI(c.input)
		if assert.NoError(err, c.input) {
			assert.Equal(c.expected, ref, c.input)
		}
	}
}

func TestParseURIInvalid(t *testing.T) {
	assert := assert_.New(t)
	for _, input := range []string{
		"",
		"spotify:track:abc",
		"youtube:video:",
		"youtube:video/Trailing dot.",
		"youtube:album:abc",
		"https://example.com/watch?v=abc",
		"https://www.youtube.com/watch",
		"https://youtu.be/",
		"ftp://youtu.be/abc",
		"https://example.com/x?list=PL1",
		"youtube:https://evil.test/?list=PL1",
	} {
		_, err := ParseURI(input)
		assert.ErrorIs(err, ErrInvalidURI, input)
	}
}

func TestRefURI(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("youtube:video:abc", VideoURI("abc"))
	assert.Equal("youtube:playlist:PL1", PlaylistURI("PL1"))
	assert.Equal("youtube:channel:UC1", ChannelURI("UC1"))
	ref, err := ParseURI(VideoURI("abc"))
	assert.NoError(err)
	assert.Equal("abc", ref.ID)
}
