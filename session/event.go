package session

import (
	"github.com/alanbriolat/video-resolver/entry"
)

type Event interface {
	// The Video this event relates to (nil if not a Video-specific event).
	Video() *entry.Video
}

type videoEvent struct {
	video *entry.Video
}

func (e videoEvent) Video() *entry.Video {
	return e.video
}

type VideoPlayed struct {
	videoEvent
}

type AutoplayChosen struct {
	videoEvent
	// From is the id of the video whose related videos it was chosen from.
	From    string
	Degrees int
}

type AutoplayFailed struct {
	videoEvent
	Err error
}

type SessionReset struct {
	videoEvent
}
