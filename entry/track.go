package entry

import (
	"context"
)

const AlbumName = "YouTube Video"

// Track is what a player queue needs to know about a video.
type Track struct {
	Name       string `json:"name"`
	DurationMs int    `json:"durationMs"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName"`
	ExternalID string `json:"externalId"`
	URI        string `json:"uri"`
}

// Track waits for the video's info and projects it into a Track. Missing fields are left empty, except the name,
// which falls back to the URI.
func (v *Video) Track(ctx context.Context) (Track, error) {
	title, err := v.Title().Wait(ctx)
	if err != nil {
		return Track{}, err
	}
	length, err := v.Length().Wait(ctx)
	if err != nil {
		return Track{}, err
	}
	channel, err := v.Channel().Wait(ctx)
	if err != nil {
		return Track{}, err
	}
	return Track{
		Name:       title.UnwrapOr(v.URI()),
		DurationMs: length.UnwrapOrDefault() * 1000,
		ArtistName: channel.UnwrapOrDefault(),
		AlbumName:  AlbumName,
		ExternalID: v.id,
		URI:        v.URI(),
	}, nil
}

// Tracks waits for the playlist's videos and projects each of them into a Track.
func (p *Playlist) Tracks(ctx context.Context) ([]Track, error) {
	videos, err := p.Videos().Wait(ctx)
	if err != nil {
		return nil, err
	}
	var tracks []Track
	for _, v := range videos.UnwrapOrDefault() {
		t, err := v.Track(ctx)
		if err != nil {
			return tracks, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
