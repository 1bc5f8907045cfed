package video_resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidURI = errors.New("unrecognised video URI")
)

// URI schemes accepted by ParseURI; the first is used when building URIs.
var Schemes = []string{"youtube", "yt"}

type RefKind string

const (
	RefVideo    RefKind = "video"
	RefPlaylist RefKind = "playlist"
	RefChannel  RefKind = "channel"
)

// A Ref identifies a video, playlist or channel.
type Ref struct {
	Kind RefKind
	ID   string
}

// URI returns the canonical URI for the Ref, e.g. "youtube:video:<id>".
func (r Ref) URI() string {
	return fmt.Sprintf("%s:%s:%s", Schemes[0], r.Kind, r.ID)
}

func (r Ref) String() string {
	return r.URI()
}

func VideoURI(id string) string {
	return Ref{Kind: RefVideo, ID: id}.URI()
}

func PlaylistURI(id string) string {
	return Ref{Kind: RefPlaylist, ID: id}.URI()
}

func ChannelURI(id string) string {
	return Ref{Kind: RefChannel, ID: id}.URI()
}

// ParseURI extracts a Ref from any of the supported identifier forms:
//
//	youtube:video:{ID}, yt:playlist:{ID}, youtube:channel:{ID}
//	youtube:video/{TITLE}.{ID}, youtube:playlist/{TITLE}.{ID}
//	http(s?)://(www|m|music).youtube.com/watch?v={ID}[&list={PLAYLIST_ID}]
//	http(s?)://(www|m|music).youtube.com/playlist?list={PLAYLIST_ID}
//	http(s?)://(www|m|music).youtube.com/(v|shorts|embed)/{ID}
//	http(s?)://(www|m).youtube.com/channel/{CHANNEL_ID}
//	http(s?)://youtu.be/{ID}
//	youtube:{any of the above URLs}
func ParseURI(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if scheme, rest, ok := strings.Cut(s, ":"); ok && isScheme(scheme) {
		if strings.HasPrefix(rest, "http://") || strings.HasPrefix(rest, "https://") {
			return parseURL(rest)
		}
		return parseSchemeURI(s, rest)
	}
	return parseURL(s)
}

func isScheme(s string) bool {
	for _, scheme := range Schemes {
		if s == scheme {
			return true
		}
	}
	return false
}

func parseSchemeURI(original, rest string) (Ref, error) {
	for _, kind := range []RefKind{RefVideo, RefPlaylist, RefChannel} {
		prefix := string(kind)
		if id, ok := strings.CutPrefix(rest, prefix+":"); ok && id != "" {
			return Ref{Kind: kind, ID: id}, nil
		}
		// Legacy form with the title embedded before the id
		if legacy, ok := strings.CutPrefix(rest, prefix+"/"); ok {
			if id := legacy[strings.LastIndex(legacy, ".")+1:]; id != "" {
				return Ref{Kind: kind, ID: id}, nil
			}
		}
	}
	return Ref{}, fmt.Errorf("%w: %q", ErrInvalidURI, original)
}

func parseURL(s string) (Ref, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidURI, s)
	}
	query := u.Query()
	var ref Ref
	switch strings.TrimPrefix(u.Hostname(), "www.") {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		// A playlist reference wins over the video it was opened at
		if list := query.Get("list"); list != "" {
			return Ref{Kind: RefPlaylist, ID: list}, nil
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case parts[0] == "watch" || parts[0] == "details":
			ref = Ref{Kind: RefVideo, ID: query.Get("v")}
		case (parts[0] == "v" || parts[0] == "shorts" || parts[0] == "embed") && len(parts) > 1:
			ref = Ref{Kind: RefVideo, ID: parts[1]}
		case parts[0] == "channel" && len(parts) > 1:
			ref = Ref{Kind: RefChannel, ID: parts[1]}
		}
	case "youtu.be":
		if list := query.Get("list"); list != "" {
			return Ref{Kind: RefPlaylist, ID: list}, nil
		}
		ref = Ref{Kind: RefVideo, ID: strings.Trim(u.Path, "/")}
	default:
		return Ref{}, fmt.Errorf("%w: unrecognised hostname %q", ErrInvalidURI, u.Hostname())
	}
	if ref.ID == "" {
		return Ref{}, fmt.Errorf("%w: could not extract id from %q", ErrInvalidURI, s)
	}
	return ref, nil
}
