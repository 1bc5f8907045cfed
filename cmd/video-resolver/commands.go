package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/async"
	"github.com/alanbriolat/video-resolver/entry"
	"github.com/alanbriolat/video-resolver/generic"
	"github.com/alanbriolat/video-resolver/session"
	"github.com/alanbriolat/video-resolver/store"
)

var errUsage = errors.New("wrong number of arguments")

func commands(ctx context.Context) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "lookup",
			Usage:     "show what videos and playlists are",
			ArgsUsage: "URI...",
			Action:    withSession(ctx, lookup),
		},
		{
			Name:      "search",
			Usage:     "search for videos and playlists",
			ArgsUsage: "QUERY...",
			Action:    withSession(ctx, search),
		},
		{
			Name:      "playlist",
			Usage:     "list the videos in a playlist",
			ArgsUsage: "URI",
			Action:    withSession(ctx, playlist),
		},
		{
			Name:      "channel",
			Usage:     "list the playlists of a channel",
			ArgsUsage: "URI|ID",
			Action:    withSession(ctx, channel),
		},
		{
			Name:      "related",
			Usage:     "list videos related to a video",
			ArgsUsage: "URI",
			Action:    withSession(ctx, related),
		},
		{
			Name:      "autoplay",
			Usage:     "follow related videos from a seed video",
			ArgsUsage: "URI",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"n"},
					Value:   5,
					Usage:   "number of videos to choose",
				},
			},
			Action: withSession(ctx, autoplay),
		},
		{
			Name:      "stream",
			Usage:     "print the audio stream URL of a video",
			ArgsUsage: "URI",
			Action:    withSession(ctx, streamURL),
		},
		{
			Name:  "purge",
			Usage: "remove expired items from the metadata store",
			Action: func(c *cli.Context) error {
				return purge(configFromFlags(c))
			},
		},
	}
}

func lookup(c *cli.Context, s *session.Session) error {
	if c.NArg() == 0 {
		return errUsage
	}
	var entries []entry.Entry
	for _, uri := range c.Args().Slice() {
		e, err := s.Resolver().Lookup(uri)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	return printEntries(c.Context, entries)
}

func search(c *cli.Context, s *session.Session) error {
	if c.NArg() == 0 {
		return errUsage
	}
	query := strings.Join(c.Args().Slice(), " ")
	entries := s.Resolver().Search(c.Context, query)
	if len(entries) == 0 {
		zap.S().Warnw("no results", "query", query)
	}
	return printEntries(c.Context, entries)
}

func playlist(c *cli.Context, s *session.Session) error {
	if c.NArg() != 1 {
		return errUsage
	}
	e, err := s.Resolver().Lookup(c.Args().First())
	if err != nil {
		return err
	}
	p, ok := e.(*entry.Playlist)
	if !ok {
		return fmt.Errorf("%v is not a playlist", e.URI())
	}
	if err := printEntries(c.Context, []entry.Entry{p}); err != nil {
		return err
	}

	videos, err := p.Videos().Wait(c.Context)
	if err != nil {
		return err
	}
	list, ok := videos.Get()
	if !ok {
		return fmt.Errorf("could not list videos of %v", p.URI())
	}
	bar := progressbar.Default(int64(len(list)), "loading")
	for _, v := range list {
		if _, err := v.Title().Wait(c.Context); err != nil {
			return err
		}
		generic.Unwrap_(bar.Add(1))
	}
	generic.Unwrap_(bar.Finish())

	entries := make([]entry.Entry, len(list))
	for i, v := range list {
		entries[i] = v
	}
	return printEntries(c.Context, entries)
}

func channel(c *cli.Context, s *session.Session) error {
	if c.NArg() != 1 {
		return errUsage
	}
	id := c.Args().First()
	if ref, err := vr.ParseURI(id); err == nil {
		if ref.Kind != vr.RefChannel {
			return fmt.Errorf("%v is not a channel", ref)
		}
		id = ref.ID
	}
	playlists := s.Resolver().ChannelPlaylists(c.Context, id)
	entries := make([]entry.Entry, len(playlists))
	for i, p := range playlists {
		entries[i] = p
	}
	return printEntries(c.Context, entries)
}

func related(c *cli.Context, s *session.Session) error {
	v, err := videoArg(c, s)
	if err != nil {
		return err
	}
	videos, err := v.RelatedVideos().Wait(c.Context)
	if err != nil {
		return err
	}
	var entries []entry.Entry
	for _, r := range videos.UnwrapOrDefault() {
		entries = append(entries, r)
	}
	return printEntries(c.Context, entries)
}

func autoplay(c *cli.Context, s *session.Session) error {
	v, err := videoArg(c, s)
	if err != nil {
		return err
	}
	events, err := s.Subscribe()
	if err != nil {
		return err
	}
	defer events.Close()
	go logEvents(events.Receive())

	s.Play(v)
	current := v
	for i := 0; i < c.Int("count"); i++ {
		next, err := s.Autoplay(c.Context, current)
		if err != nil {
			return err
		}
		if err := printEntries(c.Context, []entry.Entry{next}); err != nil {
			return err
		}
		s.Play(next)
		current = next
	}
	return nil
}

func logEvents(events <-chan session.Event) {
	log := zap.S().Named("events")
	for event := range events {
		switch e := event.(type) {
		case session.VideoPlayed:
			log.Debugw("played", "video", e.Video().ID())
		case session.AutoplayChosen:
			log.Infow("autoplay chose", "video", e.Video().ID(), "from", e.From, "degrees", e.Degrees)
		case session.AutoplayFailed:
			log.Warnw("autoplay failed", "error", e.Err)
		}
	}
}

func streamURL(c *cli.Context, s *session.Session) error {
	v, err := videoArg(c, s)
	if err != nil {
		return err
	}
	url, err := v.AudioURL().Wait(c.Context)
	if err != nil {
		return err
	}
	if u, ok := url.Get(); ok {
		fmt.Println(u)
		return nil
	}
	return fmt.Errorf("no audio stream found for %v", v.URI())
}

func purge(config vr.Config) error {
	if config.StorePath == "" {
		return errors.New("no store configured")
	}
	db, err := store.Open(config.StorePath)
	if err != nil {
		return err
	}
	defer db.Close()
	removed, err := db.Purge(time.Now().Add(-config.StoreTTL))
	if err != nil {
		return err
	}
	videos := generic.Unwrap(db.Count(store.Buckets.Videos))
	playlists := generic.Unwrap(db.Count(store.Buckets.Playlists))
	zap.S().Infow("purged store", "removed", removed, "videos", videos, "playlists", playlists)
	return nil
}

func videoArg(c *cli.Context, s *session.Session) (*entry.Video, error) {
	if c.NArg() != 1 {
		return nil, errUsage
	}
	e, err := s.Resolver().Lookup(c.Args().First())
	if err != nil {
		return nil, err
	}
	v, ok := e.(*entry.Video)
	if !ok {
		return nil, fmt.Errorf("%v is not a video", e.URI())
	}
	return v, nil
}

// printEntries describes every entry concurrently, then prints them in order.
func printEntries(ctx context.Context, entries []entry.Entry) error {
	results := make([]<-chan generic.Result[string], len(entries))
	for i, e := range entries {
		e := e
		results[i] = async.RunResult(func() (string, error) { return describe(ctx, e) })
	}
	for _, result := range results {
		line, err := (<-result).Parts()
		if err != nil {
			return err
		}
		fmt.Println(line)
	}
	return nil
}

func describe(ctx context.Context, e entry.Entry) (string, error) {
	title, err := e.Title().Wait(ctx)
	if err != nil {
		return "", err
	}
	channel, err := e.Channel().Wait(ctx)
	if err != nil {
		return "", err
	}
	var extra string
	switch e := e.(type) {
	case *entry.Video:
		length, err := e.Length().Wait(ctx)
		if err != nil {
			return "", err
		}
		extra = generic.Map(length, vr.FormatDuration).UnwrapOr("?")
	case *entry.Playlist:
		count, err := e.VideoCount().Wait(ctx)
		if err != nil {
			return "", err
		}
		extra = generic.Map(count, func(n int) string { return fmt.Sprintf("%d videos", n) }).UnwrapOr("? videos")
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", e.URI(), title.UnwrapOr("?"), channel.UnwrapOr("?"), extra), nil
}
