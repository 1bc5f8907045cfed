// Package session ties a backend, the resolver and autoplay state together for the lifetime of one configuration.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/autoplay"
	"github.com/alanbriolat/video-resolver/datasource/player"
	"github.com/alanbriolat/video-resolver/entry"
	"github.com/alanbriolat/video-resolver/internal/pubsub"
	"github.com/alanbriolat/video-resolver/store"
	"github.com/alanbriolat/video-resolver/stream"
)

var ErrClosed = errors.New("session closed")

// Session owns everything that would otherwise be process-wide state: the chosen backend, the entry caches, and
// the history of played videos. Reconfiguring means closing the Session and creating a new one.
type Session struct {
	ID      uuid.UUID
	Backend string

	config    vr.Config
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *zap.SugaredLogger

	source   vr.DataSource
	db       *store.DB
	resolver *entry.Resolver
	history  *autoplay.History
	autoplay *autoplay.Autoplayer
	events   *pubsub.Publisher[Event]

	closeOnce sync.Once
	closeErr  error
}

// Options for things New would otherwise build itself.
type Options struct {
	// Registry to open the backend from, vr.DefaultRegistry if nil.
	Registry *vr.BackendRegistry
	// Audio extractor, a stream.Extractor sharing the session's HTTP client if nil.
	Audio entry.AudioExtractor
}

func New(ctx context.Context, config vr.Config, opts Options) (*Session, error) {
	id := uuid.New()
	log := zap.S().Named("session").With("session", id.String())
	ctx, cancel := context.WithCancel(vr.WithLogger(ctx, log.Desugar()))
	s := &Session{
		ID:        id,
		ctx:       ctx,
		ctxCancel: cancel,
		log:       log,
	}
	if err := s.init(config, opts); err != nil {
		cancel()
		if s.db != nil {
			s.db.Close()
		}
		return nil, err
	}
	return s, nil
}

func (s *Session) init(config vr.Config, opts Options) (err error) {
	// every backend and the stream extractor share one client, and so one rate limit
	config.HTTPClient = config.Client()
	s.config = config

	registry := opts.Registry
	if registry == nil {
		registry = &vr.DefaultRegistry
	}
	if s.Backend, s.source, err = registry.Open(s.ctx, config); err != nil {
		return err
	}
	s.log.Infow("opened backend", "backend", s.Backend)

	if config.StorePath != "" {
		if s.db, err = store.Open(config.StorePath); err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		s.source = store.Wrap(s.db, s.source, config.StoreTTL)
	}

	audio := opts.Audio
	if audio == nil {
		audio = stream.New(player.NewClient(config.HTTPClient))
	}
	if s.resolver, err = entry.New(s.ctx, s.source, audio, config); err != nil {
		return err
	}
	s.history = autoplay.NewHistory()
	s.autoplay = autoplay.New(s.resolver, s.history, config)
	s.events = pubsub.NewPublisher[Event]()
	return nil
}

func (s *Session) Config() vr.Config {
	return s.config
}

func (s *Session) Resolver() *entry.Resolver {
	return s.resolver
}

func (s *Session) History() *autoplay.History {
	return s.history
}

func (s *Session) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	return s.events.Subscribe()
}

// Play records that a video has been played, and makes it the autoplay seed if there isn't one yet.
func (s *Session) Play(v *entry.Video) {
	s.autoplay.SeedIfUnset(v.ID())
	s.events.Send(VideoPlayed{videoEvent{v}})
}

// Seed restarts autoplay from a video.
func (s *Session) Seed(v *entry.Video) {
	s.autoplay.Seed(v.ID())
	s.events.Send(VideoPlayed{videoEvent{v}})
}

// Autoplay chooses a video to follow current (the seed if nil).
func (s *Session) Autoplay(ctx context.Context, current *entry.Video) (*entry.Video, error) {
	if s.ctx.Err() != nil {
		return nil, ErrClosed
	}
	from := ""
	if current != nil {
		from = current.ID()
	}
	next, err := s.autoplay.Next(ctx, from)
	if err != nil {
		s.events.Send(AutoplayFailed{videoEvent{current}, err})
		return nil, err
	}
	s.events.Send(AutoplayChosen{videoEvent{next}, from, s.autoplay.Degrees()})
	return next, nil
}

// Reset forgets played videos and the autoplay seed.
func (s *Session) Reset() {
	s.history.Clear()
	s.autoplay.Reset()
	s.events.Send(SessionReset{})
	s.log.Info("reset")
}

// Close stops the session; jobs still running see their context cancelled. It is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.ctxCancel()
		s.events.Close()
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
		s.log.Info("closed")
	})
	return s.closeErr
}
