package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/async"
	_ "github.com/alanbriolat/video-resolver/datasources"
	"github.com/alanbriolat/video-resolver/session"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level.SetLevel(zap.InfoLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = vr.WithLogger(ctx, logger)

	app := &cli.App{
		Name:  "video-resolver",
		Usage: "resolve YouTube videos and playlists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug messages",
			},
			&cli.StringFlag{
				Name:    "backend",
				Value:   vr.DefaultConfig.Backend,
				Usage:   "preferred backend, one of " + strings.Join(vr.DefaultRegistry.List(), ", "),
				EnvVars: []string{"VIDEO_RESOLVER_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "YouTube Data API `KEY`",
				EnvVars: []string{"VIDEO_RESOLVER_API_KEY"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   vr.DefaultConfig.HTTPTimeout,
				Usage:   "HTTP request timeout",
				EnvVars: []string{"VIDEO_RESOLVER_TIMEOUT"},
			},
			&cli.Float64Flag{
				Name:    "rate",
				Value:   vr.DefaultConfig.RequestsPerSecond,
				Usage:   "maximum HTTP requests per second (0 for unlimited)",
				EnvVars: []string{"VIDEO_RESOLVER_RATE"},
			},
			&cli.IntFlag{
				Name:    "search-results",
				Value:   vr.DefaultConfig.SearchResults,
				EnvVars: []string{"VIDEO_RESOLVER_SEARCH_RESULTS"},
			},
			&cli.IntFlag{
				Name:    "playlist-max-videos",
				Value:   vr.DefaultConfig.PlaylistMaxVideos,
				EnvVars: []string{"VIDEO_RESOLVER_PLAYLIST_MAX_VIDEOS"},
			},
			&cli.IntFlag{
				Name:    "max-workers",
				Value:   vr.DefaultConfig.MaxWorkers,
				EnvVars: []string{"VIDEO_RESOLVER_MAX_WORKERS"},
			},
			&cli.IntFlag{
				Name:    "cache-size",
				Value:   vr.DefaultConfig.CacheSize,
				EnvVars: []string{"VIDEO_RESOLVER_CACHE_SIZE"},
			},
			&cli.IntFlag{
				Name:    "max-degrees",
				Value:   vr.DefaultConfig.MaxDegreesOfSeparation,
				Usage:   "how far autoplay may wander from its seed video (0 for unbounded)",
				EnvVars: []string{"VIDEO_RESOLVER_MAX_DEGREES"},
			},
			&cli.IntFlag{
				Name:    "max-length",
				Value:   vr.DefaultConfig.MaxAutoplayLength,
				Usage:   "longest video autoplay may choose, in seconds (0 for no limit)",
				EnvVars: []string{"VIDEO_RESOLVER_MAX_LENGTH"},
			},
			&cli.PathFlag{
				Name:    "store",
				Usage:   "keep fetched metadata in the database at `FILE`",
				EnvVars: []string{"VIDEO_RESOLVER_STORE"},
			},
			&cli.DurationFlag{
				Name:    "store-ttl",
				Value:   vr.DefaultConfig.StoreTTL,
				Usage:   "how long stored metadata stays fresh",
				EnvVars: []string{"VIDEO_RESOLVER_STORE_TTL"},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				config.Level.SetLevel(zap.DebugLevel)
			}
			return nil
		},
		Commands:        commands(ctx),
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.RunContext(ctx, os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		logger.Error(ctx.Err().Error())
		stop()
	}
}

func configFromFlags(c *cli.Context) vr.Config {
	config := vr.DefaultConfig
	config.Backend = c.String("backend")
	config.APIKey = c.String("api-key")
	config.HTTPTimeout = c.Duration("timeout")
	config.RequestsPerSecond = c.Float64("rate")
	config.SearchResults = c.Int("search-results")
	config.PlaylistMaxVideos = c.Int("playlist-max-videos")
	config.MaxWorkers = c.Int("max-workers")
	config.CacheSize = c.Int("cache-size")
	config.MaxDegreesOfSeparation = c.Int("max-degrees")
	config.MaxAutoplayLength = c.Int("max-length")
	config.StorePath = c.Path("store")
	config.StoreTTL = c.Duration("store-ttl")
	return config
}

// withSession runs f with a session built from the global flags, closing it afterwards.
func withSession(ctx context.Context, f func(*cli.Context, *session.Session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := session.New(ctx, configFromFlags(c), session.Options{})
		if err != nil {
			return err
		}
		defer s.Close()
		return f(c, s)
	}
}
