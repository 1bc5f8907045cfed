package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
)

// Source serves ListVideos and ListPlaylists from the store where it can, only asking the wrapped DataSource for
// what is missing or stale. Everything else goes straight to the wrapped DataSource.
type Source struct {
	vr.DataSource
	db  *DB
	ttl time.Duration
	now func() time.Time
	log *zap.SugaredLogger
}

func Wrap(db *DB, inner vr.DataSource, ttl time.Duration) *Source {
	return &Source{
		DataSource: inner,
		db:         db,
		ttl:        ttl,
		now:        time.Now,
		log:        zap.S().Named("store"),
	}
}

func (s *Source) Verify(ctx context.Context) error {
	if v, ok := s.DataSource.(vr.Verifier); ok {
		return v.Verify(ctx)
	}
	return nil
}

func (s *Source) ListVideos(ctx context.Context, ids []string) (vr.ItemList, error) {
	return s.list(ctx, Buckets.Videos, ids, s.DataSource.ListVideos, vr.ItemList.ByVideoID)
}

func (s *Source) ListPlaylists(ctx context.Context, ids []string) (vr.ItemList, error) {
	return s.list(ctx, Buckets.Playlists, ids, s.DataSource.ListPlaylists, vr.ItemList.ByPlaylistID)
}

func (s *Source) list(
	ctx context.Context,
	bucket []byte,
	ids []string,
	fetch func(context.Context, []string) (vr.ItemList, error),
	index func(vr.ItemList) map[string]*vr.Item,
) (vr.ItemList, error) {
	now := s.now()
	cached, missing, err := s.db.Get(bucket, ids, now.Add(-s.ttl))
	if err != nil {
		s.log.Warnw("reading store failed", "bucket", string(bucket), "error", err)
		cached, missing = nil, ids
	}
	if len(missing) == 0 {
		return cached, nil
	}
	fetched, err := fetch(ctx, missing)
	if err != nil {
		if len(cached) == 0 {
			return nil, err
		}
		s.log.Warnw("fetching failed, returning stored items only", "bucket", string(bucket), "missing", len(missing), "error", err)
		return cached, nil
	}
	if err := s.db.Put(bucket, index(fetched), now); err != nil {
		s.log.Warnw("writing store failed", "bucket", string(bucket), "error", err)
	}
	return append(cached, fetched...), nil
}

var (
	_ vr.DataSource = (*Source)(nil)
	_ vr.Verifier   = (*Source)(nil)
)
