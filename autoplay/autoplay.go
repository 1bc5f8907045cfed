// Package autoplay picks what to play next by walking related videos, without wandering too far from where it
// started.
package autoplay

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	vr "github.com/alanbriolat/video-resolver"
	"github.com/alanbriolat/video-resolver/entry"
	"github.com/alanbriolat/video-resolver/generic"
	sync_ "github.com/alanbriolat/video-resolver/internal/sync"
)

var (
	ErrNoCandidates = errors.New("no suitable related videos")
	ErrNotSeeded    = errors.New("autoplay has no video to start from")
)

// History is the set of videos that have already been played in a session.
type History struct {
	played *sync_.Mutexed[generic.Set[string]]
}

func NewHistory() *History {
	return &History{played: sync_.NewMutexed(generic.NewSet[string]())}
}

// Add marks a video as played, returning false if it already was.
func (h *History) Add(id string) bool {
	var added bool
	_ = h.played.Locked(func(s generic.Set[string]) error {
		added = s.Add(id)
		return nil
	})
	return added
}

func (h *History) Contains(id string) bool {
	var found bool
	_ = h.played.Locked(func(s generic.Set[string]) error {
		found = s.Contains(id)
		return nil
	})
	return found
}

func (h *History) Len() int {
	var n int
	_ = h.played.Locked(func(s generic.Set[string]) error {
		n = s.Count()
		return nil
	})
	return n
}

func (h *History) Clear() {
	_ = h.played.Locked(func(s generic.Set[string]) error {
		s.Clear()
		return nil
	})
}

// Autoplayer chooses the next video from the related videos of the current one. After MaxDegreesOfSeparation steps
// away from the seed it goes back to choosing from the seed's related videos.
type Autoplayer struct {
	resolver   *entry.Resolver
	history    *History
	maxDegrees int
	maxLength  int

	mu      sync.Mutex
	root    string
	degrees int
	rnd     *rand.Rand

	log *zap.SugaredLogger
}

func New(resolver *entry.Resolver, history *History, config vr.Config) *Autoplayer {
	return &Autoplayer{
		resolver:   resolver,
		history:    history,
		maxDegrees: config.MaxDegreesOfSeparation,
		maxLength:  config.MaxAutoplayLength,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		log:        zap.S().Named("autoplay"),
	}
}

// Seed sets the video that autoplay starts from and returns to, and marks it as played.
func (a *Autoplayer) Seed(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.root = id
	a.degrees = 0
	a.history.Add(id)
}

// SeedIfUnset seeds autoplay with id only if there is no seed yet, reporting whether it did. Either way the video
// is marked as played.
func (a *Autoplayer) SeedIfUnset(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history.Add(id)
	if a.root != "" {
		return false
	}
	a.root = id
	a.degrees = 0
	return true
}

// Root returns the current seed, or "" if there isn't one.
func (a *Autoplayer) Root() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root
}

// Degrees returns how many steps the last choice was from the seed.
func (a *Autoplayer) Degrees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.degrees
}

func (a *Autoplayer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.root = ""
	a.degrees = 0
}

// Next picks a video to follow current (or the seed, if current is ""), marking it as played. Candidates that are
// live or of unknown length, longer than MaxAutoplayLength, or already played are skipped. If nothing is left the
// result is ErrNoCandidates.
func (a *Autoplayer) Next(ctx context.Context, current string) (*entry.Video, error) {
	base, err := a.step(current)
	if err != nil {
		return nil, err
	}
	related, err := a.resolver.Video(base).RelatedVideos().Wait(ctx)
	if err != nil {
		return nil, err
	}
	var candidates []*entry.Video
	for _, v := range related.UnwrapOrDefault() {
		ok, err := a.suitable(ctx, v)
		if err != nil {
			return nil, err
		}
		if ok {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		a.log.Infow("no autoplay candidates", "base", base, "related", len(related.UnwrapOrDefault()))
		return nil, ErrNoCandidates
	}
	next := candidates[a.choose(len(candidates))]
	a.history.Add(next.ID())
	a.log.Debugw("autoplay", "base", base, "next", next.ID(), "candidates", len(candidates))
	return next, nil
}

// step decides which video to take related videos from.
func (a *Autoplayer) step(current string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.root == "" {
		if current == "" {
			return "", ErrNotSeeded
		}
		a.root = current
		a.degrees = 0
		a.history.Add(current)
	}
	if current == "" {
		current = a.root
	}
	if a.maxDegrees <= 0 || a.degrees < a.maxDegrees {
		a.degrees++
		return current, nil
	}
	a.log.Debugw("returning to seed", "seed", a.root, "degrees", a.degrees)
	a.degrees = 1
	return a.root, nil
}

func (a *Autoplayer) suitable(ctx context.Context, v *entry.Video) (bool, error) {
	if a.history.Contains(v.ID()) {
		return false, nil
	}
	length, err := v.Length().Wait(ctx)
	if err != nil {
		return false, err
	}
	seconds, ok := length.Get()
	if !ok || seconds <= 0 {
		return false, nil
	}
	if a.maxLength > 0 && seconds > a.maxLength {
		return false, nil
	}
	return true, nil
}

func (a *Autoplayer) choose(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rnd.Intn(n)
}
