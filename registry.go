package video_resolver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/alanbriolat/video-resolver/generic"
)

var (
	ErrDuplicateBackend = errors.New("duplicate backend name")
	ErrInvalidBackend   = errors.New("invalid backend")
	ErrNoBackend        = errors.New("no usable backend")
	ErrUnknownBackend   = errors.New("unknown backend")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

type OpenFunc = func(Config) (DataSource, error)

// A Backend knows how to construct one kind of DataSource.
type Backend struct {
	Name string
	Open OpenFunc
	// Priority of the backend when falling back, lower (including negative) means tried earlier.
	Priority int16
}

func (b Backend) WithPriority(priority int16) Backend {
	b.Priority = priority
	return b
}

// A BackendRegistry is a collection of Backend instances, one of which gets chosen when a session starts.
type BackendRegistry struct {
	backends   []*Backend
	backendMap map[string]*Backend
}

// Add registers a Backend. Backend.Name and Backend.Open must be set, and Backend.Name must be unique within the
// BackendRegistry.
func (r *BackendRegistry) Add(b Backend) error {
	if r.backendMap == nil {
		r.backendMap = make(map[string]*Backend)
	}
	if b.Name == "" || b.Open == nil {
		return ErrInvalidBackend
	}
	if _, ok := r.backendMap[b.Name]; ok {
		return ErrDuplicateBackend
	}
	r.backendMap[b.Name] = &b
	r.backends = append(r.backends, r.backendMap[b.Name])
	r.sortByPriority()
	return nil
}

// Create is a shortcut for Add(Backend{Name: ..., Open: ..., Priority: ...}).
func (r *BackendRegistry) Create(name string, f OpenFunc, priority int16) error {
	return r.Add(Backend{
		Name:     name,
		Open:     f,
		Priority: priority,
	})
}

// List returns the names of registered backends in priority order.
func (r *BackendRegistry) List() []string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name)
	}
	return names
}

// OpenWith constructs and verifies one specific backend.
func (r *BackendRegistry) OpenWith(ctx context.Context, name string, config Config) (DataSource, error) {
	b, ok := r.backendMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	source, err := b.Open(config)
	if err != nil {
		return nil, err
	}
	if v, ok := source.(Verifier); ok {
		if err := v.Verify(ctx); err != nil {
			return nil, err
		}
	}
	return source, nil
}

// Open tries config.Backend first and then every other backend in priority order, returning the first one that
// can be constructed and verified along with its name. Each fallback is logged as a warning.
func (r *BackendRegistry) Open(ctx context.Context, config Config) (string, DataSource, error) {
	log := zap.S().Named("registry")
	order := r.List()
	if config.Backend != "" {
		if _, ok := r.backendMap[config.Backend]; !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Backend)
		}
		order = append([]string{config.Backend}, without(order, config.Backend)...)
	}
	var result error
	for _, name := range order {
		source, err := r.OpenWith(ctx, name, config)
		if err == nil {
			if result != nil {
				log.Warnw("falling back to another backend", "backend", name, "error", result)
			}
			return name, source, nil
		}
		result = multierror.Append(result, multierror.Prefix(err, fmt.Sprintf("[%v]", name)))
	}
	if result == nil {
		return "", nil, ErrNoBackend
	}
	return "", nil, fmt.Errorf("%w: %v", ErrNoBackend, result)
}

// MustAdd wraps Add but panics if there is an error.
func (r *BackendRegistry) MustAdd(b Backend) {
	generic.Unwrap_(r.Add(b))
}

// MustCreate wraps Create but panics if there is an error.
func (r *BackendRegistry) MustCreate(name string, f OpenFunc, priority int16) {
	generic.Unwrap_(r.Create(name, f, priority))
}

func (r *BackendRegistry) sortByPriority() {
	sort.SliceStable(r.backends, func(i, j int) bool {
		return r.backends[i].Priority < r.backends[j].Priority
	})
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

var DefaultRegistry BackendRegistry
