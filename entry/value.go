package entry

import (
	"context"

	"github.com/alanbriolat/video-resolver/generic"
	sync_ "github.com/alanbriolat/video-resolver/internal/sync"
)

// Field names one lazily resolved attribute of an entry.
type Field int

const (
	FieldTitle Field = iota
	FieldChannel
	FieldLength
	FieldThumbnails
	FieldVideoCount
	FieldAudioURL
	FieldRelatedVideos
	FieldVideos
)

var fieldNames = map[Field]string{
	FieldTitle:         "title",
	FieldChannel:       "channel",
	FieldLength:        "length",
	FieldThumbnails:    "thumbnails",
	FieldVideoCount:    "videoCount",
	FieldAudioURL:      "audioUrl",
	FieldRelatedVideos: "relatedVideos",
	FieldVideos:        "videos",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Value is a field that is either pending or resolved. It resolves exactly once, either to a value or to None when
// the value could not be found, and every reader sees the same outcome.
type Value[T any] struct {
	future *sync_.Future[generic.Option[T]]
}

func newValue[T any]() Value[T] {
	return Value[T]{future: sync_.NewFuture[generic.Option[T]]()}
}

func resolvedValue[T any](value T) Value[T] {
	return Value[T]{future: sync_.ResolvedFuture(generic.Some(value))}
}

// Get blocks until the field is resolved, returning the value and whether there was one.
func (v Value[T]) Get() (T, bool) {
	return v.future.Get().Get()
}

// Option blocks until the field is resolved.
func (v Value[T]) Option() generic.Option[T] {
	return v.future.Get()
}

// Wait is like Option, but gives up when ctx is done.
func (v Value[T]) Wait(ctx context.Context) (generic.Option[T], error) {
	return v.future.Wait(ctx)
}

// Done returns a channel that is closed once the field is resolved.
func (v Value[T]) Done() <-chan struct{} {
	return v.future.Done()
}

func (v Value[T]) IsResolved() bool {
	return v.future.IsSet()
}

func (v Value[T]) set(value T) bool {
	return v.future.Set(generic.Some(value))
}

func (v Value[T]) setNone() bool {
	return v.future.Set(generic.None[T]())
}

type cell interface {
	IsResolved() bool
	setNone() bool
}

func newCell(f Field) cell {
	switch f {
	case FieldTitle, FieldChannel, FieldAudioURL:
		return newValue[string]()
	case FieldLength, FieldVideoCount:
		return newValue[int]()
	case FieldThumbnails:
		return newValue[[]string]()
	case FieldRelatedVideos, FieldVideos:
		return newValue[[]*Video]()
	default:
		panic("unknown field " + f.String())
	}
}

// cells is the set of cells one job is responsible for.
type cells []cell

// release resolves every cell that is still pending to None.
func (cs cells) release() int {
	n := 0
	for _, c := range cs {
		if c.setNone() {
			n++
		}
	}
	return n
}
