package entry

import (
	"sync"

	vr "github.com/alanbriolat/video-resolver"
)

// An Entry is a Video or a Playlist.
type Entry interface {
	ID() string
	URI() string
	Kind() vr.RefKind
	Title() Value[string]
	Channel() Value[string]
	Thumbnails() Value[[]string]
}

// entry holds the cells shared by videos and playlists. Cells are created on first use and never replaced.
type entry struct {
	id string
	r  *Resolver

	mu    sync.Mutex
	cells map[Field]cell
}

func newEntry(r *Resolver, id string) entry {
	return entry{id: id, r: r, cells: make(map[Field]cell)}
}

func (e *entry) ID() string {
	return e.id
}

// claim creates pending cells for those fields that don't have a cell yet, returning only the new ones. Whoever
// claims a cell is responsible for resolving it.
func (e *entry) claim(fields []Field) cells {
	e.mu.Lock()
	defer e.mu.Unlock()
	var claimed cells
	for _, f := range fields {
		if _, ok := e.cells[f]; ok {
			continue
		}
		c := newCell(f)
		e.cells[f] = c
		claimed = append(claimed, c)
	}
	return claimed
}

// value returns the cell for a field, creating a pending one if necessary. created means the caller now owns it.
func value[T any](e *entry, f Field) (v Value[T], created bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.cells[f]; ok {
		return c.(Value[T]), false
	}
	v = newValue[T]()
	e.cells[f] = v
	return v, true
}

// peek returns the cell for a field if it exists.
func peek[T any](e *entry, f Field) (Value[T], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.cells[f]
	if !ok {
		return Value[T]{}, false
	}
	return c.(Value[T]), true
}

// provide resolves a field to value, whether or not anyone has asked for it yet. A field that is already resolved
// keeps its value.
func provide[T any](e *entry, f Field, v T) {
	e.mu.Lock()
	c, ok := e.cells[f]
	if !ok {
		e.cells[f] = resolvedValue(v)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	c.(Value[T]).set(v)
}

// absorb fills whichever of the common fields the item carries.
func (e *entry) absorb(item *vr.Item) {
	if item.Snippet.Title != "" {
		provide(e, FieldTitle, item.Snippet.Title)
	}
	if item.Snippet.ChannelTitle != "" {
		provide(e, FieldChannel, item.Snippet.ChannelTitle)
	}
	if urls := item.ThumbnailURLs(); len(urls) > 0 {
		provide(e, FieldThumbnails, urls)
	}
}
