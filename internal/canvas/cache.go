package canvas

import (
	"container/list"
	"image"

	"github.com/gogpu/gg"
)

// DefaultCacheSize bounds the decode cache. Entries past the limit are
// evicted least-recently-drawn first; an evicted item simply decodes again
// the next time it scrolls into view.
const DefaultCacheSize = 256

type entryState int

const (
	entryLoading entryState = iota
	entryReady
	entryBroken
)

type cacheEntry struct {
	id    string
	state entryState
	buf   *gg.ImageBuf
	elem  *list.Element
}

// imageCache is an id-keyed LRU of decoded item images. It is only touched
// from the render loop's thread; decode goroutines hand results back through
// the Grid's completion channel rather than writing here directly.
type imageCache struct {
	capacity int
	entries  map[string]*cacheEntry
	order    *list.List // front = most recently used
}

func newImageCache(capacity int) *imageCache {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}
	return &imageCache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry),
		order:    list.New(),
	}
}

// get returns the entry for id, marking it most recently used.
func (c *imageCache) get(id string) (*cacheEntry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	return e, true
}

// insertLoading records that a decode is in flight, evicting if needed.
func (c *imageCache) insertLoading(id string) {
	if _, ok := c.entries[id]; ok {
		return
	}
	e := &cacheEntry{id: id, state: entryLoading}
	e.elem = c.order.PushFront(e)
	c.entries[id] = e

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(*cacheEntry)
		c.order.Remove(oldest)
		delete(c.entries, victim.id)
	}
}

// complete stores a decode result. A nil image marks the entry broken: the
// item keeps rendering as an empty clipped rectangle instead of failing the
// frame. Completions for evicted entries are dropped.
func (c *imageCache) complete(id string, img image.Image) {
	e, ok := c.entries[id]
	if !ok {
		return
	}
	if img == nil {
		e.state = entryBroken
		return
	}
	e.buf = gg.ImageBufFromImage(img)
	e.state = entryReady
}

func (c *imageCache) len() int {
	return len(c.entries)
}
