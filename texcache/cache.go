package texcache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/internal/event"
)

// Cache errors.
var (
	// ErrContextLost is returned while the GPU context is lost. Callers
	// defer and retry after restoration; frames must not be dropped
	// silently.
	ErrContextLost = errors.New("texcache: GPU context lost")

	// ErrCacheDisposed is returned when operating on a disposed cache.
	ErrCacheDisposed = errors.New("texcache: cache disposed")

	// ErrKeyNotFound is returned by UpdateTexture for an absent key.
	// Non-fatal: the caller falls back to GetTexture.
	ErrKeyNotFound = errors.New("texcache: key not found")

	// ErrBudgetExceeded is returned when a single texture cannot fit the
	// byte budget even after evicting everything else.
	ErrBudgetExceeded = errors.New("texcache: texture exceeds memory budget")
)

// Default cache limits.
const (
	// DefaultMaxBytes is the default byte budget (512 MiB).
	DefaultMaxBytes uint64 = 512 * 1024 * 1024

	// DefaultMaxEntries is the default entry-count cap.
	DefaultMaxEntries = 100
)

// Config holds cache construction options.
type Config struct {
	// MaxBytes is the byte budget. Defaults to DefaultMaxBytes if 0.
	MaxBytes uint64

	// MaxEntries is the entry-count cap. Defaults to DefaultMaxEntries
	// if <= 0.
	MaxEntries int

	// Creator, when set, backs cache entries with device textures.
	// A nil Creator produces logical textures (headless / tests).
	Creator gpucontext.TextureCreator
}

// Stats contains cache usage statistics for diagnostics.
type Stats struct {
	UsedBytes  uint64
	MaxBytes   uint64
	EntryCount int
	MaxEntries int
	Hits       uint64
	Misses     uint64
	Evictions  uint64
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Cache[%d/%d MB, %d/%d entries, %d hits, %d misses, %d evictions]",
		s.UsedBytes/(1024*1024), s.MaxBytes/(1024*1024),
		s.EntryCount, s.MaxEntries, s.Hits, s.Misses, s.Evictions)
}

// entry is one cached texture with its LRU position.
type entry struct {
	key  string
	tex  *Texture
	elem *list.Element
}

// Cache is the keyed LRU texture pool.
//
// Although the render loop is the sole owner, the cache is internally
// locked so out-of-band context-loss notifications may arrive from the
// host's event thread between renders.
type Cache struct {
	mu sync.Mutex

	creator gpucontext.TextureCreator

	maxBytes   uint64
	maxEntries int
	usedBytes  uint64

	entries map[string]*entry
	lru     *list.List // front = most recently used

	lost   bool
	closed bool

	hits      uint64
	misses    uint64
	evictions uint64

	restored *event.Bus[struct{}]
}

// New creates a cache with the given configuration.
func New(cfg Config) *Cache {
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		creator:    cfg.Creator,
		maxBytes:   maxBytes,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		lru:        list.New(),
		restored:   event.NewBus[struct{}](),
	}
}

// GetTexture returns the cached texture for key, allocating or resizing as
// needed.
//
// A hit with matching dimensions and format is promoted to most recently
// used and returned unchanged — no GPU allocation. A hit with different
// dimensions or format destroys the old entry and allocates fresh. Before
// allocating, least-recently-used entries are evicted until both the byte
// budget and the entry cap can accommodate the new texture.
func (c *Cache) GetTexture(key string, width, height int, format Format) (*Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCacheDisposed
	}
	if c.lost {
		return nil, ErrContextLost
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	if e, ok := c.entries[key]; ok {
		if e.tex.width == width && e.tex.height == height && e.tex.format == format {
			c.lru.MoveToFront(e.elem)
			c.hits++
			return e.tex, nil
		}
		// Dimension or format change: the old allocation is useless.
		c.removeLocked(e, true)
	}
	c.misses++

	sizeBytes := uint64(width) * uint64(height) * uint64(format.BytesPerPixel())
	if sizeBytes > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes > budget %d", ErrBudgetExceeded, sizeBytes, c.maxBytes)
	}

	// Make room: both caps must hold once the new entry is inserted.
	for (c.usedBytes+sizeBytes > c.maxBytes || len(c.entries)+1 > c.maxEntries) && c.lru.Len() > 0 {
		oldest := c.lru.Back().Value.(*entry)
		c.removeLocked(oldest, true)
		c.evictions++
	}

	tex, err := c.allocateLocked(key, width, height, sizeBytes, format)
	if err != nil {
		return nil, err
	}

	e := &entry{key: key, tex: tex}
	e.elem = c.lru.PushFront(e)
	c.entries[key] = e
	c.usedBytes += sizeBytes

	mediaview.Logger().Debug("texcache: allocated",
		"key", key, "size", fmt.Sprintf("%dx%d", width, height), "format", format.String())
	return tex, nil
}

// UpdateTexture uploads new pixel data into an existing entry through the
// partial-update path (no reallocation) and promotes it to most recently
// used.
//
// Returns (false, ErrKeyNotFound) when key is absent; the caller falls
// back to GetTexture. Returns (false, ErrContextLost) while the context is
// lost so the caller can defer instead.
func (c *Cache) UpdateTexture(key string, pixels []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrCacheDisposed
	}
	if c.lost {
		return false, ErrContextLost
	}

	e, ok := c.entries[key]
	if !ok {
		return false, ErrKeyNotFound
	}
	if err := e.tex.upload(pixels); err != nil {
		return false, err
	}
	c.lru.MoveToFront(e.elem)
	return true, nil
}

// Remove destroys the entry for key. Returns true if it existed.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(e, !c.lost)
	return true
}

// Clear destroys every entry. The cache remains usable.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.clearLocked(!c.lost)
}

// NotifyContextLost drops all entries from bookkeeping without issuing GPU
// deletes — the lost context already invalidated every resource. Until
// NotifyContextRestored, allocation fails fast with ErrContextLost.
func (c *Cache) NotifyContextLost() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.lost {
		return
	}
	c.lost = true
	c.clearLocked(false)
	mediaview.Logger().Warn("texcache: GPU context lost, cache invalidated")
}

// NotifyContextRestored re-enables allocation. Entries are not re-created
// eagerly; they repopulate lazily on the next GetTexture calls.
func (c *Cache) NotifyContextRestored() {
	c.mu.Lock()
	if c.closed || !c.lost {
		c.mu.Unlock()
		return
	}
	c.lost = false
	bus := c.restored
	c.mu.Unlock()

	mediaview.Logger().Info("texcache: GPU context restored")
	bus.Publish(struct{}{})
}

// Lost reports whether the cache is in the lost state.
func (c *Cache) Lost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lost
}

// OnRestore subscribes to context restoration. The render loop uses this
// to schedule a redraw instead of polling.
func (c *Cache) OnRestore(fn func()) *event.Subscription {
	return c.restored.Subscribe(func(struct{}) { fn() })
}

// Stats returns current usage statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		UsedBytes:  c.usedBytes,
		MaxBytes:   c.maxBytes,
		EntryCount: len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}

// UsedBytes returns the current total of cached texture bytes.
func (c *Cache) UsedBytes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedBytes
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether key is currently cached.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// SetBudget updates the caps, evicting LRU entries if the cache is now
// over either limit.
func (c *Cache) SetBudget(maxBytes uint64, maxEntries int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if maxBytes > 0 {
		c.maxBytes = maxBytes
	}
	if maxEntries > 0 {
		c.maxEntries = maxEntries
	}
	for (c.usedBytes > c.maxBytes || len(c.entries) > c.maxEntries) && c.lru.Len() > 0 {
		oldest := c.lru.Back().Value.(*entry)
		c.removeLocked(oldest, !c.lost)
		c.evictions++
	}
}

// Dispose deterministically releases every cached GPU resource and detaches
// all restore listeners. Dispose is idempotent.
func (c *Cache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.clearLocked(!c.lost)
	c.closed = true
	// Replacing the bus detaches every OnRestore handler.
	c.restored = event.NewBus[struct{}]()
}

// allocateLocked creates the backing texture. Caller must hold mu.
func (c *Cache) allocateLocked(key string, width, height int, sizeBytes uint64, format Format) (*Texture, error) {
	tex := &Texture{
		width:     width,
		height:    height,
		format:    format,
		sizeBytes: sizeBytes,
		label:     key,
	}

	// Device textures are created through gpucontext, which speaks 8-bit
	// RGBA; float formats keep logical entries and upload at draw time.
	if c.creator != nil && format == FormatRGBA8 {
		gpu, err := c.creator.NewTextureFromRGBA(width, height, make([]byte, sizeBytes))
		if err != nil {
			return nil, fmt.Errorf("texcache: device allocation failed: %w", err)
		}
		tex.gpu = gpu
	}
	return tex, nil
}

// removeLocked detaches an entry and destroys its texture.
// Caller must hold mu.
func (c *Cache) removeLocked(e *entry, issueDelete bool) {
	c.lru.Remove(e.elem)
	delete(c.entries, e.key)
	c.usedBytes -= e.tex.sizeBytes
	e.tex.destroy(issueDelete)
}

// clearLocked removes every entry. Caller must hold mu.
func (c *Cache) clearLocked(issueDelete bool) {
	for _, e := range c.entries {
		e.tex.destroy(issueDelete)
	}
	c.entries = make(map[string]*entry)
	c.lru.Init()
	c.usedBytes = 0
}
