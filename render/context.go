// Package render owns the per-viewer orchestration: one Context wires the
// texture cache, the pipeline state and the HDR output negotiator together
// and runs frames through them. There are no module-level singletons; a
// host embedding several viewers creates several Contexts.
package render

import (
	"errors"
	"sync/atomic"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/hdrout"
	"github.com/gogpu/mediaview/internal/event"
	"github.com/gogpu/mediaview/pipeline"
	"github.com/gogpu/mediaview/texcache"
)

// ErrNilFrame is returned by RenderFrame for a nil input frame.
var ErrNilFrame = errors.New("render: nil frame")

// Config collects the collaborators a Context needs. Every field is
// optional; the zero Config yields a fully functional headless context
// (logical textures, sdr-only output).
type Config struct {
	// Device, when set, is the host's shared GPU device provider.
	Device gpucontext.DeviceProvider

	// Textures configures the texture cache (budget, entry cap, creator).
	Textures texcache.Config

	// Prober and Surface are the HDR negotiation collaborators.
	Prober  hdrout.CapabilityProber
	Surface hdrout.SurfaceConfigurator
}

// Context is the explicit owner of one viewer's rendering state.
//
// The draw loop is single-threaded: RenderFrame snapshots the pipeline
// state at entry, so setters called concurrently from UI threads apply to
// the next frame, never mid-frame.
type Context struct {
	device gpucontext.DeviceProvider

	cache      *texcache.Cache
	state      *pipeline.State
	loader     *pipeline.Loader
	negotiator *hdrout.Negotiator

	subs  event.Group
	dirty atomic.Bool

	closed atomic.Bool
}

// New creates a context and wires the cross-component subscriptions:
// negotiated mode changes flow into the pipeline state, and state changes
// or context restoration mark the context dirty for the host's scheduler.
func New(cfg Config) *Context {
	c := &Context{
		device:     cfg.Device,
		cache:      texcache.New(cfg.Textures),
		state:      pipeline.NewState(),
		negotiator: hdrout.New(cfg.Prober, cfg.Surface),
	}
	c.loader = pipeline.NewLoader(c.state)
	c.dirty.Store(true)

	c.subs.Add(c.negotiator.OnChange(func(m hdrout.Mode) {
		c.state.SetHDRMode(m)
	}))
	c.subs.Add(c.state.OnChange(func(pipeline.Change) {
		c.dirty.Store(true)
	}))
	c.subs.Add(c.cache.OnRestore(func() {
		c.dirty.Store(true)
	}))

	mediaview.Logger().Info("render: context created",
		"device", cfg.Device != nil, "hdr", c.negotiator.Capabilities().ExtendedOutput())
	return c
}

// Cache returns the texture cache.
func (c *Context) Cache() *texcache.Cache {
	return c.cache
}

// State returns the pipeline state.
func (c *Context) State() *pipeline.State {
	return c.state
}

// Negotiator returns the HDR output negotiator.
func (c *Context) Negotiator() *hdrout.Negotiator {
	return c.negotiator
}

// Device returns the shared device provider, or nil when headless.
func (c *Context) Device() gpucontext.DeviceProvider {
	return c.device
}

// LoadLUT starts an asynchronous manual LUT load into a pipeline stage.
func (c *Context) LoadLUT(id pipeline.StageID, path string) {
	c.loader.Load(id, path, nil)
}

// Dirty reports whether anything changed since the last RenderFrame; the
// host's scheduler polls this to decide whether to redraw.
func (c *Context) Dirty() bool {
	return c.dirty.Load()
}

// Invalidate forces the next Dirty() to report true.
func (c *Context) Invalidate() {
	c.dirty.Store(true)
}

// RenderFrame runs one frame through the pipeline.
//
// The frame texture is refreshed through the cache's partial-update path
// when the key is resident, falling back to allocation on a miss. While
// the GPU context is lost the error is texcache.ErrContextLost and the
// caller should retry after restoration; the frame is not dropped
// silently.
//
// The returned frame is display-referred, already encoded for the
// negotiated output mode.
func (c *Context) RenderFrame(key string, frame *mediaview.Frame) (*mediaview.Frame, error) {
	if frame == nil {
		return nil, ErrNilFrame
	}
	snap := c.state.Snapshot()

	if err := c.uploadFrame(key, frame); err != nil {
		return nil, err
	}

	out := snap.ApplyFrame(frame)
	if snap.HDRMode != hdrout.ModeSDR {
		for y := 0; y < out.Height(); y++ {
			for x := 0; x < out.Width(); x++ {
				out.Set(x, y, snap.EncodeOutput(out.At(x, y)))
			}
		}
	}

	c.dirty.Store(false)
	return out, nil
}

// uploadFrame refreshes the cached texture for key: update in place when
// resident, allocate and upload on a miss.
func (c *Context) uploadFrame(key string, frame *mediaview.Frame) error {
	pixels := frame.Bytes()

	ok, err := c.cache.UpdateTexture(key, pixels)
	if ok {
		return nil
	}
	switch {
	case errors.Is(err, texcache.ErrKeyNotFound):
		// Miss is the normal first-frame path.
	case errors.Is(err, texcache.ErrUploadSizeMismatch):
		// Dimensions changed; GetTexture below reallocates.
	case err != nil:
		return err
	}

	if _, err := c.cache.GetTexture(key, frame.Width(), frame.Height(), texcache.FormatRGBA8); err != nil {
		return err
	}
	if _, err := c.cache.UpdateTexture(key, pixels); err != nil {
		return err
	}
	return nil
}

// ProbeResult carries one pixel sampled before and after the pipeline, for
// scopes and the pixel probe.
type ProbeResult struct {
	X, Y    int
	Source  mediaview.RGB
	Display mediaview.RGB
}

// Probe samples one pixel of frame through the current pipeline without
// touching the cache.
func (c *Context) Probe(frame *mediaview.Frame, x, y int) ProbeResult {
	snap := c.state.Snapshot()
	src := frame.At(x, y)
	return ProbeResult{
		X:       x,
		Y:       y,
		Source:  src,
		Display: snap.EncodeOutput(snap.Apply(src)),
	}
}

// Close releases the cache and detaches every cross-component
// subscription. Close is idempotent.
func (c *Context) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.subs.Close()
	c.cache.Dispose()
	mediaview.Logger().Debug("render: context closed")
}
