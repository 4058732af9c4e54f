// Package texcache provides the GPU texture resource cache behind the
// viewer's render loop: a keyed LRU pool with a byte budget and an entry
// cap, reused across frames so steady-state playback performs no GPU
// allocation.
//
// The cache is exclusively owned and mutated by the render loop. GPU
// context loss is modeled as an explicit two-state lifecycle (valid /
// lost): on loss every entry is dropped from bookkeeping without issuing
// GPU deletes, allocation fails fast with ErrContextLost, and a restore
// notification re-enables lazy allocation.
package texcache

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Texture-related errors.
var (
	// ErrTextureReleased is returned when uploading to a released texture.
	ErrTextureReleased = errors.New("texcache: texture has been released")

	// ErrUploadSizeMismatch is returned when pixel data does not match the
	// texture dimensions.
	ErrUploadSizeMismatch = errors.New("texcache: pixel data size does not match texture")

	// ErrInvalidDimensions is returned for non-positive texture dimensions.
	ErrInvalidDimensions = errors.New("texcache: invalid texture dimensions")
)

// Format represents the pixel format of a cached texture.
type Format uint8

const (
	// FormatRGBA8 is the standard 8-bit per channel format.
	FormatRGBA8 Format = iota

	// FormatBGRA8 is BGRA order, used for surface presentation.
	FormatBGRA8

	// FormatRGBA16F is half-float RGBA for scene-referred frames.
	FormatRGBA16F

	// FormatRGBA32F is full-float RGBA, used by scopes readback.
	FormatRGBA32F
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8, FormatBGRA8:
		return 4
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	default:
		return 4
	}
}

// ToWGPUFormat converts to the wgpu gputypes.TextureFormat used when the
// texture backs a hardware pipeline.
func (f Format) ToWGPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatBGRA8:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float
	case FormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// textureDestroyer is implemented by gpucontext textures that support
// explicit destruction.
type textureDestroyer interface {
	Destroy()
}

// Texture is one cached GPU texture.
//
// When the cache was built with a gpucontext.TextureCreator the texture
// wraps a device resource; without one it is a logical texture carrying
// only bookkeeping, which keeps the cache fully functional headless and in
// tests.
type Texture struct {
	width  int
	height int
	format Format

	sizeBytes uint64
	label     string

	// gpu holds the gpucontext texture, nil for logical textures.
	gpu any

	released atomic.Bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	return t.width
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	return t.height
}

// Format returns the pixel format.
func (t *Texture) Format() Format {
	return t.format
}

// SizeBytes returns the texture size in bytes.
func (t *Texture) SizeBytes() uint64 {
	return t.sizeBytes
}

// Label returns the debug label (the cache key it was created for).
func (t *Texture) Label() string {
	return t.label
}

// IsReleased reports whether the texture has been destroyed or orphaned by
// context loss.
func (t *Texture) IsReleased() bool {
	return t.released.Load()
}

// GPU returns the underlying gpucontext texture, or nil for logical
// textures. Callers draw it via gpucontext.TextureDrawer.
func (t *Texture) GPU() any {
	if t.released.Load() {
		return nil
	}
	return t.gpu
}

// upload pushes new pixel data into the existing device texture without
// reallocation (the partial-update path).
func (t *Texture) upload(pixels []byte) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	if len(pixels) != t.width*t.height*t.format.BytesPerPixel() {
		return fmt.Errorf("%w: texture %dx%d %s wants %d bytes, got %d",
			ErrUploadSizeMismatch, t.width, t.height, t.format,
			t.width*t.height*t.format.BytesPerPixel(), len(pixels))
	}
	if updater, ok := t.gpu.(gpucontext.TextureUpdater); ok {
		return updater.UpdateData(pixels)
	}
	return nil
}

// destroy releases the device resource. Orphaned textures (context loss)
// are marked released without a GPU delete: the lost context already
// invalidated them.
func (t *Texture) destroy(issueDelete bool) {
	if t.released.Swap(true) {
		return
	}
	if issueDelete {
		if d, ok := t.gpu.(textureDestroyer); ok {
			d.Destroy()
		}
	}
	t.gpu = nil
}

// String returns a string representation of the texture.
func (t *Texture) String() string {
	status := "active"
	if t.released.Load() {
		status = "released"
	}
	return fmt.Sprintf("Texture[%s %dx%d %s %d bytes %s]",
		t.label, t.width, t.height, t.format, t.sizeBytes, status)
}
