package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/colorspace"
	"github.com/gogpu/mediaview/hdrout"
	"github.com/gogpu/mediaview/lut"
	"github.com/gogpu/mediaview/pipeline"
	"github.com/gogpu/mediaview/texcache"
	"github.com/gogpu/mediaview/tonemap"
)

func testFrame(w, h int) *mediaview.Frame {
	f := mediaview.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGBA(x, y, mediaview.RGB{
				R: float32(x) / float32(w),
				G: float32(y) / float32(h),
				B: 0.5,
			}, 1)
		}
	}
	return f
}

func hdrCaps() hdrout.ProberFunc {
	return func() hdrout.Capabilities {
		return hdrout.Capabilities{DisplayHDR: true, SurfaceExtendedColor: true}
	}
}

func TestRenderFrameIdentity(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	src := testFrame(8, 4)
	out, err := c.RenderFrame("clip1/frame0", src)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if !out.Equal(src) {
		t.Error("default pipeline changed the frame")
	}
	if !c.Cache().Contains("clip1/frame0") {
		t.Error("frame texture not cached")
	}
}

// TestSteadyStateUsesUpdatePath: re-rendering the same key refreshes the
// resident texture instead of allocating a new one.
func TestSteadyStateUsesUpdatePath(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	src := testFrame(8, 4)
	for i := 0; i < 5; i++ {
		if _, err := c.RenderFrame("clip", src); err != nil {
			t.Fatal(err)
		}
	}
	stats := c.Cache().Stats()
	if stats.EntryCount != 1 || stats.Misses != 1 {
		t.Errorf("stats after steady state: %+v, want one entry, one miss", stats)
	}
}

// TestResizeReallocates: a frame size change falls off the update path and
// reallocates the texture.
func TestResizeReallocates(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	if _, err := c.RenderFrame("clip", testFrame(8, 4)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RenderFrame("clip", testFrame(16, 8)); err != nil {
		t.Fatal(err)
	}
	stats := c.Cache().Stats()
	if stats.Misses != 2 || stats.EntryCount != 1 {
		t.Errorf("stats after resize: %+v, want two misses, one entry", stats)
	}
	if stats.UsedBytes != 16*8*4 {
		t.Errorf("UsedBytes = %d, want the resized texture only", stats.UsedBytes)
	}
}

// TestContextLossDefersFrame: rendering while the GPU context is lost
// fails with ErrContextLost and succeeds again after restoration.
func TestContextLossDefersFrame(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	src := testFrame(4, 4)
	if _, err := c.RenderFrame("clip", src); err != nil {
		t.Fatal(err)
	}

	c.Cache().NotifyContextLost()
	if _, err := c.RenderFrame("clip", src); !errors.Is(err, texcache.ErrContextLost) {
		t.Fatalf("render while lost = %v, want ErrContextLost", err)
	}

	c.Cache().NotifyContextRestored()
	if !c.Dirty() {
		t.Error("restoration did not mark the context dirty")
	}
	if _, err := c.RenderFrame("clip", src); err != nil {
		t.Fatalf("render after restore: %v", err)
	}
}

func TestDirtyLifecycle(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	if !c.Dirty() {
		t.Fatal("fresh context not dirty")
	}
	if _, err := c.RenderFrame("clip", testFrame(2, 2)); err != nil {
		t.Fatal(err)
	}
	if c.Dirty() {
		t.Fatal("context dirty right after a render")
	}

	c.State().SetToneMapOperator(tonemap.Reinhard)
	if !c.Dirty() {
		t.Error("state mutation did not mark the context dirty")
	}
}

// TestHDRModeFlowsIntoOutput: selecting pq at the negotiator reaches the
// snapshot and the rendered output is PQ-encoded.
func TestHDRModeFlowsIntoOutput(t *testing.T) {
	c := New(Config{Prober: hdrCaps()})
	defer c.Close()

	if err := c.Negotiator().Select(hdrout.ModePQ); err != nil {
		t.Fatal(err)
	}

	src := mediaview.NewFrame(1, 1)
	src.SetRGBA(0, 0, mediaview.RGB{R: 0.5, G: 0.5, B: 0.5}, 1)

	out, err := c.RenderFrame("clip", src)
	if err != nil {
		t.Fatal(err)
	}
	want := colorspace.PQEncode(0.5)
	if got := out.At(0, 0).R; got != want {
		t.Errorf("pq output = %f, want %f", got, want)
	}
}

func TestProbe(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	tab, err := lut.Parse(strings.NewReader(`LUT_3D_SIZE 2
1 1 1
0 1 1
1 0 1
0 0 1
1 1 0
0 1 0
1 0 0
0 0 0
`))
	if err != nil {
		t.Fatal(err)
	}
	c.State().SetStageLUT(pipeline.StageLook, tab, "invert.cube")

	src := mediaview.NewFrame(2, 2)
	in := mediaview.RGB{R: 0.25, G: 0.5, B: 0.75}
	src.SetRGBA(1, 1, in, 1)

	p := c.Probe(src, 1, 1)
	if p.Source != in {
		t.Errorf("probe source = %+v, want %+v", p.Source, in)
	}
	if want := tab.SampleRGB(in); p.Display != want {
		t.Errorf("probe display = %+v, want %+v", p.Display, want)
	}
}

func TestNilFrame(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	if _, err := c.RenderFrame("clip", nil); !errors.Is(err, ErrNilFrame) {
		t.Fatalf("got %v, want ErrNilFrame", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	c := New(Config{})
	c.Close()
	c.Close()

	if _, err := c.RenderFrame("clip", testFrame(2, 2)); !errors.Is(err, texcache.ErrCacheDisposed) {
		t.Fatalf("render after close = %v, want ErrCacheDisposed", err)
	}
}
