package mediaview

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestNewFrameClampsDimensions(t *testing.T) {
	f := NewFrame(0, -3)
	if f.Width() != 1 || f.Height() != 1 {
		t.Errorf("dims = %dx%d, want 1x1", f.Width(), f.Height())
	}
}

func TestSetAtRoundTrip(t *testing.T) {
	f := NewFrame(4, 3)
	in := RGB{R: 0.25, G: 1.5, B: -0.5} // scene-referred values are not clamped
	f.Set(2, 1, in)
	if got := f.At(2, 1); got != in {
		t.Errorf("At(2,1) = %+v, want %+v", got, in)
	}

	// Out-of-bounds reads are black, writes are ignored.
	if got := f.At(-1, 0); got != (RGB{}) {
		t.Errorf("out-of-bounds At = %+v", got)
	}
	f.Set(99, 99, RGB{R: 1})
}

func TestFrameFromImagePaths(t *testing.T) {
	// The *image.RGBA fast path and the generic At() path must agree.
	rgba := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			rgba.SetRGBA(x, y, color.RGBA{R: uint8(40 * x), G: uint8(90 * y), B: 200, A: 255})
		}
	}
	fast := FrameFromImage(rgba)

	generic := FrameFromImage(&genericImage{rgba})

	if d := fast.MaxDiff(generic); d > 1.0/255.0 {
		t.Errorf("fast and generic decode paths differ by %f", d)
	}
}

// genericImage hides the concrete type so FrameFromImage takes the At()
// path.
type genericImage struct{ image.Image }

func TestPNGRoundTrip(t *testing.T) {
	f := NewFrame(5, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			// Exact 8-bit code values survive the round trip exactly.
			f.SetRGBA(x, y, RGB{
				R: float32(x*51) / 255.0,
				G: float32(y*60) / 255.0,
				B: 128.0 / 255.0,
			}, 1)
		}
	}

	var buf bytes.Buffer
	if err := f.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	back, err := DecodePNG(&buf)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if !f.Equal(back) {
		t.Errorf("round trip differs by %f", f.MaxDiff(back))
	}
}

func TestBytesClamps(t *testing.T) {
	f := NewFrame(2, 1)
	f.SetRGBA(0, 0, RGB{R: -1, G: 0.5, B: 7}, 1)

	b := f.Bytes()
	if len(b) != 2*1*4 {
		t.Fatalf("len(Bytes) = %d", len(b))
	}
	if b[0] != 0 || b[1] != 128 || b[2] != 255 {
		t.Errorf("clamped bytes = %v", b[:3])
	}
}

func TestCloneIsDeep(t *testing.T) {
	f := NewFrame(2, 2)
	f.Set(0, 0, RGB{R: 0.5})
	c := f.Clone()
	c.Set(0, 0, RGB{R: 0.9})

	if f.At(0, 0).R != 0.5 {
		t.Error("mutating the clone changed the original")
	}
	if f.Equal(c) {
		t.Error("Equal missed a pixel difference")
	}
}

func TestResize(t *testing.T) {
	f := NewFrame(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			f.SetRGBA(x, y, RGB{R: 0.5, G: 0.5, B: 0.5}, 1)
		}
	}
	half := f.Resize(4, 4)
	if half.Width() != 4 || half.Height() != 4 {
		t.Fatalf("resized dims %dx%d", half.Width(), half.Height())
	}
	// A constant image stays constant under resampling.
	if d := absDiff32(half.At(2, 2).R, 0.5); d > 1.0/255.0 {
		t.Errorf("resampled constant drifted by %f", d)
	}
}

func TestRGBLerp(t *testing.T) {
	a := RGB{R: 0.1234567, G: 0.5, B: 0.9}
	b := RGB{R: 1, G: 0, B: 0.5}

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(t=0) = %+v, want receiver unchanged", got)
	}
	mid := a.Lerp(b, 0.5)
	if absDiff32(mid.G, 0.25) > 1e-6 {
		t.Errorf("Lerp(t=0.5).G = %f", mid.G)
	}
}

func TestClamp01(t *testing.T) {
	c := RGB{R: -0.5, G: 0.5, B: 1.5}.Clamp01()
	if c != (RGB{R: 0, G: 0.5, B: 1}) {
		t.Errorf("Clamp01 = %+v", c)
	}
}

func absDiff32(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
