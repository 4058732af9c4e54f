package mediaview

import (
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Frame is a decoded video/image frame held as float32 RGBA.
//
// Component values are whatever the decoder produced, normalized so that
// 8-bit code value 255 maps to 1.0. Scene-referred sources (EXR, log
// camera footage) may carry values above 1.0; the pipeline never clamps
// until final display encoding.
//
// Frame is NOT thread-safe. The render loop owns the frames it processes.
type Frame struct {
	width  int
	height int
	pix    []float32 // RGBA, 4 floats per pixel, row-major
}

// NewFrame creates a zeroed frame with the given dimensions.
// Dimensions below 1 are clamped to 1.
func NewFrame(width, height int) *Frame {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Frame{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// FrameFromImage converts an image to a Frame.
// Code values are normalized to [0, 1]; no transfer-function decoding is
// performed (that is the color pipeline's job).
func FrameFromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())

	// Fast path for *image.RGBA and *image.NRGBA; generic At() otherwise.
	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < f.height; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < f.width; x++ {
				i := (y*f.width + x) * 4
				f.pix[i+0] = float32(row[x*4+0]) / 255.0
				f.pix[i+1] = float32(row[x*4+1]) / 255.0
				f.pix[i+2] = float32(row[x*4+2]) / 255.0
				f.pix[i+3] = float32(row[x*4+3]) / 255.0
			}
		}
	case *image.NRGBA:
		for y := 0; y < f.height; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < f.width; x++ {
				i := (y*f.width + x) * 4
				f.pix[i+0] = float32(row[x*4+0]) / 255.0
				f.pix[i+1] = float32(row[x*4+1]) / 255.0
				f.pix[i+2] = float32(row[x*4+2]) / 255.0
				f.pix[i+3] = float32(row[x*4+3]) / 255.0
			}
		}
	default:
		for y := 0; y < f.height; y++ {
			for x := 0; x < f.width; x++ {
				r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				i := (y*f.width + x) * 4
				f.pix[i+0] = float32(r) / 65535.0
				f.pix[i+1] = float32(g) / 65535.0
				f.pix[i+2] = float32(bb) / 65535.0
				f.pix[i+3] = float32(a) / 65535.0
			}
		}
	}
	return f
}

// DecodePNG decodes a PNG stream into a Frame.
func DecodePNG(r io.Reader) (*Frame, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return FrameFromImage(img), nil
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.height
}

// Pix returns the raw float32 RGBA data (4 floats per pixel, row-major).
func (f *Frame) Pix() []float32 {
	return f.pix
}

// At returns the color at (x, y). Out-of-bounds coordinates return black.
func (f *Frame) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return RGB{}
	}
	i := (y*f.width + x) * 4
	return RGB{R: f.pix[i], G: f.pix[i+1], B: f.pix[i+2]}
}

// Alpha returns the alpha component at (x, y).
func (f *Frame) Alpha(x, y int) float32 {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0
	}
	return f.pix[(y*f.width+x)*4+3]
}

// Set writes the color at (x, y), preserving alpha.
// Out-of-bounds coordinates are ignored.
func (f *Frame) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	i := (y*f.width + x) * 4
	f.pix[i+0] = c.R
	f.pix[i+1] = c.G
	f.pix[i+2] = c.B
}

// SetRGBA writes color and alpha at (x, y).
func (f *Frame) SetRGBA(x, y int, c RGB, a float32) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	i := (y*f.width + x) * 4
	f.pix[i+0] = c.R
	f.pix[i+1] = c.G
	f.pix[i+2] = c.B
	f.pix[i+3] = a
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		width:  f.width,
		height: f.height,
		pix:    make([]float32, len(f.pix)),
	}
	copy(out.pix, f.pix)
	return out
}

// Equal reports whether two frames have identical dimensions and pixel data.
func (f *Frame) Equal(o *Frame) bool {
	if f.width != o.width || f.height != o.height {
		return false
	}
	for i := range f.pix {
		if f.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// MaxDiff returns the largest absolute per-component difference between two
// frames of identical dimensions. Returns +Inf semantics via 4 for
// mismatched dimensions (any value > any plausible tolerance).
func (f *Frame) MaxDiff(o *Frame) float32 {
	if f.width != o.width || f.height != o.height {
		return 4
	}
	var max float32
	for i := range f.pix {
		d := f.pix[i] - o.pix[i]
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

// ToRGBA converts the frame to an 8-bit image, clamping components to [0, 1]
// and rounding. Used for texture upload and SDR export.
func (f *Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			i := (y*f.width + x) * 4
			o := y*img.Stride + x*4
			img.Pix[o+0] = clampAndRound(f.pix[i+0])
			img.Pix[o+1] = clampAndRound(f.pix[i+1])
			img.Pix[o+2] = clampAndRound(f.pix[i+2])
			img.Pix[o+3] = clampAndRound(f.pix[i+3])
		}
	}
	return img
}

// ToRGBA64 converts the frame to a 16-bit image for high bit-depth export.
func (f *Frame) ToRGBA64() *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			i := (y*f.width + x) * 4
			o := y*img.Stride + x*8
			put16(img.Pix[o:], f.pix[i+0])
			put16(img.Pix[o+2:], f.pix[i+1])
			put16(img.Pix[o+4:], f.pix[i+2])
			put16(img.Pix[o+6:], f.pix[i+3])
		}
	}
	return img
}

func put16(dst []byte, v float32) {
	if v <= 0 {
		dst[0], dst[1] = 0, 0
		return
	}
	if v >= 1 {
		dst[0], dst[1] = 0xff, 0xff
		return
	}
	u := uint16(v*65535.0 + 0.5)
	dst[0] = byte(u >> 8)
	dst[1] = byte(u)
}

// EncodePNG writes the frame as an 8-bit PNG.
func (f *Frame) EncodePNG(w io.Writer) error {
	return png.Encode(w, f.ToRGBA())
}

// Bytes converts the frame to tightly packed 8-bit RGBA for texture upload.
func (f *Frame) Bytes() []byte {
	out := make([]byte, f.width*f.height*4)
	for i, v := range f.pix {
		out[i] = clampAndRound(v)
	}
	return out
}

// Resize returns a resampled copy of the frame at the given dimensions,
// used for proxy playback. Catmull-Rom keeps gradients smooth enough for
// scopes while staying cheap.
func (f *Frame) Resize(width, height int) *Frame {
	if width == f.width && height == f.height {
		return f.Clone()
	}
	src := f.ToRGBA64()
	dst := image.NewRGBA64(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FrameFromImage(dst)
}
