package pipeline

import (
	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/colorspace"
	"github.com/gogpu/mediaview/hdrout"
	"github.com/gogpu/mediaview/lut"
	"github.com/gogpu/mediaview/tonemap"
)

// StageSnapshot is the per-stage slice of a Snapshot.
type StageSnapshot struct {
	Enabled   bool
	LUT       *lut.Table
	Intensity float32
}

// active reports whether the stage changes pixels at all. A disabled
// stage, an empty slot, or zero intensity is a strict pass-through.
func (st StageSnapshot) active() bool {
	return st.Enabled && st.LUT != nil && st.Intensity > 0
}

// apply samples the LUT and blends by intensity:
// result = lerp(in, sampled, intensity). At intensity 1 the sample is
// returned exactly; at 0 the input is untouched.
func (st StageSnapshot) apply(c mediaview.RGB) mediaview.RGB {
	if !st.active() {
		return c
	}
	out := st.LUT.SampleRGB(c)
	if st.Intensity >= 1 {
		return out
	}
	return c.Lerp(out, st.Intensity)
}

// Snapshot is one consistent pipeline configuration, taken from State at
// the start of a render. Applying it never consults State again, so
// concurrent mutations only affect subsequent frames.
type Snapshot struct {
	Color           *colorspace.Transform
	Adjust          AdjustFunc
	ToneMapEnabled  bool
	ToneMapOperator tonemap.Operator
	Stages          [stageCount]StageSnapshot
	HDRMode         hdrout.Mode
}

// Stage returns the stage slice for id.
func (s *Snapshot) Stage(id StageID) StageSnapshot {
	if int(id) >= int(stageCount) {
		return StageSnapshot{}
	}
	return s.Stages[id]
}

// operator resolves the effective tone map operator for this frame.
func (s *Snapshot) operator() tonemap.Operator {
	if !s.ToneMapEnabled {
		return tonemap.Off
	}
	return s.ToneMapOperator
}

// Apply runs one pixel through the full chain in fixed order: color space
// transform, upstream adjustments, tone map, then the precache, file,
// look and display LUT stages.
//
// Every element bypasses to a strict identity when inactive, so a fully
// bypassed chain returns its input bit-for-bit.
func (s *Snapshot) Apply(c mediaview.RGB) mediaview.RGB {
	c = s.Color.Convert(c)
	if s.Adjust != nil {
		c = s.Adjust(c)
	}
	c = tonemap.Apply(s.operator(), c)
	for i := range s.Stages {
		c = s.Stages[i].apply(c)
	}
	return c
}

// ApplyFrame maps every pixel of src through the chain into a new frame.
// Alpha is carried over untouched.
func (s *Snapshot) ApplyFrame(src *mediaview.Frame) *mediaview.Frame {
	dst := mediaview.NewFrame(src.Width(), src.Height())
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			out := s.Apply(src.At(x, y))
			dst.SetRGBA(x, y, out, src.Alpha(x, y))
		}
	}
	return dst
}

// EncodeOutput converts a display-referred pixel for the negotiated output
// mode: identity for sdr, HLG or PQ OETF for extended-range surfaces.
func (s *Snapshot) EncodeOutput(c mediaview.RGB) mediaview.RGB {
	switch s.HDRMode {
	case hdrout.ModeHLG:
		c.R = colorspace.HLGEncode(c.R)
		c.G = colorspace.HLGEncode(c.G)
		c.B = colorspace.HLGEncode(c.B)
	case hdrout.ModePQ:
		c.R = colorspace.PQEncode(c.R)
		c.G = colorspace.PQEncode(c.G)
		c.B = colorspace.PQEncode(c.B)
	}
	return c
}
