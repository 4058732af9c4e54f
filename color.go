package mediaview

// RGB is a color triple. Depending on where it sits in the pipeline the
// components are scene-referred linear (possibly > 1.0) or display-referred
// encoded values; the pipeline stages document which they expect.
type RGB struct {
	R, G, B float32
}

// Lerp linearly interpolates between c and o by t.
// t=0 returns c unchanged, t=1 returns o.
func (c RGB) Lerp(o RGB, t float32) RGB {
	return RGB{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// Clamp01 clamps each component to [0, 1].
func (c RGB) Clamp01() RGB {
	return RGB{R: Clamp01(c.R), G: Clamp01(c.G), B: Clamp01(c.B)}
}

// Scale multiplies each component by s.
func (c RGB) Scale(s float32) RGB {
	return RGB{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Clamp01 clamps a single component to [0, 1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampAndRound clamps a float32 to [0,1] and converts to uint8 with rounding.
func clampAndRound(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
