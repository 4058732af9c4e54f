// Package tonemap provides the stateless operators that compress
// scene-referred linear values (possibly above 1.0) into the displayable
// [0, 1] range.
//
// All operators work per channel. A luminance-based formulation would hold
// hue steadier under heavy compression, but per-channel keeps the operators
// pure, matches how the equivalent display shaders are written, and the
// ACES fit already shifts saturation less than Reinhard for typical
// footage.
package tonemap

import (
	"fmt"

	"github.com/gogpu/mediaview"
)

// Operator selects the active tone-mapping curve.
type Operator uint8

const (
	// Off disables tone mapping; Apply returns its input bit-for-bit.
	Off Operator = iota

	// Reinhard is the classic x/(1+x) curve.
	Reinhard

	// Filmic is the Hable (Uncharted 2) curve with toe and shoulder
	// compression, normalized to a linear white of 11.2.
	Filmic

	// ACES is the Narkowicz 2015 rational fit of the ACES RRT+ODT.
	ACES
)

// Operators lists every selectable operator in UI order.
var Operators = []Operator{Off, Reinhard, Filmic, ACES}

// String returns the lowercase wire name of the operator.
func (o Operator) String() string {
	switch o {
	case Off:
		return "off"
	case Reinhard:
		return "reinhard"
	case Filmic:
		return "filmic"
	case ACES:
		return "aces"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// ParseOperator resolves a wire name back to an Operator.
func ParseOperator(s string) (Operator, error) {
	for _, o := range Operators {
		if o.String() == s {
			return o, nil
		}
	}
	return Off, fmt.Errorf("tonemap: unknown operator %q", s)
}

// Apply maps one scene-referred pixel through the operator.
// Off returns the input unchanged with no residual gain or offset.
func Apply(o Operator, c mediaview.RGB) mediaview.RGB {
	switch o {
	case Reinhard:
		return mediaview.RGB{R: reinhard(c.R), G: reinhard(c.G), B: reinhard(c.B)}
	case Filmic:
		return mediaview.RGB{R: filmic(c.R), G: filmic(c.G), B: filmic(c.B)}
	case ACES:
		return mediaview.RGB{R: aces(c.R), G: aces(c.G), B: aces(c.B)}
	default:
		return c
	}
}

// reinhard compresses with x/(1+x): asymptotic to 1, never clips.
func reinhard(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return x / (1 + x)
}

// Hable curve constants (Uncharted 2 presentation values).
const (
	hableA = 0.15 // shoulder strength
	hableB = 0.50 // linear strength
	hableC = 0.10 // linear angle
	hableD = 0.20 // toe strength
	hableE = 0.02 // toe numerator
	hableF = 0.30 // toe denominator

	hableWhite = 11.2 // linear white point
)

func hable(x float32) float32 {
	return (x*(hableA*x+hableC*hableB)+hableD*hableE)/(x*(hableA*x+hableB)+hableD*hableF) - hableE/hableF
}

// hableWhiteScale normalizes the curve so hable(hableWhite) maps to 1.0.
var hableWhiteScale = 1 / hable(hableWhite)

// filmic applies the white-normalized Hable curve.
func filmic(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return hable(x) * hableWhiteScale
}

// aces applies the Narkowicz rational fit, clamped to [0, 1].
func aces(x float32) float32 {
	if x <= 0 {
		return 0
	}
	v := (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	return mediaview.Clamp01(v)
}
