package colorspace

import "github.com/gogpu/mediaview"

// Matrix3 is a row-major 3×3 matrix applied to RGB column vectors.
type Matrix3 [9]float32

// identity3 is the no-op matrix.
var identity3 = Matrix3{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// Apply multiplies the matrix with a color vector.
func (m Matrix3) Apply(c mediaview.RGB) mediaview.RGB {
	return mediaview.RGB{
		R: m[0]*c.R + m[1]*c.G + m[2]*c.B,
		G: m[3]*c.R + m[4]*c.G + m[5]*c.B,
		B: m[6]*c.R + m[7]*c.G + m[8]*c.B,
	}
}

// Mul returns m × o, so (m.Mul(o)).Apply(c) == m.Apply(o.Apply(c)).
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	var out Matrix3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += m[row*3+k] * o[k*3+col]
			}
			out[row*3+col] = sum
		}
	}
	return out
}

// RGB ↔ CIE XYZ primaries matrices. Values are the published fits for each
// space; white-point adaptation between D60 and D65 spaces is intentionally
// folded into the matrices themselves (OCIO-lite, not a full CMS).

// sRGB / Rec.709 share primaries and white point.
var (
	srgbToXYZ = Matrix3{
		0.4124564, 0.3575761, 0.1804375,
		0.2126729, 0.7151522, 0.0721750,
		0.0193339, 0.1191920, 0.9503041,
	}
	xyzToSRGB = Matrix3{
		3.2404542, -1.5371385, -0.4985314,
		-0.9692660, 1.8760108, 0.0415560,
		0.0556434, -0.2040259, 1.0572252,
	}
)

// Display P3 (D65).
var (
	p3ToXYZ = Matrix3{
		0.4865709, 0.2656677, 0.1982173,
		0.2289746, 0.6917385, 0.0792869,
		0.0000000, 0.0451134, 1.0439444,
	}
	xyzToP3 = Matrix3{
		2.4934969, -0.9313836, -0.4027108,
		-0.8294890, 1.7626641, 0.0236247,
		0.0358458, -0.0761724, 0.9568845,
	}
)

// ACES AP1 (ACEScg working primaries).
var (
	ap1ToXYZ = Matrix3{
		0.6624542, 0.1340042, 0.1561877,
		0.2722287, 0.6740818, 0.0536895,
		-0.0055746, 0.0040607, 1.0103391,
	}
	xyzToAP1 = Matrix3{
		1.6410234, -0.3248033, -0.2364247,
		-0.6636629, 1.6153316, 0.0167563,
		0.0117219, -0.0082844, 0.9883949,
	}
)

// ARRI ALEXA Wide Gamut (LogC3 footage).
var (
	alexaWGToXYZ = Matrix3{
		0.6380080, 0.2147040, 0.0977440,
		0.2919540, 0.8238410, -0.1157950,
		0.0027980, -0.0670340, 1.1532940,
	}
	xyzToAlexaWG = Matrix3{
		1.7890660, -0.4825340, -0.2000760,
		-0.6398490, 1.3964400, 0.1944320,
		-0.0415320, 0.0823350, 0.8788680,
	}
)

// Sony S-Gamut3 (S-Log3 footage).
var (
	sgamut3ToXYZ = Matrix3{
		0.7064827, 0.1288010, 0.1151722,
		0.2709796, 0.7866064, -0.0575860,
		-0.0096778, 0.0046000, 1.0941355,
	}
	xyzToSGamut3 = Matrix3{
		1.5073999, -0.2458221, -0.1716116,
		-0.5181502, 1.3553576, 0.1258866,
		0.0155117, -0.0078727, 0.9119478,
	}
)
