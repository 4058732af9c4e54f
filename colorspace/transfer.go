package colorspace

import "github.com/chewxy/math32"

// TransferFunc maps one channel between encoded and linear light.
type TransferFunc func(float32) float32

// linearTransfer passes values through unchanged.
func linearTransfer(v float32) float32 { return v }

// SRGBDecode converts an sRGB-encoded component to linear (EOTF).
// Formula: if s <= 0.04045: s/12.92; else: pow((s+0.055)/1.055, 2.4).
func SRGBDecode(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math32.Pow((s+0.055)/1.055, 2.4)
}

// SRGBEncode converts a linear component to sRGB (OETF).
// Negative inputs clamp to 0; values above 1 are passed to the power curve
// unclamped so extended-range surfaces keep highlight detail.
func SRGBEncode(l float32) float32 {
	if l <= 0 {
		return 0
	}
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math32.Pow(l, 1.0/2.4) - 0.055
}

// Rec709Decode converts a Rec.709 camera-encoded component to linear.
// Same primaries as sRGB, different transfer curve (BT.709 OETF inverse).
func Rec709Decode(v float32) float32 {
	if v < 0.081 {
		return v / 4.5
	}
	return math32.Pow((v+0.099)/1.099, 1.0/0.45)
}

// Rec709Encode converts a linear component to Rec.709 (BT.709 OETF).
func Rec709Encode(l float32) float32 {
	if l <= 0 {
		return 0
	}
	if l < 0.018 {
		return l * 4.5
	}
	return 1.099*math32.Pow(l, 0.45) - 0.099
}

// ARRI LogC3 (EI 800) constants, from the ALEXA Log C curve specification.
const (
	logc3Cut = 0.010591
	logc3A   = 5.555556
	logc3B   = 0.052272
	logc3C   = 0.247190
	logc3D   = 0.385537
	logc3E   = 5.367655
	logc3F   = 0.092809
)

// LogC3Decode converts an ARRI LogC3 (EI 800) code value to scene-linear.
func LogC3Decode(t float32) float32 {
	if t > logc3E*logc3Cut+logc3F {
		return (math32.Pow(10, (t-logc3D)/logc3C) - logc3B) / logc3A
	}
	return (t - logc3F) / logc3E
}

// LogC3Encode converts scene-linear to an ARRI LogC3 (EI 800) code value.
func LogC3Encode(x float32) float32 {
	if x > logc3Cut {
		return logc3C*math32.Log10(logc3A*x+logc3B) + logc3D
	}
	return logc3E*x + logc3F
}

// SLog3Decode converts a Sony S-Log3 code value to scene-linear.
func SLog3Decode(v float32) float32 {
	if v >= 171.2102946929/1023.0 {
		return math32.Pow(10, (v*1023.0-420.0)/261.5)*(0.18+0.01) - 0.01
	}
	return (v*1023.0 - 95.0) * 0.01125 / (171.2102946929 - 95.0)
}

// SLog3Encode converts scene-linear to a Sony S-Log3 code value.
func SLog3Encode(x float32) float32 {
	if x >= 0.01125 {
		return (420.0 + math32.Log10((x+0.01)/(0.18+0.01))*261.5) / 1023.0
	}
	return (x*(171.2102946929-95.0)/0.01125 + 95.0) / 1023.0
}

// SMPTE ST 2084 (PQ) constants.
const (
	pqM1 = 2610.0 / 16384.0
	pqM2 = 2523.0 / 4096.0 * 128.0
	pqC1 = 3424.0 / 4096.0
	pqC2 = 2413.0 / 4096.0 * 32.0
	pqC3 = 2392.0 / 4096.0 * 32.0

	// pqRefWhite maps linear 1.0 to 203 nits of the 10000-nit PQ range,
	// per the ITU-R BT.2408 reference level.
	pqRefWhite = 203.0 / 10000.0
)

// PQEncode converts a linear component (1.0 = reference white) to a PQ
// signal value in [0, 1].
func PQEncode(l float32) float32 {
	if l < 0 {
		l = 0
	}
	y := l * pqRefWhite
	yp := math32.Pow(y, pqM1)
	return math32.Pow((pqC1+pqC2*yp)/(1+pqC3*yp), pqM2)
}

// PQDecode converts a PQ signal value back to linear light.
func PQDecode(v float32) float32 {
	if v < 0 {
		v = 0
	}
	vp := math32.Pow(v, 1/pqM2)
	num := vp - pqC1
	if num < 0 {
		num = 0
	}
	y := math32.Pow(num/(pqC2-pqC3*vp), 1/pqM1)
	return y / pqRefWhite
}

// HLG (ITU-R BT.2100) constants.
const (
	hlgA = 0.17883277
	hlgB = 0.28466892 // 1 - 4a
	hlgC = 0.55991073 // 0.5 - a*ln(4a)
)

// HLGEncode applies the HLG OETF to a linear component in [0, 12].
func HLGEncode(l float32) float32 {
	if l < 0 {
		l = 0
	}
	if l <= 1.0/12.0 {
		return math32.Sqrt(3 * l)
	}
	return hlgA*math32.Log(12*l-hlgB) + hlgC
}

// HLGDecode inverts the HLG OETF.
func HLGDecode(v float32) float32 {
	if v < 0 {
		v = 0
	}
	if v <= 0.5 {
		return v * v / 3
	}
	return (math32.Exp((v-hlgC)/hlgA) + hlgB) / 12
}
