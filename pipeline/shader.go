package pipeline

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/mediaview/tonemap"
)

//go:embed shaders/colorgrade.wgsl
var colorGradeWGSL string

// ShaderSource returns the WGSL source of the color grading shader, the
// GPU mirror of Snapshot.Apply.
func ShaderSource() string {
	return colorGradeWGSL
}

// CompileShader compiles the color grading shader to SPIR-V words for
// module creation on a wgpu device.
func CompileShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(colorGradeWGSL)
	if err != nil {
		return nil, fmt.Errorf("pipeline: shader compilation failed: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("pipeline: SPIR-V output not word-aligned: %d bytes", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// ShaderParams is the CPU-side layout of the shader's ChainParams uniform
// (std140: three vec4-padded mat3x3 columns each).
// Must match ChainParams in colorgrade.wgsl.
type ShaderParams struct {
	ToneMapOp    uint32
	StageMask    uint32
	ColorEnabled uint32
	PixelCount   uint32
	Intensity    [4]float32
	LUTOffset    [4]uint32
	LUTSize      [4]uint32
	// mat3x3 columns, each padded to vec4.
	InputToWorking   [12]float32
	WorkingToDisplay [12]float32
}

// Params flattens a snapshot into the uniform layout the shader expects.
func (s *Snapshot) Params() ShaderParams {
	var p ShaderParams

	switch s.operator() {
	case tonemap.Reinhard:
		p.ToneMapOp = 1
	case tonemap.Filmic:
		p.ToneMapOp = 2
	case tonemap.ACES:
		p.ToneMapOp = 3
	}

	for i, st := range s.Stages {
		if st.Enabled && st.LUT != nil {
			p.StageMask |= 1 << uint(i)
		}
		p.Intensity[i] = st.Intensity
	}

	if s.Color.Enabled() {
		p.ColorEnabled = 1
		packMat3(&p.InputToWorking, s.Color.InputToWorking())
		packMat3(&p.WorkingToDisplay, s.Color.WorkingToDisplay())
	} else {
		packIdentity(&p.InputToWorking)
		packIdentity(&p.WorkingToDisplay)
	}
	return p
}

// PackLUTData concatenates the active stages' tables into one flat buffer
// of RGB triples and records each stage's offset and grid size in p. The
// layout matches the lut_data storage buffer in colorgrade.wgsl.
func (s *Snapshot) PackLUTData(p *ShaderParams) []float32 {
	var data []float32
	for i, st := range s.Stages {
		if p.StageMask&(1<<uint(i)) == 0 {
			continue
		}
		p.LUTOffset[i] = uint32(len(data))
		p.LUTSize[i] = uint32(st.LUT.Size())
		data = append(data, st.LUT.Samples()...)
	}
	return data
}

// packMat3 lays a row-major Matrix3 out as three column vec4s.
func packMat3(dst *[12]float32, m [9]float32) {
	for col := 0; col < 3; col++ {
		dst[col*4+0] = m[0*3+col]
		dst[col*4+1] = m[1*3+col]
		dst[col*4+2] = m[2*3+col]
	}
}

func packIdentity(dst *[12]float32) {
	dst[0], dst[5], dst[10] = 1, 1, 1
}
