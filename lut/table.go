// Package lut parses and samples 3D look-up tables in the ASCII .cube
// format. A table is a cubic grid of size N mapping input RGB in
// [domainMin, domainMax] to output RGB; in-between inputs are resolved with
// trilinear interpolation, so grid-node inputs return the stored sample
// exactly.
package lut

import (
	"fmt"

	"github.com/gogpu/mediaview"
)

// Table is an immutable, parsed 3D LUT.
//
// Tables are never mutated after parsing; replacing the LUT of a pipeline
// stage swaps the whole Table pointer. This makes them safe to share
// between the render loop and asynchronous loaders.
type Table struct {
	size      int
	domainMin [3]float32
	domainMax [3]float32
	// samples holds N³ RGB triples with the red index varying fastest,
	// matching the .cube line order.
	samples []float32
	title   string
}

// Size returns the grid dimension N.
func (t *Table) Size() int {
	return t.size
}

// Title returns the TITLE declared by the file, or "".
func (t *Table) Title() string {
	return t.title
}

// Samples exposes the raw sample storage (N³ RGB triples, red index
// fastest) for bulk consumers such as GPU buffer upload. The returned
// slice is the table's own storage and must not be modified.
func (t *Table) Samples() []float32 {
	return t.samples
}

// Domain returns the declared input domain (min, max) per channel.
func (t *Table) Domain() (min, max [3]float32) {
	return t.domainMin, t.domainMax
}

// index returns the offset of grid node (i, j, k) — red, green, blue axes.
func (t *Table) index(i, j, k int) int {
	return 3 * (i + t.size*(j+t.size*k))
}

// NodeAt returns the stored sample at grid node (i, j, k) without
// interpolation. Indices are clamped to the grid.
func (t *Table) NodeAt(i, j, k int) mediaview.RGB {
	i = clampIndex(i, t.size)
	j = clampIndex(j, t.size)
	k = clampIndex(k, t.size)
	n := t.index(i, j, k)
	return mediaview.RGB{R: t.samples[n], G: t.samples[n+1], B: t.samples[n+2]}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Sample maps an input color through the LUT using trilinear interpolation.
//
// Inputs outside the domain are clamped before indexing. At exact grid
// nodes the interpolation degenerates to a direct lookup.
func (t *Table) Sample(r, g, b float32) mediaview.RGB {
	i0, i1, fr := t.axis(r, 0)
	j0, j1, fg := t.axis(g, 1)
	k0, k1, fb := t.axis(b, 2)

	// Blend the 8 surrounding grid nodes, red axis innermost.
	c000 := t.NodeAt(i0, j0, k0)
	c100 := t.NodeAt(i1, j0, k0)
	c010 := t.NodeAt(i0, j1, k0)
	c110 := t.NodeAt(i1, j1, k0)
	c001 := t.NodeAt(i0, j0, k1)
	c101 := t.NodeAt(i1, j0, k1)
	c011 := t.NodeAt(i0, j1, k1)
	c111 := t.NodeAt(i1, j1, k1)

	c00 := c000.Lerp(c100, fr)
	c10 := c010.Lerp(c110, fr)
	c01 := c001.Lerp(c101, fr)
	c11 := c011.Lerp(c111, fr)

	c0 := c00.Lerp(c10, fg)
	c1 := c01.Lerp(c11, fg)

	return c0.Lerp(c1, fb)
}

// SampleRGB is Sample with an RGB argument.
func (t *Table) SampleRGB(c mediaview.RGB) mediaview.RGB {
	return t.Sample(c.R, c.G, c.B)
}

// axis resolves one input channel to its bracketing grid indices and the
// fractional offset between them.
func (t *Table) axis(v float32, ch int) (lo, hi int, frac float32) {
	min, max := t.domainMin[ch], t.domainMax[ch]
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}

	span := max - min
	var pos float32
	if span > 0 {
		pos = (v - min) / span * float32(t.size-1)
	}

	lo = int(pos)
	if lo >= t.size-1 {
		return t.size - 1, t.size - 1, 0
	}
	frac = pos - float32(lo)

	// Snap near-node positions so grid-node inputs are exact even when
	// the domain normalization is not representable in float32. The
	// rounding error of pos grows with its magnitude (one ulp of pos is
	// about pos*2^-23), so the tolerance scales with the grid size.
	eps := float32(t.size) * 1e-6
	if frac < eps {
		frac = 0
	} else if frac > 1-eps {
		lo++
		frac = 0
	}
	return lo, lo + 1, frac
}

// Identity builds an identity LUT of grid size n (minimum 2) over the
// [0, 1] domain. Sampling it returns the input unchanged up to float
// rounding; used for derived-slot placeholders and tests.
func Identity(n int) *Table {
	if n < 2 {
		n = 2
	}
	t := &Table{
		size:      n,
		domainMin: [3]float32{0, 0, 0},
		domainMax: [3]float32{1, 1, 1},
		samples:   make([]float32, 3*n*n*n),
		title:     fmt.Sprintf("Identity %d", n),
	}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				idx := t.index(i, j, k)
				t.samples[idx+0] = float32(i) / float32(n-1)
				t.samples[idx+1] = float32(j) / float32(n-1)
				t.samples[idx+2] = float32(k) / float32(n-1)
			}
		}
	}
	return t
}
