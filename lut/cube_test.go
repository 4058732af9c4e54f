package lut

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const identity2 = `# identity, size 2
TITLE "unit"
LUT_3D_SIZE 2
DOMAIN_MIN 0.0 0.0 0.0
DOMAIN_MAX 1.0 1.0 1.0
0.0 0.0 0.0
1.0 0.0 0.0
0.0 1.0 0.0
1.0 1.0 0.0
0.0 0.0 1.0
1.0 0.0 1.0
0.0 1.0 1.0
1.0 1.0 1.0
`

func TestParseIdentity2(t *testing.T) {
	tab, err := Parse(strings.NewReader(identity2))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tab.Size() != 2 {
		t.Errorf("expected size 2, got %d", tab.Size())
	}
	if tab.Title() != "unit" {
		t.Errorf("expected title %q, got %q", "unit", tab.Title())
	}

	// R varies fastest: node (1,0,0) must be red=1.
	c := tab.NodeAt(1, 0, 0)
	if c.R != 1 || c.G != 0 || c.B != 0 {
		t.Errorf("node (1,0,0) = %+v, want {1 0 0}", c)
	}
	c = tab.NodeAt(0, 0, 1)
	if c.R != 0 || c.G != 0 || c.B != 1 {
		t.Errorf("node (0,0,1) = %+v, want {0 0 1}", c)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing size", "0.1 0.2 0.3\n"},
		{"no size declared", "TITLE \"x\"\n"},
		{"zero size", "LUT_3D_SIZE 0\n"},
		{"negative size", "LUT_3D_SIZE -4\n"},
		{"non-numeric size", "LUT_3D_SIZE banana\n"},
		{"too few samples", "LUT_3D_SIZE 2\n0 0 0\n1 1 1\n"},
		{"too many samples", identity2 + "0.5 0.5 0.5\n"},
		{"short sample line", "LUT_3D_SIZE 2\n0 0\n"},
		{"non-finite sample", strings.Replace(identity2, "1.0 0.0 0.0\n", "NaN 0.0 0.0\n", 1)},
		{"non-numeric sample", "LUT_3D_SIZE 2\n0 0 zero\n"},
		{"1D lut", "LUT_1D_SIZE 1024\n"},
		{"inverted domain", strings.Replace(identity2, "DOMAIN_MAX 1.0 1.0 1.0", "DOMAIN_MAX 0.0 0.0 0.0", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected parse error, got nil")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	in := "# header\n\nLUT_3D_SIZE 2\n\n# data follows\n" + strings.Repeat("0.5 0.5 0.5\n\n", 8)
	tab, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	c := tab.NodeAt(0, 0, 0)
	if c.R != 0.5 {
		t.Errorf("expected 0.5, got %v", c.R)
	}
}

func TestCubeRoundTrip(t *testing.T) {
	orig := Identity(5)

	var buf bytes.Buffer
	if err := orig.WriteCube(&buf); err != nil {
		t.Fatalf("WriteCube failed: %v", err)
	}

	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if back.Size() != orig.Size() {
		t.Fatalf("size changed: %d -> %d", orig.Size(), back.Size())
	}
	for k := 0; k < 5; k++ {
		for j := 0; j < 5; j++ {
			for i := 0; i < 5; i++ {
				a, b := orig.NodeAt(i, j, k), back.NodeAt(i, j, k)
				if absDiff(a.R, b.R) > 1e-6 || absDiff(a.G, b.G) > 1e-6 || absDiff(a.B, b.B) > 1e-6 {
					t.Fatalf("node (%d,%d,%d) changed: %+v -> %+v", i, j, k, a, b)
				}
			}
		}
	}
}

func TestParseCustomDomain(t *testing.T) {
	in := strings.Replace(identity2, "DOMAIN_MAX 1.0 1.0 1.0", "DOMAIN_MAX 4.0 4.0 4.0", 1)
	tab, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// Mid-domain input (2.0) lands halfway between nodes.
	c := tab.Sample(2, 2, 2)
	if absDiff(c.R, 0.5) > 1e-6 {
		t.Errorf("expected 0.5 at domain midpoint, got %v", c.R)
	}
	// Inputs beyond the domain clamp to the last node.
	c = tab.Sample(10, 10, 10)
	if c.R != 1 || c.G != 1 || c.B != 1 {
		t.Errorf("expected clamp to white, got %+v", c)
	}
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
