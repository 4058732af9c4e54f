package lut

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ParseError describes a malformed .cube file. The target stage is left
// untouched when parsing fails; no partial table is ever installed.
type ParseError struct {
	Line int    // 1-based line number, 0 if not line-specific
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lut: parse error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("lut: parse error: %s", e.Msg)
}

func parseErrf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Maximum accepted grid size. Real-world tables are 17–65; the cap only
// guards against allocating N³ samples from a corrupt size line.
const maxCubeSize = 256

// Parse reads an ASCII .cube 3D LUT.
//
// Recognized directives: TITLE, LUT_3D_SIZE, DOMAIN_MIN, DOMAIN_MAX.
// Comment lines (#) and blank lines are skipped. Data lines are exactly
// N³ triples of finite floats with the red index varying fastest.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{
		size:      -1,
		domainMin: [3]float32{0, 0, 0},
		domainMax: [3]float32{1, 1, 1},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	filled := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "TITLE"):
			t.title = strings.Trim(strings.TrimSpace(line[len("TITLE"):]), `"`)

		case strings.HasPrefix(line, "LUT_3D_SIZE"):
			n, err := strconv.Atoi(strings.TrimSpace(line[len("LUT_3D_SIZE"):]))
			if err != nil {
				return nil, parseErrf(lineNo, "invalid LUT_3D_SIZE: %q", line)
			}
			if n < 2 || n > maxCubeSize {
				return nil, parseErrf(lineNo, "LUT_3D_SIZE %d out of range [2, %d]", n, maxCubeSize)
			}
			t.size = n
			t.samples = make([]float32, 3*n*n*n)

		case strings.HasPrefix(line, "DOMAIN_MIN"):
			v, err := parseTriple(line[len("DOMAIN_MIN"):])
			if err != nil {
				return nil, parseErrf(lineNo, "invalid DOMAIN_MIN: %v", err)
			}
			t.domainMin = v

		case strings.HasPrefix(line, "DOMAIN_MAX"):
			v, err := parseTriple(line[len("DOMAIN_MAX"):])
			if err != nil {
				return nil, parseErrf(lineNo, "invalid DOMAIN_MAX: %v", err)
			}
			t.domainMax = v

		case strings.HasPrefix(line, "LUT_1D_SIZE"):
			return nil, parseErrf(lineNo, "1D LUTs are not supported")

		default:
			if t.size <= 0 {
				return nil, parseErrf(lineNo, "sample data before LUT_3D_SIZE")
			}
			if filled >= t.size*t.size*t.size {
				return nil, parseErrf(lineNo, "more than %d³ samples", t.size)
			}
			v, err := parseTriple(line)
			if err != nil {
				return nil, parseErrf(lineNo, "invalid sample: %v", err)
			}
			t.samples[filled*3+0] = v[0]
			t.samples[filled*3+1] = v[1]
			t.samples[filled*3+2] = v[2]
			filled++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lut: read failed: %w", err)
	}

	if t.size <= 0 {
		return nil, &ParseError{Msg: "missing LUT_3D_SIZE"}
	}
	if want := t.size * t.size * t.size; filled != want {
		return nil, &ParseError{Msg: fmt.Sprintf("expected %d samples for size %d, got %d", want, t.size, filled)}
	}
	for ch := 0; ch < 3; ch++ {
		if t.domainMax[ch] <= t.domainMin[ch] {
			return nil, &ParseError{Msg: fmt.Sprintf("empty domain on channel %d", ch)}
		}
	}

	return t, nil
}

// parseTriple parses three finite floats from a whitespace-separated line.
func parseTriple(s string) ([3]float32, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return [3]float32{}, fmt.Errorf("expected 3 values, got %d", len(fields))
	}
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return [3]float32{}, fmt.Errorf("%q is not a number", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return [3]float32{}, fmt.Errorf("%q is not finite", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// LoadFile parses a .cube file from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lut: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// WriteCube encodes the table back to the .cube format. The encoder is the
// round-trip counterpart of Parse; presets and tests rely on it.
func (t *Table) WriteCube(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if t.title != "" {
		fmt.Fprintf(bw, "TITLE %q\n", t.title)
	}
	fmt.Fprintf(bw, "LUT_3D_SIZE %d\n", t.size)
	fmt.Fprintf(bw, "DOMAIN_MIN %g %g %g\n", t.domainMin[0], t.domainMin[1], t.domainMin[2])
	fmt.Fprintf(bw, "DOMAIN_MAX %g %g %g\n", t.domainMax[0], t.domainMax[1], t.domainMax[2])

	for n := 0; n < t.size*t.size*t.size; n++ {
		fmt.Fprintf(bw, "%.6f %.6f %.6f\n",
			t.samples[n*3], t.samples[n*3+1], t.samples[n*3+2])
	}
	return bw.Flush()
}
