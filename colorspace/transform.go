package colorspace

import (
	"errors"
	"fmt"

	"github.com/gogpu/mediaview"
)

// ErrUnknownSpace is returned when a Config names a space that is not
// registered.
var ErrUnknownSpace = errors.New("colorspace: unknown color space")

// Config selects the three spaces of the input → working → display chain.
// The zero value is a disabled transform.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Input   string `yaml:"input"`
	Working string `yaml:"working"`
	Display string `yaml:"display"`
}

// DefaultConfig returns a disabled transform with the conventional spaces
// pre-selected, so enabling it is a single toggle.
func DefaultConfig() Config {
	return Config{
		Input:   SpaceSRGB,
		Working: DefaultWorking,
		Display: SpaceSRGB,
	}
}

// Transform converts pixel values input → working → display.
//
// The conversion is: decode the input transfer curve to linear, matrix into
// working primaries, matrix on to display primaries, encode the display
// transfer curve. The two matrix hops are pre-concatenated at construction.
//
// A disabled Transform's Convert returns its argument unchanged —
// byte-identical to never having constructed the transform.
type Transform struct {
	cfg Config

	input   *Space
	display *Space

	inputToWorking   Matrix3
	workingToDisplay Matrix3
}

// New resolves a Config against the space registry.
// Unknown space names fail with ErrUnknownSpace; the caller's previous
// transform stays in effect.
func New(cfg Config) (*Transform, error) {
	in, ok := Lookup(cfg.Input)
	if !ok {
		return nil, fmt.Errorf("%w: input %q", ErrUnknownSpace, cfg.Input)
	}
	work, ok := Lookup(cfg.Working)
	if !ok {
		return nil, fmt.Errorf("%w: working %q", ErrUnknownSpace, cfg.Working)
	}
	disp, ok := Lookup(cfg.Display)
	if !ok {
		return nil, fmt.Errorf("%w: display %q", ErrUnknownSpace, cfg.Display)
	}

	return &Transform{
		cfg:              cfg,
		input:            in,
		display:          disp,
		inputToWorking:   work.FromXYZ.Mul(in.ToXYZ),
		workingToDisplay: disp.FromXYZ.Mul(work.ToXYZ),
	}, nil
}

// Config returns the configuration the transform was built from.
func (t *Transform) Config() Config {
	return t.cfg
}

// InputToWorking returns the pre-concatenated input→working primaries
// matrix, for callers that run the matrix hops elsewhere (GPU uniforms).
func (t *Transform) InputToWorking() Matrix3 {
	return t.inputToWorking
}

// WorkingToDisplay returns the pre-concatenated working→display primaries
// matrix.
func (t *Transform) WorkingToDisplay() Matrix3 {
	return t.workingToDisplay
}

// Enabled reports whether Convert does any work.
func (t *Transform) Enabled() bool {
	return t != nil && t.cfg.Enabled
}

// Convert maps one pixel input → working → display.
func (t *Transform) Convert(c mediaview.RGB) mediaview.RGB {
	if !t.Enabled() {
		return c
	}
	lin := t.ToWorking(c)
	return t.FromWorking(lin)
}

// ToWorking decodes an input-space pixel to linear working-space light.
func (t *Transform) ToWorking(c mediaview.RGB) mediaview.RGB {
	c.R = t.input.Decode(c.R)
	c.G = t.input.Decode(c.G)
	c.B = t.input.Decode(c.B)
	return t.inputToWorking.Apply(c)
}

// FromWorking encodes linear working-space light for the display.
func (t *Transform) FromWorking(c mediaview.RGB) mediaview.RGB {
	c = t.workingToDisplay.Apply(c)
	c.R = t.display.Encode(c.R)
	c.G = t.display.Encode(c.G)
	c.B = t.display.Encode(c.B)
	return c
}
