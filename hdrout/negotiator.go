// Package hdrout negotiates the viewer's output mode with the display:
// standard dynamic range, or the extended-range HLG / PQ encodings when
// both the display and the drawing surface support them.
package hdrout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/internal/event"
)

// Negotiation errors.
var (
	// ErrUnsupportedMode is returned when HLG/PQ is requested but the
	// capability probe says the display or surface cannot take it. The
	// active mode is left unchanged.
	ErrUnsupportedMode = errors.New("hdrout: output mode not supported by display or surface")

	// ErrUnknownMode is returned by ParseMode for unrecognized names.
	ErrUnknownMode = errors.New("hdrout: unknown output mode")
)

// Mode is the selected output encoding. Exactly one mode is active at a
// time; the default is ModeSDR.
type Mode uint8

const (
	// ModeSDR is standard dynamic range (sRGB surface).
	ModeSDR Mode = iota

	// ModeHLG is hybrid log-gamma extended range (rec2100-hlg surface).
	ModeHLG

	// ModePQ is perceptual quantizer extended range (rec2100-pq surface).
	ModePQ
)

// String returns the lowercase wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSDR:
		return "sdr"
	case ModeHLG:
		return "hlg"
	case ModePQ:
		return "pq"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// SurfaceColorSpace returns the drawing-buffer color space attribute for
// the mode: one of "srgb", "rec2100-hlg", "rec2100-pq".
func (m Mode) SurfaceColorSpace() string {
	switch m {
	case ModeHLG:
		return "rec2100-hlg"
	case ModePQ:
		return "rec2100-pq"
	default:
		return "srgb"
	}
}

// ParseMode resolves a wire name back to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sdr":
		return ModeSDR, nil
	case "hlg":
		return ModeHLG, nil
	case "pq":
		return ModePQ, nil
	default:
		return ModeSDR, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Capabilities is the result of probing the two independent requirements
// for extended-range output.
type Capabilities struct {
	// DisplayHDR reports whether the display advertises extended dynamic
	// range.
	DisplayHDR bool

	// SurfaceExtendedColor reports whether the drawing buffer accepts the
	// rec2100-hlg / rec2100-pq color spaces.
	SurfaceExtendedColor bool
}

// ExtendedOutput reports whether HLG/PQ may be offered at all. Both
// capabilities must hold; when either is false only sdr is exposed.
func (c Capabilities) ExtendedOutput() bool {
	return c.DisplayHDR && c.SurfaceExtendedColor
}

// CapabilityProber is implemented by the host windowing layer.
type CapabilityProber interface {
	ProbeCapabilities() Capabilities
}

// SurfaceConfigurator is implemented by the drawing surface. SetColorSpace
// receives one of the Mode.SurfaceColorSpace values.
type SurfaceConfigurator interface {
	SetColorSpace(cs string) error
}

// ProberFunc adapts a function to CapabilityProber.
type ProberFunc func() Capabilities

// ProbeCapabilities calls f.
func (f ProberFunc) ProbeCapabilities() Capabilities { return f() }

// Negotiator owns the output-mode state for one viewer surface.
//
// Negotiator is safe for concurrent use, though in practice selection
// happens on the UI thread between renders.
type Negotiator struct {
	mu sync.Mutex

	prober  CapabilityProber
	surface SurfaceConfigurator

	caps   Capabilities
	probed bool

	mode    Mode
	changed *event.Bus[Mode]
}

// New creates a negotiator in the default sdr mode. Either collaborator
// may be nil: a nil prober reports no extended capability, a nil surface
// skips reconfiguration.
func New(prober CapabilityProber, surface SurfaceConfigurator) *Negotiator {
	return &Negotiator{
		prober:  prober,
		surface: surface,
		changed: event.NewBus[Mode](),
	}
}

// Capabilities returns the probed capabilities, probing on first use.
func (n *Negotiator) Capabilities() Capabilities {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.capabilitiesLocked()
}

func (n *Negotiator) capabilitiesLocked() Capabilities {
	if !n.probed {
		if n.prober != nil {
			n.caps = n.prober.ProbeCapabilities()
		}
		n.probed = true
	}
	return n.caps
}

// Refresh re-probes capabilities, e.g. after the window moved to another
// display. If extended output was withdrawn while HLG/PQ was active, the
// mode falls back to sdr.
func (n *Negotiator) Refresh() Capabilities {
	n.mu.Lock()
	n.probed = false
	caps := n.capabilitiesLocked()
	fallback := !caps.ExtendedOutput() && n.mode != ModeSDR
	if fallback {
		n.setModeLocked(ModeSDR)
	}
	bus, mode := n.changed, n.mode
	n.mu.Unlock()

	if fallback {
		bus.Publish(mode)
	}
	return caps
}

// Available lists the modes the selector may expose: always sdr, plus
// hlg and pq only when both capability bits are true.
func (n *Negotiator) Available() []Mode {
	if n.Capabilities().ExtendedOutput() {
		return []Mode{ModeSDR, ModeHLG, ModePQ}
	}
	return []Mode{ModeSDR}
}

// Mode returns the active output mode.
func (n *Negotiator) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// Select activates an output mode, deselecting the previous one.
//
// HLG/PQ requests are rejected with ErrUnsupportedMode when negotiation
// says the display or surface cannot take them; the active mode and the
// surface configuration are then left untouched. The selection persists
// until changed.
func (n *Negotiator) Select(m Mode) error {
	n.mu.Lock()

	if m != ModeSDR && !n.capabilitiesLocked().ExtendedOutput() {
		n.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
	}
	if m == n.mode {
		n.mu.Unlock()
		return nil
	}
	if err := n.setModeLocked(m); err != nil {
		n.mu.Unlock()
		return err
	}
	bus := n.changed
	n.mu.Unlock()

	mediaview.Logger().Info("hdrout: output mode selected", "mode", m.String())
	bus.Publish(m)
	return nil
}

// setModeLocked reconfigures the surface first so a surface failure leaves
// the previous mode fully intact — no partial reconfiguration.
func (n *Negotiator) setModeLocked(m Mode) error {
	if n.surface != nil {
		if err := n.surface.SetColorSpace(m.SurfaceColorSpace()); err != nil {
			return fmt.Errorf("hdrout: surface reconfiguration failed: %w", err)
		}
	}
	n.mode = m
	return nil
}

// OnChange subscribes to mode changes. The pipeline uses this to mirror
// the mode into its state snapshot.
func (n *Negotiator) OnChange(fn func(Mode)) *event.Subscription {
	return n.changed.Subscribe(fn)
}
