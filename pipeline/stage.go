// Package pipeline holds the viewer's color pipeline state and applies it
// to frames: an optional color space transform, an upstream adjustments
// hook, a tone mapping operator, and four ordered 3D LUT stages
// (precache, file, look, display), each independently bypassable.
//
// The render loop reads the state as an immutable Snapshot at the start of
// each draw; every mutation publishes a change event so the host knows to
// re-render. Mutations therefore take effect on the next frame, never
// mid-frame.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/mediaview/lut"
)

// ErrUnknownStage is returned for a StageID outside the fixed set.
var ErrUnknownStage = errors.New("pipeline: unknown stage")

// StageID identifies one of the four LUT stages, in application order.
type StageID uint8

const (
	// StagePrecache applies camera/technical pre-transforms baked ahead of
	// decode.
	StagePrecache StageID = iota

	// StageFile applies the LUT attached to the media file itself.
	StageFile

	// StageLook applies the creative look.
	StageLook

	// StageDisplay applies the display calibration LUT, last in the chain.
	StageDisplay

	stageCount
)

// StageIDs lists the stages in application order.
var StageIDs = []StageID{StagePrecache, StageFile, StageLook, StageDisplay}

// String returns the lowercase stage name.
func (id StageID) String() string {
	switch id {
	case StagePrecache:
		return "precache"
	case StageFile:
		return "file"
	case StageLook:
		return "look"
	case StageDisplay:
		return "display"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(id))
	}
}

// ParseStageID resolves a stage name back to its StageID.
func ParseStageID(s string) (StageID, error) {
	for _, id := range StageIDs {
		if id.String() == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Provenance records how a stage received its current LUT. A manual
// assignment is not silently replaced by automatic (derived) ones.
type Provenance uint8

const (
	// ProvenanceNone means the stage holds no LUT.
	ProvenanceNone Provenance = iota

	// ProvenanceManual means a user loaded the LUT explicitly.
	ProvenanceManual

	// ProvenanceDerived means the LUT was assigned automatically, e.g.
	// from media metadata or a session default.
	ProvenanceDerived
)

// String returns the lowercase provenance name.
func (p Provenance) String() string {
	switch p {
	case ProvenanceManual:
		return "manual"
	case ProvenanceDerived:
		return "derived"
	default:
		return "none"
	}
}

// stage is the mutable per-stage record inside State.
type stage struct {
	enabled    bool
	tab        *lut.Table
	name       string
	intensity  float32
	provenance Provenance
}

// defaultStage is the stage state after construction and after Reset.
func defaultStage() stage {
	return stage{enabled: true, intensity: 1}
}

// StageInfo is the read-only per-stage view exposed by Query.
type StageInfo struct {
	ID         StageID    `yaml:"-"`
	Enabled    bool       `yaml:"enabled"`
	HasLUT     bool       `yaml:"-"`
	LUTName    string     `yaml:"lut,omitempty"`
	Intensity  float32    `yaml:"intensity"`
	Provenance Provenance `yaml:"-"`
}
