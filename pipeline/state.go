package pipeline

import (
	"sync"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/colorspace"
	"github.com/gogpu/mediaview/hdrout"
	"github.com/gogpu/mediaview/internal/event"
	"github.com/gogpu/mediaview/lut"
	"github.com/gogpu/mediaview/tonemap"
)

// Change describes which part of the pipeline state a mutation touched.
type Change uint8

const (
	// ChangeStage covers LUT-stage mutations (enable, intensity, LUT).
	ChangeStage Change = iota

	// ChangeToneMap covers operator and enable changes.
	ChangeToneMap

	// ChangeColor covers color space transform changes.
	ChangeColor

	// ChangeHDR covers output mode changes mirrored from the negotiator.
	ChangeHDR

	// ChangeAdjust covers the upstream adjustments hook.
	ChangeAdjust

	// ChangeReset is published once for the whole atomic stage reset.
	ChangeReset
)

// String returns the lowercase change name.
func (c Change) String() string {
	switch c {
	case ChangeStage:
		return "stage"
	case ChangeToneMap:
		return "tonemap"
	case ChangeColor:
		return "color"
	case ChangeHDR:
		return "hdr"
	case ChangeAdjust:
		return "adjust"
	case ChangeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// AdjustFunc is the upstream adjustments hook (exposure, contrast, CDL),
// applied to linear pixels between the color space transform and the tone
// map. A nil hook is a pass-through.
type AdjustFunc func(mediaview.RGB) mediaview.RGB

// State is the mutable pipeline configuration shared between the UI and
// the render loop.
//
// All setters are safe for concurrent use. The render loop never reads
// State directly; it takes a Snapshot at the start of each draw, so a
// frame is always rendered against one consistent configuration.
type State struct {
	mu sync.Mutex

	stages [stageCount]stage

	colorCfg  colorspace.Config
	transform *colorspace.Transform

	adjust AdjustFunc

	// Tone map state is sticky: tmOperator holds the last non-off
	// operator so toggling tmEnabled brings it back.
	tmEnabled  bool
	tmOperator tonemap.Operator

	hdrMode hdrout.Mode

	changed *event.Bus[Change]
}

// NewState creates the default pipeline state: all four stages enabled at
// full intensity with no LUTs, tone mapping off (Reinhard retained for the
// next enable), color space transform disabled, sdr output.
func NewState() *State {
	s := &State{
		colorCfg:   colorspace.DefaultConfig(),
		tmOperator: tonemap.Reinhard,
		changed:    event.NewBus[Change](),
	}
	for i := range s.stages {
		s.stages[i] = defaultStage()
	}
	return s
}

// OnChange subscribes to state mutations. The host typically schedules a
// re-render from the handler.
func (s *State) OnChange(fn func(Change)) *event.Subscription {
	return s.changed.Subscribe(fn)
}

// publish fires outside the state lock so handlers may read State back.
func (s *State) publish(c Change) {
	s.changed.Publish(c)
}

// SetStageEnabled toggles a stage bypass. The stage's LUT and intensity
// are retained, so re-enabling restores the previous behavior exactly.
func (s *State) SetStageEnabled(id StageID, enabled bool) {
	if int(id) >= int(stageCount) {
		return
	}
	s.mu.Lock()
	if s.stages[id].enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.stages[id].enabled = enabled
	s.mu.Unlock()
	s.publish(ChangeStage)
}

// SetStageIntensity sets the stage blend weight. Out-of-range values are
// clamped to [0, 1]; 0 is visually identical to disabling the stage.
func (s *State) SetStageIntensity(id StageID, intensity float32) {
	if int(id) >= int(stageCount) {
		return
	}
	intensity = mediaview.Clamp01(intensity)
	s.mu.Lock()
	if s.stages[id].intensity == intensity {
		s.mu.Unlock()
		return
	}
	s.stages[id].intensity = intensity
	s.mu.Unlock()
	s.publish(ChangeStage)
}

// SetStageLUT installs a LUT with manual provenance. Manual assignments
// stick: subsequent derived assignments will not replace them.
func (s *State) SetStageLUT(id StageID, tab *lut.Table, name string) {
	if int(id) >= int(stageCount) || tab == nil {
		return
	}
	s.mu.Lock()
	s.stages[id].tab = tab
	s.stages[id].name = name
	s.stages[id].provenance = ProvenanceManual
	s.mu.Unlock()

	mediaview.Logger().Info("pipeline: LUT installed",
		"stage", id.String(), "lut", name, "size", tab.Size(), "provenance", "manual")
	s.publish(ChangeStage)
}

// SetDerivedLUT installs an automatically-derived LUT. It reports whether
// the assignment was applied: a stage holding a manual LUT is left
// untouched. Use ForceDerivedLUT to replace a manual assignment.
func (s *State) SetDerivedLUT(id StageID, tab *lut.Table, name string) bool {
	if int(id) >= int(stageCount) || tab == nil {
		return false
	}
	s.mu.Lock()
	if s.stages[id].provenance == ProvenanceManual {
		s.mu.Unlock()
		mediaview.Logger().Debug("pipeline: derived LUT skipped, stage is manual",
			"stage", id.String(), "lut", name)
		return false
	}
	s.stages[id].tab = tab
	s.stages[id].name = name
	s.stages[id].provenance = ProvenanceDerived
	s.mu.Unlock()
	s.publish(ChangeStage)
	return true
}

// ForceDerivedLUT installs a derived LUT even over a manual assignment.
func (s *State) ForceDerivedLUT(id StageID, tab *lut.Table, name string) {
	if int(id) >= int(stageCount) || tab == nil {
		return
	}
	s.mu.Lock()
	s.stages[id].tab = tab
	s.stages[id].name = name
	s.stages[id].provenance = ProvenanceDerived
	s.mu.Unlock()
	s.publish(ChangeStage)
}

// ClearStage drops the stage's LUT and provenance. Enabled and intensity
// are retained; the stage passes frames through until a new LUT arrives.
func (s *State) ClearStage(id StageID) {
	if int(id) >= int(stageCount) {
		return
	}
	s.mu.Lock()
	if s.stages[id].tab == nil && s.stages[id].provenance == ProvenanceNone {
		s.mu.Unlock()
		return
	}
	s.stages[id].tab = nil
	s.stages[id].name = ""
	s.stages[id].provenance = ProvenanceNone
	s.mu.Unlock()
	s.publish(ChangeStage)
}

// Reset restores all four stages to their defaults (enabled, no LUT,
// intensity 1) in one atomic transition: observers see either the old
// state or the fully reset one, and exactly one event is published.
func (s *State) Reset() {
	s.mu.Lock()
	for i := range s.stages {
		s.stages[i] = defaultStage()
	}
	s.mu.Unlock()
	s.publish(ChangeReset)
}

// SetToneMapOperator selects the tone mapping operator. A non-off operator
// enables tone mapping and is retained; Off disables it without forgetting
// the retained operator, so a later enable restores it.
func (s *State) SetToneMapOperator(op tonemap.Operator) {
	s.mu.Lock()
	if op == tonemap.Off {
		if !s.tmEnabled {
			s.mu.Unlock()
			return
		}
		s.tmEnabled = false
	} else {
		if s.tmEnabled && s.tmOperator == op {
			s.mu.Unlock()
			return
		}
		s.tmOperator = op
		s.tmEnabled = true
	}
	s.mu.Unlock()
	s.publish(ChangeToneMap)
}

// SetToneMapEnabled toggles tone mapping independently of the operator
// selection; enabling re-activates the retained operator.
func (s *State) SetToneMapEnabled(enabled bool) {
	s.mu.Lock()
	if s.tmEnabled == enabled {
		s.mu.Unlock()
		return
	}
	s.tmEnabled = enabled
	s.mu.Unlock()
	s.publish(ChangeToneMap)
}

// SetColorConfig rebuilds the color space transform. Unknown space names
// fail with colorspace.ErrUnknownSpace and leave the previous transform in
// effect.
func (s *State) SetColorConfig(cfg colorspace.Config) error {
	tr, err := colorspace.New(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.colorCfg = cfg
	s.transform = tr
	s.mu.Unlock()
	s.publish(ChangeColor)
	return nil
}

// SetHDRMode mirrors the negotiated output mode into the state so the
// snapshot carries the encoding the chain output should target.
func (s *State) SetHDRMode(m hdrout.Mode) {
	s.mu.Lock()
	if s.hdrMode == m {
		s.mu.Unlock()
		return
	}
	s.hdrMode = m
	s.mu.Unlock()
	s.publish(ChangeHDR)
}

// SetAdjust installs the upstream adjustments hook. Pass nil to remove it.
func (s *State) SetAdjust(fn AdjustFunc) {
	s.mu.Lock()
	s.adjust = fn
	s.mu.Unlock()
	s.publish(ChangeAdjust)
}

// Stage returns the read-only view of one stage.
func (s *State) Stage(id StageID) StageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= int(stageCount) {
		return StageInfo{ID: id}
	}
	return s.stageInfoLocked(id)
}

func (s *State) stageInfoLocked(id StageID) StageInfo {
	st := &s.stages[id]
	return StageInfo{
		ID:         id,
		Enabled:    st.enabled,
		HasLUT:     st.tab != nil,
		LUTName:    st.name,
		Intensity:  st.intensity,
		Provenance: st.provenance,
	}
}

// Query is the full read surface of the pipeline state, also the preset
// serialization schema.
type Query struct {
	Stages   map[string]StageInfo `yaml:"stages"`
	ToneMap  ToneMapInfo          `yaml:"tonemap"`
	Color    colorspace.Config    `yaml:"color"`
	HDRMode  string               `yaml:"hdr_mode"`
}

// ToneMapInfo is the tone mapping portion of Query.
type ToneMapInfo struct {
	Enabled  bool   `yaml:"enabled"`
	Operator string `yaml:"operator"`
}

// Query returns the whole state in one consistent read.
func (s *State) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := Query{
		Stages: make(map[string]StageInfo, len(StageIDs)),
		ToneMap: ToneMapInfo{
			Enabled:  s.tmEnabled,
			Operator: s.tmOperator.String(),
		},
		Color:   s.colorCfg,
		HDRMode: s.hdrMode.String(),
	}
	for _, id := range StageIDs {
		q.Stages[id.String()] = s.stageInfoLocked(id)
	}
	return q
}

// Snapshot captures the state for one render. The snapshot is immutable;
// LUT tables are shared by pointer, which is safe because tables are never
// mutated after parse.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Color:           s.transform,
		Adjust:          s.adjust,
		ToneMapEnabled:  s.tmEnabled,
		ToneMapOperator: s.tmOperator,
		HDRMode:         s.hdrMode,
	}
	for i := range s.stages {
		st := &s.stages[i]
		snap.Stages[i] = StageSnapshot{
			Enabled:   st.enabled,
			LUT:       st.tab,
			Intensity: st.intensity,
		}
	}
	return snap
}
