package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/mediaview/tonemap"
)

// Preset serialization. A preset is the Query surface written as YAML:
// per-stage enable and intensity, the tone map selection, and the color
// space configuration. LUT names are recorded for display but presets do
// not carry table data; reattaching files is the host's job (it knows the
// media's search paths).

// SavePreset writes the state's current configuration to path.
func SavePreset(path string, s *State) error {
	data, err := yaml.Marshal(s.Query())
	if err != nil {
		return fmt.Errorf("pipeline: encoding preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pipeline: writing preset: %w", err)
	}
	return nil
}

// LoadPreset reads a preset file.
func LoadPreset(path string) (Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Query{}, fmt.Errorf("pipeline: reading preset: %w", err)
	}
	var q Query
	if err := yaml.Unmarshal(data, &q); err != nil {
		return Query{}, fmt.Errorf("pipeline: decoding preset %s: %w", path, err)
	}
	return q, nil
}

// ApplyPreset configures the state from a loaded preset. Unknown stage or
// operator names fail before anything is mutated, so a bad preset leaves
// the pipeline as it was.
func ApplyPreset(s *State, q Query) error {
	type stageSetting struct {
		id   StageID
		info StageInfo
	}
	settings := make([]stageSetting, 0, len(q.Stages))
	for name, info := range q.Stages {
		id, err := ParseStageID(name)
		if err != nil {
			return err
		}
		settings = append(settings, stageSetting{id, info})
	}

	op := tonemap.Off
	if q.ToneMap.Operator != "" {
		var err error
		op, err = tonemap.ParseOperator(q.ToneMap.Operator)
		if err != nil {
			return err
		}
	}

	// A preset without color fields keeps the current transform.
	if q.Color.Input != "" && q.Color.Working != "" && q.Color.Display != "" {
		if err := s.SetColorConfig(q.Color); err != nil {
			return err
		}
	}
	for _, st := range settings {
		s.SetStageEnabled(st.id, st.info.Enabled)
		s.SetStageIntensity(st.id, st.info.Intensity)
	}
	if op != tonemap.Off {
		s.SetToneMapOperator(op)
	}
	s.SetToneMapEnabled(q.ToneMap.Enabled)
	return nil
}
