package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gogpu/mediaview/colorspace"
	"github.com/gogpu/mediaview/tonemap"
)

// TestPresetRoundTrip: save a configured state and apply the loaded preset
// to a fresh one; the query surfaces must agree on everything a preset
// carries (stage enables and intensities, tone map, color config).
func TestPresetRoundTrip(t *testing.T) {
	src := NewState()
	src.SetStageEnabled(StageFile, false)
	src.SetStageIntensity(StageLook, 0.4)
	src.SetToneMapOperator(tonemap.Filmic)
	if err := src.SetColorConfig(colorspace.Config{
		Enabled: true,
		Input:   colorspace.SpaceSLog3,
		Working: colorspace.SpaceACEScg,
		Display: colorspace.SpaceDisplayP3,
	}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "grade.yaml")
	if err := SavePreset(path, src); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	q, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}

	dst := NewState()
	if err := ApplyPreset(dst, q); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}

	got, want := dst.Query(), src.Query()
	for _, id := range StageIDs {
		g, w := got.Stages[id.String()], want.Stages[id.String()]
		if g.Enabled != w.Enabled || g.Intensity != w.Intensity {
			t.Errorf("stage %s: got %+v, want %+v", id, g, w)
		}
	}
	if got.ToneMap != want.ToneMap {
		t.Errorf("tonemap: got %+v, want %+v", got.ToneMap, want.ToneMap)
	}
	if got.Color != want.Color {
		t.Errorf("color: got %+v, want %+v", got.Color, want.Color)
	}
}

// TestPresetDisabledToneMapKeepsOperator: a preset saved with tone mapping
// off still records the retained operator and restores it disabled.
func TestPresetDisabledToneMapKeepsOperator(t *testing.T) {
	src := NewState()
	src.SetToneMapOperator(tonemap.ACES)
	src.SetToneMapOperator(tonemap.Off)

	dst := NewState()
	if err := ApplyPreset(dst, src.Query()); err != nil {
		t.Fatal(err)
	}
	q := dst.Query()
	if q.ToneMap.Enabled || q.ToneMap.Operator != "aces" {
		t.Errorf("tonemap after preset: %+v", q.ToneMap)
	}
}

func TestApplyPresetRejectsUnknownStage(t *testing.T) {
	s := NewState()
	q := s.Query()
	q.Stages["vignette"] = StageInfo{Enabled: true, Intensity: 1}

	if err := ApplyPreset(s, q); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("got %v, want ErrUnknownStage", err)
	}
}

// TestApplyPresetValidatesBeforeMutating: a preset with a bad operator
// fails without touching the state.
func TestApplyPresetValidatesBeforeMutating(t *testing.T) {
	s := NewState()
	s.SetStageIntensity(StageLook, 0.7)
	before := s.Query()

	q := s.Query()
	q.ToneMap.Operator = "clarity"
	q.Stages[StageLook.String()] = StageInfo{Enabled: false, Intensity: 0.1}

	if err := ApplyPreset(s, q); err == nil {
		t.Fatal("bad operator accepted")
	}
	after := s.Query()
	if after.Stages[StageLook.String()] != before.Stages[StageLook.String()] {
		t.Errorf("failed preset mutated state: %+v", after.Stages[StageLook.String()])
	}
}

func TestLoadPresetMissingFile(t *testing.T) {
	if _, err := LoadPreset(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("loading a missing preset succeeded")
	}
}
