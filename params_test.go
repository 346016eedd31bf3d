package polysynth_test

import (
	"testing"

	"github.com/vsariola/polysynth"
)

func TestParamsMerge(t *testing.T) {
	base := polysynth.Params{
		"oscillator": polysynth.Params{"type": "sine"},
		"envelope":   map[string]any{"attack": 0.1, "release": 1.0},
	}
	merged := base.Merge(polysynth.Params{
		"envelope":   polysynth.Params{"release": 0.5},
		"portamento": 0.0,
	})
	env := merged["envelope"].(polysynth.Params)
	if env["attack"] != 0.1 || env["release"] != 0.5 {
		t.Errorf("nested params were not merged key by key: %v", env)
	}
	if merged["portamento"] != 0.0 {
		t.Errorf("new key was not added: %v", merged)
	}
	if base["envelope"].(map[string]any)["release"] != 1.0 {
		t.Errorf("Merge modified the receiver: %v", base)
	}
}

func TestParamsMergeNil(t *testing.T) {
	var p polysynth.Params
	merged := p.Merge(polysynth.Params{"a": 1})
	if merged["a"] != 1 {
		t.Errorf("expected a: 1, got %v", merged)
	}
	if p.Copy() != nil {
		t.Errorf("copy of nil params should be nil")
	}
}
