package voice_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vsariola/polysynth"
	"github.com/vsariola/polysynth/voice"
)

const sampleRate = 1000

// flatOptions has no attack or decay, so the envelope jumps to full level.
func flatOptions() voice.Options {
	opts := voice.DefaultOptions()
	opts.Oscillator.Type = voice.Square
	opts.Envelope = voice.EnvelopeOptions{Attack: 0, Decay: 0, Sustain: 1, Release: 0.01}
	return opts
}

func newSynth(t *testing.T, opts voice.Options) *voice.Synth {
	t.Helper()
	s, err := voice.New(sampleRate, opts)
	if err != nil {
		t.Fatalf("could not create synth: %v", err)
	}
	return s
}

func TestNewErrors(t *testing.T) {
	if _, err := voice.New(0, voice.DefaultOptions()); err == nil {
		t.Errorf("expected an error for sample rate 0")
	}
	opts := voice.DefaultOptions()
	opts.Envelope.Attack = -1
	if _, err := voice.New(sampleRate, opts); err == nil {
		t.Errorf("expected an error for a negative attack")
	}
	if _, err := voice.Factory(sampleRate, polysynth.Params{"filter": 1}); err == nil {
		t.Errorf("expected an error for an unknown parameter")
	}
}

func TestAttackInvalidNote(t *testing.T) {
	s := newSynth(t, flatOptions())
	for _, n := range []polysynth.Note{0, -440, polysynth.Note(math.NaN())} {
		if err := s.Attack(n, 0, 1); !errors.Is(err, polysynth.ErrInvalidNote) {
			t.Errorf("%v: expected ErrInvalidNote, got %v", n, err)
		}
	}
	if !s.Silent() {
		t.Errorf("a failed attack should leave the voice silent")
	}
}

func TestSilentFollowsEnvelope(t *testing.T) {
	s := newSynth(t, flatOptions())
	if !s.Silent() {
		t.Fatalf("a new voice should be silent")
	}
	if err := s.Attack(100, 0, 0.5); err != nil {
		t.Fatalf("Attack failed: %v", err)
	}
	if s.Silent() {
		t.Fatalf("a voice with a pending attack should not be silent")
	}
	if n, ok := s.Note(); !ok || n != 100 {
		t.Errorf("expected note 100, got %v, %v", n, ok)
	}
	s.Release(100 * time.Millisecond)
	buf := make([]float32, 200)
	s.Render(buf, 0)
	for i := 0; i < 109; i++ {
		if v := math.Abs(float64(buf[i])); v == 0 || v > 0.5 {
			t.Fatalf("frame %d: expected sound within the velocity, got %v", i, buf[i])
		}
	}
	for i := 109; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("frame %d: expected silence after the release, got %v", i, buf[i])
		}
	}
	if !s.Silent() {
		t.Errorf("expected the voice to be silent after the release tail")
	}
}

func TestZeroSustainEndsAfterDecay(t *testing.T) {
	opts := flatOptions()
	opts.Envelope.Decay = 0.05
	opts.Envelope.Sustain = 0
	s := newSynth(t, opts)
	s.Attack(100, 0, 1)
	s.Render(make([]float32, 49), 0)
	if s.Silent() {
		t.Fatalf("voice should sound during the decay")
	}
	s.Render(make([]float32, 10), 49)
	if !s.Silent() {
		t.Errorf("voice should be silent after decaying to zero sustain")
	}
}

func TestCut(t *testing.T) {
	s := newSynth(t, flatOptions())
	s.Attack(100, 0, 1)
	s.Cut(10 * time.Millisecond)
	s.Attack(200, 10*time.Millisecond, 1)
	buf := make([]float32, 20)
	s.Render(buf, 0)
	if s.Silent() {
		t.Fatalf("the attack after the cut should sound")
	}
	if n, _ := s.Note(); n != 200 {
		t.Errorf("expected note 200, got %v", n)
	}
	s.Cut(20 * time.Millisecond)
	buf = make([]float32, 20)
	s.Render(buf, 20)
	if !s.Silent() {
		t.Errorf("expected silence right after a cut")
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("frame %d: expected no release tail after a cut, got %v", i+20, v)
		}
	}
}

func TestReleaseWhenSilentIsIgnored(t *testing.T) {
	s := newSynth(t, flatOptions())
	if err := s.Release(0); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	s.Attack(100, 50*time.Millisecond, 1)
	buf := make([]float32, 100)
	s.Render(buf, 0)
	if buf[49] != 0 || buf[50] == 0 || buf[99] == 0 {
		t.Errorf("expected sound from frame 50 on, got %v %v %v", buf[49], buf[50], buf[99])
	}
}

func TestSetGet(t *testing.T) {
	s := newSynth(t, voice.DefaultOptions())
	if err := s.Set(polysynth.Params{"envelope": polysynth.Params{"decay": 3}, "oscillator": map[string]any{"type": "Sawtooth"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got := s.Get()
	env := got["envelope"].(polysynth.Params)
	if env["decay"] != 3.0 || env["attack"] != 0.005 {
		t.Errorf("unexpected envelope params: %v", env)
	}
	if osc := got["oscillator"].(polysynth.Params); osc["type"] != "sawtooth" {
		t.Errorf("unexpected oscillator params: %v", osc)
	}
	for _, bad := range []polysynth.Params{
		{"envelope": polysynth.Params{"sustain": 1.5}},
		{"envelope": polysynth.Params{"hold": 1}},
		{"oscillator": polysynth.Params{"type": "noise"}},
	} {
		if err := s.Set(bad); err == nil {
			t.Errorf("expected an error for %v", bad)
		}
	}
	if s.Options().Envelope.Decay != 3 {
		t.Errorf("failed Set should keep the previous options")
	}
}

func TestReleaseTimeChangeAffectsNextRelease(t *testing.T) {
	s := newSynth(t, flatOptions())
	s.Attack(100, 0, 1)
	s.Render(make([]float32, 10), 0)
	if err := s.Set(polysynth.Params{"envelope": polysynth.Params{"release": 0.02}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Release(10 * time.Millisecond)
	s.Render(make([]float32, 19), 10)
	if s.Silent() {
		t.Fatalf("the new release time should be used")
	}
	s.Render(make([]float32, 1), 29)
	if !s.Silent() {
		t.Errorf("expected silence after 20 samples of release")
	}
}
