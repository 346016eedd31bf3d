package voice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vsariola/polysynth"
	"gopkg.in/yaml.v3"
)

type (
	// Options are the synthesis parameters of a Synth. As Params, they look
	// like:
	//
	//	oscillator: {type: triangle}
	//	envelope: {attack: 0.005, decay: 0.1, sustain: 0.3, release: 1}
	Options struct {
		Oscillator OscillatorOptions `yaml:"oscillator"`
		Envelope   EnvelopeOptions   `yaml:"envelope"`
	}

	OscillatorOptions struct {
		Type Waveform `yaml:"type"`
	}

	// EnvelopeOptions are the times of the envelope stages, in seconds, and
	// the sustain level in [0, 1].
	EnvelopeOptions struct {
		Attack  float64 `yaml:"attack"`
		Decay   float64 `yaml:"decay"`
		Sustain float64 `yaml:"sustain"`
		Release float64 `yaml:"release"`
	}
)

// DefaultOptions returns the parameters a Synth starts with.
func DefaultOptions() Options {
	return Options{
		Oscillator: OscillatorOptions{Type: Triangle},
		Envelope: EnvelopeOptions{
			Attack:  0.005,
			Decay:   0.1,
			Sustain: 0.3,
			Release: 1,
		},
	}
}

// Validate checks that the envelope times are non-negative and the sustain
// level is within [0, 1].
func (o *Options) Validate() error {
	if o.Oscillator.Type < Sine || o.Oscillator.Type > Square {
		return fmt.Errorf("invalid oscillator type %v", o.Oscillator.Type)
	}
	e := &o.Envelope
	for _, t := range []struct {
		name  string
		value float64
	}{{"attack", e.Attack}, {"decay", e.Decay}, {"release", e.Release}} {
		if !(t.value >= 0) || math.IsInf(t.value, 1) {
			return fmt.Errorf("envelope %s should be a non-negative number of seconds, got %v", t.name, t.value)
		}
	}
	if !(e.Sustain >= 0 && e.Sustain <= 1) {
		return fmt.Errorf("envelope sustain should be in [0, 1], got %v", e.Sustain)
	}
	return nil
}

// Merge returns a copy of o with the keys of params written over it. Unknown
// keys are an error.
func (o Options) Merge(params polysynth.Params) (Options, error) {
	if len(params) == 0 {
		return o, nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return o, fmt.Errorf("could not marshal params: %w", err)
	}
	ret := o
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ret); err != nil && !errors.Is(err, io.EOF) {
		return o, fmt.Errorf("invalid params: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return o, err
	}
	return ret, nil
}

// Params returns the options as a parameter tree.
func (o Options) Params() polysynth.Params {
	return polysynth.Params{
		"oscillator": polysynth.Params{
			"type": o.Oscillator.Type.String(),
		},
		"envelope": polysynth.Params{
			"attack":  o.Envelope.Attack,
			"decay":   o.Envelope.Decay,
			"sustain": o.Envelope.Sustain,
			"release": o.Envelope.Release,
		},
	}
}
