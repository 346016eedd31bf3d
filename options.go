package polysynth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// Options configures a PolySynth. These are all the keys there are: anything
// else a voice needs goes into Voice, which is passed to every voice as is.
type Options struct {
	// Polyphony is the number of voices, fixed for the lifetime of the
	// PolySynth.
	Polyphony int `yaml:"polyphony"`
	// VoiceStealing chooses which voice to reclaim when all are busy.
	VoiceStealing StealingMode `yaml:"voiceStealing"`
	// Volume of the mixed output, in decibels.
	Volume float64 `yaml:"volume"`
	// Voice holds the voice level synthesis parameters.
	Voice Params `yaml:"voice,omitempty"`
}

// DefaultPolyphony is the polyphony of DefaultOptions.
const DefaultPolyphony = 4

// DefaultOptions returns the options used for the keys that are not given.
func DefaultOptions() Options {
	return Options{
		Polyphony:     DefaultPolyphony,
		VoiceStealing: StealOldest,
		Volume:        0,
	}
}

// Validate checks that the options can be used to construct a PolySynth.
func (o *Options) Validate() error {
	if o.Polyphony <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidPolyphony, o.Polyphony)
	}
	if !o.VoiceStealing.Valid() {
		return fmt.Errorf("invalid voice stealing mode %v", o.VoiceStealing)
	}
	if math.IsNaN(o.Volume) || math.IsInf(o.Volume, 1) {
		return errors.New("volume should be a number or -Inf")
	}
	return nil
}

// Copy makes a deep copy of the options.
func (o Options) Copy() Options {
	o.Voice = o.Voice.Copy()
	return o
}

// ParseOptions decodes yaml (or json, which is valid yaml) options over
// DefaultOptions. Unknown keys are an error.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("could not parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
