package voice

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Waveform is the shape of the oscillator of a Synth.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Square
)

var waveformNames = [...]string{"sine", "triangle", "sawtooth", "square"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform parses the names returned by Waveform.String, ignoring case.
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if strings.EqualFold(s, name) {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

func (w Waveform) MarshalYAML() (any, error) {
	return w.String(), nil
}

func (w *Waveform) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	ret, err := ParseWaveform(s)
	if err != nil {
		return err
	}
	*w = ret
	return nil
}

// oscillator is a naive (non band limited) oscillator; phase is in cycles,
// [0, 1).
type oscillator struct {
	phase float64
	delta float64
}

func (o *oscillator) setFrequency(freq float64, sampleRate int) {
	o.delta = freq / float64(sampleRate)
}

func (o *oscillator) next(w Waveform) float32 {
	p := o.phase
	o.phase += o.delta
	o.phase -= math.Floor(o.phase)
	switch w {
	case Triangle:
		return float32(1 - 4*math.Abs(math.Mod(p+0.25, 1)-0.5))
	case Sawtooth:
		return float32(2*math.Mod(p+0.5, 1) - 1)
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	}
	return float32(math.Sin(2 * math.Pi * p))
}
