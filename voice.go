package polysynth

import "time"

type (
	// Source renders mono audio. frame is the position of buf[0] on the
	// timeline of the Context, in samples. Render adds nothing to buf it did
	// not produce itself: the caller zeroes buf before the call.
	Source interface {
		Render(buf []float32, frame int64)
	}

	// Voice is a monophonic sound source that a PolySynth allocates notes to.
	// Attack and Release are dispatched ahead of time: at is the time on the
	// Context timeline when the event should take place, and the voice is
	// responsible for applying it at that exact sample while rendering.
	//
	// Silent reports whether the voice is acoustically silent: it has no
	// attack pending and its envelope has decayed to zero. A voice in its
	// release tail is not silent. PolySynth never caches this value.
	Voice interface {
		Source
		Attack(note Note, at time.Duration, velocity float64) error
		Release(at time.Duration) error
		Note() (note Note, ok bool)
		Silent() bool
	}

	// Cutter is implemented by voices that can stop their sound faster than
	// their release time. When a voice is stolen, PolySynth cuts it at the
	// time of the new attack, falling back to Release if the voice is not a
	// Cutter.
	Cutter interface {
		Cut(at time.Duration) error
	}

	// Configurable is implemented by voices that have synthesis parameters.
	// Set merges params into the current parameters; keys not present in
	// params are left untouched. Changes apply to the next envelope stage the
	// voice enters, not to stages already running.
	Configurable interface {
		Set(params Params) error
		Get() Params
	}

	// VoiceFactory creates one voice. PolySynth calls it once per slot when
	// constructed, passing the same params to every call.
	VoiceFactory func(sampleRate int, params Params) (Voice, error)
)
