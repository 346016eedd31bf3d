package voice

import (
	"fmt"
	"slices"
	"time"

	"github.com/vsariola/polysynth"
)

type (
	// Synth is a monophonic voice: one oscillator shaped by an ADSR envelope.
	// Attack, Release and Cut are queued and applied at their exact frame
	// while rendering.
	Synth struct {
		sampleRate int
		opts       Options
		env        envelope
		osc        oscillator
		velocity   float32

		events []event // sorted by frame; equal frames keep their order
		frame  int64   // the frame following the last rendered one

		note    polysynth.Note
		hasNote bool
	}

	event struct {
		frame    int64
		kind     eventKind
		note     polysynth.Note
		velocity float32
	}

	eventKind int
)

const (
	attackEvent eventKind = iota
	releaseEvent
	cutEvent
)

// New creates a Synth rendering at sampleRate.
func New(sampleRate int, opts Options) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate should be > 0, got %d", sampleRate)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Synth{sampleRate: sampleRate, opts: opts}
	s.env.opts = &s.opts.Envelope
	s.env.sampleRate = sampleRate
	return s, nil
}

// Factory is a polysynth.VoiceFactory creating Synths: params are merged
// over DefaultOptions.
func Factory(sampleRate int, params polysynth.Params) (polysynth.Voice, error) {
	opts, err := DefaultOptions().Merge(params)
	if err != nil {
		return nil, err
	}
	return New(sampleRate, opts)
}

func (s *Synth) Attack(note polysynth.Note, at time.Duration, velocity float64) error {
	if !note.Valid() {
		return fmt.Errorf("%w: %v", polysynth.ErrInvalidNote, float64(note))
	}
	if !(velocity >= 0 && velocity <= 1) {
		return fmt.Errorf("velocity should be in [0, 1], got %v", velocity)
	}
	s.schedule(event{frame: s.frameAt(at), kind: attackEvent, note: note, velocity: float32(velocity)})
	s.note = note
	s.hasNote = true
	return nil
}

// Release starts the release stage of the envelope at the given time. It does
// nothing if the voice is silent.
func (s *Synth) Release(at time.Duration) error {
	if s.Silent() {
		return nil
	}
	s.schedule(event{frame: s.frameAt(at), kind: releaseEvent})
	return nil
}

// Cut silences the voice at the given time without a release tail. Events
// queued for the cut frame or later are dropped: they belong to the note
// being cut.
func (s *Synth) Cut(at time.Duration) error {
	if s.Silent() {
		return nil
	}
	frame := s.frameAt(at)
	s.events = slices.DeleteFunc(s.events, func(e event) bool { return e.frame >= frame })
	s.schedule(event{frame: frame, kind: cutEvent})
	return nil
}

// Note returns the last note the voice was attacked with.
func (s *Synth) Note() (polysynth.Note, bool) {
	return s.note, s.hasNote
}

// Silent reports whether the envelope is idle and no attack is queued.
func (s *Synth) Silent() bool {
	if !s.env.idle() {
		return false
	}
	for _, e := range s.events {
		if e.kind == attackEvent {
			return false
		}
	}
	return true
}

// Set merges params into the options of the voice.
func (s *Synth) Set(params polysynth.Params) error {
	opts, err := s.opts.Merge(params)
	if err != nil {
		return err
	}
	s.opts = opts
	return nil
}

func (s *Synth) Get() polysynth.Params {
	return s.opts.Params()
}

// Options returns a copy of the current options.
func (s *Synth) Options() Options {
	return s.opts
}

func (s *Synth) Render(buf []float32, frame int64) {
	for i := range buf {
		f := frame + int64(i)
		for len(s.events) > 0 && s.events[0].frame <= f {
			s.apply(s.events[0])
			s.events = slices.Delete(s.events, 0, 1)
		}
		if s.env.idle() {
			continue
		}
		level := s.env.next()
		buf[i] = s.osc.next(s.opts.Oscillator.Type) * level * s.velocity
	}
	s.frame = frame + int64(len(buf))
}

func (s *Synth) apply(e event) {
	switch e.kind {
	case attackEvent:
		if s.env.idle() {
			s.osc.phase = 0
		}
		s.osc.setFrequency(e.note.Frequency(), s.sampleRate)
		s.velocity = e.velocity
		s.env.trigger()
	case releaseEvent:
		s.env.release()
	case cutEvent:
		s.env.cut()
	}
}

// schedule inserts e after all the events that happen at the same frame or
// before it.
func (s *Synth) schedule(e event) {
	i := len(s.events)
	for i > 0 && s.events[i-1].frame > e.frame {
		i--
	}
	s.events = slices.Insert(s.events, i, e)
}

// frameAt converts a time into a frame, never earlier than the next frame to
// be rendered.
func (s *Synth) frameAt(at time.Duration) int64 {
	return max(polysynth.Frames(at, s.sampleRate), s.frame)
}
