package polysynth_test

import (
	"errors"
	"slices"
	"time"

	"github.com/vsariola/polysynth"
)

type (
	// fakeVoice sounds from Attack until it is cut or finish is called.
	// Release only records the call; the release tail lasts until finish.
	fakeVoice struct {
		note       polysynth.Note
		hasNote    bool
		sounding   bool
		attacks    []polysynth.Note
		attackedAt []time.Duration
		velocities []float64
		releases   []time.Duration
		cuts       []time.Duration
		params     polysynth.Params
		failNotes  map[polysynth.Note]bool
	}

	scheduled struct {
		at time.Duration
		f  func()
	}

	// fakeContext is a Clock that only moves when advance is called.
	fakeContext struct {
		now    time.Duration
		events []scheduled
	}
)

var errFake = errors.New("fake voice failure")

func (v *fakeVoice) Attack(note polysynth.Note, at time.Duration, velocity float64) error {
	if v.failNotes[note] {
		return errFake
	}
	v.note, v.hasNote, v.sounding = note, true, true
	v.attacks = append(v.attacks, note)
	v.attackedAt = append(v.attackedAt, at)
	v.velocities = append(v.velocities, velocity)
	return nil
}

func (v *fakeVoice) Release(at time.Duration) error {
	v.releases = append(v.releases, at)
	return nil
}

func (v *fakeVoice) Cut(at time.Duration) error {
	v.cuts = append(v.cuts, at)
	v.sounding = false
	return nil
}

func (v *fakeVoice) Note() (polysynth.Note, bool) { return v.note, v.hasNote }

func (v *fakeVoice) Silent() bool { return !v.sounding }

// finish ends the release tail.
func (v *fakeVoice) finish() { v.sounding = false }

func (v *fakeVoice) Render(buf []float32, frame int64) {
	for i := range buf {
		buf[i] = 1
	}
}

func (v *fakeVoice) Set(params polysynth.Params) error {
	v.params = v.params.Merge(params)
	return nil
}

func (v *fakeVoice) Get() polysynth.Params { return v.params.Copy() }

func (c *fakeContext) Now() time.Duration { return c.now }

func (c *fakeContext) SampleRate() int { return 1000 }

func (c *fakeContext) Schedule(at time.Duration, f func()) {
	c.events = append(c.events, scheduled{at: at, f: f})
}

// advance moves the clock to t, running the due callbacks in time order.
func (c *fakeContext) advance(t time.Duration) {
	for {
		idx := -1
		for i, e := range c.events {
			if e.at <= t && (idx < 0 || e.at < c.events[idx].at) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}
		e := c.events[idx]
		c.events = slices.Delete(c.events, idx, idx+1)
		c.now = e.at
		e.f()
	}
	c.now = t
}

// newFakeSynth creates a PolySynth of fake voices.
func newFakeSynth(polyphony int, mode polysynth.StealingMode) (*polysynth.PolySynth, []*fakeVoice, *fakeContext, error) {
	ctx := &fakeContext{}
	var voices []*fakeVoice
	factory := func(sampleRate int, params polysynth.Params) (polysynth.Voice, error) {
		v := &fakeVoice{params: params}
		voices = append(voices, v)
		return v, nil
	}
	opts := polysynth.DefaultOptions()
	opts.Polyphony = polyphony
	opts.VoiceStealing = mode
	s, err := polysynth.New(ctx, factory, opts)
	return s, voices, ctx, err
}
