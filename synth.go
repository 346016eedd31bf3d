package polysynth

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/viterin/vek/vek32"
)

type (
	// PolySynth plays several notes at once by allocating them to a fixed
	// pool of monophonic voices, stealing voices according to its
	// StealingMode when every voice is busy.
	//
	// Trigger methods take the time the event should happen. The voice is
	// chosen when the method is called and the event is passed to it at once,
	// with its time; the voice applies it when rendering reaches that time.
	// A voice with an attack still ahead of it counts as busy.
	//
	// PolySynth is not safe for concurrent use.
	PolySynth struct {
		ctx       Context
		pool      *Pool
		stealing  StealingMode
		volume    float64
		gain      float32
		mix       []float32 // scratch buffer for rendering one voice
		connected bool
		disposed  bool
	}
)

var (
	// ErrLengthMismatch is returned when per-note arguments (velocities,
	// durations) are given, but not one per note.
	ErrLengthMismatch = errors.New("argument count does not match the number of notes")
	// ErrInvalidArgument is returned for velocities outside [0, 1] and
	// negative durations.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDisposed is returned by triggers on a disposed PolySynth.
	ErrDisposed = errors.New("polysynth has been disposed")
	// ErrAlreadyConnected is returned when connecting a PolySynth twice.
	ErrAlreadyConnected = errors.New("polysynth is already connected")
)

// DefaultVelocity is used when no velocity is given to a trigger.
const DefaultVelocity = 1.0

// New creates a PolySynth living in ctx, creating opts.Polyphony voices with
// factory. Every voice is given the same copy of opts.Voice.
func New(ctx Context, factory VoiceFactory, opts Options) (*PolySynth, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, errors.New("voice factory is nil")
	}
	pool, err := NewPool(opts.Polyphony, func(int) (Voice, error) {
		return factory(ctx.SampleRate(), opts.Voice.Copy())
	})
	if err != nil {
		return nil, err
	}
	p := &PolySynth{
		ctx:      ctx,
		pool:     pool,
		stealing: opts.VoiceStealing,
	}
	p.SetVolume(opts.Volume)
	return p, nil
}

// Polyphony returns the number of voices.
func (p *PolySynth) Polyphony() int {
	return p.pool.Len()
}

// VoiceStealing returns the stealing mode the PolySynth was constructed with.
func (p *PolySynth) VoiceStealing() StealingMode {
	return p.stealing
}

// Slots returns a snapshot of the voice pool.
func (p *PolySynth) Slots() []Slot {
	return p.pool.Slots()
}

// TriggerAttack starts playing notes at the given time. velocities is either
// empty (DefaultVelocity), a single velocity for all the notes or one velocity
// per note. Notes that get no voice, because all are busy and the stealing
// mode is StealNone, are silently dropped.
func (p *PolySynth) TriggerAttack(notes []Note, at time.Duration, velocities ...float64) error {
	if p.disposed {
		return ErrDisposed
	}
	vels, err := p.velocities(velocities, len(notes))
	if err != nil {
		return err
	}
	return p.attack(notes, at, vels)
}

// TriggerRelease releases notes at the given time. Releasing a note that is
// not playing, or has already been released, does nothing.
func (p *PolySynth) TriggerRelease(notes []Note, at time.Duration) error {
	if p.disposed {
		return ErrDisposed
	}
	return p.release(notes, at)
}

// TriggerAttackRelease attacks notes at the given time and releases each note
// after its duration. durations is either a single duration for all the notes
// or one duration per note. If the arguments are malformed, nothing is
// triggered.
func (p *PolySynth) TriggerAttackRelease(notes []Note, durations []time.Duration, at time.Duration, velocities ...float64) error {
	if p.disposed {
		return ErrDisposed
	}
	if len(durations) == 0 && len(notes) > 0 {
		return fmt.Errorf("%w: no durations for %d notes", ErrLengthMismatch, len(notes))
	}
	durs, err := broadcast("durations", durations, len(notes), 0)
	if err != nil {
		return err
	}
	for _, d := range durs {
		if d < 0 {
			return fmt.Errorf("%w: negative duration %v", ErrInvalidArgument, d)
		}
	}
	if _, err := p.velocities(velocities, len(notes)); err != nil {
		return err
	}
	if err := p.TriggerAttack(notes, at, velocities...); err != nil {
		return err
	}
	for i, n := range notes {
		if err := p.TriggerRelease([]Note{n}, at+durs[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAll releases every busy voice at the given time, including voices
// whose attack is still ahead. Voices attacked after the call are not
// affected. If the release is in the future, the slots stay live until then,
// so an earlier TriggerRelease of their notes still reaches them.
func (p *PolySynth) ReleaseAll(at time.Duration) error {
	if p.disposed {
		return ErrDisposed
	}
	var errs []error
	for i := range p.pool.slots {
		v := p.pool.slots[i].Voice
		if v.Silent() {
			p.pool.unlive(i)
			continue
		}
		if at <= p.ctx.Now() {
			p.pool.unlive(i)
		}
		if err := v.Release(at); err != nil {
			errs = append(errs, fmt.Errorf("voice %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Set applies params to every voice that is Configurable.
func (p *PolySynth) Set(params Params) error {
	for i := range p.pool.slots {
		c, ok := p.pool.slots[i].Voice.(Configurable)
		if !ok {
			continue
		}
		if err := c.Set(params); err != nil {
			return fmt.Errorf("voice %d: %w", i, err)
		}
	}
	return nil
}

// Get returns the parameters of the voices. All voices share the same
// parameters, so these are read from the first Configurable voice.
func (p *PolySynth) Get() Params {
	for i := range p.pool.slots {
		if c, ok := p.pool.slots[i].Voice.(Configurable); ok {
			return c.Get()
		}
	}
	return nil
}

// Volume returns the output volume, in decibels.
func (p *PolySynth) Volume() float64 {
	return p.volume
}

// SetVolume sets the output volume, in decibels. math.Inf(-1) mutes.
func (p *PolySynth) SetVolume(db float64) {
	p.volume = db
	p.gain = float32(math.Pow(10, db/20))
}

// Connect connects the output of the PolySynth to dest. A PolySynth can be
// connected only once.
func (p *PolySynth) Connect(dest Destination) error {
	if p.connected {
		return ErrAlreadyConnected
	}
	dest.Connect(p)
	p.connected = true
	return nil
}

// Dispose stops the PolySynth: it renders silence from now on, including the
// events already passed to its voices, and triggers return ErrDisposed.
func (p *PolySynth) Dispose() {
	p.disposed = true
}

// Render mixes all the sounding voices into buf, applying the volume.
func (p *PolySynth) Render(buf []float32, frame int64) {
	clear(buf)
	if p.disposed {
		return
	}
	if cap(p.mix) < len(buf) {
		p.mix = make([]float32, len(buf))
	}
	mix := p.mix[:len(buf)]
	for i := range p.pool.slots {
		v := p.pool.slots[i].Voice
		if v.Silent() {
			continue
		}
		clear(mix)
		v.Render(mix, frame)
		vek32.Add_Inplace(buf, mix)
	}
	if p.gain != 1 {
		vek32.MulNumber_Inplace(buf, p.gain)
	}
}

func (p *PolySynth) attack(notes []Note, at time.Duration, velocities []float64) error {
	for i, note := range notes {
		// a note that is already held is released first, so that only one
		// slot at a time is the target of its release
		if j, ok := p.pool.SlotHolding(note); ok {
			p.pool.unlive(j)
			if err := p.pool.slots[j].Voice.Release(at); err != nil {
				return fmt.Errorf("voice %d: %w", j, err)
			}
		}
		j, stolen, ok := Allocate(p.pool, p.stealing)
		if !ok {
			continue
		}
		v := p.pool.slots[j].Voice
		if stolen {
			p.pool.unlive(j)
			if err := cut(v, at); err != nil {
				return fmt.Errorf("voice %d: %w", j, err)
			}
		}
		if err := v.Attack(note, at, velocities[i]); err != nil {
			return fmt.Errorf("voice %d: %w", j, err)
		}
		p.pool.assign(j, note, at)
	}
	return nil
}

func (p *PolySynth) release(notes []Note, at time.Duration) error {
	for _, note := range notes {
		j, ok := p.pool.SlotHolding(note)
		if !ok {
			continue
		}
		p.pool.unlive(j)
		if err := p.pool.slots[j].Voice.Release(at); err != nil {
			return fmt.Errorf("voice %d: %w", j, err)
		}
	}
	return nil
}

func (p *PolySynth) velocities(velocities []float64, n int) ([]float64, error) {
	vels, err := broadcast("velocities", velocities, n, DefaultVelocity)
	if err != nil {
		return nil, err
	}
	for _, v := range vels {
		if !(v >= 0 && v <= 1) {
			return nil, fmt.Errorf("%w: velocity %v not in [0, 1]", ErrInvalidArgument, v)
		}
	}
	return vels, nil
}

func cut(v Voice, at time.Duration) error {
	if c, ok := v.(Cutter); ok {
		return c.Cut(at)
	}
	return v.Release(at)
}

// broadcast expands values to n values: none gives n times def, one value is
// repeated n times and n values are used as they are.
func broadcast[T any](name string, values []T, n int, def T) ([]T, error) {
	switch len(values) {
	case n:
		return slices.Clone(values), nil
	case 0, 1:
		v := def
		if len(values) == 1 {
			v = values[0]
		}
		ret := make([]T, n)
		for i := range ret {
			ret[i] = v
		}
		return ret, nil
	}
	return nil, fmt.Errorf("%w: %d %s for %d notes", ErrLengthMismatch, len(values), name, n)
}
