package polysynth

import (
	"errors"
	"fmt"
	"time"
)

type (
	// Slot is one entry of a Pool. Note and AssignedAt are set when the voice
	// is attacked and are kept through the release tail, until the slot is
	// assigned a new note. Held is false until the first attack.
	//
	// Live marks the slot as the target for a future release of its note.
	// It is cleared when the note is released, or when the same note is
	// attacked again.
	Slot struct {
		Voice      Voice
		Note       Note
		AssignedAt time.Duration
		Held       bool
		Live       bool
	}

	// Pool is a fixed size set of voices, addressed by slot index. Whether a
	// slot is free is never stored: a slot is free when its voice is silent.
	Pool struct {
		slots []Slot
	}
)

// ErrInvalidPolyphony is returned when a pool of zero or negative size is
// requested.
var ErrInvalidPolyphony = errors.New("polyphony should be > 0")

// NewPool creates a pool of size slots, creating every voice up front with
// newVoice.
func NewPool(size int, newVoice func(index int) (Voice, error)) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPolyphony, size)
	}
	slots := make([]Slot, size)
	for i := range slots {
		v, err := newVoice(i)
		if err != nil {
			return nil, fmt.Errorf("could not create voice %d: %w", i, err)
		}
		if v == nil {
			return nil, fmt.Errorf("could not create voice %d: voice factory returned nil", i)
		}
		slots[i].Voice = v
	}
	return &Pool{slots: slots}, nil
}

// Len returns the number of slots, i.e. the polyphony.
func (p *Pool) Len() int {
	return len(p.slots)
}

// Slot returns a copy of the slot at index i.
func (p *Pool) Slot(i int) Slot {
	return p.slots[i]
}

// Slots returns a copy of all the slots, in pool order.
func (p *Pool) Slots() []Slot {
	ret := make([]Slot, len(p.slots))
	copy(ret, p.slots)
	return ret
}

// FreeSlot returns the first slot, in pool order, whose voice is silent.
func (p *Pool) FreeSlot() (int, bool) {
	for i := range p.slots {
		if p.slots[i].Voice.Silent() {
			return i, true
		}
	}
	return 0, false
}

// SlotHolding returns the live slot holding note. If several live slots hold
// it, the one assigned last wins, with ties going to the lowest index.
func (p *Pool) SlotHolding(note Note) (int, bool) {
	best := -1
	for i := range p.slots {
		s := &p.slots[i]
		if !s.Live || s.Note != note {
			continue
		}
		if best < 0 || s.AssignedAt > p.slots[best].AssignedAt {
			best = i
		}
	}
	return best, best >= 0
}

func (p *Pool) assign(i int, note Note, at time.Duration) {
	p.slots[i].Note = note
	p.slots[i].AssignedAt = at
	p.slots[i].Held = true
	p.slots[i].Live = true
}

func (p *Pool) unlive(i int) {
	p.slots[i].Live = false
}
