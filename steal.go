package polysynth

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// StealingMode tells which busy voice a PolySynth reclaims when a note is
// triggered and every voice is sounding.
type StealingMode int

const (
	// StealOldest reclaims the voice whose note was attacked first.
	StealOldest StealingMode = iota
	// StealNone never reclaims a voice: the new note is dropped.
	StealNone
	// StealLowest reclaims the voice holding the lowest note.
	StealLowest
	// StealHighest reclaims the voice holding the highest note.
	StealHighest
)

var stealingModeNames = [...]string{
	StealOldest:  "oldest",
	StealNone:    "none",
	StealLowest:  "lowest",
	StealHighest: "highest",
}

func (m StealingMode) String() string {
	if m < 0 || int(m) >= len(stealingModeNames) {
		return fmt.Sprintf("StealingMode(%d)", int(m))
	}
	return stealingModeNames[m]
}

// Valid reports whether m is one of the defined stealing modes.
func (m StealingMode) Valid() bool {
	return m >= 0 && int(m) < len(stealingModeNames)
}

// ParseStealingMode parses the names returned by StealingMode.String,
// ignoring case.
func ParseStealingMode(s string) (StealingMode, error) {
	for i, name := range stealingModeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return StealingMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown voice stealing mode %q, expected one of %s", s, strings.Join(stealingModeNames[:], ", "))
}

func (m StealingMode) MarshalYAML() (any, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("cannot marshal %v", m)
	}
	return m.String(), nil
}

func (m *StealingMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("voiceStealing: %w", err)
	}
	mode, err := ParseStealingMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// victim picks the busy slot to reclaim, or returns false if the mode does
// not steal. It only looks at the slots; it does not change them.
func (m StealingMode) victim(slots []Slot) (int, bool) {
	switch m {
	case StealOldest:
		return pick(slots, func(a, b *Slot) bool {
			return a.AssignedAt < b.AssignedAt
		})
	case StealLowest:
		return pick(slots, func(a, b *Slot) bool {
			if a.Note != b.Note {
				return a.Note < b.Note
			}
			return a.AssignedAt < b.AssignedAt
		})
	case StealHighest:
		return pick(slots, func(a, b *Slot) bool {
			if a.Note != b.Note {
				return a.Note > b.Note
			}
			return a.AssignedAt < b.AssignedAt
		})
	}
	return 0, false
}

// pick returns the busy slot that is better than every other busy slot
// according to better. As better is strict, ties go to the lowest index.
func pick(slots []Slot, better func(a, b *Slot) bool) (int, bool) {
	best := -1
	for i := range slots {
		if slots[i].Voice.Silent() {
			continue
		}
		if best < 0 || better(&slots[i], &slots[best]) {
			best = i
		}
	}
	return best, best >= 0
}

// Allocate finds the slot that should play the next note. A free slot is
// always preferred; only when every voice is busy is a slot stolen according
// to mode, in which case stolen is true. ok is false if the note should be
// dropped.
func Allocate(pool *Pool, mode StealingMode) (index int, stolen bool, ok bool) {
	if i, ok := pool.FreeSlot(); ok {
		return i, false, true
	}
	if i, ok := mode.victim(pool.slots); ok {
		return i, true, true
	}
	return 0, false, false
}
