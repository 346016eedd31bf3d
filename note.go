package polysynth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Note is a pitch, identified by its frequency in Hz. Notes compare by exact
// equality; a note parsed from "C4" equals MIDINote(60) because both go
// through the same conversion.
type Note float64

// ErrInvalidNote is returned when a note name or frequency cannot be parsed or
// is not a positive, finite frequency.
var ErrInvalidNote = errors.New("invalid note")

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// semitones from C for the natural note letters
var letterSemitones = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// MIDINote returns the equal tempered note for the MIDI note number n, with
// A4 = 69 = 440 Hz.
func MIDINote(n int) Note {
	return Note(440 * math.Pow(2, float64(n-69)/12))
}

// Frequency returns the frequency of the note in Hz.
func (n Note) Frequency() float64 {
	return float64(n)
}

// MIDI returns the (possibly fractional) MIDI note number of the note.
func (n Note) MIDI() float64 {
	return 69 + 12*math.Log2(float64(n)/440)
}

// Valid reports whether the note is a positive, finite frequency.
func (n Note) Valid() bool {
	f := float64(n)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// String returns the scientific pitch name of the note (e.g. "C#4") when the
// note lies on the equal tempered grid, and the frequency (e.g. "432hz")
// otherwise.
func (n Note) String() string {
	if !n.Valid() {
		return strconv.FormatFloat(float64(n), 'f', -1, 64) + "hz"
	}
	m := n.MIDI()
	r := math.Round(m)
	if math.Abs(m-r) > 1e-9 || MIDINote(int(r)) != n {
		return strconv.FormatFloat(float64(n), 'f', -1, 64) + "hz"
	}
	key := int(r)
	semitone := ((key % 12) + 12) % 12
	octave := (key-semitone)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[semitone], octave)
}

// ParseNote parses a note given either in scientific pitch notation ("C4",
// "f#3", "Bb2", "C-1") or as a frequency in Hz ("440", "261.6hz").
func ParseNote(s string) (Note, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidNote)
	}
	lower := strings.ToLower(str)
	if c := lower[0]; c >= '0' && c <= '9' || c == '.' {
		f, err := strconv.ParseFloat(strings.TrimSuffix(lower, "hz"), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
		}
		n := Note(f)
		if !n.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
		}
		return n, nil
	}
	semitone, ok := letterSemitones[lower[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}
	i := 1
	for ; i < len(lower); i++ {
		if lower[i] == '#' {
			semitone++
		} else if lower[i] == 'b' {
			semitone--
		} else {
			break
		}
	}
	octave, err := strconv.Atoi(lower[i:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}
	return MIDINote((octave+1)*12 + semitone), nil
}

// ParseNotes parses every name with ParseNote. It fails on the first name
// that does not parse.
func ParseNotes(names ...string) ([]Note, error) {
	ret := make([]Note, 0, len(names))
	for _, name := range names {
		n, err := ParseNote(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, n)
	}
	return ret, nil
}

// MustParseNotes is like ParseNotes but panics if a name does not parse.
// Intended for note literals in code.
func MustParseNotes(names ...string) []Note {
	ret, err := ParseNotes(names...)
	if err != nil {
		panic("polysynth.MustParseNotes: " + err.Error())
	}
	return ret
}
