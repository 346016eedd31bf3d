package polysynth

// ActiveVoiceCount returns the number of voices that are not silent, including
// voices in their release tail. It asks every voice on every call.
func (p *PolySynth) ActiveVoiceCount() int {
	ret := 0
	for i := range p.pool.slots {
		if !p.pool.slots[i].Voice.Silent() {
			ret++
		}
	}
	return ret
}

// ActiveNotes returns the notes of the voices that are not silent, in pool
// order.
func (p *PolySynth) ActiveNotes() []Note {
	var ret []Note
	for i := range p.pool.slots {
		s := &p.pool.slots[i]
		if s.Voice.Silent() {
			continue
		}
		ret = append(ret, s.Note)
	}
	return ret
}
