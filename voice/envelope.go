package voice

type envelopeStage int

const (
	stageIdle envelopeStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// envelope is a linear ADSR envelope. The times of a stage are read from
// opts when the stage is entered, so changing opts affects the next stage,
// never the one already running.
type envelope struct {
	opts       *EnvelopeOptions
	sampleRate int

	stage   envelopeStage
	level   float32
	from    float32 // level when the stage was entered
	to      float32 // level the stage ends at
	pos     int     // samples since the stage was entered
	length  int     // length of the stage in samples
	sustain float32
}

func (e *envelope) samples(seconds float64) int {
	return int(seconds*float64(e.sampleRate) + 0.5)
}

func (e *envelope) trigger() {
	e.enter(stageAttack, 1, e.samples(e.opts.Attack))
}

func (e *envelope) release() {
	if e.stage == stageIdle || e.stage == stageRelease {
		return
	}
	e.enter(stageRelease, 0, e.samples(e.opts.Release))
}

// cut silences the envelope immediately.
func (e *envelope) cut() {
	e.stage = stageIdle
	e.level = 0
}

func (e *envelope) enter(stage envelopeStage, to float32, length int) {
	e.stage = stage
	e.from = e.level
	e.to = to
	e.pos = 0
	e.length = length
	if length <= 0 {
		e.finish()
	}
}

// finish ends the current stage at its target level and enters the next one.
func (e *envelope) finish() {
	e.level = e.to
	switch e.stage {
	case stageAttack:
		e.sustain = float32(e.opts.Sustain)
		e.enter(stageDecay, e.sustain, e.samples(e.opts.Decay))
	case stageDecay:
		if e.sustain <= 0 {
			e.stage = stageIdle
			return
		}
		e.stage = stageSustain
	case stageRelease:
		e.stage = stageIdle
		e.level = 0
	}
}

// next advances the envelope by one sample and returns the new level.
func (e *envelope) next() float32 {
	switch e.stage {
	case stageAttack, stageDecay, stageRelease:
		e.pos++
		if e.pos >= e.length {
			e.finish()
		} else {
			e.level = e.from + (e.to-e.from)*float32(e.pos)/float32(e.length)
		}
	}
	return e.level
}

func (e *envelope) idle() bool {
	return e.stage == stageIdle
}
