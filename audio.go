package polysynth

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// AudioBuffer is a buffer of stereo frames: [i][0] is the left and [i][1]
// the right channel of frame i.
type AudioBuffer [][2]float32

// silenceThreshold is the amplitude below which a frame counts as silent.
const silenceThreshold = 1e-4

// FirstSound returns the index of the first frame that is not silent.
func (b AudioBuffer) FirstSound() (int, bool) {
	for i, f := range b {
		if audible(f) {
			return i, true
		}
	}
	return 0, false
}

// LastSound returns the index of the last frame that is not silent.
func (b AudioBuffer) LastSound() (int, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		if audible(b[i]) {
			return i, true
		}
	}
	return 0, false
}

// IsSilent reports whether every frame of the buffer is silent.
func (b AudioBuffer) IsSilent() bool {
	_, ok := b.FirstSound()
	return !ok
}

// Peak returns the largest absolute sample value in either channel.
func (b AudioBuffer) Peak() float32 {
	if len(b) == 0 {
		return 0
	}
	samples := make([]float32, 0, 2*len(b))
	for _, f := range b {
		samples = append(samples, f[0], f[1])
	}
	vek32.Abs_Inplace(samples)
	return vek32.Max(samples)
}

func audible(f [2]float32) bool {
	return math.Abs(float64(f[0])) > silenceThreshold || math.Abs(float64(f[1])) > silenceThreshold
}
