package polysynth

import "time"

type (
	// Clock is a monotonic time source. Now is the current position of the
	// timeline and Schedule registers f to be called once the timeline
	// reaches at. Callbacks registered for the same time are called in the
	// order they were registered. A Clock never calls f from within
	// Schedule.
	Clock interface {
		Now() time.Duration
		Schedule(at time.Duration, f func())
	}

	// Context is the environment a PolySynth lives in: a Clock, and the
	// sample rate of the audio it renders.
	Context interface {
		Clock
		SampleRate() int
	}

	// Destination accepts sources whose output it mixes together.
	Destination interface {
		Connect(src Source)
	}
)

// Frames converts a time on the timeline into a sample index, rounding to the
// nearest sample. Negative times map to frame 0.
func Frames(d time.Duration, sampleRate int) int64 {
	if d <= 0 {
		return 0
	}
	return (int64(d)*int64(sampleRate) + int64(time.Second)/2) / int64(time.Second)
}

// FrameTime converts a sample index into a time on the timeline.
func FrameTime(frame int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frame * int64(time.Second) / int64(sampleRate))
}
