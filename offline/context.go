// Package offline implements a polysynth.Context that is driven by rendering:
// time advances only as audio is rendered, and scheduled callbacks are run
// exactly at the frame of their time, before that frame is rendered.
package offline

import (
	"fmt"
	"time"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/polysynth"
)

// Context is a Clock, a Destination and a mixer in one. The sources connected
// to it are mixed to mono and written to both channels of the output.
//
// Context is not safe for concurrent use.
type Context struct {
	sampleRate int
	frame      int64
	queue      callbackQueue
	seq        uint64
	sources    []polysynth.Source
	mix        []float32
	scratch    []float32
	peak       float32
}

// DefaultSampleRate is the sample rate used when none is given.
const DefaultSampleRate = 44100

// maxChunk is the largest number of frames the sources are asked to render
// at once.
const maxChunk = 1024

// New returns a Context at time zero.
func New(sampleRate int) (*Context, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate should be > 0, got %d", sampleRate)
	}
	return &Context{sampleRate: sampleRate}, nil
}

// Must is like New but panics on error.
func Must(sampleRate int) *Context {
	c, err := New(sampleRate)
	if err != nil {
		panic("offline.Must: " + err.Error())
	}
	return c
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Now returns the time of the next frame to be rendered.
func (c *Context) Now() time.Duration {
	return polysynth.FrameTime(c.frame, c.sampleRate)
}

// Frame returns the index of the next frame to be rendered.
func (c *Context) Frame() int64 { return c.frame }

// Schedule registers f to be called before rendering the frame at the given
// time. Times that have already passed are run before the next frame.
func (c *Context) Schedule(at time.Duration, f func()) {
	frame := max(polysynth.Frames(at, c.sampleRate), c.frame)
	c.queue.push(callback{frame: frame, seq: c.seq, f: f})
	c.seq++
}

// AtTime calls f with the current time once the timeline reaches at. It is
// used to observe the state of the sources in the middle of rendering.
func (c *Context) AtTime(at time.Duration, f func(now time.Duration)) {
	c.Schedule(at, func() { f(c.Now()) })
}

// Connect adds src to the mix.
func (c *Context) Connect(src polysynth.Source) {
	c.sources = append(c.sources, src)
}

// Peak returns the largest absolute sample rendered so far.
func (c *Context) Peak() float32 { return c.peak }

// Pending returns the number of callbacks that have not been run yet.
func (c *Context) Pending() int { return len(c.queue) }

// Render fills buf with the next len(buf) frames, running the callbacks that
// are due on the way.
func (c *Context) Render(buf polysynth.AudioBuffer) {
	for pos := 0; pos < len(buf); {
		c.runDue()
		n := min(len(buf)-pos, maxChunk)
		if next, ok := c.queue.peek(); ok && next-c.frame < int64(n) {
			n = int(next - c.frame)
		}
		mix := c.renderChunk(n)
		for i, v := range mix {
			buf[pos+i] = [2]float32{v, v}
		}
		pos += n
		c.frame += int64(n)
	}
	c.runDue()
}

// RenderFor renders the next d worth of audio into a new buffer.
func (c *Context) RenderFor(d time.Duration) polysynth.AudioBuffer {
	buf := make(polysynth.AudioBuffer, polysynth.Frames(d, c.sampleRate))
	c.Render(buf)
	return buf
}

// RenderUntil renders up to the given time into a new buffer.
func (c *Context) RenderUntil(t time.Duration) polysynth.AudioBuffer {
	end := polysynth.Frames(t, c.sampleRate)
	buf := make(polysynth.AudioBuffer, max(end-c.frame, 0))
	c.Render(buf)
	return buf
}

// runDue runs the callbacks scheduled at or before the current frame,
// including the ones they schedule for the current frame.
func (c *Context) runDue() {
	for {
		next, ok := c.queue.peek()
		if !ok || next > c.frame {
			return
		}
		c.queue.pop().f()
	}
}

func (c *Context) renderChunk(n int) []float32 {
	if cap(c.mix) < n {
		c.mix = make([]float32, n)
		c.scratch = make([]float32, n)
	}
	mix, scratch := c.mix[:n], c.scratch[:n]
	clear(mix)
	for _, src := range c.sources {
		clear(scratch)
		src.Render(scratch, c.frame)
		vek32.Add_Inplace(mix, scratch)
	}
	if n > 0 {
		copy(scratch, mix)
		vek32.Abs_Inplace(scratch)
		c.peak = max(c.peak, vek32.Max(scratch))
	}
	return mix
}
