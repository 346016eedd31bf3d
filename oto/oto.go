// Package oto plays rendered audio through the sound card.
package oto

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/polysynth"
)

type (
	// Context is an audio output. Only one can exist per process.
	Context struct {
		ctx *oto.Context
	}

	// Playback is a buffer being played.
	Playback struct {
		player *oto.Player
	}
)

const otoBufferSize = 50 * time.Millisecond

// NewContext opens the audio output at sampleRate and waits until it is
// ready.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: context}, nil
}

// Play starts playing buffer and returns at once.
func (c *Context) Play(buffer polysynth.AudioBuffer) *Playback {
	data := bufferTo16BitLE(buffer, make([]byte, 0, len(buffer)*4))
	player := c.ctx.NewPlayer(bytes.NewReader(data))
	player.Play()
	return &Playback{player: player}
}

// Wait blocks until the whole buffer has been played.
func (p *Playback) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

// Close stops the playback and disposes of the player.
func (p *Playback) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Suspend pauses all the output of the context.
func (c *Context) Suspend() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
