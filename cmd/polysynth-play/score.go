package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vsariola/polysynth"
	"github.com/vsariola/polysynth/offline"
	"github.com/vsariola/polysynth/voice"
	"gopkg.in/yaml.v3"
)

type (
	// Score is a PolySynth configuration and a list of events to play on it.
	Score struct {
		SampleRate int               `yaml:"sampleRate,omitempty"`
		Options    polysynth.Options `yaml:"options"`
		Events     []Event           `yaml:"events"`
	}

	// Event is one trigger. Times and durations are in seconds. An event
	// with Notes and a Duration is an attack-release; with only Notes, an
	// attack; Release releases notes and ReleaseAll everything. Set changes
	// the voice parameters.
	Event struct {
		Time       float64          `yaml:"time"`
		Notes      []string         `yaml:"notes,omitempty"`
		Duration   []float64        `yaml:"duration,omitempty"`
		Velocity   []float64        `yaml:"velocity,omitempty"`
		Release    []string         `yaml:"release,omitempty"`
		ReleaseAll bool             `yaml:"releaseAll,omitempty"`
		Set        polysynth.Params `yaml:"set,omitempty"`
	}
)

// maxTail limits how long the rendering continues after the last event while
// waiting for the voices to go silent.
const maxTail = 30 * time.Second

func parseScore(data []byte) (*Score, error) {
	score := Score{SampleRate: offline.DefaultSampleRate, Options: polysynth.DefaultOptions()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&score); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := score.Options.Validate(); err != nil {
		return nil, err
	}
	return &score, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Render plays the score on a new PolySynth and renders it until all the
// voices have gone silent after the last event.
func (s *Score) Render() (polysynth.AudioBuffer, *offline.Context, error) {
	ctx, err := offline.New(s.SampleRate)
	if err != nil {
		return nil, nil, err
	}
	synth, err := polysynth.New(ctx, voice.Factory, s.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create synth: %w", err)
	}
	if err := synth.Connect(ctx); err != nil {
		return nil, nil, err
	}
	var errs []error
	report := func(err error) { errs = append(errs, err) }
	var end time.Duration
	for i, e := range s.Events {
		t, err := schedule(ctx, synth, e, report)
		if err != nil {
			return nil, nil, fmt.Errorf("event %d: %w", i, err)
		}
		end = max(end, t)
	}
	buffer := ctx.RenderUntil(end)
	for tail := time.Duration(0); synth.ActiveVoiceCount() > 0 && tail < maxTail; tail += 100 * time.Millisecond {
		buffer = append(buffer, ctx.RenderFor(100*time.Millisecond)...)
	}
	synth.Dispose()
	return buffer, ctx, errors.Join(errs...)
}

// schedule triggers the event and returns the time of its last effect. Errors
// of the parts of the event that run later go to report.
func schedule(ctx *offline.Context, synth *polysynth.PolySynth, e Event, report func(error)) (time.Duration, error) {
	at := seconds(e.Time)
	end := at
	if e.Set != nil {
		if _, err := voice.DefaultOptions().Merge(e.Set); err != nil {
			return 0, err
		}
		params := e.Set.Copy()
		ctx.Schedule(at, func() {
			if err := synth.Set(params); err != nil {
				report(err)
			}
		})
	}
	if len(e.Notes) > 0 {
		notes, err := polysynth.ParseNotes(e.Notes...)
		if err != nil {
			return 0, err
		}
		if len(e.Duration) > 0 {
			durations := make([]time.Duration, len(e.Duration))
			for i, d := range e.Duration {
				durations[i] = seconds(d)
				end = max(end, at+durations[i])
			}
			if err := synth.TriggerAttackRelease(notes, durations, at, e.Velocity...); err != nil {
				return 0, err
			}
		} else if err := synth.TriggerAttack(notes, at, e.Velocity...); err != nil {
			return 0, err
		}
	}
	if len(e.Release) > 0 {
		notes, err := polysynth.ParseNotes(e.Release...)
		if err != nil {
			return 0, err
		}
		if err := synth.TriggerRelease(notes, at); err != nil {
			return 0, err
		}
	}
	if e.ReleaseAll {
		ctx.Schedule(at, func() {
			if err := synth.ReleaseAll(at); err != nil {
				report(err)
			}
		})
	}
	return end, nil
}
