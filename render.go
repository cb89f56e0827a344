package ostinato

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// SampleRate is the sample rate of everything rendered or played, in Hz.
const SampleRate = 44100

const (
	fadeSeconds  = 0.040
	masterGain   = 0.8
	releaseHeads = 0.5
)

// Sounds flattens the composition into wall clock sound records at the given
// tempo, ordered by start time per track.
func (c *Composition) Sounds(bpm float64) []Sound {
	var sounds []Sound
	for i := range c.Tracks {
		tr := &c.Tracks[i]
		for _, e := range tr.Events {
			sounds = append(sounds, Sound{
				Start:      e.Start.Seconds(c.TimeSignature, bpm),
				Duration:   e.Duration.MusicTime(c.TimeSignature).Seconds(c.TimeSignature, bpm),
				Volume:     e.Volume,
				Instrument: tr.Instrument,
				Pitch:      e.Pitch,
			})
		}
	}
	return sounds
}

// Render mixes the whole composition offline into an interleaved stereo
// float32 buffer at SampleRate, using the same sine voice the real-time audio
// sink plays. The buffer extends half a second past the last event so
// releases are not cut off.
func (c *Composition) Render(bpm float64) []float32 {
	sounds := c.Sounds(bpm)
	var endSeconds float64
	for _, s := range sounds {
		if e := s.End(); e > endSeconds {
			endSeconds = e
		}
	}
	mix := make([]float32, 2*int(math.Ceil((endSeconds+releaseHeads)*SampleRate)))
	for _, s := range sounds {
		voice := SineVoice(s)
		offset := 2 * int(s.Start*SampleRate)
		if offset < 0 || offset+len(voice) > len(mix) {
			continue
		}
		vek32.Add_Inplace(mix[offset:offset+len(voice)], voice)
	}
	vek32.MulNumber_Inplace(mix, masterGain)
	return mix
}

// SineVoice synthesizes one sound as an interleaved stereo sine wave with
// linear fade in and fade out ramps. Amplitude falls off with frequency so
// high notes do not dominate the mix.
func SineVoice(s Sound) []float32 {
	frames := int(s.Duration * SampleRate)
	if frames <= 0 {
		return nil
	}
	freq := s.Frequency()
	amp := 3 * 44 / freq
	if amp > 1 {
		amp = 1
	}
	amp *= s.Volume.Float()
	fadeFrames := int(fadeSeconds * SampleRate)
	if 2*fadeFrames > frames {
		fadeFrames = frames / 2
	}
	buf := make([]float32, 2*frames)
	for i := 0; i < frames; i++ {
		v := amp * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		if i < fadeFrames {
			v *= float64(i) / float64(fadeFrames)
		}
		if left := frames - i; left <= fadeFrames {
			v *= float64(left) / float64(fadeFrames)
		}
		buf[2*i] = float32(v)
		buf[2*i+1] = float32(v)
	}
	return buf
}
