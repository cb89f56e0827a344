// Package player turns a composition into scheduled sounds: a Scheduler
// emits lookahead batches as wall clock time passes, and Run drives a
// Scheduler against a Sink in real time.
package player

import (
	"cmp"
	"slices"

	"github.com/ovaskain/ostinato"
)

// Scheduler walks a composition in wall clock time. Each call to Next
// converts the elapsed seconds to a position, looks one lookahead window
// ahead, and returns the sounds starting inside the window, advancing an
// internal cursor per track so no sound is delivered twice. A looping
// scheduler wraps the window around LoopTime and keeps going forever.
//
// A Scheduler has a single owner: it does not lock, and callers that share
// one across goroutines must serialize the whole Next call themselves.
type Scheduler struct {
	BPM           float64
	TimeSignature ostinato.TimeSignature
	Lookahead     ostinato.MusicTime
	Looped        bool
	LoopTime      ostinato.MusicTime

	tracks []trackCursor
	end    ostinato.MusicTime
	hasEnd bool
}

type trackCursor struct {
	track  ostinato.Track
	cursor ostinato.MusicTime
	// fresh marks a cursor no poll has selected against yet; the first
	// selection is start-inclusive so sounds at time zero are not lost to
	// the cursor exclusivity rule.
	fresh bool
}

// New makes a scheduler for the composition under the given performance.
func New(p ostinato.Performance, c *ostinato.Composition) *Scheduler {
	s := &Scheduler{
		BPM:           p.BPM,
		TimeSignature: p.TimeSignature,
		Lookahead:     p.LookaheadBeats.MusicTime(p.TimeSignature),
		Looped:        p.Looped,
		LoopTime:      p.LoopTime(c),
	}
	s.SetComposition(c)
	return s
}

// SetComposition loads the composition and rewinds all cursors to zero. The
// scheduler keeps its own copy; the caller's composition stays untouched.
func (s *Scheduler) SetComposition(c *ostinato.Composition) {
	s.tracks = make([]trackCursor, len(c.Tracks))
	for i := range c.Tracks {
		s.tracks[i] = trackCursor{track: c.Tracks[i].Copy(), fresh: true}
	}
	s.end, s.hasEnd = c.End()
}

// Next returns the sounds starting within one lookahead window of the given
// elapsed playback time, ordered by start time, and advances the cursors.
// Within a batch the order is total; across overlapping windows of separate
// polls, relative order is not guaranteed.
func (s *Scheduler) Next(elapsedSeconds float64) []ostinato.Sound {
	sig := s.TimeSignature
	current := ostinato.MusicTimeFromSeconds(sig, s.BPM, elapsedSeconds)
	loopEnd := s.LoopTime
	if s.Looped && !loopEnd.IsZero() {
		for current.Cmp(loopEnd) >= 0 {
			current, _ = current.Sub(loopEnd, sig)
		}
	}
	loopSeconds := loopEnd.Seconds(sig, s.BPM)
	windowEnd := current.Add(s.Lookahead, sig)
	endNonLooped := windowEnd
	wrapping := false
	if s.Looped && !loopEnd.IsZero() && windowEnd.Cmp(loopEnd) > 0 {
		for windowEnd.Cmp(loopEnd) > 0 {
			windowEnd, _ = windowEnd.Sub(loopEnd, sig)
		}
		wrapping = true
	}
	var sounds []ostinato.Sound
	for i := range s.tracks {
		tc := &s.tracks[i]
		var events []ostinato.Event
		startExclusive := !tc.fresh
		if wrapping {
			switch {
			case endNonLooped.Cmp(tc.cursor) < 0:
				// the cursor has already been advanced past where this
				// window reaches
			case tc.cursor.Cmp(windowEnd) <= 0:
				events = tc.track.EventsStartingBetween(tc.cursor, windowEnd, startExclusive)
			default:
				events = tc.track.EventsStartingBetween(tc.cursor, loopEnd, startExclusive)
				events = append(events, tc.track.EventsStartingBetween(ostinato.MusicTime{}, windowEnd, false)...)
			}
		} else {
			events = tc.track.EventsStartingBetween(tc.cursor, windowEnd, startExclusive)
		}
		tc.cursor = windowEnd
		tc.fresh = false
		for _, e := range events {
			sound := ostinato.Sound{
				Start:      e.Start.Seconds(sig, s.BPM),
				Duration:   e.Duration.MusicTime(sig).Seconds(sig, s.BPM),
				Volume:     e.Volume,
				Instrument: tc.track.Instrument,
				Pitch:      e.Pitch,
			}
			// sounds selected across a wrap belong to the next pass of the
			// loop; move them there
			if s.Looped && loopSeconds > 0 {
				for sound.Start < elapsedSeconds {
					sound.Start += loopSeconds
				}
			}
			sounds = append(sounds, sound)
		}
	}
	slices.SortStableFunc(sounds, func(a, b ostinato.Sound) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return sounds
}

// Ended reports whether a non-looping scheduler has advanced every cursor
// past the end of the composition. A looping scheduler never ends.
func (s *Scheduler) Ended() bool {
	if s.Looped {
		return false
	}
	if !s.hasEnd {
		return true
	}
	for i := range s.tracks {
		if s.tracks[i].cursor.Cmp(s.end) < 0 {
			return false
		}
	}
	return true
}
