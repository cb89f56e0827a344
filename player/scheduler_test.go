package player

import (
	"testing"

	"github.com/ovaskain/ostinato"
)

// fourBeats is one sine track with a one beat note on every beat of the first
// measure. At 60 bpm in common time each beat is exactly one second.
func fourBeats() *ostinato.Composition {
	tr := ostinato.Track{ID: "sine", Instrument: "sine"}
	for i := uint32(0); i < 4; i++ {
		tr.Events = append(tr.Events, ostinato.Event{
			Start:    ostinato.Beats(i),
			Duration: ostinato.W(1),
			Volume:   50,
			Pitch:    ostinato.Pitch{Note: ostinato.NoteNum(i), Octave: 4},
		})
	}
	return &ostinato.Composition{Tracks: []ostinato.Track{tr}, TimeSignature: ostinato.CommonTime}
}

func testPerformance(looped bool) ostinato.Performance {
	return ostinato.Performance{
		BPM:            60,
		TimeSignature:  ostinato.CommonTime,
		Looped:         looped,
		LookaheadBeats: ostinato.W(1),
		PollMillis:     500,
	}
}

func starts(sounds []ostinato.Sound) []float64 {
	ss := make([]float64, len(sounds))
	for i, s := range sounds {
		ss[i] = s.Start
	}
	return ss
}

func TestNextFirstPollIncludesTimeZero(t *testing.T) {
	s := New(testPerformance(false), fourBeats())
	sounds := s.Next(0)
	if len(sounds) != 2 {
		t.Fatalf("got %d sounds %v, expected the notes at 0 and 1", len(sounds), starts(sounds))
	}
	if sounds[0].Start != 0 || sounds[1].Start != 1 {
		t.Fatalf("starts: got %v, expected [0 1]", starts(sounds))
	}
	if sounds[0].Duration != 1 {
		t.Fatalf("duration: got %v, expected 1 second at 60 bpm", sounds[0].Duration)
	}
	if sounds[0].Instrument != "sine" {
		t.Fatalf("instrument: got %q", sounds[0].Instrument)
	}
}

func TestNextNeverDeliversTwice(t *testing.T) {
	s := New(testPerformance(false), fourBeats())
	var all []float64
	for _, elapsed := range []float64{0, 0.5, 1.0, 1.2, 2.0, 2.5, 3.0, 3.5} {
		all = append(all, starts(s.Next(elapsed))...)
	}
	seen := map[float64]int{}
	for _, start := range all {
		seen[start]++
	}
	for start, n := range seen {
		if n != 1 {
			t.Fatalf("sound at %v delivered %d times", start, n)
		}
	}
	if len(seen) != 4 {
		t.Fatalf("got starts %v, expected all four notes once", all)
	}
}

func TestNextOverlappingWindows(t *testing.T) {
	// the second poll's window overlaps the first; the cursor keeps the
	// overlap from re-delivering the note at 1
	s := New(testPerformance(false), fourBeats())
	s.Next(0)
	if sounds := s.Next(0.5); len(sounds) != 0 {
		t.Fatalf("got %v, expected nothing new inside the already covered window", starts(sounds))
	}
	sounds := s.Next(1.2)
	if len(sounds) != 1 || sounds[0].Start != 2 {
		t.Fatalf("got %v, expected just the note at 2", starts(sounds))
	}
}

func TestNextLoopsOncePerPass(t *testing.T) {
	s := New(testPerformance(true), fourBeats())
	if s.LoopTime != ostinato.Measures(1) {
		t.Fatalf("loop time: got %v, expected one measure", s.LoopTime)
	}
	var all []float64
	for elapsed := 0.0; elapsed < 8.0; elapsed += 0.5 {
		for _, sound := range s.Next(elapsed) {
			if sound.Start < elapsed {
				t.Fatalf("poll at %v returned a sound already in the past at %v", elapsed, sound.Start)
			}
			all = append(all, sound.Start)
		}
	}
	first, second := 0, 0
	for _, start := range all {
		switch {
		case start < 4:
			first++
		case start < 8:
			second++
		}
	}
	if first != 4 || second != 4 {
		t.Fatalf("got starts %v, expected four notes in each pass of the loop", all)
	}
}

func TestNextBatchSorted(t *testing.T) {
	c := fourBeats()
	piano := ostinato.Track{ID: "piano", Instrument: "piano"}
	piano.Events = append(piano.Events, ostinato.Event{
		Start:    ostinato.MusicTime{Beat: ostinato.B(1, 2)},
		Duration: ostinato.W(1),
		Volume:   50,
		Pitch:    ostinato.Pitch{Note: 0, Octave: 5},
	})
	c.Tracks = append(c.Tracks, piano)
	p := testPerformance(false)
	p.LookaheadBeats = ostinato.W(4)
	sounds := New(p, c).Next(0)
	if len(sounds) != 5 {
		t.Fatalf("got %d sounds, expected 5", len(sounds))
	}
	for i := 1; i < len(sounds); i++ {
		if sounds[i].Start < sounds[i-1].Start {
			t.Fatalf("batch not sorted: %v", starts(sounds))
		}
	}
	if sounds[1].Instrument != "piano" {
		t.Fatalf("the piano note at 0.5 should sort second, got %v", sounds)
	}
}

func TestEnded(t *testing.T) {
	s := New(testPerformance(false), fourBeats())
	if s.Ended() {
		t.Fatalf("fresh scheduler cannot have ended")
	}
	s.Next(0)
	if s.Ended() {
		t.Fatalf("ended after the first poll")
	}
	s.Next(3.5)
	if !s.Ended() {
		t.Fatalf("cursor past the composition end, should have ended")
	}
}

func TestEndedLooping(t *testing.T) {
	s := New(testPerformance(true), fourBeats())
	for elapsed := 0.0; elapsed < 20.0; elapsed += 0.5 {
		s.Next(elapsed)
	}
	if s.Ended() {
		t.Fatalf("a looping scheduler never ends")
	}
}

func TestEndedEmptyComposition(t *testing.T) {
	s := New(testPerformance(false), &ostinato.Composition{TimeSignature: ostinato.CommonTime})
	if !s.Ended() {
		t.Fatalf("an empty composition has ended before it starts")
	}
}

func TestSetCompositionRewinds(t *testing.T) {
	c := fourBeats()
	s := New(testPerformance(false), c)
	s.Next(0)
	s.Next(2)
	s.SetComposition(c)
	sounds := s.Next(0)
	if len(sounds) != 2 || sounds[0].Start != 0 {
		t.Fatalf("got %v after rewind, expected the notes at 0 and 1 again", starts(sounds))
	}
}

func TestSchedulerCopiesComposition(t *testing.T) {
	c := fourBeats()
	s := New(testPerformance(false), c)
	c.Tracks[0].Events[0].Volume = 99
	sounds := s.Next(0)
	if sounds[0].Volume != 50 {
		t.Fatalf("scheduler should hold its own copy, got volume %v", sounds[0].Volume)
	}
}
