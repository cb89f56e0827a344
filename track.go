package ostinato

import (
	"cmp"
	"fmt"
	"slices"
)

type (
	// Event is one note on a track: where it starts, how long it sounds, and
	// at what pitch and volume. Durations are raw beat counts rather than
	// MusicTimes so an event never depends on the time signature by itself.
	Event struct {
		Start    MusicTime `yaml:"start" json:"start"`
		Duration Beat      `yaml:"duration" json:"duration"`
		Volume   Volume    `yaml:"volume" json:"volume"`
		Pitch    Pitch     `yaml:"pitch" json:"pitch"`
	}

	// Track is the sequence of events played by one instrument. Rests occupy
	// time but make no sound; they are kept apart from Events so sinks never
	// see them, but they still count towards the track duration. ID names the
	// track; the composer uses the instrument name.
	Track struct {
		ID         string     `yaml:"id" json:"id"`
		Instrument Instrument `yaml:"instrument" json:"instrument"`
		Events     []Event    `yaml:"events" json:"events"`
		Rests      []Event    `yaml:"rests,omitempty" json:"rests,omitempty"`
	}
)

// End returns the time the event stops sounding.
func (e Event) End(sig TimeSignature) MusicTime {
	return e.Start.Add(e.Duration.MusicTime(sig), sig)
}

func (e Event) cmp(o Event) int {
	if c := e.Start.Cmp(o.Start); c != 0 {
		return c
	}
	if c := e.Duration.Cmp(o.Duration); c != 0 {
		return c
	}
	if c := cmp.Compare(e.Volume, o.Volume); c != 0 {
		return c
	}
	if c := cmp.Compare(e.Pitch.Octave, o.Pitch.Octave); c != 0 {
		return c
	}
	return cmp.Compare(e.Pitch.Note, o.Pitch.Note)
}

// Copy makes a deep copy of the track.
func (t *Track) Copy() Track {
	return Track{
		ID:         t.ID,
		Instrument: t.Instrument,
		Events:     slices.Clone(t.Events),
		Rests:      slices.Clone(t.Rests),
	}
}

// Start returns the earliest event or rest start, or false for an empty
// track.
func (t *Track) Start() (MusicTime, bool) {
	first := true
	var min MusicTime
	for _, es := range [][]Event{t.Events, t.Rests} {
		for _, e := range es {
			if first || e.Start.Cmp(min) < 0 {
				min = e.Start
				first = false
			}
		}
	}
	return min, !first
}

// End returns the latest event or rest end, or false for an empty track.
func (t *Track) End(sig TimeSignature) (MusicTime, bool) {
	first := true
	var max MusicTime
	for _, es := range [][]Event{t.Events, t.Rests} {
		for _, e := range es {
			if end := e.End(sig); first || end.Cmp(max) > 0 {
				max = end
				first = false
			}
		}
	}
	return max, !first
}

// Duration returns the span from the first start to the last end. An empty
// track has zero duration.
func (t *Track) Duration(sig TimeSignature) MusicTime {
	start, ok := t.Start()
	if !ok {
		return MusicTime{}
	}
	end, _ := t.End(sig)
	d, err := end.Sub(start, sig)
	if err != nil {
		return MusicTime{}
	}
	return d
}

// EventsStartingBetween returns the sounding events whose start lies in the
// window from start to end, sorted. The end is always inclusive;
// startExclusive controls the start edge. An empty or inverted window yields
// nothing.
func (t *Track) EventsStartingBetween(start, end MusicTime, startExclusive bool) []Event {
	if c := start.Cmp(end); c > 0 || (startExclusive && c >= 0) {
		return nil
	}
	var es []Event
	for _, e := range t.Events {
		after := start.Cmp(e.Start) < 0
		if !startExclusive {
			after = start.Cmp(e.Start) <= 0
		}
		if after && e.Start.Cmp(end) <= 0 {
			es = append(es, e)
		}
	}
	slices.SortFunc(es, Event.cmp)
	return es
}

// EventsAt returns the events sounding at the given time, i.e. those with
// start <= at < end.
func (t *Track) EventsAt(at MusicTime, sig TimeSignature) []Event {
	return soundingAt(t.Events, at, sig)
}

// RestsAt returns the rests covering the given time.
func (t *Track) RestsAt(at MusicTime, sig TimeSignature) []Event {
	return soundingAt(t.Rests, at, sig)
}

func soundingAt(events []Event, at MusicTime, sig TimeSignature) []Event {
	var es []Event
	for _, e := range events {
		if e.Start.Cmp(at) <= 0 && at.Cmp(e.End(sig)) < 0 {
			es = append(es, e)
		}
	}
	slices.SortFunc(es, Event.cmp)
	return es
}

// ShiftBy moves every event and rest later by offset.
func (t *Track) ShiftBy(offset MusicTime, sig TimeSignature) {
	for i := range t.Events {
		t.Events[i].Start = t.Events[i].Start.Add(offset, sig)
	}
	for i := range t.Rests {
		t.Rests[i].Start = t.Rests[i].Start.Add(offset, sig)
	}
}

// Merge appends the events of o, which must be for the same instrument, and
// keeps the events sorted.
func (t *Track) Merge(o Track) error {
	if t.Instrument != o.Instrument {
		return fmt.Errorf("cannot merge track for %q into track for %q", o.Instrument, t.Instrument)
	}
	t.Events = append(t.Events, o.Events...)
	t.Rests = append(t.Rests, o.Rests...)
	slices.SortFunc(t.Events, Event.cmp)
	slices.SortFunc(t.Rests, Event.cmp)
	return nil
}
