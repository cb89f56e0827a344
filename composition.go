package ostinato

import "fmt"

// Composition is a finished multi-track score: one track per instrument,
// sharing a time signature. Tempo is not part of the score; it belongs to the
// Performance playing it.
type Composition struct {
	Tracks        []Track       `yaml:"tracks" json:"tracks"`
	TimeSignature TimeSignature `yaml:"time_signature" json:"time_signature"`
}

// Copy makes a deep copy of the composition.
func (c *Composition) Copy() Composition {
	tracks := make([]Track, len(c.Tracks))
	for i := range c.Tracks {
		tracks[i] = c.Tracks[i].Copy()
	}
	return Composition{Tracks: tracks, TimeSignature: c.TimeSignature}
}

// Track returns the track for the given instrument, or nil if the
// composition has none.
func (c *Composition) Track(instrument Instrument) *Track {
	for i := range c.Tracks {
		if c.Tracks[i].Instrument == instrument {
			return &c.Tracks[i]
		}
	}
	return nil
}

// Start returns the earliest start over all tracks, or false if every track
// is empty.
func (c *Composition) Start() (MusicTime, bool) {
	first := true
	var min MusicTime
	for i := range c.Tracks {
		if s, ok := c.Tracks[i].Start(); ok && (first || s.Cmp(min) < 0) {
			min = s
			first = false
		}
	}
	return min, !first
}

// End returns the latest end over all tracks, or false if every track is
// empty.
func (c *Composition) End() (MusicTime, bool) {
	first := true
	var max MusicTime
	for i := range c.Tracks {
		if e, ok := c.Tracks[i].End(c.TimeSignature); ok && (first || e.Cmp(max) > 0) {
			max = e
			first = false
		}
	}
	return max, !first
}

// Duration returns the span from the earliest start to the latest end. A
// composition with no events has zero duration.
func (c *Composition) Duration() MusicTime {
	start, ok := c.Start()
	if !ok {
		return MusicTime{}
	}
	end, _ := c.End()
	d, err := end.Sub(start, c.TimeSignature)
	if err != nil {
		return MusicTime{}
	}
	return d
}

// ShiftBy moves every track later by offset.
func (c *Composition) ShiftBy(offset MusicTime) {
	for i := range c.Tracks {
		c.Tracks[i].ShiftBy(offset, c.TimeSignature)
	}
}

// Merge combines o into c track by track, keyed by instrument. Tracks for
// instruments c does not have yet are appended. The time signatures must
// match; merging events recorded under a different signature would change
// their meaning.
func (c *Composition) Merge(o Composition) error {
	if c.TimeSignature != o.TimeSignature {
		return fmt.Errorf("cannot merge composition in %v into composition in %v", o.TimeSignature, c.TimeSignature)
	}
	for _, tr := range o.Tracks {
		if mine := c.Track(tr.Instrument); mine != nil {
			if err := mine.Merge(tr); err != nil {
				return err
			}
			continue
		}
		c.Tracks = append(c.Tracks, tr.Copy())
	}
	return nil
}
