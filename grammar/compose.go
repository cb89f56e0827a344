package grammar

import (
	"fmt"

	"github.com/ovaskain/ostinato"
)

// MismatchedLengthsError is returned when the branches of a Split do not all
// compose to the same duration.
type MismatchedLengthsError struct {
	Durations []ostinato.MusicTime
}

func (e *MismatchedLengthsError) Error() string {
	return fmt.Sprintf("not all split branches have the same duration: %v", e.Durations)
}

// tracks accumulates per-instrument tracks during one compose call,
// preserving the order instruments first appear in.
type tracks struct {
	sig   ostinato.TimeSignature
	order []ostinato.Instrument
	byIns map[ostinato.Instrument]*ostinato.Track
}

func newTracks(sig ostinato.TimeSignature) *tracks {
	return &tracks{sig: sig, byIns: make(map[ostinato.Instrument]*ostinato.Track)}
}

func (ts *tracks) track(instrument ostinato.Instrument) *ostinato.Track {
	if tr, ok := ts.byIns[instrument]; ok {
		return tr
	}
	tr := &ostinato.Track{ID: string(instrument), Instrument: instrument}
	ts.byIns[instrument] = tr
	ts.order = append(ts.order, instrument)
	return tr
}

func (ts *tracks) addEvent(instrument ostinato.Instrument, e ostinato.Event) {
	tr := ts.track(instrument)
	tr.Events = append(tr.Events, e)
}

func (ts *tracks) addRest(instrument ostinato.Instrument, e ostinato.Event) {
	tr := ts.track(instrument)
	tr.Rests = append(tr.Rests, e)
}

func (ts *tracks) addComposition(c ostinato.Composition) error {
	for _, tr := range c.Tracks {
		if err := ts.track(tr.Instrument).Merge(tr); err != nil {
			return err
		}
	}
	return nil
}

func (ts *tracks) composition() ostinato.Composition {
	c := ostinato.Composition{TimeSignature: ts.sig}
	for _, instrument := range ts.order {
		c.Tracks = append(c.Tracks, *ts.byIns[instrument])
	}
	return c
}

// DefaultVolume is the volume of events before any v= control is seen.
const DefaultVolume ostinato.Volume = 50

// Compose compiles a fully rewritten string into a composition by a single
// left to right pass threading the cursor, instrument and volume. Leftover
// NonTerminals take no time and produce nothing. Errors from nested strings
// fail the whole call.
func (s MusicString) Compose(sig ostinato.TimeSignature, startingInstrument ostinato.Instrument) (ostinato.Composition, error) {
	if startingInstrument == "" {
		startingInstrument = ostinato.DefaultInstrument
	}
	return s.composeWith(sig, startingInstrument, DefaultVolume)
}

// composeSplit composes every branch from the same cursor, instrument and
// volume context, requires them to be equally long, and merges them all.
func composeSplit(ts *tracks, branches []MusicString, sig ostinato.TimeSignature, cursor ostinato.MusicTime, instrument ostinato.Instrument, volume ostinato.Volume) (ostinato.MusicTime, error) {
	comps := make([]ostinato.Composition, len(branches))
	durations := make([]ostinato.MusicTime, len(branches))
	for i, b := range branches {
		c, err := b.composeWith(sig, instrument, volume)
		if err != nil {
			return ostinato.MusicTime{}, err
		}
		durations[i] = c.Duration()
		c.ShiftBy(cursor)
		comps[i] = c
	}
	var common ostinato.MusicTime
	for i, d := range durations {
		if i == 0 {
			common = d
			continue
		}
		if d.Cmp(common) != 0 {
			return ostinato.MusicTime{}, &MismatchedLengthsError{Durations: durations}
		}
	}
	for _, c := range comps {
		if err := ts.addComposition(c); err != nil {
			return ostinato.MusicTime{}, err
		}
	}
	return common, nil
}

// composeRepeat composes content once and merges num shifted copies of the
// result; the copies are structural, not independent re-derivations.
func composeRepeat(ts *tracks, num int, content MusicString, sig ostinato.TimeSignature, cursor ostinato.MusicTime, instrument ostinato.Instrument, volume ostinato.Volume) (ostinato.MusicTime, error) {
	composed, err := content.composeWith(sig, instrument, volume)
	if err != nil {
		return ostinato.MusicTime{}, err
	}
	duration := composed.Duration()
	offset := cursor
	var total ostinato.MusicTime
	for i := 0; i < num; i++ {
		replica := composed.Copy()
		replica.ShiftBy(offset)
		if err := ts.addComposition(replica); err != nil {
			return ostinato.MusicTime{}, err
		}
		offset = offset.Add(duration, sig)
		total = total.Add(duration, sig)
	}
	return total, nil
}

// composeWith is Compose with an explicit starting volume, used for nested
// strings so Split branches and Repeat content inherit the outer context.
func (s MusicString) composeWith(sig ostinato.TimeSignature, instrument ostinato.Instrument, volume ostinato.Volume) (ostinato.Composition, error) {
	ts := newTracks(sig)
	cursor := ostinato.MusicTime{}
	for _, p := range s {
		var duration ostinato.MusicTime
		switch p.Kind {
		case KindSimple:
			if !p.Symbol.IsTerminal {
				break
			}
			switch t := p.Symbol.T; t.Kind {
			case KindNote:
				ts.addEvent(instrument, ostinato.Event{
					Start:    cursor,
					Duration: t.Duration.TotalBeats(sig),
					Volume:   volume,
					Pitch:    t.Pitch,
				})
				duration = t.Duration
			case KindRest:
				ts.addRest(instrument, ostinato.Event{
					Start:    cursor,
					Duration: t.Duration.TotalBeats(sig),
				})
				duration = t.Duration
			case KindInstrument:
				instrument = t.Instrument
			case KindVolume:
				volume = t.Volume
			}
		case KindSplit:
			d, err := composeSplit(ts, p.Branches, sig, cursor, instrument, volume)
			if err != nil {
				return ostinato.Composition{}, err
			}
			duration = d
		case KindRepeat:
			d, err := composeRepeat(ts, p.Num, p.Content, sig, cursor, instrument, volume)
			if err != nil {
				return ostinato.Composition{}, err
			}
			duration = d
		}
		cursor = cursor.Add(duration, sig)
	}
	return ts.composition(), nil
}
