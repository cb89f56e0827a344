package grammar

import (
	"errors"
	"testing"

	"github.com/ovaskain/ostinato"
)

func mustCompose(t *testing.T, input string) ostinato.Composition {
	t.Helper()
	c, err := mustParseString(t, input).Compose(ostinato.CommonTime, "")
	if err != nil {
		t.Fatalf("Compose of %q failed: %v", input, err)
	}
	return c
}

func TestComposeSequence(t *testing.T) {
	c := mustCompose(t, ":c<1> :d<1>")
	if len(c.Tracks) != 1 {
		t.Fatalf("got %d tracks, expected 1", len(c.Tracks))
	}
	tr := c.Tracks[0]
	if tr.Instrument != ostinato.DefaultInstrument {
		t.Fatalf("instrument: got %q, expected sine", tr.Instrument)
	}
	if len(tr.Events) != 2 {
		t.Fatalf("got %d events, expected 2", len(tr.Events))
	}
	if !tr.Events[0].Start.IsZero() || tr.Events[1].Start != (ostinato.MusicTime{Beat: ostinato.W(1)}) {
		t.Fatalf("starts: got %v and %v", tr.Events[0].Start, tr.Events[1].Start)
	}
	for _, e := range tr.Events {
		if e.Duration != ostinato.W(1) {
			t.Fatalf("duration: got %v, expected 1 beat", e.Duration)
		}
		if e.Volume != DefaultVolume {
			t.Fatalf("volume: got %v, expected %v", e.Volume, DefaultVolume)
		}
	}
	if got := c.Duration(); got != (ostinato.MusicTime{Beat: ostinato.W(2)}) {
		t.Fatalf("duration: got %v, expected 2 beats", got)
	}
}

func TestComposeDurationIsSumOfTerminals(t *testing.T) {
	c := mustCompose(t, ":c<1> :_<1/2> :d<3> :e<1/2>")
	expected := ostinato.MusicTime{Measure: 1, Beat: ostinato.W(1)}
	if got := c.Duration(); got != expected {
		t.Fatalf("duration: got %v, expected %v", got, expected)
	}
}

func TestComposeRests(t *testing.T) {
	c := mustCompose(t, ":c<1> :_<2> :d<1>")
	tr := c.Tracks[0]
	if len(tr.Events) != 2 || len(tr.Rests) != 1 {
		t.Fatalf("got %d events and %d rests", len(tr.Events), len(tr.Rests))
	}
	rest := tr.Rests[0]
	if rest.Start != (ostinato.MusicTime{Beat: ostinato.W(1)}) || rest.Duration != ostinato.W(2) {
		t.Fatalf("rest: got %+v", rest)
	}
	if rest.Volume != 0 {
		t.Fatalf("rests are silent, got volume %v", rest.Volume)
	}
	// the rest still advances the cursor
	if tr.Events[1].Start != (ostinato.MusicTime{Beat: ostinato.W(3)}) {
		t.Fatalf("note after rest starts at %v, expected 3", tr.Events[1].Start)
	}
}

func TestComposeMetaControls(t *testing.T) {
	c := mustCompose(t, ":c<1> ::i=piano ::v=80 :d<1>")
	if len(c.Tracks) != 2 {
		t.Fatalf("got %d tracks, expected 2", len(c.Tracks))
	}
	piano := c.Track("piano")
	if piano == nil || len(piano.Events) != 1 {
		t.Fatalf("piano track: %+v", piano)
	}
	if piano.Events[0].Volume != 80 {
		t.Fatalf("volume control should apply, got %v", piano.Events[0].Volume)
	}
	// meta controls take no time
	if piano.Events[0].Start != (ostinato.MusicTime{Beat: ostinato.W(1)}) {
		t.Fatalf("piano note starts at %v, expected 1", piano.Events[0].Start)
	}
}

func TestComposeLeftoverNonTerminal(t *testing.T) {
	c := mustCompose(t, ":c<1> B :d<1>")
	tr := c.Tracks[0]
	if len(tr.Events) != 2 {
		t.Fatalf("got %d events, expected 2", len(tr.Events))
	}
	// the non-terminal takes no time
	if tr.Events[1].Start != (ostinato.MusicTime{Beat: ostinato.W(1)}) {
		t.Fatalf("second note starts at %v, expected 1", tr.Events[1].Start)
	}
}

func TestComposeSplitInterleaves(t *testing.T) {
	c := mustCompose(t, "{[2][:c] | [2][:g]}")
	if len(c.Tracks) != 1 {
		t.Fatalf("got %d tracks, expected 1", len(c.Tracks))
	}
	tr := c.Tracks[0]
	if len(tr.Events) != 4 {
		t.Fatalf("got %d events, expected 4", len(tr.Events))
	}
	if got := c.Duration(); got != (ostinato.MusicTime{Beat: ostinato.W(2)}) {
		t.Fatalf("duration: got %v, expected 2 beats", got)
	}
	// both branches start at the same offsets
	starts := map[string]int{}
	for _, e := range tr.Events {
		starts[e.Start.String()]++
	}
	if starts["0"] != 2 || starts["1"] != 2 {
		t.Fatalf("starts: got %v, expected two events each at 0 and 1", starts)
	}
	cNotes, gNotes := 0, 0
	for _, e := range tr.Events {
		switch e.Pitch.Note {
		case 3:
			cNotes++
		case 10:
			gNotes++
		}
	}
	if cNotes != 2 || gNotes != 2 {
		t.Fatalf("got %d c notes and %d g notes, expected 2 and 2", cNotes, gNotes)
	}
}

func TestComposeSplitMismatchedLengths(t *testing.T) {
	_, err := mustParseString(t, "{:c<1> | :g<2>}").Compose(ostinato.CommonTime, "")
	var mismatch *MismatchedLengthsError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, expected MismatchedLengthsError", err)
	}
	if len(mismatch.Durations) != 2 {
		t.Fatalf("got durations %v, expected 2 entries", mismatch.Durations)
	}
}

func TestComposeSplitInheritsContext(t *testing.T) {
	c := mustCompose(t, "::v=90 ::i=piano :c<1> {:d<1> | :e<1>}")
	piano := c.Track("piano")
	if piano == nil {
		t.Fatalf("no piano track: %+v", c.Tracks)
	}
	if len(piano.Events) != 3 {
		t.Fatalf("got %d events, expected 3", len(piano.Events))
	}
	for _, e := range piano.Events {
		if e.Volume != 90 {
			t.Fatalf("split branches should inherit the volume, got %v", e.Volume)
		}
	}
	// branches start where the split starts
	for _, e := range piano.Events[1:] {
		if e.Start != (ostinato.MusicTime{Beat: ostinato.W(1)}) {
			t.Fatalf("branch note starts at %v, expected 1", e.Start)
		}
	}
}

func TestComposeRepeatOffsets(t *testing.T) {
	c := mustCompose(t, "[3][:c<1> :d<1>]")
	tr := c.Tracks[0]
	if len(tr.Events) != 6 {
		t.Fatalf("got %d events, expected 6", len(tr.Events))
	}
	if got := c.Duration(); got != (ostinato.MusicTime{Measure: 1, Beat: ostinato.W(2)}) {
		t.Fatalf("duration: got %v, expected 6 beats", got)
	}
	for i, e := range tr.Events {
		expected := ostinato.W(uint32(i)).MusicTime(ostinato.CommonTime)
		if e.Start != expected {
			t.Fatalf("event %d starts at %v, expected %v", i, e.Start, expected)
		}
	}
	// copies alternate the same two pitches
	for i, e := range tr.Events {
		expected := ostinato.NoteNum(3)
		if i%2 == 1 {
			expected = 5
		}
		if e.Pitch.Note != expected {
			t.Fatalf("event %d has note %v, expected %v", i, e.Pitch.Note, expected)
		}
	}
}

func TestComposeRepeatAfterCursor(t *testing.T) {
	c := mustCompose(t, ":e<2> [2][:c<1>]")
	tr := c.Tracks[0]
	if len(tr.Events) != 3 {
		t.Fatalf("got %d events, expected 3", len(tr.Events))
	}
	if tr.Events[1].Start != (ostinato.MusicTime{Beat: ostinato.W(2)}) {
		t.Fatalf("first copy starts at %v, expected 2", tr.Events[1].Start)
	}
	if tr.Events[2].Start != (ostinato.MusicTime{Beat: ostinato.W(3)}) {
		t.Fatalf("second copy starts at %v, expected 3", tr.Events[2].Start)
	}
}

func TestComposeErrorPropagates(t *testing.T) {
	if _, err := mustParseString(t, "[2][{:c<1> | :d<2>}]").Compose(ostinato.CommonTime, ""); err == nil {
		t.Fatalf("nested mismatch should fail the whole compose")
	}
}
