// Package vis renders compositions for humans: a fixed-width ASCII view for
// quick debugging and a PNG piano roll.
package vis

import (
	"fmt"
	"strings"

	"github.com/ovaskain/ostinato"
)

// ASCII renders each track as one fixed-width line of the given column
// count. Every column samples the composition at an evenly spaced time:
// sounding notes print their letter name, rests a dot, silence a space.
func ASCII(c *ostinato.Composition, columns int) string {
	if columns <= 0 || len(c.Tracks) == 0 {
		return ""
	}
	sig := c.TimeSignature
	total := c.Duration().TotalBeats(sig)
	if total.IsZero() {
		return ""
	}
	nameWidth := 0
	for i := range c.Tracks {
		if n := len(c.Tracks[i].Instrument); n > nameWidth {
			nameWidth = n
		}
	}
	var b strings.Builder
	for i := range c.Tracks {
		tr := &c.Tracks[i]
		fmt.Fprintf(&b, "%-*s |", nameWidth, tr.Instrument)
		for col := 0; col < columns; col++ {
			at := ostinato.B(total.Num*uint32(col), total.Den*uint32(columns)).MusicTime(sig)
			switch events := tr.EventsAt(at, sig); {
			case len(events) > 0:
				b.WriteString(events[0].Pitch.LetterName()[:1])
			case len(tr.RestsAt(at, sig)) > 0:
				b.WriteByte('.')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
