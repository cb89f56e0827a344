package grammar

import (
	"fmt"
	"strings"
)

// noteLetters inverts noteOffsets; offsets between two letters render as the
// lower letter sharpened.
var noteLetters = [12]string{"a", "a#", "b", "c", "c#", "d", "d#", "e", "f", "f#", "g", "g#"}

// String renders the terminal in the text format, without the leading ':' of
// its enclosing symbol.
func (t Terminal) String() string {
	switch t.Kind {
	case KindNote:
		octave := ""
		if t.Pitch.Octave != defaultOctave {
			octave = fmt.Sprintf("%d", t.Pitch.Octave)
		}
		return fmt.Sprintf("%s%s<%s>", octave, noteLetters[t.Pitch.Note%12], t.Duration)
	case KindRest:
		return fmt.Sprintf("_<%s>", t.Duration)
	case KindInstrument:
		return fmt.Sprintf(":i=%s", t.Instrument)
	case KindVolume:
		return fmt.Sprintf(":v=%d", t.Volume)
	}
	return ""
}

func (s Symbol) String() string {
	if s.IsTerminal {
		return ":" + s.T.String()
	}
	return string(s.NT)
}

func (p MusicPrimitive) String() string {
	switch p.Kind {
	case KindSimple:
		return p.Symbol.String()
	case KindSplit:
		branches := make([]string, len(p.Branches))
		for i, b := range p.Branches {
			branches[i] = b.String()
		}
		return "{" + strings.Join(branches, " | ") + "}"
	case KindRepeat:
		return fmt.Sprintf("[%d][%s]", p.Num, p.Content)
	}
	return ""
}

func (s MusicString) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func (p Production) String() string {
	return fmt.Sprintf("%s = %s", p.NT, p.Body)
}

// String renders the grammar back into parseable text.
func (g Grammar) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "start %s\n", g.Start)
	for _, p := range g.Productions {
		fmt.Fprintf(&b, "%s\n", p)
	}
	return b.String()
}
