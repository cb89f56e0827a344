package grammar

import (
	"log"
	"strconv"
	"strings"

	"github.com/ovaskain/ostinato"
	"github.com/ovaskain/ostinato/scan"
)

// The concrete text format, informally:
//
//	Grammar     := "start " NonTerminal newline Production*
//	Production  := NonTerminal "=" MusicString
//	MusicString := MusicPrimitive*
//	MusicPrimitive := Symbol | "{" MusicString ("|" MusicString)* "}"
//	                         | "[" uint "][" MusicString "]"
//	Symbol      := NonTerminal | ":" Terminal
//	NonTerminal := [A-Za-z-][A-Za-z0-9-]*
//	Terminal    := Note ("<" Duration ">")? | ":" MetaControl
//	Note        := "_" | [0-9]? [a-gA-G] ("#"|"b")?
//	Duration    := uint | uint "/" uint
//	MetaControl := "i=" Instrument | "v=" uint
//
// Durations default to 1 beat, octaves to 4.

// noteOffsets maps note letters to chromatic offsets. The table is not the
// standard chromatic order; 'a' starts the octave at C.
var noteOffsets = map[byte]ostinato.NoteNum{
	'a': 0, 'b': 2, 'c': 3, 'd': 5, 'e': 7, 'f': 8, 'g': 10,
}

const defaultOctave ostinato.Octave = 4

func scanNonTerminal(input string) (NonTerminal, string, error) {
	if input == "" {
		return "", input, scan.Genericf("expected non-terminal, got empty input")
	}
	if c := input[0]; !isLetter(c) && c != '-' {
		return "", input, scan.Genericf("expected non-terminal, got %q", c)
	}
	end := 1
	for end < len(input) && (isLetter(input[end]) || isDigit(input[end]) || input[end] == '-') {
		end++
	}
	return NonTerminal(input[:end]), input[end:], nil
}

func scanInstrument(input string) (ostinato.Instrument, string, error) {
	if input == "" || !isLetter(input[0]) {
		return "", input, scan.Genericf("expected instrument name")
	}
	end := 1
	for end < len(input) && (isLetter(input[end]) || isDigit(input[end]) || input[end] == '_') {
		end++
	}
	return ostinato.Instrument(input[:end]), input[end:], nil
}

func scanVolume(input string) (ostinato.Volume, string, error) {
	end := 0
	for end < len(input) && isDigit(input[end]) {
		end++
	}
	if end == 0 {
		return 0, input, scan.Genericf("expected volume")
	}
	v, err := strconv.ParseUint(input[:end], 10, 32)
	if err != nil {
		return 0, input, scan.Genericf("volume %q out of range", input[:end])
	}
	return ostinato.Volume(v), input[end:], nil
}

// scanNote recognizes "_" or an optional octave digit, a note letter and an
// optional accidental. The duration is filled in by the caller.
func scanNote(input string) (Terminal, string, error) {
	if input == "" {
		return Terminal{}, input, scan.Genericf("expected octave number or note letter")
	}
	if input[0] == '_' {
		return Terminal{Kind: KindRest}, input[1:], nil
	}
	octave := defaultOctave
	rest := input
	if isDigit(rest[0]) {
		octave = ostinato.Octave(rest[0] - '0')
		rest = rest[1:]
		if rest == "" {
			return Terminal{}, input, scan.Genericf("expected note letter after octave number %d", octave)
		}
	}
	letter := lower(rest[0])
	offset, ok := noteOffsets[letter]
	if !ok {
		return Terminal{}, input, scan.Genericf("%q is not a valid note letter", rest[0])
	}
	rest = rest[1:]
	if rest != "" {
		switch rest[0] {
		case '#':
			offset = (offset + 1) % 12
			rest = rest[1:]
		case 'b':
			offset = (offset + 11) % 12
			rest = rest[1:]
		}
	}
	return Terminal{Kind: KindNote, Pitch: ostinato.Pitch{Octave: octave, Note: offset}}, rest, nil
}

// scanDuration recognizes "<n>" or "<n/d>". When the input does not start
// with '<' the duration defaults to one beat without consuming anything, so
// it can always follow a note. Malformed text inside the angle brackets also
// falls back to one beat with a diagnostic rather than failing the note.
func scanDuration(input string) (ostinato.MusicTime, string, error) {
	if input == "" || input[0] != '<' {
		return ostinato.Beats(1), input, nil
	}
	end := scan.FindMatching(input[1:], '<', '>')
	if end < 0 {
		return ostinato.MusicTime{}, input, scan.Genericf("expected '>'")
	}
	inner := input[1 : 1+end]
	rest := input[2+end:]
	if num, den, ok := strings.Cut(inner, "/"); ok {
		n, errN := strconv.ParseUint(num, 10, 32)
		d, errD := strconv.ParseUint(den, 10, 32)
		if errN != nil || errD != nil || d == 0 {
			log.Printf("unable to parse %q as a duration, defaulting to 1 beat", inner)
			return ostinato.Beats(1), rest, nil
		}
		return ostinato.MusicTime{Beat: ostinato.B(uint32(n), uint32(d))}, rest, nil
	}
	n, err := strconv.ParseUint(inner, 10, 32)
	if err != nil {
		log.Printf("unable to parse %q as a duration, defaulting to 1 beat", inner)
		return ostinato.Beats(1), rest, nil
	}
	return ostinato.Beats(uint32(n)), rest, nil
}

func scanMetaControl(input string) (Terminal, string, error) {
	if len(input) < 2 || input[1] != '=' {
		return Terminal{}, input, scan.Genericf("expected meta control i= or v=")
	}
	rest := input[2:]
	switch input[0] {
	case 'i':
		instrument, rest, err := scanInstrument(rest)
		if err != nil {
			return Terminal{}, input, err
		}
		return SetInstrument(instrument), rest, nil
	case 'v':
		volume, rest, err := scanVolume(rest)
		if err != nil {
			return Terminal{}, input, err
		}
		return SetVolume(volume), rest, nil
	}
	return Terminal{}, input, scan.Genericf("expected meta control i= or v=, found %c=", input[0])
}

// scanTerminal dispatches between a meta control (a second ':') and a note
// with its optional duration. The leading ':' of the symbol has already been
// consumed by scanSymbol.
var scanTerminal = scan.Disjoint(
	":",
	scan.MapInput(scan.Scanner[Terminal](scanMetaControl), func(s string) string { return s[1:] }),
	"",
	scan.Map(
		scan.Concat(scan.Scanner[Terminal](scanNote), scan.Scanner[ostinato.MusicTime](scanDuration)),
		func(p scan.Pair[Terminal, ostinato.MusicTime]) Terminal {
			t := p.A
			if t.Kind == KindNote || t.Kind == KindRest {
				t.Duration = p.B
			}
			return t
		},
	),
)

var scanSymbol = scan.Disjoint(
	":",
	scan.Map(
		scan.MapInput(scanTerminal, func(s string) string { return s[1:] }),
		T,
	),
	"",
	scan.Map(scan.Scanner[NonTerminal](scanNonTerminal), NT),
)

func scanMusicPrimitive(input string) (MusicPrimitive, string, error) {
	switch {
	case strings.HasPrefix(input, "{"):
		return scanSplit(input)
	case strings.HasPrefix(input, "["):
		return scanRepeat(input)
	}
	sym, rest, err := scanSymbol(input)
	if err != nil {
		return MusicPrimitive{}, input, err
	}
	return Simple(sym), rest, nil
}

// scanSplit recognizes "{" branches separated by "|" up to the matching "}".
// Every branch must parse completely.
func scanSplit(input string) (MusicPrimitive, string, error) {
	inner := input[1:]
	end := scan.FindMatching(inner, '{', '}')
	if end < 0 {
		return MusicPrimitive{}, input, scan.Genericf("expected '}'")
	}
	var branches []MusicString
	for _, part := range strings.Split(inner[:end], "|") {
		branch, _, err := scan.Consume(scan.Scanner[MusicString](scanMusicString))(part)
		if err != nil {
			return MusicPrimitive{}, input, err
		}
		branches = append(branches, branch)
	}
	return Split(branches...), inner[end+1:], nil
}

// scanRepeat recognizes "[" num "][" content "]" with the content bracket
// matched against nesting.
func scanRepeat(input string) (MusicPrimitive, string, error) {
	numEnd := strings.IndexByte(input, ']')
	if numEnd < 0 {
		return MusicPrimitive{}, input, scan.Genericf("expected ']'")
	}
	num, err := strconv.Atoi(input[1:numEnd])
	if err != nil || num < 0 {
		return MusicPrimitive{}, input, scan.Genericf("expected repeat count, got %q", input[1:numEnd])
	}
	if numEnd+1 >= len(input) || input[numEnd+1] != '[' {
		return MusicPrimitive{}, input, scan.Genericf("expected '['")
	}
	inner := input[numEnd+2:]
	end := scan.FindMatching(inner, '[', ']')
	if end < 0 {
		return MusicPrimitive{}, input, scan.Genericf("expected ']'")
	}
	content, _, err := scan.Consume(scan.Scanner[MusicString](scanMusicString))(inner[:end])
	if err != nil {
		return MusicPrimitive{}, input, err
	}
	return Repeat(num, content), inner[end+1:], nil
}

// scanMusicString scans primitives greedily, separated by whitespace. It
// never fails: at the first primitive that does not parse it logs the
// diagnostic and returns what it has, leaving the bad text unconsumed.
func scanMusicString(input string) (MusicString, string, error) {
	var str MusicString
	rest := input
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		prim, newRest, err := scanMusicPrimitive(rest)
		if err != nil {
			log.Printf("stopped scanning music string: %v (remaining input %q)", err, rest)
			break
		}
		str = append(str, prim)
		rest = newRest
	}
	return str, rest, nil
}

var scanProduction = scan.Map(
	scan.Concat(
		scan.Map(
			scan.Concat(scan.Scanner[NonTerminal](scanNonTerminal), scan.Trim(scan.Literal("="))),
			func(p scan.Pair[NonTerminal, string]) NonTerminal { return p.A },
		),
		scan.Scanner[MusicString](scanMusicString),
	),
	func(p scan.Pair[NonTerminal, MusicString]) Production {
		return Production{NT: p.A, Body: p.B}
	},
)

// ParseMusicString parses a complete music string.
func ParseMusicString(text string) (MusicString, error) {
	str, _, err := scan.Consume(scan.Scanner[MusicString](scanMusicString))(strings.TrimSpace(text))
	return str, err
}

// Parse parses a grammar text: a "start X" line followed by one production
// per non-empty line.
func Parse(text string) (Grammar, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Grammar{}, scan.Genericf("expected at least one line")
	}
	startName, ok := strings.CutPrefix(lines[0], "start ")
	if !ok {
		return Grammar{}, scan.Genericf("expected 'start' at the beginning of the first line")
	}
	start, _, err := scanNonTerminal(strings.TrimSpace(startName))
	if err != nil {
		return Grammar{}, err
	}
	g := Grammar{Start: start}
	for _, line := range lines[1:] {
		p, _, err := scanProduction(line)
		if err != nil {
			return Grammar{}, err
		}
		g.Productions = append(g.Productions, p)
	}
	return g, nil
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
