// Package grammar implements the music rewriting language: a text format for
// grammars over a musical alphabet, parallel term rewriting of music strings,
// and compilation of fully rewritten strings into compositions.
package grammar

import (
	"math/rand/v2"

	"github.com/ovaskain/ostinato"
)

type (
	// NonTerminal is a grammar symbol name subject to rewriting.
	NonTerminal string

	// TerminalKind tags the closed set of Terminal variants.
	TerminalKind uint8

	// Terminal is a symbol that is never rewritten: a note or rest with a
	// duration, or a meta control changing the instrument or volume of
	// everything after it. Only the fields of the tagged variant are
	// meaningful.
	Terminal struct {
		Kind       TerminalKind        `yaml:"kind" json:"kind"`
		Pitch      ostinato.Pitch      `yaml:"pitch,omitempty" json:"pitch,omitempty"`
		Duration   ostinato.MusicTime  `yaml:"duration,omitempty" json:"duration,omitempty"`
		Instrument ostinato.Instrument `yaml:"instrument,omitempty" json:"instrument,omitempty"`
		Volume     ostinato.Volume     `yaml:"volume,omitempty" json:"volume,omitempty"`
	}

	// Symbol is the atomic unit of a derivation: a NonTerminal reference or
	// a Terminal.
	Symbol struct {
		IsTerminal bool        `yaml:"is_terminal" json:"is_terminal"`
		NT         NonTerminal `yaml:"nt,omitempty" json:"nt,omitempty"`
		T          Terminal    `yaml:"t,omitempty" json:"t,omitempty"`
	}

	// PrimitiveKind tags the closed set of MusicPrimitive variants.
	PrimitiveKind uint8

	// MusicPrimitive is one element of a MusicString: a single Symbol, a
	// Split of parallel branches, or a Repeat of a sub-phrase. Only the
	// fields of the tagged variant are meaningful.
	MusicPrimitive struct {
		Kind     PrimitiveKind `yaml:"kind" json:"kind"`
		Symbol   Symbol        `yaml:"symbol,omitempty" json:"symbol,omitempty"`
		Branches []MusicString `yaml:"branches,omitempty" json:"branches,omitempty"`
		Num      int           `yaml:"num,omitempty" json:"num,omitempty"`
		Content  MusicString   `yaml:"content,omitempty" json:"content,omitempty"`
	}

	// MusicString is the unit that is parsed, rewritten and composed.
	MusicString []MusicPrimitive

	// Production is one rewrite rule: NT rewrites to Body.
	Production struct {
		NT   NonTerminal `yaml:"nt" json:"nt"`
		Body MusicString `yaml:"body" json:"body"`
	}

	// Grammar is a start symbol plus an unordered list of productions.
	// Several productions may share a left hand side; such grammars are
	// nondeterministic and selection is driven by the rng handed to the
	// rewriting functions.
	Grammar struct {
		Start       NonTerminal  `yaml:"start" json:"start"`
		Productions []Production `yaml:"productions" json:"productions"`
	}
)

const (
	KindNote TerminalKind = iota
	KindRest
	KindInstrument
	KindVolume
)

const (
	KindSimple PrimitiveKind = iota
	KindSplit
	KindRepeat
)

// NT makes a NonTerminal symbol.
func NT(name NonTerminal) Symbol {
	return Symbol{NT: name}
}

// T makes a Terminal symbol.
func T(t Terminal) Symbol {
	return Symbol{IsTerminal: true, T: t}
}

// Note makes a note terminal.
func Note(pitch ostinato.Pitch, duration ostinato.MusicTime) Terminal {
	return Terminal{Kind: KindNote, Pitch: pitch, Duration: duration}
}

// Rest makes a rest terminal.
func Rest(duration ostinato.MusicTime) Terminal {
	return Terminal{Kind: KindRest, Duration: duration}
}

// SetInstrument makes an instrument change terminal.
func SetInstrument(i ostinato.Instrument) Terminal {
	return Terminal{Kind: KindInstrument, Instrument: i}
}

// SetVolume makes a volume change terminal.
func SetVolume(v ostinato.Volume) Terminal {
	return Terminal{Kind: KindVolume, Volume: v}
}

// Simple wraps a symbol into a primitive.
func Simple(s Symbol) MusicPrimitive {
	return MusicPrimitive{Kind: KindSimple, Symbol: s}
}

// Split makes a parallel branch primitive.
func Split(branches ...MusicString) MusicPrimitive {
	return MusicPrimitive{Kind: KindSplit, Branches: branches}
}

// Repeat makes a primitive replaying content num times back to back.
func Repeat(num int, content MusicString) MusicPrimitive {
	return MusicPrimitive{Kind: KindRepeat, Num: num, Content: content}
}

// Production returns the first production for nt, or false if the grammar
// has none.
func (g *Grammar) Production(nt NonTerminal) (MusicString, bool) {
	for _, p := range g.Productions {
		if p.NT == nt {
			return p.Body, true
		}
	}
	return nil, false
}

// RandomProduction picks uniformly among all productions for nt using rng. A
// nil rng falls back to the first production, making the choice
// deterministic.
func (g *Grammar) RandomProduction(nt NonTerminal, rng *rand.Rand) (MusicString, bool) {
	if rng == nil {
		return g.Production(nt)
	}
	var matches []MusicString
	for _, p := range g.Productions {
		if p.NT == nt {
			matches = append(matches, p.Body)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	return matches[rng.IntN(len(matches))], true
}
