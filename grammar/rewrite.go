package grammar

import (
	"log"
	"math/rand/v2"
)

// Rewrite performs one parallel derivation step: every NonTerminal in the
// string is replaced by a production body in the same pass, Terminals are
// copied unchanged, and Split branches and Repeat content are rewritten
// recursively in place. Production selection uses rng; nil picks the first
// matching production so the derivation is deterministic. A NonTerminal
// without any production is dropped from the output with a diagnostic.
func (s MusicString) Rewrite(g *Grammar, rng *rand.Rand) MusicString {
	out := make(MusicString, 0, len(s))
	for _, p := range s {
		switch p.Kind {
		case KindSimple:
			if p.Symbol.IsTerminal {
				out = append(out, p)
				break
			}
			body, ok := g.RandomProduction(p.Symbol.NT, rng)
			if !ok {
				log.Printf("no production for %q, dropping it", p.Symbol.NT)
				break
			}
			out = append(out, body...)
		case KindSplit:
			branches := make([]MusicString, len(p.Branches))
			for i, b := range p.Branches {
				branches[i] = b.Rewrite(g, rng)
			}
			out = append(out, Split(branches...))
		case KindRepeat:
			out = append(out, Repeat(p.Num, p.Content.Rewrite(g, rng)))
		}
	}
	return out
}

// RewriteN applies Rewrite exactly n times. There is no fixpoint or cycle
// detection; termination for unbounded grammars is the caller's problem.
func (s MusicString) RewriteN(g *Grammar, rng *rand.Rand, n int) MusicString {
	for i := 0; i < n; i++ {
		s = s.Rewrite(g, rng)
	}
	return s
}

// Derive rewrites the grammar's start symbol n steps.
func (g *Grammar) Derive(rng *rand.Rand, n int) MusicString {
	return MusicString{Simple(NT(g.Start))}.RewriteN(g, rng, n)
}
