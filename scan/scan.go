// Package scan is a small parser combinator framework. A Scanner consumes a
// prefix of its input and returns the parsed value together with the
// remaining input; combinators build larger scanners out of smaller ones.
// Alternation is prefix-directed (LL(1)): a Disjoint scanner commits to a
// branch by looking at the next characters and never backtracks, so every
// choice point of a grammar built with this package must be distinguishable
// by its prefix.
package scan

import (
	"fmt"
	"strings"
)

// Scanner parses a prefix of input into a T, returning the unconsumed rest.
// A failing scanner returns a GenericError or an ExpectedEitherError and
// leaves the remaining input unspecified.
type Scanner[T any] func(input string) (T, string, error)

// Pair is the result of Concat.
type Pair[A, B any] struct {
	A A
	B B
}

type (
	// GenericError is a plain scan failure message.
	GenericError string

	// ExpectedEitherError is returned by Disjoint when neither declared
	// prefix matches the input.
	ExpectedEitherError struct {
		A, B string
	}
)

func (e GenericError) Error() string { return string(e) }

func (e ExpectedEitherError) Error() string {
	return fmt.Sprintf("expected either %q or %q", e.A, e.B)
}

// Genericf makes a GenericError with fmt formatting.
func Genericf(format string, args ...any) error {
	return GenericError(fmt.Sprintf(format, args...))
}

// Literal matches the exact string s and yields it.
func Literal(s string) Scanner[string] {
	return func(input string) (string, string, error) {
		if !strings.HasPrefix(input, s) {
			return "", input, Genericf("expected string %q", s)
		}
		return s, input[len(s):], nil
	}
}

// Concat runs a, then b on a's remainder, succeeding only if both succeed.
func Concat[A, B any](a Scanner[A], b Scanner[B]) Scanner[Pair[A, B]] {
	return func(input string) (Pair[A, B], string, error) {
		av, rest, err := a(input)
		if err != nil {
			return Pair[A, B]{}, input, err
		}
		bv, rest, err := b(rest)
		if err != nil {
			return Pair[A, B]{}, input, err
		}
		return Pair[A, B]{A: av, B: bv}, rest, nil
	}
}

// Disjoint dispatches on the next characters of the input: if prefixA
// matches, a is committed to; else if prefixB matches, b is; else the scan
// fails with ExpectedEitherError. An empty prefixB makes b the fallback
// branch, taken whenever prefixA does not match.
func Disjoint[T any](prefixA string, a Scanner[T], prefixB string, b Scanner[T]) Scanner[T] {
	return func(input string) (T, string, error) {
		if strings.HasPrefix(input, prefixA) {
			return a(input)
		}
		if prefixB == "" {
			return b(input)
		}
		if strings.HasPrefix(input, prefixB) {
			return b(input)
		}
		var zero T
		return zero, input, ExpectedEitherError{A: prefixA, B: prefixB}
	}
}

// Kleene repeats a until it fails, collecting zero or more results. It never
// fails itself.
func Kleene[T any](a Scanner[T]) Scanner[[]T] {
	return func(input string) ([]T, string, error) {
		var results []T
		rest := input
		for {
			v, newRest, err := a(rest)
			if err != nil {
				return results, rest, nil
			}
			results = append(results, v)
			rest = newRest
		}
	}
}

// Map transforms a's value on success.
func Map[A, B any](a Scanner[A], f func(A) B) Scanner[B] {
	return func(input string) (B, string, error) {
		av, rest, err := a(input)
		if err != nil {
			var zero B
			return zero, input, err
		}
		return f(av), rest, nil
	}
}

// MapInput transforms the input before handing it to a.
func MapInput[T any](a Scanner[T], f func(string) string) Scanner[T] {
	return func(input string) (T, string, error) {
		return a(f(input))
	}
}

// Trim strips surrounding whitespace from the input before scanning.
func Trim[T any](a Scanner[T]) Scanner[T] {
	return MapInput(a, strings.TrimSpace)
}

// Consume succeeds only if a consumes the entire input.
func Consume[T any](a Scanner[T]) Scanner[T] {
	return func(input string) (T, string, error) {
		v, rest, err := a(input)
		if err != nil {
			return v, input, err
		}
		if rest != "" {
			var zero T
			return zero, input, Genericf("did not consume entire input: %q left", rest)
		}
		return v, "", nil
	}
}

// FindMatching finds the close delimiter matching an open delimiter that has
// already been consumed just before input, counting nested open/close pairs.
// It returns the byte offset of the matching close in input, or -1 if the
// input runs out first.
func FindMatching(input string, open, close rune) int {
	depth := 1
	for i, c := range input {
		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
