package scan

import (
	"errors"
	"strconv"
	"testing"
)

func digits(input string) (int, string, error) {
	end := 0
	for end < len(input) && '0' <= input[end] && input[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, input, Genericf("expected digits")
	}
	n, _ := strconv.Atoi(input[:end])
	return n, input[end:], nil
}

func TestLiteral(t *testing.T) {
	got, rest, err := Literal("start ")("start S")
	if err != nil || got != "start " || rest != "S" {
		t.Fatalf("got %q %q %v", got, rest, err)
	}
	if _, _, err := Literal("start ")("stop S"); err == nil {
		t.Fatalf("expected a failure on wrong literal")
	}
}

func TestConcat(t *testing.T) {
	p, rest, err := Concat(Literal("a"), Scanner[int](digits))("a42b")
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	if p.A != "a" || p.B != 42 || rest != "b" {
		t.Fatalf("got %v %v %q", p.A, p.B, rest)
	}
	if _, _, err := Concat(Literal("a"), Scanner[int](digits))("ab"); err == nil {
		t.Fatalf("Concat should fail when the second scanner fails")
	}
}

func TestDisjoint(t *testing.T) {
	s := Disjoint("a", Literal("abc"), "x", Literal("xyz"))
	if got, _, err := s("abc"); err != nil || got != "abc" {
		t.Fatalf("got %q %v", got, err)
	}
	if got, _, err := s("xyz"); err != nil || got != "xyz" {
		t.Fatalf("got %q %v", got, err)
	}
	_, _, err := s("qqq")
	var expected ExpectedEitherError
	if !errors.As(err, &expected) || expected.A != "a" || expected.B != "x" {
		t.Fatalf("got %v, expected ExpectedEitherError", err)
	}
	// the dispatch commits: a matching prefix with a failing body does not
	// fall through to the other branch
	if _, _, err := Disjoint("a", Literal("abc"), "x", Literal("xyz"))("axyz"); err == nil {
		t.Fatalf("committed branch should fail, not backtrack")
	}
}

func TestDisjointFallback(t *testing.T) {
	s := Disjoint("a", Literal("abc"), "", Scanner[string](func(in string) (string, string, error) {
		return "fallback", in, nil
	}))
	if got, _, err := s("zzz"); err != nil || got != "fallback" {
		t.Fatalf("got %q %v", got, err)
	}
}

func TestKleene(t *testing.T) {
	s := Kleene(Literal("ab"))
	got, rest, err := s("ababx")
	if err != nil || len(got) != 2 || rest != "x" {
		t.Fatalf("got %v %q %v", got, rest, err)
	}
	got, rest, err = s("x")
	if err != nil || len(got) != 0 || rest != "x" {
		t.Fatalf("kleene must not fail on zero matches: %v %q %v", got, rest, err)
	}
}

func TestMapAndTrim(t *testing.T) {
	s := Trim(Map(Scanner[int](digits), func(n int) int { return n * 2 }))
	got, _, err := s("  21  ")
	if err != nil || got != 42 {
		t.Fatalf("got %v %v", got, err)
	}
}

func TestConsume(t *testing.T) {
	if _, _, err := Consume(Scanner[int](digits))("42"); err != nil {
		t.Fatalf("Consume failed on full input: %v", err)
	}
	_, _, err := Consume(Scanner[int](digits))("42x")
	var generic GenericError
	if !errors.As(err, &generic) {
		t.Fatalf("got %v, expected GenericError", err)
	}
}

func TestFindMatching(t *testing.T) {
	for _, c := range []struct {
		input    string
		expected int
	}{
		{"abc}", 3},
		{"a{b}c}", 5},
		{"{{}}}x", 4},
		{"}", 0},
		{"no close", -1},
	} {
		if got := FindMatching(c.input, '{', '}'); got != c.expected {
			t.Errorf("FindMatching(%q): got %v, expected %v", c.input, got, c.expected)
		}
	}
}
