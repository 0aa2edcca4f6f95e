// Package token implements the tokenizer from spec.md §4.1: it splits a
// query string into alphanumeric/underscore runs, signed-number literals,
// and single-character tokens, preserving enough information that joining
// every token reproduces the input exactly.
package token

import (
	"fmt"
	"strings"
	"unicode"
)

// ErrRoundTrip is returned (wrapped with the offending input) when the
// round-trip invariant from spec.md §4.1 doesn't hold — joining the
// produced tokens must reproduce the input exactly. The original enforces
// this with an assertion; idiomatic Go surfaces it as an error instead.
type ErrRoundTrip struct {
	Input string
	Got   string
}

func (e *ErrRoundTrip) Error() string {
	return fmt.Sprintf("tokenizer round-trip failed: input %q produced tokens joining to %q", e.Input, e.Got)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Tokenize splits query into tokens per spec.md §4.1:
//   - an alphanumeric/underscore run is one token;
//   - a '-' immediately preceded by nothing, whitespace, or an
//     operator/bracket-closer starts a signed numeric literal token
//     (original grammar: preceded by nothing, or by a non-alnum,
//     non-underscore, non-']' , non-')' character);
//   - every other character is its own one-character token.
func Tokenize(query string) ([]string, error) {
	runes := []rune(query)
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		if isWordRune(r) {
			current.WriteRune(r)
			continue
		}
		flush()

		if r == '-' && startsSignedNumber(runes, i) {
			current.WriteRune(r)
			continue
		}
		tokens = append(tokens, string(r))
	}
	flush()

	if joined := strings.Join(tokens, ""); joined != query {
		return nil, &ErrRoundTrip{Input: query, Got: joined}
	}
	return tokens, nil
}

// startsSignedNumber reports whether the '-' at runes[i] begins a signed
// numeric literal rather than standing alone as an operator/minus token:
// true when i==0, or the previous rune is not alphanumeric/underscore and
// not ']' or ')'.
func startsSignedNumber(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev := runes[i-1]
	if isWordRune(prev) {
		return false
	}
	if prev == ']' || prev == ')' {
		return false
	}
	return true
}

// Join reassembles tokens back into the original string, the inverse of
// Tokenize — used by the tests checking the round-trip invariant
// (spec.md §8).
func Join(tokens []string) string {
	return strings.Join(tokens, "")
}
