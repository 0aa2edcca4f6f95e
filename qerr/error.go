// Package qerr implements the query error taxonomy from spec.md §7: a
// single QueryError type carrying a Kind, a flag telling the lazy-fetch
// driver whether more data could resolve the error, and a stack of source
// Areas accumulated as the call stack unwinds.
//
// Idiomatic Go replaces the original implementation's assert/exception
// control flow (spec.md §9) with explicit error returns: operator runners
// return (value.Value, error) and callers propagate with normal Go error
// wrapping, attaching an Area at each enclosing OperatorNode via WithArea.
package qerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a QueryError per the taxonomy in spec.md §7.
type Kind string

const (
	// KindParse covers tokenizer/parser failures: unknown token, mismatched
	// brackets, bad shorthand, empty brackets, malformed infix operators,
	// wrong arity, unknown operator name.
	KindParse Kind = "parse"
	// KindType covers a context or argument failing its validator.
	KindType Kind = "type"
	// KindField covers a missing field read with return_none_if_missing=false.
	// Always carries CouldSucceedWithMoreData=true.
	KindField Kind = "field"
	// KindMerge covers conflicting scalar or list/map values across sources.
	KindMerge Kind = "merge"
	// KindRegex covers an invalid regular expression pattern.
	KindRegex Kind = "regex"
)

// Area is a half-open range over the token stream (or, after translation,
// the character stream) of the original query string, carried for
// diagnostics (spec.md §4.2, "print area" helper).
type Area struct {
	Start int // inclusive
	End   int // exclusive, in token indices
	All   []string
}

// ToChars translates a token-indexed Area into a character-indexed Area over
// the joined query string.
func (a Area) ToChars() Area {
	start, end := 0, 0
	for i, tok := range a.All {
		if i < a.Start {
			start += len(tok)
		}
		if i < a.End {
			end += len(tok)
		}
	}
	return Area{Start: start, End: end, All: a.All}
}

// Slice returns the sub-Area [a.Start+from, a.Start+to) (to may be negative,
// meaning "relative to a.End").
func (a Area) Slice(from, to int) Area {
	end := a.End
	if to >= 0 {
		end = a.Start + to
	}
	return Area{Start: a.Start + from, End: end, All: a.All}
}

// PrintArea renders the offending span of the original query with carets
// underneath it, as described in spec.md §4.2.
func PrintArea(a Area) string {
	chars := a.ToChars()
	query := strings.Join(a.All, "")
	var carets strings.Builder
	for i := range query {
		if i >= chars.Start && i < chars.End {
			carets.WriteByte('^')
		} else {
			carets.WriteByte(' ')
		}
	}
	return query + "\n" + carets.String()
}

// QueryError is the single error type flowing through the query engine.
type QueryError struct {
	Kind                     Kind
	Message                  string
	CouldSucceedWithMoreData bool
	Areas                    []Area
}

func (e *QueryError) Error() string {
	if len(e.Areas) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s\n%s", e.Message, PrintArea(e.Areas[len(e.Areas)-1]))
}

// WithArea returns a copy of err with area appended to its Area stack (the
// equivalent of OperatorNode.run appending its own Area as the stack
// unwinds, spec.md §4.3 step 4). Non-QueryError errors are returned unchanged;
// ProviderError values (plain strings from a provider) are never wrapped
// since they never carry an Area.
func WithArea(err error, area Area) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		cp := *qe
		cp.Areas = append(append([]Area{}, qe.Areas...), area)
		return &cp
	}
	return err
}

// New constructs a QueryError of the given kind.
func New(kind Kind, format string, args ...any) *QueryError {
	return &QueryError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewField constructs the FieldError variant, which always signals that the
// driver could resolve it given more data (spec.md §7).
func NewField(format string, args ...any) *QueryError {
	return &QueryError{Kind: KindField, Message: fmt.Sprintf(format, args...), CouldSucceedWithMoreData: true}
}

// Is reports whether err is a QueryError of the given kind.
func Is(err error, kind Kind) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return false
	}
	return qe.Kind == kind
}

// CouldSucceedWithMoreData reports whether err is a QueryError whose
// CouldSucceedWithMoreData flag is set.
func CouldSucceedWithMoreData(err error) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return false
	}
	return qe.CouldSucceedWithMoreData
}
