// Package scope implements the scope tracker from spec.md §4.5: Scope is an
// abstract demand ("from provider P I want objects of type T, restricted to
// these fields, optionally pre-filtered, optionally limited to these
// (id,type) pairs"), and Scopes is a set of Scope supporting the four
// narrowing operations operators call as they run.
//
// Grounded on original_source/sa/core/scope.py (Scope, its value equality
// and copy_fresh) and original_source/sa/query_language/scopes.py (Scopes,
// set_id_types/filter_type/filter_fields/add_condition).
package scope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sebitommy123/sa/value"
)

// Condition is one (field, operator, literal) triple, as extracted by
// operator.Filter's condition heuristic (spec.md §4.5).
type Condition struct {
	Field string
	Op    string
	Value value.Value
}

func (c Condition) key() string {
	return fmt.Sprintf("%s%s%s", c.Field, c.Op, value.HashKey(c.Value))
}

func (c Condition) String() string {
	return fmt.Sprintf("[.%s %s '%s']", c.Field, c.Op, c.Value.Text())
}

// Scope is a pure value (spec.md §3): all "mutators" on Scopes return new
// Scope values rather than mutating in place.
type Scope struct {
	// Provider identifies the scope's owning provider. A plain string
	// handle (rather than an interface reference to package provider)
	// keeps Scope a comparable, hashable value independent of any
	// concrete Provider implementation.
	Provider string
	Type     string
	// FieldsStar, when true, means Fields == "*" (every field); Fields is
	// meaningless in that case.
	FieldsStar      bool
	Fields          []string
	FilteringFields []string
	NeedsIDTypes    bool
	Conditions      []Condition
	IDTypes         []value.IDType
}

// Key returns a stable string uniquely identifying this Scope's value
// (provider, type, fields, filtering_fields, needs_id_types, conditions,
// id_types — conditions and id_types treated as sets, per spec.md §3 "Scope
// equality and hash consider all fields (conditions and id_types sorted)").
func (s Scope) Key() string {
	fields := append([]string{}, s.Fields...)
	sort.Strings(fields)
	filtering := append([]string{}, s.FilteringFields...)
	sort.Strings(filtering)

	condKeys := make([]string, len(s.Conditions))
	for i, c := range s.Conditions {
		condKeys[i] = c.key()
	}
	sort.Strings(condKeys)

	idKeys := make([]string, len(s.IDTypes))
	for i, id := range s.IDTypes {
		idKeys[i] = id.ID + "\x00" + id.Type
	}
	sort.Strings(idKeys)

	return strings.Join([]string{
		s.Provider,
		s.Type,
		fmt.Sprintf("%v", s.FieldsStar),
		strings.Join(fields, ","),
		strings.Join(filtering, ","),
		fmt.Sprintf("%v", s.NeedsIDTypes),
		strings.Join(condKeys, ";"),
		strings.Join(idKeys, ";"),
	}, "|")
}

// Equal reports whether s and other are the same Scope value.
func (s Scope) Equal(other Scope) bool { return s.Key() == other.Key() }

// CopyFresh drops conditions and id_types (spec.md §3, Scope.copy_fresh).
func (s Scope) CopyFresh() Scope {
	n := s
	n.Conditions = nil
	n.IDTypes = nil
	return n
}

func (s Scope) String() string {
	var cond strings.Builder
	for _, c := range s.Conditions {
		cond.WriteString(c.String())
	}
	fieldsStr := ""
	if !s.FieldsStar {
		fieldsStr = fmt.Sprintf("[%s]", strings.Join(s.Fields, ","))
	}
	idTypesStr := ""
	if len(s.IDTypes) > 0 {
		idTypesStr = fmt.Sprintf(" (%d id types)", len(s.IDTypes))
	}
	return fmt.Sprintf("%s%s%s%s", s.Type, cond.String(), fieldsStr, idTypesStr)
}
