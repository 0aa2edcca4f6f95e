package scope

import (
	"sort"
	"strings"

	"github.com/sebitommy123/sa/value"
)

// Scopes is a set of Scope (deduplicated by Scope.Key), supporting the four
// narrowing operations from spec.md §4.5. Every method returns a new Scopes;
// none mutate the receiver.
type Scopes struct {
	byKey map[string]Scope
}

// New builds a Scopes from individual Scope values, deduplicating by Key.
func New(scopes ...Scope) Scopes {
	m := make(map[string]Scope, len(scopes))
	for _, s := range scopes {
		m[s.Key()] = s
	}
	return Scopes{byKey: m}
}

// Fresh implements Scopes.setup/QueryState.setup's initialization (spec.md
// §4.5): every input scope is reset via CopyFresh before being added.
func Fresh(scopes []Scope) Scopes {
	fresh := make([]Scope, len(scopes))
	for i, s := range scopes {
		fresh[i] = s.CopyFresh()
	}
	return New(fresh...)
}

// List returns the member scopes in a stable, deterministic order (sorted
// by Key), used for printing and for property tests.
func (s Scopes) List() []Scope {
	out := make([]Scope, 0, len(s.byKey))
	for _, sc := range s.byKey {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (s Scopes) Len() int { return len(s.byKey) }

// SetIDTypes narrows every scope whose NeedsIDTypes is true to the subset of
// ids whose type matches the scope's type (spec.md §4.5, set_id_types).
func (s Scopes) SetIDTypes(ids []value.IDType) Scopes {
	out := make([]Scope, 0, len(s.byKey))
	for _, sc := range s.byKey {
		n := sc
		if n.NeedsIDTypes {
			var matched []value.IDType
			for _, id := range ids {
				if id.Type == n.Type {
					matched = append(matched, id)
				}
			}
			n.IDTypes = matched
		}
		out = append(out, n)
	}
	return New(out...)
}

// FilterType keeps only scopes whose Type == t (spec.md §4.5, filter_type).
func (s Scopes) FilterType(t string) Scopes {
	var out []Scope
	for _, sc := range s.byKey {
		if sc.Type == t {
			out = append(out, sc)
		}
	}
	return New(out...)
}

// FilterFields intersects every scope's fields with fs, dropping a scope
// whose intersection is empty; a "*" scope is preserved unchanged (spec.md
// §4.5, filter_fields).
func (s Scopes) FilterFields(fs []string) Scopes {
	want := make(map[string]bool, len(fs))
	for _, f := range fs {
		want[f] = true
	}
	var out []Scope
	for _, sc := range s.byKey {
		if sc.FieldsStar {
			out = append(out, sc)
			continue
		}
		var inter []string
		for _, f := range sc.Fields {
			if want[f] {
				inter = append(inter, f)
			}
		}
		if len(inter) > 0 {
			n := sc
			n.Fields = inter
			out = append(out, n)
		}
	}
	return New(out...)
}

// AddCondition appends c to every scope's conditions (spec.md §4.5,
// add_condition).
func (s Scopes) AddCondition(c Condition) Scopes {
	out := make([]Scope, 0, len(s.byKey))
	for _, sc := range s.byKey {
		n := sc
		n.Conditions = append(append([]Condition{}, sc.Conditions...), c)
		out = append(out, n)
	}
	return New(out...)
}

// Minus returns the scopes present in s but not in other, compared by Key —
// used by the lazy-fetch driver to compute final_needed_scopes \
// downloaded_scopes (spec.md §4.6).
func (s Scopes) Minus(other Scopes) Scopes {
	var out []Scope
	for k, sc := range s.byKey {
		if _, ok := other.byKey[k]; !ok {
			out = append(out, sc)
		}
	}
	return New(out...)
}

// Union merges s with other (spec.md §4.6, final_needed_scopes = staged ∪
// needed).
func (s Scopes) Union(other Scopes) Scopes {
	out := make([]Scope, 0, len(s.byKey)+len(other.byKey))
	out = append(out, s.List()...)
	out = append(out, other.List()...)
	return New(out...)
}

func (s Scopes) String() string {
	if len(s.byKey) == 0 {
		return "Scopes([])"
	}
	var lines []string
	for _, sc := range s.List() {
		lines = append(lines, sc.String())
	}
	return "Scopes(\n    " + strings.Join(lines, ",\n    ") + "\n)"
}
