// Package state implements value.RunState: the per-query runtime that
// tracks which scopes are still needed, which have already been staged, and
// the current aggregate data, grounded on
// original_source/sa/query_language/query_state.py's QueryState dataclass
// (providers/staged_object_lists/needed_scopes/staged_scopes) reworked onto
// this port's scope.Scopes rather than the original's type-merging
// Scopes/QueryScope pair (see DESIGN.md's `scope` package entry for why).
package state

import (
	"github.com/sebitommy123/sa/parse"
	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/scope"
	"github.com/sebitommy123/sa/value"
)

// Entry binds one configured provider to the scope-provider handle that
// identifies it inside scope.Scope.Provider, plus its capability
// announcement (fetched once, up front, by the driver).
type Entry struct {
	ID         string
	Provider   provider.Provider
	Capability provider.Capability
}

// QueryState is the concrete, mutable-in-place implementation of
// value.RunState (spec.md §3, §4.5, §4.6).
type QueryState struct {
	entries []Entry
	allData *value.ObjectList

	neededScopes scope.Scopes
	stagedScopes scope.Scopes
}

var _ value.RunState = (*QueryState)(nil)

// New builds a QueryState with needed_scopes = Scopes.fresh(all lazy
// providers' advertised scopes) and an empty staged set (spec.md §4.5,
// QueryState.setup).
func New(entries []Entry, allData *value.ObjectList) *QueryState {
	return &QueryState{
		entries:      entries,
		allData:      allData,
		neededScopes: scope.Fresh(allProviderScopes(entries)),
		stagedScopes: scope.New(),
	}
}

func allProviderScopes(entries []Entry) []scope.Scope {
	var out []scope.Scope
	for _, e := range entries {
		if e.Capability.Mode != provider.ModeLazy {
			continue
		}
		for _, ls := range e.Capability.LazyLoadingScopes {
			out = append(out, scope.Scope{
				Provider:        e.ID,
				Type:            ls.Type,
				FieldsStar:      ls.FieldsStar,
				Fields:          ls.Fields,
				FilteringFields: ls.FilteringFields,
				NeedsIDTypes:    ls.NeedsIDTypes,
			})
		}
	}
	return out
}

// Entries exposes the configured providers, used by the lazy-fetch driver
// to resolve a scope's Provider handle back to a provider.Provider.
func (s *QueryState) Entries() []Entry { return s.entries }

// NeededScopes returns the current needed-scope set.
func (s *QueryState) NeededScopes() scope.Scopes { return s.neededScopes }

// StagedScopes returns the current staged-scope set.
func (s *QueryState) StagedScopes() scope.Scopes { return s.stagedScopes }

// FinalNeededScopes is staged ∪ needed (spec.md §3, QueryState.final_needed_scopes).
func (s *QueryState) FinalNeededScopes() scope.Scopes {
	return s.stagedScopes.Union(s.neededScopes)
}

// StageScopes folds the current needed_scopes into staged_scopes and resets
// needed_scopes to a fresh full set (spec.md §4.5, "reserved for nested
// contexts"; exposed for the driver's use between execute-once iterations).
func (s *QueryState) StageScopes() {
	s.stagedScopes = s.stagedScopes.Union(s.neededScopes)
	s.neededScopes = scope.Fresh(allProviderScopes(s.entries))
}

// SetAllData replaces the aggregate data, called by the driver after
// merging newly downloaded objects (spec.md §4.6, download-scope).
func (s *QueryState) SetAllData(data *value.ObjectList) { s.allData = data }

func (s *QueryState) NarrowSetIDTypes(ids []value.IDType) {
	s.neededScopes = s.neededScopes.SetIDTypes(ids)
}

func (s *QueryState) NarrowFilterType(t string) {
	s.neededScopes = s.neededScopes.FilterType(t)
}

func (s *QueryState) NarrowFilterFields(fs []string) {
	s.neededScopes = s.neededScopes.FilterFields(fs)
}

func (s *QueryState) NarrowAddCondition(field, op string, v value.Value) {
	s.neededScopes = s.neededScopes.AddCondition(scope.Condition{Field: field, Op: op, Value: v})
}

// Child returns a fresh nested QueryState for one filter/map/foreach
// iteration: a shallow copy sharing entries and allData, but with its own
// Scopes values (scope.Scopes are themselves immutable, so sharing them is
// safe — only the child's own reassignments are ever discarded, per the
// "iteration-local scope propagation: discard" decision in DESIGN.md).
func (s *QueryState) Child() value.RunState {
	child := *s
	return &child
}

// RunSubQuery parses and evaluates query against the current AllData in a
// brand-new QueryState (fresh scopes, same entries/data) — the "snapshot,
// not lift" decision in DESIGN.md's "Sub-query scope lifting" entry.
func (s *QueryState) RunSubQuery(query string) (value.Value, error) {
	parsed, err := parse.Parse(query)
	if err != nil {
		return nil, err
	}
	fresh := New(s.entries, s.allData)
	chain, ok := parsed.(*value.Chain)
	if !ok {
		return parsed, nil
	}
	return chain.Run(s.allData, fresh)
}

func (s *QueryState) AllData() *value.ObjectList { return s.allData }

func (s *QueryState) DescribeNeededScopes() string {
	return s.neededScopes.String()
}
