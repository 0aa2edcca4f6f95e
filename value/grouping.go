package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sebitommy123/sa/qerr"
)

// Grouping bundles every RawObject sharing one id, one per distinct source
// (spec.md §3), grounded on object_grouping.py.ObjectGrouping. The derived
// sets (types, id_types, unique_ids, sources) are computed once at
// construction and never mutated; FieldOverrides and SelectedFields are the
// two overlay maps operators clone-and-replace rather than mutate in place.
type Grouping struct {
	ID      string
	Members []*RawObject

	FieldOverrides map[string]Value
	SelectedFields map[string]bool // nil means "all"; "*" sentinel per spec.md §3

	types     []string
	idTypes   []IDType
	uniqueIDs []UniqueID
	sources   []string
}

func (*Grouping) Kind() Kind { return KindGrouping }

// NewGrouping builds a Grouping from the raw objects sharing one id,
// validating the invariants from spec.md §3 (single id, distinct sources).
func NewGrouping(members []*RawObject) (*Grouping, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("grouping requires at least one member")
	}
	id := members[0].ID
	seenSource := make(map[string]bool, len(members))
	typeSet := make(map[string]bool)
	idTypeSet := make(map[IDType]bool)
	var uniqueIDs []UniqueID
	for _, m := range members {
		if m.ID != id {
			return nil, fmt.Errorf("grouping has multiple ids: %q and %q", id, m.ID)
		}
		if seenSource[m.Source] {
			return nil, fmt.Errorf("grouping has multiple objects from source %q", m.Source)
		}
		seenSource[m.Source] = true
		for _, t := range m.Types {
			typeSet[t] = true
			idTypeSet[IDType{ID: id, Type: t}] = true
		}
		uniqueIDs = append(uniqueIDs, m.UniqueIDs()...)
	}
	g := &Grouping{ID: id, Members: members}
	for t := range typeSet {
		g.types = append(g.types, t)
	}
	sort.Strings(g.types)
	for it := range idTypeSet {
		g.idTypes = append(g.idTypes, it)
	}
	g.uniqueIDs = uniqueIDs
	for s := range seenSource {
		g.sources = append(g.sources, s)
	}
	sort.Strings(g.sources)
	return g, nil
}

func (g *Grouping) Types() []string     { return g.types }
func (g *Grouping) IDTypes() []IDType   { return g.idTypes }
func (g *Grouping) UniqueIDs() []UniqueID { return g.uniqueIDs }
func (g *Grouping) Sources() []string   { return g.sources }

func (g *Grouping) HasType(t string) bool {
	for _, ty := range g.types {
		if ty == t {
			return true
		}
	}
	return false
}

func (g *Grouping) memberFromSource(source string) *RawObject {
	for _, m := range g.Members {
		if m.Source == source {
			return m
		}
	}
	return nil
}

// SelectSources restricts the Grouping to the member(s) from the given
// sources, returning nil if none match (object_grouping.py.select_sources).
func (g *Grouping) SelectSources(sources map[string]bool) (*Grouping, error) {
	var matched []*RawObject
	for _, m := range g.Members {
		if sources[m.Source] {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	ng, err := NewGrouping(matched)
	if err != nil {
		return nil, err
	}
	ng.FieldOverrides = g.FieldOverrides
	ng.SelectedFields = g.SelectedFields
	return ng, nil
}

// Fields returns the union of every member's property names, narrowed by
// SelectedFields when set.
func (g *Grouping) Fields() []string {
	all := make(map[string]bool)
	for _, m := range g.Members {
		for f := range m.Properties {
			all[f] = true
		}
	}
	for f := range g.FieldOverrides {
		all[f] = true
	}
	if g.SelectedFields != nil {
		for f := range all {
			if !g.SelectedFields[f] {
				delete(all, f)
			}
		}
	}
	out := make([]string, 0, len(all))
	for f := range all {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// SelectFields returns a copy of g whose SelectedFields is its current
// selection (or "all fields" if unset) intersected with the requested
// fields, so the whitelist grows monotonically narrower across repeated
// calls (object_grouping.py.select_fields).
func (g *Grouping) SelectFields(fields map[string]bool) *Grouping {
	ng := *g
	if g.SelectedFields != nil {
		merged := make(map[string]bool, len(fields))
		for f := range fields {
			if g.SelectedFields[f] {
				merged[f] = true
			}
		}
		ng.SelectedFields = merged
	} else {
		merged := make(map[string]bool, len(fields))
		for f := range fields {
			merged[f] = true
		}
		ng.SelectedFields = merged
	}
	return &ng
}

// GetField applies the entity merge rule from spec.md §3/object_grouping.py
// get_field: collect the field from every member that has it (resolving any
// CustomValue along the way), then reconcile. A FieldError is returned as a
// *qerr.QueryError with CouldSucceedWithMoreData set, matching spec.md §7.
func (g *Grouping) GetField(fieldName string, state RunState) (Value, error) {
	if v, ok := g.FieldOverrides[fieldName]; ok {
		return v, nil
	}
	var values []Value
	for _, m := range g.Members {
		if !m.HasField(fieldName) {
			continue
		}
		v, err := m.GetField(fieldName, state)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, qerr.NewField("object %s has no field %q", g.Name(), fieldName)
	}
	anyCollection := false
	for _, v := range values {
		if v.Kind() == KindList || v.Kind() == KindMap {
			anyCollection = true
			break
		}
	}
	if anyCollection {
		if len(values) > 1 {
			return nil, qerr.New(qerr.KindMerge, "field %q of %s has multiple definitions of list or dict from different sources; pick a source", fieldName, g.Name())
		}
		return values[0], nil
	}
	distinct := make([]Value, 0, 1)
	for _, v := range values {
		found := false
		for _, d := range distinct {
			if Equal(v, d) {
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) > 1 {
		return nil, qerr.New(qerr.KindMerge, "field %q of %s has multiple conflicting definitions from different sources; pick a source", fieldName, g.Name())
	}
	return distinct[0], nil
}

// HasField reports whether any member (or a field override) carries the
// field.
func (g *Grouping) HasField(fieldName string) bool {
	if _, ok := g.FieldOverrides[fieldName]; ok {
		return true
	}
	for _, m := range g.Members {
		if m.HasField(fieldName) {
			return true
		}
	}
	return false
}

// GetAllFieldValues returns every member's contribution to fieldName in
// member order, without applying the merge rule (get_field's
// return_all_values=true path, spec.md §4.4).
func (g *Grouping) GetAllFieldValues(fieldName string, state RunState) ([]Value, error) {
	if v, ok := g.FieldOverrides[fieldName]; ok {
		return []Value{v}, nil
	}
	var values []Value
	for _, m := range g.Members {
		if !m.HasField(fieldName) {
			continue
		}
		v, err := m.GetField(fieldName, state)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Name renders the "#id (type1,type2@src1@src2)" header from
// object_grouping.py.name, reused by the render package for group headers.
func (g *Grouping) Name() string {
	return fmt.Sprintf("#%s (%s @%s)", g.ID, strings.Join(g.types, ","), strings.Join(g.sources, "@"))
}

func (g *Grouping) Text() string { return g.Name() }
