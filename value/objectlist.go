package value

import "fmt"

// ObjectList is an ordered, uniqueness-validated collection of Groupings
// (spec.md §3), grounded on object_list.py.ObjectList.
type ObjectList struct {
	Groupings []*Grouping
}

func (*ObjectList) Kind() Kind { return KindObjectList }

// NewObjectList validates uniqueness (no duplicate unique_ids across
// members) before returning, matching object_list.py's constructor-time
// invariant check (exposed there as a separate validate_uniqueness call,
// folded in here since Go has no dataclass __post_init__ equivalent that
// callers can opt out of).
func NewObjectList(groupings []*Grouping) (*ObjectList, error) {
	seen := make(map[UniqueID]bool)
	for _, g := range groupings {
		for _, uid := range g.UniqueIDs() {
			if seen[uid] {
				return nil, fmt.Errorf("duplicate object found: %s", uid)
			}
			seen[uid] = true
		}
	}
	return &ObjectList{Groupings: groupings}, nil
}

func (l *ObjectList) Text() string {
	const maxShow = 10
	if len(l.Groupings) <= maxShow {
		s := "ObjectList("
		for i, g := range l.Groupings {
			if i > 0 {
				s += ", "
			}
			s += g.Text()
		}
		return s + ")"
	}
	s := "ObjectList("
	for i := 0; i < maxShow; i++ {
		if i > 0 {
			s += ", "
		}
		s += l.Groupings[i].Text()
	}
	return fmt.Sprintf("%s, ... (%d more))", s, len(l.Groupings)-maxShow)
}

// Combine regroups the union of both lists' raw members by id across all
// sources (object_list.py.combine), used by the lazy-fetch driver to merge
// newly downloaded objects with the aggregate (spec.md §4.6).
func Combine(a, b *ObjectList) (*ObjectList, error) {
	byID := make(map[string][]*RawObject)
	var order []string
	add := func(l *ObjectList) {
		for _, g := range l.Groupings {
			if _, ok := byID[g.ID]; !ok {
				order = append(order, g.ID)
			}
			byID[g.ID] = append(byID[g.ID], g.Members...)
		}
	}
	add(a)
	add(b)
	groupings := make([]*Grouping, 0, len(order))
	for _, id := range order {
		g, err := NewGrouping(byID[id])
		if err != nil {
			return nil, err
		}
		groupings = append(groupings, g)
	}
	return NewObjectList(groupings)
}

// FilterByType returns the sub-list whose Groupings claim type t.
func (l *ObjectList) FilterByType(t string) (*ObjectList, error) {
	var matched []*Grouping
	for _, g := range l.Groupings {
		if g.HasType(t) {
			matched = append(matched, g)
		}
	}
	return NewObjectList(matched)
}

// FilterBySource restricts every Grouping to its member from source,
// dropping Groupings with no such member (object_list.py.filter_by_source).
func (l *ObjectList) FilterBySource(source string) (*ObjectList, error) {
	var matched []*Grouping
	for _, g := range l.Groupings {
		ng, err := g.SelectSources(map[string]bool{source: true})
		if err != nil {
			return nil, err
		}
		if ng != nil {
			matched = append(matched, ng)
		}
	}
	return NewObjectList(matched)
}

// GetByID returns a single-element ObjectList for id, or an empty one.
func (l *ObjectList) GetByID(id string) (*ObjectList, error) {
	for _, g := range l.Groupings {
		if g.ID == id {
			return NewObjectList([]*Grouping{g})
		}
	}
	return NewObjectList(nil)
}

// UniqueIDs returns the multiset union of every member Grouping's unique_ids.
func (l *ObjectList) UniqueIDs() []UniqueID {
	var out []UniqueID
	for _, g := range l.Groupings {
		out = append(out, g.UniqueIDs()...)
	}
	return out
}

// IDTypes returns the union of every member Grouping's id_types.
func (l *ObjectList) IDTypes() []IDType {
	seen := make(map[IDType]bool)
	var out []IDType
	for _, g := range l.Groupings {
		for _, it := range g.IDTypes() {
			if !seen[it] {
				seen[it] = true
				out = append(out, it)
			}
		}
	}
	return out
}

// Types returns the distinct type names appearing across every member.
func (l *ObjectList) Types() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range l.Groupings {
		for _, t := range g.Types() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// AddObject appends a Grouping, asserting it introduces no duplicate
// unique_ids (object_list.py.add_object).
func (l *ObjectList) AddObject(g *Grouping) error {
	existing := make(map[UniqueID]bool)
	for _, uid := range l.UniqueIDs() {
		existing[uid] = true
	}
	for _, uid := range g.UniqueIDs() {
		if existing[uid] {
			return fmt.Errorf("duplicate object found: %s", uid)
		}
	}
	l.Groupings = append(l.Groupings, g)
	return nil
}

// Reset clears the FieldOverrides/SelectedFields overlay on every member
// that carries one, matching Execute-once step 1 (spec.md §4.6).
func (l *ObjectList) Reset() {
	for _, g := range l.Groupings {
		if len(g.FieldOverrides) > 0 || g.SelectedFields != nil {
			g.FieldOverrides = nil
			g.SelectedFields = nil
		}
	}
}
