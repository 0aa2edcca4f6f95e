package value

import "fmt"

// IDType is an (id, type) pair (spec.md §3, Grouping.id_types). Used both to
// narrow a Scope (set_id_types) and as a stable dedup key in ObjectList
// validation.
type IDType struct {
	ID   string
	Type string
}

func (t IDType) String() string { return fmt.Sprintf("%s:%s", t.Type, t.ID) }

// UniqueID is (id, type, source) — the finer-grained key ObjectList
// uniqueness is checked against (spec.md §3, "unique_ids").
type UniqueID struct {
	ID     string
	Type   string
	Source string
}

func (u UniqueID) String() string { return fmt.Sprintf("%s:%s@%s", u.Type, u.ID, u.Source) }
