package value

import "sort"

// MapValue is the Value domain's string-keyed map.
type MapValue map[string]Value

func (MapValue) Kind() Kind { return KindMap }

func (m MapValue) Text() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := "{"
	for i, k := range keys {
		if i > 0 {
			s += ", "
		}
		s += k + ": " + m[k].Text()
	}
	return s + "}"
}
