// Package operator implements the required operator set from spec.md §4.4,
// one *value.Operator per entry, each with a declarative value.Schema and a
// value.Runner grounded on the corresponding file in
// original_source/sa/query_language/operators/.
package operator

import "github.com/sebitommy123/sa/value"

// registry holds every operator by name, looked up by the parser when it
// sees `.name(...)`.
var registry = map[string]*value.Operator{}

func register(op *value.Operator) *value.Operator {
	registry[op.Name] = op
	return op
}

// Lookup returns the operator named name, and whether it exists — used by
// the parser to resolve `.name(...)` calls (spec.md §4.2).
func Lookup(name string) (*value.Operator, bool) {
	op, ok := registry[name]
	return op, ok
}

// Names returns every registered operator name; the order is not
// guaranteed.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
