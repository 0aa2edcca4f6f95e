package operator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sebitommy123/sa/value"
)

// typeStats collects, per type, the object count, contributing sources, and
// observed property names, exactly as describe/summary do in the original
// (analysis.py).
type typeStats struct {
	count      int
	sources    map[string]bool
	properties map[string]bool
}

func collectTypeStats(ol *value.ObjectList) (types []string, sources map[string]bool, stats map[string]*typeStats) {
	sources = make(map[string]bool)
	stats = make(map[string]*typeStats)
	typeSeen := make(map[string]bool)
	for _, g := range ol.Groupings {
		for _, src := range g.Sources() {
			sources[src] = true
		}
		for _, t := range g.Types() {
			if !typeSeen[t] {
				typeSeen[t] = true
				types = append(types, t)
			}
			st, ok := stats[t]
			if !ok {
				st = &typeStats{sources: make(map[string]bool), properties: make(map[string]bool)}
				stats[t] = st
			}
			st.count++
			for _, src := range g.Sources() {
				st.sources[src] = true
			}
			for _, f := range g.Fields() {
				st.properties[f] = true
			}
		}
	}
	sort.Strings(types)
	return types, sources, stats
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Describe implements describe (spec.md §4.4): a human-readable type/source
// schema summary over an ObjectList, grounded on
// analysis.py.describe_operator_runner.
var Describe = register(&value.Operator{
	Name: "describe",
	Schema: value.Schema{
		ContextValidator: value.Anything,
	},
	Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
		ol, ok := ctx.(*value.ObjectList)
		if !ok {
			return value.String(ctx.Text()), nil
		}
		if len(ol.Groupings) == 0 {
			return value.String("Empty ObjectList"), nil
		}
		types, sources, stats := collectTypeStats(ol)

		var parts []string
		parts = append(parts, fmt.Sprintf("ObjectList with %d objects", len(ol.Groupings)))
		if len(types) > 0 {
			parts = append(parts, "Types: "+strings.Join(types, ", "))
		}
		if len(sources) > 0 {
			parts = append(parts, "Sources: "+strings.Join(sortedKeys(sources), ", "))
		}
		for _, t := range types {
			st := stats[t]
			info := fmt.Sprintf("\n  %s (%d objects)", t, st.count)
			if len(st.sources) > 0 {
				info += " from sources: " + strings.Join(sortedKeys(st.sources), ", ")
			}
			if len(st.properties) > 0 {
				info += "\n    Properties: " + strings.Join(sortedKeys(st.properties), ", ")
			} else {
				info += "\n    No properties"
			}
			parts = append(parts, info)
		}
		return value.String(strings.Join(parts, "\n")), nil
	},
})

// Summary implements summary (spec.md §4.4): as describe, but ranks
// properties by unique-value variance when a type has more than 15
// properties, grounded on analysis.py.summary_operator_runner.
var Summary = register(&value.Operator{
	Name: "summary",
	Schema: value.Schema{
		ContextValidator: value.Anything,
	},
	Run: func(ctx value.Value, _ []value.Value, state value.RunState) (value.Value, error) {
		ol, ok := ctx.(*value.ObjectList)
		if !ok {
			return value.String(ctx.Text()), nil
		}
		if len(ol.Groupings) == 0 {
			return value.String("Empty ObjectList"), nil
		}
		types, sources, stats := collectTypeStats(ol)

		propertyValues := make(map[string]map[string]bool)
		for _, g := range ol.Groupings {
			for _, f := range g.Fields() {
				v, err := g.GetField(f, state)
				if err != nil {
					continue
				}
				if propertyValues[f] == nil {
					propertyValues[f] = make(map[string]bool)
				}
				propertyValues[f][v.Text()] = true
			}
		}
		variance := make(map[string]int, len(propertyValues))
		for f, vs := range propertyValues {
			variance[f] = len(vs)
		}

		var parts []string
		parts = append(parts, fmt.Sprintf("ObjectList with %d objects", len(ol.Groupings)))
		if len(types) > 0 {
			parts = append(parts, "Types: "+strings.Join(types, ", "))
		}
		if len(sources) > 0 {
			parts = append(parts, "Sources: "+strings.Join(sortedKeys(sources), ", "))
		}
		for _, t := range types {
			st := stats[t]
			info := fmt.Sprintf("\n  %s (%d objects)", t, st.count)
			if len(st.sources) > 0 {
				info += " from sources: " + strings.Join(sortedKeys(st.sources), ", ")
			}
			props := sortedKeys(st.properties)
			if len(props) == 0 {
				info += "\n    No properties"
			} else if len(props) > 15 {
				sort.Slice(props, func(i, j int) bool { return variance[props[i]] > variance[props[j]] })
				top := props[:15]
				info += fmt.Sprintf("\n    Properties (%d total, showing 15 most variable): %s", len(props), strings.Join(top, ", "))
			} else {
				info += "\n    Properties: " + strings.Join(props, ", ")
			}
			parts = append(parts, info)
		}
		return value.String(strings.Join(parts, "\n")), nil
	},
})
