package operator

import (
	"fmt"

	"github.com/sebitommy123/sa/value"
)

// groupingToJSON renders a Grouping's merged view as a dict, applying the
// merge rule field by field (spec.md §4.4 to_json, "Grouping -> dict of its
// merged view").
func groupingToJSON(g *value.Grouping, state value.RunState) (value.MapValue, error) {
	out := value.MapValue{
		"__id__":    value.String(g.ID),
		"__types__": stringListValue(g.Types()),
	}
	for _, f := range g.Fields() {
		v, err := g.GetField(f, state)
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

func stringListValue(ss []string) value.ListValue {
	out := make(value.ListValue, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return out
}

// ToJSON implements to_json (spec.md §4.4): the value domain's inverse —
// ObjectList becomes a list of merged-view dicts, Grouping becomes one
// merged-view dict, everything else passes through unchanged.
var ToJSON = register(&value.Operator{
	Name: "to_json",
	Schema: value.Schema{
		ContextValidator: value.IsValidQueryType,
	},
	Run: func(ctx value.Value, _ []value.Value, state value.RunState) (value.Value, error) {
		switch t := ctx.(type) {
		case *value.Grouping:
			return groupingToJSON(t, state)
		case *value.ObjectList:
			out := make(value.ListValue, len(t.Groupings))
			for i, g := range t.Groupings {
				m, err := groupingToJSON(g, state)
				if err != nil {
					return nil, err
				}
				out[i] = m
			}
			return out, nil
		default:
			return ctx, nil
		}
	},
})

// ShowPlan implements show_plan(chain) (spec.md §4.4): describes the chain
// and the current needed_scopes without running the chain.
var ShowPlan = register(&value.Operator{
	Name: "show_plan",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Args: []value.ArgSpec{
			{Name: "chain", Validator: value.IsChain, Reason: "a chain"},
		},
	},
	Run: func(_ value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		body := args[0].(*value.Chain)
		return value.String(fmt.Sprintf("Chain(%s) %s", body.Text(), state.DescribeNeededScopes())), nil
	},
})
