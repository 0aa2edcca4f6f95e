package operator

import (
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/value"
)

// chainToCondition recognizes the exact pattern equals(get_field(f), v)
// (spec.md §4.5, "Condition extraction heuristic"), returning the
// (field, "==", literal) triple or ok=false for anything else.
func chainToCondition(c *value.Chain) (field string, op string, lit value.Value, ok bool) {
	if c == nil || len(c.Nodes) != 1 {
		return "", "", nil, false
	}
	n := c.Nodes[0]
	if n.Operator.Name != "equals" || len(n.Arguments) != 2 {
		return "", "", nil, false
	}
	left, ok := n.Arguments[0].(*value.Chain)
	if !ok || len(left.Nodes) != 1 {
		return "", "", nil, false
	}
	getField := left.Nodes[0]
	if getField.Operator.Name != "get_field" || len(getField.Arguments) == 0 {
		return "", "", nil, false
	}
	fieldStr, ok := getField.Arguments[0].(value.String)
	if !ok {
		return "", "", nil, false
	}
	if _, isChain := n.Arguments[1].(*value.Chain); isChain {
		return "", "", nil, false
	}
	return string(fieldStr), "==", n.Arguments[1], true
}

// elements extracts the iterable elements of ctx for filter/map/foreach,
// along with whether they should be re-wrapped as single-element
// *value.ObjectList when running the body chain (so Grouping-level
// operators keep working inside the body), matching the original's
// "ObjectList([grouped_object])" wrapping.
func elements(ctx value.Value) (items []value.Value, wrapAsSingletonObjectList bool, ok bool) {
	switch t := ctx.(type) {
	case *value.ObjectList:
		items = make([]value.Value, len(t.Groupings))
		for i, g := range t.Groupings {
			items[i] = g
		}
		return items, true, true
	case value.ListValue:
		return []value.Value(t), false, true
	default:
		return nil, false, false
	}
}

func runBody(body *value.Chain, element value.Value, wrapAsSingletonObjectList bool, state value.RunState) (value.Value, error) {
	childState := state.Child()
	input := element
	if wrapAsSingletonObjectList {
		if g, ok := element.(*value.Grouping); ok {
			ol, err := value.NewObjectList([]*value.Grouping{g})
			if err != nil {
				return nil, err
			}
			input = ol
		}
	}
	return body.Run(input, childState)
}

// Filter implements filter(chain) (spec.md §4.4).
var Filter = register(&value.Operator{
	Name: "filter",
	Schema: value.Schema{
		ContextValidator: value.Either("an object list or list", value.IsObjectList, value.IsList),
		ContextReason:    "an ObjectList or list",
		Args: []value.ArgSpec{
			{Name: "chain", Validator: value.IsChain, Reason: "a chain"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		body := args[0].(*value.Chain)

		if field, op, lit, ok := chainToCondition(body); ok {
			state.NarrowAddCondition(field, op, lit)
		}

		items, wrap, ok := elements(ctx)
		if !ok {
			return nil, qerr.New(qerr.KindType, "filter: context must be an ObjectList or list, got %s", ctx.Kind())
		}

		var survivorGroupings []*value.Grouping
		var survivorValues value.ListValue
		isObjectList := ctx.Kind() == value.KindObjectList

		for _, item := range items {
			result, err := runBody(body, item, wrap, state)
			if err != nil {
				return nil, err
			}
			if _, absorbed := result.(value.AbsorbingNull); absorbed {
				continue
			}
			b, ok := result.(value.Bool)
			if !ok {
				return nil, qerr.New(qerr.KindType, "filter expression result must be a boolean, got %s", result.Kind())
			}
			if !bool(b) {
				continue
			}
			if isObjectList {
				survivorGroupings = append(survivorGroupings, item.(*value.Grouping))
			} else {
				survivorValues = append(survivorValues, item)
			}
		}
		if isObjectList {
			return value.NewObjectList(survivorGroupings)
		}
		return survivorValues, nil
	},
})

// Map implements map(chain) (spec.md §4.4): collects results; if every
// surviving result is a Grouping, returns an ObjectList, else a list.
var Map = register(&value.Operator{
	Name: "map",
	Schema: value.Schema{
		ContextValidator: value.Either("an object list or list", value.IsObjectList, value.IsList),
		ContextReason:    "an ObjectList or list",
		Args: []value.ArgSpec{
			{Name: "chain", Validator: value.IsChain, Reason: "a chain"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		body := args[0].(*value.Chain)
		items, wrap, ok := elements(ctx)
		if !ok {
			return nil, qerr.New(qerr.KindType, "map: context must be an ObjectList or list, got %s", ctx.Kind())
		}
		return runMapBody(body, items, wrap, state)
	},
})

func runMapBody(body *value.Chain, items []value.Value, wrap bool, state value.RunState) (value.Value, error) {
	var results value.ListValue
	for _, item := range items {
		result, err := runBody(body, item, wrap, state)
		if err != nil {
			return nil, err
		}
		if _, absorbed := result.(value.AbsorbingNull); absorbed {
			continue
		}
		results = append(results, result)
	}
	if len(results) == 0 {
		return value.ListValue(nil), nil
	}
	allGroupings := true
	groupings := make([]*value.Grouping, len(results))
	for i, r := range results {
		g, ok := r.(*value.Grouping)
		if !ok {
			allGroupings = false
			break
		}
		groupings[i] = g
	}
	if allGroupings {
		return value.NewObjectList(groupings)
	}
	return results, nil
}

// Foreach implements `{ expr, expr, ... }` (spec.md §4.2, §9 open
// question). Decision recorded in DESIGN.md: foreach always returns a
// value.ListValue, regardless of the element kind each body chain produces
// — it does not attempt map's "all Groupings become an ObjectList" folding,
// since its bodies are independent expressions rather than one shared
// per-element body.
var Foreach = register(&value.Operator{
	Name: "foreach",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Variadic:         &value.ArgSpec{Name: "expr", Validator: value.Anything},
	},
	Run: func(ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		results := make(value.ListValue, 0, len(args))
		for _, a := range args {
			body, ok := a.(*value.Chain)
			if !ok {
				results = append(results, a)
				continue
			}
			childState := state.Child()
			r, err := body.Run(ctx, childState)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		return results, nil
	},
})

// Select implements select(field_or_chain, ...) (spec.md §4.4). Arguments
// are either string literals or chains evaluated once against ctx to
// produce a field name.
var Select = register(&value.Operator{
	Name: "select",
	Schema: value.Schema{
		ContextValidator: value.Either("a grouping, object list, or dict", value.IsObjectGrouping, value.IsObjectList, value.IsDict),
		ContextReason:    "an ObjectList, ObjectGrouping, or dict",
		Variadic:         &value.ArgSpec{Name: "field", Validator: value.IsString, Reason: "a string"},
	},
	Run: func(ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		fields := make([]string, 0, len(args))
		for _, a := range args {
			s, ok := a.(value.String)
			if !ok {
				return nil, qerr.New(qerr.KindType, "select arguments must be strings, got %s", a.Kind())
			}
			fields = append(fields, string(s))
		}
		state.NarrowFilterFields(fields)

		fieldSet := make(map[string]bool, len(fields))
		for _, f := range fields {
			fieldSet[f] = true
		}

		switch t := ctx.(type) {
		case value.MapValue:
			out := make(value.MapValue, len(fields))
			for _, f := range fields {
				if v, ok := t[f]; ok {
					out[f] = v
				}
			}
			return out, nil
		case *value.Grouping:
			return t.SelectFields(fieldSet), nil
		case *value.ObjectList:
			selected := make([]*value.Grouping, len(t.Groupings))
			for i, g := range t.Groupings {
				selected[i] = g.SelectFields(fieldSet)
			}
			return value.NewObjectList(selected)
		default:
			return nil, qerr.New(qerr.KindType, "select must be called on an ObjectList, ObjectGrouping, or dict, got %s", ctx.Kind())
		}
	},
})

// Includes implements includes(value) (spec.md §4.4).
var Includes = register(&value.Operator{
	Name: "includes",
	Schema: value.Schema{
		ContextValidator: value.Either("a list or string", value.IsList, value.IsString),
		ContextReason:    "a list or string",
		Args: []value.ArgSpec{
			{Name: "value", Validator: value.IsValidQueryType},
		},
	},
	Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		needle := args[0]
		switch t := ctx.(type) {
		case value.ListValue:
			for _, e := range t {
				if value.Equal(e, needle) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		case value.String:
			s, ok := needle.(value.String)
			if !ok {
				return value.Bool(false), nil
			}
			return value.Bool(containsString(string(t), string(s))), nil
		default:
			return nil, qerr.New(qerr.KindType, "includes: context must be a list or string, got %s", ctx.Kind())
		}
	},
})

func containsString(haystack, needle string) bool {
	return len(needle) == 0 || (len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// Flatten implements flatten (spec.md §4.4).
var Flatten = register(&value.Operator{
	Name: "flatten",
	Schema: value.Schema{
		ContextValidator: value.IsList,
	},
	Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
		list := ctx.(value.ListValue)
		if len(list) == 0 {
			return value.ListValue(nil), nil
		}
		for _, item := range list {
			if item.Kind() != value.KindList {
				return list, nil
			}
		}
		var out value.ListValue
		for _, item := range list {
			out = append(out, item.(value.ListValue)...)
		}
		return out, nil
	},
})

// Unique implements unique: distinct elements, first-occurrence order
// preserved (DESIGN.md decision, grounded on object_list.py's insertion
// order semantics).
var Unique = register(&value.Operator{
	Name: "unique",
	Schema: value.Schema{
		ContextValidator: value.IsList,
		ContextReason:    "a list",
	},
	Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
		list := ctx.(value.ListValue)
		seen := make(map[string]bool, len(list))
		var out value.ListValue
		for _, item := range list {
			key := value.HashKey(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
		return out, nil
	},
})

// Count implements count: context ObjectList or list (spec.md §4.4).
var Count = register(&value.Operator{
	Name: "count",
	Schema: value.Schema{
		ContextValidator: value.Either("an object list or list", value.IsObjectList, value.IsList),
		ContextReason:    "an ObjectList or list",
	},
	Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
		switch t := ctx.(type) {
		case *value.ObjectList:
			return value.Int(len(t.Groupings)), nil
		case value.ListValue:
			return value.Int(len(t)), nil
		default:
			return nil, qerr.New(qerr.KindType, "count: context must be an ObjectList or list, got %s", ctx.Kind())
		}
	},
})

// Any implements any: context list, ObjectList, or primitive (spec.md §4.4).
var Any = register(&value.Operator{
	Name: "any",
	Schema: value.Schema{
		ContextValidator: value.Anything,
	},
	Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
		switch t := ctx.(type) {
		case *value.ObjectList:
			return value.Bool(len(t.Groupings) > 0), nil
		case value.ListValue:
			return value.Bool(len(t) > 0), nil
		default:
			return value.Bool(value.IsTruthy(t)), nil
		}
	},
})

// Types implements types: context ObjectList; returns distinct type names
// (spec.md §4.4).
var Types = register(&value.Operator{
	Name: "types",
	Schema: value.Schema{
		ContextValidator: value.IsObjectList,
		ContextReason:    "an ObjectList",
	},
	Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
		ol := ctx.(*value.ObjectList)
		types := ol.Types()
		out := make(value.ListValue, len(types))
		for i, t := range types {
			out[i] = value.String(t)
		}
		return out, nil
	},
})
