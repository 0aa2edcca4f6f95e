package operator

import (
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/value"
)

// GetByID implements get_by_id(id): context ObjectList; returns a
// single-element ObjectList or an empty one (spec.md §4.4, grounded on
// object_operations.py.get_by_id_operator_runner).
var GetByID = register(&value.Operator{
	Name: "get_by_id",
	Schema: value.Schema{
		ContextValidator: value.IsObjectList,
		ContextReason:    "an ObjectList",
		Args: []value.ArgSpec{
			{Name: "obj_id", Validator: value.IsString, Reason: "a string"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		ol := ctx.(*value.ObjectList)
		id := string(args[0].(value.String))
		return ol.GetByID(id)
	},
})

// FilterByType implements filter_by_type(type): context ObjectList; keeps
// Groupings claiming that type, and narrows needed_scopes via filter_type
// (spec.md §4.4, §4.5).
var FilterByType = register(&value.Operator{
	Name: "filter_by_type",
	Schema: value.Schema{
		ContextValidator: value.IsObjectList,
		ContextReason:    "an ObjectList",
		Args: []value.ArgSpec{
			{Name: "type_name", Validator: value.IsString, Reason: "a string"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		ol := ctx.(*value.ObjectList)
		t := string(args[0].(value.String))
		state.NarrowFilterType(t)
		return ol.FilterByType(t)
	},
})

// FilterBySource implements filter_by_source(source): context ObjectList
// or Grouping; restricts each Grouping to its member from that source,
// dropping empties (spec.md §4.4).
var FilterBySource = register(&value.Operator{
	Name: "filter_by_source",
	Schema: value.Schema{
		ContextValidator: value.Either("an object list or grouping", value.IsObjectList, value.IsObjectGrouping),
		ContextReason:    "an ObjectList or ObjectGrouping",
		Args: []value.ArgSpec{
			{Name: "source_name", Validator: value.IsString, Reason: "a string"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		source := string(args[0].(value.String))
		switch t := ctx.(type) {
		case *value.Grouping:
			ng, err := t.SelectSources(map[string]bool{source: true})
			if err != nil {
				return nil, err
			}
			if ng == nil {
				return value.AbsorbingNull{}, nil
			}
			return ng, nil
		case *value.ObjectList:
			return t.FilterBySource(source)
		default:
			return nil, qerr.New(qerr.KindType, "filter_by_source: unsupported context %s", ctx.Kind())
		}
	},
})
