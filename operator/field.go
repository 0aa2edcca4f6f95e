package operator

import (
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/value"
)

func groupingFromContext(ctx value.Value) (*value.Grouping, bool) {
	switch t := ctx.(type) {
	case *value.Grouping:
		return t, true
	case *value.ObjectList:
		if len(t.Groupings) == 1 {
			return t.Groupings[0], true
		}
	}
	return nil, false
}

// GetField implements get_field(field_name, return_none_if_missing,
// return_all_values) (spec.md §4.4, grounded on
// field_operations.py.get_field_operator_runner).
var GetField = register(&value.Operator{
	Name: "get_field",
	Schema: value.Schema{
		ContextValidator: value.AbsorbsNull(value.Either("a grouping, single-element object list, or map", value.IsObjectGrouping, value.IsSingleObjectList, value.IsDict)),
		ContextReason:    "an individual object or a dict",
		Args: []value.ArgSpec{
			{Name: "field_name", Validator: value.IsString, Reason: "a string"},
			{Name: "return_none_if_missing", Validator: value.Validator{Name: "a bool", Check: isBool}, Reason: "a bool"},
			{Name: "return_all_values", Validator: value.Validator{Name: "a bool", Check: isBool}, Reason: "a bool"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
		fieldName := string(args[0].(value.String))
		returnNoneIfMissing := bool(args[1].(value.Bool))
		returnAllValues := bool(args[2].(value.Bool))

		state.NarrowFilterFields([]string{fieldName})

		if m, ok := ctx.(value.MapValue); ok {
			v, ok := m[fieldName]
			if !ok {
				if returnNoneIfMissing {
					return value.AbsorbingNull{}, nil
				}
				return nil, qerr.NewField("field %q not found in dict", fieldName)
			}
			return v, nil
		}

		if _, ok := ctx.(value.AbsorbingNull); ok {
			return value.AbsorbingNull{}, nil
		}

		g, ok := groupingFromContext(ctx)
		if !ok {
			return nil, qerr.New(qerr.KindType, "get_field: context must be an individual object or a dict, got %s", ctx.Kind())
		}

		if fieldName == "__id__" {
			return value.String(g.ID), nil
		}

		if returnAllValues {
			values, err := g.GetAllFieldValues(fieldName, state)
			if err != nil {
				return nil, err
			}
			return value.ListValue(values), nil
		}

		if !g.HasField(fieldName) {
			if returnNoneIfMissing {
				return value.AbsorbingNull{}, nil
			}
			return nil, qerr.NewField("field %q not found in object %s", fieldName, g.Name())
		}

		return g.GetField(fieldName, state)
	},
})

func isBool(v value.Value) bool {
	_, ok := v.(value.Bool)
	return ok
}

// HasField implements has_field(field_name): Bool (spec.md §4.4).
var HasField = register(&value.Operator{
	Name: "has_field",
	Schema: value.Schema{
		ContextValidator: value.Either("a single-element object list, object, or dict", value.IsSingleObjectList, value.IsObjectGrouping, value.IsDict),
		Args: []value.ArgSpec{
			{Name: "field_name", Validator: value.IsString, Reason: "a string"},
		},
	},
	Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		fieldName := string(args[0].(value.String))
		if m, ok := ctx.(value.MapValue); ok {
			_, ok := m[fieldName]
			return value.Bool(ok), nil
		}
		g, ok := groupingFromContext(ctx)
		if !ok {
			if ol, ok := ctx.(*value.ObjectList); ok && len(ol.Groupings) > 0 {
				g = ol.Groupings[0]
			} else {
				return nil, qerr.New(qerr.KindType, "has_field: context must be an individual object or a dict, got %s", ctx.Kind())
			}
		}
		return value.Bool(g.HasField(fieldName)), nil
	},
})
