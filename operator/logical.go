package operator

import (
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/value"
)

// And implements and(left, right): null-coerces to false, boolean-coerces
// otherwise (spec.md §4.4, grounded on logical.py.and_operator_runner).
var And = register(&value.Operator{
	Name: "and",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Args: []value.ArgSpec{
			{Name: "left", Validator: value.IsValidQueryType},
			{Name: "right", Validator: value.IsValidQueryType},
		},
	},
	Run: func(_ value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		return value.Bool(value.IsTruthy(args[0]) && value.IsTruthy(args[1])), nil
	},
})

// Or implements or(left, right).
var Or = register(&value.Operator{
	Name: "or",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Args: []value.ArgSpec{
			{Name: "left", Validator: value.IsValidQueryType},
			{Name: "right", Validator: value.IsValidQueryType},
		},
	},
	Run: func(_ value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		return value.Bool(value.IsTruthy(args[0]) || value.IsTruthy(args[1])), nil
	},
})

// Add implements add(left, right): numeric addition (promoting Int→Float as
// needed) or string concatenation (spec.md §4.4).
var Add = register(&value.Operator{
	Name: "add",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Args: []value.ArgSpec{
			{Name: "left", Validator: value.IsValidQueryType, Reason: "a valid value"},
			{Name: "right", Validator: value.IsValidQueryType, Reason: "a valid value"},
		},
	},
	Run: func(_ value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		left, right := args[0], args[1]
		if ls, lok := left.(value.String); lok {
			if rs, rok := right.(value.String); rok {
				return value.String(string(ls) + string(rs)), nil
			}
		}
		if li, lok := left.(value.Int); lok {
			if ri, rok := right.(value.Int); rok {
				return li + ri, nil
			}
		}
		lf, lok := numericValue(left)
		rf, rok := numericValue(right)
		if lok && rok {
			return value.Float(lf + rf), nil
		}
		return nil, qerr.New(qerr.KindType, "add operator can only be used with numbers or strings, got %s and %s", left.Kind(), right.Kind())
	},
})

func numericValue(v value.Value) (float64, bool) {
	switch t := v.(type) {
	case value.Int:
		return float64(t), true
	case value.Float:
		return float64(t), true
	default:
		return 0, false
	}
}
