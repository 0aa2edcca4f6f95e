package operator

import (
	"regexp"

	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/value"
)

// Equals implements spec.md §4.4 equals(left, right): absorbs null, else
// scalar/structural equality (grounded on comparison.py.equals_operator_runner).
var Equals = register(&value.Operator{
	Name: "equals",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Args: []value.ArgSpec{
			{Name: "left", Validator: value.AbsorbsNull(value.IsValidQueryType), Reason: "a valid value"},
			{Name: "right", Validator: value.AbsorbsNull(value.IsValidQueryType), Reason: "a valid value"},
		},
	},
	Run: func(_ value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		left, right := args[0], args[1]
		if isAbsorbing(left) || isAbsorbing(right) {
			return value.AbsorbingNull{}, nil
		}
		return value.Bool(value.Equal(left, right)), nil
	},
})

// RegexEquals implements regex_equals(left, right) (spec.md §4.4).
var RegexEquals = register(&value.Operator{
	Name: "regex_equals",
	Schema: value.Schema{
		ContextValidator: value.Anything,
		Args: []value.ArgSpec{
			{Name: "left", Validator: value.AbsorbsNull(value.IsString), Reason: "a string"},
			{Name: "right", Validator: value.AbsorbsNull(value.IsString), Reason: "a string"},
		},
	},
	Run: func(_ value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		if isAbsorbing(args[0]) || isAbsorbing(args[1]) {
			return value.AbsorbingNull{}, nil
		}
		left := string(args[0].(value.String))
		pattern := string(args[1].(value.String))
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, qerr.New(qerr.KindRegex, "invalid regex pattern %q: %v", pattern, err)
		}
		return value.Bool(re.MatchString(left)), nil
	},
})

func isAbsorbing(v value.Value) bool {
	_, ok := v.(value.AbsorbingNull)
	return ok
}
