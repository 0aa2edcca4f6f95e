package operator

import (
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/value"
)

// Slice implements slice(i | i:j | i:j:k) (spec.md §4.4): Python-style
// slice semantics over a list or ObjectList, grounded on
// slice.py.slice_operator_runner. Arguments are Int bounds or an empty
// String standing in for an omitted bound.
var Slice = register(&value.Operator{
	Name: "slice",
	Schema: value.Schema{
		ContextValidator: value.Either("an object list or list", value.IsObjectList, value.IsList),
		ContextReason:    "an ObjectList or list (e.g. list[2])",
		Variadic: &value.ArgSpec{
			Name:      "bound",
			Validator: value.Validator{Name: "an integer or empty string", Check: isSliceBound},
			Reason:    "an integer or empty string",
		},
	},
	Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
		if len(args) == 0 {
			return nil, qerr.New(qerr.KindParse, "slice operator expects at least 1 argument")
		}
		if len(args) > 3 {
			return nil, qerr.New(qerr.KindParse, "slice operator expects at most 3 arguments")
		}
		if len(args) == 1 {
			if s, ok := args[0].(value.String); ok && s == "" {
				return nil, qerr.New(qerr.KindParse, "invalid slice syntax: []")
			}
		}

		var n int
		switch t := ctx.(type) {
		case *value.ObjectList:
			n = len(t.Groupings)
		case value.ListValue:
			n = len(t)
		}

		var idxs []int
		if len(args) == 1 {
			i := int(args[0].(value.Int))
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				idxs = nil
			} else {
				idxs = []int{i}
			}
		} else {
			start, stop, step, err := resolveSliceBounds(args, n)
			if err != nil {
				return nil, err
			}
			idxs = pythonSliceIndices(start, stop, step, n)
		}

		switch t := ctx.(type) {
		case *value.ObjectList:
			out := make([]*value.Grouping, len(idxs))
			for i, idx := range idxs {
				out[i] = t.Groupings[idx]
			}
			return value.NewObjectList(out)
		case value.ListValue:
			out := make(value.ListValue, len(idxs))
			for i, idx := range idxs {
				out[i] = t[idx]
			}
			return out, nil
		default:
			return nil, qerr.New(qerr.KindType, "slice: unsupported context %s", ctx.Kind())
		}
	},
})

func isSliceBound(v value.Value) bool {
	if _, ok := v.(value.Int); ok {
		return true
	}
	if s, ok := v.(value.String); ok && s == "" {
		return true
	}
	return false
}

func resolveSliceBounds(args []value.Value, n int) (start, stop, step int, err error) {
	step = 1
	hasStart, hasStop, hasStep := false, false, false
	var startV, stopV, stepV int
	if len(args) >= 1 {
		if i, ok := args[0].(value.Int); ok {
			startV, hasStart = int(i), true
		}
	}
	if len(args) >= 2 {
		if i, ok := args[1].(value.Int); ok {
			stopV, hasStop = int(i), true
		}
	}
	if len(args) >= 3 {
		if i, ok := args[2].(value.Int); ok {
			stepV, hasStep = int(i), true
		}
	}
	if hasStep {
		if stepV == 0 {
			return 0, 0, 0, qerr.New(qerr.KindParse, "slice step cannot be zero")
		}
		step = stepV
	}
	if hasStart {
		start = startV
	} else if step > 0 {
		start = 0
	} else {
		start = n - 1
	}
	if hasStop {
		stop = stopV
	} else if step > 0 {
		stop = n
	} else {
		stop = -n - 1
	}
	return start, stop, step, nil
}

// pythonSliceIndices reproduces Python's list[start:stop:step] index
// normalization (including negative indices and clamping).
func pythonSliceIndices(start, stop, step, n int) []int {
	norm := func(i int) int {
		if i < 0 {
			i += n
		}
		return i
	}
	var lo, hi int
	if step > 0 {
		s, e := norm(start), norm(stop)
		if s < 0 {
			s = 0
		}
		if s > n {
			s = n
		}
		if e < 0 {
			e = 0
		}
		if e > n {
			e = n
		}
		lo, hi = s, e
		idxs := make([]int, 0)
		for i := lo; i < hi; i += step {
			idxs = append(idxs, i)
		}
		return idxs
	}
	s, e := start, stop
	if s < 0 {
		s += n
	}
	if s >= n {
		s = n - 1
	}
	if s < -1 {
		s = -1
	}
	if e < -n-1 {
		e = -n - 1
	}
	ne := e
	if ne < 0 {
		ne += n
	}
	idxs := make([]int, 0)
	for i := s; i > ne && i >= 0; i += step {
		idxs = append(idxs, i)
	}
	return idxs
}
