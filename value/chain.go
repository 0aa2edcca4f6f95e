package value

import (
	"github.com/sebitommy123/sa/qerr"
)

// RunState is the query runtime's interface as seen from inside the value
// domain: narrowing the scope tracker, spawning nested per-iteration state,
// running a sub-query, and reading the aggregate data. Concrete
// implementations live in package state; defining the interface here rather
// than importing that package keeps value a dependency leaf (spec.md §9's
// "circular references" note — value, scope and state would otherwise form
// a cycle through CustomValue.Resolve and Operator.Run both needing scope
// narrowing, and state needing value's types).
type RunState interface {
	// NarrowSetIDTypes narrows every scope whose NeedsIDTypes is true to
	// the subset of ids whose type matches (spec.md §4.5, set_id_types).
	NarrowSetIDTypes(ids []IDType)
	// NarrowFilterType keeps only scopes of the given type.
	NarrowFilterType(t string)
	// NarrowFilterFields intersects every scope's fields with fs.
	NarrowFilterFields(fs []string)
	// NarrowAddCondition appends a condition to every scope.
	NarrowAddCondition(field, op string, v Value)
	// Child returns a fresh nested RunState for one filter/map/foreach
	// iteration; its narrowings are discarded when the iteration ends
	// (spec.md §4.4, "state-machine note").
	Child() RunState
	// RunSubQuery parses and evaluates query against AllData() in a fresh
	// QueryState snapshot (spec.md §9, link/query CustomValue resolution;
	// DESIGN.md's "sub-query scope lifting" decision: snapshot, not lift).
	RunSubQuery(query string) (Value, error)
	// AllData returns the query's current aggregate ObjectList.
	AllData() *ObjectList
	// DescribeNeededScopes renders the current needed_scopes as a
	// human-friendly multi-line list (spec.md §4.5), used by show_plan.
	DescribeNeededScopes() string
}

// Validator reports whether v is an acceptable context or argument value,
// replacing the original's duck-typed isinstance checks with explicit
// predicates (spec.md §9).
type Validator struct {
	Name  string
	Check func(Value) bool
}

func (v Validator) Accepts(val Value) bool { return v.Check(val) }

// Either builds a Validator that accepts any value accepted by one of vs.
func Either(name string, vs ...Validator) Validator {
	return Validator{Name: name, Check: func(val Value) bool {
		for _, v := range vs {
			if v.Check(val) {
				return true
			}
		}
		return false
	}}
}

var (
	Anything           = Validator{Name: "anything", Check: func(Value) bool { return true }}
	IsList             = Validator{Name: "a list", Check: func(v Value) bool { _, ok := v.(ListValue); return ok }}
	IsString           = Validator{Name: "a string", Check: func(v Value) bool { _, ok := v.(String); return ok }}
	IsDict             = Validator{Name: "a map", Check: func(v Value) bool { _, ok := v.(MapValue); return ok }}
	IsObjectList       = Validator{Name: "an object list", Check: func(v Value) bool { _, ok := v.(*ObjectList); return ok }}
	IsSingleObjectList = Validator{Name: "a single-element object list", Check: func(v Value) bool {
		ol, ok := v.(*ObjectList)
		return ok && len(ol.Groupings) == 1
	}}
	IsObjectGrouping = Validator{Name: "an object", Check: func(v Value) bool { _, ok := v.(*Grouping); return ok }}
	IsValidPrimitive = Validator{Name: "a primitive", Check: func(v Value) bool {
		switch v.(type) {
		case Null, AbsorbingNull, Bool, Int, Float, String:
			return true
		default:
			return false
		}
	}}
	// IsValidQueryType accepts anything except a bare Chain (a chain must
	// always be evaluated before reaching an operator runner).
	IsValidQueryType = Validator{Name: "a query value", Check: func(v Value) bool {
		_, isChain := v.(*Chain)
		return !isChain
	}}
	IsValidSAType = Validator{Name: "a valid value", Check: func(Value) bool { return true }}
	// IsChain accepts a raw, unevaluated Chain — used by operators (filter,
	// map, select, foreach) whose argument is a body to run per-element
	// rather than a value to evaluate once against the outer context.
	IsChain = Validator{Name: "a chain", Check: func(v Value) bool { _, ok := v.(*Chain); return ok }}
)

// AbsorbsNull wraps a Validator so it also accepts AbsorbingNull, per the
// "If the validator accepts AbsorbingNull..." rule (spec.md §4.3).
func AbsorbsNull(v Validator) Validator {
	return Validator{Name: v.Name, Check: func(val Value) bool {
		if _, ok := val.(AbsorbingNull); ok {
			return true
		}
		return v.Check(val)
	}}
}

// ArgSpec is one positional argument's declarative contract.
type ArgSpec struct {
	Name      string
	Validator Validator
	Reason    string
}

// Schema is an operator's full declarative contract (spec.md §4.3).
type Schema struct {
	ContextValidator Validator
	ContextReason    string
	Args             []ArgSpec
	// Variadic, when set, declares this operator to accept any number of
	// arguments (spec.md §4.4 select(field_or_chain, ...)), each validated
	// against this single spec instead of the fixed-arity Args list.
	Variadic *ArgSpec
}

// Runner is an operator's evaluation function. input is the context value;
// args have already been validated (and, for Chain arguments, evaluated)
// against the operator's Schema by EvalNode.
type Runner func(input Value, args []Value, state RunState) (Value, error)

// Operator is a named runner with a declarative schema (spec.md §4.3).
type Operator struct {
	Name   string
	Schema Schema
	Run    Runner
}

// OperatorNode is a single call site in a Chain: an operator, its raw
// (possibly-Chain) arguments, and the source Area for diagnostics.
type OperatorNode struct {
	Operator  *Operator
	Arguments []Value
	Area      qerr.Area
}

// Chain is an ordered sequence of OperatorNodes (spec.md §3).
type Chain struct {
	Nodes []OperatorNode
}

func (*Chain) Kind() Kind { return KindChain }
func (c *Chain) Text() string {
	s := ""
	for _, n := range c.Nodes {
		s += "." + n.Operator.Name + "(...)"
	}
	return s
}

// Run evaluates the chain left-to-right, threading context through each
// node (spec.md §4.3, Chain.run).
func (c *Chain) Run(input Value, state RunState) (Value, error) {
	context := input
	for _, node := range c.Nodes {
		result, err := node.run(context, state)
		if err != nil {
			return nil, err
		}
		context = result
	}
	return context, nil
}

// run implements the four steps of OperatorNode.run from spec.md §4.3.
func (n OperatorNode) run(input Value, state RunState) (Value, error) {
	if _, ok := input.(AbsorbingNull); ok && acceptsAbsorbing(n.Operator.Schema.ContextValidator) {
		return input, nil
	}
	if !n.Operator.Schema.ContextValidator.Accepts(input) {
		reason := n.Operator.Schema.ContextReason
		if reason == "" {
			reason = n.Operator.Schema.ContextValidator.Name
		}
		return nil, qerr.WithArea(qerr.New(qerr.KindType, "%s: context must be %s, got %s", n.Operator.Name, reason, input.Kind()), n.Area)
	}

	args, err := evalArguments(n.Operator, input, n.Arguments, state)
	if err != nil {
		return nil, qerr.WithArea(err, n.Area)
	}

	result, err := n.Operator.Run(input, args, state)
	if err != nil {
		return nil, qerr.WithArea(err, n.Area)
	}

	switch r := result.(type) {
	case *Grouping:
		if len(r.IDTypes()) > 0 {
			state.NarrowSetIDTypes(r.IDTypes())
		}
	case *ObjectList:
		if len(r.IDTypes()) > 0 {
			state.NarrowSetIDTypes(r.IDTypes())
		}
	}
	return result, nil
}

func acceptsAbsorbing(v Validator) bool {
	var an Value = AbsorbingNull{}
	return v.Check(an)
}

// evalArguments enforces arity, evaluates Chain arguments against the
// current context when needed, and validates each argument (spec.md §4.3).
func evalArguments(op *Operator, input Value, rawArgs []Value, state RunState) ([]Value, error) {
	if op.Schema.Variadic != nil {
		return evalVariadicArguments(op, input, rawArgs, state)
	}
	specs := op.Schema.Args
	if len(rawArgs) != len(specs) {
		return nil, qerr.New(qerr.KindParse, "%s expects %d argument(s), got %d", op.Name, len(specs), len(rawArgs))
	}
	out := make([]Value, len(rawArgs))
	for i, spec := range specs {
		v := rawArgs[i]
		if !spec.Validator.Accepts(v) {
			if ch, ok := v.(*Chain); ok {
				result, err := ch.Run(input, state)
				if err != nil {
					return nil, err
				}
				v = result
			}
		}
		if _, ok := v.(AbsorbingNull); ok {
			if acceptsAbsorbing(spec.Validator) {
				out[i] = v
				continue
			}
		}
		if !spec.Validator.Accepts(v) {
			reason := spec.Reason
			if reason == "" {
				reason = spec.Validator.Name
			}
			return nil, qerr.New(qerr.KindType, "%s: argument %q must be %s, got %s", op.Name, spec.Name, reason, v.Kind())
		}
		out[i] = v
	}
	return out, nil
}

// evalVariadicArguments handles operators declaring Schema.Variadic: every
// raw argument is validated (and, if it's a Chain failing the spec,
// evaluated against input first) against the same ArgSpec.
func evalVariadicArguments(op *Operator, input Value, rawArgs []Value, state RunState) ([]Value, error) {
	spec := op.Schema.Variadic
	out := make([]Value, len(rawArgs))
	for i, v := range rawArgs {
		if !spec.Validator.Accepts(v) {
			if ch, ok := v.(*Chain); ok {
				result, err := ch.Run(input, state)
				if err != nil {
					return nil, err
				}
				v = result
			}
		}
		if _, ok := v.(AbsorbingNull); ok && acceptsAbsorbing(spec.Validator) {
			out[i] = v
			continue
		}
		if !spec.Validator.Accepts(v) {
			reason := spec.Reason
			if reason == "" {
				reason = spec.Validator.Name
			}
			return nil, qerr.New(qerr.KindType, "%s: argument %d must be %s, got %s", op.Name, i, reason, v.Kind())
		}
		out[i] = v
	}
	return out, nil
}
