package value_test

import (
	"testing"

	"github.com/sebitommy123/sa/value"
)

type chainFakeState struct {
	narrowedIDTypes []value.IDType
	allData         *value.ObjectList
}

func (s *chainFakeState) NarrowSetIDTypes(ids []value.IDType)            { s.narrowedIDTypes = ids }
func (s *chainFakeState) NarrowFilterType(string)                        {}
func (s *chainFakeState) NarrowFilterFields([]string)                    {}
func (s *chainFakeState) NarrowAddCondition(string, string, value.Value) {}
func (s *chainFakeState) Child() value.RunState                          { return &chainFakeState{allData: s.allData} }
func (s *chainFakeState) RunSubQuery(string) (value.Value, error)        { return value.Null{}, nil }
func (s *chainFakeState) AllData() *value.ObjectList                     { return s.allData }
func (s *chainFakeState) DescribeNeededScopes() string                   { return "" }

func addOne(name string) *value.Operator {
	return &value.Operator{
		Name: name,
		Schema: value.Schema{
			ContextValidator: value.Anything,
		},
		Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
			return value.Int(ctx.(value.Int) + 1), nil
		},
	}
}

func TestChainRunThreadsContextThroughEachNode(t *testing.T) {
	c := &value.Chain{Nodes: []value.OperatorNode{
		{Operator: addOne("add_one")},
		{Operator: addOne("add_one")},
		{Operator: addOne("add_one")},
	}}
	got, err := c.Run(value.Int(0), &chainFakeState{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.(value.Int) != 3 {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestOperatorNodeRunRejectsAContextThatFailsTheValidator(t *testing.T) {
	op := &value.Operator{
		Name: "wants_string",
		Schema: value.Schema{
			ContextValidator: value.IsString,
		},
		Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
			return ctx, nil
		},
	}
	c := &value.Chain{Nodes: []value.OperatorNode{{Operator: op}}}
	if _, err := c.Run(value.Int(1), &chainFakeState{}); err == nil {
		t.Fatal("expected a type error for an Int context against a string-only operator")
	}
}

func TestOperatorNodeRunPassesThroughAbsorbingNullWhenTheContextValidatorAcceptsIt(t *testing.T) {
	op := &value.Operator{
		Name: "wants_string",
		Schema: value.Schema{
			ContextValidator: value.AbsorbsNull(value.IsString),
		},
		Run: func(ctx value.Value, _ []value.Value, _ value.RunState) (value.Value, error) {
			t.Fatal("Run should not be called when context is an absorbing null")
			return nil, nil
		},
	}
	c := &value.Chain{Nodes: []value.OperatorNode{{Operator: op}}}
	got, err := c.Run(value.AbsorbingNull{}, &chainFakeState{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := got.(value.AbsorbingNull); !ok {
		t.Fatalf("got %v, want it to short-circuit as AbsorbingNull", got)
	}
}

func TestEvalArgumentsRejectsTheWrongArity(t *testing.T) {
	op := &value.Operator{
		Name: "takes_one",
		Schema: value.Schema{
			ContextValidator: value.Anything,
			Args:             []value.ArgSpec{{Name: "a", Validator: value.Anything}},
		},
		Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) { return ctx, nil },
	}
	node := value.OperatorNode{Operator: op, Arguments: []value.Value{value.Int(1), value.Int(2)}}
	c := &value.Chain{Nodes: []value.OperatorNode{node}}
	if _, err := c.Run(value.Null{}, &chainFakeState{}); err == nil {
		t.Fatal("expected an arity error")
	}
}

func TestEvalArgumentsEvaluatesAChainArgumentAgainstContextWhenTheValidatorRejectsBareChains(t *testing.T) {
	var capturedArg value.Value
	op := &value.Operator{
		Name: "capture",
		Schema: value.Schema{
			ContextValidator: value.Anything,
			Args:             []value.ArgSpec{{Name: "a", Validator: value.IsValidQueryType}},
		},
		Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
			capturedArg = args[0]
			return ctx, nil
		},
	}
	argChain := &value.Chain{Nodes: []value.OperatorNode{{Operator: addOne("add_one")}}}
	node := value.OperatorNode{Operator: op, Arguments: []value.Value{argChain}}
	c := &value.Chain{Nodes: []value.OperatorNode{node}}
	if _, err := c.Run(value.Int(5), &chainFakeState{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if capturedArg == nil {
		t.Fatal("expected the argument to be captured")
	}
	if _, isChain := capturedArg.(*value.Chain); isChain {
		t.Fatal("expected the Chain argument to have been run against the context, not passed through raw")
	}
	if capturedArg.(value.Int) != 6 {
		t.Fatalf("got %v, want 6 (5 run through add_one)", capturedArg)
	}
}

func TestEvalArgumentsLeavesAChainArgumentUnevaluatedWhenTheValidatorAcceptsBareChains(t *testing.T) {
	var capturedArg value.Value
	op := &value.Operator{
		Name: "capture_body",
		Schema: value.Schema{
			ContextValidator: value.Anything,
			Args:             []value.ArgSpec{{Name: "body", Validator: value.IsChain}},
		},
		Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) {
			capturedArg = args[0]
			return ctx, nil
		},
	}
	argChain := &value.Chain{Nodes: []value.OperatorNode{{Operator: addOne("add_one")}}}
	node := value.OperatorNode{Operator: op, Arguments: []value.Value{argChain}}
	c := &value.Chain{Nodes: []value.OperatorNode{node}}
	if _, err := c.Run(value.Int(5), &chainFakeState{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, isChain := capturedArg.(*value.Chain); !isChain {
		t.Fatalf("got %v, want the raw unevaluated Chain to be passed through to Run", capturedArg)
	}
}

func TestVariadicArgumentsValidateEachArgumentAgainstTheSameSpec(t *testing.T) {
	op := &value.Operator{
		Name: "variadic_ints",
		Schema: value.Schema{
			ContextValidator: value.Anything,
			Variadic:         &value.ArgSpec{Name: "item", Validator: value.Either("an int", value.Validator{Name: "int", Check: func(v value.Value) bool { _, ok := v.(value.Int); return ok }})},
		},
		Run: func(ctx value.Value, args []value.Value, _ value.RunState) (value.Value, error) { return ctx, nil },
	}
	node := value.OperatorNode{Operator: op, Arguments: []value.Value{value.Int(1), value.Int(2), value.Int(3)}}
	c := &value.Chain{Nodes: []value.OperatorNode{node}}
	if _, err := c.Run(value.Null{}, &chainFakeState{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	badNode := value.OperatorNode{Operator: op, Arguments: []value.Value{value.Int(1), value.String("not an int")}}
	badChain := &value.Chain{Nodes: []value.OperatorNode{badNode}}
	if _, err := badChain.Run(value.Null{}, &chainFakeState{}); err == nil {
		t.Fatal("expected a type error for a non-Int variadic argument")
	}
}

func TestOperatorNodeRunNarrowsIDTypesWhenTheResultIsAGroupingOrObjectListWithIDTypes(t *testing.T) {
	g := mkGroupingT(t, "h1", "src-a", []string{"host"})
	op := &value.Operator{
		Name:   "returns_grouping",
		Schema: value.Schema{ContextValidator: value.Anything},
		Run: func(value.Value, []value.Value, value.RunState) (value.Value, error) {
			return g, nil
		},
	}
	st := &chainFakeState{}
	c := &value.Chain{Nodes: []value.OperatorNode{{Operator: op}}}
	if _, err := c.Run(value.Null{}, st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(st.narrowedIDTypes) == 0 {
		t.Fatal("expected NarrowSetIDTypes to be called with the Grouping's id types")
	}
}

func TestAbsorbsNullAlsoAcceptsEverythingTheWrappedValidatorAccepts(t *testing.T) {
	v := value.AbsorbsNull(value.IsString)
	if !v.Accepts(value.AbsorbingNull{}) {
		t.Fatal("expected AbsorbsNull to accept AbsorbingNull")
	}
	if !v.Accepts(value.String("x")) {
		t.Fatal("expected AbsorbsNull to still accept what the wrapped validator accepts")
	}
	if v.Accepts(value.Int(1)) {
		t.Fatal("expected AbsorbsNull to still reject what the wrapped validator rejects")
	}
}

func TestIsValidQueryTypeRejectsOnlyABareChain(t *testing.T) {
	if value.IsValidQueryType.Accepts(&value.Chain{}) {
		t.Fatal("expected IsValidQueryType to reject a bare Chain")
	}
	if !value.IsValidQueryType.Accepts(value.Int(1)) {
		t.Fatal("expected IsValidQueryType to accept a non-Chain value")
	}
}
