package operator_test

import (
	"testing"

	"github.com/sebitommy123/sa/value"
)

func mkGrouping(t *testing.T, id, source string, types []string, props map[string]value.Value) *value.Grouping {
	t.Helper()
	g, err := value.NewGrouping([]*value.RawObject{{ID: id, Types: types, Source: source, Properties: props}})
	if err != nil {
		t.Fatalf("NewGrouping: %v", err)
	}
	return g
}

func mkObjectList(t *testing.T, groupings ...*value.Grouping) *value.ObjectList {
	t.Helper()
	ol, err := value.NewObjectList(groupings)
	if err != nil {
		t.Fatalf("NewObjectList: %v", err)
	}
	return ol
}

func runOp(t *testing.T, op *value.Operator, ctx value.Value, args []value.Value, state value.RunState) (value.Value, error) {
	t.Helper()
	chain := &value.Chain{Nodes: []value.OperatorNode{{Operator: op, Arguments: args}}}
	return chain.Run(ctx, state)
}
