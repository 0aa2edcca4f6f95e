package operator_test

import (
	"testing"

	"github.com/sebitommy123/sa/operator"
	"github.com/sebitommy123/sa/value"
)

func TestToJSONRendersAGroupingAsAMergedViewMap(t *testing.T) {
	h1 := mkGrouping(t, "h1", "src", []string{"host"}, map[string]value.Value{"ip": value.String("10.0.0.1")})
	st := &fakeRunState{}
	got, err := runOp(t, operator.ToJSON, h1, nil, st)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := got.(value.MapValue)
	if m["__id__"].(value.String) != "h1" {
		t.Fatalf("got %v, want __id__ h1", m)
	}
	if m["ip"].(value.String) != "10.0.0.1" {
		t.Fatalf("got %v, want ip 10.0.0.1", m)
	}
}

func TestToJSONRendersAnObjectListAsAListOfMaps(t *testing.T) {
	h1 := mkGrouping(t, "h1", "src", []string{"host"}, nil)
	h2 := mkGrouping(t, "h2", "src", []string{"host"}, nil)
	ol := mkObjectList(t, h1, h2)

	st := &fakeRunState{}
	got, err := runOp(t, operator.ToJSON, ol, nil, st)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	list := got.(value.ListValue)
	if len(list) != 2 {
		t.Fatalf("got %v, want 2 elements", list)
	}
}

func TestToJSONPassesThroughOtherValuesUnchanged(t *testing.T) {
	st := &fakeRunState{}
	got, err := runOp(t, operator.ToJSON, value.Int(42), nil, st)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.(value.Int) != 42 {
		t.Fatalf("got %v, want 42 unchanged", got)
	}
}

func TestShowPlanDescribesTheChainWithoutRunningIt(t *testing.T) {
	st := &fakeRunState{}
	body := &value.Chain{Nodes: []value.OperatorNode{{Operator: operator.Count}}}
	got, err := runOp(t, operator.ShowPlan, value.Null{}, []value.Value{body}, st)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := string(got.(value.String))
	if text == "" {
		t.Fatal("expected a non-empty plan description")
	}
}
