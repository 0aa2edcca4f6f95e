package value_test

import (
	"testing"

	"github.com/sebitommy123/sa/value"
)

func TestIsTruthyTreatsNullsAndZerosAndEmptiesAsFalse(t *testing.T) {
	falsy := []value.Value{
		value.Null{},
		value.AbsorbingNull{},
		value.Bool(false),
		value.Int(0),
		value.Float(0),
		value.String(""),
		value.ListValue{},
		value.MapValue{},
		&value.ObjectList{},
	}
	for _, v := range falsy {
		if value.IsTruthy(v) {
			t.Errorf("IsTruthy(%#v) = true, want false", v)
		}
	}
}

func TestIsTruthyTreatsNonEmptyNonZeroValuesAsTrue(t *testing.T) {
	truthy := []value.Value{
		value.Bool(true),
		value.Int(1),
		value.Int(-1),
		value.Float(0.5),
		value.String("x"),
		value.ListValue{value.Int(1)},
		value.MapValue{"a": value.Int(1)},
	}
	for _, v := range truthy {
		if !value.IsTruthy(v) {
			t.Errorf("IsTruthy(%#v) = false, want true", v)
		}
	}
}

func TestEqualComparesScalarsByKindAndValue(t *testing.T) {
	cases := []struct {
		a, b value.Value
		want bool
	}{
		{value.Int(1), value.Int(1), true},
		{value.Int(1), value.Int(2), false},
		{value.String("a"), value.String("a"), true},
		{value.String("a"), value.String("b"), false},
		{value.Bool(true), value.Bool(true), true},
		{value.Int(1), value.String("1"), false},
	}
	for _, c := range cases {
		if got := value.Equal(c.a, c.b); got != c.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestEqualPromotesIntAndFloatForCrossKindNumericComparison(t *testing.T) {
	if !value.Equal(value.Int(2), value.Float(2.0)) {
		t.Fatal("expected Int(2) to equal Float(2.0)")
	}
	if value.Equal(value.Int(2), value.Float(2.5)) {
		t.Fatal("expected Int(2) to not equal Float(2.5)")
	}
}

func TestEqualComparesListsAndMapsElementwise(t *testing.T) {
	a := value.ListValue{value.Int(1), value.String("x")}
	b := value.ListValue{value.Int(1), value.String("x")}
	c := value.ListValue{value.Int(1), value.String("y")}
	if !value.Equal(a, b) {
		t.Fatal("expected equal lists to compare equal")
	}
	if value.Equal(a, c) {
		t.Fatal("expected differing lists to compare unequal")
	}

	m1 := value.MapValue{"a": value.Int(1)}
	m2 := value.MapValue{"a": value.Int(1)}
	m3 := value.MapValue{"a": value.Int(2)}
	if !value.Equal(m1, m2) {
		t.Fatal("expected equal maps to compare equal")
	}
	if value.Equal(m1, m3) {
		t.Fatal("expected differing maps to compare unequal")
	}
}

func TestEqualTreatsNilValuesAsEqualToEachOtherOnly(t *testing.T) {
	if !value.Equal(nil, nil) {
		t.Fatal("expected nil == nil")
	}
	if value.Equal(nil, value.Null{}) {
		t.Fatal("expected nil to not equal a non-nil Value")
	}
}

func TestHashKeyIsStableAndDistinguishesDifferingValues(t *testing.T) {
	a := value.ListValue{value.Int(1), value.String("x")}
	b := value.ListValue{value.Int(1), value.String("x")}
	c := value.ListValue{value.Int(2), value.String("x")}
	if value.HashKey(a) != value.HashKey(b) {
		t.Fatal("expected identical lists to hash identically")
	}
	if value.HashKey(a) == value.HashKey(c) {
		t.Fatal("expected differing lists to hash differently")
	}
}

func TestKindStringNamesEveryKind(t *testing.T) {
	kinds := []value.Kind{
		value.KindNull, value.KindAbsorbingNull, value.KindBool, value.KindInt,
		value.KindFloat, value.KindString, value.KindList, value.KindMap,
		value.KindGrouping, value.KindObjectList, value.KindCustom, value.KindChain,
	}
	for _, k := range kinds {
		if k.String() == "unknown" {
			t.Errorf("Kind(%d).String() = unknown, want a real name", k)
		}
	}
}
