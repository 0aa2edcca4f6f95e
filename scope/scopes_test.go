package scope_test

import (
	"testing"

	"github.com/sebitommy123/sa/scope"
	"github.com/sebitommy123/sa/value"
)

func TestNewDeduplicatesByKey(t *testing.T) {
	a := scope.Scope{Provider: "p1", Type: "host", Fields: []string{"ip"}}
	b := a
	s := scope.New(a, b)
	if s.Len() != 1 {
		t.Fatalf("got %d scopes, want 1 after deduplication", s.Len())
	}
}

func TestFreshDropsConditionsAndIDTypesOnEveryMember(t *testing.T) {
	s := scope.Fresh([]scope.Scope{
		{
			Provider:   "p1",
			Type:       "host",
			Conditions: []scope.Condition{{Field: "status", Op: "==", Value: value.String("up")}},
			IDTypes:    []value.IDType{{ID: "h1", Type: "host"}},
		},
	})
	list := s.List()
	if len(list) != 1 {
		t.Fatalf("got %d scopes, want 1", len(list))
	}
	if len(list[0].Conditions) != 0 || len(list[0].IDTypes) != 0 {
		t.Fatalf("got %+v, want conditions and id types cleared", list[0])
	}
}

func TestSetIDTypesNarrowsOnlyScopesThatNeedIDTypesToMatchingTypes(t *testing.T) {
	s := scope.New(
		scope.Scope{Provider: "p1", Type: "host", NeedsIDTypes: true},
		scope.Scope{Provider: "p1", Type: "router"},
	)
	out := s.SetIDTypes([]value.IDType{
		{ID: "h1", Type: "host"},
		{ID: "r1", Type: "router"},
	})
	for _, sc := range out.List() {
		switch sc.Type {
		case "host":
			if len(sc.IDTypes) != 1 || sc.IDTypes[0].ID != "h1" {
				t.Fatalf("got %v, want only the host id", sc.IDTypes)
			}
		case "router":
			if len(sc.IDTypes) != 0 {
				t.Fatalf("got %v, want no id types set on a scope that doesn't need them", sc.IDTypes)
			}
		}
	}
}

func TestFilterTypeKeepsOnlyMatchingScopes(t *testing.T) {
	s := scope.New(
		scope.Scope{Provider: "p1", Type: "host"},
		scope.Scope{Provider: "p1", Type: "router"},
	)
	out := s.FilterType("host")
	list := out.List()
	if len(list) != 1 || list[0].Type != "host" {
		t.Fatalf("got %v, want only the host scope", list)
	}
}

func TestFilterFieldsIntersectsFieldsAndDropsEmptyIntersections(t *testing.T) {
	s := scope.New(
		scope.Scope{Provider: "p1", Type: "host", Fields: []string{"ip", "hostname"}},
		scope.Scope{Provider: "p1", Type: "router", Fields: []string{"uptime"}},
	)
	out := s.FilterFields([]string{"ip"})
	list := out.List()
	if len(list) != 1 {
		t.Fatalf("got %d scopes, want 1 (router's uptime scope should be dropped)", len(list))
	}
	if len(list[0].Fields) != 1 || list[0].Fields[0] != "ip" {
		t.Fatalf("got fields %v, want only ip", list[0].Fields)
	}
}

func TestFilterFieldsPreservesAStarScopeUnchanged(t *testing.T) {
	s := scope.New(scope.Scope{Provider: "p1", Type: "host", FieldsStar: true})
	out := s.FilterFields([]string{"ip"})
	list := out.List()
	if len(list) != 1 || !list[0].FieldsStar {
		t.Fatalf("got %v, want the star scope preserved", list)
	}
}

func TestAddConditionAppendsToEveryScopeWithoutMutatingTheOriginal(t *testing.T) {
	orig := scope.New(scope.Scope{Provider: "p1", Type: "host"})
	cond := scope.Condition{Field: "status", Op: "==", Value: value.String("up")}
	out := orig.AddCondition(cond)

	if len(orig.List()[0].Conditions) != 0 {
		t.Fatal("expected AddCondition to not mutate the receiver")
	}
	list := out.List()
	if len(list) != 1 || len(list[0].Conditions) != 1 || list[0].Conditions[0] != cond {
		t.Fatalf("got %+v, want the condition appended", list)
	}
}

func TestMinusReturnsScopesNotPresentInTheOtherSet(t *testing.T) {
	a := scope.New(
		scope.Scope{Provider: "p1", Type: "host"},
		scope.Scope{Provider: "p1", Type: "router"},
	)
	b := scope.New(scope.Scope{Provider: "p1", Type: "host"})
	out := a.Minus(b)
	list := out.List()
	if len(list) != 1 || list[0].Type != "router" {
		t.Fatalf("got %v, want only the router scope", list)
	}
}

func TestUnionMergesTwoScopeSetsDeduplicatingOverlap(t *testing.T) {
	a := scope.New(scope.Scope{Provider: "p1", Type: "host"})
	b := scope.New(
		scope.Scope{Provider: "p1", Type: "host"},
		scope.Scope{Provider: "p1", Type: "router"},
	)
	out := a.Union(b)
	if out.Len() != 2 {
		t.Fatalf("got %d scopes, want 2 after deduplicated union", out.Len())
	}
}

func TestListIsSortedDeterministicallyByKey(t *testing.T) {
	s := scope.New(
		scope.Scope{Provider: "p1", Type: "router"},
		scope.Scope{Provider: "p1", Type: "host"},
	)
	list1 := s.List()
	list2 := s.List()
	for i := range list1 {
		if list1[i].Key() != list2[i].Key() {
			t.Fatal("expected List() to return a stable order across calls")
		}
	}
	if list1[0].Key() > list1[1].Key() {
		t.Fatal("expected List() to be sorted ascending by Key")
	}
}

func TestEmptyScopesStringIsExplicit(t *testing.T) {
	s := scope.New()
	if s.String() != "Scopes([])" {
		t.Fatalf("got %q, want Scopes([])", s.String())
	}
}
