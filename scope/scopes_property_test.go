package scope_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sebitommy123/sa/scope"
)

var allFieldNames = []string{"a", "b", "c", "d", "e"}

func genFieldSubset() gopter.Gen {
	return gen.SliceOfN(len(allFieldNames), gen.Bool()).Map(func(keep []bool) []string {
		var out []string
		for i, k := range keep {
			if k {
				out = append(out, allFieldNames[i])
			}
		}
		return out
	})
}

func genFieldScope() gopter.Gen {
	return genFieldSubset().Map(func(fields []string) scope.Scope {
		return scope.Scope{Provider: "p", Type: "host", Fields: fields}
	})
}

// TestFilterFieldsNeverEnlargesAScopesFieldSet verifies spec.md §8's scope
// narrowing monotonicity property: filter_fields only ever keeps or shrinks
// a concrete field list, never adds fields that weren't already there.
func TestFilterFieldsNeverEnlargesAScopesFieldSet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("narrowed field set is always a subset of the original", prop.ForAll(
		func(original scope.Scope, want []string) bool {
			scopes := scope.New(original)
			narrowed := scopes.FilterFields(want)
			for _, sc := range narrowed.List() {
				if len(sc.Fields) > len(original.Fields) {
					return false
				}
				wantSet := make(map[string]bool, len(want))
				for _, w := range want {
					wantSet[w] = true
				}
				for _, f := range sc.Fields {
					if !wantSet[f] {
						return false
					}
				}
			}
			return true
		},
		genFieldScope(),
		genFieldSubset(),
	))

	properties.Property("a star scope is unchanged by filter_fields regardless of requested fields", prop.ForAll(
		func(want []string) bool {
			star := scope.Scope{Provider: "p", Type: "host", FieldsStar: true}
			scopes := scope.New(star)
			narrowed := scopes.FilterFields(want)
			list := narrowed.List()
			if len(list) != 1 {
				return false
			}
			return list[0].FieldsStar && list[0].Equal(star)
		},
		genFieldSubset(),
	))

	properties.TestingRun(t)
}

// TestFilterTypeNeverEnlargesTheScopeSet verifies that filter_type only ever
// drops scopes, never adding or duplicating any.
func TestFilterTypeNeverEnlargesTheScopeSet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("filter_type result count never exceeds the original", prop.ForAll(
		func(keepHost bool, keepDevice bool) bool {
			var scopes []scope.Scope
			if keepHost {
				scopes = append(scopes, scope.Scope{Provider: "p", Type: "host", FieldsStar: true})
			}
			if keepDevice {
				scopes = append(scopes, scope.Scope{Provider: "p", Type: "device", FieldsStar: true})
			}
			original := scope.New(scopes...)
			narrowed := original.FilterType("host")
			if narrowed.Len() > original.Len() {
				return false
			}
			for _, sc := range narrowed.List() {
				if sc.Type != "host" {
					return false
				}
			}
			return true
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
