package value_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sebitommy123/sa/value"
)

// TestGetFieldMergeRuleProperty verifies spec.md §8's merge rule: identical
// scalars from every source merge to that scalar, conflicting scalars raise
// a merge error, and a list/map present from more than one source also
// raises a merge error regardless of whether the values happen to be equal.
func TestGetFieldMergeRuleProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("identical scalar across every source merges cleanly", prop.ForAll(
		func(sourceCount int, scalar int64) bool {
			members := make([]*value.RawObject, sourceCount)
			for i := 0; i < sourceCount; i++ {
				members[i] = mkRaw("shared", fmt.Sprintf("src-%d", i), []string{"host"}, map[string]value.Value{
					"v": value.Int(scalar),
				})
			}
			g, err := value.NewGrouping(members)
			if err != nil {
				return false
			}
			v, err := g.GetField("v", nil)
			if err != nil {
				return false
			}
			return v.(value.Int) == value.Int(scalar)
		},
		gen.IntRange(1, 5),
		gen.Int64Range(-1000, 1000),
	))

	properties.Property("two differing scalar contributions always raise a merge error", prop.ForAll(
		func(a, b int64) bool {
			if a == b {
				b++
			}
			members := []*value.RawObject{
				mkRaw("shared", "src-a", []string{"host"}, map[string]value.Value{"v": value.Int(a)}),
				mkRaw("shared", "src-b", []string{"host"}, map[string]value.Value{"v": value.Int(b)}),
			}
			g, err := value.NewGrouping(members)
			if err != nil {
				return false
			}
			_, err = g.GetField("v", nil)
			return err != nil
		},
		gen.Int64Range(-1000, 1000),
		gen.Int64Range(-1000, 1000),
	))

	properties.Property("a list contributed by more than one source always raises a merge error, even when equal", prop.ForAll(
		func(sourceCount int) bool {
			if sourceCount < 2 {
				sourceCount = 2
			}
			members := make([]*value.RawObject, sourceCount)
			for i := 0; i < sourceCount; i++ {
				members[i] = mkRaw("shared", fmt.Sprintf("src-%d", i), []string{"host"}, map[string]value.Value{
					"v": value.ListValue{value.String("same")},
				})
			}
			g, err := value.NewGrouping(members)
			if err != nil {
				return false
			}
			_, err = g.GetField("v", nil)
			return err != nil
		},
		gen.IntRange(2, 5),
	))

	properties.TestingRun(t)
}
