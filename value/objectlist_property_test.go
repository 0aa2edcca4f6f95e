package value_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sebitommy123/sa/value"
)

func genDistinctGroupingCount() gopter.Gen {
	return gen.IntRange(0, 12)
}

// TestObjectListUniqueIDsNeverContainDuplicatesProperty verifies spec.md §8's
// ObjectList uniqueness invariant: for every successfully constructed
// ObjectList, the multiset of unique_ids across its Groupings has no
// duplicates.
func TestObjectListUniqueIDsNeverContainDuplicatesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("distinct ids never collide in unique_ids", prop.ForAll(
		func(n int) bool {
			groupings := make([]*value.Grouping, n)
			for i := 0; i < n; i++ {
				g, err := value.NewGrouping([]*value.RawObject{
					mkRaw(fmt.Sprintf("id-%d", i), "fixture", []string{"host"}, nil),
				})
				if err != nil {
					return false
				}
				groupings[i] = g
			}
			ol, err := value.NewObjectList(groupings)
			if err != nil {
				return false
			}
			seen := make(map[value.UniqueID]bool)
			for _, uid := range ol.UniqueIDs() {
				if seen[uid] {
					return false
				}
				seen[uid] = true
			}
			return true
		},
		genDistinctGroupingCount(),
	))

	properties.TestingRun(t)
}

// TestObjectListConstructionRejectsAnyInjectedDuplicateProperty checks the
// converse: reusing one grouping's id a second time anywhere in the list
// always makes NewObjectList fail.
func TestObjectListConstructionRejectsAnyInjectedDuplicateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a repeated id always fails construction", prop.ForAll(
		func(n int) bool {
			if n < 1 {
				n = 1
			}
			groupings := make([]*value.Grouping, 0, n+1)
			for i := 0; i < n; i++ {
				g, err := value.NewGrouping([]*value.RawObject{
					mkRaw(fmt.Sprintf("id-%d", i), "fixture", []string{"host"}, nil),
				})
				if err != nil {
					return false
				}
				groupings = append(groupings, g)
			}
			dup, err := value.NewGrouping([]*value.RawObject{
				mkRaw("id-0", "fixture", []string{"host"}, nil),
			})
			if err != nil {
				return false
			}
			groupings = append(groupings, dup)
			_, err = value.NewObjectList(groupings)
			return err != nil
		},
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
