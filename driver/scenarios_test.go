package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sebitommy123/sa/driver"
	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/provider/memprovider"
	"github.com/sebitommy123/sa/value"
	"github.com/sebitommy123/sa/wire"
)

// These cover the six literal end-to-end scenarios.

func TestScenarioFilterByTypeThenCount(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"e1","__types__":["employee"],"__source__":"hr","name":"Ann"}`),
		mustDecode(t, `{"__id__":"e2","__types__":["employee"],"__source__":"hr","name":"Bea"}`),
		mustDecode(t, `{"__id__":"e3","__types__":["employee"],"__source__":"hr","name":"Cid"}`),
		mustDecode(t, `{"__id__":"c1","__types__":["customer"],"__source__":"hr","name":"Dee"}`),
	}
	p := memprovider.New("hr", objs)
	d, allData, err := driver.New(ctx, map[string]provider.Provider{"hr": p})
	require.NoError(t, err)

	result, _, err := d.ExecuteFully(ctx, allData, `employee.count()`)
	require.NoError(t, err)
	n, ok := result.(value.Int)
	require.True(t, ok, "expected an Int result, got %T", result)
	require.Equal(t, value.Int(3), n)
}

func TestScenarioFieldConflictSurfacesAMergeError(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"e1","__types__":["employee"],"__source__":"hr","title":"Engineer"}`),
		mustDecode(t, `{"__id__":"e1","__types__":["employee"],"__source__":"payroll","title":"Developer"}`),
	}
	p := memprovider.New("hr", objs)
	d, allData, err := driver.New(ctx, map[string]provider.Provider{"hr": p})
	require.NoError(t, err)

	result, _ := d.ExecuteOnce(allData, `#e1.title`)
	str, ok := result.(value.String)
	require.True(t, ok, "expected an error string result, got %T", result)
	require.Contains(t, string(str), "multiple conflicting definitions")
}

func TestScenarioAbsorbingNullPropagationRendersAsAbsorbingNone(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"e1","__types__":["employee"],"__source__":"hr"}`),
	}
	p := memprovider.New("hr", objs)
	d, allData, err := driver.New(ctx, map[string]provider.Provider{"hr": p})
	require.NoError(t, err)

	result, _, err := d.ExecuteFully(ctx, allData, `.foo == "bar"`)
	require.NoError(t, err)
	_, ok := result.(value.AbsorbingNull)
	require.True(t, ok, "expected AbsorbingNull, got %T", result)
	require.Equal(t, "AbsorbingNone", result.Text())
}

func TestScenarioSliceThenCount(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"o1","__types__":["item"],"__source__":"src"}`),
		mustDecode(t, `{"__id__":"o2","__types__":["item"],"__source__":"src"}`),
		mustDecode(t, `{"__id__":"o3","__types__":["item"],"__source__":"src"}`),
		mustDecode(t, `{"__id__":"o4","__types__":["item"],"__source__":"src"}`),
		mustDecode(t, `{"__id__":"o5","__types__":["item"],"__source__":"src"}`),
	}
	p := memprovider.New("src", objs)
	d, allData, err := driver.New(ctx, map[string]provider.Provider{"src": p})
	require.NoError(t, err)

	result, _, err := d.ExecuteFully(ctx, allData, `*[1:3].count()`)
	require.NoError(t, err)
	n, ok := result.(value.Int)
	require.True(t, ok, "expected an Int result, got %T", result)
	require.Equal(t, value.Int(2), n)
}

func TestScenarioRegexIDShorthandThenCount(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"emp_001","__types__":["employee"],"__source__":"hr"}`),
		mustDecode(t, `{"__id__":"emp_002","__types__":["employee"],"__source__":"hr"}`),
		mustDecode(t, `{"__id__":"cust_001","__types__":["customer"],"__source__":"hr"}`),
	}
	p := memprovider.New("hr", objs)
	d, allData, err := driver.New(ctx, map[string]provider.Provider{"hr": p})
	require.NoError(t, err)

	result, _, err := d.ExecuteFully(ctx, allData, `#emp_*.count()`)
	require.NoError(t, err)
	n, ok := result.(value.Int)
	require.True(t, ok, "expected an Int result, got %T", result)
	require.Equal(t, value.Int(2), n)
}

func TestScenarioLazyFetchReachesAFixedPointAcrossTwoProviders(t *testing.T) {
	ctx := context.Background()
	employees := []wire.RawObject{
		mustDecode(t, `{"__id__":"m1","__types__":["employee"],"__source__":"hr","id":"m1","name":"Flo"}`),
		mustDecode(t, `{"__id__":"m2","__types__":["employee"],"__source__":"hr","id":"m2","name":"Gus"}`),
	}
	hr := memprovider.NewLazy("hr", []provider.LazyScope{
		{Type: "employee", Fields: []string{"id", "name"}, NeedsIDTypes: true},
	}, employees)

	customers := []wire.RawObject{
		mustDecode(t, `{"__id__":"c1","__types__":["customer"],"__source__":"crm","manager_id":{"__sa_type__":"ref","id":"m1","type":"employee"}}`),
	}
	crm := memprovider.New("crm", customers)

	d, allData, err := driver.New(ctx, map[string]provider.Provider{"hr": hr, "crm": crm})
	require.NoError(t, err)

	result, _, err := d.ExecuteFully(ctx, allData, `customer.manager_id`)
	require.NoError(t, err)
	list, ok := result.(*value.ObjectList)
	require.True(t, ok, "expected an ObjectList of the resolved manager, got %T", result)
	require.Len(t, list.Groupings, 1)
	name, err := list.Groupings[0].GetField("name", nil)
	require.NoError(t, err)
	require.Equal(t, value.String("Flo"), name)
}
