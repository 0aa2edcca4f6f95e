package memprovider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/provider/memprovider"
	"github.com/sebitommy123/sa/value"
	"github.com/sebitommy123/sa/wire"
)

func mustDecode(t *testing.T, raw string) wire.RawObject {
	t.Helper()
	obj, err := wire.DecodeRawObject([]byte(raw))
	require.NoError(t, err)
	return obj
}

func TestAllAtOnceServesEverythingUnconditionally(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"a1","__types__":["host"],"__source__":"fixture","ip":"10.0.0.1"}`),
	}
	p := memprovider.New("fixture", objs)

	cap, err := p.Hello(ctx)
	require.NoError(t, err)
	require.Equal(t, provider.ModeAllAtOnce, cap.Mode)
	require.Equal(t, "fixture", cap.Name)

	got, err := p.AllData(ctx)
	require.NoError(t, err)
	require.Equal(t, objs, got)
}

func TestLazyFiltersByType(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"h1","__types__":["host"],"__source__":"fixture","ip":"10.0.0.1"}`),
		mustDecode(t, `{"__id__":"u1","__types__":["user"],"__source__":"fixture","name":"ada"}`),
	}
	scopes := []provider.LazyScope{{Type: "host", FieldsStar: true}}
	p := memprovider.NewLazy("fixture", scopes, objs)

	resp, err := p.FetchLazy(ctx, provider.FetchRequest{Type: "host"})
	require.NoError(t, err)
	require.Len(t, resp.Objects, 1)
	require.Equal(t, "h1", resp.Objects[0].ID)
}

func TestLazyFiltersByIDTypes(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"h1","__types__":["host"],"__source__":"fixture","ip":"10.0.0.1"}`),
		mustDecode(t, `{"__id__":"h2","__types__":["host"],"__source__":"fixture","ip":"10.0.0.2"}`),
	}
	scopes := []provider.LazyScope{{Type: "host", FieldsStar: true, NeedsIDTypes: true}}
	p := memprovider.NewLazy("fixture", scopes, objs)

	resp, err := p.FetchLazy(ctx, provider.FetchRequest{
		Type:    "host",
		IDTypes: []value.IDType{{ID: "h2", Type: "host"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Objects, 1)
	require.Equal(t, "h2", resp.Objects[0].ID)
}

func TestLazyPlanOnlyReportsCountWithoutFetching(t *testing.T) {
	ctx := context.Background()
	objs := []wire.RawObject{
		mustDecode(t, `{"__id__":"h1","__types__":["host"],"__source__":"fixture","ip":"10.0.0.1"}`),
	}
	p := memprovider.NewLazy("fixture", nil, objs)

	resp, err := p.FetchLazy(ctx, provider.FetchRequest{Type: "host", PlanOnly: true})
	require.NoError(t, err)
	require.Nil(t, resp.Objects)
	require.Contains(t, resp.Plan, "1")
}
