package driver

import (
	"github.com/sebitommy123/sa/value"
	"github.com/sebitommy123/sa/wire"
)

// rawObjectsFromWireSlice normalizes a batch of wire objects into the typed
// value domain (spec.md §3, one FromWireRawObject call per object).
func rawObjectsFromWireSlice(objects []wire.RawObject) ([]value.RawObject, error) {
	out := make([]value.RawObject, len(objects))
	for i, raw := range objects {
		obj, err := value.FromWireRawObject(raw)
		if err != nil {
			return nil, err
		}
		out[i] = *obj
	}
	return out, nil
}

// groupRawObjects groups already-normalized RawObjects by id into Groupings
// and wraps them in an ObjectList (object_list.py's id-grouping step,
// applied here to a batch of objects fresh off the wire or a provider
// fetch rather than to a whole existing list, which is what value.Combine
// already handles).
func groupRawObjects(objects []value.RawObject) (*value.ObjectList, error) {
	byID := make(map[string][]*value.RawObject)
	var order []string
	for i := range objects {
		o := &objects[i]
		if _, ok := byID[o.ID]; !ok {
			order = append(order, o.ID)
		}
		byID[o.ID] = append(byID[o.ID], o)
	}
	groupings := make([]*value.Grouping, 0, len(order))
	for _, id := range order {
		g, err := value.NewGrouping(byID[id])
		if err != nil {
			return nil, err
		}
		groupings = append(groupings, g)
	}
	return value.NewObjectList(groupings)
}

// objectListFromWire normalizes and groups a batch of wire objects in one
// step, used for a provider's initial AllData dump (spec.md §2).
func objectListFromWire(objects []wire.RawObject) (*value.ObjectList, error) {
	normalized, err := rawObjectsFromWireSlice(objects)
	if err != nil {
		return nil, err
	}
	return groupRawObjects(normalized)
}
