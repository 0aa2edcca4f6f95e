package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sebitommy123/sa/wire"
)

// FromWireRawObject normalizes a wire.RawObject into the typed value domain:
// every property is recursively promoted, with any __sa_type__-tagged
// object becoming a *CustomValue after its payload passes wire.
// ValidateCustomValue (spec.md §3, §6.2). This mirrors
// sa_object.py.__post_init__'s single call to resolve_primitive_recursively
// across the whole properties dict — normalization happens exactly once, at
// ingestion, not again at field-read or Resolve time.
func FromWireRawObject(raw wire.RawObject) (*RawObject, error) {
	props := make(map[string]Value, len(raw.Properties))
	for k, v := range raw.Properties {
		nv, err := normalizeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("object %s: property %q: %w", raw.ID, k, err)
		}
		props[k] = nv
	}
	return &RawObject{ID: raw.ID, Types: raw.Types, Source: raw.Source, Properties: props}, nil
}

// normalizeJSON promotes a single raw JSON property value, recursing into
// arrays and objects and promoting __sa_type__-tagged objects to
// *CustomValue, exactly as resolve_primitive_recursively does.
func normalizeJSON(raw json.RawMessage) (Value, error) {
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decoding property: %w", err)
	}
	return normalizeGeneric(generic)
}

func normalizeGeneric(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case []any:
		out := make(ListValue, len(t))
		for i, e := range t {
			nv, err := normalizeGeneric(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case map[string]any:
		if tagRaw, ok := t["__sa_type__"]; ok {
			tag, ok := tagRaw.(string)
			if !ok {
				return nil, fmt.Errorf("__sa_type__ must be a string")
			}
			rawPayload, err := json.Marshal(t)
			if err != nil {
				return nil, err
			}
			var payload map[string]json.RawMessage
			if err := json.Unmarshal(rawPayload, &payload); err != nil {
				return nil, err
			}
			if err := wire.ValidateCustomValue(tag, payload); err != nil {
				return nil, err
			}
			fields := make(map[string]Value, len(t))
			for k, fv := range t {
				if k == "__sa_type__" {
					continue
				}
				nv, err := normalizeGeneric(fv)
				if err != nil {
					return nil, err
				}
				fields[k] = nv
			}
			return &CustomValue{Tag: tag, Payload: fields}, nil
		}
		out := make(MapValue, len(t))
		for k, e := range t {
			nv, err := normalizeGeneric(e)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", v)
	}
}
