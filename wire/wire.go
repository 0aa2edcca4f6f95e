// Package wire decodes the JSON wire format providers speak (§6.2): raw
// objects carrying __id__/__types__/__source__ plus arbitrary properties,
// where a property dict tagged with __sa_type__ is a CustomValue payload.
//
// This package only knows about JSON shapes; it has no notion of the typed
// value domain (package value) or of providers. That keeps the provider and
// value packages from having to import each other.
package wire

import (
	"encoding/json"
	"fmt"
)

// RawObject is the wire shape of one object contribution from one source.
type RawObject struct {
	ID         string
	Types      []string
	Source     string
	Properties map[string]json.RawMessage
}

const (
	keyID     = "__id__"
	keyTypes  = "__types__"
	keySource = "__source__"
	keyTag    = "__sa_type__"
)

// DecodeRawObject parses a single JSON object into a RawObject, separating
// the three reserved keys from the property bag. It does not recurse into
// properties: CustomValue promotion happens later, in package value, once
// wire schema validation (see ValidateCustomValue) has passed.
func DecodeRawObject(data []byte) (RawObject, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return RawObject{}, fmt.Errorf("decoding raw object: %w", err)
	}
	return decodeRawObjectFields(m)
}

func decodeRawObjectFields(m map[string]json.RawMessage) (RawObject, error) {
	obj := RawObject{Properties: make(map[string]json.RawMessage, len(m))}

	idRaw, ok := m[keyID]
	if !ok {
		return RawObject{}, fmt.Errorf("raw object missing required key %q", keyID)
	}
	if err := json.Unmarshal(idRaw, &obj.ID); err != nil {
		return RawObject{}, fmt.Errorf("%s must be a string: %w", keyID, err)
	}

	typesRaw, ok := m[keyTypes]
	if !ok {
		return RawObject{}, fmt.Errorf("raw object missing required key %q", keyTypes)
	}
	if err := json.Unmarshal(typesRaw, &obj.Types); err != nil {
		return RawObject{}, fmt.Errorf("%s must be an array of strings: %w", keyTypes, err)
	}
	if len(obj.Types) == 0 {
		return RawObject{}, fmt.Errorf("%s must be non-empty", keyTypes)
	}

	sourceRaw, ok := m[keySource]
	if !ok {
		return RawObject{}, fmt.Errorf("raw object missing required key %q", keySource)
	}
	if err := json.Unmarshal(sourceRaw, &obj.Source); err != nil {
		return RawObject{}, fmt.Errorf("%s must be a string: %w", keySource, err)
	}

	for k, v := range m {
		switch k {
		case keyID, keyTypes, keySource:
			continue
		default:
			obj.Properties[k] = v
		}
	}

	return obj, nil
}

// DecodeRawObjects parses a JSON array of raw objects, as returned by a
// provider's initial bulk fetch (§6.1 all_data) or a lazy scoped fetch.
func DecodeRawObjects(data []byte) ([]RawObject, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding raw object array: %w", err)
	}
	objs := make([]RawObject, 0, len(raw))
	for i, item := range raw {
		obj, err := DecodeRawObject(item)
		if err != nil {
			return nil, fmt.Errorf("raw object %d: %w", i, err)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// CustomValueTag returns the __sa_type__ tag of a property value if it is a
// JSON object carrying one, and whether it is present at all.
func CustomValueTag(raw json.RawMessage) (tag string, payload map[string]json.RawMessage, ok bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", nil, false
	}
	tagRaw, present := m[keyTag]
	if !present {
		return "", nil, false
	}
	if err := json.Unmarshal(tagRaw, &tag); err != nil {
		return "", nil, false
	}
	return tag, m, true
}

// Encode serializes a raw object back into the wire shape, re-attaching the
// reserved keys. Used by providers that hand back objects fetched from a
// backing store in Go-native form (e.g. mongoprovider).
func (o RawObject) Encode() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(o.Properties)+3)
	for k, v := range o.Properties {
		m[k] = v
	}
	idJSON, err := json.Marshal(o.ID)
	if err != nil {
		return nil, err
	}
	typesJSON, err := json.Marshal(o.Types)
	if err != nil {
		return nil, err
	}
	sourceJSON, err := json.Marshal(o.Source)
	if err != nil {
		return nil, err
	}
	m[keyID] = idJSON
	m[keyTypes] = typesJSON
	m[keySource] = sourceJSON
	return json.Marshal(m)
}
