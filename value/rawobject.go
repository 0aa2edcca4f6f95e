package value

// RawObject is one source's contribution to a logical entity (spec.md §3).
// By the time a RawObject exists, every property has already been
// normalized: a JSON object tagged with __sa_type__ has been promoted to a
// *CustomValue, recursively, exactly once (grounded on
// sa_object.py.__post_init__'s single call to resolve_primitive_recursively).
type RawObject struct {
	ID         string
	Types      []string
	Source     string
	Properties map[string]Value
}

// HasField reports whether field_name is present, mirroring
// sa_object.py.has_field.
func (o *RawObject) HasField(fieldName string) bool {
	_, ok := o.Properties[fieldName]
	return ok
}

// GetField returns the field's value, auto-resolving a CustomValue via
// state (sa_object.py.get_field: "if isinstance(value, SATypeCustom):
// return value.resolve(all_data)"). Callers must check HasField first; an
// unknown field is a programmer error here, not a QueryError — the
// get_field operator is what translates a missing field into
// qerr.NewField.
func (o *RawObject) GetField(fieldName string, state RunState) (Value, error) {
	v := o.Properties[fieldName]
	if cv, ok := v.(*CustomValue); ok {
		return cv.Resolve(state)
	}
	return v, nil
}

// IDTypePairs returns the (id, type) pairs this object contributes.
func (o *RawObject) IDTypePairs() []IDType {
	out := make([]IDType, len(o.Types))
	for i, t := range o.Types {
		out[i] = IDType{ID: o.ID, Type: t}
	}
	return out
}

// UniqueIDs returns the (id, type, source) triples this object contributes.
func (o *RawObject) UniqueIDs() []UniqueID {
	out := make([]UniqueID, len(o.Types))
	for i, t := range o.Types {
		out[i] = UniqueID{ID: o.ID, Type: t, Source: o.Source}
	}
	return out
}

// HasType reports whether t is one of this object's declared types.
func (o *RawObject) HasType(t string) bool {
	for _, ty := range o.Types {
		if ty == t {
			return true
		}
	}
	return false
}
