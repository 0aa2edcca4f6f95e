package value

import (
	"fmt"
	"strings"
	"time"
)

// CustomValue is the closed set of "semantic" values from spec.md §3/§6.2:
// timestamp, link, ref, query, email, url, phone, date_range, money, image,
// tag_list, template, join, first_non_null. Payload holds the
// already-normalized property values (so a ref inside a join's items is
// itself a *CustomValue, not raw JSON) keyed by the variant's field names
// (with __sa_type__ stripped), grounded on sa_types.py's per-variant
// validate/resolve/to_text methods.
type CustomValue struct {
	Tag     string
	Payload map[string]Value
}

func (*CustomValue) Kind() Kind { return KindCustom }

func (c *CustomValue) Text() string {
	switch c.Tag {
	case "timestamp":
		return formatNanos(c.int64("timestamp"))
	case "link":
		return fmt.Sprintf("<%s>", c.str("show_text"))
	case "ref":
		if t, ok := c.Payload["show_text"]; ok {
			return t.Text()
		}
		if t, ok := c.Payload["type"]; ok {
			return fmt.Sprintf("%s#%s", t.Text(), c.str("id"))
		}
		return c.str("id")
	case "query":
		return "? " + c.str("query")
	case "email":
		return c.str("email")
	case "url":
		return c.str("url")
	case "phone":
		return c.str("phone")
	case "date_range":
		return fmt.Sprintf("%s – %s", formatNanos(c.int64("start")), formatNanos(c.int64("end")))
	case "money":
		return formatMoney(c.Payload["amount"], c.str("currency"))
	case "image":
		if alt, ok := c.Payload["alt"]; ok && alt.Text() != "" {
			return alt.Text()
		}
		return c.str("url")
	case "tag_list":
		return joinTextList(c.list("tags"), ", ")
	case "template":
		return c.str("template")
	case "join":
		return joinTextList(c.list("items"), c.str("sep"))
	case "first_non_null":
		return "first_non_null(...)"
	default:
		return fmt.Sprintf("%s(...)", c.Tag)
	}
}

// Resolve implements sa_types.py's per-variant resolve(all_data), consulting
// state for the two variants that re-enter the engine (link, query) and for
// ref's entity lookup. Nested CustomValues inside list/map payload fields
// are resolved recursively here rather than re-normalized, because
// ingestion (FromWireRawObject) already normalized the full properties tree
// once (grounded on sa_object.py.__post_init__).
func (c *CustomValue) Resolve(state RunState) (Value, error) {
	switch c.Tag {
	case "timestamp":
		return Int(c.int64("timestamp")), nil
	case "link":
		return state.RunSubQuery(c.str("query"))
	case "query":
		return state.RunSubQuery(c.str("query"))
	case "ref":
		return c.resolveRef(state)
	case "email":
		return String(c.str("email")), nil
	case "url":
		return String(c.str("url")), nil
	case "phone":
		return String(c.str("phone")), nil
	case "date_range":
		return MapValue{"start": Int(c.int64("start")), "end": Int(c.int64("end"))}, nil
	case "money":
		return c.Payload["amount"], nil
	case "image":
		return String(c.str("url")), nil
	case "tag_list":
		tags := c.list("tags")
		out := make(ListValue, len(tags))
		copy(out, tags)
		return out, nil
	case "template":
		return c.resolveTemplate(state)
	case "join":
		return c.resolveJoin(state)
	case "first_non_null":
		return c.resolveFirstNonNull(state)
	default:
		return nil, fmt.Errorf("unknown custom value tag %q", c.Tag)
	}
}

func (c *CustomValue) resolveRef(state RunState) (Value, error) {
	id := c.str("id")
	var typ, source string
	hasType := false
	hasSource := false
	if v, ok := c.Payload["type"]; ok {
		typ = v.Text()
		hasType = true
	}
	if v, ok := c.Payload["source"]; ok {
		source = v.Text()
		hasSource = true
	}
	all := state.AllData()
	matched := make([]*Grouping, 0)
	for _, g := range all.Groupings {
		if g.ID != id {
			continue
		}
		if hasType && !g.HasType(typ) {
			continue
		}
		if hasSource {
			member := g.memberFromSource(source)
			if member == nil {
				continue
			}
		}
		matched = append(matched, g)
	}
	return NewObjectList(matched)
}

// resolveValueRecursive resolves a single already-normalized payload value:
// a *CustomValue resolves via Resolve; everything else passes through
// unchanged (it is already in its final Value form).
func resolveValueRecursive(v Value, state RunState) (Value, error) {
	if cv, ok := v.(*CustomValue); ok {
		return cv.Resolve(state)
	}
	return v, nil
}

func (c *CustomValue) resolveTemplate(state RunState) (Value, error) {
	values, _ := c.Payload["values"].(MapValue)
	resolved := make(map[string]Value, len(values))
	for k, v := range values {
		rv, err := resolveValueRecursive(v, state)
		if err != nil {
			return nil, err
		}
		resolved[k] = rv
	}
	tmpl := c.str("template")
	var sb strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end == -1 {
				sb.WriteString(tmpl[i:])
				break
			}
			key := tmpl[i+1 : i+end]
			if rv, ok := resolved[key]; ok {
				sb.WriteString(rv.Text())
			} else {
				return String(c.Text()), nil
			}
			i += end + 1
			continue
		}
		sb.WriteByte(tmpl[i])
		i++
	}
	return String(sb.String()), nil
}

func (c *CustomValue) resolveJoin(state RunState) (Value, error) {
	items := c.list("items")
	parts := make([]string, 0, len(items))
	for _, item := range items {
		rv, err := resolveValueRecursive(item, state)
		if err != nil {
			return nil, err
		}
		parts = append(parts, rv.Text())
	}
	return String(strings.Join(parts, c.str("sep"))), nil
}

func (c *CustomValue) resolveFirstNonNull(state RunState) (Value, error) {
	for _, item := range c.list("items") {
		rv, err := resolveValueRecursive(item, state)
		if err != nil {
			return nil, err
		}
		switch t := rv.(type) {
		case Null, AbsorbingNull:
			continue
		case String:
			if t == "" {
				continue
			}
			return t, nil
		default:
			return rv, nil
		}
	}
	return Null{}, nil
}

func (c *CustomValue) str(key string) string {
	if v, ok := c.Payload[key]; ok {
		return v.Text()
	}
	return ""
}

func (c *CustomValue) int64(key string) int64 {
	switch v := c.Payload[key].(type) {
	case Int:
		return int64(v)
	case Float:
		return int64(v)
	default:
		return 0
	}
}

func (c *CustomValue) list(key string) ListValue {
	if v, ok := c.Payload[key].(ListValue); ok {
		return v
	}
	return nil
}

func formatNanos(ns int64) string {
	return time.Unix(0, ns).UTC().Format(time.RFC3339)
}

func formatMoney(amount Value, currency string) string {
	currency = strings.ToUpper(currency)
	switch a := amount.(type) {
	case Float:
		return fmt.Sprintf("%s %.2f", currency, float64(a))
	case Int:
		return fmt.Sprintf("%s %d", currency, int64(a))
	default:
		return fmt.Sprintf("%s %v", currency, amount)
	}
}

func joinTextList(items ListValue, sep string) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = v.Text()
	}
	return strings.Join(parts, sep)
}
