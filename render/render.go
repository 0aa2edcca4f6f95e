// Package render formats a query result as plain text for collaborators
// (spec.md §6.3): an ObjectList renders as one group per Grouping, each
// with a header line and indented field lines; anything else renders via
// its own Text() form. Colored rendering is an external collaborator's
// concern and is out of scope here, per spec.md §1.
//
// Grounded on original_source/sa/query_language/render.py's
// render_object_list/render_object_as_group, with the ANSI color codes
// dropped (the original reserves those for its interactive shell).
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sebitommy123/sa/value"
)

// Value renders any query result: an ObjectList as a sequence of groups, a
// Grouping as a single group, anything else via its default Text() form.
func Value(v value.Value, state value.RunState) (string, error) {
	switch t := v.(type) {
	case *value.ObjectList:
		return ObjectList(t, state)
	case *value.Grouping:
		return Grouping(t, state)
	default:
		return v.Text(), nil
	}
}

// ObjectList renders every member Grouping as a group, concatenated in
// order.
func ObjectList(l *value.ObjectList, state value.RunState) (string, error) {
	var sb strings.Builder
	for _, g := range l.Groupings {
		s, err := Grouping(g, state)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// Grouping renders one group: a "#id (type1,type2 @src1@src2)" header line
// (Grouping.Name), then one indented "field: value" line per field — or,
// when sources disagree on a scalar, one "field@source: value" line per
// distinct source.
func Grouping(g *value.Grouping, state value.RunState) (string, error) {
	var sb strings.Builder
	sb.WriteString(g.Name())
	sb.WriteString("\n")
	for _, field := range g.Fields() {
		line, err := renderField(g, field, state)
		if err != nil {
			return "", err
		}
		sb.WriteString(line)
	}
	return sb.String(), nil
}

type contribution struct {
	source string
	value  value.Value
}

// renderField resolves every member's value for field and decides whether
// to collapse them into one "all agree" line or spell out each source's
// contribution (spec.md §6.3's "when multiple sources supply the same
// scalar, render each with field@source").
func renderField(g *value.Grouping, field string, state value.RunState) (string, error) {
	if v, ok := g.FieldOverrides[field]; ok {
		return fmt.Sprintf("    %s: %s\n", field, v.Text()), nil
	}

	var contributions []contribution
	for _, m := range g.Members {
		if !m.HasField(field) {
			continue
		}
		v, err := m.GetField(field, state)
		if err != nil {
			return "", err
		}
		contributions = append(contributions, contribution{source: m.Source, value: v})
	}
	if len(contributions) == 0 {
		return "", nil
	}

	allAgree := true
	first := contributions[0].value
	for _, c := range contributions[1:] {
		if !value.Equal(c.value, first) {
			allAgree = false
			break
		}
	}
	if allAgree {
		return fmt.Sprintf("    %s: %s\n", field, first.Text()), nil
	}

	sort.Slice(contributions, func(i, j int) bool { return contributions[i].source < contributions[j].source })
	var sb strings.Builder
	for _, c := range contributions {
		sb.WriteString(fmt.Sprintf("    %s@%s: %s\n", field, c.source, c.value.Text()))
	}
	return sb.String(), nil
}
