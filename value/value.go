// Package value implements the closed value domain described in spec.md §3
// and §4.3: primitives, collections, the entity model (Grouping,
// ObjectList), CustomValue variants, and the parsed Chain/OperatorNode
// pipeline that evaluates over them.
//
// Grouping, ObjectList, CustomValue and Chain live in this single package on
// purpose (spec.md §9, "circular references between value domain and object
// containers"): a Grouping's merge rule produces Values that may themselves
// be CustomValues whose Resolve can return an ObjectList, which is exactly
// the kind of mutual reference Go cannot express across package boundaries.
// Dependencies on the query runtime (scope narrowing, sub-query execution)
// are expressed through the small RunState interface in chain.go instead of
// importing the state/scope packages directly, which keeps this package a
// leaf with respect to the rest of the engine.
package value

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind tags the dynamic type of a Value, standing in for the original's
// duck-typed dispatch (spec.md §9).
type Kind int

const (
	KindNull Kind = iota
	KindAbsorbingNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindGrouping
	KindObjectList
	KindCustom
	KindChain
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindAbsorbingNull:
		return "absorbing_null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindGrouping:
		return "grouping"
	case KindObjectList:
		return "object_list"
	case KindCustom:
		return "custom"
	case KindChain:
		return "chain"
	default:
		return "unknown"
	}
}

// Value is the sum type every operator reads and produces. Every concrete
// type in this package implements it.
type Value interface {
	Kind() Kind
	// Text renders the value the way the render package's plain-text view
	// and the template/join CustomValues want it (spec.md §6.3, §6.2).
	Text() string
}

// Null is the ordinary JSON null.
type Null struct{}

func (Null) Kind() Kind   { return KindNull }
func (Null) Text() string { return "null" }

// AbsorbingNull is distinct from Null: any operator that reads it as context
// or as an argument returns it unchanged, short-circuiting the rest of the
// chain (spec.md §3). Rendered to the user as the literal string
// "AbsorbingNone" (spec.md §8 scenario 3), preserving the original's name so
// the end-to-end scenario's literal output matches.
type AbsorbingNull struct{}

func (AbsorbingNull) Kind() Kind   { return KindAbsorbingNull }
func (AbsorbingNull) Text() string { return "AbsorbingNone" }

// Bool, Int, Float and String are the remaining JSON primitives.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (b Bool) Text() string {
	if b {
		return "true"
	}
	return "false"
}

type Int int64

func (Int) Kind() Kind      { return KindInt }
func (i Int) Text() string  { return strconv.FormatInt(int64(i), 10) }
func (i Int) AsFloat() Float { return Float(i) }

type Float float64

func (Float) Kind() Kind     { return KindFloat }
func (f Float) Text() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

type String string

func (String) Kind() Kind    { return KindString }
func (s String) Text() string { return string(s) }

// IsTruthy implements the "boolean-coerce" rule used by and/or/any
// (spec.md §4.4): null and AbsorbingNull are false, zero numbers and empty
// strings/collections are false, everything else is true.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Null, AbsorbingNull:
		return false
	case Bool:
		return bool(t)
	case Int:
		return t != 0
	case Float:
		return t != 0
	case String:
		return t != ""
	case ListValue:
		return len(t) > 0
	case MapValue:
		return len(t) > 0
	case *ObjectList:
		return t != nil && len(t.Groupings) > 0
	default:
		return true
	}
}

// Equal implements the scalar equality the equals() operator and the merge
// rule's deduplication both need: same Kind, same underlying value. Lists
// and maps compare element-wise; Groupings/ObjectLists/Chains/CustomValues
// are never equal, not even to themselves (the original never relies on
// deep-equality for those).
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		// Int/Float cross-kind numeric equality, matching add()'s promotion rule.
		if af, aok := numeric(a); aok {
			if bf, bok := numeric(b); bok {
				return af == bf
			}
		}
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case AbsorbingNull:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case String:
		return av == b.(String)
	case ListValue:
		bv := b.(ListValue)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case MapValue:
		bv := b.(MapValue)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numeric(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	default:
		return 0, false
	}
}

// HashKey produces a stable string key for a Value, used by unique() and by
// Scope's own hashing (see package scope). Lists/maps are flattened
// recursively; Groupings/ObjectLists hash by their unique_ids.
func HashKey(v Value) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case Null:
		return "null"
	case AbsorbingNull:
		return "absorbing_null"
	case Bool:
		return fmt.Sprintf("b:%t", bool(t))
	case Int:
		return fmt.Sprintf("i:%d", int64(t))
	case Float:
		return fmt.Sprintf("f:%v", float64(t))
	case String:
		return "s:" + string(t)
	case ListValue:
		s := "l:["
		for _, e := range t {
			s += HashKey(e) + ","
		}
		return s + "]"
	case MapValue:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s := "m:{"
		for _, k := range keys {
			s += k + "=" + HashKey(t[k]) + ";"
		}
		return s + "}"
	case *Grouping:
		return "g:" + t.ID
	case *ObjectList:
		s := "ol:["
		for _, g := range t.Groupings {
			s += g.ID + ","
		}
		return s + "]"
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}
