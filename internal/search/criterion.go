package search

import (
	"strconv"
)

// Item is one entry of a set-valued criterion. Checkbox groups carry the
// option id in Key and the checked flag in Value; plain lists are keyed by
// position.
type Item struct {
	Key   string
	Value string
}

// Value is the payload of a Criterion: either a scalar or an ordered set.
// The zero Value is an empty scalar.
type Value struct {
	scalar string
	items  []Item
	set    bool
	list   bool
}

// Scalar creates a scalar Value.
func Scalar(v string) Value {
	return Value{scalar: v}
}

// List creates a set Value keyed by position ("0", "1", ...).
func List(vals ...string) Value {
	items := make([]Item, len(vals))
	for i, v := range vals {
		items[i] = Item{Key: strconv.Itoa(i), Value: v}
	}
	return Value{items: items, set: true, list: true}
}

// Checked creates a set Value from explicit key/value pairs, preserving order.
func Checked(items ...Item) Value {
	cp := make([]Item, len(items))
	copy(cp, items)
	return Value{items: cp, set: true}
}

// Check is shorthand for a checkbox Item.
func Check(key string, on bool) Item {
	if on {
		return Item{Key: key, Value: "1"}
	}
	return Item{Key: key, Value: "0"}
}

// IsSet reports whether the value is set-valued.
func (v Value) IsSet() bool {
	return v.set
}

// String returns the scalar payload. Set values return "".
func (v Value) String() string {
	if v.set {
		return ""
	}
	return v.scalar
}

// Values returns the set values in order.
func (v Value) Values() []string {
	vals := make([]string, 0, len(v.items))
	for _, it := range v.items {
		vals = append(vals, it.Value)
	}
	return vals
}

// Selection returns the ids the value selects, each paired with its checked
// flag. Checkbox sets yield their items unchanged; list entries and a
// non-empty scalar count as checked.
func (v Value) Selection() []Item {
	switch {
	case v.list:
		out := make([]Item, 0, len(v.items))
		for _, it := range v.items {
			out = append(out, Item{Key: it.Value, Value: "1"})
		}
		return out
	case v.set:
		out := make([]Item, len(v.items))
		copy(out, v.items)
		return out
	case v.scalar != "":
		return []Item{{Key: v.scalar, Value: "1"}}
	default:
		return nil
	}
}

// Selected returns the ids of Selection, checked or not.
func (v Value) Selected() []string {
	sel := v.Selection()
	ids := make([]string, 0, len(sel))
	for _, it := range sel {
		ids = append(ids, it.Key)
	}
	return ids
}

// Empty reports whether the value carries nothing: an empty set, or a falsy
// scalar.
func (v Value) Empty() bool {
	if v.set {
		return len(v.items) == 0
	}
	return !Truthy(v.scalar)
}

// Truthy mirrors how the form layer encodes booleans: "" and "0" are false,
// everything else is true.
func Truthy(s string) bool {
	return s != "" && s != "0"
}

// Criterion is one user-entered search constraint. It is read once by the
// contributor that owns its Name and then discarded.
type Criterion struct {
	Name     string
	Op       string
	Value    Value
	Grouping string
	Wildcard bool
}
