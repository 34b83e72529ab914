package node

import (
	"encoding/json"
	"strconv"
)

// Kind is the variant tag of a Node.
type Kind uint8

const (
	KindAbsent Kind = iota // nil *Node: the key was not there at all.
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// indexThreshold is the object size from which a key index is kept.
const indexThreshold = 8

// Node is an immutable JSON-shaped value. A nil *Node is the absent value and
// every read method accepts it.
//
// Objects keep the order in which keys were inserted. Lookups ignore that
// order; encoding preserves it.
type Node struct {
	kind  Kind
	b     bool
	s     string // string value, or the textual form of a number
	keys  []string
	vals  []*Node // object values (parallel to keys) or array items
	index map[string]int
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value *Node
}

// M is shorthand for Member{Key: k, Value: v}.
func M(k string, v *Node) Member { return Member{Key: k, Value: v} }

var nullNode = &Node{kind: KindNull}

// Null returns the null node.
func Null() *Node { return nullNode }

// Bool returns a boolean node.
func Bool(b bool) *Node { return &Node{kind: KindBool, b: b} }

// String returns a string node.
func String(s string) *Node { return &Node{kind: KindString, s: s} }

// Number returns a number node holding n verbatim. Text that is not a JSON
// number fails to encode; check it with IsNumber.
func Number(n json.Number) *Node { return &Node{kind: KindNumber, s: string(n)} }

// Int returns a number node for an integer.
func Int(i int64) *Node { return &Node{kind: KindNumber, s: strconv.FormatInt(i, 10)} }

// Float returns a number node for a float using the shortest representation.
func Float(f float64) *Node {
	return &Node{kind: KindNumber, s: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Array returns an array node. Absent (nil) items are stored as null so that
// indices stay aligned.
func Array(items ...*Node) *Node {
	vals := make([]*Node, len(items))
	for i, it := range items {
		if it == nil {
			it = nullNode
		}
		vals[i] = it
	}
	return &Node{kind: KindArray, vals: vals}
}

// Object returns an object node. Members with an absent value are skipped.
// When a key repeats, the last value wins and keeps the first position.
func Object(members ...Member) *Node {
	n := &Node{kind: KindObject, keys: make([]string, 0, len(members)), vals: make([]*Node, 0, len(members))}
	var seen map[string]int
	for _, m := range members {
		if m.Value == nil {
			continue
		}
		if seen == nil {
			seen = make(map[string]int, len(members))
		}
		if at, ok := seen[m.Key]; ok {
			n.vals[at] = m.Value
			continue
		}
		seen[m.Key] = len(n.keys)
		n.keys = append(n.keys, m.Key)
		n.vals = append(n.vals, m.Value)
	}
	n.reindex()
	return n
}

func (n *Node) reindex() {
	if len(n.keys) < indexThreshold {
		n.index = nil
		return
	}
	n.index = make(map[string]int, len(n.keys))
	for i, k := range n.keys {
		n.index[k] = i
	}
}

// Kind reports the variant of n; KindAbsent for nil.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindAbsent
	}
	return n.kind
}

// IsAbsent reports whether n is the absent value.
func (n *Node) IsAbsent() bool { return n == nil }

// IsNull reports whether n is an explicit null.
func (n *Node) IsNull() bool { return n != nil && n.kind == KindNull }

// AsString returns the string value when n is a string.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	return n.s, true
}

// AsBool returns the boolean value when n is a boolean.
func (n *Node) AsBool() (bool, bool) {
	if n == nil || n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

// AsNumber returns the textual number when n is a number.
func (n *Node) AsNumber() (json.Number, bool) {
	if n == nil || n.kind != KindNumber {
		return "", false
	}
	return json.Number(n.s), true
}

// AsFloat64 converts a number node to float64.
func (n *Node) AsFloat64() (float64, bool) {
	if n == nil || n.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsInt64 converts a number node to int64. Numbers with a fraction or an
// exponent are rejected.
func (n *Node) AsInt64() (int64, bool) {
	if n == nil || n.kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(n.s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Len returns the number of items of an array or members of an object.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindArray, KindObject:
		return len(n.vals)
	}
	return 0
}

// Index returns the i-th array item, or nil when out of range or not an array.
func (n *Node) Index(i int) *Node {
	if n == nil || n.kind != KindArray || i < 0 || i >= len(n.vals) {
		return nil
	}
	return n.vals[i]
}

// Items returns a copy of the array items.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindArray {
		return nil
	}
	return append([]*Node(nil), n.vals...)
}

func (n *Node) lookup(key string) int {
	if n.index != nil {
		if i, ok := n.index[key]; ok {
			return i
		}
		return -1
	}
	for i, k := range n.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Get returns the member value for key, or nil when absent or n is not an
// object.
func (n *Node) Get(key string) *Node {
	if n == nil || n.kind != KindObject {
		return nil
	}
	if i := n.lookup(key); i >= 0 {
		return n.vals[i]
	}
	return nil
}

// Has reports whether an object has key.
func (n *Node) Has(key string) bool { return n.Get(key) != nil }

// Keys returns the object keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Members returns the object members in insertion order.
func (n *Node) Members() []Member {
	if n == nil || n.kind != KindObject {
		return nil
	}
	out := make([]Member, len(n.keys))
	for i, k := range n.keys {
		out[i] = Member{Key: k, Value: n.vals[i]}
	}
	return out
}

// Set returns an object equal to n with key bound to v. Unchanged members are
// shared with n. An absent n yields a new single-member object; an absent v
// deletes the key. Set on a non-object returns n unchanged.
func (n *Node) Set(key string, v *Node) *Node {
	if v == nil {
		return n.Delete(key)
	}
	if n == nil {
		return Object(Member{Key: key, Value: v})
	}
	if n.kind != KindObject {
		return n
	}
	out := n.shallow(1)
	out.put(key, v)
	return out
}

// Delete returns an object equal to n without key.
func (n *Node) Delete(key string) *Node {
	if n == nil || n.kind != KindObject {
		return n
	}
	if n.lookup(key) < 0 {
		return n
	}
	out := n.shallow(0)
	out.remove(key)
	return out
}

// Append returns an array equal to n with v added at the end. An absent n
// yields a single-item array.
func (n *Node) Append(v *Node) *Node {
	if v == nil {
		v = nullNode
	}
	if n == nil {
		return Array(v)
	}
	if n.kind != KindArray {
		return n
	}
	vals := make([]*Node, len(n.vals), len(n.vals)+1)
	copy(vals, n.vals)
	return &Node{kind: KindArray, vals: append(vals, v)}
}

// SetIndex returns an array equal to n with item i replaced by v.
func (n *Node) SetIndex(i int, v *Node) *Node {
	if n == nil || n.kind != KindArray || i < 0 || i >= len(n.vals) {
		return n
	}
	if v == nil {
		v = nullNode
	}
	vals := append([]*Node(nil), n.vals...)
	vals[i] = v
	return &Node{kind: KindArray, vals: vals}
}

// shallow copies the top level of an object, reserving room for extra keys.
func (n *Node) shallow(extra int) *Node {
	out := &Node{
		kind: KindObject,
		keys: make([]string, len(n.keys), len(n.keys)+extra),
		vals: make([]*Node, len(n.vals), len(n.vals)+extra),
	}
	copy(out.keys, n.keys)
	copy(out.vals, n.vals)
	if n.index != nil {
		out.index = make(map[string]int, len(n.index)+extra)
		for k, i := range n.index {
			out.index[k] = i
		}
	}
	return out
}

// put and remove mutate n in place; callers must own n exclusively.
func (n *Node) put(key string, v *Node) {
	if i := n.lookup(key); i >= 0 {
		n.vals[i] = v
		return
	}
	n.keys = append(n.keys, key)
	n.vals = append(n.vals, v)
	if n.index != nil {
		n.index[key] = len(n.keys) - 1
	} else if len(n.keys) >= indexThreshold {
		n.reindex()
	}
}

func (n *Node) remove(key string) {
	i := n.lookup(key)
	if i < 0 {
		return
	}
	n.keys = append(n.keys[:i], n.keys[i+1:]...)
	n.vals = append(n.vals[:i], n.vals[i+1:]...)
	n.reindex()
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindNull:
		return nullNode
	case KindArray:
		vals := make([]*Node, len(n.vals))
		for i, v := range n.vals {
			vals[i] = v.Clone()
		}
		return &Node{kind: KindArray, vals: vals}
	case KindObject:
		out := &Node{kind: KindObject, keys: append([]string(nil), n.keys...), vals: make([]*Node, len(n.vals))}
		for i, v := range n.vals {
			out.vals[i] = v.Clone()
		}
		out.reindex()
		return out
	default:
		c := *n
		return &c
	}
}
