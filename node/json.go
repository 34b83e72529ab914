package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// MarshalJSON encodes n with object keys in insertion order. The absent value
// encodes as null.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like MarshalJSON but applies indentation.
func MarshalIndent(n *Node, prefix, indent string) ([]byte, error) {
	raw, err := n.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := gojson.Indent(&out, raw, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// String renders n as compact JSON; intended for diagnostics.
func (n *Node) String() string {
	b, err := n.MarshalJSON()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// IsNumber reports whether s is a JSON number: valid JSON whose first and
// last bytes rule out every other kind of value ("12" quoted, [1], {} and
// surrounding whitespace are rejected).
func IsNumber(s string) bool {
	if s == "" || !isDigit(s[len(s)-1]) || (s[0] != '-' && !isDigit(s[0])) {
		return false
	}
	return gojson.Valid([]byte(s))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (n *Node) encode(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.b))
	case KindNumber:
		if !IsNumber(n.s) {
			return fmt.Errorf("node: invalid number %q", n.s)
		}
		buf.WriteString(n.s)
	case KindString:
		b, err := gojson.Marshal(n.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, v := range n.vals {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := gojson.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := n.vals[i].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// FromAny converts a decoded Go value (as produced by encoding/json or
// go-json with UseNumber) into a Node. Map keys are sorted because Go maps
// carry no order. *Node values are embedded as-is.
func FromAny(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return nullNode, nil
	case *Node:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("node: unsupported float %v", t)
		}
		return Float(t), nil
	case float32:
		return FromAny(float64(t))
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint32:
		return Int(int64(t)), nil
	case []*Node:
		return Array(t...), nil
	case []any:
		items := make([]*Node, len(t))
		for i, it := range t {
			c, err := FromAny(it)
			if err != nil {
				return nil, err
			}
			items[i] = c
		}
		return Array(items...), nil
	case []string:
		items := make([]*Node, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return Array(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			c, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			members = append(members, Member{Key: k, Value: c})
		}
		return Object(members...), nil
	default:
		return nil, fmt.Errorf("node: unsupported value of type %T", v)
	}
}

// MustFromAny is like FromAny but panics on error; intended for literals in
// tests and tables.
func MustFromAny(v any) *Node {
	n, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return n
}

// ToAny converts n into plain Go values: map[string]any, []any, json.Number,
// string, bool and nil.
func (n *Node) ToAny() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindBool:
		return n.b
	case KindNumber:
		return json.Number(n.s)
	case KindString:
		return n.s
	case KindArray:
		out := make([]any, len(n.vals))
		for i, v := range n.vals {
			out[i] = v.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			out[k] = n.vals[i].ToAny()
		}
		return out
	default:
		return nil
	}
}
