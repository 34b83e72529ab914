package node

import (
	"math/big"
	"strconv"
	"strings"
)

// Equal reports whether a and b hold the same value. Object key order is
// ignored; array order is not. Numbers compare by value, so 1 and 1.0 are
// equal.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindNumber:
		return numbersEqual(a.s, b.s)
	case KindArray:
		if len(a.vals) != len(b.vals) {
			return false
		}
		for i := range a.vals {
			if !Equal(a.vals[i], b.vals[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			if !Equal(a.vals[i], b.Get(k)) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(x, y string) bool {
	if x == y {
		return true
	}
	rx, ok := new(big.Rat).SetString(x)
	if !ok {
		return false
	}
	ry, ok := new(big.Rat).SetString(y)
	if !ok {
		return false
	}
	return rx.Cmp(ry) == 0
}

// Walk visits n and its descendants depth-first, passing the RFC 6901 JSON
// Pointer of each node ("" for the root). Returning false from fn skips the
// children of that node.
func Walk(n *Node, fn func(pointer string, n *Node) bool) {
	walk(n, "", fn)
}

func walk(n *Node, ptr string, fn func(string, *Node) bool) {
	if n == nil {
		return
	}
	if !fn(ptr, n) {
		return
	}
	switch n.kind {
	case KindArray:
		for i, v := range n.vals {
			walk(v, ptr+"/"+strconv.Itoa(i), fn)
		}
	case KindObject:
		for i, k := range n.keys {
			walk(n.vals[i], ptr+"/"+escapeToken(k), fn)
		}
	}
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeToken(s string) string { return tokenEscaper.Replace(s) }
