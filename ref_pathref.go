package fhirview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/fhirview/node"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

// Root returns the PathRef of the document root ("/").
func Root() PathRef { return &pathRef{} }

// At returns a PathRef for an existing pointer. Invalid pointers yield the
// root.
func At(pointer string) PathRef {
	parts, err := ParsePointer(pointer)
	if err != nil {
		return Root()
	}
	p := &pathRef{}
	for _, s := range parts {
		p = p.Field(s).(*pathRef)
	}
	return p
}

type pathRef struct {
	parts []string
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	return &pathRef{parts: append(append([]string{}, p.parts...), tokenEscaper.Replace(name))}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m}
}

var tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// ParsePointer splits an RFC 6901 pointer into unescaped reference tokens.
// Both "" and "/" denote the root.
func ParsePointer(pointer string) ([]string, error) {
	if pointer == "" || pointer == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("json pointer %q must start with '/'", pointer)
	}
	raw := strings.Split(pointer[1:], "/")
	out := make([]string, len(raw))
	for i, t := range raw {
		if strings.Contains(strings.ReplaceAll(strings.ReplaceAll(t, "~0", ""), "~1", ""), "~") {
			return nil, fmt.Errorf("json pointer %q has an invalid escape", pointer)
		}
		out[i] = tokenUnescaper.Replace(t)
	}
	return out, nil
}

// Lookup resolves pointer against n. Array tokens must be decimal indexes.
func Lookup(n *node.Node, pointer string) (*node.Node, bool) {
	parts, err := ParsePointer(pointer)
	if err != nil {
		return nil, false
	}
	cur := n
	for _, p := range parts {
		switch cur.Kind() {
		case node.KindObject:
			if !cur.Has(p) {
				return nil, false
			}
			cur = cur.Get(p)
		case node.KindArray:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(i)
		default:
			return nil, false
		}
	}
	return cur, !cur.IsAbsent()
}
