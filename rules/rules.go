package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/view"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
	// Exists holds when the pointer resolves; want is ignored.
	Exists
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates a JSON Pointer, relative to the
// visited object, against a value using an operator.
func If(pointer string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(pointer), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...view.Rule) view.Rule {
	return func(ctx context.Context, v view.View) fhirview.Issues {
		if !evalConditional(v, c) {
			return nil
		}
		return And(rules...)(ctx, v)
	}
}

// For restricts rules to objects of the named type. Rules passed to
// Validate run on every object of the tree.
func For(typeName string, rules ...view.Rule) view.Rule {
	inner := And(rules...)
	return func(ctx context.Context, v view.View) fhirview.Issues {
		if v.Type() == nil || v.Type().Name != typeName {
			return nil
		}
		return inner(ctx, v)
	}
}

// ExclusiveChoices reports choice groups with more than one present member.
func ExclusiveChoices() view.Rule {
	return func(_ context.Context, v view.View) fhirview.Issues {
		var out fhirview.Issues
		for _, g := range v.Type().ChoiceGroups() {
			members, err := v.ChoiceMembers(g)
			if err != nil || len(members) < 2 {
				continue
			}
			iss := fhirview.NewIssue(v.Pointer(members[1].Name()), fhirview.CodeChoiceAmbiguous, map[string]string{"field": g})
			names := make([]string, len(members))
			for i, m := range members {
				names[i] = m.Name()
			}
			iss.Hint = strings.Join(names, ",")
			iss.Rule = "exclusive-choices"
			out = append(out, iss)
		}
		return out
	}
}

// RequiredPresent reports required fields of the visited type that are absent
// or null. A primitive counts as present when only its side-channel is set.
func RequiredPresent() view.Rule {
	return func(_ context.Context, v view.View) fhirview.Issues {
		n := v.Node()
		var out fhirview.Issues
		for _, f := range v.Type().RequiredFields() {
			if val := n.Get(f.Name); val != nil && !val.IsNull() {
				continue
			}
			if side := n.Get("_" + f.Name); f.IsPrimitive() && side != nil && !side.IsNull() {
				continue
			}
			iss := fhirview.NewIssue(v.Pointer(f.Name), fhirview.CodeRequired, map[string]string{"field": f.Name})
			iss.Rule = "required-present"
			out = append(out, iss)
		}
		return out
	}
}

// AtLeastOne ensures the collection at pointer has at least 1 element when
// present.
func AtLeastOne(pointer string) view.Rule {
	p := normalizePath(pointer)
	return func(_ context.Context, v view.View) fhirview.Issues {
		val, ok := fhirview.Lookup(v.Node(), p)
		if !ok || val.Kind() != node.KindArray {
			return nil
		}
		if val.Len() == 0 {
			return fhirview.Issues{ruleIssue(v, p, "at-least-one")}
		}
		return nil
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// collectionPointer addresses an array (e.g., "/identifier"); keyPointer is
// relative inside each element (e.g., "/value"). Elements without the key are
// skipped.
func UniqueBy(collectionPointer, keyPointer string) view.Rule {
	cp := normalizePath(collectionPointer)
	kp := normalizePath(keyPointer)
	return func(_ context.Context, v view.View) fhirview.Issues {
		val, ok := fhirview.Lookup(v.Node(), cp)
		if !ok || val.Kind() != node.KindArray {
			return nil
		}
		seen := map[string]int{}
		var out fhirview.Issues
		for i, elem := range val.Items() {
			kv, ok := fhirview.Lookup(elem, kp)
			if !ok {
				continue
			}
			key := kv.String()
			if j, dup := seen[key]; dup {
				iss := ruleIssue(v, cp+"/"+strconv.Itoa(i)+kp, "unique-by")
				iss.Params["first"] = j
				iss.Params["dup"] = i
				iss.Params["key"] = key
				out = append(out, iss)
			} else {
				seen[key] = i
			}
		}
		return out
	}
}

// ---------- Rule combinators ----------

// And executes all rules and concatenates Issues. Stops after the first
// failing rule under fail-fast.
func And(rules ...view.Rule) view.Rule {
	return func(ctx context.Context, v view.View) fhirview.Issues {
		var out fhirview.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			if iss := r(ctx, v); len(iss) > 0 {
				out = append(out, iss...)
				if fhirview.IsFailFast(ctx) {
					return out
				}
			}
		}
		return out
	}
}

// Or succeeds if any rule returns no Issues. When all fail the branch with
// the fewest Issues is returned.
func Or(rules ...view.Rule) view.Rule {
	return func(ctx context.Context, v view.View) fhirview.Issues {
		var best fhirview.Issues
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			iss := r(ctx, v)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// absolute joins the view path and a pointer relative to it.
func absolute(v view.View, rel string) string {
	parts, err := fhirview.ParsePointer(rel)
	if err != nil {
		return v.Path()
	}
	ref := fhirview.At(v.Path())
	for _, p := range parts {
		ref = ref.Field(p)
	}
	return ref.Pointer()
}

func ruleIssue(v view.View, rel, rule string) fhirview.Issue {
	iss := fhirview.NewIssue(absolute(v, rel), fhirview.CodeRule, map[string]string{"rule": rule})
	iss.Rule = rule
	return iss
}

func evalConditional(v view.View, c Conditional) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !evalConditional(v, it) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if evalConditional(v, it) {
				return true
			}
		}
		return false
	}
	// simple predicate
	cur, ok := fhirview.Lookup(v.Node(), c.path)
	if !ok {
		return false
	}
	if c.op == Exists {
		return true
	}
	return compare(plain(cur.ToAny()), c.op, plain(c.want))
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// compareOrdered orders numbers numerically and strings lexically (which
// orders FHIR dates of equal precision).
func compareOrdered(cur any, op Op, want any) bool {
	var d int
	switch a := cur.(type) {
	case float64:
		b, ok := want.(float64)
		if !ok {
			return false
		}
		switch {
		case a < b:
			d = -1
		case a > b:
			d = 1
		}
	case string:
		b, ok := want.(string)
		if !ok {
			return false
		}
		d = strings.Compare(a, b)
	default:
		return false
	}
	switch op {
	case Lt:
		return d < 0
	case Le:
		return d <= 0
	case Gt:
		return d > 0
	case Ge:
		return d >= 0
	}
	return false
}

// plain normalizes numbers to float64 so literals and decoded values compare
// equal; containers are converted recursively.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return string(t)
		}
		return f
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = plain(it)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, it := range t {
			out[k] = plain(it)
		}
		return out
	case *node.Node:
		return plain(t.ToAny())
	case fmt.Stringer:
		return t.String()
	}
	return v
}
