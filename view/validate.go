package view

import (
	"context"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/codec"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/schema"
)

// Rule is an additional check run on every object the validator visits,
// after the structural checks of that object. Issues carry absolute paths;
// use v.Pointer to build them.
type Rule func(ctx context.Context, v View) fhirview.Issues

// ValidateOpt configures Validate.
type ValidateOpt struct {
	// Unknown decides whether keys without a descriptor are reported.
	Unknown fhirview.UnknownPolicy
	// Codes checks code fields against their enumerated values.
	Codes bool
	// Rules run at each object level, for example rules.RequiredPresent().
	Rules []Rule
	// FailFast stops at the first issue. Also enabled by
	// fhirview.WithFailFast on the context.
	FailFast bool
}

type collector struct {
	opt  ValidateOpt
	iss  fhirview.Issues
	stop bool
}

// add records issues and reports whether validation must stop.
func (c *collector) add(more ...fhirview.Issue) bool {
	if len(more) == 0 {
		return c.stop
	}
	if c.opt.FailFast {
		c.iss = append(c.iss, more[0])
		c.stop = true
		return true
	}
	c.iss = append(c.iss, more...)
	return false
}

// Validate checks every present member against its descriptor, recursing
// into complex members, every element of repeating members and extension
// side-channels. Absence is never an error here. It returns nil or Issues.
func (v View) Validate(ctx context.Context, opts ...ValidateOpt) error {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if fhirview.IsFailFast(ctx) {
		opt.FailFast = true
	}
	if v.n == nil {
		return nil
	}
	c := &collector{opt: opt}
	if err := v.validate(ctx, c); err != nil {
		return err
	}
	if len(c.iss) == 0 {
		return nil
	}
	return c.iss
}

func (v View) validate(ctx context.Context, c *collector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.n.Kind() != node.KindObject {
		c.add(fhirview.NewIssue(v.Path(), fhirview.CodeInvalidType, map[string]string{"want": v.typeName(), "got": v.n.Kind().String()}))
		return nil
	}
	if v.typ.IsResource() {
		if rt := v.n.Get("resourceType"); rt != nil {
			if s, _ := rt.AsString(); s != v.typ.Name {
				if c.add(fhirview.NewIssue(v.Pointer("resourceType"), fhirview.CodeResourceType, map[string]string{"want": v.typ.Name, "got": quote(s)})) {
					return nil
				}
			}
		}
	}
	for _, m := range v.n.Members() {
		if m.Key == "resourceType" && v.typ.IsResource() {
			continue
		}
		// null reads as absent
		if m.Value.IsNull() {
			if _, ok := v.typ.Field(m.Key); ok {
				continue
			}
			if name, ok := cutSide(m.Key); ok && v.typ.IsPrimitiveField(name) {
				continue
			}
		}
		if f, ok := v.typ.Field(m.Key); ok {
			if err := v.validateField(ctx, c, f, m.Value); err != nil || c.stop {
				return err
			}
			continue
		}
		if name, ok := cutSide(m.Key); ok && v.typ.IsPrimitiveField(name) {
			f, _ := v.typ.Field(name)
			if err := v.validateSide(ctx, c, f, m.Value); err != nil || c.stop {
				return err
			}
			continue
		}
		if c.opt.Unknown == fhirview.UnknownStrict {
			if c.add(fhirview.NewIssue(v.Pointer(m.Key), fhirview.CodeUnknownKey, map[string]string{"field": m.Key})) {
				return nil
			}
		}
	}
	for _, r := range c.opt.Rules {
		if c.add(r(ctx, v)...) {
			return nil
		}
	}
	return nil
}

func cutSide(key string) (string, bool) {
	if len(key) > 1 && key[0] == '_' {
		return key[1:], true
	}
	return "", false
}

func (v View) validateField(ctx context.Context, c *collector, f schema.Field, n *node.Node) error {
	at := v.at().Field(f.Name)
	if !f.Many {
		if n.Kind() == node.KindArray {
			c.add(fhirview.NewIssue(at.Pointer(), fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "array"}))
			return nil
		}
		return v.validateValue(ctx, c, f, n, at)
	}
	if n.Kind() != node.KindArray {
		c.add(fhirview.NewIssue(at.Pointer(), fhirview.CodeInvalidType, map[string]string{"want": "array of " + f.TypeLabel(), "got": n.Kind().String()}))
		return nil
	}
	for i, it := range n.Items() {
		// null entries of primitive arrays pair with the side-channel
		if it.IsNull() && f.IsPrimitive() {
			continue
		}
		if err := v.validateValue(ctx, c, f, it, at.Index(i)); err != nil || c.stop {
			return err
		}
	}
	return nil
}

func (v View) validateValue(ctx context.Context, c *collector, f schema.Field, n *node.Node, at fhirview.PathRef) error {
	if f.IsPrimitive() {
		c.add(checkPrimitive(f, n, at.Pointer(), c.opt.Codes)...)
		return nil
	}
	var child View
	var err error
	if f.TypeName == schema.AbstractResource {
		child, err = resourceAt(v.reg, n, at)
	} else {
		child, err = v.project(f, n, at)
	}
	if err != nil {
		c.add(fhirview.ToIssues(err)...)
		return nil
	}
	return child.validate(ctx, c)
}

// checkPrimitive checks one primitive value: JSON kind, integer range and
// temporal format, plus the code list when codes is set.
func checkPrimitive(f schema.Field, n *node.Node, path string, codes bool) fhirview.Issues {
	if n.Kind() != f.Primitive.Kind() {
		return issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": n.Kind().String()})
	}
	if n.Kind() == node.KindNumber {
		if text, _ := n.AsNumber(); !node.IsNumber(string(text)) {
			return issues(path, fhirview.CodeInvalidFormat, map[string]string{"want": f.TypeLabel(), "got": string(text)})
		}
	}
	switch {
	case f.Primitive.IsInteger():
		if _, err := integerValue(f.Primitive, n, path); err != nil {
			return fhirview.ToIssues(err)
		}
	case f.Primitive.IsTemporal():
		s, _ := n.AsString()
		if _, _, err := codec.Parse(f.Primitive.String(), s); err != nil {
			return fhirview.ToIssues(err).Rebase(path)
		}
	case f.Primitive == schema.Code && codes:
		if s, _ := n.AsString(); !f.AllowsCode(s) {
			return enumIssue(path, f, s)
		}
	}
	return nil
}

func (v View) validateSide(ctx context.Context, c *collector, f schema.Field, n *node.Node) error {
	at := v.at().Field(sideKey(f.Name))
	el := v.elementType()
	if !f.Many {
		if n.Kind() != node.KindObject {
			c.add(fhirview.NewIssue(at.Pointer(), fhirview.CodeInvalidType, map[string]string{"want": ElementType, "got": n.Kind().String()}))
			return nil
		}
		return v.child(el, n, at).validate(ctx, c)
	}
	if n.Kind() != node.KindArray {
		c.add(fhirview.NewIssue(at.Pointer(), fhirview.CodeInvalidType, map[string]string{"want": "array of " + ElementType, "got": n.Kind().String()}))
		return nil
	}
	for i, it := range n.Items() {
		switch it.Kind() {
		case node.KindNull:
		case node.KindObject:
			if err := v.child(el, it, at.Index(i)).validate(ctx, c); err != nil || c.stop {
				return err
			}
		default:
			if c.add(fhirview.NewIssue(at.Index(i).Pointer(), fhirview.CodeInvalidType, map[string]string{"want": ElementType, "got": it.Kind().String()})) {
				return nil
			}
		}
	}
	return nil
}
