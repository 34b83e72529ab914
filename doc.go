// Package fhirview provides:
//
// - A stable error model via Issues (JSON Pointer, code, message)
// - Streaming JSON input into an ordered, immutable node.Node tree with
//   duplicate-key/depth/size enforcement
// - YAML input, RFC 6902/7386 patching and line diffs over node trees
//
// Typed, schema-driven access lives in the subpackages:
//
// - schema: field/type tables, choice groups and the registry
// - view: Typed Views, accessors, choice and extension lookups, validation
//   and the copy-on-write Builder
// - r4: the built-in FHIR R4 table
//
// Typical usage:
//
//	n, err := fhirview.ParseBytes(ctx, data)
//	v, err := view.Resource(r4.Registry(), n)
//	status, ok, err := v.Code("status")
//	if err := v.Validate(ctx); err != nil {
//		iss, _ := fhirview.AsIssues(err)
//	}
package fhirview
