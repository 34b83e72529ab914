// Package view provides typed, read-only projections over node trees and a
// copy-on-write Builder for producing new ones.
//
// A View pairs an object Node with its schema.Type. Accessors resolve members
// by name against the type, so a misspelled member is an unknown_field issue
// rather than a silent absence:
//
//	obs, err := view.Resource(r4.Registry(), n)
//	status, ok, err := obs.Code("status")
//	value, ok, err := obs.Choice("value")
//	ext, ok, err := obs.Extension("status") // the "_status" element
//
// Validate walks the whole tree and returns every structural problem as
// fhirview.Issues. Builders never modify the Node they were seeded with:
//
//	amended, err := view.With(obs).SetCode("status", "amended").Build()
package view
