// Package r4 carries the schema table for a subset of FHIR R4: the base
// element types, the common datatypes and a handful of clinical resources.
package r4

import (
	_ "embed"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reoring/fhirview/schema"
)

//go:embed definitions.yaml
var definitions []byte

// Definitions returns the raw YAML table.
func Definitions() []byte { return definitions }

// Load parses the embedded table into a new, resolved Registry.
func Load(opts ...schema.Option) (*schema.Registry, error) {
	return schema.LoadYAML(definitions, opts...)
}

var (
	once sync.Once
	reg  *schema.Registry
)

// Registry returns the shared R4 registry. The table is embedded, so a load
// failure is a programming error and panics.
func Registry() *schema.Registry {
	once.Do(func() {
		r, err := Load(schema.WithLogger(zerolog.Nop()))
		if err != nil {
			panic("r4: " + err.Error())
		}
		reg = r
	})
	return reg
}
