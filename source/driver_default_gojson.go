// Package source installs go-json as the default JSON driver when imported.
package source

import (
	fhirview "github.com/reoring/fhirview"
	drvgojson "github.com/reoring/fhirview/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { fhirview.SetJSONDriver(drvgojson.Driver()) }
