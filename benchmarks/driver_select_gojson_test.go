//go:build gojson

package benchmarks_test

import (
	fhirview "github.com/reoring/fhirview"
	drv "github.com/reoring/fhirview/source/gojson"
)

func init() {
	fhirview.SetJSONDriver(drv.Driver())
}
