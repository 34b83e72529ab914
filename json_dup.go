package fhirview

import (
	"io"

	eng "github.com/reoring/fhirview/internal/engine"
)

// DetectJSONDuplicateKeysBytes reports every duplicate object key in data
// without building a tree. maxIssues < 0 means unlimited; a positive value
// stops early and appends a truncated entry.
func DetectJSONDuplicateKeysBytes(data []byte, strict Strictness, maxIssues int) (Issues, error) {
	return detectDuplicates(JSONBytes(data), strict, maxIssues)
}

// DetectJSONDuplicateKeysReader is DetectJSONDuplicateKeysBytes over an io.Reader.
func DetectJSONDuplicateKeysReader(r io.Reader, strict Strictness, maxIssues int) (Issues, error) {
	return detectDuplicates(JSONReader(r), strict, maxIssues)
}

func detectDuplicates(src Source, strict Strictness, maxIssues int) (Issues, error) {
	si, err := eng.DetectDuplicateKeys(engineTokenSource(src), toEngineDup(strict.OnDuplicateKey), maxIssues)
	if err != nil {
		return nil, err
	}
	return fromEngineIssues(si), nil
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Message: s.Message})
	}
	return iss
}
