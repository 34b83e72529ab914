package fhirview

// UnknownPolicy controls how keys without a field descriptor are handled.
type UnknownPolicy int

const (
	UnknownPassthrough UnknownPolicy = iota // Keep unknown keys and ignore them.
	UnknownStrict                           // Report unknown keys as issues.
)

func (p UnknownPolicy) String() string {
	if p == UnknownStrict {
		return "strict"
	}
	return "passthrough"
}

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseSeverity maps "ignore", "warn" and "error" to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "ignore", "":
		return Ignore, true
	case "warn":
		return Warn, true
	case "error":
		return Error, true
	}
	return Ignore, false
}

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	FailFast   bool
	// Warnings receives non-fatal issues such as duplicate keys under Warn.
	Warnings func(Issue)
}
