// Package codec converts FHIR temporal primitives between their wire strings
// and time.Time.
package codec

import (
	"context"
	"regexp"
	"strings"
	"time"

	fhirview "github.com/reoring/fhirview"
)

// Precision records how much of a partial date or dateTime was given.
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
	PrecisionSecond
	PrecisionTime // time of day without a date
)

const (
	layoutYear   = "2006"
	layoutMonth  = "2006-01"
	layoutDay    = "2006-01-02"
	layoutTime   = "15:04:05.999999999"
	layoutSecond = time.RFC3339Nano
)

var (
	dateRe     = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?)?$`)
	dateTimeRe = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01])(T([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?(Z|[+-]((0\d|1[0-3]):[0-5]\d|14:00)))?)?)?$`)
	instantRe  = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])T([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?(Z|[+-]((0\d|1[0-3]):[0-5]\d|14:00))$`)
	timeRe     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?$`)
)

// Parse reads a FHIR temporal string of the given primitive kind ("date",
// "dateTime", "instant" or "time") and reports its precision. Partial dates
// resolve to the first instant of the period in UTC.
func Parse(kind, s string) (time.Time, Precision, error) {
	var re *regexp.Regexp
	switch kind {
	case "date":
		re = dateRe
	case "dateTime":
		re = dateTimeRe
	case "instant":
		re = instantRe
	case "time":
		re = timeRe
	default:
		return time.Time{}, 0, formatIssue(kind, s, nil)
	}
	if !re.MatchString(s) {
		return time.Time{}, 0, formatIssue(kind, s, nil)
	}
	var (
		layout string
		p      Precision
	)
	switch {
	case kind == "time":
		layout, p = layoutTime, PrecisionTime
	case strings.Contains(s, "T"):
		layout, p = layoutSecond, PrecisionSecond
	case len(s) == len(layoutDay):
		layout, p = layoutDay, PrecisionDay
	case len(s) == len(layoutMonth):
		layout, p = layoutMonth, PrecisionMonth
	default:
		layout, p = layoutYear, PrecisionYear
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, 0, formatIssue(kind, s, err)
	}
	return t, p, nil
}

// Format renders t at precision p. PrecisionSecond keeps t's zone.
func Format(t time.Time, p Precision) string {
	switch p {
	case PrecisionYear:
		return t.Format(layoutYear)
	case PrecisionMonth:
		return t.Format(layoutMonth)
	case PrecisionDay:
		return t.Format(layoutDay)
	case PrecisionTime:
		return t.Format(layoutTime)
	}
	return t.Format(layoutSecond)
}

func formatIssue(kind, s string, cause error) error {
	iss := fhirview.NewIssue("/", fhirview.CodeInvalidFormat, map[string]string{"want": kind, "got": s})
	iss.Hint = kind
	iss.Cause = cause
	return fhirview.Issues{iss}
}

type temporal struct {
	kind string
	out  Precision // encode precision
}

func (c temporal) Decode(ctx context.Context, s string) (time.Time, error) {
	t, _, err := Parse(c.kind, s)
	return t, err
}

func (c temporal) Encode(ctx context.Context, t time.Time) (string, error) {
	if t.IsZero() && c.kind != "time" {
		return "", fhirview.Issues{fhirview.NewIssue("/", fhirview.CodeInvalidFormat, map[string]string{"want": c.kind, "got": "zero time"})}
	}
	return Format(t, c.out), nil
}

// Date returns the codec for FHIR date (YYYY, YYYY-MM or YYYY-MM-DD). Encode
// emits day precision.
func Date() fhirview.Codec[string, time.Time] { return temporal{kind: "date", out: PrecisionDay} }

// DateTime returns the codec for FHIR dateTime. Any partial date is accepted;
// a time part requires seconds and a zone. Encode emits full precision in t's
// zone.
func DateTime() fhirview.Codec[string, time.Time] {
	return temporal{kind: "dateTime", out: PrecisionSecond}
}

// Instant returns the codec for FHIR instant (full timestamp with zone).
func Instant() fhirview.Codec[string, time.Time] {
	return temporal{kind: "instant", out: PrecisionSecond}
}

// Time returns the codec for FHIR time (hh:mm:ss[.fff]); the date part of
// decoded values is 0000-01-01.
func Time() fhirview.Codec[string, time.Time] { return temporal{kind: "time", out: PrecisionTime} }

// ForPrimitive returns the codec for a temporal primitive name, or false.
func ForPrimitive(name string) (fhirview.Codec[string, time.Time], bool) {
	switch name {
	case "date":
		return Date(), true
	case "dateTime":
		return DateTime(), true
	case "instant":
		return Instant(), true
	case "time":
		return Time(), true
	}
	return nil, false
}
