package codec_test

import (
	"context"
	"testing"
	"time"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/codec"
)

func TestDateTime_PartialPrecision(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		p    codec.Precision
	}{
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), codec.PrecisionYear},
		{"2024-05", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), codec.PrecisionMonth},
		{"2024-05-02", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), codec.PrecisionDay},
		{"2024-05-02T10:15:00Z", time.Date(2024, 5, 2, 10, 15, 0, 0, time.UTC), codec.PrecisionSecond},
	}
	for _, c := range cases {
		got, p, err := codec.Parse("dateTime", c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if !got.Equal(c.want) || p != c.p {
			t.Fatalf("%s: got %v/%d want %v/%d", c.in, got, p, c.want, c.p)
		}
		if back := codec.Format(got, p); back != c.in {
			t.Fatalf("%s: format gave %s", c.in, back)
		}
	}
}

func TestDateTime_RoundTripKeepsZone(t *testing.T) {
	ctx := context.Background()
	in := "2024-05-02T10:15:30.25+09:00"
	v, err := codec.DateTime().Decode(ctx, in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := codec.DateTime().Encode(ctx, v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %s != %s", out, in)
	}
}

func TestInstant_RequiresFullTimestamp(t *testing.T) {
	ctx := context.Background()
	for _, bad := range []string{"2024-05-02", "2024-05-02T10:15:00", "2024-05-02T10:15Z"} {
		_, err := codec.Instant().Decode(ctx, bad)
		iss, ok := fhirview.AsIssues(err)
		if !ok || iss[0].Code != fhirview.CodeInvalidFormat || iss[0].Hint != "instant" {
			t.Fatalf("%s: expected invalid_format, got %v", bad, err)
		}
	}
	if _, err := codec.Instant().Decode(ctx, "2024-05-02T10:15:00Z"); err != nil {
		t.Fatalf("valid instant rejected: %v", err)
	}
}

func TestDateAndTime(t *testing.T) {
	ctx := context.Background()
	if _, err := codec.Date().Decode(ctx, "2024-13-01"); err == nil {
		t.Fatalf("month 13 must be rejected")
	}
	if _, err := codec.Date().Decode(ctx, "2024-05-02T10:00:00Z"); err == nil {
		t.Fatalf("date must not carry a time")
	}
	d, err := codec.Date().Decode(ctx, "1970-03")
	if err != nil {
		t.Fatalf("partial date: %v", err)
	}
	if s, _ := codec.Date().Encode(ctx, d); s != "1970-03-01" {
		t.Fatalf("date encodes at day precision, got %s", s)
	}
	tm, err := codec.Time().Decode(ctx, "08:30:00")
	if err != nil || tm.Hour() != 8 || tm.Minute() != 30 {
		t.Fatalf("time decode: %v %v", tm, err)
	}
	if s, _ := codec.Time().Encode(ctx, tm); s != "08:30:00" {
		t.Fatalf("time encode: %s", s)
	}
}

func TestForPrimitive(t *testing.T) {
	for _, name := range []string{"date", "dateTime", "instant", "time"} {
		if _, ok := codec.ForPrimitive(name); !ok {
			t.Fatalf("missing codec for %s", name)
		}
	}
	if _, ok := codec.ForPrimitive("string"); ok {
		t.Fatalf("string is not temporal")
	}
}

func TestLeapSecond_IsFormatIssue(t *testing.T) {
	for kind, s := range map[string]string{
		"dateTime": "2016-12-31T23:59:60Z",
		"instant":  "2016-12-31T23:59:60.5Z",
		"time":     "23:59:60",
	} {
		_, _, err := codec.Parse(kind, s)
		iss, ok := fhirview.AsIssues(err)
		if !ok || len(iss) != 1 || iss[0].Code != fhirview.CodeInvalidFormat {
			t.Fatalf("%s %s: expected invalid_format, got %v", kind, s, err)
		}
		if iss[0].Cause != nil {
			t.Fatalf("%s %s: format issue must not carry a parser cause: %v", kind, s, iss[0].Cause)
		}
	}
}
