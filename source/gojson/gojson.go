// Package gojson provides a JSON token driver backed by goccy/go-json.
package gojson

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	fhirview "github.com/reoring/fhirview"
	eng "github.com/reoring/fhirview/internal/engine"
	jsonsrc "github.com/reoring/fhirview/source/json"
)

// Driver returns a fhirview.JSONDriver backed by goccy/go-json.
func Driver() fhirview.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) fhirview.Source {
	return fhirview.SourceFromEngine(NewReader(r))
}
func (driverGoJSON) NewBytes(b []byte) fhirview.Source {
	return fhirview.SourceFromEngine(NewBytes(b))
}
func (driverGoJSON) Name() string { return "go-json" }

type source struct {
	dec  *j.Decoder
	keys jsonsrc.KeyTracker
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.keys.Open(true)
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '}':
			s.keys.Close()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		case '[':
			s.keys.Open(false)
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		default:
			s.keys.Close()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		if s.keys.IsKey() {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: -1}, nil
	case bool:
		s.keys.Value()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.keys.Value()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.keys.Value()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	}
	s.keys.Value()
	return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
}

// Location is unknown for go-json; its Decoder exposes no input offset.
func (s *source) Location() int64 { return -1 }
