package engine

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/reoring/fhirview/node"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrTrailingData reports a second value after the document.
var ErrTrailingData = errors.New("trailing data after document")

// DecodeNode builds a Node from the streaming token source. Object members
// keep their input order; numbers keep their text.
func DecodeNode(src TokenSource) (*node.Node, error) {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	n, err := decodeValue(src, tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err == nil {
		return nil, ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	return n, nil
}

func decodeValue(src TokenSource, tok Token) (*node.Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return node.String(tok.String), nil
	case KindNumber:
		return node.Number(json.Number(tok.Number)), nil
	case KindBool:
		return node.Bool(tok.Bool), nil
	case KindNull:
		return node.Null(), nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (*node.Node, error) {
	var members []node.Member
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndObject {
			return node.Object(members...), nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		members = append(members, node.Member{Key: tok.String, Value: v})
	}
}

func decodeArray(src TokenSource) (*node.Node, error) {
	var items []*node.Node
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndArray {
			return node.Array(items...), nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
