package kle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	kperrors "github.com/matzehuels/keyplate/pkg/errors"
)

// TokenKind distinguishes key tokens from modifier tokens. The zero value is
// not a valid kind.
type TokenKind int

const (
	// KeyToken places a key with the current pending geometry.
	KeyToken TokenKind = iota + 1
	// ModifierToken changes interpreter state without placing a key.
	ModifierToken
)

// String returns a short name for the kind.
func (k TokenKind) String() string {
	switch k {
	case KeyToken:
		return "key"
	case ModifierToken:
		return "modifier"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is one element of a row.
type Token struct {
	Kind TokenKind

	// Label is the key's legend text for key tokens. Numeric keys keep their
	// literal JSON spelling.
	Label string

	// Mod holds the recognized fields of a modifier token.
	Mod Modifier
}

// LabelToken returns a key token with the given label.
func LabelToken(label string) Token { return Token{Kind: KeyToken, Label: label} }

// ModToken returns a modifier token.
func ModToken(m Modifier) Token { return Token{Kind: ModifierToken, Mod: m} }

// Modifier carries the recognized modifier fields. A nil field was absent
// from the record.
type Modifier struct {
	X, Y   *float64 // cursor jogs
	W, H   *float64 // pending key size
	R      *float64 // rotation angle, degrees
	RX, RY *float64 // rotation origin
}

// F returns a pointer to v, for building modifiers in code.
func F(v float64) *float64 { return &v }

// Row is an ordered sequence of tokens.
type Row []Token

// Document is an ordered sequence of rows.
type Document []Row

// KeyCount returns the number of key tokens in the document.
func (d Document) KeyCount() int {
	n := 0
	for _, row := range d {
		for _, t := range row {
			if t.Kind == KeyToken {
				n++
			}
		}
	}
	return n
}

// ParseDocument normalizes fragment and decodes it into a Document.
//
// It returns a MALFORMED_LAYOUT error carrying fragment if the normalized
// text is not valid JSON, if the top level is not an array, if any row is not
// an array, or if any token is neither a key (string or number) nor a
// modifier object with numeric fields.
func ParseDocument(fragment string) (Document, error) {
	text, err := Normalize(fragment)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, kperrors.Malformed(fragment, err, "invalid layout syntax")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, kperrors.Malformed(fragment, err, "unexpected data after last row")
	}

	rows, ok := top.([]any)
	if !ok {
		return nil, kperrors.Malformed(fragment, nil, "layout must be an array of rows, got %s", jsonKind(top))
	}

	doc := make(Document, 0, len(rows))
	for i, r := range rows {
		items, ok := r.([]any)
		if !ok {
			return nil, kperrors.Malformed(fragment, nil, "row %d must be an array, got %s", i, jsonKind(r))
		}
		row := make(Row, 0, len(items))
		for j, item := range items {
			tok, err := decodeToken(item)
			if err != nil {
				return nil, kperrors.Malformed(fragment, err, "row %d token %d", i, j)
			}
			row = append(row, tok)
		}
		doc = append(doc, row)
	}
	return doc, nil
}

func decodeToken(v any) (Token, error) {
	switch t := v.(type) {
	case string:
		return LabelToken(t), nil
	case json.Number:
		return LabelToken(t.String()), nil
	case map[string]any:
		m, err := decodeModifier(t)
		if err != nil {
			return Token{}, err
		}
		return ModToken(m), nil
	default:
		return Token{}, fmt.Errorf("unsupported token type %s", jsonKind(v))
	}
}

func decodeModifier(obj map[string]any) (Modifier, error) {
	var m Modifier
	fields := []struct {
		name string
		dst  **float64
	}{
		{"x", &m.X},
		{"y", &m.Y},
		{"w", &m.W},
		{"h", &m.H},
		{"r", &m.R},
		{"rx", &m.RX},
		{"ry", &m.RY},
	}
	for _, f := range fields {
		raw, ok := obj[f.name]
		if !ok {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return Modifier{}, fmt.Errorf("field %q: %w", f.name, err)
		}
		*f.dst = &v
	}
	return m, nil
}

// toFloat accepts finite JSON numbers and numeric strings.
func toFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, err
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		f = n
	default:
		return 0, fmt.Errorf("expected number, got %s", jsonKind(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
