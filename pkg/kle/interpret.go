package kle

import (
	"fmt"

	kperrors "github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/geom"
)

// Key is a resolved key placement in grid units, Y pointing down.
type Key struct {
	Index int    // position among all keys, in encounter order
	Row   int    // document row the key token appeared in
	Label string // key token text

	// Center is the key center after applying the rotation group.
	Center geom.Vec
	// Size is the footprint in the key's own rotated frame.
	Size geom.Vec
	// Angle is the rotation group angle in degrees.
	Angle float64
}

// Rotation is a rotation group: an angle and the origin it turns about.
type Rotation struct {
	Angle  float64
	Origin geom.Vec
}

// defaultSize is the pending key size after every placement.
var defaultSize = geom.Vec{X: 1, Y: 1}

// state is the interpreter's mutable state for a single document pass.
//
// cursor.X is row-scoped and reset by startRow. cursor.Y, rot and the
// pending size are document-scoped; the size is reset by place.
type state struct {
	cursor geom.Vec
	size   geom.Vec
	rot    Rotation
	keys   []Key
}

func newState(capacity int) *state {
	return &state{size: defaultSize, keys: make([]Key, 0, capacity)}
}

func (s *state) startRow() { s.cursor.X = 0 }

func (s *state) endRow() { s.cursor.Y++ }

// apply folds a modifier into the state. Jogs accumulate; everything else
// replaces the current value.
func (s *state) apply(m Modifier) {
	if m.X != nil {
		s.cursor.X += *m.X
	}
	if m.Y != nil {
		s.cursor.Y += *m.Y
	}
	if m.W != nil {
		s.size.X = *m.W
	}
	if m.H != nil {
		s.size.Y = *m.H
	}
	if m.R != nil {
		s.rot.Angle = *m.R
	}
	if m.RX != nil {
		s.rot.Origin.X = *m.RX
	}
	if m.RY != nil {
		s.rot.Origin.Y = *m.RY
	}
}

// place emits a key at the cursor with the pending size, then advances the
// cursor by that width and resets the size.
func (s *state) place(row int, label string) {
	center := geom.Vec{
		X: s.cursor.X + s.size.X/2,
		Y: s.cursor.Y + s.size.Y/2,
	}
	s.keys = append(s.keys, Key{
		Index:  len(s.keys),
		Row:    row,
		Label:  label,
		Center: geom.Rotate(center, s.rot.Angle, s.rot.Origin),
		Size:   s.size,
		Angle:  s.rot.Angle,
	})
	s.cursor.X += s.size.X
	s.size = defaultSize
}

// Interpret walks doc and returns one Key per key token, in encounter order.
// An empty document yields no keys and no error.
//
// A token whose Kind is neither KeyToken nor ModifierToken is a
// MALFORMED_LAYOUT error; this only happens for documents built in code.
func Interpret(doc Document) ([]Key, error) {
	s := newState(doc.KeyCount())
	for i, row := range doc {
		s.startRow()
		for j, tok := range row {
			switch tok.Kind {
			case ModifierToken:
				s.apply(tok.Mod)
			case KeyToken:
				s.place(i, tok.Label)
			default:
				return nil, kperrors.Malformed(describeRow(row), nil, "row %d token %d: invalid token kind %s", i, j, tok.Kind)
			}
		}
		s.endRow()
	}
	return s.keys, nil
}

// Parse reads fragment and returns its key placements in grid units.
func Parse(fragment string) ([]Key, error) {
	doc, err := ParseDocument(fragment)
	if err != nil {
		return nil, err
	}
	return Interpret(doc)
}

// describeRow renders a row for diagnostics when no source text exists.
func describeRow(row Row) string {
	return fmt.Sprintf("%+v", row)
}
