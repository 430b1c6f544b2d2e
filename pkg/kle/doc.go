// Package kle reads keyboard layouts written in the KLE fragment format and
// resolves them into key placements on the layout grid.
//
// # Fragment Format
//
// A fragment is one or more row arrays separated by commas or newlines,
// without an enclosing outer array. Object keys may be unquoted and
// JavaScript-style comments are allowed:
//
//	["Esc","Q","W","E"],
//	[{w:1.25},"Caps","A","S"], // home row
//	[{r:15,rx:4,ry:2},"Space"]
//
// A string or number in a row is a key. An object is a modifier that changes
// the geometry of the keys that follow it; it never produces a key itself.
// Recognized modifier fields are x, y, w, h, r, rx and ry. Other fields (KLE
// colors, legends, profiles) are ignored.
//
// # Stages
//
// Reading a layout is split into three independently testable stages:
//
//  1. [Normalize] turns fragment text into strict JSON.
//  2. [ParseDocument] decodes that JSON into a typed [Document].
//  3. [Interpret] walks the document and emits one [Key] per key token.
//
// [Parse] runs all three.
//
// # Interpretation
//
// The interpreter keeps a cursor, a pending key size and a rotation group.
// The cursor's x component is reset at the start of every row and its y
// component advances by one unit at the end of every row. The rotation group
// and any y jogs persist across rows. The pending size returns to 1x1 after
// every key.
//
// All coordinates produced by this package are grid units with Y pointing
// down, as in the layout file. Conversion to physical units and the Y-up
// modeling frame happens in package plate.
//
// # Errors
//
// Any syntax error, non-array row, or token that is neither a key nor a
// modifier is a MALFORMED_LAYOUT error carrying the original fragment. There
// is no partial recovery: a single skipped token would shift every key after
// it.
package kle
