// Package typemap resolves symbols to TypeScript type expressions through an
// ordered registry of pluggable mappers.
package typemap

import (
	"github.com/broady/hubgen/symbol"
)

// Shape classifies how a resolved type crosses a call boundary.
type Shape int

const (
	// ShapeValue is a single value.
	ShapeValue Shape = iota
	// ShapeVoid is completion without a value.
	ShapeVoid
	// ShapeStream is zero or more values delivered over time.
	ShapeStream
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeValue:
		return "value"
	case ShapeVoid:
		return "void"
	case ShapeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Expr is a resolved TypeScript type expression.
type Expr struct {
	// Text is the rendered type, e.g. "number", "User[]", "AsyncIterable<Item>".
	Text string

	Shape Shape

	// Elem is the element type of a stream.
	Elem *Expr

	// Async is set by asynchronous wrapper mappers.
	Async bool

	// Nullable is set when the Go value may serialize as null
	// (pointers, slices, maps).
	Nullable bool

	// Refs lists the named symbols the text refers to, in first-use order.
	Refs []*symbol.Symbol
}

// Value returns a single-value expression.
func Value(text string, refs ...*symbol.Symbol) Expr {
	return Expr{Text: text, Refs: refs}
}

// Stream returns a stream expression over elem.
func Stream(elem Expr) Expr {
	e := elem
	e.Nullable = false
	return Expr{
		Text:  "AsyncIterable<" + elem.Text + ">",
		Shape: ShapeStream,
		Elem:  &e,
		Async: true,
		Refs:  elem.Refs,
	}
}

// mergeRefs appends refs from each expression, dropping duplicates.
func mergeRefs(exprs ...Expr) []*symbol.Symbol {
	var out []*symbol.Symbol
	seen := make(map[*symbol.Symbol]bool)
	for _, e := range exprs {
		for _, r := range e.Refs {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}
