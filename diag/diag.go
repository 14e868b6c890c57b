// Package diag defines the failure taxonomy shared by every stage of hubgen.
//
// All failures are fatal for the run. Callers distinguish them with
// [IsCategory] or by matching [Code] values through errors.As.
package diag

import (
	"errors"
	"fmt"
)

// Category groups failures by the stage that produced them.
type Category int

const (
	// CategoryGraph means the symbol graph could not be constructed.
	CategoryGraph Category = iota + 1
	// CategoryMapping means a symbol has no target representation.
	CategoryMapping
	// CategoryShape means a contract or unit set is illegal or ambiguous.
	CategoryShape
	// CategoryOutput means the destination could not be synchronized.
	CategoryOutput
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryGraph:
		return "graph"
	case CategoryMapping:
		return "mapping"
	case CategoryShape:
		return "shape"
	case CategoryOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Code is a machine-readable failure identifier.
type Code string

const (
	CodeLoad            Code = "load_failed"
	CodeDirective       Code = "invalid_directive"
	CodeUnsupportedType Code = "unsupported_type"
	CodeDoubleAsync     Code = "double_async"
	CodeAsyncParam      Code = "async_param"
	CodeMultipleResults Code = "multiple_results"
	CodeOverload        Code = "overload"
	CodeDuplicateParam  Code = "duplicate_param"
	CodeAmbiguousType   Code = "ambiguous_type"
	CodeDuplicateUnit   Code = "duplicate_unit"
	CodeInvalidUnit     Code = "invalid_unit"
	CodeWrite           Code = "write_failed"
	CodeCleanup         Code = "cleanup_failed"
)

// Error is a classified generation failure.
type Error struct {
	Category Category
	Code     Code

	// Symbol is the identity of the offending symbol, when there is one.
	Symbol string

	// Unit and Destination locate output failures.
	Unit        string
	Destination string

	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Symbol != "":
		msg = fmt.Sprintf("%s (symbol %s)", msg, e.Symbol)
	case e.Unit != "":
		msg = fmt.Sprintf("%s (unit %s in %s)", msg, e.Unit, e.Destination)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Graphf reports a graph construction failure.
func Graphf(code Code, err error, format string, args ...any) *Error {
	return &Error{Category: CategoryGraph, Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Mappingf reports a symbol without a target representation.
func Mappingf(symbol string, format string, args ...any) *Error {
	return &Error{Category: CategoryMapping, Code: CodeUnsupportedType, Symbol: symbol, Message: fmt.Sprintf(format, args...)}
}

// Shapef reports an illegal or ambiguous contract shape.
func Shapef(code Code, symbol string, format string, args ...any) *Error {
	return &Error{Category: CategoryShape, Code: code, Symbol: symbol, Message: fmt.Sprintf(format, args...)}
}

// Output reports a failure synchronizing one unit or destination.
func Output(code Code, unit, destination string, err error) *Error {
	msg := "could not synchronize destination; it may be in an inconsistent state"
	return &Error{Category: CategoryOutput, Code: code, Unit: unit, Destination: destination, Message: msg, Err: err}
}

// Unitf reports an illegal generated unit set, such as two units sharing a name.
func Unitf(code Code, unit, destination string, format string, args ...any) *Error {
	return &Error{Category: CategoryShape, Code: code, Unit: unit, Destination: destination, Message: fmt.Sprintf(format, args...)}
}

// IsCategory reports whether err wraps a diag error of the given category.
func IsCategory(err error, c Category) bool {
	var de *Error
	return errors.As(err, &de) && de.Category == c
}

// CodeOf returns the code of the first diag error in err's chain, or "".
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// SymbolOf returns the symbol identity carried by err, or "".
func SymbolOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Symbol
	}
	return ""
}
