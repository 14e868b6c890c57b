package typemap

import (
	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/symbol"
)

// AsyncPackage is the import path of the Task and Future wrappers.
const AsyncPackage = "github.com/broady/hubgen/async"

// Builtins returns the default mappers in registration order.
func Builtins() []Mapper {
	return []Mapper{
		WellKnownMapper{},
		TaskMapper{},
		FutureMapper{},
		SequenceMapper{},
		ReaderMapper{},
	}
}

// unpointer returns the pointee of a pointer symbol, or s itself.
func unpointer(s *symbol.Symbol) *symbol.Symbol {
	if s != nil && s.Kind == symbol.KindPointer {
		return s.Elem
	}
	return s
}

// TaskMapper erases async.Task to a completion without a value.
type TaskMapper struct{}

func (TaskMapper) CanHandle(s *symbol.Symbol) bool {
	return unpointer(s).Is(AsyncPackage, "Task")
}

func (TaskMapper) Map(s *symbol.Symbol, r *Registry) (Expr, error) {
	return Expr{Text: "void", Shape: ShapeVoid, Async: true}, nil
}

// FutureMapper erases async.Future[T] to T.
type FutureMapper struct{}

func (FutureMapper) CanHandle(s *symbol.Symbol) bool {
	s = unpointer(s)
	return s.Kind == symbol.KindInstance && s.Is(AsyncPackage, "Future")
}

func (FutureMapper) Map(s *symbol.Symbol, r *Registry) (Expr, error) {
	inst := unpointer(s)
	if len(inst.Args) != 1 {
		return Expr{}, diag.Mappingf(s.ID(), "future must have exactly one type argument")
	}
	inner, err := r.Unwrap(s, inst.Args[0])
	if err != nil {
		return Expr{}, err
	}
	inner.Async = true
	return inner, nil
}

// SequenceMapper maps iter.Seq[T] and iter.Seq2[T, error] to a stream of T.
// Range-over-func iterators require Go 1.23.
type SequenceMapper struct{}

func (SequenceMapper) Supported(p symbol.Profile) bool {
	return !p.DisableAsyncSequence && p.AtLeast("1.23")
}

func (SequenceMapper) CanHandle(s *symbol.Symbol) bool {
	if s.Kind != symbol.KindInstance {
		return false
	}
	switch {
	case s.Is("iter", "Seq"):
		return len(s.Args) == 1
	case s.Is("iter", "Seq2"):
		return len(s.Args) == 2 && s.Args[1].Is("", "error")
	}
	return false
}

func (SequenceMapper) Map(s *symbol.Symbol, r *Registry) (Expr, error) {
	elem, err := r.Unwrap(s, s.Args[0])
	if err != nil {
		return Expr{}, err
	}
	return Stream(elem), nil
}

// ReaderMapper maps receive-only channels to a stream of their element.
type ReaderMapper struct{}

func (ReaderMapper) Supported(p symbol.Profile) bool {
	return !p.DisableStreamedReader
}

func (ReaderMapper) CanHandle(s *symbol.Symbol) bool {
	return s.Kind == symbol.KindChan && s.Dir == symbol.ChanRecv
}

func (ReaderMapper) Map(s *symbol.Symbol, r *Registry) (Expr, error) {
	elem, err := r.Unwrap(s, s.Elem)
	if err != nil {
		return Expr{}, err
	}
	return Stream(elem), nil
}

// wellKnown maps standard library types with a fixed encoding/json form.
var wellKnown = map[string]string{
	"time.Time":                "string",
	"time.Duration":            "number",
	"encoding/json.Number":     "string",
	"net/url.URL":              "string",
	"net/netip.Addr":           "string",
	"net/netip.Prefix":         "string",
	"math/big.Int":             "string",
	"encoding/json.RawMessage": "",
}

// WellKnownMapper renders standard library types with a fixed wire form.
// json.RawMessage renders as the configured unknown type.
type WellKnownMapper struct{}

func (WellKnownMapper) CanHandle(s *symbol.Symbol) bool {
	_, ok := wellKnown[s.ID()]
	return ok
}

func (WellKnownMapper) Map(s *symbol.Symbol, r *Registry) (Expr, error) {
	text := wellKnown[s.ID()]
	if text == "" {
		return r.unknown(), nil
	}
	return Value(text), nil
}

// StaticMapper renders one symbol, identified by its ID, as fixed text.
// Generic instances match on their origin.
type StaticMapper struct {
	ID   string
	Text string
}

// Static returns a StaticMapper.
func Static(id, text string) StaticMapper {
	return StaticMapper{ID: id, Text: text}
}

func (m StaticMapper) CanHandle(s *symbol.Symbol) bool {
	if s.Kind == symbol.KindInstance && s.Origin != nil {
		return s.Origin.ID() == m.ID
	}
	return s.ID() == m.ID
}

func (m StaticMapper) Map(s *symbol.Symbol, r *Registry) (Expr, error) {
	return Value(m.Text), nil
}
