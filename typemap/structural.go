package typemap

import (
	"log/slog"
	"strings"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/symbol"
)

// structural renders symbols no mapper claims. Named symbols render as a
// reference and never expand their members, so recursive types terminate.
func (r *Registry) structural(s *symbol.Symbol) (Expr, error) {
	switch s.Kind {
	case symbol.KindPrimitive:
		return r.primitive(s)

	case symbol.KindAny:
		return r.unknown(), nil

	case symbol.KindTypeParam:
		return Value(s.Name), nil

	case symbol.KindSlice, symbol.KindArray:
		if s.IsBytes() {
			// encoding/json writes []byte as base64.
			e := Value("string")
			e.Nullable = s.Kind == symbol.KindSlice
			return e, nil
		}
		elem, err := r.plain(s, s.Elem)
		if err != nil {
			return Expr{}, err
		}
		e := Value(arrayOf(elem.Text), elem.Refs...)
		e.Nullable = s.Kind == symbol.KindSlice
		return e, nil

	case symbol.KindMap:
		return r.mapType(s)

	case symbol.KindPointer:
		inner, err := r.Resolve(s.Elem)
		if err != nil {
			return Expr{}, err
		}
		inner.Nullable = true
		return inner, nil

	case symbol.KindStruct, symbol.KindEnum, symbol.KindAlias:
		if s.Name == "" {
			return r.object(s)
		}
		return r.named(s)

	case symbol.KindInterface:
		if s.IsContract() {
			return Expr{}, diag.Mappingf(s.ID(), "%s contract cannot be used as a value", s.Contract)
		}
		if s.Marshaler == symbol.MarshalText {
			return Value("string"), nil
		}
		r.logger.Warn("interface type has no static shape",
			slog.String("symbol", s.ID()),
			slog.String("type", r.cfg.UnknownType),
		)
		return r.unknown(), nil

	case symbol.KindInstance:
		return r.instance(s)

	case symbol.KindChan:
		return Expr{}, diag.Mappingf(s.ID(), "channel is only valid as a contract result")

	case symbol.KindFunc:
		return Expr{}, diag.Mappingf(s.ID(), "function types cannot be serialized")
	}
	return Expr{}, diag.Mappingf(s.ID(), "unsupported kind %s", s.Kind)
}

func (r *Registry) primitive(s *symbol.Symbol) (Expr, error) {
	switch s.Name {
	case "bool":
		return Value("boolean"), nil
	case "string":
		return Value("string"), nil
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"byte", "rune", "float32", "float64":
		return Value("number"), nil
	}
	return Expr{}, diag.Mappingf(s.ID(), "%s has no serialized form", s.Name)
}

func (r *Registry) mapType(s *symbol.Symbol) (Expr, error) {
	key := "string"
	var refs []Expr
	switch k := s.Key; {
	case k.Kind == symbol.KindEnum || k.Kind == symbol.KindAlias:
		ke, err := r.Resolve(k)
		if err != nil {
			return Expr{}, err
		}
		if len(ke.Refs) > 0 {
			key = ke.Text
			refs = append(refs, ke)
		}
	case k.Kind == symbol.KindPrimitive:
		if _, err := r.primitive(k); err != nil || k.Name == "bool" {
			return Expr{}, diag.Mappingf(s.ID(), "map key %s cannot be serialized", k.Name)
		}
	case k.Marshaler == symbol.MarshalText:
	default:
		return Expr{}, diag.Mappingf(s.ID(), "map key %s cannot be serialized", k.ID())
	}

	val, err := r.plain(s, s.Elem)
	if err != nil {
		return Expr{}, err
	}
	e := Value("Record<" + key + ", " + val.Text + ">")
	e.Refs = mergeRefs(append(refs, val)...)
	e.Nullable = true
	return e, nil
}

func (r *Registry) named(s *symbol.Symbol) (Expr, error) {
	switch s.Marshaler {
	case symbol.MarshalText:
		return Value("string"), nil
	case symbol.MarshalJSON:
		return r.unknown(), nil
	}
	if s.External && !r.cfg.ReferencedPackages {
		r.logger.Warn("type declared outside analyzed packages",
			slog.String("symbol", s.ID()),
			slog.String("type", r.cfg.UnknownType),
		)
		return r.unknown(), nil
	}
	e := Value(r.cfg.TypeName(s.Name), s)
	if u := s.Underlying; s.Kind == symbol.KindAlias && u != nil {
		e.Nullable = u.Kind == symbol.KindSlice || u.Kind == symbol.KindMap || u.Kind == symbol.KindPointer
	}
	return e, nil
}

func (r *Registry) instance(s *symbol.Symbol) (Expr, error) {
	origin := s.Origin
	if origin == nil {
		return Expr{}, diag.Mappingf(s.ID(), "generic instance without origin")
	}
	base, err := r.named(origin)
	if err != nil {
		return Expr{}, err
	}
	if len(base.Refs) == 0 {
		// Rendered opaquely; arguments are irrelevant.
		return base, nil
	}
	args := make([]string, len(s.Args))
	exprs := []Expr{base}
	for i, a := range s.Args {
		ae, err := r.plain(s, a)
		if err != nil {
			return Expr{}, err
		}
		args[i] = ae.Text
		exprs = append(exprs, ae)
	}
	e := Value(base.Text + "<" + strings.Join(args, ", ") + ">")
	e.Refs = mergeRefs(exprs...)
	return e, nil
}

// plain resolves a nested type that must be an ordinary serialized value.
func (r *Registry) plain(outer, inner *symbol.Symbol) (Expr, error) {
	e, err := r.Resolve(inner)
	if err != nil {
		return Expr{}, err
	}
	if e.Async || e.Shape != ShapeValue {
		return Expr{}, diag.Mappingf(outer.ID(), "%s is only valid as a contract result", inner.ID())
	}
	return e, nil
}

// arrayOf wraps union and intersection element types in parentheses.
func arrayOf(elem string) string {
	depth := 0
	for _, c := range elem {
		switch c {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			depth--
		case '|', '&':
			if depth == 0 {
				return "(" + elem + ")[]"
			}
		}
	}
	return elem + "[]"
}
