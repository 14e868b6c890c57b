// Package symbol defines the queryable type graph of an analyzed Go program.
// Symbols are language-level facts about declared types and contracts; the
// typemap and typescript packages turn them into target language source code.
package symbol

import (
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

// Symbol is a reference into a Graph. Symbols are compared by pointer
// identity and are not modified once the graph is built.
type Symbol struct {
	Kind Kind

	// Name is the declared name for named kinds, the Go spelling for
	// primitives ("int64", "string") and the parameter name for type params.
	Name string

	// Package is the import path of the declaring package.
	// Empty for builtins and structural symbols.
	Package string

	// Origin and Args describe a generic instantiation (KindInstance).
	Origin *Symbol
	Args   []*Symbol

	// Elem is the element of a slice, array, pointer, chan or map value.
	Elem *Symbol
	// Key is the map key.
	Key *Symbol
	// Len is the length of an array.
	Len int64
	// Dir is the direction of a chan.
	Dir ChanDir

	// Underlying is the basic type of an enum or the aliased type of an alias.
	Underlying *Symbol

	// TypeParams are the declared type parameters (KindTypeParam symbols).
	TypeParams []*Symbol

	Members []Member
	Values  []EnumValue
	Methods []Method

	// Contract marks hub and receiver interfaces.
	Contract ContractKind
	// Pair is the receiver contract paired with a hub.
	Pair *Symbol
	// Path is the endpoint path declared on a hub.
	Path string

	// Include marks a type explicitly requested for data-contract generation.
	Include bool

	// External is true for symbols declared outside the analyzed packages.
	External bool

	// Marshaler records custom serialization.
	Marshaler MarshalKind

	Doc string
	Pos token.Position
}

// Member is a struct field.
type Member struct {
	Name string
	Type *Symbol

	// Tag holds the naming-override annotations (json, msgpack, ...).
	Tag reflect.StructTag

	// Embedded fields without a serialization name are rendered as
	// inheritance.
	Embedded bool
	Doc      string
}

// EnumValue is a declared constant of an enum symbol.
// Value is one of string, int64, float64 or bool.
type EnumValue struct {
	Name  string
	Value any
	Doc   string
}

// Method is a contract method. Loaders drop a leading context.Context
// parameter and a trailing error result.
type Method struct {
	Name    string
	Params  []Param
	Results []*Symbol
	Doc     string
	Pos     token.Position
}

// Param is a method parameter.
type Param struct {
	Name string
	Type *Symbol
}

// ID returns the fully qualified identity of the symbol.
func (s *Symbol) ID() string {
	if s == nil {
		return "<nil>"
	}
	switch s.Kind {
	case KindInstance:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.ID()
		}
		return s.Origin.ID() + "[" + strings.Join(args, ",") + "]"
	case KindSlice:
		return "[]" + s.Elem.ID()
	case KindArray:
		return "[" + strconv.FormatInt(s.Len, 10) + "]" + s.Elem.ID()
	case KindMap:
		return "map[" + s.Key.ID() + "]" + s.Elem.ID()
	case KindPointer:
		return "*" + s.Elem.ID()
	case KindChan:
		switch s.Dir {
		case ChanRecv:
			return "<-chan " + s.Elem.ID()
		case ChanSend:
			return "chan<- " + s.Elem.ID()
		}
		return "chan " + s.Elem.ID()
	case KindAny:
		return "any"
	case KindStruct:
		if s.Name == "" {
			return "struct{...}"
		}
	case KindFunc:
		return "func"
	}
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// String implements fmt.Stringer.
func (s *Symbol) String() string { return s.ID() }

// IsContract reports whether s is a hub or receiver interface.
func (s *Symbol) IsContract() bool {
	return s != nil && s.Kind == KindInterface && s.Contract != ContractNone
}

// IsBytes reports whether s is []byte.
func (s *Symbol) IsBytes() bool {
	return s.Kind == KindSlice && s.Elem.Kind == KindPrimitive && (s.Elem.Name == "byte" || s.Elem.Name == "uint8")
}

// Is reports whether s is the named symbol pkg.name. For instances the
// origin is compared.
func (s *Symbol) Is(pkg, name string) bool {
	if s == nil {
		return false
	}
	if s.Kind == KindInstance {
		s = s.Origin
	}
	return s.Package == pkg && s.Name == name
}
