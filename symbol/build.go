package symbol

import "reflect"

// Convenience constructors. Loaders and tests use these to assemble graphs.

// Primitive returns a symbol for a Go basic type such as "string" or "int64".
func Primitive(name string) *Symbol {
	return &Symbol{Kind: KindPrimitive, Name: name}
}

// Any returns a symbol for the empty interface.
func Any() *Symbol {
	return &Symbol{Kind: KindAny}
}

// Struct returns a named struct symbol.
func Struct(pkg, name string, members ...Member) *Symbol {
	return &Symbol{Kind: KindStruct, Package: pkg, Name: name, Members: members}
}

// Enum returns a named enum symbol over the given basic type.
func Enum(pkg, name string, underlying *Symbol, values ...EnumValue) *Symbol {
	return &Symbol{Kind: KindEnum, Package: pkg, Name: name, Underlying: underlying, Values: values}
}

// Alias returns a named defined type over a non-struct type.
func Alias(pkg, name string, underlying *Symbol) *Symbol {
	return &Symbol{Kind: KindAlias, Package: pkg, Name: name, Underlying: underlying}
}

// Interface returns a named interface symbol.
func Interface(pkg, name string, methods ...Method) *Symbol {
	return &Symbol{Kind: KindInterface, Package: pkg, Name: name, Methods: methods}
}

// Hub returns a hub contract symbol.
func Hub(pkg, name string, methods ...Method) *Symbol {
	s := Interface(pkg, name, methods...)
	s.Contract = ContractHub
	return s
}

// Receiver returns a receiver contract symbol.
func Receiver(pkg, name string, methods ...Method) *Symbol {
	s := Interface(pkg, name, methods...)
	s.Contract = ContractReceiver
	return s
}

// TypeParam returns a type parameter symbol.
func TypeParam(name string) *Symbol {
	return &Symbol{Kind: KindTypeParam, Name: name}
}

// Instance returns a generic instantiation of origin.
func Instance(origin *Symbol, args ...*Symbol) *Symbol {
	return &Symbol{Kind: KindInstance, Origin: origin, Args: args}
}

// Slice returns a []elem symbol.
func Slice(elem *Symbol) *Symbol {
	return &Symbol{Kind: KindSlice, Elem: elem}
}

// Array returns a [n]elem symbol.
func Array(elem *Symbol, n int64) *Symbol {
	return &Symbol{Kind: KindArray, Elem: elem, Len: n}
}

// Map returns a map[key]value symbol.
func Map(key, value *Symbol) *Symbol {
	return &Symbol{Kind: KindMap, Key: key, Elem: value}
}

// Pointer returns a *elem symbol.
func Pointer(elem *Symbol) *Symbol {
	return &Symbol{Kind: KindPointer, Elem: elem}
}

// Chan returns a channel symbol.
func Chan(dir ChanDir, elem *Symbol) *Symbol {
	return &Symbol{Kind: KindChan, Dir: dir, Elem: elem}
}

// Func returns a function type symbol.
func Func() *Symbol {
	return &Symbol{Kind: KindFunc}
}

// Field returns a struct member with an optional struct tag.
func Field(name string, typ *Symbol, tag string) Member {
	return Member{Name: name, Type: typ, Tag: reflect.StructTag(tag)}
}

// Fn returns a contract method with the given parameters and results.
func Fn(name string, params []Param, results ...*Symbol) Method {
	return Method{Name: name, Params: params, Results: results}
}

// P returns a parameter.
func P(name string, typ *Symbol) Param {
	return Param{Name: name, Type: typ}
}
