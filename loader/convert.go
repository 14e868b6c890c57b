package loader

import (
	"go/constant"
	"go/types"
	"reflect"
	"sort"
	"strconv"

	"github.com/broady/hubgen/symbol"
)

// namedSymbol returns the symbol of a declared type, creating it on first
// use. The symbol is memoized before its members are converted, so
// recursive types terminate.
func (b *builder) namedSymbol(tn *types.TypeName) *symbol.Symbol {
	if s, ok := b.named[tn]; ok {
		return s
	}

	s := &symbol.Symbol{
		Name: tn.Name(),
		Doc:  b.docs[tn],
		Pos:  b.position(tn),
	}
	if tn.Pkg() != nil {
		s.Package = tn.Pkg().Path()
	}
	_, analyzed := b.analyzed[tn.Pkg()]
	s.External = !analyzed
	b.named[tn] = s
	if s.External {
		b.external = append(b.external, s)
	}

	named, ok := tn.Type().(*types.Named)
	if !ok {
		// Declared alias of a non-named type; render its right-hand side.
		s.Kind = symbol.KindAlias
		s.Underlying = b.convert(tn.Type())
		return s
	}
	s.Marshaler = marshaler(named)

	switch u := named.Underlying().(type) {
	case *types.Struct:
		s.Kind = symbol.KindStruct
	case *types.Interface:
		s.Kind = symbol.KindInterface
	case *types.Basic:
		s.Kind = symbol.KindAlias
		if len(b.enumConstants(tn)) > 0 {
			s.Kind = symbol.KindEnum
		}
		s.Underlying = b.basic(u)
	default:
		s.Kind = symbol.KindAlias
	}

	// Members of out-of-scope types are only needed when they are generated.
	if s.External && !b.referenced {
		return s
	}

	if tparams := named.TypeParams(); tparams != nil {
		for i := 0; i < tparams.Len(); i++ {
			s.TypeParams = append(s.TypeParams, symbol.TypeParam(tparams.At(i).Obj().Name()))
		}
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		s.Members = b.members(u)
	case *types.Interface:
		s.Methods = b.methods(u)
	case *types.Basic:
		for _, c := range b.enumConstants(tn) {
			s.Values = append(s.Values, symbol.EnumValue{
				Name:  c.Name(),
				Value: constantValue(c.Val()),
				Doc:   b.docs[c],
			})
		}
	default:
		s.Underlying = b.convert(u)
	}
	return s
}

// enumConstants returns the constants declared with type tn, in source
// order.
func (b *builder) enumConstants(tn *types.TypeName) []*types.Const {
	if consts, ok := b.enums[tn]; ok {
		return consts
	}
	var consts []*types.Const
	if _, analyzed := b.analyzed[tn.Pkg()]; !analyzed && tn.Pkg() != nil {
		// Scan all const declarations in the package
		scope := tn.Pkg().Scope()
		for _, name := range scope.Names() {
			c, ok := scope.Lookup(name).(*types.Const)
			if ok && c.Exported() && types.Identical(c.Type(), tn.Type()) {
				consts = append(consts, c)
			}
		}
		sort.SliceStable(consts, func(i, j int) bool { return consts[i].Pos() < consts[j].Pos() })
	}
	b.enums[tn] = consts
	return consts
}

// convert converts a Go type to a symbol. It never fails; types without a
// serialized form are rejected when they are resolved.
func (b *builder) convert(t types.Type) *symbol.Symbol {
	t = types.Unalias(t)
	switch typ := t.(type) {
	case *types.Basic:
		return b.basic(typ)

	case *types.Named:
		if typ.TypeArgs().Len() == 0 {
			return b.namedSymbol(typ.Obj())
		}
		key := types.TypeString(typ, nil)
		if s, ok := b.instances[key]; ok {
			return s
		}
		s := symbol.Instance(b.namedSymbol(typ.Origin().Obj()))
		b.instances[key] = s
		for i := 0; i < typ.TypeArgs().Len(); i++ {
			s.Args = append(s.Args, b.convert(typ.TypeArgs().At(i)))
		}
		return s

	case *types.Pointer:
		return symbol.Pointer(b.convert(typ.Elem()))

	case *types.Slice:
		return symbol.Slice(b.convert(typ.Elem()))

	case *types.Array:
		return symbol.Array(b.convert(typ.Elem()), typ.Len())

	case *types.Map:
		return symbol.Map(b.convert(typ.Key()), b.convert(typ.Elem()))

	case *types.Chan:
		dir := symbol.ChanBoth
		switch typ.Dir() {
		case types.SendOnly:
			dir = symbol.ChanSend
		case types.RecvOnly:
			dir = symbol.ChanRecv
		}
		return symbol.Chan(dir, b.convert(typ.Elem()))

	case *types.Interface:
		if typ.Empty() {
			return symbol.Any()
		}
		return &symbol.Symbol{Kind: symbol.KindInterface, Name: typ.String()}

	case *types.Struct:
		// Anonymous struct
		return &symbol.Symbol{Kind: symbol.KindStruct, Members: b.members(typ)}

	case *types.TypeParam:
		return symbol.TypeParam(typ.Obj().Name())

	default:
		return symbol.Func()
	}
}

func (b *builder) basic(basic *types.Basic) *symbol.Symbol {
	switch basic.Kind() {
	case types.UnsafePointer:
		return symbol.Primitive("unsafe.Pointer")
	case types.Byte:
		return symbol.Primitive("byte")
	case types.Rune:
		return symbol.Primitive("rune")
	}
	return symbol.Primitive(basic.Name())
}

// members converts the fields of a struct. Unexported fields are skipped,
// except embedded ones whose exported fields the serializer promotes.
func (b *builder) members(st *types.Struct) []symbol.Member {
	var members []symbol.Member
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() && !field.Embedded() {
			continue
		}
		members = append(members, symbol.Member{
			Name:     field.Name(),
			Type:     b.convert(field.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Doc:      b.docs[field],
		})
	}
	return members
}

// marshaler reports custom serialization. encoding/json prefers
// MarshalJSON over MarshalText.
func marshaler(named *types.Named) symbol.MarshalKind {
	mset := types.NewMethodSet(types.NewPointer(named))
	has := func(name string) bool {
		sel := mset.Lookup(nil, name)
		if sel == nil {
			return false
		}
		sig, ok := sel.Type().(*types.Signature)
		return ok && sig.Params().Len() == 0 && sig.Results().Len() == 2
	}
	switch {
	case has("MarshalJSON"):
		return symbol.MarshalJSON
	case has("MarshalText"):
		return symbol.MarshalText
	}
	return symbol.MarshalNone
}

// constantValue converts a constant.Value to string, int64, float64 or bool.
func constantValue(v constant.Value) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if i64, ok := constant.Int64Val(v); ok {
			return i64
		}
		if u64, ok := constant.Uint64Val(v); ok {
			return strconv.FormatUint(u64, 10)
		}
		return v.ExactString()
	case constant.Float:
		f64, _ := constant.Float64Val(v)
		return f64
	case constant.Bool:
		return constant.BoolVal(v)
	default:
		return v.String()
	}
}
