package loader

import (
	"fmt"
	"go/types"
	"sort"

	"github.com/broady/hubgen/symbol"
)

// methods converts the method set of an interface in declaration order.
// go/types sorts interface methods by name, so they are re-sorted by
// position; embedded interface methods sort by their own declaration.
func (b *builder) methods(iface *types.Interface) []symbol.Method {
	funcs := make([]*types.Func, iface.NumMethods())
	for i := range funcs {
		funcs[i] = iface.Method(i)
	}
	sort.SliceStable(funcs, func(i, j int) bool { return funcs[i].Pos() < funcs[j].Pos() })

	methods := make([]symbol.Method, 0, len(funcs))
	for _, fn := range funcs {
		if !fn.Exported() {
			continue
		}
		methods = append(methods, b.method(fn))
	}
	return methods
}

// method converts a contract method signature. A leading context.Context
// parameter and a trailing error result are transport concerns and are
// dropped.
func (b *builder) method(fn *types.Func) symbol.Method {
	sig := fn.Type().(*types.Signature)
	m := symbol.Method{
		Name: fn.Name(),
		Doc:  b.docs[fn],
		Pos:  b.position(fn),
	}

	params := sig.Params()
	start := 0
	if params.Len() > 0 && isContext(params.At(0).Type()) {
		start = 1
	}
	for i := start; i < params.Len(); i++ {
		p := params.At(i)
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i-start)
		}
		// A variadic ...T is already typed []T.
		m.Params = append(m.Params, symbol.Param{Name: name, Type: b.convert(p.Type())})
	}

	results := sig.Results()
	end := results.Len()
	if end > 0 && isError(results.At(end-1).Type()) {
		end--
	}
	for i := 0; i < end; i++ {
		m.Results = append(m.Results, b.convert(results.At(i).Type()))
	}
	return m
}

// isContext checks if a type is context.Context.
func isContext(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// isError checks if a type is the predeclared error interface.
func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}
