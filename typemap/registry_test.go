package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/symbol"
	"github.com/broady/hubgen/transpile"
)

const pkg = "example.com/app"

var (
	task   = symbol.Struct(AsyncPackage, "Task")
	future = &symbol.Symbol{Kind: symbol.KindStruct, Package: AsyncPackage, Name: "Future", TypeParams: []*symbol.Symbol{symbol.TypeParam("T")}}
	seq    = &symbol.Symbol{Kind: symbol.KindInterface, Package: "iter", Name: "Seq", External: true}
	seq2   = &symbol.Symbol{Kind: symbol.KindInterface, Package: "iter", Name: "Seq2", External: true}
	errSym = symbol.Interface("", "error")
)

func newRegistry(t *testing.T, overrides ...Mapper) *Registry {
	t.Helper()
	cfg, err := transpile.New(transpile.Config{})
	require.NoError(t, err)
	return NewRegistry(cfg, symbol.Profile{}, nil, overrides...)
}

func TestStructural(t *testing.T) {
	user := symbol.Struct(pkg, "User")
	role := symbol.Enum(pkg, "Role", symbol.Primitive("string"))
	page := &symbol.Symbol{Kind: symbol.KindStruct, Package: pkg, Name: "Page", TypeParams: []*symbol.Symbol{symbol.TypeParam("T")}}

	tests := []struct {
		name     string
		sym      *symbol.Symbol
		want     string
		nullable bool
	}{
		{"bool", symbol.Primitive("bool"), "boolean", false},
		{"int64", symbol.Primitive("int64"), "number", false},
		{"float32", symbol.Primitive("float32"), "number", false},
		{"string", symbol.Primitive("string"), "string", false},
		{"any", symbol.Any(), "unknown", false},
		{"bytes", symbol.Slice(symbol.Primitive("byte")), "string", true},
		{"slice", symbol.Slice(symbol.Primitive("string")), "string[]", true},
		{"array", symbol.Array(symbol.Primitive("int"), 3), "number[]", false},
		{"nested slice", symbol.Slice(symbol.Slice(user)), "User[][]", true},
		{"map", symbol.Map(symbol.Primitive("string"), symbol.Primitive("int")), "Record<string, number>", true},
		{"int keyed map", symbol.Map(symbol.Primitive("int"), user), "Record<string, User>", true},
		{"enum keyed map", symbol.Map(role, symbol.Primitive("bool")), "Record<Role, boolean>", true},
		{"pointer", symbol.Pointer(user), "User", true},
		{"named", user, "User", false},
		{"named slice", symbol.Alias(pkg, "IDs", symbol.Slice(symbol.Primitive("string"))), "IDs", true},
		{"instance", symbol.Instance(page, user), "Page<User>", false},
		{"type param", symbol.TypeParam("T"), "T", false},
		{"time", symbol.Struct("time", "Time"), "string", false},
		{"duration", symbol.Enum("time", "Duration", symbol.Primitive("int64")), "number", false},
		{"raw message", symbol.Alias("encoding/json", "RawMessage", symbol.Slice(symbol.Primitive("byte"))), "unknown", false},
		{"text marshaler", &symbol.Symbol{Kind: symbol.KindStruct, Package: pkg, Name: "ID", Marshaler: symbol.MarshalText}, "string", false},
		{"json marshaler", &symbol.Symbol{Kind: symbol.KindStruct, Package: pkg, Name: "Blob", Marshaler: symbol.MarshalJSON}, "unknown", false},
		{"external", &symbol.Symbol{Kind: symbol.KindStruct, Package: "other.com/lib", Name: "Thing", External: true}, "unknown", false},
		{"plain interface", symbol.Interface(pkg, "Shape"), "unknown", false},
	}

	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Resolve(tt.sym)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Text)
			assert.Equal(t, tt.nullable, e.Nullable)
			assert.Equal(t, ShapeValue, e.Shape)
			assert.False(t, e.Async)
		})
	}
}

func TestStructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		sym  *symbol.Symbol
	}{
		{"complex", symbol.Primitive("complex128")},
		{"unsafe pointer", symbol.Primitive("unsafe.Pointer")},
		{"func", symbol.Func()},
		{"send chan", symbol.Chan(symbol.ChanSend, symbol.Primitive("int"))},
		{"bidirectional chan", symbol.Chan(symbol.ChanBoth, symbol.Primitive("int"))},
		{"slice of func", symbol.Slice(symbol.Func())},
		{"bool keyed map", symbol.Map(symbol.Primitive("bool"), symbol.Primitive("int"))},
		{"contract value", symbol.Hub(pkg, "Chat")},
		{"slice of future", symbol.Slice(symbol.Instance(future, symbol.Primitive("int")))},
	}

	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.sym)
			require.Error(t, err)
			assert.True(t, diag.IsCategory(err, diag.CategoryMapping), "got %v", err)
		})
	}
}

func TestAsyncErasure(t *testing.T) {
	item := symbol.Struct(pkg, "Item")
	tests := []struct {
		name  string
		sym   *symbol.Symbol
		text  string
		shape Shape
		elem  string
	}{
		{"task", task, "void", ShapeVoid, ""},
		{"task pointer", symbol.Pointer(task), "void", ShapeVoid, ""},
		{"future", symbol.Instance(future, symbol.Primitive("int")), "number", ShapeValue, ""},
		{"future pointer", symbol.Pointer(symbol.Instance(future, item)), "Item", ShapeValue, ""},
		{"seq", symbol.Instance(seq, item), "AsyncIterable<Item>", ShapeStream, "Item"},
		{"seq2", symbol.Instance(seq2, symbol.Primitive("string"), errSym), "AsyncIterable<string>", ShapeStream, "string"},
		{"reader", symbol.Chan(symbol.ChanRecv, item), "AsyncIterable<Item>", ShapeStream, "Item"},
	}

	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Resolve(tt.sym)
			require.NoError(t, err)
			assert.True(t, e.Async)
			assert.Equal(t, tt.text, e.Text)
			assert.Equal(t, tt.shape, e.Shape)
			if tt.elem != "" {
				require.NotNil(t, e.Elem)
				assert.Equal(t, tt.elem, e.Elem.Text)
			}
		})
	}
}

func TestDoubleAsync(t *testing.T) {
	tests := []struct {
		name string
		sym  *symbol.Symbol
	}{
		{"future of future", symbol.Instance(future, symbol.Instance(future, symbol.Primitive("int")))},
		{"future of task", symbol.Instance(future, task)},
		{"seq of future", symbol.Instance(seq, symbol.Instance(future, symbol.Primitive("int")))},
		{"reader of seq", symbol.Chan(symbol.ChanRecv, symbol.Instance(seq, symbol.Primitive("int")))},
	}

	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.sym)
			require.Error(t, err)
			assert.Equal(t, diag.CodeDoubleAsync, diag.CodeOf(err))
			assert.Equal(t, tt.sym.ID(), diag.SymbolOf(err))
		})
	}
}

func TestOverrideWins(t *testing.T) {
	money := symbol.Struct(pkg, "Money")

	r := newRegistry(t, Static(pkg+".Money", "string"), Static("time.Time", "Date"))
	e, err := r.Resolve(money)
	require.NoError(t, err)
	assert.Equal(t, "string", e.Text)
	assert.Empty(t, e.Refs)

	e, err = r.Resolve(symbol.Struct("time", "Time"))
	require.NoError(t, err)
	assert.Equal(t, "Date", e.Text)

	// The latest registration wins over an earlier one.
	r.Register(Static(pkg+".Money", "bigint"))
	e, err = r.Resolve(money)
	require.NoError(t, err)
	assert.Equal(t, "bigint", e.Text)
}

func TestUnsupportedMappersFallThrough(t *testing.T) {
	cfg, err := transpile.New(transpile.Config{})
	require.NoError(t, err)

	item := symbol.Primitive("int")

	old := NewRegistry(cfg, symbol.Profile{GoVersion: "1.22"}, nil)
	assert.Equal(t, len(Builtins())-1, old.Len())
	e, err := old.Resolve(symbol.Instance(seq, item))
	require.NoError(t, err)
	assert.Equal(t, ShapeValue, e.Shape, "iter.Seq is opaque without range-over-func")

	noReader := NewRegistry(cfg, symbol.Profile{DisableStreamedReader: true}, nil)
	_, err = noReader.Resolve(symbol.Chan(symbol.ChanRecv, item))
	assert.True(t, diag.IsCategory(err, diag.CategoryMapping))

	current := NewRegistry(cfg, symbol.Profile{GoVersion: "1.24.1"}, nil)
	assert.Equal(t, len(Builtins()), current.Len())
	e, err = current.Resolve(symbol.Instance(seq, item))
	require.NoError(t, err)
	assert.Equal(t, ShapeStream, e.Shape)
}

func TestRecursiveTypesAreNominal(t *testing.T) {
	node := symbol.Struct(pkg, "Node")
	node.Members = []symbol.Member{
		symbol.Field("Children", symbol.Slice(node), ""),
		symbol.Field("Parent", symbol.Pointer(node), ""),
	}
	tree := &symbol.Symbol{Kind: symbol.KindStruct, Package: pkg, Name: "Tree", TypeParams: []*symbol.Symbol{symbol.TypeParam("T")}}

	r := newRegistry(t)
	e, err := r.Resolve(symbol.Slice(node))
	require.NoError(t, err)
	assert.Equal(t, "Node[]", e.Text)
	assert.Equal(t, []*symbol.Symbol{node}, e.Refs)

	e, err = r.Resolve(symbol.Instance(tree, symbol.Instance(tree, node)))
	require.NoError(t, err)
	assert.Equal(t, "Tree<Tree<Node>>", e.Text)
	assert.Equal(t, []*symbol.Symbol{tree, node}, e.Refs)
}

func TestTypeNamingStyle(t *testing.T) {
	cfg, err := transpile.New(transpile.Config{TypeNamingStyle: transpile.NamingCamel, UnknownType: "any"})
	require.NoError(t, err)
	r := NewRegistry(cfg, symbol.Profile{}, nil)

	e, err := r.Resolve(symbol.Struct(pkg, "UserProfile"))
	require.NoError(t, err)
	assert.Equal(t, "userProfile", e.Text)

	e, err = r.Resolve(symbol.Any())
	require.NoError(t, err)
	assert.Equal(t, "any", e.Text)
}

func TestReferencedPackages(t *testing.T) {
	cfg, err := transpile.New(transpile.Config{ReferencedPackages: true})
	require.NoError(t, err)
	r := NewRegistry(cfg, symbol.Profile{}, nil)

	thing := &symbol.Symbol{Kind: symbol.KindStruct, Package: "other.com/lib", Name: "Thing", External: true}
	e, err := r.Resolve(thing)
	require.NoError(t, err)
	assert.Equal(t, "Thing", e.Text)
	assert.Equal(t, []*symbol.Symbol{thing}, e.Refs)
}

func TestArrayOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"string", "string[]"},
		{"Record<string, A | B>", "Record<string, A | B>[]"},
		{"A | null", "(A | null)[]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, arrayOf(tt.in), tt.in)
	}
}

func TestProperty(t *testing.T) {
	owner := symbol.Struct(pkg, "Owner")
	tests := []struct {
		name     string
		member   symbol.Member
		wantName string
		optional bool
		typeText string
		skipped  bool
	}{
		{"field name", symbol.Field("UserId", symbol.Primitive("string"), ""), "userId", false, "string", false},
		{"tag name", symbol.Field("UserId", symbol.Primitive("string"), `json:"uid"`), "uid", false, "string", false},
		{"empty tag name", symbol.Field("Count", symbol.Primitive("int"), `json:",omitempty"`), "count", true, "number", false},
		{"omitzero", symbol.Field("At", symbol.Struct("time", "Time"), `json:"at,omitzero"`), "at", true, "string", false},
		{"skipped", symbol.Field("Secret", symbol.Primitive("string"), `json:"-"`), "", false, "", true},
		{"dash name", symbol.Field("Dash", symbol.Primitive("string"), `json:"-,"`), `"-"`, false, "string", false},
		{"string option", symbol.Field("Big", symbol.Primitive("int64"), `json:"big,string"`), "big", false, "string", false},
		{"nullable", symbol.Field("Items", symbol.Slice(symbol.Primitive("int")), `json:"items"`), "items", false, "number[] | null", false},
		{"nullable optional", symbol.Field("Next", symbol.Pointer(owner), `json:"next,omitempty"`), "next", true, "Owner", false},
		{"quoted", symbol.Field("ContentType", symbol.Primitive("string"), `json:"content-type"`), `"content-type"`, false, "string", false},
		{"other serializer", symbol.Field("Name", symbol.Primitive("string"), `msgpack:"n"`), "name", false, "string", false},
	}

	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok, err := r.Property(owner, tt.member)
			require.NoError(t, err)
			if tt.skipped {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.optional, p.Optional)
			assert.Equal(t, tt.typeText, p.TypeText())
		})
	}
}

func TestPropertyFailureNamesMember(t *testing.T) {
	owner := symbol.Struct(pkg, "Owner")
	_, _, err := newRegistry(t).Property(owner, symbol.Field("Callback", symbol.Func(), ""))
	require.Error(t, err)
	assert.True(t, diag.IsCategory(err, diag.CategoryMapping))
	assert.Equal(t, pkg+".Owner.Callback", diag.SymbolOf(err))
}

func TestExtends(t *testing.T) {
	base := symbol.Struct(pkg, "Base")
	generic := &symbol.Symbol{Kind: symbol.KindStruct, Package: pkg, Name: "Box", TypeParams: []*symbol.Symbol{symbol.TypeParam("T")}}
	opaque := &symbol.Symbol{Kind: symbol.KindStruct, Package: pkg, Name: "Stamp", Marshaler: symbol.MarshalText}

	tests := []struct {
		name   string
		member symbol.Member
		want   string
		ok     bool
	}{
		{"embedded", symbol.Member{Name: "Base", Type: base, Embedded: true}, "Base", true},
		{"embedded pointer", symbol.Member{Name: "Base", Type: symbol.Pointer(base), Embedded: true}, "Base", true},
		{"embedded instance", symbol.Member{Name: "Box", Type: symbol.Instance(generic, symbol.Primitive("int")), Embedded: true}, "Box<number>", true},
		{"named embed", symbol.Member{Name: "Base", Type: base, Embedded: true, Tag: `json:"base"`}, "", false},
		{"not embedded", symbol.Field("Base", base, ""), "", false},
		{"marshaler", symbol.Member{Name: "Stamp", Type: opaque, Embedded: true}, "", false},
		{"embedded alias", symbol.Member{Name: "IDs", Type: symbol.Alias(pkg, "IDs", symbol.Slice(symbol.Primitive("string"))), Embedded: true}, "", false},
	}

	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok, err := r.Extends(tt.member)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, e.Text)
			}
		})
	}
}

func TestAnonymousStruct(t *testing.T) {
	base := symbol.Struct(pkg, "Base")
	anon := &symbol.Symbol{Kind: symbol.KindStruct, Members: []symbol.Member{
		{Name: "Base", Type: base, Embedded: true},
		symbol.Field("X", symbol.Primitive("int"), `json:"x"`),
		symbol.Field("Y", symbol.Pointer(symbol.Primitive("int")), `json:"y,omitempty"`),
		symbol.Field("Z", symbol.Primitive("int"), `json:"-"`),
	}}

	e, err := newRegistry(t).Resolve(anon)
	require.NoError(t, err)
	assert.Equal(t, "Base & { x: number; y?: number }", e.Text)
	assert.Equal(t, []*symbol.Symbol{base}, e.Refs)

	e, err = newRegistry(t).Resolve(symbol.Slice(anon))
	require.NoError(t, err)
	assert.Equal(t, "(Base & { x: number; y?: number })[]", e.Text)

	e, err = newRegistry(t).Resolve(&symbol.Symbol{Kind: symbol.KindStruct})
	require.NoError(t, err)
	assert.Equal(t, "{}", e.Text)
}
