package typescript

import (
	"cmp"
	"context"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/sink"
	"github.com/broady/hubgen/symbol"
	"github.com/broady/hubgen/transpile"
	"github.com/broady/hubgen/typemap"
)

// DataContractGenerator emits the structs, enums and aliases reachable from
// the RPC contracts of a graph, and those marked for inclusion.
type DataContractGenerator struct {
	registry *typemap.Registry
	cfg      transpile.Config
	logger   *slog.Logger
}

// NewDataContractGenerator returns a generator resolving types through r.
func NewDataContractGenerator(r *typemap.Registry, logger *slog.Logger) *DataContractGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataContractGenerator{registry: r, cfg: r.Config(), logger: logger}
}

// declaration is a resolved data shape ready to render.
type declaration struct {
	sym     *symbol.Symbol
	extends []typemap.Expr
	props   []typemap.Property
	alias   typemap.Expr
	refs    []*symbol.Symbol
}

// Generate returns one unit per package declaring a reachable data shape.
// Units are sorted by name; declarations keep graph order.
func (g *DataContractGenerator) Generate(ctx context.Context, graph *symbol.Graph) ([]sink.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decls, err := g.reachable(graph)
	if err != nil {
		return nil, err
	}

	byPkg := make(map[string][]*declaration)
	var pkgs []string
	for _, d := range decls {
		p := d.sym.Package
		if _, ok := byPkg[p]; !ok {
			pkgs = append(pkgs, p)
		}
		byPkg[p] = append(byPkg[p], d)
	}

	owner := make(map[string]string, len(pkgs))
	units := make([]sink.Unit, 0, len(pkgs))
	for _, p := range pkgs {
		name := DataUnitName(graph, g.cfg, p)
		if prev, ok := owner[strings.ToLower(name)]; ok {
			return nil, diag.Unitf(diag.CodeDuplicateUnit, name, ".",
				"packages %s and %s share a data-contract unit", prev, p)
		}
		owner[strings.ToLower(name)] = p

		content, err := g.render(graph, name, byPkg[p])
		if err != nil {
			return nil, err
		}
		g.logger.Debug("emitted unit",
			slog.String("unit", name),
			slog.String("package", p),
			slog.Int("types", len(byPkg[p])),
		)
		units = append(units, sink.Unit{Name: name, Location: sink.LocationRoot, Content: content})
	}
	slices.SortFunc(units, func(a, b sink.Unit) int { return cmp.Compare(a.Name, b.Name) })
	return units, nil
}

// reachable walks the graph from the contract signatures and included
// symbols, returning declarations in graph order.
func (g *DataContractGenerator) reachable(graph *symbol.Graph) ([]*declaration, error) {
	seen := make(map[*symbol.Symbol]bool)
	var queue []*symbol.Symbol
	enqueue := func(refs []*symbol.Symbol) {
		for _, r := range refs {
			if !seen[r] && emittable(g.cfg, r) {
				seen[r] = true
				queue = append(queue, r)
			}
		}
	}
	root := func(s *symbol.Symbol) error {
		e, err := g.registry.Resolve(s)
		if err != nil {
			return err
		}
		enqueue(e.Refs)
		return nil
	}

	for _, c := range graph.Contracts() {
		for _, m := range c.Methods {
			for _, p := range m.Params {
				if err := root(p.Type); err != nil {
					return nil, err
				}
			}
			for _, r := range m.Results {
				if err := root(r); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, s := range graph.Included() {
		switch {
		case s.IsContract():
		case emittable(g.cfg, s):
			enqueue([]*symbol.Symbol{s})
		default:
			g.logger.Debug("included type is not a data shape", slog.String("symbol", s.ID()))
		}
	}

	var decls []*declaration
	for i := 0; i < len(queue); i++ {
		d, err := g.declare(queue[i])
		if err != nil {
			return nil, err
		}
		enqueue(d.refs)
		decls = append(decls, d)
	}

	slices.SortStableFunc(decls, func(a, b *declaration) int {
		oa, ob := graph.Order(a.sym), graph.Order(b.sym)
		switch {
		case oa == ob:
			return cmp.Compare(a.sym.ID(), b.sym.ID())
		case oa < 0:
			return 1
		case ob < 0:
			return -1
		}
		return cmp.Compare(oa, ob)
	})
	return decls, nil
}

// declare resolves the members of a data shape.
func (g *DataContractGenerator) declare(s *symbol.Symbol) (*declaration, error) {
	d := &declaration{sym: s}
	var exprs [][]*symbol.Symbol
	switch s.Kind {
	case symbol.KindStruct:
		props := make(map[string]string)
		for _, m := range s.Members {
			if e, ok, err := g.registry.Extends(m); err != nil {
				return nil, err
			} else if ok {
				d.extends = append(d.extends, e)
				exprs = append(exprs, e.Refs)
				continue
			}
			p, ok, err := g.registry.Property(s, m)
			if err != nil {
				return nil, err
			}
			if ok {
				if prev, dup := props[p.Name]; dup {
					return nil, diag.Shapef(diag.CodeAmbiguousType, s.ID()+"."+m.Name,
						"fields %s and %s are both emitted as %s", prev, m.Name, p.Name)
				}
				props[p.Name] = m.Name
				d.props = append(d.props, p)
				exprs = append(exprs, p.Type.Refs)
			}
		}
	case symbol.KindAlias:
		if s.Underlying == nil {
			return nil, diag.Mappingf(s.ID(), "alias without underlying type")
		}
		e, err := g.registry.Resolve(s.Underlying)
		if err != nil {
			return nil, err
		}
		if e.Async || e.Shape != typemap.ShapeValue {
			return nil, diag.Mappingf(s.ID(), "%s is only valid as a contract result", s.Underlying.ID())
		}
		d.alias = e
		exprs = append(exprs, e.Refs)
	}

	seen := map[*symbol.Symbol]bool{s: true}
	for _, refs := range exprs {
		for _, r := range refs {
			if !seen[r] {
				seen[r] = true
				d.refs = append(d.refs, r)
			}
		}
	}
	return d, nil
}

func (g *DataContractGenerator) render(graph *symbol.Graph, unit string, decls []*declaration) ([]byte, error) {
	local := make(map[string]*symbol.Symbol, len(decls))
	for _, d := range decls {
		name := g.cfg.TypeName(d.sym.Name)
		if prev, ok := local[name]; ok {
			return nil, ambiguous(d.sym, prev, name, unit)
		}
		local[name] = d.sym
	}

	im := newImports()
	imported := make(map[string]*symbol.Symbol)
	for _, d := range decls {
		for _, r := range d.refs {
			if !emittable(g.cfg, r) || r.Package == d.sym.Package {
				continue
			}
			name := g.cfg.TypeName(r.Name)
			if prev, ok := local[name]; ok {
				return nil, ambiguous(r, prev, name, unit)
			}
			if prev, ok := imported[name]; ok && prev != r {
				return nil, ambiguous(r, prev, name, unit)
			}
			imported[name] = r
			im.addType(ModuleSpecifier(DataUnitName(graph, g.cfg, r.Package)), name)
		}
	}

	w := newWriter(g.cfg)
	im.write(w)
	for i, d := range decls {
		if i > 0 {
			w.line(0, "")
		}
		w.doc(0, d.sym.Doc)
		switch d.sym.Kind {
		case symbol.KindStruct:
			g.writeStruct(w, d)
		case symbol.KindEnum:
			g.writeEnum(w, d.sym)
		case symbol.KindAlias:
			w.line(0, "export type %s%s = %s;", g.cfg.TypeName(d.sym.Name), typeParams(d.sym), d.alias.Text)
		}
	}
	return w.bytes(), nil
}

func (g *DataContractGenerator) writeStruct(w *writer, d *declaration) {
	head := g.cfg.TypeName(d.sym.Name) + typeParams(d.sym)
	if len(d.extends) > 0 {
		bases := make([]string, len(d.extends))
		for i, e := range d.extends {
			bases[i] = e.Text
		}
		head += " extends " + strings.Join(bases, ", ")
	}
	if len(d.props) == 0 {
		w.line(0, "export interface %s {}", head)
		return
	}

	w.line(0, "export interface %s {", head)
	for _, p := range d.props {
		w.doc(1, p.Member.Doc)
		opt := ""
		if p.Optional {
			opt = "?"
		}
		w.line(1, "%s%s: %s;", p.Name, opt, p.TypeText())
	}
	w.line(0, "}")
}

func (g *DataContractGenerator) writeEnum(w *writer, s *symbol.Symbol) {
	name := g.cfg.TypeName(s.Name)
	style := g.cfg.EnumStyle
	if (style == transpile.EnumValue || style == transpile.EnumName) && !enumerable(s) {
		// TypeScript enums only hold numbers and strings.
		g.logger.Debug("enum rendered as union", slog.String("symbol", s.ID()))
		style = transpile.EnumUnion
	}

	switch style {
	case transpile.EnumValue, transpile.EnumName:
		if len(s.Values) == 0 {
			w.line(0, "export enum %s {}", name)
			return
		}
		w.line(0, "export enum %s {", name)
		for _, v := range s.Values {
			w.doc(1, v.Doc)
			lit := formatEnumValue(v.Value)
			if style == transpile.EnumName {
				lit = formatEnumValue(v.Name)
			}
			w.line(1, "%s = %s,", transpile.PropertyName(v.Name), lit)
		}
		w.line(0, "}")

	default:
		var lits []string
		seen := make(map[string]bool)
		for _, v := range s.Values {
			lit := formatEnumValue(v.Value)
			if style == transpile.EnumNameUnion {
				lit = formatEnumValue(v.Name)
			}
			if !seen[lit] {
				seen[lit] = true
				lits = append(lits, lit)
			}
		}
		if len(lits) == 0 {
			lits = []string{"never"}
		}
		w.line(0, "export type %s = %s;", name, strings.Join(lits, " | "))
	}
}

// enumerable reports whether every value of s fits a TypeScript enum.
func enumerable(s *symbol.Symbol) bool {
	for _, v := range s.Values {
		if _, ok := v.Value.(bool); ok {
			return false
		}
	}
	return true
}

func typeParams(s *symbol.Symbol) string {
	if len(s.TypeParams) == 0 {
		return ""
	}
	names := make([]string, len(s.TypeParams))
	for i, tp := range s.TypeParams {
		names[i] = tp.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// emittable reports whether s is declared by a data-contract unit.
func emittable(cfg transpile.Config, s *symbol.Symbol) bool {
	switch s.Kind {
	case symbol.KindStruct, symbol.KindEnum, symbol.KindAlias:
	default:
		return false
	}
	if s.Name == "" || s.Package == "" {
		return false
	}
	return !s.External || cfg.ReferencedPackages
}

func ambiguous(s, prev *symbol.Symbol, name, unit string) error {
	return diag.Shapef(diag.CodeAmbiguousType, s.ID(),
		"%s and %s are both named %s in %s", s.ID(), prev.ID(), name, unit)
}

// DataUnitName returns the name of the unit declaring the data shapes of
// package pkg: the import path without StripPackagePrefix, with slashes
// replaced by dots.
func DataUnitName(graph *symbol.Graph, cfg transpile.Config, pkg string) string {
	rel := pkg
	if p := cfg.StripPackagePrefix; p != "" {
		if pkg == strings.TrimSuffix(p, "/") {
			rel = ""
		} else {
			rel = strings.TrimPrefix(rel, p)
		}
	}
	rel = strings.Trim(rel, "/")
	if rel == "" {
		rel = packageName(graph, pkg)
	}
	return strings.ReplaceAll(rel, "/", ".") + sink.Extension
}

func packageName(graph *symbol.Graph, pkg string) string {
	for _, p := range graph.Packages {
		if p.Path == pkg && p.Name != "" {
			return p.Name
		}
	}
	return path.Base(pkg)
}

// ModuleSpecifier returns the relative import specifier of a root unit.
func ModuleSpecifier(unit string) string {
	return "./" + strings.TrimSuffix(unit, sink.Extension)
}
