// Package loader builds a symbol graph from Go source code.
//
// Packages are loaded with golang.org/x/tools/go/packages. Hub and receiver
// contracts are interfaces annotated with hubgen directives (see
// internal/directive); every other named type becomes a symbol that
// contracts and included types may reference.
package loader

import (
	"context"
	"errors"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/internal/directive"
	"github.com/broady/hubgen/symbol"
)

// Options configures source loading.
type Options struct {
	// Patterns are the Go package patterns to analyze.
	Patterns []string

	// Dir is the directory the patterns are resolved in.
	// If empty, the current directory is used.
	Dir string

	// BuildFlags are passed to the go command (e.g. "-tags=integration").
	BuildFlags []string

	// Referenced resolves the members of types declared in packages that
	// were not analyzed directly.
	Referenced bool

	// DisableAsyncSequence and DisableStreamedReader are copied to the
	// graph profile.
	DisableAsyncSequence  bool
	DisableStreamedReader bool

	Logger *slog.Logger
}

// Load analyzes the packages matched by opts.Patterns.
func Load(ctx context.Context, opts Options) (*symbol.Graph, error) {
	if len(opts.Patterns) == 0 {
		return nil, diag.Graphf(diag.CodeLoad, nil, "no packages specified")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &packages.Config{
		Context:    ctx,
		Dir:        opts.Dir,
		BuildFlags: opts.BuildFlags,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedModule,
	}

	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		return nil, diag.Graphf(diag.CodeLoad, err, "failed to load packages %v", opts.Patterns)
	}
	if len(pkgs) == 0 {
		return nil, diag.Graphf(diag.CodeLoad, nil, "no packages found matching %v", opts.Patterns)
	}

	// Check for errors in loaded packages
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, diag.Graphf(diag.CodeLoad, errors.Join(errs...), "packages %v have errors", opts.Patterns)
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	b := newBuilder(pkgs, opts.Referenced)
	if err := b.build(); err != nil {
		return nil, err
	}

	profile := symbol.Profile{
		DisableAsyncSequence:  opts.DisableAsyncSequence,
		DisableStreamedReader: opts.DisableStreamedReader,
	}
	for _, pkg := range pkgs {
		if pkg.Module != nil && pkg.Module.GoVersion != "" {
			profile.GoVersion = pkg.Module.GoVersion
			break
		}
	}

	infos := make([]symbol.Package, len(pkgs))
	for i, pkg := range pkgs {
		infos[i] = symbol.Package{Path: pkg.PkgPath, Name: pkg.Name, Dir: packageDir(pkg)}
	}

	logger.Debug("converted packages",
		slog.Int("packages", len(pkgs)),
		slog.Int("declared", len(b.declared)),
		slog.Int("referenced", len(b.external)),
		slog.String("goVersion", profile.GoVersion),
	)
	return symbol.NewGraph(infos, append(b.declared, b.external...), profile), nil
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) == 0 {
		return ""
	}
	f := pkg.GoFiles[0]
	if i := strings.LastIndexAny(f, `/\`); i >= 0 {
		return f[:i]
	}
	return "."
}

// builder converts go/types objects to symbols.
type builder struct {
	pkgs       []*packages.Package
	analyzed   map[*types.Package]*packages.Package
	referenced bool

	named     map[*types.TypeName]*symbol.Symbol
	instances map[string]*symbol.Symbol
	docs      map[types.Object]string
	enums     map[*types.TypeName][]*types.Const

	declared []*symbol.Symbol
	external []*symbol.Symbol
}

func newBuilder(pkgs []*packages.Package, referenced bool) *builder {
	b := &builder{
		pkgs:       pkgs,
		analyzed:   make(map[*types.Package]*packages.Package, len(pkgs)),
		referenced: referenced,
		named:      make(map[*types.TypeName]*symbol.Symbol),
		instances:  make(map[string]*symbol.Symbol),
		docs:       make(map[types.Object]string),
		enums:      make(map[*types.TypeName][]*types.Const),
	}
	for _, pkg := range pkgs {
		b.analyzed[pkg.Types] = pkg
	}
	return b
}

// decl is a type declaration of an analyzed package in source order.
type decl struct {
	pkg *packages.Package
	tn  *types.TypeName
}

func (b *builder) build() error {
	var decls []decl
	sets := make(map[*types.TypeName]directive.Set)

	for _, pkg := range b.pkgs {
		files := make([]*ast.File, len(pkg.Syntax))
		copy(files, pkg.Syntax)
		sort.Slice(files, func(i, j int) bool {
			return pkg.Fset.File(files[i].Pos()).Name() < pkg.Fset.File(files[j].Pos()).Name()
		})

		var found []directive.Directive
		for _, f := range files {
			ds, err := directive.Scan(pkg.Fset, f)
			if err != nil {
				return diag.Graphf(diag.CodeDirective, err, "invalid directive in %s", pkg.PkgPath)
			}
			found = append(found, ds...)
			decls = append(decls, b.scanFile(pkg, f)...)
		}

		merged, err := directive.Merge(found)
		if err != nil {
			return diag.Graphf(diag.CodeDirective, err, "invalid directive in %s", pkg.PkgPath)
		}
		for name, set := range merged {
			tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
			if !ok {
				return diag.Graphf(diag.CodeDirective, nil, "directive target %s.%s is not a type", pkg.PkgPath, name)
			}
			sets[tn] = set
		}
	}

	for _, d := range decls {
		s := b.namedSymbol(d.tn)
		b.declared = append(b.declared, s)
	}

	// Apply directives in declaration order so errors are stable. Pairing
	// runs once every contract kind is known.
	for _, d := range decls {
		if set, ok := sets[d.tn]; ok {
			if err := b.applyDirectives(b.named[d.tn], set); err != nil {
				return err
			}
		}
	}
	for _, d := range decls {
		if set, ok := sets[d.tn]; ok && set.Hub != nil && set.Hub.Options.Receiver != "" {
			if err := b.pair(d.pkg, b.named[d.tn], set.Hub); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanFile records the type declarations, documentation and enum
// constants of one file.
func (b *builder) scanFile(pkg *packages.Package, f *ast.File) []decl {
	var decls []decl
	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			switch spec := spec.(type) {
			case *ast.TypeSpec:
				tn, ok := pkg.TypesInfo.Defs[spec.Name].(*types.TypeName)
				if !ok || tn.IsAlias() {
					continue
				}
				doc := spec.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				b.docs[tn] = docText(doc)
				b.scanMembers(pkg, spec.Type)
				decls = append(decls, decl{pkg: pkg, tn: tn})

			case *ast.ValueSpec:
				if gd.Tok != token.CONST {
					continue
				}
				doc := spec.Doc
				if doc == nil {
					doc = spec.Comment
				}
				for _, name := range spec.Names {
					c, ok := pkg.TypesInfo.Defs[name].(*types.Const)
					if !ok {
						continue
					}
					b.docs[c] = docText(doc)
					if named, ok := c.Type().(*types.Named); ok {
						b.enums[named.Obj()] = append(b.enums[named.Obj()], c)
					}
				}
			}
		}
	}
	return decls
}

// scanMembers records documentation of struct fields and interface methods.
func (b *builder) scanMembers(pkg *packages.Package, expr ast.Expr) {
	ast.Inspect(expr, func(n ast.Node) bool {
		field, ok := n.(*ast.Field)
		if !ok {
			return true
		}
		doc := field.Doc
		if doc == nil {
			doc = field.Comment
		}
		for _, name := range field.Names {
			if obj := pkg.TypesInfo.Defs[name]; obj != nil {
				b.docs[obj] = docText(doc)
			}
		}
		return true
	})
}

func docText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}

func (b *builder) applyDirectives(s *symbol.Symbol, set directive.Set) error {
	if set.Include != nil {
		s.Include = true
	}

	d := set.Hub
	if d == nil {
		d = set.Receiver
	}
	if d == nil {
		return nil
	}
	if s.Kind != symbol.KindInterface {
		return diag.Graphf(diag.CodeDirective, nil, "%s: //hubgen:%s must annotate an interface, %s is a %s",
			d.Pos, d.Kind, s.Name, strings.ToLower(s.Kind.String()))
	}

	if set.Receiver != nil {
		s.Contract = symbol.ContractReceiver
		return nil
	}
	s.Contract = symbol.ContractHub
	s.Path = d.Options.Path
	return nil
}

// pair links a hub to the receiver named in its directive. The receiver
// interface does not need its own directive.
func (b *builder) pair(pkg *packages.Package, hub *symbol.Symbol, d *directive.Directive) error {
	name := d.Options.Receiver
	tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		return diag.Graphf(diag.CodeDirective, nil, "%s: receiver %s of hub %s is not declared in %s",
			d.Pos, name, hub.Name, pkg.PkgPath)
	}
	recv := b.named[tn]
	switch {
	case recv == nil || recv.Kind != symbol.KindInterface:
		return diag.Graphf(diag.CodeDirective, nil, "%s: receiver %s of hub %s is not an interface",
			d.Pos, name, hub.Name)
	case recv.Contract == symbol.ContractHub:
		return diag.Graphf(diag.CodeDirective, nil, "%s: receiver %s of hub %s is itself a hub",
			d.Pos, name, hub.Name)
	}
	recv.Contract = symbol.ContractReceiver
	hub.Pair = recv
	return nil
}

func (b *builder) position(obj types.Object) token.Position {
	if pkg, ok := b.analyzed[obj.Pkg()]; ok {
		return pkg.Fset.Position(obj.Pos())
	}
	return token.Position{}
}
