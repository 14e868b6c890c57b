// Package directive parses hubgen directives from Go source files.
//
// Directives are line comments placed on type declarations:
//
//	//hubgen:hub [receiver=Name] [path=/url]
//	//hubgen:receiver
//	//hubgen:include
//
// The hub directive marks an interface whose methods are invoked remotely.
// The optional receiver option pairs it with a receiver interface declared
// in the same package, and path records the endpoint the hub is served on.
//
// The receiver directive marks an interface of callbacks invoked by the
// service on a connected caller.
//
// The include directive requests data-contract generation for a type that
// no contract references.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

const prefix = "//hubgen:"

// Kind represents the type of directive.
type Kind string

const (
	KindHub      Kind = "hub"
	KindReceiver Kind = "receiver"
	KindInclude  Kind = "include"
)

// Options are the key=value arguments of a directive.
type Options struct {
	Receiver string `schema:"receiver"`
	Path     string `schema:"path"`
}

// Directive represents a parsed hubgen directive.
type Directive struct {
	Kind     Kind
	Options  Options
	TypeName string         // name of the annotated type
	Pos      token.Position // source location
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// Parse parses a single comment line. It reports false if the comment is
// not a hubgen directive.
func Parse(text string, pos token.Position) (Directive, bool, error) {
	if !strings.HasPrefix(text, prefix) {
		return Directive{}, false, nil
	}
	parts := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(parts) == 0 {
		return Directive{}, true, fmt.Errorf("%s: empty directive %s", pos, prefix)
	}

	d := Directive{Kind: Kind(parts[0]), Pos: pos}
	switch d.Kind {
	case KindHub:
	case KindReceiver, KindInclude:
		if len(parts) > 1 {
			return Directive{}, true, fmt.Errorf("%s: %s%s takes no options", pos, prefix, d.Kind)
		}
	default:
		return Directive{}, true, fmt.Errorf("%s: unknown directive %s%s", pos, prefix, parts[0])
	}

	values := url.Values{}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return Directive{}, true, fmt.Errorf("%s: malformed option %q, want key=value", pos, p)
		}
		values.Add(k, v)
	}
	if err := decoder.Decode(&d.Options, values); err != nil {
		return Directive{}, true, fmt.Errorf("%s: %s%s: %w", pos, prefix, d.Kind, err)
	}
	if d.Options.Path != "" && !strings.HasPrefix(d.Options.Path, "/") {
		return Directive{}, true, fmt.Errorf("%s: path %q must start with /", pos, d.Options.Path)
	}
	return d, true, nil
}

// Scan extracts the directives of a single file, in source order.
//
// Returns an error if a directive is unknown or malformed, or if it is not
// immediately followed by a type declaration.
func Scan(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	// Directives keyed by the end of their comment group, so they can be
	// matched to the following type declaration.
	pending := make(map[token.Pos][]Directive)
	var order []token.Pos

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			d, ok, err := Parse(c.Text, fset.Position(c.Pos()))
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if _, seen := pending[cg.End()]; !seen {
				order = append(order, cg.End())
			}
			pending[cg.End()] = append(pending[cg.End()], d)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var directives []Directive
	attach := func(doc *ast.CommentGroup, name string) {
		if doc == nil {
			return
		}
		ds, ok := pending[doc.End()]
		if !ok {
			return
		}
		for _, d := range ds {
			d.TypeName = name
			directives = append(directives, d)
		}
		delete(pending, doc.End())
	}

	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			attach(ts.Doc, ts.Name.Name)
			if len(gd.Specs) == 1 {
				attach(gd.Doc, ts.Name.Name)
			}
		}
	}

	// Check for unmatched directives
	for _, end := range order {
		if ds, ok := pending[end]; ok {
			return nil, fmt.Errorf("%s: %s%s directive must be followed by a type declaration", ds[0].Pos, prefix, ds[0].Kind)
		}
	}

	return directives, nil
}

// Set is the merged set of directives attached to one type.
type Set struct {
	Hub      *Directive
	Receiver *Directive
	Include  *Directive
}

// Merge groups directives by annotated type name. A type may carry include
// together with one contract directive, never both hub and receiver.
func Merge(directives []Directive) (map[string]Set, error) {
	out := make(map[string]Set)
	for _, d := range directives {
		s := out[d.TypeName]
		var slot **Directive
		switch d.Kind {
		case KindHub:
			slot = &s.Hub
		case KindReceiver:
			slot = &s.Receiver
		case KindInclude:
			slot = &s.Include
		}
		if *slot != nil {
			return nil, fmt.Errorf("%s: duplicate %s%s directive on %s", d.Pos, prefix, d.Kind, d.TypeName)
		}
		*slot = &d
		if s.Hub != nil && s.Receiver != nil {
			return nil, fmt.Errorf("%s: %s cannot be both a hub and a receiver", d.Pos, d.TypeName)
		}
		out[d.TypeName] = s
	}
	return out, nil
}
