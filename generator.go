package hubgen

import (
	"context"
	"log/slog"

	"github.com/broady/hubgen/sink"
	"github.com/broady/hubgen/transpile"
	"github.com/broady/hubgen/typemap"
)

// Generator provides a fluent API for code generation.
// Create with FromPackages and configure with method chaining.
//
// Example:
//
//	hubgen.FromPackages("./api/...").
//	    EnumStyle(transpile.EnumUnion).
//	    TypeMapping("time.Time", "Date").
//	    ToDir(ctx, "./client/src/rpc")
type Generator struct {
	req Request
}

// FromPackages creates a Generator for the given Go package patterns.
func FromPackages(patterns ...string) *Generator {
	return &Generator{req: Request{Patterns: patterns}}
}

// Dir sets the directory package patterns are resolved in.
func (g *Generator) Dir(dir string) *Generator {
	g.req.Dir = dir
	return g
}

// BuildFlags sets flags passed to the go command.
func (g *Generator) BuildFlags(flags ...string) *Generator {
	g.req.BuildFlags = append(g.req.BuildFlags, flags...)
	return g
}

// WithConfig replaces the transpilation options.
func (g *Generator) WithConfig(cfg transpile.Config) *Generator {
	g.req.Config = cfg
	return g
}

// EnumStyle controls how Go const groups are generated.
func (g *Generator) EnumStyle(style transpile.EnumStyle) *Generator {
	g.req.Config.EnumStyle = style
	return g
}

// Naming sets the member and type naming styles.
func (g *Generator) Naming(members, types transpile.NamingStyle) *Generator {
	g.req.Config.NamingStyle = members
	g.req.Config.TypeNamingStyle = types
	return g
}

// Frontmatter adds content after the header of generated files.
func (g *Generator) Frontmatter(content string) *Generator {
	g.req.Config.Frontmatter = content
	return g
}

// StripPackagePrefix sets the prefix removed from package paths when
// naming data-contract units.
func (g *Generator) StripPackagePrefix(prefix string) *Generator {
	g.req.Config.StripPackagePrefix = prefix
	return g
}

// TypeMapping renders the Go type goType (e.g. "time.Time") as tsType.
func (g *Generator) TypeMapping(goType, tsType string) *Generator {
	if g.req.TypeMappings == nil {
		g.req.TypeMappings = make(map[string]string)
	}
	g.req.TypeMappings[goType] = tsType
	return g
}

// WithMapper registers a type mapper ahead of the built-ins.
func (g *Generator) WithMapper(m typemap.Mapper) *Generator {
	g.req.Mappers = append(g.req.Mappers, m)
	return g
}

// WithoutStreams maps iter.Seq and <-chan T results structurally.
func (g *Generator) WithoutStreams() *Generator {
	g.req.DisableAsyncSequence = true
	g.req.DisableStreamedReader = true
	return g
}

// Concurrency bounds parallel file writes.
func (g *Generator) Concurrency(n int) *Generator {
	g.req.Concurrency = n
	return g
}

// Logger sets the logger for progress and failure events.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.req.Logger = l
	return g
}

// Request returns a copy of the accumulated request.
func (g *Generator) Request() Request {
	return g.req
}

// ToDir generates files to the specified directory, removing generated
// files that are no longer produced.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	req := g.req
	req.OutDir = dir
	return Generate(ctx, req)
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir to write files to disk instead.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	req := g.req
	req.OutDir = ""
	graph, err := Load(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := Render(ctx, graph, req)
	if err != nil {
		return nil, err
	}
	res.Output = sink.NewMemorySink()
	for _, u := range res.Units {
		if err := res.Output.WriteFile(ctx, u.Path(), u.Content); err != nil {
			return nil, err
		}
	}
	return res, nil
}
