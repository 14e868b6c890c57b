// Package options holds the flags shared by the generating commands.
package options

import (
	"log/slog"

	"github.com/broady/hubgen"
	"github.com/broady/hubgen/transpile"
)

// Options are the analysis and transpilation flags of gen and check.
type Options struct {
	Packages   []string `help:"Go package patterns to analyze." short:"p" name:"package" default:"./..."`
	Dir        string   `help:"Directory package patterns are resolved in." short:"C" default:"."`
	BuildFlags []string `help:"Flags passed to the go command." name:"build-flag"`

	Naming       string `help:"Member and parameter naming (${enum})." enum:"none,camel,pascal" default:"camel"`
	TypeNaming   string `help:"Type naming (${enum})." enum:"none,camel,pascal" default:"none"`
	MethodNaming string `help:"Method naming (${enum})." enum:"none,camel,pascal" default:"camel"`
	Enum         string `help:"Enum rendering (${enum})." enum:"value,name,union,name-union" default:"value"`
	Serializer   string `help:"Serializer whose struct tags rename members (${enum})." enum:"json,msgpack" default:"json"`
	HonorTags    bool   `help:"Rename members from serializer struct tags." default:"true" negatable:""`
	Referenced   bool   `help:"Generate data contracts for types of packages that were not analyzed."`
	LineEnding   string `help:"Line terminator (${enum})." enum:"lf,crlf" default:"lf"`
	Indent       int    `help:"Spaces per indentation level." default:"2"`
	Unknown      string `help:"Type emitted for values without a static shape (${enum})." enum:"unknown,any" default:"unknown"`
	Comments     bool   `help:"Preserve Go doc comments as JSDoc." default:"true" negatable:""`
	Frontmatter  string `help:"Text added after the header of every file."`
	StripPrefix  string `help:"Prefix removed from package paths when naming data-contract files."`

	TypeMapping map[string]string `help:"Render a Go type as fixed TypeScript, e.g. time.Time=Date." mapsep:","`

	NoAsyncSequence  bool `help:"Map iter.Seq results structurally instead of as streams."`
	NoStreamedReader bool `help:"Map <-chan results structurally instead of as streams."`
}

// Config returns the transpilation configuration selected by the flags.
func (o *Options) Config() transpile.Config {
	return transpile.Config{
		NamingStyle:        transpile.NamingStyle(o.Naming),
		TypeNamingStyle:    transpile.NamingStyle(o.TypeNaming),
		MethodStyle:        transpile.NamingStyle(o.MethodNaming),
		EnumStyle:          transpile.EnumStyle(o.Enum),
		Serializer:         transpile.Serializer(o.Serializer),
		IgnoreTags:         !o.HonorTags,
		ReferencedPackages: o.Referenced,
		LineEnding:         transpile.LineEnding(o.LineEnding),
		IndentSize:         o.Indent,
		UnknownType:        o.Unknown,
		OmitComments:       !o.Comments,
		Frontmatter:        o.Frontmatter,
		StripPackagePrefix: o.StripPrefix,
	}
}

// Request returns the generation request selected by the flags.
func (o *Options) Request(logger *slog.Logger) hubgen.Request {
	return hubgen.Request{
		Patterns:              o.Packages,
		Dir:                   o.Dir,
		BuildFlags:            o.BuildFlags,
		Config:                o.Config(),
		DisableAsyncSequence:  o.NoAsyncSequence,
		DisableStreamedReader: o.NoStreamedReader,
		TypeMappings:          o.TypeMapping,
		Logger:                logger,
	}
}
