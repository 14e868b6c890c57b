package symbol

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Graph is the symbol table of one analyzed program. It is immutable for
// the duration of a run.
type Graph struct {
	// Packages lists the analyzed packages sorted by import path.
	Packages []Package

	// Symbols holds every named symbol: declarations of the analyzed
	// packages in declaration order, then referenced-package symbols in
	// discovery order.
	Symbols []*Symbol

	// Profile describes the source language capabilities of the program.
	Profile Profile

	index map[string]*Symbol
	order map[*Symbol]int
}

// Package describes one analyzed Go package.
type Package struct {
	Path string
	Name string
	Dir  string
}

// NewGraph indexes symbols into a graph.
func NewGraph(pkgs []Package, symbols []*Symbol, profile Profile) *Graph {
	g := &Graph{
		Packages: pkgs,
		Symbols:  symbols,
		Profile:  profile,
		index:    make(map[string]*Symbol, len(symbols)),
		order:    make(map[*Symbol]int, len(symbols)),
	}
	for i, s := range symbols {
		g.index[s.ID()] = s
		g.order[s] = i
	}
	return g
}

// Lookup returns the named symbol with the given identity, or nil.
func (g *Graph) Lookup(id string) *Symbol {
	return g.index[id]
}

// Order returns the declaration index of a named symbol, or -1 if the
// symbol is not part of the graph.
func (g *Graph) Order(s *Symbol) int {
	if i, ok := g.order[s]; ok {
		return i
	}
	return -1
}

// Contracts returns hub and receiver interfaces in declaration order.
func (g *Graph) Contracts() []*Symbol {
	var out []*Symbol
	for _, s := range g.Symbols {
		if s.IsContract() && !s.External {
			out = append(out, s)
		}
	}
	return out
}

// Included returns symbols explicitly marked for data-contract generation.
func (g *Graph) Included() []*Symbol {
	var out []*Symbol
	for _, s := range g.Symbols {
		if s.Include {
			out = append(out, s)
		}
	}
	return out
}

// Profile describes which source constructs the analyzed program can use.
// Built-in type mappers consult it once, when they are registered.
type Profile struct {
	// GoVersion is the go directive of the analyzed module, e.g. "1.24".
	// Empty means the latest language version.
	GoVersion string

	// DisableAsyncSequence turns off iter.Seq stream mapping.
	DisableAsyncSequence bool

	// DisableStreamedReader turns off <-chan T stream mapping.
	DisableStreamedReader bool
}

// AtLeast reports whether the profile's language version is at least v
// (for example "1.23").
func (p Profile) AtLeast(v string) bool {
	if p.GoVersion == "" {
		return true
	}
	have := canonical(p.GoVersion)
	if !semver.IsValid(have) {
		return true
	}
	return semver.Compare(have, canonical(v)) >= 0
}

// canonical turns a go directive version ("1.23", "1.22.4", "1.21rc1") into
// a semantic version.
func canonical(v string) string {
	v = strings.TrimPrefix(v, "go")
	if i := strings.IndexAny(v, "abcdefghijklmnopqrstuvwxyz"); i > 0 {
		v = v[:i]
	}
	return semver.Canonical("v" + v)
}
