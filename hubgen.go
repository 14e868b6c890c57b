// Package hubgen generates TypeScript clients for Go RPC contracts.
//
// A hub is a Go interface whose methods are called remotely; a receiver is
// the callback interface a service calls on a connected client. Both are
// marked with directives on their type declarations:
//
//	//hubgen:hub receiver=ChatClient path=/hubs/chat
//	type Chat interface {
//	    Send(ctx context.Context, text string) error
//	    GetCount(ctx context.Context, key string) async.Future[int]
//	    Watch(ctx context.Context, room string) iter.Seq2[Message, error]
//	}
//
//	//hubgen:receiver
//	type ChatClient interface {
//	    Received(ctx context.Context, msg Message) error
//	}
//
// Generate loads the packages, emits one data-contract unit per package
// holding the reachable structs, enums and aliases, one unit per contract
// with a typed proxy and dispatcher, and the runtime-support units under
// hubgen/. The output directory is synchronized: generated files that are
// no longer produced are removed.
//
// Every failure is fatal for the run. Errors carry a diag category and
// code, and name the offending symbol where there is one.
package hubgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/loader"
	"github.com/broady/hubgen/sink"
	"github.com/broady/hubgen/symbol"
	"github.com/broady/hubgen/transpile"
	"github.com/broady/hubgen/typemap"
	"github.com/broady/hubgen/typescript"
)

// Request describes one generation run.
type Request struct {
	// Patterns are the Go package patterns to analyze,
	// e.g. []string{"./api/..."}.
	Patterns []string

	// Dir is the directory the patterns are resolved in.
	Dir string

	// BuildFlags are passed to the go command.
	BuildFlags []string

	// OutDir is the directory generated units are written to.
	OutDir string

	// Config holds the generation options. Empty string fields and a zero
	// IndentSize take their values from transpile.Default. Every boolean
	// option is false by default, so a zero Config honors struct tags and
	// keeps doc comments.
	Config transpile.Config

	// DisableAsyncSequence and DisableStreamedReader turn off stream
	// mapping of iter.Seq and <-chan T results.
	DisableAsyncSequence  bool
	DisableStreamedReader bool

	// Mappers are registered after the built-in mappers, in order, so
	// they take precedence over them.
	Mappers []typemap.Mapper

	// TypeMappings render the Go type with the given ID as fixed
	// TypeScript text, e.g. {"time.Time": "Date"}. They take precedence
	// over Mappers.
	TypeMappings map[string]string

	// Concurrency bounds parallel file writes. Zero means GOMAXPROCS.
	Concurrency int

	Logger *slog.Logger
}

func (r *Request) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Result describes a completed run.
type Result struct {
	Graph *symbol.Graph

	// Units are the data-contract units, then the contract units, then
	// the runtime units.
	Units []sink.Unit

	DataUnits     int
	ContractUnits int
	RuntimeUnits  int

	// Report lists the files written and removed. It is empty when the
	// units were not materialized.
	Report sink.Report

	// Output holds the units in memory after Generator.Generate.
	Output *sink.MemorySink
}

// Generate loads req.Patterns and synchronizes req.OutDir with the
// generated units.
func Generate(ctx context.Context, req Request) (*Result, error) {
	if req.OutDir == "" {
		return nil, errors.New("OutDir is required")
	}
	graph, err := Load(ctx, req)
	if err != nil {
		return nil, err
	}
	return GenerateGraph(ctx, graph, req)
}

// Load builds the symbol graph of req.Patterns.
func Load(ctx context.Context, req Request) (*symbol.Graph, error) {
	logger := req.logger()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := transpile.New(req.Config)
	if err != nil {
		return nil, err
	}

	logger.Info("loading symbol graph", slog.Any("patterns", req.Patterns), slog.String("dir", req.Dir))
	graph, err := loader.Load(ctx, loader.Options{
		Patterns:              req.Patterns,
		Dir:                   req.Dir,
		BuildFlags:            req.BuildFlags,
		Referenced:            cfg.ReferencedPackages,
		DisableAsyncSequence:  req.DisableAsyncSequence,
		DisableStreamedReader: req.DisableStreamedReader,
		Logger:                logger,
	})
	if err != nil {
		return nil, failed(logger, err)
	}
	logger.Info("symbol graph loaded",
		slog.Int("packages", len(graph.Packages)),
		slog.Int("symbols", len(graph.Symbols)),
		slog.Int("contracts", len(graph.Contracts())),
	)
	return graph, nil
}

// GenerateGraph renders graph and, when req.OutDir is set, synchronizes
// it with the units.
func GenerateGraph(ctx context.Context, graph *symbol.Graph, req Request) (*Result, error) {
	logger := req.logger()
	res, err := Render(ctx, graph, req)
	if err != nil {
		return nil, err
	}
	if req.OutDir == "" {
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := sink.NewMaterializer(req.OutDir, logger)
	m.Concurrency = req.Concurrency
	res.Report, err = m.Write(ctx, res.Units)
	if err != nil {
		return res, failed(logger, err)
	}

	logger.Info("generation complete",
		slog.String("outDir", req.OutDir),
		slog.Int("written", len(res.Report.Written)),
		slog.Int("removed", len(res.Report.Removed)),
	)
	return res, nil
}

// Render runs both generators over graph without writing anything.
func Render(ctx context.Context, graph *symbol.Graph, req Request) (*Result, error) {
	logger := req.logger()
	cfg, err := transpile.New(req.Config)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry(cfg, graph.Profile, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("generating data contracts")
	data, err := typescript.NewDataContractGenerator(reg, logger).Generate(ctx, graph)
	if err != nil {
		return nil, failed(logger, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("generating rpc contracts", slog.Int("contracts", len(graph.Contracts())))
	rpc, err := typescript.NewRPCGenerator(reg, logger).Generate(ctx, graph)
	if err != nil {
		return nil, failed(logger, err)
	}

	units, err := concat(data, rpc)
	if err != nil {
		return nil, failed(logger, err)
	}

	res := &Result{Graph: graph, Units: units, DataUnits: len(data)}
	for _, u := range rpc {
		if u.Location == sink.LocationRuntime {
			res.RuntimeUnits++
		} else {
			res.ContractUnits++
		}
	}
	return res, nil
}

// NewRegistry returns the registry a run resolves types with: the
// built-ins supported by profile, then req.Mappers, then req.TypeMappings
// in ID order.
func NewRegistry(cfg transpile.Config, profile symbol.Profile, req Request) *typemap.Registry {
	profile.DisableAsyncSequence = profile.DisableAsyncSequence || req.DisableAsyncSequence
	profile.DisableStreamedReader = profile.DisableStreamedReader || req.DisableStreamedReader

	overrides := append([]typemap.Mapper(nil), req.Mappers...)
	ids := make([]string, 0, len(req.TypeMappings))
	for id := range req.TypeMappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		overrides = append(overrides, typemap.Static(id, req.TypeMappings[id]))
	}
	return typemap.NewRegistry(cfg, profile, req.logger(), overrides...)
}

// concat joins the generators' units, rejecting names produced twice for
// the same location.
func concat(lists ...[]sink.Unit) ([]sink.Unit, error) {
	var out []sink.Unit
	seen := make(map[string]bool)
	for _, units := range lists {
		for _, u := range units {
			key := strings.ToLower(u.Path())
			if seen[key] {
				return nil, diag.Unitf(diag.CodeDuplicateUnit, u.Name, u.Location.String(),
					"unit %s is generated twice", u.Path())
			}
			seen[key] = true
			out = append(out, u)
		}
	}
	return out, nil
}

// failed logs a terminal failure and returns it unchanged.
func failed(logger *slog.Logger, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	attrs := []any{slog.String("error", err.Error())}
	var de *diag.Error
	if errors.As(err, &de) {
		attrs = append(attrs,
			slog.String("category", de.Category.String()),
			slog.String("code", string(de.Code)),
		)
		if de.Symbol != "" {
			attrs = append(attrs, slog.String("symbol", de.Symbol))
		}
		if de.Unit != "" {
			attrs = append(attrs, slog.String("unit", de.Unit), slog.String("destination", de.Destination))
		}
	}
	logger.Error("generation failed", attrs...)
	return err
}

// Summary returns a one-line description of a result.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d data units, %d contract units, %d runtime units", r.DataUnits, r.ContractUnits, r.RuntimeUnits)
	if len(r.Report.Written) > 0 || len(r.Report.Removed) > 0 {
		s += fmt.Sprintf("; wrote %d, removed %d", len(r.Report.Written), len(r.Report.Removed))
	}
	return s
}
