package typemap

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/symbol"
	"github.com/broady/hubgen/transpile"
)

// Mapper renders the symbols it claims.
type Mapper interface {
	// CanHandle reports whether the mapper claims s.
	CanHandle(s *symbol.Symbol) bool

	// Map renders s. Nested symbols are resolved through r.
	Map(s *symbol.Symbol, r *Registry) (Expr, error)
}

// SupportChecker is implemented by mappers that depend on a source
// construct the analyzed program may not have. Unsupported mappers are
// never registered.
type SupportChecker interface {
	Supported(p symbol.Profile) bool
}

const memoSize = 4096

// Registry resolves symbols to type expressions. Mappers registered later
// take precedence; symbols no mapper claims are rendered structurally.
//
// A Registry is built once per run and is read-only afterwards.
type Registry struct {
	cfg     transpile.Config
	profile symbol.Profile
	logger  *slog.Logger
	mappers []Mapper
	memo    *lru.Cache[*symbol.Symbol, Expr]
}

// New returns a registry without any mappers.
func New(cfg transpile.Config, profile symbol.Profile, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	memo, err := lru.New[*symbol.Symbol, Expr](memoSize)
	if err != nil {
		panic(err)
	}
	return &Registry{cfg: cfg, profile: profile, logger: logger, memo: memo}
}

// NewRegistry returns a registry with the built-in mappers installed,
// followed by overrides.
func NewRegistry(cfg transpile.Config, profile symbol.Profile, logger *slog.Logger, overrides ...Mapper) *Registry {
	r := New(cfg, profile, logger)
	for _, m := range Builtins() {
		r.Register(m)
	}
	for _, m := range overrides {
		r.Register(m)
	}
	return r
}

// Register appends m. The support check, if any, runs here and only here.
func (r *Registry) Register(m Mapper) bool {
	if sc, ok := m.(SupportChecker); ok && !sc.Supported(r.profile) {
		r.logger.Debug("type mapper not supported by profile",
			slog.String("mapper", fmt.Sprintf("%T", m)),
			slog.String("goVersion", r.profile.GoVersion),
		)
		return false
	}
	r.mappers = append(r.mappers, m)
	r.memo.Purge()
	return true
}

// Len returns the number of registered mappers.
func (r *Registry) Len() int { return len(r.mappers) }

// Config returns the configuration the registry renders names with.
func (r *Registry) Config() transpile.Config { return r.cfg }

// Resolve renders s. It fails only for symbols without any serialized
// shape, or for illegal wrapper nesting.
func (r *Registry) Resolve(s *symbol.Symbol) (Expr, error) {
	if s == nil {
		return Expr{}, diag.Mappingf("<nil>", "missing type")
	}
	if e, ok := r.memo.Get(s); ok {
		return e, nil
	}
	for i := len(r.mappers) - 1; i >= 0; i-- {
		if m := r.mappers[i]; m.CanHandle(s) {
			e, err := m.Map(s, r)
			if err != nil {
				return Expr{}, err
			}
			r.memo.Add(s, e)
			return e, nil
		}
	}
	e, err := r.structural(s)
	if err != nil {
		return Expr{}, err
	}
	r.memo.Add(s, e)
	return e, nil
}

// Unwrap resolves the payload of an asynchronous wrapper. A payload that
// is itself asynchronous is rejected.
func (r *Registry) Unwrap(wrapper, inner *symbol.Symbol) (Expr, error) {
	if inner == nil {
		return Expr{}, diag.Mappingf(wrapper.ID(), "wrapper has no type argument")
	}
	e, err := r.Resolve(inner)
	if err != nil {
		return Expr{}, err
	}
	if e.Async {
		return Expr{}, diag.Shapef(diag.CodeDoubleAsync, wrapper.ID(),
			"asynchronous wrapper nested in another asynchronous wrapper")
	}
	return e, nil
}

func (r *Registry) unknown() Expr {
	return Value(r.cfg.UnknownType)
}
