package typescript

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/sink"
	"github.com/broady/hubgen/symbol"
	"github.com/broady/hubgen/transpile"
	"github.com/broady/hubgen/typemap"
)

// runtimeModule is the import specifier of the runtime-support units.
const runtimeModule = "./" + sink.RuntimeDir + "/index"

// RPCGenerator emits a proxy and a dispatcher for every hub and receiver
// contract, and the runtime-support units they build on.
type RPCGenerator struct {
	registry *typemap.Registry
	cfg      transpile.Config
	logger   *slog.Logger
}

// NewRPCGenerator returns a generator resolving types through r.
func NewRPCGenerator(r *typemap.Registry, logger *slog.Logger) *RPCGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RPCGenerator{registry: r, cfg: r.Config(), logger: logger}
}

// contract is a resolved hub or receiver.
type contract struct {
	sym     *symbol.Symbol
	name    string
	methods []method
}

type method struct {
	src    symbol.Method
	name   string
	params []param
	result typemap.Expr
}

type param struct {
	name string
	typ  typemap.Expr
}

// returns renders the method's return type.
func (m method) returns() string {
	switch m.result.Shape {
	case typemap.ShapeVoid:
		return "Promise<void>"
	case typemap.ShapeStream:
		return m.result.Text
	}
	return "Promise<" + nullable(m.result) + ">"
}

// payload renders the type argument of the connection call.
func (m method) payload() string {
	switch m.result.Shape {
	case typemap.ShapeVoid:
		return "void"
	case typemap.ShapeStream:
		if m.result.Elem == nil {
			return "unknown"
		}
		return m.result.Elem.Text
	}
	return nullable(m.result)
}

func (m method) signature() string {
	ps := make([]string, len(m.params))
	for i, p := range m.params {
		ps[i] = p.name + ": " + nullable(p.typ)
	}
	return fmt.Sprintf("%s(%s): %s", m.name, strings.Join(ps, ", "), m.returns())
}

func nullable(e typemap.Expr) string {
	if e.Nullable {
		return e.Text + " | null"
	}
	return e.Text
}

// Generate returns one unit per contract, in declaration order, followed by
// the runtime-support units.
func (g *RPCGenerator) Generate(ctx context.Context, graph *symbol.Graph) ([]sink.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var units []sink.Unit
	for _, s := range graph.Contracts() {
		c, err := g.resolve(s)
		if err != nil {
			return nil, err
		}
		content, err := g.render(graph, c)
		if err != nil {
			return nil, err
		}
		name := ContractUnitName(s)
		g.logger.Debug("emitted unit",
			slog.String("unit", name),
			slog.String("contract", s.ID()),
			slog.Int("methods", len(c.methods)),
		)
		units = append(units, sink.Unit{Name: name, Location: sink.LocationRoot, Content: content})
	}

	rt, err := RuntimeUnits(g.cfg)
	if err != nil {
		return nil, err
	}
	return append(units, rt...), nil
}

// ContractUnitName returns the unit name of a hub or receiver,
// e.g. "Chat.hub.ts".
func ContractUnitName(s *symbol.Symbol) string {
	return s.Name + "." + s.Contract.String() + sink.Extension
}

// resolve validates the shape of a contract and resolves its signatures.
func (g *RPCGenerator) resolve(s *symbol.Symbol) (*contract, error) {
	c := &contract{sym: s, name: g.cfg.TypeName(s.Name)}
	names := make(map[string]string)
	for _, m := range s.Methods {
		id := s.ID() + "." + m.Name
		if len(m.Results) > 1 {
			return nil, diag.Shapef(diag.CodeMultipleResults, id,
				"method returns %d values; at most one result besides error is allowed", len(m.Results))
		}

		rm := method{src: m, name: g.cfg.MethodName(m.Name)}
		if proxyMembers[rm.name] {
			return nil, diag.Shapef(diag.CodeOverload, id,
				"method %s is emitted as %s, which the proxy class already declares", m.Name, rm.name)
		}
		if prev, ok := names[rm.name]; ok {
			return nil, diag.Shapef(diag.CodeOverload, id,
				"methods %s and %s are both emitted as %s", prev, m.Name, rm.name)
		}
		names[rm.name] = m.Name

		seen := make(map[string]bool)
		for _, p := range m.Params {
			e, err := g.registry.Resolve(p.Type)
			if err != nil {
				return nil, err
			}
			if e.Async {
				return nil, diag.Shapef(diag.CodeAsyncParam, id,
					"parameter %s is asynchronous; only results may be", p.Name)
			}
			name := transpile.EscapeReserved(g.cfg.MemberName(p.Name))
			if seen[name] {
				return nil, diag.Shapef(diag.CodeDuplicateParam, id,
					"two parameters are emitted as %s", name)
			}
			seen[name] = true
			rm.params = append(rm.params, param{name: name, typ: e})
		}

		rm.result = typemap.Expr{Text: "void", Shape: typemap.ShapeVoid}
		if len(m.Results) == 1 {
			e, err := g.registry.Resolve(m.Results[0])
			if err != nil {
				return nil, err
			}
			rm.result = e
		}
		c.methods = append(c.methods, rm)
	}
	return c, nil
}

func (g *RPCGenerator) render(graph *symbol.Graph, c *contract) ([]byte, error) {
	s := c.sym
	unit := ContractUnitName(s)

	local := map[string]bool{
		c.name:                true,
		c.name + "Proxy":      true,
		c.name + "Dispatcher": true,
		c.name + "Methods":    true,
	}
	if s.Path != "" {
		local[c.name+"Path"] = true
	}

	im := newImports()
	im.addType(runtimeModule, "Connection")
	im.addType(runtimeModule, "Dispatcher")
	im.addValue(runtimeModule, "UnknownMethodError")

	var pair string
	if s.Contract == symbol.ContractHub && s.Pair != nil {
		pair = g.cfg.TypeName(s.Pair.Name)
		local["connect"+c.name] = true
		from := ModuleSpecifier(ContractUnitName(s.Pair))
		im.addType(from, pair)
		im.addValue(from, pair+"Dispatcher")
	}

	imported := make(map[string]*symbol.Symbol)
	for _, m := range c.methods {
		exprs := []typemap.Expr{m.result}
		for _, p := range m.params {
			exprs = append(exprs, p.typ)
		}
		for _, e := range exprs {
			for _, r := range e.Refs {
				if !emittable(g.cfg, r) {
					continue
				}
				name := g.cfg.TypeName(r.Name)
				if local[name] || isRuntimeName(name) || (pair != "" && (name == pair || name == pair+"Dispatcher")) {
					return nil, diag.Shapef(diag.CodeAmbiguousType, r.ID(),
						"%s collides with a name declared in %s", name, unit)
				}
				if prev, ok := imported[name]; ok && prev != r {
					return nil, ambiguous(r, prev, name, unit)
				}
				imported[name] = r
				im.addType(ModuleSpecifier(DataUnitName(graph, g.cfg, r.Package)), name)
			}
		}
	}

	w := newWriter(g.cfg)
	im.write(w)

	g.writeInterface(w, c)
	w.line(0, "")
	g.writeMethods(w, c)
	if s.Path != "" {
		w.line(0, "")
		w.line(0, "export const %sPath = %s;", c.name, strconv.Quote(s.Path))
	}
	w.line(0, "")
	g.writeProxy(w, c)
	w.line(0, "")
	g.writeDispatcher(w, c)
	if pair != "" {
		w.line(0, "")
		w.line(0, "/** Registers receiver on connection and returns a proxy for the %s hub. */", c.name)
		w.line(0, "export function connect%s(connection: Connection, receiver: %s): %sProxy {", c.name, pair, c.name)
		w.line(1, "connection.register(new %sDispatcher(receiver));", pair)
		w.line(1, "return new %sProxy(connection);", c.name)
		w.line(0, "}")
	}
	return w.bytes(), nil
}

// proxyMembers are declared by every generated proxy class.
var proxyMembers = map[string]bool{"constructor": true, "connection": true}

func isRuntimeName(name string) bool {
	return name == "Connection" || name == "Dispatcher" || name == "UnknownMethodError"
}

func (g *RPCGenerator) writeInterface(w *writer, c *contract) {
	w.doc(0, c.sym.Doc)
	if len(c.methods) == 0 {
		w.line(0, "export interface %s {}", c.name)
		return
	}
	w.line(0, "export interface %s {", c.name)
	for _, m := range c.methods {
		w.doc(1, m.src.Doc)
		w.line(1, "%s;", m.signature())
	}
	w.line(0, "}")
}

// writeMethods lists the wire names of the contract's methods.
func (g *RPCGenerator) writeMethods(w *writer, c *contract) {
	names := make([]string, len(c.methods))
	for i, m := range c.methods {
		names[i] = strconv.Quote(m.src.Name)
	}
	w.line(0, "export const %sMethods = [%s] as const;", c.name, strings.Join(names, ", "))
}

func (g *RPCGenerator) writeProxy(w *writer, c *contract) {
	w.line(0, "/** Calls %s methods over a connection. */", c.name)
	w.line(0, "export class %sProxy implements %s {", c.name, c.name)
	w.line(1, "constructor(private readonly connection: Connection) {}")
	for _, m := range c.methods {
		args := make([]string, len(m.params))
		for i, p := range m.params {
			args[i] = p.name
		}
		call := "invoke"
		if m.result.Shape == typemap.ShapeStream {
			call = "stream"
		}

		w.line(0, "")
		w.line(1, "%s {", m.signature())
		w.line(2, "return this.connection.%s<%s>(%s, [%s]);", call, m.payload(), strconv.Quote(m.src.Name), strings.Join(args, ", "))
		w.line(1, "}")
	}
	w.line(0, "}")
}

func (g *RPCGenerator) writeDispatcher(w *writer, c *contract) {
	w.line(0, "/** Routes incoming %s calls to a local implementation. */", c.name)
	w.line(0, "export class %sDispatcher implements Dispatcher {", c.name)
	w.line(1, "readonly contract = %s;", strconv.Quote(c.sym.Name))
	w.line(0, "")
	w.line(1, "constructor(private readonly target: %s) {}", c.name)
	w.line(0, "")
	if len(c.methods) == 0 {
		w.line(1, "dispatch(method: string, _args: unknown[]): unknown {")
		w.line(2, "throw new UnknownMethodError(this.contract, method);")
		w.line(1, "}")
		w.line(0, "}")
		return
	}

	w.line(1, "dispatch(method: string, args: unknown[]): unknown {")
	w.line(2, "switch (method) {")
	for _, m := range c.methods {
		args := make([]string, len(m.params))
		for i, p := range m.params {
			args[i] = fmt.Sprintf("args[%d] as %s", i, nullable(p.typ))
		}
		w.line(3, "case %s:", strconv.Quote(m.src.Name))
		w.line(4, "return this.target.%s(%s);", m.name, strings.Join(args, ", "))
	}
	w.line(3, "default:")
	w.line(4, "throw new UnknownMethodError(this.contract, method);")
	w.line(2, "}")
	w.line(1, "}")
	w.line(0, "}")
}
