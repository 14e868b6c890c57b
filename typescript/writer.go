// Package typescript renders a symbol graph as TypeScript source units.
//
// DataContractGenerator emits one unit per Go package holding the data
// shapes reachable from the RPC contracts. RPCGenerator emits one unit per
// contract with a typed proxy and dispatcher, plus the runtime-support
// units they import. Both resolve types through the same typemap.Registry.
package typescript

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/broady/hubgen/sink"
	"github.com/broady/hubgen/transpile"
)

// writer accumulates the text of one unit.
type writer struct {
	buf      bytes.Buffer
	indent   string
	nl       string
	comments bool
}

func newWriter(cfg transpile.Config) *writer {
	w := &writer{
		indent:   strings.Repeat(" ", cfg.IndentSize),
		nl:       cfg.Newline(),
		comments: !cfg.OmitComments,
	}
	w.buf.WriteString(sink.Header)
	w.buf.WriteString(w.nl)
	if fm := strings.TrimSpace(cfg.Frontmatter); fm != "" {
		for _, l := range splitLines(fm) {
			w.buf.WriteString(l)
			w.buf.WriteString(w.nl)
		}
	}
	w.buf.WriteString(w.nl)
	return w
}

// line writes one indented line. An empty format writes a blank line.
func (w *writer) line(depth int, format string, args ...any) {
	if format == "" {
		w.buf.WriteString(w.nl)
		return
	}
	w.buf.WriteString(strings.Repeat(w.indent, depth))
	if len(args) > 0 {
		fmt.Fprintf(&w.buf, format, args...)
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteString(w.nl)
}

// doc writes a Go doc comment as JSDoc. A "Deprecated:" paragraph becomes
// a @deprecated tag.
func (w *writer) doc(depth int, text string) {
	if !w.comments {
		return
	}
	body, deprecated, isDeprecated := splitDeprecated(text)
	if body == "" && !isDeprecated {
		return
	}

	var lines []string
	if body != "" {
		lines = splitLines(body)
	}
	if len(lines) == 1 && !isDeprecated {
		w.line(depth, "/** %s */", escapeComment(lines[0]))
		return
	}

	w.line(depth, "/**")
	for _, l := range lines {
		if l == "" {
			w.line(depth, " *")
			continue
		}
		w.line(depth, " * %s", escapeComment(l))
	}
	if isDeprecated {
		if deprecated != "" {
			w.line(depth, " * @deprecated %s", escapeComment(deprecated))
		} else {
			w.line(depth, " * @deprecated")
		}
	}
	w.line(depth, " */")
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

// splitDeprecated separates the "Deprecated:" paragraph from a doc comment.
func splitDeprecated(text string) (body, deprecated string, ok bool) {
	text = strings.TrimSpace(text)
	paras := strings.Split(text, "\n\n")
	var kept []string
	for _, p := range paras {
		if rest, found := strings.CutPrefix(strings.TrimSpace(p), "Deprecated:"); found {
			deprecated = strings.Join(strings.Fields(rest), " ")
			ok = true
			continue
		}
		kept = append(kept, p)
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n")), deprecated, ok
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// escapeComment keeps comment text from closing the JSDoc block.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

// formatEnumValue formats an enum member value as a TypeScript literal.
func formatEnumValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// imports collects imported names per module specifier.
type imports struct {
	types  map[string]map[string]bool
	values map[string]map[string]bool
}

func newImports() *imports {
	return &imports{types: map[string]map[string]bool{}, values: map[string]map[string]bool{}}
}

func (im *imports) addType(from, name string) {
	if im.types[from] == nil {
		im.types[from] = map[string]bool{}
	}
	im.types[from][name] = true
}

func (im *imports) addValue(from, name string) {
	if im.values[from] == nil {
		im.values[from] = map[string]bool{}
	}
	im.values[from][name] = true
}

// write emits sorted import declarations followed by a blank line.
// Modules importing values use inline type modifiers for their types.
func (im *imports) write(w *writer) {
	froms := make(map[string]bool)
	for f := range im.types {
		froms[f] = true
	}
	for f := range im.values {
		froms[f] = true
	}
	if len(froms) == 0 {
		return
	}

	for _, from := range sortedKeys(froms) {
		values := sortedKeys(im.values[from])
		types := sortedKeys(im.types[from])
		if len(values) == 0 {
			w.line(0, "import type { %s } from %q;", strings.Join(types, ", "), from)
			continue
		}
		names := values
		for _, t := range types {
			if !im.values[from][t] {
				names = append(names, "type "+t)
			}
		}
		w.line(0, "import { %s } from %q;", strings.Join(names, ", "), from)
	}
	w.line(0, "")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
