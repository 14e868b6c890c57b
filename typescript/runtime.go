package typescript

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/broady/hubgen/sink"
	"github.com/broady/hubgen/transpile"
)

//go:embed runtime/*.ts
var runtimeFS embed.FS

// RuntimeUnits returns the runtime-support units, formatted with cfg's
// indentation and line endings. They are the same for every run with the
// same formatting options.
func RuntimeUnits(cfg transpile.Config) ([]sink.Unit, error) {
	names, err := fs.Glob(runtimeFS, "runtime/*"+sink.Extension)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	units := make([]sink.Unit, 0, len(names))
	for _, name := range names {
		src, err := runtimeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read runtime unit %s: %w", name, err)
		}
		w := newWriter(cfg)
		for _, l := range splitLines(strings.TrimRight(string(src), "\n")) {
			w.buf.WriteString(reindent(l, w.indent))
			w.buf.WriteString(w.nl)
		}
		units = append(units, sink.Unit{
			Name:     strings.TrimPrefix(name, "runtime/"),
			Location: sink.LocationRuntime,
			Content:  w.bytes(),
		})
	}
	return units, nil
}

// reindent converts the two-space indentation of the runtime sources.
// Odd leftover spaces (JSDoc continuation lines) are kept.
func reindent(line, indent string) string {
	n := len(line) - len(strings.TrimLeft(line, " "))
	return strings.Repeat(indent, n/2) + strings.Repeat(" ", n%2) + line[n:]
}
