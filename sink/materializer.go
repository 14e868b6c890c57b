package sink

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/broady/hubgen/diag"
)

// Report lists the files changed by a Materializer, as slash-separated
// paths relative to the output root.
type Report struct {
	Written []string
	Removed []string
}

// Materializer synchronizes an output directory with a set of units.
type Materializer struct {
	// Root is the output directory.
	Root string

	// Concurrency bounds the number of files written at once.
	// Zero means GOMAXPROCS.
	Concurrency int

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	Logger *slog.Logger
}

// NewMaterializer returns a Materializer writing to root.
func NewMaterializer(root string, logger *slog.Logger) *Materializer {
	return &Materializer{Root: root, Logger: logger}
}

// Write validates units, removes stale generated files from each location
// and writes every unit.
//
// A unit is never half-written, but a failure may leave the destination
// with a mix of old and new units; the error says so.
func (m *Materializer) Write(ctx context.Context, units []Unit) (Report, error) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keep, err := validate(units, m.Root)
	if err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var report Report
	for _, loc := range []Location{LocationRoot, LocationRuntime} {
		removed, err := m.clean(loc, keep[loc], logger)
		report.Removed = append(report.Removed, removed...)
		if err != nil {
			return report, err
		}
	}

	fsink := &FilesystemSink{Root: m.Root, Mode: m.Mode}
	limit := m.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := u.Path()
			if err := fsink.WriteFile(gctx, p, u.Content); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return diag.Output(diag.CodeWrite, u.Name, filepath.Join(m.Root, filepath.FromSlash(p)), err)
			}
			logger.Debug("wrote unit", slog.String("unit", p), slog.Int("bytes", len(u.Content)))

			mu.Lock()
			report.Written = append(report.Written, p)
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	sort.Strings(report.Written)
	return report, err
}

// validate checks unit names and returns the set of names per location.
func validate(units []Unit, root string) (map[Location]map[string]bool, error) {
	keep := map[Location]map[string]bool{
		LocationRoot:    {},
		LocationRuntime: {},
	}
	for _, u := range units {
		dest := filepath.Join(root, u.Location.String())
		names, ok := keep[u.Location]
		if !ok {
			return nil, diag.Unitf(diag.CodeInvalidUnit, u.Name, dest, "unknown location %d", u.Location)
		}
		if err := ValidateName(u.Name); err != nil {
			return nil, diag.Unitf(diag.CodeInvalidUnit, u.Name, dest, "invalid unit name: %v", err)
		}
		// Names are compared case-insensitively; they may share a
		// case-insensitive filesystem.
		key := strings.ToLower(u.Name)
		if names[key] {
			return nil, diag.Unitf(diag.CodeDuplicateUnit, u.Name, dest, "two units share the name %q", u.Name)
		}
		names[key] = true
	}
	return keep, nil
}

// clean removes generated files of one location that are not in keep.
// Files without the generated header are never touched.
func (m *Materializer) clean(loc Location, keep map[string]bool, logger *slog.Logger) ([]string, error) {
	dir := filepath.Join(m.Root, loc.String())
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, diag.Output(diag.CodeCleanup, "", dir, err)
	}

	var removed []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, Extension) || keep[strings.ToLower(name)] {
			continue
		}
		full := filepath.Join(dir, name)
		generated, err := IsGenerated(full)
		if err != nil {
			return removed, diag.Output(diag.CodeCleanup, name, dir, err)
		}
		if !generated {
			continue
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, diag.Output(diag.CodeCleanup, name, dir, err)
		}
		rel := name
		if loc == LocationRuntime {
			rel = path.Join(RuntimeDir, name)
		}
		logger.Info("removed stale file", slog.String("file", rel))
		removed = append(removed, rel)
	}
	return removed, nil
}
