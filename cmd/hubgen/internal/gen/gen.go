package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/broady/hubgen"
	"github.com/broady/hubgen/cmd/hubgen/internal/options"
	"github.com/broady/hubgen/cmd/hubgen/internal/watch"
)

type Cmd struct {
	Out string `arg:"" help:"Output directory for generated files." type:"path"`

	options.Options

	Concurrency int           `help:"Maximum number of files written at once (0: one per CPU)."`
	Watch       bool          `help:"Watch for changes and regenerate." short:"w"`
	Debounce    time.Duration `help:"Quiet period before regenerating in watch mode." default:"300ms"`

	stdout io.Writer
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	req := c.Request(logger)
	req.OutDir = outDir
	req.Concurrency = c.Concurrency

	dirs, err := c.generate(ctx, req)
	if !c.Watch {
		return err
	}
	if dirs == nil {
		dirs = []string{c.Dir}
	}

	w, err := watch.New(func(ctx context.Context) ([]string, error) {
		return c.generate(ctx, req)
	}, logger)
	if err != nil {
		return err
	}
	w.Debounce = c.Debounce
	if err := w.Watch(dirs); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "watching %d directories for changes\n", len(dirs))
	return w.Run(ctx)
}

// generate runs one generation and returns the analyzed package directories.
func (c *Cmd) generate(ctx context.Context, req hubgen.Request) ([]string, error) {
	res, err := hubgen.Generate(ctx, req)
	if err != nil {
		// In watch mode the loop keeps running, so the failure is shown here.
		if c.Watch {
			fmt.Fprintf(c.stdout, "✗ %v\n", err)
		}
		return nil, err
	}
	fmt.Fprintf(c.stdout, "✓ %s\n", res.Summary())

	dirs := make([]string, 0, len(res.Graph.Packages))
	for _, p := range res.Graph.Packages {
		if p.Dir != "" {
			dirs = append(dirs, p.Dir)
		}
	}
	return dirs, nil
}
