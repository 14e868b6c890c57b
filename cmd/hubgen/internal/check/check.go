package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/broady/hubgen"
	"github.com/broady/hubgen/cmd/hubgen/internal/options"
)

type Cmd struct {
	options.Options

	stdout io.Writer
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	req := c.Request(logger)

	graph, err := hubgen.Load(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "✓ %d packages, %d contracts\n", len(graph.Packages), len(graph.Contracts()))

	// Rendering runs every mapping and shape check without writing files.
	res, err := hubgen.Render(ctx, graph, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "✓ %s\n", res.Summary())
	fmt.Fprintln(c.stdout, "✓ All types resolvable")
	return nil
}
