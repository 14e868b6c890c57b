// Command hubgen generates TypeScript clients for Go hub and receiver
// contracts.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/hubgen/cmd/hubgen/internal/check"
	"github.com/broady/hubgen/cmd/hubgen/internal/config"
	"github.com/broady/hubgen/cmd/hubgen/internal/gen"
)

type CLI struct {
	Config  kong.ConfigFlag `help:"TOML file with flag defaults." type:"path"`
	Verbose bool            `help:"Log debug events." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate TypeScript contracts and runtime files."`
	Check   check.Cmd  `cmd:"" help:"Validate contracts and types without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("hubgen"),
		kong.Description("Generate TypeScript clients for Go RPC hubs."),
		kong.UsageOnError(),
		kong.Configuration(config.TOML, config.DefaultFile),
	}, options...)
	return kong.New(cli, options...)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(newLogger(os.Stderr, cli.Verbose))
	kctx.FatalIfErrorf(err)
}
