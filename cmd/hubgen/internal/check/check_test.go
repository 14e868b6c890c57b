package check

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/hubgen/cmd/hubgen/internal/options"
)

func defaults(patterns ...string) options.Options {
	return options.Options{
		Packages:     patterns,
		Naming:       "camel",
		TypeNaming:   "none",
		MethodNaming: "camel",
		Enum:         "value",
		Serializer:   "json",
		HonorTags:    true,
		LineEnding:   "lf",
		Indent:       2,
		Unknown:      "unknown",
	}
}

func TestCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	var out bytes.Buffer
	c := &Cmd{
		Options: defaults("github.com/broady/hubgen/loader/testdata/chat", "github.com/broady/hubgen/loader/testdata/chat/model"),
		stdout:  &out,
	}
	require.NoError(t, c.Run(context.Background(), slog.New(slog.DiscardHandler)))
	assert.Contains(t, out.String(), "✓ 2 packages, 3 contracts\n")
	assert.Contains(t, out.String(), "✓ All types resolvable\n")
}

func TestCheckFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	var out bytes.Buffer
	c := &Cmd{
		Options: defaults("github.com/broady/hubgen/loader/testdata/bad"),
		stdout:  &out,
	}
	err := c.Run(context.Background(), slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.NotContains(t, out.String(), "All types resolvable")
}
