package main

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/hubgen/transpile"
)

func parse(t *testing.T, args ...string) *CLI {
	t.Helper()
	cli := &CLI{}
	parser, err := newParser(cli)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return cli
}

func TestDefaultsMatchTranspileDefaults(t *testing.T) {
	cli := parse(t, "gen", "out")

	assert.Equal(t, transpile.Default(), cli.Gen.Config())
	assert.Equal(t, []string{"./..."}, cli.Gen.Packages)
	assert.False(t, cli.Gen.Watch)

	cfg, err := transpile.New(cli.Gen.Config())
	require.NoError(t, err)
	assert.Equal(t, transpile.Default(), cfg)
}

func TestFlags(t *testing.T) {
	cli := parse(t, "gen", "out",
		"-p", "./api/...", "-p", "./model",
		"--enum", "name-union",
		"--no-honor-tags",
		"--indent", "4",
		"--type-mapping", "time.Time=Date",
		"--no-async-sequence",
	)
	assert.Equal(t, []string{"./api/...", "./model"}, cli.Gen.Packages)
	assert.Equal(t, "out", filepath.Base(cli.Gen.Out))

	req := cli.Gen.Request(nil)
	assert.Equal(t, transpile.EnumNameUnion, req.Config.EnumStyle)
	assert.True(t, req.Config.IgnoreTags)
	assert.Equal(t, 4, req.Config.IndentSize)
	assert.Equal(t, map[string]string{"time.Time": "Date"}, req.TypeMappings)
	assert.True(t, req.DisableAsyncSequence)
	assert.False(t, req.DisableStreamedReader)
}

func TestInvalidEnumFlag(t *testing.T) {
	cli := &CLI{}
	parser, err := newParser(cli)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"check", "--enum", "bitmask"})
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubgen.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
enum = "union"
indent = 4
package = ["./api/..."]
honor_tags = false
strip-prefix = "example.com/app/"

[gen]
watch = true
debounce = "1s"

[type_mapping]
"time.Time" = "Date"
`), 0o644))

	cli := parse(t, "--config", path, "gen", "out")
	assert.Equal(t, "union", cli.Gen.Enum)
	assert.Equal(t, 4, cli.Gen.Indent)
	assert.Equal(t, []string{"./api/..."}, cli.Gen.Packages)
	assert.False(t, cli.Gen.HonorTags)
	assert.Equal(t, "example.com/app/", cli.Gen.StripPrefix)
	assert.True(t, cli.Gen.Watch)
	assert.Equal(t, "1s", cli.Gen.Debounce.String())
	assert.Equal(t, map[string]string{"time.Time": "Date"}, cli.Gen.TypeMapping)

	// Flags override the file.
	cli = parse(t, "--config", path, "gen", "out", "--enum", "value", "--honor-tags")
	assert.Equal(t, "value", cli.Gen.Enum)
	assert.True(t, cli.Gen.HonorTags)

	// Command tables only apply to their command.
	cli = parse(t, "--config", path, "check")
	assert.Equal(t, "union", cli.Check.Enum)
}

func TestVersionOf(t *testing.T) {
	none := func() (*debug.BuildInfo, bool) { return nil, false }
	assert.Equal(t, "0.1.0", versionOf("0.1.0", none))

	installed := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.1.0"}}, true
	}
	assert.Equal(t, "v0.1.0", versionOf("0.1.0", installed))

	devel := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc1234def"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}
	assert.Equal(t, "devel-0.1.0+abc1234.dirty", versionOf("0.1.0", devel))

	norev := func() (*debug.BuildInfo, bool) { return &debug.BuildInfo{}, true }
	assert.Equal(t, "devel-0.1.0", versionOf("0.1.0", norev))
}

func TestVersionFileEmbedded(t *testing.T) {
	assert.NotEmpty(t, Version())
}
