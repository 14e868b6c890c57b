// Package config loads hubgen flag defaults from a TOML file.
//
// Keys are flag names, with dashes or underscores. A table named after a
// command holds values for that command only:
//
//	enum = "union"
//	strip_prefix = "example.com/app/"
//
//	[gen]
//	watch = true
//
//	[type_mapping]
//	"time.Time" = "string"
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// DefaultFile is the configuration file read when --config is not given.
const DefaultFile = "hubgen.toml"

// TOML is a kong.ConfigurationLoader for TOML files.
func TOML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	var f kong.ResolverFunc = func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if parent != nil && parent.Command != nil {
			if table, ok := values[parent.Command.Name].(map[string]any); ok {
				if v, ok := lookup(table, flag.Name); ok {
					return v, nil
				}
			}
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}
	return f, nil
}

// lookup returns the value of a flag in a decoded configuration.
func lookup(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := values[key]; ok {
			return normalize(v), true
		}
	}
	return nil, false
}

// normalize converts TOML values into the forms kong's mappers decode.
func normalize(v any) any {
	switch v := v.(type) {
	case int64:
		return int(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = fmt.Sprint(normalize(e))
		}
		return out
	}
	return v
}
