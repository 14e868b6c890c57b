package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var releaseVersion string

// Version reports the hubgen version: the module version for
// `go install ...@version` builds, otherwise devel-<VERSION> with the
// short VCS revision, marked .dirty for modified trees.
func Version() string {
	return versionOf(strings.TrimSpace(releaseVersion), debug.ReadBuildInfo)
}

func versionOf(release string, read func() (*debug.BuildInfo, bool)) string {
	info, ok := read()
	if !ok {
		return release
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	v := "devel-" + release
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) >= 7 {
		v += "+" + rev[:7]
		if dirty {
			v += ".dirty"
		}
	}
	return v
}
