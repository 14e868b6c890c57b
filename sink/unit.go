package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Header is the first line of every generated unit. Files starting with
// it are owned by hubgen and may be removed when they become stale.
const Header = "// Code generated by hubgen. DO NOT EDIT."

// Extension is the file extension of generated units.
const Extension = ".ts"

// RuntimeDir is the directory, relative to the output root, holding the
// runtime-support units.
const RuntimeDir = "hubgen"

// Location selects the directory a unit is written to.
type Location int

const (
	// LocationRoot is the output root (data and RPC contracts).
	LocationRoot Location = iota
	// LocationRuntime is the runtime-support directory below the root.
	LocationRuntime
)

// String returns the location's directory relative to the output root.
func (l Location) String() string {
	if l == LocationRuntime {
		return RuntimeDir
	}
	return "."
}

// Unit is one generated source file.
type Unit struct {
	// Name is the file name, e.g. "Chat.hub.ts".
	Name     string
	Location Location
	Content  []byte
}

// Path returns the unit's slash-separated path relative to the output root.
func (u Unit) Path() string {
	if u.Location == LocationRuntime {
		return path.Join(RuntimeDir, u.Name)
	}
	return u.Name
}

// ValidateName checks that a unit name is a plain file name with the
// generated extension.
func ValidateName(name string) error {
	if err := ValidatePath(name); err != nil {
		return err
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("unit names must not contain directories")
	}
	if !strings.HasSuffix(name, Extension) || name == Extension {
		return fmt.Errorf("unit names must end in %s", Extension)
	}
	return nil
}

// IsGenerated reports whether the file at path starts with Header.
func IsGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// Header plus the longest line terminator.
	line, err := bufio.NewReader(io.LimitReader(f, int64(len(Header)+2))).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.TrimRight(line, "\r\n") == Header, nil
}
