// Package transpile holds the generation-affecting options shared by every
// hubgen component, and the identifier transforms they imply.
package transpile

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// NamingStyle selects an identifier transform.
type NamingStyle string

const (
	NamingNone   NamingStyle = "none"
	NamingCamel  NamingStyle = "camel"
	NamingPascal NamingStyle = "pascal"
)

// EnumStyle selects how enums are rendered.
type EnumStyle string

const (
	// EnumValue renders `enum E { A = <underlying value> }`.
	EnumValue EnumStyle = "value"
	// EnumName renders `enum E { A = "A" }`.
	EnumName EnumStyle = "name"
	// EnumUnion renders `type E = <value> | <value>`.
	EnumUnion EnumStyle = "union"
	// EnumNameUnion renders `type E = "A" | "B"`.
	EnumNameUnion EnumStyle = "name-union"
)

// Serializer selects the wire format whose struct tags carry naming overrides.
type Serializer string

const (
	SerializerJSON    Serializer = "json"
	SerializerMsgpack Serializer = "msgpack"
)

// LineEnding selects the line terminator of generated files.
type LineEnding string

const (
	LineEndingLF   LineEnding = "lf"
	LineEndingCRLF LineEnding = "crlf"
)

// Config is the immutable transpilation configuration of one run.
// Construct it with New; components receive it by value.
type Config struct {
	// NamingStyle transforms member and parameter names.
	NamingStyle NamingStyle `validate:"oneof=none camel pascal"`

	// TypeNamingStyle transforms type names.
	TypeNamingStyle NamingStyle `validate:"oneof=none camel pascal"`

	// MethodStyle transforms emitted method names.
	MethodStyle NamingStyle `validate:"oneof=none camel pascal"`

	EnumStyle  EnumStyle  `validate:"oneof=value name union name-union"`
	Serializer Serializer `validate:"oneof=json msgpack"`

	// IgnoreTags stops serializer struct tags from renaming, skipping or
	// making members optional. By default tags are honored, so the output
	// matches what the serializer sends.
	IgnoreTags bool

	// ReferencedPackages generates data contracts for types declared in
	// packages that were not analyzed directly.
	ReferencedPackages bool

	LineEnding LineEnding `validate:"oneof=lf crlf"`
	IndentSize int        `validate:"min=1,max=8"`

	// UnknownType is emitted for values with no static shape.
	UnknownType string `validate:"oneof=unknown any"`

	// OmitComments drops Go doc comments instead of rendering them as JSDoc.
	OmitComments bool

	// Frontmatter is added after the header of every generated unit.
	Frontmatter string

	// StripPackagePrefix is removed from package paths when naming
	// data-contract units.
	StripPackagePrefix string
}

// Default returns the default configuration: camel-case members and
// methods, value enums, JSON tags honored, LF line endings, 2-space indent.
func Default() Config {
	return Config{
		NamingStyle:     NamingCamel,
		TypeNamingStyle: NamingNone,
		MethodStyle:     NamingCamel,
		EnumStyle:       EnumValue,
		Serializer:      SerializerJSON,
		LineEnding:      LineEndingLF,
		IndentSize:      2,
		UnknownType:     "unknown",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New fills zero fields of c from Default and validates the result.
func New(c Config) (Config, error) {
	d := Default()
	if c.NamingStyle == "" {
		c.NamingStyle = d.NamingStyle
	}
	if c.TypeNamingStyle == "" {
		c.TypeNamingStyle = d.TypeNamingStyle
	}
	if c.MethodStyle == "" {
		c.MethodStyle = d.MethodStyle
	}
	if c.EnumStyle == "" {
		c.EnumStyle = d.EnumStyle
	}
	if c.Serializer == "" {
		c.Serializer = d.Serializer
	}
	if c.LineEnding == "" {
		c.LineEnding = d.LineEnding
	}
	if c.IndentSize == 0 {
		c.IndentSize = d.IndentSize
	}
	if c.UnknownType == "" {
		c.UnknownType = d.UnknownType
	}
	if err := validate.Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// TagKey returns the struct tag key read for naming overrides.
func (c Config) TagKey() string {
	return string(c.Serializer)
}

// Newline returns the line terminator.
func (c Config) Newline() string {
	if c.LineEnding == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}
