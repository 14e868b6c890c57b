package transpile

import (
	"strconv"
	"strings"
	"unicode"
)

// reservedWords cannot be used as TypeScript identifiers in module code.
var reservedWords = map[string]bool{
	"break":      true,
	"await":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"enum":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"implements": true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"interface":  true,
	"let":        true,
	"new":        true,
	"null":       true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"return":     true,
	"static":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"type":       true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
	"yield":      true,
}

// EscapeReserved escapes a reserved word by appending an underscore.
func EscapeReserved(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

// NeedsQuoting reports whether a property name must be written as a string literal.
func NeedsQuoting(name string) bool {
	if name == "" {
		return true
	}

	if unicode.IsDigit(rune(name[0])) {
		return true
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return true
		}
	}

	return reservedWords[name]
}

// PropertyName renders an object property key, quoting it when needed.
func PropertyName(name string) string {
	if NeedsQuoting(name) {
		return strconv.Quote(name)
	}
	return name
}

// SanitizeIdentifier makes an identifier valid for TypeScript.
func SanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var result strings.Builder

	// Handle leading digit
	if unicode.IsDigit(rune(name[0])) {
		result.WriteRune('_')
	}

	// Replace invalid characters with underscores
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}

	sanitized := result.String()

	// Escape reserved words
	return EscapeReserved(sanitized)
}
