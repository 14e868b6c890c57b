package transpile

import (
	"strings"
	"unicode"
)

// Apply transforms a Go identifier according to style.
func Apply(name string, style NamingStyle) string {
	switch style {
	case NamingCamel:
		return toCamelCase(name)
	case NamingPascal:
		return toPascalCase(name)
	default:
		return name
	}
}

// MemberName returns the emitted name of a member or parameter.
func (c Config) MemberName(name string) string {
	return Apply(name, c.NamingStyle)
}

// MethodName returns the emitted name of a contract method.
func (c Config) MethodName(name string) string {
	return EscapeReserved(Apply(name, c.MethodStyle))
}

// TypeName returns the emitted name of a declared type.
func (c Config) TypeName(name string) string {
	return EscapeReserved(Apply(name, c.TypeNamingStyle))
}

// toCamelCase lowercases the leading run of capitals of a Go identifier
// ("UserId" -> "userId", "URLValue" -> "urlValue", "ID" -> "id") and joins
// snake_case words.
func toCamelCase(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, "_") {
		words := splitSnake(s)
		if len(words) == 0 {
			return s
		}
		var b strings.Builder
		b.WriteString(words[0])
		for _, w := range words[1:] {
			b.WriteString(capitalize(w))
		}
		return b.String()
	}

	runes := []rune(s)
	if !unicode.IsUpper(runes[0]) {
		return s
	}
	// A plural initialism ("IDs", "URLs") is one word.
	if n := len(runes); n > 2 && runes[n-1] == 's' && allUpper(runes[:n-1]) {
		return strings.ToLower(s)
	}
	for i := range runes {
		if i == 1 && !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && !unicode.IsUpper(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// toPascalCase uppercases the first letter and joins snake_case words.
func toPascalCase(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, "_") {
		var b strings.Builder
		for _, w := range splitSnake(s) {
			b.WriteString(capitalize(w))
		}
		return b.String()
	}
	return capitalize(s)
}

// splitSnake splits on underscores and lowercases every word.
func splitSnake(s string) []string {
	var words []string
	for _, w := range strings.Split(s, "_") {
		if w != "" {
			words = append(words, strings.ToLower(w))
		}
	}
	return words
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func allUpper(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
