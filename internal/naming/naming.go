// Package naming derives the identifiers used in generated code from
// component type names.
package naming

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldName converts a type name to lower snake case. An underscore is
// inserted before every uppercase letter except the first character, so runs
// of capitals are split letter by letter: "WeaponState" -> "weapon_state",
// "HTTPServer" -> "h_t_t_p_server".
func FieldName(typeName string) string {
	var b strings.Builder
	b.Grow(len(typeName) + 4)
	for i, r := range typeName {
		if i != 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// CollectionName is the pluralized FieldName: a trailing "y" becomes "ies",
// anything else gets an "s".
func CollectionName(typeName string) string {
	return Pluralize(FieldName(typeName))
}

func Pluralize(s string) string {
	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

var title = cases.Title(language.Und, cases.NoLower)

// Exported turns a snake case name into an exported Go identifier by title
// casing every word: "weapon_state" -> "WeaponState", "h_t_t_p_server" ->
// "HTTPServer".
func Exported(snake string) string {
	var b strings.Builder
	for _, word := range strings.Split(snake, "_") {
		b.WriteString(title.String(word))
	}
	return b.String()
}

// BaseName strips a package qualifier, pointer and slice markers, and type
// arguments from a type expression: "state.Vec[float64]" -> "Vec".
func BaseName(typeExpr string) string {
	s := strings.TrimLeft(strings.TrimSpace(typeExpr), "*[]")
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// IsIdentifier reports whether s is a valid Go identifier and not a keyword.
func IsIdentifier(s string) bool {
	return token.IsIdentifier(s)
}
