package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToSnakeCase converts CamelCase to snake_case.
// Acronyms stay together (HTTPRequest -> http_request).
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteRune('_')
				} else if prev != '_' && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Humanize turns a field name into a header label:
// date_created -> Date Created, userID -> User Id, first-name -> First Name.
func Humanize(s string) string {
	words := strings.FieldsFunc(ToSnakeCase(s), func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return s
	}
	title := cases.Title(language.English)
	for i, w := range words {
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}

// TemplateField extracts the first field referenced by a display
// template such as "{{title}} ({{id}})". Nested paths keep only their
// last segment. It returns "" when the template references no field.
func TemplateField(template string) string {
	start := strings.Index(template, "{{")
	if start < 0 {
		return ""
	}
	rest := template[start+2:]
	end := strings.Index(rest, "}}")
	if end < 0 {
		return ""
	}
	field := strings.TrimSpace(rest[:end])
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return field
}
