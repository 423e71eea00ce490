package explorer

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

// Theme holds the page title and palette of the HTML explorer.
type Theme struct {
	Title      string
	Accent     string
	Background string
	Foreground string
	Muted      string
}

// DefaultTheme returns gold headings on a black page.
func DefaultTheme() Theme {
	return Theme{
		Title:      "Explorer",
		Accent:     "#d4af37",
		Background: "#000000",
		Foreground: "#f5f5f5",
		Muted:      "#8a8a8a",
	}
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20})$`)

// Validate checks that every color is a hex triplet or a named color.
func (t Theme) Validate() error {
	for name, c := range map[string]string{
		"accent":     t.Accent,
		"background": t.Background,
		"foreground": t.Foreground,
		"muted":      t.Muted,
	} {
		if !colorPattern.MatchString(c) {
			return fmt.Errorf("theme.%s: invalid color %q", name, c)
		}
	}
	return nil
}

// withDefaults fills unset fields from DefaultTheme.
func (t Theme) withDefaults() Theme {
	def := DefaultTheme()
	if t.Title == "" {
		t.Title = def.Title
	}
	if t.Accent == "" {
		t.Accent = def.Accent
	}
	if t.Background == "" {
		t.Background = def.Background
	}
	if t.Foreground == "" {
		t.Foreground = def.Foreground
	}
	if t.Muted == "" {
		t.Muted = def.Muted
	}
	return t
}

// CSS returns the palette as custom properties. Colors must have passed
// Validate.
func (t Theme) CSS() template.CSS {
	var b strings.Builder
	b.WriteString(":root{")
	fmt.Fprintf(&b, "--accent:%s;", t.Accent)
	fmt.Fprintf(&b, "--bg:%s;", t.Background)
	fmt.Fprintf(&b, "--fg:%s;", t.Foreground)
	fmt.Fprintf(&b, "--muted:%s;", t.Muted)
	b.WriteString("}")
	return template.CSS(b.String())
}
