package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ COLLECTION NOT FOUND: pots
//
//	   Did you mean: posts?
//
//	   → See all collections: explorer collections
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var header *color.Color
	var symbol string
	switch opts.Level {
	case ErrorLevelWarning:
		header, symbol = color.New(color.FgYellow, color.Bold), "⚠"
	case ErrorLevelInfo:
		header, symbol = color.New(color.FgCyan, color.Bold), "ℹ"
	default:
		header, symbol = color.New(color.FgRed, color.Bold), "❌"
	}
	hint := color.New(color.FgYellow)
	help := color.New(color.FgCyan)
	if opts.NoColor {
		header.DisableColor()
		hint.DisableColor()
		help.DisableColor()
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		hint.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			help.Fprintf(&b, "   → %s\n", cmd)
		}
	}
	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// CollectionNotFoundError reports an unknown collection with close names.
func CollectionNotFoundError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "collection not found",
		Problem:      name,
		Suggestions:  suggestions,
		HelpCommands: []string{"See all collections: explorer collections"},
		NoColor:      noColor,
	})
}

// ItemNotFoundError reports an unknown item id.
func ItemNotFoundError(collection, id string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "item not found",
		Problem:      fmt.Sprintf("%s/%s", collection, id),
		HelpCommands: []string{fmt.Sprintf("List items: explorer list %s", collection)},
		NoColor:      noColor,
	})
}

// SourceError reports a failed fetch.
func SourceError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context: "data source error",
		Problem: message,
		HelpCommands: []string{
			"Check the source settings in explorer.yaml",
			"Retry with --log-level debug for request details",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "configuration error",
		Problem:      message,
		HelpCommands: []string{"Create a config interactively: explorer init"},
		NoColor:      noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}
