// Package ui renders apidocs output for terminals.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level represents the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures message formatting
type MessageOptions struct {
	Level        Level
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatMessage creates a standardized message with suggestions and help
// commands.
//
// Example output:
//
//	⚠️ ROLE NOT FOUND: admn
//	   No command grants role 'admn'.
//
//	   Did you mean: ADMIN?
//
//	   → List roles: apidocs view --roles
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case LevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case LevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		if opts.Problem != "" {
			bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
		}
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// LoadError reports a catalog that could not be loaded. The previous
// catalog, if any, is still shown.
func LoadError(uri string, err error, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "catalog load failed",
		Problem:     fmt.Sprintf("Cannot load '%s': %v", uri, err),
		Consequence: "The previously loaded commands are still shown.",
		HelpCommands: []string{
			"Check the URI points at a commands document",
			"Get help: apidocs view --help",
		},
		NoColor: noColor,
	})
}

// RoleNotFound warns that no command grants the selected role
func RoleNotFound(role string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:        LevelWarning,
		Context:      "role not found",
		Problem:      fmt.Sprintf("No command grants role '%s'.", role),
		Suggestions:  suggestions,
		HelpCommands: []string{"List roles: apidocs view --roles"},
		NoColor:      noColor,
	})
}

// ConfigError reports an invalid configuration
func ConfigError(err error, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:   LevelError,
		Context: "configuration error",
		Problem: err.Error(),
		HelpCommands: []string{
			"View config: cat apidocs.yml",
			"Get help: apidocs --help",
		},
		NoColor: noColor,
	})
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
