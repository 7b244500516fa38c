// Package style provides semantic terminal styling using lipgloss.
//
// This package is the only place where lipgloss is imported. Styles are
// semantic (Success, Error, Header, ...) rather than visual, and message
// templates refer to them by name: "{{header Usage}}: {{name}} <command>".
//
// When disabled, all helpers return the input string unchanged with no ANSI codes.
package style

import (
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	enabled bool
	colors  ColorConfig

	successStyle   lipgloss.Style
	warningStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	infoStyle      lipgloss.Style
	headerStyle    lipgloss.Style
	mutedStyle     lipgloss.Style
	boldStyle      = lipgloss.NewStyle().Bold(true)
	underlineStyle = lipgloss.NewStyle().Underline(true)
)

// Init initializes the style package with the given enabled state and config.
// NO_COLOR and COMFORT_NO_COLOR disable styling regardless of enable.
//
// The cfg parameter supplies the color theme and individual color overrides.
// If cfg is nil, default colors are used.
func Init(enable bool, cfg map[string]string) {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("COMFORT_NO_COLOR") != "" {
		enabled = false
		return
	}

	enabled = enable

	if enabled {
		colors = LoadColorConfig(cfg)
		initStyles(colors)
	}
}

// GetColors returns the current color configuration.
func GetColors() ColorConfig {
	return colors
}

func initStyles(colors ColorConfig) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	successStyle = makeStyle(colors.Success)
	warningStyle = makeStyle(colors.Warning)
	errorStyle = makeStyle(colors.Error)
	infoStyle = makeStyle(colors.Info)
	mutedStyle = makeStyle(colors.Muted)
	headerStyle = makeStyle(colors.Header)
}

// makeStyle creates a lipgloss style from a color value.
// The value can be "bold" for bold styling, or an ANSI color number (0-255).
func makeStyle(value string) lipgloss.Style {
	if value == "bold" {
		return lipgloss.NewStyle().Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(value))
}

// Enabled returns whether styling is currently enabled.
func Enabled() bool {
	return enabled
}

func render(s lipgloss.Style, text string) string {
	if !enabled {
		return text
	}
	return s.Render(text)
}

// Success styles text for successful operations.
func Success(text string) string { return render(successStyle, text) }

// Warning styles text for warning messages.
func Warning(text string) string { return render(warningStyle, text) }

// Error styles text for error messages.
func Error(text string) string { return render(errorStyle, text) }

// Info styles text for informational messages.
func Info(text string) string { return render(infoStyle, text) }

// Header styles text for section headers or titles.
func Header(text string) string { return render(headerStyle, text) }

// Muted styles text for less important or secondary information.
func Muted(text string) string { return render(mutedStyle, text) }

func Bold(text string) string      { return render(boldStyle, text) }
func Underline(text string) string { return render(underlineStyle, text) }

var styles = map[string]func(string) string{
	"success":   Success,
	"green":     Success,
	"warning":   Warning,
	"yellow":    Warning,
	"error":     Error,
	"red":       Error,
	"info":      Info,
	"header":    Header,
	"muted":     Muted,
	"gray":      Muted,
	"bold":      Bold,
	"underline": Underline,
}

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)(?:\s+([^}]*?))?\s*\}\}`)

// Render expands a message template. "{{key}}" is replaced by data[key];
// "{{style text}}" renders text (itself expanded) with the named style.
// Unknown placeholders are left as they are.
func Render(tmpl string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		parts := placeholder.FindStringSubmatch(m)
		key, text := parts[1], parts[2]

		if text == "" {
			if v, ok := data[key]; ok {
				return v
			}
			return m
		}

		fn, ok := styles[key]
		if !ok {
			return m
		}
		words := strings.Fields(text)
		for i, w := range words {
			if v, ok := data[w]; ok {
				words[i] = v
			}
		}
		return fn(strings.Join(words, " "))
	})
}

// Width returns the printable width of s, ignoring ANSI sequences.
func Width(s string) int {
	return lipgloss.Width(s)
}
