package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Good rates and payouts: green
	colorGood = color.New(color.FgGreen)

	// Weak rates: yellow
	colorWeak = color.New(color.FgYellow)

	// Failures: bold red
	colorError = color.New(color.FgRed, color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatGood(s string) string {
	return colorGood.Sprint(s)
}

func formatWeak(s string) string {
	return colorWeak.Sprint(s)
}

func formatError(s string) string {
	return colorError.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
