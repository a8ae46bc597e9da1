package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Brand color palette
var (
	colorPrimary = lipgloss.Color("#D96C9A") // Rose - main brand
	colorMuted   = lipgloss.Color("240")     // Muted gray for secondary text
	colorSuccess = lipgloss.Color("#22C55E") // Success green
	colorError   = lipgloss.Color("#EF4444") // Error red
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

// isTerminal reports whether styled output should be used.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func heading(w io.Writer, s string) string {
	if !isTerminal(w) {
		return s
	}
	return styleHeading.Render(s)
}

func muted(w io.Writer, s string) string {
	if !isTerminal(w) {
		return s
	}
	return styleMuted.Render(s)
}

func success(w io.Writer, s string) string {
	if !isTerminal(w) {
		return s
	}
	return styleSuccess.Render(s)
}

// outputError prints a styled error message, scrubbing the bearer token if it
// leaked into the message.
func outputError(w io.Writer, err error) {
	msg := err.Error()
	if cfgToken != "" {
		msg = strings.ReplaceAll(msg, cfgToken, "***")
	}
	if isTerminal(w) {
		fmt.Fprintln(w, styleError.Render("Error: ")+msg)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
}
