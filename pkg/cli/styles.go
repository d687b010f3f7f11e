package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	salmonPink = lipgloss.Color("#FFB3BA") // errors and command tags
	mintGreen  = lipgloss.Color("#A8E6CF") // success
	mutedGray  = lipgloss.Color("#6B7280") // secondary text
)

var (
	tagStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(mintGreen).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedGray)
)

// reportOK prints the one-line success summary of a command, e.g.
// "[build] OK. criteria=12 categories=4".
func reportOK(w io.Writer, command, format string, args ...any) {
	fmt.Fprintf(w, "%s %s %s\n", tagStyle.Render("["+command+"]"), okStyle.Render("OK."), fmt.Sprintf(format, args...))
}

// reportNote prints a secondary line under a summary.
func reportNote(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// reportProblem prints one violation or drift entry.
func reportProblem(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  ✗ %s\n", errorStyle.Render(fmt.Sprintf(format, args...)))
}
