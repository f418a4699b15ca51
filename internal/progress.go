package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

// PrintSuccess prints a green success line to stderr.
func PrintSuccess(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, successStyle.Render("✓ "+message))
	} else {
		fmt.Fprintln(os.Stderr, message)
	}
}

// PrintError prints a red failure line to stderr.
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+message))
	} else {
		fmt.Fprintln(os.Stderr, message)
	}
}

// PrintWarning prints an amber warning line to stderr.
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, warningStyle.Render("! "+message))
	} else {
		fmt.Fprintln(os.Stderr, message)
	}
}

// PrintStatus prints an in-progress status line to stderr.
func PrintStatus(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, statusStyle.Render("… "+message))
	} else {
		LogInfo("%s", message)
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
