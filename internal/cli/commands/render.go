package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printHeading writes a section heading, styled on a terminal.
func printHeading(w io.Writer, s string) {
	if isTerminal(w) {
		s = headingStyle.Render(s)
	}
	_, _ = fmt.Fprintln(w, s)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// mm formats a depth in metres as millimetres.
func mm(z float64) string {
	return fmt.Sprintf("%.3f", z*1e3)
}
