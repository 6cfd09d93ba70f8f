package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by error messages and the program dump.
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#EF4444")
)

// styles renders for one writer, so color is dropped when the writer is
// not a terminal.
type styles struct {
	title lipgloss.Style
	muted lipgloss.Style
	err   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(colorPrimary),
		muted: r.NewStyle().Foreground(colorMuted),
		err:   r.NewStyle().Bold(true).Foreground(colorError),
	}
}

// renderDump highlights the chain headers of a program listing.
func (s styles) renderDump(dump string) string {
	lines := strings.Split(strings.TrimSuffix(dump, "\n"), "\n")
	for i, line := range lines {
		switch {
		case line == "":
		case !strings.HasPrefix(line, " ") && strings.HasSuffix(line, ":"):
			lines[i] = s.title.Render(line)
		default:
			lines[i] = s.muted.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
