package app

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	green = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#86efac"}
	red   = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#fca5a5"}
	muted = lipgloss.AdaptiveColor{Light: "#64748b", Dark: "#94a3b8"}
)

// styles renders check results. Colors are only emitted to terminals.
type styles struct {
	ok     lipgloss.Style
	fail   lipgloss.Style
	detail lipgloss.Style
	header lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor || !isTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		ok:     r.NewStyle().Foreground(green).Bold(true),
		fail:   r.NewStyle().Foreground(red).Bold(true),
		detail: r.NewStyle().Foreground(muted).PaddingLeft(4),
		header: r.NewStyle().Foreground(muted),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
