package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/preflight/internal/result"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
)

type styles struct {
	title   lipgloss.Style
	pass    lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
	hint    lipgloss.Style
	enabled bool
}

func newStyles(w io.Writer, color bool) styles {
	if !color {
		return styles{}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorWhite),
		pass:    r.NewStyle().Foreground(colorGreen),
		warn:    r.NewStyle().Foreground(colorYellow),
		fail:    r.NewStyle().Foreground(colorRed).Bold(true),
		dim:     r.NewStyle().Foreground(colorDim),
		hint:    r.NewStyle().Foreground(colorBlue),
		enabled: true,
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s styles) marker(status result.Status) string {
	switch status {
	case result.StatusPass:
		return s.render(s.pass, checkMark)
	case result.StatusWarn:
		return s.render(s.warn, warnMark)
	default:
		return s.render(s.fail, crossMark)
	}
}
