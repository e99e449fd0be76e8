package theme

import (
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/benchquest/pkg/settings"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	Report ReportTheme
	// Accent colours progress bars and the active step.
	Accent string
	// Muted is the second progress bar colour.
	Muted string
}

// FooterTheme groups styles used by the bottom help line.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Key    lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Active lipgloss.Style
	Done   lipgloss.Style
}

// ReportTheme styles the run summary shown when a protocol finishes.
type ReportTheme struct {
	Frame  lipgloss.Style
	Header lipgloss.Style
	Text   lipgloss.Style
}

type palette struct {
	accent, muted, text, faint, done string
}

var palettes = map[settings.ThemeMode]palette{
	settings.Light: {accent: "#216e39", muted: "#9be9a8", text: "#24292f", faint: "#6e7781", done: "#8c959f"},
	settings.Dark:  {accent: "#39d353", muted: "#0e4429", text: "#c9d1d9", faint: "#8b949e", done: "#484f58"},
}

// Border maps the corner preference to a Lip Gloss border.
func Border(style settings.CornerStyle) lipgloss.Border {
	if style == settings.Sharp {
		return lipgloss.NormalBorder()
	}
	return lipgloss.RoundedBorder()
}

// Default returns the theme for default settings.
func Default() Theme {
	return For(settings.Defaults())
}

// For builds the theme the user picked.
func For(s settings.Settings) Theme {
	p, ok := palettes[s.ThemeMode]
	if !ok {
		p = palettes[settings.Light]
	}
	border := Border(s.CornerStyle)

	return Theme{
		Accent: p.accent,
		Muted:  p.muted,
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.faint)),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color(p.faint)).Italic(true),
			Key:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)).Bold(true),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().
				Border(border).
				BorderForeground(lipgloss.Color(p.accent)).
				Padding(1, 2),
			Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.text)),
			Body:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
			Active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
			Done:   lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color(p.done)),
		},
		Report: ReportTheme{
			Frame:  lipgloss.NewStyle().Border(border).Padding(1, 2),
			Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
			Text:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
		},
	}
}
