// Package styles holds the shared lipgloss palette for the TUI and CLI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"macsweep/internal/safety"
)

// Palette shared by both surfaces.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSecondary = lipgloss.Color("#06B6D4")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorCaution   = lipgloss.Color("#FBBF24")
	ColorDanger    = lipgloss.Color("#EF4444")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorText      = lipgloss.Color("#F9FAFB")
	ColorBorder    = lipgloss.Color("#374151")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	TextStyle     = lipgloss.NewStyle().Foreground(ColorText)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	SuccessStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	DangerStyle   = lipgloss.NewStyle().Foreground(ColorDanger)
	SizeStyle     = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	CursorStyle   = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	HelpStyle     = lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1)
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Background(ColorPrimary).Padding(0, 2).MarginBottom(1)
	DividerStyle  = lipgloss.NewStyle().Foreground(ColorBorder)
)

// LevelColor maps a safety level to its display color: green for safe,
// yellow for caution, orange for warning, red for danger.
func LevelColor(l safety.Level) lipgloss.Color {
	switch l {
	case safety.LevelSafe:
		return ColorSuccess
	case safety.LevelCaution:
		return ColorCaution
	case safety.LevelWarning:
		return ColorWarning
	case safety.LevelDanger:
		return ColorDanger
	default:
		return ColorMuted
	}
}

// LevelDot renders the colored level indicator used in listings.
func LevelDot(l safety.Level) string {
	return lipgloss.NewStyle().Foreground(LevelColor(l)).Render("●")
}

// Divider renders a horizontal line of the given width.
func Divider(width int) string {
	return DividerStyle.Render(strings.Repeat("─", width))
}
