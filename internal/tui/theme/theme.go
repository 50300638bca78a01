package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/threadfold/internal/thread"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	Author  lipgloss.Style
	Score   lipgloss.Style
	Control lipgloss.Style
	Body    lipgloss.Style

	PlaceholderIdle    lipgloss.Style
	PlaceholderLoading lipgloss.Style
	PlaceholderError   lipgloss.Style

	// DepthGuides colour the indent guide of each nesting level, cycling.
	DepthGuides []lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpSky := lipgloss.Color("#89dceb")
	cpBlue := lipgloss.Color("#89b4fa")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),

		Author:  lipgloss.NewStyle().Bold(true).Foreground(cpText),
		Score:   lipgloss.NewStyle().Foreground(cpYellow),
		Control: lipgloss.NewStyle().Foreground(cpOverlay1),
		Body:    lipgloss.NewStyle().Foreground(cpSubtext0),

		PlaceholderIdle:    lipgloss.NewStyle().Foreground(cpBlue).Underline(true),
		PlaceholderLoading: lipgloss.NewStyle().Foreground(cpPeach).Italic(true),
		PlaceholderError:   lipgloss.NewStyle().Foreground(cpRed).Bold(true),

		DepthGuides: []lipgloss.Style{
			lipgloss.NewStyle().Foreground(cpMauve),
			lipgloss.NewStyle().Foreground(cpTeal),
			lipgloss.NewStyle().Foreground(cpSky),
			lipgloss.NewStyle().Foreground(cpRosewater),
			lipgloss.NewStyle().Foreground(cpLavender),
		},
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}

func (t Theme) DepthGuide(depth int) lipgloss.Style {
	if len(t.DepthGuides) == 0 || depth < 0 {
		return lipgloss.NewStyle()
	}
	return t.DepthGuides[depth%len(t.DepthGuides)]
}

func (t Theme) PlaceholderStyle(state thread.PlaceholderState) lipgloss.Style {
	switch state {
	case thread.StateLoading:
		return t.PlaceholderLoading
	case thread.StateError:
		return t.PlaceholderError
	default:
		return t.PlaceholderIdle
	}
}
