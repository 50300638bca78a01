package comment

import "github.com/charmbracelet/lipgloss"

var (
	cpMauve    = lipgloss.Color("#cba6f7")
	cpPeach    = lipgloss.Color("#fab387")
	cpBlue     = lipgloss.Color("#89b4fa")
	cpLavender = lipgloss.Color("#b4befe")
	cpSubtext0 = lipgloss.Color("#a6adc8")
	cpOverlay1 = lipgloss.Color("#7f849c")
	cpSurface0 = lipgloss.Color("#313244")
	cpSurface2 = lipgloss.Color("#585b70")

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(cpLavender)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	italicStyle  = lipgloss.NewStyle().Italic(true)
	linkStyle    = lipgloss.NewStyle().Foreground(cpBlue).Faint(true)
	quotePrefix  = lipgloss.NewStyle().Foreground(cpOverlay1).Render("│ ")
	quoteText    = lipgloss.NewStyle().Italic(true).Foreground(cpSubtext0)
	codeStyle    = lipgloss.NewStyle().Foreground(cpPeach)
	spoilerStyle = lipgloss.NewStyle().Background(cpSurface0).Foreground(cpSurface0)
	tableBorder  = lipgloss.NewStyle().Foreground(cpSurface2)
	imageLabel   = lipgloss.NewStyle().Foreground(cpMauve).Faint(true).Italic(true)
)
