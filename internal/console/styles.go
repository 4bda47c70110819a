package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	warn   lipgloss.Style
	clock  lipgloss.Style
	label  lipgloss.Style
	panel  func(color lipgloss.Color) lipgloss.Style
	cell   lipgloss.Style
	header lipgloss.Style
	metric lipgloss.Style
	value  lipgloss.Style
}

var (
	green  = lipgloss.Color("#22C55E")
	cyan   = lipgloss.Color("#06B6D4")
	blue   = lipgloss.Color("#3B82F6")
	yellow = lipgloss.Color("#EAB308")
	red    = lipgloss.Color("#EF4444")
	gray   = lipgloss.Color("#9E9E9E")
	white  = lipgloss.Color("#FFFFFF")
)

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(white),
		muted: lipgloss.NewStyle().
			Foreground(gray),
		good: lipgloss.NewStyle().
			Foreground(green).
			Bold(true),
		bad: lipgloss.NewStyle().
			Foreground(red),
		warn: lipgloss.NewStyle().
			Foreground(yellow),
		clock: lipgloss.NewStyle().
			Bold(true).
			Foreground(white).
			Padding(0, 1),
		label: lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true),
		panel: func(color lipgloss.Color) lipgloss.Style {
			return lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(color).
				Padding(0, 1)
		},
		cell: lipgloss.NewStyle().
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),
		metric: lipgloss.NewStyle().
			Foreground(cyan).
			Padding(0, 1),
		value: lipgloss.NewStyle().
			Foreground(green).
			Padding(0, 1),
	}
}
