package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent          = lipgloss.Color("#5FD7FF")
	frame           = lipgloss.Color("#C13584")
	okColor         = lipgloss.Color("#5FD75F")
	valueColor      = lipgloss.Color("#FFD75F")
	warnColor       = lipgloss.Color("#FF8700")
	failColor       = lipgloss.Color("#FF5F5F")
	background      = lipgloss.Color("#101018")
	panelBackground = lipgloss.Color("#1C1C28")
	muted           = lipgloss.Color("#A8A8A8")

	baseStyle = lipgloss.NewStyle().
			Background(background).
			Foreground(muted)

	logoStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(1, 0).
			Align(lipgloss.Center)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(frame).
			Background(panelBackground).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(frame).
			Foreground(background).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(valueColor)

	successStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(failColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Bold(true)

	activeItemStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true).
			PaddingLeft(2)

	finishedItemStyle = lipgloss.NewStyle().
				Foreground(muted).
				PaddingLeft(2)

	previewStyle = lipgloss.NewStyle().
			Foreground(muted).
			Faint(true).
			PaddingLeft(4)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	logMessageStyle = lipgloss.NewStyle().
			Foreground(muted)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 2)
)
