package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const logo = `
╔═══════════════════════════════════════════╗
║   I G C A P T I O N  ·  caption extractor  ║
╚═══════════════════════════════════════════╝`

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	width := m.width - 4
	sections := []string{
		logoStyle.Width(m.width).Render(logo),
		m.renderStatsPanel(width),
		m.renderActivePanel(width),
		m.renderRecentPanel(width),
		m.renderLogsPanel(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help • q to stop"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" BATCH ")

	rows := []string{
		m.progress.ViewAs(m.Percent()),
		stat("Posts:", fmt.Sprintf("%d/%d", m.Done(), m.total)),
		stat("Captions:", successStyle.Render(fmt.Sprintf("%d", m.succeeded))),
		stat("Failed:", errorStyle.Render(fmt.Sprintf("%d", m.failed))),
		stat("Elapsed:", formatDuration(time.Since(m.startTime))),
		stat("ETA:", formatDuration(m.ETA())),
	}
	if m.interrupted {
		rows = append(rows, warningStyle.Render("⏹  STOPPING"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")),
	)
}

func stat(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}

func (m *Model) renderActivePanel(width int) string {
	title := titleStyle.Render(" EXTRACTING ")

	active := m.Active()
	if len(active) == 0 {
		content := lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf("%d pending", m.Pending()))
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	var rows []string
	for _, post := range active {
		rows = append(rows, fmt.Sprintf("%s %s %s",
			m.spinner.View(),
			activeItemStyle.Render(truncate(post.URL, width-20)),
			logTimestampStyle.Render(formatDuration(time.Since(post.StartTime))),
		))
	}
	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")),
	)
}

func (m *Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENT ")

	recent := m.Recent(5)
	if len(recent) == 0 {
		content := lipgloss.NewStyle().Foreground(muted).Render("Nothing finished yet")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	var rows []string
	for _, post := range recent {
		if post.State == PostSucceeded {
			rows = append(rows,
				successStyle.Render("✓")+finishedItemStyle.Render(fmt.Sprintf("%s • %d chars", truncate(post.URL, width-24), post.CaptionLen)),
				previewStyle.Render(truncate(post.Preview, width-8)),
			)
			continue
		}
		rows = append(rows,
			errorStyle.Render("✗")+finishedItemStyle.Render(truncate(post.URL, width-8)),
			previewStyle.Render(truncate(post.Reason, width-8)),
		)
	}
	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" ACTIVITY ")

	start := len(m.logMessages) - 6
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, entry := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(entry.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(entry.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", entry.Level))
		message := logMessageStyle.Render(truncate(entry.Message, width-25))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(muted).Render("No activity yet...")
	}
	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m *Model) renderHelp() string {
	help := `
  Keys:
    q/Q, ctrl+c - Stop after the current post
    ctrl+l      - Clear activity
    ?           - Toggle this help

  Icons:
    ` + successStyle.Render("✓") + `  - Caption extracted
    ` + errorStyle.Render("✗") + `  - Failed, reason below
`
	return panelStyle.Width(m.width).Render(help)
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	if max <= 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
