package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"igcaption/pkg/models"
)

// PostStartedMsg is sent when the pipeline begins a post
type PostStartedMsg struct {
	Index int
	Total int
	URL   models.PostLink
}

// PostFinishedMsg carries the outcome of a post
type PostFinishedMsg struct {
	Index  int
	Total  int
	Result models.ScrapeResult
}

// BatchDoneMsg ends the view
type BatchDoneMsg struct {
	Batch models.ScrapeBatch
}

// LogMsg adds a line to the activity panel
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg refreshes elapsed times
type TickMsg time.Time

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = clamp(msg.Width-20, 10, 80)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd()

	case PostStartedMsg:
		m.StartPost(msg.Index, msg.Total, msg.URL)
		return m, nil

	case PostFinishedMsg:
		m.FinishPost(msg.Index, msg.Total, msg.Result)
		return m, nil

	case BatchDoneMsg:
		m.finished = true
		m.AddLogMessage("INFO", "Batch finished")
		return m, tea.Quit

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if !m.finished {
			m.interrupted = true
			m.AddLogMessage("WARN", "Interrupted by user")
			if m.onQuit != nil {
				m.onQuit()
			}
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
