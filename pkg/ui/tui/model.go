package tui

import (
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"igcaption/pkg/models"
)

// PostState is where one post is in the batch
type PostState int

const (
	PostPending PostState = iota
	PostActive
	PostSucceeded
	PostFailed
)

// PostItem is one row of the batch
type PostItem struct {
	URL        models.PostLink
	State      PostState
	CaptionLen int
	Preview    string
	Reason     string
	StartTime  time.Time
	Elapsed    time.Duration
}

// LogMessage is a line in the activity panel
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model of a batch run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	posts     []*PostItem
	total     int
	succeeded int
	failed    int
	startTime time.Time
	finished  bool

	width          int
	height         int
	showHelp       bool
	interrupted    bool
	logMessages    []LogMessage
	maxLogMessages int

	// onQuit runs when the user leaves the view before the batch is done
	onQuit func()
}

// NewModel creates the model. onQuit may be nil.
func NewModel(onQuit func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	p := progress.New(progress.WithGradient(string(frame), string(accent)))
	p.Width = 40

	return Model{
		spinner:        s,
		progress:       p,
		startTime:      time.Now(),
		maxLogMessages: 50,
		onQuit:         onQuit,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// ensure grows the post list to total entries
func (m *Model) ensure(total int) {
	if total > m.total {
		m.total = total
	}
	for len(m.posts) < m.total {
		m.posts = append(m.posts, &PostItem{})
	}
}

// StartPost marks post index as in flight
func (m *Model) StartPost(index, total int, url models.PostLink) {
	m.ensure(total)
	if index < 0 || index >= len(m.posts) {
		return
	}
	post := m.posts[index]
	post.URL = url
	post.State = PostActive
	post.StartTime = time.Now()
}

// FinishPost records the outcome of post index
func (m *Model) FinishPost(index, total int, result models.ScrapeResult) {
	m.ensure(total)
	if index < 0 || index >= len(m.posts) {
		return
	}
	post := m.posts[index]
	if post.State == PostSucceeded || post.State == PostFailed {
		return
	}
	post.URL = result.URL
	if !post.StartTime.IsZero() {
		post.Elapsed = time.Since(post.StartTime)
	}

	if result.Success {
		caption := result.ContentOrEmpty()
		post.State = PostSucceeded
		post.CaptionLen = utf8.RuneCountInString(caption)
		post.Preview = preview(caption, 60)
		m.succeeded++
		m.AddLogMessage("SUCCESS", "Caption: "+result.URL)
		return
	}
	post.State = PostFailed
	post.Reason = result.ErrorOrEmpty()
	m.failed++
	m.AddLogMessage("ERROR", result.URL+" - "+post.Reason)
}

// AddLogMessage appends to the activity panel, keeping the newest entries
func (m *Model) AddLogMessage(level, message string) {
	color := muted
	switch level {
	case "ERROR":
		color = failColor
	case "WARN":
		color = warnColor
	case "SUCCESS":
		color = okColor
	case "INFO":
		color = accent
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Done is the number of finished posts
func (m *Model) Done() int {
	return m.succeeded + m.failed
}

// Percent is the finished share of the batch, 0..1
func (m *Model) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.Done()) / float64(m.total)
}

// ETA extrapolates the average time per post
func (m *Model) ETA() time.Duration {
	done := m.Done()
	if done == 0 || done >= m.total {
		return 0
	}
	perPost := time.Since(m.startTime) / time.Duration(done)
	return perPost * time.Duration(m.total-done)
}

// Interrupted reports whether the user quit before the batch finished
func (m *Model) Interrupted() bool {
	return m.interrupted
}

// Active returns the posts currently in flight
func (m *Model) Active() []*PostItem {
	return m.filter(PostActive)
}

// Recent returns up to n finished posts, newest last
func (m *Model) Recent(n int) []*PostItem {
	var finished []*PostItem
	for _, post := range m.posts {
		if post.State == PostSucceeded || post.State == PostFailed {
			finished = append(finished, post)
		}
	}
	if len(finished) > n {
		finished = finished[len(finished)-n:]
	}
	return finished
}

// Pending counts posts not started yet
func (m *Model) Pending() int {
	return len(m.filter(PostPending))
}

func (m *Model) filter(state PostState) []*PostItem {
	var out []*PostItem
	for _, post := range m.posts {
		if post.State == state {
			out = append(out, post)
		}
	}
	return out
}

func preview(s string, max int) string {
	line := s
	for i, r := range s {
		if r == '\n' {
			line = s[:i]
			break
		}
	}
	if utf8.RuneCountInString(line) <= max {
		return line
	}
	runes := []rune(line)
	return string(runes[:max-1]) + "…"
}
