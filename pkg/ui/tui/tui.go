package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"igcaption/pkg/models"
)

// TUI shows batch progress full-screen. It satisfies scraper.Reporter: the
// pipeline goroutine only sends messages, the program renders on its own.
type TUI struct {
	program *tea.Program
	model   *Model
	done    chan error
}

// NewTUI builds the view. onQuit is called when the user stops the run from
// the keyboard, since raw mode swallows SIGINT.
func NewTUI(onQuit func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(onQuit)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &TUI{
		program: tea.NewProgram(&model, opts...),
		model:   &model,
		done:    make(chan error, 1),
	}
}

// Start runs the program in the background
func (t *TUI) Start() {
	go func() {
		_, err := t.program.Run()
		t.done <- err
	}()
}

// Wait blocks until the program has exited and the terminal is restored
func (t *TUI) Wait() error {
	return <-t.done
}

// Stop quits the program without waiting for the batch
func (t *TUI) Stop() {
	t.program.Quit()
}

func (t *TUI) Started(index, total int, url models.PostLink) {
	t.program.Send(PostStartedMsg{Index: index, Total: total, URL: url})
}

func (t *TUI) Finished(index, total int, result models.ScrapeResult) {
	t.program.Send(PostFinishedMsg{Index: index, Total: total, Result: result})
}

func (t *TUI) Done(batch models.ScrapeBatch) {
	t.program.Send(BatchDoneMsg{Batch: batch})
}

// Log adds a line to the activity panel
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.program.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Interrupted reports whether the user quit early. Valid after Wait.
func (t *TUI) Interrupted() bool {
	return t.model.Interrupted()
}
