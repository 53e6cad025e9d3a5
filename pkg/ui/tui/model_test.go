package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcaption/pkg/models"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTracksBatch(t *testing.T) {
	model := NewModel(nil)

	model.Update(PostStartedMsg{Index: 0, Total: 3, URL: "https://www.instagram.com/p/AAA/"})
	require.Len(t, model.posts, 3)
	assert.Len(t, model.Active(), 1)
	assert.Equal(t, 2, model.Pending())

	model.Update(PostFinishedMsg{Index: 0, Total: 3, Result: models.Succeeded("https://www.instagram.com/p/AAA/", "Hello\nworld")})
	model.Update(PostStartedMsg{Index: 1, Total: 3, URL: "https://www.instagram.com/p/BBB/"})
	model.Update(PostFinishedMsg{Index: 1, Total: 3, Result: models.Failed("https://www.instagram.com/p/BBB/", "no caption found")})

	assert.Equal(t, 2, model.Done())
	assert.Equal(t, 1, model.succeeded)
	assert.Equal(t, 1, model.failed)
	assert.InDelta(t, 2.0/3.0, model.Percent(), 1e-9)
	assert.Empty(t, model.Active())

	first := model.posts[0]
	assert.Equal(t, PostSucceeded, first.State)
	assert.Equal(t, 11, first.CaptionLen)
	assert.Equal(t, "Hello", first.Preview)

	second := model.posts[1]
	assert.Equal(t, PostFailed, second.State)
	assert.Equal(t, "no caption found", second.Reason)

	recent := model.Recent(5)
	require.Len(t, recent, 2)
	assert.Equal(t, "https://www.instagram.com/p/BBB/", recent[1].URL)
}

func TestModelIgnoresDuplicateFinish(t *testing.T) {
	model := NewModel(nil)
	result := models.Succeeded("u", "x")

	model.Update(PostFinishedMsg{Index: 0, Total: 1, Result: result})
	model.Update(PostFinishedMsg{Index: 0, Total: 1, Result: result})

	assert.Equal(t, 1, model.Done())
}

func TestModelIgnoresOutOfRangeIndex(t *testing.T) {
	model := NewModel(nil)

	assert.NotPanics(t, func() {
		model.Update(PostFinishedMsg{Index: 5, Total: 2, Result: models.Succeeded("u", "x")})
		model.Update(PostStartedMsg{Index: -1, Total: 2, URL: "u"})
	})
	assert.Equal(t, 0, model.Done())
}

func TestModelBatchDoneQuits(t *testing.T) {
	quits := 0
	model := NewModel(func() { quits++ })

	_, cmd := model.Update(BatchDoneMsg{Batch: models.ScrapeBatch{models.Succeeded("u", "x")}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, model.finished)

	model.Update(key("q"))
	assert.False(t, model.Interrupted())
	assert.Equal(t, 0, quits)
}

func TestModelQuitInterruptsRun(t *testing.T) {
	quits := 0
	model := NewModel(func() { quits++ })
	model.Update(PostStartedMsg{Index: 0, Total: 2, URL: "u"})

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, model.Interrupted())
	assert.Equal(t, 1, quits)
}

func TestModelHelpAndClear(t *testing.T) {
	model := NewModel(nil)
	model.Update(LogMsg{Level: "INFO", Message: "hello"})
	require.Len(t, model.logMessages, 1)

	model.Update(key("?"))
	assert.True(t, model.showHelp)

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, model.logMessages)
}

func TestModelLogLimit(t *testing.T) {
	model := NewModel(nil)
	for i := 0; i < 60; i++ {
		model.AddLogMessage("INFO", "line")
	}
	assert.Len(t, model.logMessages, 50)
}

func TestModelView(t *testing.T) {
	model := NewModel(nil)
	assert.Equal(t, "Initializing...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model.Update(PostStartedMsg{Index: 0, Total: 2, URL: "https://www.instagram.com/p/AAA/"})
	model.Update(PostFinishedMsg{Index: 0, Total: 2, Result: models.Failed("https://www.instagram.com/p/AAA/", "no caption found")})

	view := model.View()
	assert.Contains(t, view, "BATCH")
	assert.Contains(t, view, "1/2")
	assert.Contains(t, view, "no caption found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("abc", 1))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "first line", preview("first line\nsecond", 60))
	assert.Equal(t, strings.Repeat("é", 9)+"…", preview(strings.Repeat("é", 20), 10))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", formatDuration(-time.Second))
	assert.Equal(t, "01:05", formatDuration(65*time.Second))
	assert.Equal(t, "01:00:01", formatDuration(time.Hour+time.Second))
}
