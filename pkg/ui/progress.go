package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
)

// StatusTracker counts outcomes of a batch and estimates the time left
type StatusTracker struct {
	Total     int
	Succeeded int
	Failed    int
	StartTime time.Time
}

func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{Total: total, StartTime: time.Now()}
}

// Record counts one finished post
func (st *StatusTracker) Record(success bool) {
	if success {
		st.Succeeded++
	} else {
		st.Failed++
	}
}

// Done is the number of posts finished so far
func (st *StatusTracker) Done() int {
	return st.Succeeded + st.Failed
}

// Bar renders a fixed-width progress bar
func (st *StatusTracker) Bar(width int) string {
	return RenderBar(st.Done(), st.Total, width)
}

// Rate returns posts per minute
func (st *StatusTracker) Rate() float64 {
	elapsed := time.Since(st.StartTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Done()) / elapsed
}

// ETA estimates the remaining time from the average pace so far
func (st *StatusTracker) ETA() string {
	done := st.Done()
	if done == 0 {
		return "calculating..."
	}
	perPost := time.Since(st.StartTime) / time.Duration(done)
	return FormatDuration(perPost * time.Duration(st.Total-done))
}

// RenderBar draws done/total as a bar of width cells
func RenderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// FormatDuration prints d as 42s, 3m5s or 1h2m
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
