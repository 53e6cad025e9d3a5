package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"igcaption/pkg/models"
)

// ProgressDisplay prints one line per finished post and a summary at the
// end. It satisfies scraper.Reporter.
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	tracker *StatusTracker
	color   bool
	verbose bool
}

// NewProgressDisplay writes to out. verbose adds a line when each post
// starts; color enables ANSI colors.
func NewProgressDisplay(out io.Writer, color, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		tracker: NewStatusTracker(0),
		color:   color,
		verbose: verbose,
	}
}

func (p *ProgressDisplay) Started(index, total int, url models.PostLink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index == 0 {
		p.tracker = NewStatusTracker(total)
	}
	if p.verbose {
		fmt.Fprintf(p.out, "%s [%d/%d] %s\n", p.paint(Magenta, "→"), index+1, total, url)
	}
}

func (p *ProgressDisplay) Finished(index, total int, result models.ScrapeResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tracker.Total != total {
		p.tracker.Total = total
	}
	p.tracker.Record(result.Success)

	bar := p.tracker.Bar(20)
	if result.Success {
		fmt.Fprintf(p.out, "%s [%s] %d/%d %s • %d chars\n",
			p.paint(Green, "✓"), bar, index+1, total, result.URL,
			utf8.RuneCountInString(result.ContentOrEmpty()))
		return
	}
	fmt.Fprintf(p.out, "%s [%s] %d/%d %s • %s\n",
		p.paint(Red, "✗"), bar, index+1, total, result.URL,
		p.paint(Dim, result.ErrorOrEmpty()))
}

func (p *ProgressDisplay) Done(batch models.ScrapeBatch) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.tracker.StartTime)
	fmt.Fprintf(p.out, "\n%s Extracted %d of %d captions in %s\n",
		p.paint(Green, "✓"), batch.Succeeded(), len(batch), FormatDuration(elapsed))
	if failed := batch.Failed(); failed > 0 {
		fmt.Fprintf(p.out, "  %s %d posts failed\n", p.paint(Dim, "•"), failed)
	}
}

func (p *ProgressDisplay) paint(color func(string) string, s string) string {
	if !p.color {
		return s
	}
	return color(s)
}
