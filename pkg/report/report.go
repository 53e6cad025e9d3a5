package report

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"igcaption/pkg/models"
	"igcaption/pkg/scraper"
)

// Outcome buckets shown in the pie chart
const (
	OutcomeSucceeded = "Succeeded"
	OutcomeNoCaption = "No caption"
	OutcomeFailed    = "Failed"
)

// Summary counts results per outcome
type Summary struct {
	Succeeded int
	NoCaption int
	Failed    int
}

// Summarize buckets every result of batch
func Summarize(batch models.ScrapeBatch) Summary {
	var s Summary
	for _, r := range batch {
		switch {
		case r.Success:
			s.Succeeded++
		case scraper.IsNoCaption(r):
			s.NoCaption++
		default:
			s.Failed++
		}
	}
	return s
}

// Render writes an HTML page with an outcome pie and a caption length bar chart
func Render(w io.Writer, batch models.ScrapeBatch, title string) error {
	if title == "" {
		title = "Caption scrape"
	}
	summary := Summarize(batch)

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d posts", len(batch))}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	pie.AddSeries("Outcomes", []opts.PieData{
		{Name: OutcomeSucceeded, Value: summary.Succeeded},
		{Name: OutcomeNoCaption, Value: summary.NoCaption},
		{Name: OutcomeFailed, Value: summary.Failed},
	})

	var labels []string
	var lengths []opts.BarData
	for _, r := range batch {
		if !r.Success {
			continue
		}
		labels = append(labels, Shortcode(r.URL))
		lengths = append(lengths, opts.BarData{Value: utf8.RuneCountInString(r.ContentOrEmpty())})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Caption length"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	bar.SetXAxis(labels).AddSeries("Characters", lengths)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(pie, bar)
	return page.Render(w)
}

// Save renders the report to path
func Save(path string, batch models.ScrapeBatch, title string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Render(f, batch, title); err != nil {
		f.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	return f.Close()
}

// Shortcode returns the last path segment of a post URL, e.g. "C1a2B3" for
// https://www.instagram.com/p/C1a2B3/
func Shortcode(link models.PostLink) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return link
}
