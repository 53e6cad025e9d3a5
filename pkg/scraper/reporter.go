package scraper

import "igcaption/pkg/models"

// Reporter observes a batch run. Calls arrive on the pipeline goroutine in
// order: Started/Finished pairs per post, then a single Done.
type Reporter interface {
	Started(index, total int, url models.PostLink)
	Finished(index, total int, result models.ScrapeResult)
	Done(batch models.ScrapeBatch)
}

// NopReporter ignores every event
type NopReporter struct{}

func (NopReporter) Started(int, int, models.PostLink)       {}
func (NopReporter) Finished(int, int, models.ScrapeResult) {}
func (NopReporter) Done(models.ScrapeBatch)                {}

// MultiReporter fans events out to several reporters
type MultiReporter []Reporter

func (m MultiReporter) Started(index, total int, url models.PostLink) {
	for _, r := range m {
		r.Started(index, total, url)
	}
}

func (m MultiReporter) Finished(index, total int, result models.ScrapeResult) {
	for _, r := range m {
		r.Finished(index, total, result)
	}
}

func (m MultiReporter) Done(batch models.ScrapeBatch) {
	for _, r := range m {
		r.Done(batch)
	}
}
