package scraper

import (
	"fmt"
	"time"

	"igcaption/pkg/config"
	"igcaption/pkg/session"
)

const profileURL = "https://www.instagram.com/someone/"

func post(n int) string {
	return fmt.Sprintf("https://www.instagram.com/p/P%02d/", n)
}

func reel(n int) string {
	return fmt.Sprintf("https://www.instagram.com/reel/R%02d/", n)
}

// growingGrid returns snapshots where scroll i reveals post i+1
func growingGrid(n int) [][]session.Element {
	snapshots := make([][]session.Element, 0, n)
	var hrefs []string
	for i := 1; i <= n; i++ {
		hrefs = append(hrefs, post(i))
		snapshots = append(snapshots, session.Anchors(hrefs...))
	}
	return snapshots
}

func profilePage(snapshots [][]session.Element) *session.FakePage {
	return &session.FakePage{
		Snapshots: map[string][][]session.Element{PostLinkSelector: snapshots},
	}
}

// fastCollector has no lazy-load pause so tests never sleep
func fastCollector() config.CollectorConfig {
	cfg := config.DefaultConfig().Collector
	cfg.ScrollPause = 0
	cfg.PollInterval = time.Millisecond
	return cfg
}

func extractorConfig(policy string) config.ExtractorConfig {
	return config.ExtractorConfig{CaptionPolicy: policy, RenderTimeout: time.Second}
}
