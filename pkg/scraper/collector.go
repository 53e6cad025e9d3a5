package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"igcaption/pkg/config"
	"igcaption/pkg/logger"
	"igcaption/pkg/models"
	"igcaption/pkg/session"
)

// Stop reasons reported by the collector
const (
	StopNoNewLinks      = "no_new_links"
	StopUnchangedHeight = "unchanged_height"
	StopMaxScrolls      = "max_scrolls"
	StopFault           = "fault"
)

// Collector scrolls a profile page and gathers post permalinks
type Collector struct {
	session session.Session
	cfg     config.CollectorConfig
	logger  logger.Logger

	lastStop string
}

// NewCollector creates a collector driving sess
func NewCollector(sess session.Session, cfg config.CollectorConfig, log logger.Logger) *Collector {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg.MaxScrolls <= 0 {
		cfg.MaxScrolls = config.DefaultConfig().Collector.MaxScrolls
	}
	if cfg.NoNewLinksThreshold <= 0 {
		cfg.NoNewLinksThreshold = config.DefaultConfig().Collector.NoNewLinksThreshold
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultConfig().Collector.PollInterval
	}
	return &Collector{
		session: sess,
		cfg:     cfg,
		logger:  log.WithField("component", "collector"),
	}
}

// Collect returns the unique post links found by scrolling profileURL, in
// first-discovery order. It never fails: faults end collection early and
// whatever was gathered so far is returned.
func (c *Collector) Collect(ctx context.Context, profileURL string) []models.PostLink {
	log := c.logger.WithField("profile", profileURL)
	links := models.NewLinkSet()
	c.lastStop = ""

	if !isProfileURL(profileURL) {
		log.Warn("Not a profile URL, nothing to collect")
		c.lastStop = StopFault
		return links.Links()
	}

	if err := c.session.Navigate(ctx, profileURL); err != nil {
		log.WithError(err).Warn("Failed to open profile")
		c.lastStop = StopFault
		return links.Links()
	}

	if clicked, err := c.session.Click(ctx, NotNowSelector); err == nil && clicked {
		log.Debug("Dismissed overlay")
	}

	height, err := c.session.ScrollHeight(ctx)
	if err != nil {
		log.WithError(err).Debug("Could not measure initial scroll height")
	}

	idle := 0
	for iteration := 1; ; iteration++ {
		elements, err := c.session.Query(ctx, PostLinkSelector)
		if err != nil {
			c.stop(log, StopFault, iteration, links.Len(), err)
			break
		}

		added := 0
		for _, el := range elements {
			if href, ok := el.Attr("href"); ok && links.Add(href) {
				added++
			}
		}
		if added == 0 {
			idle++
		} else {
			idle = 0
		}
		logger.LogCollectProgress(log, iteration, links.Len(), added, idle)

		if err := c.session.ScrollToBottom(ctx); err != nil {
			c.stop(log, StopFault, iteration, links.Len(), err)
			break
		}

		next, err := c.settle(ctx, height)
		if err != nil {
			c.stop(log, StopFault, iteration, links.Len(), err)
			break
		}
		unchanged := next == height
		height = next

		if reason := c.stopReason(iteration, idle, unchanged); reason != "" {
			c.stop(log, reason, iteration, links.Len(), nil)
			break
		}
	}

	return links.Links()
}

// LastStopReason returns why the most recent Collect call ended
func (c *Collector) LastStopReason() string {
	return c.lastStop
}

// stopReason evaluates the stopping policy; the first matching rule wins
func (c *Collector) stopReason(iteration, idle int, unchangedHeight bool) string {
	switch {
	case idle >= c.cfg.NoNewLinksThreshold:
		return StopNoNewLinks
	case c.cfg.StopOnUnchangedHeight && unchangedHeight:
		return StopUnchangedHeight
	case iteration >= c.cfg.MaxScrolls:
		return StopMaxScrolls
	}
	return ""
}

func (c *Collector) stop(log logger.Logger, reason string, iteration, total int, err error) {
	c.lastStop = reason
	l := log.WithFields(map[string]interface{}{
		"reason":     reason,
		"iterations": iteration,
		"links":      total,
	})
	if err != nil {
		l.WithError(err).Warn("Collection aborted")
		return
	}
	l.Info("Collection finished")
}

// settle waits for lazy-loaded content after a scroll. It polls the scroll
// height until it grows past before or the scroll pause elapses, and returns
// the last measured height.
func (c *Collector) settle(ctx context.Context, before int64) (int64, error) {
	deadline := time.Now().Add(c.cfg.ScrollPause)
	for {
		height, err := c.session.ScrollHeight(ctx)
		if err != nil {
			return before, err
		}
		remaining := time.Until(deadline)
		if height > before || remaining <= 0 {
			return height, nil
		}

		wait := c.cfg.PollInterval
		if remaining < wait {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return height, ctx.Err()
		case <-timer.C:
		}
	}
}

// isProfileURL accepts absolute http(s) URLs with a non-empty path
func isProfileURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && strings.Trim(u.Path, "/") != ""
}
