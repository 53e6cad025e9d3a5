package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"igcaption/pkg/config"
	errs "igcaption/pkg/errors"
	"igcaption/pkg/logger"
	"igcaption/pkg/models"
	"igcaption/pkg/ratelimit"
	"igcaption/pkg/session"
)

// Pipeline scrapes a list of posts one after another over a single session.
// It owns the session: Run closes it exactly once, whatever happens.
type Pipeline struct {
	session   session.Session
	extractor *Extractor
	pacer     ratelimit.Pacer
	reporter  Reporter
	logger    logger.Logger
	runID     string
	closeOnce sync.Once
}

// NewPipeline creates a pipeline. A nil pacer disables pacing and a nil
// reporter discards progress events.
func NewPipeline(sess session.Session, cfg config.ExtractorConfig, pacer ratelimit.Pacer, reporter Reporter, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if pacer == nil {
		pacer = ratelimit.NoopPacer{}
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	runID := uuid.NewString()
	log = log.WithFields(map[string]interface{}{
		"component": "pipeline",
		"run_id":    runID,
	})
	return &Pipeline{
		session:   sess,
		extractor: NewExtractor(sess, cfg, log),
		pacer:     pacer,
		reporter:  reporter,
		logger:    log,
		runID:     runID,
	}
}

// RunID identifies this pipeline in logs
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run extracts every URL in order and returns one result per URL.
//
// Per-post failures are recorded in the batch. If the session dies or ctx is
// cancelled, the remaining URLs are recorded as failed, the session is
// closed and the cause is returned alongside the complete batch.
func (p *Pipeline) Run(ctx context.Context, urls []models.PostLink) (batch models.ScrapeBatch, err error) {
	defer p.close()

	started := time.Now()
	total := len(urls)
	batch = make(models.ScrapeBatch, 0, total)
	p.logger.WithField("urls", total).Info("Starting batch")

	for i, url := range urls {
		p.reporter.Started(i, total, url)
		result, fault := p.extractor.extract(ctx, url)
		batch = append(batch, result)
		p.reporter.Finished(i, total, result)
		logger.LogScrapeResult(p.logger, i, total, url, result.Success, result.ErrorOrEmpty())

		if fault == nil && i < total-1 {
			fault = p.pacer.Wait(ctx)
		}
		if fault != nil {
			batch = p.abandon(batch, urls[i+1:], total, fault)
			err = p.abortError(fault, i+1, total)
			break
		}
	}

	logger.LogRunSummary(p.logger, batch.Succeeded(), batch.Failed(), time.Since(started))
	p.reporter.Done(batch)
	return batch, err
}

// abandon records the URLs that will not be attempted
func (p *Pipeline) abandon(batch models.ScrapeBatch, rest []models.PostLink, total int, fault error) models.ScrapeBatch {
	reason := "interrupted: " + fault.Error()
	if errs.IsFatal(fault) {
		reason = "session lost: " + fault.Error()
	}
	for _, url := range rest {
		result := models.Failed(url, reason)
		batch = append(batch, result)
		p.reporter.Finished(len(batch)-1, total, result)
	}
	if len(rest) > 0 {
		p.logger.WithError(fault).WithField("skipped", len(rest)).Error("Batch aborted")
	}
	return batch
}

func (p *Pipeline) abortError(fault error, attempted, total int) error {
	msg := fmt.Sprintf("batch aborted after %d of %d posts", attempted, total)
	if errs.IsFatal(fault) {
		return errs.Wrap(errs.ErrorTypeSessionFatal, fault, msg)
	}
	return fmt.Errorf("%s: %w", msg, fault)
}

func (p *Pipeline) close() {
	p.closeOnce.Do(func() {
		if err := p.session.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close browser session")
		}
	})
}
