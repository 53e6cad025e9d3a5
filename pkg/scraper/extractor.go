package scraper

import (
	"context"
	"strings"
	"time"

	"igcaption/pkg/config"
	errs "igcaption/pkg/errors"
	"igcaption/pkg/logger"
	"igcaption/pkg/models"
	"igcaption/pkg/session"
)

// Extractor loads a single post and reads its caption
type Extractor struct {
	session       session.Session
	policy        string
	renderTimeout time.Duration
	logger        logger.Logger
}

// NewExtractor creates an extractor driving sess
func NewExtractor(sess session.Session, cfg config.ExtractorConfig, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	policy := strings.ToLower(cfg.CaptionPolicy)
	if policy != config.CaptionPolicyFirst {
		policy = config.CaptionPolicyAll
	}
	timeout := cfg.RenderTimeout
	if timeout <= 0 {
		timeout = config.DefaultConfig().Extractor.RenderTimeout
	}
	return &Extractor{
		session:       sess,
		policy:        policy,
		renderTimeout: timeout,
		logger:        log.WithField("component", "extractor"),
	}
}

// Extract scrapes the caption of one post. Faults are recorded in the
// result and never returned.
func (e *Extractor) Extract(ctx context.Context, url models.PostLink) models.ScrapeResult {
	result, _ := e.extract(ctx, url)
	return result
}

// extract also returns the fault when the session can no longer be used or
// ctx is done, so the pipeline knows to stop
func (e *Extractor) extract(ctx context.Context, url models.PostLink) (models.ScrapeResult, error) {
	if err := e.session.Navigate(ctx, url); err != nil {
		return e.fail(ctx, url, err)
	}

	if _, err := e.session.WaitFor(ctx, CaptionSelector, e.renderTimeout); err != nil {
		if errs.IsType(err, errs.ErrorTypeTimeout) && ctx.Err() == nil {
			return e.empty(url, err), nil
		}
		return e.fail(ctx, url, err)
	}

	elements, err := e.session.Query(ctx, CaptionSelector)
	if err != nil {
		return e.fail(ctx, url, err)
	}

	caption := e.caption(elements)
	if caption == "" {
		return e.empty(url, nil), nil
	}
	return models.Succeeded(url, caption), nil
}

func (e *Extractor) fail(ctx context.Context, url models.PostLink, err error) (models.ScrapeResult, error) {
	result := models.Failed(url, err.Error())
	if errs.IsFatal(err) {
		return result, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	e.logger.WithField("url", url).WithError(err).Debug("Post fault")
	return result, nil
}

// empty records a post whose caption never rendered or was blank
func (e *Extractor) empty(url models.PostLink, cause error) models.ScrapeResult {
	e.logger.WithField("url", url).WithError(cause).Debug("No caption found")
	return models.Failed(url, ErrNoCaption.Message)
}

// caption applies the caption policy to the matched nodes
func (e *Extractor) caption(elements []session.Element) string {
	var parts []string
	for _, el := range elements {
		text := strings.TrimSpace(el.Text)
		if e.policy == config.CaptionPolicyFirst {
			return text
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
