package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogCollectProgress logs one profile scrolling iteration
func LogCollectProgress(log Logger, iteration, total, added, idle int) {
	log.WithFields(map[string]interface{}{
		"iteration": iteration,
		"links":     total,
		"new_links": added,
		"idle":      idle,
	}).Debug("Collected links")
}

// LogScrapeResult logs the outcome of one caption extraction
func LogScrapeResult(log Logger, index, total int, url string, success bool, reason string) {
	l := log.WithFields(map[string]interface{}{
		"index": index + 1,
		"total": total,
		"url":   url,
	})

	if success {
		l.Info("Caption extracted")
	} else {
		l.WithField("reason", reason).Warn("Caption extraction failed")
	}
}

// LogSinkWrite logs a result sink write
func LogSinkWrite(log Logger, sink, location string, records int, err error) {
	l := log.WithFields(map[string]interface{}{
		"sink":    sink,
		"records": records,
	})

	if err != nil {
		l.WithError(err).Error("Failed to persist results")
		return
	}
	l.WithField("location", location).Info("Results persisted")
}

// LogRunSummary logs the counters of a finished batch
func LogRunSummary(log Logger, succeeded, failed int, elapsed time.Duration) {
	log.WithFields(map[string]interface{}{
		"succeeded": succeeded,
		"failed":    failed,
		"elapsed":   elapsed,
		"type":      "metrics",
	}).Info("Run finished")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)

	if len(config) > 0 {
		logger = logger.WithFields(config)
	}

	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
