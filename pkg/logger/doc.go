// Package logger provides structured logging for igcaption.
//
// It wraps zerolog behind a small Logger interface so components can take a
// logger as a dependency and tests can swap in a TestLogger or the nop logger.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "pipeline")
//	log.InfoWithFields("Starting batch", map[string]interface{}{"urls": 12})
//
// Console output goes to stderr so result listings on stdout stay clean.
// Setting logging.file additionally appends JSON lines to that file.
package logger
