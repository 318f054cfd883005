package logger

import (
	"github.com/rs/zerolog"
)

// LogVisit logs the outcome of a single page navigation
func LogVisit(log Logger, url string, err error) {
	if err != nil {
		log.WithError(err).WithField("url", url).Error("Failed to navigate to URL")
		return
	}
	log.WithField("url", url).Info("Visited URL")
}

// LogDownload logs download operations
func LogDownload(log Logger, sourceURL, path string, size int64, err error) {
	fields := map[string]interface{}{
		"source_url": sourceURL,
		"path":       path,
	}

	switch {
	case err != nil:
		log.WithFields(fields).WithError(err).Error("Download failed")
	case path == "":
		log.WithFields(fields).Warn("Download skipped")
	default:
		fields["bytes"] = size
		log.InfoWithFields("Download completed", fields)
	}
}

// LogComponentStart logs when a component starts
func LogComponentStart(log Logger, component string, cfg map[string]interface{}) {
	l := log.WithField("component", component)
	if len(cfg) > 0 {
		l = l.WithFields(cfg)
	}
	l.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(log Logger, component string, reason string) {
	log.WithFields(map[string]interface{}{
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
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
