package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs one HTTP round trip against the upstream API
func LogRequest(log Logger, method, endpoint string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		log.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("HTTP request client error", fields)
	default:
		log.DebugWithFields("HTTP request completed", fields)
	}
}

// LogRateLimit logs that the client is pausing for a rate limit window
func LogRateLimit(log Logger, endpoint string, wait time.Duration, attempt int) {
	log.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"wait":     wait.String(),
		"attempt":  attempt,
		"action":   "rate_limited",
	}).Warn("Rate limit reached, waiting for window reset")
}

// LogStage logs the start or completion of a pipeline stage
func LogStage(log Logger, stage, status string, fields map[string]interface{}) {
	l := log.WithFields(map[string]interface{}{
		"stage":  stage,
		"status": status,
	})
	if len(fields) > 0 {
		l = l.WithFields(fields)
	}
	l.Info("Pipeline stage " + status)
}

// LogMetrics logs run metrics
func LogMetrics(log Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	log.InfoWithFields("Run metrics", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
