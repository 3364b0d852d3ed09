// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for the request layer.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRequest logs a completed HTTP request.
func (al *AuditLogger) LogRequest(requestID, method, path, client string, status int, duration time.Duration) {
	entry := al.WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"client":      client,
		"status":      status,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	})
	if status >= 500 {
		entry.Error("Request failed")
		return
	}
	entry.Info("Request completed")
}

// LogRateLimited logs a rejected request.
func (al *AuditLogger) LogRateLimited(client, path string, limit int, window time.Duration) {
	al.WithFields(logrus.Fields{
		"client": client,
		"path":   path,
		"limit":  limit,
		"window": window.String(),
	}).Warn("Rate limit exceeded")
}

// LogModelSwap logs the replacement of the active model.
func (al *AuditLogger) LogModelSwap(oldModelID, newModelID, trigger string) {
	al.WithFields(logrus.Fields{
		"old_model_id": oldModelID,
		"new_model_id": newModelID,
		"trigger":      trigger,
	}).Info("Active model replaced")
}

// LogCircuitBreakerEvent logs circuit breaker state transitions.
func (al *AuditLogger) LogCircuitBreakerEvent(name, from, to string) {
	al.WithFields(logrus.Fields{
		"breaker": name,
		"from":    from,
		"to":      to,
	}).Warn("Circuit breaker state changed")
}

// LogPanic logs a recovered panic with the request context.
func (al *AuditLogger) LogPanic(requestID, path string, recovered interface{}) {
	al.WithFields(logrus.Fields{
		"request_id": requestID,
		"path":       path,
		"panic":      recovered,
	}).Error("Recovered from panic")
}
