package logger

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// withKeyValues turns alternating key/value pairs into logrus fields.
// Non-string keys are dropped.
func withKeyValues(entry *logrus.Entry, keysAndValues []interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return entry.WithFields(fields)
}

// retryableLogger adapts a logrus entry to retryablehttp's key/value logger
type retryableLogger struct {
	entry *logrus.Entry
}

// NewRetryableLogger returns a retryablehttp.LeveledLogger writing to entry
func NewRetryableLogger(entry *logrus.Entry) retryablehttp.LeveledLogger {
	return &retryableLogger{entry: entry}
}

func (l *retryableLogger) Error(msg string, keysAndValues ...interface{}) {
	withKeyValues(l.entry, keysAndValues).Error(msg)
}

func (l *retryableLogger) Info(msg string, keysAndValues ...interface{}) {
	withKeyValues(l.entry, keysAndValues).Debug(msg)
}

func (l *retryableLogger) Debug(msg string, keysAndValues ...interface{}) {
	withKeyValues(l.entry, keysAndValues).Debug(msg)
}

func (l *retryableLogger) Warn(msg string, keysAndValues ...interface{}) {
	withKeyValues(l.entry, keysAndValues).Warn(msg)
}

// cronLogger adapts a logrus entry to cron's logger. cron reports every
// wake-up at Info, which is demoted to Debug.
type cronLogger struct {
	entry *logrus.Entry
}

// NewCronLogger returns a cron.Logger writing to entry
func NewCronLogger(entry *logrus.Entry) cron.Logger {
	return &cronLogger{entry: entry}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	withKeyValues(l.entry, keysAndValues).Debug(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	withKeyValues(l.entry, keysAndValues).WithError(err).Error(msg)
}
