package scheduler

import (
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's own messages into the service logger.
type cronLogger struct {
	logger *logging.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]any{"error", err}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
