package arena

import "go.uber.org/zap"

// SetLogger attaches a structured logger to the owner, used to report
// fresh-context allocations at Debug level and failed allocations,
// misuse of Release and aborts at Warn level. A nil logger (the
// default) disables logging entirely rather than falling back to a
// no-op logger, so the common case pays nothing.
func (o *Owner) SetLogger(logger *zap.Logger) { o.logger = logger }

func (o *Owner) logDebug(msg string, fields ...zap.Field) {
	if o.logger != nil {
		o.logger.Debug(msg, fields...)
	}
}

func (o *Owner) logWarn(msg string, fields ...zap.Field) {
	if o.logger != nil {
		o.logger.Warn(msg, fields...)
	}
}
