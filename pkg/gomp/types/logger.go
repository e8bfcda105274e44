package types

// Logger is the logging surface the runtime depends on. Matches the shape
// the teacher repo's definition.Logger exposed, so any structured logger
// (logrus, zap, a test spy) can back it.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	ToggleDebug(value bool) bool
}
