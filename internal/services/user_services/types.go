package user_services

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// mask keeps the first few characters of an identifier for log lines.
func mask(s string) string {
	return s[:min(4, len(s))] + "****"
}
