package core

// Logger is any leveled logger the app can report to.
// args may carry anything printable; implementations may special-case
// known types (errors, logged-in users) for richer reporting.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
