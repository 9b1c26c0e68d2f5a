package core

// Logger is the application-wide logging service.
// Implementations may forward entries to an external error tracker;
// a user.User passed as an extra arg identifies the affected account.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
