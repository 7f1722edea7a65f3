package core

// Logger is the application wide logging facade.
// args may contain errors, maps of extra data and, for reporting purposes, the acting user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
