// Package observability defines the logging seam used across the
// module. Callers plug in an adapter for their logger of choice; the
// default is a no-op so library code never forces log output.
package observability

// Field is one structured key/value pair attached to a log record.
type Field struct {
	Key   string
	Value interface{}
}

func F(key string, value interface{}) Field { return Field{Key: key, Value: value} }

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }
