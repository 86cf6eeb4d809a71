package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"time"
)

// ErrorObject represents the error format.
type ErrorObject struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack"`
}

// LogEntry represents the structured log format.
type LogEntry struct {
	Timestamp     string       `json:"timestamp"`
	Level         string       `json:"level"`
	Service       string       `json:"service"`
	Action        string       `json:"action"`
	Message       string       `json:"message"`
	Hostname      string       `json:"hostname"`
	CorrelationID string       `json:"correlation_id"`
	Error         *ErrorObject `json:"error,omitempty"`
	Details       any          `json:"details,omitempty"`
}

// Logger is a structured JSON logger writing one entry per line to stdout.
// The correlation id is carried in the context and stamped on every entry,
// which is what ties a log line to its HTTP request and published event.
type Logger struct {
	service  string
	hostname string
}

// NewLogger creates a new structured logger for the named service.
func NewLogger(service string) *Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &Logger{
		service:  service,
		hostname: hostname,
	}
}

type ctxKey string

const correlationIDKey ctxKey = "correlation_id"

// WithCorrelationID returns a context carrying the correlation id.
func (logger *Logger) WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFrom returns the correlation id saved in the context, or "".
func CorrelationIDFrom(ctx context.Context) string {
	if v := ctx.Value(correlationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// emit marshals the provided log entry.
func (logger *Logger) emit(entry LogEntry) {
	b, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log marshal failed: %v\n", err)
		return
	}
	fmt.Println(string(b))
}

// -- Logger helper functions --

func (logger *Logger) Info(ctx context.Context, action, msg string, details any) {
	logger.emit(LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Level:         "INFO",
		Service:       logger.service,
		Action:        action,
		Message:       msg,
		Hostname:      logger.hostname,
		CorrelationID: CorrelationIDFrom(ctx),
		Details:       details,
	})
}

func (logger *Logger) Debug(ctx context.Context, action, msg string, details any) {
	logger.emit(LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Level:         "DEBUG",
		Service:       logger.service,
		Action:        action,
		Message:       msg,
		Hostname:      logger.hostname,
		CorrelationID: CorrelationIDFrom(ctx),
		Details:       details,
	})
}

func (logger *Logger) Error(ctx context.Context, action, msg string, err error) {
	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Level:         "ERROR",
		Service:       logger.service,
		Action:        action,
		Message:       msg,
		Hostname:      logger.hostname,
		CorrelationID: CorrelationIDFrom(ctx),
	}
	if err != nil {
		entry.Error = &ErrorObject{
			Msg:   err.Error(),
			Stack: string(debug.Stack()),
		}
	}
	logger.emit(entry)
}
