package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// sink is shared by every logger derived from the same root so level and
// output changes apply to all of them
type sink struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	now    func() time.Time
}

// Logger writes leveled lines tagged with a component and optional request id
type Logger struct {
	sink      *sink
	component string
	requestID string
}

// Config holds logger configuration
type Config struct {
	Level     string `yaml:"level"` // debug, info, warn, error
	Component string `yaml:"-"`
}

var (
	defaultLogger = New(&Config{Level: "info", Component: "flightpulse"})
	defaultMu     sync.RWMutex
)

// New creates a new logger writing to stderr
func New(cfg *Config) *Logger {
	component := cfg.Component
	if component == "" {
		component = "flightpulse"
	}
	return &Logger{
		sink: &sink{
			level:  ParseLevel(cfg.Level),
			output: os.Stderr,
			now:    time.Now,
		},
		component: component,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	l := New(&Config{Level: "error"})
	l.SetOutput(io.Discard)
	return l
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// SetLevel sets the minimum logging level
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// WithComponent returns a logger sharing this one's output under another component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sink: l.sink, component: component, requestID: l.requestID}
}

// WithRequestID returns a logger that tags every line with requestID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{sink: l.sink, component: l.component, requestID: requestID}
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	var b strings.Builder
	b.WriteString(l.sink.now().Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteString(" [")
	b.WriteString(l.component)
	b.WriteByte(']')
	if l.requestID != "" {
		b.WriteString(" [")
		b.WriteString(l.requestID)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf(format, args...))
	b.WriteByte('\n')
	l.sink.output.Write([]byte(b.String()))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.log(DEBUG, format, args...) }

// Info logs an info message
func (l *Logger) Info(format string, args ...any) { l.log(INFO, format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) { l.log(WARN, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.log(ERROR, format, args...) }

// SetDefaultLogger sets the package-level default logger
func SetDefaultLogger(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// GetDefaultLogger returns the package-level default logger
func GetDefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Component returns a child of the default logger for the named component
func Component(name string) *Logger {
	return GetDefaultLogger().WithComponent(name)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l, so code deeper in the call
// chain logs with the same request id
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or fallback
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return fallback
}
