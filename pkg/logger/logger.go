package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// Level represents the severity of a log message
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

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

// ParseLevel converts a config string into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", level)
	}
}

type Logger struct {
	level  Level
	logger *log.Logger
	fields map[string]interface{}
}

type Config struct {
	Level  Level
	Output io.Writer
}

func New() *Logger {
	return NewWithConfig(Config{Level: INFO, Output: os.Stdout})
}

func NewWithConfig(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	return &Logger{
		level: config.Level,
		// no prefix/flags, lines are formatted here
		logger: log.New(config.Output, "", 0),
		fields: make(map[string]interface{}),
	}
}

// WithFields returns a child logger carrying additional context fields.
// Arguments are alternating key/value pairs.
func (l *Logger) WithFields(keyVals ...interface{}) *Logger {
	child := &Logger{
		level:  l.level,
		logger: l.logger,
		fields: make(map[string]interface{}, len(l.fields)+len(keyVals)/2),
	}

	for k, v := range l.fields {
		child.fields[k] = v
	}

	for i := 0; i+1 < len(keyVals); i += 2 {
		child.fields[fmt.Sprintf("%v", keyVals[i])] = keyVals[i+1]
	}

	return child
}

// WithField returns a child logger with a single additional context field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(key, value)
}

func (l *Logger) Debug(msg string, keyVals ...interface{}) {
	l.log(DEBUG, msg, keyVals...)
}

func (l *Logger) Info(msg string, keyVals ...interface{}) {
	l.log(INFO, msg, keyVals...)
}

func (l *Logger) Warn(msg string, keyVals ...interface{}) {
	l.log(WARN, msg, keyVals...)
}

func (l *Logger) Error(msg string, keyVals ...interface{}) {
	l.log(ERROR, msg, keyVals...)
}

func (l *Logger) Fatal(msg string, keyVals ...interface{}) {
	l.log(ERROR, msg, keyVals...)
	os.Exit(1)
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) log(level Level, msg string, keyVals ...interface{}) {
	if level < l.level {
		return
	}

	all := make(map[string]interface{}, len(l.fields)+len(keyVals)/2)
	for k, v := range l.fields {
		all[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		all[fmt.Sprintf("%v", keyVals[i])] = keyVals[i+1]
	}

	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", timestamp, level, msg)

	if len(all) > 0 {
		// sorted for stable output
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, formatValue(all[k]))
		}
	}

	l.logger.Print(b.String())
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, " ") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case error:
		return fmt.Sprintf("%q", v.Error())
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// package-level default logger
var defaultLogger = New()

func Debug(msg string, keyVals ...interface{}) {
	defaultLogger.Debug(msg, keyVals...)
}

func Info(msg string, keyVals ...interface{}) {
	defaultLogger.Info(msg, keyVals...)
}

func Warn(msg string, keyVals ...interface{}) {
	defaultLogger.Warn(msg, keyVals...)
}

func Error(msg string, keyVals ...interface{}) {
	defaultLogger.Error(msg, keyVals...)
}

func Fatal(msg string, keyVals ...interface{}) {
	defaultLogger.Fatal(msg, keyVals...)
}

func WithFields(keyVals ...interface{}) *Logger {
	return defaultLogger.WithFields(keyVals...)
}

func WithField(key string, value interface{}) *Logger {
	return defaultLogger.WithField(key, value)
}

func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}
