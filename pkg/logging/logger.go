package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Config controls logger behavior. Output "file" or "both" enables a
// date-stamped rotating log file next to the configured path.
type Config struct {
	Level         string `yaml:"level" json:"level"`
	Format        string `yaml:"format" json:"format"` // "text" or "json"
	Output        string `yaml:"output" json:"output"` // "stdout", "file" or "both"
	FilePath      string `yaml:"file_path" json:"file_path"`
	MaxAgeDays    int    `yaml:"max_age_days" json:"max_age_days"`
	RotationHours int    `yaml:"rotation_hours" json:"rotation_hours"`
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Service   string         `json:"service,omitempty"`
	Component string         `json:"component,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Error     string         `json:"error,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	File      string         `json:"file,omitempty"`
	Line      int            `json:"line,omitempty"`
}

// Logger provides structured logging capabilities
type Logger struct {
	level      LogLevel
	format     string // "json" or "text"
	output     io.Writer
	fileWriter io.Closer
	mu         sync.RWMutex
	service    string
}

// NewLogger creates a new logger instance
func NewLogger() *Logger {
	return &Logger{
		level:   INFO,
		format:  "text",
		output:  os.Stdout,
		service: "house-price-mlops",
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormat sets the logging format ("json" or "text")
func (l *Logger) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = strings.ToLower(format)
}

// SetOutput sets the logging output destination
func (l *Logger) SetOutput(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = output
}

// SetService sets the service name for logging
func (l *Logger) SetService(service string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.service = service
}

// SetFileOutput routes log output to a rotating file. Files are suffixed
// with the date, rotated every rotation interval and pruned after maxAge;
// the bare path is kept as a symlink to the active file. When alsoStdout
// is true entries are written to both destinations.
func (l *Logger) SetFileOutput(filePath string, maxAge, rotation time.Duration, alsoStdout bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	if l.fileWriter != nil {
		l.fileWriter.Close()
	}

	writer, err := rotatelogs.New(
		filePath+"-%Y%m%d",
		rotatelogs.WithLinkName(filePath),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotation),
	)
	if err != nil {
		return fmt.Errorf("failed to open rotating log file: %w", err)
	}

	l.fileWriter = writer
	if alsoStdout {
		l.output = io.MultiWriter(os.Stdout, writer)
	} else {
		l.output = writer
	}

	return nil
}

// Close releases the file writer, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileWriter != nil {
		err := l.fileWriter.Close()
		l.fileWriter = nil
		return err
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields...)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields...)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Error(err))
	}
	l.log(ERROR, msg, fields...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Error(err))
	}
	l.log(FATAL, msg, fields...)
	os.Exit(1)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields ...Field) *FieldLogger {
	return &FieldLogger{
		logger: l,
		fields: fields,
	}
}

// log performs the actual logging
func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	l.mu.RLock()
	if level < l.level {
		l.mu.RUnlock()
		return
	}
	l.mu.RUnlock()

	entry := l.createLogEntry(level, msg, fields...)

	var output string
	if l.format == "json" {
		if jsonBytes, err := json.Marshal(entry); err == nil {
			output = string(jsonBytes)
		} else {
			output = fmt.Sprintf("Failed to marshal log entry: %v", err)
		}
	} else {
		output = l.formatTextEntry(entry)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	fmt.Fprintln(l.output, output)
}

// createLogEntry creates a structured log entry
func (l *Logger) createLogEntry(level LogLevel, msg string, fields ...Field) *LogEntry {
	entry := &LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Service:   l.service,
		Fields:    make(map[string]any),
	}

	// Add caller information
	if _, file, line, ok := runtime.Caller(3); ok {
		entry.File = filepath.Base(file)
		entry.Line = line
	}

	// Process fields
	for _, field := range fields {
		field.Apply(entry)
	}

	return entry
}

// formatTextEntry formats a log entry as text
func (l *Logger) formatTextEntry(entry *LogEntry) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%s [%s] %s",
		entry.Timestamp,
		entry.Level,
		entry.Message))

	if entry.Component != "" {
		builder.WriteString(fmt.Sprintf(" component=%s", entry.Component))
	}

	if entry.RequestID != "" {
		builder.WriteString(fmt.Sprintf(" request_id=%s", entry.RequestID))
	}

	if entry.Error != "" {
		builder.WriteString(fmt.Sprintf(" error=%s", entry.Error))
	}

	for key, value := range entry.Fields {
		if str, ok := value.(string); ok {
			builder.WriteString(fmt.Sprintf(" %s=%s", key, str))
		} else {
			builder.WriteString(fmt.Sprintf(" %s=%v", key, value))
		}
	}

	if entry.File != "" && entry.Line != 0 {
		builder.WriteString(fmt.Sprintf(" (%s:%d)", entry.File, entry.Line))
	}

	return builder.String()
}

// Global logger instance
var globalLogger *Logger
var loggerOnce sync.Once

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		globalLogger = NewLogger()
	})
	return globalLogger
}

// InitLogger initializes the global logger with configuration
func InitLogger(config Config) error {
	logger := GetLogger()

	switch strings.ToLower(config.Level) {
	case "debug":
		logger.SetLevel(DEBUG)
	case "info":
		logger.SetLevel(INFO)
	case "warn":
		logger.SetLevel(WARN)
	case "error":
		logger.SetLevel(ERROR)
	case "fatal":
		logger.SetLevel(FATAL)
	default:
		logger.SetLevel(INFO)
	}

	logger.SetFormat(config.Format)

	maxAge := time.Duration(config.MaxAgeDays) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	rotation := time.Duration(config.RotationHours) * time.Hour
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}

	switch strings.ToLower(config.Output) {
	case "file":
		if err := logger.SetFileOutput(config.FilePath, maxAge, rotation, false); err != nil {
			return fmt.Errorf("failed to set file output: %w", err)
		}
	case "both":
		if err := logger.SetFileOutput(config.FilePath, maxAge, rotation, true); err != nil {
			return fmt.Errorf("failed to set file output: %w", err)
		}
	default:
		logger.SetOutput(os.Stdout)
	}

	return nil
}
