package logging

// Field represents a log field
type Field interface {
	Apply(entry *LogEntry)
}

// StringField represents a string field
type StringField struct {
	Key   string
	Value string
}

// Apply applies the field to a log entry
func (f StringField) Apply(entry *LogEntry) {
	entry.Fields[f.Key] = f.Value
}

// IntField represents an integer field
type IntField struct {
	Key   string
	Value int
}

// Apply applies the field to a log entry
func (f IntField) Apply(entry *LogEntry) {
	entry.Fields[f.Key] = f.Value
}

// FloatField represents a float field
type FloatField struct {
	Key   string
	Value float64
}

// Apply applies the field to a log entry
func (f FloatField) Apply(entry *LogEntry) {
	entry.Fields[f.Key] = f.Value
}

// BoolField represents a boolean field
type BoolField struct {
	Key   string
	Value bool
}

// Apply applies the field to a log entry
func (f BoolField) Apply(entry *LogEntry) {
	entry.Fields[f.Key] = f.Value
}

// ErrorField represents an error field
type ErrorField struct {
	Err error
}

// Apply applies the field to a log entry
func (f ErrorField) Apply(entry *LogEntry) {
	entry.Error = f.Err.Error()
}

// ComponentField represents a component field
type ComponentField struct {
	Component string
}

// Apply applies the field to a log entry
func (f ComponentField) Apply(entry *LogEntry) {
	entry.Component = f.Component
}

// RequestIDField represents a request ID field
type RequestIDField struct {
	RequestID string
}

// Apply applies the field to a log entry
func (f RequestIDField) Apply(entry *LogEntry) {
	entry.RequestID = f.RequestID
}

// Field constructors

// String creates a string field
func String(key, value string) Field {
	return StringField{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return IntField{Key: key, Value: value}
}

// Float creates a float field
func Float(key string, value float64) Field {
	return FloatField{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return BoolField{Key: key, Value: value}
}

// Error creates an error field
func Error(err error) Field {
	return ErrorField{Err: err}
}

// Component creates a component field
func Component(component string) Field {
	return ComponentField{Component: component}
}

// RequestID creates a request ID field
func RequestID(requestID string) Field {
	return RequestIDField{RequestID: requestID}
}

// FieldLogger provides field-aware logging
type FieldLogger struct {
	logger *Logger
	fields []Field
}

// Debug logs a debug message with fields
func (fl *FieldLogger) Debug(msg string, fields ...Field) {
	allFields := append(fl.fields, fields...)
	fl.logger.Debug(msg, allFields...)
}

// Info logs an info message with fields
func (fl *FieldLogger) Info(msg string, fields ...Field) {
	allFields := append(fl.fields, fields...)
	fl.logger.Info(msg, allFields...)
}

// Warn logs a warning message with fields
func (fl *FieldLogger) Warn(msg string, fields ...Field) {
	allFields := append(fl.fields, fields...)
	fl.logger.Warn(msg, allFields...)
}

// Error logs an error message with fields
func (fl *FieldLogger) Error(msg string, err error, fields ...Field) {
	allFields := append(fl.fields, fields...)
	fl.logger.Error(msg, err, allFields...)
}
