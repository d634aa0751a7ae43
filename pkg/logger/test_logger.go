package logger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// TestLogger captures every message logged through it and any logger derived
// from it with WithField, WithFields or WithError.
type TestLogger struct {
	scope *scopedLogger
}

type captureSink struct {
	mu       sync.Mutex
	messages []LogMessage
	buffer   bytes.Buffer
	zerolog  zerolog.Logger
}

// scopedLogger carries the fields and error attached by the With* methods.
type scopedLogger struct {
	sink   *captureSink
	fields map[string]interface{}
	err    error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	sink := &captureSink{zerolog: zerolog.Nop()}
	return &TestLogger{scope: &scopedLogger{sink: sink}}
}

func (l *TestLogger) Debug(msg string) { l.scope.Debug(msg) }
func (l *TestLogger) Info(msg string)  { l.scope.Info(msg) }
func (l *TestLogger) Warn(msg string)  { l.scope.Warn(msg) }
func (l *TestLogger) Error(msg string) { l.scope.Error(msg) }
func (l *TestLogger) Fatal(msg string) { l.scope.Fatal(msg) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.scope.DebugWithFields(msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.scope.InfoWithFields(msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.scope.WarnWithFields(msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.scope.ErrorWithFields(msg, fields)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.scope.FatalWithFields(msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.scope.WithField(key, value)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.scope.WithFields(fields)
}

func (l *TestLogger) WithError(err error) Logger           { return l.scope.WithError(err) }
func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }
func (l *TestLogger) GetZerolog() *zerolog.Logger            { return &l.scope.sink.zerolog }

// GetMessages returns a copy of all captured log messages
func (l *TestLogger) GetMessages() []LogMessage {
	s := l.scope.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]LogMessage, len(s.messages))
	copy(messages, s.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.GetMessages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// FindMessage returns the first message with exactly the given text
func (l *TestLogger) FindMessage(text string) (LogMessage, bool) {
	for _, msg := range l.GetMessages() {
		if msg.Message == text {
			return msg, true
		}
	}
	return LogMessage{}, false
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	_, ok := l.FindMessage(text)
	return ok
}

// HasError checks if an error was logged
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear clears all captured messages
func (l *TestLogger) Clear() {
	s := l.scope.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = s.messages[:0]
	s.buffer.Reset()
}

// String returns all log messages, one per line
func (l *TestLogger) String() string {
	s := l.scope.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.String()
}

func (s *scopedLogger) log(level, msg string, extra map[string]interface{}) {
	fields := s.merge(extra)

	s.sink.mu.Lock()
	defer s.sink.mu.Unlock()

	s.sink.messages = append(s.sink.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   s.err,
	})

	var line strings.Builder
	fmt.Fprintf(&line, "[%s] %s", level, msg)
	if len(fields) > 0 {
		fmt.Fprintf(&line, " fields=%v", fields)
	}
	if s.err != nil {
		fmt.Fprintf(&line, " error=%v", s.err)
	}
	s.sink.buffer.WriteString(line.String() + "\n")
}

func (s *scopedLogger) merge(extra map[string]interface{}) map[string]interface{} {
	if len(s.fields) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(s.fields)+len(extra))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (s *scopedLogger) Debug(msg string) { s.log("DEBUG", msg, nil) }
func (s *scopedLogger) Info(msg string)  { s.log("INFO", msg, nil) }
func (s *scopedLogger) Warn(msg string)  { s.log("WARN", msg, nil) }
func (s *scopedLogger) Error(msg string) { s.log("ERROR", msg, nil) }
func (s *scopedLogger) Fatal(msg string) { s.log("FATAL", msg, nil) }

func (s *scopedLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	s.log("DEBUG", msg, fields)
}

func (s *scopedLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	s.log("INFO", msg, fields)
}

func (s *scopedLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	s.log("WARN", msg, fields)
}

func (s *scopedLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	s.log("ERROR", msg, fields)
}

func (s *scopedLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	s.log("FATAL", msg, fields)
}

func (s *scopedLogger) WithField(key string, value interface{}) Logger {
	return s.WithFields(map[string]interface{}{key: value})
}

func (s *scopedLogger) WithFields(fields map[string]interface{}) Logger {
	return &scopedLogger{sink: s.sink, fields: s.merge(fields), err: s.err}
}

func (s *scopedLogger) WithError(err error) Logger {
	return &scopedLogger{sink: s.sink, fields: s.fields, err: err}
}

func (s *scopedLogger) WithContext(ctx context.Context) Logger { return s }
func (s *scopedLogger) GetZerolog() *zerolog.Logger            { return &s.sink.zerolog }
