package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log line with its attributes flattened. Attrs
// from Logger.With are included; group names prefix keys with a dot.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordBuffer struct {
	mu      sync.Mutex
	records []LogRecord
	t       *testing.T
}

// BufferedSlogHandler captures records in memory. Handlers derived through
// WithAttrs and WithGroup share the buffer of their parent.
type BufferedSlogHandler struct {
	buf    *recordBuffer
	attrs  []slog.Attr
	prefix string
}

// NewBufferedSlogHandler creates a new buffered handler. When t is non-nil
// every record is echoed with t.Logf.
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{buf: &recordBuffer{t: t}}
}

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})

	h.buf.mu.Lock()
	h.buf.records = append(h.buf.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.buf.mu.Unlock()

	if h.buf.t != nil {
		h.buf.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler; every level is captured.
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &BufferedSlogHandler{buf: h.buf, prefix: h.prefix}
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return next
}

// WithGroup implements slog.Handler
func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BufferedSlogHandler{buf: h.buf, attrs: h.attrs, prefix: h.prefix + name + "."}
}

// GetRecords returns a copy of the captured records.
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	records := make([]LogRecord, len(h.buf.records))
	copy(records, h.buf.records)
	return records
}

// GetRecordsByLevel returns the records logged at exactly level.
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	var filtered []LogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsMessage reports whether any record message contains message.
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	for _, r := range h.GetRecords() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key with exactly value.
// slog stores integers as int64.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.GetRecords() {
		if val, ok := r.Attrs[key]; ok && val == value {
			return true
		}
	}
	return false
}

// Clear removes all captured records
func (h *BufferedSlogHandler) Clear() {
	h.buf.mu.Lock()
	h.buf.records = h.buf.records[:0]
	h.buf.mu.Unlock()
}

// Count returns the number of captured records
func (h *BufferedSlogHandler) Count() int {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	return len(h.buf.records)
}

// NewTestLogger creates a logger with a buffered handler for testing
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}

// AssertLogContains fails t unless a record at level contains message.
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	records := handler.GetRecordsByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("Expected log message not found at level %s: %q", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}

// AssertLogAttr fails t unless some record carries key=expectedValue.
func AssertLogAttr(t *testing.T, handler *BufferedSlogHandler, key string, expectedValue any) {
	t.Helper()

	if !handler.ContainsAttr(key, expectedValue) {
		t.Errorf("Expected log attribute not found: %s=%v", key, expectedValue)
		for _, r := range handler.GetRecords() {
			t.Logf("  - %s: %v", r.Message, r.Attrs)
		}
	}
}

// AssertNoErrors fails t if any error-level record was captured.
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	for _, r := range handler.GetRecordsByLevel(slog.LevelError) {
		t.Errorf("Unexpected error log: %s: %v", r.Message, r.Attrs)
	}
}
