package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err renders nil as null.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error"}
	}
	return Field{Key: "error", Value: err.Error()}
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

// Keys whose values are never written. Session tokens and passwords pass
// through the client and must not end up in a log file.
var redactedKeys = map[string]struct{}{
	"token":         {},
	"password":      {},
	"authorization": {},
	"cookie":        {},
	"client_secret": {},
}

const redacted = "[redacted]"

type sink struct {
	mu  sync.Mutex
	out io.Writer
}

type logfmtLogger struct {
	sink   *sink
	level  Level
	fields []Field
	now    func() time.Time
}

func New(out io.Writer, level Level) Logger {
	if out == nil {
		out = os.Stderr
	}
	return &logfmtLogger{sink: &sink{out: out}, level: level, now: time.Now}
}

// Nop discards everything.
func Nop() Logger {
	return &logfmtLogger{sink: &sink{out: io.Discard}, level: Error + 1, now: time.Now}
}

// OpenFile appends to path, creating it and its directory with owner-only
// permissions.
func OpenFile(path string, level Level) (Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return New(file, level), file, nil
}

func (l *logfmtLogger) Enabled(level Level) bool {
	return l != nil && level >= l.level
}

func (l *logfmtLogger) With(fields ...Field) Logger {
	if l == nil {
		return Nop()
	}
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logfmtLogger{sink: l.sink, level: l.level, fields: merged, now: l.now}
}

func (l *logfmtLogger) Debug(msg string, fields ...Field) { l.write(Debug, msg, fields) }
func (l *logfmtLogger) Info(msg string, fields ...Field)  { l.write(Info, msg, fields) }
func (l *logfmtLogger) Warn(msg string, fields ...Field)  { l.write(Warn, msg, fields) }
func (l *logfmtLogger) Error(msg string, fields ...Field) { l.write(Error, msg, fields) }

func (l *logfmtLogger) write(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}
	var line bytes.Buffer
	appendPair(&line, "ts", l.now().UTC().Format(time.RFC3339Nano))
	appendPair(&line, "level", level.String())
	appendPair(&line, "msg", msg)
	for _, group := range [][]Field{l.fields, fields} {
		for _, field := range group {
			appendPair(&line, field.Key, field.Value)
		}
	}
	line.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = l.sink.out.Write(line.Bytes())
}

func appendPair(buf *bytes.Buffer, key string, value any) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}
	buf.WriteString(key)
	buf.WriteByte('=')
	if _, secret := redactedKeys[strings.ToLower(key)]; secret && value != nil {
		buf.WriteString(redacted)
		return
	}
	buf.WriteString(formatValue(value))
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case []byte:
		return quote(string(v))
	case time.Duration:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return quote(v.String())
	case bool:
		return strconv.FormatBool(v)
	case int, int64, int32, uint, uint64, uint32, float64, float32:
		return fmt.Sprint(v)
	default:
		return quote(fmt.Sprintf("%v", v))
	}
}

func quote(value string) string {
	if value == "" {
		return `""`
	}
	if strings.ContainsAny(value, " \t\n\r\"=") {
		return strconv.Quote(value)
	}
	return value
}

// NewRequestID returns a sortable id sent as X-Request-ID and logged with
// every API call.
func NewRequestID() string {
	return xid.New().String()
}
