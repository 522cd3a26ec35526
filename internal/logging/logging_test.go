package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesLogfmtWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Debug).With(F("component", "api"))
	logger.Info("request done", F("path", "/api/notes"), F("status", 200), F("duration", 15*time.Millisecond))

	line := buf.String()
	for _, want := range []string{"level=info", `msg="request done"`, "component=api", "path=/api/notes", "status=200", "duration=15ms"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected a single line, got %q", line)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Warn)
	logger.Info("hidden")
	logger.Error("shown", Err(errors.New("boom")))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be filtered: %q", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Fatalf("expected error field: %q", out)
	}
	if logger.Enabled(Debug) || !logger.Enabled(Error) {
		t.Fatalf("unexpected level gating")
	}
}

func TestLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Debug).With(F("Token", "abc.def.ghi"))
	logger.Info("signed in", F("password", "secret1"), F("user", "ana"))

	out := buf.String()
	if strings.Contains(out, "abc.def.ghi") || strings.Contains(out, "secret1") {
		t.Fatalf("expected credentials redacted: %q", out)
	}
	if !strings.Contains(out, "Token=[redacted]") || !strings.Contains(out, "user=ana") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, Debug)
	_ = parent.With(F("component", "session"))
	parent.Info("plain")

	if strings.Contains(buf.String(), "component") {
		t.Fatalf("expected parent fields untouched: %q", buf.String())
	}
}

func TestNopIsSilent(t *testing.T) {
	logger := Nop()
	if logger.Enabled(Error) {
		t.Fatalf("expected nop logger to be disabled")
	}
	logger.Error("ignored")
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ui.log")
	for i := 0; i < 2; i++ {
		logger, closer, err := OpenFile(path, Info)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		logger.Info("started")
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Count(string(data), "msg=started"); got != 2 {
		t.Fatalf("expected two appended lines, got %d", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": Debug, " WARN ": Warn, "warning": Warn, "error": Error, "": Info, "bogus": Info}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == "" || a == b {
		t.Fatalf("expected distinct ids, got %q and %q", a, b)
	}
}
