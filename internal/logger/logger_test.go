package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{"info", INFO},
		{"", INFO},
		{"warn", WARN},
		{"Warning", WARN},
		{"error", ERROR},
		{" ERROR ", ERROR},
		{"verbose", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "warn", Component: "test"})
	l.SetOutput(buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below WARN should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "WARN [test] warn message") {
		t.Errorf("WARN message missing, got: %s", output)
	}
	if !strings.Contains(output, "ERROR [test] error message") {
		t.Errorf("ERROR message missing, got: %s", output)
	}
}

func TestLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Component: "amadeus"})
	l.SetOutput(buf)
	l.sink.now = func() time.Time { return time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC) }

	l.Info("found %d offers", 3)

	want := "2025-12-01 09:30:00 INFO [amadeus] found 3 offers\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWithRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "debug", Component: "booking"})
	l.SetOutput(buf)

	l.WithRequestID("req-12345").Info("handling request")

	output := buf.String()
	if !strings.Contains(output, "[booking] [req-12345] handling request") {
		t.Errorf("output should contain component and request id, got: %s", output)
	}
}

func TestDerivedLoggersShareLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	root := New(&Config{Level: "error", Component: "main"})
	root.SetOutput(buf)
	child := root.WithComponent("parser")

	child.Info("hidden")
	if buf.Len() > 0 {
		t.Fatal("INFO should be filtered at ERROR level")
	}

	root.SetLevel(INFO)
	child.Info("visible")
	if !strings.Contains(buf.String(), "[parser] visible") {
		t.Errorf("child should follow the root level, got: %s", buf.String())
	}
}

func TestComponentUsesDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "debug"})
	l.SetOutput(buf)
	prev := GetDefaultLogger()
	SetDefaultLogger(l)
	defer SetDefaultLogger(prev)

	Component("sandbox").Debug("up")

	if !strings.Contains(buf.String(), "DEBUG [sandbox] up") {
		t.Errorf("got: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.GetLevel() != ERROR {
		t.Errorf("Discard level = %v, want ERROR", l.GetLevel())
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	fallback := New(&Config{Level: "info", Component: "fallback"})
	fallback.SetOutput(buf)

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("empty context should return the fallback")
	}

	reqLog := fallback.WithComponent("booking").WithRequestID("req-42")
	ctx := NewContext(context.Background(), reqLog)
	FromContext(ctx, fallback).WithComponent("amadeus").Info("search done")

	out := buf.String()
	if !strings.Contains(out, "[amadeus] [req-42] search done") {
		t.Errorf("request id should follow the context, got %q", out)
	}
}
