package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"sales-dashboard/internal/config"
)

func TestStartSpan_Nesting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "render")
	_, child := StartSpan(ctx, "render.filter")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace id = %q, want %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent id = %q, want %q", child.ParentID, parent.SpanID)
	}
	if GetSpan(ctx) != parent {
		t.Error("GetSpan() should return the span stored in the context")
	}
}

func TestSpan_End(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "debug", Format: "json"})

	ctx, span := StartSpan(context.Background(), "render.aggregate")
	span.SetTag("records", "3")
	span.SetError(errors.New("boom"))
	span.End(ctx, logger)

	if span.Duration == nil || span.EndTime == nil {
		t.Fatal("End() should finish the span")
	}

	out := buf.String()
	for _, want := range []string{`"operation":"render.aggregate"`, `"records":"3"`, `"status":"ERROR"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s should contain %s", out, want)
		}
	}
}

func TestLoggerFrom(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "info", Format: "text"})

	ctx := WithSessionID(WithRequestID(context.Background(), "req-1"), "sess-1")
	LoggerFrom(ctx, logger).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-1") || !strings.Contains(out, "session_id=sess-1") {
		t.Errorf("log output %q should carry request and session ids", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
