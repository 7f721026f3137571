package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "session cache miss", "sid", "abc")
	log.Info(ctx, "candidate registered", "application_id", "103151")
	log.Warn(ctx, "password reset leaves old ciphertext unreadable", "application_id", "103151")
	log.Error(ctx, "session insert failed", "error", "unreachable")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=\"session cache miss\"", "sid=abc",
		"level=INFO", "msg=\"candidate registered\"", "application_id=103151",
		"level=WARN",
		"level=ERROR", "error=unreachable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_WithCarriesAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("component", "portfolio", "candidate_id", 7)
	child.Info(context.Background(), "archive uploaded", "size", 1024)

	out := buf.String()
	for _, want := range []string{"component=portfolio", "candidate_id=7", "size=1024", "msg=\"archive uploaded\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	// the parent logger is unchanged
	buf.Reset()
	log.Info(context.Background(), "plain")
	if strings.Contains(buf.String(), "component=portfolio") {
		t.Fatal("With must not mutate the parent logger")
	}
}
