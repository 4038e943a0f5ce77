package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
}

func TestLoggerWritesFieldsAndRequestID(t *testing.T) {
	SetLevel(0) // info
	var buf bytes.Buffer
	log := New(WithWriter(&buf), WithoutSource())

	ctx := WithRequestID(context.Background(), "req-42")
	log.Info(ctx, "application evaluated", String("id", "a-1"), Float64("composite", 71.5), Error(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"application evaluated", "id=a-1", "composite=71.5", "error=boom", "request_id=req-42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "source=") {
		t.Errorf("source should be omitted: %q", out)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf))

	if err := SetLevelString("warn"); err != nil {
		t.Fatal(err)
	}
	defer SetLevel(0)

	log.Info(context.Background(), "dropped")
	log.Warn(context.Background(), "kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "source=pkg/logger/logger_test.go") && !strings.Contains(out, "logger_test.go") {
		t.Errorf("source should point at the test: %q", out)
	}
}

func TestLoggerJSONNamed(t *testing.T) {
	SetLevel(0)
	var buf bytes.Buffer
	log := New(WithWriter(&buf), WithJSON(), WithoutSource()).Named("worker")

	log.Error(context.Background(), "failed", Int("attempt", 2))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	group, ok := line["worker"].(map[string]any)
	if !ok || group["attempt"] != float64(2) {
		t.Errorf("expected attempt under worker group, got %v", line)
	}
}

func TestSetLevelStringRejectsUnknown(t *testing.T) {
	if err := SetLevelString("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNopLogger(t *testing.T) {
	Nop().Named("x").Info(context.Background(), "nothing")
}
