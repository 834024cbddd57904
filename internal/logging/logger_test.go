package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")
	logger.Info("hello", "kind", "products")

	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Fatalf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"kind":"products"`) {
		t.Errorf("missing structured field in %q", out)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn entry should be written")
	}
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	FromContext(ctx).Info("with id")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("expected request_id in %q", buf.String())
	}
}

func TestWith_AccumulatesFields(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	ctx := With(context.Background(), "import_id", "abc")
	inner := With(ctx, "kind", "sales")
	FromContext(inner).Info("forwarded")
	FromContext(ctx).Info("outer")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "import_id=abc") || !strings.Contains(lines[0], "kind=sales") {
		t.Errorf("inner entry missing fields: %q", lines[0])
	}
	if strings.Contains(lines[1], "kind=sales") {
		t.Errorf("outer context picked up inner field: %q", lines[1])
	}
}

func TestWith_NoArgs(t *testing.T) {
	ctx := context.Background()
	if With(ctx) != ctx {
		t.Error("With without fields should return ctx unchanged")
	}
}

func TestSetup_InstallsDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := Setup(&buf, "debug", "json")
	if slog.Default() != logger {
		t.Fatal("Setup should install the returned logger as default")
	}
	slog.Debug("visible")
	if !strings.Contains(buf.String(), `"msg":"visible"`) {
		t.Errorf("debug entry missing from %q", buf.String())
	}
}
