package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("missing keys").Build(), 2},
		{"conflict", ConflictError("output-directory").Build(), 3},
		{"structure", NewError(CategoryStructure, "cycle").Build(), 3},
		{"config", ConfigError("bad yaml").Build(), 7},
		{"publish", PublishError("nats down").Build(), 8},
		{"storage", StorageError("locked").Build(), 11},
		{"unclassified", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())
	internal := InternalError("nil plan").Build()

	if got := quiet.FormatError(internal); !strings.Contains(got, "use -v") {
		t.Errorf("expected terse internal message, got %q", got)
	}
	if got := verbose.FormatError(internal); !strings.Contains(got, "nil plan") {
		t.Errorf("expected detailed internal message, got %q", got)
	}
	if got := quiet.FormatError(ConflictError("conflict on key").Build()); !strings.Contains(got, "conflict on key") {
		t.Errorf("user-facing errors are shown in full, got %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.WithOutput(&out)

	code := adapter.HandleError(ConfigError("unreadable").WithContext("path", "a.yaml").Build())

	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(out.String(), "unreadable") {
		t.Errorf("expected message on output, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "path=a.yaml") {
		t.Errorf("expected context in log line, got %q", logs.String())
	}
}
