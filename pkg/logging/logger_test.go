package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"default info", "", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
		})
	}
}

func TestWithSession(t *testing.T) {
	logger := Default()
	scoped := logger.WithSession("+5511999999999")
	if scoped == nil || scoped.Logger == nil {
		t.Fatal("WithSession returned nil logger")
	}
	if scoped == logger {
		t.Error("WithSession should return a new instance")
	}
	// Must be usable without panicking.
	scoped.Info("test message", "key", "value")
}
