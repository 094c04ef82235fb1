package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerEnvironments(t *testing.T) {
	for _, env := range []string{"local", "dev", "docker", "prod", "staging"} {
		l, err := NewLogger(env, "")
		if err != nil {
			t.Errorf("NewLogger(%q): %v", env, err)
			continue
		}
		l.Sync()
	}
}

func TestNewLoggerLevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled after override")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext did not return the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext must never return nil")
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewNop()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("fallback not used for an empty context")
	}

	stored := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), stored)
	if FromContextOr(ctx, fallback) != stored {
		t.Error("stored logger not preferred over fallback")
	}
	if FromContextOr(context.Background(), nil) == nil {
		t.Error("FromContextOr must never return nil")
	}
}
