package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{level: "debug", want: zapcore.DebugLevel},
		{level: "", want: zapcore.InfoLevel},
		{level: " WARN ", want: zapcore.WarnLevel},
		{level: "warning", want: zapcore.WarnLevel},
		{level: "error", want: zapcore.ErrorLevel},
		{level: "verbose", want: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			if err != nil {
				t.Fatalf("unexpected logger error: %v", err)
			}
			if !logger.Core().Enabled(tt.want) {
				t.Fatalf("expected %s to be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Fatalf("expected %s to be disabled", tt.want-1)
			}
		})
	}
}

func TestParseLevelReportsUnknownNames(t *testing.T) {
	if _, known := ParseLevel("verbose"); known {
		t.Fatalf("expected verbose to be unknown")
	}
	if level, known := ParseLevel("Debug"); !known || level != zapcore.DebugLevel {
		t.Fatalf("expected debug, got %s known=%v", level, known)
	}
}
