package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/retana1885/Canave.ia/config"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		name    string
		level   string
		debugOn bool
	}{
		{"debug level", "debug", true},
		{"info level", "info", false},
		{"unknown level falls back to info", "loud", false},
		{"empty level falls back to info", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := NewLogger(config.LoggingConfig{Level: tc.level, ServiceName: "canave-ia"})
			if err != nil {
				t.Fatalf("new logger: %v", err)
			}
			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debugOn {
				t.Fatalf("debug enabled: got %v want %v", got, tc.debugOn)
			}
		})
	}
}

func TestNewLoggerEncodings(t *testing.T) {
	for _, encoding := range []string{"console", "json", "yaml", ""} {
		if _, err := NewLogger(config.LoggingConfig{Encoding: encoding}); err != nil {
			t.Fatalf("encoding %q: %v", encoding, err)
		}
	}
}
