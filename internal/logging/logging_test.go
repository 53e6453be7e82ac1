package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"loanlocator/internal/core"
)

var _ core.Logger = (*Logger)(nil)

func TestNewParsesLevelAndFormat(t *testing.T) {
	cases := []struct {
		cfg     Config
		enabled zapcore.Level
		wantErr bool
	}{
		{cfg: Config{Level: "info", Format: "json"}, enabled: zapcore.InfoLevel},
		{cfg: Config{Level: "DEBUG", Format: "console"}, enabled: zapcore.DebugLevel},
		{cfg: Config{Level: "warn"}, enabled: zapcore.WarnLevel},
		{cfg: Config{Level: "loud"}, wantErr: true},
		{cfg: Config{Level: "info", Format: "xml"}, wantErr: true},
	}
	for _, tc := range cases {
		logger, err := New(tc.cfg)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%+v: expected error", tc.cfg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%+v: %v", tc.cfg, err)
		}
		if !logger.Core().Enabled(tc.enabled) {
			t.Fatalf("%+v: level %s should be enabled", tc.cfg, tc.enabled)
		}
		if tc.enabled > zapcore.DebugLevel && logger.Core().Enabled(tc.enabled-1) {
			t.Fatalf("%+v: level below %s should be disabled", tc.cfg, tc.enabled)
		}
	}
}

func TestLoggerWritesKeyValues(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := NewLogger(zap.New(obsCore)).Named("core")

	logger.Debug("d")
	logger.Info("mutation applied", "operation", "create_loan", "count", 1)
	logger.Warn("w")
	logger.Error("e", "error", "boom")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	info := entries[1]
	if info.LoggerName != "core" || info.Message != "mutation applied" {
		t.Fatalf("unexpected entry %+v", info.Entry)
	}
	fields := info.ContextMap()
	if fields["operation"] != "create_loan" || fields["count"] != int64(1) {
		t.Fatalf("unexpected fields %v", fields)
	}
	if entries[3].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[3].Level)
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	NewLogger(nil).Info("ignored", "k", "v")
}
