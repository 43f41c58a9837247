package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/samvad-hq/referral-client/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(&config.Config{LogLevel: in}); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if got := parseLevel(nil); got != zapcore.InfoLevel {
		t.Fatalf("nil config level = %v", got)
	}
}

func TestWriterLoggerEmitsObjectField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, zapcore.InfoLevel)

	log.InfoObj("referral created", "referral", map[string]any{"code": "REF1"})
	log.DebugObj("dropped", "x", 1)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "referral created" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	field, ok := entry["referral"].(map[string]any)
	if !ok || field["code"] != "REF1" {
		t.Fatalf("referral field = %#v", entry["referral"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("ts key missing: %v", entry)
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("noop", "k", 1)
	ErrorObj("noop", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestInitToWritesToGivenWriter(t *testing.T) {
	t.Cleanup(func() { S = nil })
	var buf bytes.Buffer

	log, err := InitTo(&config.Config{AppName: "referralctl", LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("InitTo: %v", err)
	}
	log.ErrorObj("referral api request failed", "referral_error", map[string]any{"operation": "create referral"})
	InfoObj("referralctl starting", "config", "redacted")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries in the writer, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["app"] != "referralctl" || entry["level"] != "error" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
