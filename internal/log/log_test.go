package log

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLogger_ComponentField(t *testing.T) {
	defer SetLogger(Logger)

	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, "debug"))
	Witness.Info().Str("kind", "utxo").Msg("built")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "witness" || entry["kind"] != "utxo" || entry["message"] != "built" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestJSONLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "error")
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info written at error level: %q", buf.String())
	}
}

func TestInit_WritesFile(t *testing.T) {
	defer SetLogger(Logger)

	path := filepath.Join(t.TempDir(), "tx.log")
	if err := Init("info", true, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Staging.Info().Msg("stored")

	if err := Init("info", true, filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("Init should fail for an unwritable log file")
	}
}
