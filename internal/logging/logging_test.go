package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{" fatal ", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("Debug") {
		t.Error("Debug should be valid")
	}
	if ValidLevel("verbose") {
		t.Error("verbose should be invalid")
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		input string
		want  log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
		{"yaml", log.TextFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormatter(tt.input); got != tt.want {
				t.Errorf("ParseFormatter(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
	if ValidFormat("yaml") {
		t.Error("yaml should be invalid")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.WarnLevel
	logger := New(&buf, opts)

	logger.Info("hidden")
	logger.Warn("persist tasks failed", "count", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "persist tasks failed") || !strings.Contains(out, "count=3") {
		t.Errorf("warn line missing message or fields: %q", out)
	}
	if !strings.Contains(out, DefaultPrefix) {
		t.Errorf("expected prefix %q in %q", DefaultPrefix, out)
	}
}

func TestNewFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFromConfig(&buf, "debug", "json", false, false)
	logger.Debug("tasks loaded", "count", 9)

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("json formatter output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "tasks loaded" {
		t.Errorf("msg: got %v", line["msg"])
	}
	if line["count"] != float64(9) {
		t.Errorf("count: got %v", line["count"])
	}
	if line["prefix"] != DefaultPrefix {
		t.Errorf("prefix: got %v, want %s", line["prefix"], DefaultPrefix)
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must not write anywhere visible.
	Discard().Error("dropped")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasklist.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	logger := New(f, DefaultOptions())
	logger.Info("first")
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err = OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	New(f, DefaultOptions()).Info("second")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("log file should be appended to, got %q", data)
	}

	if _, err := OpenFile(""); err == nil {
		t.Error("OpenFile(\"\") should fail")
	}
}
