package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"DEBUG", slog.LevelDebug, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"  warn ", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text")
	defer SetOutput(&buf, "text")

	SetLevel(slog.LevelInfo)
	Info("directory created", "account", "admin", "name", "docs")

	line := buf.String()
	if !strings.Contains(line, "[INFO]") {
		t.Errorf("expected level tag in output, got %q", line)
	}
	if !strings.Contains(line, "directory created") {
		t.Errorf("expected message in output, got %q", line)
	}
	if !strings.Contains(line, "account=admin") || !strings.Contains(line, "name=docs") {
		t.Errorf("expected attributes in output, got %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text")

	SetLevel(slog.LevelWarn)
	Debug("should not appear")
	Info("should not appear either")
	Warn("visible")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("low-level records leaked through filter: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected warn record, got %q", out)
	}

	SetLevel(slog.LevelInfo)
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json")

	Info("file stored", "size", 42)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "file stored" {
		t.Errorf("msg = %v, want %q", record["msg"], "file stored")
	}
	if record["size"] != float64(42) {
		t.Errorf("size = %v, want 42", record["size"])
	}

	SetOutput(&buf, "text")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text")

	l := With("component", "coordinator")
	l.Info("quota updated")

	if !strings.Contains(buf.String(), "component=coordinator") {
		t.Errorf("expected preset attribute, got %q", buf.String())
	}
}
