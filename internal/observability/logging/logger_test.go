package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerTagsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "mailcheck-api", "warn")

	logger.Info("dropped")
	logger.Warn("backend_request_rejected", "status", 400)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["service"] != "mailcheck-api" || record["msg"] != "backend_request_rejected" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestCLILoggerDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLILogger(&buf, "nonsense")

	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
