package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "text")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Info("stored tracks", "count", 3)
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "stored tracks") || !strings.Contains(out, "count=3") {
		t.Errorf("Unexpected output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug line leaked at info level: %q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Debug("page fetched", "offset", 50)

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not JSON: %v (%q)", err, buf.String())
	}
	if parsed["msg"] != "page fetched" {
		t.Errorf("msg = %v, want %q", parsed["msg"], "page fetched")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Error("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard did not return the given logger")
	}
}
