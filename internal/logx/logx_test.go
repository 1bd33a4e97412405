package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"pkt.systems/pslog"
)

func TestWithPlatformAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	WithPlatform(logger, "linux").Info("hello")

	entry := capture.firstEntry(t)
	if entry["platform"] != "linux" {
		t.Fatalf("expected platform field, got %+v", entry)
	}
}

func TestWithProviderAddsFields(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	WithProvider(logger, "my.ext", "wsl").Info("hello")

	entry := capture.firstEntry(t)
	if entry["extension"] != "my.ext" {
		t.Fatalf("expected extension field, got %+v", entry)
	}
	if entry["provider"] != "wsl" {
		t.Fatalf("expected provider field, got %+v", entry)
	}
}

func TestWithProfileSkipsEmptyName(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	WithProfile(logger, "").Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["profile"]; ok {
		t.Fatalf("did not expect profile field for empty name")
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
