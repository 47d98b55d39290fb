package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("warn", &buf); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	}()

	log.Info("hidden")
	log.WithField("rows", 3).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "rows=3") {
		t.Errorf("missing warn line: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colors must be off for non-terminal writers: %q", out)
	}
}

func TestSetupBadLevel(t *testing.T) {
	if err := Setup("loud", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
