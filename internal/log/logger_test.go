package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: "storage", Writer: &buf})
	logger.Info("opened", "path", "/tmp/x.db")

	out := buf.String()
	if !strings.Contains(out, "component=storage") {
		t.Errorf("missing component attribute: %s", out)
	}
	if !strings.Contains(out, "path=/tmp/x.db") {
		t.Errorf("missing call attributes: %s", out)
	}
}

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf})
	logger.Info("hello")
	if !strings.Contains(buf.String(), "component=saldo") {
		t.Errorf("missing default component: %s", buf.String())
	}

	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug leaked through the default info level: %s", buf.String())
	}
}
