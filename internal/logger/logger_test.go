package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production", Level: slog.LevelInfo})

	log.Info("export finished", "campaign", "eid", "recipients", 2)

	out := buf.String()
	assert.Contains(t, out, `"msg":"export finished"`)
	assert.Contains(t, out, `"campaign":"eid"`)
	assert.Contains(t, out, `"recipients":2`)
}

func TestNew_PrettyInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development", Level: slog.LevelDebug})

	log.Debug("import row skipped", "phone", "111", "reason", "duplicate phone")

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "import row skipped")
	assert.Contains(t, out, "phone=111")
	assert.Contains(t, out, `reason="duplicate phone"`)
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, Level: slog.LevelWarn})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty})

	log.With("component", "watcher").WithGroup("file").Info("imported", "name", "leads.csv")

	out := buf.String()
	assert.Contains(t, out, "component=watcher")
	assert.Contains(t, out, "file.name=leads.csv")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_NoColor(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, NoColor: true})

	log.Info("contacts imported", "file", "leads.csv", "imported", 2, "source", "")

	line := buf.String()
	assert.NotContains(t, line, "\033[")
	// Drop the clock prefix.
	assert.Equal(t, `INF contacts imported file=leads.csv imported=2 source=""`+"\n", line[len("15:04:05 "):])
}

func TestPrettyHandler_GroupValuesFlatten(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, NoColor: true})

	log.Warn("export skipped",
		slog.Group("campaign", "name", "eid", "recipients", 0),
		"error", "no new recipients",
	)

	out := buf.String()
	assert.Contains(t, out, "campaign.name=eid campaign.recipients=0")
	assert.Contains(t, out, `error="no new recipients"`)
}

func TestPrettyHandler_ErrorHighlighted(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty})

	log.Error("export failed", "error", "disk full")

	assert.Contains(t, buf.String(), "\033[31merror=\"disk full\"\033[0m")
}
