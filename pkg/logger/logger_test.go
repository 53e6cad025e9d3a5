package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igcaption/pkg/config"
)

// lastLine decodes the last JSON line written to buf
func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "DEBUG"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"chatty", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.WarnLevel)

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	entry := lastLine(t, &buf)
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "igcaption", entry["app"])
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, zerolog.DebugLevel)

	base.
		WithField("run_id", "abc").
		WithFields(map[string]interface{}{
			"url":      "https://www.instagram.com/p/AAA/",
			"index":    2,
			"success":  true,
			"duration": 1500 * time.Millisecond,
		}).
		Info("chained fields")

	entry := lastLine(t, &buf)
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "https://www.instagram.com/p/AAA/", entry["url"])
	assert.Equal(t, float64(2), entry["index"])
	assert.Equal(t, true, entry["success"])

	// the parent logger is not mutated
	base.Info("plain")
	_, ok := lastLine(t, &buf)["run_id"]
	assert.False(t, ok)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.DebugLevel)

	assert.Same(t, log, log.WithError(nil))

	log.WithError(errors.New("websocket closed")).Error("browser gone")
	entry := lastLine(t, &buf)
	assert.Equal(t, "websocket closed", entry["error"])
}

func TestErrorFieldKeepsKey(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.DebugLevel)

	log.InfoWithFields("sink skipped", map[string]interface{}{
		"sheets": errors.New("quota exceeded"),
	})
	assert.Equal(t, "quota exceeded", lastLine(t, &buf)["sheets"])
}

func TestDomainHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogScrapeResult(tl, 0, 3, "https://www.instagram.com/p/AAA/", true, "")
	LogScrapeResult(tl, 1, 3, "https://www.instagram.com/p/BBB/", false, "no caption found")
	LogSinkWrite(tl, "file", "instagram_posts.json", 3, nil)
	LogSinkWrite(tl, "sheets", "", 3, errors.New("forbidden"))
	LogCollectProgress(tl, 4, 12, 0, 1)

	assert.True(t, tl.HasMessage("Caption extracted"))
	assert.True(t, tl.HasMessage("Caption extraction failed"))
	assert.True(t, tl.HasField("reason", "no caption found"))
	assert.True(t, tl.HasField("index", 1))
	assert.True(t, tl.HasField("location", "instagram_posts.json"))
	assert.True(t, tl.HasError())
	assert.Len(t, tl.EntriesAt("DEBUG"), 1)
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "error"}))
	assert.NotNil(t, GetLogger())

	// convenience functions must not panic
	Debug("debug message")
	Info("info message")
	WithField("key", "value").Info("with field")
	WithError(errors.New("boom")).Error("with error")
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.Same(t, log, log.WithField("k", "v"))
	assert.Nil(t, log.GetZerolog())
	log.Info("nothing")
}
