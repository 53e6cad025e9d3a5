package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate points HOME and the working directory at an empty temp dir so no
// stray config or .env file leaks into the test
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldDir) })
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Collector.NoNewLinksThreshold)
	assert.Equal(t, 50, cfg.Collector.MaxScrolls)
	assert.False(t, cfg.Collector.StopOnUnchangedHeight)
	assert.Equal(t, 4*time.Second, cfg.Collector.ScrollPause)
	assert.Equal(t, CaptionPolicyAll, cfg.Extractor.CaptionPolicy)
	assert.Equal(t, time.Second, cfg.Pipeline.RequestInterval)
	assert.Equal(t, "instagram_posts.json", cfg.Output.File)
	assert.Equal(t, 5*time.Minute, cfg.Browser.LoginTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGCAPTION_HEADLESS", "true")
	t.Setenv("IGCAPTION_MAX_SCROLLS", "10")
	t.Setenv("IGCAPTION_SCROLL_PAUSE", "2s")
	t.Setenv("IGCAPTION_CAPTION_POLICY", "first")
	t.Setenv("IGCAPTION_SPREADSHEET_ID", "sheet-123")
	t.Setenv("IGCAPTION_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Collector.MaxScrolls)
	assert.Equal(t, 2*time.Second, cfg.Collector.ScrollPause)
	assert.Equal(t, CaptionPolicyFirst, cfg.Extractor.CaptionPolicy)
	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("IGCAPTION_HEADLESS", "maybe")
	t.Setenv("IGCAPTION_SCROLL_PAUSE", "soon")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IGCAPTION_HEADLESS")
	assert.Contains(t, err.Error(), "IGCAPTION_SCROLL_PAUSE")
	assert.Equal(t, 4*time.Second, cfg.Collector.ScrollPause)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
collector:
  max_scrolls: 20
  stop_on_unchanged_height: true
  scroll_pause: 1500ms
extractor:
  caption_policy: first
sheets:
  spreadsheet_id: abc
  share_with: someone@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 20, cfg.Collector.MaxScrolls)
	assert.True(t, cfg.Collector.StopOnUnchangedHeight)
	assert.Equal(t, 1500*time.Millisecond, cfg.Collector.ScrollPause)
	assert.Equal(t, CaptionPolicyFirst, cfg.Extractor.CaptionPolicy)
	assert.Equal(t, "abc", cfg.Sheets.SpreadsheetID)
	// untouched sections keep their defaults
	assert.Equal(t, 3, cfg.Collector.NoNewLinksThreshold)

	assert.Error(t, cfg.LoadFromFile(filepath.Join(dir, "missing.yaml")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown policy", func(c *Config) { c.Extractor.CaptionPolicy = "longest" }, "CaptionPolicy"},
		{"zero max scrolls", func(c *Config) { c.Collector.MaxScrolls = 0 }, "MaxScrolls"},
		{"threshold above bound", func(c *Config) { c.Collector.NoNewLinksThreshold = 60 }, "cannot exceed max_scrolls"},
		{"bad share address", func(c *Config) { c.Sheets.ShareWith = "not-an-email" }, "ShareWith"},
		{"sheets without credentials", func(c *Config) { c.Sheets.CredentialsFile = "" }, "credentials file is required"},
		{"sheets disabled without credentials", func(c *Config) {
			c.Sheets.Enabled = false
			c.Sheets.CredentialsFile = ""
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Level"},
		{"bad base url", func(c *Config) { c.Instagram.BaseURL = "" }, "BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sheets.Worksheet = "Weekly"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *cfg, decoded)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":    "out.json",
		"worksheet": "Manual",
		"no-sheets": true,
		"headless":  true,
		"policy":    "FIRST",
		"log-level": "warn",
		"report":    12, // wrong type is ignored
	})

	assert.Equal(t, "out.json", cfg.Output.File)
	assert.Equal(t, "Manual", cfg.Sheets.Worksheet)
	assert.False(t, cfg.Sheets.Enabled)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, CaptionPolicyFirst, cfg.Extractor.CaptionPolicy)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Empty(t, cfg.Output.Report)

	untouched := DefaultConfig()
	untouched.MergeCommandLineFlags(nil)
	assert.Equal(t, DefaultConfig(), untouched)
}

func TestLoad(t *testing.T) {
	t.Run("precedence order", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		content := `
output:
  file: from-file.json
  report: from-file.html
collector:
  max_scrolls: 30
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		t.Setenv("IGCAPTION_OUTPUT_FILE", "from-env.json")
		t.Setenv("IGCAPTION_MAX_SCROLLS", "40")

		cfg, err := Load(path, map[string]interface{}{"output": "from-flag.json"})
		require.NoError(t, err)

		assert.Equal(t, "from-flag.json", cfg.Output.File)
		assert.Equal(t, 40, cfg.Collector.MaxScrolls)
		assert.Equal(t, "from-file.html", cfg.Output.Report)
	})

	t.Run("validation failure", func(t *testing.T) {
		isolate(t)
		cfg, err := Load("", map[string]interface{}{"policy": "random"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
		assert.Nil(t, cfg)
	})

	t.Run("loads .env file", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.Unsetenv("IGCAPTION_SPREADSHEET_ID"))
		t.Cleanup(func() { _ = os.Unsetenv("IGCAPTION_SPREADSHEET_ID") })
		require.NoError(t, os.WriteFile(".env", []byte("IGCAPTION_SPREADSHEET_ID=dotenv-sheet\n"), 0644))

		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "dotenv-sheet", cfg.Sheets.SpreadsheetID)
	})
}
