package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, exitStatus(nil))
	assert.Equal(t, 1, exitStatus(errors.New("unknown command")))
	assert.Equal(t, 3, exitStatus(exitCode(3)))
	assert.Equal(t, "exit status 1", exitCode(1).Error())
}

func TestRunScrapeReturnsExitCode(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sheets:\n  enabled: false\n"), 0o600))

	savedConfig, savedProfile := configFile, profileArg
	t.Cleanup(func() {
		configFile, profileArg = savedConfig, savedProfile
	})
	configFile = path
	// a profile together with post URLs is rejected before any browser starts
	profileArg = "someone"

	err := runScrape(scrapeCmd, []string{"https://www.instagram.com/p/AAA/"})

	var code exitCode
	require.ErrorAs(t, err, &code)
	assert.Equal(t, 1, exitStatus(err))
}
