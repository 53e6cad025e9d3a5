package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcaption/pkg/models"
)

// scriptedInput answers ReadLine with one line at a time, then io.EOF
type scriptedInput struct {
	lines  []string
	labels []string
}

func (s *scriptedInput) ReadLine(label string) (string, error) {
	s.labels = append(s.labels, label)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestPromptJobManualEntry(t *testing.T) {
	in := &scriptedInput{lines: []string{
		"1",
		"https://www.instagram.com/p/AAA/",
		"https://www.instagram.com/reel/BBB/",
		"",
		"https://www.instagram.com/p/ignored/",
	}}
	var out bytes.Buffer

	job, err := promptJob(in, &out)
	require.NoError(t, err)

	assert.False(t, job.profileMode())
	assert.Equal(t, []models.PostLink{
		"https://www.instagram.com/p/AAA/",
		"https://www.instagram.com/reel/BBB/",
	}, job.urls)
	assert.Contains(t, out.String(), "1. Enter post URLs manually")
	assert.Contains(t, out.String(), "Press Enter twice when done")
}

func TestPromptJobManualEntryEndsAtEOF(t *testing.T) {
	in := &scriptedInput{lines: []string{"1", "https://www.instagram.com/p/AAA/"}}

	job, err := promptJob(in, io.Discard)
	require.NoError(t, err)
	assert.Len(t, job.urls, 1)
}

func TestPromptJobProfile(t *testing.T) {
	in := &scriptedInput{lines: []string{"2", "https://www.instagram.com/someone/", "march"}}

	job, err := promptJob(in, io.Discard)
	require.NoError(t, err)

	assert.True(t, job.profileMode())
	assert.Equal(t, "https://www.instagram.com/someone/", job.profile)
	assert.Equal(t, "march", job.worksheet)
	assert.Empty(t, job.urls)
}

func TestPromptJobProfileAutomaticWorksheet(t *testing.T) {
	in := &scriptedInput{lines: []string{"2", "someone", ""}}

	job, err := promptJob(in, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "", job.worksheet)
}

func TestPromptJobInvalidChoice(t *testing.T) {
	for _, choice := range []string{"3", "", "one"} {
		in := &scriptedInput{lines: []string{choice, "https://www.instagram.com/p/AAA/"}}

		_, err := promptJob(in, io.Discard)
		assert.ErrorIs(t, err, errInvalidChoice, "choice %q", choice)
		// nothing past the menu is read
		assert.Len(t, in.labels, 1)
	}
}

func TestPromptJobNoInput(t *testing.T) {
	_, err := promptJob(&scriptedInput{}, io.Discard)
	assert.ErrorIs(t, err, errInvalidChoice)
}

func TestParseURLList(t *testing.T) {
	input := strings.Join([]string{
		"# posts to check",
		"https://www.instagram.com/p/AAA/",
		"",
		"   https://www.instagram.com/reel/BBB/  ",
	}, "\n")

	urls, err := parseURLList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []models.PostLink{
		"https://www.instagram.com/p/AAA/",
		"https://www.instagram.com/reel/BBB/",
	}, urls)
}

func TestJobFromFlags(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "posts.txt")
	require.NoError(t, os.WriteFile(list, []byte("https://www.instagram.com/p/CCC/\n"), 0644))

	t.Run("nothing given", func(t *testing.T) {
		_, ok, err := jobFromFlags(nil, "", "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("args and file", func(t *testing.T) {
		job, ok, err := jobFromFlags([]string{"https://www.instagram.com/p/AAA/"}, "", list)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []models.PostLink{
			"https://www.instagram.com/p/AAA/",
			"https://www.instagram.com/p/CCC/",
		}, job.urls)
	})

	t.Run("empty file still skips the menu", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(empty, nil, 0644))

		job, ok, err := jobFromFlags(nil, "", empty)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, job.urls)
	})

	t.Run("profile", func(t *testing.T) {
		job, ok, err := jobFromFlags(nil, " someone ", "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "someone", job.profile)
	})

	t.Run("profile with urls", func(t *testing.T) {
		_, _, err := jobFromFlags([]string{"https://www.instagram.com/p/AAA/"}, "someone", "")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := jobFromFlags(nil, "", filepath.Join(dir, "missing.txt"))
		assert.Error(t, err)
	})
}
