package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"igcaption/pkg/models"
)

var errInvalidChoice = errors.New("invalid choice")

// lineReader is the part of auth.TerminalPrompt the menu needs
type lineReader interface {
	ReadLine(label string) (string, error)
}

// scrapeJob is what a run works on: either explicit post URLs or a profile
// to collect them from
type scrapeJob struct {
	urls      []models.PostLink
	profile   string
	worksheet string
}

func (j scrapeJob) profileMode() bool {
	return j.profile != ""
}

// promptJob shows the interactive menu
func promptJob(in lineReader, out io.Writer) (scrapeJob, error) {
	fmt.Fprintln(out, "Choose an option:")
	fmt.Fprintln(out, "1. Enter post URLs manually")
	fmt.Fprintln(out, "2. Scrape posts from a profile")

	choice, err := in.ReadLine("Enter your choice (1 or 2): ")
	if err != nil && choice == "" {
		return scrapeJob{}, errInvalidChoice
	}

	switch choice {
	case "1":
		fmt.Fprintln(out, "Enter Instagram post URLs (one per line). Press Enter twice when done:")
		return scrapeJob{urls: readURLLines(in)}, nil

	case "2":
		profile, err := in.ReadLine("Enter Instagram profile URL (e.g., https://www.instagram.com/username/): ")
		if err != nil && profile == "" {
			return scrapeJob{}, fmt.Errorf("failed to read profile: %w", err)
		}
		worksheet, _ := in.ReadLine("Enter name for Google Sheet (press Enter for automatic name): ")
		return scrapeJob{profile: profile, worksheet: worksheet}, nil
	}

	return scrapeJob{}, errInvalidChoice
}

// readURLLines reads one URL per line until a blank line or end of input
func readURLLines(in lineReader) []models.PostLink {
	var urls []models.PostLink
	for {
		line, err := in.ReadLine("")
		if line == "" {
			return urls
		}
		urls = append(urls, line)
		if err != nil {
			return urls
		}
	}
}

// parseURLList reads a URL list file: one URL per line, blank lines and
// lines starting with # are skipped
func parseURLList(r io.Reader) ([]models.PostLink, error) {
	var urls []models.PostLink
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

func readURLFile(path string) ([]models.PostLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	urls, err := parseURLList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

// jobFromFlags builds a job from the command line. ok is false when nothing
// was given and the menu should be shown.
func jobFromFlags(args []string, profile, urlsFile string) (job scrapeJob, ok bool, err error) {
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			job.urls = append(job.urls, arg)
		}
	}
	if urlsFile != "" {
		urls, err := readURLFile(urlsFile)
		if err != nil {
			return scrapeJob{}, true, err
		}
		job.urls = append(job.urls, urls...)
	}
	job.profile = strings.TrimSpace(profile)

	if job.profileMode() && len(job.urls) > 0 {
		return scrapeJob{}, true, errors.New("--profile cannot be combined with post URLs")
	}
	return job, job.profileMode() || len(job.urls) > 0 || urlsFile != "", nil
}
