package browser

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the Instagram web root
	DefaultBaseURL = "https://www.instagram.com"

	// LoginPath is the login form location
	LoginPath = "/accounts/login/"
)

// LoginURL returns the login form URL for base
func LoginURL(base string) string {
	return strings.TrimRight(baseOrDefault(base), "/") + LoginPath
}

// ProfileURL turns a username ("someone", "@someone") or a profile URL into
// an absolute profile URL
func ProfileURL(base, profile string) (string, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "", fmt.Errorf("empty profile")
	}

	if strings.Contains(profile, "://") {
		u, err := url.Parse(profile)
		if err != nil {
			return "", fmt.Errorf("invalid profile URL: %w", err)
		}
		if u.Host == "" || strings.Trim(u.Path, "/") == "" {
			return "", fmt.Errorf("profile URL %q has no username", profile)
		}
		return profile, nil
	}

	username := strings.TrimPrefix(profile, "@")
	if strings.ContainsAny(username, "/?# ") {
		return "", fmt.Errorf("invalid username %q", username)
	}
	return fmt.Sprintf("%s/%s/", strings.TrimRight(baseOrDefault(base), "/"), url.PathEscape(username)), nil
}

func baseOrDefault(base string) string {
	if base == "" {
		return DefaultBaseURL
	}
	return base
}
