package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowLoginGuide explains what auth login stores and how the verification
// code step works
func ShowLoginGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "🔐 INSTAGRAM LOGIN")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Profile mode logs into Instagram in a real browser before scrolling.")
	fmt.Fprintln(w, "Your username and password are saved to:")
	fmt.Fprintln(w, "   • the system keychain, when one is available")
	fmt.Fprintln(w, "   • an encrypted file (AES-GCM) under your config directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "If two-factor authentication is on, the scraper pauses after the password")
	fmt.Fprintln(w, "and asks for the code Instagram sent you. It waits up to five minutes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "⚠️  Use a secondary account for scraping.")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// ShowQuickLoginHint is the one-line reminder printed when no account is saved
func ShowQuickLoginHint(w io.Writer) {
	fmt.Fprintln(w, "\n🔑 No saved account. Run 'igcaption auth login' or set IGCAPTION_USERNAME and IGCAPTION_PASSWORD.")
}
