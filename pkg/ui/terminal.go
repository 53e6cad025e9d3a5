package ui

import (
	"fmt"
	"io"
	"os"

	"igcaption/pkg/models"
)

// ASCIILogo is printed at the top of interactive sessions
const ASCIILogo = `
    ╔═════════════════════════════════════════════════════════════════════╗
    ║ ██╗ ██████╗  ██████╗ █████╗ ██████╗ ████████╗██╗ ██████╗ ███╗   ██╗ ║
    ║ ██║██╔════╝ ██╔════╝██╔══██╗██╔══██╗╚══██╔══╝██║██╔═══██╗████╗  ██║ ║
    ║ ██║██║  ███╗██║     ███████║██████╔╝   ██║   ██║██║   ██║██╔██╗ ██║ ║
    ║ ██║██║   ██║██║     ██╔══██║██╔═══╝    ██║   ██║██║   ██║██║╚██╗██║ ║
    ║ ██║╚██████╔╝╚██████╗██║  ██║██║        ██║   ██║╚██████╔╝██║ ╚████║ ║
    ║ ╚═╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝        ╚═╝   ╚═╝ ╚═════╝ ╚═╝  ╚═══╝ ║
    ║                 INSTAGRAM CAPTION EXTRACTION UTILITY                ║
    ╚═════════════════════════════════════════════════════════════════════╝
`

// ANSI color helpers
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var colorEnabled = true

// DisableColor turns every color helper into a pass-through
func DisableColor() {
	colorEnabled = false
}

func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func PrintLogo() {
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints msg in red, followed by the first arg as detail
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, Red(withDetail(msg, args)))
}

func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

func PrintInfo(label string, value string) {
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

func PrintWarning(msg string, args ...interface{}) {
	fmt.Println(Yellow(withDetail(msg, args)))
}

func PrintHighlight(msg string) {
	fmt.Println(Magenta(msg))
}

func withDetail(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	detail := fmt.Sprintf("%v", args[0])
	if detail == "" {
		return msg
	}
	return msg + ": " + detail
}

// PrintResults writes every result in input order: the caption on success,
// "Error: reason" otherwise
func PrintResults(w io.Writer, batch models.ScrapeBatch) {
	fmt.Fprintln(w, "\nResults:")
	for _, result := range batch {
		fmt.Fprintf(w, "\nURL: %s\n", result.URL)
		if result.Success {
			fmt.Fprintln(w, "Content:")
			fmt.Fprintln(w, result.ContentOrEmpty())
			continue
		}
		reason := result.ErrorOrEmpty()
		if reason == "" {
			reason = "Unknown error"
		}
		fmt.Fprintf(w, "Error: %s\n", reason)
	}
}

// PrintDestinations lists where the batch was persisted. Empty locations are
// skipped.
func PrintDestinations(w io.Writer, jsonPath, sheetURL, reportPath string) {
	fmt.Fprintln(w, "\nResults have been saved to:")
	n := 0
	for _, dest := range []struct{ label, location string }{
		{"JSON file", jsonPath},
		{"Google Sheet", sheetURL},
		{"Report", reportPath},
	} {
		if dest.location == "" {
			continue
		}
		n++
		fmt.Fprintf(w, "%d. %s: %s\n", n, dest.label, dest.location)
	}
}
