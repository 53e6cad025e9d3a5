package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igcaption/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	noColor       bool
	notifications bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igcaption",
	Short: "Collect Instagram post captions into JSON and Google Sheets",
	Long: `igcaption opens a real browser, collects the posts and reels of a profile
(or takes a list of post URLs) and extracts each caption.

Results are written to a JSON file and, when configured, to a worksheet in a
Google Sheets document. Run without arguments for the interactive menu.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.ArbitraryArgs,
	RunE:    runScrape,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColor()
		}
		// Only the scraping entry points show the logo
		switch cmd.Name() {
		case "igcaption", "scrape":
			if !useTUI {
				ui.PrintLogo()
			}
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd prints the same text as --version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(versionText())
	},
}

// exitCode ends the process with a status once the command has already
// reported the failure to the user
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var code exitCode
		if !errors.As(err, &code) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitStatus(err))
	}
}

// exitStatus maps the error returned by a command to the process status
func exitStatus(err error) int {
	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	default:
		return 1
	}
}

func versionText() string {
	return fmt.Sprintf("igcaption %s (commit: %s, built: %s)\nGo Version: %s\nOS/Arch: %s/%s\n",
		version, gitCommit, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igcaption.yaml or $HOME/.config/igcaption/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show a line when each post starts and debug logs")

	rootCmd.SetVersionTemplate(`igcaption {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}
