package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igcaption/pkg/config"
	"igcaption/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igcaption configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGCAPTION_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.igcaption.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging the configuration file,
the environment and the defaults.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Google Sheets settings when the sheet is enabled`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# igcaption configuration file
#
# Every option can also be set with an IGCAPTION_ environment variable,
# for example IGCAPTION_OUTPUT_FILE or IGCAPTION_SPREADSHEET_ID.

instagram:
  base_url: "https://www.instagram.com"
  # Account used for profile mode. The password comes from
  # 'igcaption auth login' or IGCAPTION_PASSWORD.
  username: ""

browser:
  # Run Chrome without a window
  headless: false
  # Path to the Chrome binary, empty to auto-detect
  exec_path: ""
  user_agent: ""
  startup_timeout: 30s
  # How long to wait for the login, including the verification code
  login_timeout: 5m

collector:
  # Stop after this many scrolls in a row find no new posts
  no_new_links_threshold: 3
  # Also stop when the page height stops growing
  stop_on_unchanged_height: false
  max_scrolls: 50
  # Pause after each scroll so the next posts can load
  scroll_pause: 4s
  poll_interval: 250ms

extractor:
  # first: only the first caption block, all: every block joined by newlines
  caption_policy: "all"
  render_timeout: 10s

pipeline:
  # Pause between posts
  request_interval: 1s

output:
  file: "instagram_posts.json"
  # Optional HTML report
  report: ""

sheets:
  enabled: true
  # Service account key
  credentials_file: "credentials.json"
  # Write to an existing document, or create one with the title below
  spreadsheet_id: ""
  spreadsheet_title: "Instagram Scraping Results"
  # Empty for a timestamped worksheet per run
  worksheet: ""
  # Share a created document with this address
  share_with: ""

logging:
  # debug, info, warn, error
  level: "info"
  # Also append JSON lines to this file
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".igcaption.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create configuration directory", err.Error())
			os.Exit(1)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Point sheets.credentials_file at your service account key")
	fmt.Println("2. Run 'igcaption config validate' to check the configuration")
	fmt.Println("3. Run 'igcaption' and pick an option")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGCAPTION_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		for _, path := range []string{
			".igcaption.yaml",
			".igcaption.yml",
			filepath.Join(os.Getenv("HOME"), ".config", "igcaption", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".igcaption.yaml"),
		} {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string
	if cfg.Sheets.Enabled {
		if _, err := os.Stat(cfg.Sheets.CredentialsFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("Sheets credentials file not readable: %s", cfg.Sheets.CredentialsFile))
		}
	}
	if cfg.Browser.ExecPath != "" {
		if _, err := os.Stat(cfg.Browser.ExecPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("Browser binary not found: %s", cfg.Browser.ExecPath))
		}
	}
	if cfg.Pipeline.RequestInterval == 0 {
		warnings = append(warnings, "Request interval is 0, posts will be loaded back to back")
	}

	for _, w := range warnings {
		ui.PrintWarning("⚠️  " + w)
	}
	ui.PrintSuccess("✅ Configuration is valid")
}
