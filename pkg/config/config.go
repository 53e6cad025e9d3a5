package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Caption policies accepted by extractor.caption_policy
const (
	CaptionPolicyFirst = "first"
	CaptionPolicyAll   = "all"
)

// Config holds all configuration options for igcaption
type Config struct {
	// Instagram account and site settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Profile scrolling and link collection
	Collector CollectorConfig `yaml:"collector" json:"collector"`

	// Caption extraction
	Extractor ExtractorConfig `yaml:"extractor" json:"extractor"`

	// Batch pacing
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`

	// Local output
	Output OutputConfig `yaml:"output" json:"output"`

	// Google Sheets sink
	Sheets SheetsConfig `yaml:"sheets" json:"sheets"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	BaseURL  string `yaml:"base_url" json:"base_url" validate:"required,url"`
	Username string `yaml:"username" json:"username"`
}

// BrowserConfig holds the controlled browser settings
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	ExecPath       string        `yaml:"exec_path" json:"exec_path"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	StartupTimeout time.Duration `yaml:"startup_timeout" json:"startup_timeout" validate:"gt=0"`
	LoginTimeout   time.Duration `yaml:"login_timeout" json:"login_timeout" validate:"gt=0"`
}

// CollectorConfig controls when profile scrolling stops
type CollectorConfig struct {
	NoNewLinksThreshold   int           `yaml:"no_new_links_threshold" json:"no_new_links_threshold" validate:"gte=1"`
	StopOnUnchangedHeight bool          `yaml:"stop_on_unchanged_height" json:"stop_on_unchanged_height"`
	MaxScrolls            int           `yaml:"max_scrolls" json:"max_scrolls" validate:"gte=1"`
	ScrollPause           time.Duration `yaml:"scroll_pause" json:"scroll_pause" validate:"gte=0"`
	PollInterval          time.Duration `yaml:"poll_interval" json:"poll_interval" validate:"gt=0"`
}

// ExtractorConfig controls caption extraction
type ExtractorConfig struct {
	CaptionPolicy string        `yaml:"caption_policy" json:"caption_policy" validate:"oneof=first all"`
	RenderTimeout time.Duration `yaml:"render_timeout" json:"render_timeout" validate:"gt=0"`
}

// PipelineConfig controls the batch loop
type PipelineConfig struct {
	RequestInterval time.Duration `yaml:"request_interval" json:"request_interval" validate:"gte=0"`
}

// OutputConfig holds local output configuration
type OutputConfig struct {
	File   string `yaml:"file" json:"file" validate:"required"`
	Report string `yaml:"report" json:"report"`
}

// SheetsConfig holds Google Sheets configuration
type SheetsConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	CredentialsFile  string `yaml:"credentials_file" json:"credentials_file"`
	SpreadsheetID    string `yaml:"spreadsheet_id" json:"spreadsheet_id"`
	SpreadsheetTitle string `yaml:"spreadsheet_title" json:"spreadsheet_title"`
	Worksheet        string `yaml:"worksheet" json:"worksheet"`
	ShareWith        string `yaml:"share_with" json:"share_with" validate:"omitempty,email"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error fatal disabled"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			BaseURL: "https://www.instagram.com",
		},
		Browser: BrowserConfig{
			Headless:       false,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			StartupTimeout: 30 * time.Second,
			LoginTimeout:   5 * time.Minute,
		},
		Collector: CollectorConfig{
			NoNewLinksThreshold:   3,
			StopOnUnchangedHeight: false,
			MaxScrolls:            50,
			ScrollPause:           4 * time.Second,
			PollInterval:          250 * time.Millisecond,
		},
		Extractor: ExtractorConfig{
			CaptionPolicy: CaptionPolicyAll,
			RenderTimeout: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			RequestInterval: time.Second,
		},
		Output: OutputConfig{
			File: "instagram_posts.json",
		},
		Sheets: SheetsConfig{
			Enabled:          true,
			CredentialsFile:  "credentials.json",
			SpreadsheetTitle: "Instagram Scraping Results",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from IGCAPTION_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setString("IGCAPTION_BASE_URL", &c.Instagram.BaseURL)
	setString("IGCAPTION_USERNAME", &c.Instagram.Username)

	setBool("IGCAPTION_HEADLESS", &c.Browser.Headless)
	setString("CHROME_PATH", &c.Browser.ExecPath)
	setString("IGCAPTION_CHROME_PATH", &c.Browser.ExecPath)
	setString("IGCAPTION_USER_AGENT", &c.Browser.UserAgent)

	setInt("IGCAPTION_NO_NEW_LINKS_THRESHOLD", &c.Collector.NoNewLinksThreshold)
	setInt("IGCAPTION_MAX_SCROLLS", &c.Collector.MaxScrolls)
	setBool("IGCAPTION_STOP_ON_UNCHANGED_HEIGHT", &c.Collector.StopOnUnchangedHeight)
	setDuration("IGCAPTION_SCROLL_PAUSE", &c.Collector.ScrollPause)

	setString("IGCAPTION_CAPTION_POLICY", &c.Extractor.CaptionPolicy)
	setDuration("IGCAPTION_RENDER_TIMEOUT", &c.Extractor.RenderTimeout)
	setDuration("IGCAPTION_REQUEST_INTERVAL", &c.Pipeline.RequestInterval)

	setString("IGCAPTION_OUTPUT_FILE", &c.Output.File)
	setString("IGCAPTION_REPORT_FILE", &c.Output.Report)

	setBool("IGCAPTION_SHEETS_ENABLED", &c.Sheets.Enabled)
	setString("IGCAPTION_SHEETS_CREDENTIALS", &c.Sheets.CredentialsFile)
	setString("IGCAPTION_SPREADSHEET_ID", &c.Sheets.SpreadsheetID)
	setString("IGCAPTION_SHARE_WITH", &c.Sheets.ShareWith)

	setString("IGCAPTION_LOG_LEVEL", &c.Logging.Level)
	setString("IGCAPTION_LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igcaption.yaml",
		".igcaption.yml",
		filepath.Join(home, ".config", "igcaption", "config.yaml"),
		filepath.Join(home, ".config", "igcaption", "config.yml"),
		filepath.Join(home, ".igcaption.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q check", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if c.Collector.NoNewLinksThreshold > c.Collector.MaxScrolls {
		errs = append(errs, errors.New("no_new_links_threshold cannot exceed max_scrolls"))
	}
	if c.Sheets.Enabled {
		if c.Sheets.CredentialsFile == "" {
			errs = append(errs, errors.New("sheets credentials file is required when sheets are enabled"))
		}
		if c.Sheets.SpreadsheetID == "" && c.Sheets.SpreadsheetTitle == "" {
			errs = append(errs, errors.New("sheets need either a spreadsheet id or a title"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.File = output
	}
	if report, ok := flags["report"].(string); ok && report != "" {
		c.Output.Report = report
	}
	if worksheet, ok := flags["worksheet"].(string); ok && worksheet != "" {
		c.Sheets.Worksheet = worksheet
	}
	if noSheets, ok := flags["no-sheets"].(bool); ok && noSheets {
		c.Sheets.Enabled = false
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if policy, ok := flags["policy"].(string); ok && policy != "" {
		c.Extractor.CaptionPolicy = strings.ToLower(policy)
	}
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Instagram.Username = username
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igcaption.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
