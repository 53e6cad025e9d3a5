package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"igcaption/internal/browser"
	"igcaption/pkg/auth"
	"igcaption/pkg/config"
	"igcaption/pkg/logger"
	"igcaption/pkg/models"
	"igcaption/pkg/ratelimit"
	"igcaption/pkg/report"
	"igcaption/pkg/scraper"
	"igcaption/pkg/sheets"
	"igcaption/pkg/storage"
	"igcaption/pkg/ui"
	"igcaption/pkg/ui/tui"
)

const persistTimeout = 2 * time.Minute

var (
	// Scrape command flags
	outputFile  string
	worksheet   string
	noSheets    bool
	reportFile  string
	useTUI      bool
	headless    bool
	accountName string
	policy      string
	profileArg  string
	urlsFile    string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [post-url...]",
	Short: "Extract captions from posts or from every post of a profile",
	Long: `Extract the caption of each Instagram post or reel.

Posts can be given as arguments, read from a file with --urls-file, or
collected from a profile with --profile. Profile mode logs in first, using a
stored account ('igcaption auth login'), IGCAPTION_USERNAME/IGCAPTION_PASSWORD,
or a prompt. Without any input an interactive menu is shown.`,
	Example: `  # Interactive menu
  igcaption

  # A few posts
  igcaption scrape https://www.instagram.com/p/C1a2B3/ https://www.instagram.com/reel/D4e5F6/

  # Every post of a profile, into a named worksheet
  igcaption scrape --profile https://www.instagram.com/someone/ --worksheet someone

  # Only the first caption block, no spreadsheet, with an HTML report
  igcaption scrape --urls-file posts.txt --policy first --no-sheets --report report.html`,
	Args: cobra.ArbitraryArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// scrape is also the default command, so the root takes the same flags
	for _, cmd := range []*cobra.Command{scrapeCmd, rootCmd} {
		flags := cmd.Flags()
		flags.StringVarP(&outputFile, "output", "o", "", "JSON results file (default instagram_posts.json)")
		flags.StringVarP(&worksheet, "worksheet", "w", "", "worksheet name (default: timestamped)")
		flags.BoolVar(&noSheets, "no-sheets", false, "do not write to Google Sheets")
		flags.StringVar(&reportFile, "report", "", "write an HTML run report to this file")
		flags.BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
		flags.BoolVar(&headless, "headless", false, "run the browser without a window")
		flags.StringVarP(&accountName, "account", "a", "", "use specific stored account")
		flags.StringVar(&policy, "policy", "", "caption policy: first or all")
		flags.StringVarP(&profileArg, "profile", "p", "", "profile URL or username to collect posts from")
		flags.StringVar(&urlsFile, "urls-file", "", "file with one post URL per line")
	}
}

// scrapeFlags passes only the flags the user set, so config file and
// environment values are not overridden by flag defaults
func scrapeFlags(cmd *cobra.Command) map[string]interface{} {
	changed := cmd.Flags().Changed
	flags := make(map[string]interface{})

	if changed("output") {
		flags["output"] = outputFile
	}
	if changed("report") {
		flags["report"] = reportFile
	}
	if changed("worksheet") {
		flags["worksheet"] = worksheet
	}
	if changed("no-sheets") {
		flags["no-sheets"] = noSheets
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("policy") {
		flags["policy"] = policy
	}

	switch {
	case changed("log-level"):
		flags["log-level"] = logLevel
	case verbose:
		flags["log-level"] = "debug"
	case useTUI:
		// console logs would tear the full-screen view
		flags["log-level"] = "error"
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, scrapeFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return exitCode(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return exitCode(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("igcaption starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := auth.NewTerminalPrompt(bufio.NewReader(os.Stdin), os.Stdout)

	job, ok, err := jobFromFlags(args, profileArg, urlsFile)
	if err != nil {
		ui.PrintError("Invalid input", err.Error())
		return exitCode(1)
	}
	if !ok {
		job, err = promptJob(console, os.Stdout)
		if errors.Is(err, errInvalidChoice) {
			fmt.Println("Invalid choice!")
			return exitCode(1)
		}
		if err != nil {
			ui.PrintError("Failed to read input", err.Error())
			return exitCode(1)
		}
	}
	if job.worksheet == "" {
		job.worksheet = cfg.Sheets.Worksheet
	}

	var creds browser.Credentials
	if job.profileMode() {
		creds, err = resolveCredentials(cfg, console)
		if err != nil {
			log.WithError(err).Error("No credentials")
			ui.PrintError("No Instagram credentials", err.Error())
			auth.ShowQuickLoginHint(os.Stdout)
			return exitCode(1)
		}
	} else if len(job.urls) == 0 {
		fmt.Println("No posts to process!")
		return nil
	}

	logger.LogComponentStart("browser", map[string]interface{}{
		"headless": cfg.Browser.Headless,
		"policy":   cfg.Extractor.CaptionPolicy,
	})
	sess, err := browser.New(ctx, cfg.Browser, log)
	if err != nil {
		log.WithError(err).Error("Browser failed to start")
		ui.PrintError("Failed to start browser", err.Error())
		return exitCode(1)
	}

	urls := job.urls
	if job.profileMode() {
		urls, err = collectProfile(ctx, sess, cfg, job.profile, creds, console, log)
		if err != nil {
			sess.Close()
			ui.PrintError("Failed to login. Exiting...", err.Error())
			return exitCode(1)
		}
	}
	if len(urls) == 0 {
		sess.Close()
		logger.LogComponentStop("browser", "no posts")
		fmt.Println("No posts to process!")
		return nil
	}

	batch, runErr := runBatch(ctx, sess, cfg, urls, log)
	logger.LogComponentStop("browser", "batch finished")

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	jsonPath, sheetURL, reportPath := persist(persistCtx, cfg, batch, job.worksheet, log)

	ui.PrintResults(os.Stdout, batch)
	ui.PrintDestinations(os.Stdout, jsonPath, sheetURL, reportPath)

	if notifications {
		ui.NewNotifier().RunComplete(batch)
	}

	if runErr != nil {
		log.WithError(runErr).Error("Run ended early")
		ui.PrintError("Run ended early", runErr.Error())
		return exitCode(1)
	}
	return nil
}

// resolveCredentials picks the account for profile mode: --account, the
// configured username, the default stored account, then a prompt
func resolveCredentials(cfg *config.Config, console *auth.TerminalPrompt) (browser.Credentials, error) {
	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Warn("Credential manager unavailable")
	}

	if manager != nil {
		var account *auth.Account
		switch {
		case accountName != "":
			account, err = manager.Retrieve(accountName)
			if err != nil {
				return browser.Credentials{}, fmt.Errorf("account %s not found, see 'igcaption auth list'", accountName)
			}
		case cfg.Instagram.Username != "":
			account, _ = manager.Retrieve(cfg.Instagram.Username)
		default:
			account, _ = manager.RetrieveDefault()
		}
		if account != nil {
			ui.PrintInfo("Using account", account.Username)
			return browser.Credentials{Username: account.Username, Password: account.Password}, nil
		}
	}

	username := cfg.Instagram.Username
	if username == "" {
		if username, err = console.ReadLine("Enter Instagram username: "); err != nil && username == "" {
			return browser.Credentials{}, fmt.Errorf("failed to read username: %w", err)
		}
	}
	password, err := console.ReadSecret("Enter Instagram password: ")
	if err != nil && password == "" {
		return browser.Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}
	if username == "" || password == "" {
		return browser.Credentials{}, errors.New("username and password are required")
	}
	return browser.Credentials{Username: username, Password: password}, nil
}

// collectProfile logs in and gathers the post links of profile
func collectProfile(ctx context.Context, sess *browser.Session, cfg *config.Config, profile string, creds browser.Credentials, console *auth.TerminalPrompt, log logger.Logger) ([]models.PostLink, error) {
	profileURL, err := browser.ProfileURL(cfg.Instagram.BaseURL, profile)
	if err != nil {
		return nil, err
	}

	err = browser.Login(ctx, sess, creds, browser.LoginOptions{
		BaseURL: cfg.Instagram.BaseURL,
		Timeout: cfg.Browser.LoginTimeout,
		Codes:   console,
	}, log)
	if err != nil {
		log.WithError(err).Error("Login failed")
		return nil, err
	}
	ui.PrintSuccess("Login successful!")

	fmt.Println("\nScraping post URLs from profile...")
	collector := scraper.NewCollector(sess, cfg.Collector, log)
	links := collector.Collect(ctx, profileURL)
	log.WithFields(map[string]interface{}{
		"profile": profileURL,
		"posts":   len(links),
		"reason":  collector.LastStopReason(),
	}).Info("Profile collection finished")
	fmt.Printf("\nFound %d posts\n", len(links))
	return links, nil
}

// runBatch drives the pipeline with either the line display or the
// full-screen view
func runBatch(ctx context.Context, sess *browser.Session, cfg *config.Config, urls []models.PostLink, log logger.Logger) (models.ScrapeBatch, error) {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	pacer := ratelimit.NewIntervalPacer(cfg.Pipeline.RequestInterval)

	var reporter scraper.Reporter
	var view *tui.TUI
	if useTUI {
		view = tui.NewTUI(cancelRun)
		view.Start()
		reporter = view
	} else {
		fmt.Println("\nProcessing posts...")
		reporter = ui.NewProgressDisplay(os.Stdout, !noColor, verbose)
	}

	pipeline := scraper.NewPipeline(sess, cfg.Extractor, pacer, reporter, log)
	if view != nil {
		view.Log("INFO", "Run %s: %d posts", pipeline.RunID(), len(urls))
	}
	batch, err := pipeline.Run(runCtx, urls)

	if view != nil {
		if werr := view.Wait(); werr != nil {
			log.WithError(werr).Warn("Terminal UI failed")
		}
		if view.Interrupted() {
			ui.PrintWarning("Stopped from the terminal UI")
		}
	}
	return batch, err
}

// persist writes the batch to every configured sink. Only the JSON file is
// required; the spreadsheet and report are best effort.
func persist(ctx context.Context, cfg *config.Config, batch models.ScrapeBatch, worksheet string, log logger.Logger) (jsonPath, sheetURL, reportPath string) {
	store, err := storage.NewManager(filepath.Dir(cfg.Output.File))
	if err == nil {
		jsonPath, err = store.SaveResults(filepath.Base(cfg.Output.File), batch)
	}
	logger.LogSinkWrite(log, "file", jsonPath, len(batch), err)
	if err != nil {
		ui.PrintError("Error saving JSON file", err.Error())
	}

	if cfg.Sheets.Enabled {
		sink, err := sheets.New(ctx, cfg.Sheets, log)
		if err != nil {
			log.WithError(err).Warn("Google Sheets unavailable")
			ui.PrintWarning("Error saving to Google Sheets", err.Error())
		} else {
			sheetURL = sheets.SaveOrWarn(ctx, sink, batch, worksheet, log)
			if sheetURL == "" {
				ui.PrintWarning("Error saving to Google Sheets, see the log for details")
			}
		}
	}

	if cfg.Output.Report != "" {
		title := fmt.Sprintf("igcaption run %s", time.Now().Format("2006-01-02 15:04"))
		err := report.Save(cfg.Output.Report, batch, title)
		logger.LogSinkWrite(log, "report", cfg.Output.Report, len(batch), err)
		if err != nil {
			ui.PrintWarning("Error writing report", err.Error())
		} else {
			reportPath = cfg.Output.Report
		}
	}
	return jsonPath, sheetURL, reportPath
}
