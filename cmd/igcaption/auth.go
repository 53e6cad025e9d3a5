package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"igcaption/internal/browser"
	"igcaption/pkg/auth"
	"igcaption/pkg/config"
	"igcaption/pkg/logger"
	"igcaption/pkg/ui"
)

var verifyLogin bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram accounts used for profile mode",
	Long: `Manage the Instagram accounts profile mode logs in with.

Accounts are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables IGCAPTION_USERNAME / IGCAPTION_PASSWORD (read only)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store an Instagram account securely",
	Long: `Store an Instagram username and password in the system keychain or the
encrypted credentials file.

With --verify a browser is opened and the login is tried right away,
including the verification code step when Instagram asks for one.`,
	Example: `  # Interactive login
  igcaption auth login

  # Store and check an account
  igcaption auth login myaccount --verify`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored accounts",
	Long: `Remove stored Instagram accounts.

If no username is provided, you will be shown a list of stored accounts
to choose from. You can also remove all accounts at once.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Instagram accounts with masked passwords, newest first.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&verifyLogin, "verify", false, "log in with a browser after storing the account")
}

func newManager() *auth.Manager {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}
	return manager
}

func runLogin(cmd *cobra.Command, args []string) {
	manager := newManager()
	console := auth.NewTerminalPrompt(bufio.NewReader(os.Stdin), os.Stdout)

	auth.ShowLoginGuide(os.Stdout)

	var username string
	if len(args) > 0 {
		username = strings.TrimSpace(args[0])
	}
	if username == "" {
		username, _ = console.ReadLine("📱 Instagram username: ")
	}
	if username == "" {
		ui.PrintError("Username is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		answer, _ := console.ReadLine(fmt.Sprintf("\n⚠️  Account '%s' already exists. Update password? (y/N): ", username))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return
		}
	}

	password, err := console.ReadSecret("🔐 Password (hidden): ")
	if err != nil {
		ui.PrintError("Failed to read password", err.Error())
		os.Exit(1)
	}

	account := &auth.Account{Username: username, Password: password}
	fmt.Println("\n💾 Storing credentials securely...")
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", username))

	if verifyLogin {
		if err := checkLogin(account, console); err != nil {
			ui.PrintError("Login check failed", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Login successful!")
	}

	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Extract the captions of a profile:")
	fmt.Println("   $ igcaption scrape --profile <instagram_username>")
	fmt.Println("\n   Use this account explicitly:")
	fmt.Printf("   $ igcaption scrape --profile <instagram_username> --account %s\n", username)
	fmt.Println("\n⚠️  Never share your credentials or config files!")
}

// checkLogin opens a browser and logs in with account
func checkLogin(account *auth.Account, console *auth.TerminalPrompt) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := browser.New(ctx, cfg.Browser, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	return browser.Login(ctx, sess, browser.Credentials{
		Username: account.Username,
		Password: account.Password,
	}, browser.LoginOptions{
		BaseURL: cfg.Instagram.BaseURL,
		Timeout: cfg.Browser.LoginTimeout,
		Codes:   console,
	}, log)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager := newManager()

	if len(args) > 0 {
		removeAccount(manager, args[0])
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintError("No stored accounts found")
		return
	}

	console := auth.NewTerminalPrompt(bufio.NewReader(os.Stdin), os.Stdout)

	if len(accounts) == 1 {
		account := accounts[0]
		answer, _ := console.ReadLine(fmt.Sprintf("Remove account '%s'? (y/N): ", account.Username))
		if strings.HasPrefix(strings.ToLower(answer), "y") {
			removeAccount(manager, account.Username)
		}
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Username)
	}
	fmt.Printf("  %d. Remove all accounts\n", len(accounts)+1)
	fmt.Printf("  0. Cancel\n\n")

	input, _ := console.ReadLine("Choice: ")
	choice, err := strconv.Atoi(input)
	switch {
	case err != nil || choice < 0 || choice > len(accounts)+1:
		ui.PrintError("Invalid choice")
		os.Exit(1)
	case choice == 0:
		return
	case choice == len(accounts)+1:
		confirm, _ := console.ReadLine("Remove ALL accounts? This cannot be undone! (yes/N): ")
		if confirm != "yes" {
			return
		}
		for _, account := range accounts {
			removeAccount(manager, account.Username)
		}
	default:
		removeAccount(manager, accounts[choice-1].Username)
	}
}

func removeAccount(manager *auth.Manager, username string) {
	if err := manager.Delete(username); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + username)
}

func runList(cmd *cobra.Command, args []string) {
	accounts, err := newManager().List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'igcaption auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Printf("   Password: %s\n", sanitized.Password)
		if !sanitized.LastModified.IsZero() {
			fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
}
