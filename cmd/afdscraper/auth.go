package main

import (
	"context"
	"fmt"
	"time"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/auth"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var skipVerify bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored afdian credentials",
	Long: `Manage stored afdian credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [account]",
	Short: "Store afdian credentials securely",
	Long: `Store an afdian account and password in the system keychain or an
encrypted file. The password is read without echo.

The credentials are checked against afdian before they are stored unless
--skip-verify is given.`,
	Example: `  # Interactive login
  afdscraper auth login

  # Login with account
  afdscraper auth login 13800000000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <account>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store without logging in to afdian first")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	auth.ShowCredentialGuide(ui.Output(), manager.Backends())

	creds := &auth.Credentials{}
	if len(args) > 0 {
		creds.Account = args[0]
	}
	if err := auth.NewPromptProvider().Fill(creds); err != nil {
		return err
	}
	if !creds.Complete() {
		return fmt.Errorf("%w: account and password are required", auth.ErrInvalidCredentials)
	}

	if !skipVerify {
		client, err := afdian.NewClient(cfg.Afdian.BaseURL, cfg.HTTP.Timeout, logger.GetLogger())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := client.Login(ctx, creds.Account, creds.Password); err != nil {
			return fmt.Errorf("afdian rejected the credentials: %w", err)
		}
		ui.PrintSuccess("Login verified")
	}

	backend, err := manager.Store(creds)
	if err != nil {
		return err
	}

	logger.WithField("account", creds.Account).WithField("backend", backend).Info("Credentials stored")
	ui.PrintSuccess(fmt.Sprintf("Credentials for %s stored in %s", creds.Account, backend))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Credentials for %s removed", args[0]))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	list, err := manager.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.PrintWarning("No stored accounts. Run 'afdscraper auth login' to add one.")
		return nil
	}

	ui.PrintHighlight("Stored accounts (newest first)")
	for _, creds := range list {
		masked := auth.Sanitize(creds)
		modified := "from environment"
		if !masked.LastModified.IsZero() {
			modified = masked.LastModified.Format(time.RFC3339)
		}
		ui.PrintInfo(masked.Account, fmt.Sprintf("password %s, %s", masked.Password, modified))
	}
	return nil
}
