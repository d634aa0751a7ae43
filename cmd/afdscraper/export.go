package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"afdscraper/pkg/auth"
	"afdscraper/pkg/config"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/progress"
	"afdscraper/pkg/scraper"
	"afdscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Export command flags
	albumID      string
	account      string
	forceRestart bool
	notify       bool
	plain        bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the posts of an album to Markdown",
	Long: `Log into afdian, list the posts of an album and save each post as a
Markdown file named after its title.

Posts recorded in the progress file are skipped, so an interrupted export can
simply be run again. Credentials are taken from, in order:
  - --account flag, config file or AFDSCRAPER_ACCOUNT / AFDSCRAPER_PASSWORD
  - stored credentials (use 'afdscraper auth login' to store)
  - an interactive prompt`,
	Example: `  # Export an album to the default directory
  afdscraper export --album-id 9adgq...

  # Export to a specific directory using a stored account
  afdscraper export --album-id 9adgq... --output ./novel --account 13800000000

  # Start over, exporting every post again
  afdscraper export --album-id 9adgq... --force-restart`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
}

// addExportFlags registers the export flags on cmd. The root command carries
// them too, since export is its default action.
func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&albumID, "album-id", "", "id of the album to export")
	cmd.Flags().StringVarP(&account, "account", "a", "", "afdian account (phone number or e-mail)")
	cmd.Flags().BoolVar(&forceRestart, "force-restart", false, "clear the progress file and export every post")
	cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the export ends")
	cmd.Flags().BoolVar(&plain, "plain", false, "print one line per post instead of the progress bar")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	if cfg.Afdian.AlbumID == "" {
		return errors.New("album id is required: use --album-id, afdian.album_id or AFDSCRAPER_ALBUM_ID")
	}

	if forceRestart {
		store := progress.NewStore(cfg.Output.ProgressFile, log)
		if err := store.Reset(); err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		ui.PrintInfo("Force restart", "progress file cleared")
	}

	s, err := scraper.NewFromConfig(cfg, credentialProvider(cfg), log)
	if err != nil {
		return err
	}

	display := ui.NewExportDisplay(cfg.Afdian.AlbumID, verbose)
	var dashboard *ui.Dashboard
	if useDashboard() {
		dashboard = ui.NewDashboard(cfg.Afdian.AlbumID, ui.Output())
		display.SetPostLines(false)
		s.SetReporter(scraper.Reporters{display, dashboard})
	} else {
		s.SetReporter(display)
	}
	notifier := ui.NewNotifier(notify)

	ui.PrintInfo("Album", cfg.Afdian.AlbumID)
	ui.PrintInfo("Output", cfg.Output.Directory)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := s.Run(ctx)
	if dashboard != nil {
		if err := dashboard.Stop(); err != nil {
			log.WithError(err).Warn("Progress bar stopped with an error")
		}
	}
	if runErr != nil {
		notifier.SendError("afdian export failed", runErr.Error())
		return runErr
	}

	summary := s.Summary()
	display.Complete(cfg.Output.Directory)
	notifier.SendSuccess("afdian export finished",
		fmt.Sprintf("%d posts exported, %d already present", summary.Exported, summary.Skipped))
	return nil
}

// useDashboard reports whether the progress bar replaces the per-post lines:
// only on an interactive stdout, and not with --plain, --quiet or --verbose.
func useDashboard() bool {
	if plain || verbose || ui.IsQuietMode() {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// credentialProvider builds the lookup chain: configuration, stored
// credentials, then a prompt when stdin is a terminal.
func credentialProvider(cfg *config.Config) auth.Provider {
	chain := auth.Chain{
		auth.StaticProvider{Account: cfg.Afdian.Account, Password: cfg.Afdian.Password},
	}

	if manager, err := auth.NewManager(); err == nil {
		chain = append(chain, auth.StoreProvider{Store: manager})
	} else {
		logger.WithError(err).Warn("Credential store unavailable")
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		chain = append(chain, auth.NewPromptProvider())
	}
	return chain
}
