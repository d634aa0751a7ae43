package main

import (
	"errors"
	"fmt"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/catalog"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/ratelimit"
	"afdscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var userID string

// albumsCmd represents the albums command
var albumsCmd = &cobra.Command{
	Use:   "albums [user_id]",
	Short: "List the albums a creator publishes into",
	Long: `List the album ids found on the first page of a creator's posts.

Only the ten most recent posts are inspected, so albums the creator has not
posted into lately may be missing.`,
	Example: `  # List albums of a creator
  afdscraper albums 3f49234e3e8f11eb8f6152540025c377

  # Then export one of them
  afdscraper export --album-id <album_id>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAlbums,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	albumsCmd.Flags().StringVar(&userID, "user-id", "", "creator user id (alternative to the argument)")
}

func runAlbums(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		userID = args[0]
		if err := cmd.Flags().Set("user-id", args[0]); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Afdian.UserID == "" {
		return errors.New("user id is required: pass it as an argument, --user-id or afdian.user_id")
	}

	log := logger.GetLogger()
	client, err := afdian.NewClient(cfg.Afdian.BaseURL, cfg.HTTP.Timeout, log)
	if err != nil {
		return fmt.Errorf("failed to create afdian client: %w", err)
	}
	if cfg.Afdian.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Afdian.UserAgent)
	}
	client.SetLimiter(ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute))

	albums, err := catalog.NewAlbumDiscoverer(client, log).Discover(cmd.Context(), cfg.Afdian.UserID)
	if err != nil {
		return err
	}

	if len(albums) == 0 {
		ui.PrintWarning("No albums found in the latest posts of", cfg.Afdian.UserID)
		return nil
	}
	for _, id := range albums {
		fmt.Fprintln(ui.Output(), id)
	}
	return nil
}
