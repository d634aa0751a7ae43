package main

import (
	"fmt"
	"os"
	"runtime"

	"afdscraper/pkg/config"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile        string
	logLevel          string
	logFile           string
	baseURL           string
	outputDir         string
	progressFile      string
	timeout           string
	requestsPerMinute int
	noColor           bool
	quiet             bool
	verbose           bool
)

// rootCmd represents the base command. Without a subcommand it runs export.
var rootCmd = &cobra.Command{
	Use:   "afdscraper",
	Short: "Export an afdian album to Markdown files",
	Long: `afdscraper logs into afdian, lists the posts of an album and saves each
post as a Markdown file.

Features:
  - Resumable exports: exported posts are recorded in a progress file
  - Secure credential storage using the system keychain
  - Request pacing to stay polite with the API
  - Layered configuration: YAML file, .env, environment and flags`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetNoColor(noColor)
		ui.SetQuietMode(quiet)

		if cmd.Name() == "afdscraper" || cmd.Name() == "export" {
			ui.PrintLogo()
		}
	},
	RunE: runExport,
}

// Execute runs the root command and exits 1 on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		ui.PrintError("Error", err)
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default is ./.afdscraper.yaml or ~/.config/afdscraper/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "also write logs to this file")
	pf.StringVar(&baseURL, "base-url", "", "afdian site URL")
	pf.StringVarP(&outputDir, "output", "o", "", "directory the Markdown files are written to")
	pf.StringVar(&progressFile, "progress-file", "", "file recording exported post ids")
	pf.StringVar(&timeout, "timeout", "", "HTTP timeout, e.g. 30s (0 disables)")
	pf.IntVar(&requestsPerMinute, "requests-per-minute", 0, "request pacing, default 60 (0 disables)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVarP(&verbose, "verbose", "v", false, "list skipped posts too")

	addExportFlags(rootCmd)

	rootCmd.SetVersionTemplate(`afdscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// collectFlags gathers the flags the user set into the map config.Load merges
func collectFlags(cmd *cobra.Command) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = value
		}
	}

	set("log-level", logLevel)
	set("log-file", logFile)
	set("base-url", baseURL)
	set("output", outputDir)
	set("progress-file", progressFile)
	set("requests-per-minute", requestsPerMinute)
	set("album-id", albumID)
	set("account", account)
	set("user-id", userID)

	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		d, err := parseTimeout(timeout)
		if err != nil {
			return nil, err
		}
		flags["timeout"] = d
	}
	return flags, nil
}

// loadConfig loads the layered configuration and starts the global logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags, err := collectFlags(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	logger.Version = version
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
