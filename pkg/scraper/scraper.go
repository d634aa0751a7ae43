package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/auth"
	"afdscraper/pkg/catalog"
	"afdscraper/pkg/config"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/progress"
	"afdscraper/pkg/ratelimit"
	"afdscraper/pkg/storage"
)

// State is the step an export run is in
type State int

const (
	StateIdle State = iota
	StateLoggingIn
	StateAuthenticating
	StateListingCatalog
	StateExportingPosts
	StatePersistingProgress
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoggingIn:
		return "logging_in"
	case StateAuthenticating:
		return "authenticating"
	case StateListingCatalog:
		return "listing_catalog"
	case StateExportingPosts:
		return "exporting_posts"
	case StatePersistingProgress:
		return "persisting_progress"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrAlreadyRun is returned when Run is called on a Scraper that has left Idle
var ErrAlreadyRun = errors.New("export run already started")

// Options selects what a run exports and where to
type Options struct {
	AlbumID   string
	OutputDir string
}

// Summary reports the outcome of a run
type Summary struct {
	AlbumID   string
	OutputDir string
	Total     int
	Exported  int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Scraper orchestrates one album export
type Scraper struct {
	client      SiteClient
	progress    ProgressStore
	exporter    PostExporter
	credentials auth.Provider
	reporter    Reporter
	logger      logger.Logger
	opts        Options

	state     State
	completed progress.Set
	pending   []string
	summary   Summary
}

// New creates a Scraper from its collaborators
func New(client SiteClient, store ProgressStore, exporter PostExporter, credentials auth.Provider, opts Options, log logger.Logger) (*Scraper, error) {
	if client == nil || store == nil || exporter == nil || credentials == nil {
		return nil, errors.New("client, progress store, exporter and credentials are required")
	}
	if opts.AlbumID == "" {
		return nil, errors.New("album id is required")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scraper{
		client:      client,
		progress:    store,
		exporter:    exporter,
		credentials: credentials,
		reporter:    nopReporter{},
		logger:      log.WithField("album_id", opts.AlbumID),
		opts:        opts,
		state:       StateIdle,
		summary:     Summary{AlbumID: opts.AlbumID, OutputDir: opts.OutputDir},
	}, nil
}

// NewFromConfig wires a Scraper against the live afdian API described by cfg
func NewFromConfig(cfg *config.Config, credentials auth.Provider, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	client, err := afdian.NewClient(cfg.Afdian.BaseURL, cfg.HTTP.Timeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create afdian client: %w", err)
	}
	if cfg.Afdian.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Afdian.UserAgent)
	}
	client.SetLimiter(ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute))

	return New(
		client,
		progress.NewStore(cfg.Output.ProgressFile, log),
		storage.NewExporter(nil, log),
		credentials,
		Options{AlbumID: cfg.Afdian.AlbumID, OutputDir: cfg.Output.Directory},
		log,
	)
}

// SetReporter installs r to be told about each post
func (s *Scraper) SetReporter(r Reporter) {
	if r == nil {
		r = nopReporter{}
	}
	s.reporter = r
}

// State returns the current state
func (s *Scraper) State() State {
	return s.state
}

// Summary returns the counts of the run so far
func (s *Scraper) Summary() Summary {
	return s.summary
}

// Run performs the export. On any failure after the progress file has been
// read, posts exported so far are written to it before the error is returned.
func (s *Scraper) Run(ctx context.Context) error {
	if s.state != StateIdle {
		return ErrAlreadyRun
	}
	start := time.Now()
	defer func() { s.summary.Elapsed = time.Since(start) }()

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"output_dir": s.opts.OutputDir,
	})

	completed, err := s.progress.Load()
	if err != nil {
		return s.fail(fmt.Errorf("failed to load progress: %w", err))
	}
	s.completed = completed

	creds, err := auth.Resolve(s.credentials)
	if err != nil {
		return s.fail(fmt.Errorf("failed to resolve credentials: %w", err))
	}

	s.setState(StateLoggingIn)
	if err := s.client.Login(ctx, creds.Account, creds.Password); err != nil {
		return s.abort(fmt.Errorf("login failed: %w", err))
	}

	s.setState(StateAuthenticating)
	if err := s.client.VerifyAccount(ctx); err != nil {
		return s.abort(fmt.Errorf("account verification failed: %w", err))
	}

	s.setState(StateListingCatalog)
	data, err := s.client.ListCatalog(ctx, s.opts.AlbumID)
	if err != nil {
		return s.abort(fmt.Errorf("failed to list catalog: %w", err))
	}
	refs := catalog.Walk(data)
	s.summary.Total = len(refs)
	s.logger.InfoWithFields("Catalog listed", map[string]interface{}{
		"posts":     len(refs),
		"completed": len(s.completed),
	})
	s.reporter.CatalogListed(len(refs))

	s.setState(StateExportingPosts)
	for _, ref := range refs {
		if err := s.exportPost(ctx, ref); err != nil {
			s.summary.Failed++
			s.reporter.PostFailed(ref, err)
			return s.abort(err)
		}
	}

	s.setState(StatePersistingProgress)
	if err := s.flush(); err != nil {
		return s.fail(err)
	}

	s.setState(StateDone)
	logger.LogRunSummary(s.logger, s.opts.AlbumID, s.summary.Exported, s.summary.Skipped, s.summary.Failed, time.Since(start))
	logger.LogComponentStop(s.logger, "scraper", "completed")
	return nil
}

func (s *Scraper) exportPost(ctx context.Context, ref catalog.PostRef) error {
	if s.completed.Has(ref.ID) {
		s.summary.Skipped++
		s.reporter.PostSkipped(ref)
		s.logger.DebugWithFields("Skipping exported post", map[string]interface{}{
			"post_id": ref.ID,
		})
		return nil
	}

	html, err := s.client.FetchPostContent(ctx, ref.ID, s.opts.AlbumID)
	if err != nil {
		logger.LogExport(s.logger, ref.ID, ref.Title, "", err)
		return fmt.Errorf("failed to fetch post %s: %w", ref.ID, err)
	}

	name := ref.Title
	if storage.SanitizeFilename(name) == "" {
		name = ref.ID
	}

	path, err := s.exporter.Export(s.opts.OutputDir, name, html)
	logger.LogExport(s.logger, ref.ID, ref.Title, path, err)
	if err != nil {
		return fmt.Errorf("failed to export post %s: %w", ref.ID, err)
	}

	s.completed.Add(ref.ID)
	s.pending = append(s.pending, ref.ID)
	s.summary.Exported++
	s.reporter.PostExported(ref, path)
	return nil
}

// flush appends the identifiers exported since the last flush
func (s *Scraper) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.progress.AppendCompleted(s.pending); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	s.pending = nil
	return nil
}

// abort saves progress best-effort and fails the run with err
func (s *Scraper) abort(err error) error {
	if flushErr := s.flush(); flushErr != nil {
		s.logger.WithError(flushErr).Error("Failed to save progress after error")
	}
	return s.fail(err)
}

func (s *Scraper) fail(err error) error {
	from := s.state
	s.state = StateFailed
	s.logger.WithError(err).ErrorWithFields("Export run failed", map[string]interface{}{
		"state": from.String(),
	})
	logger.LogComponentStop(s.logger, "scraper", "failed")
	return err
}

func (s *Scraper) setState(state State) {
	s.logger.DebugWithFields("State changed", map[string]interface{}{
		"from": s.state.String(),
		"to":   state.String(),
	})
	s.state = state
}
