package ui

import (
	"fmt"
	"sync"
	"time"

	"afdscraper/pkg/catalog"
)

// ExportDisplay prints one line per exported post and a closing summary.
// Skipped posts are only listed in verbose mode.
type ExportDisplay struct {
	mu        sync.Mutex
	albumID   string
	exported  int
	skipped   int
	failed    int
	startTime time.Time
	verbose   bool
	postLines bool
}

// NewExportDisplay creates a display for one album export
func NewExportDisplay(albumID string, verbose bool) *ExportDisplay {
	return &ExportDisplay{
		albumID:   albumID,
		startTime: time.Now(),
		verbose:   verbose,
		postLines: true,
	}
}

// SetPostLines turns the per-post lines on or off. Counting goes on either
// way, so Complete still reports the totals.
func (p *ExportDisplay) SetPostLines(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postLines = enabled
}

// CatalogListed prints how many posts the album holds
func (p *ExportDisplay) CatalogListed(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.postLines {
		printf("%s %s\n", render(labelStyle, "Posts:"), render(valueStyle, fmt.Sprintf("%d", total)))
	}
}

// PostExported prints the saved file path
func (p *ExportDisplay) PostExported(ref catalog.PostRef, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.exported++
	if p.postLines {
		printf("%s %s\n", render(successStyle, "✓"), path)
	}
}

// PostSkipped records a post that was exported by an earlier run
func (p *ExportDisplay) PostSkipped(ref catalog.PostRef) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.skipped++
	if p.postLines && p.verbose {
		printf("%s %s %s\n", render(dimStyle, "•"), ref.Title, render(dimStyle, "(already exported)"))
	}
}

// PostFailed marks the post that stopped the run. The error itself is
// reported once by the caller of the run.
func (p *ExportDisplay) PostFailed(ref catalog.PostRef, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed++
	if p.postLines {
		printf("%s %s (%s)\n", render(errorStyle, "✗"), ref.Title, ref.ID)
	}
}

// Counts returns the exported, skipped and failed totals seen so far
func (p *ExportDisplay) Counts() (exported, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exported, p.skipped, p.failed
}

// Complete prints the run summary
func (p *ExportDisplay) Complete(outputDir string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	printf("\n%s Exported %d posts from album %s to %s\n",
		render(successStyle, "✓"),
		p.exported,
		p.albumID,
		outputDir,
	)
	if p.skipped > 0 {
		printf("  %s %d already exported\n", render(dimStyle, "•"), p.skipped)
	}
	if p.failed > 0 {
		printf("  %s %d failed\n", render(dimStyle, "•"), p.failed)
	}
	printf("  %s finished in %s\n", render(dimStyle, "•"), FormatDuration(elapsed))
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
