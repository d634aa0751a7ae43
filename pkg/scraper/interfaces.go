package scraper

import (
	"context"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/catalog"
	"afdscraper/pkg/progress"
)

// SiteClient defines the afdian API operations an export run needs
type SiteClient interface {
	Login(ctx context.Context, account, password string) error
	VerifyAccount(ctx context.Context) error
	ListCatalog(ctx context.Context, albumID string) (*afdian.CatalogData, error)
	FetchPostContent(ctx context.Context, postID, albumID string) (string, error)
}

// ProgressStore loads and extends the set of exported post identifiers
type ProgressStore interface {
	Load() (progress.Set, error)
	AppendCompleted(ids []string) error
}

// PostExporter converts a post and writes it under a directory
type PostExporter interface {
	Export(dirName, filename, html string) (string, error)
}

// Reporter is told the catalog size once it is listed, then about each post
// as the run goes
type Reporter interface {
	CatalogListed(total int)
	PostExported(ref catalog.PostRef, path string)
	PostSkipped(ref catalog.PostRef)
	PostFailed(ref catalog.PostRef, err error)
}

// Reporters fans every event out to each reporter in order
type Reporters []Reporter

func (rs Reporters) CatalogListed(total int) {
	for _, r := range rs {
		r.CatalogListed(total)
	}
}

func (rs Reporters) PostExported(ref catalog.PostRef, path string) {
	for _, r := range rs {
		r.PostExported(ref, path)
	}
}

func (rs Reporters) PostSkipped(ref catalog.PostRef) {
	for _, r := range rs {
		r.PostSkipped(ref)
	}
}

func (rs Reporters) PostFailed(ref catalog.PostRef, err error) {
	for _, r := range rs {
		r.PostFailed(ref, err)
	}
}

type nopReporter struct{}

func (nopReporter) CatalogListed(int)                    {}
func (nopReporter) PostExported(catalog.PostRef, string) {}
func (nopReporter) PostSkipped(catalog.PostRef)          {}
func (nopReporter) PostFailed(catalog.PostRef, error)    {}
