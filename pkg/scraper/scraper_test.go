package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/auth"
	"afdscraper/pkg/catalog"
	apperrors "afdscraper/pkg/errors"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/progress"
	"afdscraper/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAfdianServer mimics the afdian endpoints used by an export run
type mockAfdianServer struct {
	server *httptest.Server

	mu           sync.Mutex
	failLogin    bool
	emptyCatalog bool
	failDetail   map[string]bool
	detailCalls  []string
	detailCookie string
}

func newMockAfdianServer(t *testing.T) *mockAfdianServer {
	t.Helper()
	m := &mockAfdianServer{failDetail: make(map[string]bool)}

	mux := http.NewServeMux()
	mux.HandleFunc(afdian.LoginEndpoint, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.failLogin {
			fmt.Fprint(w, `{"code":-1,"em":"wrong password"}`)
			return
		}
		fmt.Fprint(w, `{"ec":200,"data":{"auth_token":"tok-1"}}`)
	})
	mux.HandleFunc(afdian.AccountEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "session_id=s1; Expires=Thu, 10 Jun 2021 10:18:14 GMT; Path=/")
		fmt.Fprint(w, `{"code":0,"data":{"user":{"name":"reader"}}}`)
	})
	mux.HandleFunc(afdian.CatalogEndpoint, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.emptyCatalog {
			fmt.Fprint(w, `{"ec":200,"data":{}}`)
			return
		}
		fmt.Fprint(w, `{"ec":200,"data":{"list":[{"post_id":"p1","title":"Chapter 1"},{"post_id":"p2","title":"Chapter 2"}]}}`)
	})
	mux.HandleFunc(afdian.DetailEndpoint, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		postID := r.URL.Query().Get("post_id")
		m.detailCalls = append(m.detailCalls, postID)
		m.detailCookie = r.Header.Get("Cookie")
		if m.failDetail[postID] {
			fmt.Fprint(w, `{"ec":500,"em":"post not found"}`)
			return
		}
		fmt.Fprintf(w, `{"ec":200,"data":{"post":{"content":"<h1>%s</h1><p>Hello <b>world</b></p>"}}}`, postID)
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

type runFixture struct {
	scraper      *Scraper
	outputDir    string
	progressPath string
}

func newRunFixture(t *testing.T, m *mockAfdianServer) *runFixture {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewNopLogger()

	client, err := afdian.NewClient(m.server.URL, 5*time.Second, log)
	require.NoError(t, err)

	f := &runFixture{
		outputDir:    filepath.Join(dir, "9adgq"),
		progressPath: filepath.Join(dir, "finished.txt"),
	}
	f.scraper, err = New(
		client,
		progress.NewStore(f.progressPath, log),
		storage.NewExporter(nil, log),
		auth.StaticProvider{Account: "13800000000", Password: "pw"},
		Options{AlbumID: "album-1", OutputDir: f.outputDir},
		log,
	)
	require.NoError(t, err)
	return f
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Fields(string(data))
}

func TestRunExportsAlbum(t *testing.T) {
	m := newMockAfdianServer(t)
	f := newRunFixture(t, m)

	require.NoError(t, f.scraper.Run(context.Background()))

	assert.Equal(t, StateDone, f.scraper.State())
	for _, name := range []string{"Chapter 1.md", "Chapter 2.md"} {
		content, err := os.ReadFile(filepath.Join(f.outputDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(content), "Hello **world**")
	}
	assert.Equal(t, []string{"p1", "p2"}, readLines(t, f.progressPath))

	assert.Contains(t, m.detailCookie, "auth_token=tok-1")
	assert.Contains(t, m.detailCookie, "session_id=s1")

	summary := f.scraper.Summary()
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Exported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, "album-1", summary.AlbumID)
}

func TestRunSkipsCompletedPosts(t *testing.T) {
	m := newMockAfdianServer(t)
	f := newRunFixture(t, m)
	require.NoError(t, os.WriteFile(f.progressPath, []byte("p1\n"), 0644))

	require.NoError(t, f.scraper.Run(context.Background()))

	assert.Equal(t, []string{"p2"}, m.detailCalls)
	assert.NoFileExists(t, filepath.Join(f.outputDir, "Chapter 1.md"))
	assert.FileExists(t, filepath.Join(f.outputDir, "Chapter 2.md"))
	assert.Equal(t, []string{"p1", "p2"}, readLines(t, f.progressPath))
	assert.Equal(t, 1, f.scraper.Summary().Skipped)
}

func TestRunFlushesProgressOnPostFailure(t *testing.T) {
	m := newMockAfdianServer(t)
	m.failDetail["p2"] = true
	f := newRunFixture(t, m)

	err := f.scraper.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsRequestError(err))
	assert.Contains(t, err.Error(), "post not found")

	assert.Equal(t, StateFailed, f.scraper.State())
	assert.FileExists(t, filepath.Join(f.outputDir, "Chapter 1.md"))
	assert.Equal(t, []string{"p1"}, readLines(t, f.progressPath))
	assert.Equal(t, 1, f.scraper.Summary().Failed)

	// The next run picks up where the failed one stopped.
	m.failDetail["p2"] = false
	m.detailCalls = nil
	next := newRunFixture(t, m)
	next.scraper.opts.OutputDir = f.outputDir
	next.scraper.progress = progress.NewStore(f.progressPath, logger.NewNopLogger())
	require.NoError(t, next.scraper.Run(context.Background()))
	assert.Equal(t, []string{"p2"}, m.detailCalls)
	assert.Equal(t, []string{"p1", "p2"}, readLines(t, f.progressPath))
}

func TestRunLoginFailure(t *testing.T) {
	m := newMockAfdianServer(t)
	m.failLogin = true
	f := newRunFixture(t, m)

	err := f.scraper.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsRequestError(err))
	assert.Equal(t, StateFailed, f.scraper.State())
	assert.NoFileExists(t, f.progressPath)
	assert.Empty(t, m.detailCalls)
}

func TestRunEmptyCatalog(t *testing.T) {
	m := newMockAfdianServer(t)
	m.emptyCatalog = true
	f := newRunFixture(t, m)

	err := f.scraper.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotValue(err))
	assert.NoDirExists(t, f.outputDir)
}

// stubClient serves canned responses without HTTP
type stubClient struct {
	catalog    *afdian.CatalogData
	content    map[string]string
	loginErr   error
	catalogErr error
	fetched    []string
	account    string
	password   string
}

func (s *stubClient) Login(ctx context.Context, account, password string) error {
	s.account, s.password = account, password
	return s.loginErr
}

func (s *stubClient) VerifyAccount(ctx context.Context) error { return nil }

func (s *stubClient) ListCatalog(ctx context.Context, albumID string) (*afdian.CatalogData, error) {
	return s.catalog, s.catalogErr
}

func (s *stubClient) FetchPostContent(ctx context.Context, postID, albumID string) (string, error) {
	s.fetched = append(s.fetched, postID)
	return s.content[postID], nil
}

func newCatalog(entries ...afdian.CatalogEntry) *afdian.CatalogData {
	return &afdian.CatalogData{List: entries}
}

// memoryStore is a ProgressStore kept in memory
type memoryStore struct {
	initial   []string
	appended  [][]string
	loadErr   error
	appendErr error
}

func (m *memoryStore) Load() (progress.Set, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	set := make(progress.Set)
	for _, id := range m.initial {
		set.Add(id)
	}
	return set, nil
}

func (m *memoryStore) AppendCompleted(ids []string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, append([]string(nil), ids...))
	return nil
}

type recordingReporter struct {
	total    int
	exported []string
	skipped  []string
	failed   []string
}

func (r *recordingReporter) CatalogListed(total int) {
	r.total = total
}

func (r *recordingReporter) PostExported(ref catalog.PostRef, path string) {
	r.exported = append(r.exported, ref.ID)
}

func (r *recordingReporter) PostSkipped(ref catalog.PostRef) {
	r.skipped = append(r.skipped, ref.ID)
}

func (r *recordingReporter) PostFailed(ref catalog.PostRef, err error) {
	r.failed = append(r.failed, ref.ID)
}

func newStubScraper(t *testing.T, client SiteClient, store ProgressStore, provider auth.Provider) (*Scraper, string) {
	t.Helper()
	outputDir := filepath.Join(t.TempDir(), "out")
	s, err := New(client, store, storage.NewExporter(nil, logger.NewNopLogger()), provider,
		Options{AlbumID: "album-1", OutputDir: outputDir}, logger.NewTestLogger())
	require.NoError(t, err)
	return s, outputDir
}

func TestRunTitleFallsBackToPostID(t *testing.T) {
	client := &stubClient{
		catalog: newCatalog(afdian.CatalogEntry{PostID: "p9", Title: "//??"}),
		content: map[string]string{"p9": "<p>body</p>"},
	}
	s, outputDir := newStubScraper(t, client, &memoryStore{}, auth.StaticProvider{Account: "a", Password: "p"})

	require.NoError(t, s.Run(context.Background()))
	assert.FileExists(t, filepath.Join(outputDir, "p9.md"))
}

func TestRunDuplicateCatalogEntriesExportOnce(t *testing.T) {
	client := &stubClient{
		catalog: newCatalog(
			afdian.CatalogEntry{PostID: "p1", Title: "One"},
			afdian.CatalogEntry{PostID: "p1", Title: "One"},
		),
		content: map[string]string{"p1": "<p>one</p>"},
	}
	store := &memoryStore{}
	reporter := &recordingReporter{}
	second := &recordingReporter{}
	s, _ := newStubScraper(t, client, store, auth.StaticProvider{Account: "a", Password: "p"})
	s.SetReporter(Reporters{reporter, second})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 2, reporter.total)
	assert.Equal(t, reporter, second)
	assert.Equal(t, []string{"p1"}, client.fetched)
	assert.Equal(t, [][]string{{"p1"}}, store.appended)
	assert.Equal(t, []string{"p1"}, reporter.exported)
	assert.Equal(t, []string{"p1"}, reporter.skipped)
}

func TestRunResolvesCredentialsThroughProvider(t *testing.T) {
	manager, _ := auth.NewMockManager()
	_, err := manager.Store(&auth.Credentials{Account: "stored", Password: "secret"})
	require.NoError(t, err)

	client := &stubClient{catalog: newCatalog()}
	provider := auth.Chain{auth.StaticProvider{}, auth.StoreProvider{Store: manager}}
	s, _ := newStubScraper(t, client, &memoryStore{}, provider)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "stored", client.account)
	assert.Equal(t, "secret", client.password)
}

func TestRunMissingCredentials(t *testing.T) {
	client := &stubClient{catalog: newCatalog()}
	s, _ := newStubScraper(t, client, &memoryStore{}, auth.StaticProvider{})

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, auth.ErrCredentialsNotFound)
	assert.Empty(t, client.account)
	assert.Equal(t, StateFailed, s.State())
}

func TestRunProgressLoadFailureStopsBeforeNetwork(t *testing.T) {
	client := &stubClient{catalog: newCatalog()}
	s, _ := newStubScraper(t, client, &memoryStore{loadErr: errors.New("permission denied")}, auth.StaticProvider{Account: "a", Password: "p"})

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Empty(t, client.account)
}

func TestRunPersistFailureFailsRun(t *testing.T) {
	client := &stubClient{
		catalog: newCatalog(afdian.CatalogEntry{PostID: "p1", Title: "One"}),
		content: map[string]string{"p1": "<p>one</p>"},
	}
	s, _ := newStubScraper(t, client, &memoryStore{appendErr: errors.New("disk full")}, auth.StaticProvider{Account: "a", Password: "p"})

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, StateFailed, s.State())
}

func TestRunCatalogFailureLogsAndFails(t *testing.T) {
	client := &stubClient{catalogErr: apperrors.NewNotValueError(200, "empty", `{"data":{}}`)}
	outputDir := filepath.Join(t.TempDir(), "out")
	log := logger.NewTestLogger()
	s, err := New(client, &memoryStore{}, storage.NewExporter(nil, logger.NewNopLogger()),
		auth.StaticProvider{Account: "a", Password: "p"}, Options{AlbumID: "album-1", OutputDir: outputDir}, log)
	require.NoError(t, err)

	err = s.Run(context.Background())
	assert.True(t, apperrors.IsNotValue(err))
	assert.True(t, log.HasMessage("Export run failed"))
}

func TestRunOnlyOnce(t *testing.T) {
	client := &stubClient{catalog: newCatalog()}
	s, _ := newStubScraper(t, client, &memoryStore{}, auth.StaticProvider{Account: "a", Password: "p"})

	require.NoError(t, s.Run(context.Background()))
	assert.ErrorIs(t, s.Run(context.Background()), ErrAlreadyRun)
}

func TestNewValidation(t *testing.T) {
	exporter := storage.NewExporter(nil, logger.NewNopLogger())
	provider := auth.StaticProvider{Account: "a", Password: "p"}

	_, err := New(&stubClient{}, &memoryStore{}, exporter, provider, Options{OutputDir: "out"}, nil)
	assert.Error(t, err)
	_, err = New(&stubClient{}, &memoryStore{}, exporter, provider, Options{AlbumID: "a"}, nil)
	assert.Error(t, err)
	_, err = New(nil, &memoryStore{}, exporter, provider, Options{AlbumID: "a", OutputDir: "out"}, nil)
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "listing_catalog", StateListingCatalog.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(42)", State(42).String())
}
