package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/errors"
	"afdscraper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	data  *afdian.PostListData
	err   error
	calls int
}

func (s *stubLister) FetchUserPosts(ctx context.Context, userID string) (*afdian.PostListData, error) {
	s.calls++
	return s.data, s.err
}

func TestDiscoverDedupsInFirstSeenOrder(t *testing.T) {
	lister := &stubLister{data: &afdian.PostListData{List: []afdian.PostSummary{
		{PostID: "p1", Albums: []afdian.AlbumRef{{AlbumID: "b"}, {AlbumID: "a"}}},
		{PostID: "p2", Albums: []afdian.AlbumRef{{AlbumID: "a"}, {AlbumID: ""}, {AlbumID: "c"}}},
		{PostID: "p3"},
	}}}

	albums, err := NewAlbumDiscoverer(lister, logger.NewNopLogger()).Discover(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, albums)
	assert.Equal(t, 1, lister.calls)
}

func TestDiscoverEmptyList(t *testing.T) {
	tl := logger.NewTestLogger()
	albums, err := NewAlbumDiscoverer(&stubLister{data: &afdian.PostListData{}}, tl).Discover(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, albums)
	assert.NotNil(t, albums)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
}

func TestDiscoverPropagatesError(t *testing.T) {
	lister := &stubLister{err: errors.NewRequestError(500, "post list request failed", "boom")}

	_, err := NewAlbumDiscoverer(lister, logger.NewNopLogger()).Discover(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.IsRequestError(err))
}

func TestDiscoverAgainstServer(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, afdian.PostListEndpoint, r.URL.Path)
		fmt.Fprint(w, `{"ec":200,"data":{"list":[
			{"post_id":"p1","albums":[{"album_id":"x1"}]},
			{"post_id":"p2","albums":[{"album_id":"x2"},{"album_id":"x1"}]}
		]}}`)
	}))
	defer server.Close()

	client, err := afdian.NewClient(server.URL, time.Second, logger.NewNopLogger())
	require.NoError(t, err)

	albums, err := NewAlbumDiscoverer(client, logger.NewNopLogger()).Discover(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, albums)
	assert.Equal(t, 1, requests)
}
