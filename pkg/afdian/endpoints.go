package afdian

import (
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the public afdian site
	DefaultBaseURL = "https://afdian.com"

	// LoginEndpoint exchanges an account and password for an auth token
	LoginEndpoint = "/api/passport/login"

	// AccountEndpoint returns the logged-in account and refreshes session cookies
	AccountEndpoint = "/api/my/account"

	// CatalogEndpoint lists the posts of an album
	CatalogEndpoint = "/api/user/get-album-catalog"

	// DetailEndpoint returns the rendered content of a single post
	DetailEndpoint = "/api/post/get-detail"

	// PostListEndpoint lists a creator's posts
	PostListEndpoint = "/api/post/get-list"

	// PostListPageSize is the page size used when listing a creator's posts
	PostListPageSize = "10"
)

// CatalogQuery builds the query for CatalogEndpoint
func CatalogQuery(albumID string) url.Values {
	q := url.Values{}
	q.Set("album_id", albumID)
	return q
}

// DetailQuery builds the query for DetailEndpoint
func DetailQuery(postID, albumID string) url.Values {
	q := url.Values{}
	q.Set("post_id", postID)
	q.Set("album_id", albumID)
	return q
}

// PostListQuery builds the query for PostListEndpoint. Only the first page is
// requested; the empty filters are sent as the web client sends them.
func PostListQuery(userID string) url.Values {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("type", "old")
	q.Set("publish_sn", "")
	q.Set("per_page", PostListPageSize)
	q.Set("group_id", "")
	q.Set("all", "1")
	q.Set("is_public", "")
	q.Set("plan_id", "")
	q.Set("title", "")
	q.Set("name", "")
	return q
}

// resolve joins an endpoint path and query onto the base URL
func resolve(base *url.URL, path string, query url.Values) string {
	u := *base
	u.Path = strings.TrimSuffix(base.Path, "/") + path
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
