package afdian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"afdscraper/pkg/config"
	"afdscraper/pkg/cookie"
	"afdscraper/pkg/errors"
	"afdscraper/pkg/logger"
	"afdscraper/pkg/ratelimit"
)

// Client talks to the afdian web API on behalf of one logged-in account.
// It is not safe for concurrent use.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    *url.URL
	jar        *cookie.Jar
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// response is a fully read HTTP response
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewClient creates a new afdian API client. A zero timeout disables the
// client-side timeout.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// Accept-Encoding is left to the transport so gzip bodies are
		// decoded transparently.
		headers: map[string]string{
			"User-Agent":      config.DefaultUserAgent,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Connection":      "keep-alive",
			"Sec-Fetch-Dest":  "empty",
			"Sec-Fetch-Mode":  "cors",
			"Sec-Fetch-Site":  "same-origin",
		},
		baseURL: u,
		jar:     cookie.NewJar(""),
		limiter: ratelimit.Unlimited{},
		logger:  log,
	}, nil
}

// SetHeader sets a header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetLimiter paces requests through l
func (c *Client) SetLimiter(l ratelimit.Limiter) {
	if l == nil {
		l = ratelimit.Unlimited{}
	}
	c.limiter = l
}

// Jar returns the session cookies
func (c *Client) Jar() *cookie.Jar {
	return c.jar
}

// Login authenticates with account and password and stores the returned
// token in the jar under "auth_token".
func (c *Client) Login(ctx context.Context, account, password string) error {
	c.logger.InfoWithFields("Logging in", map[string]interface{}{
		"account": account,
	})

	payload := map[string]string{
		"account":  account,
		"password": password,
	}
	resp, err := c.send(ctx, http.MethodPost, LoginEndpoint, nil, payload)
	if err != nil {
		return err
	}
	if !errors.IsSuccessStatus(resp.StatusCode) {
		return c.requestError(resp, "login request failed")
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return err
	}
	if env.Code == "-1" {
		return c.requestError(resp, "login request failed")
	}

	var data LoginData
	if !isEmptyData(env.Data) {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return errors.NewParsingError(resp.StatusCode, err, string(resp.Body))
		}
	}
	if data.AuthToken == "" {
		return c.requestError(resp, "login response carried no auth token")
	}

	c.jar.Set("auth_token", data.AuthToken)
	c.logger.Debug("Auth token stored")
	return nil
}

// VerifyAccount confirms the session and merges the cookies the server sets
// in response into the jar.
func (c *Client) VerifyAccount(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, AccountEndpoint, nil, nil)
	if err != nil {
		return err
	}
	if !errors.IsSuccessStatus(resp.StatusCode) {
		return c.requestError(resp, "account verification failed")
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return err
	}
	if env.Code != "0" {
		return c.requestError(resp, "account verification failed")
	}

	setCookies := resp.Header.Values("Set-Cookie")
	for _, line := range setCookies {
		c.jar.LoadSetCookie(line)
	}

	c.logger.DebugWithFields("Account verified", map[string]interface{}{
		"set_cookie_headers": len(setCookies),
		"cookies":            c.jar.Len(),
	})
	return nil
}

// ListCatalog fetches the catalog of albumID. A response without data is a
// not-value error.
func (c *Client) ListCatalog(ctx context.Context, albumID string) (*CatalogData, error) {
	resp, err := c.send(ctx, http.MethodGet, CatalogEndpoint, CatalogQuery(albumID), nil)
	if err != nil {
		return nil, err
	}
	if !errors.IsSuccessStatus(resp.StatusCode) {
		return nil, c.requestError(resp, fmt.Sprintf("catalog request failed for album %s", albumID))
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if isEmptyData(env.Data) {
		c.logger.ErrorWithFields("Catalog response has no data", map[string]interface{}{
			"album_id": albumID,
			"body":     string(resp.Body),
		})
		return nil, errors.NewNotValueError(resp.StatusCode,
			fmt.Sprintf("catalog for album %s returned no data", albumID), string(resp.Body))
	}

	var data CatalogData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, errors.NewParsingError(resp.StatusCode, err, string(resp.Body))
	}
	return &data, nil
}

// FetchPostContent returns the rendered HTML of a post
func (c *Client) FetchPostContent(ctx context.Context, postID, albumID string) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, DetailEndpoint, DetailQuery(postID, albumID), nil)
	if err != nil {
		return "", err
	}
	if !errors.IsSuccessStatus(resp.StatusCode) {
		return "", c.requestError(resp, fmt.Sprintf("post detail request failed for post %s", postID))
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return "", err
	}
	if env.EC != "200" {
		return "", c.requestError(resp, fmt.Sprintf("post detail failed for post %s", postID))
	}

	var detail PostDetail
	if !isEmptyData(env.Data) {
		if err := json.Unmarshal(env.Data, &detail); err != nil {
			return "", errors.NewParsingError(resp.StatusCode, err, string(resp.Body))
		}
	}
	if detail.Post == nil {
		return "", errors.NewNotValueError(resp.StatusCode,
			fmt.Sprintf("post detail for post %s has no post", postID), string(resp.Body))
	}
	return detail.Post.Content, nil
}

// FetchUserPosts returns the first page of a creator's posts
func (c *Client) FetchUserPosts(ctx context.Context, userID string) (*PostListData, error) {
	resp, err := c.send(ctx, http.MethodGet, PostListEndpoint, PostListQuery(userID), nil)
	if err != nil {
		return nil, err
	}
	if !errors.IsSuccessStatus(resp.StatusCode) {
		return nil, c.requestError(resp, fmt.Sprintf("post list request failed for user %s", userID))
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var data PostListData
	if !isEmptyData(env.Data) {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errors.NewParsingError(resp.StatusCode, err, string(resp.Body))
		}
	}
	return &data, nil
}

// send builds, paces and performs one request and reads the whole body
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload interface{}) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := resolve(c.baseURL, path, query)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Host = c.baseURL.Host
	req.Header.Set("Origin", c.baseURL.Scheme+"://"+c.baseURL.Host)
	if c.jar.Len() > 0 {
		req.Header.Set("Cookie", c.jar.String())
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": method,
		"url":    target,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      target,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	logger.LogRequest(c.logger, method, target, resp.StatusCode, time.Since(start))

	return &response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *Client) decodeEnvelope(resp *response) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(string(resp.Body), 200),
		})
		return nil, errors.NewParsingError(resp.StatusCode, err, string(resp.Body))
	}
	return &env, nil
}

func (c *Client) requestError(resp *response, what string) error {
	c.logger.ErrorWithFields(what, map[string]interface{}{
		"status": resp.StatusCode,
		"body":   string(resp.Body),
	})
	return errors.NewRequestError(resp.StatusCode, what, string(resp.Body))
}

// preview cuts s to at most n runes for logging
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
