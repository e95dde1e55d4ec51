// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notion provides the authenticated Notion API client used by the
// sync pipeline: connection checks, database listing and querying, page
// fetches and the recursive block-children fetch.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Notion API root.
	DefaultBaseURL = "https://api.notion.com/v1/"
	// apiVersion is sent as the Notion-Version header on every request.
	apiVersion = "2022-06-28"
	// requestTimeout bounds every outbound API call.
	requestTimeout = 60 * time.Second
	// pageSize is the maximum page size the API accepts on list calls.
	pageSize = 100
	// MaxBlockDepth bounds the recursive block-children fetch. Nesting
	// deeper than this is truncated rather than treated as an error.
	MaxBlockDepth = 16
	// requestsPerSecond matches the API's average rate limit.
	requestsPerSecond = 3
)

// APIError is the decoded error surface of a non-2xx API response.
type APIError struct {
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion api: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion api: HTTP %d", e.Status)
}

// IsAuthError returns true when the API rejected the credential.
func (e *APIError) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Client is an authenticated Notion API client. All calls are synchronous
// and rate limited; errors are returned per call rather than accumulated
// in shared state.
type Client struct {
	baseURL  string
	token    string
	logger   *slog.Logger
	limiter  *rate.Limiter
	client   *http.Client
	fallback *http.Client
}

// NewClient creates a Notion API client. baseURL falls back to
// DefaultBaseURL when empty.
func NewClient(token, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// Minimal keep-alive-free transport used once per request as a
		// resilience fallback when the pooled transport fails at the
		// network level.
		fallback: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
}

// request performs one API call, decoding a 2xx JSON body into out (when
// non-nil) and converting non-2xx responses into *APIError.
func (c *Client) request(ctx context.Context, method, endpoint string, body, out any) error {
	if c.token == "" {
		return &APIError{Status: http.StatusUnauthorized, Message: "notion api token is missing"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	resp, err := c.send(ctx, c.client, method, endpoint, payload)
	if err != nil {
		c.logger.Debug("primary transport failed, retrying on fallback",
			"endpoint", endpoint, "error", err)
		resp, err = c.send(ctx, c.fallback, method, endpoint, payload)
		if err != nil {
			return fmt.Errorf("notion request %s %s: %w", method, endpoint, err)
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr := json.Unmarshal(respBody, apiErr); decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unknown API error (HTTP %d)", resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

// send issues one HTTP request on the given client.
func (c *Client) send(ctx context.Context, client *http.Client, method, endpoint string, payload []byte) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	return client.Do(req)
}

// TestConnection performs a lightweight authenticated call. A nil return
// means the credential is valid and the API reachable.
func (c *Client) TestConnection(ctx context.Context) error {
	return c.request(ctx, http.MethodGet, "users/me", nil, nil)
}

type databaseList struct {
	Results    []Database `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor"`
}

type searchRequest struct {
	Filter struct {
		Value    string `json:"value"`
		Property string `json:"property"`
	} `json:"filter"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

// ListDatabases returns the databases the integration can access. It tries
// the direct listing first and falls back to a filtered object search when
// that is empty or unavailable. An empty slice with a nil error means no
// databases are shared with the integration.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var direct databaseList
	directErr := c.request(ctx, http.MethodGet, "databases", nil, &direct)
	if directErr == nil && len(direct.Results) > 0 {
		return direct.Results, nil
	}

	if directErr != nil {
		c.logger.Debug("direct database listing failed, falling back to search", "error", directErr)
	}

	req := searchRequest{PageSize: pageSize}
	req.Filter.Value = "database"
	req.Filter.Property = "object"

	var found databaseList
	if searchErr := c.request(ctx, http.MethodPost, "search", req, &found); searchErr != nil {
		if directErr != nil {
			return nil, fmt.Errorf("listing databases: %w", searchErr)
		}
		// Direct listing worked but was empty; treat the failed search as
		// "none accessible" rather than an error.
		c.logger.Debug("database search failed", "error", searchErr)
		return nil, nil
	}
	return found.Results, nil
}

type pageList struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type queryRequest struct {
	Filter      json.RawMessage `json:"filter,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size"`
}

// QueryDatabase returns all pages of a database matching the optional
// filter, following pagination to completion.
func (c *Client) QueryDatabase(ctx context.Context, id string, filter json.RawMessage) ([]Page, error) {
	endpoint := fmt.Sprintf("databases/%s/query", url.PathEscape(id))

	var pages []Page
	cursor := ""
	for {
		req := queryRequest{Filter: filter, StartCursor: cursor, PageSize: pageSize}

		var resp pageList
		if err := c.request(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
			return nil, fmt.Errorf("querying database %s: %w", id, err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// GetPage fetches a single page by its canonical ID.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := c.request(ctx, http.MethodGet, "pages/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", id, err)
	}
	return &page, nil
}

type blockList struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// GetPageContent fetches a page's child blocks and recursively resolves the
// children of every block flagged as having them. The traversal is serial
// and depth-first; nesting beyond MaxBlockDepth is truncated.
func (c *Client) GetPageContent(ctx context.Context, id string) ([]Block, error) {
	return c.fetchChildren(ctx, id, 0)
}

func (c *Client) fetchChildren(ctx context.Context, id string, depth int) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		endpoint := fmt.Sprintf("blocks/%s/children?page_size=%d", url.PathEscape(id), pageSize)
		if cursor != "" {
			endpoint += "&start_cursor=" + url.QueryEscape(cursor)
		}

		var resp blockList
		if err := c.request(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
			return nil, fmt.Errorf("fetching children of block %s: %w", id, err)
		}
		blocks = append(blocks, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	for i := range blocks {
		if !blocks[i].HasChildren {
			continue
		}
		if depth+1 >= MaxBlockDepth {
			c.logger.Warn("block nesting exceeds maximum depth, truncating",
				"block_id", blocks[i].ID, "depth", depth+1)
			continue
		}
		children, err := c.fetchChildren(ctx, blocks[i].ID, depth+1)
		if err != nil {
			return nil, err
		}
		blocks[i].Children = children
	}

	return blocks, nil
}
