// Package affinity provides a client for the Affinity CRM v2 API: lists,
// list fields, list entries, and single-field updates.
package affinity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.affinity.co"

// Client defines the Affinity API operations used by the sync pipeline.
//
// Collection methods absorb page-level HTTP failures the same way the
// visible client does: the failed page is logged and the accumulated
// prefix is returned.
type Client interface {
	// Lists fetches all lists visible to the token.
	Lists(ctx context.Context) []List
	// ListFields fetches the field metadata for one list.
	ListFields(ctx context.Context, listID int64) []Field
	// ListEntries fetches all entries of one list.
	ListEntries(ctx context.Context, listID int64) []ListEntry
	// UpdateNumericField writes a numeric value into one field of one list
	// entry. Failures are logged (truncated) and reported as false; the
	// method never errors, so callers can tally failures without aborting
	// a batch.
	UpdateNumericField(ctx context.Context, listID, entryID int64, fieldID string, value float64) bool
}

// List is a CRM list.
type List struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Field is a list field definition.
type Field struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ValueType string `json:"valueType"`
}

// ListEntry is one row of a list, wrapping the underlying entity.
type ListEntry struct {
	ID     int64  `json:"id"`
	Entity Entity `json:"entity"`
}

// Entity is the company (or person) a list entry points at. Domains is
// ordered; the first domain is the entity's primary one.
type Entity struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate (5 req/s). A value of
// 0 or less disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Affinity v2 API client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// getJSON performs a GET against a fully-formed URL, decoding the
// response into out.
func (c *httpClient) getJSON(ctx context.Context, reqURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "affinity: rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "affinity: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "affinity: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "affinity: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("affinity: status %d: %s", resp.StatusCode, truncate(string(body), 100))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "affinity: unmarshal response")
	}
	return nil
}

type pagination struct {
	NextURL string `json:"nextUrl"`
}

type page[T any] struct {
	Data       []T        `json:"data"`
	Pagination pagination `json:"pagination"`
}

// drainLink walks a nextUrl-paginated endpoint to exhaustion. The first
// request carries limit=100; every subsequent request follows the
// server-supplied nextUrl verbatim, resolving origin-relative URLs against
// the configured base URL. A failed page logs and ends the walk with the
// accumulated prefix.
func drainLink[T any](ctx context.Context, c *httpClient, path, what string) []T {
	var all []T
	next := c.baseURL + path + "?limit=100"
	for pageNum := 1; next != ""; pageNum++ {
		if ctx.Err() != nil {
			break
		}

		var resp page[T]
		if err := c.getJSON(ctx, next, &resp); err != nil {
			zap.L().Warn("affinity: page fetch failed",
				zap.String("resource", what),
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			break
		}
		all = append(all, resp.Data...)

		nextURL := resp.Pagination.NextURL
		switch {
		case nextURL == "":
			next = ""
		case strings.HasPrefix(nextURL, "http"):
			next = nextURL
		default:
			next = c.baseURL + nextURL
		}
	}
	return all
}

func (c *httpClient) Lists(ctx context.Context) []List {
	return drainLink[List](ctx, c, "/v2/lists", "lists")
}

func (c *httpClient) ListFields(ctx context.Context, listID int64) []Field {
	return drainLink[Field](ctx, c, fmt.Sprintf("/v2/lists/%d/fields", listID), "list fields")
}

func (c *httpClient) ListEntries(ctx context.Context, listID int64) []ListEntry {
	return drainLink[ListEntry](ctx, c, fmt.Sprintf("/v2/lists/%d/list-entries", listID), "list entries")
}

// fieldUpdate is the PATCH body for the update-fields operation.
type fieldUpdate struct {
	Operation string   `json:"operation"`
	Updates   []update `json:"updates"`
}

type update struct {
	ID    string     `json:"id"`
	Value fieldValue `json:"value"`
}

type fieldValue struct {
	Type string  `json:"type"`
	Data float64 `json:"data"`
}

func (c *httpClient) UpdateNumericField(ctx context.Context, listID, entryID int64, fieldID string, value float64) bool {
	log := zap.L().With(
		zap.Int64("list_id", listID),
		zap.Int64("entry_id", entryID),
		zap.String("field_id", fieldID),
	)

	payload := fieldUpdate{
		Operation: "update-fields",
		Updates: []update{
			{ID: fieldID, Value: fieldValue{Type: "number", Data: value}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn("affinity: marshal update failed", zap.Error(err))
		return false
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Warn("affinity: update failed", zap.Error(err))
			return false
		}
	}

	reqURL := fmt.Sprintf("%s/v2/lists/%d/list-entries/%d/fields", c.baseURL, listID, entryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(body))
	if err != nil {
		log.Warn("affinity: update failed", zap.Error(err))
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("affinity: update failed", zap.String("error", truncate(err.Error(), 100)))
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("affinity: update rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 100)),
		)
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
