// Package visible provides a client for the Visible.vc portfolio
// monitoring API: portfolio companies, metrics, data points, and
// portfolio properties.
package visible

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.visible.vc"

// sentinelDate sorts before any real ISO date, so the first usable data
// point always replaces it.
const sentinelDate = "0000-00-00"

// Client defines the Visible API operations used by the sync pipeline.
//
// Collection methods absorb page-level HTTP failures: they log the failed
// page and return whatever was accumulated so far rather than erroring, so
// a flaky page never aborts a run.
type Client interface {
	// PortfolioCompanies fetches all portfolio company profiles.
	PortfolioCompanies(ctx context.Context) []Company
	// MetricNames returns the deduplicated, sorted names of all metrics
	// visible across the whole catalog.
	MetricNames(ctx context.Context) []string
	// CompanyMetrics fetches the metrics tracked for a single company.
	CompanyMetrics(ctx context.Context, profileID string) []Metric
	// LatestDataPoint returns the most recent data point for a metric,
	// considering only points with a usable (non-null, non-"None") value.
	// When no point qualifies, the returned point carries a nil Value and
	// a sentinel date.
	LatestDataPoint(ctx context.Context, metricID string) DataPoint
	// WebsitePropertyID resolves the portfolio property whose name starts
	// with "website" (case-insensitive). Returns "" when no such property
	// exists.
	WebsitePropertyID(ctx context.Context) string
	// CompanyWebsite returns the website property value for a company, or
	// "" when the company has none.
	CompanyWebsite(ctx context.Context, profileID, propertyID string) string
	// FetchMetricMap builds the normalized-domain -> latest-value map for
	// one named metric across the whole portfolio.
	FetchMetricMap(ctx context.Context, metricName string) map[string]float64
}

// Company is a portfolio company profile.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Metric is a tracked metric definition.
type Metric struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DataPoint is a single observation of a metric. Value is left untyped
// because the API serves numbers, numeric strings, the literal string
// "None", and null interchangeably; coercion happens at use sites.
type DataPoint struct {
	Date  string `json:"date"`
	Value any    `json:"value"`
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

// WithRateLimit overrides the default request rate (5 req/s). A value
// of 0 or less disables throttling.
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
	token     string
	companyID string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Visible API client scoped to one investor company.
func NewClient(token, companyID string, opts ...Option) Client {
	c := &httpClient{
		token:     token,
		companyID: companyID,
		baseURL:   defaultBaseURL,
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

// getJSON performs a GET against path with params, decoding the response
// body into out. Non-2xx statuses are returned as errors carrying the
// status code and a body excerpt.
func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "visible: rate limit")
		}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "visible: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "visible: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "visible: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("visible: %s: status %d: %s", path, resp.StatusCode, truncate(string(body), 100))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "visible: unmarshal response")
	}
	return nil
}

type meta struct {
	TotalPages int `json:"total_pages"`
}

type companiesPage struct {
	PortfolioCompanyProfiles []Company `json:"portfolio_company_profiles"`
	Meta                     meta      `json:"meta"`
}

type metricsPage struct {
	Metrics []Metric `json:"metrics"`
	Meta    meta     `json:"meta"`
}

type dataPointsPage struct {
	DataPoints []DataPoint `json:"data_points"`
	Meta       meta        `json:"meta"`
}

type propertiesResponse struct {
	PortfolioProperties []property `json:"portfolio_properties"`
}

type property struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type propertyValuesResponse struct {
	PortfolioPropertyValues []propertyValue `json:"portfolio_property_values"`
}

type propertyValue struct {
	PortfolioPropertyID string `json:"portfolio_property_id"`
	Value               string `json:"value"`
}

func (c *httpClient) PortfolioCompanies(ctx context.Context) []Company {
	return drainPages(ctx, "portfolio companies", func(page int) ([]Company, int, error) {
		params := url.Values{}
		params.Set("company_id", c.companyID)
		params.Set("page", strconv.Itoa(page))

		var resp companiesPage
		if err := c.getJSON(ctx, "/portfolio_company_profiles", params, &resp); err != nil {
			return nil, 0, err
		}
		return resp.PortfolioCompanyProfiles, resp.Meta.TotalPages, nil
	})
}

func (c *httpClient) metrics(ctx context.Context, profileID string) []Metric {
	return drainPages(ctx, "metrics", func(page int) ([]Metric, int, error) {
		params := url.Values{}
		params.Set("company_id", c.companyID)
		params.Set("page", strconv.Itoa(page))
		if profileID != "" {
			params.Set("filter[portfolio_company_profile_id]", profileID)
		}

		var resp metricsPage
		if err := c.getJSON(ctx, "/metrics", params, &resp); err != nil {
			return nil, 0, err
		}
		return resp.Metrics, resp.Meta.TotalPages, nil
	})
}

func (c *httpClient) MetricNames(ctx context.Context) []string {
	seen := map[string]struct{}{}
	for _, m := range c.metrics(ctx, "") {
		if m.Name != "" {
			seen[m.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *httpClient) CompanyMetrics(ctx context.Context, profileID string) []Metric {
	return c.metrics(ctx, profileID)
}

func (c *httpClient) LatestDataPoint(ctx context.Context, metricID string) DataPoint {
	points := drainPages(ctx, "data points", func(page int) ([]DataPoint, int, error) {
		params := url.Values{}
		params.Set("metric_id", metricID)
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", "100")

		var resp dataPointsPage
		if err := c.getJSON(ctx, "/data_points", params, &resp); err != nil {
			return nil, 0, err
		}
		return resp.DataPoints, resp.Meta.TotalPages, nil
	})

	latest := DataPoint{Date: sentinelDate}
	for _, dp := range points {
		if !usableValue(dp.Value) || dp.Date == "" {
			continue
		}
		// Fixed-width ISO dates compare correctly as strings.
		if dp.Date > latest.Date {
			latest = dp
		}
	}
	return latest
}

func (c *httpClient) WebsitePropertyID(ctx context.Context) string {
	params := url.Values{}
	params.Set("company_id", c.companyID)

	var resp propertiesResponse
	if err := c.getJSON(ctx, "/portfolio_properties", params, &resp); err != nil {
		warnFetch(ctx, "portfolio properties", err)
		return ""
	}

	for _, p := range resp.PortfolioProperties {
		if strings.HasPrefix(strings.ToLower(p.Name), "website") {
			return p.ID
		}
	}
	return ""
}

func (c *httpClient) CompanyWebsite(ctx context.Context, profileID, propertyID string) string {
	params := url.Values{}
	params.Set("portfolio_company_profile_id", profileID)

	var resp propertyValuesResponse
	if err := c.getJSON(ctx, "/portfolio_property_values", params, &resp); err != nil {
		warnFetch(ctx, "portfolio property values", err)
		return ""
	}

	for _, v := range resp.PortfolioPropertyValues {
		if v.PortfolioPropertyID == propertyID {
			return v.Value
		}
	}
	return ""
}

// usableValue reports whether a data point value participates in latest
// selection. null and the literal string "None" are the API's two ways of
// recording an empty observation.
func usableValue(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "None" {
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
