// Package client is the PhishGuard Go SDK: a thin typed wrapper around the
// PhishGuard HTTP API for analyzing URLs, scanning free text, reading
// service statistics and filing phishing reports.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Level is the verdict grade returned by the service.
type Level string

const (
	LevelSafe       Level = "SAFE"
	LevelSuspicious Level = "SUSPICIOUS"
	LevelDangerous  Level = "DANGEROUS"
)

// DomainRecord is the domain-level analysis attached to a verdict.
type DomainRecord struct {
	Domain         string   `json:"domain"`
	IsLegitimate   bool     `json:"is_legitimate"`
	TyposquatScore int      `json:"typosquatting_score"`
	DomainAgeDays  *int     `json:"domain_age_days,omitempty"`
	TLSValid       bool     `json:"tls_valid"`
	SuspiciousTLD  bool     `json:"suspicious_tld"`
	Issues         []string `json:"issues"`
}

// Verdict is the assessment returned for one URL.
type Verdict struct {
	URL             string        `json:"url"`
	Domain          string        `json:"domain"`
	Level           Level         `json:"level"`
	Confidence      float64       `json:"confidence"`
	RiskScore       int           `json:"risk_score"`
	Issues          []string      `json:"issues"`
	Recommendations []string      `json:"recommendations"`
	DomainRecord    *DomainRecord `json:"domain_record,omitempty"`
}

// ScanResult pairs one extracted URL with its verdict or error.
type ScanResult struct {
	URL     string   `json:"url"`
	Verdict *Verdict `json:"verdict,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ScanResponse is the outcome of a free-text scan.
type ScanResponse struct {
	URLs    []string     `json:"urls"`
	Results []ScanResult `json:"results"`
}

// Stats is the aggregate counter snapshot.
type Stats struct {
	TotalChecks   int64   `json:"total_checks"`
	ThreatsFound  int64   `json:"threats_found"`
	CacheHits     int64   `json:"cache_hits"`
	DetectionRate float64 `json:"detection_rate"`
}

// Report is a filed phishing report.
type Report struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("phishguard API: status %d: %s", e.StatusCode, e.Message)
}

// Client is the SDK entry point.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	bearerToken string
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithBearerToken attaches a bearer token to every request, identifying
// the caller for rate limiting and report attribution.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.bearerToken = token }
}

// New creates a Client targeting baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze assesses a single URL.
func (c *Client) Analyze(ctx context.Context, target string) (*Verdict, error) {
	var v Verdict
	err := c.do(ctx, http.MethodPost, "/api/v1/analyze", map[string]string{"url": target}, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ScanText extracts URLs from free text and assesses each.
func (c *Client) ScanText(ctx context.Context, text string) (*ScanResponse, error) {
	var resp ScanResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/scan", map[string]string{"text": text}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches the aggregate counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReportPhishing files a phishing report for a URL.
func (c *Client) ReportPhishing(ctx context.Context, target, reason string) (*Report, error) {
	var r Report
	err := c.do(ctx, http.MethodPost, "/api/v1/reports", map[string]string{"url": target, "reason": reason}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DomainReported reports whether any open phishing report names the domain.
func (c *Client) DomainReported(ctx context.Context, domain string) (bool, error) {
	var resp struct {
		Reported bool `json:"reported"`
	}
	path := "/api/v1/domains/" + url.PathEscape(domain) + "/reported"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Reported, nil
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
			apiErr.Message = decoded.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if respBody == nil {
		return nil
	}
	if err := json.Unmarshal(raw, respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
