package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// VoteRatioProvider talks to a VirusTotal-style API: submit the URL for
// scanning, then fetch the report carrying vendor vote counts.
type VoteRatioProvider struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewVoteRatioProvider creates the provider. An empty apiKey leaves it
// permanently unavailable.
func NewVoteRatioProvider(apiKey, baseURL string, timeout time.Duration) *VoteRatioProvider {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &VoteRatioProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (p *VoteRatioProvider) Name() string { return "voteratio" }

// Check implements Provider.
func (p *VoteRatioProvider) Check(ctx context.Context, target string) Result {
	if p.apiKey == "" {
		return unavailable(p.Name(), "api key not configured")
	}

	resource, err := p.submit(ctx, target)
	if err != nil {
		return unavailable(p.Name(), err.Error())
	}

	report, err := p.report(ctx, resource)
	if err != nil {
		return unavailable(p.Name(), err.Error())
	}

	return Result{
		Provider:  p.Name(),
		Available: true,
		VoteRatio: report,
	}
}

// submit posts the URL for scanning and returns the resource handle to
// fetch the report with.
func (p *VoteRatioProvider) submit(ctx context.Context, target string) (string, error) {
	form := url.Values{}
	form.Set("apikey", p.apiKey)
	form.Set("url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/url/scan", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("scan request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scan endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read scan response: %w", err)
	}

	var scan struct {
		Resource string `json:"resource"`
	}
	if err := json.Unmarshal(body, &scan); err != nil {
		return "", fmt.Errorf("decode scan response: %w", err)
	}
	if scan.Resource == "" {
		return "", fmt.Errorf("scan response carried no resource")
	}
	return scan.Resource, nil
}

// report fetches the vote counts for a previously submitted resource.
func (p *VoteRatioProvider) report(ctx context.Context, resource string) (*VoteRatio, error) {
	u, err := url.Parse(p.baseURL + "/url/report")
	if err != nil {
		return nil, fmt.Errorf("build report URL: %w", err)
	}
	q := u.Query()
	q.Set("apikey", p.apiKey)
	q.Set("resource", resource)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build report request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("report endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read report response: %w", err)
	}

	var report VoteRatio
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode report response: %w", err)
	}
	return &report, nil
}
