package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ThreatMatchProvider talks to a Safe Browsing-style threatMatches:find
// API: the URL is either on a threat list or it is not.
type ThreatMatchProvider struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewThreatMatchProvider creates the provider. An empty apiKey leaves it
// permanently unavailable.
func NewThreatMatchProvider(apiKey, baseURL string, timeout time.Duration) *ThreatMatchProvider {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ThreatMatchProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (p *ThreatMatchProvider) Name() string { return "threatmatch" }

// threatFindRequest is the lookup payload.
type threatFindRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string            `json:"threatTypes"`
		PlatformTypes    []string            `json:"platformTypes"`
		ThreatEntryTypes []string            `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string `json:"threatEntries"`
	} `json:"threatInfo"`
}

// Check implements Provider.
func (p *ThreatMatchProvider) Check(ctx context.Context, target string) Result {
	if p.apiKey == "" {
		return unavailable(p.Name(), "api key not configured")
	}

	var payload threatFindRequest
	payload.Client.ClientID = "phishguard"
	payload.Client.ClientVersion = "1.0.0"
	payload.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}
	payload.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	payload.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	payload.ThreatInfo.ThreatEntries = []map[string]string{{"url": target}}

	body, err := json.Marshal(payload)
	if err != nil {
		return unavailable(p.Name(), fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?key="+p.apiKey, bytes.NewReader(body))
	if err != nil {
		return unavailable(p.Name(), fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return unavailable(p.Name(), fmt.Sprintf("lookup request: %v", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return unavailable(p.Name(), fmt.Sprintf("lookup endpoint returned status %d", resp.StatusCode))
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return unavailable(p.Name(), fmt.Sprintf("read response: %v", err))
	}

	var decoded struct {
		Matches []struct {
			ThreatType string `json:"threatType"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return unavailable(p.Name(), fmt.Sprintf("decode response: %v", err))
	}

	match := &ThreatMatch{IsSafe: len(decoded.Matches) == 0}
	for _, m := range decoded.Matches {
		match.Threats = append(match.Threats, m.ThreatType)
	}

	return Result{
		Provider:    p.Name(),
		Available:   true,
		ThreatMatch: match,
	}
}
