// Package reputation queries external URL reputation services and reduces
// their verdicts into a single 0–100 safety score. Each provider is
// isolated: a failing or unconfigured provider reports itself unavailable
// and contributes no penalty — absence of evidence is not evidence of
// danger.
package reputation

import "context"

// VoteRatio is the payload of a vendor-vote reputation service: how many of
// the consulted scanners flagged the URL.
type VoteRatio struct {
	Positives int `json:"positives"`
	Total     int `json:"total"`
}

// ThreatMatch is the payload of a binary threat-list service.
type ThreatMatch struct {
	IsSafe  bool     `json:"is_safe"`
	Threats []string `json:"threats,omitempty"`
}

// Result is the outcome of a single provider check. Exactly one payload
// field is set when Available is true.
type Result struct {
	Provider    string       `json:"provider"`
	Available   bool         `json:"available"`
	Error       string       `json:"error,omitempty"`
	VoteRatio   *VoteRatio   `json:"vote_ratio,omitempty"`
	ThreatMatch *ThreatMatch `json:"threat_match,omitempty"`
}

// Provider checks one reputation source. Implementations never return an
// error across the component boundary: failures are folded into the Result.
type Provider interface {
	Name() string
	Check(ctx context.Context, url string) Result
}

// unavailable builds the Result for a provider that could not be consulted.
func unavailable(name, reason string) Result {
	return Result{Provider: name, Available: false, Error: reason}
}
