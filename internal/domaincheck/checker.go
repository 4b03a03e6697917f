// Package domaincheck classifies the domain of a candidate URL against a
// curated allowlist of meeting-platform domains and computes typosquatting
// distance, registration age, TLS validity and TLD suspicion.
package domaincheck

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Record is the outcome of a domain check. It is derived fresh per request
// and never persisted.
type Record struct {
	Domain         string   `json:"domain"`
	IsLegitimate   bool     `json:"is_legitimate"`
	TyposquatScore int      `json:"typosquatting_score"`
	DomainAgeDays  *int     `json:"domain_age_days,omitempty"`
	TLSValid       bool     `json:"tls_valid"`
	SuspiciousTLD  bool     `json:"suspicious_tld"`
	Issues         []string `json:"issues"`
}

// Checker runs all domain-level checks for a URL.
type Checker struct {
	families       map[string][]string
	legitimate     []string
	legitimateSet  map[string]struct{}
	suspiciousTLDs []string
	age            AgeLookup
	tls            TLSChecker
}

// NewChecker builds a Checker from the family-grouped allowlist, the
// suspicious TLD suffixes and the external lookup capabilities.
func NewChecker(families map[string][]string, suspiciousTLDs []string, age AgeLookup, tls TLSChecker) *Checker {
	c := &Checker{
		families:       families,
		legitimateSet:  make(map[string]struct{}),
		suspiciousTLDs: suspiciousTLDs,
		age:            age,
		tls:            tls,
	}

	c.legitimate = Flatten(families)
	for _, d := range c.legitimate {
		c.legitimateSet[d] = struct{}{}
	}
	return c
}

// Flatten returns every allowlisted domain across families, lower-cased, in
// stable family order so typosquat comparison order is deterministic.
func Flatten(families map[string][]string) []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []string
	for _, name := range names {
		for _, d := range families[name] {
			all = append(all, strings.ToLower(d))
		}
	}
	return all
}

// Check extracts the domain from rawURL and runs all checks. The issues
// slice is compiled in a fixed order: legitimacy, typosquatting, age, TLS,
// TLD.
func (c *Checker) Check(ctx context.Context, rawURL string) (*Record, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q has no scheme or host", rawURL)
	}

	domain := strings.ToLower(u.Hostname())
	rec := &Record{
		Domain:         domain,
		IsLegitimate:   c.isLegitimate(domain),
		TyposquatScore: c.typosquatScore(domain),
		SuspiciousTLD:  c.hasSuspiciousTLD(domain),
	}

	if days, ok := c.age.Age(ctx, domain); ok {
		rec.DomainAgeDays = &days
	}
	rec.TLSValid = c.tls.Valid(ctx, domain)

	rec.Issues = c.compileIssues(rec)
	return rec, nil
}

func (c *Checker) isLegitimate(domain string) bool {
	_, ok := c.legitimateSet[domain]
	return ok
}

// typosquatScore compares the domain against every allowlisted domain of
// equal length and counts differing character positions (Hamming distance).
// 0 means an exact allowlist match, 30/40 a one/two character lookalike and
// 100 no detected relationship.
//
// Known detection gap, preserved deliberately: domains of a different
// length are never compared, so an inserted or deleted character
// ("zooom.us" vs "zoom.us") scores 100 rather than being flagged.
func (c *Checker) typosquatScore(domain string) int {
	for _, legit := range c.legitimate {
		if domain == legit {
			return 0
		}
		if len(domain) != len(legit) {
			continue
		}
		diff := 0
		for i := 0; i < len(domain); i++ {
			if domain[i] != legit[i] {
				diff++
			}
		}
		if diff <= 2 {
			return 20 + diff*10
		}
	}
	return 100
}

func (c *Checker) hasSuspiciousTLD(domain string) bool {
	for _, tld := range c.suspiciousTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	return false
}

func (c *Checker) compileIssues(rec *Record) []string {
	issues := []string{}

	if !rec.IsLegitimate {
		if closest := c.NearestLegitimate(rec.Domain); closest != "" {
			issues = append(issues, fmt.Sprintf("Domain '%s' is NOT legitimate (real: %s)", rec.Domain, closest))
		}
	}
	if rec.TyposquatScore > 0 && rec.TyposquatScore < 30 {
		issues = append(issues, "Domain appears to be typosquatting a legitimate service")
	}
	if rec.DomainAgeDays != nil && *rec.DomainAgeDays < 30 {
		issues = append(issues, fmt.Sprintf("Domain registered only %d days ago", *rec.DomainAgeDays))
	}
	if !rec.TLSValid {
		issues = append(issues, "No valid SSL certificate")
	}
	if rec.SuspiciousTLD {
		issues = append(issues, "Uses suspicious top-level domain")
	}
	return issues
}

// NearestLegitimate names the allowlisted domain the given domain most
// likely impersonates, by service-family keyword. Empty when no family
// keyword matches.
func (c *Checker) NearestLegitimate(domain string) string {
	switch {
	case strings.Contains(domain, "meet") || strings.Contains(domain, "google"):
		return c.familyExample("google_meet", "meet.google.com")
	case strings.Contains(domain, "zoom"):
		return c.familyExample("zoom", "zoom.us")
	case strings.Contains(domain, "teams") || strings.Contains(domain, "microsoft"):
		return c.familyExample("microsoft_teams", "teams.microsoft.com")
	}
	return ""
}

// familyExample returns the first configured domain of a family, falling
// back to the well-known default when the family is absent from config.
func (c *Checker) familyExample(family, fallback string) string {
	if ds := c.families[family]; len(ds) > 0 {
		return strings.ToLower(ds[0])
	}
	return fallback
}
