// Package urlinspect runs stateless lexical checks against a raw URL:
// structural red flags (subdomain depth, redirect paths, shorteners,
// credentials in the query) and suspicious-keyword content matching.
package urlinspect

import (
	"fmt"
	"net/url"
	"strings"
)

// Inspector holds the configured shortener-domain and keyword tables.
type Inspector struct {
	shorteners []string
	keywords   []string
}

// NewInspector builds an Inspector from the configured tables.
func NewInspector(shorteners, keywords []string) *Inspector {
	return &Inspector{shorteners: shorteners, keywords: keywords}
}

// Structure reports structural issues in the URL. It never fails: an
// unparseable URL yields no findings (malformed input is rejected upstream
// before inspection runs).
func (in *Inspector) Structure(rawURL string) []string {
	issues := []string{}

	u, err := url.Parse(rawURL)
	if err != nil {
		return issues
	}

	if len(strings.Split(u.Host, ".")) > 4 {
		issues = append(issues, "Excessive subdomains detected")
	}
	if strings.Contains(u.Path, "/redirect") || strings.Contains(u.Path, "/r/") {
		issues = append(issues, "Contains redirect patterns")
	}
	for _, shortener := range in.shorteners {
		if strings.Contains(u.Host, shortener) {
			issues = append(issues, "Uses URL shortener service")
			break
		}
	}
	if strings.Contains(u.RawQuery, "token") || strings.Contains(u.RawQuery, "auth") {
		issues = append(issues, "Contains authentication tokens in URL")
	}
	return issues
}

// Content reports one combined issue naming every suspicious keyword found
// in the lower-cased URL, or nothing.
func (in *Inspector) Content(rawURL string) []string {
	lower := strings.ToLower(rawURL)

	var found []string
	for _, kw := range in.keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return []string{}
	}
	return []string{fmt.Sprintf("Contains suspicious keywords: %s", strings.Join(found, ", "))}
}
