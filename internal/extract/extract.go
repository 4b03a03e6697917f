// Package extract pulls candidate URLs out of free-form text: explicit
// http(s) links plus bare domains, which are normalized with an http://
// prefix and re-validated before being reported.
package extract

import (
	"regexp"
	"strings"

	"github.com/phishguard/phishguard/internal/analyzer"
)

var (
	// The $-_ range covers /, :, ?, = and the other punctuation URLs carry.
	urlPattern    = regexp.MustCompile(`https?://(?:[a-zA-Z0-9$-_@.&+!*(),]|%[0-9a-fA-F]{2})+`)
	domainPattern = regexp.MustCompile(`(?:www\.)?[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}`)
)

// URLs returns the candidate URLs found in text, explicit links first, in
// order of appearance and deduplicated.
func URLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	urls := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, u := range matches {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, candidate := range domainPattern.FindAllString(text, -1) {
		if partOfExplicitURL(urls, candidate) {
			continue
		}
		full := "http://" + candidate
		if _, dup := seen[full]; dup {
			continue
		}
		if analyzer.ValidateURL(full) != nil {
			continue
		}
		seen[full] = struct{}{}
		urls = append(urls, full)
	}
	return urls
}

// partOfExplicitURL reports whether the bare-domain candidate was already
// captured inside one of the explicit http(s) matches.
func partOfExplicitURL(urls []string, candidate string) bool {
	for _, u := range urls {
		if strings.Contains(u, candidate) {
			return true
		}
	}
	return false
}
