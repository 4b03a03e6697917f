package analyzer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/analyzer"
	"github.com/phishguard/phishguard/internal/cache"
	"github.com/phishguard/phishguard/internal/domaincheck"
	"github.com/phishguard/phishguard/internal/reputation"
	"github.com/phishguard/phishguard/internal/scoring"
	"github.com/phishguard/phishguard/internal/urlinspect"
)

var testFamilies = map[string][]string{
	"google_meet":     {"meet.google.com"},
	"zoom":            {"zoom.us"},
	"microsoft_teams": {"teams.microsoft.com"},
}

// newAnalyzer builds a fully offline pipeline: static lookups, no
// reputation providers, fresh cache.
func newAnalyzer(t *testing.T, maxBatch int) *analyzer.Analyzer {
	t.Helper()

	legit := domaincheck.Flatten(testFamilies)
	checker := domaincheck.NewChecker(testFamilies, []string{".tk", ".click"},
		domaincheck.NoAgeLookup{},
		domaincheck.NewStaticTLSChecker(legit),
	)
	inspector := urlinspect.NewInspector(
		[]string{"bit.ly", "tinyurl.com"},
		[]string{"urgent", "verify"},
	)
	agg := reputation.NewAggregator(zap.NewNop())
	return analyzer.New(checker, inspector, agg, cache.New(time.Hour), maxBatch, zap.NewNop())
}

func TestAnalyze_legitimateMeetingLink(t *testing.T) {
	a := newAnalyzer(t, 5)

	v, err := a.Analyze(context.Background(), "https://meet.google.com/abc-defg-hij")
	if err != nil {
		t.Fatal(err)
	}
	if v.Level != scoring.LevelSafe {
		t.Errorf("level: got %s, want SAFE", v.Level)
	}
	if v.Confidence < 60 {
		t.Errorf("confidence: got %v, want >= 60", v.Confidence)
	}
	if len(v.Issues) != 0 {
		t.Errorf("issues: got %v, want none", v.Issues)
	}
	if v.Domain != "meet.google.com" {
		t.Errorf("domain: got %q", v.Domain)
	}
}

func TestAnalyze_impersonatingDomain(t *testing.T) {
	a := newAnalyzer(t, 5)

	v, err := a.Analyze(context.Background(), "https://gmeeting.org/abc-defg-hij")
	if err != nil {
		t.Fatal(err)
	}
	if v.Level == scoring.LevelSafe {
		t.Errorf("impersonating domain graded SAFE: %+v", v)
	}

	found := false
	for _, issue := range v.Issues {
		if strings.Contains(issue, "meet.google.com") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an issue naming the real domain, got %v", v.Issues)
	}
}

func TestAnalyze_malformedURL(t *testing.T) {
	a := newAnalyzer(t, 5)

	for _, input := range []string{"not a url", "example.com", "http://", ""} {
		if _, err := a.Analyze(context.Background(), input); !errors.Is(err, analyzer.ErrMalformedURL) {
			t.Errorf("Analyze(%q): got %v, want ErrMalformedURL", input, err)
		}
	}

	// Rejected input must not touch the counters.
	if stats := a.Stats(); stats.TotalChecks != 0 {
		t.Errorf("total checks after rejections: got %d, want 0", stats.TotalChecks)
	}
}

func TestAnalyze_secondCallHitsCache(t *testing.T) {
	a := newAnalyzer(t, 5)
	ctx := context.Background()

	first, err := a.Analyze(ctx, "https://meet.google.com/abc")
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Analyze(ctx, "https://meet.google.com/abc")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second call should return the cached verdict instance")
	}

	stats := a.Stats()
	if stats.TotalChecks != 1 {
		t.Errorf("total checks: got %d, want 1 (cache hit is not a check)", stats.TotalChecks)
	}
	if stats.CacheHits != 1 {
		t.Errorf("cache hits: got %d, want 1", stats.CacheHits)
	}
}

func TestAnalyze_threatCounter(t *testing.T) {
	a := newAnalyzer(t, 5)
	ctx := context.Background()

	if _, err := a.Analyze(ctx, "https://meet.google.com/abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Analyze(ctx, "https://gmeeting.org/urgent-verify"); err != nil {
		t.Fatal(err)
	}

	stats := a.Stats()
	if stats.TotalChecks != 2 {
		t.Errorf("total checks: got %d, want 2", stats.TotalChecks)
	}
	if stats.ThreatsFound != 1 {
		t.Errorf("threats found: got %d, want 1", stats.ThreatsFound)
	}
}

func TestAnalyzeBatch_overCap(t *testing.T) {
	a := newAnalyzer(t, 5)

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = "https://meet.google.com/room"
	}
	if _, err := a.AnalyzeBatch(context.Background(), urls); !errors.Is(err, analyzer.ErrTooManyURLs) {
		t.Errorf("batch of 6 with cap 5: got %v, want ErrTooManyURLs", err)
	}

	// The cap check happens before any analysis.
	if stats := a.Stats(); stats.TotalChecks != 0 {
		t.Errorf("total checks after rejected batch: got %d, want 0", stats.TotalChecks)
	}
}

func TestAnalyzeBatch_orderAndIsolation(t *testing.T) {
	a := newAnalyzer(t, 5)

	urls := []string{
		"https://meet.google.com/abc",
		"not a url",
		"https://gmeeting.org/x",
	}
	results, err := a.AnalyzeBatch(context.Background(), urls)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] {
			t.Errorf("result[%d]: got %q, want %q (input order preserved)", i, r.URL, urls[i])
		}
	}
	if results[0].Err != nil || results[0].Verdict == nil {
		t.Errorf("result[0]: %+v", results[0])
	}
	if !errors.Is(results[1].Err, analyzer.ErrMalformedURL) {
		t.Errorf("result[1] error: got %v, want ErrMalformedURL", results[1].Err)
	}
	if results[2].Err != nil || results[2].Verdict == nil {
		t.Errorf("result[2]: a bad sibling URL must not affect this one: %+v", results[2])
	}
}

func TestNew_batchCapDefaultsToFive(t *testing.T) {
	a := newAnalyzer(t, 0)
	if a.MaxBatch() != 5 {
		t.Errorf("max batch: got %d, want 5", a.MaxBatch())
	}
}

func TestValidateURL(t *testing.T) {
	ok := []string{"https://meet.google.com/abc", "http://example.com", "https://zoom.us/j/1?pwd=x"}
	for _, u := range ok {
		if err := analyzer.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q): unexpected error %v", u, err)
		}
	}
	bad := []string{"", "meet.google.com", "https://", "://nohost", "not a url"}
	for _, u := range bad {
		if err := analyzer.ValidateURL(u); !errors.Is(err, analyzer.ErrMalformedURL) {
			t.Errorf("ValidateURL(%q): got %v, want ErrMalformedURL", u, err)
		}
	}
}
