// Package analyzer orchestrates the URL threat assessment pipeline:
// validate, consult the verdict cache, fan out to the domain checker, the
// lexical inspector and the reputation aggregator, reduce through the
// scoring engine, and store the result.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/cache"
	"github.com/phishguard/phishguard/internal/domaincheck"
	"github.com/phishguard/phishguard/internal/reputation"
	"github.com/phishguard/phishguard/internal/scoring"
	"github.com/phishguard/phishguard/internal/urlinspect"
)

// ErrMalformedURL is returned when the input is not a syntactically valid
// absolute URL. No partial verdict is produced.
var ErrMalformedURL = errors.New("malformed url")

// ErrTooManyURLs is returned by AnalyzeBatch before any analysis starts
// when the batch exceeds the configured maximum.
var ErrTooManyURLs = errors.New("too many urls in one batch")

// Analyzer runs the full assessment pipeline. Construct one per process
// and share it across requests; all mutable state lives in the injected
// cache.
type Analyzer struct {
	domains    *domaincheck.Checker
	inspector  *urlinspect.Inspector
	reputation *reputation.Aggregator
	cache      *cache.VerdictCache
	maxBatch   int
	logger     *zap.Logger
}

// New wires the pipeline together. maxBatch bounds AnalyzeBatch; zero
// means the default of 5.
func New(domains *domaincheck.Checker, inspector *urlinspect.Inspector, rep *reputation.Aggregator, vc *cache.VerdictCache, maxBatch int, logger *zap.Logger) *Analyzer {
	if maxBatch <= 0 {
		maxBatch = 5
	}
	return &Analyzer{
		domains:    domains,
		inspector:  inspector,
		reputation: rep,
		cache:      vc,
		maxBatch:   maxBatch,
		logger:     logger,
	}
}

// ValidateURL rejects anything that is not an absolute URL with a scheme
// and authority.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q has no scheme or host", ErrMalformedURL, rawURL)
	}
	return nil
}

// Analyze assesses one URL. Malformed input fails immediately, before any
// cache or provider work. The three signal sources have no data dependency
// on each other and run concurrently; the reduction to a verdict is
// synchronous and pure.
//
// Concurrent calls for the same URL may each compute a verdict; the cache
// tolerates the duplicate work (last store wins, no single-flight).
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*scoring.Verdict, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	if v := a.cache.Lookup(rawURL); v != nil {
		a.logger.Debug("verdict cache hit", zap.String("url", rawURL))
		return v, nil
	}

	var (
		wg              sync.WaitGroup
		rec             *domaincheck.Record
		recErr          error
		structureIssues []string
		contentIssues   []string
		rep             reputation.Summary
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		rec, recErr = a.domains.Check(ctx, rawURL)
	}()
	go func() {
		defer wg.Done()
		structureIssues = a.inspector.Structure(rawURL)
		contentIssues = a.inspector.Content(rawURL)
	}()
	go func() {
		defer wg.Done()
		rep = a.reputation.Check(ctx, rawURL)
	}()
	wg.Wait()

	if recErr != nil {
		// Cannot happen for input that passed validation, but a failed
		// domain check must not block the verdict: score without the
		// domain signals.
		a.logger.Warn("domain check failed", zap.String("url", rawURL), zap.Error(recErr))
		rec = nil
	}

	v := scoring.Score(rawURL, rec, structureIssues, contentIssues, rep)
	a.cache.Store(rawURL, v)

	a.logger.Info("url analyzed",
		zap.String("url", rawURL),
		zap.String("level", string(v.Level)),
		zap.Int("risk_score", v.RiskScore),
		zap.Float64("confidence", v.Confidence),
	)
	return v, nil
}

// BatchResult pairs one URL of a batch with its verdict or error.
type BatchResult struct {
	URL     string
	Verdict *scoring.Verdict
	Err     error
}

// AnalyzeBatch assesses up to the configured maximum of URLs concurrently
// and independently. Results preserve input order; a failure for one URL
// never affects the others.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, urls []string) ([]BatchResult, error) {
	if len(urls) > a.maxBatch {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyURLs, len(urls), a.maxBatch)
	}

	results := make([]BatchResult, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			v, err := a.Analyze(ctx, u)
			results[i] = BatchResult{URL: u, Verdict: v, Err: err}
		}(i, u)
	}
	wg.Wait()
	return results, nil
}

// MaxBatch reports the configured batch cap.
func (a *Analyzer) MaxBatch() int { return a.maxBatch }

// Stats exposes the cache's aggregate counters.
func (a *Analyzer) Stats() cache.Stats { return a.cache.Stats() }
