package reputation

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Summary is the reduced outcome of all provider checks. SafetyScore is
// 0–100, where 100 means no provider reported anything bad.
type Summary struct {
	SafetyScore int               `json:"safety_score"`
	Results     map[string]Result `json:"results"`
}

// Aggregator fans a URL out to every configured provider and reduces the
// results. Provider failures are isolated: one broken provider never aborts
// the others or the overall check.
type Aggregator struct {
	providers []Provider
	logger    *zap.Logger
}

// NewAggregator creates an Aggregator over the given providers.
func NewAggregator(logger *zap.Logger, providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers, logger: logger}
}

// Check queries all providers concurrently and computes the safety score.
func (a *Aggregator) Check(ctx context.Context, url string) Summary {
	results := make([]Result, len(a.providers))

	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			results[i] = p.Check(ctx, url)
		}(i, p)
	}
	wg.Wait()

	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Provider] = r
		if !r.Available {
			a.logger.Debug("reputation provider unavailable",
				zap.String("provider", r.Provider),
				zap.String("reason", r.Error),
			)
		}
	}

	return Summary{
		SafetyScore: safetyScore(results),
		Results:     byName,
	}
}

// safetyScore starts at 100 and subtracts per-provider penalties: up to 50
// for the vendor vote ratio and a flat 40 for a threat-list match.
// Unavailable providers subtract nothing.
func safetyScore(results []Result) int {
	score := 100.0

	for _, r := range results {
		if !r.Available {
			continue
		}
		if vr := r.VoteRatio; vr != nil && vr.Total > 0 {
			score -= float64(vr.Positives) / float64(vr.Total) * 50
		}
		if tm := r.ThreatMatch; tm != nil && !tm.IsSafe {
			score -= 40
		}
	}

	if score < 0 {
		return 0
	}
	return int(score)
}
