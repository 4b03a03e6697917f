// Command server runs the PhishGuard URL threat assessment API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/analyzer"
	"github.com/phishguard/phishguard/internal/cache"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/domaincheck"
	"github.com/phishguard/phishguard/internal/httpapi"
	"github.com/phishguard/phishguard/internal/ratelimit"
	"github.com/phishguard/phishguard/internal/reports"
	"github.com/phishguard/phishguard/internal/reputation"
	"github.com/phishguard/phishguard/internal/urlinspect"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfgFile := flag.String("config", "", "config file (default: configs/phishguard.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ── Lookup capabilities ──────────────────────────────────────────────────
	legitimate := domaincheck.Flatten(cfg.Tables.LegitimateDomains)

	var age domaincheck.AgeLookup = domaincheck.NoAgeLookup{}
	if cfg.Lookup.AgeMode == "heuristic" {
		age = domaincheck.NewHeuristicAgeLookup(legitimate)
		logger.Warn("domain age lookup: heuristic mode — unknown domains are scored as newly registered")
	}

	var tlsCheck domaincheck.TLSChecker
	if cfg.Lookup.TLSMode == "static" {
		tlsCheck = domaincheck.NewStaticTLSChecker(legitimate)
		logger.Warn("TLS check: static mode — no real handshake probes")
	} else {
		tlsCheck = &domaincheck.DialTLSChecker{Timeout: cfg.Lookup.DialTimeout}
	}

	// ── Core components ──────────────────────────────────────────────────────
	checker := domaincheck.NewChecker(cfg.Tables.LegitimateDomains, cfg.Tables.SuspiciousTLDs, age, tlsCheck)
	inspector := urlinspect.NewInspector(cfg.Tables.Shorteners, cfg.Tables.SuspiciousWords)

	aggregator := reputation.NewAggregator(logger,
		reputation.NewVoteRatioProvider(cfg.Providers.VoteRatioAPIKey, cfg.Providers.VoteRatioBaseURL, cfg.Providers.Timeout),
		reputation.NewThreatMatchProvider(cfg.Providers.ThreatAPIKey, cfg.Providers.ThreatBaseURL, cfg.Providers.Timeout),
	)
	if cfg.Providers.VoteRatioAPIKey == "" && cfg.Providers.ThreatAPIKey == "" {
		logger.Warn("no reputation provider configured — safety score will always be 100")
	}

	verdicts := cache.New(cfg.Cache.TTL)
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	reportStore := reports.NewStore()

	engine := analyzer.New(checker, inspector, aggregator, verdicts, cfg.Analysis.MaxBatchSize, logger)

	// ── HTTP ─────────────────────────────────────────────────────────────────
	handler := httpapi.NewHandler(engine, limiter, reportStore, cfg.RateLimit.Window, logger)
	router := httpapi.NewRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("phishguard HTTP listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP listen error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}
