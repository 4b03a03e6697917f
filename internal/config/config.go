// Package config loads PhishGuard configuration via viper. Every knob has a
// default, so the service runs with no config file at all; a yaml file or
// PHISHGUARD_* environment variables override individual keys.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed snapshot handed to the rest of the service.
type Config struct {
	Server    ServerConfig
	Analysis  AnalysisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Providers ProvidersConfig
	Lookup    LookupConfig
	Tables    Tables
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port         int
	CORSOrigins  []string
	TransportRPS int
	JWTSecret    string
}

// AnalysisConfig bounds the analysis pipeline.
type AnalysisConfig struct {
	MaxBatchSize int
}

// CacheConfig configures the verdict cache.
type CacheConfig struct {
	TTL time.Duration
}

// RateLimitConfig configures per-caller admission.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// ProvidersConfig holds reputation provider credentials and endpoints.
// An empty API key leaves the corresponding provider unconfigured; the
// aggregator treats it as unavailable rather than failing.
type ProvidersConfig struct {
	Timeout          time.Duration
	VoteRatioAPIKey  string
	VoteRatioBaseURL string
	ThreatAPIKey     string
	ThreatBaseURL    string
}

// LookupConfig selects the domain age and TLS lookup implementations.
//
//   - age_mode: "none" (age always unknown) or "heuristic" (unknown domains
//     are assumed newly registered — the aggressive legacy policy).
//   - tls_mode: "dial" (real TLS handshake probe) or "static" (assume valid
//     only for allowlisted domains — for offline runs).
type LookupConfig struct {
	AgeMode     string
	TLSMode     string
	DialTimeout time.Duration
}

// Tables holds the externally loaded detection data.
type Tables struct {
	// LegitimateDomains maps service family → exact allowlisted domains.
	LegitimateDomains map[string][]string
	SuspiciousTLDs    []string
	SuspiciousWords   []string
	Shorteners        []string
}

// Load reads configuration from the given file (optional), the configs/
// directory and the environment, and returns the typed snapshot.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("phishguard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("configs")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("phishguard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			CORSOrigins:  viper.GetStringSlice("server.cors_origins"),
			TransportRPS: viper.GetInt("server.transport_rps"),
			JWTSecret:    viper.GetString("server.jwt_secret"),
		},
		Analysis: AnalysisConfig{
			MaxBatchSize: viper.GetInt("analysis.max_batch_size"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(viper.GetInt("cache.ttl_seconds")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: viper.GetInt("ratelimit.max_requests"),
			Window:      time.Duration(viper.GetInt("ratelimit.window_seconds")) * time.Second,
		},
		Providers: ProvidersConfig{
			Timeout:          viper.GetDuration("providers.timeout"),
			VoteRatioAPIKey:  viper.GetString("providers.voteratio.api_key"),
			VoteRatioBaseURL: viper.GetString("providers.voteratio.base_url"),
			ThreatAPIKey:     viper.GetString("providers.threatmatch.api_key"),
			ThreatBaseURL:    viper.GetString("providers.threatmatch.base_url"),
		},
		Lookup: LookupConfig{
			AgeMode:     viper.GetString("lookup.age_mode"),
			TLSMode:     viper.GetString("lookup.tls_mode"),
			DialTimeout: viper.GetDuration("lookup.dial_timeout"),
		},
		Tables: Tables{
			LegitimateDomains: viper.GetStringMapStringSlice("tables.legitimate_domains"),
			SuspiciousTLDs:    viper.GetStringSlice("tables.suspicious_tlds"),
			SuspiciousWords:   viper.GetStringSlice("tables.suspicious_keywords"),
			Shorteners:        viper.GetStringSlice("tables.shorteners"),
		},
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("server.transport_rps", 20)
	viper.SetDefault("server.jwt_secret", "")

	viper.SetDefault("analysis.max_batch_size", 5)

	viper.SetDefault("cache.ttl_seconds", 86400)

	viper.SetDefault("ratelimit.max_requests", 10)
	viper.SetDefault("ratelimit.window_seconds", 3600)

	viper.SetDefault("providers.timeout", "10s")
	viper.SetDefault("providers.voteratio.api_key", "")
	viper.SetDefault("providers.voteratio.base_url", "https://www.virustotal.com/vtapi/v2")
	viper.SetDefault("providers.threatmatch.api_key", "")
	viper.SetDefault("providers.threatmatch.base_url", "https://safebrowsing.googleapis.com/v4/threatMatches:find")

	viper.SetDefault("lookup.age_mode", "none")
	viper.SetDefault("lookup.tls_mode", "dial")
	viper.SetDefault("lookup.dial_timeout", "5s")

	viper.SetDefault("tables.legitimate_domains", map[string][]string{
		"google_meet":     {"meet.google.com"},
		"zoom":            {"zoom.us", "us02web.zoom.us", "us04web.zoom.us", "us05web.zoom.us"},
		"microsoft_teams": {"teams.microsoft.com", "teams.live.com"},
		"webex":           {"webex.com"},
		"skype":           {"join.skype.com"},
		"discord":         {"discord.gg", "discord.com"},
	})
	viper.SetDefault("tables.suspicious_tlds", []string{
		".tk", ".ml", ".ga", ".cf", ".click", ".download", ".stream",
	})
	viper.SetDefault("tables.suspicious_keywords", []string{
		"urgent", "verify", "suspended", "click", "now", "limited", "expire",
	})
	viper.SetDefault("tables.shorteners", []string{
		"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly",
	})
}
