package domaincheck

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// AgeLookup resolves the registration age of a domain. ok is false when the
// age cannot be determined; callers must treat unknown as "no evidence",
// never as a penalty.
type AgeLookup interface {
	Age(ctx context.Context, domain string) (days int, ok bool)
}

// TLSChecker reports whether a domain presents a valid TLS certificate.
type TLSChecker interface {
	Valid(ctx context.Context, domain string) bool
}

// NoAgeLookup always reports the age as unknown. This is the default: real
// WHOIS/RDAP integration is deployment-specific.
type NoAgeLookup struct{}

// Age implements AgeLookup.
func (NoAgeLookup) Age(context.Context, string) (int, bool) { return 0, false }

// HeuristicAgeLookup is the aggressive legacy policy: allowlisted domains
// are assumed long-registered, everything else newly registered. It must be
// selected explicitly via configuration — it is a fallback policy, not a
// real lookup.
type HeuristicAgeLookup struct {
	legitimate map[string]struct{}
}

// NewHeuristicAgeLookup builds the lookup over the flattened allowlist.
func NewHeuristicAgeLookup(legitimate []string) *HeuristicAgeLookup {
	set := make(map[string]struct{}, len(legitimate))
	for _, d := range legitimate {
		set[d] = struct{}{}
	}
	return &HeuristicAgeLookup{legitimate: set}
}

// Age implements AgeLookup.
func (h *HeuristicAgeLookup) Age(_ context.Context, domain string) (int, bool) {
	if _, ok := h.legitimate[domain]; ok {
		return 365, true
	}
	return 5, true
}

// DialTLSChecker probes port 443 with a real TLS handshake. A failed dial,
// handshake or verification within the timeout counts as invalid.
type DialTLSChecker struct {
	Timeout time.Duration
}

// Valid implements TLSChecker.
func (d *DialTLSChecker) Valid(ctx context.Context, domain string) bool {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: timeout}}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(domain, "443"))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// StaticTLSChecker assumes allowlisted domains present valid certificates
// and everything else does not. For offline runs and tests.
type StaticTLSChecker struct {
	legitimate map[string]struct{}
}

// NewStaticTLSChecker builds the checker over the flattened allowlist.
func NewStaticTLSChecker(legitimate []string) *StaticTLSChecker {
	set := make(map[string]struct{}, len(legitimate))
	for _, d := range legitimate {
		set[d] = struct{}{}
	}
	return &StaticTLSChecker{legitimate: set}
}

// Valid implements TLSChecker.
func (s *StaticTLSChecker) Valid(_ context.Context, domain string) bool {
	_, ok := s.legitimate[domain]
	return ok
}
