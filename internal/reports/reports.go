// Package reports keeps user-filed phishing reports. The registry lives in
// memory for the process lifetime only — durable storage of known-bad
// domains is deliberately out of scope.
package reports

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a report.
type Status string

const (
	StatusOpen      Status = "open"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Report is a user-filed claim that a URL is phishing.
type Report struct {
	ID         uuid.UUID `json:"id"`
	URL        string    `json:"url"`
	Domain     string    `json:"domain"`
	Reason     string    `json:"reason"`
	ReporterID string    `json:"reporter_id,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ErrNotFound is returned when no report exists for an ID.
var ErrNotFound = errors.New("report not found")

// Store is a mutex-guarded in-memory report registry.
type Store struct {
	mu      sync.RWMutex
	reports []*Report
	byID    map[uuid.UUID]*Report
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[uuid.UUID]*Report)}
}

// File records a new open report for rawURL. The domain is derived from
// the URL for later per-domain queries.
func (s *Store) File(_ context.Context, rawURL, reason, reporterID string) (*Report, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("report target is not a valid url: %q", rawURL)
	}

	r := &Report{
		ID:         uuid.New(),
		URL:        rawURL,
		Domain:     strings.ToLower(u.Hostname()),
		Reason:     reason,
		ReporterID: reporterID,
		Status:     StatusOpen,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	s.byID[r.ID] = r
	return r, nil
}

// List returns all reports, oldest first.
func (s *Store) List(_ context.Context) []*Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Resolve moves a report to resolved or dismissed.
func (s *Store) Resolve(_ context.Context, id uuid.UUID, status Status) (*Report, error) {
	if status != StatusResolved && status != StatusDismissed {
		return nil, fmt.Errorf("invalid resolution status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	return r, nil
}

// HasOpenReports reports whether any open report names the domain.
func (s *Store) HasOpenReports(_ context.Context, domain string) bool {
	domain = strings.ToLower(domain)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.Status == StatusOpen && r.Domain == domain {
			return true
		}
	}
	return false
}
