package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phishguard/phishguard/pkg/client"
)

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost || req.URL.Path != "/api/v1/analyze" {
			t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.URL != "https://meet.google.com/abc" {
			t.Errorf("url: got %q", body.URL)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"url":        body.URL,
			"domain":     "meet.google.com",
			"level":      "SAFE",
			"confidence": 100,
			"risk_score": 0,
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	v, err := c.Analyze(context.Background(), "https://meet.google.com/abc")
	if err != nil {
		t.Fatal(err)
	}
	if v.Level != client.LevelSafe {
		t.Errorf("level: got %s, want SAFE", v.Level)
	}
	if v.Domain != "meet.google.com" {
		t.Errorf("domain: got %q", v.Domain)
	}
}

func TestAnalyze_apiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid URL format"}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.Analyze(context.Background(), "not a url")

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error: got %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid URL format" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestAnalyze_nonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "upstream blew up", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.Analyze(context.Background(), "https://example.com/")

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error: got %v, want *APIError", err)
	}
	if apiErr.Message != "upstream blew up" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestBearerTokenSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization: got %q", got)
		}
		w.Write([]byte(`{"total_checks":1,"threats_found":0,"cache_hits":0,"detection_rate":0}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithBearerToken("secret-token"))
	if _, err := c.Stats(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestScanText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/v1/scan" {
			t.Errorf("path: got %s", req.URL.Path)
		}
		w.Write([]byte(`{
			"urls": ["https://meet.google.com/abc"],
			"results": [{"url": "https://meet.google.com/abc", "verdict": {"level": "SAFE"}}]
		}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	resp, err := c.ScanText(context.Background(), "join https://meet.google.com/abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Verdict.Level != client.LevelSafe {
		t.Errorf("scan response: %+v", resp)
	}
}

func TestReportPhishing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			URL    string `json:"url"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Reason != "fake invite" {
			t.Errorf("reason: got %q", body.Reason)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "3f1f9a52-0000-0000-0000-000000000000",
			"url":    body.URL,
			"domain": "evil.tk",
			"status": "open",
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	r, err := c.ReportPhishing(context.Background(), "https://evil.tk/login", "fake invite")
	if err != nil {
		t.Fatal(err)
	}
	if r.Domain != "evil.tk" || r.Status != "open" {
		t.Errorf("report: %+v", r)
	}
}

func TestDomainReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/v1/domains/evil.tk/reported" {
			t.Errorf("path: got %s", req.URL.Path)
		}
		w.Write([]byte(`{"domain":"evil.tk","reported":true}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	reported, err := c.DomainReported(context.Background(), "evil.tk")
	if err != nil {
		t.Fatal(err)
	}
	if !reported {
		t.Error("expected reported=true")
	}
}
