// Package httpapi exposes the analysis engine over a JSON HTTP API.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/analyzer"
	"github.com/phishguard/phishguard/internal/extract"
	"github.com/phishguard/phishguard/internal/ratelimit"
	"github.com/phishguard/phishguard/internal/reports"
	"github.com/phishguard/phishguard/internal/scoring"
)

// Handler carries the wired core components for all API endpoints.
type Handler struct {
	analyzer *analyzer.Analyzer
	limiter  *ratelimit.SlidingWindow
	reports  *reports.Store
	window   time.Duration
	logger   *zap.Logger
}

// NewHandler creates a Handler. window is the rate-limit window, used for
// the Retry-After hint on rejections.
func NewHandler(a *analyzer.Analyzer, limiter *ratelimit.SlidingWindow, rs *reports.Store, window time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: a,
		limiter:  limiter,
		reports:  rs,
		window:   window,
		logger:   logger,
	}
}

// Register mounts all API routes on the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.Analyze)
	rg.POST("/scan", h.ScanText)
	rg.GET("/stats", h.Stats)
	rg.POST("/reports", h.FileReport)
	rg.GET("/reports", h.ListReports)
	rg.PATCH("/reports/:id", h.ResolveReport)
	rg.GET("/domains/:domain/reported", h.DomainReported)
}

type analyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

// Analyze handles POST /analyze — assess a single URL.
func (h *Handler) Analyze(c *gin.Context) {
	if !h.admit(c) {
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	v, err := h.analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, analyzer.ErrMalformedURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid URL format"})
			return
		}
		h.logger.Error("analyze", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	recordAnalysis(string(v.Level))
	c.JSON(http.StatusOK, v)
}

type scanRequest struct {
	Text string `json:"text" binding:"required"`
}

// scanResult is the per-URL outcome of a text scan.
type scanResult struct {
	URL     string           `json:"url"`
	Verdict *scoring.Verdict `json:"verdict,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ScanText handles POST /scan — extract URLs from free text and assess
// each independently. The batch cap applies before any analysis starts.
func (h *Handler) ScanText(c *gin.Context) {
	if !h.admit(c) {
		return
	}

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	urls := extract.URLs(req.Text)
	if len(urls) == 0 {
		c.JSON(http.StatusOK, gin.H{"urls": []string{}, "results": []scanResult{}})
		return
	}
	if len(urls) > h.analyzer.MaxBatch() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "too many URLs in one message, send up to " + strconv.Itoa(h.analyzer.MaxBatch()),
		})
		return
	}

	batch, err := h.analyzer.AnalyzeBatch(c.Request.Context(), urls)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := make([]scanResult, len(batch))
	for i, b := range batch {
		results[i] = scanResult{URL: b.URL, Verdict: b.Verdict}
		if b.Err != nil {
			results[i].Error = b.Err.Error()
		} else {
			recordAnalysis(string(b.Verdict.Level))
		}
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls, "results": results})
}

// Stats handles GET /stats — aggregate counters plus the derived detection
// rate.
func (h *Handler) Stats(c *gin.Context) {
	stats := h.analyzer.Stats()

	total := stats.TotalChecks
	if total == 0 {
		total = 1
	}
	c.JSON(http.StatusOK, gin.H{
		"total_checks":   stats.TotalChecks,
		"threats_found":  stats.ThreatsFound,
		"cache_hits":     stats.CacheHits,
		"detection_rate": float64(stats.ThreatsFound) / float64(total) * 100,
	})
}

type fileReportRequest struct {
	URL    string `json:"url" binding:"required"`
	Reason string `json:"reason"`
}

// FileReport handles POST /reports — file a phishing report.
func (h *Handler) FileReport(c *gin.Context) {
	var req fileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	r, err := h.reports.File(c.Request.Context(), req.URL, req.Reason, callerID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pgReportsTotal.Inc()
	c.JSON(http.StatusCreated, r)
}

// ListReports handles GET /reports.
func (h *Handler) ListReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": h.reports.List(c.Request.Context())})
}

type resolveReportRequest struct {
	Status reports.Status `json:"status" binding:"required"`
}

// ResolveReport handles PATCH /reports/:id — mark a report resolved or
// dismissed.
func (h *Handler) ResolveReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}

	var req resolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	r, err := h.reports.Resolve(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// DomainReported handles GET /domains/:domain/reported — whether any open
// report names the domain.
func (h *Handler) DomainReported(c *gin.Context) {
	domain := c.Param("domain")
	c.JSON(http.StatusOK, gin.H{
		"domain":   domain,
		"reported": h.reports.HasOpenReports(c.Request.Context(), domain),
	})
}

// admit applies the per-caller sliding window. On rejection it writes the
// 429 itself and returns false.
func (h *Handler) admit(c *gin.Context) bool {
	caller := callerID(c)
	if h.limiter.Admit(caller) {
		return true
	}

	pgRateLimitedTotal.Inc()
	h.logger.Info("caller rate limited", zap.String("caller", caller))
	c.Header("Retry-After", strconv.Itoa(int(h.window.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "rate limit exceeded, please wait before sending more requests",
	})
	return false
}
