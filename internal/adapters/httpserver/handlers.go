package httpserver

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
)

type scanRequest struct {
	URL          string `json:"url"`
	AnchorText   string `json:"anchorText"`
	SenderDomain string `json:"senderDomain"`
}

type scanEmailRequest struct {
	Headers string           `json:"headers"`
	Body    string           `json:"body"`
	Links   []core.EmailLink `json:"links"`
}

// handleScan serves POST /scan
func (s *Server) handleScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "url_required"})
		return
	}

	verdict, err := s.scanner.Aggregate(c.Request.Context(), core.ScanTarget{
		URL:          req.URL,
		AnchorText:   req.AnchorText,
		SenderDomain: req.SenderDomain,
	})
	if err != nil {
		s.logger.Error("Scan failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "scan_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"url":       verdict.URL,
		"verdict":   verdict.Verdict,
		"score":     verdict.Score,
		"breakdown": verdict.Breakdown,
		"cached":    verdict.Cached,
	})
}

// handleScanEmail serves POST /scan-email
func (s *Server) handleScanEmail(c *gin.Context) {
	var req scanEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "body_required"})
		return
	}

	body := s.text.TruncateText(s.text.SanitizeUTF8(req.Body), s.maxBodySize)
	headers := s.text.SanitizeUTF8(req.Headers)

	verdict, err := s.scanner.ScoreEmail(c.Request.Context(), headers, body, req.Links)
	if err != nil {
		if errors.Is(err, core.ErrEmptyBody) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "body_required"})
			return
		}
		s.logger.Error("Email scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "email_scan_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"verdict":   verdict.Verdict,
		"score":     verdict.Score,
		"breakdown": verdict.Breakdown,
	})
}

// handleHealth serves GET /health
func (s *Server) handleHealth(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	})
}
