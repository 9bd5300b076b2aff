package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/linkguard/internal/core"
	"github.com/mikey/linkguard/internal/utils"
	"go.uber.org/zap"
)

// Server exposes the scan pipeline over HTTP
type Server struct {
	scanner     *core.Scanner
	text        *utils.TextProcessor
	logger      *zap.Logger
	httpSrv     *http.Server
	maxBodySize int
	startTime   time.Time
}

// NewServer creates a new HTTP API server
func NewServer(
	scanner *core.Scanner,
	text *utils.TextProcessor,
	logger *zap.Logger,
	listenAddress string,
	maxBodySize int,
) *Server {
	s := &Server{
		scanner:     scanner,
		text:        text,
		logger:      logger,
		maxBodySize: maxBodySize,
		startTime:   time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.POST("/scan", s.handleScan)
	router.POST("/scan-email", s.handleScanEmail)
	router.GET("/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:    listenAddress,
		Handler: router,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start begins serving requests in a background goroutine
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.httpSrv.Addr))

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpSrv.Shutdown(ctx)
}

// requestLogger logs each request with zap
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
