// Package api exposes library search and ingestion over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
	"github.com/custodia-labs/orion/internal/logger"
)

const (
	serviceName     = "orion"
	shutdownTimeout = 10 * time.Second

	// DefaultMaxUploadSize bounds multipart uploads.
	DefaultMaxUploadSize = 50 << 20
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("api: query service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Query runs searches and reports library statistics.
	Query driving.QueryService

	// Ingest manages documents. Optional; document routes are omitted when nil.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}

// Option configures the server.
type Option func(*Server)

// WithCORSOrigins restricts cross-origin requests to the given origins.
// With no origins every origin is allowed.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMaxUploadSize sets the multipart upload limit in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithSearchDefaults sets the algorithm and limit used when a query
// request leaves them out.
func WithSearchDefaults(d domain.SearchSettings) Option {
	return func(s *Server) {
		if d.DefaultAlgorithm.IsValid() {
			s.defaults.DefaultAlgorithm = d.DefaultAlgorithm
		}
		if d.DefaultLimit > 0 {
			s.defaults.DefaultLimit = d.DefaultLimit
		}
	}
}

// Server is the HTTP API server.
type Server struct {
	ports       *Ports
	router      *gin.Engine
	corsOrigins []string
	maxUpload   int64
	defaults    domain.SearchSettings
}

// NewServer creates an API server over the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		ports:     ports,
		maxUpload: DefaultMaxUploadSize,
		defaults:  domain.DefaultAppSettings().Search,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(s.corsOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.corsOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	v1.POST("/query", s.handleQuery)
	v1.GET("/algorithms", s.handleAlgorithms)
	v1.GET("/libraries/:email/stats", s.handleStats)

	if s.ports.Ingest != nil {
		v1.GET("/libraries/:email/documents", s.handleListDocuments)
		v1.POST("/libraries/:email/documents", s.handleUpload)
		v1.DELETE("/libraries/:email/documents/:id", s.handleDeleteDocument)
	}

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
