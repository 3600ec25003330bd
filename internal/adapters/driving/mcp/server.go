package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/logger"
)

// DefaultVersion is reported to clients when no version is configured.
const DefaultVersion = "dev"

const shutdownTimeout = 5 * time.Second

// Server exposes library search to MCP clients.
type Server struct {
	ports    *Ports
	version  string
	defaults domain.SearchSettings
	server   *mcp.Server
}

// Option configures the server.
type Option func(*Server)

// WithVersion sets the implementation version announced during initialisation.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithSearchDefaults sets the algorithm and limit used when a search
// call leaves them out.
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

// NewServer creates an MCP server over the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:    ports,
		version:  DefaultVersion,
		defaults: domain.DefaultAppSettings().Search,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{Name: "orion", Version: s.version}, nil)
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Version returns the announced implementation version.
func (s *Server) Version() string {
	return s.version
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("mcp: serving streamable HTTP on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
