// Package mcp provides an MCP (Model Context Protocol) server adapter for Orion.
// It lets AI assistants search document libraries and inspect their statistics.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
