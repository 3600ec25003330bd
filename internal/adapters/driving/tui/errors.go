package tui

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrMissingUserEmail is returned when no library owner is configured.
var ErrMissingUserEmail = errors.New("tui: user email is required")
