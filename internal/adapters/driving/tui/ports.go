// Package tui provides an interactive terminal user interface for orion.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/orion/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Query runs searches and reports library statistics.
	Query driving.QueryService

	// Ingest lists and deletes library documents. Optional; the
	// documents view reports it as unavailable when nil.
	Ingest driving.IngestService

	// UserEmail selects the library every view operates on.
	UserEmail string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(query driving.QueryService, ingest driving.IngestService, userEmail string) *Ports {
	return &Ports{
		Query:     query,
		Ingest:    ingest,
		UserEmail: userEmail,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Query == nil {
		return ErrMissingQueryService
	}
	if p.UserEmail == "" {
		return ErrMissingUserEmail
	}
	return nil
}
