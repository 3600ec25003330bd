package driving

import "github.com/custodia-labs/orion/internal/core/domain"

// SettingsService reads and writes application settings.
type SettingsService interface {
	// Get returns the effective settings: file values over defaults, env over file.
	Get() (*domain.AppSettings, error)

	// Set stores a single dot-separated key.
	Set(key string, value any) error

	// Validate checks the effective settings.
	Validate() error
}
