// Package services implements the driving port interfaces.
//
// LibrarySearchEngine runs one algorithm over a loaded Library. QueryService
// validates a request, loads the user's library through the repository and
// hands it to the engine. IngestService turns uploaded files into stored
// embedding sets, and SettingsService resolves AppSettings from the config store.
//
// Services only talk to driven ports; tracing and metrics are optional and
// come in through internal/telemetry.
package services
