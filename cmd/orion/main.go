// Command orion searches per-user document libraries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/orion/internal/adapters/driven/ai"
	"github.com/custodia-labs/orion/internal/adapters/driven/config/file"
	"github.com/custodia-labs/orion/internal/adapters/driven/repository"
	"github.com/custodia-labs/orion/internal/adapters/driven/storage"
	"github.com/custodia-labs/orion/internal/adapters/driving/cli"
	"github.com/custodia-labs/orion/internal/core/search"
	"github.com/custodia-labs/orion/internal/core/services"
	"github.com/custodia-labs/orion/internal/extractors"
	"github.com/custodia-labs/orion/internal/logger"
	"github.com/custodia-labs/orion/internal/postprocessors"
	"github.com/custodia-labs/orion/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetServiceFactory(buildServices)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// buildServices wires adapters into services. Settings are always available;
// query and ingest need a reachable embedding provider, and their absence is
// reported through Services.SetupErr rather than failing every command.
func buildServices(ctx context.Context, configPath string) (*cli.Services, error) {
	var (
		configStore *file.ConfigStore
		err         error
	)
	if configPath != "" {
		configStore, err = file.NewConfigStoreAt(configPath)
	} else {
		configStore, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, "")
	out := &cli.Services{
		Settings:      settingsService,
		PingEmbedding: ai.ValidateEmbeddingConfig,
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	logger.Debug("config: %s", configStore.Path())

	shutdownTracer, err := telemetry.InitTracer(ctx, settings.Telemetry, version)
	if err != nil {
		logger.Warn("tracing disabled: %v", err)
		shutdownTracer = nil
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Warn("metrics disabled: %v", err)
		metrics = nil
	}

	store, err := storage.Open(settings.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	closers := []func() error{store.Close}
	if shutdownTracer != nil {
		closers = append(closers, func() error { return shutdownTracer(context.Background()) })
	}
	out.Close = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	registry, err := search.NewDefaultRegistry(settings.Search)
	if err != nil {
		out.SetupErr = fmt.Errorf("search: %w", err)
		return out, nil
	}

	chunker, err := postprocessors.BuildFromSettings(postprocessors.NewDefaultRegistry(), settings.Ingest)
	if err != nil {
		out.SetupErr = fmt.Errorf("chunker: %w", err)
		return out, nil
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, settings, metrics)
	if err != nil {
		logger.Debug("embedding unavailable: %v", err)
		out.SetupErr = err
		return out, nil
	}
	closers = append(closers, embedder.Close)

	engine := services.NewLibrarySearchEngine(embedder, registry)
	out.Query = services.NewQueryService(repository.NewLibraryRepository(store), engine, metrics)
	out.Ingest = services.NewIngestService(
		store, extractors.NewDefaultRegistry(), chunker, embedder, *settings, metrics,
	)
	return out, nil
}
