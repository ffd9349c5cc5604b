package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/onerepo/repogen/internal/adapter/zipadapter"
	"github.com/onerepo/repogen/internal/config"
	"github.com/onerepo/repogen/internal/service/aggregate"
	"github.com/onerepo/repogen/internal/service/ingest"
	"github.com/onerepo/repogen/internal/service/listing"
	"github.com/spf13/afero"
)

type App struct {
	cfgPath string
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

// Run executes one full pipeline pass and returns when it completes.
func (a *App) Run(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	lo := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		return fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, lo)).With(slog.String("run_id", uuid.NewString()))

	return RunPipeline(ctx, afero.NewOsFs(), cfg, log)
}

// loadConfig falls back to defaults rooted at the current directory when no
// config file is present.
func (a *App) loadConfig() (*config.Config, error) {
	if _, err := os.Stat(a.cfgPath); os.IsNotExist(err) {
		return config.Default("."), nil
	}

	return config.Load(a.cfgPath)
}

// RunPipeline drives the three stages strictly in order against fs. Each
// stage depends on the completed on-disk state of the previous one.
func RunPipeline(ctx context.Context, fs afero.Fs, cfg *config.Config, log *slog.Logger) error {
	adapter := zipadapter.NewZipAdapterWithFS(fs, cfg, log)

	ingested, err := ingest.NewIngestService(fs, adapter, cfg, log).Run(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	packages, err := aggregate.NewAggregateService(fs, cfg, log).Run(ctx)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	if err := listing.NewListingServiceWithFS(fs, cfg, log).Run(ctx); err != nil {
		return fmt.Errorf("listing synthesis failed: %w", err)
	}

	log.Info("Pipeline finished",
		slog.Int("archives_ingested", ingested), slog.Int("packages_aggregated", packages))

	return nil
}
