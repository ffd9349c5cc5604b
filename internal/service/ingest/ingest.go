// Package ingest drives stage one of the pipeline: pending archives at the
// repository root become canonical package folders.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/onerepo/repogen/internal/common"
	"github.com/onerepo/repogen/internal/config"
	"github.com/onerepo/repogen/internal/entity"
	"github.com/spf13/afero"
)

const archiveExt = ".zip"

type ArchiveAdapter interface {
	Inspect(archivePath string) (*entity.Package, error)
	Materialize(repoDir string, pkg *entity.Package) error
}

type IngestService struct {
	fs      afero.Fs
	adapter ArchiveAdapter
	cfg     *config.Config
	log     *slog.Logger
}

func NewIngestService(fs afero.Fs, adapter ArchiveAdapter, cfg *config.Config, log *slog.Logger) *IngestService {
	return &IngestService{
		fs:      fs,
		adapter: adapter,
		cfg:     cfg,
		log:     log.With(slog.String("item", "IngestService")),
	}
}

// Run ingests every archive found directly at the repository root. Archives
// without a manifest are left in place; other per-archive failures are
// logged and the stage continues. The returned count is the number of
// archives materialized.
func (s *IngestService) Run(ctx context.Context) (int, error) {
	entries, err := afero.ReadDir(s.fs, s.cfg.RepoDir)
	if err != nil {
		return 0, fmt.Errorf("cannot read repository root: %w", err)
	}

	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), archiveExt) {
			archives = append(archives, filepath.Join(s.cfg.RepoDir, entry.Name()))
		}
	}

	if len(archives) == 0 {
		s.log.Info("No pending archives found")

		return 0, nil
	}

	processed := 0
	for _, archivePath := range archives {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		materialized, err := s.ingest(archivePath)
		if err != nil {
			s.log.Error("Cannot ingest archive", slog.String("archive", archivePath), slog.Any("error", err))

			continue
		}

		if materialized {
			processed++
		}
	}

	return processed, nil
}

// ingest processes one archive and reports whether it was materialized. A
// manifest-less archive is a skip, not an error.
func (s *IngestService) ingest(archivePath string) (bool, error) {
	pkg, err := s.adapter.Inspect(archivePath)
	if err != nil {
		if errors.Is(err, common.ErrManifestNotFound) {
			// The archive stays at the root untouched.
			s.log.Warn("Manifest not found in archive", slog.String("archive", archivePath))

			return false, nil
		}

		return false, fmt.Errorf("cannot inspect archive: %w", err)
	}

	if err := s.adapter.Materialize(s.cfg.RepoDir, pkg); err != nil {
		return false, fmt.Errorf("cannot materialize package %s: %w", pkg.FolderName(), err)
	}

	s.log.Info("Archive ingested",
		slog.String("package", pkg.FolderName()), slog.String("version", pkg.Version))

	return true, nil
}
