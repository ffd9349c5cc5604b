// Package aggregate drives stage two of the pipeline: package manifests are
// merged into the repository manifest and its digest.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/onerepo/repogen/internal/common"
	"github.com/onerepo/repogen/internal/config"
	"github.com/onerepo/repogen/internal/manifest"
	"github.com/onerepo/repogen/internal/util"
	"github.com/spf13/afero"
)

type AggregateService struct {
	fs       afero.Fs
	cfg      *config.Config
	excluded map[string]struct{}
	log      *slog.Logger
}

func NewAggregateService(fs afero.Fs, cfg *config.Config, log *slog.Logger) *AggregateService {
	excluded := make(map[string]struct{}, len(cfg.ExcludedDirs))
	for _, name := range cfg.ExcludedDirs {
		excluded[name] = struct{}{}
	}

	return &AggregateService{
		fs:       fs,
		cfg:      cfg,
		excluded: excluded,
		log:      log.With(slog.String("item", "AggregateService")),
	}
}

// Run rebuilds the aggregate manifest and its digest from scratch. A package
// folder whose manifest cannot be parsed is excluded and logged; failure to
// write either output aborts the run.
func (s *AggregateService) Run(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	manifests, err := s.collect()
	if err != nil {
		return 0, err
	}

	sort.SliceStable(manifests, func(i, j int) bool {
		return strings.ToLower(manifests[i].ID) < strings.ToLower(manifests[j].ID)
	})

	roots := make([]*manifest.Node, 0, len(manifests))
	for _, m := range manifests {
		roots = append(roots, m.Root)
	}

	data := manifest.Serialize(manifest.Aggregate(roots))

	aggregatePath := filepath.Join(s.cfg.RepoDir, s.cfg.AggregateName)
	if err := afero.WriteFile(s.fs, aggregatePath, data, 0o644); err != nil {
		return 0, fmt.Errorf("cannot write aggregate manifest: %w", err)
	}

	digestPath := filepath.Join(s.cfg.RepoDir, s.cfg.DigestName)
	if err := afero.WriteFile(s.fs, digestPath, []byte(util.MD5Hex(data)), 0o644); err != nil {
		return 0, fmt.Errorf("cannot write digest: %w", err)
	}

	s.log.Info("Aggregate manifest written",
		slog.String("path", aggregatePath), slog.Int("packages", len(manifests)))

	return len(manifests), nil
}

// collect gathers parseable manifests from the immediate subdirectories of
// the repository root, skipping excluded directory names by exact match.
func (s *AggregateService) collect() ([]*manifest.Manifest, error) {
	entries, err := afero.ReadDir(s.fs, s.cfg.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read repository root: %w", err)
	}

	var manifests []*manifest.Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, skip := s.excluded[entry.Name()]; skip {
			continue
		}

		manifestPath := filepath.Join(s.cfg.RepoDir, entry.Name(), s.cfg.ManifestFileName)
		if exists, _ := afero.Exists(s.fs, manifestPath); !exists {
			continue
		}

		data, err := afero.ReadFile(s.fs, manifestPath)
		if err != nil {
			s.log.Error("Cannot read manifest", slog.String("path", manifestPath), slog.Any("error", err))

			continue
		}

		m, err := manifest.Parse(data)
		if err != nil {
			s.log.Error("Cannot parse manifest", slog.String("path", manifestPath), slog.Any("error", err))

			continue
		}

		if m.Root.XMLName.Local != manifest.RootTag {
			s.log.Warn("Manifest excluded", slog.String("path", manifestPath),
				slog.String("tag", m.Root.XMLName.Local), slog.Any("error", common.ErrWrongManifestRoot))

			continue
		}

		manifests = append(manifests, m)
	}

	return manifests, nil
}
