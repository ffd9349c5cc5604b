// Package zipadapter inspects addon archives and materializes them as
// package folders.
package zipadapter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/onerepo/repogen/internal/common"
	"github.com/onerepo/repogen/internal/config"
	"github.com/onerepo/repogen/internal/entity"
	"github.com/onerepo/repogen/internal/manifest"
	"github.com/spf13/afero"
)

type zipAdapter struct {
	fs  afero.Fs
	cfg *config.Config
	log *slog.Logger
}

func NewZipAdapter(cfg *config.Config, log *slog.Logger) *zipAdapter {
	return NewZipAdapterWithFS(afero.NewOsFs(), cfg, log)
}

func NewZipAdapterWithFS(fs afero.Fs, cfg *config.Config, log *slog.Logger) *zipAdapter {
	return &zipAdapter{
		fs:  fs,
		cfg: cfg,
		log: log.With(slog.String("item", "ZipAdapter")),
	}
}

// Inspect locates and parses the manifest inside the archive. It returns
// common.ErrManifestNotFound when the archive carries no manifest entry.
func (a *zipAdapter) Inspect(archivePath string) (*entity.Package, error) {
	zr, err := a.openArchive(archivePath)
	if err != nil {
		return nil, err
	}

	entry := a.findManifest(zr)
	if entry == nil {
		return nil, common.ErrManifestNotFound
	}

	raw, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest entry: %w", err)
	}

	m, err := manifest.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot parse manifest of %s: %w", archivePath, err)
	}

	internalDir := path.Dir(entry.Name)
	if internalDir == "." {
		internalDir = ""
	}

	return &entity.Package{
		ID:          m.ID,
		Version:     m.Version,
		InternalDir: internalDir,
		Manifest:    raw,
		Assets:      m.Assets,
		ArchivePath: archivePath,
	}, nil
}

// Materialize writes the package folder for an inspected archive: manifest,
// declared assets, then the archive itself under its canonical name. A
// declared asset missing from the archive is logged and skipped.
func (a *zipAdapter) Materialize(repoDir string, pkg *entity.Package) error {
	folder := filepath.Join(repoDir, pkg.FolderName())
	if err := a.fs.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("cannot create package folder: %w", err)
	}

	if err := afero.WriteFile(a.fs, filepath.Join(folder, a.cfg.ManifestFileName), pkg.Manifest, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	if len(pkg.Assets) > 0 {
		zr, err := a.openArchive(pkg.ArchivePath)
		if err != nil {
			return err
		}

		entries := make(map[string]*zip.File, len(zr.File))
		for _, f := range zr.File {
			entries[f.Name] = f
		}

		for _, asset := range pkg.Assets {
			internal := strings.TrimLeft(path.Join(pkg.InternalDir, asset), "/")
			entry, exists := entries[internal]
			if !exists {
				a.log.Warn("Asset not found in archive",
					slog.String("archive", pkg.ArchivePath), slog.String("asset", internal))

				continue
			}

			if err := a.extractAsset(entry, filepath.Join(folder, filepath.FromSlash(asset))); err != nil {
				return fmt.Errorf("cannot extract asset %s: %w", internal, err)
			}
		}
	}

	return a.moveArchive(pkg, folder)
}

func (a *zipAdapter) openArchive(archivePath string) (*zip.Reader, error) {
	data, err := afero.ReadFile(a.fs, archivePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read archive: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("cannot open archive %s: %w", archivePath, err)
	}

	return zr, nil
}

func (a *zipAdapter) findManifest(zr *zip.Reader) *zip.File {
	want := strings.ToLower(a.cfg.ManifestFileName)
	for _, f := range zr.File {
		low := strings.ToLower(f.Name)
		if low == want || strings.HasSuffix(low, "/"+want) {
			return f
		}
	}

	return nil
}

func (a *zipAdapter) extractAsset(entry *zip.File, target string) error {
	if err := a.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := readEntry(entry)
	if err != nil {
		return err
	}

	return afero.WriteFile(a.fs, target, data, 0o644)
}

// moveArchive relocates the source archive into the package folder under
// its canonical name. An existing file of that name is replaced.
func (a *zipAdapter) moveArchive(pkg *entity.Package, folder string) error {
	target := filepath.Join(folder, pkg.CanonicalArchiveName())

	if exists, _ := afero.Exists(a.fs, target); exists && target != pkg.ArchivePath {
		if err := a.fs.Remove(target); err != nil {
			return fmt.Errorf("cannot replace archive %s: %w", target, err)
		}
	}

	if err := a.fs.Rename(pkg.ArchivePath, target); err != nil {
		return fmt.Errorf("cannot move archive to %s: %w", target, err)
	}

	if name := filepath.Base(pkg.ArchivePath); name != pkg.CanonicalArchiveName() {
		a.log.Info("Archive renamed",
			slog.String("from", name), slog.String("to", pkg.CanonicalArchiveName()))
	}

	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
