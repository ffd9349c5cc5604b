// Package listing drives stage three of the pipeline: every directory gets
// its listing page regenerated or removed, bottom-up.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/onerepo/repogen/internal/config"
	"github.com/onerepo/repogen/internal/entity"
	"github.com/onerepo/repogen/internal/version"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	archiveExt   = ".zip"
	hiddenPrefix = "."
)

var errArchiveFound = errors.New("archive found")

type ListingService struct {
	fs      afero.Fs
	cfg     *config.Config
	matcher *version.Matcher
	md      goldmark.Markdown
	log     *slog.Logger
}

func NewListingService(cfg *config.Config, log *slog.Logger) *ListingService {
	return NewListingServiceWithFS(afero.NewOsFs(), cfg, log)
}

func NewListingServiceWithFS(fs afero.Fs, cfg *config.Config, log *slog.Logger) *ListingService {
	return &ListingService{
		fs:      fs,
		cfg:     cfg,
		matcher: version.NewMatcher(cfg.SpotlightPackage),
		md: goldmark.New(
			goldmark.WithExtensions(
				&frontmatter.Extender{},
			),
			goldmark.WithRendererOptions(
				html.WithXHTML(),
			),
		),
		log: log.With(slog.String("item", "ListingService")),
	}
}

// Run synthesizes listing pages for the whole tree. The walk is post-order:
// a parent is finalized only after all of its subdirectories, so its view of
// "does this subtree contain an archive" and its child links reflect final
// state.
func (s *ListingService) Run(ctx context.Context) error {
	spotlight, err := s.latestSpotlight()
	if err != nil {
		return fmt.Errorf("cannot scan for spotlight archives: %w", err)
	}

	return s.walk(ctx, s.cfg.RepoDir, spotlight)
}

func (s *ListingService) walk(ctx context.Context, dir string, spotlight []string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), hiddenPrefix) {
			if err := s.walk(ctx, filepath.Join(dir, entry.Name()), spotlight); err != nil {
				return err
			}
		}
	}

	return s.process(dir, spotlight)
}

// process applies the listing decision for one directory.
func (s *ListingService) process(dir string, spotlight []string) error {
	listingPath := filepath.Join(dir, s.cfg.Listing.FileName)
	hasListing, _ := afero.Exists(s.fs, listingPath)

	hasArchive, err := s.subtreeHasArchive(dir)
	if err != nil {
		return err
	}

	state := entity.DirState{
		IsRoot:       dir == s.cfg.RepoDir,
		HasArchive:   hasArchive,
		HasSpotlight: len(spotlight) > 0,
		HasListing:   hasListing,
	}

	switch entity.Decide(state) {
	case entity.OutcomeSkipped:
		return nil
	case entity.OutcomeRemoved:
		if err := s.fs.Remove(listingPath); err != nil {
			return fmt.Errorf("cannot remove stale listing %s: %w", listingPath, err)
		}

		s.log.Info("Stale listing removed", slog.String("path", listingPath))

		return nil
	}

	page, err := s.render(dir, state.IsRoot, spotlight)
	if err != nil {
		return fmt.Errorf("cannot render listing for %s: %w", dir, err)
	}

	if err := afero.WriteFile(s.fs, listingPath, page, 0o644); err != nil {
		return fmt.Errorf("cannot write listing %s: %w", listingPath, err)
	}

	s.log.Debug("Listing written", slog.String("path", listingPath))

	return nil
}

// listEntries enumerates the children linked from dir's page: directories
// whose subtree holds an archive, and archive files. Hidden names and the
// listing file itself are excluded. Directories sort first, then
// case-insensitive name.
func (s *ListingService) listEntries(dir string) ([]*entity.ListingEntry, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	var entries []*entity.ListingEntry
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, hiddenPrefix) || name == s.cfg.Listing.FileName {
			continue
		}

		switch {
		case info.IsDir():
			hasArchive, err := s.subtreeHasArchive(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			if !hasArchive {
				continue
			}

			entries = append(entries, &entity.ListingEntry{
				Name:  name + "/",
				Href:  "./" + name + "/" + s.cfg.Listing.FileName,
				IsDir: true,
			})
		case strings.EqualFold(filepath.Ext(name), archiveExt):
			entries = append(entries, &entity.ListingEntry{
				Name: name,
				Href: "./" + name,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}

		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return entries, nil
}

// subtreeHasArchive reports whether any archive exists anywhere under dir.
func (s *ListingService) subtreeHasArchive(dir string) (bool, error) {
	err := afero.Walk(s.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), archiveExt) {
			return errArchiveFound
		}

		return nil
	})

	if errors.Is(err, errArchiveFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot scan %s for archives: %w", dir, err)
	}

	return false, nil
}

// latestSpotlight returns the root-relative paths of every archive of the
// spotlight package carrying the highest version found anywhere in the
// tree. Ties are all kept.
func (s *ListingService) latestSpotlight() ([]string, error) {
	type candidate struct {
		ver  version.Version
		path string
	}

	var found []candidate
	err := afero.Walk(s.fs, s.cfg.RepoDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		if v, ok := s.matcher.Match(info.Name()); ok {
			found = append(found, candidate{ver: v, path: path})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, nil
	}

	best := found[0].ver
	for _, c := range found[1:] {
		if version.Compare(c.ver, best) > 0 {
			best = c.ver
		}
	}

	var latest []string
	for _, c := range found {
		if version.Compare(c.ver, best) == 0 {
			rel, err := filepath.Rel(s.cfg.RepoDir, c.path)
			if err != nil {
				return nil, fmt.Errorf("cannot relativize %s: %w", c.path, err)
			}

			latest = append(latest, filepath.ToSlash(rel))
		}
	}

	return latest, nil
}
