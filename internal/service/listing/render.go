package listing

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	_ "embed"

	"github.com/onerepo/repogen/internal/entity"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"
)

const defaultTitle = "Directory listing"

//go:embed templates/listing.html
var listingTemplateContent string

// The page is a fixed-format document over fully controlled values;
// text/template keeps the hidden spotlight comment marker that an
// HTML-aware renderer would strip.
var listingTemplate = template.Must(template.New("listing").Parse(listingTemplateContent))

type readmeMeta struct {
	Title string `yaml:"title"`
}

type pageContext struct {
	Title       string
	Description string // Rendered README HTML, embedded verbatim
	IsRoot      bool
	ListingFile string
	Entries     []*entity.ListingEntry
	Spotlight   []string
}

// render produces the full listing page for dir. The spotlight block is
// appended at the root only.
func (s *ListingService) render(dir string, isRoot bool, spotlight []string) ([]byte, error) {
	entries, err := s.listEntries(dir)
	if err != nil {
		return nil, err
	}

	pc := &pageContext{
		Title:       defaultTitle,
		IsRoot:      isRoot,
		ListingFile: s.cfg.Listing.FileName,
		Entries:     entries,
	}
	if isRoot {
		pc.Spotlight = spotlight
	}

	if err := s.applyReadme(dir, pc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, pc); err != nil {
		return nil, fmt.Errorf("cannot execute listing template: %w", err)
	}

	return buf.Bytes(), nil
}

// applyReadme renders an optional README next to the listing into the page
// description. A frontmatter title overrides the page title.
func (s *ListingService) applyReadme(dir string, pc *pageContext) error {
	readmePath := filepath.Join(dir, s.cfg.Listing.ReadmeFileName)
	if exists, _ := afero.Exists(s.fs, readmePath); !exists {
		return nil
	}

	src, err := afero.ReadFile(s.fs, readmePath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", readmePath, err)
	}

	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := s.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return fmt.Errorf("cannot convert %s: %w", readmePath, err)
	}

	if fm := frontmatter.Get(ctx); fm != nil {
		var meta readmeMeta
		if err := fm.Decode(&meta); err != nil {
			return fmt.Errorf("cannot decode frontmatter of %s: %w", readmePath, err)
		}
		if meta.Title != "" {
			pc.Title = meta.Title
		}
	}

	pc.Description = buf.String()

	return nil
}
