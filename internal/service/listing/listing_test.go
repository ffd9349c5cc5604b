package listing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/onerepo/repogen/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*ListingService, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewListingServiceWithFS(fs, config.Default("/repo"), log), fs
}

func TestRunPackagePage(t *testing.T) {
	s, fs := newTestService(t)

	require.NoError(t, afero.WriteFile(fs, "/repo/plugin.sample/addon.xml", []byte(`<addon/>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/plugin.sample/plugin.sample-2.1.0.zip", []byte("zip"), 0o644))

	require.NoError(t, s.Run(context.Background()))

	got, err := afero.ReadFile(fs, "/repo/plugin.sample/index.html")
	require.NoError(t, err)

	want := `<!DOCTYPE html>
<html><head>
<meta charset="utf-8">
<title>Directory listing</title>
</head><body>
<h1>Directory listing</h1><hr/><pre>
<a href="../index.html">..</a>
<a href="./plugin.sample-2.1.0.zip">plugin.sample-2.1.0.zip</a>
</pre></body></html>`

	assert.Equal(t, want, string(got))

	// No spotlight archive anywhere: the root page must not exist.
	exists, _ := afero.Exists(fs, "/repo/index.html")
	assert.False(t, exists)
}

func TestRunRemovesStaleListings(t *testing.T) {
	s, fs := newTestService(t)

	require.NoError(t, afero.WriteFile(fs, "/repo/empty/index.html", []byte("stale"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/index.html", []byte("stale root"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/pkg-1.0.0.zip", []byte("zip"), 0o644))

	require.NoError(t, s.Run(context.Background()))

	// Archive-less subtree loses its page; the root loses its page because
	// no spotlight archive exists.
	exists, _ := afero.Exists(fs, "/repo/empty/index.html")
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, "/repo/index.html")
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, "/repo/pkg/index.html")
	assert.True(t, exists)
}

func TestRunRootSpotlight(t *testing.T) {
	s, fs := newTestService(t)

	require.NoError(t, afero.WriteFile(fs, "/repo/One.repo/One.repo-1.0.0.zip", []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/One.repo/One.repo-1.2.1.zip", []byte("new"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/mirror/One.repo-1.2.1.zip", []byte("copy"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/plugin.sample/plugin.sample-2.1.0.zip", []byte("zip"), 0o644))

	require.NoError(t, s.Run(context.Background()))

	got, err := afero.ReadFile(fs, "/repo/index.html")
	require.NoError(t, err)
	content := string(got)

	// Visible entries: directories first, case-insensitive order.
	assert.Contains(t, content, `<a href="./mirror/index.html">mirror/</a>`)
	assert.Contains(t, content, `<a href="./One.repo/index.html">One.repo/</a>`)
	assert.Contains(t, content, `<a href="./plugin.sample/index.html">plugin.sample/</a>`)
	assert.NotContains(t, content, `<a href="../index.html">`)

	// Both latest archives appear in the hidden block; the older one not.
	assert.Contains(t, content, `<tr><td><a href="One.repo/One.repo-1.2.1.zip">One.repo/One.repo-1.2.1.zip</a></td></tr>`)
	assert.Contains(t, content, `<tr><td><a href="mirror/One.repo-1.2.1.zip">mirror/One.repo-1.2.1.zip</a></td></tr>`)
	assert.NotContains(t, content, "One.repo-1.0.0.zip</a></td>")

	// The hidden block sits outside the visible document and keeps its
	// literal comment marker for machine consumers.
	assert.Contains(t, content, "</pre></body></html>\n\n<!-- REPOSITORY SPOTLIGHT (OUTSIDE HTML) -->")
	assert.Contains(t, content, "<!-- REPOSITORY SPOTLIGHT (OUTSIDE HTML) -->\n<div id=\"repository-spotlight\" style=\"display:none\"><table>")
}

func TestRunEntryOrderAndExclusions(t *testing.T) {
	s, fs := newTestService(t)

	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/Beta.zip", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/alpha.zip", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/addon.xml", []byte(`<addon/>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/.hidden.zip", []byte("h"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/sub/inner-1.0.0.zip", []byte("i"), 0o644))
	require.NoError(t, fs.MkdirAll("/repo/pkg/nozips", 0o755))

	require.NoError(t, s.Run(context.Background()))

	got, err := afero.ReadFile(fs, "/repo/pkg/index.html")
	require.NoError(t, err)

	want := `<!DOCTYPE html>
<html><head>
<meta charset="utf-8">
<title>Directory listing</title>
</head><body>
<h1>Directory listing</h1><hr/><pre>
<a href="../index.html">..</a>
<a href="./sub/index.html">sub/</a>
<a href="./alpha.zip">alpha.zip</a>
<a href="./Beta.zip">Beta.zip</a>
</pre></body></html>`

	assert.Equal(t, want, string(got))
}

func TestRunIdempotent(t *testing.T) {
	s, fs := newTestService(t)

	require.NoError(t, afero.WriteFile(fs, "/repo/One.repo/One.repo-1.0.0.zip", []byte("zip"), 0o644))

	require.NoError(t, s.Run(context.Background()))
	first, err := afero.ReadFile(fs, "/repo/index.html")
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))
	second, err := afero.ReadFile(fs, "/repo/index.html")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunReadmeDescription(t *testing.T) {
	s, fs := newTestService(t)

	readme := `---
title: Sample plugin
---
Nightly builds live here.
`
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/README.md", []byte(readme), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/pkg-1.0.0.zip", []byte("zip"), 0o644))

	require.NoError(t, s.Run(context.Background()))

	got, err := afero.ReadFile(fs, "/repo/pkg/index.html")
	require.NoError(t, err)
	content := string(got)

	assert.Contains(t, content, "<title>Sample plugin</title>")
	assert.Contains(t, content, "<h1>Sample plugin</h1>")
	assert.Contains(t, content, "<p>Nightly builds live here.</p>")
	// The README itself is not a listed entry.
	assert.NotContains(t, content, `README.md</a>`)
}
