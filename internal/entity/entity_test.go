package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageNaming(t *testing.T) {
	pkg := &Package{ID: "plugin.sample", Version: "2.1.0", ArchivePath: "/repo/sample.zip"}
	assert.Equal(t, "plugin.sample", pkg.FolderName())
	assert.Equal(t, "plugin.sample-2.1.0.zip", pkg.CanonicalArchiveName())
}

func TestPackageNamingFallback(t *testing.T) {
	// No id: the archive stem names the folder and the filename is kept.
	pkg := &Package{Version: "0.0.0", ArchivePath: "/repo/mytool.zip"}
	assert.Equal(t, "mytool", pkg.FolderName())
	assert.Equal(t, "mytool.zip", pkg.CanonicalArchiveName())
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		state DirState
		want  Outcome
	}{
		{"subdir without archives", DirState{}, OutcomeSkipped},
		{"subdir stale listing", DirState{HasListing: true}, OutcomeRemoved},
		{"subdir with archive", DirState{HasArchive: true}, OutcomeRendered},
		{"subdir with archive ignores spotlight", DirState{HasArchive: true, HasSpotlight: false}, OutcomeRendered},
		{"root without spotlight", DirState{IsRoot: true, HasArchive: true}, OutcomeSkipped},
		{"root stale listing", DirState{IsRoot: true, HasArchive: true, HasListing: true}, OutcomeRemoved},
		{"root with spotlight", DirState{IsRoot: true, HasArchive: true, HasSpotlight: true}, OutcomeRendered},
		{"empty root with spotlight elsewhere", DirState{IsRoot: true, HasSpotlight: true}, OutcomeRendered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state))
		})
	}
}
