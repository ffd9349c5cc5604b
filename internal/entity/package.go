package entity

import (
	"path/filepath"
	"strings"
)

// Package is the inspection result of one archive: the identity needed to
// materialize it as a package folder.
type Package struct {
	ID          string   // Identity from the manifest; empty when the manifest carries none
	Version     string   // Manifest version, "0.0.0" when absent
	InternalDir string   // Directory holding the manifest inside the archive ("" at archive root)
	Manifest    []byte   // Raw manifest bytes, written out verbatim
	Assets      []string // Declared asset paths, relative to InternalDir
	ArchivePath string   // Path of the source archive on disk
}

// FolderName is the package folder the archive materializes into: the
// manifest id, or the archive stem when no id is declared.
func (p *Package) FolderName() string {
	if p.ID != "" {
		return p.ID
	}

	name := filepath.Base(p.ArchivePath)

	return strings.TrimSuffix(name, filepath.Ext(name))
}

// CanonicalArchiveName is "<id>-<version>.zip", or the original filename
// when the manifest has no id.
func (p *Package) CanonicalArchiveName() string {
	if p.ID == "" {
		return filepath.Base(p.ArchivePath)
	}

	return p.ID + "-" + p.Version + ".zip"
}
