// Package asset defines the unit of content flowing through an asset pipeline.
package asset

import (
	"path/filepath"
	"strings"
)

// Asset is one unit of transformable content.
//
// Assets are values: stages never mutate an Asset they received, they derive a new
// one with the With* helpers and return a fresh slice. Filename always carries the
// extension of the current representation.
type Asset struct {
	Content    []byte
	Filename   string
	Dirname    string
	OutputPath string // set by the save stage; may be empty
	Staged     bool   // true once the save stage wrote the asset
}

// New creates an asset from raw content. The content slice is copied.
func New(content []byte, filename, dirname string) Asset {
	return Asset{
		Content:  append([]byte(nil), content...),
		Filename: filename,
		Dirname:  dirname,
	}
}

// Ext returns the lower-cased extension of the current filename, including the dot.
func (a Asset) Ext() string {
	return strings.ToLower(filepath.Ext(a.Filename))
}

// Base returns the filename with its last extension removed.
func (a Asset) Base() string {
	return strings.TrimSuffix(a.Filename, filepath.Ext(a.Filename))
}

// Saved reports whether the asset has been written to the staging area.
func (a Asset) Saved() bool {
	return a.Staged
}

// WithContent returns a copy of the asset carrying new content.
func (a Asset) WithContent(content []byte) Asset {
	a.Content = content
	return a
}

// WithFilename returns a copy of the asset with a new filename.
func (a Asset) WithFilename(filename string) Asset {
	a.Filename = filename
	return a
}

// WithOutputPath returns a copy of the asset recording where it was saved.
// An empty path is valid: the asset sits directly under the staging root.
func (a Asset) WithOutputPath(p string) Asset {
	a.OutputPath = p
	a.Staged = true
	return a
}

// Filenames lists the filenames of assets in order.
func Filenames(assets []Asset) []string {
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Filename
	}
	return names
}
