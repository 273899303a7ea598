// Package plugin provides the capability interfaces and registry used by the asset
// pipeline to select a converter, compressor or template for a file type.
package plugin

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Plugin is implemented by every converter, compressor and template.
type Plugin interface {
	// Metadata returns the plugin's identity and the file type it handles.
	Metadata() PluginMetadata
}

// Converter turns content of one file type into the next representation.
// The pipeline strips the handled extension from the asset filename after a
// successful conversion.
type Converter interface {
	Plugin
	Convert(content []byte) ([]byte, error)
}

// Compressor minifies content of the pipeline's output type.
type Compressor interface {
	Plugin
	Compress(content []byte) ([]byte, error)
}

// Template renders the HTML fragment referencing a saved asset.
type Template interface {
	Plugin
	Render(displayPath, filename string) string
}

// PluginMetadata describes a plugin's identity and the file type it handles.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "markdown", "javascript-tag").
	Name string

	// Version is the plugin version (e.g., "v1.0.0").
	Version string

	// Kind is the discriminant selecting which capability the plugin provides.
	Kind Kind

	// FileType is the extension handled, including the leading dot (e.g., ".md").
	// Compressors declare the pipeline output type they minify.
	FileType string

	// Priority orders templates matching the same file type; higher wins.
	// Ignored for converters and compressors.
	Priority int

	// Description provides a human-readable summary of the plugin's purpose.
	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s %s)", m.Name, m.Version, m.Kind, m.FileType)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid plugin kind: %s", m.Kind)
	}
	if !strings.HasPrefix(m.FileType, ".") || len(m.FileType) < 2 {
		return fmt.Errorf("plugin %s: file type must be an extension like \".js\", got %q", m.Name, m.FileType)
	}
	return nil
}

// NormalizeFileType case-folds an extension so lookups are case-insensitive.
func NormalizeFileType(ext string) string {
	return cases.Fold().String(strings.TrimSpace(ext))
}
