// Package manifest parses the ordered list of source files a pipeline consumes.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// Manifest is an ordered list of source-relative file paths.
// Order is significant and duplicates are kept.
type Manifest []string

// Parse decodes a YAML sequence of strings. An empty document is an empty manifest.
func Parse(data []byte) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "invalid manifest syntax").Build()
	}
	if len(doc.Content) == 0 {
		return Manifest{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return Manifest{}, nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, errors.ManifestLoadError("manifest must be a sequence of paths").
			WithContext("line", root.Line).Build()
	}

	m := make(Manifest, 0, len(root.Content))
	for i, item := range root.Content {
		if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
			return nil, errors.ManifestLoadError(fmt.Sprintf("manifest entry %d is not a string", i)).
				WithContext("line", item.Line).Build()
		}
		m = append(m, item.Value)
	}
	return m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "failed to read manifest").
			WithContext("path", path).Build()
	}
	m, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	return m, nil
}
