package builtin

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
)

// MarkdownConverter renders Markdown to HTML with GitHub flavoured extensions.
type MarkdownConverter struct {
	md goldmark.Markdown
}

// NewMarkdownConverter creates a converter for .md files.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (c *MarkdownConverter) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "markdown",
		Version:     version,
		Kind:        plugin.KindConverter,
		FileType:    ".md",
		Description: "Renders Markdown to HTML",
	}
}

func (c *MarkdownConverter) Convert(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(content, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
