package pipeline

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
	"git.home.luguber.info/inful/assetbuilder/internal/testutil/testutils"
)

// prefixConverter prepends a marker so tests can see how often and in which
// order conversions happened.
type prefixConverter struct {
	name, ext, marker string
	calls             atomic.Int32
	err               error
}

func (c *prefixConverter) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{Name: c.name, Version: "v1", Kind: plugin.KindConverter, FileType: c.ext}
}

func (c *prefixConverter) Convert(content []byte) ([]byte, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte(c.marker), content...), nil
}

type upperCompressor struct {
	ext string
	err error
}

func (c *upperCompressor) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{Name: "upper", Version: "v1", Kind: plugin.KindCompressor, FileType: c.ext}
}

func (c *upperCompressor) Compress(content []byte) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []byte(strings.ToUpper(string(content))), nil
}

type tagTemplate struct {
	name, ext, tag string
	priority       int
}

func (t *tagTemplate) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{Name: t.name, Version: "v1", Kind: plugin.KindTemplate, FileType: t.ext, Priority: t.priority}
}

func (t *tagTemplate) Render(displayPath, filename string) string {
	return "<" + t.tag + " " + displayPath + "/" + filename + ">"
}

var errPluginBoom = errors.New("plugin exploded")

var fixedMtime = testutils.FixedMtime

// writeSource creates files under a fresh source root with a fixed mtime.
func writeSource(t *testing.T, files map[string]string) string {
	t.Helper()
	return testutils.WriteTree(t, files)
}

func newRegistry(t *testing.T, plugins ...plugin.Plugin) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	for _, p := range plugins {
		require.NoError(t, reg.Register(p))
	}
	return reg
}
