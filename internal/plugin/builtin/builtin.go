// Package builtin provides the converters, compressors and templates
// registered at process start.
package builtin

import "git.home.luguber.info/inful/assetbuilder/internal/plugin"

const version = "v1.0.0"

// Register adds every built-in plugin to reg. Plugins registered afterwards
// for the same file type take precedence.
func Register(reg *plugin.Registry) error {
	for _, p := range []plugin.Plugin{
		NewMarkdownConverter(),
		HTMLCompressor{},
		CSSCompressor{},
		JavaScriptTagTemplate{},
		CSSTagTemplate{},
	} {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}
