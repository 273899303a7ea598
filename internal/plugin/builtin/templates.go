package builtin

import (
	"strings"

	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
)

// JavaScriptTagTemplate renders a script tag for .js assets.
type JavaScriptTagTemplate struct{}

func (JavaScriptTagTemplate) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "javascript-tag",
		Version:     version,
		Kind:        plugin.KindTemplate,
		FileType:    ".js",
		Priority:    -1,
		Description: "Default <script> tag for JavaScript assets",
	}
}

func (JavaScriptTagTemplate) Render(displayPath, filename string) string {
	return "<script src='" + urlPrefix(displayPath) + "/" + filename + "' type='text/javascript'></script>"
}

// CSSTagTemplate renders a stylesheet link for .css assets.
type CSSTagTemplate struct{}

func (CSSTagTemplate) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "css-tag",
		Version:     version,
		Kind:        plugin.KindTemplate,
		FileType:    ".css",
		Priority:    -1,
		Description: "Default <link> tag for CSS assets",
	}
}

func (CSSTagTemplate) Render(displayPath, filename string) string {
	return "<link href='" + urlPrefix(displayPath) + "/" + filename + "' rel='stylesheet' type='text/css' />"
}

// urlPrefix turns a display path into the part of the URL before the filename.
// Empty, "nil" and "/" mean site root; absolute URLs are used as given.
func urlPrefix(displayPath string) string {
	p := strings.TrimSpace(displayPath)
	if p == "" || p == "nil" || p == "/" {
		return ""
	}
	if strings.Contains(p, "://") || strings.HasPrefix(p, "//") {
		return strings.TrimSuffix(p, "/")
	}
	return "/" + strings.Trim(p, "/")
}
