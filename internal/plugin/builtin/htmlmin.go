package builtin

import (
	"bytes"
	"errors"
	"io"
	"regexp"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
)

var whitespaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

// HTMLCompressor drops comments and collapses whitespace between tags.
// Content of pre, textarea, script and style elements is kept verbatim.
type HTMLCompressor struct{}

func (HTMLCompressor) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "html-minify",
		Version:     version,
		Kind:        plugin.KindCompressor,
		FileType:    ".html",
		Description: "Strips comments and redundant whitespace from HTML",
	}
}

func (HTMLCompressor) Compress(content []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(content))
	var out bytes.Buffer
	verbatim := 0

	// Whitespace-only text between two inline neighbours collapses to one
	// space; next to a block element (or the document edges) it is dropped.
	pendingSpace := false
	prevBlock := true
	emit := func(raw []byte, block bool) {
		if pendingSpace && !prevBlock && !block {
			out.WriteByte(' ')
		}
		pendingSpace = false
		prevBlock = block
		out.Write(raw)
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out.Bytes(), nil
			}
			return nil, z.Err()
		case html.CommentToken:
			continue
		case html.TextToken:
			raw := z.Raw()
			if verbatim > 0 {
				emit(raw, false)
				continue
			}
			if len(bytes.TrimSpace(raw)) == 0 {
				pendingSpace = true
				continue
			}
			emit(whitespaceRun.ReplaceAll(raw, []byte(" ")), false)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if tt == html.StartTagToken && keepsWhitespace(name) {
				verbatim++
			}
			emit(z.Raw(), isBlock(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			if keepsWhitespace(name) && verbatim > 0 {
				verbatim--
			}
			emit(z.Raw(), isBlock(name))
		default:
			emit(z.Raw(), true)
		}
	}
}

func keepsWhitespace(tag []byte) bool {
	switch string(tag) {
	case "pre", "textarea", "script", "style":
		return true
	}
	return false
}

func isBlock(tag []byte) bool {
	switch string(tag) {
	case "html", "head", "body", "title", "meta", "link", "base", "script", "style",
		"div", "p", "ul", "ol", "li", "dl", "dt", "dd", "table", "thead", "tbody",
		"tfoot", "tr", "td", "th", "caption", "section", "article", "header", "footer",
		"nav", "aside", "main", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "blockquote",
		"form", "fieldset", "hr", "br", "figure", "figcaption", "address", "details", "summary":
		return true
	}
	return false
}
