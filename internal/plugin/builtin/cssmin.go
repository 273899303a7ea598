package builtin

import (
	"bytes"
	"fmt"

	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
)

// CSSCompressor strips comments and redundant whitespace from stylesheets.
// Quoted strings are copied untouched.
type CSSCompressor struct{}

func (CSSCompressor) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "css-minify",
		Version:     version,
		Kind:        plugin.KindCompressor,
		FileType:    ".css",
		Description: "Strips comments and redundant whitespace from CSS",
	}
}

func (CSSCompressor) Compress(content []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(content))
	pendingSpace := false

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '"' || c == '\'':
			end, err := stringEnd(content, i)
			if err != nil {
				return nil, err
			}
			flushSpace(&out, &pendingSpace, c)
			out.Write(content[i : end+1])
			i = end
		case c == '/' && i+1 < len(content) && content[i+1] == '*':
			end := bytes.Index(content[i+2:], []byte("*/"))
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment at offset %d", i)
			}
			i += end + 3
			pendingSpace = pendingSpace || out.Len() > 0
		case isCSSSpace(c):
			pendingSpace = out.Len() > 0
		case c == '}':
			pendingSpace = false
			trimTrailing(&out, ';')
			out.WriteByte(c)
		default:
			flushSpace(&out, &pendingSpace, c)
			out.WriteByte(c)
		}
	}
	return out.Bytes(), nil
}

// flushSpace writes a pending space unless punctuation on either side makes it redundant.
func flushSpace(out *bytes.Buffer, pending *bool, next byte) {
	if !*pending {
		return
	}
	*pending = false
	b := out.Bytes()
	if len(b) == 0 || tightAfter(b[len(b)-1]) || tightBefore(next) {
		return
	}
	out.WriteByte(' ')
}

func tightAfter(c byte) bool {
	switch c {
	case '{', '}', ';', ',', '>', ':':
		return true
	}
	return false
}

func tightBefore(c byte) bool {
	switch c {
	case '{', '}', ';', ',', '>':
		return true
	}
	return false
}

func trimTrailing(out *bytes.Buffer, c byte) {
	if b := out.Bytes(); len(b) > 0 && b[len(b)-1] == c {
		out.Truncate(len(b) - 1)
	}
}

func isCSSSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// stringEnd returns the index of the quote closing the string opened at start.
func stringEnd(content []byte, start int) (int, error) {
	quote := content[start]
	for j := start + 1; j < len(content); j++ {
		switch content[j] {
		case '\\':
			j++
		case quote:
			return j, nil
		case '\n':
			return 0, fmt.Errorf("unterminated string at offset %d", start)
		}
	}
	return 0, fmt.Errorf("unterminated string at offset %d", start)
}
