package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJavaScriptTagTemplate(t *testing.T) {
	tests := map[string]string{
		"":                          "<script src='/app.js' type='text/javascript'></script>",
		"nil":                       "<script src='/app.js' type='text/javascript'></script>",
		"/":                         "<script src='/app.js' type='text/javascript'></script>",
		"assets":                    "<script src='/assets/app.js' type='text/javascript'></script>",
		"/static/js/":               "<script src='/static/js/app.js' type='text/javascript'></script>",
		"https://cdn.example.com/a": "<script src='https://cdn.example.com/a/app.js' type='text/javascript'></script>",
	}
	for path, want := range tests {
		require.Equal(t, want, JavaScriptTagTemplate{}.Render(path, "app.js"), "display path %q", path)
	}
	require.Equal(t, -1, JavaScriptTagTemplate{}.Metadata().Priority)
}

func TestCSSTagTemplate(t *testing.T) {
	require.Equal(t,
		"<link href='/assets/site.css' rel='stylesheet' type='text/css' />",
		CSSTagTemplate{}.Render("assets", "site.css"))
	require.Equal(t,
		"<link href='/site.css' rel='stylesheet' type='text/css' />",
		CSSTagTemplate{}.Render("", "site.css"))
}
