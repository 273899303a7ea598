package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLCompressor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drops comments",
			in:   "<p>a<!-- note -->b</p>",
			want: "<p>ab</p>",
		},
		{
			name: "drops formatting whitespace",
			in:   "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>\n",
			want: "<ul><li>one</li><li>two</li></ul>",
		},
		{
			name: "collapses runs inside text",
			in:   "<p>hello    \n   world</p>",
			want: "<p>hello world</p>",
		},
		{
			name: "keeps single inline space",
			in:   "<b>a</b> <i>b</i>",
			want: "<b>a</b> <i>b</i>",
		},
		{
			name: "line break between inline elements becomes a space",
			in:   "<b>a</b>\n<i>b</i>",
			want: "<b>a</b> <i>b</i>",
		},
		{
			name: "line break next to block elements is dropped",
			in:   "<div>\n  <b>a</b>\n  <i>b</i>\n</div>\n<p>c</p>",
			want: "<div><b>a</b> <i>b</i></div><p>c</p>",
		},
		{
			name: "whitespace around a comment collapses once",
			in:   "<em>a</em> <!-- x --> <em>b</em>",
			want: "<em>a</em> <em>b</em>",
		},
		{
			name: "pre untouched",
			in:   "<pre>  x\n    y  </pre>",
			want: "<pre>  x\n    y  </pre>",
		},
		{
			name: "script untouched",
			in:   "<script>\n  var a =  1; // <!-- x -->\n</script>",
			want: "<script>\n  var a =  1; // <!-- x -->\n</script>",
		},
		{
			name: "textarea untouched",
			in:   "<textarea>\n a  b\n</textarea>",
			want: "<textarea>\n a  b\n</textarea>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := HTMLCompressor{}.Compress([]byte(tt.in))
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}
}
