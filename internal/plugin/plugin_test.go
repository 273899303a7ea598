package plugin

import "testing"

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{KindConverter, KindCompressor, KindTemplate} {
		if !k.IsValid() {
			t.Errorf("expected %s to be valid", k)
		}
	}
	if Kind("publisher").IsValid() {
		t.Error("expected unknown kind to be invalid")
	}
}

func TestMetadataString(t *testing.T) {
	m := PluginMetadata{Name: "markdown", Version: "v1.0.0", Kind: KindConverter, FileType: ".md"}
	if got := m.String(); got != "markdown@v1.0.0 (converter .md)" {
		t.Errorf("unexpected String(): %s", got)
	}
}

func TestNormalizeFileType(t *testing.T) {
	tests := map[string]string{
		".JS":    ".js",
		" .Css ": ".css",
		".md":    ".md",
		"":       "",
	}
	for in, want := range tests {
		if got := NormalizeFileType(in); got != want {
			t.Errorf("NormalizeFileType(%q) = %q, want %q", in, got, want)
		}
	}
}
