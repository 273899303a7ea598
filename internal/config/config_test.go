package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

const sampleConfig = "source: site\n" +
	"destination: public\n" +
	"asset_pipeline:\n" +
	"  output_path: static\n" +
	"  gzip: true\n" +
	"logging:\n" +
	"  level: debug\n" +
	"  format: json\n" +
	"history:\n" +
	"  enabled: true\n" +
	"watch:\n" +
	"  debounce: 250ms\n" +
	"pipelines:\n" +
	"  - tag: javascript\n" +
	"    prefix: global\n" +
	"    type: .js\n" +
	"    manifest:\n" +
	"      - js/a.js\n" +
	"      - js/b.js\n" +
	"  - tag: css\n" +
	"    prefix: site\n" +
	"    type: .css\n" +
	"    manifest_file: css/manifest.yml\n" +
	"    options:\n" +
	"      compress: false\n" +
	"      display_path: /cdn\n"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, "site", cfg.Source)
	require.Equal(t, "public", cfg.Destination)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Equal(t, ".asset_pipeline_history.db", cfg.History.Path)
	require.Equal(t, 250*time.Millisecond, cfg.Watch.DebounceDuration())
	require.Zero(t, cfg.Watch.PollDuration())
	require.Len(t, cfg.Pipelines, 2)

	js := cfg.OptionsFor(cfg.Pipelines[0])
	require.Equal(t, "static", js.OutputPath)
	require.True(t, js.Gzip)
	require.True(t, js.Compress)
	require.Equal(t, "static", js.DisplayOrOutputPath())

	css := cfg.OptionsFor(cfg.Pipelines[1])
	require.False(t, css.Compress)
	require.Equal(t, "/cdn", css.DisplayOrOutputPath())
	require.Equal(t, "css/manifest.yml", cfg.Pipelines[1].ManifestFile)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(writeConfig(t, "pipelines:\n  - tag: js\n    prefix: p\n    type: .js\n    manifest: [a.js]\n"))
	require.NoError(t, err)
	require.Equal(t, ".", cfg.Source)
	require.Equal(t, "_site", cfg.Destination)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDuration())
	require.Equal(t, DefaultOptions(), cfg.Options())
}

func TestLoadExpandsEnvFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ASSETBUILDER_TEST_DEST", "")
	require.NoError(t, os.Unsetenv("ASSETBUILDER_TEST_DEST"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ASSETBUILDER_TEST_DEST=from-dotenv\n"), 0o600))

	cfg, err := Load(writeConfig(t, "destination: ${ASSETBUILDER_TEST_DEST}\n"+
		"pipelines:\n  - tag: js\n    prefix: p\n    type: .js\n    manifest: [a.js]\n"))
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Destination)
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(writeConfig(t, "bogus: 1\npipelines:\n  - tag: js\n    prefix: p\n    type: .js\n    manifest: [a.js]\n"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no pipelines", "source: .\n"},
		{"missing prefix", "pipelines:\n  - tag: js\n    type: .js\n    manifest: [a.js]\n"},
		{"missing tag", "pipelines:\n  - prefix: p\n    type: .js\n    manifest: [a.js]\n"},
		{"bad type", "pipelines:\n  - tag: js\n    prefix: p\n    type: js\n    manifest: [a.js]\n"},
		{"no manifest", "pipelines:\n  - tag: js\n    prefix: p\n    type: .js\n"},
		{"both manifests", "pipelines:\n  - tag: js\n    prefix: p\n    type: .js\n    manifest: [a.js]\n    manifest_file: m.yml\n"},
		{"duplicate", "pipelines:\n  - {tag: js, prefix: p, type: .js, manifest: [a.js]}\n  - {tag: js, prefix: p, type: .js, manifest: [b.js]}\n"},
		{"escaping output", "asset_pipeline:\n  output_path: ../out\npipelines:\n  - tag: js\n    prefix: p\n    type: .js\n    manifest: [a.js]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestInit(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "assets.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Pipelines, 2)
	require.True(t, cfg.History.Enabled)

	err = Init(path, false)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	require.NoError(t, Init(path, true))
}
