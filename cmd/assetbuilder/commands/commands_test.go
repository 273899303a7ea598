package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/testutil/testutils"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("assetbuilder"),
		kong.Exit(func(int) {}),
		kong.Vars{"version": "test"})
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = kctx.Run(&Global{Logger: slog.Default(), Out: &out}, &cli)
	return out.String(), err
}

// newSite lays out a small project and returns its config path.
func newSite(t *testing.T, history bool) (cfgPath, source, dest string) {
	t.Helper()
	source = testutils.WriteTree(t, map[string]string{
		"_assets/js/a.js":   "var a = 1;",
		"_assets/css/a.css": "a { color: red; }",
	})
	dest = filepath.Join(t.TempDir(), "_site")

	cfgPath = filepath.Join(source, "assetbuilder.yaml")
	cfg := fmt.Sprintf(`source: %s
destination: %s
history:
  enabled: %t
pipelines:
  - tag: javascript
    prefix: global
    type: .js
    manifest: [_assets/js/a.js]
  - tag: css
    prefix: site
    type: .css
    manifest: [_assets/css/a.css]
`, source, dest, history)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath, source, dest
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assetbuilder.yaml")

	out, err := runCLI(t, "-c", path, "init")
	require.NoError(t, err)
	require.Contains(t, out, "initialized successfully")

	_, err = config.Load(path)
	require.NoError(t, err)

	_, err = runCLI(t, "-c", path, "init")
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = runCLI(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestBuildCommandPrintsMarkupAndPublishes(t *testing.T) {
	cfgPath, _, dest := newSite(t, false)

	out, err := runCLI(t, "-c", cfgPath, "build")
	require.NoError(t, err)
	require.Contains(t, out, "javascript global: <script src='/assets/global.js' type='text/javascript'></script>")
	require.Contains(t, out, "css site: <link href='/assets/site.css' rel='stylesheet' type='text/css' />")

	testutils.NewFileAssertions(t, dest).AssertFileContent("assets/site.css", "a{color:red}")
}

func TestBuildCommandNoPublish(t *testing.T) {
	cfgPath, source, dest := newSite(t, false)

	_, err := runCLI(t, "-c", cfgPath, "build", "--no-publish")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(source, ".asset_pipeline", "assets", "global.js"))
	require.NoDirExists(t, dest)
}

func TestBuildCommandDestOverride(t *testing.T) {
	cfgPath, _, _ := newSite(t, false)
	dest := t.TempDir()

	_, err := runCLI(t, "-c", cfgPath, "build", "--dest", dest)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dest, "assets", "global.js"))
}

func TestBuildCommandMarkupDirAndMetrics(t *testing.T) {
	cfgPath, _, _ := newSite(t, false)
	markup := filepath.Join(t.TempDir(), "includes")
	textfile := filepath.Join(t.TempDir(), "assetbuilder.prom")

	out, err := runCLI(t, "-c", cfgPath, "build", "--markup-dir", markup, "--metrics-textfile", textfile)
	require.NoError(t, err)
	require.Empty(t, out)

	testutils.NewFileAssertions(t, markup).
		AssertFileContent("global.html", "<script src='/assets/global.js' type='text/javascript'></script>\n").
		AssertFileExists("site.html")

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `assetbuilder_pipeline_outcomes_total{outcome="success",prefix="global"} 1`)
}

func TestBuildCommandFailure(t *testing.T) {
	cfgPath, source, _ := newSite(t, false)
	require.NoError(t, os.Remove(filepath.Join(source, "_assets", "js", "a.js")))

	_, err := runCLI(t, "-c", cfgPath, "build")
	require.True(t, errors.HasCategory(err, errors.CategoryManifest))
}

func TestBuildCommandMissingConfig(t *testing.T) {
	_, err := runCLI(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "build")
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestHistoryCommand(t *testing.T) {
	cfgPath, source, _ := newSite(t, true)

	_, err := runCLI(t, "-c", cfgPath, "build")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(source, ".asset_pipeline_history.db"))

	out, err := runCLI(t, "-c", cfgPath, "history", "-n", "5")
	require.NoError(t, err)
	require.Contains(t, out, "OUTCOME")
	require.Contains(t, out, "javascript")
	require.Contains(t, out, "site")
}

func TestHistoryCommandDisabled(t *testing.T) {
	cfgPath, _, _ := newSite(t, false)

	_, err := runCLI(t, "-c", cfgPath, "history")
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestCleanCommand(t *testing.T) {
	cfgPath, source, _ := newSite(t, false)

	_, err := runCLI(t, "-c", cfgPath, "build", "--no-publish")
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(source, ".asset_pipeline"))

	out, err := runCLI(t, "-c", cfgPath, "clean")
	require.NoError(t, err)
	require.Contains(t, out, "staged assets removed")
	require.NoDirExists(t, filepath.Join(source, ".asset_pipeline"))
}

func TestPluginsCommand(t *testing.T) {
	out, err := runCLI(t, "plugins")
	require.NoError(t, err)
	require.Contains(t, out, "markdown")
	require.Contains(t, out, "compressor")
	require.Contains(t, out, "template")
}

func TestIgnoredPaths(t *testing.T) {
	source := t.TempDir()
	cfg := &config.Config{
		Source:      source,
		Destination: filepath.Join(source, "_site"),
		History:     config.HistoryConfig{Path: ".history.db"},
		Pipelines: []config.PipelineConfig{
			{Tag: "a", Prefix: "a", Type: ".js"},
			{Tag: "b", Prefix: "b", Type: ".js"},
			{Tag: "c", Prefix: "c", Type: ".js", Options: config.OptionsOverlay{StagingPath: config.StringPtr("tmp")}},
		},
	}

	require.Equal(t, []string{
		filepath.Join(source, "_site"),
		filepath.Join(source, ".history.db"),
		filepath.Join(source, ".history.db-journal"),
		filepath.Join(source, ".history.db-wal"),
		filepath.Join(source, ".history.db-shm"),
		filepath.Join(source, ".asset_pipeline"),
		filepath.Join(source, "tmp"),
	}, ignoredPaths(cfg))
}
