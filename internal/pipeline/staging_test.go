package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/asset"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/testutil/testutils"
)

func TestRemoveStagedAssets(t *testing.T) {
	src := t.TempDir()
	opts := config.DefaultOptions()
	_, err := Save(src, opts, []asset.Asset{asset.New([]byte("x"), "a.js", "")})
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(src, ".asset_pipeline"))

	require.NoError(t, RemoveStagedAssets(src, opts))
	require.NoDirExists(t, filepath.Join(src, ".asset_pipeline"))

	// Removing twice is fine.
	require.NoError(t, RemoveStagedAssets(src, opts))
}

func TestPublish(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	opts := config.DefaultOptions().Merge(config.OptionsOverlay{OutputPath: config.StringPtr("static/js")})

	saved, err := Save(src, opts, []asset.Asset{asset.New([]byte("x"), "a.js", "")})
	require.NoError(t, err)
	unsaved := asset.New([]byte("y"), "b.js", "")

	require.NoError(t, Publish(src, dest, opts, append(saved, unsaved)))

	data, err := os.ReadFile(filepath.Join(dest, "static", "js", "a.js"))
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
	require.NoFileExists(t, filepath.Join(dest, "static", "js", "b.js"))
}

func TestPublishMissingStagedFile(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	ghost := asset.New([]byte("x"), "ghost.js", "").WithOutputPath("assets")

	err := Publish(src, dest, config.DefaultOptions(), []asset.Asset{ghost})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategorySave))
}

func TestPublishEmptyOutputPath(t *testing.T) {
	src := testutils.WriteTree(t, map[string]string{"app.js": "var a;"})
	dest := t.TempDir()
	opts := config.DefaultOptions().Merge(config.OptionsOverlay{OutputPath: config.StringPtr("")})
	require.NoError(t, opts.Validate())

	res, err := New(newRegistry(t)).Process(t.Context(), Input{
		Manifest:    manifest.Manifest{"app.js"},
		Prefix:      "app",
		Source:      src,
		Destination: dest,
		Type:        ".js",
		Options:     opts,
	})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(src, ".asset_pipeline", "app.js"))

	require.NoError(t, Publish(src, dest, opts, res.Assets))
	testutils.NewFileAssertions(t, dest).AssertFileContent("app.js", "var a;")
}
