package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/asset"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// RemoveStagedAssets recursively deletes {source}/{staging_path}.
func RemoveStagedAssets(source string, opts config.Options) error {
	dir := filepath.Join(source, opts.StagingPath)
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryStaging, "failed to remove staged assets").
			UserAction().
			WithContext("path", dir).
			Build()
	}
	return nil
}

// Publish copies saved assets from the staging area to {destination}/{output_path}.
// Assets that were never saved are skipped.
func Publish(source, destination string, opts config.Options, assets []asset.Asset) error {
	from := StagedOutputDir(source, opts)
	to := filepath.Join(destination, opts.OutputPath)
	if err := os.MkdirAll(to, 0o755); err != nil {
		return errors.WrapError(err, errors.CategorySave, "failed to create destination directory").
			WithContext("path", to).
			Build()
	}

	for _, a := range assets {
		if !a.Saved() {
			continue
		}
		if err := copyFile(filepath.Join(from, a.Filename), filepath.Join(to, a.Filename)); err != nil {
			return errors.WrapError(err, errors.CategorySave, "failed to publish asset").
				WithContext("asset", a.Filename).
				WithContext("path", to).
				Build()
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
