// Package fingerprint derives pipeline cache keys.
//
// A key covers each manifest entry's resolved path and modification time
// (whole Unix seconds) in manifest order, followed by the textual form of the
// effective options. File contents are never read, so touching a file is
// enough to invalidate a cached pipeline.
package fingerprint

import (
	"crypto/md5" // #nosec G501 -- cache key, not a security boundary
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
)

// Compute returns the hex MD5 fingerprint for a manifest under source with opts.
// A file that cannot be stat'ed yields a manifest error.
func Compute(source string, m manifest.Manifest, opts config.Options) (string, error) {
	h := md5.New() // #nosec G401
	for _, p := range m {
		full := filepath.Join(source, p)
		info, err := os.Stat(full)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryManifest, "failed to generate fingerprint from manifest").
				WithContext("path", full).Build()
		}
		_, _ = h.Write([]byte(full))
		_, _ = h.Write([]byte(strconv.FormatInt(info.ModTime().Unix(), 10)))
	}
	_, _ = h.Write([]byte(opts.String()))
	return hex.EncodeToString(h.Sum(nil)), nil
}
