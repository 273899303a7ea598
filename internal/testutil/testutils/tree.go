// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// FixedMtime is stamped on every file WriteTree creates so fingerprints are
// stable across runs.
var FixedMtime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// WriteTree creates files under a fresh temporary root and returns the root.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// WriteFiles creates files under root with FixedMtime.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		Touch(t, p, FixedMtime)
	}
}

// Touch sets both access and modification time of path.
func Touch(t testing.TB, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}
