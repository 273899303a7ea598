package testutils

import (
	"os"
	"path/filepath"
	"testing"
)

// FileAssertions checks file system state relative to a base directory.
type FileAssertions struct {
	t       testing.TB
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t testing.TB, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileContent validates that a file exists with exactly the given content.
func (fa *FileAssertions) AssertFileContent(relativePath, want string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Errorf("Expected readable file %s: %v", fullPath, err)
		return fa
	}
	if string(data) != want {
		fa.t.Errorf("File %s content mismatch\nwant: %q\ngot:  %q", fullPath, want, string(data))
	}
	return fa
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if stat, err := os.Stat(fullPath); err != nil {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	} else if stat.IsDir() {
		fa.t.Errorf("Expected %s to be a file, but it's a directory", fullPath)
	}
	return fa
}

// AssertNotExists validates that nothing exists at the path.
func (fa *FileAssertions) AssertNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected %s to not exist", fullPath)
	}
	return fa
}
