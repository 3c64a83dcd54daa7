package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AbsolutePath resolves path to an absolute, cleaned form.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// RelativePath returns path relative to baseDir. Paths that would escape the
// base directory fall back to the absolute form instead of producing ../..
// chains.
func RelativePath(path, baseDir string) (string, error) {
	absPath, err := AbsolutePath(path)
	if err != nil {
		return "", err
	}
	absBase, err := AbsolutePath(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return absPath, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return absPath, nil
	}
	return rel, nil
}

// BaseName returns the final path element.
func BaseName(path string) string {
	return filepath.Base(path)
}
