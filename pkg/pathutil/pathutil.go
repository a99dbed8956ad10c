package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Within reports whether path equals root or lies below it. Both are
// compared lexically after cleaning.
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve makes path absolute against base (when relative) and resolves
// symlinks in its parent directory. The file itself need not exist.
func Resolve(base, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		absBase, err := filepath.Abs(base)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", base, err)
		}
		abs = filepath.Join(absBase, path)
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}
	return abs, nil
}

// RelSlash returns path relative to root using forward slashes, or an error
// when path is outside root.
func RelSlash(root, path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if !Within(root, path) {
		return "", fmt.Errorf("%s is outside %s", path, root)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
