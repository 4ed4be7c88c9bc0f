package hostvfs

import (
	"os"
	"path/filepath"
)

// realpath resolves path to its canonical, symlink-free form. Returns path
// unchanged (not an error) when the file does not exist — the policy engine
// treats a target that resolves to nothing as having no realpath form to
// additionally check, not as a failure.
func realpath(path string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		return path, nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path, nil
	}

	return resolved, nil
}
