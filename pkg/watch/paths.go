package watch

import (
	"io/fs"
	"os"
	"path/filepath"
)

// statPath stats root, resolving through symlinks the way os.Stat does.
func statPath(root string) (os.FileInfo, error) {
	return os.Stat(root)
}

// walkDirs calls fn for root and every directory beneath it.
func walkDirs(root string, fn func(dir string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fn(path)
	})
}
