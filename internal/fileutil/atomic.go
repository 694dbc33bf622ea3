// Package fileutil provides the atomic writes used to persist training
// artifacts.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces filename with data via a temp file and rename, so
// a concurrent reader sees the old file, no file, or the complete new file -
// never a partial one. The parent directory is created if needed and synced
// after the rename: a centroid store the trainer has reported as written
// must not lose its directory entry to a crash.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath, err := writeTemp(dir, filepath.Base(filename), data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return syncDir(dir)
}

// writeTemp lands the data in a synced temp file in dir. The temp file must
// live in the target directory: rename is only atomic within a filesystem.
func writeTemp(dir, base string, data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()

	if err := fill(tmp, data); err != nil {
		os.Remove(path)
		return "", err
	}
	if err := os.Chmod(path, perm); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("set permissions: %w", err)
	}
	return path, nil
}

func fill(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync directory: %w", err)
	}
	return nil
}
