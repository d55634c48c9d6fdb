package filesys

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if stat != nil {
		if !stat.IsDir() {
			return ErrIsNotDir
		}
		if !force {
			return nil
		}
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// OpenAppend opens path for appending, creating it and its parent directory when missing.
func OpenAppend(path string, permission os.FileMode) (*os.File, error) {
	if err := CreateDir(filepath.Dir(path), 0755, false); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, permission)
}

// ReadDir returns the files matching pattern in lexical order.
func ReadDir(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
