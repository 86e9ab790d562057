// Package osfilesystem stores uploads and converted videos on the local disk.
package osfilesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/frameconv/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct {
	tempDir string
}

// New creates a FileSystem. Temporary files go to tempDir, or the system
// default when it is empty.
func New(tempDir string) *FileSystem {
	return &FileSystem{tempDir: tempDir}
}

// WriteFile writes data to a file, creating parent directories if necessary.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Remove deletes a file. A missing file is not an error.
func (fs *FileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TempFile writes data to a new temporary file and returns its path.
func (fs *FileSystem) TempFile(pattern string, data []byte) (string, error) {
	if fs.tempDir != "" {
		if err := os.MkdirAll(fs.tempDir, 0755); err != nil {
			return "", err
		}
	}
	f, err := os.CreateTemp(fs.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
