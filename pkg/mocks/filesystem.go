package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/frameconv/pkg/ports"
)

// FileSystem keeps files in memory and records removals.
type FileSystem struct {
	WriteFileFunc func(path string, data []byte) error
	TempFileFunc  func(pattern string, data []byte) (string, error)

	mu      sync.Mutex
	files   map[string][]byte
	removed []string
	seq     int
}

// NewFileSystem returns an empty in-memory FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{files: make(map[string][]byte)}
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	m.files[path] = data
	m.mu.Unlock()
	return nil
}

func (m *FileSystem) TempFile(pattern string, data []byte) (string, error) {
	if m.TempFileFunc != nil {
		return m.TempFileFunc(pattern, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	path := "/tmp/" + strings.Replace(pattern, "*", fmt.Sprint(m.seq), 1)
	m.files[path] = data
	return path, nil
}

func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	delete(m.files, path)
	m.removed = append(m.removed, path)
	m.mu.Unlock()
	return nil
}

// File returns the stored contents of path.
func (m *FileSystem) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	return data, ok
}

// Paths lists every file still present.
func (m *FileSystem) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	return paths
}

// Removed lists removed paths in call order.
func (m *FileSystem) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

var _ ports.FileSystem = (*FileSystem)(nil)
