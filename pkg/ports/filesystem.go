package ports

// FileSystem is where uploads are staged and converted videos are written.
type FileSystem interface {
	// WriteFile writes data to path, creating parent directories as needed.
	WriteFile(path string, data []byte) error

	// TempFile stores data in a new file named after pattern and returns its path.
	TempFile(pattern string, data []byte) (string, error)

	// Remove deletes path. Removing a missing file is not an error.
	Remove(path string) error
}
