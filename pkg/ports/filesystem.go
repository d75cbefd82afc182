package ports

// FileSystem abstracts the output side of the file system.
type FileSystem interface {
	// WriteFile writes data to a file, creating or truncating it.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error
}
