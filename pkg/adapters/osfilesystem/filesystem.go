// Package osfilesystem provides local-disk implementations of the container
// source and the output file system.
package osfilesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/insvframe/pkg/ports"
)

// FileSystem implements ports.FileSystem and ports.SizedSource using the os
// package. Keys are file paths.
type FileSystem struct{}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// ReadRange reads exactly length bytes at offset from the file at key.
func (fs *FileSystem) ReadRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("%w: %s: invalid range %d+%d", ports.ErrIO, key, offset, length)
	}

	f, err := os.Open(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrIO, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("%w: %s: read %d of %d bytes at %d: %w", ports.ErrIO, key, n, length, offset, err)
}

// List returns the regular files whose path starts with prefix, in lexical
// order. A prefix naming a directory lists everything below it.
func (fs *FileSystem) List(ctx context.Context, prefix string) ([]string, error) {
	root, match := prefix, ""
	if prefix == "" {
		root = "."
	} else if info, err := os.Stat(prefix); err != nil || !info.IsDir() {
		root, match = filepath.Dir(prefix), filepath.Clean(prefix)
	}

	var keys []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasPrefix(path, match) {
			keys = append(keys, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: list %s: %w", ports.ErrIO, prefix, err)
	}
	return keys, nil
}

// Size returns the size of the file at key.
func (fs *FileSystem) Size(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrIO, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", ports.ErrIO, key)
	}
	return info.Size(), nil
}

// WriteFile writes data to a file, creating it if necessary.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

var (
	_ ports.FileSystem  = (*FileSystem)(nil)
	_ ports.SizedSource = (*FileSystem)(nil)
)
