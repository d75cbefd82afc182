package ports

import (
	"context"
	"errors"
)

// ErrIO marks failures to read from a container: missing objects,
// transport errors and short reads.
var ErrIO = errors.New("range read failed")

// RangeSource provides byte-range reads against named containers,
// independent of the backing medium.
type RangeSource interface {
	// ReadRange returns exactly length bytes starting at offset in the object
	// identified by key. A range that cannot be fully satisfied is an error
	// wrapping ErrIO; the result is never silently truncated.
	ReadRange(ctx context.Context, key string, offset, length int64) ([]byte, error)

	// List returns every object key under a logical prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// SizedSource is implemented by sources that can report an object's size
// without reading it.
type SizedSource interface {
	RangeSource

	// Size returns the total size of the object in bytes.
	Size(ctx context.Context, key string) (int64, error)
}
