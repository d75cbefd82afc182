package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/user/insvframe/pkg/ports"
)

// RangeSource is an in-memory implementation of ports.SizedSource.
type RangeSource struct {
	mu      sync.RWMutex
	objects map[string][]byte

	ReadRangeFunc func(ctx context.Context, key string, offset, length int64) ([]byte, error)

	// Recorded calls for verification
	Reads []ReadCall
}

// ReadCall records a call to ReadRange.
type ReadCall struct {
	Key    string
	Offset int64
	Length int64
}

// NewRangeSource creates a new mock RangeSource.
func NewRangeSource() *RangeSource {
	return &RangeSource{objects: make(map[string][]byte)}
}

// Put stores an object.
func (m *RangeSource) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

func (m *RangeSource) ReadRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	m.mu.Lock()
	m.Reads = append(m.Reads, ReadCall{Key: key, Offset: offset, Length: length})
	m.mu.Unlock()

	if m.ReadRangeFunc != nil {
		return m.ReadRangeFunc(ctx, key, offset, length)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such object", ports.ErrIO, key)
	}
	if offset < 0 || length < 0 || offset > int64(len(data)) || length > int64(len(data))-offset {
		return nil, fmt.Errorf("%w: %s: range %d+%d beyond %d bytes", ports.ErrIO, key, offset, length, len(data))
	}
	out := make([]byte, length)
	copy(out, data[offset:offset+length])
	return out, nil
}

func (m *RangeSource) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *RangeSource) Size(ctx context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s: no such object", ports.ErrIO, key)
	}
	return int64(len(data)), nil
}

// BytesRead returns the total number of bytes requested through ReadRange.
func (m *RangeSource) BytesRead() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.Reads {
		n += r.Length
	}
	return n
}

var _ ports.SizedSource = (*RangeSource)(nil)
