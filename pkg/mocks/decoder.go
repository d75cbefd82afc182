package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/insvframe/pkg/ports"
)

// FrameDecoder is a mock implementation of ports.FrameDecoder.
type FrameDecoder struct {
	mu sync.Mutex

	DecodeFrameFunc func(ctx context.Context, annexB []byte) (image.Image, error)

	// Recorded calls for verification
	Inputs [][]byte
}

func (m *FrameDecoder) DecodeFrame(ctx context.Context, annexB []byte) (image.Image, error) {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, append([]byte(nil), annexB...))
	m.mu.Unlock()

	if m.DecodeFrameFunc != nil {
		return m.DecodeFrameFunc(ctx, annexB)
	}
	return image.NewRGBA(image.Rect(0, 0, 64, 32)), nil
}

// Calls returns the number of DecodeFrame calls.
func (m *FrameDecoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inputs)
}

var _ ports.FrameDecoder = (*FrameDecoder)(nil)
