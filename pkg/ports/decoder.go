package ports

import (
	"context"
	"errors"
	"image"
)

// ErrDecoderUnavailable is returned when no decoder can run at all. It is
// fatal for the container rather than for a single track.
var ErrDecoderUnavailable = errors.New("frame decoder unavailable")

// FrameDecoder decodes a single HEVC access unit.
type FrameDecoder interface {
	// DecodeFrame decodes an Annex-B buffer holding parameter sets followed
	// by exactly one coded picture and returns the picture.
	DecodeFrame(ctx context.Context, annexB []byte) (image.Image, error)
}
