package bmff

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/user/insvframe/pkg/ports"
)

// Unbounded is passed as the end of a range to scan until a box is found or
// a read fails.
const Unbounded = math.MaxUint64

// Walker scans one container through a RangeSource.
type Walker struct {
	src ports.RangeSource
	key string
}

// NewWalker creates a Walker for the container identified by key.
func NewWalker(src ports.RangeSource, key string) *Walker {
	return &Walker{src: src, key: key}
}

// FindInRange scans the sibling boxes starting at start and returns the
// first one of type target. The scan stops, reporting not found, when fewer
// than HeaderSize bytes remain before end or when the next box would cross
// end. Only box headers are read; the payloads of skipped boxes are not.
func (w *Walker) FindInRange(ctx context.Context, target BoxType, start, end uint64) (Box, bool, error) {
	for end == Unbounded || (start <= end && end-start >= HeaderSize) {
		if err := ctx.Err(); err != nil {
			return Box{}, false, err
		}

		box, err := w.readHeader(ctx, start, end)
		if err != nil {
			return Box{}, false, err
		}

		if end != Unbounded && box.Size > end-start {
			if box.Type == target {
				return Box{}, false, Errorf(target.String(),
					"box at offset %d has size %d but only %d bytes remain in its parent", start, box.Size, end-start)
			}
			return Box{}, false, nil
		}
		if box.Size > Unbounded-start {
			return Box{}, false, Errorf(box.Type.String(), "box at offset %d has size %d overflowing the offset space", start, box.Size)
		}

		if box.Type == target {
			return box, true, nil
		}
		start = box.End()
	}
	return Box{}, false, nil
}

// FindAll returns every direct child of type target inside parent, in file
// order.
func (w *Walker) FindAll(ctx context.Context, target BoxType, parent Box) ([]Box, error) {
	var boxes []Box
	pos := parent.PayloadOffset()
	for {
		box, ok, err := w.FindInRange(ctx, target, pos, parent.End())
		if err != nil {
			return nil, Within(parent.Type.String(), err)
		}
		if !ok {
			return boxes, nil
		}
		boxes = append(boxes, box)
		pos = box.End()
	}
}

// ReadPayload reads the bytes following the box header.
func (w *Walker) ReadPayload(ctx context.Context, box Box) ([]byte, error) {
	if box.PayloadSize() > math.MaxInt32 {
		return nil, Errorf(box.Type.String(), "payload of %d bytes is too large to load", box.PayloadSize())
	}
	return w.read(ctx, box.PayloadOffset(), box.PayloadSize())
}

// readHeader reads the header at offset, following a large size when the
// 32-bit size field is 1.
func (w *Walker) readHeader(ctx context.Context, offset, end uint64) (Box, error) {
	hdr, err := w.read(ctx, offset, HeaderSize)
	if err != nil {
		return Box{}, err
	}

	box := Box{Offset: offset, HeaderSize: HeaderSize}
	copy(box.Type[:], hdr[4:8])
	box.Size = uint64(binary.BigEndian.Uint32(hdr[0:4]))

	if box.Size == 1 {
		if end != Unbounded && end-offset < LargeHeaderSize {
			return Box{}, Errorf(box.Type.String(), "large size field at offset %d is cut off by the end of its parent", offset)
		}
		ext, err := w.read(ctx, offset+HeaderSize, 8)
		if err != nil {
			return Box{}, err
		}
		box.Size = binary.BigEndian.Uint64(ext)
		box.HeaderSize = LargeHeaderSize
	}

	if box.Size == 0 {
		return Box{}, Errorf(box.Type.String(), "box at offset %d has size 0", offset)
	}
	if box.Size < box.HeaderSize {
		return Box{}, Errorf(box.Type.String(), "box at offset %d has size %d, smaller than its %d-byte header", offset, box.Size, box.HeaderSize)
	}
	return box, nil
}

func (w *Walker) read(ctx context.Context, offset, length uint64) ([]byte, error) {
	if offset > math.MaxInt64 || length > math.MaxInt64-offset {
		return nil, fmt.Errorf("%w: %s: range at %d+%d out of bounds", ports.ErrIO, w.key, offset, length)
	}
	return w.src.ReadRange(ctx, w.key, int64(offset), int64(length))
}
