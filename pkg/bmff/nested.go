package bmff

import (
	"encoding/binary"
	"errors"
)

// errStop ends a Children iteration early without reporting an error.
var errStop = errors.New("stop")

// RawBox is a box located inside an in-memory buffer.
type RawBox struct {
	Type    BoxType
	Offset  int    // offset of the header inside the scanned buffer
	Data    []byte // header and payload
	Payload []byte
}

// Children calls fn for every direct child box in buf, in order. Iteration
// stops at the first error returned by fn, which is passed through. Fewer
// than HeaderSize trailing bytes are ignored.
func Children(buf []byte, fn func(RawBox) error) error {
	pos := 0
	for len(buf)-pos >= HeaderSize {
		typ := BoxType{buf[pos+4], buf[pos+5], buf[pos+6], buf[pos+7]}
		size := uint64(binary.BigEndian.Uint32(buf[pos : pos+4]))
		hdr := uint64(HeaderSize)

		if size == 1 {
			if len(buf)-pos < LargeHeaderSize {
				return Errorf(typ.String(), "large size field at offset %d is cut off", pos)
			}
			size = binary.BigEndian.Uint64(buf[pos+8 : pos+16])
			hdr = LargeHeaderSize
		}

		switch {
		case size == 0:
			return Errorf(typ.String(), "box at offset %d has size 0", pos)
		case size < hdr:
			return Errorf(typ.String(), "box at offset %d has size %d, smaller than its %d-byte header", pos, size, hdr)
		case size > uint64(len(buf)-pos):
			return Errorf(typ.String(), "box at offset %d has size %d but only %d bytes remain", pos, size, len(buf)-pos)
		}

		end := pos + int(size)
		if err := fn(RawBox{Type: typ, Offset: pos, Data: buf[pos:end], Payload: buf[pos+int(hdr) : end]}); err != nil {
			return err
		}
		pos = end
	}
	return nil
}

// Find returns the payload of the first direct child of type target.
func Find(buf []byte, target BoxType) ([]byte, bool, error) {
	var found []byte
	ok := false
	err := Children(buf, func(b RawBox) error {
		if b.Type != target {
			return nil
		}
		found, ok = b.Payload, true
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, false, err
	}
	return found, ok, nil
}

// FindNested descends through buf following path, one box type per level,
// and returns the payload of the last box. An empty path returns buf
// unchanged. A missing segment reports not found.
func FindNested(buf []byte, path ...BoxType) ([]byte, bool, error) {
	if len(path) == 0 {
		return buf, true, nil
	}
	payload, ok, err := Find(buf, path[0])
	if err != nil || !ok {
		return nil, false, err
	}
	inner, ok, err := FindNested(payload, path[1:]...)
	if err != nil {
		return nil, false, Within(path[0].String(), err)
	}
	return inner, ok, nil
}

// PathString renders a box path as "a/b/c".
func PathString(path ...BoxType) string {
	s := ""
	for i, t := range path {
		if i > 0 {
			s += "/"
		}
		s += t.String()
	}
	return s
}
