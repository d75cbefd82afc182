// Package sampletable resolves the sync samples, sample sizes and chunk
// offsets of one track from the raw payload of its stbl box.
//
// Only the one-sample-per-chunk layout is supported: the i-th size belongs
// to the i-th chunk offset.
package sampletable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/insvframe/pkg/bmff"
)

// ErrNoSyncSamples is returned when a track has no stss box or an empty one.
// Such tracks carry no keyframe to extract and are skipped.
var ErrNoSyncSamples = errors.New("track has no sync samples")

// Table holds the parallel sample tables of one track.
type Table struct {
	SyncSamples  []uint32 // 1-based sample numbers, ascending
	SampleSizes  []uint32
	ChunkOffsets []uint64
}

// Sample is the byte range of one stored sample.
type Sample struct {
	Number uint32 // 1-based, as stored in stss
	Index  int    // 0-based table index
	Offset uint64
	Size   uint32
}

// End returns the offset just past the sample payload.
func (s Sample) End() uint64 {
	return s.Offset + uint64(s.Size)
}

// Parse reads the sample tables out of an stbl payload.
func Parse(stbl []byte) (*Table, error) {
	var t Table
	var haveStss, haveStsz, haveOffsets bool

	err := bmff.Children(stbl, func(b bmff.RawBox) error {
		var err error
		switch b.Type.Kind() {
		case bmff.KindStss:
			haveStss = true
			t.SyncSamples, err = parseStss(b)
		case bmff.KindStsz:
			haveStsz = true
			t.SampleSizes, err = parseStsz(b)
		case bmff.KindStco:
			if haveOffsets {
				return bmff.Errorf("stco", "more than one chunk offset table")
			}
			haveOffsets = true
			t.ChunkOffsets, err = parseStco(b)
		case bmff.KindCo64:
			if haveOffsets {
				return bmff.Errorf("co64", "more than one chunk offset table")
			}
			haveOffsets = true
			t.ChunkOffsets, err = parseCo64(b)
		}
		return err
	})
	if err != nil {
		return nil, bmff.Within("stbl", err)
	}

	if !haveStss || len(t.SyncSamples) == 0 {
		return nil, ErrNoSyncSamples
	}
	if !haveStsz {
		return nil, bmff.Errorf("stbl", "missing stsz")
	}
	if !haveOffsets {
		return nil, bmff.Errorf("stbl", "missing stco or co64")
	}
	if len(t.SampleSizes) != len(t.ChunkOffsets) {
		return nil, bmff.Errorf("stbl", "%d sample sizes but %d chunk offsets; multi-sample chunks are unsupported",
			len(t.SampleSizes), len(t.ChunkOffsets))
	}
	return &t, nil
}

// MiddleSync returns the sync sample in the middle of the sync sample list.
// A middle frame avoids the black or unsettled frames at the start of a
// recording.
func (t *Table) MiddleSync() (Sample, error) {
	if len(t.SyncSamples) == 0 {
		return Sample{}, ErrNoSyncSamples
	}
	num := t.SyncSamples[len(t.SyncSamples)/2]
	if num == 0 {
		return Sample{}, bmff.Errorf("stbl/stss", "sample number 0 is invalid")
	}
	idx := int(num - 1)
	if idx >= len(t.SampleSizes) || idx >= len(t.ChunkOffsets) {
		return Sample{}, bmff.Errorf("stbl/stss", "sync sample %d beyond the %d-entry sample table", num, len(t.SampleSizes))
	}
	return Sample{
		Number: num,
		Index:  idx,
		Offset: t.ChunkOffsets[idx],
		Size:   t.SampleSizes[idx],
	}, nil
}

// decode parses one child of stbl with mp4ff, which rejects a declared entry
// count that disagrees with the box length. mp4ff sizes these boxes with a
// compact header, so a large-size header is rewritten before decoding.
func decode(b bmff.RawBox) (mp4.Box, error) {
	name := b.Type.String()
	data := b.Data
	if len(data) != bmff.HeaderSize+len(b.Payload) {
		if uint64(bmff.HeaderSize+len(b.Payload)) > math.MaxUint32 {
			return nil, bmff.Errorf(name, "box of %d bytes is too large", len(b.Data))
		}
		data = make([]byte, bmff.HeaderSize, bmff.HeaderSize+len(b.Payload))
		binary.BigEndian.PutUint32(data[0:4], uint32(bmff.HeaderSize+len(b.Payload)))
		copy(data[4:8], b.Type[:])
		data = append(data, b.Payload...)
	}
	box, err := mp4.DecodeBox(0, bytes.NewReader(data))
	if err != nil {
		return nil, bmff.Errorf(name, "%v", err)
	}
	return box, nil
}

func parseStss(b bmff.RawBox) ([]uint32, error) {
	box, err := decode(b)
	if err != nil {
		return nil, err
	}
	stss, ok := box.(*mp4.StssBox)
	if !ok {
		return nil, bmff.Errorf("stss", "decoded as %T", box)
	}
	return stss.SampleNumber, nil
}

func parseStsz(b bmff.RawBox) ([]uint32, error) {
	box, err := decode(b)
	if err != nil {
		return nil, err
	}
	stsz, ok := box.(*mp4.StszBox)
	if !ok {
		return nil, bmff.Errorf("stsz", "decoded as %T", box)
	}
	if stsz.SampleUniformSize != 0 {
		return nil, bmff.Errorf("stsz", "uniform sample size encoding unsupported (size %d)", stsz.SampleUniformSize)
	}
	return stsz.SampleSize, nil
}

func parseStco(b bmff.RawBox) ([]uint64, error) {
	box, err := decode(b)
	if err != nil {
		return nil, err
	}
	stco, ok := box.(*mp4.StcoBox)
	if !ok {
		return nil, bmff.Errorf("stco", "decoded as %T", box)
	}
	out := make([]uint64, len(stco.ChunkOffset))
	for i, off := range stco.ChunkOffset {
		out[i] = uint64(off)
	}
	return out, nil
}

func parseCo64(b bmff.RawBox) ([]uint64, error) {
	box, err := decode(b)
	if err != nil {
		return nil, err
	}
	co64, ok := box.(*mp4.Co64Box)
	if !ok {
		return nil, bmff.Errorf("co64", "decoded as %T", box)
	}
	return co64.ChunkOffset, nil
}
