package mocks

import (
	"bytes"
	"encoding/binary"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Box encodes a box with a 32-bit size field around the concatenated payloads.
func Box(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	out := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(8+len(body)))
	copy(out[4:8], typ)
	return append(out, body...)
}

// LargeBox encodes a box using the 64-bit large size form.
func LargeBox(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	out := make([]byte, 16, 16+len(body))
	binary.BigEndian.PutUint32(out[0:4], 1)
	copy(out[4:8], typ)
	binary.BigEndian.PutUint64(out[8:16], uint64(16+len(body)))
	return append(out, body...)
}

// U32s encodes big-endian 32-bit words.
func U32s(vals ...uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(out[4*i:], v)
	}
	return out
}

// U64s encodes big-endian 64-bit words.
func U64s(vals ...uint64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(out[8*i:], v)
	}
	return out
}

// Encode serializes an mp4ff box.
func Encode(b mp4.Box) []byte {
	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// HvcC builds an hvcC box with a zeroed 22-byte record header followed by
// one single-NAL array per parameter set.
func HvcC(params ...[]byte) []byte {
	rec := make([]byte, 22, 64)
	rec = append(rec, byte(len(params)))
	for _, p := range params {
		nalType := byte(0)
		if len(p) > 0 {
			nalType = (p[0] >> 1) & 0x3f
		}
		rec = append(rec, 0x80|nalType)
		rec = binary.BigEndian.AppendUint16(rec, 1)
		rec = binary.BigEndian.AppendUint16(rec, uint16(len(p)))
		rec = append(rec, p...)
	}
	return Box("hvcC", rec)
}

// SampleEntry builds a visual sample entry of the given type whose 78 bytes
// of fixed fields are followed by the child boxes.
func SampleEntry(typ string, children ...[]byte) []byte {
	fixed := make([]byte, 78)
	binary.BigEndian.PutUint16(fixed[6:8], 1)      // data_reference_index
	binary.BigEndian.PutUint16(fixed[24:26], 5760) // width
	binary.BigEndian.PutUint16(fixed[26:28], 2880) // height
	return Box(typ, append([][]byte{fixed}, children...)...)
}

// Stsd wraps sample entries in an stsd box.
func Stsd(entries ...[]byte) []byte {
	hdr := U32s(0, uint32(len(entries)))
	return Box("stsd", append([][]byte{hdr}, entries...)...)
}

// NAL builds an HEVC NAL unit of the given type with the given body.
func NAL(nalType byte, body ...byte) []byte {
	return append([]byte{nalType << 1, 0x01}, body...)
}

// LengthPrefixed frames NAL units with 4-byte big-endian lengths.
func LengthPrefixed(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = binary.BigEndian.AppendUint32(out, uint32(len(n)))
		out = append(out, n...)
	}
	return out
}

// Parameter sets used by the synthetic HEVC tracks.
var (
	VPS = NAL(32, 0x0c, 0x01, 0xff, 0xff)
	SPS = NAL(33, 0x01, 0x01, 0x60, 0x00)
	PPS = NAL(34, 0xc1, 0x73, 0xd0, 0x89)
)

// TrackSpec describes one synthetic track.
type TrackSpec struct {
	// SampleEntry is the sample entry type; empty means hvc1.
	SampleEntry string
	// Params are the hvcC parameter sets; nil means VPS, SPS and PPS.
	Params [][]byte
	// NoHvcC omits the hvcC box from the sample entry.
	NoHvcC bool
	// Samples are the stored sample payloads.
	Samples [][]byte
	// Sync lists the 1-based sync sample numbers; nil omits stss.
	Sync []uint32
	// Co64 stores chunk offsets in a co64 box instead of stco.
	Co64 bool
	// StcoCountDelta is added to the declared stco/co64 entry count.
	StcoCountDelta int
	// NoStbl omits the whole sample table.
	NoStbl bool
}

// Container is a synthetic container with the information needed to check
// results against it.
type Container struct {
	Data []byte
	// SampleOffsets holds the absolute offset of every sample, per track.
	SampleOffsets [][]uint64
}

// BuildContainer lays out ftyp, an mdat holding every track's samples and a
// moov describing them, one chunk per sample.
func BuildContainer(tracks ...TrackSpec) Container {
	ftyp := Box("ftyp", []byte("isom"), U32s(0x200), []byte("isomhvc1"))

	var mdatBody []byte
	offsets := make([][]uint64, len(tracks))
	base := uint64(len(ftyp) + 8)
	for i, t := range tracks {
		for _, s := range t.Samples {
			offsets[i] = append(offsets[i], base+uint64(len(mdatBody)))
			mdatBody = append(mdatBody, s...)
		}
	}
	mdat := Box("mdat", mdatBody)

	var traks [][]byte
	for i, t := range tracks {
		traks = append(traks, buildTrak(t, offsets[i]))
	}
	mvhd := Box("mvhd", make([]byte, 100))
	moov := Box("moov", append([][]byte{mvhd}, traks...)...)

	return Container{
		Data:          bytes.Join([][]byte{ftyp, mdat, moov}, nil),
		SampleOffsets: offsets,
	}
}

func buildTrak(t TrackSpec, offsets []uint64) []byte {
	tkhd := Box("tkhd", make([]byte, 84))
	if t.NoStbl {
		return Box("trak", tkhd, Box("mdia", Box("minf")))
	}

	entryType := t.SampleEntry
	if entryType == "" {
		entryType = "hvc1"
	}
	params := t.Params
	if params == nil {
		params = [][]byte{VPS, SPS, PPS}
	}
	var entryChildren [][]byte
	if !t.NoHvcC {
		entryChildren = append(entryChildren, HvcC(params...))
	}

	var children [][]byte
	children = append(children, Stsd(SampleEntry(entryType, entryChildren...)))
	if t.Sync != nil {
		children = append(children, Encode(&mp4.StssBox{SampleNumber: t.Sync}))
	}

	sizes := make([]uint32, len(t.Samples))
	for i, s := range t.Samples {
		sizes[i] = uint32(len(s))
	}
	children = append(children, Encode(&mp4.StszBox{SampleNumber: uint32(len(sizes)), SampleSize: sizes}))

	count := uint32(len(offsets) + t.StcoCountDelta)
	if t.Co64 {
		children = append(children, Box("co64", U32s(0, count), U64s(offsets...)))
	} else {
		offs32 := make([]uint32, len(offsets))
		for i, o := range offsets {
			offs32[i] = uint32(o)
		}
		children = append(children, Box("stco", U32s(0, count), U32s(offs32...)))
	}

	stbl := Box("stbl", children...)
	return Box("trak", tkhd, Box("mdia", Box("mdhd", make([]byte, 24)), Box("minf", stbl)))
}
