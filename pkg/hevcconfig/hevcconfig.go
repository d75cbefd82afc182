// Package hevcconfig recovers HEVC parameter sets from a track's sample
// description and frames a stored sample as an Annex-B bitstream.
package hevcconfig

import (
	"encoding/binary"
	"errors"

	"github.com/user/insvframe/pkg/bmff"
)

// ErrNoHEVCConfig is returned when a sample description has no hvc1/hev1
// entry or the entry carries no hvcC box. Such tracks are skipped.
var ErrNoHEVCConfig = errors.New("track has no HEVC decoder configuration")

const (
	// stsdHeaderSize covers version, flags and the entry count.
	stsdHeaderSize = 8
	// visualEntrySize is the fixed part of a visual sample entry before
	// its child boxes.
	visualEntrySize = 78
	// recordHeaderSize is the fixed part of HEVCDecoderConfigurationRecord
	// before the array count.
	recordHeaderSize = 22
)

// StartCode prefixes every NAL unit in an Annex-B stream.
var StartCode = []byte{0, 0, 0, 1}

// ParameterSets are raw VPS/SPS/PPS NAL units in hvcC order, without
// start codes.
type ParameterSets [][]byte

// FromSampleDescription finds the first HEVC sample entry in an stsd
// payload and returns the parameter sets of its hvcC box.
func FromSampleDescription(stsd []byte) (ParameterSets, error) {
	if len(stsd) < stsdHeaderSize {
		return nil, bmff.Errorf("stsd", "payload of %d bytes is shorter than its header", len(stsd))
	}

	var entry []byte
	var entryType bmff.BoxType
	err := bmff.Children(stsd[stsdHeaderSize:], func(b bmff.RawBox) error {
		if entry != nil || !b.Type.Kind().IsHEVCSampleEntry() {
			return nil
		}
		entry, entryType = b.Payload, b.Type
		return nil
	})
	if err != nil {
		return nil, bmff.Within("stsd", err)
	}
	if entry == nil {
		return nil, ErrNoHEVCConfig
	}

	path := "stsd/" + entryType.String()
	if len(entry) < visualEntrySize {
		return nil, bmff.Errorf(path, "sample entry of %d bytes is shorter than its fixed fields", len(entry))
	}
	hvcC, ok, err := bmff.Find(entry[visualEntrySize:], bmff.TypeHvcC)
	if err != nil {
		return nil, bmff.Within(path, err)
	}
	if !ok {
		return nil, ErrNoHEVCConfig
	}

	params, err := ParseRecord(hvcC)
	if err != nil {
		return nil, bmff.Within(path, err)
	}
	return params, nil
}

// ParseRecord extracts the NAL units of an hvcC payload. Arrays are read
// until the payload is exhausted; each array must hold exactly one NAL.
func ParseRecord(hvcC []byte) (ParameterSets, error) {
	if len(hvcC) < recordHeaderSize+1 {
		return nil, bmff.Errorf("hvcC", "record of %d bytes is shorter than its header", len(hvcC))
	}

	var params ParameterSets
	p := hvcC[recordHeaderSize+1:]
	for len(p) > 0 {
		if len(p) < 5 {
			return nil, bmff.Errorf("hvcC", "array header cut off after %d bytes", len(p))
		}
		count := binary.BigEndian.Uint16(p[1:3])
		if count != 1 {
			return nil, bmff.Errorf("hvcC", "array of NAL type %d holds %d NAL units, expected 1", p[0]&0x3f, count)
		}
		size := int(binary.BigEndian.Uint16(p[3:5]))
		p = p[5:]
		if size > len(p) {
			return nil, bmff.Errorf("hvcC", "NAL unit of %d bytes overruns the %d remaining bytes", size, len(p))
		}
		params = append(params, p[:size])
		p = p[size:]
	}
	return params, nil
}

// SplitSample splits a sample stored with 4-byte length prefixes into its
// NAL units.
func SplitSample(sample []byte) ([][]byte, error) {
	var nalus [][]byte
	p := sample
	for len(p) > 0 {
		if len(p) < 4 {
			return nil, bmff.Errorf("mdat", "dangling %d-byte length prefix", len(p))
		}
		size := binary.BigEndian.Uint32(p[:4])
		p = p[4:]
		if uint64(size) > uint64(len(p)) {
			return nil, bmff.Errorf("mdat", "NAL unit of %d bytes overruns the %d remaining sample bytes", size, len(p))
		}
		nalus = append(nalus, p[:size])
		p = p[size:]
	}
	return nalus, nil
}

// AssembleAnnexB emits a start code and the NAL bytes for every parameter
// set and then for every NAL unit of the sample.
func AssembleAnnexB(params ParameterSets, sample []byte) ([]byte, error) {
	nalus, err := SplitSample(sample)
	if err != nil {
		return nil, err
	}

	n := 0
	for _, p := range params {
		n += len(StartCode) + len(p)
	}
	for _, u := range nalus {
		n += len(StartCode) + len(u)
	}

	out := make([]byte, 0, n)
	for _, p := range params {
		out = append(out, StartCode...)
		out = append(out, p...)
	}
	for _, u := range nalus {
		out = append(out, StartCode...)
		out = append(out, u...)
	}
	return out, nil
}
