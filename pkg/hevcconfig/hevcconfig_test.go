package hevcconfig

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/user/insvframe/pkg/bmff"
	"github.com/user/insvframe/pkg/mocks"
)

// payload strips the box header from a fixture box.
func payload(box []byte) []byte {
	return box[bmff.HeaderSize:]
}

func TestAssembleAnnexB_Exact(t *testing.T) {
	x := mocks.NAL(19, 0xaf, 0x01, 0x02, 0x03)
	params, err := ParseRecord(payload(mocks.HvcC(mocks.VPS, mocks.SPS, mocks.PPS)))
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}

	got, err := AssembleAnnexB(params, mocks.LengthPrefixed(x))
	if err != nil {
		t.Fatalf("AssembleAnnexB failed: %v", err)
	}

	sc := []byte{0, 0, 0, 1}
	want := bytes.Join([][]byte{sc, mocks.VPS, sc, mocks.SPS, sc, mocks.PPS, sc, x}, nil)
	if !bytes.Equal(got, want) {
		t.Errorf("Annex-B mismatch\n got: %x\nwant: %x", got, want)
	}
}

func TestAssembleAnnexB_MultipleSampleNALs(t *testing.T) {
	sei := mocks.NAL(39, 0x05)
	slice := mocks.NAL(20, 0xaa, 0xbb)

	got, err := AssembleAnnexB(ParameterSets{mocks.SPS}, mocks.LengthPrefixed(sei, slice))
	if err != nil {
		t.Fatalf("AssembleAnnexB failed: %v", err)
	}

	sc := StartCode
	want := bytes.Join([][]byte{sc, mocks.SPS, sc, sei, sc, slice}, nil)
	if !bytes.Equal(got, want) {
		t.Errorf("Annex-B mismatch\n got: %x\nwant: %x", got, want)
	}
}

func TestFromSampleDescription(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"hvc1", "hvc1"},
		{"hev1", "hev1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stsd := mocks.Stsd(mocks.SampleEntry(tt.entry, mocks.Box("colr", []byte("nclx")), mocks.HvcC(mocks.VPS, mocks.SPS, mocks.PPS)))

			params, err := FromSampleDescription(payload(stsd))
			if err != nil {
				t.Fatalf("FromSampleDescription failed: %v", err)
			}
			want := [][]byte{mocks.VPS, mocks.SPS, mocks.PPS}
			if len(params) != len(want) {
				t.Fatalf("expected %d parameter sets, got %d", len(want), len(params))
			}
			for i := range want {
				if !bytes.Equal(params[i], want[i]) {
					t.Errorf("parameter set %d: expected %x, got %x", i, want[i], params[i])
				}
			}
		})
	}
}

func TestFromSampleDescription_FirstHEVCEntryWins(t *testing.T) {
	stsd := mocks.Stsd(
		mocks.SampleEntry("avc1", mocks.Box("avcC", []byte{1})),
		mocks.SampleEntry("hvc1", mocks.HvcC(mocks.SPS)),
		mocks.SampleEntry("hvc1", mocks.HvcC(mocks.PPS)),
	)

	params, err := FromSampleDescription(payload(stsd))
	if err != nil {
		t.Fatalf("FromSampleDescription failed: %v", err)
	}
	if len(params) != 1 || !bytes.Equal(params[0], mocks.SPS) {
		t.Errorf("expected the first hvc1 entry's SPS, got %x", params)
	}
}

func TestFromSampleDescription_NoConfig(t *testing.T) {
	tests := []struct {
		name string
		stsd []byte
	}{
		{"audio entry", mocks.Stsd(mocks.Box("mp4a", make([]byte, 28)))},
		{"avc entry", mocks.Stsd(mocks.SampleEntry("avc1", mocks.Box("avcC", []byte{1})))},
		{"hvc1 without hvcC", mocks.Stsd(mocks.SampleEntry("hvc1", mocks.Box("colr")))},
		{"no entries", mocks.Stsd()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSampleDescription(payload(tt.stsd))
			if !errors.Is(err, ErrNoHEVCConfig) {
				t.Fatalf("expected ErrNoHEVCConfig, got %v", err)
			}
		})
	}
}

func TestFromSampleDescription_FormatErrors(t *testing.T) {
	shortEntry := mocks.Stsd(mocks.Box("hvc1", make([]byte, 40)))
	badRecord := mocks.Stsd(mocks.SampleEntry("hvc1", mocks.Box("hvcC", make([]byte, 10))))

	for name, stsd := range map[string][]byte{
		"short stsd":        mocks.U32s(0),
		"short hvc1 entry":  payload(shortEntry),
		"short hvcC record": payload(badRecord),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromSampleDescription(stsd)
			if !errors.Is(err, bmff.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
		})
	}
}

func TestParseRecord_Errors(t *testing.T) {
	header := make([]byte, 23)

	tests := []struct {
		name   string
		record []byte
	}{
		{"short header", make([]byte, 20)},
		{"count two", append(append([]byte{}, header...), 0xa0, 0x00, 0x02, 0x00, 0x01, 0x40)},
		{"count zero", append(append([]byte{}, header...), 0xa0, 0x00, 0x00, 0x00, 0x00)},
		{"cut array header", append(append([]byte{}, header...), 0xa0, 0x00)},
		{"nal overrun", append(append([]byte{}, header...), 0xa0, 0x00, 0x01, 0x00, 0x09, 0x40, 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(tt.record)
			if !errors.Is(err, bmff.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
		})
	}
}

func TestParseRecord_NoArrays(t *testing.T) {
	params, err := ParseRecord(make([]byte, 23))
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if len(params) != 0 {
		t.Errorf("expected no parameter sets, got %d", len(params))
	}
}

func TestSplitSample_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sample []byte
	}{
		{"dangling prefix", append(mocks.LengthPrefixed(mocks.PPS), 0, 0)},
		{"overrun", append(mocks.U32s(10), 1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitSample(tt.sample)
			if !errors.Is(err, bmff.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
			if _, err := AssembleAnnexB(nil, tt.sample); !errors.Is(err, bmff.ErrFormat) {
				t.Errorf("AssembleAnnexB: expected format error, got %v", err)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	info := Describe(ParameterSets{mocks.VPS, mocks.SPS, mocks.PPS, {}})

	want := []string{"VPS", "SPS", "PPS", "empty"}
	if len(info.NALTypes) != len(want) {
		t.Fatalf("expected %d types, got %v", len(want), info.NALTypes)
	}
	for i := range want {
		if !strings.HasPrefix(info.NALTypes[i], want[i]) {
			t.Errorf("type %d: expected %s, got %s", i, want[i], info.NALTypes[i])
		}
	}
}
