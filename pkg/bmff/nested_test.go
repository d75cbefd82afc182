package bmff

import (
	"bytes"
	"errors"
	"testing"

	"github.com/user/insvframe/pkg/mocks"
)

func TestFindNested_EmptyPathIsIdentity(t *testing.T) {
	buf := []byte{0xde, 0xad, 0xbe, 0xef}

	got, ok, err := FindNested(buf)
	if err != nil || !ok {
		t.Fatalf("FindNested failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, buf) {
		t.Errorf("expected buffer unchanged, got %x", got)
	}
}

func TestFindNested_Path(t *testing.T) {
	stsz := mocks.Box("stsz", []byte{1, 2, 3, 4})
	buf := mocks.Box("mdia",
		mocks.Box("mdhd", make([]byte, 4)),
		mocks.Box("minf", mocks.Box("vmhd"), mocks.Box("stbl", mocks.Box("stss"), stsz)),
	)

	got, ok, err := FindNested(buf, TypeMdia, TypeMinf, TypeStbl, TypeStsz)
	if err != nil || !ok {
		t.Fatalf("FindNested failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("expected stsz payload, got %x", got)
	}
}

func TestFindNested_Missing(t *testing.T) {
	buf := bytes.Join([][]byte{mocks.Box("free", []byte{0}), mocks.Box("skip")}, nil)

	paths := [][]BoxType{
		{TypeMoov},
		{TypeMoov, TypeTrak},
		{TypeMoov, TypeTrak, TypeMdia, TypeMinf, TypeStbl},
		{TypeFree, TypeStbl},
	}
	for _, path := range paths {
		got, ok, err := FindNested(buf, path...)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", PathString(path...), err)
		}
		if ok || got != nil {
			t.Errorf("%s: expected not found", PathString(path...))
		}
	}
}

func TestFindNested_LargeSizeInMemory(t *testing.T) {
	buf := mocks.LargeBox("stbl", mocks.Box("stco", []byte{9}))

	got, ok, err := FindNested(buf, TypeStbl, TypeStco)
	if err != nil || !ok {
		t.Fatalf("FindNested failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte{9}) {
		t.Errorf("expected stco payload, got %x", got)
	}
}

func TestFindNested_MalformedChild(t *testing.T) {
	// A zero-sized child inside stbl must fail rather than loop forever.
	inner := append(mocks.U32s(0), []byte("stss")...)
	buf := mocks.Box("stbl", inner)

	_, _, err := FindNested(buf, TypeStbl, TypeStsz)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if fe.Path != "stbl/stss" {
		t.Errorf("expected path stbl/stss, got %q", fe.Path)
	}
}

func TestFindNested_Overrun(t *testing.T) {
	buf := mocks.Box("stbl", mocks.Box("stsz", make([]byte, 8)))
	// Cut the buffer so the stbl box claims more bytes than remain.
	buf = buf[:len(buf)-3]

	_, _, err := FindNested(buf, TypeStbl)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestChildren_KindDispatch(t *testing.T) {
	buf := bytes.Join([][]byte{
		mocks.Box("stsd"),
		mocks.Box("sgpd"),
		mocks.Box("stss"),
		mocks.Box("co64"),
		mocks.Box("mvhd"),
		mocks.Box("hev1"),
	}, nil)

	var kinds []Kind
	err := Children(buf, func(b RawBox) error {
		kinds = append(kinds, b.Type.Kind())
		return nil
	})
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}

	expected := []Kind{KindUnknown, KindUnknown, KindStss, KindCo64, KindUnknown, KindHev1}
	if len(kinds) != len(expected) {
		t.Fatalf("expected %d children, got %d", len(expected), len(kinds))
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("child %d: expected kind %d, got %d", i, expected[i], kinds[i])
		}
	}
}

func TestWithin(t *testing.T) {
	err := Within("trak[2]", Errorf("stbl/stsz", "bad"))
	if err.Error() != "format error in trak[2]/stbl/stsz: bad" {
		t.Errorf("unexpected message: %s", err)
	}

	plain := errors.New("plain")
	if Within("trak", plain) != plain {
		t.Error("expected non-format errors to pass through unchanged")
	}
}
