// Package bmff locates boxes in ISO Base Media File Format containers.
//
// Boxes are never materialized as a tree. The walker resolves only the path
// it is asked for: top-level scans go through a ports.RangeSource and skip
// sibling subtrees without reading them, while lookups inside an already
// fetched payload scan the in-memory buffer.
package bmff

// HeaderSize is the size of a box header with a 32-bit size field.
const HeaderSize = 8

// LargeHeaderSize is the size of a box header carrying a 64-bit large size.
const LargeHeaderSize = 16

// BoxType is a 4-byte box type tag.
type BoxType [4]byte

func (t BoxType) String() string {
	return string(t[:])
}

// Kind classifies the box type. Types this package has no use for map to
// KindUnknown and are treated as opaque.
func (t BoxType) Kind() Kind {
	if k, ok := kindByType[t]; ok {
		return k
	}
	return KindUnknown
}

// Kind is the set of box kinds the extractor dispatches on.
type Kind int

const (
	KindUnknown Kind = iota
	KindStss
	KindStsz
	KindStco
	KindCo64
	KindHvc1
	KindHev1
)

// Known box types.
var (
	TypeFtyp = BoxType{'f', 't', 'y', 'p'}
	TypeFree = BoxType{'f', 'r', 'e', 'e'}
	TypeMdat = BoxType{'m', 'd', 'a', 't'}
	TypeMoov = BoxType{'m', 'o', 'o', 'v'}
	TypeTrak = BoxType{'t', 'r', 'a', 'k'}
	TypeMdia = BoxType{'m', 'd', 'i', 'a'}
	TypeMinf = BoxType{'m', 'i', 'n', 'f'}
	TypeStbl = BoxType{'s', 't', 'b', 'l'}
	TypeStsd = BoxType{'s', 't', 's', 'd'}
	TypeStss = BoxType{'s', 't', 's', 's'}
	TypeStsz = BoxType{'s', 't', 's', 'z'}
	TypeStco = BoxType{'s', 't', 'c', 'o'}
	TypeCo64 = BoxType{'c', 'o', '6', '4'}
	TypeHvc1 = BoxType{'h', 'v', 'c', '1'}
	TypeHev1 = BoxType{'h', 'e', 'v', '1'}
	TypeHvcC = BoxType{'h', 'v', 'c', 'C'}
)

var kindByType = map[BoxType]Kind{
	TypeStss: KindStss,
	TypeStsz: KindStsz,
	TypeStco: KindStco,
	TypeCo64: KindCo64,
	TypeHvc1: KindHvc1,
	TypeHev1: KindHev1,
}

// IsHEVCSampleEntry reports whether boxes of this kind are HEVC sample entries.
func (k Kind) IsHEVCSampleEntry() bool {
	return k == KindHvc1 || k == KindHev1
}

// Box is a located node in the container: its type, the absolute offset of
// its header and its total size including the header.
type Box struct {
	Type       BoxType
	Offset     uint64
	Size       uint64
	HeaderSize uint64
}

// End returns the offset at which the next sibling's header begins.
func (b Box) End() uint64 {
	return b.Offset + b.Size
}

// PayloadOffset returns the absolute offset of the first byte after the header.
func (b Box) PayloadOffset() uint64 {
	return b.Offset + b.HeaderSize
}

// PayloadSize returns the number of bytes after the header.
func (b Box) PayloadSize() uint64 {
	return b.Size - b.HeaderSize
}
