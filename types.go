package tiffcomposite

// Tag is a 16-bit TIFF/Exif tag identifier.
type Tag uint16

// Group is the namespace that disambiguates identical tag numbers
// appearing in different directories (IFD0, IFD1, Exif, GPS, a maker-note
// group, a sub-group of a binary array, ...). Group is ordered: groups
// below mnSentinel sort their entries by tag on write, groups at or above
// it preserve insertion order, to stay compatible with maker notes that
// break the TIFF sort rule.
type Group int

const (
	GroupIFD0 Group = iota
	GroupIFD1
	GroupIFD2
	GroupIFD3 // Canon CR2 raw IFD
	GroupExif
	GroupGPSInfo
	GroupIOP
	GroupSubImage1
	GroupSubImage2
	GroupSubImage3
	GroupSubImage4

	// mnSentinel divides "ordinary" groups (serialized sorted by tag) from
	// maker-note groups (serialized in insertion order). Groups numerically
	// at or above this value are maker-note groups.
	mnSentinel

	GroupMakerNote Group = mnSentinel + iota - 1
	GroupSonyMakerNote
	GroupNikonMakerNote
	GroupCanonMakerNote
	GroupSonyMisc1
	GroupSonyMisc2
	GroupBinaryArrayElement
)

// isMakerNoteGroup reports whether a group belongs to the maker-note
// region of the group space. The original implementation this is ported
// from gated several behaviors on a bare "group() > mnId" comparison and
// flagged it "Fix this hack"; here the predicate is named rather than
// inlined at every call site. It is a fixed comparison against mnSentinel
// and is not configurable.
func isMakerNoteGroup(g Group) bool {
	return g >= mnSentinel
}

// firstMakerNoteGroup is the lowest group value isMakerNoteGroup treats as
// a maker-note group.
const firstMakerNoteGroup = mnSentinel

// TiffType is a 16-bit TIFF type code.
type TiffType uint16

const (
	ttUnsignedByte TiffType = 1
	ttASCII        TiffType = 2
	ttUnsignedShort TiffType = 3
	ttUnsignedLong  TiffType = 4
	ttUnsignedRational TiffType = 5
	ttSignedByte    TiffType = 6
	ttUndefined     TiffType = 7
	ttSignedShort   TiffType = 8
	ttSignedLong    TiffType = 9
	ttSignedRational TiffType = 10
	ttFloat         TiffType = 11
	ttDouble        TiffType = 12
	ttComment       TiffType = 0xffff // synthetic: "undefined" promoted to a comment string
)

// typeSize returns the byte size of one element of the given TIFF type, or
// 0 if the type is unknown. Callers in this package (Value.Size,
// BinaryArray.addElement) treat 0 as one byte per element; no warning is
// raised for it.
func typeSize(tt TiffType) int {
	switch tt {
	case ttUnsignedByte, ttASCII, ttSignedByte, ttUndefined:
		return 1
	case ttUnsignedShort, ttSignedShort:
		return 2
	case ttUnsignedLong, ttSignedLong, ttFloat:
		return 4
	case ttUnsignedRational, ttSignedRational, ttDouble:
		return 8
	default:
		return 0
	}
}

// ByteOrder selects how multibyte fields are encoded.
type ByteOrder int

const (
	InvalidByteOrder ByteOrder = iota
	LittleEndian
	BigEndian
)

// wordAlign returns sz rounded up to the next even number, matching the
// TIFF requirement that values and data areas start on a word boundary.
func wordAlign(sz uint32) uint32 {
	return sz + sz&1
}

func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}
