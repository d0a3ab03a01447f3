package tiffcomposite

import "bytes"

// tiffMagic is the TIFF version number every classic (32-bit offset)
// file declares right after its two-byte byte-order mark.
const tiffMagic = 42

// Writer drives the top-level serialization of a composite tree into a
// complete TIFF byte stream: the 8-byte file header, the root directory's
// full phase A-D write, and finally the shared image area (phase E).
// Adapted from the teacher's Writer{bigtiff, enc}/writeHeader/writeIFD
// shape (writer.go): the per-field loop those two methods drove is
// replaced here by a single recursive Directory.Write/WriteImage call,
// since the composite tree already knows how to lay out and serialize an
// arbitrary set of tags rather than one fixed GeoTIFF field list.
type Writer struct {
	bo           ByteOrder
	offsetWriter OffsetWriter
}

// NewWriter constructs a Writer using byte order bo for the outer file
// header and every directory's own fields. ow may be nil; it receives any
// offset targets a component registers via IoSink.SetTarget (the CR2 RAW
// IFD pointer, for callers producing that format).
func NewWriter(bo ByteOrder, ow OffsetWriter) *Writer {
	return &Writer{bo: bo, offsetWriter: ow}
}

// writeHeader returns the 8-byte classic TIFF header: the "II"/"MM" byte-
// order mark, the magic number 42, and the offset of the first IFD
// (always 8, immediately following the header itself).
func (w *Writer) writeHeader() []byte {
	buf := make([]byte, 8)
	if w.bo == BigEndian {
		copy(buf[0:], "MM")
	} else {
		copy(buf[0:], "II")
	}
	putUint16(buf[2:], tiffMagic, w.bo)
	putUint32(buf[4:], 8, w.bo)
	return buf
}

// Write serializes root (and its next-IFD chain, and every embedded sub-
// IFD/maker note/binary array reachable from it) into a single byte
// slice: header, directory tree, then the shared image area.
func (w *Writer) Write(root *Directory) ([]byte, error) {
	var out bytes.Buffer
	sink := NewIoSink(&out, w.writeHeader(), w.offsetWriter)

	imageIdx := uint32(8) + root.TotalStructuralSize()
	if _, err := root.Write(sink, w.bo, 8, 0, 0, &imageIdx); err != nil {
		return nil, err
	}
	if _, err := root.WriteImage(sink, w.bo); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
