package tiffcomposite

import "testing"

// TestDataEntryRewritesStripOffsetsAgainstOwnDataArea builds a minimal IFD
// with a StripOffsets/StripByteCounts pair and checks that the offset array
// DataEntry writes is rebased onto its own directory's data area (not the
// shared image area), and that the strip bytes themselves land exactly
// where those offsets point.
func TestDataEntryRewritesStripOffsetsAgainstOwnDataArea(t *testing.T) {
	root := NewDirectory(GroupIFD0)
	// Original (pre-write) offsets [2, 5] into "XXABCDE" are contiguous with
	// sizes [3, 2] (5+2-2 == 5, the total), so setStrips accepts them and
	// slices "ABCDE" as the data area; Write then rebases both by the same
	// delta onto the directory's own data area.
	data := NewDataEntry(273, GroupIFD0, NewValue(ttUnsignedLong, []uint32{2, 5}), 279, GroupIFD0, []byte("XXABCDE"), 0, nil)
	sizes := NewSizeEntry(279, GroupIFD0, NewValue(ttUnsignedLong, []uint32{3, 2}))
	root.AddChild(data)
	root.AddChild(sizes)

	w := NewWriter(LittleEndian, nil)
	buf, err := w.Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := len(buf), 60; got != want {
		t.Fatalf("len(buf) = %d, want %d", got, want)
	}

	dataValueOffset := getUint32(buf[18:], LittleEndian)
	if dataValueOffset != 38 {
		t.Fatalf("StripOffsets directory-entry value field = %d, want 38", dataValueOffset)
	}
	sizeValueOffset := getUint32(buf[30:], LittleEndian)
	if sizeValueOffset != 46 {
		t.Fatalf("StripByteCounts directory-entry value field = %d, want 46", sizeValueOffset)
	}

	strip0 := getUint32(buf[dataValueOffset:], LittleEndian)
	strip1 := getUint32(buf[dataValueOffset+4:], LittleEndian)
	if strip0 != 54 || strip1 != 57 {
		t.Fatalf("strip offsets = [%d, %d], want [54, 57]", strip0, strip1)
	}

	if string(buf[strip0:strip0+3]) != "ABC" {
		t.Errorf("strip 0 bytes = %q, want \"ABC\"", buf[strip0:strip0+3])
	}
	if string(buf[strip1:strip1+2]) != "DE" {
		t.Errorf("strip 1 bytes = %q, want \"DE\"", buf[strip1:strip1+2])
	}
}

// TestImageEntryPlacesStripsInSharedImageArea checks that a (non-maker-note)
// ImageEntry's offsets are rebased onto the tree-wide image area rather
// than its own directory's data area, and that the image bytes themselves
// are written only after the full directory structure, via WriteImage.
func TestImageEntryPlacesStripsInSharedImageArea(t *testing.T) {
	root := NewDirectory(GroupIFD0)
	img := NewImageEntry(273, GroupIFD0, NewValue(ttUnsignedLong, []uint32{0, 0}), 279, GroupIFD0, []byte("IMAGE!"))
	sizes := NewSizeEntry(279, GroupIFD0, NewValue(ttUnsignedLong, []uint32{3, 3}))
	root.AddChild(img)
	root.AddChild(sizes)

	w := NewWriter(LittleEndian, nil)
	buf, err := w.Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := len(buf), 60; got != want {
		t.Fatalf("len(buf) = %d, want %d", got, want)
	}

	imgValueOffset := getUint32(buf[18:], LittleEndian)
	if imgValueOffset != 38 {
		t.Fatalf("StripOffsets directory-entry value field = %d, want 38", imgValueOffset)
	}

	strip0 := getUint32(buf[imgValueOffset:], LittleEndian)
	strip1 := getUint32(buf[imgValueOffset+4:], LittleEndian)
	if strip0 != 54 || strip1 != 57 {
		t.Fatalf("strip offsets = [%d, %d], want [54, 57] (start of the shared image area)", strip0, strip1)
	}
	if string(buf[54:60]) != "IMAGE!" {
		t.Errorf("image-area bytes = %q, want \"IMAGE!\"", buf[54:60])
	}
}

// TestImageEntryMakernoteExceptionUsesOwnDataArea exercises the inherited
// "Fix this hack" exception: inside a maker-note group, an ImageEntry
// cannot reach the true image area (its offsets are relative to the maker
// note's own base), so it behaves like a DataEntry instead.
func TestImageEntryMakernoteExceptionUsesOwnDataArea(t *testing.T) {
	img := NewImageEntry(273, GroupSonyMakerNote, NewValue(ttUnsignedLong, []uint32{0}), 279, GroupSonyMakerNote, []byte("AB"))
	sizes := NewSizeEntry(279, GroupSonyMakerNote, NewValue(ttUnsignedLong, []uint32{2}))

	if got := img.SizeImage(); got != 0 {
		t.Errorf("SizeImage() in a maker-note group = %d, want 0", got)
	}
	if got, want := img.SizeData(), uint32(2); got != want {
		t.Errorf("SizeData() in a maker-note group = %d, want %d", got, want)
	}

	mnDir := NewDirectory(GroupSonyMakerNote)
	mnDir.AddChild(img)
	mnDir.AddChild(sizes)

	var imageIdx uint32
	var out []byte
	sink := NewIoSink(&collectingSink{&out}, nil, nil)
	if _, err := mnDir.Write(sink, LittleEndian, 100, 0, 0, &imageIdx); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if imageIdx != 0 {
		t.Errorf("imageIdx advanced to %d, want 0 (maker-note images never touch the shared image area)", imageIdx)
	}
}
