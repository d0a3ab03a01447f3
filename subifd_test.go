package tiffcomposite

import "testing"

// TestSubIfdEntryGroupSortedPlacementVsInsertionOrderOffsets builds a
// SubIfdEntry fanning a single tag out to two nested directories attached in
// the opposite order from their group numbering, and checks that:
//   - the offset array SubIfdEntry.Write emits follows attachment
//     (tag-occurrence) order, while
//   - the nested directories' actual bytes are placed in group-sorted
//     order (matching TiffSubIfd's write-order rule, needed for maker-note
//     compatibility).
func TestSubIfdEntryGroupSortedPlacementVsInsertionOrderOffsets(t *testing.T) {
	root := NewDirectory(GroupIFD0)
	sub := NewSubIfdEntry(0x014a, GroupIFD0, ttUnsignedLong)
	root.AddChild(sub)

	dirHigh := NewDirectory(GroupSubImage2) // attached first, higher group number
	dirHigh.AddChild(NewEntry(256, GroupSubImage2, NewValue(ttUnsignedLong, []uint32{111})))
	sub.AddChild(dirHigh)

	dirLow := NewDirectory(GroupSubImage1) // attached second, lower group number
	dirLow.AddChild(NewEntry(256, GroupSubImage1, NewValue(ttUnsignedLong, []uint32{222})))
	sub.AddChild(dirLow)

	w := NewWriter(LittleEndian, nil)
	buf, err := w.Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if got, want := len(buf), 62; got != want {
		t.Fatalf("len(buf) = %d, want %d", got, want)
	}

	// The root directory's single entry (the sub-IFD pointer) is out of
	// line (2 pointers = 8 bytes > 4), so its value field holds an offset
	// into the value overflow area immediately after the directory record.
	offArrayOffset := getUint32(buf[18:], LittleEndian)
	if offArrayOffset != 26 {
		t.Fatalf("sub-IFD offset-array location = %d, want 26", offArrayOffset)
	}

	// Offset array order follows attachment order: dirHigh first, dirLow
	// second, even though they are placed in the opposite order on disk.
	firstPtr := getUint32(buf[offArrayOffset:], LittleEndian)
	secondPtr := getUint32(buf[offArrayOffset+4:], LittleEndian)
	if firstPtr != 48 {
		t.Errorf("first offset-array pointer (dirHigh) = %d, want 48", firstPtr)
	}
	if secondPtr != 34 {
		t.Errorf("second offset-array pointer (dirLow) = %d, want 34", secondPtr)
	}

	// dirLow (lower group number) is placed first on disk despite being
	// attached second.
	lowCount := getUint16(buf[secondPtr:], LittleEndian)
	if lowCount != 1 {
		t.Fatalf("dirLow entry count = %d, want 1", lowCount)
	}
	lowValue := getUint32(buf[secondPtr+2+8:], LittleEndian)
	if lowValue != 222 {
		t.Errorf("dirLow entry value = %d, want 222", lowValue)
	}

	highCount := getUint16(buf[firstPtr:], LittleEndian)
	if highCount != 1 {
		t.Fatalf("dirHigh entry count = %d, want 1", highCount)
	}
	highValue := getUint32(buf[firstPtr+2+8:], LittleEndian)
	if highValue != 111 {
		t.Errorf("dirHigh entry value = %d, want 111", highValue)
	}
}

func TestSubIfdEntryAddPathCreatesDirectoryPerGroup(t *testing.T) {
	sub := NewSubIfdEntry(0x8769, GroupIFD0, ttUnsignedLong)
	path := NewTiffPath([]TiffPathItem{
		{TagValue: 0x829a, GroupValue: GroupExif},
	})
	terminal := NewEntry(0x829a, GroupExif, NewValue(ttUnsignedRational, nil))

	// The top path item addresses an entry inside the child directory; its
	// group selects (or creates) that directory, and the terminal is
	// inserted into it and returned.
	c, err := sub.AddPath(0x829a, path, sub, terminal)
	if err != nil {
		t.Fatalf("AddPath: %v", err)
	}
	if c != terminal {
		t.Fatalf("AddPath returned %v, want the terminal inserted into the Exif directory", c)
	}
	if len(sub.ifds) != 1 {
		t.Fatalf("len(sub.ifds) = %d, want 1", len(sub.ifds))
	}
	dir := sub.ifds[0]
	if dir.Group() != GroupExif {
		t.Errorf("created directory group = %v, want GroupExif", dir.Group())
	}

	// A second AddPath addressing the same group must reuse the directory
	// rather than create a second one.
	path2 := NewTiffPath([]TiffPathItem{
		{TagValue: 0x829a, GroupValue: GroupExif},
	})
	c2, err := sub.AddPath(0x829a, path2, sub, terminal)
	if err != nil {
		t.Fatalf("AddPath (second): %v", err)
	}
	if c2 != terminal || sub.ifds[0] != dir {
		t.Error("second AddPath to the same group created a new directory instead of reusing it")
	}
	if len(sub.ifds) != 1 {
		t.Fatalf("len(sub.ifds) after second AddPath = %d, want 1", len(sub.ifds))
	}
}
