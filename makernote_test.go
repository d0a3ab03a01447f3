package tiffcomposite

import "testing"

// stubMakernoteCreator recognizes a single make/model pair and always
// returns the same freshly built IfdMakernote.
type stubMakernoteCreator struct {
	make, model string
	build       func() *IfdMakernote
}

func (c *stubMakernoteCreator) Create(make, model string, group Group) (*IfdMakernote, bool) {
	if make != c.make || model != c.model {
		return nil, false
	}
	return c.build(), true
}

func TestMnEntryAddPathCreatesEmbeddedTreeOnlyOnFirstDescent(t *testing.T) {
	built := 0
	creator := &stubMakernoteCreator{
		make: "ACME", model: "X100",
		build: func() *IfdMakernote {
			built++
			return NewIfdMakernote(GroupSonyMakerNote, nil, LittleEndian, BaseTiffHeader, nil, nil)
		},
	}
	e := NewMnEntry(GroupIFD0, NewValue(ttUndefined, []byte{0, 0, 0, 0}), creator, "ACME", "X100", nil)

	c, err := e.AddPath(TagMakerNote, NewTiffPath(nil), e, nil)
	if err != nil {
		t.Fatalf("AddPath: %v", err)
	}
	if _, ok := c.(*IfdMakernote); !ok {
		t.Fatalf("AddPath returned %T, want *IfdMakernote", c)
	}
	if built != 1 {
		t.Fatalf("creator invoked %d times, want 1", built)
	}

	if _, err := e.AddPath(TagMakerNote, NewTiffPath(nil), e, nil); err != nil {
		t.Fatalf("AddPath (second): %v", err)
	}
	if built != 1 {
		t.Errorf("creator invoked again on a second AddPath, want the embedded tree to be cached")
	}
}

func TestMnEntryAddPathUnrecognizedMakeStaysOpaque(t *testing.T) {
	creator := &stubMakernoteCreator{make: "ACME", model: "X100", build: func() *IfdMakernote { return nil }}
	e := NewMnEntry(GroupIFD0, NewValue(ttUndefined, []byte{1, 2, 3, 4}), creator, "OTHER", "Y200", nil)

	c, err := e.AddPath(TagMakerNote, NewTiffPath(nil), e, nil)
	if err != nil {
		t.Fatalf("AddPath: %v", err)
	}
	if c != nil {
		t.Errorf("AddPath for an unrecognized maker = %v, want nil", c)
	}
	if e.Size() != 4 {
		t.Errorf("Size() = %d, want 4 (falls back to the raw value)", e.Size())
	}
}

func TestMnEntryAcceptDropsTreeWhenPhaseKnownMakernoteIsLowered(t *testing.T) {
	mn := NewIfdMakernote(GroupSonyMakerNote, nil, LittleEndian, BaseTiffHeader, nil, nil)
	e := &MnEntry{base: base{tag: TagMakerNote, group: GroupIFD0}, value: NewValue(ttUndefined, nil), mn: mn, warner: warnerOrNop(nil)}

	v := &rejectingMakernoteVisitor{}
	e.Accept(v)
	if e.mn != nil {
		t.Error("mn survived Accept after the visitor lowered PhaseKnownMakernote")
	}
}

// rejectingMakernoteVisitor is a minimal Visitor that visits everything but
// refuses to descend into a recognized maker note.
type rejectingMakernoteVisitor struct{ BaseVisitor }

func (v *rejectingMakernoteVisitor) Go(phase VisitPhase) bool {
	return phase != PhaseKnownMakernote
}

func TestIfdMakernoteBaseTiffHeaderPointersAreFileAbsolute(t *testing.T) {
	// Grounded on TiffIfdMakernote::doWrite in the original implementation:
	// the embedded directory is written at (offset - baseOffset() + len),
	// so for the common BaseTiffHeader case (baseOffset() == 0) its
	// internal pointers must equal the value's true absolute stream
	// position, not merely the position it would occupy if it started the
	// whole file over at byte zero.
	mn := NewIfdMakernote(GroupSonyMakerNote, nil, LittleEndian, BaseTiffHeader, nil, nil)
	mn.dir.AddChild(NewEntry(2, GroupSonyMakerNote, NewValue(ttASCII, "hello")))

	e := &MnEntry{base: base{tag: TagMakerNote, group: GroupIFD0}, value: NewValue(ttUndefined, nil), mn: mn, warner: warnerOrNop(nil)}
	root := NewDirectory(GroupIFD0)
	root.AddChild(e)

	w := NewWriter(LittleEndian, nil)
	buf, err := w.Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// root has one out-of-line component (the maker note, 20 bytes): its
	// own directory record is 18 bytes, so the value overflow area (where
	// the maker note's own directory record begins) starts at file offset
	// 8 (header) + 18 (root's own record) = 26.
	mnDirStart := uint32(26)
	gotMnDirStart := getUint32(buf[18:], LittleEndian)
	if gotMnDirStart != mnDirStart {
		t.Fatalf("maker note directory start = %d, want %d", gotMnDirStart, mnDirStart)
	}

	// Inside the maker note's own one-entry directory record (14 bytes — the
	// embedded directory has no next-IFD pointer of its own, starting at
	// mnDirStart), the ASCII value is out of line at mnDirStart + 14. With
	// the bug, this would instead read 14 (the dirRecordSize alone,
	// uninformed by the note's true file position).
	wantValueOffset := mnDirStart + 14
	gotValueOffset := getUint32(buf[mnDirStart+2+8:], LittleEndian)
	if gotValueOffset != wantValueOffset {
		t.Fatalf("maker note internal pointer = %d, want %d (true absolute file position)", gotValueOffset, wantValueOffset)
	}
	if string(buf[wantValueOffset:wantValueOffset+5]) != "hello" {
		t.Errorf("value at encoded offset = %q, want \"hello\"", buf[wantValueOffset:wantValueOffset+5])
	}
}

func TestIfdMakernoteBaseMakernoteValueRebasesToValueStart(t *testing.T) {
	mn := NewIfdMakernote(GroupSonyMakerNote, nil, LittleEndian, BaseMakernoteValue, nil, nil)
	mn.dir.AddChild(NewEntry(2, GroupSonyMakerNote, NewValue(ttASCII, "hello")))

	e := &MnEntry{base: base{tag: TagMakerNote, group: GroupIFD0}, value: NewValue(ttUndefined, nil), mn: mn, warner: warnerOrNop(nil)}
	root := NewDirectory(GroupIFD0)
	root.AddChild(e)

	w := NewWriter(LittleEndian, nil)
	buf, err := w.Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	mnDirStart := uint32(26)
	// With offsets relative to the maker note value's own start, the
	// encoded pointer is just the directory-record size (14: the embedded
	// directory has no next-IFD pointer), regardless of where the value
	// actually landed in the file.
	gotValueOffset := getUint32(buf[mnDirStart+2+8:], LittleEndian)
	if gotValueOffset != 14 {
		t.Fatalf("maker note internal pointer = %d, want 14 (value-relative)", gotValueOffset)
	}
	// The true absolute location is still mnDirStart+14, even though the
	// encoded pointer (value-relative) is smaller.
	trueOffset := mnDirStart + 14
	if string(buf[trueOffset:trueOffset+5]) != "hello" {
		t.Errorf("value at true file position = %q, want \"hello\"", buf[trueOffset:trueOffset+5])
	}
}
