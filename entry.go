package tiffcomposite

// Entry is the ordinary leaf node: one tag holding one scalar or array
// Value, written inline in the 12-byte directory record when it fits in
// four bytes, or as an out-of-line value-area entry otherwise (C2).
// Grounded on tiffcomposite_int.cpp's TiffEntry / TiffEntryBase and on the
// teacher's per-type field encoding in writer.go's writeField/writeArray.
type Entry struct {
	base
	value *Value
}

// NewEntry constructs a leaf holding v under tag/group.
func NewEntry(tag Tag, group Group, v *Value) *Entry {
	return &Entry{base: base{tag: tag, group: group}, value: v}
}

func (e *Entry) Value() *Value { return e.value }

func (e *Entry) Count() int       { return e.value.Count() }
func (e *Entry) Size() uint32     { return uint32(e.value.Size()) }
func (e *Entry) TypeID() TiffType { return e.value.TypeID() }

func (e *Entry) EncodeValue(buf []byte, bo ByteOrder) int {
	return e.value.Copy(buf, bo)
}

func (e *Entry) Clone() (Component, error) {
	return &Entry{base: e.base, value: e.value.Clone()}, nil
}

func (e *Entry) Accept(v Visitor) {
	accept(v, func(v Visitor) { v.VisitEntry(e) })
}

// Write serializes the value bytes into the directory's out-of-line value
// area; the Directory only calls this when the value did not fit inline.
func (e *Entry) Write(s *IoSink, bo ByteOrder, _ int64, _, _ uint32, _ *uint32) (uint32, error) {
	sz := wordAlign(e.Size())
	buf := make([]byte, sz)
	e.value.Copy(buf, bo)
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}

// SizeEntry is a leaf functionally identical to Entry; it is distinguished
// only so that a DataEntry can locate its companion byte-count array by
// type together with its szTag/szGroup (e.g. StripByteCounts,
// TileByteCounts), matching TiffSizeEntry in the original (C8).
type SizeEntry struct {
	Entry
}

// NewSizeEntry constructs a size-array leaf holding v under tag/group.
func NewSizeEntry(tag Tag, group Group, v *Value) *SizeEntry {
	return &SizeEntry{Entry: Entry{base: base{tag: tag, group: group}, value: v}}
}

func (e *SizeEntry) Clone() (Component, error) {
	return &SizeEntry{Entry: Entry{base: e.base, value: e.value.Clone()}}, nil
}

func (e *SizeEntry) Accept(v Visitor) {
	accept(v, func(v Visitor) { v.VisitSizeEntry(e) })
}

// writeOffset encodes offset into buf according to typeID, which must be
// ttUnsignedShort or ttUnsignedLong. Used by DataEntry/ImageEntry to
// rewrite each strip/tile pointer once its final position is known.
func writeOffset(buf []byte, offset uint32, typeID TiffType, bo ByteOrder) (uint32, error) {
	switch typeID {
	case ttUnsignedShort:
		if offset > 0xffff {
			return 0, ErrOffsetOutOfRange
		}
		return putUint16(buf, uint16(offset), bo), nil
	case ttUnsignedLong:
		return putUint32(buf, offset, bo), nil
	default:
		return 0, ErrUnsupportedDataAreaOffsetType
	}
}

// stripLens validates and records the per-strip byte lengths an ImageEntry
// needs to rebase its offset array: the size array (read from the
// companion SizeEntry) must have exactly as many elements as the offset
// array. ImageEntry's own strips are always pre-validated by the caller
// that assembled its image bytes, so it only needs the count check;
// DataEntry's own setStrips (below) does the full contiguity/bounds
// validation mirrored from TiffDataEntry::setStrips.
func stripLens(offsetCount int, sizes *Value) ([]uint32, error) {
	if sizes == nil || sizes.Count() != offsetCount {
		return nil, ErrImageWriteFailed
	}
	lens := make([]uint32, offsetCount)
	for i := 0; i < offsetCount; i++ {
		lens[i] = sizes.ToUint32(i)
	}
	return lens, nil
}

// stripOffsets computes the rebased absolute offset of each strip given
// its lengths and the area's base offset, used by ImageEntry once
// stripLens has produced lens.
func stripOffsets(base uint32, lens []uint32) []uint32 {
	offs := make([]uint32, len(lens))
	cur := base
	for i, l := range lens {
		offs[i] = cur
		cur += l
	}
	return offs
}

// DataEntry is an offset-array leaf whose elements point into its
// directory's data area (phase C): e.g. StripOffsets/TileOffsets. Its
// offset array is rewritten by a delta against the original, on-disk
// offsets it was constructed with, independent of whether its data area
// validates; the data area itself (the actual strip/tile bytes) is only
// populated by setStrips, and is carried by its Value's own data-area
// slot rather than a field here, so Size()/SizeData reflect validation's
// outcome uniformly. Grounded on tiffcomposite_int.cpp's TiffDataEntry,
// in particular doWrite (always rebases) vs. setStrips/doWriteData
// (gated on contiguity/bounds).
type DataEntry struct {
	base
	value      *Value
	szTag      Tag
	szGroup    Group
	baseBuf    []byte // source buffer the strip/tile bytes are sliced from
	baseOffset uint32 // baseBuf's own position relative to the values it slices (e.g. a maker note's base)
	warner     Warner
	sizeEntry  *SizeEntry // resolved once by the enclosing Directory, see ResolveSize
}

// ResolveSize caches the companion SizeEntry (found by szTag/szGroup among
// sibling children) each time the enclosing Directory computes its
// layout, mirroring the original's doAddPath-time pSize_ lookup, and
// immediately attempts setStrips so that any caller computing this entry's
// SizeData before Write (e.g. a tree-wide structural-size precomputation)
// sees the validated result rather than a stale zero.
func (e *DataEntry) ResolveSize(sizeEntry *SizeEntry) {
	e.sizeEntry = sizeEntry
	e.setStrips()
}

// NewDataEntry constructs a strip/tile-offset leaf. szTag/szGroup name the
// companion SizeEntry (e.g. StripByteCounts) whose values give each
// strip's byte length. baseBuf/baseOffset are the source buffer setStrips
// slices the validated strip/tile bytes from, and the position within it
// baseOffset-relative offsets are measured from (0 for the ordinary case
// of offsets relative to the buffer's own start). warner receives the
// diagnostic setStrips raises if validation fails; nil uses a no-op.
func NewDataEntry(tag Tag, group Group, v *Value, szTag Tag, szGroup Group, baseBuf []byte, baseOffset uint32, warner Warner) *DataEntry {
	return &DataEntry{
		base:       base{tag: tag, group: group},
		value:      v,
		szTag:      szTag,
		szGroup:    szGroup,
		baseBuf:    baseBuf,
		baseOffset: baseOffset,
		warner:     warnerOrNop(warner),
	}
}

func (e *DataEntry) SzTag() Tag     { return e.szTag }
func (e *DataEntry) SzGroup() Group { return e.szGroup }

func (e *DataEntry) Count() int       { return e.value.Count() }
func (e *DataEntry) Size() uint32     { return uint32(e.value.Size()) }
func (e *DataEntry) TypeID() TiffType { return e.value.TypeID() }

func (e *DataEntry) EncodeValue(buf []byte, bo ByteOrder) int {
	return e.value.Copy(buf, bo)
}

func (e *DataEntry) SizeData() uint32 {
	return wordAlign(uint32(e.value.SizeDataArea()))
}

func (e *DataEntry) Clone() (Component, error) {
	return &DataEntry{
		base:       e.base,
		value:      e.value.Clone(),
		szTag:      e.szTag,
		szGroup:    e.szGroup,
		baseBuf:    e.baseBuf,
		baseOffset: e.baseOffset,
		warner:     e.warner,
	}, nil
}

func (e *DataEntry) Accept(v Visitor) {
	accept(v, func(v Visitor) { v.VisitDataEntry(e) })
}

// setStrips validates the companion SizeEntry against this entry's own
// offset array and, on success, slices the strip/tile bytes out of
// baseBuf into the value's data area. Mirrors TiffDataEntry::setStrips:
// the offsets must be contiguous (offsets[last]+sizes[last]-offsets[0]
// equals the total strip size) and the resulting span must fit inside
// baseBuf at baseOffset. On any failure it warns and leaves the data area
// unset rather than failing the write outright — the directory record and
// offset array are still produced, just without their backing bytes.
func (e *DataEntry) setStrips() {
	if e.sizeEntry == nil {
		return
	}
	sizes := e.sizeEntry.Value()
	n := e.value.Count()
	if n == 0 || sizes == nil || sizes.Count() != n {
		e.warner.Warnf("tiffcomposite: tag %d strip offset/size count mismatch", e.tag)
		return
	}

	var total uint32
	for i := 0; i < n; i++ {
		total += sizes.ToUint32(i)
	}
	firstOffset := e.value.ToUint32(0)
	lastOffset := e.value.ToUint32(n - 1)
	lastSize := sizes.ToUint32(n - 1)
	if lastOffset+lastSize-firstOffset != total {
		e.warner.Warnf("tiffcomposite: tag %d strip data is not contiguous", e.tag)
		return
	}

	baseSize := uint32(len(e.baseBuf))
	if e.baseOffset+firstOffset+total > baseSize {
		e.warner.Warnf("tiffcomposite: tag %d strip data exceeds its buffer", e.tag)
		return
	}

	start := e.baseOffset + firstOffset
	e.value.SetDataArea(e.baseBuf[start : start+total])
}

// Write rewrites the offset array by shifting every element by the same
// delta against the entry's own first (original, on-disk) offset, landing
// the first element at dataIdx (relative to offset, the enclosing
// directory's absolute stream position). This runs regardless of whether
// setStrips validated the data area — TiffDataEntry::doWrite always
// rebases the offsets; only the bytes the offsets point at depend on
// validation (see WriteData).
func (e *DataEntry) Write(s *IoSink, bo ByteOrder, offset int64, _, dataIdx uint32, _ *uint32) (uint32, error) {
	n := e.value.Count()
	sz := wordAlign(e.Size())
	buf := make([]byte, sz)
	base := uint32(offset) + dataIdx
	if n > 0 {
		first := e.value.ToUint32(0)
		pos := 0
		for i := 0; i < n; i++ {
			o := base + (e.value.ToUint32(i) - first)
			written, err := writeOffset(buf[pos:], o, e.value.TypeID(), bo)
			if err != nil {
				return 0, err
			}
			pos += int(written)
		}
	}
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}

// WriteData serializes the validated strip/tile bytes into the data area;
// empty (and thus a no-op alongside Directory's SizeData()==0 skip) if
// setStrips rejected this entry's offsets.
func (e *DataEntry) WriteData(s *IoSink, _ ByteOrder, _ int64, _ uint32, _ *uint32) (uint32, error) {
	area := e.value.DataArea()
	sz := wordAlign(uint32(len(area)))
	buf := make([]byte, sz)
	copy(buf, area)
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}

// ImageEntry is an offset-array leaf like DataEntry, except its bytes
// belong to the shared, root-level image area (phase E) rather than its
// own directory's data area — e.g. the root IFD's StripOffsets pointing
// at the final compressed image strips. The one exception, inherited
// as-is from the original and flagged there as a hack still worth fixing
// properly: a maker note's ImageEntry cannot address the true image area
// (its offsets are relative to the maker note's own base), so when its
// group is a maker-note group it behaves like a DataEntry instead and
// contributes to its own directory's data area (C5, C8).
type ImageEntry struct {
	base
	value     *Value
	szTag     Tag
	szGroup   Group
	image     []byte
	lens      []uint32
	sizeEntry *SizeEntry // resolved once by the enclosing Directory, see ResolveSize
}

// ResolveSize caches the companion SizeEntry, see DataEntry.ResolveSize.
func (e *ImageEntry) ResolveSize(sizeEntry *SizeEntry) { e.sizeEntry = sizeEntry }

// NewImageEntry constructs a root image-strip offset leaf.
func NewImageEntry(tag Tag, group Group, v *Value, szTag Tag, szGroup Group, image []byte) *ImageEntry {
	return &ImageEntry{base: base{tag: tag, group: group}, value: v, szTag: szTag, szGroup: szGroup, image: image}
}

func (e *ImageEntry) SzTag() Tag     { return e.szTag }
func (e *ImageEntry) SzGroup() Group { return e.szGroup }

func (e *ImageEntry) Count() int       { return e.value.Count() }
func (e *ImageEntry) Size() uint32     { return uint32(e.value.Size()) }
func (e *ImageEntry) TypeID() TiffType { return e.value.TypeID() }

func (e *ImageEntry) EncodeValue(buf []byte, bo ByteOrder) int {
	return e.value.Copy(buf, bo)
}

// SizeData reports non-zero only in the maker-note exception, where image
// bytes must live in the enclosing directory's ordinary data area.
func (e *ImageEntry) SizeData() uint32 {
	if isMakerNoteGroup(e.group) {
		return wordAlign(uint32(len(e.image)))
	}
	return 0
}

// SizeImage reports non-zero everywhere except the maker-note exception.
func (e *ImageEntry) SizeImage() uint32 {
	if isMakerNoteGroup(e.group) {
		return 0
	}
	return wordAlign(uint32(len(e.image)))
}

func (e *ImageEntry) Clone() (Component, error) {
	img := make([]byte, len(e.image))
	copy(img, e.image)
	return &ImageEntry{base: e.base, value: e.value.Clone(), szTag: e.szTag, szGroup: e.szGroup, image: img}, nil
}

func (e *ImageEntry) Accept(v Visitor) {
	accept(v, func(v Visitor) { v.VisitImageEntry(e) })
}

// write rewrites the offset array starting at base: offset+dataIdx in the
// maker-note exception (the enclosing directory's data area) or *imageIdx
// otherwise (the shared image area's cursor, which the caller advances by
// SizeImage() after this call).
func (e *ImageEntry) write(sizes *Value, s *IoSink, bo ByteOrder, base uint32) (uint32, error) {
	n := e.value.Count()
	lens, err := stripLens(n, sizes)
	if err != nil {
		return 0, err
	}
	e.lens = lens
	offs := stripOffsets(base, lens)
	sz := wordAlign(e.Size())
	buf := make([]byte, sz)
	pos := 0
	for _, o := range offs {
		written, werr := writeOffset(buf[pos:], o, e.value.TypeID(), bo)
		if werr != nil {
			return 0, werr
		}
		pos += int(written)
	}
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}

// Write rewrites the offset array. In the maker-note exception the base
// is this directory's own data area (offset+dataIdx, absolute); otherwise
// it is *imageIdx, the running absolute cursor into the shared image
// area, which is advanced by this entry's own SizeImage() afterward so a
// later ImageEntry in the same tree does not overlap it.
func (e *ImageEntry) Write(s *IoSink, bo ByteOrder, offset int64, _, dataIdx uint32, imageIdx *uint32) (uint32, error) {
	var sizes *Value
	if e.sizeEntry != nil {
		sizes = e.sizeEntry.Value()
	}
	if isMakerNoteGroup(e.group) {
		return e.write(sizes, s, bo, uint32(offset)+dataIdx)
	}
	base := *imageIdx
	n, err := e.write(sizes, s, bo, base)
	if err != nil {
		return n, err
	}
	*imageIdx += e.SizeImage()
	return n, nil
}

// WriteImage serializes the strip bytes into the shared image area (no-op
// in the maker-note exception, where WriteData below carries them).
func (e *ImageEntry) WriteImage(s *IoSink, _ ByteOrder) (uint32, error) {
	if isMakerNoteGroup(e.group) {
		return 0, nil
	}
	sz := wordAlign(uint32(len(e.image)))
	buf := make([]byte, sz)
	copy(buf, e.image)
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}

// WriteData carries the strip bytes in the maker-note exception only.
func (e *ImageEntry) WriteData(s *IoSink, _ ByteOrder, _ int64, _ uint32, _ *uint32) (uint32, error) {
	if !isMakerNoteGroup(e.group) {
		return 0, nil
	}
	sz := wordAlign(uint32(len(e.image)))
	buf := make([]byte, sz)
	copy(buf, e.image)
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}
