package tiffcomposite

import (
	"bytes"
	"sort"
)

// Directory is a single IFD: an ordered set of component children plus an
// optional link to the next IFD in the chain (e.g. IFD0 -> IFD1). It is
// the tree's central serializer (C6): doWrite lays out and streams the
// directory record, any out-of-line values, the data area its children
// need, and finally chains into the next IFD — computing every offset in
// a planning pass before a single byte is streamed, so that the planned
// layout and the actual bytes written always agree (spec.md §8 property
// 6). Grounded on tiffcomposite_int.cpp's TiffDirectory.
type Directory struct {
	base
	components []Component
	next       *Directory
	hasNext    bool
}

// NewDirectory constructs an empty, chainable IFD in the given group: the
// kind of top-level directory (IFD0, IFD1, ...) that always reserves its
// own 4-byte next-IFD pointer, matching the original's hasNext_ == true
// construction for the main image chain.
func NewDirectory(group Group) *Directory {
	return &Directory{base: base{group: group}, hasNext: true}
}

// newEmbeddedDirectory constructs a directory that can never itself chain
// to a further IFD: a sub-IFD pointer target or a maker-note's embedded
// tree, both constructed with hasNext_ == false in the original
// (tiffcomposite_int.cpp's TiffSubIfd/TiffIfdMakernote never set it).
func newEmbeddedDirectory(group Group) *Directory {
	return &Directory{base: base{group: group}}
}

func (d *Directory) Count() int { return len(d.components) }

func (d *Directory) Components() []Component { return d.components }
func (d *Directory) Next() *Directory        { return d.next }

// findSizeEntry locates a direct child SizeEntry by tag/group, used to
// resolve a sibling DataEntry/ImageEntry's companion byte-count array
// (e.g. StripByteCounts for StripOffsets) regardless of which order the
// two tags were added in.
func (d *Directory) findSizeEntry(tag Tag, group Group) *SizeEntry {
	for _, c := range d.components {
		if se, ok := c.(*SizeEntry); ok && se.Tag() == tag && se.Group() == group {
			return se
		}
	}
	return nil
}

// AddChild appends child as one more component of this directory.
func (d *Directory) AddChild(child Component) Component {
	d.components = append(d.components, child)
	return child
}

// AddNext attaches next as the directory chained after this one.
func (d *Directory) AddNext(next Component) Component {
	nd, ok := next.(*Directory)
	if !ok {
		return nil
	}
	d.next = nd
	return nd
}

// AddPath descends one path item at a time: the current top item selects
// an existing or newly attached direct child by (tag, group), and the
// remainder of the path (if any) is handed to that child's own AddPath.
// A path item flagged IsNext addresses the next-IFD link instead of an
// ordinary child. Intermediate composite nodes (sub-IFD pointers, maker
// notes) are expected to already be present — added via AddChild by
// whatever built this directory — since only they know how to interpret
// a path that continues past them.
func (d *Directory) AddPath(tag Tag, path *TiffPath, root, terminal Component) (Component, error) {
	if path.Empty() {
		return d, nil
	}
	item := path.Top()
	path.Pop()

	if item.IsNext() {
		if d.next == nil {
			d.next = NewDirectory(item.GroupValue)
		}
		if path.Empty() {
			return d.next, nil
		}
		return d.next.AddPath(tag, path, root, terminal)
	}

	for _, c := range d.components {
		if c.Tag() == item.TagValue && c.Group() == item.GroupValue {
			if path.Empty() {
				return c, nil
			}
			return c.AddPath(tag, path, root, terminal)
		}
	}

	if path.Empty() {
		d.components = append(d.components, terminal)
		return terminal, nil
	}

	return nil, ErrImageWriteFailed
}

func (d *Directory) Clone() (Component, error) {
	clone := &Directory{base: d.base, hasNext: d.hasNext}
	for _, c := range d.components {
		cc, err := c.Clone()
		if err != nil {
			return nil, err
		}
		clone.components = append(clone.components, cc)
	}
	if d.next != nil {
		nc, err := d.next.Clone()
		if err != nil {
			return nil, err
		}
		clone.next = nc.(*Directory)
	}
	return clone, nil
}

// Accept visits this directory, then each child in turn (stopping early
// if the visitor lowers PhaseTraverse), then the next-IFD chain if any.
func (d *Directory) Accept(v Visitor) {
	accept(v, func(v Visitor) {
		v.VisitDirectory(d)
		for _, c := range d.components {
			if !v.Go(PhaseTraverse) {
				break
			}
			c.Accept(v)
		}
		if d.next != nil {
			v.VisitDirectoryNext(d)
			d.next.Accept(v)
		}
		v.VisitDirectoryEnd(d)
	})
}

// slot describes one child's placement within the directory record: an
// inline 4-byte value, or an out-of-line value at voffset (relative to
// this directory's own absolute stream position).
type slot struct {
	inline  bool
	voffset uint32
}

// plan computes the full layout of this directory in one pass: the fixed
// directory-record size, every child's slot (inline vs. out-of-line value
// position), the data area's starting offset and each child's position
// within it, and the total data area size. Both Size()/SizeData() and
// Write() call plan so the layout they agree on is always the same one.
func (d *Directory) plan() (dirRecordSize uint32, slots []slot, dataAreaStart uint32, dataPositions []uint32, totalDataSize uint32) {
	d.resolveSizeEntries()

	nextPtrSize := uint32(0)
	if d.hasNext {
		nextPtrSize = 4
	}
	dirRecordSize = uint32(2+12*len(d.components)) + nextPtrSize

	slots = make([]slot, len(d.components))
	voff := dirRecordSize
	for i, c := range d.components {
		sz := c.Size()
		if sz <= 4 {
			slots[i] = slot{inline: true}
			continue
		}
		slots[i] = slot{inline: false, voffset: voff}
		voff += wordAlign(sz)
	}
	dataAreaStart = voff

	dataPositions = make([]uint32, len(d.components))
	dpos := dataAreaStart
	for i, c := range d.components {
		dataPositions[i] = dpos
		dpos += wordAlign(c.SizeData())
	}
	totalDataSize = dpos - dataAreaStart
	return
}

// Size is the directory record plus any out-of-line value overflow
// written immediately after it (i.e. everything up to the data area).
func (d *Directory) Size() uint32 {
	if len(d.components) == 0 && d.next == nil {
		return 0
	}
	_, _, dataAreaStart, _, _ := d.plan()
	return dataAreaStart
}

func (d *Directory) SizeData() uint32 {
	_, _, _, _, totalDataSize := d.plan()
	return totalDataSize
}

// TotalStructuralSize is the number of bytes this directory and its
// entire next-IFD chain occupy before the shared image area begins:
// every directory record, value overflow, and data area (including
// nested sub-IFDs and maker notes) from this directory's own start up to
// but not including any image bytes. A caller serializing a full tree
// uses this (seeded with the file header size) to compute the image
// area's absolute starting offset before the first byte is written,
// preserving the "planned == actual" layout invariant.
func (d *Directory) TotalStructuralSize() uint32 {
	total := d.Size() + d.SizeData()
	if d.next != nil {
		total += d.next.TotalStructuralSize()
	}
	return total
}

// SizeImage sums every child's image-area contribution, plus the chained
// next IFD's, so a single call on the root directory gives the whole
// tree's image-area footprint.
func (d *Directory) SizeImage() uint32 {
	var total uint32
	for _, c := range d.components {
		total += c.SizeImage()
	}
	if d.next != nil {
		total += d.next.SizeImage()
	}
	return total
}

// resolveSizeEntries caches each DataEntry/ImageEntry's companion
// SizeEntry so their Size()/SizeData()/Write can use it without a search
// of their own; plan() runs it before every layout since Size() depends on it for
// the offset-array element count/type (both are fixed regardless, but the
// strip lengths themselves are only available this way).
func (d *Directory) resolveSizeEntries() {
	for _, c := range d.components {
		switch e := c.(type) {
		case *DataEntry:
			e.ResolveSize(d.findSizeEntry(e.szTag, e.szGroup))
		case *ImageEntry:
			e.ResolveSize(d.findSizeEntry(e.szTag, e.szGroup))
		}
	}
}

// Write streams the complete directory: the entry count, one 12-byte
// record per child (value inline or an out-of-line offset), the next-IFD
// pointer, the out-of-line value overflow, the data area, and finally the
// chained next IFD, in that order — matching phases A through D of
// tiffcomposite_int.cpp's TiffDirectory::doWrite. offset is this
// directory's own absolute stream position; valueIdx is unused (a
// directory is never itself inlined into a parent's 4-byte slot).
func (d *Directory) Write(s *IoSink, bo ByteOrder, offset int64, _ uint32, _ uint32, imageIdx *uint32) (uint32, error) {
	if len(d.components) > 0xffff {
		return 0, ErrTooManyTiffDirectoryEntries
	}

	if len(d.components) == 0 && (d.next == nil || d.next.Size() == 0) {
		return 0, nil
	}

	if d.group == GroupIFD3 {
		if err := s.SetTarget(CR2RawIfdOffset, offset); err != nil {
			return 0, err
		}
	}

	if !isMakerNoteGroup(d.group) {
		sort.SliceStable(d.components, func(i, j int) bool {
			return cmpTagLt(d.components[i], d.components[j])
		})
	}

	_, slots, dataAreaStart, dataPositions, totalDataSize := d.plan()

	countBuf := make([]byte, 2)
	putUint16(countBuf, uint16(len(d.components)), bo)
	if _, err := s.Write(countBuf); err != nil {
		return 0, err
	}

	for i, c := range d.components {
		entryBuf := make([]byte, 12)
		putUint16(entryBuf, uint16(c.Tag()), bo)
		putUint16(entryBuf[2:], uint16(c.TypeID()), bo)
		putUint32(entryBuf[4:], uint32(c.Count()), bo)
		if slots[i].inline {
			switch c.(type) {
			case *SubIfdEntry, *DataEntry, *ImageEntry:
				// Offset-bearing values are only known once Write rebases
				// them, so an inline one is rendered through Write as well.
				var inl bytes.Buffer
				if _, err := c.Write(NewIoSink(&inl, nil, nil), bo, offset, 0, dataPositions[i], imageIdx); err != nil {
					return 0, err
				}
				copy(entryBuf[8:], inl.Bytes())
			default:
				c.EncodeValue(entryBuf[8:], bo)
			}
		} else {
			putUint32(entryBuf[8:], uint32(offset)+slots[i].voffset, bo)
		}
		if _, err := s.Write(entryBuf); err != nil {
			return 0, err
		}
	}

	var nextOffset uint32
	if d.next != nil {
		nextOffset = uint32(offset) + dataAreaStart + totalDataSize
	}
	if d.hasNext {
		nextBuf := make([]byte, 4)
		putUint32(nextBuf, nextOffset, bo)
		if _, err := s.Write(nextBuf); err != nil {
			return 0, err
		}
	}

	for i, c := range d.components {
		if slots[i].inline {
			continue
		}
		if _, err := c.Write(s, bo, offset, slots[i].voffset, dataPositions[i], imageIdx); err != nil {
			return 0, err
		}
	}

	for i, c := range d.components {
		sz := wordAlign(c.SizeData())
		if sz == 0 {
			continue
		}
		if _, err := c.WriteData(s, bo, offset, dataPositions[i], imageIdx); err != nil {
			return 0, err
		}
	}

	total := dataAreaStart + totalDataSize

	if d.next != nil {
		if _, err := d.next.Write(s, bo, int64(nextOffset), 0, 0, imageIdx); err != nil {
			return total, err
		}
	}

	return total, nil
}

// WriteData writes nothing and returns 0. Directory is always reached
// through Write (which performs the full phase A-D sequence, children's
// data areas included), so WriteData here only satisfies the Component
// interface.
func (d *Directory) WriteData(s *IoSink, bo ByteOrder, offset int64, dataIdx uint32, imageIdx *uint32) (uint32, error) {
	return 0, nil
}

// WriteImage recurses into every child's image-area contribution, plus
// the next-IFD chain's.
func (d *Directory) WriteImage(s *IoSink, bo ByteOrder) (uint32, error) {
	var total uint32
	for _, c := range d.components {
		n, err := c.WriteImage(s, bo)
		if err != nil {
			return total, err
		}
		total += n
	}
	if d.next != nil {
		n, err := d.next.WriteImage(s, bo)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
