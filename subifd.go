package tiffcomposite

import "sort"

// SubIfdEntry is a tag whose value is one or more pointers to embedded
// Directory trees (e.g. ExifIFD, GPSInfo, the SubIFDs array tag). Each
// pointer addresses a distinct group, so a single SubIfdEntry can fan out
// into several nested directories sharing one tag number (C2, C3, C6).
// Grounded on tiffcomposite_int.cpp's TiffSubIfd.
type SubIfdEntry struct {
	base
	typeID TiffType // ttUnsignedLong in every known case, kept configurable
	ifds   []*Directory
}

// NewSubIfdEntry constructs an empty sub-IFD pointer entry; directories
// are attached later via AddChild as the tree is built path by path.
func NewSubIfdEntry(tag Tag, group Group, typeID TiffType) *SubIfdEntry {
	return &SubIfdEntry{base: base{tag: tag, group: group}, typeID: typeID}
}

func (e *SubIfdEntry) Count() int       { return len(e.ifds) }
func (e *SubIfdEntry) Size() uint32     { return wordAlign(uint32(len(e.ifds)) * uint32(typeSize(e.typeID))) }
func (e *SubIfdEntry) TypeID() TiffType { return e.typeID }

// AddChild attaches a nested Directory as one more sub-IFD pointer. The
// original requires the child to be a TiffDirectory; any other Component
// is rejected by returning nil, matching doAddChild's assertion.
func (e *SubIfdEntry) AddChild(child Component) Component {
	d, ok := child.(*Directory)
	if !ok {
		return nil
	}
	d.hasNext = false
	e.ifds = append(e.ifds, d)
	return d
}

// AddPath resolves which nested directory (by group) the remaining path
// descends into, creating an embedded directory for that group if this is
// the first tag ever routed to it, then delegates the rest of the path to
// it. It peeks at the top path item (an entry inside the child directory,
// whose group names that directory) without popping it; the child
// directory's own AddPath pops it.
func (e *SubIfdEntry) AddPath(tag Tag, path *TiffPath, root, terminal Component) (Component, error) {
	if path.Empty() {
		return e, nil
	}
	next := path.Top()
	for _, d := range e.ifds {
		if d.Group() == next.GroupValue {
			return d.AddPath(tag, path, root, terminal)
		}
	}
	d := newEmbeddedDirectory(next.GroupValue)
	e.AddChild(d)
	return d.AddPath(tag, path, root, terminal)
}

func (e *SubIfdEntry) Clone() (Component, error) {
	clone := &SubIfdEntry{base: e.base, typeID: e.typeID}
	for _, d := range e.ifds {
		cd, err := d.Clone()
		if err != nil {
			return nil, err
		}
		clone.ifds = append(clone.ifds, cd.(*Directory))
	}
	return clone, nil
}

func (e *SubIfdEntry) Accept(v Visitor) {
	accept(v, func(v Visitor) { v.VisitSubIfd(e) })
}

// layout lays the nested directories out after dataIdx in group order
// (cmpGroupLt), matching TiffSubIfd's write-order rule for compatibility
// with maker notes whose sub-directories must not be reordered by tag. It
// returns each directory's offset relative to the enclosing directory,
// keyed by identity, and the group-sorted placement order.
func (e *SubIfdEntry) layout(dataIdx uint32) (map[*Directory]uint32, []*Directory) {
	sorted := make([]*Directory, len(e.ifds))
	copy(sorted, e.ifds)
	sort.SliceStable(sorted, func(i, j int) bool { return cmpGroupLt(sorted[i], sorted[j]) })

	positions := make(map[*Directory]uint32, len(sorted))
	cur := dataIdx
	for _, d := range sorted {
		positions[d] = cur
		cur += wordAlign(d.Size() + d.SizeData())
	}
	return positions, sorted
}

// Write emits the offset array, one absolute pointer per attached
// directory in original (tag-occurrence) order, computed from the group-
// sorted layout WriteData will actually place them at.
func (e *SubIfdEntry) Write(s *IoSink, bo ByteOrder, offset int64, _, dataIdx uint32, _ *uint32) (uint32, error) {
	positions, _ := e.layout(dataIdx)
	sz := e.Size()
	buf := make([]byte, sz)
	pos := 0
	for _, d := range e.ifds {
		abs := uint32(offset) + positions[d]
		n, err := writeOffset(buf[pos:], abs, e.typeID, bo)
		if err != nil {
			return 0, err
		}
		pos += int(n)
	}
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}

// SizeData is the total footprint (directory record + its own data area)
// of every nested directory, since they are serialized inside this
// entry's parent's data area.
func (e *SubIfdEntry) SizeData() uint32 {
	var total uint32
	for _, d := range e.ifds {
		total += wordAlign(d.Size() + d.SizeData())
	}
	return total
}

// SizeImage sums the image-area contribution of every nested directory
// (e.g. a thumbnail sub-IFD's own strip offsets).
func (e *SubIfdEntry) SizeImage() uint32 {
	var total uint32
	for _, d := range e.ifds {
		total += d.SizeImage()
	}
	return total
}

// WriteData recursively serializes each nested directory at the position
// computed by layout, in group-sorted order.
func (e *SubIfdEntry) WriteData(s *IoSink, bo ByteOrder, offset int64, dataIdx uint32, imageIdx *uint32) (uint32, error) {
	positions, sorted := e.layout(dataIdx)
	var written uint32
	for _, d := range sorted {
		abs := offset + int64(positions[d])
		n, err := d.Write(s, bo, abs, 0, 0, imageIdx)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// WriteImage delegates to every nested directory's own image contribution.
func (e *SubIfdEntry) WriteImage(s *IoSink, bo ByteOrder) (uint32, error) {
	var written uint32
	for _, d := range e.ifds {
		n, err := d.WriteImage(s, bo)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}
