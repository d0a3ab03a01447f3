package tiffcomposite

// Component is the capability interface every node in the composite tree
// implements. The tree itself is a tagged sum (one node kind per variant
// struct below); rather than modeling that with an interface-heavy class
// hierarchy and virtual inheritance, each variant embeds base for its
// common tag/group/idx bookkeeping and overrides only the methods whose
// behavior differs from the no-op defaults (SPEC_FULL.md design notes,
// mirroring tiffcomposite_int.cpp's TiffComponent/doXxx split).
type Component interface {
	Tag() Tag
	Group() Group
	Idx() int

	// Count is the semantic element count (§4.2).
	Count() int
	// Size is the on-wire size of the node's value area (C5).
	Size() uint32
	// SizeData is the ancillary bytes this node contributes to its
	// directory's data area.
	SizeData() uint32
	// SizeImage is the image bytes this node contributes to the global
	// image area.
	SizeImage() uint32

	// Clone deep-copies the node. Some variants (MnEntry, IfdMakernote)
	// deliberately do not support this and return ErrCloneNotSupported.
	Clone() (Component, error)

	// TypeID and EncodeValue expose a node's scalar value to its enclosing
	// Directory so Directory.Write can build the 12-byte directory record
	// itself: a value that fits in 4 bytes is embedded inline via
	// EncodeValue, and a larger one is written by the node's own Write call
	// instead. Offset-bearing nodes (SubIfdEntry, DataEntry, ImageEntry) are
	// rendered through Write even when inline, since their bytes depend on
	// the final layout. Directory keeps the base no-op EncodeValue.
	TypeID() TiffType
	EncodeValue(buf []byte, bo ByteOrder) int

	// Accept performs double dispatch into the visitor for this node's
	// concrete kind (C4).
	Accept(v Visitor)

	// AddChild/AddNext attach a component as a child/next-pointer; the
	// zero-value behavior (unsupported) returns a nil component.
	AddChild(child Component) Component
	AddNext(next Component) Component

	// AddPath is the path-based tree builder entry point (C3).
	AddPath(tag Tag, path *TiffPath, root Component, terminal Component) (Component, error)

	// Write serializes this node's own value area (C6, phase B, or inline
	// in phase A when size <= 4). offset is the absolute stream offset of
	// the enclosing directory; valueIdx/dataIdx are offsets relative to it;
	// imageIdx is the running absolute offset into the global image area,
	// threaded by pointer since the image area is shared mutable state
	// across the whole tree during a single serialize call.
	Write(s *IoSink, bo ByteOrder, offset int64, valueIdx, dataIdx uint32, imageIdx *uint32) (uint32, error)

	// WriteData serializes this node's ancillary data-area contribution
	// (C6 phase C).
	WriteData(s *IoSink, bo ByteOrder, offset int64, dataIdx uint32, imageIdx *uint32) (uint32, error)

	// WriteImage serializes this node's image-area contribution (C6 phase E).
	WriteImage(s *IoSink, bo ByteOrder) (uint32, error)
}

// base carries the attributes shared by every node kind and supplies the
// zero-value defaults for capabilities a given variant does not need.
type base struct {
	tag   Tag
	group Group
	idx   int
}

func (b *base) Tag() Tag     { return b.tag }
func (b *base) Group() Group { return b.group }
func (b *base) Idx() int     { return b.idx }

func (b *base) Count() int         { return 0 }
func (b *base) SizeData() uint32   { return 0 }
func (b *base) SizeImage() uint32  { return 0 }

func (b *base) AddChild(Component) Component { return nil }
func (b *base) AddNext(Component) Component  { return nil }

func (b *base) TypeID() TiffType                         { return ttUndefined }
func (b *base) EncodeValue(_ []byte, _ ByteOrder) int    { return 0 }

func (b *base) WriteData(*IoSink, ByteOrder, int64, uint32, *uint32) (uint32, error) {
	return 0, nil
}
func (b *base) WriteImage(*IoSink, ByteOrder) (uint32, error) {
	return 0, nil
}

// cmpTagLt orders components by (tag, idx), the tiebreaker spec.md's
// sort invariant requires (§3, §8 property 4).
func cmpTagLt(lhs, rhs Component) bool {
	if lhs.Tag() != rhs.Tag() {
		return lhs.Tag() < rhs.Tag()
	}
	return lhs.Idx() < rhs.Idx()
}

// cmpGroupLt orders SubIfdEntry children by group (§4.6 SubIfdEntry.write).
func cmpGroupLt(lhs, rhs Component) bool {
	return lhs.Group() < rhs.Group()
}
