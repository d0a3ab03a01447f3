package tiffcomposite

import "bytes"

// MakernoteOffsetBase names which position a maker note's internal
// pointers are relative to. Most makers reuse the outer TIFF header's
// base; a few (grounded on tiffcomposite_int.cpp's TiffIfdMakernote
// byteOrder_/hasNext_/absShift handling for Nikon/Olympus/Sony) instead
// count from the start of the maker-note value itself, or from just past
// an internal ASCII header.
type MakernoteOffsetBase int

const (
	BaseTiffHeader MakernoteOffsetBase = iota
	BaseMakernoteValue
	BaseAfterHeader
)

// MakernoteCreator is the external collaborator MnEntry consults to build
// the right maker-specific IfdMakernote the first time a path descends
// into the MakerNote tag, keyed by the camera make/model strings read
// from the enclosing directory. A real caller registers one creator per
// supported maker; MakernoteRegistry (registry.go) is the minimal built-in
// implementation.
type MakernoteCreator interface {
	Create(make, model string, group Group) (*IfdMakernote, bool)
}

// MnEntry is the Exif.Photo.MakerNote tag: on disk an opaque UNDEFINED
// byte blob, but logically the root of an entire embedded IFD tree once a
// MakernoteCreator recognizes the camera. Lazily creating the embedded
// tree only once a path actually descends into it (rather than eagerly at
// construction) mirrors TiffMnEntry::doAddPath (C2, C3).
type MnEntry struct {
	base
	value   *Value
	creator MakernoteCreator
	make    string
	model   string
	mn      *IfdMakernote
	warner  Warner
}

// NewMnEntry constructs the tag before its maker note has been recognized.
// make/model are the camera strings read from the same directory's Make
// and Model tags, needed to pick the right MakernoteCreator.
func NewMnEntry(group Group, value *Value, creator MakernoteCreator, make, model string, warner Warner) *MnEntry {
	return &MnEntry{
		base:    base{tag: TagMakerNote, group: group},
		value:   value,
		creator: creator,
		make:    make,
		model:   model,
		warner:  warnerOrNop(warner),
	}
}

// Count returns the raw byte count until a makernote tree has been
// created, after which it defers to the tree's own serialized size,
// matching TiffMnEntry::doCount's fallback to the undecoded value.
func (e *MnEntry) Count() int {
	if e.mn != nil {
		return int(e.mn.Size())
	}
	return e.value.Count()
}

// Size returns the maker note's on-wire byte length.
func (e *MnEntry) Size() uint32 {
	if e.mn != nil {
		return e.mn.Size()
	}
	return uint32(e.value.Size())
}

func (e *MnEntry) SizeData() uint32 {
	if e.mn != nil {
		return e.mn.SizeData()
	}
	return 0
}

func (e *MnEntry) SizeImage() uint32 {
	if e.mn != nil {
		return e.mn.SizeImage()
	}
	return 0
}

// TypeID reports UNDEFINED: a maker note is always stored as an opaque
// byte blob from the containing directory's point of view, whatever tree
// structure it holds underneath (matches the original's fixed
// undefined type id for this tag regardless of maker).
func (e *MnEntry) TypeID() TiffType { return ttUndefined }

func (e *MnEntry) EncodeValue(buf []byte, bo ByteOrder) int {
	if e.mn == nil {
		return e.value.Copy(buf, bo)
	}
	return 0
}

// Clone is unsupported: the original leaves TiffMnEntry uncloneable
// because the embedded tree's maker-specific state (cipher keys, header
// bytes) has no generic deep-copy rule.
func (e *MnEntry) Clone() (Component, error) { return nil, ErrCloneNotSupported }

// AddPath lazily creates the maker-specific embedded tree on first
// descent, then forwards the remaining path into it. If no creator
// recognizes make/model, the tag stays an opaque leaf and the path cannot
// descend any further.
func (e *MnEntry) AddPath(tag Tag, path *TiffPath, root, terminal Component) (Component, error) {
	if e.mn == nil {
		if e.creator == nil {
			return nil, nil
		}
		mn, ok := e.creator.Create(e.make, e.model, e.group)
		if !ok {
			return nil, nil
		}
		e.mn = mn
	}
	if path.Empty() {
		return e.mn, nil
	}
	return e.mn.AddPath(tag, path, root, terminal)
}

// Accept visits this tag, then — unless the visitor has lowered
// PhaseKnownMakernote while visiting it, e.g. because it turned out to be
// an unsupported/corrupt maker note — descends into the embedded tree.
// Lowering the gate also permanently drops the embedded tree, matching
// TiffMnEntry::doAccept's "delete mn_ if not go(Tiff::pKnownMakernote)".
func (e *MnEntry) Accept(v Visitor) {
	accept(v, func(v Visitor) {
		v.VisitMnEntry(e)
		if e.mn == nil {
			return
		}
		if v.Go(PhaseKnownMakernote) {
			e.mn.Accept(v)
		} else {
			e.mn = nil
		}
	})
}

func (e *MnEntry) Write(s *IoSink, bo ByteOrder, offset int64, valueIdx, dataIdx uint32, imageIdx *uint32) (uint32, error) {
	if e.mn == nil {
		sz := wordAlign(e.Size())
		buf := make([]byte, sz)
		e.value.Copy(buf, bo)
		if _, err := s.Write(buf); err != nil {
			return 0, err
		}
		return sz, nil
	}
	return e.mn.Write(s, bo, offset+int64(valueIdx), 0, dataIdx, imageIdx)
}

func (e *MnEntry) WriteData(s *IoSink, bo ByteOrder, offset int64, dataIdx uint32, imageIdx *uint32) (uint32, error) {
	if e.mn == nil {
		return 0, nil
	}
	return e.mn.WriteData(s, bo, offset, dataIdx, imageIdx)
}

func (e *MnEntry) WriteImage(s *IoSink, bo ByteOrder) (uint32, error) {
	if e.mn == nil {
		return 0, nil
	}
	return e.mn.WriteImage(s, bo)
}

// IfdMakernote wraps an ordinary Directory with the envelope a maker note
// adds around it: an optional verbatim header string, a possibly
// different byte order, the rebasing rule for its internal pointers, and
// an optional whole-body cipher (the Sony encipher/decipher substitution).
// Grounded on tiffcomposite_int.cpp's TiffIfdMakernote.
type IfdMakernote struct {
	base
	header     []byte
	byteOrder  ByteOrder
	offsetBase MakernoteOffsetBase
	dir        *Directory
	encipher   func([]byte) []byte
	decipher   func([]byte) []byte
}

// NewIfdMakernote constructs the envelope around an (initially empty)
// directory that the matching MakernoteCreator has chosen for a
// recognized camera. encipher/decipher may be nil for makers (most of
// them) that store their tree in plain TIFF form.
func NewIfdMakernote(group Group, header []byte, byteOrder ByteOrder, offsetBase MakernoteOffsetBase, encipher, decipher func([]byte) []byte) *IfdMakernote {
	return &IfdMakernote{
		header:     header,
		byteOrder:  byteOrder,
		offsetBase: offsetBase,
		dir:        newEmbeddedDirectory(group),
		encipher:   encipher,
		decipher:   decipher,
	}
}

func (m *IfdMakernote) Group() Group { return m.dir.Group() }

func (m *IfdMakernote) Size() uint32 {
	return uint32(len(m.header)) + m.dir.Size()
}
func (m *IfdMakernote) SizeData() uint32  { return m.dir.SizeData() }
func (m *IfdMakernote) SizeImage() uint32 { return m.dir.SizeImage() }

// Clone is unsupported: the maker-specific envelope state (cipher keys,
// header bytes) has no generic deep-copy rule, matching MnEntry.Clone.
func (m *IfdMakernote) Clone() (Component, error) { return nil, ErrCloneNotSupported }

func (m *IfdMakernote) AddPath(tag Tag, path *TiffPath, root, terminal Component) (Component, error) {
	return m.dir.AddPath(tag, path, root, terminal)
}

func (m *IfdMakernote) Accept(v Visitor) {
	accept(v, func(v Visitor) {
		v.VisitIfdMakernote(m)
		m.dir.Accept(v)
		v.VisitIfdMakernoteEnd(m)
	})
}

// baseOffset computes the absolute stream position internal pointers inside
// this maker note are relative to, per offsetBase.
func (m *IfdMakernote) baseOffset(valueStart int64) int64 {
	switch m.offsetBase {
	case BaseMakernoteValue:
		return valueStart
	case BaseAfterHeader:
		return valueStart + int64(len(m.header))
	default:
		return 0
	}
}

// Write serializes the header (if any) followed by the embedded
// directory, in the maker note's own byte order, rebasing its internal
// pointers per offsetBase. When a cipher is set, the header-relative body
// is rendered to a scratch buffer and enciphered in place before being
// copied to the real sink, matching the Sony maker note's whole-body
// substitution cipher.
func (m *IfdMakernote) Write(s *IoSink, _ ByteOrder, offset int64, valueIdx, _ uint32, imageIdx *uint32) (uint32, error) {
	valueStart := offset + int64(valueIdx)
	base := m.baseOffset(valueStart)

	if m.encipher == nil {
		written := uint32(0)
		if len(m.header) > 0 {
			if _, err := s.Write(m.header); err != nil {
				return 0, err
			}
			written += uint32(len(m.header))
		}
		bodyOffset := valueStart + int64(len(m.header)) - base
		n, err := m.dir.Write(s, m.byteOrder, bodyOffset, 0, 0, imageIdx)
		if err != nil {
			return written, err
		}
		return written + n, nil
	}

	var scratch bytes.Buffer
	scratchSink := NewIoSink(&scratch, nil, nil)
	n, err := m.dir.Write(scratchSink, m.byteOrder, 0, 0, 0, imageIdx)
	if err != nil {
		return 0, err
	}
	body := m.encipher(scratch.Bytes())
	written := uint32(0)
	if len(m.header) > 0 {
		if _, err := s.Write(m.header); err != nil {
			return 0, err
		}
		written += uint32(len(m.header))
	}
	if _, err := s.Write(body); err != nil {
		return written, err
	}
	_ = n
	return written + uint32(len(body)), nil
}

func (m *IfdMakernote) WriteData(s *IoSink, bo ByteOrder, offset int64, dataIdx uint32, imageIdx *uint32) (uint32, error) {
	return m.dir.WriteData(s, bo, offset, dataIdx, imageIdx)
}

func (m *IfdMakernote) WriteImage(s *IoSink, bo ByteOrder) (uint32, error) {
	return m.dir.WriteImage(s, bo)
}
