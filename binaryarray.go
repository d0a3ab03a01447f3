package tiffcomposite

// ArrayDef describes one field packed inside a binary array: its byte
// offset, TIFF type, and element count. A Count of 0 or less is treated as
// a single element; it does not extend the field to the end of the array.
type ArrayDef struct {
	Idx    int
	TypeID TiffType
	Count  int
}

// CfgSelFct picks which of several ArraySet layouts actually applies to a
// given array's raw bytes, for maker notes whose binary layout varies by
// camera model/firmware revision and can only be told apart by sniffing
// the bytes themselves (e.g. a version field at a fixed offset).
type CfgSelFct func(origin []byte, bo ByteOrder) int

// ArrayCfg carries the properties of a binary array that do not vary
// per-field: the group its elements are exposed under, an optional fixed
// byte order overriding the enclosing directory's, whether the array is
// prefixed by an element count, and the selector used to choose a layout.
type ArrayCfg struct {
	Group     Group
	ByteOrder ByteOrder // InvalidByteOrder to inherit the caller's
	HasSize   bool
	SizeType  TiffType
	SelFct    CfgSelFct
}

// ArraySet pairs a concrete field layout with the config it uses; a
// BinaryArray is initialized from a list of these and picks one via
// cfg.SelFct (or always the first, if there is only one layout).
type ArraySet struct {
	Cfg  ArrayCfg
	Defs []ArrayDef
}

// BinaryArray is a single tag whose value is itself a packed sequence of
// sub-fields at fixed byte offsets — the maker-note idiom used for lens
// data, AF info, and similar vendor-private blobs that don't warrant a
// full nested IFD (C7). Grounded on tiffcomposite_int.cpp's
// TiffBinaryArray/ArrayCfg/ArrayDef/ArraySet.
type BinaryArray struct {
	base
	cfg      ArrayCfg
	defs     []ArrayDef
	elements []*BinaryElement
	origin   []byte // raw bytes the array was decoded from, kept so that
	// bytes outside any known field are preserved verbatim on write
	// (fillGap) rather than zeroed
	cryptFct func([]byte) []byte
}

// NewBinaryArray constructs a binary array from origin (its raw,
// deciphered bytes) and the candidate layouts in sets, selecting one via
// initialize. cryptFct, if non-nil, is applied to the fully rendered
// buffer on write (the Sony binary-array cipher substitution).
func NewBinaryArray(tag Tag, group Group, sets []ArraySet, origin []byte, cryptFct func([]byte) []byte) *BinaryArray {
	b := &BinaryArray{base: base{tag: tag, group: group}, origin: origin, cryptFct: cryptFct}
	b.initializeFromOrigin(sets, origin)
	return b
}

// initialize sets the array's config and field layout directly, for
// callers that already know which ArraySet applies (the single-layout
// case, or a layout chosen by something other than content sniffing).
func (b *BinaryArray) initialize(cfg ArrayCfg, defs []ArrayDef) {
	b.cfg = cfg
	b.defs = defs
}

// initializeFromOrigin picks a layout from sets by running the first
// set's selector (if any) against origin, then delegates to initialize.
// All candidate sets are expected to share one selector; a selector
// returning an out-of-range index falls back to the first set.
func (b *BinaryArray) initializeFromOrigin(sets []ArraySet, origin []byte) {
	if len(sets) == 0 {
		return
	}
	idx := 0
	if sets[0].Cfg.SelFct != nil {
		idx = sets[0].Cfg.SelFct(origin, sets[0].Cfg.ByteOrder)
	}
	if idx < 0 || idx >= len(sets) {
		idx = 0
	}
	b.initialize(sets[idx].Cfg, sets[idx].Defs)
}

func (b *BinaryArray) Group() Group { return b.cfg.Group }

// Count reports the array's own byte size, rounded to whole elements of
// its own (undefined, byte-sized) TIFF type — resolving the Open Question
// of whether doCount should report field count or byte count in favor of
// byte count, since the array is exposed to its directory as one opaque
// UNDEFINED-typed entry and the directory record's count field must equal
// its value's true element count for that type (SPEC_FULL.md §5).
func (b *BinaryArray) Count() int { return int(b.Size()) }

func (b *BinaryArray) TypeID() TiffType { return ttUndefined }

// Size is the whole rendered array's byte length: the optional size
// prefix plus the larger of (a) the highest byte any known field reaches
// and (b) the original array's own length, word-aligned.
func (b *BinaryArray) Size() uint32 {
	prefix := uint32(0)
	if b.cfg.HasSize {
		prefix = uint32(typeSize(b.cfg.SizeType))
	}
	end := uint32(0)
	for _, e := range b.elements {
		reach := uint32(e.byteOffset) + uint32(e.value.Size())
		if reach > end {
			end = reach
		}
	}
	if uint32(len(b.origin)) > end {
		end = uint32(len(b.origin))
	}
	return wordAlign(prefix + end)
}

// addElement finds the ArrayDef covering byte offset idx and appends a
// BinaryElement decoded from origin at that offset, or returns nil if no
// def covers it (an unrecognized field the array cannot expose).
func (b *BinaryArray) addElement(idx int) *BinaryElement {
	for _, def := range b.defs {
		if def.Idx != idx {
			continue
		}
		count := def.Count
		if count <= 0 {
			count = 1
		}
		sz := count * typeSize(def.TypeID)
		if sz <= 0 {
			sz = count
		}
		bo := b.cfg.ByteOrder
		if bo == InvalidByteOrder {
			bo = LittleEndian
		}
		var data []byte
		if idx+sz <= len(b.origin) {
			data = b.origin[idx : idx+sz]
		}
		v := decodeValue(data, def.TypeID, count, bo)
		el := &BinaryElement{base: base{tag: Tag(idx), group: b.cfg.Group}, byteOffset: idx, value: v}
		b.elements = append(b.elements, el)
		return el
	}
	return nil
}

// AddChild attaches an already-built BinaryElement (used when cloning or
// when a caller constructs elements directly rather than through
// AddPath/addElement).
func (b *BinaryArray) AddChild(child Component) Component {
	el, ok := child.(*BinaryElement)
	if !ok {
		return nil
	}
	b.elements = append(b.elements, el)
	return el
}

// AddPath resolves one field by offset (path items address fields by
// ArrayDef.Idx, carried as item.TagValue): an existing element is
// returned directly, otherwise addElement creates one from the defined
// layout. Fields are always leaves, so path must be exhausted here.
func (b *BinaryArray) AddPath(tag Tag, path *TiffPath, root, terminal Component) (Component, error) {
	idx := int(tag)
	for _, el := range b.elements {
		if el.byteOffset == idx {
			return el, nil
		}
	}
	el := b.addElement(idx)
	if el == nil {
		return nil, nil
	}
	return el, nil
}

func (b *BinaryArray) Clone() (Component, error) {
	clone := &BinaryArray{base: b.base, cfg: b.cfg, defs: b.defs, cryptFct: b.cryptFct}
	clone.origin = append([]byte(nil), b.origin...)
	for _, el := range b.elements {
		c, err := el.Clone()
		if err != nil {
			return nil, err
		}
		clone.elements = append(clone.elements, c.(*BinaryElement))
	}
	return clone, nil
}

func (b *BinaryArray) Accept(v Visitor) {
	accept(v, func(v Visitor) {
		v.VisitBinaryArray(b)
		for _, el := range b.elements {
			if !v.Go(PhaseTraverse) {
				break
			}
			el.Accept(v)
		}
		v.VisitBinaryArrayEnd(b)
	})
}

// render produces the array's final bytes: an optional element-count
// prefix, the original bytes as a base layer (fillGap — undeclared
// stretches keep their source content instead of being zeroed), each
// known field's current value overlaid at its offset, and finally the
// array's cipher transform if one is set.
func (b *BinaryArray) render(bo ByteOrder) []byte {
	elBO := b.cfg.ByteOrder
	if elBO == InvalidByteOrder {
		elBO = bo
	}
	sz := b.Size()
	buf := make([]byte, sz)
	prefix := uint32(0)
	if b.cfg.HasSize {
		prefix = uint32(typeSize(b.cfg.SizeType))
		switch b.cfg.SizeType {
		case ttUnsignedShort:
			putUint16(buf, uint16(len(b.elements)), bo)
		default:
			putUint32(buf, uint32(len(b.elements)), bo)
		}
	}
	body := buf[prefix:]
	copy(body, b.origin)
	for _, el := range b.elements {
		if el.byteOffset+int(el.value.Size()) > len(body) {
			continue
		}
		el.value.Copy(body[el.byteOffset:], elBO)
	}
	if b.cryptFct != nil {
		return b.cryptFct(buf)
	}
	return buf
}

func (b *BinaryArray) EncodeValue(buf []byte, bo ByteOrder) int {
	return copy(buf, b.render(bo))
}

func (b *BinaryArray) Write(s *IoSink, bo ByteOrder, _ int64, _, _ uint32, _ *uint32) (uint32, error) {
	rendered := b.render(bo)
	if _, err := s.Write(rendered); err != nil {
		return 0, err
	}
	return uint32(len(rendered)), nil
}

// BinaryElement is one packed field inside a BinaryArray: a plain scalar
// leaf like Entry, except its "tag" is really a byte offset and it is
// never independently written — BinaryArray.render reads its value
// directly rather than calling its Write (C7).
type BinaryElement struct {
	base
	byteOffset int
	value      *Value
}

func (e *BinaryElement) ByteOffset() int   { return e.byteOffset }
func (e *BinaryElement) Value() *Value    { return e.value }
func (e *BinaryElement) Count() int       { return e.value.Count() }
func (e *BinaryElement) Size() uint32     { return uint32(e.value.Size()) }
func (e *BinaryElement) TypeID() TiffType { return e.value.TypeID() }

func (e *BinaryElement) EncodeValue(buf []byte, bo ByteOrder) int {
	return e.value.Copy(buf, bo)
}

func (e *BinaryElement) Clone() (Component, error) {
	return &BinaryElement{base: e.base, byteOffset: e.byteOffset, value: e.value.Clone()}, nil
}

func (e *BinaryElement) Accept(v Visitor) {
	accept(v, func(v Visitor) { v.VisitBinaryElement(e) })
}

// Write exists only to satisfy Component; BinaryArray never calls it,
// rendering every element's bytes itself in one pass.
func (e *BinaryElement) Write(s *IoSink, bo ByteOrder, _ int64, _, _ uint32, _ *uint32) (uint32, error) {
	sz := wordAlign(e.Size())
	buf := make([]byte, sz)
	e.value.Copy(buf, bo)
	if _, err := s.Write(buf); err != nil {
		return 0, err
	}
	return sz, nil
}
