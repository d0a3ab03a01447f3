package tiffcomposite

import (
	"math"
	"math/big"
)

// Value is the minimal typed-value container the composite tree needs
// from its real collaborator (spec.md calls the full abstraction an
// external collaborator — size/count/clone/copy/element access/data
// area). It is modeled the same way the teacher encodes TIFF fields
// in writer.go's writeField/writeArray: a Go type switch over the set of
// TIFF element shapes, plus math/big.Rat for RATIONAL/SRATIONAL exactly
// as ifd.go represents XResolution/YResolution.
type Value struct {
	typeID TiffType
	data   interface{} // []byte | []uint16 | []uint32 | []int8 | []int16 | []int32 | []float32 | []float64 | []*big.Rat | string

	dataArea []byte // ancillary bytes referenced by offset (strip/thumbnail data)
}

// NewValue builds a Value of the given TIFF type from data, which must be
// one of the slice/string shapes listed above.
func NewValue(typeID TiffType, data interface{}) *Value {
	return &Value{typeID: typeID, data: data}
}

// TypeID reports the value's TIFF type.
func (v *Value) TypeID() TiffType {
	if v == nil {
		return ttUndefined
	}
	return v.typeID
}

// Count returns the number of elements (a trailing NUL counts as one
// element for ASCII, matching the teacher's `n := len(d) + 1` for strings).
func (v *Value) Count() int {
	if v == nil {
		return 0
	}
	switch d := v.data.(type) {
	case []byte:
		return len(d)
	case []uint16:
		return len(d)
	case []uint32:
		return len(d)
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	case []*big.Rat:
		return len(d)
	case string:
		return len(d) + 1
	default:
		return 0
	}
}

// Size returns the on-wire byte size of the value (before word alignment).
func (v *Value) Size() int {
	if v == nil {
		return 0
	}
	sz := typeSize(v.typeID)
	if sz == 0 {
		sz = 1
	}
	return v.Count() * sz
}

// Clone deep-copies the value, including its data slice; the data area
// (a shared, read-only view into a source buffer) is shared, matching
// the teacher's copy semantics for raw byte views.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	nv := &Value{typeID: v.typeID, dataArea: v.dataArea}
	switch d := v.data.(type) {
	case []byte:
		c := make([]byte, len(d))
		copy(c, d)
		nv.data = c
	case []uint16:
		c := make([]uint16, len(d))
		copy(c, d)
		nv.data = c
	case []uint32:
		c := make([]uint32, len(d))
		copy(c, d)
		nv.data = c
	case []int8:
		c := make([]int8, len(d))
		copy(c, d)
		nv.data = c
	case []int16:
		c := make([]int16, len(d))
		copy(c, d)
		nv.data = c
	case []int32:
		c := make([]int32, len(d))
		copy(c, d)
		nv.data = c
	case []float32:
		c := make([]float32, len(d))
		copy(c, d)
		nv.data = c
	case []float64:
		c := make([]float64, len(d))
		copy(c, d)
		nv.data = c
	case []*big.Rat:
		c := make([]*big.Rat, len(d))
		for i, r := range d {
			c[i] = new(big.Rat).Set(r)
		}
		nv.data = c
	case string:
		nv.data = d
	}
	return nv
}

// Copy encodes the value into buf (which must be at least v.Size() bytes
// long) in byte order bo, returning the number of bytes written.
func (v *Value) Copy(buf []byte, bo ByteOrder) int {
	if v == nil {
		return 0
	}
	idx := 0
	switch d := v.data.(type) {
	case []byte:
		idx += copy(buf, d)
	case string:
		idx += copy(buf, d)
		buf[idx] = 0
		idx++
	case []uint16:
		for _, e := range d {
			idx += int(putUint16(buf[idx:], e, bo))
		}
	case []int16:
		for _, e := range d {
			idx += int(putInt16(buf[idx:], e, bo))
		}
	case []uint32:
		for _, e := range d {
			idx += int(putUint32(buf[idx:], e, bo))
		}
	case []int8:
		for _, e := range d {
			buf[idx] = byte(e)
			idx++
		}
	case []int32:
		for _, e := range d {
			idx += int(putUint32(buf[idx:], uint32(e), bo))
		}
	case []float32:
		for _, e := range d {
			idx += int(putUint32(buf[idx:], math.Float32bits(e), bo))
		}
	case []float64:
		for _, e := range d {
			order(bo).PutUint64(buf[idx:], math.Float64bits(e))
			idx += 8
		}
	case []*big.Rat:
		for _, r := range d {
			num := r.Num().Int64()
			den := r.Denom().Int64()
			idx += int(putUint32(buf[idx:], uint32(num), bo))
			idx += int(putUint32(buf[idx:], uint32(den), bo))
		}
	}
	return idx
}

// ToUint32 returns the i'th element as an unsigned 32-bit integer,
// interpreting whatever underlying numeric type is stored. Used by
// DataEntry/ImageEntry to read and rebase strip offsets regardless of
// their declared TIFF type (SHORT or LONG).
func (v *Value) ToUint32(i int) uint32 {
	return uint32(v.ToInt64(i))
}

// ToInt64 returns the i'th element as a signed 64-bit integer.
func (v *Value) ToInt64(i int) int64 {
	if v == nil {
		return 0
	}
	switch d := v.data.(type) {
	case []byte:
		return int64(d[i])
	case []uint16:
		return int64(d[i])
	case []uint32:
		return int64(d[i])
	case []int8:
		return int64(d[i])
	case []int16:
		return int64(d[i])
	case []int32:
		return int64(d[i])
	case []float32:
		return int64(d[i])
	case []float64:
		return int64(d[i])
	case []*big.Rat:
		f, _ := d[i].Float64()
		return int64(f)
	default:
		return 0
	}
}

// DataArea returns the ancillary byte slice associated with this value
// (e.g. raw strip bytes), or nil if none is set.
func (v *Value) DataArea() []byte {
	if v == nil {
		return nil
	}
	return v.dataArea
}

// SizeDataArea returns len(DataArea()).
func (v *Value) SizeDataArea() int {
	return len(v.DataArea())
}

// SetDataArea attaches buf as the value's ancillary data area.
func (v *Value) SetDataArea(buf []byte) {
	v.dataArea = buf
}

// decodeValue builds a Value of the given type/count by reading data in
// byte order bo, the inverse of Copy — used by the binary-array engine to
// turn a raw byte slice sliced out at a known ArrayDef offset into a
// typed element (SPEC_FULL.md §4 binaryarray.go). Unknown types and data
// too short for the requested count decode as raw UNDEFINED bytes; no
// warning is raised for them.
func decodeValue(data []byte, typeID TiffType, count int, bo ByteOrder) *Value {
	sz := typeSize(typeID)
	if sz == 0 || len(data) < count*sz {
		return NewValue(ttUndefined, append([]byte(nil), data...))
	}
	switch typeID {
	case ttUnsignedByte, ttUndefined:
		return NewValue(typeID, append([]byte(nil), data...))
	case ttSignedByte:
		d := make([]int8, count)
		for i := range d {
			d[i] = int8(data[i])
		}
		return NewValue(typeID, d)
	case ttUnsignedShort:
		d := make([]uint16, count)
		for i := range d {
			d[i] = getUint16(data[i*2:], bo)
		}
		return NewValue(typeID, d)
	case ttSignedShort:
		d := make([]int16, count)
		for i := range d {
			d[i] = int16(getUint16(data[i*2:], bo))
		}
		return NewValue(typeID, d)
	case ttUnsignedLong:
		d := make([]uint32, count)
		for i := range d {
			d[i] = getUint32(data[i*4:], bo)
		}
		return NewValue(typeID, d)
	case ttSignedLong:
		d := make([]int32, count)
		for i := range d {
			d[i] = int32(getUint32(data[i*4:], bo))
		}
		return NewValue(typeID, d)
	default:
		return NewValue(ttUndefined, append([]byte(nil), data...))
	}
}
